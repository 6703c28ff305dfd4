// Package service implements business logic for webofworlds.
//
// This package coordinates the catalog, the network builder and the
// persistence layers. Handlers and the CLI talk to services, never to the
// repository directly.
//
// # Services
//
// SimulationService grows one network per configured empire. Each empire runs
// on its own clone of the catalog, so empires never see each other's visited
// state, and all empires run concurrently. Completed runs are persisted to the
// repository and, when configured, exported to a graph database.
//
// RunService reads, exports and deletes stored runs.
//
// CatalogService loads star catalogs into the repository and back out as an
// in-memory catalog ready for growth.
//
// # Event System
//
// Services publish run lifecycle events on an EventBus. The server forwards
// them to browsers over Server-Sent Events.
package service
