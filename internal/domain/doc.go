// Package domain defines the core domain types for the webofworlds wormhole network simulator.
//
// This package contains the value types shared by the catalog, the network
// builder and the persistence/export layers.
//
// # Core Types
//
// Star is a catalog entry with a 3-D position in light-years and the
// exploration results written back after a network build (arrival time,
// controlling empire, wormhole destinations).
//
// Position is a point in the catalog's Cartesian frame with the vector helpers
// the growth algorithms need (distance, perpendicular distance to a line).
//
// Wormhole is an undirected link between two stars with a deterministic ID.
//
// Graph is the derived view handed to renderers: per-star position,
// neighbours and arrival time.
//
// Fragment bundles a run's stars and wormholes for import/export.
//
// # Errors
//
// Build failures are reported with sentinel errors (ErrEmptyCatalog,
// ErrInvalidSpeed, ...) and the typed InvalidSpeedError and InvalidWaitError,
// which match their sentinels under errors.Is.
//
// # Design Principles
//
// - No database or external dependencies
// - References between stars are catalog indices, never pointers
// - Pure domain logic without infrastructure concerns
package domain
