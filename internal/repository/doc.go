// Package repository defines the data access interface for webofworlds.
//
// # Repository Interface
//
// The Repository interface covers the star catalog and completed network
// runs: a run's metadata, the vertices it reached and the wormholes between
// them.
//
// # SQLite Implementation
//
// The sqlite subpackage implements Repository on SQLite in WAL mode. Runs are
// written in a single transaction and their vertices and wormholes are
// removed by cascade when the run is deleted.
//
// # Testing
//
// The sqlite repository is tested against in-memory databases.
package repository
