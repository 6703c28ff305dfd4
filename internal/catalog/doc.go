// Package catalog holds the star catalog consumed by the network builder.
//
// Stars are kept in insertion order and addressed by their catalog index.
// Nearest-unvisited queries run over a linear scan for small catalogs and a
// lazily built k-d tree for larger ones; both resolve equal distances to the
// lower catalog index, so results do not depend on the search strategy.
//
// Visited state lives in a VisitedSet owned by the catalog rather than on the
// stars. Builders take a Snapshot on entry and Restore it on exit.
package catalog
