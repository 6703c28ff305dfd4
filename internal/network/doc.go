// Package network grows wormhole networks over a star catalog.
//
// # Algorithms
//
// A Builder offers four growth strategies:
//
//   - GrowLinear follows nearest unvisited stars in a single chain
//   - GrowBranching expands a depth-first tree with a fixed fan-out
//   - GrowBreadthFirst expands a FIFO frontier until a target size, staggering
//     probe launches by sampled wait times and reusing existing vertices
//   - GrowDirected collects a corridor of stars along the line between two stars
//
// Every build snapshots the catalog's visited state first and restores it on
// return, whether the build succeeded or failed. A failed build returns no
// network and leaves the catalog's stars untouched. A successful build commits
// arrival dates, empire and wormhole lists onto the reached stars.
//
// # Vertices
//
// Vertices live in an arena owned by the Network and refer to each other and
// to stars by integer index.
package network
