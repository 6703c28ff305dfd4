// Package graphdb mirrors completed runs into a Neo4j graph.
//
// Stars become (:Star) nodes keyed by catalog id, each run a (:Run) node that
// explored stars point at, and wormholes [:WORMHOLE] relationships tagged
// with the run that opened them. All Cypher goes through a Store, backed by
// Bolt in production and by a Recorder in tests.
package graphdb

import (
	"context"
	"errors"
)

// Store executes Cypher statements against a graph
type Store interface {
	Write(ctx context.Context, cypher string, params map[string]any) ([]Row, error)
	Read(ctx context.Context, cypher string, params map[string]any) ([]Row, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Row is one returned record keyed by column name
type Row map[string]any

// Int returns an integer column. Bolt delivers integers as int64.
func (r Row) Int(key string) (int64, bool) {
	switch v := r[key].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	}
	return 0, false
}

// ErrNoURI is returned by Connect for a config without a Bolt URI
var ErrNoURI = errors.New("graph database uri not set")
