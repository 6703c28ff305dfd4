package graphdb

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"webofworlds/internal/config"
)

// Connect dials the graph database described by cfg and checks it answers
func Connect(ctx context.Context, cfg config.Neo4jConfig) (Store, error) {
	if cfg.URI == "" {
		return nil, ErrNoURI
	}

	auth := neo4j.NoAuth()
	if cfg.Username != "" {
		auth = neo4j.BasicAuth(cfg.Username, cfg.Password, "")
	}

	driver, err := neo4j.NewDriverWithContext(cfg.URI, auth, func(c *neo4j.Config) {
		if cfg.MaxConnections > 0 {
			c.MaxConnectionPoolSize = cfg.MaxConnections
		}
	})
	if err != nil {
		return nil, fmt.Errorf("open bolt driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("reach %s: %w", cfg.URI, err)
	}
	return &boltStore{driver: driver, database: cfg.Database}, nil
}

type boltStore struct {
	driver   neo4j.DriverWithContext
	database string
}

func (s *boltStore) Write(ctx context.Context, cypher string, params map[string]any) ([]Row, error) {
	return s.query(ctx, cypher, params, neo4j.ExecuteQueryWithWritersRouting())
}

func (s *boltStore) Read(ctx context.Context, cypher string, params map[string]any) ([]Row, error) {
	return s.query(ctx, cypher, params, neo4j.ExecuteQueryWithReadersRouting())
}

// query runs one auto-committed statement and collects every record
func (s *boltStore) query(ctx context.Context, cypher string, params map[string]any, routing neo4j.ExecuteQueryConfigurationOption) ([]Row, error) {
	res, err := neo4j.ExecuteQuery(ctx, s.driver, cypher, params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(s.database),
		routing,
	)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(res.Records))
	for _, rec := range res.Records {
		row := make(Row, len(rec.Keys))
		for i, key := range rec.Keys {
			row[key] = rec.Values[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *boltStore) Ping(ctx context.Context) error {
	return s.driver.VerifyConnectivity(ctx)
}

func (s *boltStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}
