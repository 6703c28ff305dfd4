package network

import (
	"context"
	"fmt"
	"log/slog"

	"webofworlds/internal/catalog"
	"webofworlds/internal/domain"
)

// Catalog is the star storage a Builder grows networks over.
// *catalog.Catalog implements it.
type Catalog interface {
	Len() int
	Star(i int) *domain.Star
	Distance(a, b int) float64
	NearestUnvisited(ref int) (int, float64, error)
	MarkVisited(i int)
	UnmarkVisited(i int)
	IsVisited(i int) bool
	ResetVisited()
	Snapshot() *catalog.VisitedSet
	Restore(s *catalog.VisitedSet)
}

// Options apply to every network a Builder grows
type Options struct {
	// Empire tags every vertex and, on success, every reached star
	Empire string
	// StartDate offsets arrival times written back onto stars
	StartDate float64
}

// DefaultOptions returns the options used when none are given
func DefaultOptions() Options {
	return Options{Empire: "Human"}
}

// Builder grows wormhole networks over a catalog. Only one build may run
// against a catalog at a time.
type Builder struct {
	cat    Catalog
	opts   Options
	logger *slog.Logger
}

// NewBuilder creates a builder over cat
func NewBuilder(cat Catalog, opts Options) *Builder {
	if opts.Empire == "" {
		opts.Empire = DefaultOptions().Empire
	}
	return &Builder{
		cat:    cat,
		opts:   opts,
		logger: slog.Default(),
	}
}

// WithLogger sets the logger used for build progress
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// run wraps a growth algorithm: it validates the start star, snapshots visited
// state and restores it on every exit path, and commits a successful network
// onto the catalog's stars.
func (b *Builder) run(algorithm domain.Algorithm, start int, grow func(*Network) error) (*Network, error) {
	if b.cat.Len() == 0 {
		return nil, domain.ErrEmptyCatalog
	}
	if err := b.checkStar(start); err != nil {
		return nil, err
	}

	snapshot := b.cat.Snapshot()
	defer b.cat.Restore(snapshot)

	net := newNetwork(b.opts.Empire, algorithm, b.opts.StartDate)
	if err := grow(net); err != nil {
		b.logger.Warn("network build aborted",
			"empire", net.Empire,
			"algorithm", algorithm,
			"size", net.Size(),
			"error", err,
		)
		return nil, err
	}

	net.Commit(b.cat)
	b.logger.Info("network built",
		"empire", net.Empire,
		"algorithm", algorithm,
		"size", net.Size(),
		"iterations", net.Iterations,
		"exhausted", net.Exhausted,
		"cut_off", net.CutOff,
	)
	return net, nil
}

func (b *Builder) checkStar(i int) error {
	if i < 0 || i >= b.cat.Len() {
		return fmt.Errorf("index %d of %d: %w", i, b.cat.Len(), domain.ErrStarNotFound)
	}
	return nil
}

// added logs a new vertex at debug level
func (b *Builder) added(net *Network, v *Vertex) {
	if !b.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	star := b.cat.Star(v.Star)
	b.logger.Debug("vertex added",
		"size", net.Size(),
		"star_id", star.ID,
		"name", star.Name,
		"arrival", v.ArrivalTime,
	)
}
