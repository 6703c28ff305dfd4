package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"webofworlds/internal/catalog"
	"webofworlds/internal/codec"
	"webofworlds/internal/config"
	"webofworlds/internal/domain"
	"webofworlds/internal/graphdb"
	"webofworlds/internal/repository"
)

var (
	// ErrRunNotFound is returned when a run id has no stored run
	ErrRunNotFound = errors.New("run not found")
	// ErrUnknownFormat is returned for an export format no codec handles
	ErrUnknownFormat = errors.New("unknown export format")
	// ErrGraphDisabled is returned for graph reads when no graph is configured
	ErrGraphDisabled = errors.New("graph export disabled")
)

// RunService reads, exports and deletes stored runs
type RunService struct {
	repo     repository.Repository
	graph    *graphdb.Exporter
	eventBus *EventBus
	logger   *slog.Logger
}

// NewRunService creates a new run service
func NewRunService(repo repository.Repository, eventBus *EventBus, logger *slog.Logger) *RunService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RunService{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
	}
}

// SetGraphExporter mirrors deletions into a graph database and enables
// GetRunMirror
func (s *RunService) SetGraphExporter(e *graphdb.Exporter) {
	s.graph = e
}

// GetRunMirror reports how much of a stored run the graph database holds
func (s *RunService) GetRunMirror(ctx context.Context, id string) (*graphdb.Mirror, error) {
	if s.graph == nil {
		return nil, ErrGraphDisabled
	}
	if _, err := s.GetRun(ctx, id); err != nil {
		return nil, err
	}
	return s.graph.Mirror(ctx, id)
}

// ListRuns returns all stored runs, newest first
func (s *RunService) ListRuns(ctx context.Context) ([]domain.Run, error) {
	return s.repo.ListRuns(ctx)
}

// GetRun retrieves a single run by ID
func (s *RunService) GetRun(ctx context.Context, id string) (*domain.Run, error) {
	run, err := s.repo.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, fmt.Errorf("run %s: %w", id, ErrRunNotFound)
	}
	return run, nil
}

// GetRunGraph returns the visualization graph of a run
func (s *RunService) GetRunGraph(ctx context.Context, id string) (*domain.Graph, error) {
	graph, err := s.repo.GetRunGraph(ctx, id)
	if err != nil {
		return nil, err
	}
	if graph == nil {
		return nil, fmt.Errorf("run %s: %w", id, ErrRunNotFound)
	}
	return graph, nil
}

// GetRunFragment returns the stars, vertices and wormholes of a run
func (s *RunService) GetRunFragment(ctx context.Context, id string) (*domain.Fragment, error) {
	fragment, err := s.repo.GetRunFragment(ctx, id)
	if err != nil {
		return nil, err
	}
	if fragment == nil {
		return nil, fmt.Errorf("run %s: %w", id, ErrRunNotFound)
	}
	return fragment, nil
}

// Export writes a run in the named format
func (s *RunService) Export(ctx context.Context, id, format string, w io.Writer) error {
	exporter := codec.ForFormat(strings.ToLower(format))
	if exporter == nil {
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	fragment, err := s.GetRunFragment(ctx, id)
	if err != nil {
		return err
	}
	return exporter.Export(fragment, w)
}

// DeleteRun removes a run and its network
func (s *RunService) DeleteRun(ctx context.Context, id string) error {
	if _, err := s.GetRun(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteRun(ctx, id); err != nil {
		return err
	}

	if s.graph != nil {
		if err := s.graph.DeleteRun(ctx, id); err != nil {
			s.logger.Warn("graph delete failed", "run", id, "error", err)
		}
	}

	s.eventBus.Publish(Event{
		Type:    EventRunDeleted,
		Payload: RunEvent{RunID: id},
	})

	return nil
}

// CatalogService moves star catalogs between files, the repository and memory
type CatalogService struct {
	repo     repository.Repository
	eventBus *EventBus
	logger   *slog.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(repo repository.Repository, eventBus *EventBus, logger *slog.Logger) *CatalogService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogService{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
	}
}

// ImportCSV parses a HYG-style CSV catalog and stores its stars. Stars already
// stored are updated in place and keep their catalog position.
func (s *CatalogService) ImportCSV(ctx context.Context, r io.Reader) (int, error) {
	stars, err := codec.NewHYGCodec().ParseStars(r)
	if err != nil {
		return 0, fmt.Errorf("parse catalog: %w", err)
	}

	n, err := s.repo.ImportStars(ctx, stars)
	if err != nil {
		return 0, fmt.Errorf("store catalog: %w", err)
	}

	s.logger.Info("catalog imported", "stars", n)
	s.eventBus.Publish(Event{
		Type:    EventStarsLoaded,
		Payload: map[string]int{"stars": n},
	})
	return n, nil
}

// Load builds an in-memory catalog from the stored stars, applying the
// distance limit and subset size from cfg
func (s *CatalogService) Load(ctx context.Context, cfg config.CatalogConfig) (*catalog.Catalog, error) {
	stars, err := s.repo.ListStars(ctx)
	if err != nil {
		return nil, err
	}
	if len(stars) == 0 {
		return nil, domain.ErrEmptyCatalog
	}

	cat, err := catalog.FromStars(stars)
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}
	if cfg.LimitLY > 0 {
		cat = cat.LimitByDistance(cfg.LimitLY)
	}
	if cfg.Subset > 0 && cfg.Subset < cat.Len() {
		if cat, err = cat.Subset(cfg.Subset); err != nil {
			return nil, err
		}
	}
	if cat.Len() == 0 {
		return nil, domain.ErrEmptyCatalog
	}

	s.logger.Info("catalog loaded", "stored", len(stars), "in_use", cat.Len())
	return cat, nil
}

// ExportCSV writes the stored catalog as CSV. When runID is set, stars reached
// by that run carry its arrival times, empire and wormholes.
func (s *CatalogService) ExportCSV(ctx context.Context, runID string, w io.Writer) error {
	stars, err := s.repo.ListStars(ctx)
	if err != nil {
		return err
	}

	if runID != "" {
		fragment, err := s.repo.GetRunFragment(ctx, runID)
		if err != nil {
			return err
		}
		if fragment == nil {
			return fmt.Errorf("run %s: %w", runID, ErrRunNotFound)
		}
		reached := make(map[int64]domain.Star, len(fragment.Stars))
		for _, star := range fragment.Stars {
			reached[star.ID] = star
		}
		for i, star := range stars {
			if r, ok := reached[star.ID]; ok {
				cp := *star
				cp.ArrivalTime = r.ArrivalTime
				cp.Empire = r.Empire
				cp.WormholesTo = r.WormholesTo
				stars[i] = &cp
			}
		}
	}

	return codec.NewHYGCodec().ExportStars(stars, w)
}
