package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"webofworlds/internal/catalog"
	"webofworlds/internal/config"
	"webofworlds/internal/domain"
	"webofworlds/internal/graphdb"
	"webofworlds/internal/network"
	"webofworlds/internal/repository"
	"webofworlds/internal/travel"
)

// RunResult is one empire's completed build
type RunResult struct {
	Run     domain.Run
	Network *network.Network
	// Catalog is the empire's private clone with the network committed onto it
	Catalog *catalog.Catalog
}

// SimulationService grows empire networks and records them
type SimulationService struct {
	repo     repository.Repository
	graph    *graphdb.Exporter
	eventBus *EventBus
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

// NewSimulationService creates a simulation service. repo may be nil, in which
// case runs are built but not stored.
func NewSimulationService(repo repository.Repository, eventBus *EventBus, logger *slog.Logger) *SimulationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SimulationService{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// SetGraphExporter exports every completed run to a graph database
func (s *SimulationService) SetGraphExporter(e *graphdb.Exporter) {
	s.graph = e
}

// Run grows one network per empire. Each empire works on its own clone of cat,
// so cat itself is never modified. The first failing empire cancels the rest.
// Results are in empire order.
func (s *SimulationService) Run(ctx context.Context, cat *catalog.Catalog, empires []config.EmpireConfig) ([]RunResult, error) {
	if cat == nil || cat.Len() == 0 {
		return nil, domain.ErrEmptyCatalog
	}

	results := make([]RunResult, len(empires))
	g, gctx := errgroup.WithContext(ctx)

	for i, empire := range empires {
		clone := cat.Clone()
		g.Go(func() error {
			res, err := s.runEmpire(gctx, clone, empire)
			if err != nil {
				return fmt.Errorf("grow %s: %w", empire.Name, err)
			}
			results[i] = *res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *SimulationService) runEmpire(ctx context.Context, cat *catalog.Catalog, empire config.EmpireConfig) (*RunResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	event := RunEvent{
		RunID:     s.newID(),
		Empire:    empire.Name,
		Algorithm: empire.Algorithm,
	}
	s.eventBus.Publish(Event{Type: EventRunStarted, Payload: event})

	net, err := s.grow(cat, empire)
	if err != nil {
		s.fail(event, err)
		return nil, err
	}

	fragment := net.Fragment(cat, domain.Run{ID: event.RunID, CreatedAt: s.now().UTC()})

	if s.repo != nil {
		if err := s.repo.CreateRun(ctx, fragment); err != nil {
			err = fmt.Errorf("store run: %w", err)
			s.fail(event, err)
			return nil, err
		}
	}

	if s.graph != nil {
		if err := s.graph.ExportRun(ctx, fragment); err != nil {
			s.logger.Warn("graph export failed", "run", event.RunID, "empire", empire.Name, "error", err)
		}
	}

	event.Size = net.Size()
	event.Exhausted = net.Exhausted
	if last := net.LastOutpost(); last != nil {
		event.LastDate = net.StartDate + last.ArrivalTime
	}
	s.eventBus.Publish(Event{Type: EventRunFinished, Payload: event})

	return &RunResult{Run: fragment.Run, Network: net, Catalog: cat}, nil
}

func (s *SimulationService) fail(event RunEvent, err error) {
	event.Error = err.Error()
	s.logger.Error("run failed", "run", event.RunID, "empire", event.Empire, "error", err)
	s.eventBus.Publish(Event{Type: EventRunFailed, Payload: event})
}

// grow dispatches to the builder for the empire's algorithm
func (s *SimulationService) grow(cat *catalog.Catalog, empire config.EmpireConfig) (*network.Network, error) {
	start, ok := cat.FindByName(empire.Start)
	if !ok {
		return nil, fmt.Errorf("start star %q: %w", empire.Start, domain.ErrStarNotFound)
	}

	speed, err := SpeedFunc(empire.Speed)
	if err != nil {
		return nil, err
	}

	builder := network.NewBuilder(cat, network.Options{
		Empire:    empire.Name,
		StartDate: empire.StartDate,
	}).WithLogger(s.logger.With("empire", empire.Name))

	switch empire.Algorithm {
	case config.AlgorithmLinear:
		return builder.GrowLinear(network.LinearParams{
			Start:      start,
			Iterations: empire.Iterations,
			Speed:      speed,
		})

	case config.AlgorithmBranching:
		return builder.GrowBranching(network.BranchingParams{
			Start:       start,
			Depth:       empire.Depth,
			MaxBranches: empire.MaxBranches,
			Speed:       speed,
		})

	case config.AlgorithmBreadthFirst:
		wait, err := WaitFunc(empire.Wait, empire.Seed)
		if err != nil {
			return nil, err
		}
		return builder.GrowBreadthFirst(network.BreadthFirstParams{
			Start:   start,
			Target:  empire.Target,
			Degree:  empire.Degree,
			Speed:   speed,
			Wait:    wait,
			EndDate: empire.EndDate,
		})

	case config.AlgorithmDirected:
		end, ok := cat.FindByName(empire.Directed.End)
		if !ok {
			return nil, fmt.Errorf("end star %q: %w", empire.Directed.End, domain.ErrStarNotFound)
		}
		return builder.GrowDirected(network.DirectedParams{
			Start: start,
			End:   end,
			Limit: empire.Directed.Limit,
		})
	}

	return nil, fmt.Errorf("algorithm %q: %w", empire.Algorithm, domain.ErrInvalidParameter)
}

// SpeedFunc builds the probe speed model described by cfg
func SpeedFunc(cfg config.SpeedConfig) (travel.SpeedFunc, error) {
	switch cfg.Kind {
	case config.SpeedConstant:
		return travel.Constant(cfg.Value), nil
	case config.SpeedLogistic:
		return travel.Logistic(cfg.Initial, cfg.Growth), nil
	}
	return nil, fmt.Errorf("speed kind %q: %w", cfg.Kind, domain.ErrInvalidParameter)
}

// WaitFunc builds the launch delay model described by cfg. Random models
// draw from a generator seeded with seed.
func WaitFunc(cfg config.WaitConfig, seed uint64) (travel.WaitFunc, error) {
	switch cfg.Kind {
	case config.WaitNone:
		return travel.NoWait(), nil
	case config.WaitConstant:
		return travel.ConstantWait(cfg.Mean), nil
	case config.WaitHalfNormal:
		return travel.HalfNormal(travel.NewRand(seed), cfg.Mean, cfg.Decay, cfg.Scale), nil
	}
	return nil, fmt.Errorf("wait kind %q: %w", cfg.Kind, domain.ErrInvalidParameter)
}
