package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"webofworlds/internal/catalog"
	"webofworlds/internal/config"
	"webofworlds/internal/domain"
	"webofworlds/internal/graphdb"
	"webofworlds/internal/repository/sqlite"
)

func newTestRepo(t *testing.T) *sqlite.Repository {
	t.Helper()
	repo, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

// scenarioStars are five stars: three on the x axis near Sol, one off axis
// and one far along x
func scenarioStars() []*domain.Star {
	return []*domain.Star{
		domain.NewStar(0, "Sol", domain.NewPosition(0, 0, 0)),
		domain.NewStar(1, "Alpha", domain.NewPosition(1, 0, 0)),
		domain.NewStar(2, "Beta", domain.NewPosition(2, 0, 0)),
		domain.NewStar(3, "Gamma", domain.NewPosition(0, 5, 0)),
		domain.NewStar(4, "Delta", domain.NewPosition(10, 0, 0)),
	}
}

func scenarioCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.FromStars(scenarioStars())
	if err != nil {
		t.Fatalf("failed to build catalog: %v", err)
	}
	return cat
}

func linearEmpire(name string) config.EmpireConfig {
	return config.EmpireConfig{
		Name:       name,
		Algorithm:  config.AlgorithmLinear,
		Start:      "Sol",
		StartDate:  2100,
		Iterations: 4,
		Speed:      config.SpeedConfig{Kind: config.SpeedConstant, Value: 1},
		Wait:       config.WaitConfig{Kind: config.WaitNone},
	}
}

func directedEmpire(name string) config.EmpireConfig {
	return config.EmpireConfig{
		Name:      name,
		Algorithm: config.AlgorithmDirected,
		Start:     "Sol",
		StartDate: 2200,
		Speed:     config.SpeedConfig{Kind: config.SpeedConstant, Value: 1},
		Wait:      config.WaitConfig{Kind: config.WaitNone},
		Directed:  config.DirectedConfig{End: "Delta", Limit: 1},
	}
}

// newTestSimulation wires a simulation service to an in-memory repository
// and graph client, with deterministic run ids and timestamps
func newTestSimulation(t *testing.T) (*SimulationService, *sqlite.Repository, *graphdb.Recorder, chan Event) {
	t.Helper()
	repo := newTestRepo(t)
	if _, err := repo.ImportStars(context.Background(), scenarioStars()); err != nil {
		t.Fatalf("failed to import stars: %v", err)
	}
	bus := NewEventBus()
	events := make(chan Event, 32)
	bus.Subscribe(events)

	client := graphdb.NewRecorder()
	svc := NewSimulationService(repo, bus, nil)
	svc.SetGraphExporter(graphdb.NewExporter(client, nil))

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var n int
	svc.newID = func() string {
		n++
		return fmt.Sprintf("run-%d", n)
	}
	svc.now = func() time.Time { return base }
	return svc, repo, client, events
}

func drain(events chan Event) map[EventType]int {
	counts := make(map[EventType]int)
	for {
		select {
		case e := <-events:
			counts[e.Type]++
		default:
			return counts
		}
	}
}

func TestSimulationRun(t *testing.T) {
	ctx := context.Background()

	t.Run("runs every empire on its own catalog", func(t *testing.T) {
		svc, repo, client, events := newTestSimulation(t)
		// newID is called from concurrent goroutines
		svc.newID = uuid.NewString
		cat := scenarioCatalog(t)

		results, err := svc.Run(ctx, cat, []config.EmpireConfig{linearEmpire("Terran"), directedEmpire("Kree")})
		if err != nil {
			t.Fatalf("Run() error: %v", err)
		}
		if len(results) != 2 {
			t.Fatalf("len(results) = %d, want 2", len(results))
		}

		terran, kree := results[0], results[1]
		if terran.Run.Empire != "Terran" || terran.Run.Size != 5 {
			t.Errorf("Terran run = %+v, want size 5", terran.Run)
		}
		if kree.Run.Empire != "Kree" || kree.Run.Size != 4 {
			t.Errorf("Kree run = %+v, want size 4", kree.Run)
		}
		if terran.Run.ID == kree.Run.ID {
			t.Error("runs should have distinct ids")
		}

		// Source catalog untouched, clones carry their own empire
		for i := 0; i < cat.Len(); i++ {
			if cat.Star(i).Explored() || cat.IsVisited(i) {
				t.Errorf("source star %d modified", i)
			}
		}
		if got := terran.Catalog.Star(4).Empire; got != "Terran" {
			t.Errorf("Terran clone star 4 empire = %q", got)
		}
		if got := kree.Catalog.Star(3).Empire; got != "" {
			t.Errorf("Kree clone star 3 empire = %q, want none", got)
		}

		runs, err := repo.ListRuns(ctx)
		if err != nil {
			t.Fatalf("ListRuns() error: %v", err)
		}
		if len(runs) != 2 {
			t.Errorf("len(runs) = %d, want 2", len(runs))
		}

		if len(client.Writes()) == 0 {
			t.Error("expected graph export writes")
		}

		counts := drain(events)
		if counts[EventRunStarted] != 2 || counts[EventRunFinished] != 2 || counts[EventRunFailed] != 0 {
			t.Errorf("events = %v", counts)
		}
	})

	t.Run("stores absolute arrival dates", func(t *testing.T) {
		svc, repo, _, _ := newTestSimulation(t)

		results, err := svc.Run(ctx, scenarioCatalog(t), []config.EmpireConfig{linearEmpire("Terran")})
		if err != nil {
			t.Fatalf("Run() error: %v", err)
		}

		fragment, err := repo.GetRunFragment(ctx, results[0].Run.ID)
		if err != nil || fragment == nil {
			t.Fatalf("GetRunFragment() = %v, %v", fragment, err)
		}
		if fragment.Run.ID != "run-1" {
			t.Errorf("run id = %s, want run-1", fragment.Run.ID)
		}
		if got := fragment.Vertices[1].ArrivalTime; got != 2101 {
			t.Errorf("second arrival = %g, want 2101", got)
		}
	})

	t.Run("unknown start star fails the run", func(t *testing.T) {
		svc, repo, _, events := newTestSimulation(t)
		empire := linearEmpire("Lost")
		empire.Start = "Nowhere"

		_, err := svc.Run(ctx, scenarioCatalog(t), []config.EmpireConfig{empire})
		if !errors.Is(err, domain.ErrStarNotFound) {
			t.Fatalf("Run() = %v, want ErrStarNotFound", err)
		}
		if !strings.Contains(err.Error(), "grow Lost") {
			t.Errorf("error %q should name the empire", err)
		}

		runs, _ := repo.ListRuns(ctx)
		if len(runs) != 0 {
			t.Errorf("len(runs) = %d, want 0", len(runs))
		}
		if counts := drain(events); counts[EventRunFailed] != 1 {
			t.Errorf("events = %v, want one run_failed", counts)
		}
	})

	t.Run("unknown end star fails directed growth", func(t *testing.T) {
		svc, _, _, _ := newTestSimulation(t)
		empire := directedEmpire("Kree")
		empire.Directed.End = "Nowhere"

		_, err := svc.Run(ctx, scenarioCatalog(t), []config.EmpireConfig{empire})
		if !errors.Is(err, domain.ErrStarNotFound) {
			t.Errorf("Run() = %v, want ErrStarNotFound", err)
		}
	})

	t.Run("empty catalog", func(t *testing.T) {
		svc, _, _, _ := newTestSimulation(t)
		_, err := svc.Run(ctx, catalog.New(), []config.EmpireConfig{linearEmpire("Terran")})
		if !errors.Is(err, domain.ErrEmptyCatalog) {
			t.Errorf("Run() = %v, want ErrEmptyCatalog", err)
		}
	})

	t.Run("graph export failure does not fail the run", func(t *testing.T) {
		svc, repo, _, _ := newTestSimulation(t)
		svc.SetGraphExporter(graphdb.NewExporter(graphdb.NewRecorder().FailWith(errors.New("down")), nil))

		if _, err := svc.Run(ctx, scenarioCatalog(t), []config.EmpireConfig{linearEmpire("Terran")}); err != nil {
			t.Fatalf("Run() error: %v", err)
		}
		if runs, _ := repo.ListRuns(ctx); len(runs) != 1 {
			t.Errorf("len(runs) = %d, want 1", len(runs))
		}
	})

	t.Run("breadth-first with seeded waits is reproducible", func(t *testing.T) {
		svc := NewSimulationService(nil, nil, nil)
		empire := config.DefaultEmpire("Human")
		empire.Target = 4
		empire.Degree = 2
		empire.Seed = 7

		a, err := svc.Run(ctx, scenarioCatalog(t), []config.EmpireConfig{empire})
		if err != nil {
			t.Fatalf("Run() error: %v", err)
		}
		b, err := svc.Run(ctx, scenarioCatalog(t), []config.EmpireConfig{empire})
		if err != nil {
			t.Fatalf("Run() error: %v", err)
		}

		va, vb := a[0].Network.Vertices(), b[0].Network.Vertices()
		if len(va) != len(vb) {
			t.Fatalf("sizes differ: %d vs %d", len(va), len(vb))
		}
		for i := range va {
			if va[i].Star != vb[i].Star || va[i].ArrivalTime != vb[i].ArrivalTime {
				t.Errorf("vertex %d differs: %+v vs %+v", i, va[i], vb[i])
			}
		}
	})
}

func TestModelFuncs(t *testing.T) {
	t.Run("speed kinds", func(t *testing.T) {
		f, err := SpeedFunc(config.SpeedConfig{Kind: config.SpeedConstant, Value: 0.5})
		if err != nil || f(100) != 0.5 {
			t.Errorf("constant speed: err %v", err)
		}
		f, err = SpeedFunc(config.SpeedConfig{Kind: config.SpeedLogistic, Initial: 0.1, Growth: 0.0016})
		if err != nil || !(f(0) > 0) {
			t.Errorf("logistic speed error: %v", err)
		}
		if _, err := SpeedFunc(config.SpeedConfig{Kind: "warp"}); !errors.Is(err, domain.ErrInvalidParameter) {
			t.Errorf("SpeedFunc(warp) = %v, want ErrInvalidParameter", err)
		}
	})

	t.Run("wait kinds", func(t *testing.T) {
		f, err := WaitFunc(config.WaitConfig{Kind: config.WaitNone}, 0)
		if err != nil || f(10) != 0 {
			t.Errorf("no wait = %v", err)
		}
		f, err = WaitFunc(config.WaitConfig{Kind: config.WaitConstant, Mean: 3}, 0)
		if err != nil || f(10) != 3 {
			t.Errorf("constant wait = %v", err)
		}
		a, _ := WaitFunc(config.WaitConfig{Kind: config.WaitHalfNormal, Mean: 100, Decay: 0.005, Scale: 50}, 9)
		b, _ := WaitFunc(config.WaitConfig{Kind: config.WaitHalfNormal, Mean: 100, Decay: 0.005, Scale: 50}, 9)
		for i := 0; i < 5; i++ {
			wa, wb := a(float64(i)), b(float64(i))
			if wa != wb || wa < 0 {
				t.Errorf("draw %d: %g vs %g", i, wa, wb)
			}
		}
		if _, err := WaitFunc(config.WaitConfig{Kind: "random"}, 0); !errors.Is(err, domain.ErrInvalidParameter) {
			t.Errorf("WaitFunc(random) = %v, want ErrInvalidParameter", err)
		}
	})
}

func TestRunService(t *testing.T) {
	ctx := context.Background()
	sim, repo, client, events := newTestSimulation(t)
	results, err := sim.Run(ctx, scenarioCatalog(t), []config.EmpireConfig{linearEmpire("Terran")})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	id := results[0].Run.ID
	drain(events)

	bus := NewEventBus()
	bus.Subscribe(events)
	svc := NewRunService(repo, bus, nil)
	svc.SetGraphExporter(graphdb.NewExporter(client, nil))

	t.Run("get and list", func(t *testing.T) {
		run, err := svc.GetRun(ctx, id)
		if err != nil {
			t.Fatalf("GetRun() error: %v", err)
		}
		if run.Empire != "Terran" || run.Size != 5 {
			t.Errorf("run = %+v", run)
		}
		runs, err := svc.ListRuns(ctx)
		if err != nil || len(runs) != 1 {
			t.Errorf("ListRuns() = %v, %v", runs, err)
		}
	})

	t.Run("graph", func(t *testing.T) {
		graph, err := svc.GetRunGraph(ctx, id)
		if err != nil {
			t.Fatalf("GetRunGraph() error: %v", err)
		}
		if len(graph.Nodes) != 5 || len(graph.Edges) != 4 {
			t.Errorf("graph has %d nodes, %d edges; want 5, 4", len(graph.Nodes), len(graph.Edges))
		}
	})

	t.Run("export formats", func(t *testing.T) {
		for _, format := range []string{"json", "YAML"} {
			var buf bytes.Buffer
			if err := svc.Export(ctx, id, format, &buf); err != nil {
				t.Errorf("Export(%s) error: %v", format, err)
			}
			if !strings.Contains(buf.String(), "Terran") {
				t.Errorf("Export(%s) missing empire", format)
			}
		}
		if err := svc.Export(ctx, id, "xml", &bytes.Buffer{}); !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("Export(xml) = %v, want ErrUnknownFormat", err)
		}
		if err := svc.Export(ctx, "missing", "json", &bytes.Buffer{}); !errors.Is(err, ErrRunNotFound) {
			t.Errorf("Export(missing) = %v, want ErrRunNotFound", err)
		}
	})

	t.Run("mirror", func(t *testing.T) {
		client.Reply(graphdb.Row{"size": int64(5), "stars": int64(5), "wormholes": int64(4)})
		m, err := svc.GetRunMirror(ctx, id)
		if err != nil {
			t.Fatalf("GetRunMirror() error: %v", err)
		}
		if !m.Complete || m.Wormholes != 4 {
			t.Errorf("GetRunMirror() = %+v", *m)
		}

		if _, err := svc.GetRunMirror(ctx, "missing"); !errors.Is(err, ErrRunNotFound) {
			t.Errorf("GetRunMirror(missing) = %v, want ErrRunNotFound", err)
		}
		if _, err := svc.GetRunMirror(ctx, id); !errors.Is(err, graphdb.ErrNotMirrored) {
			t.Errorf("GetRunMirror() without graph rows = %v, want ErrNotMirrored", err)
		}
		if _, err := NewRunService(repo, nil, nil).GetRunMirror(ctx, id); !errors.Is(err, ErrGraphDisabled) {
			t.Errorf("GetRunMirror() without graph = %v, want ErrGraphDisabled", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := svc.DeleteRun(ctx, id); err != nil {
			t.Fatalf("DeleteRun() error: %v", err)
		}
		if _, err := svc.GetRun(ctx, id); !errors.Is(err, ErrRunNotFound) {
			t.Errorf("GetRun() after delete = %v, want ErrRunNotFound", err)
		}
		if _, err := svc.GetRunGraph(ctx, id); !errors.Is(err, ErrRunNotFound) {
			t.Errorf("GetRunGraph() after delete = %v, want ErrRunNotFound", err)
		}
		if err := svc.DeleteRun(ctx, id); !errors.Is(err, ErrRunNotFound) {
			t.Errorf("second DeleteRun() = %v, want ErrRunNotFound", err)
		}
		if counts := drain(events); counts[EventRunDeleted] != 1 {
			t.Errorf("events = %v, want one run_deleted", counts)
		}
	})
}

const testCSV = `id,proper,x,y,z
0,Sol,0,0,0
1,Alpha,1,0,0
2,Beta,2,0,0
3,Gamma,0,5,0
`

func TestCatalogService(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	svc := NewCatalogService(repo, NewEventBus(), nil)

	n, err := svc.ImportCSV(ctx, strings.NewReader(testCSV))
	if err != nil {
		t.Fatalf("ImportCSV() error: %v", err)
	}
	if n != 4 {
		t.Fatalf("ImportCSV() = %d, want 4", n)
	}

	t.Run("load everything", func(t *testing.T) {
		cat, err := svc.Load(ctx, config.CatalogConfig{})
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if cat.Len() != 4 {
			t.Errorf("Len() = %d, want 4", cat.Len())
		}
		if i, ok := cat.FindByName("Gamma"); !ok || i != 3 {
			t.Errorf("FindByName(Gamma) = %d, %v", i, ok)
		}
	})

	t.Run("limit and subset", func(t *testing.T) {
		// Gamma is 5 pc, about 16 ly, from Sol
		cat, err := svc.Load(ctx, config.CatalogConfig{LimitLY: 10})
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if cat.Len() != 3 {
			t.Errorf("Len() with limit = %d, want 3", cat.Len())
		}

		cat, err = svc.Load(ctx, config.CatalogConfig{LimitLY: 10, Subset: 2})
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if cat.Len() != 2 {
			t.Errorf("Len() with subset = %d, want 2", cat.Len())
		}
	})

	t.Run("empty repository", func(t *testing.T) {
		empty := NewCatalogService(newTestRepo(t), nil, nil)
		_, err := empty.Load(ctx, config.CatalogConfig{})
		if !errors.Is(err, domain.ErrEmptyCatalog) {
			t.Errorf("Load() = %v, want ErrEmptyCatalog", err)
		}
	})

	t.Run("export with run overlay", func(t *testing.T) {
		cat, err := svc.Load(ctx, config.CatalogConfig{})
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		sim := NewSimulationService(repo, nil, nil)
		results, err := sim.Run(ctx, cat, []config.EmpireConfig{linearEmpire("Terran")})
		if err != nil {
			t.Fatalf("Run() error: %v", err)
		}

		var plain, overlay bytes.Buffer
		if err := svc.ExportCSV(ctx, "", &plain); err != nil {
			t.Fatalf("ExportCSV() error: %v", err)
		}
		if strings.Contains(plain.String(), "Terran") {
			t.Error("plain export should carry no empire")
		}
		if err := svc.ExportCSV(ctx, results[0].Run.ID, &overlay); err != nil {
			t.Fatalf("ExportCSV(run) error: %v", err)
		}
		if got := strings.Count(overlay.String(), "Terran"); got != 4 {
			t.Errorf("overlay export names Terran %d times, want 4", got)
		}
		if err := svc.ExportCSV(ctx, "missing", &bytes.Buffer{}); !errors.Is(err, ErrRunNotFound) {
			t.Errorf("ExportCSV(missing) = %v, want ErrRunNotFound", err)
		}
	})
}

func TestEventBus(t *testing.T) {
	bus := NewEventBus()
	fast := make(chan Event, 1)
	slow := make(chan Event)
	bus.Subscribe(fast)
	bus.Subscribe(slow)

	bus.Publish(Event{Type: EventRunStarted})
	if e := <-fast; e.Type != EventRunStarted {
		t.Errorf("event = %v", e)
	}

	bus.Unsubscribe(fast)
	bus.Publish(Event{Type: EventRunFinished})
	select {
	case e := <-fast:
		t.Errorf("unsubscribed channel received %v", e)
	default:
	}

	var nilBus *EventBus
	nilBus.Publish(Event{Type: EventRunFailed})
}
