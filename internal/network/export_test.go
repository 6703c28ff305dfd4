package network

import (
	"math"
	"testing"
	"time"

	"webofworlds/internal/domain"
	"webofworlds/internal/travel"
)

func growScenario(t *testing.T) (*Network, StarSource) {
	t.Helper()
	cat := scenarioCatalog(t)
	net, err := NewBuilder(cat, Options{Empire: "Terran", StartDate: 2100}).GrowLinear(LinearParams{
		Iterations: 10,
		Speed:      travel.Constant(1),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return net, cat
}

func TestNetworkCommit(t *testing.T) {
	_, src := growScenario(t)

	alpha := src.Star(1)
	if !alpha.Explored() {
		t.Fatal("expected reached star to be explored")
	}
	if *alpha.ArrivalTime != 2101 {
		t.Errorf("expected arrival 2101, got %g", *alpha.ArrivalTime)
	}
	if alpha.Empire != "Terran" {
		t.Errorf("expected empire Terran, got %q", alpha.Empire)
	}
	if len(alpha.WormholesTo) != 2 || alpha.WormholesTo[0] != 0 || alpha.WormholesTo[1] != 2 {
		t.Errorf("expected wormholes to [0 2], got %v", alpha.WormholesTo)
	}
	if got := alpha.WormholesString(); got != "0; 2; " {
		t.Errorf("expected \"0; 2; \", got %q", got)
	}
}

func TestNetworkEdges(t *testing.T) {
	net, src := growScenario(t)
	edges := net.Edges(src)

	if len(edges) != net.Size()-1 {
		t.Fatalf("expected %d edges on a path, got %d", net.Size()-1, len(edges))
	}
	ids := make(map[string]bool)
	for _, e := range edges {
		if ids[e.ID] {
			t.Errorf("duplicate edge id %s", e.ID)
		}
		ids[e.ID] = true
	}
	if math.Abs(edges[2].Length-math.Sqrt(29)) > 1e-9 {
		t.Errorf("expected third edge length sqrt(29), got %g", edges[2].Length)
	}
}

func TestNetworkFragment(t *testing.T) {
	net, src := growScenario(t)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	f := net.Fragment(src, domain.Run{ID: "run-1", CreatedAt: created})

	if f.Run.ID != "run-1" || !f.Run.CreatedAt.Equal(created) {
		t.Errorf("expected caller's run identity kept, got %+v", f.Run)
	}
	if f.Run.Size != 5 || f.Run.Algorithm != domain.AlgorithmLinear || f.Run.Empire != "Terran" {
		t.Errorf("expected run metadata from network, got %+v", f.Run)
	}
	if len(f.Stars) != 5 || len(f.Vertices) != 5 || len(f.Wormholes) != 4 {
		t.Fatalf("unexpected fragment sizes: %d stars, %d vertices, %d wormholes",
			len(f.Stars), len(f.Vertices), len(f.Wormholes))
	}
	if f.Vertices[0].ParentID != nil {
		t.Error("expected root without parent")
	}
	if p := f.Vertices[3].ParentID; p == nil || *p != 2 {
		t.Errorf("expected vertex 3 parent star 2, got %v", p)
	}
	if got := f.Vertices[1].ArrivalTime; got != 2101 {
		t.Errorf("expected absolute arrival 2101, got %g", got)
	}

	g := net.Graph(src, domain.Run{ID: "run-1"})
	if len(g.Nodes) != 5 || len(g.Edges) != 4 {
		t.Errorf("expected 5 nodes and 4 edges, got %d and %d", len(g.Nodes), len(g.Edges))
	}
	if g.Nodes[0].Group != "Terran" {
		t.Errorf("expected group Terran, got %q", g.Nodes[0].Group)
	}
}

func TestNetworkInspection(t *testing.T) {
	net, src := growScenario(t)

	if v := net.FurthestOutpost(src); v == nil || v.Star != 4 {
		t.Errorf("expected furthest outpost at star 4, got %+v", v)
	}
	if v := net.LastOutpost(); v == nil || v.Star != 4 {
		t.Errorf("expected last outpost at star 4, got %+v", v)
	}

	v, ok := net.FindByName(src, "gamma")
	if !ok || v.Star != 3 {
		t.Errorf("expected Gamma at star 3, got %+v (%v)", v, ok)
	}
	if _, ok := net.FindByName(src, "Vega"); ok {
		t.Error("expected no vertex named Vega")
	}

	near, d := net.NearestVertex(src, net.Root())
	if near == nil || near.Star != 1 || d != 1 {
		t.Errorf("expected nearest vertex star 1 at 1 ly, got %+v at %g", near, d)
	}

	order := net.ByArrival()
	for i := 1; i < len(order); i++ {
		if order[i-1].ArrivalTime > order[i].ArrivalTime {
			t.Errorf("arrival order broken at %d", i)
		}
	}

	lone := newNetwork("Human", domain.AlgorithmLinear, 0)
	root := lone.add(0, 0, NoParent)
	if v, d := lone.NearestVertex(src, root); v != nil || !math.IsInf(d, 1) {
		t.Errorf("expected no neighbour for a lone vertex, got %+v at %g", v, d)
	}
}
