package domain

import "testing"

func TestDeriveGraph(t *testing.T) {
	run := Run{ID: "run-1", Empire: "Human", Algorithm: AlgorithmLinear}
	f := NewFragment(run)

	sol := NewStar(0, "Sol", NewPosition(0, 0, 0))
	sol.SetExplored(2100, "Human")
	alpha := NewStar(1, "Alpha Centauri", NewPosition(4.37, 0, 0))
	alpha.SetExplored(2108.74, "Human")

	f.AddStar(*sol)
	f.AddStar(*alpha)
	f.AddVertex(RunVertex{StarID: 0, ArrivalTime: 0})
	parent := int64(0)
	f.AddVertex(RunVertex{StarID: 1, ArrivalTime: 8.74, ParentID: &parent})
	f.AddWormhole(*NewWormhole(0, 1, 4.37))

	graph := DeriveGraph(f)

	t.Run("converts stars to nodes", func(t *testing.T) {
		if len(graph.Nodes) != 2 {
			t.Fatalf("expected 2 nodes, got %d", len(graph.Nodes))
		}
		if graph.Nodes[1].Label != "Alpha Centauri" {
			t.Errorf("expected label 'Alpha Centauri', got %s", graph.Nodes[1].Label)
		}
		if graph.Nodes[1].Group != "Human" {
			t.Errorf("expected group 'Human', got %s", graph.Nodes[1].Group)
		}
	})

	t.Run("uses vertex arrival times", func(t *testing.T) {
		if graph.Nodes[1].ArrivalTime != 8.74 {
			t.Errorf("expected arrival 8.74, got %f", graph.Nodes[1].ArrivalTime)
		}
	})

	t.Run("fills neighbours from wormholes", func(t *testing.T) {
		if len(graph.Nodes[0].Neighbours) != 1 || graph.Nodes[0].Neighbours[0] != 1 {
			t.Errorf("expected Sol neighbours [1], got %v", graph.Nodes[0].Neighbours)
		}
		if len(graph.Nodes[1].Neighbours) != 1 || graph.Nodes[1].Neighbours[0] != 0 {
			t.Errorf("expected Alpha neighbours [0], got %v", graph.Nodes[1].Neighbours)
		}
	})

	t.Run("labels edges with length", func(t *testing.T) {
		if len(graph.Edges) != 1 {
			t.Fatalf("expected 1 edge, got %d", len(graph.Edges))
		}
		if graph.Edges[0].Label != "4.4 ly" {
			t.Errorf("expected label '4.4 ly', got %s", graph.Edges[0].Label)
		}
	})
}

func TestStarExploration(t *testing.T) {
	star := NewStar(7, "Vega", NewPosition(0, 0, 25))

	if star.DistanceFromOrigin != 25 {
		t.Errorf("expected distance 25, got %f", star.DistanceFromOrigin)
	}
	if star.NearestNeighbour != NoNeighbour {
		t.Errorf("expected no neighbour, got %d", star.NearestNeighbour)
	}
	if star.Explored() {
		t.Error("expected new star to be unexplored")
	}

	star.SetExplored(2200, "Human")
	star.WormholesTo = []int64{1, 2}
	if !star.Explored() || *star.ArrivalTime != 2200 || star.Empire != "Human" {
		t.Errorf("expected explored by Human at 2200, got %+v", star)
	}
	if s := star.WormholesString(); s != "1; 2; " {
		t.Errorf("expected '1; 2; ', got %q", s)
	}

	star.ClearExplored()
	star.ClearPolitical()
	if star.Explored() || star.Empire != "" || star.WormholesTo != nil {
		t.Errorf("expected cleared star, got %+v", star)
	}
}
