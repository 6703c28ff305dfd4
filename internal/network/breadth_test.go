package network

import (
	"errors"
	"math"
	"testing"

	"webofworlds/internal/domain"
	"webofworlds/internal/travel"
)

func TestGrowBreadthFirst(t *testing.T) {
	t.Run("degree one grows a chain", func(t *testing.T) {
		cat := newTestCatalog(t, linePositions(5))
		net, err := NewBuilder(cat, DefaultOptions()).GrowBreadthFirst(BreadthFirstParams{
			Target: 10,
			Degree: 1,
			Speed:  travel.Constant(1),
			Wait:   travel.NoWait(),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		assertOrder(t, net, []int{0, 1, 2, 3, 4})
		for i, v := range net.Vertices() {
			if math.Abs(v.ArrivalTime-float64(i)) > 1e-9 {
				t.Errorf("vertex %d: expected arrival %d, got %g", i, i, v.ArrivalTime)
			}
		}
		if !net.Exhausted {
			t.Error("expected exhausted below target")
		}
	})

	t.Run("reaches the target size exactly", func(t *testing.T) {
		cat := newTestCatalog(t, randomPositions(21, 200))
		net, err := NewBuilder(cat, DefaultOptions()).GrowBreadthFirst(BreadthFirstParams{
			Target: 50,
			Degree: 3,
			Speed:  travel.Constant(0.5),
			Wait:   travel.DefaultWait(7),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if net.Size() != 50 {
			t.Errorf("expected size 50, got %d", net.Size())
		}
		if net.Exhausted || net.CutOff {
			t.Error("expected neither exhausted nor cut off")
		}

		seen := make(map[int]bool)
		for _, v := range net.Vertices() {
			if seen[v.Star] {
				t.Errorf("star %d has two vertices", v.Star)
			}
			seen[v.Star] = true
		}
		assertParentsEarlier(t, net)
		assertSymmetric(t, net)
		if cat.VisitedCount() != 0 {
			t.Errorf("expected visited flags restored, got %d", cat.VisitedCount())
		}
	})

	t.Run("never exceeds the target", func(t *testing.T) {
		cat := newTestCatalog(t, randomPositions(4, 120))
		for target := 1; target <= 12; target++ {
			net, err := NewBuilder(cat, DefaultOptions()).GrowBreadthFirst(BreadthFirstParams{
				Target: target,
				Degree: 4,
				Speed:  travel.DefaultSpeed(),
				Wait:   travel.ConstantWait(5),
			})
			if err != nil {
				t.Fatalf("target %d: unexpected error: %v", target, err)
			}
			if net.Size() != target {
				t.Errorf("target %d: got size %d", target, net.Size())
			}
		}
	})

	t.Run("stops at the end date", func(t *testing.T) {
		cat := newTestCatalog(t, linePositions(10))
		end := 2102.5
		net, err := NewBuilder(cat, Options{Empire: "Human", StartDate: 2100}).GrowBreadthFirst(BreadthFirstParams{
			Target:  10,
			Degree:  1,
			Speed:   travel.Constant(1),
			Wait:    travel.NoWait(),
			EndDate: &end,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if net.Size() != 4 {
			t.Errorf("expected size 4, got %d", net.Size())
		}
		if !net.CutOff {
			t.Error("expected cut off")
		}
		if net.Exhausted {
			t.Error("expected not exhausted")
		}
	})

	t.Run("earliest launch reaches the nearest star", func(t *testing.T) {
		cat := newTestCatalog(t, []domain.Position{
			domain.NewPosition(0, 0, 0),
			domain.NewPosition(1, 0, 0),
			domain.NewPosition(0, 1, 0),
			domain.NewPosition(0, 0, 1),
			domain.NewPosition(1.5, 0, 0),
			domain.NewPosition(1, 0.75, 0),
			domain.NewPosition(3, 0, 0),
		})
		wait, _ := cyclicWait(30, 10, 20)
		// Probes launched from year 31 on fly at half speed.
		speed := func(t float64) float64 {
			if t >= 31 {
				return 0.5
			}
			return 1
		}
		net, err := NewBuilder(cat, DefaultOptions()).GrowBreadthFirst(BreadthFirstParams{
			Target: 7,
			Degree: 3,
			Speed:  speed,
			Wait:   wait,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		assertOrder(t, net, []int{0, 1, 2, 3, 4, 5, 6})
		expected := []struct {
			arrival float64
			parent  int
		}{
			{0, NoParent},
			{1, 0},
			{1, 0},
			{1, 0},
			{1 + 10 + 0.5, 1},
			{1 + 20 + 0.75, 1},
			{1 + 30 + 2/0.5, 1},
		}
		for i, want := range expected {
			v := net.Vertex(i)
			if math.Abs(v.ArrivalTime-want.arrival) > 1e-9 {
				t.Errorf("vertex %d: expected arrival %g, got %g", i, want.arrival, v.ArrivalTime)
			}
			if v.Parent != want.parent {
				t.Errorf("vertex %d: expected parent %d, got %d", i, want.parent, v.Parent)
			}
		}
	})

	t.Run("reused vertices keep their earlier arrival", func(t *testing.T) {
		cat := newTestCatalog(t, []domain.Position{
			domain.NewPosition(0, 0, 0),
			domain.NewPosition(1, 0, 0),
			domain.NewPosition(2, 0, 0),
			domain.NewPosition(3.5, 0, 0),
			domain.NewPosition(6, 0, 0),
			domain.NewPosition(10, 0, 0),
			domain.NewPosition(20, 0, 0),
		})
		wait, calls := cyclicWait(30, 10, 20)
		net, err := NewBuilder(cat, DefaultOptions()).GrowBreadthFirst(BreadthFirstParams{
			Target: 7,
			Degree: 3,
			Speed:  travel.Constant(1),
			Wait:   wait,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		assertOrder(t, net, []int{0, 1, 2, 3, 4, 5, 6})
		expected := []struct {
			arrival float64
			parent  int
		}{
			{0, NoParent},
			{1, 0},
			{2, 0},
			{3.5, 0},
			{1 + 30 + 5, 1},      // retry skips star 3, which has a vertex
			{2 + 30 + 8, 2},      // retry skips star 4
			{3.5 + 30 + 16.5, 3}, // retry skips stars 0 and 5
		}
		for i, want := range expected {
			v := net.Vertex(i)
			if v.ArrivalTime != want.arrival {
				t.Errorf("vertex %d: expected arrival %g, got %g", i, want.arrival, v.ArrivalTime)
			}
			if v.Parent != want.parent {
				t.Errorf("vertex %d: expected parent %d, got %d", i, want.parent, v.Parent)
			}
		}

		// Later vertices link back to existing ones without re-queueing them.
		for _, link := range [][2]int{{1, 2}, {3, 2}, {3, 1}} {
			if !net.Linked(link[0], link[1]) {
				t.Errorf("expected link %d-%d", link[0], link[1])
			}
		}
		if net.Iterations != 4 {
			t.Errorf("expected 4 active vertices, got %d", net.Iterations)
		}
		activeAt := []float64{1, 1, 1, 2, 2, 2, 3.5, 3.5, 3.5}
		if len(*calls) != len(activeAt) {
			t.Fatalf("expected waits sampled at %v, got %v", activeAt, *calls)
		}
		for i := range activeAt {
			if (*calls)[i] != activeAt[i] {
				t.Fatalf("expected waits sampled at %v, got %v", activeAt, *calls)
			}
		}
		assertSymmetric(t, net)
		if cat.VisitedCount() != 0 {
			t.Errorf("expected visited flags restored, got %d", cat.VisitedCount())
		}
	})

	t.Run("running out mid-vertex keeps its links", func(t *testing.T) {
		cat := newTestCatalog(t, linePositions(4))
		net, err := NewBuilder(cat, DefaultOptions()).GrowBreadthFirst(BreadthFirstParams{
			Target: 10,
			Degree: 3,
			Speed:  travel.Constant(1),
			Wait:   travel.NoWait(),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !net.Exhausted {
			t.Error("expected exhausted")
		}
		if net.Size() != 4 {
			t.Errorf("expected size 4, got %d", net.Size())
		}
		// Vertex 1 links back to vertex 2 before its last branch finds nothing new.
		if !net.Linked(1, 2) {
			t.Error("expected link 1-2 to survive exhaustion")
		}
		if v := net.Vertex(2); v.ArrivalTime != 2 || v.Parent != 0 {
			t.Errorf("expected vertex 2 at 2 from root, got %g from %d", v.ArrivalTime, v.Parent)
		}
		if net.Iterations != 2 {
			t.Errorf("expected 2 active vertices, got %d", net.Iterations)
		}
		if cat.VisitedCount() != 0 {
			t.Errorf("expected visited flags restored, got %d", cat.VisitedCount())
		}
	})

	t.Run("seeded runs are identical", func(t *testing.T) {
		base := newTestCatalog(t, randomPositions(99, 150))
		build := func() *Network {
			net, err := NewBuilder(base.Clone(), DefaultOptions()).GrowBreadthFirst(DefaultBreadthFirstParams(42))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			return net
		}
		first, second := build(), build()
		assertOrder(t, second, starOrder(first))
		for i, v := range first.Vertices() {
			if second.Vertex(i).ArrivalTime != v.ArrivalTime {
				t.Errorf("vertex %d: arrival differs between runs", i)
			}
		}
		if first.Size() != 100 {
			t.Errorf("expected default target 100, got %d", first.Size())
		}
	})
}

// cyclicWait returns a wait model that repeats waits in order, and the
// times it was sampled at.
func cyclicWait(waits ...float64) (travel.WaitFunc, *[]float64) {
	var calls []float64
	return func(t float64) float64 {
		w := waits[len(calls)%len(waits)]
		calls = append(calls, t)
		return w
	}, &calls
}

func TestGrowBreadthFirstErrors(t *testing.T) {
	t.Run("invalid parameters", func(t *testing.T) {
		cat := newTestCatalog(t, linePositions(3))
		tests := []struct {
			name   string
			params BreadthFirstParams
		}{
			{"zero degree", BreadthFirstParams{Target: 3, Degree: 0, Speed: travel.Constant(1)}},
			{"zero target", BreadthFirstParams{Target: 0, Degree: 2, Speed: travel.Constant(1)}},
			{"no speed", BreadthFirstParams{Target: 3, Degree: 2}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := NewBuilder(cat, DefaultOptions()).GrowBreadthFirst(tt.params)
				if !errors.Is(err, domain.ErrInvalidParameter) {
					t.Errorf("expected ErrInvalidParameter, got %v", err)
				}
			})
		}
	})

	t.Run("negative wait", func(t *testing.T) {
		cat := newTestCatalog(t, linePositions(6))
		net, err := NewBuilder(cat, DefaultOptions()).GrowBreadthFirst(BreadthFirstParams{
			Target: 6,
			Degree: 1,
			Speed:  travel.Constant(1),
			Wait:   travel.ConstantWait(-1),
		})
		if net != nil {
			t.Error("expected no network on failure")
		}
		var waitErr *domain.InvalidWaitError
		if !errors.As(err, &waitErr) {
			t.Fatalf("expected *InvalidWaitError, got %v", err)
		}
		if !errors.Is(err, domain.ErrInvalidWait) {
			t.Error("expected error to match ErrInvalidWait")
		}
		if waitErr.Time != 1 {
			t.Errorf("expected failure at t=1, got %g", waitErr.Time)
		}
		if cat.VisitedCount() != 0 {
			t.Errorf("expected visited flags restored, got %d", cat.VisitedCount())
		}
	})

	t.Run("speed failure", func(t *testing.T) {
		cat := newTestCatalog(t, linePositions(6))
		_, err := NewBuilder(cat, DefaultOptions()).GrowBreadthFirst(BreadthFirstParams{
			Target: 6,
			Degree: 2,
			Speed:  travel.Constant(0),
		})
		if !errors.Is(err, domain.ErrInvalidSpeed) {
			t.Errorf("expected ErrInvalidSpeed, got %v", err)
		}
		for _, s := range cat.Stars() {
			if s.Explored() {
				t.Errorf("star %d marked explored after failed build", s.ID)
			}
		}
	})
}
