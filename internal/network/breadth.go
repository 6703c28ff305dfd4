package network

import (
	"fmt"
	"math"
	"sort"

	"webofworlds/internal/domain"
	"webofworlds/internal/travel"
)

// BreadthFirstParams configures GrowBreadthFirst
type BreadthFirstParams struct {
	Start  int // catalog index of the home star
	Target int // maximum network size
	Degree int // wormholes attempted per active vertex, at least 1
	Speed  travel.SpeedFunc
	Wait   travel.WaitFunc
	// EndDate, when set, stops expansion from vertices reached after it.
	// It is an absolute date, compared against Options.StartDate.
	EndDate *float64
}

// DefaultBreadthFirstParams returns the parameters of a 100-star, degree-5
// expansion with the default technology curve and launch cadence.
func DefaultBreadthFirstParams(seed uint64) BreadthFirstParams {
	return BreadthFirstParams{
		Target: 100,
		Degree: 5,
		Speed:  travel.DefaultSpeed(),
		Wait:   travel.DefaultWait(seed),
	}
}

// GrowBreadthFirst models an expanding civilisation. Vertices are expanded in
// FIFO order; each active vertex opens up to Degree-1 wormholes to its nearest
// unvisited stars, reusing vertices that already exist, and one more to a star
// that has no vertex yet. Probe launches are staggered by sorted wait times so
// earlier probes reach closer stars.
func (b *Builder) GrowBreadthFirst(p BreadthFirstParams) (*Network, error) {
	if p.Speed == nil {
		return nil, fmt.Errorf("breadth-first growth without speed: %w", domain.ErrInvalidParameter)
	}
	if p.Degree < 1 {
		return nil, fmt.Errorf("degree %d: %w", p.Degree, domain.ErrInvalidParameter)
	}
	if p.Target < 1 {
		return nil, fmt.Errorf("target %d: %w", p.Target, domain.ErrInvalidParameter)
	}
	if p.Wait == nil {
		p.Wait = travel.NoWait()
	}
	return b.run(domain.AlgorithmBreadthFirst, p.Start, func(net *Network) error {
		return b.growBreadthFirst(net, p)
	})
}

func (b *Builder) growBreadthFirst(net *Network, p BreadthFirstParams) error {
	queue := newWorkQueue(p.Target + p.Degree)

	cutoff := math.Inf(1)
	if p.EndDate != nil {
		cutoff = *p.EndDate - b.opts.StartDate
	}

	active := net.add(p.Start, 0, NoParent)
	b.added(net, active)

	for net.Size() < p.Target {
		net.Iterations++

		waits, err := b.sampleWaits(active, p)
		if err != nil {
			return err
		}

		// Open branches may land on stars that already have a vertex.
		for i := 0; i < p.Degree-1 && net.Size() < p.Target; i++ {
			next, d, err := b.cat.NearestUnvisited(active.Star)
			if err != nil {
				return err
			}
			if next < 0 {
				break
			}

			arrival, err := travel.Arrival(active.ArrivalTime, d, waits[i], p.Speed)
			if err != nil {
				return err
			}

			v, existed := net.reach(next, arrival, active.ID)
			b.cat.MarkVisited(next)
			net.link(active, v)
			if !existed {
				b.added(net, v)
				if err := queue.push(v.ID); err != nil {
					return err
				}
			}
		}
		if net.Size() >= p.Target {
			break
		}

		// The last branch must reach a star with no vertex. Every open branch
		// was taken to get here, so it owns the longest wait.
		found, err := b.requireNew(net, queue, active, waits[p.Degree-1], p.Speed)
		if err != nil {
			return err
		}
		if !found {
			net.Exhausted = true
			break
		}

		// Release this vertex's neighbours so later active vertices may link back.
		for _, id := range active.Neighbours() {
			b.cat.UnmarkVisited(net.vertices[id].Star)
		}

		active = b.nextActive(net, queue, cutoff)
		if active == nil {
			break
		}
	}
	return nil
}

// requireNew links active to the nearest star without a vertex, skipping and
// marking stars that already have one. It reports false when none is left.
func (b *Builder) requireNew(net *Network, queue *workQueue, active *Vertex, wait float64, speed travel.SpeedFunc) (bool, error) {
	for {
		next, d, err := b.cat.NearestUnvisited(active.Star)
		if err != nil {
			return false, err
		}
		if next < 0 {
			return false, nil
		}
		b.cat.MarkVisited(next)
		if _, ok := net.Lookup(next); ok {
			continue
		}

		arrival, err := travel.Arrival(active.ArrivalTime, d, wait, speed)
		if err != nil {
			return false, err
		}
		v := net.add(next, arrival, active.ID)
		net.link(active, v)
		b.added(net, v)
		return true, queue.push(v.ID)
	}
}

// nextActive dequeues the next vertex to expand, discarding any reached after
// the cutoff. It returns nil when the queue runs dry.
func (b *Builder) nextActive(net *Network, queue *workQueue, cutoff float64) *Vertex {
	for {
		id, ok := queue.pop()
		if !ok {
			if !net.CutOff {
				net.Exhausted = true
			}
			return nil
		}
		v := net.vertices[id]
		if v.ArrivalTime > cutoff {
			net.CutOff = true
			continue
		}
		return v
	}
}

// sampleWaits draws Degree launch delays, sorted ascending. The home star
// launches its first probes immediately.
func (b *Builder) sampleWaits(active *Vertex, p BreadthFirstParams) ([]float64, error) {
	waits := make([]float64, p.Degree)
	if active.Parent == NoParent {
		return waits, nil
	}
	for i := range waits {
		w := p.Wait(active.ArrivalTime)
		if math.IsNaN(w) || w < 0 {
			return nil, &domain.InvalidWaitError{Time: active.ArrivalTime, Wait: w}
		}
		waits[i] = w
	}
	sort.Float64s(waits)
	return waits, nil
}
