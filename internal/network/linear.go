package network

import (
	"fmt"

	"webofworlds/internal/domain"
	"webofworlds/internal/travel"
)

// LinearParams configures GrowLinear
type LinearParams struct {
	Start      int // catalog index of the first star
	Iterations int // maximum number of stars added after the first
	Speed      travel.SpeedFunc
}

// GrowLinear builds a single chain: from the current star, travel to the
// nearest unvisited star, repeat. The result is a simple path.
func (b *Builder) GrowLinear(p LinearParams) (*Network, error) {
	if p.Speed == nil {
		return nil, fmt.Errorf("linear growth without speed: %w", domain.ErrInvalidParameter)
	}
	return b.run(domain.AlgorithmLinear, p.Start, func(net *Network) error {
		return b.growLinear(net, p)
	})
}

func (b *Builder) growLinear(net *Network, p LinearParams) error {
	current := net.add(p.Start, 0, NoParent)
	b.added(net, current)

	t := 0.0
	for i := 0; i < p.Iterations; i++ {
		b.cat.MarkVisited(current.Star)

		next, d, err := b.cat.NearestUnvisited(current.Star)
		if err != nil {
			return err
		}
		if next < 0 {
			net.Exhausted = true
			return nil
		}
		net.Iterations++

		v := p.Speed(t)
		dt, err := travel.TravelTime(d, v)
		if err != nil {
			return &domain.InvalidSpeedError{Time: t, Speed: v}
		}
		t += dt

		nxt := net.add(next, t, current.ID)
		net.link(current, nxt)
		b.added(net, nxt)
		current = nxt
	}
	return nil
}
