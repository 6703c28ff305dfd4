package network

import (
	"fmt"
	"sort"

	"webofworlds/internal/domain"
)

// DirectedParams configures GrowDirected
type DirectedParams struct {
	Start int     // catalog index of one corridor end
	End   int     // catalog index of the other end
	Limit float64 // maximum distance from the start-end line, light-years
}

// GrowDirected builds a corridor: every star inside the start/end bounding box
// and closer than Limit to the line through both ends joins a single chain.
// Stars are chained in order of distance from Start, so the chain need not
// follow the line geometrically. Corridor vertices all arrive at time 0.
func (b *Builder) GrowDirected(p DirectedParams) (*Network, error) {
	if !(p.Limit > 0) {
		return nil, fmt.Errorf("limit %g: %w", p.Limit, domain.ErrInvalidLimit)
	}
	if b.cat.Len() > 0 {
		if err := b.checkStar(p.End); err != nil {
			return nil, err
		}
	}
	return b.run(domain.AlgorithmDirected, p.Start, func(net *Network) error {
		b.growDirected(net, p)
		return nil
	})
}

func (b *Builder) growDirected(net *Network, p DirectedParams) {
	order := make([]int, b.cat.Len())
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return b.cat.Distance(p.Start, order[i]) < b.cat.Distance(p.Start, order[j])
	})

	from := b.cat.Star(p.Start).Position
	to := b.cat.Star(p.End).Position

	var prev *Vertex
	for _, i := range order {
		net.Iterations++
		if b.cat.IsVisited(i) {
			continue
		}
		pos := b.cat.Star(i).Position
		if !pos.InBox(from, to) || pos.PerpDistance(from, to) >= p.Limit {
			continue
		}

		b.cat.MarkVisited(i)
		parent := NoParent
		if prev != nil {
			parent = prev.ID
		}
		v := net.add(i, 0, parent)
		if prev != nil {
			net.link(prev, v)
		}
		b.added(net, v)
		prev = v
	}
}
