package network

import (
	"fmt"

	"webofworlds/internal/domain"
	"webofworlds/internal/travel"
)

// BranchingParams configures GrowBranching
type BranchingParams struct {
	Start       int // catalog index of the root star
	Depth       int // vertices at depth < Depth may branch
	MaxBranches int // children per vertex
	Speed       travel.SpeedFunc
}

// frame is one vertex on the explicit depth-first stack
type frame struct {
	vertex   *Vertex
	depth    int
	branches int
}

// GrowBranching builds a tree depth-first: each vertex links up to
// MaxBranches nearest unvisited stars, and each child is expanded to full
// depth before its next sibling is looked for.
func (b *Builder) GrowBranching(p BranchingParams) (*Network, error) {
	if p.Speed == nil {
		return nil, fmt.Errorf("branching growth without speed: %w", domain.ErrInvalidParameter)
	}
	return b.run(domain.AlgorithmBranching, p.Start, func(net *Network) error {
		return b.growBranching(net, p)
	})
}

func (b *Builder) growBranching(net *Network, p BranchingParams) error {
	root := net.add(p.Start, 0, NoParent)
	b.cat.MarkVisited(root.Star)
	b.added(net, root)

	stack := []frame{{vertex: root}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.depth >= p.Depth || top.branches >= p.MaxBranches {
			stack = stack[:len(stack)-1]
			continue
		}

		parent := top.vertex
		next, d, err := b.cat.NearestUnvisited(parent.Star)
		if err != nil {
			return err
		}
		if next < 0 {
			net.Exhausted = true
			stack = stack[:len(stack)-1]
			continue
		}
		net.Iterations++

		v := p.Speed(parent.ArrivalTime)
		dt, err := travel.TravelTime(d, v)
		if err != nil {
			return &domain.InvalidSpeedError{Time: parent.ArrivalTime, Speed: v}
		}

		child := net.add(next, parent.ArrivalTime+dt, parent.ID)
		net.link(parent, child)
		b.cat.MarkVisited(child.Star)
		b.added(net, child)

		top.branches++
		depth := top.depth + 1
		stack = append(stack, frame{vertex: child, depth: depth})
	}
	return nil
}
