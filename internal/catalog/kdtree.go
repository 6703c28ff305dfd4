package catalog

import (
	"math"
	"sort"

	"webofworlds/internal/domain"
)

// kdNode is an arena entry; left and right are arena indices, -1 for none
type kdNode struct {
	star        int
	axis        int
	left, right int
}

// kdTree indexes star positions for nearest-neighbour queries. Positions are
// immutable, so the tree stays valid until a star is added.
type kdTree struct {
	nodes []kdNode
	root  int
	pos   []domain.Position
}

func buildKDTree(pos []domain.Position) *kdTree {
	t := &kdTree{
		nodes: make([]kdNode, 0, len(pos)),
		pos:   pos,
	}
	indices := make([]int, len(pos))
	for i := range indices {
		indices[i] = i
	}
	t.root = t.build(indices, 0)
	return t
}

func (t *kdTree) build(indices []int, depth int) int {
	if len(indices) == 0 {
		return -1
	}
	axis := depth % 3
	sort.SliceStable(indices, func(a, b int) bool {
		return coord(t.pos[indices[a]], axis) < coord(t.pos[indices[b]], axis)
	})
	mid := len(indices) / 2

	id := len(t.nodes)
	t.nodes = append(t.nodes, kdNode{star: indices[mid], axis: axis})

	left := t.build(indices[:mid], depth+1)
	right := t.build(indices[mid+1:], depth+1)
	t.nodes[id].left = left
	t.nodes[id].right = right
	return id
}

// nearest returns the closest star to target for which skip is false, with its
// squared distance. Equal distances resolve to the lower catalog index.
func (t *kdTree) nearest(target domain.Position, skip func(int) bool) (int, float64) {
	best, bestD2 := -1, math.Inf(1)

	var search func(n int)
	search = func(n int) {
		if n < 0 {
			return
		}
		node := t.nodes[n]
		p := t.pos[node.star]
		if !skip(node.star) {
			d2 := dist2(p, target)
			if closer(d2, node.star, bestD2, best) {
				best, bestD2 = node.star, d2
			}
		}

		diff := coord(target, node.axis) - coord(p, node.axis)
		near, far := node.left, node.right
		if diff > 0 {
			near, far = far, near
		}
		search(near)
		if diff*diff <= bestD2 {
			search(far)
		}
	}
	search(t.root)

	return best, bestD2
}

func coord(p domain.Position, axis int) float64 {
	switch axis {
	case 0:
		return p.X
	case 1:
		return p.Y
	default:
		return p.Z
	}
}

func dist2(a, b domain.Position) float64 {
	d := a.Sub(b)
	return d.Dot(d)
}

// closer orders candidates by squared distance, then catalog index
func closer(d2 float64, idx int, bestD2 float64, best int) bool {
	if d2 != bestD2 {
		return d2 < bestD2
	}
	return best < 0 || idx < best
}
