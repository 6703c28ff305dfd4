package catalog

import (
	"fmt"
	"math"

	"webofworlds/internal/domain"
)

// treeThreshold is the catalog size from which nearest queries use the k-d tree
const treeThreshold = 64

// Catalog holds stars in insertion order together with per-build visited state.
// A Catalog is not safe for concurrent use; run parallel builds on clones.
type Catalog struct {
	stars   []*domain.Star
	byID    map[int64]int
	visited *VisitedSet
	tree    *kdTree
}

// New creates an empty catalog
func New() *Catalog {
	return &Catalog{
		stars:   make([]*domain.Star, 0),
		byID:    make(map[int64]int),
		visited: NewVisitedSet(0),
	}
}

// FromStars builds a catalog from stars in the given order
func FromStars(stars []*domain.Star) (*Catalog, error) {
	c := New()
	for _, s := range stars {
		if _, err := c.Add(s); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Add appends a star and returns its catalog index
func (c *Catalog) Add(star *domain.Star) (int, error) {
	if star == nil {
		return -1, fmt.Errorf("add star: nil star")
	}
	if _, exists := c.byID[star.ID]; exists {
		return -1, fmt.Errorf("add star: duplicate id %d", star.ID)
	}
	idx := len(c.stars)
	c.stars = append(c.stars, star)
	c.byID[star.ID] = idx
	c.visited.grow(len(c.stars))
	c.tree = nil
	return idx, nil
}

// Len returns the number of stars
func (c *Catalog) Len() int {
	return len(c.stars)
}

// Star returns the star at index i, or nil when out of range
func (c *Catalog) Star(i int) *domain.Star {
	if i < 0 || i >= len(c.stars) {
		return nil
	}
	return c.stars[i]
}

// Stars returns the stars in catalog order. The slice must not be modified.
func (c *Catalog) Stars() []*domain.Star {
	return c.stars
}

// IndexOf returns the catalog index of the star with the given catalog id
func (c *Catalog) IndexOf(id int64) (int, bool) {
	idx, ok := c.byID[id]
	return idx, ok
}

// FindByName returns the index of the first star with exactly this name
func (c *Catalog) FindByName(name string) (int, bool) {
	for i, s := range c.stars {
		if s.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Distance returns the Euclidean distance between two stars in light-years
func (c *Catalog) Distance(a, b int) float64 {
	if a == b {
		return 0
	}
	return c.stars[a].DistanceTo(c.stars[b])
}

// NearestUnvisited returns the unvisited star closest to ref, excluding ref.
// It returns (-1, +Inf, nil) when every other star is visited.
func (c *Catalog) NearestUnvisited(ref int) (int, float64, error) {
	return c.nearest(ref, func(i int) bool {
		return i == ref || c.visited.Has(i)
	})
}

// NearestNeighbour returns the star closest to ref regardless of visited state
func (c *Catalog) NearestNeighbour(ref int) (int, float64, error) {
	return c.nearest(ref, func(i int) bool {
		return i == ref
	})
}

func (c *Catalog) nearest(ref int, skip func(int) bool) (int, float64, error) {
	if len(c.stars) == 0 {
		return -1, math.Inf(1), domain.ErrEmptyCatalog
	}
	if ref < 0 || ref >= len(c.stars) {
		return -1, math.Inf(1), fmt.Errorf("index %d: %w", ref, domain.ErrStarNotFound)
	}

	target := c.stars[ref].Position
	var (
		best int
		d2   float64
	)
	if len(c.stars) >= treeThreshold {
		best, d2 = c.index().nearest(target, skip)
	} else {
		best, d2 = c.scan(target, skip)
	}
	if best < 0 {
		return -1, math.Inf(1), nil
	}
	return best, math.Sqrt(d2), nil
}

// scan is the linear nearest search; it agrees with the k-d tree including ties
func (c *Catalog) scan(target domain.Position, skip func(int) bool) (int, float64) {
	best, bestD2 := -1, math.Inf(1)
	for i, s := range c.stars {
		if skip(i) {
			continue
		}
		d2 := dist2(s.Position, target)
		if closer(d2, i, bestD2, best) {
			best, bestD2 = i, d2
		}
	}
	return best, bestD2
}

func (c *Catalog) index() *kdTree {
	if c.tree == nil {
		pos := make([]domain.Position, len(c.stars))
		for i, s := range c.stars {
			pos[i] = s.Position
		}
		c.tree = buildKDTree(pos)
	}
	return c.tree
}

// AllNearestNeighbours records every star's nearest neighbour and its distance
func (c *Catalog) AllNearestNeighbours() error {
	for i, s := range c.stars {
		nn, d, err := c.NearestNeighbour(i)
		if err != nil {
			return err
		}
		if nn < 0 {
			s.NearestNeighbour = domain.NoNeighbour
			s.NearestNeighbourDistance = 0
			continue
		}
		s.NearestNeighbour = nn
		s.NearestNeighbourDistance = d
	}
	return nil
}

// MarkVisited marks star i as visited
func (c *Catalog) MarkVisited(i int) {
	c.visited.Mark(i)
}

// UnmarkVisited clears the visited mark on star i
func (c *Catalog) UnmarkVisited(i int) {
	c.visited.Unmark(i)
}

// IsVisited reports whether star i is visited
func (c *Catalog) IsVisited(i int) bool {
	return c.visited.Has(i)
}

// VisitedCount returns the number of visited stars
func (c *Catalog) VisitedCount() int {
	return c.visited.Count()
}

// ResetVisited clears the visited mark on every star
func (c *Catalog) ResetVisited() {
	c.visited.Clear()
}

// Snapshot returns a copy of the current visited state
func (c *Catalog) Snapshot() *VisitedSet {
	return c.visited.Clone()
}

// Restore replaces the visited state with a snapshot taken earlier
func (c *Catalog) Restore(s *VisitedSet) {
	restored := s.Clone()
	restored.grow(len(c.stars))
	c.visited = restored
}

// Furthest returns the index of the star furthest from the origin
func (c *Catalog) Furthest() (int, bool) {
	best, maxim := -1, 0.0
	for i, s := range c.stars {
		if s.DistanceFromOrigin > maxim {
			best, maxim = i, s.DistanceFromOrigin
		}
	}
	return best, best >= 0
}

// Subset returns a catalog sharing the first n stars of c.
// Sort the source by the desired trait before taking a subset.
func (c *Catalog) Subset(n int) (*Catalog, error) {
	if n < 0 || n > len(c.stars) {
		return nil, fmt.Errorf("subset of %d stars from catalog of %d", n, len(c.stars))
	}
	return FromStars(c.stars[:n])
}

// LimitByDistance returns a catalog sharing the stars closer to the origin than limit
func (c *Catalog) LimitByDistance(limit float64) *Catalog {
	out := New()
	for _, s := range c.stars {
		if s.DistanceFromOrigin < limit {
			// ids are unique in c, so Add cannot fail
			_, _ = out.Add(s)
		}
	}
	return out
}

// Clone returns a deep copy with independent stars and visited state
func (c *Catalog) Clone() *Catalog {
	out := &Catalog{
		stars:   make([]*domain.Star, len(c.stars)),
		byID:    make(map[int64]int, len(c.byID)),
		visited: c.visited.Clone(),
		tree:    c.tree,
	}
	for i, s := range c.stars {
		cp := *s
		if s.ArrivalTime != nil {
			t := *s.ArrivalTime
			cp.ArrivalTime = &t
		}
		if s.WormholesTo != nil {
			cp.WormholesTo = append([]int64(nil), s.WormholesTo...)
		}
		out.stars[i] = &cp
		out.byID[s.ID] = i
	}
	return out
}

// ClearPolitical removes the controlling empire from every star
func (c *Catalog) ClearPolitical() {
	for _, s := range c.stars {
		s.ClearPolitical()
	}
}

// ClearExplored removes arrival times and wormhole lists from every star
func (c *Catalog) ClearExplored() {
	for _, s := range c.stars {
		s.ClearExplored()
	}
}
