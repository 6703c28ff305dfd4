package network

import (
	"webofworlds/internal/domain"
)

// NoParent marks a root vertex
const NoParent = -1

// Vertex is a star that has joined the network
type Vertex struct {
	ID          int     // arena index within the network
	Star        int     // catalog index
	ArrivalTime float64 // simulation time, relative to the build's start date
	Empire      string
	Parent      int // arena index of the vertex that reached this one first, NoParent for roots

	neighbours []int
}

// Neighbours returns the arena indices of linked vertices in link order.
// The slice must not be modified.
func (v *Vertex) Neighbours() []int {
	return v.neighbours
}

// Degree returns the number of wormholes at this vertex
func (v *Vertex) Degree() int {
	return len(v.neighbours)
}

func (v *Vertex) linkedTo(id int) bool {
	for _, n := range v.neighbours {
		if n == id {
			return true
		}
	}
	return false
}

// Network is an arena of vertices with at most one vertex per star
type Network struct {
	Empire    string
	Algorithm domain.Algorithm
	StartDate float64

	// Exhausted is set when the catalog ran out of reachable stars before the
	// requested size; the network is still a valid, smaller result.
	Exhausted bool
	// CutOff is set when a breadth-first build stopped at its end date
	CutOff bool
	// Iterations counts expansion steps taken by the growth algorithm
	Iterations int

	vertices []*Vertex
	byStar   map[int]int
}

func newNetwork(empire string, algorithm domain.Algorithm, startDate float64) *Network {
	return &Network{
		Empire:    empire,
		Algorithm: algorithm,
		StartDate: startDate,
		vertices:  make([]*Vertex, 0),
		byStar:    make(map[int]int),
	}
}

// Size returns the number of vertices
func (n *Network) Size() int {
	return len(n.vertices)
}

// Vertex returns the vertex with the given arena index, or nil
func (n *Network) Vertex(id int) *Vertex {
	if id < 0 || id >= len(n.vertices) {
		return nil
	}
	return n.vertices[id]
}

// Vertices returns all vertices in creation order. The slice must not be modified.
func (n *Network) Vertices() []*Vertex {
	return n.vertices
}

// Root returns the first vertex, or nil for an empty network
func (n *Network) Root() *Vertex {
	return n.Vertex(0)
}

// Lookup returns the vertex for a catalog index
func (n *Network) Lookup(star int) (*Vertex, bool) {
	id, ok := n.byStar[star]
	if !ok {
		return nil, false
	}
	return n.vertices[id], true
}

// Linked reports whether two vertices share a wormhole
func (n *Network) Linked(a, b int) bool {
	va, vb := n.Vertex(a), n.Vertex(b)
	if va == nil || vb == nil {
		return false
	}
	return va.linkedTo(b)
}

// add creates a vertex for star. The caller guarantees the star has none yet.
func (n *Network) add(star int, arrival float64, parent int) *Vertex {
	v := &Vertex{
		ID:          len(n.vertices),
		Star:        star,
		ArrivalTime: arrival,
		Empire:      n.Empire,
		Parent:      parent,
	}
	n.vertices = append(n.vertices, v)
	n.byStar[star] = v.ID
	return v
}

// reach returns the vertex for star, creating it when missing. An existing
// vertex keeps the earlier of the two arrival times, and its parent follows
// the earlier arrival. existed reports whether the vertex was already there.
func (n *Network) reach(star int, arrival float64, parent int) (v *Vertex, existed bool) {
	if v, ok := n.Lookup(star); ok {
		if arrival < v.ArrivalTime {
			v.ArrivalTime = arrival
			v.Parent = parent
		}
		return v, true
	}
	return n.add(star, arrival, parent), false
}

// link adds a symmetric wormhole between a and b. Self links and duplicates
// are ignored; the return value reports whether a new link was made.
func (n *Network) link(a, b *Vertex) bool {
	if a.ID == b.ID || a.linkedTo(b.ID) {
		return false
	}
	a.neighbours = append(a.neighbours, b.ID)
	b.neighbours = append(b.neighbours, a.ID)
	return true
}
