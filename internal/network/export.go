package network

import (
	"sort"

	"webofworlds/internal/domain"
)

// StarSource resolves catalog indices to stars
type StarSource interface {
	Star(i int) *domain.Star
	Distance(a, b int) float64
}

// Commit writes the network onto its stars: each reached star records its
// absolute arrival date, the empire and the ids of the stars it links to.
func (n *Network) Commit(src StarSource) {
	for _, v := range n.vertices {
		star := src.Star(v.Star)
		if star == nil {
			continue
		}
		star.SetExplored(n.StartDate+v.ArrivalTime, v.Empire)
		star.WormholesTo = make([]int64, 0, len(v.neighbours))
		for _, id := range v.neighbours {
			star.WormholesTo = append(star.WormholesTo, src.Star(n.vertices[id].Star).ID)
		}
	}
}

// Edges returns every wormhole once, ordered by the lower vertex and then by
// link order
func (n *Network) Edges(src StarSource) []domain.Wormhole {
	edges := make([]domain.Wormhole, 0, len(n.vertices))
	for _, v := range n.vertices {
		from := src.Star(v.Star)
		for _, id := range v.neighbours {
			if id < v.ID {
				continue
			}
			other := n.vertices[id]
			w := domain.NewWormhole(from.ID, src.Star(other.Star).ID, src.Distance(v.Star, other.Star))
			edges = append(edges, *w)
		}
	}
	return edges
}

// Fragment returns the reached stars, vertices and wormholes for export.
// Arrival times are absolute dates.
func (n *Network) Fragment(src StarSource, run domain.Run) *domain.Fragment {
	run.Empire = n.Empire
	run.Algorithm = n.Algorithm
	run.StartDate = n.StartDate
	run.Size = n.Size()
	run.Exhausted = n.Exhausted

	f := domain.NewFragment(run)
	for _, v := range n.vertices {
		star := src.Star(v.Star)
		f.AddStar(*star)

		rv := domain.RunVertex{
			StarID:      star.ID,
			ArrivalTime: n.StartDate + v.ArrivalTime,
		}
		if v.Parent != NoParent {
			pid := src.Star(n.vertices[v.Parent].Star).ID
			rv.ParentID = &pid
		}
		f.AddVertex(rv)
	}
	for _, w := range n.Edges(src) {
		f.AddWormhole(w)
	}
	return f
}

// Graph returns the renderer view of the network
func (n *Network) Graph(src StarSource, run domain.Run) *domain.Graph {
	return domain.DeriveGraph(n.Fragment(src, run))
}

// ByArrival returns the vertices ordered by arrival time, ties by creation
func (n *Network) ByArrival() []*Vertex {
	out := make([]*Vertex, len(n.vertices))
	copy(out, n.vertices)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ArrivalTime < out[j].ArrivalTime
	})
	return out
}
