package network

import (
	"math"
	"strings"
)

// FurthestOutpost returns the vertex whose star is furthest from the origin
func (n *Network) FurthestOutpost(src StarSource) *Vertex {
	var best *Vertex
	bestD := -1.0
	for _, v := range n.vertices {
		if d := src.Star(v.Star).DistanceFromOrigin; d > bestD {
			best, bestD = v, d
		}
	}
	return best
}

// LastOutpost returns the vertex with the latest arrival time
func (n *Network) LastOutpost() *Vertex {
	var best *Vertex
	for _, v := range n.vertices {
		if best == nil || v.ArrivalTime > best.ArrivalTime {
			best = v
		}
	}
	return best
}

// FindByName returns the vertex whose star is called name, case-insensitively
func (n *Network) FindByName(src StarSource, name string) (*Vertex, bool) {
	for _, v := range n.vertices {
		if strings.EqualFold(src.Star(v.Star).Name, name) {
			return v, true
		}
	}
	return nil, false
}

// NearestVertex returns the closest other vertex to v and its distance.
// It returns nil and +Inf when v is alone.
func (n *Network) NearestVertex(src StarSource, v *Vertex) (*Vertex, float64) {
	var best *Vertex
	bestD := math.Inf(1)
	for _, o := range n.vertices {
		if o.ID == v.ID {
			continue
		}
		if d := src.Distance(v.Star, o.Star); d < bestD {
			best, bestD = o, d
		}
	}
	return best, bestD
}
