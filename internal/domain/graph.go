package domain

import "fmt"

// Graph is the derived view for external renderers
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// GraphNode represents a reached star in the visualization
type GraphNode struct {
	ID          int64    `json:"id"`
	Label       string   `json:"label"`
	Group       string   `json:"group"` // controlling empire
	Title       string   `json:"title"` // Tooltip content
	Position    Position `json:"position"`
	ArrivalTime float64  `json:"arrival_time"`
	Neighbours  []int64  `json:"neighbours"`
}

// GraphEdge represents a wormhole in the visualization
type GraphEdge struct {
	ID     string  `json:"id"`
	From   int64   `json:"from"`
	To     int64   `json:"to"`
	Label  string  `json:"label"` // "4.2 ly"
	Length float64 `json:"length"`
}

// DeriveGraph converts a Fragment to a renderer-friendly Graph
func DeriveGraph(f *Fragment) *Graph {
	graph := &Graph{
		Nodes: make([]GraphNode, 0, len(f.Stars)),
		Edges: make([]GraphEdge, 0, len(f.Wormholes)),
	}

	neighbours := make(map[int64][]int64, len(f.Stars))
	for _, w := range f.Wormholes {
		neighbours[w.FromID] = append(neighbours[w.FromID], w.ToID)
		neighbours[w.ToID] = append(neighbours[w.ToID], w.FromID)
	}

	arrivals := make(map[int64]float64, len(f.Vertices))
	for _, v := range f.Vertices {
		arrivals[v.StarID] = v.ArrivalTime
	}

	for _, star := range f.Stars {
		arrival, ok := arrivals[star.ID]
		if !ok && star.ArrivalTime != nil {
			arrival = *star.ArrivalTime
		}
		graph.Nodes = append(graph.Nodes, GraphNode{
			ID:          star.ID,
			Label:       star.Name,
			Group:       star.Empire,
			Title:       buildTooltip(star, arrival),
			Position:    star.Position,
			ArrivalTime: arrival,
			Neighbours:  neighbours[star.ID],
		})
	}

	for _, w := range f.Wormholes {
		graph.Edges = append(graph.Edges, GraphEdge{
			ID:     w.ID,
			From:   w.FromID,
			To:     w.ToID,
			Label:  lengthLabel(w.Length),
			Length: w.Length,
		})
	}

	return graph
}

func buildTooltip(star Star, arrival float64) string {
	tooltip := fmt.Sprintf("%s\n%.2f ly from Sol\nreached %.1f", star.Name, star.DistanceFromOrigin, arrival)
	if star.Empire != "" {
		tooltip += "\n" + star.Empire
	}
	return tooltip
}

func lengthLabel(ly float64) string {
	if ly >= 100 {
		return fmt.Sprintf("%.0f ly", ly)
	}
	return fmt.Sprintf("%.1f ly", ly)
}
