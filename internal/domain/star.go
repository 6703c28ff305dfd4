package domain

import (
	"fmt"
	"strings"
)

// NoNeighbour marks an unset NearestNeighbour index
const NoNeighbour = -1

// Star is a catalog entry. Position is fixed once the star joins a catalog;
// ArrivalTime, Empire and WormholesTo are written by a network build.
type Star struct {
	ID       int64    `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	Position Position `json:"position" yaml:"position"`

	// DistanceFromOrigin is the distance to Sol in light-years
	DistanceFromOrigin float64 `json:"distance" yaml:"distance"`

	// NearestNeighbour is a catalog index, NoNeighbour when unknown.
	NearestNeighbour         int     `json:"nearest_neighbour" yaml:"nearest_neighbour"`
	NearestNeighbourDistance float64 `json:"nearest_neighbour_distance,omitempty" yaml:"nearest_neighbour_distance,omitempty"`

	// Exploration results
	ArrivalTime *float64 `json:"arrival_time,omitempty" yaml:"arrival_time,omitempty"`
	Empire      string   `json:"empire,omitempty" yaml:"empire,omitempty"`
	WormholesTo []int64  `json:"wormholes_to,omitempty" yaml:"wormholes_to,omitempty"`
}

// NewStar creates a star at the given position. DistanceFromOrigin is derived
// from the position.
func NewStar(id int64, name string, pos Position) *Star {
	return &Star{
		ID:                 id,
		Name:               name,
		Position:           pos,
		DistanceFromOrigin: pos.Norm(),
		NearestNeighbour:   NoNeighbour,
	}
}

// DistanceTo returns the distance to another star in light-years
func (s *Star) DistanceTo(other *Star) float64 {
	return s.Position.DistanceTo(other.Position)
}

// Explored reports whether a network build has reached this star
func (s *Star) Explored() bool {
	return s.ArrivalTime != nil
}

// SetExplored records the arrival of an empire at this star
func (s *Star) SetExplored(arrival float64, empire string) {
	t := arrival
	s.ArrivalTime = &t
	s.Empire = empire
}

// ClearExplored removes the arrival time and wormhole list
func (s *Star) ClearExplored() {
	s.ArrivalTime = nil
	s.WormholesTo = nil
}

// ClearPolitical removes the controlling empire
func (s *Star) ClearPolitical() {
	s.Empire = ""
}

// WormholesString renders WormholesTo as "id; id; " for tabular exports
func (s *Star) WormholesString() string {
	var b strings.Builder
	for _, id := range s.WormholesTo {
		fmt.Fprintf(&b, "%d; ", id)
	}
	return b.String()
}

// String returns "id: name"
func (s *Star) String() string {
	return fmt.Sprintf("%d: %s", s.ID, s.Name)
}
