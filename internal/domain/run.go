package domain

import "time"

// Algorithm names a network growth strategy
type Algorithm string

const (
	AlgorithmLinear       Algorithm = "linear"
	AlgorithmBranching    Algorithm = "branching"
	AlgorithmBreadthFirst Algorithm = "breadth_first"
	AlgorithmDirected     Algorithm = "directed"
)

// Valid reports whether a is a known algorithm
func (a Algorithm) Valid() bool {
	switch a {
	case AlgorithmLinear, AlgorithmBranching, AlgorithmBreadthFirst, AlgorithmDirected:
		return true
	}
	return false
}

// Run describes one completed network build
type Run struct {
	ID        string    `json:"id" yaml:"id"`
	Empire    string    `json:"empire" yaml:"empire"`
	Algorithm Algorithm `json:"algorithm" yaml:"algorithm"`
	StartDate float64   `json:"start_date" yaml:"start_date"`
	Size      int       `json:"size" yaml:"size"`
	Exhausted bool      `json:"exhausted" yaml:"exhausted"` // catalog ran out before the target
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// RunVertex is the persisted form of a network vertex
type RunVertex struct {
	StarID      int64   `json:"star_id" yaml:"star_id"`
	ArrivalTime float64 `json:"arrival_time" yaml:"arrival_time"`
	ParentID    *int64  `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
}
