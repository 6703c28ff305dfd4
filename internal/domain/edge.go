package domain

import (
	"crypto/sha256"
	"fmt"
)

// Wormhole is an undirected link between two stars, identified by catalog ID
type Wormhole struct {
	ID     string  `json:"id" yaml:"id"`
	FromID int64   `json:"from_id" yaml:"from_id"`
	ToID   int64   `json:"to_id" yaml:"to_id"`
	Length float64 `json:"length" yaml:"length"`
}

// NewWormhole creates a wormhole between two stars
func NewWormhole(fromID, toID int64, length float64) *Wormhole {
	w := &Wormhole{
		FromID: fromID,
		ToID:   toID,
		Length: length,
	}
	w.ID = w.GenerateID()
	return w
}

// GenerateID creates a deterministic ID for the wormhole based on endpoints
func (w *Wormhole) GenerateID() string {
	// Normalize endpoints for consistent ID
	from, to := w.FromID, w.ToID
	if from > to {
		from, to = to, from
	}

	key := fmt.Sprintf("%d-%d-wormhole", from, to)
	hash := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", hash[:8])
}

// Connects reports whether the wormhole has the given star as an endpoint
func (w *Wormhole) Connects(id int64) bool {
	return w.FromID == id || w.ToID == id
}
