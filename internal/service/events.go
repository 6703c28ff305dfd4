package service

import "sync"

// EventType defines the type of event
type EventType string

const (
	EventRunStarted  EventType = "run_started"
	EventRunFinished EventType = "run_finished"
	EventRunFailed   EventType = "run_failed"
	EventRunDeleted  EventType = "run_deleted"
	EventStarsLoaded EventType = "stars_loaded"
)

// Event represents an event that occurred in the system
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload,omitempty"`
}

// RunEvent is the payload of run lifecycle events
type RunEvent struct {
	RunID     string  `json:"run_id"`
	Empire    string  `json:"empire"`
	Algorithm string  `json:"algorithm"`
	Size      int     `json:"size,omitempty"`
	Exhausted bool    `json:"exhausted,omitempty"`
	LastDate  float64 `json:"last_date,omitempty"`
	Error     string  `json:"error,omitempty"`
}

// EventBus allows publishing and subscribing to events. It is safe for
// concurrent use; empire runs publish from their own goroutines.
type EventBus struct {
	mu          sync.RWMutex
	subscribers []chan<- Event
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make([]chan<- Event, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (eb *EventBus) Subscribe(ch chan<- Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.subscribers = append(eb.subscribers, ch)
}

// Unsubscribe removes a subscriber. The channel is not closed.
func (eb *EventBus) Unsubscribe(ch chan<- Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	for i, sub := range eb.subscribers {
		if sub == ch {
			eb.subscribers = append(eb.subscribers[:i], eb.subscribers[i+1:]...)
			return
		}
	}
}

// Publish sends an event to all subscribers
func (eb *EventBus) Publish(event Event) {
	if eb == nil {
		return
	}
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	for _, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber is slow, skip
		}
	}
}
