// Package events provides lifecycle notifications for the factorization pool.
package events

import "time"

// EventType represents the type of event
type EventType string

const (
	// EventNumberSubmitted is emitted when a number is accepted into the work queue
	EventNumberSubmitted EventType = "number_submitted"
	// EventNumberRejected is emitted when a number exceeds the configured bound
	EventNumberRejected EventType = "number_rejected"
	// EventNumberFactored is emitted when a worker finishes factoring a number
	EventNumberFactored EventType = "number_factored"
	// EventWorkerTerminated is emitted when a worker consumes its sentinel
	EventWorkerTerminated EventType = "worker_terminated"
	// EventPoolShutdown is emitted once all worker tables have been merged
	EventPoolShutdown EventType = "pool_shutdown"
)

// Event represents a pool event
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	WorkerID  string    `json:"worker_id,omitempty"`
	Data      EventData `json:"data,omitempty"`
}

// EventData contains event-specific data
type EventData struct {
	Number   uint64          `json:"number,omitempty"`
	Factors  map[uint64]uint `json:"factors,omitempty"`
	Factored int             `json:"factored,omitempty"`
	LCM      string          `json:"lcm,omitempty"`
	Bound    uint64          `json:"bound,omitempty"`
}

// NewNumberSubmittedEvent creates a submission event
func NewNumberSubmittedEvent(n uint64) Event {
	return Event{
		Type:      EventNumberSubmitted,
		Timestamp: time.Now(),
		Data:      EventData{Number: n},
	}
}

// NewNumberRejectedEvent creates an out-of-range rejection event
func NewNumberRejectedEvent(n, bound uint64) Event {
	return Event{
		Type:      EventNumberRejected,
		Timestamp: time.Now(),
		Data:      EventData{Number: n, Bound: bound},
	}
}

// NewNumberFactoredEvent creates a factorization event
func NewNumberFactoredEvent(workerID string, n uint64, factors map[uint64]uint) Event {
	return Event{
		Type:      EventNumberFactored,
		Timestamp: time.Now(),
		WorkerID:  workerID,
		Data:      EventData{Number: n, Factors: factors},
	}
}

// NewWorkerTerminatedEvent creates a worker termination event
func NewWorkerTerminatedEvent(workerID string, factored int) Event {
	return Event{
		Type:      EventWorkerTerminated,
		Timestamp: time.Now(),
		WorkerID:  workerID,
		Data:      EventData{Factored: factored},
	}
}

// NewPoolShutdownEvent creates the final merge event
func NewPoolShutdownEvent(factors map[uint64]uint, lcm string) Event {
	return Event{
		Type:      EventPoolShutdown,
		Timestamp: time.Now(),
		Data:      EventData{Factors: factors, LCM: lcm},
	}
}
