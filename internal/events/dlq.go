package events

import (
	"sync"
	"time"
)

// FailedEvent wraps an event with its error for DLQ storage.
type FailedEvent struct {
	Event     AnalysisEvent
	Error     error
	Attempts  int
	Timestamp time.Time
}

// DeadLetterQueue stores events that failed after retry exhaustion. It keeps
// at most capacity entries, dropping the oldest.
type DeadLetterQueue struct {
	mu       sync.RWMutex
	failed   []FailedEvent
	capacity int
}

// NewDeadLetterQueue creates a DLQ. A capacity below one means unbounded.
func NewDeadLetterQueue(capacity int) *DeadLetterQueue {
	return &DeadLetterQueue{capacity: capacity}
}

// Enqueue adds a failed event to the queue.
func (dlq *DeadLetterQueue) Enqueue(fe FailedEvent) {
	dlq.mu.Lock()
	defer dlq.mu.Unlock()
	dlq.failed = append(dlq.failed, fe)
	if dlq.capacity > 0 && len(dlq.failed) > dlq.capacity {
		dlq.failed = append([]FailedEvent(nil), dlq.failed[len(dlq.failed)-dlq.capacity:]...)
	}
}

// GetAll returns all failed events, oldest first.
func (dlq *DeadLetterQueue) GetAll() []FailedEvent {
	dlq.mu.RLock()
	defer dlq.mu.RUnlock()
	result := make([]FailedEvent, len(dlq.failed))
	copy(result, dlq.failed)
	return result
}

// Clear removes all failed events from the queue.
func (dlq *DeadLetterQueue) Clear() {
	dlq.mu.Lock()
	dlq.failed = nil
	dlq.mu.Unlock()
}

// Count returns the number of failed events in the queue.
func (dlq *DeadLetterQueue) Count() int {
	dlq.mu.RLock()
	defer dlq.mu.RUnlock()
	return len(dlq.failed)
}
