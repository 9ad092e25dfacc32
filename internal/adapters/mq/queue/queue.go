// Package queue buffers observations between the HTTP edge and the worker
// pool.
package queue

import (
	"context"
	"sync"

	"github.com/okian/intervue/internal/domain/model"
	"github.com/okian/intervue/pkg/metrics"
)

const defaultQueueCapacity = 10000

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds an observation. It returns false when the queue is full,
	// closed or ctx is done.
	Enqueue(ctx context.Context, o model.Observation) bool

	// Dequeue returns the channel consumers read from. It is closed once
	// the queue is closed and drained.
	Dequeue() <-chan model.Observation

	// Len returns the number of queued observations.
	Len() int

	// Cap returns the configured capacity.
	Cap() int

	// Close stops accepting observations.
	Close() error

	IsClosed() bool
}

// InMemoryQueue implements Queue with a buffered channel.
type InMemoryQueue struct {
	items    chan model.Observation
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a bounded in-memory queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.items = make(chan model.Observation, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0)
	return q
}

func (q *InMemoryQueue) Enqueue(ctx context.Context, o model.Observation) bool { //nolint:gocritic // value semantics over the channel
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}
	if ctx.Err() != nil {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	}

	select {
	case q.items <- o:
		metrics.RecordQueueEnqueue()
		q.report()
		return true
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return false
	}
}

func (q *InMemoryQueue) Dequeue() <-chan model.Observation { return q.items }

func (q *InMemoryQueue) Len() int {
	n := len(q.items)
	q.report()
	return n
}

func (q *InMemoryQueue) Cap() int { return q.capacity }

// Close is idempotent. Queued observations stay readable.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		close(q.items)
		q.closed = true
	}
	return nil
}

func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

func (q *InMemoryQueue) report() {
	n := len(q.items)
	metrics.UpdateQueueSize(n)
	metrics.UpdateQueueUtilization(float64(n) / float64(q.capacity))
}
