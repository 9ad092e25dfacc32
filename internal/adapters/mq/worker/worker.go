// Package worker drains queued observations into the progress store.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/intervue/internal/domain/model"
	"github.com/okian/intervue/pkg/logger"
	"github.com/okian/intervue/pkg/metrics"
)

const defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()

// Applier folds one observation into persisted progress.
type Applier interface {
	ApplyObservation(ctx context.Context, o model.Observation) error
}

// Queue is the consumer side of the observation queue.
type Queue interface {
	Dequeue() <-chan model.Observation
	Close() error
}

// InMemoryWorker reads observations until the queue closes or it is
// stopped.
type InMemoryWorker struct {
	queue   Queue
	applier Applier
	name    string
	logger  logger.Logger

	processed atomic.Int64
	failed    atomic.Int64

	stop chan struct{}
	done chan struct{}
}

// NewInMemoryWorker creates a worker.
func NewInMemoryWorker(q Queue, a Applier, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:   q,
		applier: a,
		name:    "worker",
		logger:  logger.Get(),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run processes observations until the queue is closed and drained, ctx is
// done or Stop is called.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	items := w.queue.Dequeue()
	for {
		select {
		case <-w.stop:
			return
		default:
		}
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case o, ok := <-items:
			if !ok {
				return
			}
			metrics.RecordQueueDequeue()
			w.process(ctx, o)
		}
	}
}

func (w *InMemoryWorker) process(ctx context.Context, o model.Observation) { //nolint:gocritic // value semantics over the channel
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	if err := w.applier.ApplyObservation(ctx, o); err != nil {
		w.failed.Add(1)
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "apply_error")
		w.logger.Error(ctx, "observation not applied",
			logger.String("observationId", o.ID),
			logger.String("userId", o.UserID),
			logger.Error(err),
		)
		return
	}
	w.processed.Add(1)
}

// Stop asks the worker to return without draining and waits for it.
func (w *InMemoryWorker) Stop(ctx context.Context) error {
	select {
	case <-w.stop:
	default:
		close(w.stop)
	}
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("stop %s: %w", w.name, ctx.Err())
	}
}

// Pool runs a fixed set of workers over one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates workerCount workers. A non-positive count scales with
// the CPU count.
func NewPool(workerCount int, q Queue, a Applier, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		p.workers[i] = NewInMemoryWorker(q, a, wopts...)
	}
	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Processed returns how many observations were applied and how many failed.
func (p *Pool) Processed() (ok, failed int64) {
	for _, w := range p.workers {
		ok += w.processed.Load()
		failed += w.failed.Load()
	}
	return ok, failed
}

// Shutdown closes the queue and lets the workers drain it. Workers still
// busy when ctx ends are stopped and the remaining backlog is dropped.
func (p *Pool) Shutdown(ctx context.Context) error {
	if err := p.queue.Close(); err != nil {
		p.logger.Error(ctx, "error closing queue", logger.Error(err))
	}
	var timedOut int
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-ctx.Done():
			stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			if err := w.Stop(stopCtx); err != nil {
				timedOut++
			}
			cancel()
		}
	}
	if timedOut > 0 {
		p.logger.Warn(ctx, "workers did not stop in time", logger.Int("count", timedOut))
		return fmt.Errorf("%d workers did not stop in time", timedOut)
	}
	return nil
}
