// Package service wires the progress core, the interview coach and the
// asynchronous observation pipeline behind the HTTP API.
package service

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/okian/intervue/internal/adapters/llm"
	"github.com/okian/intervue/internal/adapters/mq/notify"
	eventqueue "github.com/okian/intervue/internal/adapters/mq/queue"
	workerpool "github.com/okian/intervue/internal/adapters/mq/worker"
	"github.com/okian/intervue/internal/adapters/repository"
	"github.com/okian/intervue/internal/domain/dedupe"
	"github.com/okian/intervue/internal/domain/interview"
	"github.com/okian/intervue/internal/domain/progress"
	"github.com/okian/intervue/internal/domain/skill"
	"github.com/okian/intervue/internal/domain/taxonomy"
	"github.com/okian/intervue/pkg/logger"
	"github.com/okian/intervue/pkg/metrics"
)

const defaultShutdownTimeout = 10 * time.Second

// Service implements the API dependencies.
type Service struct {
	mu sync.RWMutex

	// Core
	tax        *taxonomy.Taxonomy
	validator  *skill.Validator
	aggregator *progress.Aggregator
	gateway    *repository.Gateway
	deduper    dedupe.Deduper
	publisher  notify.Publisher

	// Coach
	provider    llm.Provider
	evaluator   *interview.Evaluator
	categorizer *interview.Categorizer
	questions   *interview.QuestionGenerator
	flashcards  *interview.FlashcardGenerator

	// Pipeline, built by Start
	queue *eventqueue.InMemoryQueue
	pool  *workerpool.Pool

	// Configuration
	workerCount     int
	queueSize       int
	dedupeSize      int
	skillMode       skill.Mode
	clock           func() time.Time
	shutdownTimeout time.Duration

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the observation queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many observation ids are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTaxonomy replaces the built-in taxonomy.
func WithTaxonomy(t *taxonomy.Taxonomy) Option {
	return func(s *Service) {
		if t != nil {
			s.tax = t
		}
	}
}

// WithGateway sets the progress gateway. Without one the service keeps
// progress in memory.
func WithGateway(g *repository.Gateway) Option {
	return func(s *Service) { s.gateway = g }
}

// WithSkillMode selects strict or permissive skill validation.
func WithSkillMode(m skill.Mode) Option {
	return func(s *Service) {
		if m != "" {
			s.skillMode = m
		}
	}
}

// WithLLM sets the model provider used by the coach.
func WithLLM(p llm.Provider) Option {
	return func(s *Service) { s.provider = p }
}

// WithPublisher sets where progress events are announced.
func WithPublisher(p notify.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithClock overrides time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.clock = now
		}
	}
}

// WithShutdownTimeout bounds how long Stop waits for the queue to drain.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

// New constructs a Service. The core is usable immediately; Start brings
// up the asynchronous pipeline.
func New(opts ...Option) *Service {
	s := &Service{
		tax:             taxonomy.Default(),
		workerCount:     runtime.NumCPU() * 2,
		queueSize:       10_000,
		dedupeSize:      50_000,
		skillMode:       skill.Strict,
		clock:           time.Now,
		shutdownTimeout: defaultShutdownTimeout,
		publisher:       notify.Nop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.gateway == nil {
		s.gateway = repository.NewGateway(repository.NewMemoryStore(), s.tax,
			repository.WithLogger(s.logger.Named("gateway")))
	}
	if s.provider == nil {
		s.provider = llm.NewMockProvider()
	}

	s.validator = skill.NewValidator(s.tax, s.skillMode)
	s.aggregator = progress.NewAggregator(s.tax, progress.WithClock(s.clock))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))

	s.evaluator = interview.NewEvaluator(s.provider, s.logger)
	s.categorizer = interview.NewCategorizer(s.provider, s.logger)
	s.questions = interview.NewQuestionGenerator(s.provider, s.logger)
	s.flashcards = interview.NewFlashcardGenerator(s.provider, s.logger)
	return s
}

// Start creates the observation queue and worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s,
		workerpool.WithLogger(s.logger.Named("worker")))
	// Workers outlive the request that started the service.
	s.pool.Start(context.WithoutCancel(ctx))
	s.started = true

	s.logger.Info(ctx, "progress service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.String("store", s.gateway.Driver()),
		logger.String("consistency", string(s.gateway.Consistency())),
		logger.String("skillMode", string(s.skillMode)),
		logger.String("model", s.provider.ModelID()),
	)
	return nil
}

// Stop drains queued observations, then releases the store and the
// publisher.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := context.Background()
	if s.started {
		s.logger.Info(ctx, "stopping progress service")
		drainCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
		if err := s.pool.Shutdown(drainCtx); err != nil {
			s.logger.Warn(ctx, "queue not fully drained", logger.Error(err))
		}
		cancel()
		s.started = false
	}
	if err := s.publisher.Close(); err != nil {
		s.logger.Warn(ctx, "close publisher", logger.Error(err))
	}
	if err := s.gateway.Close(); err != nil {
		s.logger.Warn(ctx, "close store", logger.Error(err))
	}
	s.logger.Info(ctx, "progress service stopped")
}

// Taxonomy returns the taxonomy in use.
func (s *Service) Taxonomy() *taxonomy.Taxonomy { return s.tax }

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"dedupeSeen":  s.deduper.Size(),
		"store":       s.gateway.Driver(),
		"consistency": s.gateway.Consistency(),
		"skillMode":   s.skillMode,
		"model":       s.provider.ModelID(),
	}
	if n, err := s.gateway.Count(ctx); err == nil {
		stats["trackedUsers"] = n
		metrics.UpdateTrackedUsers(n)
	} else {
		s.logger.Warn(ctx, "count progress documents", logger.Error(err))
	}
	if s.started {
		stats["queueLength"] = s.queue.Len()
		ok, failed := s.pool.Processed()
		stats["processed"] = ok
		stats["failed"] = failed
	}
	return stats
}
