package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/intervue/internal/adapters/http/api"
	"github.com/okian/intervue/internal/adapters/http/swagger"
	"github.com/okian/intervue/internal/adapters/llm"
	"github.com/okian/intervue/internal/adapters/mq/notify"
	"github.com/okian/intervue/internal/adapters/repository"
	service "github.com/okian/intervue/internal/app"
	"github.com/okian/intervue/internal/config"
	"github.com/okian/intervue/internal/domain/skill"
	"github.com/okian/intervue/internal/domain/taxonomy"
	"github.com/okian/intervue/pkg/logger"
	"github.com/okian/intervue/pkg/metrics"
	"github.com/spf13/cobra"
)

// HTTP server timeout constants. Writes allow for a slow model call.
const (
	readTimeout            = 15 * time.Second
	writeTimeout           = 90 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	systemMetricsInterval  = 10 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (default)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runServe(cmd)
	},
}

func runServe(cmd *cobra.Command) error {
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := buildService(ctx, cfg, log)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		svc.Stop()
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	server := api.NewServer(svc,
		api.WithMaxUploadBytes(cfg.MaxUploadBytes),
		api.WithMaxBodyBytes(cfg.MaxBodyBytes),
		api.WithLogger(log.Named("http")))
	server.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(mux),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// buildService wires the store, model, and publisher named by c into a
// service. The service owns everything it is given and releases it on Stop.
func buildService(ctx context.Context, c *config.Config, log logger.Logger) (*service.Service, error) {
	tax, err := loadTaxonomy(c)
	if err != nil {
		return nil, err
	}
	mode, err := skill.ParseMode(c.SkillValidation)
	if err != nil {
		return nil, err
	}

	gw, err := openGateway(ctx, c, tax, log)
	if err != nil {
		return nil, err
	}

	provider, err := llm.New(ctx, c.LLM(), log.Named("llm"))
	if err != nil {
		_ = gw.Close()
		return nil, fmt.Errorf("language model: %w", err)
	}

	var publisher notify.Publisher = notify.Nop{}
	if c.AMQPURL != "" {
		p, err := notify.Dial(c.AMQPURL, c.AMQPExchange, log.Named("notify"))
		if err != nil {
			_ = gw.Close()
			return nil, fmt.Errorf("progress notifications: %w", err)
		}
		publisher = p
	}

	return service.New(
		service.WithLogger(log.Named("service")),
		service.WithTaxonomy(tax),
		service.WithGateway(gw),
		service.WithSkillMode(mode),
		service.WithLLM(provider),
		service.WithPublisher(publisher),
		service.WithWorkerCount(c.WorkerCount),
		service.WithQueueSize(c.QueueSize),
		service.WithDedupeSize(c.DedupeSize),
		service.WithShutdownTimeout(c.ShutdownTimeout()),
	), nil
}

func loadTaxonomy(c *config.Config) (*taxonomy.Taxonomy, error) {
	if c.TaxonomyFile == "" {
		return taxonomy.Default(), nil
	}
	tax, err := taxonomy.LoadFile(c.TaxonomyFile)
	if err != nil {
		return nil, fmt.Errorf("load taxonomy: %w", err)
	}
	return tax, nil
}

func openGateway(ctx context.Context, c *config.Config, tax *taxonomy.Taxonomy, log logger.Logger) (*repository.Gateway, error) {
	consistency, err := repository.ParseConsistency(c.Consistency)
	if err != nil {
		return nil, err
	}
	store, err := repository.Open(ctx, c.StoreDriver, c.SQLitePath, c.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", c.StoreDriver, err)
	}
	return repository.NewGateway(store, tax,
		repository.WithConsistency(consistency),
		repository.WithMaxRetries(c.CASMaxRetries),
		repository.WithLogger(log.Named("gateway"))), nil
}

// startSystemMetricsUpdater refreshes runtime gauges until ctx ends.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater refreshes queue and worker gauges until ctx ends.
func startServiceMetricsUpdater(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(ctx, svc)
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}

// updateServiceMetrics reads GetStats, which also refreshes the tracked
// user gauge.
func updateServiceMetrics(ctx context.Context, svc *service.Service) {
	stats := svc.GetStats(ctx)

	if queueLen, ok := stats["queueLength"].(int); ok {
		metrics.UpdateQueueSize(queueLen)
	}
	if workerCount, ok := stats["workerCount"].(int); ok {
		metrics.UpdateWorkerCount(workerCount)
	}
}
