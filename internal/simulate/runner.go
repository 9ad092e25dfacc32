package simulate

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/okian/intervue/pkg/logger"
)

// Run executes a complete simulation against cfg.BaseURL.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	log := logger.Get().Named("simulate")
	stats := &Stats{StartTime: time.Now()}

	if cfg.Users <= 0 || cfg.Observations <= 0 || cfg.Workers <= 0 {
		return nil, errors.New("users, observations and workers must be positive")
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	c := newClient(cfg.BaseURL, cfg.Timeout)

	log.Info(ctx, "starting simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("users", cfg.Users),
		logger.Int("observations", cfg.Observations),
		logger.Int("workers", cfg.Workers),
		logger.Int64("seed", seed))

	if err := c.health(ctx); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}
	domains, err := c.domains(ctx)
	if err != nil {
		return nil, fmt.Errorf("list domains: %w", err)
	}
	if len(domains) == 0 {
		return nil, errors.New("service reported no domains")
	}

	batch := generate(cfg, domains, rng)
	stats.Generated = len(batch)

	users := submit(ctx, c, cfg, batch, stats, log)
	verifyStored(ctx, c, users, stats, log, cfg.Verbose)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	report(ctx, log, stats)
	return stats, ctx.Err()
}

// submit posts the batch with cfg.Workers goroutines and checks each
// returned document. It returns the users that got at least one write.
func submit(ctx context.Context, c *client, cfg *Config, batch []Observation, stats *Stats, log logger.Logger) []string {
	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		users = map[string]bool{}
	)
	jobs := make(chan Observation, cfg.Workers*2)

	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for o := range jobs {
				status, p, err := c.record(ctx, o)

				mu.Lock()
				stats.Submitted++
				switch {
				case err != nil:
					stats.Failed++
				case status == http.StatusOK:
					stats.Successful++
					users[o.UserID] = true
					stats.Verified++
					if problems := check(p); len(problems) > 0 {
						stats.Inconsistent += len(problems)
						stats.Inconsistency = append(stats.Inconsistency, problems...)
						if cfg.Verbose {
							log.Warn(ctx, "inconsistent progress", logger.Any("problems", problems))
						}
					}
				case status >= http.StatusInternalServerError:
					stats.Failed++
				default:
					stats.Rejected++
				}
				mu.Unlock()
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, o := range batch {
			select {
			case <-ctx.Done():
				return
			case jobs <- o:
			}
		}
	}()
	wg.Wait()

	out := make([]string, 0, len(users))
	for u := range users {
		out = append(out, u)
	}
	return out
}

// verifyStored reloads every written user and checks the stored document.
func verifyStored(ctx context.Context, c *client, users []string, stats *Stats, log logger.Logger, verbose bool) {
	for _, u := range users {
		if ctx.Err() != nil {
			return
		}
		p, err := c.progress(ctx, u)
		if errors.Is(err, errNotFound) {
			stats.UsersMissing++
			continue
		}
		if err != nil {
			stats.Failed++
			continue
		}
		stats.UsersChecked++
		if problems := check(p); len(problems) > 0 {
			stats.Inconsistent += len(problems)
			stats.Inconsistency = append(stats.Inconsistency, problems...)
			if verbose {
				log.Warn(ctx, "inconsistent stored progress", logger.Any("problems", problems))
			}
		}
	}
}

func report(ctx context.Context, log logger.Logger, stats *Stats) {
	var perSecond float64
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}
	log.Info(ctx, "simulation finished",
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("successful", stats.Successful),
		logger.Int("rejected", stats.Rejected),
		logger.Int("failed", stats.Failed),
		logger.Int("usersChecked", stats.UsersChecked),
		logger.Int("usersMissing", stats.UsersMissing),
		logger.Int("inconsistent", stats.Inconsistent),
		logger.Duration("duration", stats.Duration),
		logger.Float64("observationsPerSecond", perSecond))
}
