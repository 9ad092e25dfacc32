package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/okian/intervue/internal/domain/progress"
	"github.com/okian/intervue/internal/domain/taxonomy"
	"github.com/okian/intervue/pkg/logger"
	"github.com/okian/intervue/pkg/metrics"
)

// Consistency selects how Update saves a document.
type Consistency string

const (
	// LastWriteWins saves unconditionally. Two concurrent updates for the
	// same user can both read the same document, and the later save drops
	// the earlier change.
	LastWriteWins Consistency = "last_write_wins"
	// CompareAndSwap saves only if the stored version is the one that was
	// loaded, reloading and retrying on conflict.
	CompareAndSwap Consistency = "compare_and_swap"
)

// ParseConsistency maps a config string onto a Consistency.
func ParseConsistency(s string) (Consistency, error) {
	switch Consistency(strings.ToLower(strings.TrimSpace(s))) {
	case "", LastWriteWins:
		return LastWriteWins, nil
	case CompareAndSwap:
		return CompareAndSwap, nil
	default:
		return "", fmt.Errorf("unknown consistency mode %q", s)
	}
}

// Gateway is the only component that reads or writes progress documents.
type Gateway struct {
	store       Store
	tax         *taxonomy.Taxonomy
	consistency Consistency
	maxRetries  int
	log         logger.Logger
}

// NewGateway wraps store. Loaded documents are checked against tax.
func NewGateway(store Store, tax *taxonomy.Taxonomy, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		store:       store,
		tax:         tax,
		consistency: LastWriteWins,
		maxRetries:  5,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.log == nil {
		g.log = logger.Get().Named("gateway")
	}
	return g
}

// Consistency returns the configured save mode.
func (g *Gateway) Consistency() Consistency { return g.consistency }

// Driver names the backing store.
func (g *Gateway) Driver() string { return g.store.Driver() }

// Load returns the user's document, or nil when there is none. A document
// holding any category outside the current taxonomy is deleted and
// reported as absent; nothing of it is kept.
func (g *Gateway) Load(ctx context.Context, userID string) (*progress.UserProgress, error) {
	doc, err := g.store.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		g.log.Error(ctx, "load progress failed", logger.String("user_id", userID), logger.Error(err))
		return nil, &PersistenceError{Op: "load", UserID: userID, Err: err}
	}

	foreign := doc.ForeignCategories(g.tax.IsCategory)
	if len(foreign) == 0 {
		return doc, nil
	}
	g.log.Warn(ctx, "purging progress with categories outside the taxonomy",
		logger.String("user_id", userID),
		logger.Any("categories", foreign))
	metrics.RecordPurge()
	if err := g.store.Delete(ctx, userID); err != nil {
		return nil, &PersistenceError{Op: "purge", UserID: userID, Err: err}
	}
	return nil, nil
}

// Save upserts doc and stores the new version on it. In CompareAndSwap mode
// the write is conditional on doc.Version and may return ErrConflict.
func (g *Gateway) Save(ctx context.Context, doc *progress.UserProgress) error {
	expected := AnyVersion
	if g.consistency == CompareAndSwap {
		expected = doc.Version
	}
	version, err := g.store.Put(ctx, doc, expected)
	if errors.Is(err, ErrConflict) {
		metrics.RecordCASConflict()
		return err
	}
	if err != nil {
		g.log.Error(ctx, "save progress failed", logger.String("user_id", doc.UserID), logger.Error(err))
		return &PersistenceError{Op: "save", UserID: doc.UserID, Err: err}
	}
	doc.Version = version
	return nil
}

// MutateFunc derives the next document from the current one. It receives
// an empty document when the user has none and must not retain cur.
type MutateFunc func(cur *progress.UserProgress) (*progress.UserProgress, error)

// Update loads, mutates and saves the user's document. Errors from mutate
// abort without writing. In CompareAndSwap mode a conflict restarts the
// cycle up to the retry budget, after which ErrConflict is returned.
func (g *Gateway) Update(ctx context.Context, userID string, mutate MutateFunc) (*progress.UserProgress, error) {
	attempts := 1
	if g.consistency == CompareAndSwap {
		attempts += g.maxRetries
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cur, err := g.Load(ctx, userID)
		if err != nil {
			return nil, err
		}
		if cur == nil {
			cur = &progress.UserProgress{UserID: userID, Categories: []progress.Category{}}
		}
		next, err := mutate(cur)
		if err != nil {
			return nil, err
		}
		next.UserID = userID
		next.Version = cur.Version
		lastErr = g.Save(ctx, next)
		if lastErr == nil {
			return next, nil
		}
		if !errors.Is(lastErr, ErrConflict) {
			return nil, lastErr
		}
		g.log.Debug(ctx, "progress version conflict, retrying",
			logger.String("user_id", userID), logger.Int("attempt", i+1))
	}
	return nil, fmt.Errorf("update %s after %d attempts: %w", userID, attempts, lastErr)
}

// Delete removes the user's document.
func (g *Gateway) Delete(ctx context.Context, userID string) error {
	if err := g.store.Delete(ctx, userID); err != nil {
		return &PersistenceError{Op: "delete", UserID: userID, Err: err}
	}
	return nil
}

// Count returns the number of stored documents.
func (g *Gateway) Count(ctx context.Context) (int, error) {
	n, err := g.store.Count(ctx)
	if err != nil {
		return 0, &PersistenceError{Op: "count", Err: err}
	}
	return n, nil
}

// Close releases the store.
func (g *Gateway) Close() error { return g.store.Close() }
