// Package repository persists user progress documents and hosts the gateway
// that guards them against taxonomy drift.
package repository

import (
	"context"

	"github.com/okian/intervue/internal/domain/progress"
)

// AnyVersion makes Put an unconditional upsert.
const AnyVersion int64 = -1

// Store persists one progress document per user id.
//
// Versions start at 1 on first insert and grow by one per successful Put.
type Store interface {
	// Get returns the document for userID or ErrNotFound. The returned
	// document carries the stored version.
	Get(ctx context.Context, userID string) (*progress.UserProgress, error)

	// Put writes doc. With AnyVersion it upserts. With 0 it inserts only if
	// no document exists. With a positive version it updates only if the
	// stored version matches. A failed precondition returns ErrConflict.
	// The new version is returned.
	Put(ctx context.Context, doc *progress.UserProgress, expectedVersion int64) (int64, error)

	// Delete removes the document. Deleting a missing document is not an error.
	Delete(ctx context.Context, userID string) error

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)

	// Driver names the backend for logs and metrics.
	Driver() string

	Close() error
}
