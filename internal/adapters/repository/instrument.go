package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/okian/intervue/internal/domain/progress"
	"github.com/okian/intervue/pkg/metrics"
)

// observe records latency and, for real failures, an error count.
// ErrNotFound and ErrConflict are outcomes, not failures.
func observe(driver, op string, start time.Time, err *error) {
	metrics.RecordStoreLatency(driver, op, float64(time.Since(start).Microseconds())/1000)
	if err != nil && *err != nil && !isOutcome(*err) {
		metrics.RecordStoreError(driver, op)
	}
}

func isOutcome(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict)
}

func encode(doc *progress.UserProgress) ([]byte, error) {
	if doc == nil || doc.UserID == "" {
		return nil, fmt.Errorf("encode progress: missing user id")
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode progress: %w", err)
	}
	return b, nil
}

func decode(b []byte, version int64) (*progress.UserProgress, error) {
	var doc progress.UserProgress
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode progress: %w", err)
	}
	if doc.Categories == nil {
		doc.Categories = []progress.Category{}
	}
	doc.Version = version
	return &doc, nil
}
