package repository

import (
	"context"
	"sync"
	"time"

	"github.com/okian/intervue/internal/domain/progress"
)

type memRecord struct {
	doc     []byte
	version int64
}

// MemoryStore keeps encoded documents in a map. Documents are stored as
// JSON so callers never share memory with the store.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]memRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]memRecord)}
}

func (s *MemoryStore) Driver() string { return "memory" }

func (s *MemoryStore) Get(_ context.Context, userID string) (doc *progress.UserProgress, err error) {
	defer observe(s.Driver(), "get", time.Now(), &err)
	s.mu.RLock()
	rec, ok := s.docs[userID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return decode(rec.doc, rec.version)
}

func (s *MemoryStore) Put(_ context.Context, doc *progress.UserProgress, expectedVersion int64) (version int64, err error) {
	defer observe(s.Driver(), "put", time.Now(), &err)
	b, err := encode(doc)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, exists := s.docs[doc.UserID]
	switch {
	case expectedVersion == AnyVersion:
	case expectedVersion == 0 && exists:
		return 0, ErrConflict
	case expectedVersion > 0 && (!exists || cur.version != expectedVersion):
		return 0, ErrConflict
	}
	version = cur.version + 1
	s.docs[doc.UserID] = memRecord{doc: b, version: version}
	return version, nil
}

func (s *MemoryStore) Delete(_ context.Context, userID string) (err error) {
	defer observe(s.Driver(), "delete", time.Now(), &err)
	s.mu.Lock()
	delete(s.docs, userID)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs), nil
}

func (s *MemoryStore) Close() error { return nil }
