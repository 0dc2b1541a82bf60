package memory

import (
	"context"
	"sync"
	"time"

	"github.com/vendry-cloud/vendry/internal/domain/geo"
	"github.com/vendry-cloud/vendry/internal/domain/vendor"
	"github.com/vendry-cloud/vendry/internal/store"
)

// Compile-time check: Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store is the in-memory reference vendor store. FetchInBox is a linear
// scan over all records, which satisfies the candidate-source contract at
// small scale and serves as the baseline for index-backed drivers.
type Store struct {
	mu      sync.RWMutex
	vendors map[string]vendor.Record
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{vendors: make(map[string]vendor.Record)}
}

// Ping always succeeds.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() {}

// WaitForReady returns immediately.
func (s *Store) WaitForReady(_ context.Context, _ time.Duration) error { return nil }

// Upsert inserts or replaces a vendor record.
func (s *Store) Upsert(_ context.Context, rec vendor.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vendors[rec.ID()] = rec
	return nil
}

// Get returns a vendor record by ID.
func (s *Store) Get(_ context.Context, id string) (vendor.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.vendors[id]
	if !ok {
		return vendor.Record{}, store.ErrNotFound
	}
	return rec, nil
}

// Delete removes a vendor record.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vendors[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.vendors, id)
	return nil
}

// Count returns the number of stored vendors.
func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vendors), nil
}

// FetchInBox returns every vendor whose location falls inside the box.
func (s *Store) FetchInBox(ctx context.Context, box geo.Box) ([]vendor.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []vendor.Record
	for _, rec := range s.vendors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if box.Contains(rec.Location()) {
			out = append(out, rec)
		}
	}
	return out, nil
}
