// Package inmemory is an in-memory implementation of the document store.
// It is safe for concurrent use and broadcasts every save to watchers,
// mimicking the remote store's realtime echo. Data is lost on restart; it
// backs tests and local development without a GCS bucket.
package inmemory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/agusantonetti/smartmoney/internal/store"
)

// Store keeps one serialized document per user.
type Store struct {
	mu       sync.RWMutex
	docs     map[string][]byte
	watchers map[string][]chan *store.Document
	closed   bool
}

// New creates an empty in-memory document store.
func New() *Store {
	return &Store{
		docs:     make(map[string][]byte),
		watchers: make(map[string][]chan *store.Document),
	}
}

// Load implements store.Store.
func (s *Store) Load(ctx context.Context, userID string) (*store.Document, error) {
	s.mu.RLock()
	raw, ok := s.docs[userID]
	s.mu.RUnlock()

	if !ok {
		return nil, store.ErrNotFound
	}

	var doc store.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("inmemory: decode document for %s: %w", userID, err)
	}
	normalized := doc.Normalize()
	return &normalized, nil
}

// Save implements store.Store. The document is serialized so later loads see
// an independent copy, and all watchers of the user receive the echo.
func (s *Store) Save(ctx context.Context, userID string, doc *store.Document) error {
	saved := doc.Normalize()
	if saved.UpdatedAt.IsZero() {
		saved.UpdatedAt = time.Now().UTC()
	}

	raw, err := json.Marshal(saved)
	if err != nil {
		return fmt.Errorf("inmemory: encode document for %s: %w", userID, err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("inmemory: store is closed")
	}
	s.docs[userID] = raw
	watchers := append([]chan *store.Document(nil), s.watchers[userID]...)
	s.mu.Unlock()

	for _, ch := range watchers {
		echo := saved
		select {
		case ch <- &echo:
		default:
			// Slow watcher; drop rather than block the writer. The next save
			// carries the full document anyway.
		}
	}
	return nil
}

// Watch implements store.Store. The returned channel is closed when ctx is
// cancelled.
func (s *Store) Watch(ctx context.Context, userID string) (<-chan *store.Document, error) {
	ch := make(chan *store.Document, 1)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, fmt.Errorf("inmemory: store is closed")
	}
	s.watchers[userID] = append(s.watchers[userID], ch)
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		current := s.watchers[userID]
		for i, w := range current {
			if w == ch {
				s.watchers[userID] = append(current[:i], current[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
		close(ch)
	}()

	return ch, nil
}

// Close implements store.Store.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

var _ store.Store = (*Store)(nil)
