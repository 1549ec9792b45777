package cache

import (
	"context"
	"sync"
	"time"

	"github.com/signal-x-studio/bc-migration-sub002/internal/domain/shared"
)

// entry is one processed-item marker with its expiration
type entry struct {
	expiresAt time.Time
}

// MemoryProcessedStore implements ProcessedStore with an in-memory map.
// Suitable for single-process runs and tests; markers do not survive a
// restart, so a resumed run falls back to destination existence checks.
type MemoryProcessedStore struct {
	mu        sync.RWMutex
	entries   map[string]entry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewMemoryProcessedStore creates an in-memory store with a background
// cleanup loop for expired markers
func NewMemoryProcessedStore() *MemoryProcessedStore {
	store := &MemoryProcessedStore{
		entries:  make(map[string]entry),
		stopChan: make(chan struct{}),
	}

	store.wg.Add(1)
	go store.cleanupLoop()

	return store
}

// MarkProcessed marks an item as handled with a TTL.
// Returns true if the item was newly marked, false if already present.
func (s *MemoryProcessedStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, exists := s.entries[key]; exists && time.Now().Before(e.expiresAt) {
		return false, nil
	}

	s.entries[key] = entry{expiresAt: time.Now().Add(ttl)}
	return true, nil
}

// IsProcessed checks if an item has already been handled
func (s *MemoryProcessedStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.entries[key]
	if !exists || time.Now().After(e.expiresAt) {
		return false, nil
	}
	return true, nil
}

// Close stops the cleanup loop. Safe to call multiple times.
func (s *MemoryProcessedStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

// Size returns the number of markers in the store
func (s *MemoryProcessedStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *MemoryProcessedStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *MemoryProcessedStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, key)
		}
	}
}

var _ shared.ProcessedStore = (*MemoryProcessedStore)(nil)
