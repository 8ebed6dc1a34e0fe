package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/specious/internal/domain/round"
	"github.com/okian/specious/pkg/metrics"
)

// Eviction reasons used as metric labels.
const (
	evictCapacity = "capacity"
	evictIdle     = "idle"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore is a map-backed Store. Sessions die with the process.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	maxSessions   int
	idleTTL       time.Duration
	sweepInterval time.Duration
	now           func() time.Time

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore constructs a store and, when an idle TTL is set, starts the
// background sweeper. The sweeper stops when ctx is done or Close is called.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		sessions:      make(map[string]*Session),
		sweepInterval: time.Minute,
		now:           time.Now,
		stopChan:      make(chan struct{}),
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	if s.idleTTL > 0 {
		s.startSweeper(ctx)
	}
	metrics.UpdateActiveSessions(0)

	return s
}

func (s *MemoryStore) startSweeper(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}

// Close stops the sweeper goroutine.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

// Create implements Store.Create.
func (s *MemoryStore) Create(_ context.Context, machine *round.Machine, filterTaxonID int64) (*Session, error) {
	if machine == nil {
		return nil, ErrNilMachine
	}

	now := s.now()
	sess := &Session{
		ID:            uuid.NewString(),
		CreatedAt:     now,
		Machine:       machine,
		FilterTaxonID: filterTaxonID,
	}
	sess.touch(now)

	s.mu.Lock()
	if s.maxSessions > 0 {
		for len(s.sessions) >= s.maxSessions {
			s.evictLRULocked()
		}
	}
	s.sessions[sess.ID] = sess
	count := len(s.sessions)
	s.mu.Unlock()

	metrics.UpdateActiveSessions(count)
	return sess, nil
}

// evictLRULocked drops the least recently used session. Caller holds s.mu.
func (s *MemoryStore) evictLRULocked() {
	var (
		oldestID string
		oldest   int64
	)
	for id, sess := range s.sessions {
		seen := sess.lastSeen.Load()
		if oldestID == "" || seen < oldest || (seen == oldest && id < oldestID) {
			oldestID, oldest = id, seen
		}
	}
	if oldestID == "" {
		return
	}
	delete(s.sessions, oldestID)
	metrics.RecordSessionEvicted(evictCapacity)
}

// Get implements Store.Get.
func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	now := s.now()
	if s.expired(sess, now) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	sess.touch(now)
	return sess, nil
}

// Delete implements Store.Delete.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	count := len(s.sessions)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	metrics.UpdateActiveSessions(count)
	return nil
}

// Count implements Store.Count.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes idle sessions and returns how many were dropped.
func (s *MemoryStore) Sweep() int {
	if s.idleTTL <= 0 {
		return 0
	}
	now := s.now()

	s.mu.Lock()
	removed := 0
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	count := len(s.sessions)
	s.mu.Unlock()

	for range removed {
		metrics.RecordSessionEvicted(evictIdle)
	}
	metrics.UpdateActiveSessions(count)
	return removed
}

func (s *MemoryStore) expired(sess *Session, now time.Time) bool {
	return s.idleTTL > 0 && now.Sub(sess.LastSeen()) > s.idleTTL
}
