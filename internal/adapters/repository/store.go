// Package repository keeps play sessions in memory.
package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/specious/internal/domain/round"
)

// Session is one player's quiz state. Callers must hold the session lock
// while touching Machine or FilterTaxonID.
type Session struct {
	mu sync.Mutex

	ID        string
	CreatedAt time.Time

	Machine       *round.Machine
	FilterTaxonID int64

	lastSeen atomic.Int64 // unix nanos
}

// Lock serializes access to the session's engine.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session lock.
func (s *Session) Unlock() { s.mu.Unlock() }

// LastSeen is the time the store last handed the session out.
func (s *Session) LastSeen() time.Time { return time.Unix(0, s.lastSeen.Load()) }

func (s *Session) touch(now time.Time) { s.lastSeen.Store(now.UnixNano()) }

// Store provides access to live sessions.
type Store interface {
	// Create registers a new session around machine.
	Create(ctx context.Context, machine *round.Machine, filterTaxonID int64) (*Session, error)

	// Get returns the session by id and marks it as used.
	// Returns ErrNotFound if the session is unknown or expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Delete removes a session. Returns ErrNotFound if it does not exist.
	Delete(ctx context.Context, id string) error

	// Count returns the number of live sessions.
	Count(ctx context.Context) int
}
