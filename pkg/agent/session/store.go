package session

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned when a session ID has no stored snapshot.
var ErrNotFound = errors.New("session: not found")

// Store persists session snapshots between dispatch calls.
type Store interface {
	// Get retrieves a session by ID. Returns ErrNotFound if absent.
	Get(ctx context.Context, id string) (*Session, error)

	// Put stores a session snapshot, overwriting any existing one.
	Put(ctx context.Context, s *Session) error

	// Delete removes a session. No error if the ID does not exist.
	Delete(ctx context.Context, id string) error

	// Close releases resources held by the store.
	Close() error
}

// Locker serializes dispatch per session ID. Operations on one ledger
// are read-modify-write, so a host handling concurrent utterances for
// the same conversation must hold the session's lock across
// load-dispatch-store. Independent conversations never contend.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLocker creates an empty per-session lock set.
func NewLocker() *Locker {
	return &Locker{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the lock for a session ID and returns its unlock
// function.
func (l *Locker) Lock(id string) (unlock func()) {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()
	m.Lock()
	return m.Unlock
}
