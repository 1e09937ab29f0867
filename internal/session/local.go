// Package session resolves the current actor from the two credential sources a
// client may present: a durable server-verified session token and a lightweight
// local session written at login for accounts provisioned while the auth
// provider was unavailable.
package session

import (
	"context"
	"sync"
)

// LocalSession is the ad-hoc credential pair kept in client-local storage: a
// user-type tag and a user identifier. Both fields are written at login and
// cleared together on logout or stale-session detection, never one without the
// other.
type LocalSession struct {
	UserType string
	UserID   string
}

// Complete reports whether both fields are present. An incomplete pair is
// treated the same as no local session at all.
func (s LocalSession) Complete() bool {
	return s.UserType != "" && s.UserID != ""
}

// LocalStore persists local sessions keyed by client identifier. Clear must
// remove both fields atomically; a partial clear would leave an inconsistent
// credential state.
type LocalStore interface {
	Load(ctx context.Context, clientID string) (LocalSession, error)
	Save(ctx context.Context, clientID string, sess LocalSession) error
	Clear(ctx context.Context, clientID string) error
}

// MemoryLocalStore keeps local sessions in process memory. Suitable for tests
// and single-node deployments; production uses the Redis-backed store.
type MemoryLocalStore struct {
	mu       sync.RWMutex
	sessions map[string]LocalSession
}

// NewMemoryLocalStore creates an empty in-memory local session store.
func NewMemoryLocalStore() *MemoryLocalStore {
	return &MemoryLocalStore{sessions: make(map[string]LocalSession)}
}

func (s *MemoryLocalStore) Load(ctx context.Context, clientID string) (LocalSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[clientID], nil
}

func (s *MemoryLocalStore) Save(ctx context.Context, clientID string, sess LocalSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[clientID] = sess
	return nil
}

func (s *MemoryLocalStore) Clear(ctx context.Context, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, clientID)
	return nil
}
