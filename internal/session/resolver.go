package session

import (
	"context"

	"jobgrid.org/internal/board"
	"jobgrid.org/internal/obs"
)

// Credentials carries everything one client presented for a page mount: an
// optional durable session token and the client identifier that keys its
// local session.
type Credentials struct {
	Token    string
	ClientID string
}

// Resolver determines the current actor by checking the durable session first
// and the local ad-hoc session second. The durable session, when present and
// valid, always wins.
type Resolver struct {
	source Source
	users  board.UserStore
	local  LocalStore
}

// NewResolver wires the two credential sources to the user lookup.
func NewResolver(source Source, users board.UserStore, local LocalStore) *Resolver {
	return &Resolver{source: source, users: users, local: local}
}

// Resolve returns the actor for the presented credentials, or nil when neither
// source yields one. It never returns an error: backend failures are logged
// and treated as "no actor", and a local session pointing at a user that no
// longer exists is cleared before returning so the caller can redirect to
// login.
func (r *Resolver) Resolve(ctx context.Context, creds Credentials) *board.User {
	// First try: the durable server-verified session.
	if sess, ok, err := r.source.CurrentSession(ctx, creds.Token); err != nil {
		obs.LogEvent("warn", "durable session lookup failed", map[string]any{"error": err.Error()})
	} else if ok {
		actor, err := r.users.Find(ctx, sess.UserID)
		if err == nil {
			obs.ObserveSessionResolution("durable", "ok")
			return actor
		}
		obs.LogEvent("warn", "durable session subject not found", map[string]any{
			"user_id": sess.UserID,
			"error":   err.Error(),
		})
	}

	// Second try: the local ad-hoc session.
	if creds.ClientID == "" {
		obs.ObserveSessionResolution("none", "anonymous")
		return nil
	}
	local, err := r.local.Load(ctx, creds.ClientID)
	if err != nil {
		obs.LogEvent("warn", "local session load failed", map[string]any{"error": err.Error()})
		obs.ObserveSessionResolution("local", "error")
		return nil
	}
	if !local.Complete() {
		obs.ObserveSessionResolution("none", "anonymous")
		return nil
	}

	actor, err := r.users.Find(ctx, local.UserID)
	if err != nil {
		// Stale local session: the referenced account is gone. Clear both
		// fields together so the client re-authenticates from a clean slate.
		if clearErr := r.local.Clear(ctx, creds.ClientID); clearErr != nil {
			obs.LogEvent("warn", "stale local session clear failed", map[string]any{"error": clearErr.Error()})
		}
		obs.ObserveSessionResolution("local", "stale")
		return nil
	}
	obs.ObserveSessionResolution("local", "ok")
	return actor
}
