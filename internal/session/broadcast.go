package session

import (
	"context"
	"sync"

	"jobgrid.org/internal/board"
	"jobgrid.org/internal/obs"
)

// EventKind distinguishes the auth-state changes pushed by the provider.
type EventKind int

const (
	// SignedOut means the durable session ended, on this device or another.
	SignedOut EventKind = iota
	// SignedIn means a durable session was established or restored; UserID
	// carries the session subject.
	SignedIn
)

// Event is one auth-state change.
type Event struct {
	Kind   EventKind
	UserID string
}

// Broadcaster fans auth-state events out to all registered subscribers.
type Broadcaster struct {
	mu   sync.RWMutex
	subs map[int]*Subscription
	next int
}

// NewBroadcaster creates a broadcaster with no subscribers.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]*Subscription)}
}

// Subscribe registers fn to receive every subsequent event until the returned
// subscription is released.
func (b *Broadcaster) Subscribe(fn func(Event)) *Subscription {
	sub := &Subscription{fn: fn}
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = sub
	b.mu.Unlock()
	sub.cancel = func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
	return sub
}

// Publish delivers evt to every live subscriber. Delivery is synchronous and
// in no particular order.
func (b *Broadcaster) Publish(evt Event) {
	b.mu.RLock()
	subs := make([]*Subscription, 0, len(b.subs))
	for _, sub := range b.subs {
		subs = append(subs, sub)
	}
	b.mu.RUnlock()
	for _, sub := range subs {
		sub.deliver(evt)
	}
}

// Subscription is a handle on one registered callback. Release is idempotent
// and guarantees the callback never fires afterwards.
type Subscription struct {
	mu       sync.Mutex
	released bool
	fn       func(Event)
	cancel   func()
}

func (s *Subscription) deliver(evt Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return
	}
	s.fn(evt)
}

// Release unregisters the subscription. Safe to call more than once.
func (s *Subscription) Release() {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return
	}
	s.released = true
	s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// ListenerHooks are the page-side reactions to auth-state changes.
type ListenerHooks struct {
	// OnActor replaces the page's in-memory actor; called with nil on sign-out.
	OnActor func(*board.User)
	// OnSignedOut performs the full navigation to the login page.
	OnSignedOut func()
}

// Listener binds a broadcaster subscription to one mounted page: sign-out
// clears the local session (even when the current actor came from the ad-hoc
// path) and discards the actor; sign-in re-resolves the actor and replaces it
// only when the lookup succeeds.
type Listener struct {
	sub *Subscription
}

// Listen establishes the subscription. Callers must Release the listener when
// the page unmounts.
func Listen(b *Broadcaster, users board.UserStore, local LocalStore, clientID string, hooks ListenerHooks) *Listener {
	sub := b.Subscribe(func(evt Event) {
		ctx := context.Background()
		switch evt.Kind {
		case SignedOut:
			// Defensive clear: drop the local session regardless of which
			// path resolved the current actor.
			if err := local.Clear(ctx, clientID); err != nil {
				obs.LogEvent("warn", "local session clear on sign-out failed", map[string]any{"error": err.Error()})
			}
			if hooks.OnActor != nil {
				hooks.OnActor(nil)
			}
			if hooks.OnSignedOut != nil {
				hooks.OnSignedOut()
			}
		case SignedIn:
			actor, err := users.Find(ctx, evt.UserID)
			if err != nil {
				// Transient lookup failure: keep the prior actor, do not
				// force a logout.
				obs.LogEvent("warn", "sign-in actor lookup failed", map[string]any{
					"user_id": evt.UserID,
					"error":   err.Error(),
				})
				return
			}
			if hooks.OnActor != nil {
				hooks.OnActor(actor)
			}
		}
	})
	return &Listener{sub: sub}
}

// Release unsubscribes; no hook fires afterwards. Idempotent.
func (l *Listener) Release() {
	l.sub.Release()
}
