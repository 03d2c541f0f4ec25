// Package auth carries the authentication-session signal the sync
// coordinator reacts to. The identity provider itself is external; this is
// only the in-process view of "who is signed in right now".
package auth

import (
	"sync"

	"github.com/google/uuid"
)

type Session struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Source is the session observable: subscribers receive the new session on
// sign-in and nil on sign-out.
type Source interface {
	Current() *Session
	Subscribe(fn func(*Session)) func()
}

// Broker is the in-process Source implementation, driven by the HTTP API's
// session endpoints. Each sign-in mints a bearer token for the session; the
// token dies with the session on sign-out.
type Broker struct {
	mu      sync.Mutex
	current *Session
	token   string
	subs    map[int]func(*Session)
	nextSub int
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[int]func(*Session))}
}

func (b *Broker) Current() *Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return nil
	}
	s := *b.current
	return &s
}

// SignIn installs the session and returns its bearer token.
func (b *Broker) SignIn(s Session) string {
	b.mu.Lock()
	b.current = &s
	b.token = uuid.NewString()
	token := b.token
	fns := b.subscribersLocked()
	b.mu.Unlock()

	for _, fn := range fns {
		fn(&s)
	}
	return token
}

func (b *Broker) SignOut() {
	b.mu.Lock()
	b.current = nil
	b.token = ""
	fns := b.subscribersLocked()
	b.mu.Unlock()

	for _, fn := range fns {
		fn(nil)
	}
}

// Resolve returns the session a token belongs to, or nil for an unknown or
// stale token.
func (b *Broker) Resolve(token string) *Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	if token == "" || b.current == nil || token != b.token {
		return nil
	}
	s := *b.current
	return &s
}

func (b *Broker) Subscribe(fn func(*Session)) func() {
	b.mu.Lock()
	id := b.nextSub
	b.nextSub++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

func (b *Broker) subscribersLocked() []func(*Session) {
	fns := make([]func(*Session), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	return fns
}
