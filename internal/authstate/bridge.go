// Package authstate bridges session changes into an observable auth state
// for clients. The state starts out unresolved (loading) and settles once
// the first session change arrives, so consumers can tell "not signed in"
// apart from "not known yet".
package authstate

import (
	"sync"

	"familycircle/internal/models"
)

// State is a snapshot of the authentication state.
type State struct {
	Loading bool         `json:"loading"`
	User    *models.User `json:"user,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// Bridge tracks the current auth state and notifies subscribers on every
// change. Safe for concurrent use.
type Bridge struct {
	mu      sync.Mutex
	state   State
	nextID  int
	subs    map[int]func(State)
	signOut func() error
}

// New creates a bridge in the loading state. signOut is invoked by
// SignOut and may be nil when sign-out is wired elsewhere.
func New(signOut func() error) *Bridge {
	return &Bridge{
		state:   State{Loading: true},
		subs:    make(map[int]func(State)),
		signOut: signOut,
	}
}

// Current returns the latest state snapshot.
func (b *Bridge) Current() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Subscribe registers a callback that fires immediately with the current
// state and again on every change. The returned function unsubscribes.
func (b *Bridge) Subscribe(cb func(State)) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = cb
	state := b.state
	b.mu.Unlock()

	cb(state)

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Resolve records a session change: a user on sign-in, nil on sign-out.
// Either way the state is no longer loading.
func (b *Bridge) Resolve(user *models.User) {
	b.set(State{User: user})
}

// ResolveError records a failure to determine the auth state. The state
// settles as signed out with the error message attached.
func (b *Bridge) ResolveError(err error) {
	b.set(State{Error: err.Error()})
}

// SignOut runs the configured sign-out. The user is cleared only when it
// succeeds; on failure the state keeps the user and records the error.
func (b *Bridge) SignOut() error {
	if b.signOut != nil {
		if err := b.signOut(); err != nil {
			b.mu.Lock()
			state := b.state
			b.mu.Unlock()
			state.Error = err.Error()
			b.set(state)
			return err
		}
	}
	b.set(State{})
	return nil
}

func (b *Bridge) set(state State) {
	b.mu.Lock()
	b.state = state
	cbs := make([]func(State), 0, len(b.subs))
	for _, cb := range b.subs {
		cbs = append(cbs, cb)
	}
	b.mu.Unlock()

	for _, cb := range cbs {
		cb(state)
	}
}
