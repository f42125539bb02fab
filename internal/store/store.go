// Package store holds the client's view of workflow state. The merge
// path and the board's edit path both write; every mutation is a single
// locked read-modify-write over the whole snapshot, so writers cannot
// revert each other and readers never observe a half-merged state.
package store

import (
	"sync"

	"github.com/openrla/rlaclient/internal/model"
)

// Snapshot is the tagged union over the two role states. Exactly one of
// County and DOS is non-nil while a session is active; both are nil when
// logged out. The pointers themselves are treated as immutable once
// written: mutators copy, then Write.
type Snapshot struct {
	Session model.Session
	County  *model.CountyState
	DOS     *model.DOSState
}

// Role reports which role state the snapshot carries.
func (s Snapshot) Role() model.Role {
	switch {
	case s.County != nil:
		return model.RoleCounty
	case s.DOS != nil:
		return model.RoleDOS
	default:
		return model.RoleNone
	}
}

// Store is the single shared mutable resource in the client.
type Store struct {
	mu   sync.RWMutex
	snap Snapshot

	watchMu  sync.Mutex
	watchers []chan struct{}
}

// New returns an empty store (logged out).
func New() *Store {
	return &Store{}
}

// Read returns the current snapshot. The contained pointers must not be
// mutated; copy before changing.
func (s *Store) Read() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Update applies fn to the snapshot while holding the write lock for the
// whole read-modify-write, then notifies watchers. fn must not call back
// into the store. All mutators route through Update so a write landing
// between another writer's read and its write cannot be reverted.
func (s *Store) Update(fn func(Snapshot) Snapshot) {
	s.mu.Lock()
	s.snap = fn(s.snap)
	s.mu.Unlock()
	s.notify()
}

// Write replaces the snapshot wholesale.
func (s *Store) Write(next Snapshot) {
	s.Update(func(Snapshot) Snapshot { return next })
}

// notify signals watchers. Notification is coalesced: a watcher that has
// not drained its channel gets no duplicate.
func (s *Store) notify() {
	s.watchMu.Lock()
	for _, ch := range s.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	s.watchMu.Unlock()
}

// Watch returns a channel that receives a signal after each write. The
// channel has capacity one; consumers re-Read after each signal.
func (s *Store) Watch() <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.watchMu.Lock()
	s.watchers = append(s.watchers, ch)
	s.watchMu.Unlock()
	return ch
}

// UpdateCounty copies the current county state through fn and writes the
// result back under the write lock. fn receives a shallow copy it may
// mutate freely but must not touch the store. No-op when no county
// session is active.
func (s *Store) UpdateCounty(fn func(*model.CountyState)) {
	s.Update(func(snap Snapshot) Snapshot {
		if snap.County == nil {
			return snap
		}
		next := *snap.County
		fn(&next)
		snap.County = &next
		return snap
	})
}

// UpdateDOS is UpdateCounty for the state-admin role.
func (s *Store) UpdateDOS(fn func(*model.DOSState)) {
	s.Update(func(snap Snapshot) Snapshot {
		if snap.DOS == nil {
			return snap
		}
		next := *snap.DOS
		fn(&next)
		snap.DOS = &next
		return snap
	})
}

// Reset drops all role state and the session. Used on logout and on a
// NOT_AUTHORIZED signal from any call.
func (s *Store) Reset() {
	s.Write(Snapshot{})
}
