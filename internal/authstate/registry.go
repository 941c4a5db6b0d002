// Package authstate maintains an in-memory view of who each active session
// belongs to. Auth operations apply their state directly; the registry
// consumes auth events only to reconcile its cache, so a missed or duplicate
// event can never leave a session authenticated that should not be.
package authstate

import (
	"errors"
	"sync"
	"time"

	"mutuelle/internal/models"
	"mutuelle/internal/service"
)

// ErrClosed is returned by Resolve after Close; callers treat it as an
// unauthenticated session.
var ErrClosed = errors.New("auth registry closed")

// maxEntryAge bounds how long a resolution is trusted before the session is
// checked against the database again. Keeps session expiry and out-of-band
// revocations from lingering in the cache.
const maxEntryAge = time.Minute

// SessionValidator resolves a session ID to its profile. Implemented by
// service.AuthService.
type SessionValidator interface {
	ValidateSession(sessionID string) (*models.Profile, error)
}

type entry struct {
	profile  *models.Profile
	err      error
	ready    chan struct{}
	loadedAt time.Time
}

func (e *entry) stale(now time.Time) bool {
	select {
	case <-e.ready:
		return now.Sub(e.loadedAt) > maxEntryAge
	default:
		return false
	}
}

// Registry caches session-to-profile resolutions. Concurrent lookups of the
// same session share one load; a failed load is not cached, so the next
// lookup retries. The registry owns its event subscription and releases it
// in Close.
type Registry struct {
	validator SessionValidator

	mu      sync.Mutex
	entries map[string]*entry
	closed  bool

	events <-chan service.AuthEvent
	cancel func()
	done   chan struct{}
}

// NewRegistry creates a registry and starts consuming auth events from the
// dispatcher. Pass a nil dispatcher to run without reconciliation (tests).
func NewRegistry(validator SessionValidator, dispatcher *service.AuthDispatcher) *Registry {
	r := &Registry{
		validator: validator,
		entries:   make(map[string]*entry),
		done:      make(chan struct{}),
	}
	if dispatcher != nil {
		r.events, r.cancel = dispatcher.Subscribe()
		go r.watch()
	} else {
		close(r.done)
	}
	return r
}

// Resolve returns the profile that owns the given session. Unauthenticated
// sessions return the validator's error; those results are never cached.
func (r *Registry) Resolve(sessionID string) (*models.Profile, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrClosed
	}
	if e, ok := r.entries[sessionID]; ok && !e.stale(time.Now()) {
		r.mu.Unlock()
		<-e.ready
		if e.err != nil {
			return nil, e.err
		}
		return e.profile, nil
	}

	e := &entry{ready: make(chan struct{})}
	r.entries[sessionID] = e
	r.mu.Unlock()

	e.profile, e.err = r.validator.ValidateSession(sessionID)
	e.loadedAt = time.Now()
	close(e.ready)

	if e.err != nil {
		// Drop the failed entry so the session is re-validated next time
		r.mu.Lock()
		if r.entries[sessionID] == e {
			delete(r.entries, sessionID)
		}
		r.mu.Unlock()
		return nil, e.err
	}
	return e.profile, nil
}

// Evict removes a session from the cache
func (r *Registry) Evict(sessionID string) {
	r.mu.Lock()
	delete(r.entries, sessionID)
	r.mu.Unlock()
}

// EvictUser removes every cached session belonging to a user
func (r *Registry) EvictUser(userID string) {
	r.mu.Lock()
	for sid, e := range r.entries {
		select {
		case <-e.ready:
			if e.profile != nil && e.profile.ID == userID {
				delete(r.entries, sid)
			}
		default:
			// still loading; the load result will speak for itself
		}
	}
	r.mu.Unlock()
}

// Len returns the number of cached sessions
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// watch reconciles the cache against auth events. Sign-outs and credential
// changes evict; profile edits evict too, so the next lookup reloads the
// fresh profile.
func (r *Registry) watch() {
	defer close(r.done)
	for ev := range r.events {
		switch ev.Type {
		case service.AuthSignedOut:
			if ev.SessionID != "" {
				r.Evict(ev.SessionID)
			}
			if ev.UserID != "" {
				r.EvictUser(ev.UserID)
			}
		case service.AuthCredentialsUpdated, service.AuthProfileUpdated:
			r.EvictUser(ev.UserID)
		}
	}
}

// Close releases the event subscription, waits for the watcher to stop and
// drops the cache. Later Resolve calls return ErrClosed.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.entries = make(map[string]*entry)
	r.mu.Unlock()

	if r.cancel != nil {
		r.cancel()
	}
	<-r.done
}
