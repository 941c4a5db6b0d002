package service

import (
	"sync"
)

// AuthEventType identifies a change in authentication state
type AuthEventType string

const (
	AuthSignedIn           AuthEventType = "signed_in"
	AuthSignedOut          AuthEventType = "signed_out"
	AuthCredentialsUpdated AuthEventType = "credentials_updated"
	AuthProfileUpdated     AuthEventType = "profile_updated"
)

// AuthEvent is emitted after an authentication state change has been applied.
// Consumers treat events as a secondary consistency signal: the primary state
// transition has already happened by the time the event is delivered.
type AuthEvent struct {
	Type      AuthEventType
	UserID    string
	SessionID string
}

// AuthDispatcher fans auth events out to subscribers on a background
// goroutine. Emission never blocks the auth path; a slow subscriber drops
// events instead of stalling everyone else.
type AuthDispatcher struct {
	ch        chan AuthEvent
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once

	mu      sync.Mutex
	subs    map[int]chan AuthEvent
	nextSub int
}

// NewAuthDispatcher creates a dispatcher and starts its fan-out goroutine
func NewAuthDispatcher() *AuthDispatcher {
	d := &AuthDispatcher{
		ch:   make(chan AuthEvent, 64),
		done: make(chan struct{}),
		subs: make(map[int]chan AuthEvent),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

func (d *AuthDispatcher) run() {
	defer d.wg.Done()
	for {
		select {
		case ev := <-d.ch:
			d.deliver(ev)
		case <-d.done:
			// drain what is already queued, then stop
			for {
				select {
				case ev := <-d.ch:
					d.deliver(ev)
				default:
					return
				}
			}
		}
	}
}

func (d *AuthDispatcher) deliver(ev AuthEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, ch := range d.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Emit queues an event for delivery. Safe to call after Close; the event is
// silently discarded.
func (d *AuthDispatcher) Emit(ev AuthEvent) {
	if d == nil {
		return
	}
	select {
	case d.ch <- ev:
	case <-d.done:
	default:
	}
}

// Subscribe registers a consumer. The returned cancel func releases the
// subscription and closes the channel.
func (d *AuthDispatcher) Subscribe() (<-chan AuthEvent, func()) {
	ch := make(chan AuthEvent, 16)

	d.mu.Lock()
	id := d.nextSub
	d.nextSub++
	d.subs[id] = ch
	d.mu.Unlock()

	cancel := func() {
		d.mu.Lock()
		if existing, ok := d.subs[id]; ok {
			delete(d.subs, id)
			close(existing)
		}
		d.mu.Unlock()
	}
	return ch, cancel
}

// Close stops the fan-out goroutine after draining queued events
func (d *AuthDispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.done)
		d.wg.Wait()
	})
}
