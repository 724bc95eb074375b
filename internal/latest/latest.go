// Package latest implements "latest request wins" tickets: starting a new
// request for a key cancels the previous one, and a completion is only used
// if its ticket is still the current one for that key.
package latest

import (
	"context"
	"sync"
)

// Ticket identifies one request for a key.
type Ticket struct {
	key string
	seq uint64
}

// Key returns the ticket's key.
func (t Ticket) Key() string {
	return t.key
}

type slot struct {
	seq    uint64
	cancel context.CancelFunc
}

// Tracker hands out tickets per key.
type Tracker struct {
	mu    sync.Mutex
	seq   uint64
	slots map[string]slot
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{slots: make(map[string]slot)}
}

// Begin starts a request for key, cancelling the context of the previous
// request for the same key. The returned context is derived from parent.
func (t *Tracker) Begin(parent context.Context, key string) (Ticket, context.Context) {
	ctx, cancel := context.WithCancel(parent)

	t.mu.Lock()
	defer t.mu.Unlock()

	if prev, ok := t.slots[key]; ok {
		prev.cancel()
	}
	t.seq++
	t.slots[key] = slot{seq: t.seq, cancel: cancel}
	return Ticket{key: key, seq: t.seq}, ctx
}

// IsCurrent reports whether ticket is still the latest for its key.
func (t *Tracker) IsCurrent(ticket Ticket) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.slots[ticket.key]
	return ok && s.seq == ticket.seq
}

// Done releases ticket. It reports whether the ticket was still current, in
// which case its result should be used; a superseded ticket's result is stale.
func (t *Tracker) Done(ticket Ticket) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.slots[ticket.key]
	if !ok || s.seq != ticket.seq {
		return false
	}
	s.cancel()
	delete(t.slots, ticket.key)
	return true
}

// Pending returns the number of keys with an outstanding request.
func (t *Tracker) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.slots)
}
