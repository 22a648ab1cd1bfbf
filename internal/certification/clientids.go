// Package certification implements the org.varlink.certification interface,
// the standard Varlink conformance suite: a server that walks a client
// through eleven calls exercising every basic type plus More and Oneway,
// and a typed client for driving that walk (cmd/certification).
package certification

import (
	"container/list"
	"sync"
	"time"

	"github.com/google/uuid"
)

// clientIDEntry pairs an issued client id with the time it was minted, in
// issue order, so expiry only ever has to look at the front of the list.
type clientIDEntry struct {
	issuedAt time.Time
	id       string
}

// ClientIDs is the per-server table of certification runs in progress
// (spec.md §3 "Dispatcher/session state"), grounded on
// original_source/varlink-certification/src/main.rs's ClientIds: a FIFO of
// (issuedAt, id) pairs for O(1) expiry plus a map of id to the next test
// the client is expected to call. The Rust version hashed a timestamp into
// an id; this one uses google/uuid, since nothing about the protocol
// depends on the id's shape.
type ClientIDs struct {
	mu          sync.Mutex
	lifetimes   *list.List // of clientIDEntry
	nextTest    map[string]string
	maxLifetime time.Duration
}

// NewClientIDs creates an empty table. A client id is evicted once
// maxLifetime has passed since it was issued, and can then no longer
// advance the test sequence; using an id does not extend its lifetime.
func NewClientIDs(maxLifetime time.Duration) *ClientIDs {
	return &ClientIDs{
		lifetimes:   list.New(),
		nextTest:    make(map[string]string),
		maxLifetime: maxLifetime,
	}
}

// New issues a fresh client id, expecting "Test01" as its first call.
func (c *ClientIDs) New() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.evictExpired()

	id := uuid.NewString()
	c.nextTest[id] = "Test01"
	c.lifetimes.PushBack(clientIDEntry{issuedAt: time.Now(), id: id})
	return id
}

// Advance reports whether id was expecting test, and if so, records
// nextTest as what it must call next. A client id that calls the tests out
// of order, reuses one that has expired, or was never issued fails the
// check (spec.md §7 "Handler-declared" — the caller turns this into a
// ClientIdError reply).
func (c *ClientIDs) Advance(id, test, nextTest string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.evictExpired()

	want, ok := c.nextTest[id]
	if !ok || want != test {
		return false
	}
	c.nextTest[id] = nextTest
	return true
}

// evictExpired drops every client id whose lifetime has elapsed. Callers
// must hold c.mu.
func (c *ClientIDs) evictExpired() {
	now := time.Now()
	for {
		front := c.lifetimes.Front()
		if front == nil {
			return
		}
		entry := front.Value.(clientIDEntry)
		if now.Sub(entry.issuedAt) <= c.maxLifetime {
			return
		}
		c.lifetimes.Remove(front)
		delete(c.nextTest, entry.id)
	}
}
