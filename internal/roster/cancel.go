package roster

import "sync"

// CancelSet records ids of accounts deleted while a batch is in flight.
// Engines consult it before every status write that follows a network call;
// the validation engine clears it when a batch finishes. The semantics are
// "skip if still pending", not "abort in-flight": no network call is ever
// cancelled, only its write-back suppressed.
type CancelSet struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

// NewCancelSet creates an empty cancel set.
func NewCancelSet() *CancelSet {
	return &CancelSet{ids: make(map[string]struct{})}
}

// Add marks an id as cancelled.
func (c *CancelSet) Add(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids[id] = struct{}{}
}

// Has reports whether the id was cancelled.
func (c *CancelSet) Has(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.ids[id]
	return ok
}

// Clear empties the set. Called at the end of every validation batch so
// stale ids cannot leak into the next one.
func (c *CancelSet) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids = make(map[string]struct{})
}

// Len returns the number of cancelled ids.
func (c *CancelSet) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.ids)
}
