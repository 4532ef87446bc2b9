// Package replyflow correlates an admin's next text message with the
// submission they chose to answer, and resolves the submission with it.
package replyflow

import "sync"

// Correlator keeps at most one pending reply target per admin. Entries live
// in memory only; a restart drops them and the admin simply presses the
// button again.
type Correlator struct {
	mu      sync.RWMutex
	pending map[int64]int64 // admin id -> submission id
}

// NewCorrelator constructs an empty correlator.
func NewCorrelator() *Correlator {
	return &Correlator{pending: make(map[int64]int64)}
}

// Begin records that the admin's next message answers the given submission.
// A second Begin for the same admin overwrites the previous target.
func (c *Correlator) Begin(adminID, submissionID int64) {
	c.mu.Lock()
	c.pending[adminID] = submissionID
	c.mu.Unlock()
}

// Pop removes and returns the pending target for the admin. The entry is
// consumed regardless of how the resolution turns out afterwards.
func (c *Correlator) Pop(adminID int64) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.pending[adminID]
	if ok {
		delete(c.pending, adminID)
	}
	return id, ok
}

// Pending returns the pending target for the admin without consuming it.
func (c *Correlator) Pending(adminID int64) (int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.pending[adminID]
	return id, ok
}
