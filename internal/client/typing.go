package client

import (
	"sort"
	"sync"
	"time"
)

// DefaultTypingExpiry clears an indicator when no renewed signal arrives.
const DefaultTypingExpiry = 3 * time.Second

// DefaultTypingIdle is how long a sender keeps renewing after the last input.
const DefaultTypingIdle = 2 * time.Second

// TypingTracker keeps one expiring indicator per sender. Each received typing
// signal renews that sender's timer; expiry clears the indicator, which makes
// correctness robust to a dropped stop signal. All timers are released on
// Stop so nothing leaks across reconnects.
type TypingTracker struct {
	mu      sync.Mutex
	expiry  time.Duration
	timers  map[int64]*time.Timer
	stopped bool
}

// NewTypingTracker creates a tracker; a non-positive expiry uses the default.
func NewTypingTracker(expiry time.Duration) *TypingTracker {
	if expiry <= 0 {
		expiry = DefaultTypingExpiry
	}
	return &TypingTracker{
		expiry: expiry,
		timers: make(map[int64]*time.Timer),
	}
}

// Signal records that the user is typing, starting or renewing their timer.
func (t *TypingTracker) Signal(fromUserID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}

	if timer, ok := t.timers[fromUserID]; ok {
		timer.Reset(t.expiry)
		return
	}
	t.timers[fromUserID] = time.AfterFunc(t.expiry, func() {
		t.Clear(fromUserID)
	})
}

// Clear drops the indicator for one sender, releasing its timer. Called on
// expiry and when a message from that sender arrives.
func (t *TypingTracker) Clear(fromUserID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if timer, ok := t.timers[fromUserID]; ok {
		timer.Stop()
		delete(t.timers, fromUserID)
	}
}

// Typing lists the users currently typing, in stable order.
func (t *TypingTracker) Typing() []int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := make([]int64, 0, len(t.timers))
	for id := range t.timers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Stop releases every timer; the tracker accepts no further signals.
func (t *TypingTracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	for id, timer := range t.timers {
		timer.Stop()
		delete(t.timers, id)
	}
}
