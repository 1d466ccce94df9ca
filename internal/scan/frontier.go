// Package scan implements the core orchestration: the recursive work
// frontier and the scheduler that drives probe sources against it.
package scan

import (
	"sync"

	"github.com/deepdir/deepdir/internal/urlutil"
)

// Target is one unit of scan work. Immutable once enqueued; consumed
// exactly once by a worker.
type Target struct {
	URL   string
	Depth int
}

// Frontier is the recursive work queue of (URL, depth) pairs with an
// integrated visited set. The visited check is atomic with the enqueue,
// so two workers discovering the same link cannot both schedule it.
//
// Pop blocks without polling: workers sleep on a condition variable and
// are woken by pushes and completions. Termination is detected exactly
// when the queue is empty and no unit is in flight.
type Frontier struct {
	mu       sync.Mutex
	cond     *sync.Cond
	queue    []Target
	visited  map[string]struct{}
	inflight int
	closed   bool
}

// NewFrontier creates an empty frontier.
func NewFrontier() *Frontier {
	f := &Frontier{visited: make(map[string]struct{})}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// Push enqueues a target unless its normalized URL was already enqueued
// (or the frontier is closed). Returns whether the target was accepted.
func (f *Frontier) Push(t Target) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return false
	}
	key := urlutil.Normalize(t.URL)
	if _, seen := f.visited[key]; seen {
		return false
	}
	f.visited[key] = struct{}{}
	f.queue = append(f.queue, t)
	f.cond.Signal()
	return true
}

// Pop blocks until a target is available and marks it in flight. It
// returns false exactly when the scan is over: the frontier was closed,
// or the queue is empty with zero units in flight.
func (f *Frontier) Pop() (Target, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for {
		if f.closed {
			return Target{}, false
		}
		if len(f.queue) > 0 {
			t := f.queue[0]
			f.queue = f.queue[1:]
			f.inflight++
			return t, true
		}
		if f.inflight == 0 {
			// Wake the other blocked workers so they observe
			// termination too.
			f.cond.Broadcast()
			return Target{}, false
		}
		f.cond.Wait()
	}
}

// Done marks one in-flight unit complete. Every successful Pop must be
// paired with exactly one Done.
func (f *Frontier) Done() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.inflight--
	if f.inflight == 0 && len(f.queue) == 0 {
		f.cond.Broadcast()
		return
	}
	// Completion may also free a worker to pick up queued work.
	f.cond.Signal()
}

// Close cancels the scan: the queue is dropped and all blocked Pops
// return. In-flight units finish naturally.
func (f *Frontier) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	f.queue = nil
	f.cond.Broadcast()
}

// Visited reports whether a URL has ever been enqueued.
func (f *Frontier) Visited(rawURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.visited[urlutil.Normalize(rawURL)]
	return ok
}
