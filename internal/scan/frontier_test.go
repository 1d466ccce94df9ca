package scan

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestFrontier_PushDeduplicatesNormalizedURLs(t *testing.T) {
	f := NewFrontier()

	if !f.Push(Target{URL: "http://example.com/admin", Depth: 0}) {
		t.Fatal("first push should be accepted")
	}
	if f.Push(Target{URL: "http://Example.com/admin/", Depth: 1}) {
		t.Error("normalized duplicate should be rejected")
	}
	if !f.Visited("http://example.com/admin") {
		t.Error("pushed URL should be marked visited")
	}
}

func TestFrontier_PopReturnsFalseWhenDrained(t *testing.T) {
	f := NewFrontier()
	f.Push(Target{URL: "http://example.com", Depth: 0})

	target, ok := f.Pop()
	if !ok || target.URL != "http://example.com" {
		t.Fatalf("Pop = (%v, %v), want the pushed target", target, ok)
	}
	f.Done()

	if _, ok := f.Pop(); ok {
		t.Error("Pop on empty, idle frontier should report termination")
	}
}

func TestFrontier_InFlightWorkDefersTermination(t *testing.T) {
	f := NewFrontier()
	f.Push(Target{URL: "http://example.com", Depth: 0})

	if _, ok := f.Pop(); !ok {
		t.Fatal("expected a target")
	}

	// A second worker blocks while the first is in flight: the first may
	// still discover new work.
	popped := make(chan bool, 1)
	go func() {
		_, ok := f.Pop()
		popped <- ok
	}()

	select {
	case <-popped:
		t.Fatal("Pop should block while work is in flight")
	case <-time.After(50 * time.Millisecond):
	}

	f.Push(Target{URL: "http://example.com/admin", Depth: 1})
	f.Done()

	select {
	case ok := <-popped:
		if !ok {
			t.Error("blocked Pop should receive the newly pushed target")
		}
	case <-time.After(time.Second):
		t.Fatal("blocked Pop never woke up")
	}
}

func TestFrontier_TerminationWakesAllWorkers(t *testing.T) {
	f := NewFrontier()
	f.Push(Target{URL: "http://example.com", Depth: 0})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				_, ok := f.Pop()
				if !ok {
					return
				}
				f.Done()
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("workers did not all terminate")
	}
}

func TestFrontier_CloseUnblocksAndRejects(t *testing.T) {
	f := NewFrontier()
	f.Push(Target{URL: "http://example.com", Depth: 0})
	if _, ok := f.Pop(); !ok {
		t.Fatal("expected a target")
	}

	// Queue empty with one unit in flight: this Pop blocks.
	unblocked := make(chan bool, 1)
	go func() {
		_, ok := f.Pop()
		unblocked <- ok
	}()

	time.Sleep(50 * time.Millisecond)
	f.Close()

	select {
	case ok := <-unblocked:
		if ok {
			t.Error("Pop after Close should report termination")
		}
	case <-time.After(time.Second):
		t.Fatal("Close did not unblock Pop")
	}

	if f.Push(Target{URL: "http://example.com/new", Depth: 0}) {
		t.Error("Push after Close should be rejected")
	}
}

func TestFrontier_ConcurrentPushesScheduleOnce(t *testing.T) {
	f := NewFrontier()
	f.Push(Target{URL: "http://example.com/seed", Depth: 0})

	var accepted atomic.Int64
	var wg sync.WaitGroup
	for w := 0; w < 10; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				if f.Push(Target{URL: fmt.Sprintf("http://example.com/path%d", i), Depth: 1}) {
					accepted.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	if got := accepted.Load(); got != 100 {
		t.Errorf("accepted %d pushes for 100 distinct URLs, want exactly 100", got)
	}
}
