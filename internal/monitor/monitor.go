// Package monitor aggregates scan statistics. All counter mutation is
// serialized through a single owning goroutine; workers only send deltas.
package monitor

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Delta is an additive statistics update sent by workers.
type Delta struct {
	TotalRequests int
	Successful    int
	Failed        int
	FoundPaths    int
}

// ScanStats is a point-in-time snapshot of scan counters and derived rates.
type ScanStats struct {
	TotalRequests int
	Successful    int
	Failed        int
	FoundPaths    int

	StartTime   time.Time
	Elapsed     time.Duration
	AvgRate     float64 // requests per second
	SuccessRate float64 // percent
	ErrorRate   float64 // percent
}

// Monitor owns the scan counters. Create with New, feed with Update, and
// read with Snapshot. Subscribed callbacks receive a snapshot on every
// report tick until Stop is called.
type Monitor struct {
	deltas    chan Delta
	snapshots chan chan ScanStats
	subs      chan func(ScanStats)
	done      chan struct{}
	stopped   chan ScanStats

	stopOnce sync.Once
	final    ScanStats
}

// New starts a monitor whose report callbacks fire every interval.
// An interval of 0 disables periodic reporting.
func New(interval time.Duration) *Monitor {
	m := &Monitor{
		deltas:    make(chan Delta, 64),
		snapshots: make(chan chan ScanStats),
		subs:      make(chan func(ScanStats)),
		done:      make(chan struct{}),
		stopped:   make(chan ScanStats, 1),
	}
	go m.loop(interval)
	return m
}

// Update applies an additive delta to the counters.
func (m *Monitor) Update(d Delta) {
	select {
	case m.deltas <- d:
	case <-m.done:
	}
}

// Snapshot returns the current statistics.
func (m *Monitor) Snapshot() ScanStats {
	reply := make(chan ScanStats, 1)
	select {
	case m.snapshots <- reply:
		return <-reply
	case <-m.done:
		return m.Stop()
	}
}

// Subscribe registers a callback invoked with a snapshot on every report
// tick. Callbacks run on the monitor goroutine and must not block.
func (m *Monitor) Subscribe(cb func(ScanStats)) {
	select {
	case m.subs <- cb:
	case <-m.done:
	}
}

// Stop shuts the monitor down and returns the final statistics. Calling
// Stop more than once is safe; later calls return the same statistics.
func (m *Monitor) Stop() ScanStats {
	m.stopOnce.Do(func() {
		close(m.done)
		m.final = <-m.stopped
	})
	return m.final
}

func (m *Monitor) loop(interval time.Duration) {
	stats := ScanStats{StartTime: time.Now()}
	var callbacks []func(ScanStats)

	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case d := <-m.deltas:
			stats.TotalRequests += d.TotalRequests
			stats.Successful += d.Successful
			stats.Failed += d.Failed
			stats.FoundPaths += d.FoundPaths

		case reply := <-m.snapshots:
			reply <- derive(stats)

		case cb := <-m.subs:
			callbacks = append(callbacks, cb)

		case <-tick:
			snap := derive(stats)
			for _, cb := range callbacks {
				cb(snap)
			}

		case <-m.done:
			// Drain any deltas already queued before shutdown.
			for {
				select {
				case d := <-m.deltas:
					stats.TotalRequests += d.TotalRequests
					stats.Successful += d.Successful
					stats.Failed += d.Failed
					stats.FoundPaths += d.FoundPaths
					continue
				default:
				}
				break
			}
			m.stopped <- derive(stats)
			return
		}
	}
}

func derive(s ScanStats) ScanStats {
	s.Elapsed = time.Since(s.StartTime)
	if secs := s.Elapsed.Seconds(); secs > 0 {
		s.AvgRate = float64(s.TotalRequests) / secs
	}
	if s.TotalRequests > 0 {
		s.SuccessRate = float64(s.Successful) / float64(s.TotalRequests) * 100
		s.ErrorRate = float64(s.Failed) / float64(s.TotalRequests) * 100
	}
	return s
}

// WriteReport writes a plain-text statistics report.
func WriteReport(w io.Writer, s ScanStats) error {
	_, err := fmt.Fprintf(w,
		"Scan statistics\n"+
			"  Total requests: %d\n"+
			"  Successful:     %d (%.1f%%)\n"+
			"  Failed:         %d (%.1f%%)\n"+
			"  Found paths:    %d\n"+
			"  Elapsed:        %s\n"+
			"  Average speed:  %.1f req/s\n",
		s.TotalRequests,
		s.Successful, s.SuccessRate,
		s.Failed, s.ErrorRate,
		s.FoundPaths,
		s.Elapsed.Round(time.Millisecond),
		s.AvgRate,
	)
	return err
}
