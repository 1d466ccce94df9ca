package output

import (
	"fmt"
	"os"
	"time"

	"github.com/deepdir/deepdir/internal/monitor"
)

// Progress renders a single-line live status on stderr. It is driven by
// the monitor's report ticks: subscribe its Update method as a callback.
type Progress struct {
	quiet bool
}

// NewProgress creates a progress display. When quiet, all output is
// suppressed.
func NewProgress(quiet bool) *Progress {
	return &Progress{quiet: quiet}
}

// Update rewrites the progress line with the latest snapshot. Safe to
// call from the monitor goroutine.
func (p *Progress) Update(stats monitor.ScanStats) {
	if p.quiet {
		return
	}
	fmt.Fprintf(os.Stderr,
		"\r\033[K%d requests | %d found | %d errors | %.1f req/s | %s elapsed",
		stats.TotalRequests,
		stats.FoundPaths,
		stats.Failed,
		stats.AvgRate,
		stats.Elapsed.Round(time.Second),
	)
}

// Finish terminates the progress line before final output is printed.
func (p *Progress) Finish() {
	if p.quiet {
		return
	}
	fmt.Fprint(os.Stderr, "\r\033[K")
}
