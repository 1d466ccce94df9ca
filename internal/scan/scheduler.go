package scan

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/deepdir/deepdir/internal/analyze"
	"github.com/deepdir/deepdir/internal/config"
	"github.com/deepdir/deepdir/internal/monitor"
	"github.com/deepdir/deepdir/internal/pipeline"
	"github.com/deepdir/deepdir/internal/probe"
)

// LinkExtractor pulls in-scope links out of a classified result for
// recursive scheduling.
type LinkExtractor interface {
	ExtractInScopeLinks(result analyze.ClassifiedResult, originURL string) []string
}

// Scheduler drains the frontier with a bounded worker pool, runs the
// enabled probe sources per target, classifies their results, and feeds
// the pipeline. Recursion-eligible results push newly discovered
// same-origin URLs back onto the frontier.
type Scheduler struct {
	opts      *config.Options
	sources   []probe.Source
	results   *pipeline.Pipeline
	mon       *monitor.Monitor
	extractor LinkExtractor
	frontier  *Frontier

	recursionStatus map[int]struct{}
}

// NewScheduler wires a scheduler. mon may be nil (tests). extractor is
// only consulted when recursion is enabled.
func NewScheduler(
	opts *config.Options,
	sources []probe.Source,
	results *pipeline.Pipeline,
	mon *monitor.Monitor,
	extractor LinkExtractor,
) *Scheduler {
	eligible := make(map[int]struct{}, len(opts.RecursionStatus))
	for _, code := range opts.RecursionStatus {
		eligible[code] = struct{}{}
	}
	return &Scheduler{
		opts:            opts,
		sources:         sources,
		results:         results,
		mon:             mon,
		extractor:       extractor,
		frontier:        NewFrontier(),
		recursionStatus: eligible,
	}
}

// Run seeds the frontier with depth-0 targets and blocks until the scan
// terminates (frontier empty and nothing in flight) or ctx is cancelled.
// It returns the drained, priority-ordered result set; on cancellation
// the results collected so far are returned along with the context error.
func (s *Scheduler) Run(ctx context.Context, seeds []Target) ([]pipeline.RankedResult, error) {
	if len(seeds) == 0 {
		return nil, errors.New("no targets supplied")
	}
	for _, t := range seeds {
		s.frontier.Push(t)
	}

	watchDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			s.frontier.Close()
		case <-watchDone:
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < s.opts.Threads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.worker(ctx)
		}()
	}
	wg.Wait()
	close(watchDone)

	return s.results.Drain(), ctx.Err()
}

func (s *Scheduler) worker(ctx context.Context) {
	for {
		target, ok := s.frontier.Pop()
		if !ok {
			return
		}
		s.processTarget(ctx, target)
		s.frontier.Done()
	}
}

// processTarget runs every enabled probe source against the target,
// classifies the raw results, submits them as one batch, and schedules
// recursion. A single target's total failure never aborts the scan.
func (s *Scheduler) processTarget(ctx context.Context, target Target) {
	logrus.WithFields(logrus.Fields{
		"url":   target.URL,
		"depth": target.Depth,
	}).Info("scanning target")

	var classified []analyze.ClassifiedResult
	for _, src := range s.sources {
		for _, raw := range src.Scan(ctx, target.URL) {
			cr, ok := classify(raw)
			if !ok {
				continue
			}
			classified = append(classified, cr)
		}
	}

	found := s.results.Submit(classified)
	if s.mon != nil {
		s.mon.Update(monitor.Delta{FoundPaths: found})
	}

	if !s.opts.Recursive || s.extractor == nil || target.Depth >= s.opts.MaxDepth {
		return
	}
	for _, cr := range classified {
		if _, eligible := s.recursionStatus[cr.StatusCode]; !eligible {
			continue
		}
		for _, link := range s.extractor.ExtractInScopeLinks(cr, target.URL) {
			s.frontier.Push(Target{URL: link, Depth: target.Depth + 1})
		}
	}
}

// classify guards the analyzer: an unexpected failure drops the single
// result with a warning instead of killing the worker.
func classify(raw probe.RawResult) (cr analyze.ClassifiedResult, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Warnf("classifier failed for %s, dropping result: %v", raw.URL, r)
			ok = false
		}
	}()
	return analyze.Analyze(raw), true
}
