// Package pipeline turns classified probe results into a deduplicated,
// filtered, priority-ordered result set. Submission order never changes
// the final set: the content-equivalence table is the single source of
// truth and representatives are chosen by a total order.
package pipeline

import (
	"crypto/md5"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/deepdir/deepdir/internal/analyze"
	"github.com/deepdir/deepdir/internal/urlutil"
)

// RankedResult is the final externally visible unit: a classified result
// plus its priority score (lower = higher priority).
type RankedResult struct {
	analyze.ClassifiedResult
	Priority int
}

type exactKey struct {
	url    string
	status int
}

type classEntry struct {
	result analyze.ClassifiedResult
	order  int // discovery index of the equivalence class
}

// Pipeline accepts batches of classified results from concurrent workers.
type Pipeline struct {
	mu      sync.Mutex
	filter  *acceptFilter
	seen    map[exactKey]struct{}
	classes map[[16]byte]*classEntry
	next    int
}

// New creates a pipeline with the given acceptance-filter configuration.
func New(cfg FilterConfig) (*Pipeline, error) {
	f, err := newAcceptFilter(cfg)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		filter:  f,
		seen:    make(map[exactKey]struct{}),
		classes: make(map[[16]byte]*classEntry),
	}, nil
}

// Submit runs a batch through acceptance filtering, exact (url, status)
// dedup, and content-equivalence collapsing. It returns how many results
// survived into the equivalence table, for statistics. Safe for
// concurrent use.
func (p *Pipeline) Submit(batch []analyze.ClassifiedResult) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	accepted := 0
	for _, r := range batch {
		if !p.filter.interesting(r) {
			continue
		}

		key := exactKey{url: urlutil.Normalize(r.URL), status: r.StatusCode}
		if _, dup := p.seen[key]; dup {
			continue
		}
		p.seen[key] = struct{}{}
		accepted++

		hash := contentHash(r.Body)
		entry, ok := p.classes[hash]
		if !ok {
			p.classes[hash] = &classEntry{result: r, order: p.next}
			p.next++
			continue
		}
		// The class keeps its original discovery slot; only the
		// representative may improve.
		if betterResult(r, entry.result) {
			entry.result = r
		}
	}
	return accepted
}

// Drain returns the current result set as a stable ascending sort by
// priority score; ties preserve discovery order.
func (p *Pipeline) Drain() []RankedResult {
	p.mu.Lock()
	entries := make([]*classEntry, 0, len(p.classes))
	for _, e := range p.classes {
		entries = append(entries, e)
	}
	p.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		pi, pj := score(entries[i].result), score(entries[j].result)
		if pi != pj {
			return pi < pj
		}
		return entries[i].order < entries[j].order
	})

	ranked := make([]RankedResult, len(entries))
	for i, e := range entries {
		ranked[i] = RankedResult{ClassifiedResult: e.result, Priority: score(e.result)}
	}
	return ranked
}

// betterResult is the total order on equivalence-class representatives:
// 200 beats any non-200; among non-200s the lower status wins; equal
// status keeps the earlier-seen result.
func betterResult(candidate, current analyze.ClassifiedResult) bool {
	if candidate.StatusCode == 200 && current.StatusCode != 200 {
		return true
	}
	if current.StatusCode == 200 && candidate.StatusCode != 200 {
		return false
	}
	return candidate.StatusCode < current.StatusCode
}

// score computes the priority: status class first, then content-length
// adjustments.
func score(r analyze.ClassifiedResult) int {
	priority := 0
	switch {
	case r.StatusCode == 200:
		priority += 0
	case r.StatusCode == 301 || r.StatusCode == 302:
		priority += 1
	case r.StatusCode == 403:
		priority += 2
	case r.StatusCode == 401:
		priority += 3
	default:
		priority += 10
	}

	switch {
	case r.ContentLength == 0:
		priority += 5
	case r.ContentLength < 100:
		priority += 2
	case r.ContentLength > 1_000_000:
		priority += 1
	}
	return priority
}

// contentHash digests a body with all whitespace stripped and case
// folded, so pages that differ only in formatting collapse together.
func contentHash(body string) [16]byte {
	var b strings.Builder
	b.Grow(len(body))
	for _, r := range body {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return md5.Sum([]byte(b.String()))
}
