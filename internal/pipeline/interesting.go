package pipeline

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/deepdir/deepdir/internal/analyze"
)

// falsePositivePatterns match soft-404 and generic error boilerplate that
// servers return with misleading status codes. The table is fixed; user
// exclusions come on top via FilterConfig.
var falsePositivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)404.*not.*found`),
	regexp.MustCompile(`(?i)page.*not.*found`),
	regexp.MustCompile(`(?i)file.*not.*found`),
	regexp.MustCompile(`(?i)directory.*not.*found`),
	regexp.MustCompile(`(?i)403.*forbidden`),
	regexp.MustCompile(`(?i)access.*denied`),
	regexp.MustCompile(`(?i)unauthorized`),
	regexp.MustCompile(`(?i)permission.*denied`),
	regexp.MustCompile(`(?i)server.*error`),
	regexp.MustCompile(`(?i)internal.*server.*error`),
	regexp.MustCompile(`(?i)bad.*request`),
	regexp.MustCompile(`(?i)method.*not.*allowed`),
	regexp.MustCompile(`(?i)service.*unavailable`),
	regexp.MustCompile(`(?i)gateway.*timeout`),
	regexp.MustCompile(`(?i)bad.*gateway`),
}

// FilterConfig is the acceptance-stage configuration.
type FilterConfig struct {
	IncludeStatus []int
	ExcludeStatus []int
	MinSize       int64
	MaxSize       int64 // 0 = no upper bound
	ExcludeSizes  []string
	ExcludeText   []string
	ExcludeRegex  []string
}

type acceptFilter struct {
	include      map[int]struct{}
	exclude      map[int]struct{}
	minSize      int64
	maxSize      int64
	excludeSizes map[string]struct{}
	excludeText  []string
	excludeRegex []*regexp.Regexp
}

func newAcceptFilter(cfg FilterConfig) (*acceptFilter, error) {
	f := &acceptFilter{
		include:      make(map[int]struct{}, len(cfg.IncludeStatus)),
		exclude:      make(map[int]struct{}, len(cfg.ExcludeStatus)),
		minSize:      cfg.MinSize,
		maxSize:      cfg.MaxSize,
		excludeSizes: make(map[string]struct{}, len(cfg.ExcludeSizes)),
		excludeText:  cfg.ExcludeText,
	}
	for _, code := range cfg.IncludeStatus {
		f.include[code] = struct{}{}
	}
	for _, code := range cfg.ExcludeStatus {
		f.exclude[code] = struct{}{}
	}
	for _, tok := range cfg.ExcludeSizes {
		f.excludeSizes[strings.ToUpper(strings.TrimSpace(tok))] = struct{}{}
	}
	for _, expr := range cfg.ExcludeRegex {
		re, err := regexp.Compile(`(?i)` + expr)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude regex %q: %w", expr, err)
		}
		f.excludeRegex = append(f.excludeRegex, re)
	}
	return f, nil
}

// interesting applies the acceptance filter: status sets, size bounds,
// formatted-size tokens, literal and regex body exclusions, and the
// built-in false-positive table.
func (f *acceptFilter) interesting(r analyze.ClassifiedResult) bool {
	if len(f.include) > 0 {
		if _, ok := f.include[r.StatusCode]; !ok {
			return false
		}
	}
	if _, ok := f.exclude[r.StatusCode]; ok {
		return false
	}

	if f.minSize > 0 && r.ContentLength < f.minSize {
		return false
	}
	if f.maxSize > 0 && r.ContentLength > f.maxSize {
		return false
	}
	if len(f.excludeSizes) > 0 {
		if _, ok := f.excludeSizes[FormatSize(r.ContentLength)]; ok {
			return false
		}
	}

	for _, re := range falsePositivePatterns {
		if re.MatchString(r.Body) {
			return false
		}
	}
	for _, text := range f.excludeText {
		if strings.Contains(r.Body, text) {
			return false
		}
	}
	for _, re := range f.excludeRegex {
		if re.MatchString(r.Body) {
			return false
		}
	}

	return true
}

// FormatSize renders a byte count as an integer-truncated B/KB/MB token,
// the representation exclude_sizes entries are matched against.
func FormatSize(size int64) string {
	switch {
	case size < 1024:
		return fmt.Sprintf("%dB", size)
	case size < 1024*1024:
		return fmt.Sprintf("%dKB", size/1024)
	default:
		return fmt.Sprintf("%dMB", size/(1024*1024))
	}
}
