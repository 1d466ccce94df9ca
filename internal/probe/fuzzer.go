package probe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

var fuzzCommonDirs = []string{
	"admin", "backup", "backups", "bak", "old", "new", "test", "testing",
	"dev", "development", "staging", "prod", "production", "api", "v1", "v2",
	"config", "configuration", "settings", "upload", "uploads", "files",
	"images", "img", "css", "js", "scripts", "assets", "static", "media",
	"tmp", "temp", "cache", "log", "logs", "error", "errors", "debug",
	"phpmyadmin", "mysql", "db", "database", "sql", "data", "www", "web",
	"site", "sites", "panel", "cpanel", "plesk", "whm", "adminer", "phpinfo",
}

var fuzzBackupExts = []string{".bak", ".backup", ".old", ".orig", ".tmp", "~", ".swp", ".save"}

// leet substitutions applied to common directory names.
var fuzzMutations = []func(string) string{
	func(w string) string { return w + "_" },
	func(w string) string { return "_" + w },
	func(w string) string { return strings.ReplaceAll(w, "a", "@") },
	func(w string) string { return strings.ReplaceAll(w, "i", "1") },
	func(w string) string { return strings.ReplaceAll(w, "e", "3") },
	func(w string) string { return strings.ReplaceAll(w, "o", "0") },
}

// Fuzzer probes generated path patterns: mutated common directories,
// year/date-stamped backups, numbered accounts, and backup extensions.
// Plain misses (404/403/429) are dropped before results leave the source.
type Fuzzer struct {
	req      *Requester
	patterns []string
}

// NewFuzzer builds the pattern set once. extensions, when non-empty, are
// additionally appended to every generated pattern.
func NewFuzzer(req *Requester, extensions []string) *Fuzzer {
	return &Fuzzer{req: req, patterns: generatePatterns(extensions, time.Now())}
}

func (f *Fuzzer) Name() string { return TypeFuzzer }

// Patterns exposes the generated pattern count for banner display.
func (f *Fuzzer) Patterns() int { return len(f.patterns) }

// Scan requests every pattern under baseURL and keeps only responses
// whose status suggests the resource exists.
func (f *Fuzzer) Scan(ctx context.Context, baseURL string) []RawResult {
	logrus.Debugf("fuzzing %s with %d patterns", baseURL, len(f.patterns))

	var results []RawResult
	for _, pattern := range f.patterns {
		select {
		case <-ctx.Done():
			return results
		default:
		}

		target := strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(pattern, "/")
		resp, err := f.req.Do(ctx, "GET", target)
		if err != nil {
			continue
		}

		switch resp.StatusCode {
		case 404, 403, 429:
			continue
		}

		results = append(results, RawResult{
			URL:           target,
			StatusCode:    resp.StatusCode,
			ContentLength: resp.ContentLength,
			ContentType:   resp.ContentType,
			Server:        resp.Server,
			Body:          truncate(resp.Body, 500),
			Headers:       resp.Headers,
			ScanType:      TypeFuzzer,
		})
	}
	return results
}

// generatePatterns builds the fuzzing pattern set relative to now, so
// year- and month-stamped backup names track the calendar.
func generatePatterns(extensions []string, now time.Time) []string {
	seen := make(map[string]struct{})
	var patterns []string
	add := func(p string) {
		if p == "" {
			return
		}
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			patterns = append(patterns, p)
		}
	}

	for _, word := range fuzzCommonDirs {
		add(word)
		add(word + "/")
		for _, mutate := range fuzzMutations {
			if m := mutate(word); m != word {
				add(m)
				add(m + "/")
			}
		}
	}

	// Year-stamped archives for the current year and four back.
	for i := 0; i < 5; i++ {
		year := fmt.Sprintf("%d", now.Year()-i)
		for _, stem := range []string{"backup", "bak", "archive"} {
			add(stem + year)
			add(year + stem)
		}
	}

	// Month-stamped backups for the last twelve months.
	for i := 0; i < 12; i++ {
		date := now.AddDate(0, -i, 0).Format("200601")
		add("backup" + date)
		add(date + "backup")
		add("bak" + date)
		add(date + "bak")
	}

	// Numbered accounts and test artifacts.
	for id := 1; id <= 5; id++ {
		for _, stem := range []string{"user", "admin", "test", "backup"} {
			add(fmt.Sprintf("%s%d", stem, id))
		}
	}

	// Editor and backup suffixes on the most common directories.
	for _, ext := range fuzzBackupExts {
		for _, word := range fuzzCommonDirs[:10] {
			add(word + ext)
		}
	}

	if len(extensions) > 0 {
		base := make([]string, len(patterns))
		copy(base, patterns)
		for _, p := range base {
			if strings.HasSuffix(p, "/") {
				continue
			}
			for _, ext := range extensions {
				add(p + "." + strings.TrimPrefix(ext, "."))
			}
		}
	}

	return patterns
}
