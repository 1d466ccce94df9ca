// Package probe implements the pluggable request generators: wordlist
// brute-forcing, link crawling, and pattern fuzzing. Each source probes
// a base URL and returns raw results for downstream classification.
package probe

import (
	"context"
	"net/http"
)

// Scan type labels carried on every raw result.
const (
	TypeBruteForce = "brute_force"
	TypeCrawler    = "crawler"
	TypeFuzzer     = "fuzzer"
)

// RawResult is the read-only outcome of a single probe request.
type RawResult struct {
	URL           string
	StatusCode    int
	ContentLength int64
	ContentType   string
	Server        string
	Body          string // snippet, truncated per source
	Headers       http.Header
	ScanType      string
}

// Source is a probing strategy run against a target URL. Implementations
// handle their own per-request failures and never abort the scan.
type Source interface {
	Name() string
	Scan(ctx context.Context, baseURL string) []RawResult
}

// truncate caps a body snippet at n bytes.
func truncate(body []byte, n int) string {
	if len(body) > n {
		return string(body[:n])
	}
	return string(body)
}
