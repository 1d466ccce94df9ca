package probe

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
)

// BruteForcer probes a target with every entry of a prepared wordlist.
type BruteForcer struct {
	req    *Requester
	words  []string
	method string
}

// NewBruteForcer creates a wordlist-driven probe source. words should
// already be extension-expanded and de-duplicated by the wordlist loader.
func NewBruteForcer(req *Requester, words []string, method string) *BruteForcer {
	return &BruteForcer{req: req, words: words, method: method}
}

func (b *BruteForcer) Name() string { return TypeBruteForce }

// Scan requests every wordlist entry under baseURL. Request failures are
// skipped; they are already counted and logged by the requester.
func (b *BruteForcer) Scan(ctx context.Context, baseURL string) []RawResult {
	logrus.Debugf("brute force scan of %s with %d words", baseURL, len(b.words))

	results := make([]RawResult, 0, 64)
	for _, word := range b.words {
		select {
		case <-ctx.Done():
			return results
		default:
		}

		target := joinPath(baseURL, word)
		resp, err := b.req.Do(ctx, b.method, target)
		if err != nil {
			continue
		}

		results = append(results, RawResult{
			URL:           target,
			StatusCode:    resp.StatusCode,
			ContentLength: resp.ContentLength,
			ContentType:   resp.ContentType,
			Server:        resp.Server,
			Body:          truncate(resp.Body, 1000),
			Headers:       resp.Headers,
			ScanType:      TypeBruteForce,
		})
	}
	return results
}

// joinPath joins a base URL and a wordlist entry. Entries whose last
// segment carries no extension get a trailing slash, matching how servers
// expose directories.
func joinPath(baseURL, word string) string {
	target := strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(word, "/")

	last := target
	if idx := strings.LastIndex(target, "/"); idx >= 0 {
		last = target[idx+1:]
	}
	if last != "" && !strings.Contains(last, ".") && !strings.HasSuffix(target, "/") {
		target += "/"
	}
	return target
}
