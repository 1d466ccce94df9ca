// Package antiwaf rotates request fingerprints to avoid trivial WAF
// blocking of automated probes.
package antiwaf

import (
	"math/rand"
	"net/http"
	"sync"
)

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:89.0) Gecko/20100101 Firefox/89.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:89.0) Gecko/20100101 Firefox/89.0",
	"Mozilla/5.0 (X11; Linux x86_64; rv:89.0) Gecko/20100101 Firefox/89.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Edge/91.0.864.59",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.1.1 Safari/605.1.15",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 14_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.1.1 Mobile/15E148 Safari/604.1",
	"Mozilla/5.0 (iPad; CPU OS 14_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.1.1 Mobile/15E148 Safari/604.1",
}

var acceptHeaders = []string{
	"text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"*/*",
	"application/json,text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
}

// Rotator mutates outgoing requests with randomized header variations.
// Each technique is applied probabilistically so the traffic does not
// flip fingerprints on every single request.
type Rotator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRotator creates a rotator seeded from seed. A fixed seed gives
// reproducible rotation in tests.
func NewRotator(seed int64) *Rotator {
	return &Rotator{rnd: rand.New(rand.NewSource(seed))}
}

// Apply mutates the request headers in place.
func (r *Rotator) Apply(req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rnd.Float64() < 0.3 {
		req.Header.Set("User-Agent", userAgents[r.rnd.Intn(len(userAgents))])
	}
	if r.rnd.Float64() < 0.2 {
		req.Header.Set("Accept", acceptHeaders[r.rnd.Intn(len(acceptHeaders))])
	}
	if r.rnd.Float64() < 0.1 {
		req.Header.Set("DNT", "1")
		req.Header.Set("Upgrade-Insecure-Requests", "1")
	}
}
