// Package urlutil provides the URL normalization shared by the frontier's
// visited set and the pipeline's dedup keys, so "the same URL" means the
// same thing in both places.
package urlutil

import (
	"net/url"
	"strings"
)

// Normalize canonicalizes a URL for identity comparison: scheme and host
// are lowercased, the fragment is dropped, and a trailing slash on a
// non-root path is removed. Unparseable input is returned as-is.
func Normalize(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	if len(u.Path) > 1 {
		u.Path = strings.TrimRight(u.Path, "/")
	}
	return u.String()
}

// SameOrigin reports whether two URLs share scheme-independent network
// location (host and port).
func SameOrigin(a, b string) bool {
	ua, err := url.Parse(a)
	if err != nil {
		return false
	}
	ub, err := url.Parse(b)
	if err != nil {
		return false
	}
	return strings.EqualFold(ua.Host, ub.Host)
}
