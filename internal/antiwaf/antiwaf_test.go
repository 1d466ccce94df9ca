package antiwaf

import (
	"net/http"
	"testing"
)

func newRequest(t *testing.T) *http.Request {
	t.Helper()
	req, err := http.NewRequest("GET", "http://example.com/", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("User-Agent", "DeepDir/5.0")
	return req
}

func TestRotator_EventuallyRotatesHeaders(t *testing.T) {
	r := NewRotator(1)

	rotatedUA := false
	rotatedAccept := false
	for i := 0; i < 200; i++ {
		req := newRequest(t)
		r.Apply(req)
		if req.Header.Get("User-Agent") != "DeepDir/5.0" {
			rotatedUA = true
		}
		if req.Header.Get("Accept") != "" {
			rotatedAccept = true
		}
	}
	if !rotatedUA {
		t.Error("User-Agent never rotated over 200 requests")
	}
	if !rotatedAccept {
		t.Error("Accept header never set over 200 requests")
	}
}

func TestRotator_RotatedValuesComeFromKnownTables(t *testing.T) {
	known := make(map[string]bool, len(userAgents))
	for _, ua := range userAgents {
		known[ua] = true
	}

	r := NewRotator(42)
	for i := 0; i < 200; i++ {
		req := newRequest(t)
		r.Apply(req)
		ua := req.Header.Get("User-Agent")
		if ua != "DeepDir/5.0" && !known[ua] {
			t.Fatalf("rotated User-Agent %q is not in the rotation table", ua)
		}
	}
}

func TestRotator_DeterministicWithFixedSeed(t *testing.T) {
	collect := func() []string {
		r := NewRotator(7)
		var uas []string
		for i := 0; i < 50; i++ {
			req := newRequest(t)
			r.Apply(req)
			uas = append(uas, req.Header.Get("User-Agent"))
		}
		return uas
	}

	a, b := collect(), collect()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("rotation diverged at request %d with identical seeds", i)
		}
	}
}
