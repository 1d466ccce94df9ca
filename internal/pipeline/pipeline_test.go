package pipeline

import (
	"testing"

	"github.com/deepdir/deepdir/internal/analyze"
	"github.com/deepdir/deepdir/internal/probe"
)

func result(url string, status int, size int64, body string) analyze.ClassifiedResult {
	return analyze.ClassifiedResult{RawResult: probe.RawResult{
		URL:           url,
		StatusCode:    status,
		ContentLength: size,
		Body:          body,
	}}
}

func newPipeline(t *testing.T, cfg FilterConfig) *Pipeline {
	t.Helper()
	p, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func TestSubmit_ExactDuplicateDropped(t *testing.T) {
	p := newPipeline(t, FilterConfig{})

	r := result("http://example.com/admin", 200, 500, "admin panel")
	if got := p.Submit([]analyze.ClassifiedResult{r}); got != 1 {
		t.Errorf("first submit accepted %d, want 1", got)
	}
	if got := p.Submit([]analyze.ClassifiedResult{r}); got != 0 {
		t.Errorf("duplicate submit accepted %d, want 0", got)
	}
	if n := len(p.Drain()); n != 1 {
		t.Errorf("drain returned %d results, want 1", n)
	}
}

func TestSubmit_NormalizedURLsShareDedupKey(t *testing.T) {
	p := newPipeline(t, FilterConfig{})

	p.Submit([]analyze.ClassifiedResult{result("http://Example.com/admin/", 200, 500, "a")})
	if got := p.Submit([]analyze.ClassifiedResult{result("http://example.com/admin", 200, 500, "a")}); got != 0 {
		t.Errorf("normalized duplicate accepted %d, want 0", got)
	}
}

func TestSubmit_SameURLDifferentStatusKept(t *testing.T) {
	p := newPipeline(t, FilterConfig{})

	p.Submit([]analyze.ClassifiedResult{
		result("http://example.com/admin", 200, 500, "body one"),
		result("http://example.com/admin", 301, 500, "body two"),
	})
	if n := len(p.Drain()); n != 2 {
		t.Errorf("got %d results, want 2 (distinct statuses)", n)
	}
}

func TestSubmit_ContentCollapseIgnoresWhitespaceAndCase(t *testing.T) {
	p := newPipeline(t, FilterConfig{})

	p.Submit([]analyze.ClassifiedResult{
		result("http://example.com/a", 200, 500, "Hello World"),
		result("http://example.com/b", 200, 500, "hello\n\tworld"),
	})
	if n := len(p.Drain()); n != 1 {
		t.Errorf("got %d results, want 1 (equivalent bodies collapse)", n)
	}
}

func TestSubmit_RepresentativePrefers200(t *testing.T) {
	p := newPipeline(t, FilterConfig{})

	p.Submit([]analyze.ClassifiedResult{
		result("http://example.com/a", 403, 500, "same body"),
		result("http://example.com/b", 200, 500, "same body"),
	})
	results := p.Drain()
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].StatusCode != 200 {
		t.Errorf("representative status = %d, want 200", results[0].StatusCode)
	}
	if results[0].URL != "http://example.com/b" {
		t.Errorf("representative URL = %q, want the 200 result", results[0].URL)
	}
}

func TestSubmit_RepresentativePrefersLowerStatusAmongNon200(t *testing.T) {
	p := newPipeline(t, FilterConfig{})

	p.Submit([]analyze.ClassifiedResult{
		result("http://example.com/a", 403, 500, "same body"),
		result("http://example.com/b", 301, 500, "same body"),
	})
	results := p.Drain()
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].StatusCode != 301 {
		t.Errorf("representative status = %d, want 301", results[0].StatusCode)
	}
}

func TestSubmit_EqualStatusKeepsEarlierResult(t *testing.T) {
	p := newPipeline(t, FilterConfig{})

	p.Submit([]analyze.ClassifiedResult{
		result("http://example.com/first", 200, 500, "same body"),
		result("http://example.com/second", 200, 500, "same body"),
	})
	results := p.Drain()
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].URL != "http://example.com/first" {
		t.Errorf("representative = %q, want the earlier result", results[0].URL)
	}
}

func TestDrain_OrderIndependentOfSubmissionOrder(t *testing.T) {
	batch := []analyze.ClassifiedResult{
		result("http://example.com/a", 403, 500, "body a"),
		result("http://example.com/b", 200, 500, "body b"),
		result("http://example.com/c", 301, 500, "body c"),
		result("http://example.com/d", 200, 500, "Body B"), // collapses with /b
	}

	forward := newPipeline(t, FilterConfig{})
	forward.Submit(batch)

	reversed := newPipeline(t, FilterConfig{})
	for i := len(batch) - 1; i >= 0; i-- {
		reversed.Submit([]analyze.ClassifiedResult{batch[i]})
	}

	a, b := forward.Drain(), reversed.Drain()
	if len(a) != len(b) {
		t.Fatalf("result counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].StatusCode != b[i].StatusCode || a[i].Priority != b[i].Priority {
			t.Errorf("result[%d] differs between submission orders: (%d,%d) vs (%d,%d)",
				i, a[i].StatusCode, a[i].Priority, b[i].StatusCode, b[i].Priority)
		}
	}
}

func TestDrain_SortedByPriorityThenDiscoveryOrder(t *testing.T) {
	p := newPipeline(t, FilterConfig{})

	p.Submit([]analyze.ClassifiedResult{
		result("http://example.com/errors", 500, 500, "body 1"),
		result("http://example.com/login", 403, 500, "body 2"),
		result("http://example.com/index", 200, 500, "body 3"),
		result("http://example.com/moved", 301, 500, "body 4"),
		result("http://example.com/other", 200, 500, "body 5"),
	})

	results := p.Drain()
	wantOrder := []string{
		"http://example.com/index", // 200, discovered first
		"http://example.com/other", // 200, discovered later
		"http://example.com/moved", // 301
		"http://example.com/login", // 403
		"http://example.com/errors",
	}
	if len(results) != len(wantOrder) {
		t.Fatalf("got %d results, want %d", len(results), len(wantOrder))
	}
	for i, want := range wantOrder {
		if results[i].URL != want {
			t.Errorf("result[%d] = %s, want %s", i, results[i].URL, want)
		}
	}
}

func TestScore_StatusAndSizeAdjustments(t *testing.T) {
	cases := []struct {
		status int
		size   int64
		want   int
	}{
		{200, 500, 0},
		{301, 500, 1},
		{302, 500, 1},
		{403, 500, 2},
		{401, 500, 3},
		{500, 500, 10},
		{200, 0, 5},           // empty body
		{200, 50, 2},          // tiny body
		{200, 2_000_000, 1},   // huge body
		{403, 0, 7},           // combined
		{500, 2_000_000, 11},  // combined
	}
	for _, c := range cases {
		got := score(result("http://x/", c.status, c.size, ""))
		if got != c.want {
			t.Errorf("score(status=%d, size=%d) = %d, want %d", c.status, c.size, got, c.want)
		}
	}
}

func TestSubmit_FilteredResultsNotCounted(t *testing.T) {
	p := newPipeline(t, FilterConfig{ExcludeStatus: []int{404}})

	got := p.Submit([]analyze.ClassifiedResult{
		result("http://example.com/missing", 404, 500, "nothing here"),
		result("http://example.com/admin", 200, 500, "admin"),
	})
	if got != 1 {
		t.Errorf("accepted %d, want 1 (404 excluded)", got)
	}
}

func TestSubmit_ConcurrentBatches(t *testing.T) {
	p := newPipeline(t, FilterConfig{})

	done := make(chan struct{})
	for w := 0; w < 8; w++ {
		go func(w int) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 50; i++ {
				// Same URL set from every worker: dedup must keep one copy.
				p.Submit([]analyze.ClassifiedResult{
					result("http://example.com/admin", 200, 500, "admin page"),
				})
			}
		}(w)
	}
	for w := 0; w < 8; w++ {
		<-done
	}

	if n := len(p.Drain()); n != 1 {
		t.Errorf("got %d results after concurrent duplicate submits, want 1", n)
	}
}
