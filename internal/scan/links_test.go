package scan

import (
	"testing"

	"github.com/deepdir/deepdir/internal/analyze"
	"github.com/deepdir/deepdir/internal/probe"
)

func htmlResult(url, body string) analyze.ClassifiedResult {
	return analyze.ClassifiedResult{RawResult: probe.RawResult{URL: url, Body: body}}
}

func TestExtractInScopeLinks_ResolvesRelativeLinks(t *testing.T) {
	r := htmlResult("http://example.com/dir/page.html",
		`<a href="/admin">Admin</a> <a href="sub/">Sub</a>`)

	links := Extractor{}.ExtractInScopeLinks(r, "http://example.com")
	want := []string{"http://example.com/admin", "http://example.com/dir/sub/"}
	if len(links) != len(want) {
		t.Fatalf("got %v, want %v", links, want)
	}
	for i := range want {
		if links[i] != want[i] {
			t.Errorf("links[%d] = %q, want %q", i, links[i], want[i])
		}
	}
}

func TestExtractInScopeLinks_CrossOriginRejected(t *testing.T) {
	r := htmlResult("http://example.com/",
		`<a href="https://other.com/page">External</a> <a href="/local">Local</a>`)

	links := Extractor{}.ExtractInScopeLinks(r, "http://example.com")
	if len(links) != 1 || links[0] != "http://example.com/local" {
		t.Errorf("got %v, want only the local link", links)
	}
}

func TestExtractInScopeLinks_StaticAssetsExcluded(t *testing.T) {
	r := htmlResult("http://example.com/",
		`<a href="/logo.png">Logo</a> <a href="/style.css">CSS</a> <a href="/report.pdf">PDF</a>`)

	links := Extractor{}.ExtractInScopeLinks(r, "http://example.com")
	if len(links) != 1 || links[0] != "http://example.com/report.pdf" {
		t.Errorf("got %v, want only the non-asset link", links)
	}
}

func TestExtractInScopeLinks_SchemesAndFragmentsRejected(t *testing.T) {
	r := htmlResult("http://example.com/",
		`<a href="#top">Top</a> <a href="javascript:void(0)">JS</a> <a href="mailto:a@b.com">Mail</a>`)

	if links := (Extractor{}).ExtractInScopeLinks(r, "http://example.com"); len(links) != 0 {
		t.Errorf("got %v, want no links", links)
	}
}

func TestExtractInScopeLinks_Deduplicated(t *testing.T) {
	r := htmlResult("http://example.com/",
		`<a href="/page">1</a> <a href="/page">2</a> <a href="/page#sec">3</a>`)

	if links := (Extractor{}).ExtractInScopeLinks(r, "http://example.com"); len(links) != 1 {
		t.Errorf("got %v, want a single deduplicated link", links)
	}
}
