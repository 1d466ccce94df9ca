package probe

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCrawler_FollowsSameOriginLinks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			fmt.Fprintf(w, `<html><a href="/about">About</a> <a href="https://other.com/x">Out</a></html>`)
		case "/about":
			fmt.Fprintf(w, `<html><a href="/team">Team</a></html>`)
		case "/team":
			fmt.Fprintf(w, `<html>the team</html>`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewCrawler(testRequester(t), 0)
	results := c.Scan(context.Background(), srv.URL)

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3 (/, /about, /team)", len(results))
	}
	for _, r := range results {
		if r.ScanType != TypeCrawler {
			t.Errorf("scan type = %q, want %q", r.ScanType, TypeCrawler)
		}
	}
}

func TestCrawler_ExtractsJSLinks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			fmt.Fprintf(w, `<html><script>var cfg = "/config/app.json";</script></html>`)
		case "/config/app.json":
			fmt.Fprintf(w, `{"env":"prod"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewCrawler(testRequester(t), 0)
	results := c.Scan(context.Background(), srv.URL)

	found := false
	for _, r := range results {
		if r.URL == srv.URL+"/config/app.json" {
			found = true
		}
	}
	if !found {
		t.Error("JS string-literal link was not crawled")
	}
}

func TestCrawler_SkipsStaticAssets(t *testing.T) {
	requested := make(map[string]bool)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested[r.URL.Path] = true
		if r.URL.Path == "/" {
			fmt.Fprintf(w, `<html><a href="/logo.png">Logo</a> <a href="/page">Page</a></html>`)
		}
	}))
	defer srv.Close()

	c := NewCrawler(testRequester(t), 0)
	c.Scan(context.Background(), srv.URL)

	if requested["/logo.png"] {
		t.Error("static asset should not be fetched")
	}
	if !requested["/page"] {
		t.Error("regular page should be fetched")
	}
}

func TestCrawler_PageBudget(t *testing.T) {
	// Every page links to a fresh one; a budget of 3 stops the walk.
	n := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n++
		fmt.Fprintf(w, `<html><a href="/page%d">Next</a></html>`, n)
	}))
	defer srv.Close()

	c := NewCrawler(testRequester(t), 3)
	results := c.Scan(context.Background(), srv.URL)

	if len(results) != 3 {
		t.Errorf("got %d results, want exactly 3 (page budget)", len(results))
	}
}

func TestCrawler_VisitedPersistsAcrossScans(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprintf(w, `<html>page</html>`)
	}))
	defer srv.Close()

	c := NewCrawler(testRequester(t), 0)
	c.Scan(context.Background(), srv.URL)
	c.Scan(context.Background(), srv.URL)

	if hits != 1 {
		t.Errorf("server hit %d times across two scans of the same URL, want 1", hits)
	}
}
