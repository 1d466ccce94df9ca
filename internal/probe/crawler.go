package probe

import (
	"bytes"
	"context"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
)

// jsLinkPatterns pull path-looking string literals out of inline scripts
// and raw JS bodies that DOM parsing cannot see.
var jsLinkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)["']([^"']*\.(?:js|json|xml|txt|config|bak|old|backup))["']`),
	regexp.MustCompile(`(?i)["'](/[^"']*\.(?:js|json|xml|txt|config|bak|old|backup))["']`),
}

// StaticAssetExts are never crawled into or recursed on; they cannot
// contain links worth following and dominate page weight. Shared with the
// scheduler's link extractor.
var StaticAssetExts = []string{
	".jpg", ".jpeg", ".png", ".gif", ".css", ".ico", ".woff", ".woff2",
}

// Crawler walks same-origin links breadth-first starting from the target
// URL. The visited set is shared across Scan calls and bounded, so
// recursive targets on the same origin never re-fetch pages.
type Crawler struct {
	req *Requester

	mu       sync.Mutex
	visited  map[string]struct{}
	maxPages int
}

// NewCrawler creates a crawling probe source bounded to maxPages fetched
// pages in total. maxPages <= 0 selects the default of 1000.
func NewCrawler(req *Requester, maxPages int) *Crawler {
	if maxPages <= 0 {
		maxPages = 1000
	}
	return &Crawler{
		req:      req,
		visited:  make(map[string]struct{}),
		maxPages: maxPages,
	}
}

func (c *Crawler) Name() string { return TypeCrawler }

// Scan crawls from baseURL, returning one raw result per fetched page.
// Crawl results keep the full body so link extraction downstream (and
// the classifier) see everything the page served.
func (c *Crawler) Scan(ctx context.Context, baseURL string) []RawResult {
	logrus.Debugf("crawl starting from %s", baseURL)

	base, err := url.Parse(baseURL)
	if err != nil {
		logrus.Warnf("crawl skipped, bad base URL %q: %v", baseURL, err)
		return nil
	}

	var results []RawResult
	queue := []string{baseURL}

	for len(queue) > 0 {
		select {
		case <-ctx.Done():
			return results
		default:
		}

		current := queue[0]
		queue = queue[1:]

		if !c.markVisited(current) {
			continue
		}

		resp, err := c.req.Do(ctx, "GET", current)
		if err != nil {
			continue
		}

		results = append(results, RawResult{
			URL:           current,
			StatusCode:    resp.StatusCode,
			ContentLength: resp.ContentLength,
			ContentType:   resp.ContentType,
			Server:        resp.Server,
			Body:          string(resp.Body),
			Headers:       resp.Headers,
			ScanType:      TypeCrawler,
		})

		for _, link := range c.extractLinks(resp.Body, current) {
			if !c.inScope(link, base) {
				continue
			}
			if !c.seen(link) {
				queue = append(queue, link)
			}
		}
	}

	return results
}

// markVisited atomically records a URL as fetched. Returns false when the
// URL was already visited or the page budget is exhausted.
func (c *Crawler) markVisited(u string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.visited) >= c.maxPages {
		return false
	}
	if _, ok := c.visited[u]; ok {
		return false
	}
	c.visited[u] = struct{}{}
	return true
}

func (c *Crawler) seen(u string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.visited[u]
	return ok
}

// extractLinks resolves every href/src in the document plus JS string
// literals against the page URL.
func (c *Crawler) extractLinks(body []byte, pageURL string) []string {
	page, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	dedup := make(map[string]struct{})
	var links []string
	add := func(raw string) {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "#") {
			return
		}
		lower := strings.ToLower(raw)
		if strings.HasPrefix(lower, "javascript:") ||
			strings.HasPrefix(lower, "mailto:") ||
			strings.HasPrefix(lower, "data:") {
			return
		}
		ref, err := url.Parse(raw)
		if err != nil {
			return
		}
		resolved := page.ResolveReference(ref)
		resolved.Fragment = ""
		u := resolved.String()
		if _, ok := dedup[u]; !ok {
			dedup[u] = struct{}{}
			links = append(links, u)
		}
	}

	if doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body)); err == nil {
		doc.Find("a[href], link[href]").Each(func(_ int, s *goquery.Selection) {
			if href, ok := s.Attr("href"); ok {
				add(href)
			}
		})
		doc.Find("script[src], img[src]").Each(func(_ int, s *goquery.Selection) {
			if src, ok := s.Attr("src"); ok {
				add(src)
			}
		})
	}

	content := string(body)
	for _, re := range jsLinkPatterns {
		for _, m := range re.FindAllStringSubmatch(content, -1) {
			if len(m) > 1 {
				add(m[1])
			}
		}
	}

	return links
}

// inScope reports whether a link stays on the crawl origin and is not a
// static asset.
func (c *Crawler) inScope(link string, base *url.URL) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	if u.Host != base.Host {
		return false
	}
	path := strings.ToLower(u.Path)
	for _, ext := range StaticAssetExts {
		if strings.HasSuffix(path, ext) {
			return false
		}
	}
	return true
}
