package scan

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/deepdir/deepdir/internal/analyze"
	"github.com/deepdir/deepdir/internal/probe"
)

// Extractor is the default LinkExtractor: hrefs from the result body
// resolved against the result URL, restricted to the origin's network
// location, with static assets excluded. Links outside the origin are a
// scope violation, silently filtered.
type Extractor struct{}

// ExtractInScopeLinks implements LinkExtractor.
func (Extractor) ExtractInScopeLinks(result analyze.ClassifiedResult, originURL string) []string {
	origin, err := url.Parse(originURL)
	if err != nil {
		return nil
	}
	page, err := url.Parse(result.URL)
	if err != nil {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(result.Body))
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var links []string

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		raw, ok := sel.Attr("href")
		if !ok {
			return
		}
		raw = strings.TrimSpace(raw)
		lower := strings.ToLower(raw)
		if raw == "" || strings.HasPrefix(raw, "#") ||
			strings.HasPrefix(lower, "javascript:") ||
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

		if !strings.EqualFold(resolved.Host, origin.Host) {
			return
		}
		path := strings.ToLower(resolved.Path)
		for _, ext := range probe.StaticAssetExts {
			if strings.HasSuffix(path, ext) {
				return
			}
		}

		link := resolved.String()
		if _, dup := seen[link]; !dup {
			seen[link] = struct{}{}
			links = append(links, link)
		}
	})

	return links
}
