// Package analyze classifies raw probe results: technology fingerprints,
// endpoint extraction, secret detection, and file-type hints. Analysis is
// a pure function of the response; it carries no state between results.
package analyze

import (
	"regexp"
	"sort"
	"strings"

	"github.com/deepdir/deepdir/internal/probe"
)

// ClassifiedResult is a raw result enriched with classifier output.
type ClassifiedResult struct {
	probe.RawResult

	Technologies []string
	Endpoints    []string
	Secrets      []string
	Hints        []string // file-type hints derived from the URL
	Interesting  bool
}

var techPatterns = map[string][]*regexp.Regexp{
	"WordPress":  compileAll(`wp-content`, `wp-includes`, `wordpress`),
	"Joomla":     compileAll(`joomla`, `com_content`, `mod_login`),
	"Drupal":     compileAll(`drupal`, `sites/all`, `node/`),
	"Laravel":    compileAll(`laravel`, `artisan`, `Illuminate`),
	"Django":     compileAll(`django`, `csrfmiddlewaretoken`),
	"Flask":      compileAll(`flask`, `werkzeug`),
	"Express":    compileAll(`express`, `nodejs`),
	"React":      compileAll(`react`, `jsx`, `componentDidMount`),
	"Angular":    compileAll(`angular`, `ng-app`, `ng-controller`),
	"Vue":        compileAll(`vue`, `v-bind`, `v-model`),
	"Bootstrap":  compileAll(`bootstrap`, `btn btn-`),
	"jQuery":     compileAll(`jquery`, `\$\(document\)`),
	"PHP":        compileAll(`<\?php`, `phpinfo\(\)`),
	"ASP.NET":    compileAll(`asp\.net`, `__VIEWSTATE`),
	"Java":       compileAll(`jsp`, `servlet`, `java\.lang`),
	"Apache":     compileAll(`apache`, `httpd`),
	"Nginx":      compileAll(`nginx`),
	"IIS":        compileAll(`microsoft-iis`),
	"Tomcat":     compileAll(`tomcat`),
	"MySQL":      compileAll(`mysql`, `phpmyadmin`),
	"PostgreSQL": compileAll(`postgresql`, `pg_`),
	"MongoDB":    compileAll(`mongodb`),
	"Redis":      compileAll(`redis`),
}

var endpointPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)href=["']([^"']+)["']`),
	regexp.MustCompile(`(?i)action=["']([^"']+)["']`),
	regexp.MustCompile(`(?i)["']([^"']*api[^"']*)["']`),
	regexp.MustCompile(`(?i)["']([^"']*endpoint[^"']*)["']`),
}

var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)api[_-]?key[=:]["']?[a-zA-Z0-9_-]{20,}`),
	regexp.MustCompile(`(?i)secret[_-]?key[=:]["']?[a-zA-Z0-9_-]{20,}`),
	regexp.MustCompile(`(?i)access[_-]?token[=:]["']?[a-zA-Z0-9_-]{20,}`),
	regexp.MustCompile(`(?i)auth[_-]?token[=:]["']?[a-zA-Z0-9_-]{20,}`),
	regexp.MustCompile(`Bearer\s+[a-zA-Z0-9_.-]{20,}`),
	regexp.MustCompile(`Authorization:\s*Basic\s+[a-zA-Z0-9+/=]{20,}`),
	regexp.MustCompile(`-----BEGIN [A-Z ]*PRIVATE KEY-----`),
	regexp.MustCompile(`AWS_ACCESS_KEY_ID`),
	regexp.MustCompile(`AWS_SECRET_ACCESS_KEY`),
	regexp.MustCompile(`DATABASE_URL`),
	regexp.MustCompile(`JWT_SECRET`),
	regexp.MustCompile(`SESSION_SECRET`),
}

// hintPatterns classify the URL itself: naming conventions that suggest
// what kind of resource was found.
var hintPatterns = []struct {
	hint  string
	words []string
}{
	{"backup-file", []string{".bak", ".backup", ".old", ".orig", ".tmp", ".swp", ".save", "~", "_bak", "_old", "_backup"}},
	{"config-file", []string{"config", "settings", "configuration", ".ini", ".yml", ".yaml", ".env", ".properties"}},
	{"admin-panel", []string{"admin", "administrator", "admincp", "cpanel", "controlpanel", "manage", "backend", "backoffice"}},
	{"api-endpoint", []string{"api", "rest", "graphql", "soap", "rpc"}},
	{"upload-dir", []string{"upload", "uploads", "media"}},
	{"database", []string{"database", "sql", "mysql", "postgres", "mongo"}},
	{"log-file", []string{"log", "logs", "access", "error", "debug"}},
	{"source-code", []string{".php", ".js", ".py", ".java", ".rb", ".cpp"}},
}

// interestingStatus marks status codes that make a result interesting on
// their own, before any content inspection.
var interestingStatus = map[int]struct{}{
	200: {}, 201: {}, 301: {}, 302: {}, 401: {}, 403: {}, 500: {},
}

// Analyze classifies a raw result. The output depends only on the
// result's status, headers, and body.
func Analyze(raw probe.RawResult) ClassifiedResult {
	cr := ClassifiedResult{RawResult: raw}

	cr.Technologies = detectTechnologies(raw.Body, raw.Server)
	cr.Endpoints = extractEndpoints(raw.Body)
	cr.Secrets = detectSecrets(raw.Body)
	cr.Hints = detectHints(raw.URL)

	if _, ok := interestingStatus[raw.StatusCode]; ok {
		cr.Interesting = true
	}
	if raw.ContentLength > 0 {
		cr.Interesting = true
	}

	return cr
}

func detectTechnologies(body, server string) []string {
	haystack := body + "\n" + server
	var techs []string
	for tech, patterns := range techPatterns {
		for _, re := range patterns {
			if re.MatchString(haystack) {
				techs = append(techs, tech)
				break
			}
		}
	}
	sort.Strings(techs)
	return techs
}

func extractEndpoints(body string) []string {
	seen := make(map[string]struct{})
	var endpoints []string
	for _, re := range endpointPatterns {
		for _, m := range re.FindAllStringSubmatch(body, -1) {
			if len(m) < 2 {
				continue
			}
			ep := strings.TrimSpace(m[1])
			lower := strings.ToLower(ep)
			if ep == "" ||
				strings.HasPrefix(lower, "http") ||
				strings.HasPrefix(lower, "javascript:") ||
				strings.HasPrefix(lower, "mailto:") ||
				strings.HasPrefix(ep, "#") {
				continue
			}
			if _, ok := seen[ep]; !ok {
				seen[ep] = struct{}{}
				endpoints = append(endpoints, ep)
			}
		}
	}
	return endpoints
}

func detectSecrets(body string) []string {
	seen := make(map[string]struct{})
	var secrets []string
	for _, re := range secretPatterns {
		for _, m := range re.FindAllString(body, -1) {
			if _, ok := seen[m]; !ok {
				seen[m] = struct{}{}
				secrets = append(secrets, m)
			}
		}
	}
	return secrets
}

func detectHints(rawURL string) []string {
	lower := strings.ToLower(rawURL)
	var hints []string
	for _, hp := range hintPatterns {
		for _, w := range hp.words {
			if strings.Contains(lower, w) {
				hints = append(hints, hp.hint)
				break
			}
		}
	}
	return hints
}

func compileAll(patterns ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		res[i] = regexp.MustCompile(`(?i)` + p)
	}
	return res
}
