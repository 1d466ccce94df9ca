package output

import (
	"html/template"
	"io"
	"os"
	"time"

	"github.com/deepdir/deepdir/internal/monitor"
	"github.com/deepdir/deepdir/internal/pipeline"
)

var htmlReport = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<title>DeepDir Scan Results</title>
<style>
body { font-family: monospace; margin: 2em; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ccc; padding: 4px 8px; text-align: left; }
th { background: #eee; }
.s2 { color: #090; } .s3 { color: #099; } .s4 { color: #960; } .s5 { color: #900; }
footer { margin-top: 1em; color: #666; }
</style>
</head>
<body>
<h1>DeepDir Scan Results</h1>
<table>
<tr><th>Status</th><th>Size</th><th>URL</th><th>Type</th><th>Technologies</th><th>Hints</th></tr>
{{range .Results}}<tr>
<td class="s{{.StatusClass}}">{{.StatusCode}}</td>
<td>{{.ContentLength}}</td>
<td><a href="{{.URL}}">{{.URL}}</a></td>
<td>{{.ScanType}}</td>
<td>{{range .Technologies}}{{.}} {{end}}</td>
<td>{{range .Hints}}{{.}} {{end}}</td>
</tr>{{end}}
</table>
<footer>
{{.Stats.TotalRequests}} requests, {{.Stats.FoundPaths}} found, {{.Stats.Failed}} errors,
{{.Elapsed}} elapsed. Generated {{.Generated}}.
</footer>
</body>
</html>
`))

type htmlRow struct {
	*pipeline.RankedResult
	StatusClass int
}

// HTMLWriter buffers results and renders a standalone HTML report on
// footer.
type HTMLWriter struct {
	w      io.Writer
	closer io.Closer
	rows   []htmlRow
}

// NewHTMLWriter creates an HTML report writer.
func NewHTMLWriter(outputFile string) (*HTMLWriter, error) {
	var w io.Writer = os.Stdout
	var closer io.Closer
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return nil, err
		}
		w = f
		closer = f
	}
	return &HTMLWriter{w: w, closer: closer}, nil
}

func (h *HTMLWriter) WriteHeader() error { return nil }

func (h *HTMLWriter) WriteResult(result *pipeline.RankedResult) error {
	h.rows = append(h.rows, htmlRow{RankedResult: result, StatusClass: result.StatusCode / 100})
	return nil
}

func (h *HTMLWriter) WriteFooter(stats monitor.ScanStats) error {
	return htmlReport.Execute(h.w, map[string]any{
		"Results":   h.rows,
		"Stats":     stats,
		"Elapsed":   stats.Elapsed.Round(time.Millisecond).String(),
		"Generated": time.Now().Format(time.RFC1123),
	})
}

func (h *HTMLWriter) Close() error {
	if h.closer != nil {
		return h.closer.Close()
	}
	return nil
}
