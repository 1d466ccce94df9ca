package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/deepdir/deepdir/internal/monitor"
	"github.com/deepdir/deepdir/internal/pipeline"
)

var (
	statusSuccess  = color.New(color.FgGreen)
	statusRedirect = color.New(color.FgCyan)
	statusClient   = color.New(color.FgYellow)
	statusServer   = color.New(color.FgRed)
	dimText        = color.New(color.Faint)
)

// TextWriter writes colored text output, one line per ranked result.
type TextWriter struct {
	w       io.Writer
	noColor bool
	quiet   bool
}

// NewTextWriter creates a text output writer. If outputFile is empty,
// stdout is used. noColor disables ANSI escape codes.
func NewTextWriter(outputFile string, noColor, quiet bool) (*TextWriter, error) {
	var w io.Writer = os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return nil, err
		}
		w = f
		noColor = true
	}
	return &TextWriter{w: w, noColor: noColor, quiet: quiet}, nil
}

func (t *TextWriter) WriteHeader() error {
	if t.quiet {
		return nil
	}
	_, err := fmt.Fprintf(t.w, "%s\n", t.sprint(dimText, "Code      Size  URL"))
	return err
}

func (t *TextWriter) WriteResult(result *pipeline.RankedResult) error {
	code := t.sprint(t.colorForStatus(result.StatusCode), fmt.Sprintf("%3d", result.StatusCode))

	extras := ""
	if len(result.Technologies) > 0 {
		extras += " " + t.sprint(dimText, "["+strings.Join(result.Technologies, ", ")+"]")
	}
	if len(result.Secrets) > 0 {
		extras += " " + t.sprint(statusServer, fmt.Sprintf("[%d secrets]", len(result.Secrets)))
	}
	if len(result.Hints) > 0 {
		extras += " " + t.sprint(dimText, "("+strings.Join(result.Hints, ", ")+")")
	}

	_, err := fmt.Fprintf(t.w, "%s  %8d  %s%s\n",
		code, result.ContentLength, result.URL, extras)
	return err
}

func (t *TextWriter) WriteFooter(stats monitor.ScanStats) error {
	if t.quiet {
		return nil
	}
	_, err := fmt.Fprintf(os.Stderr,
		"\nCompleted: %d requests | Found: %d | Errors: %d | Duration: %s | %.1f req/s\n",
		stats.TotalRequests,
		stats.FoundPaths,
		stats.Failed,
		stats.Elapsed.Round(time.Millisecond),
		stats.AvgRate,
	)
	return err
}

func (t *TextWriter) Close() error {
	if closer, ok := t.w.(io.Closer); ok && t.w != os.Stdout {
		return closer.Close()
	}
	return nil
}

func (t *TextWriter) sprint(c *color.Color, s string) string {
	if t.noColor {
		return s
	}
	return c.Sprint(s)
}

func (t *TextWriter) colorForStatus(code int) *color.Color {
	switch {
	case code >= 200 && code < 300:
		return statusSuccess
	case code >= 300 && code < 400:
		return statusRedirect
	case code >= 400 && code < 500:
		return statusClient
	default:
		return statusServer
	}
}
