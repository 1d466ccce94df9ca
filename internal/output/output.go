// Package output renders ranked results in text, JSON, CSV, and HTML.
package output

import (
	"fmt"

	"github.com/deepdir/deepdir/internal/monitor"
	"github.com/deepdir/deepdir/internal/pipeline"
)

// Writer is implemented by each output format.
type Writer interface {
	WriteHeader() error
	WriteResult(result *pipeline.RankedResult) error
	WriteFooter(stats monitor.ScanStats) error
	Close() error
}

// NewWriter creates the writer for the given format. outputFile may be
// empty, selecting stdout.
func NewWriter(format, outputFile string, noColor, quiet bool) (Writer, error) {
	switch format {
	case "json":
		return NewJSONWriter(outputFile)
	case "csv":
		return NewCSVWriter(outputFile)
	case "html":
		return NewHTMLWriter(outputFile)
	case "text":
		return NewTextWriter(outputFile, noColor, quiet)
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}
