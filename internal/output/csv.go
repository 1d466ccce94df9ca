package output

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/deepdir/deepdir/internal/monitor"
	"github.com/deepdir/deepdir/internal/pipeline"
)

// CSVWriter writes results in CSV format.
type CSVWriter struct {
	w      *csv.Writer
	closer io.Closer
}

// NewCSVWriter creates a CSV output writer.
func NewCSVWriter(outputFile string) (*CSVWriter, error) {
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
	return &CSVWriter{w: csv.NewWriter(w), closer: closer}, nil
}

func (c *CSVWriter) WriteHeader() error {
	return c.w.Write([]string{"url", "status", "size", "content_type", "server", "scan_type", "priority", "technologies", "hints"})
}

func (c *CSVWriter) WriteResult(result *pipeline.RankedResult) error {
	return c.w.Write([]string{
		result.URL,
		strconv.Itoa(result.StatusCode),
		strconv.FormatInt(result.ContentLength, 10),
		result.ContentType,
		result.Server,
		result.ScanType,
		strconv.Itoa(result.Priority),
		strings.Join(result.Technologies, ";"),
		strings.Join(result.Hints, ";"),
	})
}

func (c *CSVWriter) WriteFooter(_ monitor.ScanStats) error {
	c.w.Flush()
	return c.w.Error()
}

func (c *CSVWriter) Close() error {
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}
