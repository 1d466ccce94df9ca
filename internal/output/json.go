package output

import (
	"encoding/json"
	"io"
	"os"

	"github.com/deepdir/deepdir/internal/monitor"
	"github.com/deepdir/deepdir/internal/pipeline"
)

type jsonEntry struct {
	URL           string   `json:"url"`
	StatusCode    int      `json:"status"`
	ContentLength int64    `json:"size"`
	ContentType   string   `json:"content_type,omitempty"`
	Server        string   `json:"server,omitempty"`
	ScanType      string   `json:"scan_type"`
	Priority      int      `json:"priority"`
	Technologies  []string `json:"technologies,omitempty"`
	Endpoints     []string `json:"endpoints,omitempty"`
	Secrets       []string `json:"secrets,omitempty"`
	Hints         []string `json:"hints,omitempty"`
}

type jsonDoc struct {
	Results []jsonEntry `json:"results"`
	Stats   jsonStats   `json:"stats"`
}

type jsonStats struct {
	TotalRequests int     `json:"total_requests"`
	Successful    int     `json:"successful"`
	Failed        int     `json:"failed"`
	FoundPaths    int     `json:"found_paths"`
	ElapsedSec    float64 `json:"elapsed_seconds"`
	AvgRate       float64 `json:"avg_rate"`
}

// JSONWriter buffers results and writes a single JSON document on footer.
type JSONWriter struct {
	w       io.Writer
	closer  io.Closer
	entries []jsonEntry
}

// NewJSONWriter creates a JSON output writer.
func NewJSONWriter(outputFile string) (*JSONWriter, error) {
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
	return &JSONWriter{w: w, closer: closer}, nil
}

func (j *JSONWriter) WriteHeader() error { return nil }

func (j *JSONWriter) WriteResult(result *pipeline.RankedResult) error {
	j.entries = append(j.entries, jsonEntry{
		URL:           result.URL,
		StatusCode:    result.StatusCode,
		ContentLength: result.ContentLength,
		ContentType:   result.ContentType,
		Server:        result.Server,
		ScanType:      result.ScanType,
		Priority:      result.Priority,
		Technologies:  result.Technologies,
		Endpoints:     result.Endpoints,
		Secrets:       result.Secrets,
		Hints:         result.Hints,
	})
	return nil
}

func (j *JSONWriter) WriteFooter(stats monitor.ScanStats) error {
	enc := json.NewEncoder(j.w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonDoc{
		Results: j.entries,
		Stats: jsonStats{
			TotalRequests: stats.TotalRequests,
			Successful:    stats.Successful,
			Failed:        stats.Failed,
			FoundPaths:    stats.FoundPaths,
			ElapsedSec:    stats.Elapsed.Seconds(),
			AvgRate:       stats.AvgRate,
		},
	})
}

func (j *JSONWriter) Close() error {
	if j.closer != nil {
		return j.closer.Close()
	}
	return nil
}
