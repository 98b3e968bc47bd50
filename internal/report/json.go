package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/topwords/internal/model"
)

// JSONWriter outputs the run in JSON format.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// version is embedded in the output when set.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint enables pretty-printed JSON with two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
	}
}

// WithVersion records the topwords version in the output.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// JSONReport is the document written by JSONWriter.
type JSONReport struct {
	// Version is the topwords version that produced the report.
	Version string `json:"version,omitempty"`

	// Run is the counted run.
	Run *model.Run `json:"run"`

	// DurationsMillis repeats Run.Durations in milliseconds.
	DurationsMillis map[string]float64 `json:"durations_ms,omitempty"`
}

// NewJSONReport wraps run with version information.
func NewJSONReport(run *model.Run, version string) *JSONReport {
	r := &JSONReport{Version: version, Run: run}
	if len(run.Durations) > 0 {
		r.DurationsMillis = make(map[string]float64, len(run.Durations))
		for stage, d := range run.Durations {
			r.DurationsMillis[stage] = float64(d.Microseconds()) / 1000
		}
	}
	return r
}

// Write outputs the run wrapped in a JSONReport.
func (w *JSONWriter) Write(run *model.Run) (int, error) {
	var (
		data []byte
		err  error
	)
	report := NewJSONReport(run, w.version)
	if w.indent {
		data, err = json.MarshalIndent(report, "", "  ")
	} else {
		data, err = json.Marshal(report)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}
