package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/domaindive/internal/model"
)

// JSONWriter outputs reports in JSON format for tool integration.
// Each Write emits one JSON document followed by a newline, so compact
// output of several reports is valid JSON Lines.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string

	// version, when set, wraps reports in a JSONReport envelope.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithVersion wraps each report with the tool version.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// JSONReport wraps a report with the version of the tool that produced it.
type JSONReport struct {
	// Version is the domaindive version that generated this report.
	Version string `json:"version"`

	// Report is the analysis report.
	Report *model.AnalysisReport `json:"report"`
}

// Write outputs the report in JSON format.
func (w *JSONWriter) Write(report *model.AnalysisReport) (int, error) {
	if w.version != "" {
		return w.writeJSON(&JSONReport{Version: w.version, Report: report})
	}
	return w.writeJSON(report)
}

// WriteDiff outputs the diff in JSON format.
func (w *JSONWriter) WriteDiff(diff *Diff) (int, error) {
	return w.writeJSON(diff)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	data = append(data, '\n')

	return w.output.Write(data)
}
