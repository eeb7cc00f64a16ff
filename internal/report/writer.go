package report

import (
	"io"

	"github.com/nao1215/domaindive/internal/model"
)

// Writer defines the interface for report output.
type Writer interface {
	// Write outputs one analysis report.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.AnalysisReport) (int, error)

	// WriteDiff outputs the comparison of two reports.
	WriteDiff(diff *Diff) (int, error)
}

// MultiWriter writes to multiple Writers in order.
// This is useful for outputting to both terminal and file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *model.AnalysisReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteDiff outputs the diff to all configured Writers.
func (m *MultiWriter) WriteDiff(diff *Diff) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteDiff(diff)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
