package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/nao1215/domaindive/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display.
// Output is plain ASCII unless color is enabled.
type SimpleWriter struct {
	baseWriter

	// color enables lipgloss styling of headings and statuses.
	color bool

	// verbose shows every field of long payloads.
	verbose bool

	// maxFields limits the fields printed per item when verbose is off.
	maxFields int

	heading lipgloss.Style
	okStyle lipgloss.Style
	bad     lipgloss.Style
	faint   lipgloss.Style
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithColor enables colored output.
func WithColor(color bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.color = color
	}
}

// WithVerbose disables the per-item field limit.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// WithMaxFields sets how many fields are printed per item.
func WithMaxFields(n int) SimpleWriterOption {
	return func(w *SimpleWriter) {
		if n > 0 {
			w.maxFields = n
		}
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		maxFields:  25,
	}

	for _, opt := range opts {
		opt(w)
	}

	// The renderer is bound to output, not os.Stdout, and color forces a
	// profile so pipes and files keep their escape codes.
	r := lipgloss.NewRenderer(output)
	if w.color {
		r.SetColorProfile(termenv.ANSI256)
	}
	w.heading = r.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	w.okStyle = r.NewStyle().Foreground(lipgloss.Color("42"))
	w.bad = r.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	w.faint = r.NewStyle().Faint(true)

	return w
}

func (w *SimpleWriter) style(s lipgloss.Style, text string) string {
	if !w.color {
		return text
	}
	return s.Render(text)
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.AnalysisReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeItems(&sb, report)
	w.writeErrors(&sb, report)
	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) rule(sb *strings.Builder, ch string) {
	sb.WriteString(strings.Repeat(ch, 70))
	sb.WriteString("\n")
}

func (w *SimpleWriter) section(sb *strings.Builder, title string) {
	w.rule(sb, "-")
	sb.WriteString(w.style(w.heading, title))
	sb.WriteString("\n")
	w.rule(sb, "-")
	sb.WriteString("\n")
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.AnalysisReport) {
	sb.WriteString("\n")
	w.rule(sb, "=")
	sb.WriteString(w.style(w.heading, "                         DOMAINDIVE REPORT"))
	sb.WriteString("\n")
	w.rule(sb, "=")
	sb.WriteString("\n")

	fmt.Fprintf(sb, "Address:       %s\n", report.Address())
	fmt.Fprintf(sb, "Analyzed:      %s\n", report.DateAnalyzed().Format(timeFormat))
	fmt.Fprintf(sb, "Items:         %d\n", len(report.Items()))

	switch {
	case report.FailedItems() > 0:
		fmt.Fprintf(sb, "Status:        %s\n", w.style(w.bad, fmt.Sprintf("%d analyzer(s) failed", report.FailedItems())))
	case report.HasErrors():
		fmt.Fprintf(sb, "Status:        %s\n", w.style(w.bad, fmt.Sprintf("%d dependency error(s)", len(report.ErrorKeys()))))
	default:
		fmt.Fprintf(sb, "Status:        %s\n", w.style(w.okStyle, "Complete"))
	}
	sb.WriteString("\n")
}

// writeItems writes one block per analyzer, in report order.
func (w *SimpleWriter) writeItems(sb *strings.Builder, report *model.AnalysisReport) {
	w.section(sb, "RESULTS")

	items := report.Items()
	if len(items) == 0 {
		sb.WriteString("  No results\n\n")
		return
	}

	for _, item := range items {
		label := analyzerLabel(item.Analyzer)
		if item.Failed {
			fmt.Fprintf(sb, "[%s] %s\n", w.style(w.bad, "!"), label)
			fmt.Fprintf(sb, "  error: %v\n\n", item.Data)
			continue
		}

		fmt.Fprintf(sb, "[%s] %s\n", w.style(w.okStyle, "+"), label)
		fields := Flatten(item.Data)
		shown := fields
		if !w.verbose && len(fields) > w.maxFields {
			shown = fields[:w.maxFields]
		}
		for _, f := range shown {
			fmt.Fprintf(sb, "  %s\n", f)
		}
		if len(shown) < len(fields) {
			sb.WriteString(w.style(w.faint, fmt.Sprintf("  ... %d more (use --verbose)", len(fields)-len(shown))))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
}

// writeErrors writes the dependency errors, sorted by key.
func (w *SimpleWriter) writeErrors(sb *strings.Builder, report *model.AnalysisReport) {
	keys := report.ErrorKeys()
	if len(keys) == 0 {
		return
	}

	w.section(sb, "DEPENDENCY ERRORS")
	errs := report.Errors()
	for _, key := range keys {
		fmt.Fprintf(sb, "  %s: %v\n", w.style(w.bad, key.String()), errs[key])
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	w.rule(sb, "=")
	sb.WriteString("Report generated by domaindive\n")
	sb.WriteString("https://github.com/nao1215/domaindive\n")
	w.rule(sb, "=")
}

// WriteDiff outputs a report comparison in human-readable format.
func (w *SimpleWriter) WriteDiff(diff *Diff) (int, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Report Comparison: %s\n", diff.Address)
	sb.WriteString(strings.Repeat("=", 60))
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "\nHealth: %s\n", w.healthText(diff.Health))
	fmt.Fprintf(&sb, "\nPrevious analysis: %s\n", diff.Previous.DateAnalyzed.Format(timeFormat))
	fmt.Fprintf(&sb, "Current analysis:  %s\n", diff.Current.DateAnalyzed.Format(timeFormat))

	sb.WriteString("\nSummary:\n")
	fmt.Fprintf(&sb, "  %-18s  %s\n", "Items", formatCountChange(diff.Previous.ItemCount, diff.Current.ItemCount))
	fmt.Fprintf(&sb, "  %-18s  %s\n", "Failed analyzers", formatCountChange(diff.Previous.FailedItems, diff.Current.FailedItems))
	fmt.Fprintf(&sb, "  %-18s  %s\n", "Dependency errors", formatCountChange(diff.Previous.ErrorCount, diff.Current.ErrorCount))

	for _, item := range diff.Items {
		if item.Status == StatusUnchanged {
			continue
		}
		fmt.Fprintf(&sb, "\n%s (%s):\n", analyzerLabel(item.Analyzer), item.Status)
		for _, f := range item.Added {
			fmt.Fprintf(&sb, "  [+] %s\n", f)
		}
		for _, f := range item.Removed {
			fmt.Fprintf(&sb, "  [-] %s\n", f)
		}
	}

	if len(diff.ErrorsAppeared) > 0 {
		fmt.Fprintf(&sb, "\nNew dependency errors (%d):\n", len(diff.ErrorsAppeared))
		for _, key := range diff.ErrorsAppeared {
			fmt.Fprintf(&sb, "  [+] %s\n", key)
		}
	}
	if len(diff.ErrorsCleared) > 0 {
		fmt.Fprintf(&sb, "\nCleared dependency errors (%d):\n", len(diff.ErrorsCleared))
		for _, key := range diff.ErrorsCleared {
			fmt.Fprintf(&sb, "  [-] %s\n", key)
		}
	}

	if n := diff.Count(StatusUnchanged); n > 0 {
		fmt.Fprintf(&sb, "\nUnchanged: %d analyzer(s)\n", n)
	}

	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) healthText(direction string) string {
	switch direction {
	case HealthImproved:
		return w.style(w.okStyle, "IMPROVED (fewer failures)")
	case HealthWorsened:
		return w.style(w.bad, "WORSENED (more failures)")
	default:
		return "UNCHANGED"
	}
}
