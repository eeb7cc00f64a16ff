package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/domaindive/internal/model"
)

// MarkdownWriter outputs reports in GitHub-flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.AnalysisReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeItems(md, report)
	w.writeErrors(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the run information table and an alert summarizing
// the run outcome.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.AnalysisReport) {
	md.H1("domaindive Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Address", "`" + report.Address() + "`"},
			{"Analyzed", report.DateAnalyzed().Format(timeFormat)},
			{"Items", strconv.Itoa(len(report.Items()))},
			{"Failed analyzers", strconv.Itoa(report.FailedItems())},
			{"Dependency errors", strconv.Itoa(len(report.ErrorKeys()))},
		},
	})
	md.PlainText("")

	switch {
	case report.FailedItems() > 0:
		md.Cautionf("%d analyzer(s) failed. Their items hold the error message.", report.FailedItems())
	case report.HasErrors():
		md.Warningf("%d dependency fetch(es) failed. Affected analyzers show placeholders.", len(report.ErrorKeys()))
	default:
		md.Tip("Every dependency was fetched and every analyzer succeeded.")
	}
	md.PlainText("")

	if len(report.Items()) > 0 {
		w.writePieChart(md, report)
	}
}

// writePieChart writes a mermaid pie chart of analyzer outcomes.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.AnalysisReport) {
	failed := report.FailedItems()
	succeeded := len(report.Items()) - failed

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Analyzer Outcomes"),
		piechart.WithShowData(true),
	)
	if succeeded > 0 {
		chart.LabelAndIntValue("Succeeded", uint64(succeeded))
	}
	if failed > 0 {
		chart.LabelAndIntValue("Failed", uint64(failed))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeItems writes one section per analyzer, in report order.
func (w *MarkdownWriter) writeItems(md *markdown.Markdown, report *model.AnalysisReport) {
	md.H2("Results")
	md.PlainText("")

	items := report.Items()
	if len(items) == 0 {
		md.PlainText("No results.")
		md.PlainText("")
		return
	}

	for _, item := range items {
		md.H3(analyzerLabel(item.Analyzer))
		md.PlainText("")

		if item.Failed {
			md.Cautionf("Analyzer failed: %v", item.Data)
			md.PlainText("")
			continue
		}

		fields := Flatten(item.Data)
		rows := make([][]string, len(fields))
		for i, f := range fields {
			path := f.Path
			if path == "" {
				path = "-"
			}
			rows[i] = []string{"`" + path + "`", truncateString(f.Value, 80)}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Field", "Value"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}

// writeErrors writes the dependency error table.
func (w *MarkdownWriter) writeErrors(md *markdown.Markdown, report *model.AnalysisReport) {
	keys := report.ErrorKeys()
	if len(keys) == 0 {
		return
	}

	md.H2("Dependency Errors")
	md.PlainText("")

	errs := report.Errors()
	rows := make([][]string, len(keys))
	for i, key := range keys {
		rows[i] = []string{"`" + key.String() + "`", truncateString(errs[key].Error(), 100)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Dependency", "Error"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [domaindive](https://github.com/nao1215/domaindive)*")
}

// WriteDiff outputs a report comparison in Markdown format.
func (w *MarkdownWriter) WriteDiff(diff *Diff) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Report Comparison: " + diff.Address)
	md.PlainText("")
	md.H2("Summary")
	md.PlainText("")
	md.PlainTextf("**Health:** %s", diff.Health)
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Previous", "Current", "Change"},
		Rows: [][]string{
			{"Date", diff.Previous.DateAnalyzed.Format(timeFormat), diff.Current.DateAnalyzed.Format(timeFormat), "-"},
			{"Items", strconv.Itoa(diff.Previous.ItemCount), strconv.Itoa(diff.Current.ItemCount),
				formatDelta(diff.Current.ItemCount - diff.Previous.ItemCount)},
			{"Failed analyzers", strconv.Itoa(diff.Previous.FailedItems), strconv.Itoa(diff.Current.FailedItems),
				formatDelta(diff.Current.FailedItems - diff.Previous.FailedItems)},
			{"Dependency errors", strconv.Itoa(diff.Previous.ErrorCount), strconv.Itoa(diff.Current.ErrorCount),
				formatDelta(diff.Current.ErrorCount - diff.Previous.ErrorCount)},
		},
	})
	md.PlainText("")

	if !diff.HasChanges() {
		md.Note("No differences between the two reports.")
		md.PlainText("")
		return len(md.String()), md.Build()
	}

	for _, item := range diff.Items {
		if item.Status == StatusUnchanged {
			continue
		}
		md.H3(analyzerLabel(item.Analyzer) + " (" + string(item.Status) + ")")
		md.PlainText("")
		lines := make([]string, 0, len(item.Added)+len(item.Removed))
		for _, f := range item.Added {
			lines = append(lines, "**+** `"+f+"`")
		}
		for _, f := range item.Removed {
			lines = append(lines, "~~`"+f+"`~~")
		}
		if len(lines) > 0 {
			md.BulletList(lines...)
			md.PlainText("")
		}
	}

	if len(diff.ErrorsAppeared) > 0 {
		md.H2("New Dependency Errors")
		md.PlainText("")
		md.BulletList(keyStrings(diff.ErrorsAppeared)...)
		md.PlainText("")
	}
	if len(diff.ErrorsCleared) > 0 {
		md.H2("Cleared Dependency Errors")
		md.PlainText("")
		md.BulletList(keyStrings(diff.ErrorsCleared)...)
		md.PlainText("")
	}

	if n := diff.Count(StatusUnchanged); n > 0 {
		md.HorizontalRule()
		md.PlainText("")
		md.PlainTextf("*%d analyzer(s) unchanged*", n)
	}

	return len(md.String()), md.Build()
}

func keyStrings(keys []model.DependencyKey) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	return out
}
