// Package report renders analysis reports and report diffs.
//
// Three writers implement the Writer interface:
//   - SimpleWriter: text for terminal display, optionally colored
//   - JSONWriter: structured JSON for tool integration
//   - MarkdownWriter: GitHub-flavored Markdown for sharing
//
// Item data is rendered generically: every analyzer payload is flattened
// into "field: value" lines, so new analyzers need no writer changes.
// Diff compares two reports for the same address.
package report
