package report

import (
	"slices"
	"time"

	"github.com/nao1215/domaindive/internal/model"
)

// ChangeStatus describes how one analyzer's item changed between reports.
type ChangeStatus string

const (
	// StatusUnchanged means the item data is identical.
	StatusUnchanged ChangeStatus = "unchanged"
	// StatusChanged means the item data differs.
	StatusChanged ChangeStatus = "changed"
	// StatusAdded means the analyzer only ran in the newer report.
	StatusAdded ChangeStatus = "added"
	// StatusRemoved means the analyzer only ran in the older report.
	StatusRemoved ChangeStatus = "removed"
)

// Health directions between two reports.
const (
	HealthImproved  = "improved"
	HealthWorsened  = "worsened"
	HealthUnchanged = "unchanged"
)

// ReportSummary holds the counts of one side of a diff.
type ReportSummary struct {
	DateAnalyzed time.Time `json:"date_analyzed"`
	ItemCount    int       `json:"item_count"`
	FailedItems  int       `json:"failed_items"`
	ErrorCount   int       `json:"error_count"`
}

// ItemDiff is the change of one analyzer's item.
type ItemDiff struct {
	// Analyzer is the analyzer name.
	Analyzer string `json:"analyzer"`

	// Status is how the item changed.
	Status ChangeStatus `json:"status"`

	// Added holds the flattened fields only present in the newer item.
	Added []string `json:"added,omitempty"`

	// Removed holds the flattened fields only present in the older item.
	Removed []string `json:"removed,omitempty"`
}

// Diff is the comparison of two reports for the same address.
type Diff struct {
	Address  string        `json:"address"`
	Previous ReportSummary `json:"previous"`
	Current  ReportSummary `json:"current"`

	// Items follow the newer report's order, then analyzers that only the
	// older report had.
	Items []ItemDiff `json:"items"`

	// ErrorsAppeared are dependencies that failed only in the newer report.
	ErrorsAppeared []model.DependencyKey `json:"errors_appeared,omitempty"`

	// ErrorsCleared are dependencies that failed only in the older report.
	ErrorsCleared []model.DependencyKey `json:"errors_cleared,omitempty"`

	// Health is improved, worsened, or unchanged, judged by failed items
	// plus dependency errors.
	Health string `json:"health"`
}

// HasChanges reports whether anything differs between the two reports.
func (d *Diff) HasChanges() bool {
	if len(d.ErrorsAppeared) > 0 || len(d.ErrorsCleared) > 0 {
		return true
	}
	for _, item := range d.Items {
		if item.Status != StatusUnchanged {
			return true
		}
	}
	return false
}

// Count returns the number of items with the given status.
func (d *Diff) Count(status ChangeStatus) int {
	n := 0
	for _, item := range d.Items {
		if item.Status == status {
			n++
		}
	}
	return n
}

// Compare computes the diff from previous to current.
func Compare(previous, current *model.AnalysisReport) *Diff {
	diff := &Diff{
		Address:  current.Address(),
		Previous: summarize(previous),
		Current:  summarize(current),
	}

	oldItems := indexItems(previous.Items())
	seen := make(map[string]bool)

	for _, item := range current.Items() {
		seen[item.Analyzer] = true
		old, ok := oldItems[item.Analyzer]
		if !ok {
			diff.Items = append(diff.Items, ItemDiff{
				Analyzer: item.Analyzer,
				Status:   StatusAdded,
				Added:    fieldStrings(item),
			})
			continue
		}
		diff.Items = append(diff.Items, compareItems(old, item))
	}

	for _, item := range previous.Items() {
		if seen[item.Analyzer] {
			continue
		}
		seen[item.Analyzer] = true
		diff.Items = append(diff.Items, ItemDiff{
			Analyzer: item.Analyzer,
			Status:   StatusRemoved,
			Removed:  fieldStrings(item),
		})
	}

	oldKeys := previous.ErrorKeys()
	newKeys := current.ErrorKeys()
	for _, key := range newKeys {
		if !slices.Contains(oldKeys, key) {
			diff.ErrorsAppeared = append(diff.ErrorsAppeared, key)
		}
	}
	for _, key := range oldKeys {
		if !slices.Contains(newKeys, key) {
			diff.ErrorsCleared = append(diff.ErrorsCleared, key)
		}
	}

	diff.Health = health(diff.Previous, diff.Current)
	return diff
}

func summarize(r *model.AnalysisReport) ReportSummary {
	return ReportSummary{
		DateAnalyzed: r.DateAnalyzed(),
		ItemCount:    len(r.Items()),
		FailedItems:  r.FailedItems(),
		ErrorCount:   len(r.ErrorKeys()),
	}
}

// indexItems maps analyzer name to its first item.
func indexItems(items []model.AnalysisResult) map[string]model.AnalysisResult {
	index := make(map[string]model.AnalysisResult, len(items))
	for _, item := range items {
		if _, ok := index[item.Analyzer]; !ok {
			index[item.Analyzer] = item
		}
	}
	return index
}

func compareItems(old, current model.AnalysisResult) ItemDiff {
	oldFields := fieldStrings(old)
	newFields := fieldStrings(current)

	result := ItemDiff{Analyzer: current.Analyzer, Status: StatusUnchanged}
	if old.Failed == current.Failed && slices.Equal(oldFields, newFields) {
		return result
	}

	result.Status = StatusChanged
	result.Added = subtractFields(newFields, oldFields)
	result.Removed = subtractFields(oldFields, newFields)
	return result
}

// subtractFields returns the fields of a not matched by b, counting
// repeated fields individually.
func subtractFields(a, b []string) []string {
	remaining := make(map[string]int, len(b))
	for _, f := range b {
		remaining[f]++
	}

	var out []string
	for _, f := range a {
		if remaining[f] > 0 {
			remaining[f]--
			continue
		}
		out = append(out, f)
	}
	return out
}

// fieldStrings flattens an item, prefixing failed items so a failure with
// the same message as a value still compares as different.
func fieldStrings(item model.AnalysisResult) []string {
	fields := Flatten(item.Data)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		s := f.String()
		if item.Failed {
			s = "error: " + s
		}
		out = append(out, s)
	}
	return out
}

func health(previous, current ReportSummary) string {
	oldScore := previous.FailedItems + previous.ErrorCount
	newScore := current.FailedItems + current.ErrorCount

	switch {
	case newScore < oldScore:
		return HealthImproved
	case newScore > oldScore:
		return HealthWorsened
	default:
		return HealthUnchanged
	}
}
