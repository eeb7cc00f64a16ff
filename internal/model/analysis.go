package model

import (
	"encoding/json"
	"errors"
	"maps"
	"slices"
	"time"
)

// AnalysisResult is the unit of information produced by one analyzer.
// Data is whatever the analyzer chose to display: a string, a slice, a map,
// or one of the record types in this package.
type AnalysisResult struct {
	// Analyzer is the name of the analyzer that produced this result.
	Analyzer string `json:"analyzer"`

	// Data is the display payload.
	// For a failed analyzer it is the error message.
	Data any `json:"data"`

	// Failed is true when Data holds an analyzer error instead of a result.
	Failed bool `json:"failed,omitempty"`
}

// NewAnalysisResult creates a successful result for the named analyzer.
func NewAnalysisResult(analyzer string, data any) AnalysisResult {
	return AnalysisResult{Analyzer: analyzer, Data: data}
}

// NewFailedResult creates the placeholder result used when an analyzer fails.
// It keeps one result per analyzer so positions in a report match the
// analyzer registration order.
func NewFailedResult(analyzer string, err error) AnalysisResult {
	return AnalysisResult{Analyzer: analyzer, Data: err.Error(), Failed: true}
}

// AnalysisReport is the output of one analysis run.
// It is immutable: the accessors return copies, and nothing outside this
// package can modify its fields after NewAnalysisReport returns.
//
// The copies are shallow. Each AnalysisResult is copied, but a Data value
// holding a map or slice (such as the DNS record map) is shared with the
// analyzer that produced it and with every caller of Items. Callers must
// treat Data as read-only.
type AnalysisReport struct {
	address      string
	dateAnalyzed time.Time
	items        []AnalysisResult
	errors       map[DependencyKey]error
}

// NewAnalysisReport assembles a report. The items slice and errors map are
// copied, so the caller may reuse them afterwards.
func NewAnalysisReport(address string, dateAnalyzed time.Time, items []AnalysisResult, errs map[DependencyKey]error) *AnalysisReport {
	copied := make(map[DependencyKey]error, len(errs))
	maps.Copy(copied, errs)

	return &AnalysisReport{
		address:      address,
		dateAnalyzed: dateAnalyzed,
		items:        slices.Clone(items),
		errors:       copied,
	}
}

// Address returns the analyzed address exactly as it was passed to the run.
func (r *AnalysisReport) Address() string {
	return r.address
}

// DateAnalyzed returns when the run started.
func (r *AnalysisReport) DateAnalyzed() time.Time {
	return r.dateAnalyzed
}

// Items returns one result per registered analyzer, in registration order.
// The slice is a copy; the Data payloads are not.
func (r *AnalysisReport) Items() []AnalysisResult {
	return slices.Clone(r.items)
}

// Errors returns the dependency fetch errors keyed by dependency.
// The map is empty when every fetch succeeded.
func (r *AnalysisReport) Errors() map[DependencyKey]error {
	copied := make(map[DependencyKey]error, len(r.errors))
	maps.Copy(copied, r.errors)
	return copied
}

// DependencyError returns the fetch error recorded for key, if any.
func (r *AnalysisReport) DependencyError(key DependencyKey) (error, bool) {
	err, ok := r.errors[key]
	return err, ok
}

// HasErrors reports whether any dependency failed to fetch.
func (r *AnalysisReport) HasErrors() bool {
	return len(r.errors) > 0
}

// FailedItems returns the number of analyzers that failed.
func (r *AnalysisReport) FailedItems() int {
	count := 0
	for _, item := range r.items {
		if item.Failed {
			count++
		}
	}
	return count
}

// ErrorKeys returns the failed dependency keys in sorted order.
func (r *AnalysisReport) ErrorKeys() []DependencyKey {
	return slices.Sorted(maps.Keys(r.errors))
}

// analysisReportJSON is the wire form of AnalysisReport.
// Errors are stored as their messages because error values do not
// survive JSON encoding.
type analysisReportJSON struct {
	Address      string                   `json:"address"`
	DateAnalyzed time.Time                `json:"date_analyzed"`
	Items        []AnalysisResult         `json:"items"`
	Errors       map[DependencyKey]string `json:"errors"`
}

// MarshalJSON implements json.Marshaler.
func (r *AnalysisReport) MarshalJSON() ([]byte, error) {
	errs := make(map[DependencyKey]string, len(r.errors))
	for key, err := range r.errors {
		errs[key] = err.Error()
	}

	items := r.items
	if items == nil {
		items = []AnalysisResult{}
	}

	return json.Marshal(analysisReportJSON{
		Address:      r.address,
		DateAnalyzed: r.dateAnalyzed,
		Items:        items,
		Errors:       errs,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
// Item data comes back as generic JSON values (maps, slices, strings), and
// dependency errors come back as plain errors carrying the stored message.
func (r *AnalysisReport) UnmarshalJSON(data []byte) error {
	var wire analysisReportJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	errs := make(map[DependencyKey]error, len(wire.Errors))
	for key, msg := range wire.Errors {
		errs[key] = errors.New(msg)
	}

	r.address = wire.Address
	r.dateAnalyzed = wire.DateAnalyzed
	r.items = wire.Items
	r.errors = errs
	return nil
}
