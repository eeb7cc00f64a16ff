package analyzer

import (
	"fmt"
	"maps"
	"slices"

	"github.com/nao1215/domaindive/internal/dependency"
	"github.com/nao1215/domaindive/internal/model"
)

// Analyzer transforms fetched dependency data into an AnalysisResult.
type Analyzer interface {
	// Name identifies the analyzer in reports and on the command line.
	Name() string

	// Dependencies returns the dependency keys this analyzer reads.
	// It is called once, before any fetch.
	Dependencies() []model.DependencyKey

	// Analyze builds the result for address from deps.
	// deps holds only the dependencies that were fetched successfully.
	Analyze(address string, deps dependency.Data) (model.AnalysisResult, error)
}

// Placeholder returns the single entry result data used when an analyzer
// has nothing to show, e.g. {"no-records": "No DNS records found"}.
func Placeholder(key, message string) map[string]string {
	return map[string]string{key: message}
}

// builtins maps analyzer names to their constructors.
var builtins = map[string]func() Analyzer{
	NameDNS:         func() Analyzer { return NewDNS() },
	NameWhois:       func() Analyzer { return NewWhois() },
	NameNameservers: func() Analyzer { return NewNameservers() },
	NameTLS:         func() Analyzer { return NewTLS() },
	NameHTTP:        func() Analyzer { return NewHTTP() },
	NameGeolocation: func() Analyzer { return NewGeolocation() },
}

// Names returns the names of the built-in analyzers in sorted order.
func Names() []string {
	return slices.Sorted(maps.Keys(builtins))
}

// New creates the built-in analyzer called name.
func New(name string) (Analyzer, error) {
	ctor, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownAnalyzer, name, Names())
	}
	return ctor(), nil
}

// Select creates the named built-in analyzers in the given order.
func Select(names []string) ([]Analyzer, error) {
	out := make([]Analyzer, 0, len(names))
	for _, name := range names {
		a, err := New(name)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// fetched returns the value stored for key in deps.
// ok is false when the key is absent or holds nil. A value of another type
// than T is an error.
func fetched[T any](deps dependency.Data, key model.DependencyKey) (value T, ok bool, err error) {
	raw, present := deps[key]
	if !present || raw == nil {
		return value, false, nil
	}

	value, ok = raw.(T)
	if !ok {
		return value, false, fmt.Errorf("%w: %s holds %T", ErrUnexpectedData, key, raw)
	}
	return value, true, nil
}
