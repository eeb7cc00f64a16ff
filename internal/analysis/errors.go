package analysis

import "errors"

var (
	// ErrNoAnalyzers is returned by New when no analyzer is given.
	ErrNoAnalyzers = errors.New("no analyzers registered")

	// ErrNilAnalyzer is returned by New when the analyzer list holds nil.
	ErrNilAnalyzer = errors.New("nil analyzer registered")

	// ErrPanic wraps a value recovered from a panicking fetch or analyzer.
	ErrPanic = errors.New("panic recovered")
)
