package analyzer

import "errors"

var (
	// ErrUnknownAnalyzer is returned by New and Select for an unknown name.
	ErrUnknownAnalyzer = errors.New("unknown analyzer")

	// ErrUnexpectedData is returned when a dependency value does not have
	// the type the analyzer expects.
	ErrUnexpectedData = errors.New("unexpected dependency data")
)
