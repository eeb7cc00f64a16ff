package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoTarget is returned when no address is given.
	ErrNoTarget = errors.New("no target specified: provide a domain name or IP address")

	// ErrNoAnalyzers is returned when the analyzer list is empty.
	ErrNoAnalyzers = errors.New("no analyzers selected")

	// ErrInvalidTimeout is returned when a lookup timeout is not positive,
	// or the WHOIS timeout is negative.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidConcurrency is returned when the fetch concurrency is not
	// positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidGeolocationRate is returned when the geolocation rate is
	// negative. Use 0 to disable the limiter.
	ErrInvalidGeolocationRate = errors.New("invalid geolocation rate: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidLogFormat is returned when the log format is neither
	// "text" nor "json".
	ErrInvalidLogFormat = errors.New("invalid log format: must be text or json")
)
