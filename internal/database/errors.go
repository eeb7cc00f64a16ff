package database

import "errors"

// ErrReportNotFound is returned when no stored report matches a lookup.
var ErrReportNotFound = errors.New("report not found")
