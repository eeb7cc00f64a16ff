package model

// DependencyKey identifies an external data source.
// Each concrete dependency has exactly one key, and the coordinator fetches
// each key at most once per run. Keys are plain strings so they are
// comparable, usable as map keys, and stable across JSON round trips.
type DependencyKey string

// String returns the key as a string.
func (k DependencyKey) String() string {
	return string(k)
}
