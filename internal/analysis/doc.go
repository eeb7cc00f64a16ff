// Package analysis coordinates dependency fetching and analyzers.
//
// A Manager is built once from a dependency Registry and an ordered list of
// analyzers. Each Run:
//  1. takes the union of the dependencies the analyzers declare
//  2. fetches every dependency exactly once, recording failures
//  3. runs every analyzer, in registration order, on the shared data
//  4. returns an immutable report with one item per analyzer
//
// A failing dependency or analyzer never stops the others, and Run itself
// never fails. A failed dependency is absent from the data the analyzers
// see and its error is listed in the report. A failed analyzer contributes
// an item holding the error message.
//
// Fetches run sequentially unless WithConcurrency allows more. The
// BatchProcessor runs a Manager over many addresses in parallel.
package analysis
