// Package dependency provides the external data sources that analyzers
// consume.
//
// A Dependency fetches one kind of data (DNS records, WHOIS registration,
// TLS certificate, ...) for an address. Each dependency is identified by a
// model.DependencyKey; analyzers declare the keys they need and the
// analysis.Manager fetches every key at most once per run, sharing the
// result between analyzers.
//
// Dependencies are created through a Registry of factories, so every run
// gets fresh instances and nothing fetched in one run leaks into the next.
//
// # Failure handling
//
// Fetch may fail with any error. Callers must treat every error as
// recoverable. The DNS records dependency is special: per record type
// failures (NXDOMAIN, empty answer, timeout) are absorbed and the type is
// simply missing from the result; only resolver configuration problems and
// cancellation fail the whole fetch.
package dependency
