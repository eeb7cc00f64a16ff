// Package analyzer turns fetched dependency data into displayable results.
//
// Every Analyzer declares the dependencies it reads and is handed the data
// the coordinator fetched for them. Analyzers perform no I/O: a dependency
// that failed to fetch is simply absent from the data, and the analyzer
// reports that with a placeholder result instead of an error.
//
// Built-in analyzers:
//   - dns: DNS records per record type
//   - whois: registration data
//   - nameservers: authoritative name servers and their addresses
//   - tls: the HTTPS certificate and its remaining validity
//   - http: HTTP response headers and missing security headers
//   - geolocation: location of the address' IP
//
// New analyzers implement Analyzer and are passed to the coordinator; the
// coordinator itself needs no change.
package analyzer
