package dependency

import (
	"context"

	"github.com/nao1215/domaindive/internal/model"
)

// Dependency keys for the built-in data sources.
const (
	// KeyDNSRecords identifies the per record type DNS lookup.
	KeyDNSRecords model.DependencyKey = "dns_records"
	// KeyWhois identifies the WHOIS registration lookup.
	KeyWhois model.DependencyKey = "whois"
	// KeyNameservers identifies the NS lookup with server addresses.
	KeyNameservers model.DependencyKey = "nameservers"
	// KeyTLSCertificate identifies the TLS certificate probe on port 443.
	KeyTLSCertificate model.DependencyKey = "tls_certificate"
	// KeyHTTPHeaders identifies the HTTP(S) HEAD probe.
	KeyHTTPHeaders model.DependencyKey = "http_headers"
	// KeyGeolocation identifies the IP geolocation lookup.
	KeyGeolocation model.DependencyKey = "geolocation"
)

// Dependency is an external data source fetched once per run and shared
// by every analyzer that requires it.
type Dependency interface {
	// Key returns the identity of this data source.
	Key() model.DependencyKey

	// Fetch retrieves the data for address.
	// The returned value is opaque to the coordinator; its concrete type is
	// agreed between the dependency and the analyzers that read it.
	Fetch(ctx context.Context, address string) (any, error)
}

// Data holds the successfully fetched values of one run, keyed by
// dependency. A key whose fetch failed is absent.
type Data map[model.DependencyKey]any

// Factory creates a fresh Dependency instance.
type Factory func() Dependency
