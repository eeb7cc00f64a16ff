package dependency

import "errors"

var (
	// ErrUnknownDependency is returned when no factory is registered for a key.
	ErrUnknownDependency = errors.New("unknown dependency")

	// ErrNoResolvers is returned when no DNS server is configured and none
	// can be read from the system resolver configuration.
	ErrNoResolvers = errors.New("no DNS resolvers available")

	// ErrNXDOMAIN is returned by Resolver.Lookup when the name does not exist.
	ErrNXDOMAIN = errors.New("domain does not exist")

	// ErrNoAddress is returned when an address resolves to no IPv4 address.
	ErrNoAddress = errors.New("no IPv4 address found")

	// ErrNoCertificate is returned when the TLS peer presents no certificate.
	ErrNoCertificate = errors.New("no certificate presented")

	// ErrGeolocationFailed is returned when the geolocation service reports
	// a failure for the queried IP.
	ErrGeolocationFailed = errors.New("geolocation lookup failed")
)
