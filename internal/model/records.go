package model

import (
	"time"

	whoisparser "github.com/likexian/whois-parser"
)

// DNSRecord holds every value returned for one record type.
// Values are the textual record data in answer order, without the owner
// name, TTL and class columns (e.g. "10 mail.example.com." for MX).
type DNSRecord struct {
	// RType is the record type name, e.g. "A" or "MX".
	RType string `json:"rtype"`

	// Values are the record data strings in answer order.
	Values []string `json:"values"`
}

// WhoisRecord is the registration data returned by a WHOIS lookup.
type WhoisRecord struct {
	// Query is the name that was sent to the WHOIS server.
	Query string `json:"query"`

	// Raw is the unmodified server response.
	Raw string `json:"raw"`

	// Parsed holds the structured fields (registrar, dates, name servers).
	// It is nil when the response format is not recognised, which is common
	// for IP address lookups.
	Parsed *whoisparser.WhoisInfo `json:"parsed,omitempty"`
}

// IsEmpty reports whether the record carries no data at all.
func (w *WhoisRecord) IsEmpty() bool {
	return w == nil || (w.Raw == "" && w.Parsed == nil)
}

// Nameserver is one authoritative name server of a domain.
type Nameserver struct {
	// Hostname is the server name from the NS record, without trailing dot.
	Hostname string `json:"hostname"`

	// IPAddress is the first IPv4 address of the server.
	// It is empty when the address lookup failed.
	IPAddress string `json:"ip_address,omitempty"`
}

// CertificateInfo describes the leaf TLS certificate served on port 443.
type CertificateInfo struct {
	// Subject is the subject common name.
	Subject string `json:"subject"`

	// Issuer is the issuer common name.
	Issuer string `json:"issuer"`

	// NotBefore is the start of the validity window.
	NotBefore time.Time `json:"not_before"`

	// NotAfter is the end of the validity window.
	NotAfter time.Time `json:"not_after"`

	// SANs are the DNS subject alternative names.
	SANs []string `json:"sans,omitempty"`

	// TLSVersion is the negotiated protocol version, e.g. "TLS 1.3".
	TLSVersion string `json:"tls_version,omitempty"`
}

// HTTPResponse is the result of probing the address over HTTP(S).
type HTTPResponse struct {
	// URL is the URL that answered.
	URL string `json:"url"`

	// Status is the HTTP status code.
	Status int `json:"status"`

	// Headers maps lower-cased header names to their (joined) values.
	Headers map[string]string `json:"headers"`
}

// Geolocation is the location information for the address' IP.
type Geolocation struct {
	IP       string  `json:"ip"`
	Country  string  `json:"country,omitempty"`
	Region   string  `json:"region,omitempty"`
	City     string  `json:"city,omitempty"`
	Zip      string  `json:"zip,omitempty"`
	Lat      float64 `json:"lat,omitempty"`
	Lon      float64 `json:"lon,omitempty"`
	Timezone string  `json:"timezone,omitempty"`
	ISP      string  `json:"isp,omitempty"`
	Org      string  `json:"org,omitempty"`
	AS       string  `json:"as,omitempty"`
}
