package dependency

import (
	"context"
	"log/slog"
	"strings"

	"github.com/miekg/dns"

	"github.com/nao1215/domaindive/internal/model"
)

// RecordTypes are the record types queried by DNSRecords, in query order.
var RecordTypes = []string{
	"A",
	"AAAA",
	"CNAME",
	"NS",
	"MX",
	"TXT",
	"SOA",
	"CAA",
	"SRV",
	"TLSA",
	"DNSKEY",
	"DS",
	"NAPTR",
}

// DNSRecords fetches every record type in RecordTypes for a domain.
//
// Each type is queried independently. A type that does not resolve, for any
// reason, is left out of the result; the fetch itself only fails when no
// resolver is available or the context is cancelled.
type DNSRecords struct {
	resolver *Resolver
	logger   *slog.Logger
}

// DNSOption configures DNSRecords.
type DNSOption func(*DNSRecords)

// WithDNSLogger sets the logger used for skipped record types.
func WithDNSLogger(logger *slog.Logger) DNSOption {
	return func(d *DNSRecords) {
		d.logger = logger
	}
}

// NewDNSRecords creates a DNS records dependency using resolver.
func NewDNSRecords(resolver *Resolver, opts ...DNSOption) *DNSRecords {
	d := &DNSRecords{
		resolver: resolver,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Key implements Dependency.
func (d *DNSRecords) Key() model.DependencyKey {
	return KeyDNSRecords
}

// Fetch returns a map[string]model.DNSRecord keyed by record type name.
// The map may be empty.
func (d *DNSRecords) Fetch(ctx context.Context, address string) (any, error) {
	domain := strings.TrimSuffix(address, ".")

	// Resolver configuration problems affect every type, so report them
	// instead of returning an empty result.
	if _, err := d.resolver.Servers(); err != nil {
		return nil, err
	}

	out := make(map[string]model.DNSRecord)
	for _, rtype := range RecordTypes {
		rrs, err := d.resolver.Lookup(ctx, domain, dns.StringToType[rtype])
		if err != nil {
			d.logger.Debug("dns record type skipped",
				"domain", domain,
				"type", rtype,
				"error", err,
			)
			continue
		}
		if len(rrs) == 0 {
			continue
		}

		values := make([]string, 0, len(rrs))
		for _, rr := range rrs {
			values = append(values, rdataText(rr))
		}
		out[rtype] = model.DNSRecord{RType: rtype, Values: values}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return out, nil
}
