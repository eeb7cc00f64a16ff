package dependency

import (
	"context"
	"fmt"
	"strings"

	"github.com/miekg/dns"

	"github.com/nao1215/domaindive/internal/model"
)

// Nameservers fetches the NS records of a domain together with the first
// IPv4 address of every server.
type Nameservers struct {
	resolver *Resolver
}

// NewNameservers creates a nameservers dependency using resolver.
func NewNameservers(resolver *Resolver) *Nameservers {
	return &Nameservers{resolver: resolver}
}

// Key implements Dependency.
func (n *Nameservers) Key() model.DependencyKey {
	return KeyNameservers
}

// Fetch returns a []model.Nameserver in answer order.
// A failed NS query fails the fetch; a failed address lookup for one server
// only leaves its IPAddress empty.
func (n *Nameservers) Fetch(ctx context.Context, address string) (any, error) {
	domain := strings.TrimSuffix(address, ".")

	rrs, err := n.resolver.Lookup(ctx, domain, dns.TypeNS)
	if err != nil {
		return nil, fmt.Errorf("NS lookup for %s: %w", domain, err)
	}

	servers := make([]model.Nameserver, 0, len(rrs))
	for _, rr := range rrs {
		ns, ok := rr.(*dns.NS)
		if !ok {
			continue
		}

		server := model.Nameserver{Hostname: strings.TrimSuffix(ns.Ns, ".")}
		if addrs, err := n.resolver.Lookup(ctx, ns.Ns, dns.TypeA); err == nil {
			for _, a := range addrs {
				if rec, ok := a.(*dns.A); ok {
					server.IPAddress = rec.A.String()
					break
				}
			}
		}
		servers = append(servers, server)
	}

	return servers, nil
}
