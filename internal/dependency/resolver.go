package dependency

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"

	"github.com/nao1215/domaindive/internal/config"
)

// DefaultResolvConf is the system resolver configuration file.
const DefaultResolvConf = "/etc/resolv.conf"

// Exchanger sends a DNS query to one server.
// *dns.Client satisfies it; tests substitute a fake.
type Exchanger interface {
	ExchangeContext(ctx context.Context, m *dns.Msg, address string) (*dns.Msg, time.Duration, error)
}

// Resolver performs single-type DNS queries against the configured or
// system name servers.
type Resolver struct {
	// exchanger sends queries on the wire.
	exchanger Exchanger

	// servers are "host:port" name server addresses.
	// When empty, servers are read from resolvConf on each lookup.
	servers []string

	// resolvConf is the resolv.conf path used when servers is empty.
	resolvConf string

	// timeout bounds one query type across all servers.
	timeout time.Duration
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithExchanger replaces the DNS client.
func WithExchanger(exchanger Exchanger) ResolverOption {
	return func(r *Resolver) {
		r.exchanger = exchanger
	}
}

// WithServers sets explicit name servers ("host" or "host:port").
// An empty list keeps the system configuration.
func WithServers(servers []string) ResolverOption {
	return func(r *Resolver) {
		r.servers = normalizeServers(servers)
	}
}

// WithResolvConf sets the resolv.conf path used when no servers are given.
func WithResolvConf(path string) ResolverOption {
	return func(r *Resolver) {
		r.resolvConf = path
	}
}

// WithQueryTimeout sets the per query type timeout.
// Non-positive values keep the default.
func WithQueryTimeout(timeout time.Duration) ResolverOption {
	return func(r *Resolver) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

// NewResolver creates a Resolver.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		resolvConf: DefaultResolvConf,
		timeout:    config.DefaultDNSTimeout,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.exchanger == nil {
		r.exchanger = &dns.Client{Timeout: r.timeout}
	}

	return r
}

// Servers returns the name servers queries will be sent to.
func (r *Resolver) Servers() ([]string, error) {
	if len(r.servers) > 0 {
		return r.servers, nil
	}

	cc, err := dns.ClientConfigFromFile(r.resolvConf)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoResolvers, err)
	}
	if len(cc.Servers) == 0 {
		return nil, ErrNoResolvers
	}

	servers := make([]string, 0, len(cc.Servers))
	for _, s := range cc.Servers {
		servers = append(servers, net.JoinHostPort(s, cc.Port))
	}
	return servers, nil
}

// Lookup queries name for qtype and returns the answer records of that type.
// Servers are tried in order until one answers; the whole lookup is bounded
// by the resolver timeout. A missing name yields ErrNXDOMAIN and an empty
// answer yields no records and no error.
func (r *Resolver) Lookup(ctx context.Context, name string, qtype uint16) ([]dns.RR, error) {
	servers, err := r.Servers()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), qtype)
	msg.RecursionDesired = true

	var lastErr error
	for _, server := range servers {
		resp, _, err := r.exchanger.ExchangeContext(ctx, msg, server)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}

		switch resp.Rcode {
		case dns.RcodeSuccess:
			return filterAnswers(resp.Answer, qtype), nil
		case dns.RcodeNameError:
			return nil, ErrNXDOMAIN
		default:
			lastErr = fmt.Errorf("%s from %s", dns.RcodeToString[resp.Rcode], server)
		}
	}

	if lastErr == nil {
		lastErr = errors.New("no server answered")
	}
	return nil, lastErr
}

// filterAnswers keeps the records of the queried type, dropping CNAME
// chain records that precede them.
func filterAnswers(answers []dns.RR, qtype uint16) []dns.RR {
	out := make([]dns.RR, 0, len(answers))
	for _, rr := range answers {
		if rr.Header().Rrtype == qtype {
			out = append(out, rr)
		}
	}
	return out
}

// rdataText returns the presentation form of the record data alone,
// without owner name, TTL, class and type.
func rdataText(rr dns.RR) string {
	full := rr.String()
	header := rr.Header().String()
	if len(full) >= len(header) && full[:len(header)] == header {
		return full[len(header):]
	}
	return full
}

// normalizeServers appends the DNS port to servers given without one.
func normalizeServers(servers []string) []string {
	out := make([]string, 0, len(servers))
	for _, s := range servers {
		if s == "" {
			continue
		}
		if _, _, err := net.SplitHostPort(s); err != nil {
			s = net.JoinHostPort(s, "53")
		}
		out = append(out, s)
	}
	return out
}
