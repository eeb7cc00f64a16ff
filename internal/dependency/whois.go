package dependency

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
	"golang.org/x/net/publicsuffix"

	"github.com/nao1215/domaindive/internal/model"
)

// WhoisClient performs a raw WHOIS query.
// *whois.Client satisfies it.
type WhoisClient interface {
	Whois(domain string, servers ...string) (string, error)
}

// ParseFunc turns a raw WHOIS response into structured fields.
type ParseFunc func(text string) (whoisparser.WhoisInfo, error)

// Whois fetches the registration data of an address.
type Whois struct {
	client  WhoisClient
	parse   ParseFunc
	timeout time.Duration
}

// WhoisOption configures Whois.
type WhoisOption func(*Whois)

// WithWhoisClient replaces the WHOIS client.
func WithWhoisClient(client WhoisClient) WhoisOption {
	return func(w *Whois) {
		w.client = client
	}
}

// WithWhoisParser replaces the response parser.
func WithWhoisParser(parse ParseFunc) WhoisOption {
	return func(w *Whois) {
		w.parse = parse
	}
}

// WithWhoisTimeout overrides the client's connection timeout.
// Zero keeps the library default.
func WithWhoisTimeout(timeout time.Duration) WhoisOption {
	return func(w *Whois) {
		w.timeout = timeout
	}
}

// NewWhois creates a WHOIS dependency.
func NewWhois(opts ...WhoisOption) *Whois {
	w := &Whois{
		parse: whoisparser.Parse,
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.client == nil {
		client := whois.NewClient()
		if w.timeout > 0 {
			client.SetTimeout(w.timeout)
		}
		w.client = client
	}

	return w
}

// Key implements Dependency.
func (w *Whois) Key() model.DependencyKey {
	return KeyWhois
}

// Fetch returns a *model.WhoisRecord.
//
// The lookup is not retried. A response the parser cannot read is kept as
// raw text; a response saying the domain is not registered is an error.
// The underlying client does not take a context, so cancellation is only
// observed before the query starts.
func (w *Whois) Fetch(ctx context.Context, address string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query := lookupName(address)

	raw, err := w.client.Whois(query)
	if err != nil {
		return nil, fmt.Errorf("whois lookup for %s: %w", query, err)
	}

	record := &model.WhoisRecord{Query: query, Raw: raw}

	info, err := w.parse(raw)
	switch {
	case err == nil:
		record.Parsed = &info
	case errors.Is(err, whoisparser.ErrNotFoundDomain):
		return nil, fmt.Errorf("whois lookup for %s: %w", query, err)
	}

	return record, nil
}

// lookupName returns the name to send to the WHOIS server: IP literals as
// they are, host names reduced to their registrable domain
// ("www.example.co.uk" becomes "example.co.uk").
func lookupName(address string) string {
	host := strings.TrimSuffix(address, ".")
	if net.ParseIP(host) != nil {
		return host
	}

	if registrable, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return registrable
	}
	return host
}
