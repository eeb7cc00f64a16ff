package dependency

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/nao1215/domaindive/internal/config"
	"github.com/nao1215/domaindive/internal/model"
)

// IPLookupFunc resolves a host name to its IPv4 addresses.
type IPLookupFunc func(ctx context.Context, host string) ([]net.IP, error)

// Geolocation resolves an address to an IPv4 address and asks an
// ip-api.com compatible service where it is.
type Geolocation struct {
	client   *http.Client
	endpoint string
	timeout  time.Duration
	limiter  *rate.Limiter
	lookupIP IPLookupFunc
}

// GeolocationOption configures Geolocation.
type GeolocationOption func(*Geolocation)

// WithGeolocationEndpoint sets the service base URL; the IP is appended.
// Empty keeps the default.
func WithGeolocationEndpoint(endpoint string) GeolocationOption {
	return func(g *Geolocation) {
		if endpoint != "" {
			g.endpoint = endpoint
		}
	}
}

// WithGeolocationTimeout sets the request timeout.
// Non-positive values keep the default.
func WithGeolocationTimeout(timeout time.Duration) GeolocationOption {
	return func(g *Geolocation) {
		if timeout > 0 {
			g.timeout = timeout
		}
	}
}

// WithGeolocationLimiter throttles requests to the service.
// A nil limiter disables throttling.
func WithGeolocationLimiter(limiter *rate.Limiter) GeolocationOption {
	return func(g *Geolocation) {
		g.limiter = limiter
	}
}

// WithGeolocationClient replaces the HTTP client.
func WithGeolocationClient(client *http.Client) GeolocationOption {
	return func(g *Geolocation) {
		g.client = client
	}
}

// WithIPLookup replaces the host name resolution.
func WithIPLookup(lookup IPLookupFunc) GeolocationOption {
	return func(g *Geolocation) {
		g.lookupIP = lookup
	}
}

// NewGeolocation creates a geolocation dependency.
func NewGeolocation(opts ...GeolocationOption) *Geolocation {
	g := &Geolocation{
		client:   http.DefaultClient,
		endpoint: config.DefaultGeolocationEndpoint,
		timeout:  config.DefaultGeolocationTimeout,
		lookupIP: systemLookupIPv4,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Key implements Dependency.
func (g *Geolocation) Key() model.DependencyKey {
	return KeyGeolocation
}

// ipAPIResponse is the ip-api.com JSON body.
type ipAPIResponse struct {
	Status     string  `json:"status"`
	Message    string  `json:"message"`
	Query      string  `json:"query"`
	Country    string  `json:"country"`
	RegionName string  `json:"regionName"`
	City       string  `json:"city"`
	Zip        string  `json:"zip"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Timezone   string  `json:"timezone"`
	ISP        string  `json:"isp"`
	Org        string  `json:"org"`
	AS         string  `json:"as"`
}

// Fetch returns a *model.Geolocation for the first IPv4 address of address.
func (g *Geolocation) Fetch(ctx context.Context, address string) (any, error) {
	ip, err := g.resolve(ctx, strings.TrimSuffix(address, "."))
	if err != nil {
		return nil, err
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("geolocation rate limit: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+url.PathEscape(ip), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create geolocation request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geolocation request for %s: %w", ip, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: unexpected status %s", ErrGeolocationFailed, ip, resp.Status)
	}

	var body ipAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode geolocation response: %w", err)
	}

	if body.Status != "success" {
		return nil, fmt.Errorf("%w: %s: %s", ErrGeolocationFailed, ip, body.Message)
	}

	queried := body.Query
	if queried == "" {
		queried = ip
	}

	return &model.Geolocation{
		IP:       queried,
		Country:  body.Country,
		Region:   body.RegionName,
		City:     body.City,
		Zip:      body.Zip,
		Lat:      body.Lat,
		Lon:      body.Lon,
		Timezone: body.Timezone,
		ISP:      body.ISP,
		Org:      body.Org,
		AS:       body.AS,
	}, nil
}

// resolve returns host itself when it is an IPv4 literal, otherwise its
// first IPv4 address.
func (g *Geolocation) resolve(ctx context.Context, host string) (string, error) {
	if ip := net.ParseIP(host); ip != nil && ip.To4() != nil {
		return ip.String(), nil
	}

	ips, err := g.lookupIP(ctx, host)
	if err != nil {
		return "", fmt.Errorf("address lookup for %s: %w", host, err)
	}
	for _, ip := range ips {
		if v4 := ip.To4(); v4 != nil {
			return v4.String(), nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNoAddress, host)
}

func systemLookupIPv4(ctx context.Context, host string) ([]net.IP, error) {
	return net.DefaultResolver.LookupIP(ctx, "ip4", host)
}
