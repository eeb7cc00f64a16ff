package analyzer

import (
	"errors"
	"maps"
	"reflect"
	"slices"
	"testing"
	"time"

	whoisparser "github.com/likexian/whois-parser"

	"github.com/nao1215/domaindive/internal/dependency"
	"github.com/nao1215/domaindive/internal/model"
)

// TestDNSAnalyze tests the DNS analyzer.
func TestDNSAnalyze(t *testing.T) {
	t.Parallel()

	a := NewDNS()

	t.Run("declares the DNS records dependency", func(t *testing.T) {
		t.Parallel()
		if deps := a.Dependencies(); !slices.Equal(deps, []model.DependencyKey{dependency.KeyDNSRecords}) {
			t.Errorf("unexpected dependencies %v", deps)
		}
	})

	t.Run("placeholder when the dependency is absent", func(t *testing.T) {
		t.Parallel()

		got, err := a.Analyze("example.com", dependency.Data{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := map[string]string{"no-records": "No DNS records found"}
		if !reflect.DeepEqual(got.Data, want) {
			t.Errorf("expected %v, got %v", want, got.Data)
		}
		if got.Analyzer != NameDNS {
			t.Errorf("expected analyzer %s, got %s", NameDNS, got.Analyzer)
		}
	})

	t.Run("placeholder when the mapping is empty", func(t *testing.T) {
		t.Parallel()

		got, err := a.Analyze("example.com", dependency.Data{
			dependency.KeyDNSRecords: map[string]model.DNSRecord{},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(got.Data, map[string]string{"no-records": "No DNS records found"}) {
			t.Errorf("expected placeholder, got %v", got.Data)
		}
	})

	t.Run("returns the mapping unchanged", func(t *testing.T) {
		t.Parallel()

		records := map[string]model.DNSRecord{
			"A": {RType: "A", Values: []string{"192.0.2.1"}},
		}
		got, err := a.Analyze("example.com", dependency.Data{dependency.KeyDNSRecords: records})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		data, ok := got.Data.(map[string]model.DNSRecord)
		if !ok {
			t.Fatalf("expected map[string]model.DNSRecord, got %T", got.Data)
		}
		if !maps.EqualFunc(data, records, func(x, y model.DNSRecord) bool {
			return x.RType == y.RType && slices.Equal(x.Values, y.Values)
		}) {
			t.Errorf("expected %v, got %v", records, data)
		}
	})

	t.Run("wrong data type is an error", func(t *testing.T) {
		t.Parallel()

		_, err := a.Analyze("example.com", dependency.Data{dependency.KeyDNSRecords: "oops"})
		if !errors.Is(err, ErrUnexpectedData) {
			t.Errorf("expected ErrUnexpectedData, got %v", err)
		}
	})
}

// TestWhoisAnalyze tests the WHOIS analyzer.
func TestWhoisAnalyze(t *testing.T) {
	t.Parallel()

	a := NewWhois()
	placeholder := map[string]string{"no-whois": "No WHOIS data found"}

	tests := []struct {
		name string
		deps dependency.Data
	}{
		{name: "absent", deps: dependency.Data{}},
		{name: "nil value", deps: dependency.Data{dependency.KeyWhois: nil}},
		{name: "nil record", deps: dependency.Data{dependency.KeyWhois: (*model.WhoisRecord)(nil)}},
		{name: "empty record", deps: dependency.Data{dependency.KeyWhois: &model.WhoisRecord{Query: "example.com"}}},
	}

	for _, tt := range tests {
		t.Run("placeholder when "+tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := a.Analyze("example.com", tt.deps)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got.Data, placeholder) {
				t.Errorf("expected %v, got %v", placeholder, got.Data)
			}
		})
	}

	t.Run("returns the record unmodified", func(t *testing.T) {
		t.Parallel()

		record := &model.WhoisRecord{
			Query: "example.com",
			Raw:   "Domain Name: EXAMPLE.COM",
			Parsed: &whoisparser.WhoisInfo{
				Domain: &whoisparser.Domain{
					Domain:         "example.com",
					NameServers:    []string{"a.iana-servers.net", "b.iana-servers.net"},
					CreatedDate:    "1995-08-14T04:00:00Z",
					ExpirationDate: "2026-08-13T04:00:00Z",
				},
			},
		}

		got, err := a.Analyze("example.com", dependency.Data{dependency.KeyWhois: record})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Data != record {
			t.Errorf("expected the same record, got %v", got.Data)
		}
	})
}

// TestNameserversAnalyze tests the nameservers analyzer.
func TestNameserversAnalyze(t *testing.T) {
	t.Parallel()

	a := NewNameservers()

	t.Run("placeholder when empty", func(t *testing.T) {
		t.Parallel()

		got, err := a.Analyze("example.com", dependency.Data{dependency.KeyNameservers: []model.Nameserver{}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(got.Data, map[string]string{"no-nameservers": "No nameservers found"}) {
			t.Errorf("expected placeholder, got %v", got.Data)
		}
	})

	t.Run("returns servers unchanged", func(t *testing.T) {
		t.Parallel()

		servers := []model.Nameserver{{Hostname: "ns1.example.net", IPAddress: "198.51.100.1"}}
		got, err := a.Analyze("example.com", dependency.Data{dependency.KeyNameservers: servers})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(got.Data.([]model.Nameserver), servers) {
			t.Errorf("expected %v, got %v", servers, got.Data)
		}
	})
}

// TestTLSAnalyze tests the TLS analyzer with a fixed clock.
func TestTLSAnalyze(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	a := NewTLS(WithClock(func() time.Time { return now }))

	t.Run("placeholder when absent", func(t *testing.T) {
		t.Parallel()

		got, err := a.Analyze("example.com", dependency.Data{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(got.Data, map[string]string{"no-certificate": "No TLS certificate found"}) {
			t.Errorf("expected placeholder, got %v", got.Data)
		}
	})

	tests := []struct {
		name        string
		notAfter    time.Time
		wantDays    int
		wantExpired bool
	}{
		{name: "valid for 30 days", notAfter: now.Add(30*24*time.Hour + time.Hour), wantDays: 30},
		{name: "expires later today", notAfter: now.Add(time.Hour), wantDays: 0},
		{name: "expired yesterday", notAfter: now.Add(-23 * time.Hour), wantDays: -1, wantExpired: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cert := &model.CertificateInfo{
				Subject:   "example.com",
				NotBefore: now.Add(-90 * 24 * time.Hour),
				NotAfter:  tt.notAfter,
			}
			got, err := a.Analyze("example.com", dependency.Data{dependency.KeyTLSCertificate: cert})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			report, ok := got.Data.(CertificateReport)
			if !ok {
				t.Fatalf("expected CertificateReport, got %T", got.Data)
			}
			if report.DaysRemaining != tt.wantDays {
				t.Errorf("expected %d days remaining, got %d", tt.wantDays, report.DaysRemaining)
			}
			if report.Expired != tt.wantExpired {
				t.Errorf("expected expired=%v, got %v", tt.wantExpired, report.Expired)
			}
			if report.Subject != "example.com" {
				t.Errorf("expected embedded certificate, got %+v", report)
			}
		})
	}
}

// TestHTTPAnalyze tests the HTTP headers analyzer.
func TestHTTPAnalyze(t *testing.T) {
	t.Parallel()

	a := NewHTTP()

	t.Run("placeholder when absent", func(t *testing.T) {
		t.Parallel()

		got, err := a.Analyze("example.com", dependency.Data{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(got.Data, map[string]string{"no-http": "No HTTP response"}) {
			t.Errorf("expected placeholder, got %v", got.Data)
		}
	})

	t.Run("lists missing security headers", func(t *testing.T) {
		t.Parallel()

		resp := &model.HTTPResponse{
			URL:    "https://example.com/",
			Status: 200,
			Headers: map[string]string{
				"strict-transport-security": "max-age=63072000",
				"x-frame-options":           "DENY",
				"server":                    "nginx",
			},
		}
		got, err := a.Analyze("example.com", dependency.Data{dependency.KeyHTTPHeaders: resp})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		report := got.Data.(HeadersReport)
		want := []string{"content-security-policy", "x-content-type-options", "referrer-policy"}
		if !slices.Equal(report.MissingSecurityHeaders, want) {
			t.Errorf("expected %v, got %v", want, report.MissingSecurityHeaders)
		}
		if report.Status != 200 {
			t.Errorf("expected embedded response, got %+v", report)
		}
	})
}

// TestGeolocationAnalyze tests the geolocation analyzer.
func TestGeolocationAnalyze(t *testing.T) {
	t.Parallel()

	a := NewGeolocation()

	got, err := a.Analyze("example.com", dependency.Data{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got.Data, map[string]string{"no-geolocation": "No geolocation data found"}) {
		t.Errorf("expected placeholder, got %v", got.Data)
	}

	geo := &model.Geolocation{IP: "192.0.2.1", Country: "Japan"}
	got, err = a.Analyze("example.com", dependency.Data{dependency.KeyGeolocation: geo})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Data != geo {
		t.Errorf("expected the same location, got %v", got.Data)
	}
}

// TestSelect tests analyzer lookup by name.
func TestSelect(t *testing.T) {
	t.Parallel()

	t.Run("lists built-in names", func(t *testing.T) {
		t.Parallel()

		want := []string{"dns", "geolocation", "http", "nameservers", "tls", "whois"}
		if got := Names(); !slices.Equal(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("keeps the requested order", func(t *testing.T) {
		t.Parallel()

		got, err := Select([]string{"whois", "dns", "whois"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		names := make([]string, 0, len(got))
		for _, a := range got {
			names = append(names, a.Name())
		}
		if !slices.Equal(names, []string{"whois", "dns", "whois"}) {
			t.Errorf("unexpected order %v", names)
		}
	})

	t.Run("rejects unknown names", func(t *testing.T) {
		t.Parallel()

		if _, err := Select([]string{"dns", "ports"}); !errors.Is(err, ErrUnknownAnalyzer) {
			t.Errorf("expected ErrUnknownAnalyzer, got %v", err)
		}
	})

	t.Run("every built-in declares a registered dependency", func(t *testing.T) {
		t.Parallel()

		keys := []model.DependencyKey{
			dependency.KeyDNSRecords, dependency.KeyWhois, dependency.KeyNameservers,
			dependency.KeyTLSCertificate, dependency.KeyHTTPHeaders, dependency.KeyGeolocation,
		}
		for _, name := range Names() {
			a, err := New(name)
			if err != nil {
				t.Fatalf("New(%s): %v", name, err)
			}
			for _, dep := range a.Dependencies() {
				if !slices.Contains(keys, dep) {
					t.Errorf("%s declares unknown dependency %s", name, dep)
				}
			}
		}
	})
}
