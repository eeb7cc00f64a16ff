package analyzer

import (
	"github.com/nao1215/domaindive/internal/dependency"
	"github.com/nao1215/domaindive/internal/model"
)

// Analyzer names.
const (
	NameDNS         = "dns"
	NameWhois       = "whois"
	NameNameservers = "nameservers"
	NameTLS         = "tls"
	NameHTTP        = "http"
	NameGeolocation = "geolocation"
)

// DNS reports the DNS records of the address.
type DNS struct{}

// NewDNS creates a DNS analyzer.
func NewDNS() *DNS {
	return &DNS{}
}

// Name implements Analyzer.
func (a *DNS) Name() string {
	return NameDNS
}

// Dependencies implements Analyzer.
func (a *DNS) Dependencies() []model.DependencyKey {
	return []model.DependencyKey{dependency.KeyDNSRecords}
}

// Analyze returns the per record type mapping unchanged, or
// {"no-records": "No DNS records found"} when there is none.
func (a *DNS) Analyze(_ string, deps dependency.Data) (model.AnalysisResult, error) {
	records, ok, err := fetched[map[string]model.DNSRecord](deps, dependency.KeyDNSRecords)
	if err != nil {
		return model.AnalysisResult{}, err
	}
	if !ok || len(records) == 0 {
		return model.NewAnalysisResult(NameDNS, Placeholder("no-records", "No DNS records found")), nil
	}
	return model.NewAnalysisResult(NameDNS, records), nil
}

// Whois reports the registration data of the address.
type Whois struct{}

// NewWhois creates a WHOIS analyzer.
func NewWhois() *Whois {
	return &Whois{}
}

// Name implements Analyzer.
func (a *Whois) Name() string {
	return NameWhois
}

// Dependencies implements Analyzer.
func (a *Whois) Dependencies() []model.DependencyKey {
	return []model.DependencyKey{dependency.KeyWhois}
}

// Analyze returns the WHOIS record unchanged, or
// {"no-whois": "No WHOIS data found"} when there is none.
func (a *Whois) Analyze(_ string, deps dependency.Data) (model.AnalysisResult, error) {
	record, ok, err := fetched[*model.WhoisRecord](deps, dependency.KeyWhois)
	if err != nil {
		return model.AnalysisResult{}, err
	}
	if !ok || record.IsEmpty() {
		return model.NewAnalysisResult(NameWhois, Placeholder("no-whois", "No WHOIS data found")), nil
	}
	return model.NewAnalysisResult(NameWhois, record), nil
}

// Nameservers reports the authoritative name servers of the address.
type Nameservers struct{}

// NewNameservers creates a nameservers analyzer.
func NewNameservers() *Nameservers {
	return &Nameservers{}
}

// Name implements Analyzer.
func (a *Nameservers) Name() string {
	return NameNameservers
}

// Dependencies implements Analyzer.
func (a *Nameservers) Dependencies() []model.DependencyKey {
	return []model.DependencyKey{dependency.KeyNameservers}
}

// Analyze returns the name servers unchanged, or
// {"no-nameservers": "No nameservers found"}.
func (a *Nameservers) Analyze(_ string, deps dependency.Data) (model.AnalysisResult, error) {
	servers, ok, err := fetched[[]model.Nameserver](deps, dependency.KeyNameservers)
	if err != nil {
		return model.AnalysisResult{}, err
	}
	if !ok || len(servers) == 0 {
		return model.NewAnalysisResult(NameNameservers, Placeholder("no-nameservers", "No nameservers found")), nil
	}
	return model.NewAnalysisResult(NameNameservers, servers), nil
}

// Geolocation reports where the address' IP is located.
type Geolocation struct{}

// NewGeolocation creates a geolocation analyzer.
func NewGeolocation() *Geolocation {
	return &Geolocation{}
}

// Name implements Analyzer.
func (a *Geolocation) Name() string {
	return NameGeolocation
}

// Dependencies implements Analyzer.
func (a *Geolocation) Dependencies() []model.DependencyKey {
	return []model.DependencyKey{dependency.KeyGeolocation}
}

// Analyze returns the location unchanged, or
// {"no-geolocation": "No geolocation data found"}.
func (a *Geolocation) Analyze(_ string, deps dependency.Data) (model.AnalysisResult, error) {
	geo, ok, err := fetched[*model.Geolocation](deps, dependency.KeyGeolocation)
	if err != nil {
		return model.AnalysisResult{}, err
	}
	if !ok {
		return model.NewAnalysisResult(NameGeolocation, Placeholder("no-geolocation", "No geolocation data found")), nil
	}
	return model.NewAnalysisResult(NameGeolocation, geo), nil
}
