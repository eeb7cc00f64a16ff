package analyzer

import (
	"math"
	"time"

	"github.com/nao1215/domaindive/internal/dependency"
	"github.com/nao1215/domaindive/internal/model"
)

// SecurityHeaders are the response headers the HTTP analyzer expects,
// lower-cased, in report order.
var SecurityHeaders = []string{
	"strict-transport-security",
	"content-security-policy",
	"x-content-type-options",
	"x-frame-options",
	"referrer-policy",
}

// CertificateReport is the TLS analyzer's result data.
type CertificateReport struct {
	*model.CertificateInfo

	// DaysRemaining is the number of whole days until NotAfter.
	// It is negative for an expired certificate.
	DaysRemaining int `json:"days_remaining"`

	// Expired is true when NotAfter is in the past.
	Expired bool `json:"expired"`
}

// TLS reports the certificate served on the HTTPS port.
type TLS struct {
	now func() time.Time
}

// TLSOption configures the TLS analyzer.
type TLSOption func(*TLS)

// WithClock replaces the clock used to compute the remaining validity.
func WithClock(now func() time.Time) TLSOption {
	return func(a *TLS) {
		a.now = now
	}
}

// NewTLS creates a TLS analyzer.
func NewTLS(opts ...TLSOption) *TLS {
	a := &TLS{now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name implements Analyzer.
func (a *TLS) Name() string {
	return NameTLS
}

// Dependencies implements Analyzer.
func (a *TLS) Dependencies() []model.DependencyKey {
	return []model.DependencyKey{dependency.KeyTLSCertificate}
}

// Analyze returns a CertificateReport, or
// {"no-certificate": "No TLS certificate found"}.
func (a *TLS) Analyze(_ string, deps dependency.Data) (model.AnalysisResult, error) {
	cert, ok, err := fetched[*model.CertificateInfo](deps, dependency.KeyTLSCertificate)
	if err != nil {
		return model.AnalysisResult{}, err
	}
	if !ok {
		return model.NewAnalysisResult(NameTLS, Placeholder("no-certificate", "No TLS certificate found")), nil
	}

	remaining := cert.NotAfter.Sub(a.now())
	return model.NewAnalysisResult(NameTLS, CertificateReport{
		CertificateInfo: cert,
		DaysRemaining:   int(math.Floor(remaining.Hours() / 24)),
		Expired:         remaining < 0,
	}), nil
}

// HeadersReport is the HTTP analyzer's result data.
type HeadersReport struct {
	*model.HTTPResponse

	// MissingSecurityHeaders lists the entries of SecurityHeaders absent
	// from the response.
	MissingSecurityHeaders []string `json:"missing_security_headers"`
}

// HTTP reports the HTTP response headers of the address.
type HTTP struct{}

// NewHTTP creates an HTTP headers analyzer.
func NewHTTP() *HTTP {
	return &HTTP{}
}

// Name implements Analyzer.
func (a *HTTP) Name() string {
	return NameHTTP
}

// Dependencies implements Analyzer.
func (a *HTTP) Dependencies() []model.DependencyKey {
	return []model.DependencyKey{dependency.KeyHTTPHeaders}
}

// Analyze returns a HeadersReport, or {"no-http": "No HTTP response"}.
func (a *HTTP) Analyze(_ string, deps dependency.Data) (model.AnalysisResult, error) {
	resp, ok, err := fetched[*model.HTTPResponse](deps, dependency.KeyHTTPHeaders)
	if err != nil {
		return model.AnalysisResult{}, err
	}
	if !ok {
		return model.NewAnalysisResult(NameHTTP, Placeholder("no-http", "No HTTP response")), nil
	}

	missing := make([]string, 0, len(SecurityHeaders))
	for _, h := range SecurityHeaders {
		if _, present := resp.Headers[h]; !present {
			missing = append(missing, h)
		}
	}

	return model.NewAnalysisResult(NameHTTP, HeadersReport{
		HTTPResponse:           resp,
		MissingSecurityHeaders: missing,
	}), nil
}
