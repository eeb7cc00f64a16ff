package dependency

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/nao1215/domaindive/internal/config"
	"github.com/nao1215/domaindive/internal/model"
)

// TLSCertificate fetches the leaf certificate served on the HTTPS port.
type TLSCertificate struct {
	port    string
	timeout time.Duration
}

// TLSOption configures TLSCertificate.
type TLSOption func(*TLSCertificate)

// WithTLSPort overrides the port (default "443").
func WithTLSPort(port string) TLSOption {
	return func(t *TLSCertificate) {
		t.port = port
	}
}

// WithTLSTimeout sets the dial and handshake timeout.
// Non-positive values keep the default.
func WithTLSTimeout(timeout time.Duration) TLSOption {
	return func(t *TLSCertificate) {
		if timeout > 0 {
			t.timeout = timeout
		}
	}
}

// NewTLSCertificate creates a TLS certificate dependency.
func NewTLSCertificate(opts ...TLSOption) *TLSCertificate {
	t := &TLSCertificate{
		port:    "443",
		timeout: config.DefaultTLSTimeout,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Key implements Dependency.
func (t *TLSCertificate) Key() model.DependencyKey {
	return KeyTLSCertificate
}

// Fetch returns a *model.CertificateInfo for the leaf certificate.
// Verification is disabled: expired or self-signed certificates are
// described, not rejected.
func (t *TLSCertificate) Fetch(ctx context.Context, address string) (any, error) {
	host := strings.TrimSuffix(address, ".")

	cfg := &tls.Config{
		InsecureSkipVerify: true, //nolint:gosec // the certificate is inspected, not trusted
		MinVersion:         tls.VersionTLS10,
	}
	if net.ParseIP(host) == nil {
		cfg.ServerName = host
	}

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: t.timeout},
		Config:    cfg,
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, t.port))
	if err != nil {
		return nil, fmt.Errorf("TLS connection to %s: %w", host, err)
	}
	defer conn.Close()

	tlsConn, ok := conn.(*tls.Conn)
	if !ok {
		return nil, fmt.Errorf("TLS connection to %s: unexpected connection type %T", host, conn)
	}

	state := tlsConn.ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return nil, ErrNoCertificate
	}

	leaf := state.PeerCertificates[0]
	return &model.CertificateInfo{
		Subject:    leaf.Subject.CommonName,
		Issuer:     leaf.Issuer.CommonName,
		NotBefore:  leaf.NotBefore,
		NotAfter:   leaf.NotAfter,
		SANs:       leaf.DNSNames,
		TLSVersion: tls.VersionName(state.Version),
	}, nil
}
