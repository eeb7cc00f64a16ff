package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "domaindive"

	// DefaultDNSTimeout bounds one DNS record type lookup across all
	// configured name servers.
	DefaultDNSTimeout = 3 * time.Second

	// DefaultWhoisTimeout of zero keeps the WHOIS client library's own
	// connection timeout.
	DefaultWhoisTimeout time.Duration = 0

	// DefaultHTTPTimeout bounds one HEAD request.
	DefaultHTTPTimeout = 10 * time.Second

	// DefaultTLSTimeout bounds the TLS dial and handshake.
	DefaultTLSTimeout = 10 * time.Second

	// DefaultGeolocationTimeout bounds one geolocation request.
	DefaultGeolocationTimeout = 10 * time.Second

	// DefaultGeolocationEndpoint is the ip-api.com JSON endpoint.
	// The IP address is appended to it.
	DefaultGeolocationEndpoint = "http://ip-api.com/json/"

	// DefaultGeolocationRate is the request budget per minute for the
	// geolocation service. ip-api.com allows 45 on its free tier.
	DefaultGeolocationRate = 45

	// DefaultBatchSize is the number of addresses analyzed concurrently
	// when several are given on the command line.
	DefaultBatchSize = 4

	// DefaultConcurrency is the number of dependency fetches run in
	// parallel within one analysis. 1 fetches sequentially.
	DefaultConcurrency = 1

	// DefaultUserAgent identifies domaindive in HTTP requests.
	DefaultUserAgent = "domaindive/1.0 (+https://github.com/nao1215/domaindive)"

	// LogFormatText writes logs as key=value lines.
	LogFormatText = "text"

	// LogFormatJSON writes logs as one JSON object per line.
	LogFormatJSON = "json"
)

// DefaultAnalyzers returns the analyzers run when none are selected.
func DefaultAnalyzers() []string {
	return []string{"dns", "whois"}
}

// Config holds all configuration options for domaindive.
// It is populated from defaults, the optional configuration file and CLI
// flags, in that order, and passed down explicitly.
type Config struct {
	// Resolvers are DNS servers ("host" or "host:port").
	// When empty, the system resolver configuration is used.
	Resolvers []string

	// DNSTimeout bounds one record type lookup.
	DNSTimeout time.Duration

	// WhoisTimeout overrides the WHOIS client timeout. Zero keeps the
	// library default.
	WhoisTimeout time.Duration

	// HTTPTimeout bounds one HEAD request of the HTTP headers probe.
	HTTPTimeout time.Duration

	// TLSTimeout bounds the certificate probe.
	TLSTimeout time.Duration

	// GeolocationTimeout bounds one geolocation request.
	GeolocationTimeout time.Duration

	// GeolocationEndpoint is the base URL of the ip-api.com compatible
	// geolocation service.
	GeolocationEndpoint string

	// GeolocationRate is the maximum number of geolocation requests per
	// minute. Zero disables the limiter.
	GeolocationRate int

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// Analyzers are the names of the analyzers to run, in report order.
	Analyzers []string

	// Verbose enables debug logging, including skipped DNS record types.
	Verbose bool

	// LogFormat is LogFormatText or LogFormatJSON.
	LogFormat string

	// BatchSize is the number of addresses analyzed concurrently.
	BatchSize int

	// Concurrency is the number of dependency fetches run in parallel
	// within one analysis.
	Concurrency int

	// ConfigFilePath is the path to the configuration file.
	// If empty, .domaindive is searched for in the current directory and
	// then in the home directory.
	ConfigFilePath string

	// JSONReport selects JSON output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output. Mutually exclusive with
	// JSONReport.
	MarkdownReport bool

	// Color enables colored headings in the text report.
	Color bool

	// ReportFile is the output file path. Empty writes to stdout.
	ReportFile string

	// EchoReport also prints the text report to stdout when ReportFile
	// is set.
	EchoReport bool

	// DBDir is the directory holding the history database.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB stores every report in the history database.
	SaveToDB bool

	// Targets are the addresses to analyze.
	Targets []string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		DNSTimeout:          DefaultDNSTimeout,
		WhoisTimeout:        DefaultWhoisTimeout,
		HTTPTimeout:         DefaultHTTPTimeout,
		TLSTimeout:          DefaultTLSTimeout,
		GeolocationTimeout:  DefaultGeolocationTimeout,
		GeolocationEndpoint: DefaultGeolocationEndpoint,
		GeolocationRate:     DefaultGeolocationRate,
		UserAgent:           DefaultUserAgent,
		LogFormat:           LogFormatText,
		Analyzers:           DefaultAnalyzers(),
		BatchSize:           DefaultBatchSize,
		Concurrency:         DefaultConcurrency,
		DBDir:               XDGDataDir(),
		SaveToDB:            true,
	}
}

// XDGDataDir returns the XDG data directory for domaindive.
// On Linux: ~/.local/share/domaindive
// On macOS: ~/Library/Application Support/domaindive
// On Windows: %LOCALAPPDATA%\domaindive
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for domaindive.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}

	if len(c.Analyzers) == 0 {
		return ErrNoAnalyzers
	}

	if c.DNSTimeout <= 0 || c.HTTPTimeout <= 0 || c.TLSTimeout <= 0 || c.GeolocationTimeout <= 0 {
		return ErrInvalidTimeout
	}

	// Zero means "library default" for WHOIS.
	if c.WhoisTimeout < 0 {
		return ErrInvalidTimeout
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.GeolocationRate < 0 {
		return ErrInvalidGeolocationRate
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.LogFormat != LogFormatText && c.LogFormat != LogFormatJSON {
		return ErrInvalidLogFormat
	}

	return nil
}
