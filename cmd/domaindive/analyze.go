package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/domaindive/internal/analysis"
	"github.com/nao1215/domaindive/internal/analyzer"
	"github.com/nao1215/domaindive/internal/config"
	"github.com/nao1215/domaindive/internal/database"
	"github.com/nao1215/domaindive/internal/dependency"
	dlog "github.com/nao1215/domaindive/internal/log"
	"github.com/nao1215/domaindive/internal/model"
	"github.com/nao1215/domaindive/internal/report"
	"github.com/nao1215/domaindive/internal/target"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [address...]",
		Short: "Analyze domains or IP addresses",
		Long: `Analyze fetches public information about each address and prints a report.

Each data source (DNS records, WHOIS, nameservers, TLS certificate, HTTP
headers, geolocation) is fetched at most once per address, no matter how
many analyzers use it. A source that fails is listed under "dependency
errors" and the analyzers that need it show a placeholder instead.

Addresses may be given as bare names, URLs, or IP addresses; they are
lower-cased and converted to ASCII before use.

Examples:
  # Analyze one domain with the default analyzers (dns, whois)
  domaindive analyze example.com

  # Choose analyzers
  domaindive analyze --analyzers dns,nameservers,tls,http example.com

  # Analyze several addresses, two at a time, and output JSON
  domaindive analyze --batch 2 --json example.com example.org

  # Write a Markdown report without saving it to history
  domaindive analyze --markdown -o report.md --no-save https://example.com/

  # Save JSON to a file, show the text report, and log as JSON
  domaindive --log-format json analyze --json -o report.json --echo example.com`,
		Args: cobra.ArbitraryArgs,
		RunE: runAnalyzeCmd,
	}

	cmd.Flags().StringSliceP("analyzers", "a", config.DefaultAnalyzers(),
		fmt.Sprintf("Analyzers to run, in report order (available: %v)", analyzer.Names()))
	cmd.Flags().StringSliceP("resolver", "r", nil,
		"DNS server to query (repeatable; default: system resolver)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultHTTPTimeout,
		"Timeout for the HTTP, TLS, and geolocation probes")

	cmd.Flags().Int("concurrency", config.DefaultConcurrency,
		"Number of data sources fetched in parallel per address")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of addresses analyzed concurrently")

	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .domaindive in current or home directory)")

	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("echo", false,
		"Also print the text report to stdout when --output is set")
	cmd.Flags().Bool("color", false,
		"Color the text report")
	cmd.Flags().Bool("no-save", false,
		"Do not store reports in the history database")

	return cmd
}

// runAnalyzeCmd executes the analyze command.
func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := dependency.NewDefaultRegistry(cfg, logger)
	return runAnalyze(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, registry, logger)
}

// buildConfig creates a Config from the configuration file and cobra
// command flags. Flags set on the command line override the file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicitly specified config file must exist; otherwise a missing
	// file just means defaults.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		file.Apply(cfg)
	} else if explicitConfigPath {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if flags.Changed("analyzers") {
		if cfg.Analyzers, err = flags.GetStringSlice("analyzers"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("resolver") {
		if cfg.Resolvers, err = flags.GetStringSlice("resolver"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("timeout") {
		timeout, err := flags.GetDuration("timeout")
		if err != nil {
			return nil, err
		}
		cfg.HTTPTimeout = timeout
		cfg.TLSTimeout = timeout
		cfg.GeolocationTimeout = timeout
	}
	if flags.Changed("concurrency") {
		if cfg.Concurrency, err = flags.GetInt("concurrency"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("batch") {
		if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
			return nil, err
		}
	}

	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if cfg.EchoReport, err = flags.GetBool("echo"); err != nil {
		return nil, err
	}
	if cfg.Color, err = flags.GetBool("color"); err != nil {
		return nil, err
	}

	noSave, err := flags.GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave
	cfg.DBDir = getDBDir(cmd)
	cfg.Verbose = getVerboseFlag(cmd)
	cfg.LogFormat = getLogFormat(cmd)
	cfg.Targets = args

	return cfg, nil
}

// runAnalyze analyzes every target with the dependencies in registry,
// writes the reports to stdout (or cfg.ReportFile), and stores them in the
// history database when enabled. Progress goes to stderr.
func runAnalyze(
	ctx context.Context,
	stdout, stderr io.Writer,
	cfg *config.Config,
	registry *dependency.Registry,
	logger *slog.Logger,
) error {
	targets, err := target.NormalizeAll(cfg.Targets)
	if err != nil {
		return fmt.Errorf("invalid address: %w", err)
	}

	analyzers, err := analyzer.Select(cfg.Analyzers)
	if err != nil {
		return err
	}

	manager, err := analysis.New(registry, analyzers,
		analysis.WithLogger(logger),
		analysis.WithConcurrency(cfg.Concurrency),
	)
	if err != nil {
		return fmt.Errorf("failed to set up analysis: %w", err)
	}

	logger.Info("starting analysis",
		"targets", targets,
		"analyzers", manager.AnalyzerNames(),
		"dependencies", manager.RequiredDependencies(),
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	var db *database.HistoryDB
	if cfg.SaveToDB {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
	}

	output, closeOutput, err := openOutput(cfg.ReportFile, stdout)
	if err != nil {
		return err
	}
	defer closeOutput()

	writer := newReportWriter(cfg, output)
	if cfg.ReportFile != "" && cfg.EchoReport {
		writer = report.NewMultiWriter(writer, newTextWriter(cfg, stdout))
	}

	bp := analysis.NewBatchProcessor(manager,
		analysis.WithBatchSize(cfg.BatchSize),
		analysis.WithBatchLogger(logger),
	)

	startTime := time.Now()
	fmt.Fprintf(stderr, "Analyzing %d address(es)...\n", len(targets))

	// Reports are written and saved one at a time.
	var mu sync.Mutex
	var writeErr error
	err = bp.ProcessBatchWithCallback(ctx, targets, func(r *model.AnalysisReport, index int) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Fprintf(stderr, "[%d/%d] %s done\n", index+1, len(targets), r.Address())

		if _, err := writer.Write(r); err != nil {
			logger.Error("report failed", "address", r.Address(), "error", err)
			writeErr = errors.Join(writeErr, err)
		}

		if err := saveReport(ctx, db, r, logger); err != nil {
			logger.Error("failed to save report", "address", r.Address(), "error", err)
		}
	})

	fmt.Fprintf(stderr, "Analysis completed in %s\n", time.Since(startTime).Round(time.Millisecond))

	if err != nil {
		return err
	}
	return writeErr
}

// newReportWriter returns the writer selected by the report format flags.
func newReportWriter(cfg *config.Config, output io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(output, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	default:
		return newTextWriter(cfg, output)
	}
}

func newTextWriter(cfg *config.Config, output io.Writer) report.Writer {
	return report.NewSimpleWriter(output,
		report.WithColor(cfg.Color),
		report.WithVerbose(cfg.Verbose),
	)
}

// newLogger returns the redacting logger for cfg.LogFormat.
func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	if cfg.LogFormat == config.LogFormatJSON {
		return dlog.NewSecureJSONLogger(w, cfg.Verbose)
	}
	return dlog.NewSecureLogger(w, cfg.Verbose)
}

// openOutput returns the report destination: path when set, otherwise
// stdout. The returned func closes the file.
func openOutput(path string, stdout io.Writer) (io.Writer, func(), error) {
	if path == "" {
		return stdout, func() {}, nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Reports may contain WHOIS contact data, so only the owner may read them.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// saveReport saves the report to the history database.
// If db is nil, this function is a no-op.
func saveReport(ctx context.Context, db *database.HistoryDB, r *model.AnalysisReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	// Save even when the run was interrupted.
	id, err := db.SaveReport(context.WithoutCancel(ctx), r)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	logger.Info("report saved to database", "address", r.Address(), "id", id)
	return nil
}
