package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/domaindive/internal/config"
)

// NewRootCmd creates the root command for domaindive.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "domaindive",
		Short: "Collect public information about domains and IP addresses",
		Long: `domaindive gathers DNS records, WHOIS registration data, nameservers,
TLS certificates, HTTP security headers, and IP geolocation for a domain or
IP address, and prints a report per address.

Every report is stored in a local history database so later runs can be
compared with 'domaindive compare'.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().String("db-dir", config.XDGDataDir(), "Directory holding the history database")
	cmd.PersistentFlags().String("log-format", config.LogFormatText, "Log format written to stderr (text or json)")

	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// getDBDir returns the history database directory, falling back to the
// XDG data directory when the command runs without the root command.
func getDBDir(cmd *cobra.Command) string {
	dir, err := cmd.Flags().GetString("db-dir")
	if err != nil || dir == "" {
		return config.XDGDataDir()
	}
	return dir
}

// getLogFormat returns the log format flag, defaulting to text when the
// command runs without the root command.
func getLogFormat(cmd *cobra.Command) string {
	format, err := cmd.Flags().GetString("log-format")
	if err != nil || format == "" {
		return config.LogFormatText
	}
	return format
}
