package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/domaindive/internal/config"
	"github.com/nao1215/domaindive/internal/database"
	"github.com/nao1215/domaindive/internal/target"
)

// defaultHistoryLimit is the number of recent reports listed without an address.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [address]",
		Short: "List stored analysis reports",
		Long: `History lists the reports stored by 'domaindive analyze'.

Without an address the most recent reports of all addresses are listed.

Examples:
  # List recent reports
  domaindive history

  # List all reports for one address
  domaindive history example.com

  # List every analyzed address
  domaindive history --list-addresses

  # Print a stored report
  domaindive history --id 5`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("list-addresses", "L", false,
		"List all addresses in the database")
	cmd.Flags().Int64P("id", "i", 0,
		"Print the stored report with this ID")
	cmd.Flags().IntP("limit", "n", defaultHistoryLimit,
		"Number of recent reports listed when no address is given")
	cmd.Flags().BoolP("json", "j", false,
		"Print the report selected with --id as JSON")
	cmd.Flags().BoolP("markdown", "m", false,
		"Print the report selected with --id as Markdown")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	listAddresses, err := cmd.Flags().GetBool("list-addresses")
	if err != nil {
		return err
	}
	id, err := cmd.Flags().GetInt64("id")
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOutput && markdownOutput {
		return config.ErrConflictingReportFormats
	}

	// Validate arguments before opening the database.
	var address string
	if len(args) > 0 {
		address, err = target.Normalize(args[0])
		if err != nil {
			return fmt.Errorf("invalid address: %w", err)
		}
	}

	db, err := openHistoryDB(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	switch {
	case listAddresses:
		return listStoredAddresses(ctx, out, db)
	case id > 0:
		r, err := db.ReportByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get report with ID %d: %w", id, err)
		}
		cfg := &config.Config{JSONReport: jsonOutput, MarkdownReport: markdownOutput, Verbose: getVerboseFlag(cmd)}
		_, err = newReportWriter(cfg, out).Write(r)
		return err
	case address != "":
		return listReportHistory(ctx, out, db, address)
	default:
		return listRecentReports(ctx, out, db, limit)
	}
}

// openHistoryDB opens the history database, which must already exist.
func openHistoryDB(cmd *cobra.Command) (*database.HistoryDB, error) {
	db, err := database.Open(getDBDir(cmd), database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open database (run 'domaindive analyze' first): %w", err)
	}
	return db, nil
}

// listStoredAddresses lists every address that has a stored report.
func listStoredAddresses(ctx context.Context, out io.Writer, db *database.HistoryDB) error {
	addresses, err := db.ListAddresses(ctx)
	if err != nil {
		return err
	}

	if len(addresses) == 0 {
		fmt.Fprintln(out, "No analyzed addresses found in the database.")
		fmt.Fprintln(out, "\nUse 'domaindive analyze <address>' to analyze an address.")
		return nil
	}

	fmt.Fprintf(out, "Analyzed addresses (%d):\n\n", len(addresses))
	for _, address := range addresses {
		fmt.Fprintf(out, "  • %s\n", address)
	}
	fmt.Fprintln(out, "\nUse 'domaindive history <address>' to see the reports of an address.")

	return nil
}

// listReportHistory lists every stored report for address.
func listReportHistory(ctx context.Context, out io.Writer, db *database.HistoryDB, address string) error {
	reports, err := db.History(ctx, address)
	if err != nil {
		return err
	}

	if len(reports) == 0 {
		fmt.Fprintf(out, "No reports found for %s\n", address)
		return nil
	}

	fmt.Fprintf(out, "Report history for %s (%d reports):\n\n", address, len(reports))
	writeMetadataTable(out, reports, false)

	fmt.Fprintln(out, "\nUse 'domaindive compare <address>' to compare the latest two reports.")
	fmt.Fprintln(out, "Use 'domaindive history --id <id>' to print a report.")

	return nil
}

// listRecentReports lists the most recent reports across all addresses.
func listRecentReports(ctx context.Context, out io.Writer, db *database.HistoryDB, limit int) error {
	reports, err := db.RecentReports(ctx, limit)
	if err != nil {
		return err
	}

	if len(reports) == 0 {
		fmt.Fprintln(out, "No reports found in the database.")
		return nil
	}

	fmt.Fprintf(out, "Recent reports (%d):\n\n", len(reports))
	writeMetadataTable(out, reports, true)

	return nil
}

func writeMetadataTable(out io.Writer, reports []database.ReportMetadata, withAddress bool) {
	if withAddress {
		fmt.Fprintf(out, "  %-6s  %-20s  %-30s  %s\n", "ID", "Date", "Address", "Summary")
		fmt.Fprintln(out, "  "+strings.Repeat("-", 80))
	} else {
		fmt.Fprintf(out, "  %-6s  %-20s  %s\n", "ID", "Date", "Summary")
		fmt.Fprintln(out, "  "+strings.Repeat("-", 60))
	}

	for _, meta := range reports {
		date := meta.Timestamp.Format("2006-01-02 15:04:05")
		if withAddress {
			fmt.Fprintf(out, "  %-6d  %-20s  %-30s  %s\n", meta.ID, date, meta.Address, formatSummary(meta))
		} else {
			fmt.Fprintf(out, "  %-6d  %-20s  %s\n", meta.ID, date, formatSummary(meta))
		}
	}
}

// formatSummary formats report counts into a short human-readable string.
func formatSummary(meta database.ReportMetadata) string {
	parts := []string{fmt.Sprintf("items:%d", meta.ItemCount)}
	if meta.FailedItems > 0 {
		parts = append(parts, fmt.Sprintf("failed:%d", meta.FailedItems))
	}
	if meta.ErrorCount > 0 {
		parts = append(parts, fmt.Sprintf("errors:%d", meta.ErrorCount))
	}
	return strings.Join(parts, " ")
}
