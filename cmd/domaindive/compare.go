package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/domaindive/internal/config"
	"github.com/nao1215/domaindive/internal/report"
	"github.com/nao1215/domaindive/internal/target"
)

// errNotEnoughReports is returned when fewer than two reports are stored.
var errNotEnoughReports = errors.New("at least 2 reports are required for comparison")

// NewCompareCmd creates the compare command.
// This command compares stored reports of one address.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [address]",
		Short: "Compare the latest report with an earlier one",
		Long: `Compare displays differences between two stored reports of an address:
- analyzers whose results changed, with the added and removed fields
- dependencies that started or stopped failing
- the change in failed analyzers and dependency errors

By default the latest two reports are compared. Use 'domaindive history
<address>' to see the stored report IDs.

Examples:
  # Compare latest two reports
  domaindive compare example.com

  # Compare the latest report with report 5
  domaindive compare --with-id 5 example.com

  # Output comparison in JSON format
  domaindive compare --json example.com`,
		Args: cobra.ExactArgs(1),
		RunE: runCompareCmd,
	}

	cmd.Flags().Int64P("with-id", "i", 0,
		"Compare with a specific report by ID")
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	address, err := target.Normalize(args[0])
	if err != nil {
		return fmt.Errorf("invalid address: %w", err)
	}

	withID, err := cmd.Flags().GetInt64("with-id")
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

	db, err := openHistoryDB(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()

	history, err := db.History(ctx, address)
	if err != nil {
		return fmt.Errorf("failed to get report history: %w", err)
	}
	if len(history) == 0 {
		return fmt.Errorf("no report history found for %s", address)
	}

	// The latest report is always the current one.
	currentID := history[0].ID
	previousID := withID
	if previousID == 0 {
		if len(history) < 2 {
			return fmt.Errorf("%w (found %d)", errNotEnoughReports, len(history))
		}
		previousID = history[1].ID
	}
	if previousID == currentID {
		return fmt.Errorf("report %d is the latest report of %s; choose an earlier one", previousID, address)
	}

	current, err := db.ReportByID(ctx, currentID)
	if err != nil {
		return fmt.Errorf("failed to get report with ID %d: %w", currentID, err)
	}
	previous, err := db.ReportByID(ctx, previousID)
	if err != nil {
		return fmt.Errorf("failed to get report with ID %d: %w", previousID, err)
	}
	if previous.Address() != address {
		return fmt.Errorf("report ID %d belongs to %s, not %s", previousID, previous.Address(), address)
	}

	cfg := &config.Config{JSONReport: jsonOutput, MarkdownReport: markdownOutput}
	_, err = newReportWriter(cfg, cmd.OutOrStdout()).WriteDiff(report.Compare(previous, current))
	return err
}
