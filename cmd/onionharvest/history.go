package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/onionharvest/internal/config"
	"github.com/nao1215/onionharvest/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List and re-export past crawl runs",
		Long: `History lists the crawl runs stored in the local database and can
re-export the records of a past run without crawling again.

Examples:
  # List the most recent runs
  onionharvest history

  # Re-export run 3 as CSV
  onionharvest history show 3 --format csv`,
		RunE: runHistoryListCmd,
	}

	cmd.Flags().IntP("limit", "l", 20, "Maximum runs to list (0 lists all)")

	cmd.AddCommand(NewHistoryShowCmd())

	return cmd
}

// NewHistoryShowCmd creates the history show subcommand.
func NewHistoryShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Re-export the records of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryShowCmd,
	}

	cmd.Flags().StringP("format", "f", "json", "Export format: json, csv, or markdown")
	cmd.Flags().StringP("output", "o", "", "Write to specified file path (default: stdout)")

	return cmd
}

// runHistoryListCmd lists stored crawl runs.
func runHistoryListCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	db, err := openHistoryDB()
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.ListRuns(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No crawl runs recorded yet.")
		return nil
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%-5s %-20s %-24s %7s %8s\n", "ID", "QUERY", "STARTED", "PAGES", "RECORDS")
	for _, run := range runs {
		query := run.Query
		if query == "" {
			query = "(explicit seeds)"
		}
		if len(query) > 20 {
			query = query[:17] + "..."
		}
		fmt.Fprintf(w, "%-5d %-20s %-24s %7d %8d\n",
			run.ID,
			query,
			run.StartedAt.Local().Format(time.DateTime),
			run.PagesVisited,
			run.RecordCount,
		)
	}
	return nil
}

// runHistoryShowCmd re-exports a stored run.
func runHistoryShowCmd(cmd *cobra.Command, args []string) error {
	var runID int64
	if _, err := fmt.Sscanf(strings.TrimSpace(args[0]), "%d", &runID); err != nil {
		return fmt.Errorf("invalid run id %q", args[0])
	}

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	outputFile, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	db, err := openHistoryDB()
	if err != nil {
		return err
	}
	defer db.Close()

	session, err := db.GetSession(cmd.Context(), runID)
	if err != nil {
		return fmt.Errorf("failed to load run %d: %w", runID, err)
	}
	if session == nil {
		return fmt.Errorf("run %d not found", runID)
	}

	switch format {
	case "json", "csv", "markdown":
	default:
		return fmt.Errorf("configuration error: %w", config.ErrInvalidFormat)
	}

	cfg := config.NewConfig()
	cfg.Format = format
	cfg.OutputFile = outputFile

	writer, closeOutput, err := newExportWriter(cfg)
	if err != nil {
		return err
	}
	defer closeOutput()

	if _, err := writer.Write(session); err != nil {
		return fmt.Errorf("failed to export run %d: %w", runID, err)
	}
	return nil
}

// openHistoryDB opens the history database in the XDG data directory.
func openHistoryDB() (*database.CrawlDB, error) {
	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	return db, nil
}
