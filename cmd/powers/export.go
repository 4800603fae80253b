package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/powers/internal/archive"
	"github.com/vovakirdan/powers/internal/config"
)

var flagExportOut string

var exportCmd = &cobra.Command{
	Use:   "export <session-id>",
	Short: "Export a session's moves to Parquet",
	Long: `Write every recorded shift of a network session to a zstd-compressed
Parquet file named <session-id>.parquet.

Examples:
  powers sessions
  powers export 0b8e2f5c-... --out ./archive`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recorded network sessions",
	Args:  cobra.NoArgs,
	RunE:  runSessions,
}

func init() {
	exportCmd.Flags().StringVar(&flagExportOut, "out", "", "Output directory (default from config)")
}

func runExport(cmd *cobra.Command, args []string) error {
	sessionID := args[0]

	outDir := appConfig.Storage.ArchiveDir
	if flagExportOut != "" {
		outDir = flagExportOut
	}
	outDir, err := config.ExpandHome(outDir)
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.MovesForSession(cmd.Context(), sessionID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no moves recorded for session %q", sessionID)
	}

	path, err := archive.WriteMovesParquet(outDir, sessionID, archive.RowsFromRecords(records))
	if err != nil {
		return err
	}

	logger.Info("exported session", "session", sessionID, "rows", len(records), "path", path)
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func runSessions(cmd *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	sessions, err := store.Sessions(cmd.Context())
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No sessions recorded yet.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SESSION\tMOVES\tSCORE\tLAST MOVE")
	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", s.SessionID, s.Moves, s.Score, s.LastMove.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}
