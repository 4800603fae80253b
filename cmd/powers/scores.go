package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/powers/internal/platform/tui"
	"github.com/vovakirdan/powers/internal/registry"
)

var (
	flagScoresTUI   bool
	flagScoresLimit int
)

var scoresCmd = &cobra.Command{
	Use:   "scores [mode]",
	Short: "Show high scores",
	Long: `Display the top scores for one mode, or for every mode when none is given.

Examples:
  powers scores
  powers scores powers_endless --limit 20
  powers scores --tui`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().BoolVar(&flagScoresTUI, "tui", false, "Browse scores in the interactive scoreboard")
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of scores to show per mode")
}

func runScores(cmd *cobra.Command, args []string) error {
	ids := make([]string, 0, 2)
	if len(args) == 1 {
		if !registry.Exists(args[0]) {
			return fmt.Errorf("unknown mode %q, run 'powers list' to see modes", args[0])
		}
		ids = append(ids, args[0])
	} else {
		for _, g := range registry.List() {
			ids = append(ids, g.ID)
		}
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if flagScoresTUI {
		width, height := 80, 24
		if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			width, height = w, h
		}
		_, err := tui.RunScoreboard(store, width, height)
		return err
	}

	for i, id := range ids {
		if i > 0 {
			fmt.Fprintln(cmd.OutOrStdout())
		}
		if err := printScores(cmd.OutOrStdout(), store, id, flagScoresLimit); err != nil {
			return err
		}
	}
	return nil
}

func printScores(out io.Writer, store tui.ScoreSource, id string, limit int) error {
	game, err := registry.Create(id)
	if err != nil {
		return err
	}

	scores, err := store.TopScores(id, limit)
	if err != nil {
		return fmt.Errorf("retrieving scores: %w", err)
	}

	fmt.Fprintf(out, "High Scores - %s\n", game.Title())
	fmt.Fprintln(out)

	if len(scores) == 0 {
		fmt.Fprintln(out, "No scores recorded yet.")
		fmt.Fprintf(out, "Play 'powers play %s' to set the first high score!\n", id)
		return nil
	}

	fmt.Fprintf(out, "  %-4s  %-10s  %s\n", "Rank", "Score", "Date")
	fmt.Fprintf(out, "  %-4s  %-10s  %s\n", "----", "-----", "----")
	for i, entry := range scores {
		fmt.Fprintf(out, "  %-4d  %-10d  %s\n", i+1, entry.Score, entry.CreatedAt.Format("2006-01-02 15:04"))
	}

	stats, err := store.GetGameStats(id)
	if err == nil && stats.GamesCount > 0 {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Best: %d  Games: %d  Average: %.0f\n", stats.HighScore, stats.GamesCount, stats.AvgScore)
	}
	return nil
}
