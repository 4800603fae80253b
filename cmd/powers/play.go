package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/powers/internal/config"
	"github.com/vovakirdan/powers/internal/core"
	"github.com/vovakirdan/powers/internal/games/t2048"
	"github.com/vovakirdan/powers/internal/platform/tui"
	"github.com/vovakirdan/powers/internal/registry"
	"github.com/vovakirdan/powers/internal/storage"
)

var flagLevel int

var playCmd = &cobra.Command{
	Use:   "play [mode]",
	Short: "Play in the terminal",
	Long: `Start a game in the terminal. Without a mode, a menu lets you pick
campaign, endless or a starting level, and you return to it after each game.

Controls:
  Arrows/WASD/HJKL  - Slide tiles
  P/Space           - Pause
  R                 - Restart
  B/Esc             - Back to menu (paused or finished)
  Ctrl+S            - Screenshot
  Q/Ctrl+C          - Quit

Examples:
  powers play
  powers play powers --level 4
  powers play powers_endless --seed 42`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().IntVar(&flagLevel, "level", 0, "Campaign level to start from (1-based)")
}

func runPlay(_ *cobra.Command, args []string) error {
	width, height := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width, height = w, h
	}
	cfg := runtimeConfig(appConfig, width, height)

	// The alt screen owns stdout, so game logs go to a file.
	closeLog := logToFile()
	defer closeLog()

	store, err := openStore()
	if err != nil {
		logger.Warn("could not open scores database", "err", err)
		store = nil
	} else {
		defer store.Close()
	}

	if len(args) == 1 {
		if !registry.Exists(args[0]) {
			return fmt.Errorf("unknown mode %q, run 'powers list' to see modes", args[0])
		}
		_, err := playGame(args[0], flagLevel, cfg, store, false)
		return err
	}

	return playMenu(cfg, store)
}

// playMenu loops between the mode menu, the scoreboard and games.
func playMenu(cfg core.RuntimeConfig, store *storage.Store) error {
	for {
		sel, err := tui.RunModeSelector(cfg.ScreenW, cfg.ScreenH)
		if err != nil {
			return err
		}
		if sel == nil {
			return nil
		}

		if sel.Scoreboard {
			var source tui.ScoreSource
			if store != nil {
				source = store
			}
			back, err := tui.RunScoreboard(source, cfg.ScreenW, cfg.ScreenH)
			if err != nil {
				return err
			}
			if !back {
				return nil
			}
			continue
		}

		back, err := playGame(sel.GameID, sel.Level, cfg, store, true)
		if err != nil {
			return err
		}
		if !back {
			return nil
		}
	}
}

func playGame(id string, level int, cfg core.RuntimeConfig, store *storage.Store, allowBack bool) (bool, error) {
	game, err := registry.Create(id)
	if err != nil {
		return false, err
	}
	if g, ok := game.(*t2048.Game); ok && level > 0 {
		g.SetStartLevel(level)
	}

	opts := []tui.Option{tui.WithLogger(logger)}
	if store != nil {
		opts = append(opts, tui.WithScores(store))
	}
	if allowBack {
		opts = append(opts, tui.WithBackToMenu())
	}
	return tui.Run(game, cfg, opts...)
}

// logToFile points the root logger at powers.log next to the database and
// returns a function that closes it.
func logToFile() func() {
	dbPath, err := config.ExpandHome(appConfig.Storage.DBPath)
	if err != nil || dbPath == ":memory:" {
		logger.SetOutput(io.Discard)
		return func() {}
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.SetOutput(io.Discard)
		return func() {}
	}
	f, err := os.OpenFile(filepath.Join(dir, "powers.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		logger.SetOutput(io.Discard)
		return func() {}
	}
	logger.SetOutput(f)
	return func() {
		logger.SetOutput(os.Stderr)
		f.Close()
	}
}
