// powers is a tile-merging puzzle for the terminal, SSH, HTTP and MCP clients.
//
// Usage:
//
//	powers list                  - List game modes
//	powers play [mode]           - Play in the terminal
//	powers serve                 - Start SSH server for remote play
//	powers api                   - Start the HTTP and WebSocket server
//	powers mcp                   - Serve MCP tools on stdio
//	powers scores [mode]         - Show high scores
//	powers sessions              - List recorded network sessions
//	powers export <session-id>   - Export a session's moves to Parquet
//
// Global flags:
//
//	--fps <rate>        - Set tick rate (default from config: 60)
//	--seed <value>      - Set RNG seed for reproducible gameplay
//	--db <path>         - Set database path (default: ~/.powers/powers.db)
//	--config <path>     - Use a specific config file
//	--log-level <lvl>   - debug, info, warn or error
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/powers/internal/config"
	"github.com/vovakirdan/powers/internal/core"
	"github.com/vovakirdan/powers/internal/games/t2048"
	"github.com/vovakirdan/powers/internal/powers"
	"github.com/vovakirdan/powers/internal/storage"
)

var version = "dev"

var (
	// Global flags
	flagFPS        int
	flagSeed       int64
	flagDBPath     string
	flagConfigPath string
	flagLogLevel   string
)

var (
	appConfig config.Config
	logger    *log.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "powers",
	Short: "Powers - slide and merge tiles in your terminal",
	Long: `Powers is a tile-merging puzzle: slide the board, merge equal tiles
and reach ever larger powers of two.

Available commands:
  list      - Show game modes
  play      - Play in the terminal
  serve     - Start SSH server for remote play
  api       - Start the HTTP and WebSocket server
  mcp       - Serve MCP tools on stdio
  scores    - View high scores
  sessions  - List recorded network sessions
  export    - Export a session's moves to Parquet

Examples:
  powers play
  powers play powers_endless --seed 42
  powers serve --ssh :2222
  powers api --addr :8080
  powers export 6f1c...`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 0, "Tick rate (0 = from config)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to the database (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(apiCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(exportCmd)
}

// setup loads the config, applies flag overrides and builds the root logger.
func setup(_ *cobra.Command, _ []string) error {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "powers",
		Level:           level,
	})

	cfg, source, err := config.Load(flagConfigPath)
	if err != nil {
		return err
	}
	logger.Debug("config loaded", "source", source)

	appConfig = applyFlags(cfg)
	t2048.SetLogger(logger)
	return nil
}

// applyFlags overrides config values with the flags that were set.
func applyFlags(cfg config.Config) config.Config {
	if flagFPS > 0 {
		cfg.Game.TickRate = flagFPS
	}
	if flagDBPath != "" {
		cfg.Storage.DBPath = flagDBPath
	}
	return cfg
}

// runtimeConfig builds the per-game config for a screen of w×h.
func runtimeConfig(cfg config.Config, w, h int) core.RuntimeConfig {
	policy, _ := cfg.Game.SpawnPolicy() // validated by config.Load
	return core.RuntimeConfig{
		ScreenW:         w,
		ScreenH:         h,
		TickRate:        cfg.Game.TickRate,
		Seed:            flagSeed,
		GridSize:        cfg.Game.Size,
		FourProbability: cfg.Game.FourProbability,
		SpawnOnChange:   policy == powers.SpawnOnChange,
	}
}

// openStore opens the configured database.
func openStore() (*storage.Store, error) {
	return storage.Open(appConfig.Storage.DBPath)
}
