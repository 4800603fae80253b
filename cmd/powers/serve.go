package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/powers/internal/core"
	"github.com/vovakirdan/powers/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the SSH server",
	Long: `Start an SSH server that lets users connect and play.

Each SSH connection gets its own session with the mode menu.
Scores are stored per-server (all users share the same leaderboard).

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.powers/host_key

Examples:
  powers serve                           # Listen on the configured address
  powers serve --ssh :2222               # Listen on port 2222
  powers serve --host-key ./my_host_key  # Use specific host key

Users can connect with:
  ssh localhost -p 23234`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (default from config)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().DurationVar(&flagIdleTimeout, "idle-timeout", 0, "Idle timeout before disconnecting (default from config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := sshServerConfig()

	var scores tui.ScoreStore
	store, err := openStore()
	if err != nil {
		logger.Warn("could not open scores database, scores will not be saved", "err", err)
	} else {
		defer store.Close()
		scores = store
	}

	server, err := tui.NewSSHServer(cfg, scores, logger)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Starting powers SSH server on %s\n", cfg.Address)
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.ListenAndServe(ctx)
}

// sshServerConfig merges the config file and the serve flags.
func sshServerConfig() tui.SSHServerConfig {
	cfg := tui.SSHServerConfig{
		Address:     appConfig.Server.SSHAddress,
		HostKeyPath: appConfig.Server.HostKeyPath,
		IdleTimeout: appConfig.Server.IdleTimeout,
		Game:        runtimeConfig(appConfig, 80, 24),
	}
	if flagSSHAddr != "" {
		cfg.Address = flagSSHAddr
	}
	if flagHostKey != "" {
		cfg.HostKeyPath = flagHostKey
	}
	if flagIdleTimeout > 0 {
		cfg.IdleTimeout = flagIdleTimeout
	}
	if cfg.Game.TickRate <= 0 {
		cfg.Game.TickRate = core.DefaultConfig().TickRate
	}
	return cfg
}
