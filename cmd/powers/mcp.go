package main

import (
	"github.com/spf13/cobra"

	"github.com/vovakirdan/powers/internal/session"
	"github.com/vovakirdan/powers/internal/transport/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve MCP tools on stdio",
	Long: `Run a Model Context Protocol server on stdin/stdout with the tools
new_game, move, game_state and list_games. Logs go to stderr.

Moves are recorded in the database when it can be opened.`,
	RunE: runMCP,
}

func runMCP(_ *cobra.Command, _ []string) error {
	var opts []session.Option
	store, err := openStore()
	if err != nil {
		logger.Warn("could not open database, moves will not be recorded", "err", err)
	} else {
		defer store.Close()
		opts = append(opts, session.WithRecorder(store))
	}

	manager, err := newManager(opts...)
	if err != nil {
		return err
	}

	logger.Info("serving MCP on stdio")
	return mcp.NewServer(manager, version).ServeStdio()
}
