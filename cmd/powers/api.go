package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/powers/internal/api"
	"github.com/vovakirdan/powers/internal/powers"
	"github.com/vovakirdan/powers/internal/session"
	"github.com/vovakirdan/powers/internal/transport/websocket"
)

var flagAPIAddr string

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the HTTP and WebSocket server",
	Long: `Serve games over a JSON REST API, with live move events on WebSocket.

Endpoints:
  POST   /api/sessions              {"size":4,"seed":1}
  GET    /api/sessions
  GET    /api/sessions/{id}
  DELETE /api/sessions/{id}
  POST   /api/sessions/{id}/move    {"direction":"left"}
  GET    /api/sessions/{id}/moves
  GET    /ws/{id}

Every move is recorded in the database and can be exported with
'powers export <session-id>'.

Examples:
  powers api
  powers api --addr 127.0.0.1:9000`,
	RunE: runAPI,
}

func init() {
	apiCmd.Flags().StringVar(&flagAPIAddr, "addr", "", "HTTP listen address (default from config)")
}

func runAPI(_ *cobra.Command, _ []string) error {
	addr := appConfig.Server.APIAddress
	if flagAPIAddr != "" {
		addr = flagAPIAddr
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	manager, err := newManager(session.WithRecorder(store), session.WithNotifier(hub))
	if err != nil {
		return err
	}

	server := api.NewServer(manager, hub,
		api.WithMoveLog(store),
		api.WithDefaultSize(appConfig.Game.Size),
		api.WithLogger(logger),
	)
	return server.ListenAndServe(ctx, addr)
}

// newManager creates a session manager for the configured grid rules.
func newManager(opts ...session.Option) (*session.Manager, error) {
	policy, err := appConfig.Game.SpawnPolicy()
	if err != nil {
		return nil, err
	}
	opts = append(opts,
		session.WithLogger(logger),
		session.WithGameOptions(
			powers.WithFourProbability(appConfig.Game.FourProbability),
			powers.WithSpawnPolicy(policy),
		),
	)
	return session.NewManager(opts...), nil
}
