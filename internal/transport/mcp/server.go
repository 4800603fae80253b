// Package mcp exposes hosted sessions as Model Context Protocol tools.
package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/vovakirdan/powers/internal/powers"
	"github.com/vovakirdan/powers/internal/session"
)

const defaultSize = 4

// Server wires the session manager to an MCP tool server.
type Server struct {
	sessions  *session.Manager
	mcpServer *server.MCPServer
}

// NewServer creates the tool server. version is reported to clients.
func NewServer(m *session.Manager, version string) *Server {
	s := &Server{sessions: m}
	s.mcpServer = server.NewMCPServer(
		"Powers",
		version,
		server.WithToolCapabilities(true),
		server.WithInstructions(`Powers - sliding tile puzzle

Tiles on an n x n grid slide toward one edge. Two equal tiles that meet merge
once per move into their sum, and the merge scores that sum. After every move a
2 or a 4 appears on a random empty cell. The game ends when no move changes the
grid.

TOOLS:
- new_game: start a game and get its session_id
- move: shift the grid up, down, left or right
- game_state: show the board and score
- list_games: list running games`),
	)
	s.registerTools()
	return s
}

// MCPServer returns the underlying server, e.g. for server.ServeStdio.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves the tools over stdin and stdout until EOF.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "new_game",
		Description: "Start a new game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"size": map[string]any{
					"type":        "integer",
					"description": fmt.Sprintf("Grid size, %d to %d (default %d)", session.MinSize, session.MaxSize, defaultSize),
				},
				"seed": map[string]any{
					"type":        "integer",
					"description": "Random seed for a reproducible game (optional)",
				},
			},
		},
	}, s.handleNewGame)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Shift the whole grid in a direction",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": map[string]any{
					"type":        "string",
					"description": "Session ID",
				},
				"direction": map[string]any{
					"type":        "string",
					"enum":        []string{"up", "down", "left", "right"},
					"description": "Direction to shift",
				},
			},
			Required: []string{"session_id", "direction"},
		},
	}, s.handleMove)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the board and score of a game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": map[string]any{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, s.handleGameState)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "list_games",
		Description: "List all running games",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, s.handleListGames)
}

func arguments(request mcp.CallToolRequest) map[string]any {
	args, _ := request.Params.Arguments.(map[string]any)
	return args
}

// intArg reads a JSON number argument.
func intArg(args map[string]any, name string, def int64) (int64, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return def, nil
	}
	f, ok := v.(float64)
	if !ok || f != float64(int64(f)) {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return int64(f), nil
}

func (s *Server) handleNewGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	size, err := intArg(args, "size", defaultSize)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	seed, err := intArg(args, "seed", 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sess, err := s.sessions.Create(ctx, int(size), seed)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Created session: " + sess.ID + "\n\n" + formatState(sess.State())), nil
}

func (s *Server) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	direction, _ := args["direction"].(string)

	dir, err := powers.ParseDirection(direction)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	outcome, err := s.sessions.Move(ctx, sessionID, dir)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatOutcome(outcome)), nil
}

func (s *Server) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatState(sess.State())), nil
}

func (s *Server) handleListGames(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	states := s.sessions.List()

	var b strings.Builder
	fmt.Fprintf(&b, "Running games (%d):\n", len(states))
	for _, st := range states {
		status := "playing"
		if st.GameOver {
			status = "game over"
		}
		fmt.Fprintf(&b, "- %s: %dx%d, score %d, max tile %d, %d moves, %s\n",
			st.ID, st.Size, st.Size, st.Score, st.MaxTile, st.Moves, status)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func formatOutcome(o session.MoveOutcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move %d: %s\n", o.MoveNumber, o.Direction)
	if !o.Result.Changed() {
		b.WriteString("Nothing moved.\n")
	} else {
		fmt.Fprintf(&b, "Shifts: %d, merges: %d, points: +%d\n", len(o.Result.Moves), o.Result.Merges(), o.Points)
	}
	if t := o.Result.NewTile; t != nil {
		fmt.Fprintf(&b, "New tile: %d at row %d, col %d\n", t.Value, t.Row, t.Col)
	}
	b.WriteString("\n")
	b.WriteString(formatState(o.State))
	return b.String()
}

func formatState(st session.State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Score: %d  Max tile: %d  Moves: %d\n", st.Score, st.MaxTile, st.Moves)

	width := max(len(fmt.Sprint(st.MaxTile)), 1)
	for _, row := range st.Board {
		cells := make([]string, len(row))
		for i, v := range row {
			if v == 0 {
				cells[i] = fmt.Sprintf("%*s", width, ".")
			} else {
				cells[i] = fmt.Sprintf("%*d", width, v)
			}
		}
		b.WriteString(strings.Join(cells, " "))
		b.WriteString("\n")
	}

	if st.GameOver {
		b.WriteString("GAME OVER\n")
	}
	return b.String()
}
