package t2048

// GameStateType represents the current game state.
type GameStateType string

const (
	StatePlaying      GameStateType = "playing"
	StateLevelCleared GameStateType = "level_cleared"
	StateGameOver     GameStateType = "game_over"
	StateWin          GameStateType = "win"
	StatePaused       GameStateType = "paused"
	StatePausedSmall  GameStateType = "paused_small_window"
)

// Snapshot captures the complete game state for determinism tests and replay.
type Snapshot struct {
	Tick    uint64        `json:"tick"`
	Mode    string        `json:"mode"`
	Level   int           `json:"level"` // 1-based, 0 in endless mode
	Target  int           `json:"target"`
	Score   int           `json:"score"`
	Moves   int           `json:"moves"`
	Board   [][]int       `json:"board"`
	MaxTile int           `json:"max_tile"`
	State   GameStateType `json:"state"`
}

// Snapshot returns the current game snapshot.
func (g *Game) Snapshot() Snapshot {
	state := StatePlaying
	switch {
	case g.tooSmall:
		state = StatePausedSmall
	case g.won:
		state = StateWin
	case g.gameOver:
		state = StateGameOver
	case g.levelCleared:
		state = StateLevelCleared
	case g.paused:
		state = StatePaused
	}

	level := g.levelIndex + 1
	if g.mode == ModeEndless {
		level = 0
	}

	return Snapshot{
		Tick:    g.tick,
		Mode:    string(g.mode),
		Level:   level,
		Target:  g.currentTarget,
		Score:   g.grid.Score(),
		Moves:   g.moves,
		Board:   g.grid.Cells(),
		MaxTile: g.grid.MaxTile(),
		State:   state,
	}
}
