package t2048

import (
	"io"
	"math/rand"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/powers/internal/core"
	"github.com/vovakirdan/powers/internal/powers"
	"github.com/vovakirdan/powers/internal/registry"
)

// Mode represents the game mode.
type Mode string

const (
	ModeCampaign Mode = "campaign"
	ModeEndless  Mode = "endless"
)

// Registry IDs.
const (
	IDCampaign = "powers"
	IDEndless  = "powers_endless"
)

const (
	defaultGridSize = 4
	levelClearDelay = 120 // 2 seconds at 60 ticks per second
)

// Game implements registry.Game on top of a powers.Game.
type Game struct {
	mode   Mode
	grid   *powers.Game
	logger *log.Logger
	tick   uint64

	levelIndex    int
	startLevel    int
	currentTarget int
	moves         int

	screenW int
	screenH int

	gameOver        bool
	levelCleared    bool
	won             bool
	paused          bool
	tooSmall        bool
	levelClearTicks int

	animations     []TileAnimation
	animating      bool
	animationPhase AnimationPhase
	animationTicks int
	pendingNewTile *powers.TilePosition
}

var (
	settingsMu sync.Mutex
	gameLogger = log.New(io.Discard)
)

// SetLogger sets the logger handed to games created afterwards.
func SetLogger(l *log.Logger) {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	gameLogger = l
}

func currentLogger() *log.Logger {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	return gameLogger
}

// New creates a campaign game.
func New() *Game {
	return &Game{mode: ModeCampaign, logger: currentLogger()}
}

// NewEndless creates an endless game.
func NewEndless() *Game {
	return &Game{mode: ModeEndless, logger: currentLogger()}
}

func init() {
	registry.Register(IDCampaign, func() registry.Game {
		return New()
	})
	registry.Register(IDEndless, func() registry.Game {
		return NewEndless()
	})
}

// SetStartLevel sets the campaign level (1-based) that every later Reset
// starts from. 0 or an out-of-range level starts from the first one.
func (g *Game) SetStartLevel(level int) {
	g.startLevel = level
}

// Resize adapts the game to a new screen size and keeps the board.
func (g *Game) Resize(w, h int) {
	g.screenW = w
	g.screenH = h
	if g.grid != nil {
		g.checkScreenSize()
	}
}

// ID returns the game identifier.
func (g *Game) ID() string {
	if g.mode == ModeEndless {
		return IDEndless
	}
	return IDCampaign
}

// Title returns the display name.
func (g *Game) Title() string {
	if g.mode == ModeEndless {
		return "Powers (Endless)"
	}
	return "Powers"
}

// Reset starts a new game with a fresh grid seeded from cfg.Seed.
func (g *Game) Reset(cfg core.RuntimeConfig) {
	g.tick = 0
	g.moves = 0
	g.screenW = cfg.ScreenW
	g.screenH = cfg.ScreenH
	g.gameOver = false
	g.levelCleared = false
	g.won = false
	g.paused = false
	g.levelClearTicks = 0
	g.clearAnimation()

	g.levelIndex = 0
	if g.mode == ModeCampaign {
		if g.startLevel > 0 && g.startLevel <= LevelCount() {
			g.levelIndex = g.startLevel - 1
		}
	}

	size := cfg.GridSize
	if size < 2 {
		size = defaultGridSize
	}

	spawn := powers.SpawnAlways
	if cfg.SpawnOnChange {
		spawn = powers.SpawnOnChange
	}

	grid, err := powers.New(size,
		powers.WithRand(rand.New(rand.NewSource(cfg.Seed))),
		powers.WithLogger(g.logger),
		powers.WithFourProbability(g.fourProbability(cfg)),
		powers.WithSpawnPolicy(spawn),
	)
	if err != nil {
		panic(err)
	}
	g.grid = grid
	g.loadLevel()

	g.checkScreenSize()
}

// fourProbability picks the spawn chance for a new grid.
func (g *Game) fourProbability(cfg core.RuntimeConfig) float64 {
	if g.mode == ModeCampaign {
		return GetLevel(g.levelIndex).FourProbability
	}
	if cfg.FourProbability > 0 && cfg.FourProbability <= 1 {
		return cfg.FourProbability
	}
	return powers.DefaultFourProbability
}

// loadLevel applies the current level's target and spawn chance.
func (g *Game) loadLevel() {
	if g.mode == ModeEndless {
		g.currentTarget = 0
		return
	}

	level := GetLevel(g.levelIndex)
	g.currentTarget = level.Target
	//nolint:errcheck // Level probabilities are constants within [0, 1]
	g.grid.SetFourProbability(level.FourProbability)
}

// checkScreenSize checks if the screen can hold the board and HUD.
func (g *Game) checkScreenSize() {
	boardW, boardH := boardDimensions(g.grid.Size())
	g.tooSmall = g.screenW < boardW+4 || g.screenH < boardH+hudHeight+2
}

// Step advances the game by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	g.tick++

	if g.tooSmall {
		return core.StepResult{State: g.State()}
	}

	if in.Has(core.ActionPause) && !g.gameOver && !g.won {
		g.paused = !g.paused
	}
	if g.paused {
		return core.StepResult{State: g.State()}
	}

	g.updateAnimation()

	if g.levelCleared {
		g.levelClearTicks++
		if g.levelClearTicks >= levelClearDelay {
			g.advanceLevel()
		}
		return core.StepResult{State: g.State()}
	}

	if g.gameOver || g.won {
		return core.StepResult{State: g.State()}
	}

	dir, ok := directionFor(in)
	if !ok {
		return core.StepResult{State: g.State()}
	}

	moved := g.processMove(dir)
	return core.StepResult{State: g.State(), Moved: moved}
}

// processMove applies a move and updates campaign and game-over status.
func (g *Game) processMove(dir powers.Direction) bool {
	// A new move snaps any running animation to its end.
	g.clearAnimation()

	res := g.grid.DoMove(dir)
	g.moves++

	switch {
	case res.Changed():
		g.startSlideAnimation(res.Moves, res.NewTile)
	case res.NewTile != nil:
		g.startPopAnimation(*res.NewTile)
	}

	if res.Changed() && g.mode == ModeCampaign && g.grid.MaxTile() >= g.currentTarget {
		g.levelCleared = true
		g.levelClearTicks = 0
		g.logger.Info("level cleared", "level", g.levelIndex+1, "target", g.currentTarget, "score", g.grid.Score())
		return true
	}

	// Checked even on a no-op move: the default spawn policy can fill the
	// grid without moving anything.
	if g.grid.IsGameOver() {
		g.gameOver = true
		g.logger.Info("game over", "mode", g.mode, "score", g.grid.Score(), "max", g.grid.MaxTile(), "moves", g.moves)
	}

	return res.Changed()
}

// advanceLevel moves to the next level, keeping the board and score.
func (g *Game) advanceLevel() {
	g.levelCleared = false
	g.levelClearTicks = 0

	if g.levelIndex >= LevelCount()-1 {
		g.won = true
		return
	}

	g.levelIndex++
	g.loadLevel()

	if g.grid.IsGameOver() {
		g.gameOver = true
	}
}

// Grid exposes the underlying grid controller.
func (g *Game) Grid() *powers.Game {
	return g.grid
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	score := 0
	if g.grid != nil {
		score = g.grid.Score()
	}
	return core.GameState{
		Score:    score,
		GameOver: g.gameOver || g.won,
		Paused:   g.paused || g.tooSmall || g.levelCleared,
	}
}
