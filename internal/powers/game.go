// Package powers implements the grid controller for a tile-merging puzzle
// in the style of 2048: an n×n grid of tile values that is shifted as a whole
// in one of four directions.
//
// Every row or column is copied into a canonical line oriented so that index 0
// is the edge tiles move toward, collapsed by package collapse, and written
// back. A Game is meant for a single owner and is not safe for concurrent use.
package powers

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/powers/internal/collapse"
)

var (
	ErrInvalidSize        = errors.New("powers: grid size must be at least 2")
	ErrInvalidProbability = errors.New("powers: probability must be within [0, 1]")
	ErrInvalidDirection   = errors.New("powers: invalid direction")
)

// DefaultFourProbability is the chance that a new tile is a 4 rather than a 2.
const DefaultFourProbability = 0.1

// Source is the part of *rand.Rand the game draws from.
type Source interface {
	Intn(n int) int
	Float64() float64
}

// SpawnPolicy decides whether DoMove places a tile after a move that changed
// nothing.
type SpawnPolicy int

const (
	// SpawnAlways places a new tile after every move, even one with no shifts.
	SpawnAlways SpawnPolicy = iota
	// SpawnOnChange places a new tile only when at least one tile moved.
	SpawnOnChange
)

// String returns the policy name used in configuration files.
func (p SpawnPolicy) String() string {
	if p == SpawnOnChange {
		return "on_change"
	}
	return "always"
}

// ParseSpawnPolicy parses "always" or "on_change".
func ParseSpawnPolicy(s string) (SpawnPolicy, error) {
	switch s {
	case "", "always":
		return SpawnAlways, nil
	case "on_change":
		return SpawnOnChange, nil
	}
	return SpawnAlways, fmt.Errorf("powers: unknown spawn policy %q", s)
}

// Option configures a Game.
type Option func(*Game)

// WithRand sets the random source, typically a seeded *rand.Rand in tests.
func WithRand(r Source) Option {
	return func(g *Game) {
		g.rng = r
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(g *Game) {
		g.logger = l
	}
}

// WithFourProbability sets the chance of spawning a 4.
func WithFourProbability(p float64) Option {
	return func(g *Game) {
		g.fourProb = p
	}
}

// WithSpawnPolicy sets how DoMove treats moves that changed nothing.
func WithSpawnPolicy(p SpawnPolicy) Option {
	return func(g *Game) {
		g.spawn = p
	}
}

// Game holds the grid, the score and the random source.
type Game struct {
	grid     [][]int
	size     int
	score    int
	rng      Source
	logger   *log.Logger
	fourProb float64
	spawn    SpawnPolicy
}

// New creates a size×size game with two initial tiles.
func New(size int, opts ...Option) (*Game, error) {
	if size < 2 {
		return nil, ErrInvalidSize
	}

	g := &Game{
		size:     size,
		fourProb: DefaultFourProbability,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.fourProb < 0 || g.fourProb > 1 {
		return nil, ErrInvalidProbability
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if g.logger == nil {
		g.logger = log.New(io.Discard)
	}

	g.grid = make([][]int, size)
	for row := range g.grid {
		g.grid[row] = make([]int, size)
	}

	// The second tile must see the first one already placed.
	for range 2 {
		if tile, ok := g.GenerateTile(); ok {
			g.place(tile)
		}
	}

	return g, nil
}

// Tile returns the value at row, col.
func (g *Game) Tile(row, col int) int {
	return g.grid[row][col]
}

// SetTile overwrites the value at row, col. It bypasses the game rules and is
// meant for tests and tooling only.
func (g *Game) SetTile(row, col, value int) {
	g.grid[row][col] = value
}

// SetFourProbability changes the chance of spawning a 4 for later tiles.
func (g *Game) SetFourProbability(p float64) error {
	if p < 0 || p > 1 {
		return ErrInvalidProbability
	}
	g.fourProb = p
	return nil
}

// FourProbability returns the chance of spawning a 4.
func (g *Game) FourProbability() float64 {
	return g.fourProb
}

// Size returns the grid dimension.
func (g *Game) Size() int {
	return g.size
}

// Score returns the current score.
func (g *Game) Score() int {
	return g.score
}

// ExtractLine copies row or column index into a new canonical line for dir.
//
//   - Left: the row, left to right.
//   - Right: the row, right to left.
//   - Up: the column, top to bottom.
//   - Down: the column, bottom to top.
func (g *Game) ExtractLine(index int, dir Direction) []int {
	line := make([]int, g.size)
	for pos := range line {
		row, col := cellFor(dir, index, pos, g.size)
		line[pos] = g.grid[row][col]
	}
	return line
}

// WriteLine copies a canonical line back into row or column index, using the
// same orientation as ExtractLine.
func (g *Game) WriteLine(line []int, index int, dir Direction) {
	for pos, v := range line {
		row, col := cellFor(dir, index, pos, g.size)
		g.grid[row][col] = v
	}
}

// DoMove shifts the whole grid in dir, adds merge points to the score and
// places a new tile according to the spawn policy.
func (g *Game) DoMove(dir Direction) MoveResult {
	var result MoveResult

	for i := range g.size {
		line := g.ExtractLine(i, dir)
		shifts := collapse.Collapse(line)
		g.WriteLine(line, i, dir)

		for _, s := range shifts {
			d := Descriptor{Shift: s, Line: i, Direction: dir}
			g.score += d.Points()
			result.Moves = append(result.Moves, d)
		}
	}

	if g.spawn == SpawnAlways || result.Changed() {
		if tile, ok := g.GenerateTile(); ok {
			g.place(tile)
			result.NewTile = &tile
		}
	}

	g.logger.Debug("move applied",
		"direction", dir,
		"shifts", len(result.Moves),
		"merges", result.Merges(),
		"score", g.score,
		"spawned", result.NewTile != nil,
	)

	return result
}

// GenerateTile picks a uniformly random empty cell and a value of 2 or 4. It
// does not modify the grid. The second result is false when the grid is full.
func (g *Game) GenerateTile() (TilePosition, bool) {
	if !g.hasEmptyCell() {
		return TilePosition{}, false
	}

	row, col := g.rng.Intn(g.size), g.rng.Intn(g.size)
	for g.grid[row][col] != 0 {
		row, col = g.rng.Intn(g.size), g.rng.Intn(g.size)
	}

	value := 2
	if g.rng.Float64() < g.fourProb {
		value = 4
	}

	return TilePosition{Row: row, Col: col, Value: value}, true
}

func (g *Game) place(t TilePosition) {
	g.grid[t.Row][t.Col] = t.Value
}

func (g *Game) hasEmptyCell() bool {
	for _, row := range g.grid {
		for _, v := range row {
			if v == 0 {
				return true
			}
		}
	}
	return false
}
