package t2048

import (
	"reflect"
	"strings"
	"testing"

	"github.com/vovakirdan/powers/internal/core"
	"github.com/vovakirdan/powers/internal/powers"
	"github.com/vovakirdan/powers/internal/registry"
)

func testConfig() core.RuntimeConfig {
	return core.RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 60,
		Seed:     42,
		GridSize: 4,
	}
}

// loadBoard replaces every cell of the game's grid.
func loadBoard(g *Game, cells [][]int) {
	for row := range cells {
		for col, v := range cells[row] {
			g.Grid().SetTile(row, col, v)
		}
	}
}

func press(a core.Action) core.InputFrame {
	in := core.NewInputFrame()
	in.Set(a)
	return in
}

func countTiles(g *Game) int {
	n := 0
	for _, row := range g.Grid().Cells() {
		for _, v := range row {
			if v != 0 {
				n++
			}
		}
	}
	return n
}

// stuckBoard has no empty cell and no equal neighbours.
var stuckBoard = [][]int{
	{2, 4, 2, 4},
	{4, 2, 4, 2},
	{2, 4, 2, 4},
	{4, 2, 4, 2},
}

func TestRegistered(t *testing.T) {
	for _, id := range []string{IDCampaign, IDEndless} {
		g, err := registry.Create(id)
		if err != nil {
			t.Fatalf("Create(%q): %v", id, err)
		}
		if g.ID() != id {
			t.Errorf("ID() = %q, want %q", g.ID(), id)
		}
	}
}

func TestDeterministicReset(t *testing.T) {
	g1 := New()
	g1.Reset(testConfig())
	g2 := New()
	g2.Reset(testConfig())

	if !reflect.DeepEqual(g1.Grid().Cells(), g2.Grid().Cells()) {
		t.Errorf("same seed should produce the same initial board:\n%v\nvs\n%v", g1.Grid().Cells(), g2.Grid().Cells())
	}
	if countTiles(g1) != 2 {
		t.Errorf("initial tiles = %d, want 2", countTiles(g1))
	}
}

func TestGridSizeFromConfig(t *testing.T) {
	tests := []struct {
		size int
		want int
	}{
		{0, 4},
		{1, 4},
		{3, 3},
		{6, 6},
	}

	for _, tt := range tests {
		cfg := testConfig()
		cfg.GridSize = tt.size
		g := NewEndless()
		g.Reset(cfg)
		if got := g.Grid().Size(); got != tt.want {
			t.Errorf("GridSize %d: size = %d, want %d", tt.size, got, tt.want)
		}
	}
}

func TestStepMapsActions(t *testing.T) {
	tests := []struct {
		action core.Action
		row    int
		col    int
	}{
		{core.ActionLeft, 1, 0},
		{core.ActionRight, 1, 3},
		{core.ActionUp, 0, 1},
		{core.ActionDown, 3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.action.String(), func(t *testing.T) {
			g := NewEndless()
			g.Reset(testConfig())
			loadBoard(g, [][]int{
				{0, 0, 0, 0},
				{0, 8, 0, 0},
				{0, 0, 0, 0},
				{0, 0, 0, 0},
			})

			res := g.Step(press(tt.action))
			if !res.Moved {
				t.Fatal("Step should report a move")
			}
			if got := g.Grid().Tile(tt.row, tt.col); got != 8 {
				t.Errorf("tile at (%d,%d) = %d, want 8", tt.row, tt.col, got)
			}
			if g.Snapshot().Moves != 1 {
				t.Errorf("Moves = %d, want 1", g.Snapshot().Moves)
			}
		})
	}
}

func TestStepWithoutInput(t *testing.T) {
	g := NewEndless()
	g.Reset(testConfig())
	before := g.Grid().Cells()

	res := g.Step(core.NewInputFrame())
	if res.Moved || !reflect.DeepEqual(before, g.Grid().Cells()) {
		t.Error("an empty frame should not touch the board")
	}
	if g.Snapshot().Tick != 1 {
		t.Errorf("Tick = %d, want 1", g.Snapshot().Tick)
	}
}

func TestNoopMoveSpawnPolicy(t *testing.T) {
	board := [][]int{
		{2, 4, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}

	tests := []struct {
		name          string
		spawnOnChange bool
		wantTiles     int
	}{
		{"always", false, 3},
		{"on change", true, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.SpawnOnChange = tt.spawnOnChange
			g := NewEndless()
			g.Reset(cfg)
			loadBoard(g, board)

			res := g.Step(press(core.ActionLeft))
			if res.Moved {
				t.Error("a blocked move should not report Moved")
			}
			if got := countTiles(g); got != tt.wantTiles {
				t.Errorf("tiles = %d, want %d", got, tt.wantTiles)
			}
		})
	}
}

func TestGameOverDetected(t *testing.T) {
	g := NewEndless()
	g.Reset(testConfig())
	loadBoard(g, stuckBoard)

	res := g.Step(press(core.ActionLeft))
	if !res.State.GameOver {
		t.Fatal("a stuck board should end the game after a move")
	}
	if g.Snapshot().State != StateGameOver {
		t.Errorf("State = %s, want game_over", g.Snapshot().State)
	}

	// Further moves are ignored.
	before := g.Snapshot().Moves
	g.Step(press(core.ActionRight))
	if g.Snapshot().Moves != before {
		t.Error("moves after game over should be ignored")
	}
}

func TestCampaignProgression(t *testing.T) {
	g := New()
	g.Reset(testConfig())
	loadBoard(g, [][]int{
		{32, 32, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})

	res := g.Step(press(core.ActionLeft))
	if !g.levelCleared {
		t.Fatal("reaching the target should clear the level")
	}
	if !res.State.Paused {
		t.Error("the level clear screen should report paused")
	}
	if res.State.Score != 64 {
		t.Errorf("Score = %d, want 64", res.State.Score)
	}

	for range levelClearDelay {
		g.Step(core.NewInputFrame())
	}

	if g.levelIndex != 1 {
		t.Fatalf("should advance to level 2, got level %d", g.levelIndex+1)
	}
	if g.currentTarget != Levels[1].Target {
		t.Errorf("target = %d, want %d", g.currentTarget, Levels[1].Target)
	}
	if g.Grid().FourProbability() != Levels[1].FourProbability {
		t.Errorf("four probability = %v, want %v", g.Grid().FourProbability(), Levels[1].FourProbability)
	}
	if g.Grid().Tile(0, 0) != 64 {
		t.Error("the board should carry over to the next level")
	}
}

func TestCampaignWin(t *testing.T) {
	g := New()
	g.SetStartLevel(LevelCount())
	g.Reset(testConfig())

	last := Levels[LevelCount()-1].Target
	loadBoard(g, [][]int{
		{last / 2, last / 2, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})

	g.Step(press(core.ActionLeft))
	for range levelClearDelay {
		g.Step(core.NewInputFrame())
	}

	if !g.won || !g.State().GameOver {
		t.Error("clearing the final level should win the campaign")
	}
	if g.Snapshot().State != StateWin {
		t.Errorf("State = %s, want win", g.Snapshot().State)
	}
}

func TestEndlessModeNoWin(t *testing.T) {
	g := NewEndless()
	g.Reset(testConfig())
	loadBoard(g, [][]int{
		{8192, 8192, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})

	g.Step(press(core.ActionLeft))

	if g.levelCleared || g.won {
		t.Error("endless mode has no level clear or win")
	}
	if g.State().Score != 16384 {
		t.Errorf("Score = %d, want 16384", g.State().Score)
	}
}

func TestStartLevel(t *testing.T) {
	g := New()
	g.SetStartLevel(3)
	g.Reset(testConfig())

	snap := g.Snapshot()
	if snap.Level != 3 || snap.Target != Levels[2].Target {
		t.Errorf("level = %d target = %d, want level 3 target %d", snap.Level, snap.Target, Levels[2].Target)
	}

	// A restart keeps the chosen level.
	g.Reset(testConfig())
	if g.Snapshot().Level != 3 {
		t.Errorf("second Reset level = %d, want 3", g.Snapshot().Level)
	}

	// Other games are unaffected.
	other := New()
	other.Reset(testConfig())
	if other.Snapshot().Level != 1 {
		t.Errorf("fresh game level = %d, want 1", other.Snapshot().Level)
	}

	g.SetStartLevel(LevelCount() + 1)
	g.Reset(testConfig())
	if g.Snapshot().Level != 1 {
		t.Errorf("out-of-range level = %d, want 1", g.Snapshot().Level)
	}
}

func TestResizeKeepsBoard(t *testing.T) {
	g := NewEndless()
	g.Reset(testConfig())
	before := g.Grid().Cells()

	g.Resize(10, 5)
	if !g.tooSmall || g.Snapshot().State != StatePausedSmall {
		t.Error("a tiny screen should pause the game")
	}

	g.Resize(80, 24)
	if g.tooSmall {
		t.Error("a large screen should resume the game")
	}
	after := g.Grid().Cells()
	for r := range before {
		for c := range before[r] {
			if before[r][c] != after[r][c] {
				t.Fatalf("board changed at (%d,%d)", r, c)
			}
		}
	}
}

func TestPauseBlocksMoves(t *testing.T) {
	g := NewEndless()
	g.Reset(testConfig())
	loadBoard(g, [][]int{
		{0, 0, 0, 2},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})

	g.Step(press(core.ActionPause))
	if !g.State().Paused || g.Snapshot().State != StatePaused {
		t.Fatal("P should pause the game")
	}

	g.Step(press(core.ActionLeft))
	if g.Grid().Tile(0, 3) != 2 {
		t.Error("moves should be ignored while paused")
	}

	g.Step(press(core.ActionPause))
	g.Step(press(core.ActionLeft))
	if g.Grid().Tile(0, 0) != 2 {
		t.Error("moves should apply after resuming")
	}
}

func TestSlideAnimation(t *testing.T) {
	g := NewEndless()
	g.Reset(testConfig())
	loadBoard(g, [][]int{
		{2, 0, 2, 2},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})

	g.Step(press(core.ActionLeft))

	want := []TileAnimation{
		{Value: 2, FromX: 0, FromY: 0, ToX: 0, ToY: 0, Merged: true},
		{Value: 2, FromX: 2, FromY: 0, ToX: 0, ToY: 0, Merged: true},
		{Value: 2, FromX: 3, FromY: 0, ToX: 1, ToY: 0},
	}
	if !reflect.DeepEqual(g.animations, want) {
		t.Fatalf("animations = %+v\nwant %+v", g.animations, want)
	}
	if g.animationPhase != PhaseSlide || g.pendingNewTile == nil {
		t.Fatal("a move that spawned a tile should slide first")
	}

	hidden := g.hiddenCells()
	for _, pos := range []powers.Position{{Row: 0, Col: 0}, {Row: 0, Col: 1}} {
		if !hidden[pos] {
			t.Errorf("destination %+v should be hidden while sliding", pos)
		}
	}

	for range slideAnimationDuration {
		g.Step(core.NewInputFrame())
	}
	if g.animationPhase != PhasePop || len(g.animations) != 1 || !g.animations[0].IsNew {
		t.Fatalf("slide should chain into a pop, phase = %d", g.animationPhase)
	}

	for range popAnimationDuration {
		g.Step(core.NewInputFrame())
	}
	if g.animating || g.hiddenCells() != nil {
		t.Error("animation should be finished")
	}
}

func TestMoveCancelsAnimation(t *testing.T) {
	g := NewEndless()
	g.Reset(testConfig())
	loadBoard(g, [][]int{
		{0, 0, 0, 4},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})

	g.Step(press(core.ActionLeft))
	if !g.animating {
		t.Fatal("expected an animation after the first move")
	}

	g.Step(press(core.ActionRight))
	for _, a := range g.animations {
		if a.FromX <= a.ToX || a.IsNew {
			continue
		}
		t.Errorf("animation %+v does not belong to a rightward move", a)
	}
}

func TestInterpolatePosition(t *testing.T) {
	a := TileAnimation{FromX: 3, FromY: 0, ToX: 0, ToY: 0}

	if x, _ := a.interpolatePosition(); x != 3 {
		t.Errorf("start x = %v, want 3", x)
	}
	a.Progress = 1
	if x, _ := a.interpolatePosition(); x != 0 {
		t.Errorf("end x = %v, want 0", x)
	}
	a.Progress = 0.5
	if x, _ := a.interpolatePosition(); x <= 0 || x >= 1.5 {
		t.Errorf("eased midpoint x = %v, want past the halfway mark", x)
	}
}

// findText returns the screen position of text, comparing rune by rune.
func findText(s *core.Screen, text string) (int, int, bool) {
	return findTextBelow(s, text, 0)
}

// findTextBelow finds text on row minY or further down.
func findTextBelow(s *core.Screen, text string, minY int) (int, int, bool) {
	runes := []rune(text)
	for y := minY; y < s.Height(); y++ {
	next:
		for x := 0; x+len(runes) <= s.Width(); x++ {
			for i, r := range runes {
				if s.Get(x+i, y) != r {
					continue next
				}
			}
			return x, y, true
		}
	}
	return 0, 0, false
}

func TestRenderBoard(t *testing.T) {
	g := NewEndless()
	g.Reset(testConfig())
	loadBoard(g, [][]int{
		{2048, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 2},
	})

	screen := core.NewScreen(80, 24)
	g.Render(screen)

	boardX, boardY, ok := findText(screen, "┌")
	if !ok {
		t.Fatalf("board frame not rendered:\n%s", screen.String())
	}
	x, y, ok := findTextBelow(screen, "2048", boardY+1)
	if !ok || x < boardX {
		t.Fatalf("2048 tile not rendered inside the board:\n%s", screen.String())
	}
	if c := screen.GetCell(x, y); c.Color != core.TileColor(2048) {
		t.Errorf("tile color = %d, want %d", c.Color, core.TileColor(2048))
	}
	for _, text := range []string{"Score: 0", "Max: 2048", "Powers (Endless)", "┌", "┘"} {
		if _, _, ok := findText(screen, text); !ok {
			t.Errorf("%q missing from render", text)
		}
	}
}

func TestRenderGameOverOverlay(t *testing.T) {
	g := NewEndless()
	g.Reset(testConfig())
	loadBoard(g, stuckBoard)
	g.Step(press(core.ActionUp))

	screen := core.NewScreen(80, 24)
	g.Render(screen)
	if !strings.Contains(screen.String(), "GAME OVER") {
		t.Errorf("game over overlay missing:\n%s", screen.String())
	}
}

func TestTooSmallScreen(t *testing.T) {
	cfg := testConfig()
	cfg.ScreenW = 20
	cfg.ScreenH = 10

	g := NewEndless()
	g.Reset(cfg)
	before := g.Grid().Cells()

	res := g.Step(press(core.ActionLeft))
	if !res.State.Paused || g.Snapshot().State != StatePausedSmall {
		t.Error("a small window should pause the game")
	}
	if !reflect.DeepEqual(before, g.Grid().Cells()) {
		t.Error("moves should be ignored in a small window")
	}

	screen := core.NewScreen(cfg.ScreenW, cfg.ScreenH)
	g.Render(screen)
	if !strings.Contains(screen.String(), "Window too small") {
		t.Errorf("missing resize hint:\n%s", screen.String())
	}
}

func TestSnapshot(t *testing.T) {
	g := New()
	g.Reset(testConfig())

	snap := g.Snapshot()
	if snap.Mode != "campaign" || snap.Level != 1 || snap.Target != Levels[0].Target {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.State != StatePlaying || len(snap.Board) != 4 {
		t.Errorf("snapshot = %+v", snap)
	}

	snap.Board[0][0] = 1024
	if g.Grid().Tile(0, 0) == 1024 {
		t.Error("snapshot board should be a copy")
	}

	e := NewEndless()
	e.Reset(testConfig())
	if s := e.Snapshot(); s.Level != 0 || s.Target != 0 || s.Mode != "endless" {
		t.Errorf("endless snapshot = %+v", s)
	}
}

func TestLevels(t *testing.T) {
	if LevelCount() != len(LevelNames()) {
		t.Fatal("LevelNames length mismatch")
	}
	if LevelNames()[0] != "First Steps" {
		t.Errorf("first level = %s", LevelNames()[0])
	}
	for i := 1; i < LevelCount(); i++ {
		if Levels[i].Target <= Levels[i-1].Target {
			t.Errorf("level %d target %d does not exceed the previous one", i+1, Levels[i].Target)
		}
	}
	if GetLevel(-1) != nil || GetLevel(LevelCount()) != nil {
		t.Error("GetLevel out of range should be nil")
	}
}
