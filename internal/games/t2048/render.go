package t2048

import (
	"fmt"
	"math"
	"strconv"

	"github.com/vovakirdan/powers/internal/core"
	"github.com/vovakirdan/powers/internal/powers"
)

const (
	cellWidth  = 7 // Columns per cell, left border included
	cellHeight = 2 // Rows per cell, top border included
	hudHeight  = 3
)

// boardDimensions returns the board size in screen cells, borders included.
func boardDimensions(size int) (w, h int) {
	return size*cellWidth + 1, size*cellHeight + 1
}

// Render draws the game state to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	if g.tooSmall {
		g.renderTooSmall(dst)
		return
	}

	boardW, boardH := boardDimensions(g.grid.Size())
	boardX := (g.screenW - boardW) / 2
	boardY := hudHeight + 1

	g.renderHUD(dst, boardX, boardW)
	g.renderGridLines(dst, boardX, boardY)
	g.renderTiles(dst, boardX, boardY)
	g.renderAnimations(dst, boardX, boardY)
	g.renderOverlays(dst, boardX, boardY, boardW, boardH)
}

func (g *Game) renderTooSmall(dst *core.Screen) {
	y := g.screenH / 2
	dst.DrawTextCentered(y, "Window too small")
	dst.DrawTextCentered(y+1, "Please resize terminal")
}

// renderHUD draws the title, score and level or max tile.
func (g *Game) renderHUD(dst *core.Screen, boardX, boardW int) {
	title := g.Title()
	dst.DrawTextColored(boardX+(boardW-len(title))/2, 0, title, core.ColorBrightYellow)

	dst.DrawText(boardX, 1, fmt.Sprintf("Score: %d", g.grid.Score()))

	var info string
	if g.mode == ModeCampaign {
		info = fmt.Sprintf("Level %d/%d  Target: %d", g.levelIndex+1, LevelCount(), g.currentTarget)
	} else {
		info = fmt.Sprintf("Max: %d", g.grid.MaxTile())
	}
	dst.DrawText(max(boardX, boardX+boardW-len(info)), 1, info)

	moves := fmt.Sprintf("Moves: %d", g.moves)
	dst.DrawTextColored(boardX+(boardW-len(moves))/2, 2, moves, core.ColorGray)
}

// renderGridLines draws the cell borders of the n×n board.
func (g *Game) renderGridLines(dst *core.Screen, boardX, boardY int) {
	size := g.grid.Size()
	for y := range size + 1 {
		for x := range size + 1 {
			px := boardX + x*cellWidth
			py := boardY + y*cellHeight

			dst.SetColored(px, py, junction(x, y, size), core.ColorGray)
			if x < size {
				for i := 1; i < cellWidth; i++ {
					dst.SetColored(px+i, py, '─', core.ColorGray)
				}
			}
			if y < size {
				for i := 1; i < cellHeight; i++ {
					dst.SetColored(px, py+i, '│', core.ColorGray)
				}
			}
		}
	}
}

// junction picks the box-drawing rune for grid intersection (x, y).
func junction(x, y, size int) rune {
	switch {
	case y == 0 && x == 0:
		return '┌'
	case y == 0 && x == size:
		return '┐'
	case y == size && x == 0:
		return '└'
	case y == size && x == size:
		return '┘'
	case y == 0:
		return '┬'
	case y == size:
		return '┴'
	case x == 0:
		return '├'
	case x == size:
		return '┤'
	default:
		return '┼'
	}
}

// renderTiles draws every non-empty cell not covered by an animation.
func (g *Game) renderTiles(dst *core.Screen, boardX, boardY int) {
	hidden := g.hiddenCells()
	size := g.grid.Size()
	for row := range size {
		for col := range size {
			val := g.grid.Tile(row, col)
			if val == 0 || hidden[powers.Position{Row: row, Col: col}] {
				continue
			}
			drawTile(dst, boardX, boardY, float64(col), float64(row), strconv.Itoa(val), core.TileColor(val))
		}
	}
}

// renderAnimations draws sliding and popping tiles on top of the board.
func (g *Game) renderAnimations(dst *core.Screen, boardX, boardY int) {
	if !g.animating {
		return
	}
	for i := range g.animations {
		a := &g.animations[i]
		x, y := a.interpolatePosition()

		label := strconv.Itoa(a.Value)
		color := core.TileColor(a.Value)
		switch {
		case a.IsNew && a.Progress < 0.5:
			label = "·"
		case a.Merged && a.Progress >= 0.5:
			color = core.TileColor(a.Value * 2)
		}
		drawTile(dst, boardX, boardY, x, y, label, color)
	}
}

// drawTile centers label in the cell at fractional position (col, row).
func drawTile(dst *core.Screen, boardX, boardY int, col, row float64, label string, color core.Color) {
	cellX := boardX + int(math.Round(col*cellWidth)) + 1
	cellY := boardY + int(math.Round(row*cellHeight)) + 1

	width := len([]rune(label))
	pad := max(0, (cellWidth-1-width)/2)
	dst.DrawTextColored(cellX+pad, cellY, label, color)
}

// renderOverlays draws pause, level and end-of-game boxes.
func (g *Game) renderOverlays(dst *core.Screen, boardX, boardY, boardW, boardH int) {
	centerX := boardX + boardW/2
	centerY := boardY + boardH/2

	switch {
	case g.paused:
		g.drawOverlay(dst, centerX, centerY, "PAUSED", "Press P to resume")
	case g.levelCleared:
		reached := fmt.Sprintf("Target %d reached!", g.currentTarget)
		if g.levelIndex >= LevelCount()-1 {
			g.drawOverlay(dst, centerX, centerY, reached, "Final level complete!")
		} else {
			g.drawOverlay(dst, centerX, centerY, reached, fmt.Sprintf("Next: %s", GetLevel(g.levelIndex+1).Name))
		}
	case g.won:
		g.drawOverlay(dst, centerX, centerY, "CAMPAIGN COMPLETE!", fmt.Sprintf("Score: %d", g.grid.Score()), "Press R to restart")
	case g.gameOver:
		g.drawOverlay(dst, centerX, centerY, "GAME OVER", fmt.Sprintf("Max tile: %d", g.grid.MaxTile()), "Press R to restart")
	}
}

// drawOverlay draws a centered box with the given lines.
func (g *Game) drawOverlay(dst *core.Screen, centerX, centerY int, lines ...string) {
	maxLen := 0
	for _, line := range lines {
		maxLen = max(maxLen, len(line))
	}

	box := core.NewRect(centerX-(maxLen+4)/2, centerY-(len(lines)+2)/2, maxLen+4, len(lines)+2)
	dst.DrawRect(box, ' ')
	dst.DrawBox(box)

	for i, line := range lines {
		dst.DrawTextColored(centerX-len(line)/2, box.Y+1+i, line, core.ColorBrightWhite)
	}
}

// Controls returns the control hints for the game.
func (g *Game) Controls() string {
	return "Arrows/WASD/HJKL: Move | P: Pause | R: Restart | Q: Quit"
}
