package powers

// Position is a grid cell.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Cells returns a copy of the grid, indexed [row][col].
func (g *Game) Cells() [][]int {
	out := make([][]int, g.size)
	for row := range g.grid {
		out[row] = append([]int(nil), g.grid[row]...)
	}
	return out
}

// EmptyCells returns the coordinates of all empty cells in row-major order.
func (g *Game) EmptyCells() []Position {
	var cells []Position
	for row := range g.grid {
		for col, v := range g.grid[row] {
			if v == 0 {
				cells = append(cells, Position{Row: row, Col: col})
			}
		}
	}
	return cells
}

// MaxTile returns the highest tile value on the grid.
func (g *Game) MaxTile() int {
	maxVal := 0
	for _, row := range g.grid {
		for _, v := range row {
			if v > maxVal {
				maxVal = v
			}
		}
	}
	return maxVal
}

// hasPossibleMerge reports whether two equal tiles are adjacent.
func (g *Game) hasPossibleMerge() bool {
	for row := range g.size {
		for col := range g.size {
			val := g.grid[row][col]
			if val == 0 {
				continue
			}
			if col < g.size-1 && g.grid[row][col+1] == val {
				return true
			}
			if row < g.size-1 && g.grid[row+1][col] == val {
				return true
			}
		}
	}
	return false
}

// CanMove reports whether some direction would move or merge a tile.
func (g *Game) CanMove() bool {
	return g.hasEmptyCell() || g.hasPossibleMerge()
}

// IsGameOver reports whether no move is possible.
func (g *Game) IsGameOver() bool {
	return !g.CanMove()
}
