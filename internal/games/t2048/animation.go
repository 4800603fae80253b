package t2048

import (
	"github.com/vovakirdan/powers/internal/powers"
)

// Animation lengths in ticks.
const (
	slideAnimationDuration = 8 // ~133ms at 60fps
	popAnimationDuration   = 6 // ~100ms at 60fps
)

// TileAnimation is a tile drawn between two grid cells. Positions are in
// cells, X being the column and Y the row.
type TileAnimation struct {
	Value    int     // Value before the move
	FromX    int     // Start column
	FromY    int     // Start row
	ToX      int     // End column
	ToY      int     // End row
	Progress float64 // 0.0 → 1.0
	Merged   bool    // Part of a merge
	IsNew    bool    // Spawned tile
}

// AnimationPhase represents the current phase of animation.
type AnimationPhase int

const (
	PhaseNone AnimationPhase = iota
	PhaseSlide
	PhasePop
)

// startSlideAnimation builds one animation per source tile of each
// descriptor. A merge contributes two, both ending in its destination.
func (g *Game) startSlideAnimation(moves []powers.Descriptor, newTile *powers.TilePosition) {
	size := g.grid.Size()
	g.animations = g.animations[:0]

	for _, d := range moves {
		toRow, toCol := d.Destination(size)
		fromRow, fromCol := d.Origin(size)
		g.animations = append(g.animations, TileAnimation{
			Value:  d.Value(),
			FromX:  fromCol,
			FromY:  fromRow,
			ToX:    toCol,
			ToY:    toRow,
			Merged: d.IsMerge(),
		})

		if row, col, ok := d.Partner(size); ok {
			g.animations = append(g.animations, TileAnimation{
				Value:  d.Value(),
				FromX:  col,
				FromY:  row,
				ToX:    toCol,
				ToY:    toRow,
				Merged: true,
			})
		}
	}

	g.pendingNewTile = newTile
	g.animating = true
	g.animationPhase = PhaseSlide
	g.animationTicks = 0
}

// startPopAnimation animates a freshly spawned tile.
func (g *Game) startPopAnimation(tile powers.TilePosition) {
	g.animations = append(g.animations[:0], TileAnimation{
		Value: tile.Value,
		FromX: tile.Col,
		FromY: tile.Row,
		ToX:   tile.Col,
		ToY:   tile.Row,
		IsNew: true,
	})
	g.pendingNewTile = nil
	g.animating = true
	g.animationPhase = PhasePop
	g.animationTicks = 0
}

// updateAnimation advances the animation by one tick.
// Returns true if animation is still in progress.
func (g *Game) updateAnimation() bool {
	if !g.animating {
		return false
	}

	g.animationTicks++

	var duration int
	switch g.animationPhase {
	case PhaseSlide:
		duration = slideAnimationDuration
	case PhasePop:
		duration = popAnimationDuration
	default:
		g.clearAnimation()
		return false
	}

	progress := min(float64(g.animationTicks)/float64(duration), 1.0)
	for i := range g.animations {
		g.animations[i].Progress = progress
	}

	if g.animationTicks >= duration {
		g.finishAnimation()
		return g.animating
	}
	return true
}

// finishAnimation ends the current phase, chaining slide into pop when a tile
// was spawned.
func (g *Game) finishAnimation() {
	if g.animationPhase == PhaseSlide && g.pendingNewTile != nil {
		g.startPopAnimation(*g.pendingNewTile)
		return
	}
	g.clearAnimation()
}

func (g *Game) clearAnimation() {
	g.animating = false
	g.animationPhase = PhaseNone
	g.animations = g.animations[:0]
	g.animationTicks = 0
	g.pendingNewTile = nil
}

// hiddenCells returns the cells whose current value must not be drawn because
// an animation is covering them.
func (g *Game) hiddenCells() map[powers.Position]bool {
	if !g.animating {
		return nil
	}
	hidden := make(map[powers.Position]bool, len(g.animations)+1)
	for _, a := range g.animations {
		hidden[powers.Position{Row: a.ToY, Col: a.ToX}] = true
	}
	if g.pendingNewTile != nil {
		hidden[powers.Position{Row: g.pendingNewTile.Row, Col: g.pendingNewTile.Col}] = true
	}
	return hidden
}

// easeOutQuad provides smooth deceleration for animation.
func easeOutQuad(t float64) float64 {
	return t * (2 - t)
}

// interpolatePosition returns the current position in cells.
func (a *TileAnimation) interpolatePosition() (x, y float64) {
	t := easeOutQuad(a.Progress)
	x = float64(a.FromX) + (float64(a.ToX)-float64(a.FromX))*t
	y = float64(a.FromY) + (float64(a.ToY)-float64(a.FromY))*t
	return x, y
}
