package t2048

import (
	"github.com/vovakirdan/powers/internal/core"
	"github.com/vovakirdan/powers/internal/powers"
)

var actionDirections = []struct {
	action core.Action
	dir    powers.Direction
}{
	{core.ActionUp, powers.Up},
	{core.ActionDown, powers.Down},
	{core.ActionLeft, powers.Left},
	{core.ActionRight, powers.Right},
}

// directionFor returns the move requested by a frame. When several arrows were
// pressed in one tick the first in Up, Down, Left, Right order wins.
func directionFor(in core.InputFrame) (powers.Direction, bool) {
	for _, ad := range actionDirections {
		if in.Has(ad.action) {
			return ad.dir, true
		}
	}
	return 0, false
}
