package powers

import (
	"encoding/json"

	"github.com/vovakirdan/powers/internal/collapse"
)

// Descriptor is a shift annotated with the row or column it came from and the
// direction of the move.
type Descriptor struct {
	Shift     collapse.Shift
	Line      int
	Direction Direction
}

// IsMerge reports whether the descriptor records a merge.
func (d Descriptor) IsMerge() bool {
	return d.Shift.IsMerge()
}

// Value returns the tile value before the shift.
func (d Descriptor) Value() int {
	return d.Shift.Value()
}

// Points returns the score contributed by this descriptor.
func (d Descriptor) Points() int {
	if d.IsMerge() {
		return d.Shift.Value() * 2
	}
	return 0
}

// Origin returns the grid cell of the first source tile.
func (d Descriptor) Origin(size int) (row, col int) {
	return cellFor(d.Direction, d.Line, d.Shift.From(), size)
}

// Partner returns the grid cell of the second source tile of a merge.
func (d Descriptor) Partner(size int) (row, col int, ok bool) {
	with, ok := d.Shift.With()
	if !ok {
		return 0, 0, false
	}
	row, col = cellFor(d.Direction, d.Line, with, size)
	return row, col, true
}

// Destination returns the grid cell the tile ends up in.
func (d Descriptor) Destination(size int) (row, col int) {
	return cellFor(d.Direction, d.Line, d.Shift.To(), size)
}

// MarshalJSON flattens the shift into the descriptor object.
func (d Descriptor) MarshalJSON() ([]byte, error) {
	type shiftFields struct {
		From  int  `json:"from"`
		With  *int `json:"with,omitempty"`
		To    int  `json:"to"`
		Value int  `json:"value"`
		Merge bool `json:"merge"`
	}
	out := struct {
		Line      int       `json:"line"`
		Direction Direction `json:"direction"`
		shiftFields
	}{
		Line:      d.Line,
		Direction: d.Direction,
		shiftFields: shiftFields{
			From:  d.Shift.From(),
			To:    d.Shift.To(),
			Value: d.Shift.Value(),
			Merge: d.IsMerge(),
		},
	}
	if with, ok := d.Shift.With(); ok {
		out.With = &with
	}
	return json.Marshal(out)
}

// TilePosition is a tile placed after a move.
type TilePosition struct {
	Row   int `json:"row"`
	Col   int `json:"col"`
	Value int `json:"value"`
}

// MoveResult is everything one call to DoMove did.
type MoveResult struct {
	// Moves lists descriptors for line 0 first, then line 1, and so on;
	// within a line they are in collapse order.
	Moves []Descriptor `json:"moves"`

	// NewTile is nil when no tile was placed.
	NewTile *TilePosition `json:"new_tile"`
}

// Changed reports whether any tile moved or merged.
func (r MoveResult) Changed() bool {
	return len(r.Moves) > 0
}

// Points returns the score gained by the move.
func (r MoveResult) Points() int {
	total := 0
	for _, d := range r.Moves {
		total += d.Points()
	}
	return total
}

// Merges returns the number of merge descriptors.
func (r MoveResult) Merges() int {
	n := 0
	for _, d := range r.Moves {
		if d.IsMerge() {
			n++
		}
	}
	return n
}
