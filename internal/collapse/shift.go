// Package collapse implements the leftward, non-cascading collapse of a single
// line of tiles. A line is a slice of tile values where 0 is empty; callers
// orient it so that index 0 is the edge tiles move toward.
package collapse

import (
	"encoding/json"
	"fmt"
)

// Shift is one elementary operation on a line: a tile moving to a lower index,
// or two equal tiles merging into one.
//
// Value is the value held by the source tile(s) before the operation, not the
// doubled value produced by a merge.
type Shift struct {
	from  int
	with  int
	merge bool
	to    int
	value int
}

// Move returns a shift that moves the tile at from into to.
func Move(from, to, value int) Shift {
	return Shift{from: from, to: to, value: value}
}

// Merge returns a shift that merges the tiles at from and with into to.
func Merge(from, with, to, value int) Shift {
	return Shift{from: from, with: with, merge: true, to: to, value: value}
}

// From returns the first source index.
func (s Shift) From() int {
	return s.from
}

// With returns the second source index. The second result is false for a
// plain move.
func (s Shift) With() (int, bool) {
	return s.with, s.merge
}

// To returns the destination index.
func (s Shift) To() int {
	return s.to
}

// Value returns the pre-operation tile value.
func (s Shift) Value() int {
	return s.value
}

// IsMerge reports whether the shift combines two tiles.
func (s Shift) IsMerge() bool {
	return s.merge
}

// Result returns the value written at the destination.
func (s Shift) Result() int {
	if s.merge {
		return s.value * 2
	}
	return s.value
}

// String formats the shift for logs and test failures.
func (s Shift) String() string {
	if s.merge {
		return fmt.Sprintf("merge(%d+%d->%d, %d)", s.from, s.with, s.to, s.value)
	}
	return fmt.Sprintf("move(%d->%d, %d)", s.from, s.to, s.value)
}

type shiftJSON struct {
	From  int  `json:"from"`
	With  *int `json:"with,omitempty"`
	To    int  `json:"to"`
	Value int  `json:"value"`
	Merge bool `json:"merge"`
}

// MarshalJSON encodes the shift; "with" is omitted for a plain move.
func (s Shift) MarshalJSON() ([]byte, error) {
	out := shiftJSON{From: s.from, To: s.to, Value: s.value, Merge: s.merge}
	if s.merge {
		with := s.with
		out.With = &with
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a shift written by MarshalJSON.
func (s *Shift) UnmarshalJSON(data []byte) error {
	var in shiftJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if in.With != nil {
		*s = Merge(in.From, *in.With, in.To, in.Value)
		return nil
	}
	*s = Move(in.From, in.To, in.Value)
	return nil
}
