package powers

import (
	"fmt"
	"strings"
)

// Direction represents a move direction.
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
)

// Directions returns all four directions in a fixed order.
func Directions() []Direction {
	return []Direction{Left, Right, Up, Down}
}

// String returns the lower-case direction name.
func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// ParseDirection parses a direction name, case-insensitively. Single-letter
// forms (l, r, u, d) are accepted.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "l":
		return Left, nil
	case "right", "r":
		return Right, nil
	case "up", "u":
		return Up, nil
	case "down", "d":
		return Down, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// MarshalText encodes the direction by name.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes a direction name.
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// cellFor maps position pos of the canonical line index for dir to grid
// coordinates. Position 0 is the cell on the edge tiles move toward.
func cellFor(dir Direction, index, pos, size int) (row, col int) {
	switch dir {
	case Left:
		return index, pos
	case Right:
		return index, size - 1 - pos
	case Up:
		return pos, index
	case Down:
		return size - 1 - pos, index
	}
	panic(fmt.Sprintf("powers: unknown direction %d", int(dir)))
}
