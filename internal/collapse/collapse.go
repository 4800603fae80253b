package collapse

// FindNextNonempty returns the smallest index >= start holding a nonzero
// value. The second result is false when there is none.
func FindNextNonempty(line []int, start int) (int, bool) {
	for i := start; i < len(line); i++ {
		if line[i] != 0 {
			return i, true
		}
	}
	return 0, false
}

// FindNextPotentialShift finds the shift, if any, that would move or merge a
// tile into index. It reads only index and the cells to its right and does
// not modify line.
//
// An occupied index can only absorb the next occupied cell, and only when the
// values are equal. An empty index pulls in the next occupied cell, merged
// with the occupied cell after it when those two are equal.
func FindNextPotentialShift(line []int, index int) (Shift, bool) {
	if line[index] != 0 {
		next, ok := FindNextNonempty(line, index+1)
		if !ok || line[next] != line[index] {
			return Shift{}, false
		}
		return Merge(index, next, index, line[index]), true
	}

	next, ok := FindNextNonempty(line, index)
	if !ok {
		return Shift{}, false
	}

	partner, ok := FindNextNonempty(line, next+1)
	if ok && line[partner] == line[next] {
		return Merge(next, partner, index, line[next]), true
	}
	return Move(next, index, line[next]), true
}

// ApplyOneShift updates line in place. It does not check that the shift is
// valid for the line.
func ApplyOneShift(line []int, s Shift) {
	line[s.from] = 0
	if s.merge {
		line[s.with] = 0
	}
	line[s.to] = s.Result()
}

// Collapse compacts line toward index 0 and returns the shifts performed, in
// order. Each index is visited once and its shift applied before moving on,
// so a tile produced by a merge is never merged again: [2 2 4] becomes
// [4 4 0], not [8 0 0].
func Collapse(line []int) []Shift {
	var shifts []Shift
	for i := range line {
		s, ok := FindNextPotentialShift(line, i)
		if !ok {
			continue
		}
		ApplyOneShift(line, s)
		shifts = append(shifts, s)
	}
	return shifts
}
