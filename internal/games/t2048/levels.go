// Package t2048 is the playable tile-merging game: a campaign of target tiles
// and an endless mode, both driven by a powers.Game.
package t2048

// Level defines a campaign level with a target tile.
type Level struct {
	ID              int
	Name            string
	Target          int     // Tile value that clears the level
	FourProbability float64 // Chance that a new tile is a 4
}

// Levels are played in order on the same board. Later levels spawn more fours,
// which leaves fewer cheap merges.
var Levels = []Level{
	{ID: 1, Name: "First Steps", Target: 64, FourProbability: 0.10},
	{ID: 2, Name: "Doubling Up", Target: 128, FourProbability: 0.10},
	{ID: 3, Name: "Quarter Way", Target: 256, FourProbability: 0.10},
	{ID: 4, Name: "Half Way", Target: 512, FourProbability: 0.10},
	{ID: 5, Name: "Kilo", Target: 1024, FourProbability: 0.12},
	{ID: 6, Name: "The Classic", Target: 2048, FourProbability: 0.15},
	{ID: 7, Name: "Overflow", Target: 4096, FourProbability: 0.18},
	{ID: 8, Name: "Power Tower", Target: 8192, FourProbability: 0.22},
}

// LevelCount returns the number of campaign levels.
func LevelCount() int {
	return len(Levels)
}

// GetLevel returns the level at the given index (0-based), or nil when out of range.
func GetLevel(index int) *Level {
	if index < 0 || index >= len(Levels) {
		return nil
	}
	return &Levels[index]
}

// LevelNames returns the names of all levels.
func LevelNames() []string {
	names := make([]string, len(Levels))
	for i, lvl := range Levels {
		names[i] = lvl.Name
	}
	return names
}
