package core

// Color represents a foreground color for a screen cell.
// The platform maps each value to an ANSI 256-color code.
type Color uint8

// Predefined colors. Tile colors follow the value ladder 2, 4, 8, ...
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightBlue
	ColorBrightMagenta
	ColorBrightCyan
	ColorBrightWhite
	ColorOrange
	ColorGray
)

var tileColors = []Color{
	ColorWhite,         // 2
	ColorBrightWhite,   // 4
	ColorYellow,        // 8
	ColorOrange,        // 16
	ColorBrightRed,     // 32
	ColorRed,           // 64
	ColorBrightYellow,  // 128
	ColorBrightGreen,   // 256
	ColorGreen,         // 512
	ColorBrightCyan,    // 1024
	ColorCyan,          // 2048
	ColorBrightBlue,    // 4096
	ColorBlue,          // 8192
	ColorBrightMagenta, // 16384
}

// TileColor returns the color used to draw a tile with the given value.
// Empty cells and values past the ladder use ColorGray and ColorMagenta.
func TileColor(value int) Color {
	if value <= 0 {
		return ColorGray
	}
	rank := 0
	for v := value; v > 2; v >>= 1 {
		rank++
	}
	if rank >= len(tileColors) {
		return ColorMagenta
	}
	return tileColors[rank]
}
