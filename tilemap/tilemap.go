/*
Package tilemap implements decoders for common tilemap interchange formats
and an encoder for the hardware tilemap format.

Three formats can be decoded:

	GBA	.gba, .map	int32 width and height, 2 bytes per tile
	STM	.stm	"STMP" magic, int16 width and height, 4 bytes per tile
	Text	.txt, .txm	comma separated tile indices, one row per line

All binary values are little endian.

The hardware tilemap is either a raw dump of every tile or an optimized
encoding that skips empty rows and writes sparse rows as a list of
(x, tile) pairs.
*/
package tilemap

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrFormatUnrecognized is returned when the tilemap format cannot be
	// determined from the file extension or the magic is wrong
	ErrFormatUnrecognized = errors.New("tilemap: format not recognized")

	errBadSize = errors.New("tilemap: invalid dimensions")
)

// RowWidthError is returned when a row of a text tilemap has a different
// number of columns to the first row.
type RowWidthError struct {
	// Line is the 1-based physical line number in the input, counting
	// blank lines
	Line      int
	Want, Got int
}

func (e *RowWidthError) Error() string {
	return fmt.Sprintf("tilemap: line %d has %d columns, expected %d", e.Line, e.Got, e.Want)
}

// Format is a tilemap interchange format.
type Format int

const (
	// FormatGBA is the GBA .map format which supports flipped tiles
	FormatGBA Format = iota + 1

	// FormatSTM is the Simple Tile Map format which supports flipped tiles
	FormatSTM

	// FormatText is comma separated decimal tile indices with no attributes
	FormatText
)

func (f Format) String() string {
	switch f {
	case FormatGBA:
		return "gba"
	case FormatSTM:
		return "stm"
	case FormatText:
		return "text"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// FormatFromFilename returns the format implied by the extension of file.
func FormatFromFilename(file string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(file), ".")) {
	case "gba", "map":
		return FormatGBA, nil
	case "stm":
		return FormatSTM, nil
	case "txm", "txt":
		return FormatText, nil
	}
	return 0, fmt.Errorf("%w: %q, use gba, map, stm, txm or txt", ErrFormatUnrecognized, filepath.Ext(file))
}

// Tile is a reference to a tile definition placed in the tilemap.
type Tile struct {
	// Index is the tile definition index
	Index int

	// X and Y are the position in the tilemap
	X, Y int

	FlipX, FlipY bool

	// Rotate is set for tiles rotated clockwise
	Rotate bool
}

// Map is a fixed size grid of tiles.
type Map struct {
	Width, Height int
	Tiles         []Tile
}

// New returns a map of the given size with every tile referencing definition
// zero.
func New(width, height int) *Map {
	m := &Map{
		Width:  width,
		Height: height,
		Tiles:  make([]Tile, width*height),
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			m.Tiles[y*width+x] = Tile{X: x, Y: y}
		}
	}
	return m
}

// At returns the tile at (x, y).
func (m *Map) At(x, y int) Tile {
	return m.Tiles[y*m.Width+x]
}

// Set places t at (x, y), overwriting its position fields.
func (m *Map) Set(x, y int, t Tile) {
	t.X, t.Y = x, y
	m.Tiles[y*m.Width+x] = t
}

// Row returns the tiles of row y.
func (m *Map) Row(y int) []Tile {
	return m.Tiles[y*m.Width : (y+1)*m.Width]
}
