package nextconvert

import (
	"fmt"
	"image/color"

	"github.com/bodgit/nextconvert/object"
	"github.com/pkg/errors"
)

const (
	// DefaultSpriteSize is the width and height of a sprite if not set
	DefaultSpriteSize = 16

	tileSize = 8
)

var (
	// ErrNoInput is returned when a job has no input files
	ErrNoInput = errors.New("nextconvert: no input file")

	// ErrNoOutput is returned when a job has no output files
	ErrNoOutput = errors.New("nextconvert: no output file")
)

// DefaultTransparent is the default transparent colour, magenta.
var DefaultTransparent = color.NRGBA{0xff, 0x00, 0xff, 0xff}

// Options are shared by every job.
type Options struct {
	// Transparent is the colour of transparent pixels
	Transparent color.NRGBA

	// Palette9Bit writes two bytes per palette entry rather than one
	Palette9Bit bool

	// ExportPaletteCount writes the number of palette entries first
	ExportPaletteCount bool

	// IgnoreCopies removes objects that are a copy, mirror or rotation
	// of an earlier object
	IgnoreCopies bool

	// KeepTransparent decides which fully transparent objects are kept
	KeepTransparent object.Policy

	// ReduceColours reduces objects with too many colours for a 4-bit
	// palette bank rather than failing
	ReduceColours bool
}

// DefaultOptions returns the options used when nothing else is set.
func DefaultOptions() Options {
	return Options{
		Transparent: DefaultTransparent,
	}
}

// key is the part of the cache key derived from the options.
func (o Options) key() string {
	return fmt.Sprintf("%+v", o)
}

// Job is a single conversion that can be run as part of a build.
type Job interface {
	fmt.Stringer

	run(*Converter) error
}

// SpritesJob converts a raster into sprites.
type SpritesJob struct {
	Options

	// Input is the source raster
	Input string

	// InputPalette is an optional palette of 3 byte RGB entries to map
	// colours onto instead of building one
	InputPalette string

	OutputSprites, OutputPalette string

	// FourBit selects 4-bit sprites
	FourBit bool

	// Size is the width and height of each sprite. Zero means
	// DefaultSpriteSize
	Size int
}

func (j *SpritesJob) size() int {
	if j.Size == 0 {
		return DefaultSpriteSize
	}
	return j.Size
}

func (j *SpritesJob) validate() error {
	if j.Input == "" {
		return ErrNoInput
	}
	if j.OutputSprites == "" && j.OutputPalette == "" {
		return errors.Wrap(ErrNoOutput, "either sprites or palette output is required")
	}
	if j.size() < 0 {
		return errors.Errorf("nextconvert: invalid sprite size %d", j.Size)
	}
	return nil
}

func (j *SpritesJob) String() string {
	return fmt.Sprintf("sprites %s", j.Input)
}

func (j *SpritesJob) run(c *Converter) error {
	return c.Sprites(j)
}

// TilesJob converts a raster into 8 by 8 4-bit tiles.
type TilesJob struct {
	Options

	Input string

	OutputTiles, OutputPalette string
}

func (j *TilesJob) validate() error {
	if j.Input == "" {
		return ErrNoInput
	}
	if j.OutputTiles == "" && j.OutputPalette == "" {
		return errors.Wrap(ErrNoOutput, "either tiles or palette output is required")
	}
	return nil
}

func (j *TilesJob) String() string {
	return fmt.Sprintf("tiles %s", j.Input)
}

func (j *TilesJob) run(c *Converter) error {
	return c.Tiles(j)
}

// TilemapJob converts a tilemap and optionally its tile definitions.
type TilemapJob struct {
	Options

	// InputTilemap is a tilemap in any format supported by the tilemap
	// package, chosen by file extension
	InputTilemap string

	// InputTiles is an optional raster of 8 by 8 tile definitions,
	// needed for the palette bank of each tile
	InputTiles string

	OutputTilemap, OutputTiles, OutputPalette string

	// TransparentTile is the index of the empty tile
	TransparentTile int

	// Optimized writes only the used rows and tiles
	Optimized bool

	// OneByte writes each tile as just its index with no attribute byte
	OneByte bool
}

func (j *TilemapJob) validate() error {
	if j.InputTilemap == "" && j.InputTiles == "" {
		return ErrNoInput
	}
	if j.OutputTilemap == "" && j.OutputTiles == "" && j.OutputPalette == "" {
		return errors.Wrap(ErrNoOutput, "either tilemap, tiles or palette output is required")
	}
	return nil
}

func (j *TilemapJob) String() string {
	if j.InputTilemap == "" {
		return fmt.Sprintf("tilemap %s", j.InputTiles)
	}
	return fmt.Sprintf("tilemap %s", j.InputTilemap)
}

func (j *TilemapJob) run(c *Converter) error {
	return c.Tilemap(j)
}
