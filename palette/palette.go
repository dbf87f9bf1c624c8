/*
Package palette maps the colours of extracted objects onto a hardware palette.

In 8-bit mode every object shares a single palette of up to 256 colours. In
4-bit mode the palette is split into banks of 16 colours; each object uses
exactly one bank, addressing its colours with a 4-bit index, and the first
colour of every bank is transparent. The resulting palette is always a
multiple of 16 colours in size and a global palette index is the bank number
multiplied by 16 plus the bank-local index.

Colours are compared using their 9-bit representation, so distinct source
colours that look identical on the hardware share a palette entry.
*/
package palette

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/bodgit/nextconvert/colour"
	"github.com/bodgit/nextconvert/object"
)

const (
	maxColours     = 256
	coloursPerBank = 16
)

var (
	// ErrObjectTooComplex is returned in 4-bit mode when a single object
	// has more colours than fit in a bank
	ErrObjectTooComplex = errors.New("palette: object has too many colours")

	// ErrPaletteOverflow is returned in 8-bit mode when the palette has
	// more than 256 colours
	ErrPaletteOverflow = errors.New("palette: too many colours")

	// ErrBankAssignment is returned when an object cannot be placed in
	// any bank, including a new empty one
	ErrBankAssignment = errors.New("palette: cannot assign object to a bank")

	// ErrObjectSpansBanks is returned when a custom 4-bit palette has no
	// single bank holding every colour of an object
	ErrObjectSpansBanks = errors.New("palette: object colours span more than one bank")

	// ErrEmptyPalette is returned when a custom palette has no colours
	ErrEmptyPalette = errors.New("palette: custom palette is empty")
)

// Image is an object with each pixel replaced by a palette index.
type Image struct {
	// Object is the source object
	Object *object.Object

	Width, Height int

	// Pix holds the palette indices in raster order. In 4-bit mode these
	// are relative to the bank
	Pix []uint8

	// Bank is the palette bank used in 4-bit mode, otherwise it is zero
	Bank int
}

func newImage(o *object.Object) *Image {
	return &Image{
		Object: o,
		Width:  o.Width,
		Height: o.Height,
		Pix:    make([]uint8, o.Width*o.Height),
	}
}

// Bounds returns the dimensions of the image.
func (m *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.Width, m.Height)
}

// ColorIndexAt returns the palette index of the pixel at (x, y).
func (m *Image) ColorIndexAt(x, y int) uint8 {
	return m.Pix[y*m.Width+x]
}

// SetColorIndex sets the palette index of the pixel at (x, y).
func (m *Image) SetColorIndex(x, y int, index uint8) {
	m.Pix[y*m.Width+x] = index
}

func (m *Image) remap(table []uint8) {
	for i, p := range m.Pix {
		m.Pix[i] = table[p]
	}
}

func (m *Image) String() string {
	return fmt.Sprintf("%v top-left pixel (%d,%d)", m.Object, m.Object.X*m.Width, m.Object.Y*m.Height)
}

// Result is the outcome of mapping a list of objects.
type Result struct {
	// Colours is the flat palette to export
	Colours colour.List

	// Images are in the same order as the objects they were mapped from
	Images []*Image

	// Banks is the number of 16 colour banks used in 4-bit mode
	Banks int
}

// BankOffset returns the bank used by the image at the given index.
func (r *Result) BankOffset(index int) (int, error) {
	if index < 0 || index >= len(r.Images) {
		return 0, fmt.Errorf("palette: no image with index %d", index)
	}
	return r.Images[index].Bank, nil
}

// Used returns the number of palette entries that are not padding.
func (r *Result) Used() int {
	n := 0
	for _, c := range r.Colours {
		if c.Used {
			n++
		}
	}
	return n
}

// Mapper builds a palette and indexed images from a list of objects.
type Mapper struct {
	// Transparent is the colour of transparent pixels
	Transparent color.NRGBA

	// FourBit selects 16 colour banks rather than a single 256 colour
	// palette
	FourBit bool

	// Custom is an optional fixed palette to map the colours onto
	// instead of building one
	Custom colour.List

	// Reduce enables median cut reduction of objects with too many
	// colours in 4-bit mode instead of failing
	Reduce bool
}

// Map maps the objects onto a palette.
func (m *Mapper) Map(objects []*object.Object) (*Result, error) {
	switch {
	case m.Custom != nil && m.FourBit:
		return m.mapCustom4Bit(objects)
	case m.Custom != nil:
		return m.mapCustom8Bit(objects)
	case m.FourBit:
		return m.pack4Bit(objects)
	}
	return m.build8Bit(objects)
}

// index maps every pixel of o to an entry in l, adding colours as needed
func (m *Mapper) index(o *object.Object, l *colour.List) *Image {
	img := newImage(o)
	for i, c := range o.Pix {
		img.Pix[i] = uint8(l.Add(colour.New(c, c == m.Transparent)))
	}
	return img
}
