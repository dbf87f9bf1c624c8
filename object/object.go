/*
Package object slices a source raster into fixed-size objects, such as 16 by
16 sprites or 8 by 8 tiles, and removes transparent objects and geometric
copies.

Objects are always returned in left-to-right, top-to-bottom order of the
source raster.
*/
package object

import (
	"fmt"
	"image/color"
)

// Object is a block of pixels cut from the source raster.
type Object struct {
	Width, Height int

	// X and Y are the position of the object in the source raster,
	// measured in blocks rather than pixels
	X, Y int

	// Transparent is set if every pixel is the transparent colour
	Transparent bool

	Pix []color.NRGBA
}

// New returns an empty object of the given size at block position (x, y).
func New(width, height, x, y int) *Object {
	return &Object{
		Width:  width,
		Height: height,
		X:      x,
		Y:      y,
		Pix:    make([]color.NRGBA, width*height),
	}
}

// At returns the pixel at (x, y).
func (o *Object) At(x, y int) color.NRGBA {
	return o.Pix[y*o.Width+x]
}

// Set sets the pixel at (x, y).
func (o *Object) Set(x, y int, c color.NRGBA) {
	o.Pix[y*o.Width+x] = c
}

func (o *Object) isTransparent(transparent color.NRGBA) bool {
	for _, c := range o.Pix {
		if c != transparent {
			return false
		}
	}
	return true
}

func (o *Object) String() string {
	s := fmt.Sprintf("(%d,%d)", o.X, o.Y)
	if o.Transparent {
		s += "T"
	}
	return s
}
