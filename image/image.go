/*
Package image implements an encoder for indexed pixel data.

Pixels are written row-major with no header. In 8-bit mode each pixel is a
single byte holding its palette index. In 4-bit mode two horizontally
adjacent pixels share a byte, the left pixel in the upper nibble, so every
image must have an even width. Multiple images are written back to back in
the order given.
*/
package image

import (
	"errors"
	"image"
)

// ErrOddWidth is returned in 4-bit mode when an image has an odd width
var ErrOddWidth = errors.New("image: 4-bit image width must be even")

// Indexed is an image whose pixels are palette indices. *palette.Image and
// *image.Paletted both satisfy it.
type Indexed interface {
	Bounds() image.Rectangle
	ColorIndexAt(x, y int) uint8
}
