/*
Package colour implements quantization of 32-bit colours to the native 8-bit
and 9-bit formats used by ZX Spectrum Next style palettes.

A 9-bit colour is stored as two bytes, RRRGGGBB followed by 0000000B. An 8-bit
colour is a single RRRGGGBB byte where blue has only two bits of precision.
Two colours are considered the same if their 9-bit representations are equal,
regardless of the bit depth that is eventually exported.
*/
package colour

import (
	"fmt"
	"image/color"
)

// Component quantizes the 8-bit component c to the given number of bits,
// rounding to the nearest value.
func Component(c uint8, bits uint) uint8 {
	max := uint(1)<<bits - 1
	return uint8((2*uint(c)*max + 255) / 510)
}

// Expand is the inverse of Component, scaling a quantized component back to
// the full 8-bit range.
func Expand(q uint8, bits uint) uint8 {
	max := uint(1)<<bits - 1
	return uint8((2*uint(q)*255 + max) / (2 * max))
}

// Bits9 returns the 9-bit native representation of c.
func Bits9(c color.NRGBA) [2]byte {
	r := Component(c.R, 3)
	g := Component(c.G, 3)
	b := Component(c.B, 3)
	return [2]byte{r<<5 | g<<2 | b>>1, b & 0x01}
}

// Bits8 returns the 8-bit native representation of c.
func Bits8(c color.NRGBA) byte {
	r := Component(c.R, 3)
	g := Component(c.G, 3)
	b := Component(c.B, 2)
	return r<<5 | g<<2 | b
}

// Colour is a palette entry.
type Colour struct {
	color.NRGBA

	// Transparent is set if the entry represents the transparent colour
	Transparent bool

	// Used is false for entries that only pad a bank to its full size
	Used bool
}

// New returns a used palette entry for c.
func New(c color.NRGBA, transparent bool) Colour {
	return Colour{
		NRGBA:       c,
		Transparent: transparent,
		Used:        true,
	}
}

// Filler returns an unused entry that pads a bank.
func Filler(c color.NRGBA) Colour {
	return Colour{NRGBA: c}
}

// Bits9 returns the 9-bit native representation of the entry.
func (c Colour) Bits9() [2]byte {
	return Bits9(c.NRGBA)
}

// Bits8 returns the 8-bit native representation of the entry.
func (c Colour) Bits8() byte {
	return Bits8(c.NRGBA)
}

// Same reports whether c and o quantize to the same 9-bit colour.
func (c Colour) Same(o Colour) bool {
	return c.Bits9() == o.Bits9()
}

func (c Colour) String() string {
	b := c.Bits9()
	s := fmt.Sprintf("0x%02X%02X", b[0], b[1])
	if c.Transparent {
		s += "T"
	}
	if !c.Used {
		s += "*"
	}
	return s
}

// List is an ordered list of palette entries.
type List []Colour

// Index returns the index of the first entry that is the same colour as c,
// or -1 if there is none.
func (l List) Index(c Colour) int {
	for i := range l {
		if l[i].Same(c) {
			return i
		}
	}
	return -1
}

// Add returns the index of the entry matching c, appending c if there is no
// such entry. A transparent c marks a matching entry as transparent.
func (l *List) Add(c Colour) int {
	if i := l.Index(c); i >= 0 {
		if c.Transparent {
			(*l)[i].Transparent = true
		}
		return i
	}
	*l = append(*l, c)
	return len(*l) - 1
}

// Copied from color.sqDiff
func sqDiff(x, y uint32) uint32 {
	d := x - y
	return (d * d) >> 2
}

// Closest returns the index of the entry nearest to c, comparing the 9-bit
// quantized components. It returns -1 for an empty list.
func (l List) Closest(c Colour) int {
	r1, g1, b1 := components(c)
	best, bestSum := -1, uint32(1<<32-1)
	for i := range l {
		r2, g2, b2 := components(l[i])
		if sum := sqDiff(r1, r2) + sqDiff(g1, g2) + sqDiff(b1, b2); sum < bestSum {
			best, bestSum = i, sum
		}
	}
	return best
}

func components(c Colour) (uint32, uint32, uint32) {
	return uint32(Component(c.R, 3)) << 8, uint32(Component(c.G, 3)) << 8, uint32(Component(c.B, 3)) << 8
}
