package colour

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ErrBadColour is returned when a colour string cannot be parsed.
var ErrBadColour = errors.New("colour: invalid colour, use one of R,G,B, A,R,G,B, #RGB, #ARGB, #RRGGBB or #AARRGGBB")

func hexComponents(s string, digits int) ([]uint8, error) {
	var c []uint8
	for i := 0; i < len(s); i += digits {
		v, err := strconv.ParseUint(s[i:i+digits], 16, 8)
		if err != nil {
			return nil, ErrBadColour
		}
		if digits == 1 {
			// Single digits are scaled by 16, so #F becomes 0xF0
			v <<= 4
		}
		c = append(c, uint8(v))
	}
	return c, nil
}

func decimalComponents(s string) ([]uint8, error) {
	var c []uint8
	for _, f := range strings.Split(s, ",") {
		v, err := strconv.ParseUint(strings.TrimSpace(f), 10, 8)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrBadColour, s)
		}
		c = append(c, uint8(v))
	}
	return c, nil
}

// Parse converts a colour string into a colour. Components without an alpha
// value are fully opaque.
func Parse(s string) (color.NRGBA, error) {
	var (
		c   []uint8
		err error
	)

	if strings.HasPrefix(s, "#") {
		s = s[1:]
		switch len(s) {
		case 3, 4:
			c, err = hexComponents(s, 1)
		case 6, 8:
			c, err = hexComponents(s, 2)
		default:
			err = ErrBadColour
		}
	} else {
		c, err = decimalComponents(s)
	}
	if err != nil {
		return color.NRGBA{}, err
	}

	switch len(c) {
	case 3:
		return color.NRGBA{R: c[0], G: c[1], B: c[2], A: 0xff}, nil
	case 4:
		return color.NRGBA{A: c[0], R: c[1], G: c[2], B: c[3]}, nil
	}

	return color.NRGBA{}, ErrBadColour
}
