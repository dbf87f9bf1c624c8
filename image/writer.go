package image

import (
	"fmt"
	"io"
)

type encoder struct {
	w io.Writer
}

func (e *encoder) encode8(m Indexed) error {
	b := m.Bounds()
	row := make([]byte, 0, b.Dx())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row = row[:0]
		for x := b.Min.X; x < b.Max.X; x++ {
			row = append(row, m.ColorIndexAt(x, y))
		}
		if _, err := e.w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) encode4(m Indexed) error {
	b := m.Bounds()
	if b.Dx()%2 != 0 {
		return fmt.Errorf("%w: got %d", ErrOddWidth, b.Dx())
	}

	row := make([]byte, 0, b.Dx()>>1)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row = row[:0]
		for x := b.Min.X; x < b.Max.X; x += 2 {
			// This is masking off any bits leaving a 0-15 value
			row = append(row, m.ColorIndexAt(x, y)<<4|m.ColorIndexAt(x+1, y)&0x0f)
		}
		if _, err := e.w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Encode writes the pixels of every image in images to w, either at 8 or 4
// bits per pixel. Nothing is written if any image is not suitable.
func Encode(w io.Writer, images []Indexed, fourBit bool) error {
	if fourBit {
		for _, m := range images {
			if m.Bounds().Dx()%2 != 0 {
				return fmt.Errorf("%w: got %d", ErrOddWidth, m.Bounds().Dx())
			}
		}
	}

	e := encoder{w: w}

	for _, m := range images {
		var err error
		if fourBit {
			err = e.encode4(m)
		} else {
			err = e.encode8(m)
		}
		if err != nil {
			return err
		}
	}

	return nil
}
