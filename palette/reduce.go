package palette

import (
	"image"
	"image/color"

	"github.com/bodgit/nextconvert/object"
	"github.com/ericpauley/go-quantize/quantize"
)

// Reduce returns a copy of o with its opaque pixels reduced to at most n
// colours using median cut quantization. Transparent pixels are left alone.
func Reduce(o *object.Object, transparent color.NRGBA, n int) *object.Object {
	m := image.NewNRGBA(image.Rect(0, 0, o.Width, o.Height))
	for y := 0; y < o.Height; y++ {
		for x := 0; x < o.Width; x++ {
			m.SetNRGBA(x, y, o.At(x, y))
		}
	}

	q := quantize.MedianCutQuantizer{
		Weighting: func(_ image.Image, x, y int) uint32 {
			if m.NRGBAAt(x, y) == transparent {
				return 0
			}
			return 1
		},
	}
	p := q.Quantize(make(color.Palette, 0, n), m)

	r := object.New(o.Width, o.Height, o.X, o.Y)
	r.Transparent = o.Transparent
	for i, c := range o.Pix {
		if c == transparent || len(p) == 0 {
			r.Pix[i] = c
			continue
		}
		r.Pix[i] = color.NRGBAModel.Convert(p.Convert(c)).(color.NRGBA)
	}

	return r
}
