package palette

import (
	"io"

	"github.com/bodgit/nextconvert/colour"
)

// EncodeOptions are optional arguments to Encode. The zero value writes 8-bit
// colours without a count.
type EncodeOptions struct {
	// Bits9 writes each colour as two bytes rather than one
	Bits9 bool

	// Count writes the number of colours as the first byte. A palette of
	// 256 colours will have a count of zero
	Count bool
}

type encoder struct {
	w io.Writer
}

func (e *encoder) encode(l colour.List, o *EncodeOptions) error {
	if o.Count {
		if _, err := e.w.Write([]byte{byte(len(l))}); err != nil {
			return err
		}
	}

	for _, c := range l {
		var b []byte
		if o.Bits9 {
			tmp := c.Bits9()
			b = tmp[:]
		} else {
			b = []byte{c.Bits8()}
		}
		if _, err := e.w.Write(b); err != nil {
			return err
		}
	}

	return nil
}

// Encode writes the palette l to w.
//
// o may be nil, which means to use the default configuration.
func Encode(w io.Writer, l colour.List, o *EncodeOptions) error {
	if o == nil {
		o = new(EncodeOptions)
	}

	e := encoder{w: w}

	return e.encode(l, o)
}
