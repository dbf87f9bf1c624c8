package tilemap

import (
	"encoding/binary"
	"io"
)

const (
	// Rows with at least this many used tiles are written raw
	rawThreshold = 26

	rawRow = 0x80

	attrRotate = 1 << 1
	attrFlipY  = 1 << 2
	attrFlipX  = 1 << 3
	attrBank   = 4
)

// Definitions provides the palette bank used by each tile definition.
// *palette.Result satisfies it.
type Definitions interface {
	BankOffset(index int) (int, error)
}

// EncodeOptions are optional arguments to Encode. The zero value writes
// every tile as a single index byte.
type EncodeOptions struct {
	// TransparentIndex is the index of the empty tile, used to skip tiles
	// in optimized output
	TransparentIndex int

	// Attributes writes an attribute byte after each tile index
	Attributes bool

	// Optimized writes only the rows and tiles that are used
	Optimized bool

	// Definitions, if set, supplies the palette bank offset of each
	// tile for the attribute byte. Offsets above 15 do not fit and
	// overflow
	Definitions Definitions
}

type encoder struct {
	w io.Writer
	o *EncodeOptions

	buf []byte
}

func (e *encoder) attributes(t Tile) (byte, error) {
	var b byte
	if e.o.Definitions != nil {
		offset, err := e.o.Definitions.BankOffset(t.Index)
		if err != nil {
			return 0, err
		}
		b |= byte(offset << attrBank)
	}
	if t.Rotate {
		b |= attrRotate
	}
	if t.FlipY {
		b |= attrFlipY
	}
	if t.FlipX {
		b |= attrFlipX
	}
	return b, nil
}

func (e *encoder) tile(t Tile) error {
	e.buf = append(e.buf, byte(t.Index))
	if e.o.Attributes {
		b, err := e.attributes(t)
		if err != nil {
			return err
		}
		e.buf = append(e.buf, b)
	}
	return nil
}

func (e *encoder) flush() error {
	_, err := e.w.Write(e.buf)
	e.buf = e.buf[:0]
	return err
}

func (e *encoder) encodeRaw(m *Map) error {
	for y := 0; y < m.Height; y++ {
		for _, t := range m.Row(y) {
			if err := e.tile(t); err != nil {
				return err
			}
		}
		if err := e.flush(); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) encodeOptimized(m *Map) error {
	for y := 0; y < m.Height; y++ {
		row := m.Row(y)

		var used []Tile
		for _, t := range row {
			if t.Index != e.o.TransparentIndex {
				used = append(used, t)
			}
		}
		if len(used) == 0 {
			continue
		}

		e.buf = binary.LittleEndian.AppendUint16(e.buf, uint16(y))

		if len(used) < rawThreshold {
			e.buf = append(e.buf, byte(len(used)))
			for _, t := range used {
				e.buf = append(e.buf, byte(t.X))
				if err := e.tile(t); err != nil {
					return err
				}
			}
		} else {
			e.buf = append(e.buf, rawRow|byte(len(row)))
			for _, t := range row {
				if err := e.tile(t); err != nil {
					return err
				}
			}
		}

		if err := e.flush(); err != nil {
			return err
		}
	}
	return nil
}

// Encode writes the tilemap m to w. Tile indices are truncated to a byte.
//
// o may be nil, which means to use the default configuration.
func Encode(w io.Writer, m *Map, o *EncodeOptions) error {
	if o == nil {
		o = new(EncodeOptions)
	}

	e := encoder{w: w, o: o}

	if o.Optimized {
		return e.encodeOptimized(m)
	}
	return e.encodeRaw(m)
}
