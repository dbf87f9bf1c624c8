package palette

import (
	"fmt"
	"image/color"
	"io"

	"github.com/bodgit/nextconvert/colour"
	"github.com/bodgit/nextconvert/object"
)

// ReadCustom reads a palette of 3 byte RGB entries from r. The first entry
// matching the transparent colour is marked as transparent. Entries are kept
// in file order, including any repeats.
func ReadCustom(r io.Reader, transparent color.NRGBA) (colour.List, error) {
	var (
		l   colour.List
		tmp [3]byte
		set bool
	)
	for {
		if _, err := io.ReadFull(r, tmp[:]); err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}

		c := color.NRGBA{tmp[0], tmp[1], tmp[2], 0xff}
		t := !set && c == transparent
		if t {
			set = true
		}
		l = append(l, colour.New(c, t))
	}

	if len(l) == 0 {
		return nil, ErrEmptyPalette
	}

	return l, nil
}

func (m *Mapper) mapCustom8Bit(objects []*object.Object) (*Result, error) {
	if len(m.Custom) == 0 {
		return nil, ErrEmptyPalette
	}
	if len(m.Custom) > maxColours {
		return nil, fmt.Errorf("%w: custom palette has %d, only %d allowed", ErrPaletteOverflow, len(m.Custom), maxColours)
	}

	r := &Result{
		Colours: append(colour.List(nil), m.Custom...),
	}
	for _, o := range objects {
		img := newImage(o)
		for i, p := range o.Pix {
			c := colour.New(p, false)
			j := r.Colours.Index(c)
			if j < 0 {
				j = r.Colours.Closest(c)
			}
			img.Pix[i] = uint8(j)
		}
		r.Images = append(r.Images, img)
	}

	return r, nil
}

// banks returns the banks used by the globally indexed image in the order
// they are first seen.
func (m *Image) banks() []int {
	var banks []int
	seen := make(map[int]bool)
	for _, p := range m.Pix {
		b := int(p) / coloursPerBank
		if !seen[b] {
			seen[b] = true
			banks = append(banks, b)
		}
	}
	return banks
}

// remapInto moves every pixel of the globally indexed image into bank b,
// returning false if the bank does not hold all of its colours.
func (m *Image) remapInto(l colour.List, b int) bool {
	start := b * coloursPerBank
	table := make(map[uint8]uint8)
	for _, p := range m.Pix {
		if _, ok := table[p]; ok {
			continue
		}
		found := false
		for i := 0; i < coloursPerBank && start+i < len(l); i++ {
			c := l[start+i]
			if (l[p].Transparent && c.Transparent) || l[p].Same(c) {
				table[p] = uint8(i)
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	for i, p := range m.Pix {
		m.Pix[i] = table[p]
	}
	m.Bank = b

	return true
}

func (m *Mapper) mapCustom4Bit(objects []*object.Object) (*Result, error) {
	r, err := m.mapCustom8Bit(objects)
	if err != nil {
		return nil, err
	}

	// Every bank must have its transparent colour at the same local index.
	// The custom palette is exported verbatim so the last bank may be short.
	for i, c := range r.Colours {
		if !c.Transparent {
			continue
		}
		for j := i % coloursPerBank; j < len(r.Colours); j += coloursPerBank {
			r.Colours[j].Transparent = true
		}
		break
	}

	for _, img := range r.Images {
		banks := img.banks()
		if len(banks) == 1 {
			for i, p := range img.Pix {
				img.Pix[i] = p & 0x0f
			}
			img.Bank = banks[0]
			continue
		}

		found := false
		for _, b := range banks {
			if img.remapInto(r.Colours, b) {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %v", ErrObjectSpansBanks, img)
		}
	}

	r.Banks = (len(r.Colours) + coloursPerBank - 1) / coloursPerBank

	return r, nil
}
