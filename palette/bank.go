package palette

import (
	"fmt"
	"image/color"

	"github.com/bodgit/nextconvert/colour"
	"github.com/bodgit/nextconvert/object"
)

// bank is a palette bank of up to coloursPerBank colours. The first colour
// is always transparent once an image has been added.
type bank struct {
	colours colour.List
	images  []*Image
}

// cost returns the number of colours that adding an image with the given
// colours would append, and whether the result still fits in the bank.
func (b *bank) cost(local colour.List) (int, bool) {
	n, transparent := 0, false
	for _, c := range local {
		i := b.colours.Index(c)
		if c.Transparent {
			transparent = true
			// Transparent colours must share the transparent slot
			if len(b.colours) > 0 && i > 0 {
				return 0, false
			}
		}
		if i < 0 {
			n++
		}
	}

	total := len(b.colours) + n
	if len(b.colours) == 0 && !transparent {
		// A transparent colour will be inserted
		total++
	}

	return n, total <= coloursPerBank
}

// add merges the colours of img into the bank and remaps img to use the
// bank-local indices. Callers must check the image fits with cost first.
func (b *bank) add(img *Image, local colour.List, transparent color.NRGBA) {
	empty := len(b.colours) == 0

	table := make([]uint8, len(local))
	t := -1
	for i, c := range local {
		j := b.colours.Add(c)
		if c.Transparent {
			t = j
		}
		table[i] = uint8(j)
	}
	img.remap(table)
	b.images = append(b.images, img)

	switch {
	case t < 0 && empty:
		b.insertTransparent(transparent)
	case t > 0:
		b.moveToFront(t)
	}
}

func (b *bank) insertTransparent(transparent color.NRGBA) {
	table := make([]uint8, len(b.colours))
	for i := range table {
		table[i] = uint8(i + 1)
	}
	b.colours = append(colour.List{colour.New(transparent, true)}, b.colours...)
	b.remap(table)
}

func (b *bank) moveToFront(t int) {
	table := make([]uint8, len(b.colours))
	for i := range table {
		switch {
		case i < t:
			table[i] = uint8(i + 1)
		case i > t:
			table[i] = uint8(i)
		}
	}

	c := b.colours[t]
	copy(b.colours[1:t+1], b.colours[:t])
	b.colours[0] = c

	b.remap(table)
}

func (b *bank) remap(table []uint8) {
	for _, img := range b.images {
		img.remap(table)
	}
}

// pad returns the bank colours padded to a full bank.
func (b *bank) pad(transparent color.NRGBA) colour.List {
	l := append(colour.List(nil), b.colours...)
	for len(l) < coloursPerBank {
		l = append(l, colour.Filler(transparent))
	}
	return l
}

type packEntry struct {
	image   *Image
	colours colour.List
}

func (m *Mapper) localColours(o *object.Object) (*packEntry, error) {
	var local colour.List
	img := m.index(o, &local)
	if len(local) > coloursPerBank && m.Reduce {
		local = nil
		img = m.index(Reduce(o, m.Transparent, coloursPerBank-1), &local)
		img.Object = o
	}
	if len(local) > coloursPerBank {
		return nil, fmt.Errorf("%w: found %d on %v, only %d allowed", ErrObjectTooComplex, len(local), img, coloursPerBank)
	}
	return &packEntry{image: img, colours: local}, nil
}

func (m *Mapper) pack4Bit(objects []*object.Object) (*Result, error) {
	entries := make([]*packEntry, 0, len(objects))
	for _, o := range objects {
		e, err := m.localColours(o)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	var banks []*bank
	for _, e := range entries {
		// Pick the bank needing fewest new colours, the earliest wins
		best, bestCost := -1, 0
		for i, b := range banks {
			n, ok := b.cost(e.colours)
			if !ok {
				continue
			}
			if best < 0 || n < bestCost {
				best, bestCost = i, n
			}
			if n == 0 {
				break
			}
		}

		if best < 0 {
			b := new(bank)
			if _, ok := b.cost(e.colours); !ok {
				return nil, fmt.Errorf("%w: %v", ErrBankAssignment, e.image)
			}
			banks = append(banks, b)
			best = len(banks) - 1
		}

		banks[best].add(e.image, e.colours, m.Transparent)
		e.image.Bank = best
	}

	r := &Result{
		Images: make([]*Image, 0, len(entries)),
		Banks:  len(banks),
	}
	for _, e := range entries {
		r.Images = append(r.Images, e.image)
	}
	for _, b := range banks {
		r.Colours = append(r.Colours, b.pad(m.Transparent)...)
	}

	return r, nil
}
