package palette

import (
	"fmt"

	"github.com/bodgit/nextconvert/object"
)

func (m *Mapper) build8Bit(objects []*object.Object) (*Result, error) {
	r := new(Result)
	for _, o := range objects {
		r.Images = append(r.Images, m.index(o, &r.Colours))
	}

	if len(r.Colours) > maxColours {
		return nil, fmt.Errorf("%w: found %d, only %d allowed", ErrPaletteOverflow, len(r.Colours), maxColours)
	}

	return r, nil
}
