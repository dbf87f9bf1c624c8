package object

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"
)

// ErrBadBlockSize is returned when the object size is not positive.
var ErrBadBlockSize = errors.New("object: invalid object size")

// Policy decides which fully transparent objects are kept.
type Policy int

const (
	// KeepNone drops every transparent object
	KeepNone Policy = iota

	// KeepAll keeps every object
	KeepAll

	// KeepBoxed keeps transparent objects within the bounding box of the
	// opaque objects, except for a trailing run in the last row
	KeepBoxed
)

func (p Policy) String() string {
	switch p {
	case KeepNone:
		return "none"
	case KeepAll:
		return "all"
	case KeepBoxed:
		return "boxed"
	}
	return "unknown"
}

// ParsePolicy converts the name of a policy as returned by String back into
// a Policy.
func ParsePolicy(s string) (Policy, error) {
	for _, p := range []Policy{KeepNone, KeepAll, KeepBoxed} {
		if strings.EqualFold(s, p.String()) {
			return p, nil
		}
	}
	return KeepNone, fmt.Errorf("object: unknown transparency policy %q", s)
}

// Extractor splits a raster into objects.
type Extractor struct {
	Width, Height int

	// Transparent is the colour of transparent pixels
	Transparent color.NRGBA

	Keep Policy

	// MergeDuplicates removes any object that is a copy, mirror or
	// rotation of an earlier object
	MergeDuplicates bool
}

// Extract returns the objects found in m. Partial blocks at the right and
// bottom edges are ignored.
func (e *Extractor) Extract(m image.Image) ([]*Object, error) {
	if e.Width <= 0 || e.Height <= 0 {
		return nil, ErrBadBlockSize
	}

	objects := e.split(m)

	objects = e.retain(objects)
	if e.MergeDuplicates {
		objects = removeCopies(objects)
	}

	return objects, nil
}

func (e *Extractor) split(m image.Image) []*Object {
	b := m.Bounds()
	columns, rows := b.Dx()/e.Width, b.Dy()/e.Height

	objects := make([]*Object, 0, columns*rows)
	for by := 0; by < rows; by++ {
		for bx := 0; bx < columns; bx++ {
			o := New(e.Width, e.Height, bx, by)
			for y := 0; y < e.Height; y++ {
				for x := 0; x < e.Width; x++ {
					c := color.NRGBAModel.Convert(m.At(b.Min.X+bx*e.Width+x, b.Min.Y+by*e.Height+y)).(color.NRGBA)
					o.Set(x, y, c)
				}
			}
			o.Transparent = o.isTransparent(e.Transparent)
			objects = append(objects, o)
		}
	}

	return objects
}

func (e *Extractor) retain(objects []*Object) []*Object {
	switch e.Keep {
	case KeepAll:
		return objects
	case KeepBoxed:
		return retainBoxed(objects)
	}

	kept := objects[:0]
	for _, o := range objects {
		if !o.Transparent {
			kept = append(kept, o)
		}
	}
	return kept
}

func retainBoxed(objects []*Object) []*Object {
	var maxX, maxY int
	for _, o := range objects {
		if o.Transparent {
			continue
		}
		if o.X > maxX {
			maxX = o.X
		}
		if o.Y > maxY {
			maxY = o.Y
		}
	}

	kept := objects[:0]
	for _, o := range objects {
		if !o.Transparent || (o.X <= maxX && o.Y <= maxY) {
			kept = append(kept, o)
		}
	}

	// Objects are in raster order so the tail of the list is the last
	// row; trim its transparent tail
	for len(kept) > 0 {
		o := kept[len(kept)-1]
		if o.Y < maxY || !o.Transparent {
			break
		}
		kept = kept[:len(kept)-1]
	}

	return kept
}

func removeCopies(objects []*Object) []*Object {
	for i := 0; i < len(objects); i++ {
		for k := i + 1; k < len(objects); k++ {
			if objects[k].Transparent {
				continue
			}
			if Classify(objects[k], objects[i]) != TransformNone {
				objects = append(objects[:k], objects[k+1:]...)
				k--
			}
		}
	}
	return objects
}
