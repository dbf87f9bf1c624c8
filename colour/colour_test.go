package colour

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponent(t *testing.T) {
	tables := []struct {
		c    uint8
		bits uint
		want uint8
	}{
		{0, 3, 0},
		{255, 3, 7},
		{36, 3, 1},
		{37, 3, 1},
		{18, 3, 0},
		{19, 3, 1},
		{128, 3, 4},
		{255, 2, 3},
		{42, 2, 0},
		{43, 2, 1},
		{170, 2, 2},
	}

	for _, table := range tables {
		assert.Equal(t, table.want, Component(table.c, table.bits), "component %d at %d bits", table.c, table.bits)
	}
}

func TestQuantizeIdempotent(t *testing.T) {
	for _, bits := range []uint{2, 3} {
		for c := 0; c < 256; c++ {
			q := Component(uint8(c), bits)
			assert.Equal(t, q, Component(Expand(q, bits), bits), "component %d at %d bits", c, bits)
		}
	}
}

func TestBits(t *testing.T) {
	tables := []struct {
		c     color.NRGBA
		bits9 [2]byte
		bits8 byte
	}{
		{color.NRGBA{0, 0, 0, 0xff}, [2]byte{0x00, 0x00}, 0x00},
		{color.NRGBA{0xff, 0xff, 0xff, 0xff}, [2]byte{0xff, 0x01}, 0xff},
		{color.NRGBA{0xff, 0, 0xff, 0xff}, [2]byte{0xe3, 0x01}, 0xe3},
		{color.NRGBA{0, 0xff, 0, 0xff}, [2]byte{0x1c, 0x00}, 0x1c},
		{color.NRGBA{0, 0, 0x24, 0xff}, [2]byte{0x00, 0x01}, 0x00},
		{color.NRGBA{0, 0, 0x49, 0xff}, [2]byte{0x01, 0x00}, 0x01},
	}

	for _, table := range tables {
		assert.Equal(t, table.bits9, Bits9(table.c), "9-bit %v", table.c)
		assert.Equal(t, table.bits8, Bits8(table.c), "8-bit %v", table.c)
	}
}

func TestSame(t *testing.T) {
	a := New(color.NRGBA{0xff, 0, 0xff, 0xff}, false)
	b := New(color.NRGBA{0xfa, 0x02, 0xf9, 0x00}, false)
	c := New(color.NRGBA{0xff, 0, 0xd0, 0xff}, false)

	assert.True(t, a.Same(b))
	assert.False(t, a.Same(c))
}

func TestListAdd(t *testing.T) {
	var l List

	red := color.NRGBA{0xff, 0, 0, 0xff}
	nearRed := color.NRGBA{0xfe, 0x01, 0x02, 0xff}
	blue := color.NRGBA{0, 0, 0xff, 0xff}

	assert.Equal(t, 0, l.Add(New(red, false)))
	assert.Equal(t, 1, l.Add(New(blue, false)))
	assert.Equal(t, 0, l.Add(New(nearRed, false)))
	assert.Len(t, l, 2)
	assert.False(t, l[0].Transparent)

	assert.Equal(t, 0, l.Add(New(nearRed, true)))
	assert.True(t, l[0].Transparent)
	assert.Equal(t, red, l[0].NRGBA)

	assert.Equal(t, -1, l.Index(New(color.NRGBA{0, 0xff, 0, 0xff}, false)))
}

func TestListClosest(t *testing.T) {
	l := List{
		New(color.NRGBA{0, 0, 0, 0xff}, false),
		New(color.NRGBA{0xff, 0, 0, 0xff}, false),
		New(color.NRGBA{0, 0, 0xff, 0xff}, false),
	}

	assert.Equal(t, 1, l.Closest(New(color.NRGBA{0xc0, 0x20, 0x10, 0xff}, false)))
	assert.Equal(t, 2, l.Closest(New(color.NRGBA{0x10, 0x20, 0xc0, 0xff}, false)))
	assert.Equal(t, -1, List{}.Closest(l[0]))
}

func TestString(t *testing.T) {
	assert.Equal(t, "0xE301T", New(color.NRGBA{0xff, 0, 0xff, 0xff}, true).String())
	assert.Equal(t, "0x0000*", Filler(color.NRGBA{}).String())
}

func TestParse(t *testing.T) {
	tables := []struct {
		s    string
		want color.NRGBA
	}{
		{"255,0,255", color.NRGBA{0xff, 0, 0xff, 0xff}},
		{"0, 1, 2, 3", color.NRGBA{A: 0, R: 1, G: 2, B: 3}},
		{"#F0F", color.NRGBA{0xf0, 0, 0xf0, 0xff}},
		{"#8F0F", color.NRGBA{A: 0x80, R: 0xf0, G: 0, B: 0xf0}},
		{"#E300E3", color.NRGBA{0xe3, 0, 0xe3, 0xff}},
		{"#00112233", color.NRGBA{A: 0, R: 0x11, G: 0x22, B: 0x33}},
	}

	for _, table := range tables {
		c, err := Parse(table.s)
		require.NoError(t, err, table.s)
		assert.Equal(t, table.want, c, table.s)
	}

	for _, s := range []string{"", "#12", "#GGGGGG", "1,2", "1,2,3,4,5", "256,0,0", "red"} {
		_, err := Parse(s)
		assert.ErrorIs(t, err, ErrBadColour, s)
	}
}
