package image

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/bodgit/nextconvert/colour"
	"github.com/bodgit/nextconvert/object"
	"github.com/bodgit/nextconvert/palette"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type errWriter struct{}

func (errWriter) Write([]byte) (int, error) {
	return 0, errors.New("write failed")
}

func paletted(r image.Rectangle, pix ...uint8) *image.Paletted {
	m := image.NewPaletted(r, make(color.Palette, 256))
	copy(m.Pix, pix)
	return m
}

func TestEncode8Bit(t *testing.T) {
	images := []Indexed{
		paletted(image.Rect(0, 0, 2, 2), 0, 1, 2, 3),
		paletted(image.Rect(0, 0, 3, 1), 255, 16, 7),
	}

	b := new(bytes.Buffer)
	require.NoError(t, Encode(b, images, false))
	assert.Equal(t, []byte{0, 1, 2, 3, 255, 16, 7}, b.Bytes())
}

func TestEncode4Bit(t *testing.T) {
	images := []Indexed{
		paletted(image.Rect(0, 0, 4, 2), 1, 2, 3, 4, 0xf, 0, 0x1a, 0x2b),
	}

	b := new(bytes.Buffer)
	require.NoError(t, Encode(b, images, true))
	// Only the right-hand pixel is masked to 4 bits
	assert.Equal(t, []byte{0x12, 0x34, 0xf0, 0xab}, b.Bytes())
}

func TestEncodeOffsetBounds(t *testing.T) {
	m := paletted(image.Rect(2, 3, 4, 4), 5, 6)

	b := new(bytes.Buffer)
	require.NoError(t, Encode(b, []Indexed{m}, true))
	assert.Equal(t, []byte{0x56}, b.Bytes())
}

func TestEncodeOddWidth(t *testing.T) {
	images := []Indexed{
		paletted(image.Rect(0, 0, 2, 1), 1, 2),
		paletted(image.Rect(0, 0, 3, 1), 1, 2, 3),
	}

	b := new(bytes.Buffer)
	assert.ErrorIs(t, Encode(b, images, true), ErrOddWidth)
	assert.Zero(t, b.Len())

	require.NoError(t, Encode(b, images, false))
	assert.Equal(t, 5, b.Len())
}

func TestEncodePaletteImages(t *testing.T) {
	transparent := color.NRGBA{0xff, 0, 0xff, 0xff}

	raster := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	for i := 0; i < 8; i++ {
		raster.SetNRGBA(i%4, i/4, color.NRGBA{colour.Expand(uint8(i), 3), 0, 0, 0xff})
	}
	raster.SetNRGBA(0, 0, transparent)

	e := object.Extractor{Width: 4, Height: 2, Transparent: transparent, Keep: object.KeepAll}
	objects, err := e.Extract(raster)
	require.NoError(t, err)

	m := palette.Mapper{Transparent: transparent, FourBit: true}
	r, err := m.Map(objects)
	require.NoError(t, err)

	images := make([]Indexed, 0, len(r.Images))
	for _, img := range r.Images {
		images = append(images, img)
	}

	b := new(bytes.Buffer)
	require.NoError(t, Encode(b, images, true))
	assert.Equal(t, []byte{0x01, 0x23, 0x45, 0x67}, b.Bytes())
}

func TestEncodeWriteError(t *testing.T) {
	images := []Indexed{paletted(image.Rect(0, 0, 2, 1), 1, 2)}
	assert.Error(t, Encode(errWriter{}, images, false))
	assert.Error(t, Encode(errWriter{}, images, true))
}
