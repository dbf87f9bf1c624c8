package nextconvert

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bodgit/nextconvert/colour"
	"github.com/bodgit/nextconvert/object"
	"github.com/bodgit/nextconvert/tilemap"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red   = color.NRGBA{0xff, 0x00, 0x00, 0xff}
	green = color.NRGBA{0x00, 0xff, 0x00, 0xff}
)

func distinct(k int) color.NRGBA {
	return color.NRGBA{colour.Expand(uint8(k%8), 3), colour.Expand(uint8(k/8%8), 3), 0, 0xff}
}

func writePNG(t *testing.T, file string, m image.Image) string {
	f, err := os.Create(file)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, m))
	return file
}

func readFile(t *testing.T, file string) []byte {
	b, err := os.ReadFile(file)
	require.NoError(t, err)
	return b
}

// sprites returns two 2x2 sprites side by side
func sprites(t *testing.T, dir string) string {
	m := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	m.SetNRGBA(0, 0, red)
	m.SetNRGBA(1, 0, DefaultTransparent)
	m.SetNRGBA(0, 1, red)
	m.SetNRGBA(1, 1, red)
	m.SetNRGBA(2, 0, green)
	m.SetNRGBA(3, 0, green)
	m.SetNRGBA(2, 1, green)
	m.SetNRGBA(3, 1, red)
	return writePNG(t, filepath.Join(dir, "sprites.png"), m)
}

// tiles returns two 8x8 tiles with 15 colours each so they need a bank each
func tiles(t *testing.T, dir string) string {
	m := image.NewNRGBA(image.Rect(0, 0, 16, 8))
	for i := 0; i < 64; i++ {
		m.SetNRGBA(i%8, i/8, distinct(i%15))
		m.SetNRGBA(8+i%8, i/8, distinct(15+i%15))
	}
	return writePNG(t, filepath.Join(dir, "tiles.png"), m)
}

func newConverter(t *testing.T, cache string) (*Converter, *bytes.Buffer) {
	b := new(bytes.Buffer)
	c, err := New(cache, log.New(b, "", 0))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, c.Close())
	})
	return c, b
}

func TestSprites8Bit(t *testing.T) {
	dir := t.TempDir()
	c, _ := newConverter(t, "")

	o := DefaultOptions()
	o.ExportPaletteCount = true

	job := &SpritesJob{
		Options:       o,
		Input:         sprites(t, dir),
		OutputSprites: filepath.Join(dir, "out.spr"),
		OutputPalette: filepath.Join(dir, "out.pal"),
		Size:          2,
	}
	require.NoError(t, c.Sprites(job))

	assert.Equal(t, []byte{0, 1, 0, 0, 2, 2, 2, 0}, readFile(t, job.OutputSprites))
	assert.Equal(t, []byte{3, 0xe0, 0xe3, 0x1c}, readFile(t, job.OutputPalette))
}

func TestSprites4Bit(t *testing.T) {
	dir := t.TempDir()
	c, _ := newConverter(t, "")

	o := DefaultOptions()
	o.Palette9Bit = true

	job := &SpritesJob{
		Options:       o,
		Input:         sprites(t, dir),
		OutputSprites: filepath.Join(dir, "out.spr"),
		OutputPalette: filepath.Join(dir, "out.pal"),
		FourBit:       true,
		Size:          2,
	}
	require.NoError(t, c.Sprites(job))

	assert.Equal(t, []byte{0x10, 0x11, 0x22, 0x21}, readFile(t, job.OutputSprites))

	want := []byte{0xe3, 0x01, 0xe0, 0x00, 0x1c, 0x00}
	want = append(want, bytes.Repeat([]byte{0xe3, 0x01}, 13)...)
	assert.Equal(t, want, readFile(t, job.OutputPalette))
}

func TestSpritesCustomPalette(t *testing.T) {
	dir := t.TempDir()
	c, _ := newConverter(t, "")

	pal := filepath.Join(dir, "custom.pal")
	require.NoError(t, os.WriteFile(pal, []byte{
		0x00, 0xff, 0x00,
		0xff, 0x00, 0xff,
		0xf0, 0x00, 0x00,
	}, 0666))

	job := &SpritesJob{
		Options:       DefaultOptions(),
		Input:         sprites(t, dir),
		InputPalette:  pal,
		OutputSprites: filepath.Join(dir, "out.spr"),
		OutputPalette: filepath.Join(dir, "out.pal"),
		Size:          2,
	}
	require.NoError(t, c.Sprites(job))

	assert.Equal(t, []byte{2, 1, 2, 2, 0, 0, 0, 2}, readFile(t, job.OutputSprites))
	assert.Equal(t, []byte{0x1c, 0xe3, 0xe0}, readFile(t, job.OutputPalette))
}

func TestTiles(t *testing.T) {
	dir := t.TempDir()
	c, _ := newConverter(t, "")

	job := &TilesJob{
		Options:       DefaultOptions(),
		Input:         tiles(t, dir),
		OutputTiles:   filepath.Join(dir, "out.til"),
		OutputPalette: filepath.Join(dir, "out.pal"),
	}
	require.NoError(t, c.Tiles(job))

	assert.Len(t, readFile(t, job.OutputTiles), 2*8*4)
	assert.Len(t, readFile(t, job.OutputPalette), 32)
}

func TestTilemap(t *testing.T) {
	dir := t.TempDir()
	c, _ := newConverter(t, "")

	in := filepath.Join(dir, "level.txt")
	require.NoError(t, os.WriteFile(in, []byte("0,1\n1,0\n"), 0666))

	job := &TilemapJob{
		Options:       DefaultOptions(),
		InputTilemap:  in,
		InputTiles:    tiles(t, dir),
		OutputTilemap: filepath.Join(dir, "out.map"),
		OutputTiles:   filepath.Join(dir, "out.til"),
		OutputPalette: filepath.Join(dir, "out.pal"),
	}
	require.NoError(t, c.Tilemap(job))

	assert.Equal(t, []byte{0, 0x00, 1, 0x10, 1, 0x10, 0, 0x00}, readFile(t, job.OutputTilemap))
	assert.Len(t, readFile(t, job.OutputTiles), 2*8*4)
	assert.Len(t, readFile(t, job.OutputPalette), 32)

	job.Optimized = true
	require.NoError(t, c.Tilemap(job))
	assert.Equal(t, []byte{
		0, 0, 1, 1, 1, 0x10,
		1, 0, 1, 0, 1, 0x10,
	}, readFile(t, job.OutputTilemap))

	job.InputTiles = ""
	job.OneByte = true
	job.Optimized = false
	job.OutputTiles = ""
	job.OutputPalette = ""
	require.NoError(t, c.Tilemap(job))
	assert.Equal(t, []byte{0, 1, 1, 0}, readFile(t, job.OutputTilemap))
}

func TestTilemapErrors(t *testing.T) {
	dir := t.TempDir()
	c, _ := newConverter(t, "")

	in := filepath.Join(dir, "level.tmx")
	require.NoError(t, os.WriteFile(in, []byte("0,1\n"), 0666))

	err := c.Tilemap(&TilemapJob{
		Options:       DefaultOptions(),
		InputTilemap:  in,
		OutputTilemap: filepath.Join(dir, "out.map"),
	})
	assert.True(t, errors.Is(err, tilemap.ErrFormatUnrecognized))

	in = filepath.Join(dir, "level.txt")
	require.NoError(t, os.WriteFile(in, []byte("0,1\n2\n"), 0666))

	err = c.Tilemap(&TilemapJob{
		Options:       DefaultOptions(),
		InputTilemap:  in,
		OutputTilemap: filepath.Join(dir, "out.map"),
	})
	var rwe *tilemap.RowWidthError
	assert.True(t, errors.As(err, &rwe))
	assert.NoFileExists(t, filepath.Join(dir, "out.map"))

	// Tile 2 has no definition
	err = c.Tilemap(&TilemapJob{
		Options:       DefaultOptions(),
		InputTilemap:  writeText(t, dir, "0,2\n"),
		InputTiles:    tiles(t, dir),
		OutputTilemap: filepath.Join(dir, "out.map"),
	})
	assert.Error(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "out.map"))
}

func writeText(t *testing.T, dir, s string) string {
	file := filepath.Join(dir, "map.txm")
	require.NoError(t, os.WriteFile(file, []byte(s), 0666))
	return file
}

func TestValidate(t *testing.T) {
	c, _ := newConverter(t, "")

	err := c.Sprites(&SpritesJob{Input: "in.png"})
	assert.True(t, errors.Is(err, ErrNoOutput))

	err = c.Tiles(&TilesJob{OutputTiles: "out.til"})
	assert.True(t, errors.Is(err, ErrNoInput))

	err = c.Tilemap(&TilemapJob{InputTilemap: "in.txt"})
	assert.True(t, errors.Is(err, ErrNoOutput))
}

func TestCache(t *testing.T) {
	dir := t.TempDir()

	cache, err := NewCache(filepath.Join(dir, "cache.db"))
	require.NoError(t, err)
	defer cache.Close()

	out, err := cache.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, out)

	want := map[string][]byte{
		"sprites": bytes.Repeat([]byte{1, 2, 3}, 100),
		"palette": {0xe3},
	}
	require.NoError(t, cache.Put("key", want))
	require.NoError(t, cache.Put("key", map[string][]byte{"other": {1}}))

	out, err = cache.Get("key")
	require.NoError(t, err)
	assert.Equal(t, want, out)
}

func TestConverterCache(t *testing.T) {
	dir := t.TempDir()
	c, logs := newConverter(t, filepath.Join(dir, "cache.db"))

	job := &SpritesJob{
		Options:       DefaultOptions(),
		Input:         sprites(t, dir),
		OutputSprites: filepath.Join(dir, "out.spr"),
		Size:          2,
	}
	require.NoError(t, c.Sprites(job))
	first := readFile(t, job.OutputSprites)
	assert.NotContains(t, logs.String(), "Using cached")

	require.NoError(t, os.Remove(job.OutputSprites))
	require.NoError(t, c.Sprites(job))
	assert.Contains(t, logs.String(), "Using cached")
	assert.Equal(t, first, readFile(t, job.OutputSprites))

	// Different options are a different entry
	logs.Reset()
	job.FourBit = true
	require.NoError(t, c.Sprites(job))
	assert.NotContains(t, logs.String(), "Using cached")
	assert.NotEqual(t, first, readFile(t, job.OutputSprites))
}

func TestConverterCacheTilemapFormat(t *testing.T) {
	dir := t.TempDir()
	c, logs := newConverter(t, filepath.Join(dir, "cache.db"))

	b := []byte("0,1\n")
	txt := filepath.Join(dir, "level.txt")
	require.NoError(t, os.WriteFile(txt, b, 0666))

	job := &TilemapJob{
		Options:       DefaultOptions(),
		InputTilemap:  txt,
		OutputTilemap: filepath.Join(dir, "out.map"),
		OneByte:       true,
	}
	require.NoError(t, c.Tilemap(job))
	assert.Equal(t, []byte{0, 1}, readFile(t, job.OutputTilemap))

	// Identical bytes under another extension must be decoded again
	logs.Reset()
	gba := filepath.Join(dir, "level.gba")
	require.NoError(t, os.WriteFile(gba, b, 0666))
	job.InputTilemap = gba
	assert.Error(t, c.Tilemap(job))
	assert.NotContains(t, logs.String(), "Using cached")
}

func TestBuild(t *testing.T) {
	dir := t.TempDir()
	c, _ := newConverter(t, filepath.Join(dir, "cache.db"))

	in := sprites(t, dir)
	var jobs []Job
	for _, name := range []string{"a", "b", "c", "d"} {
		jobs = append(jobs, &SpritesJob{
			Options:       DefaultOptions(),
			Input:         in,
			OutputSprites: filepath.Join(dir, name+".spr"),
			Size:          2,
		})
	}
	jobs = append(jobs, &TilesJob{
		Options:     DefaultOptions(),
		Input:       tiles(t, dir),
		OutputTiles: filepath.Join(dir, "e.til"),
	})

	require.NoError(t, c.Build(context.Background(), jobs, 2))
	for _, name := range []string{"a.spr", "b.spr", "c.spr", "d.spr", "e.til"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	jobs = append(jobs, &TilesJob{
		Options:     DefaultOptions(),
		Input:       filepath.Join(dir, "missing.png"),
		OutputTiles: filepath.Join(dir, "f.til"),
	})
	err := c.Build(context.Background(), jobs, 0)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = c.Build(ctx, jobs[:1], 1)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestParseManifest(t *testing.T) {
	const manifest = `<Manifest>
  <Options>
    <Transparent>#000</Transparent>
    <Palette9Bit>true</Palette9Bit>
    <KeepTransparent>boxed</KeepTransparent>
  </Options>
  <Sprites>
    <Input>art\sprites.png</Input>
    <OutputSprites>out/sprites.spr</OutputSprites>
    <FourBit>true</FourBit>
    <Size>8</Size>
  </Sprites>
  <Tiles>
    <Options>
      <Palette9Bit>false</Palette9Bit>
      <IgnoreCopies>true</IgnoreCopies>
    </Options>
    <Input>/abs/tiles.png</Input>
    <OutputTiles>tiles.til</OutputTiles>
  </Tiles>
  <Tilemap>
    <InputTilemap>level.stm</InputTilemap>
    <OutputTilemap>level.map</OutputTilemap>
    <TransparentTile>3</TransparentTile>
    <Optimized>true</Optimized>
  </Tilemap>
</Manifest>`

	defaults := DefaultOptions()
	defaults.ExportPaletteCount = true

	jobs, err := ParseManifest(strings.NewReader(manifest), "base", defaults)
	require.NoError(t, err)
	require.Len(t, jobs, 3)

	global := Options{
		Transparent:        color.NRGBA{0, 0, 0, 0xff},
		Palette9Bit:        true,
		ExportPaletteCount: true,
		KeepTransparent:    object.KeepBoxed,
	}

	assert.Equal(t, &SpritesJob{
		Options:       global,
		Input:         filepath.Join("base", "art", "sprites.png"),
		OutputSprites: filepath.Join("base", "out", "sprites.spr"),
		FourBit:       true,
		Size:          8,
	}, jobs[0])

	tilesOptions := global
	tilesOptions.Palette9Bit = false
	tilesOptions.IgnoreCopies = true
	assert.Equal(t, &TilesJob{
		Options:     tilesOptions,
		Input:       "/abs/tiles.png",
		OutputTiles: filepath.Join("base", "tiles.til"),
	}, jobs[1])

	assert.Equal(t, &TilemapJob{
		Options:         global,
		InputTilemap:    filepath.Join("base", "level.stm"),
		OutputTilemap:   filepath.Join("base", "level.map"),
		TransparentTile: 3,
		Optimized:       true,
	}, jobs[2])
}

func TestParseManifestErrors(t *testing.T) {
	for _, manifest := range []string{
		`<Manifest><Options><Transparent>nope</Transparent></Options></Manifest>`,
		`<Manifest><Sprites><Options><KeepTransparent>some</KeepTransparent></Options></Sprites></Manifest>`,
		`<Manifest>`,
	} {
		_, err := ParseManifest(strings.NewReader(manifest), "", DefaultOptions())
		assert.Error(t, err, manifest)
	}

	_, err := ReadManifest(filepath.Join(t.TempDir(), "missing.xml"), DefaultOptions())
	assert.Error(t, err)
}
