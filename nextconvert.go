/*
Package nextconvert is a library for converting images and tilemaps into the
binary formats used by the graphics hardware of the ZX Spectrum Next.

Sprites and tiles are cut from a source raster, their colours are mapped
onto a 9-bit hardware palette, either a single 256 colour palette or banks
of 16 colours for 4-bit images, and the packed pixels and palette are
written out. Tilemaps are read from common interchange formats and written
either raw or in a row-sparse optimized format.
*/
package nextconvert

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"hash"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"os"

	"github.com/bodgit/nextconvert/colour"
	indexed "github.com/bodgit/nextconvert/image"
	"github.com/bodgit/nextconvert/object"
	"github.com/bodgit/nextconvert/palette"
	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
)

const (
	outSprites = "sprites"
	outTiles   = "tiles"
	outPalette = "palette"
	outTilemap = "tilemap"
)

// Converter runs conversion jobs.
type Converter struct {
	cache  *Cache
	logger *log.Logger
}

// New returns a Converter that logs to logger. If cacheFile is not empty,
// compiled outputs are cached in it.
func New(cacheFile string, logger *log.Logger) (*Converter, error) {
	c := &Converter{
		logger: logger,
	}

	if cacheFile != "" {
		cache, err := NewCache(cacheFile)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to open cache %s", cacheFile)
		}
		c.cache = cache
	}

	return c, nil
}

// Close releases the cache, if any.
func (c *Converter) Close() error {
	if c.cache == nil {
		return nil
	}
	return c.cache.Close()
}

type outputs map[string][]byte

func newHash(kind string, o Options, extra ...interface{}) hash.Hash {
	h := sha1.New()
	fmt.Fprintln(h, kind, o.key())
	fmt.Fprintln(h, extra...)
	return h
}

func hashFile(file string, h io.Writer) ([]byte, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	b := new(bytes.Buffer)
	if _, err := io.Copy(io.MultiWriter(b, h), f); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func decodeImage(file string, h io.Writer) (image.Image, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, _, err := image.Decode(io.TeeReader(f, h))
	if err != nil {
		return nil, errors.Wrapf(err, "unable to decode %s", file)
	}

	// Include anything the decoder didn't consume
	if _, err := io.Copy(h, f); err != nil {
		return nil, err
	}

	return m, nil
}

// compile returns the cached outputs for the hash h, or runs fn and caches
// its outputs.
func (c *Converter) compile(h hash.Hash, fn func() (outputs, error)) (outputs, error) {
	if c.cache == nil {
		return fn()
	}

	key := fmt.Sprintf("%X", h.Sum(nil))

	cached, err := c.cache.Get(key)
	if err != nil {
		return nil, errors.Wrap(err, "cache lookup failed")
	}
	if cached != nil {
		c.logger.Printf("Using cached outputs for %s\n", key)
		return cached, nil
	}

	out, err := fn()
	if err != nil {
		return nil, err
	}

	if err := c.cache.Put(key, out); err != nil {
		return nil, errors.Wrap(err, "cache store failed")
	}

	return out, nil
}

// write writes each output to its file, skipping any without a file name.
func (c *Converter) write(out outputs, files map[string]string) error {
	for name, file := range files {
		if file == "" {
			continue
		}
		b, ok := out[name]
		if !ok {
			c.logger.Printf("No %s data to write to %s\n", name, file)
			continue
		}
		if err := os.WriteFile(file, b, 0666); err != nil {
			return errors.Wrapf(err, "unable to write %s", name)
		}
		c.logger.Printf("Wrote %d bytes of %s to %s\n", len(b), name, file)
	}
	return nil
}

// convert cuts m into objects of the given size and maps them onto a
// palette.
func (c *Converter) convert(m image.Image, size int, fourBit bool, custom colour.List, o *Options) (*palette.Result, error) {
	e := object.Extractor{
		Width:           size,
		Height:          size,
		Transparent:     o.Transparent,
		Keep:            o.KeepTransparent,
		MergeDuplicates: o.IgnoreCopies,
	}
	objects, err := e.Extract(m)
	if err != nil {
		return nil, err
	}
	c.logger.Printf("%d objects of %dx%d detected\n", len(objects), size, size)

	mapper := palette.Mapper{
		Transparent: o.Transparent,
		FourBit:     fourBit,
		Custom:      custom,
		Reduce:      o.ReduceColours,
	}
	r, err := mapper.Map(objects)
	if err != nil {
		return nil, errors.Wrap(err, "unable to map colours")
	}
	if fourBit {
		c.logger.Printf("%d colours mapped into %d banks\n", r.Used(), r.Banks)
	} else {
		c.logger.Printf("%d colours mapped\n", len(r.Colours))
	}

	return r, nil
}

func encodePixels(r *palette.Result, fourBit bool) ([]byte, error) {
	images := make([]indexed.Indexed, 0, len(r.Images))
	for _, img := range r.Images {
		images = append(images, img)
	}

	b := new(bytes.Buffer)
	if err := indexed.Encode(b, images, fourBit); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func encodePalette(r *palette.Result, o *Options) ([]byte, error) {
	b := new(bytes.Buffer)
	if err := palette.Encode(b, r.Colours, &palette.EncodeOptions{
		Bits9: o.Palette9Bit,
		Count: o.ExportPaletteCount,
	}); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}
