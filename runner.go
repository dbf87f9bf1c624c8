package nextconvert

import (
	"bytes"
	"image"

	"github.com/bodgit/nextconvert/colour"
	"github.com/bodgit/nextconvert/palette"
	"github.com/bodgit/nextconvert/tilemap"
	"github.com/pkg/errors"
)

// Bank offsets above this do not fit in a tile attribute byte
const maxBankOffset = 15

// Sprites runs a sprites job.
func (c *Converter) Sprites(job *SpritesJob) error {
	if err := job.validate(); err != nil {
		return err
	}

	h := newHash(outSprites, job.Options, job.size(), job.FourBit, job.InputPalette != "")

	m, err := decodeImage(job.Input, h)
	if err != nil {
		return err
	}

	var custom colour.List
	if job.InputPalette != "" {
		b, err := hashFile(job.InputPalette, h)
		if err != nil {
			return errors.Wrap(err, "unable to read palette")
		}
		if custom, err = palette.ReadCustom(bytes.NewReader(b), job.Transparent); err != nil {
			return errors.Wrapf(err, "unable to read palette %s", job.InputPalette)
		}
		c.logger.Printf("%d colours read from %s\n", len(custom), job.InputPalette)
	}

	out, err := c.compile(h, func() (outputs, error) {
		r, err := c.convert(m, job.size(), job.FourBit, custom, &job.Options)
		if err != nil {
			return nil, err
		}
		return encodeImages(r, job.FourBit, outSprites, &job.Options)
	})
	if err != nil {
		return errors.Wrapf(err, "unable to convert %s", job.Input)
	}

	return c.write(out, map[string]string{
		outSprites: job.OutputSprites,
		outPalette: job.OutputPalette,
	})
}

// Tiles runs a tiles job.
func (c *Converter) Tiles(job *TilesJob) error {
	if err := job.validate(); err != nil {
		return err
	}

	h := newHash(outTiles, job.Options)

	m, err := decodeImage(job.Input, h)
	if err != nil {
		return err
	}

	out, err := c.compile(h, func() (outputs, error) {
		r, err := c.convert(m, tileSize, true, nil, &job.Options)
		if err != nil {
			return nil, err
		}
		return encodeImages(r, true, outTiles, &job.Options)
	})
	if err != nil {
		return errors.Wrapf(err, "unable to convert %s", job.Input)
	}

	return c.write(out, map[string]string{
		outTiles:   job.OutputTiles,
		outPalette: job.OutputPalette,
	})
}

// Tilemap runs a tilemap job. Tile definitions are converted first so the
// palette bank of each tile can be written in its attribute byte.
func (c *Converter) Tilemap(job *TilemapJob) error {
	if err := job.validate(); err != nil {
		return err
	}

	var (
		format tilemap.Format
		raw    []byte
		tiles  image.Image
		err    error
	)

	if job.InputTilemap != "" {
		if format, err = tilemap.FormatFromFilename(job.InputTilemap); err != nil {
			return err
		}
	}

	// The same bytes decode differently per format
	h := newHash(outTilemap, job.Options, job.TransparentTile, job.Optimized, job.OneByte, format, job.InputTiles != "")

	if job.InputTilemap != "" {
		if raw, err = hashFile(job.InputTilemap, h); err != nil {
			return errors.Wrap(err, "unable to read tilemap")
		}
	}

	if job.InputTiles != "" {
		if tiles, err = decodeImage(job.InputTiles, h); err != nil {
			return err
		}
	} else if !job.OneByte {
		c.logger.Printf("Warning: no tile definitions, palette bank offsets will be zero\n")
	}

	out, err := c.compile(h, func() (outputs, error) {
		var (
			out = make(outputs)
			r   *palette.Result
			err error
		)
		if tiles != nil {
			if r, err = c.convert(tiles, tileSize, true, nil, &job.Options); err != nil {
				return nil, err
			}
			if r.Banks > maxBankOffset+1 {
				c.logger.Printf("Warning: %d palette banks used, offsets above %d overflow the attribute byte\n", r.Banks, maxBankOffset)
			}
			if out, err = encodeImages(r, true, outTiles, &job.Options); err != nil {
				return nil, err
			}
		}

		if raw != nil {
			m, err := tilemap.Decode(bytes.NewReader(raw), format)
			if err != nil {
				return nil, errors.Wrapf(err, "unable to parse tilemap %s", job.InputTilemap)
			}
			c.logger.Printf("Parsed %s tilemap of %dx%d tiles\n", format, m.Width, m.Height)

			o := &tilemap.EncodeOptions{
				TransparentIndex: job.TransparentTile,
				Attributes:       !job.OneByte,
				Optimized:        job.Optimized,
			}
			if r != nil {
				o.Definitions = r
			}

			b := new(bytes.Buffer)
			if err := tilemap.Encode(b, m, o); err != nil {
				return nil, errors.Wrap(err, "unable to encode tilemap")
			}
			out[outTilemap] = b.Bytes()
		}

		return out, nil
	})
	if err != nil {
		return errors.Wrapf(err, "unable to convert %s", job)
	}

	return c.write(out, map[string]string{
		outTilemap: job.OutputTilemap,
		outTiles:   job.OutputTiles,
		outPalette: job.OutputPalette,
	})
}

func encodeImages(r *palette.Result, fourBit bool, name string, o *Options) (outputs, error) {
	pixels, err := encodePixels(r, fourBit)
	if err != nil {
		return nil, err
	}
	pal, err := encodePalette(r, o)
	if err != nil {
		return nil, err
	}
	return outputs{
		name:       pixels,
		outPalette: pal,
	}, nil
}
