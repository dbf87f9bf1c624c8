package nextconvert

import (
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/nextconvert/colour"
	"github.com/bodgit/nextconvert/object"
	"github.com/pkg/errors"
)

type xmlManifest struct {
	XMLName  xml.Name     `xml:"Manifest"`
	Options  *xmlOptions  `xml:"Options"`
	Sprites  []xmlSprites `xml:"Sprites"`
	Tiles    []xmlTiles   `xml:"Tiles"`
	Tilemaps []xmlTilemap `xml:"Tilemap"`
}

type xmlOptions struct {
	Transparent        string `xml:"Transparent"`
	Palette9Bit        *bool  `xml:"Palette9Bit"`
	ExportPaletteCount *bool  `xml:"ExportPaletteCount"`
	IgnoreCopies       *bool  `xml:"IgnoreCopies"`
	KeepTransparent    string `xml:"KeepTransparent"`
	ReduceColours      *bool  `xml:"ReduceColours"`
}

type xmlSprites struct {
	Options       *xmlOptions `xml:"Options"`
	Input         string      `xml:"Input"`
	InputPalette  string      `xml:"InputPalette"`
	OutputSprites string      `xml:"OutputSprites"`
	OutputPalette string      `xml:"OutputPalette"`
	FourBit       bool        `xml:"FourBit"`
	Size          int         `xml:"Size"`
}

type xmlTiles struct {
	Options       *xmlOptions `xml:"Options"`
	Input         string      `xml:"Input"`
	OutputTiles   string      `xml:"OutputTiles"`
	OutputPalette string      `xml:"OutputPalette"`
}

type xmlTilemap struct {
	Options         *xmlOptions `xml:"Options"`
	InputTilemap    string      `xml:"InputTilemap"`
	InputTiles      string      `xml:"InputTiles"`
	OutputTilemap   string      `xml:"OutputTilemap"`
	OutputTiles     string      `xml:"OutputTiles"`
	OutputPalette   string      `xml:"OutputPalette"`
	TransparentTile int         `xml:"TransparentTile"`
	Optimized       bool        `xml:"Optimized"`
	OneByte         bool        `xml:"OneByte"`
}

// apply overrides any options set in x.
func (x *xmlOptions) apply(o Options) (Options, error) {
	if x == nil {
		return o, nil
	}

	if x.Transparent != "" {
		c, err := colour.Parse(x.Transparent)
		if err != nil {
			return o, err
		}
		o.Transparent = c
	}
	if x.KeepTransparent != "" {
		p, err := object.ParsePolicy(x.KeepTransparent)
		if err != nil {
			return o, err
		}
		o.KeepTransparent = p
	}

	for _, b := range []struct {
		src *bool
		dst *bool
	}{
		{x.Palette9Bit, &o.Palette9Bit},
		{x.ExportPaletteCount, &o.ExportPaletteCount},
		{x.IgnoreCopies, &o.IgnoreCopies},
		{x.ReduceColours, &o.ReduceColours},
	} {
		if b.src != nil {
			*b.dst = *b.src
		}
	}

	return o, nil
}

// ParseManifest reads a build manifest from r. Options found in the
// manifest override defaults and options set on a job override both.
// Relative paths are resolved against dir.
func ParseManifest(r io.Reader, dir string, defaults Options) ([]Job, error) {
	var m xmlManifest
	if err := xml.NewDecoder(r).Decode(&m); err != nil {
		return nil, errors.Wrap(err, "unable to parse manifest")
	}

	global, err := m.Options.apply(defaults)
	if err != nil {
		return nil, errors.Wrap(err, "manifest options")
	}

	path := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, filepath.Clean(strings.ReplaceAll(p, "\\", string(os.PathSeparator))))
	}

	var jobs []Job

	for i, s := range m.Sprites {
		o, err := s.Options.apply(global)
		if err != nil {
			return nil, errors.Wrapf(err, "sprites job %d options", i+1)
		}
		jobs = append(jobs, &SpritesJob{
			Options:       o,
			Input:         path(s.Input),
			InputPalette:  path(s.InputPalette),
			OutputSprites: path(s.OutputSprites),
			OutputPalette: path(s.OutputPalette),
			FourBit:       s.FourBit,
			Size:          s.Size,
		})
	}

	for i, t := range m.Tiles {
		o, err := t.Options.apply(global)
		if err != nil {
			return nil, errors.Wrapf(err, "tiles job %d options", i+1)
		}
		jobs = append(jobs, &TilesJob{
			Options:       o,
			Input:         path(t.Input),
			OutputTiles:   path(t.OutputTiles),
			OutputPalette: path(t.OutputPalette),
		})
	}

	for i, t := range m.Tilemaps {
		o, err := t.Options.apply(global)
		if err != nil {
			return nil, errors.Wrapf(err, "tilemap job %d options", i+1)
		}
		jobs = append(jobs, &TilemapJob{
			Options:         o,
			InputTilemap:    path(t.InputTilemap),
			InputTiles:      path(t.InputTiles),
			OutputTilemap:   path(t.OutputTilemap),
			OutputTiles:     path(t.OutputTiles),
			OutputPalette:   path(t.OutputPalette),
			TransparentTile: t.TransparentTile,
			Optimized:       t.Optimized,
			OneByte:         t.OneByte,
		})
	}

	return jobs, nil
}

// ReadManifest reads a build manifest from file, resolving relative paths
// against the directory containing it.
func ReadManifest(file string, defaults Options) ([]Job, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ParseManifest(f, filepath.Dir(file), defaults)
}
