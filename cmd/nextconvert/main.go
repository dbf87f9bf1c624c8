package main

import (
	"context"
	"io"
	"log"
	"os"

	"github.com/bodgit/nextconvert"
	"github.com/bodgit/nextconvert/colour"
	"github.com/bodgit/nextconvert/object"
	"github.com/urfave/cli/v2"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func options(c *cli.Context) (nextconvert.Options, error) {
	o := nextconvert.DefaultOptions()

	t, err := colour.Parse(c.String("transparent"))
	if err != nil {
		return o, err
	}
	o.Transparent = t

	p, err := object.ParsePolicy(c.String("keep-transparent"))
	if err != nil {
		return o, err
	}
	o.KeepTransparent = p

	o.Palette9Bit = c.Bool("9bit-palette")
	o.ExportPaletteCount = c.Bool("export-palette-count")
	o.IgnoreCopies = c.Bool("ignore-copies")
	o.ReduceColours = c.Bool("reduce-colours")

	return o, nil
}

// run sets up a converter from the global flags and passes it to fn
func run(c *cli.Context, fn func(*nextconvert.Converter, nextconvert.Options) error) error {
	logger := log.New(io.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}

	o, err := options(c)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	n, err := nextconvert.New(c.String("cache"), logger)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer n.Close()

	if err := fn(n, o); err != nil {
		return cli.NewExitError(err, 1)
	}

	return nil
}

func main() {
	app := cli.NewApp()

	app.Name = "nextconvert"
	app.Usage = "ZX Spectrum Next graphics conversion utility"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "cache",
			EnvVars: []string{"NEXTCONVERT_CACHE"},
			Usage:   "path to compile cache, disabled if empty",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
		&cli.StringFlag{
			Name:  "transparent",
			Value: "#FF00FF",
			Usage: "transparent colour as R,G,B, A,R,G,B, #RGB, #ARGB, #RRGGBB or #AARRGGBB",
		},
		&cli.BoolFlag{
			Name:  "9bit-palette",
			Usage: "write 9-bit palette entries",
		},
		&cli.BoolFlag{
			Name:  "export-palette-count",
			Usage: "write the number of palette entries first",
		},
		&cli.BoolFlag{
			Name:  "ignore-copies",
			Usage: "remove copied, mirrored and rotated objects",
		},
		&cli.StringFlag{
			Name:  "keep-transparent",
			Value: object.KeepNone.String(),
			Usage: "fully transparent objects to keep: none, all or boxed",
		},
		&cli.BoolFlag{
			Name:  "reduce-colours",
			Usage: "reduce objects with too many colours for a 4-bit bank",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "sprites",
			Usage:       "Convert an image into sprites",
			Description: "",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "in",
					Required: true,
					Usage:    "source image",
				},
				&cli.StringFlag{
					Name:  "in-palette",
					Usage: "palette of 3 byte RGB entries to map colours onto",
				},
				&cli.StringFlag{
					Name:  "out-sprites",
					Usage: "sprites output file",
				},
				&cli.StringFlag{
					Name:  "out-palette",
					Usage: "palette output file",
				},
				&cli.BoolFlag{
					Name:  "4bit",
					Usage: "convert to 4-bit sprites",
				},
				&cli.IntFlag{
					Name:  "size",
					Value: nextconvert.DefaultSpriteSize,
					Usage: "sprite width and height",
				},
			},
			Action: func(c *cli.Context) error {
				return run(c, func(n *nextconvert.Converter, o nextconvert.Options) error {
					return n.Sprites(&nextconvert.SpritesJob{
						Options:       o,
						Input:         c.String("in"),
						InputPalette:  c.String("in-palette"),
						OutputSprites: c.String("out-sprites"),
						OutputPalette: c.String("out-palette"),
						FourBit:       c.Bool("4bit"),
						Size:          c.Int("size"),
					})
				})
			},
		},
		{
			Name:        "tiles",
			Usage:       "Convert an image into 8x8 4-bit tiles",
			Description: "",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "in",
					Required: true,
					Usage:    "source image",
				},
				&cli.StringFlag{
					Name:  "out-tiles",
					Usage: "tiles output file",
				},
				&cli.StringFlag{
					Name:  "out-palette",
					Usage: "palette output file",
				},
			},
			Action: func(c *cli.Context) error {
				return run(c, func(n *nextconvert.Converter, o nextconvert.Options) error {
					return n.Tiles(&nextconvert.TilesJob{
						Options:       o,
						Input:         c.String("in"),
						OutputTiles:   c.String("out-tiles"),
						OutputPalette: c.String("out-palette"),
					})
				})
			},
		},
		{
			Name:        "tilemap",
			Usage:       "Convert a tilemap and its tile definitions",
			Description: "Tilemaps are read from gba, map, stm, txm or txt files.",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "in-tilemap",
					Usage: "source tilemap",
				},
				&cli.StringFlag{
					Name:  "in-tiles",
					Usage: "source image of tile definitions",
				},
				&cli.StringFlag{
					Name:  "out-tilemap",
					Usage: "tilemap output file",
				},
				&cli.StringFlag{
					Name:  "out-tiles",
					Usage: "tiles output file",
				},
				&cli.StringFlag{
					Name:  "out-palette",
					Usage: "palette output file",
				},
				&cli.IntFlag{
					Name:  "transparent-tile",
					Usage: "index of the empty tile",
				},
				&cli.BoolFlag{
					Name:  "optimized",
					Usage: "write only used rows and tiles",
				},
				&cli.BoolFlag{
					Name:  "one-byte",
					Usage: "write tiles without an attribute byte",
				},
			},
			Action: func(c *cli.Context) error {
				return run(c, func(n *nextconvert.Converter, o nextconvert.Options) error {
					return n.Tilemap(&nextconvert.TilemapJob{
						Options:         o,
						InputTilemap:    c.String("in-tilemap"),
						InputTiles:      c.String("in-tiles"),
						OutputTilemap:   c.String("out-tilemap"),
						OutputTiles:     c.String("out-tiles"),
						OutputPalette:   c.String("out-palette"),
						TransparentTile: c.Int("transparent-tile"),
						Optimized:       c.Bool("optimized"),
						OneByte:         c.Bool("one-byte"),
					})
				})
			},
		},
		{
			Name:        "build",
			Usage:       "Run every job in an XML manifest",
			Description: "Global flags are the defaults for every job.",
			ArgsUsage:   "MANIFEST",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "jobs",
					Aliases: []string{"j"},
					Usage:   "number of concurrent jobs, one per CPU if zero",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				return run(c, func(n *nextconvert.Converter, o nextconvert.Options) error {
					jobs, err := nextconvert.ReadManifest(c.Args().First(), o)
					if err != nil {
						return err
					}
					return n.Build(context.Background(), jobs, c.Int("jobs"))
				})
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
