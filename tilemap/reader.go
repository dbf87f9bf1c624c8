package tilemap

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	stmMagic = "STMP"

	// Guards against allocating a huge grid from a corrupt header
	maxTiles = 1 << 24

	gbaFlipX = 1 << 2
	gbaFlipY = 1 << 3
)

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

func checkSize(width, height int) error {
	if width < 0 || height < 0 || width > maxTiles || height > maxTiles || (height > 0 && width > maxTiles/height) {
		return fmt.Errorf("%w: %dx%d", errBadSize, width, height)
	}
	return nil
}

type decoder struct {
	r io.Reader
	m *Map

	tmp [8]byte
}

func (d *decoder) decodeGBA() error {
	if err := readFull(d.r, d.tmp[:8]); err != nil {
		return err
	}
	width := int(int32(binary.LittleEndian.Uint32(d.tmp[0:4])))
	height := int(int32(binary.LittleEndian.Uint32(d.tmp[4:8])))
	if err := checkSize(width, height); err != nil {
		return err
	}

	d.m = New(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if err := readFull(d.r, d.tmp[:2]); err != nil {
				return err
			}
			d.m.Set(x, y, Tile{
				Index: int(d.tmp[0]),
				FlipX: d.tmp[1]&gbaFlipX != 0,
				FlipY: d.tmp[1]&gbaFlipY != 0,
			})
		}
	}

	return nil
}

func (d *decoder) decodeSTM() error {
	if err := readFull(d.r, d.tmp[:8]); err != nil {
		return err
	}
	if string(d.tmp[:4]) != stmMagic {
		return fmt.Errorf("%w: bad magic %q", ErrFormatUnrecognized, d.tmp[:4])
	}
	width := int(int16(binary.LittleEndian.Uint16(d.tmp[4:6])))
	height := int(int16(binary.LittleEndian.Uint16(d.tmp[6:8])))
	if err := checkSize(width, height); err != nil {
		return err
	}

	d.m = New(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if err := readFull(d.r, d.tmp[:4]); err != nil {
				return err
			}
			d.m.Set(x, y, Tile{
				Index: int(int16(binary.LittleEndian.Uint16(d.tmp[0:2]))),
				FlipX: d.tmp[2] == 1,
				FlipY: d.tmp[3] == 1,
			})
		}
	}

	return nil
}

func (d *decoder) decodeText() error {
	var (
		rows  [][]int
		width int
		line  int
	)

	s := bufio.NewScanner(d.r)
	for s.Scan() {
		line++
		if strings.TrimSpace(s.Text()) == "" {
			continue
		}

		fields := strings.Split(s.Text(), ",")
		row := make([]int, 0, len(fields))
		for _, f := range fields {
			i, err := strconv.Atoi(strings.TrimSpace(f))
			if err != nil {
				return fmt.Errorf("tilemap: line %d: %w", line, err)
			}
			row = append(row, i)
		}

		if len(rows) == 0 {
			width = len(row)
		} else if len(row) != width {
			return &RowWidthError{Line: line, Want: width, Got: len(row)}
		}
		rows = append(rows, row)
	}
	if err := s.Err(); err != nil {
		return err
	}

	if err := checkSize(width, len(rows)); err != nil {
		return err
	}

	d.m = New(width, len(rows))
	for y, row := range rows {
		for x, i := range row {
			d.m.Set(x, y, Tile{Index: i})
		}
	}

	return nil
}

func (d *decoder) decode(r io.Reader, f Format) error {
	d.r = r

	switch f {
	case FormatGBA:
		return d.decodeGBA()
	case FormatSTM:
		return d.decodeSTM()
	case FormatText:
		return d.decodeText()
	}

	return fmt.Errorf("%w: %v", ErrFormatUnrecognized, f)
}

// Decode reads a tilemap in format f from r.
func Decode(r io.Reader, f Format) (*Map, error) {
	var d decoder
	if err := d.decode(r, f); err != nil {
		return nil, err
	}
	return d.m, nil
}
