// Package artifact stores a quantized image as its palette plus one label per
// pixel.
//
// Layout (little endian):
//
//	magic "PLTQ" | version u8 | compression u8 | label width u8 | reserved u8
//	width u32 | height u32 | palette size u32 | palette (size*3 bytes)
//	label block [uncompressed u32][compressed u32][data] | crc32c u32
//
// Labels are one byte wide for palettes of up to 256 colors and two bytes
// otherwise. The label block is compressed with LZ4 or ZSTD.
package artifact

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/hupe1980/palette"
	"github.com/hupe1980/palette/internal/conv"
	"github.com/hupe1980/palette/internal/hash"
	"github.com/hupe1980/palette/sample"
)

const (
	magic   = "PLTQ"
	version = 1

	headerSize = 4 + 4 + 4*3
	crcSize    = 4
)

var (
	// ErrCorrupt is returned for truncated or tampered artifacts.
	ErrCorrupt = errors.New("artifact: corrupt")
	// ErrVersion is returned for artifacts written by an unknown version.
	ErrVersion = errors.New("artifact: unsupported version")
	// ErrInvalid is returned when an artifact cannot be written as given.
	ErrInvalid = errors.New("artifact: invalid")
)

// Artifact is an indexed-color image.
type Artifact struct {
	Width   int
	Height  int
	Palette []sample.Color
	Labels  []int
}

// FromResult builds an artifact from a clustering result and the source
// image dimensions.
func FromResult(res *palette.Result, width, height int) (*Artifact, error) {
	if width*height != res.Len() {
		return nil, fmt.Errorf("%w: %dx%d for %d labels", ErrInvalid, width, height, res.Len())
	}
	return &Artifact{
		Width:   width,
		Height:  height,
		Palette: res.Palette(),
		Labels:  res.Labels,
	}, nil
}

// Colors expands the labels into row-major colors.
func (a *Artifact) Colors() []sample.Color {
	out := make([]sample.Color, len(a.Labels))
	for i, l := range a.Labels {
		out[i] = a.Palette[l]
	}
	return out
}

func (a *Artifact) validate() error {
	if a.Width < 0 || a.Height < 0 || a.Width*a.Height != len(a.Labels) {
		return fmt.Errorf("%w: %dx%d for %d labels", ErrInvalid, a.Width, a.Height, len(a.Labels))
	}
	if len(a.Palette) == 0 && len(a.Labels) > 0 {
		return fmt.Errorf("%w: empty palette", ErrInvalid)
	}
	if len(a.Palette) > math.MaxUint16+1 {
		return fmt.Errorf("%w: palette of %d colors", ErrInvalid, len(a.Palette))
	}
	for i, l := range a.Labels {
		if l < 0 || l >= len(a.Palette) {
			return fmt.Errorf("%w: label %d at pixel %d", ErrInvalid, l, i)
		}
	}
	return nil
}

func labelWidth(paletteSize int) int {
	if paletteSize <= 256 {
		return 1
	}
	return 2
}

// Write encodes a to w.
func Write(w io.Writer, a *Artifact, c Compression) error {
	if err := a.validate(); err != nil {
		return err
	}

	lw := labelWidth(len(a.Palette))
	labels := make([]byte, len(a.Labels)*lw)
	for i, l := range a.Labels {
		if lw == 1 {
			labels[i] = byte(l)
		} else {
			binary.LittleEndian.PutUint16(labels[i*2:], uint16(l))
		}
	}

	block, err := compressBlock(labels, c)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.Grow(headerSize + len(a.Palette)*sample.Channels + len(block) + crcSize)
	buf.WriteString(magic)
	buf.Write([]byte{version, byte(c), byte(lw), 0})

	var u32 [4]byte
	for _, v := range []int{a.Width, a.Height, len(a.Palette)} {
		u, err := conv.IntToUint32(v)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}
		binary.LittleEndian.PutUint32(u32[:], u)
		buf.Write(u32[:])
	}
	for _, col := range a.Palette {
		buf.Write(col[:])
	}
	buf.Write(block)

	binary.LittleEndian.PutUint32(u32[:], hash.CRC32C(buf.Bytes()))
	buf.Write(u32[:])

	_, err = w.Write(buf.Bytes())
	return err
}

// Read decodes an artifact from r.
func Read(r io.Reader) (*Artifact, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}

// Unmarshal decodes an artifact from data.
func Unmarshal(data []byte) (*Artifact, error) {
	if len(data) < headerSize+crcSize || string(data[:4]) != magic {
		return nil, ErrCorrupt
	}

	body, sum := data[:len(data)-crcSize], binary.LittleEndian.Uint32(data[len(data)-crcSize:])
	if hash.CRC32C(body) != sum {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}
	if data[4] != version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, data[4])
	}

	c := Compression(data[5])
	lw := int(data[6])
	if lw != 1 && lw != 2 {
		return nil, fmt.Errorf("%w: label width %d", ErrCorrupt, lw)
	}

	var dims [3]int
	for i := range dims {
		v, err := conv.Uint32ToInt(binary.LittleEndian.Uint32(data[8+4*i:]))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		dims[i] = v
	}
	a := &Artifact{Width: dims[0], Height: dims[1]}
	k := dims[2]
	if k > math.MaxUint16+1 {
		return nil, fmt.Errorf("%w: palette of %d colors", ErrCorrupt, k)
	}

	off := headerSize
	if len(body) < off+k*sample.Channels {
		return nil, fmt.Errorf("%w: truncated palette", ErrCorrupt)
	}
	a.Palette = make([]sample.Color, k)
	for j := range a.Palette {
		copy(a.Palette[j][:], body[off:off+sample.Channels])
		off += sample.Channels
	}

	pixels, ok := pixelCount(a.Width, a.Height, lw)
	if !ok {
		return nil, fmt.Errorf("%w: %dx%d image too large", ErrCorrupt, a.Width, a.Height)
	}

	labels, n, err := decompressBlock(body[off:], c, pixels*lw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if off+n != len(body) {
		return nil, fmt.Errorf("%w: trailing bytes", ErrCorrupt)
	}

	a.Labels = make([]int, pixels)
	for i := range a.Labels {
		var l int
		if lw == 1 {
			l = int(labels[i])
		} else {
			l = int(binary.LittleEndian.Uint16(labels[i*2:]))
		}
		if l >= k {
			return nil, fmt.Errorf("%w: label %d out of range", ErrCorrupt, l)
		}
		a.Labels[i] = l
	}
	return a, nil
}

// pixelCount returns width*height and rejects products whose label stream of
// lw bytes per pixel would not fit a uint32 block header.
func pixelCount(width, height, lw int) (int, bool) {
	if width == 0 || height == 0 {
		return 0, true
	}
	if uint64(width) > math.MaxUint32/uint64(height)/uint64(lw) {
		return 0, false
	}
	return width * height, true
}
