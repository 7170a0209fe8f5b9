// Package imageio converts between encoded images and color sample sets.
//
// Decoding flattens an image row by row into a sample.Set and remembers its
// dimensions; encoding reshapes a flat color sequence back into an image.
// Alpha is discarded on decode and every encoded pixel is opaque.
package imageio

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp" // register decoder

	"github.com/hupe1980/palette/sample"
)

var (
	// ErrDecode is returned when an image cannot be decoded.
	ErrDecode = errors.New("imageio: decode failed")
	// ErrUnsupportedFormat is returned for formats that cannot be encoded.
	ErrUnsupportedFormat = errors.New("imageio: unsupported format")
	// ErrShapeMismatch is returned when width*height does not match the
	// number of colors.
	ErrShapeMismatch = errors.New("imageio: shape mismatch")
)

// Format names an image encoding.
type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
	GIF  Format = "gif"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
	WEBP Format = "webp" // decode only
)

// Extension returns the conventional file extension including the dot.
func (f Format) Extension() string {
	switch f {
	case JPEG:
		return ".jpg"
	case TIFF:
		return ".tif"
	default:
		return "." + string(f)
	}
}

// FormatFromName derives the format from a file name extension.
func FormatFromName(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return PNG, nil
	case ".jpg", ".jpeg":
		return JPEG, nil
	case ".gif":
		return GIF, nil
	case ".bmp":
		return BMP, nil
	case ".tif", ".tiff":
		return TIFF, nil
	case ".webp":
		return WEBP, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// Image is a decoded image flattened into row-major samples.
type Image struct {
	Width   int
	Height  int
	Format  Format
	Samples *sample.Set
}

// Decode reads an image and flattens it into samples.
func Decode(r io.Reader) (*Image, error) {
	src, name, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	img := FromImage(src)
	img.Format = Format(name)
	return img, nil
}

// FromImage flattens an already decoded image.
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	nrgba, ok := src.(*image.NRGBA)
	if !ok || nrgba.Rect.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.Draw(nrgba, nrgba.Rect, src, b.Min, draw.Src)
	}

	set := sample.NewSet(w * h)
	data := set.Floats()
	for y := 0; y < h; y++ {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+w*4]
		for x := 0; x < w; x++ {
			off := (y*w + x) * sample.Channels
			data[off] = float64(row[x*4])
			data[off+1] = float64(row[x*4+1])
			data[off+2] = float64(row[x*4+2])
		}
	}

	return &Image{Width: w, Height: h, Samples: set}
}

// ToImage reshapes row-major colors into an opaque image.
func ToImage(width, height int, colors []sample.Color) (*image.NRGBA, error) {
	if width < 0 || height < 0 || width*height != len(colors) {
		return nil, fmt.Errorf("%w: %dx%d for %d colors", ErrShapeMismatch, width, height, len(colors))
	}
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i, c := range colors {
		off := i * 4
		img.Pix[off] = c[0]
		img.Pix[off+1] = c[1]
		img.Pix[off+2] = c[2]
		img.Pix[off+3] = 0xff
	}
	return img, nil
}

type encodeOptions struct {
	jpegQuality int
}

// EncodeOption configures Encode.
type EncodeOption func(*encodeOptions)

// WithJPEGQuality sets the JPEG quality (1-100).
func WithJPEGQuality(q int) EncodeOption {
	return func(o *encodeOptions) {
		o.jpegQuality = q
	}
}

// Encode writes row-major colors as an image of the given format.
func Encode(w io.Writer, format Format, width, height int, colors []sample.Color, optFns ...EncodeOption) error {
	opts := encodeOptions{jpegQuality: jpeg.DefaultQuality}
	for _, fn := range optFns {
		fn(&opts)
	}

	img, err := ToImage(width, height, colors)
	if err != nil {
		return err
	}

	switch format {
	case PNG:
		return png.Encode(w, img)
	case JPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: opts.jpegQuality})
	case GIF:
		return gif.Encode(w, paletted(img, colors), nil)
	case BMP:
		return bmp.Encode(w, img)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// paletted converts img to a paletted image. Quantized images with at most
// 256 colors keep their exact palette; larger ones fall back to Plan9 with
// Floyd-Steinberg dithering.
func paletted(img *image.NRGBA, colors []sample.Color) *image.Paletted {
	index := make(map[sample.Color]uint8)
	pal := make(color.Palette, 0, 256)
	for _, c := range colors {
		if _, ok := index[c]; ok {
			continue
		}
		if len(pal) == 256 {
			dst := image.NewPaletted(img.Rect, palette.Plan9)
			draw.FloydSteinberg.Draw(dst, img.Rect, img, image.Point{})
			return dst
		}
		index[c] = uint8(len(pal))
		pal = append(pal, color.NRGBA{R: c[0], G: c[1], B: c[2], A: 0xff})
	}

	dst := image.NewPaletted(img.Rect, pal)
	for i, c := range colors {
		dst.Pix[i] = index[c]
	}
	return dst
}
