package imageio

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/palette/sample"
)

func TestFormatFromName(t *testing.T) {
	tests := []struct {
		name string
		want Format
	}{
		{"a.png", PNG},
		{"dir/b.JPG", JPEG},
		{"c.jpeg", JPEG},
		{"d.gif", GIF},
		{"e.bmp", BMP},
		{"f.tiff", TIFF},
		{"g.webp", WEBP},
	}
	for _, tt := range tests {
		got, err := FormatFromName(tt.name)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}

	_, err := FormatFromName("notes.txt")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestRoundTripLossless(t *testing.T) {
	colors := []sample.Color{
		{0, 0, 0}, {255, 0, 0}, {0, 255, 0},
		{0, 0, 255}, {10, 20, 30}, {255, 255, 255},
	}

	for _, f := range []Format{PNG, GIF, BMP, TIFF} {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, f, 3, 2, colors))

			img, err := Decode(&buf)
			require.NoError(t, err)
			assert.Equal(t, 3, img.Width)
			assert.Equal(t, 2, img.Height)
			assert.Equal(t, f, img.Format)
			assert.Equal(t, colors, img.Samples.Colors())
		})
	}
}

func TestEncodeJPEG(t *testing.T) {
	colors := make([]sample.Color, 16*16)
	for i := range colors {
		colors[i] = sample.Color{200, 100, 50}
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, JPEG, 16, 16, colors, WithJPEGQuality(95)))

	img, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, JPEG, img.Format)
	assert.Equal(t, 256, img.Samples.Len())
}

func TestEncode_Errors(t *testing.T) {
	var buf bytes.Buffer
	err := Encode(&buf, PNG, 2, 2, []sample.Color{{1, 1, 1}})
	assert.ErrorIs(t, err, ErrShapeMismatch)

	err = Encode(&buf, WEBP, 1, 1, []sample.Color{{1, 1, 1}})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDecode_Garbage(t *testing.T) {
	_, err := Decode(strings.NewReader("definitely not an image"))
	assert.ErrorIs(t, err, ErrDecode)
}

func TestFromImage_DropsAlpha(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 100, G: 150, B: 200, A: 0})
	src.SetNRGBA(1, 0, color.NRGBA{R: 1, G: 2, B: 3, A: 128})

	img := FromImage(src)
	assert.Equal(t, []sample.Color{{100, 150, 200}, {1, 2, 3}}, img.Samples.Colors())
}

func TestFromImage_OffsetBounds(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 5, 7, 6))
	src.Set(5, 5, color.RGBA{R: 9, G: 8, B: 7, A: 255})
	src.Set(6, 5, color.RGBA{R: 1, G: 2, B: 3, A: 255})

	img := FromImage(src)
	assert.Equal(t, 2, img.Width)
	assert.Equal(t, 1, img.Height)
	assert.Equal(t, []sample.Color{{9, 8, 7}, {1, 2, 3}}, img.Samples.Colors())
}

func TestGIF_PaletteFallback(t *testing.T) {
	colors := make([]sample.Color, 300)
	for i := range colors {
		colors[i] = sample.Color{uint8(i), uint8(i / 2), 0}
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, GIF, 300, 1, colors))

	img, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 300, img.Samples.Len())
}

func TestToImage(t *testing.T) {
	img, err := ToImage(1, 2, []sample.Color{{1, 2, 3}, {4, 5, 6}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	assert.Equal(t, color.NRGBA{R: 4, G: 5, B: 6, A: 255}, img.NRGBAAt(0, 1))
}
