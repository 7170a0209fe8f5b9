package report

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/palette"
	"github.com/hupe1980/palette/codec"
	"github.com/hupe1980/palette/sample"
)

func fit(t *testing.T, k int, colors []sample.Color) *palette.Result {
	t.Helper()
	eng, err := palette.New(k)
	require.NoError(t, err)
	res, err := eng.Fit(context.Background(), sample.FromColors(colors))
	require.NoError(t, err)
	return res
}

func TestBuild(t *testing.T) {
	res := fit(t, 2, []sample.Color{{255, 0, 0}, {255, 0, 0}, {255, 0, 0}, {0, 0, 255}})

	r := Build(res)
	require.Len(t, r.Clusters, 2)
	assert.True(t, r.Converged)

	dom := r.Dominant()
	assert.Equal(t, "#ff0000", dom[0].Hex)
	assert.Equal(t, 3, dom[0].Pixels)
	assert.InDelta(t, 0.75, dom[0].Share, 1e-12)
	assert.Equal(t, "#0000ff", dom[1].Hex)
	assert.Greater(t, dom[0].Lightness, 0.0)
}

func TestFromPalette(t *testing.T) {
	r := FromPalette([]sample.Color{{0, 0, 0}, {255, 255, 255}}, []int{1, 1, 0, 1})

	assert.Equal(t, 1, r.Clusters[0].Pixels)
	assert.Equal(t, 3, r.Clusters[1].Pixels)
	assert.Equal(t, "#ffffff", r.Dominant()[0].Hex)
	assert.InDelta(t, 1.0, r.Clusters[1].Lightness, 1e-3)
}

func TestEncode(t *testing.T) {
	res := fit(t, 1, []sample.Color{{16, 32, 48}})
	r := Build(res)
	r.Name = "tiny.png"

	var buf bytes.Buffer
	require.NoError(t, r.Encode(&buf, codec.JSON{}))

	var back Report
	require.NoError(t, codec.GoJSON{}.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, "tiny.png", back.Name)
	assert.Equal(t, "#102030", back.Clusters[0].Hex)
	assert.Equal(t, sample.Color{16, 32, 48}, back.Clusters[0].RGB)
}

func TestWriteText(t *testing.T) {
	r := FromPalette([]sample.Color{{1, 2, 3}}, []int{0, 0})

	var buf bytes.Buffer
	require.NoError(t, r.WriteText(&buf))
	line := buf.String()
	assert.True(t, strings.Contains(line, "#010203"))
	assert.Contains(t, line, "100.00%")
}
