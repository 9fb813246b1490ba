package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngOf(t *testing.T, w, h int) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &buf
}

func TestDownscale_ShrinksWideImages(t *testing.T) {
	res, err := Downscale(pngOf(t, 1600, 900), Options{MaxWidth: 800, Quality: 50})
	require.NoError(t, err)

	assert.Equal(t, 800, res.Width)
	assert.Equal(t, 450, res.Height)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(res.Data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, 450, cfg.Height)
}

func TestDownscale_KeepsNarrowImages(t *testing.T) {
	res, err := Downscale(pngOf(t, 320, 200), Options{MaxWidth: 800, Quality: 0})
	require.NoError(t, err)

	assert.Equal(t, 320, res.Width)
	assert.Equal(t, 200, res.Height)
	_, err = jpeg.Decode(bytes.NewReader(res.Data))
	assert.NoError(t, err)
}

func TestDownscale_RejectsNonImages(t *testing.T) {
	_, err := Downscale(strings.NewReader("%PDF-1.4"), Options{MaxWidth: 800, Quality: 50})
	assert.Error(t, err)
}
