package imaging

import (
	"bytes"
	"encoding/base64"
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
			img.Set(x, y, color.RGBA{R: 200, G: 30, B: 90, A: 255})
		}
	}
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf
}

func TestDataURL_ShrinksIntoBoundingBox(t *testing.T) {
	p := NewProcessorWithBounds(100, 50)

	url, err := p.DataURL(pngOf(t, 400, 100))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "data:image/jpeg;base64,"))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, "data:image/jpeg;base64,"))
	require.NoError(t, err)
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 25, cfg.Height)
}

func TestFit_DoesNotEnlarge(t *testing.T) {
	p := NewProcessor()

	out, err := p.Fit(pngOf(t, 20, 10))
	require.NoError(t, err)
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Width)
	assert.Equal(t, 10, cfg.Height)
}

func TestFit_RejectsNonImage(t *testing.T) {
	_, err := NewProcessor().Fit(strings.NewReader("not an image"))
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestFit_RejectsOversizedUpload(t *testing.T) {
	big := bytes.NewReader(make([]byte, MaxUploadBytes+10))
	_, err := NewProcessor().Fit(big)
	assert.ErrorIs(t, err, ErrImageTooLarge)
}
