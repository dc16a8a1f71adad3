package services

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPrepareAvatar(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{name: "large landscape is shrunk", w: 1024, h: 512, wantW: 512, wantH: 256},
		{name: "small is kept", w: 64, h: 32, wantW: 64, wantH: 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := PrepareAvatar(pngBytes(t, tt.w, tt.h))
			require.NoError(t, err)

			cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
			require.NoError(t, err)
			assert.Equal(t, tt.wantW, cfg.Width)
			assert.Equal(t, tt.wantH, cfg.Height)
		})
	}
}

func TestPrepareAvatarRejectsNonImage(t *testing.T) {
	_, err := PrepareAvatar([]byte("%PDF-1.4 not an image"))
	assert.ErrorIs(t, err, ErrNotAnImage)
}
