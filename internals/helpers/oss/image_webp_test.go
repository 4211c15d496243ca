package oss

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/chai2010/webp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestConvertToWebPDownscales(t *testing.T) {
	out, err := ConvertToWebP(pngBytes(t, 1600, 800), "portrait.png", PhotoOptions)
	require.NoError(t, err)

	cfg, err := webp.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, 400, cfg.Height)
}

func TestConvertToWebPKeepsSmallImages(t *testing.T) {
	out, err := ConvertToWebP(pngBytes(t, 120, 90), "small.png", PhotoOptions)
	require.NoError(t, err)

	cfg, err := webp.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 120, cfg.Width)
	assert.Equal(t, 90, cfg.Height)
}

func TestConvertToWebPRejectsUnknown(t *testing.T) {
	_, err := ConvertToWebP([]byte("not an image at all"), "notes.txt", PhotoOptions)
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestBuildObjectKey(t *testing.T) {
	s := &Service{Prefix: "members", BucketName: "b", Endpoint: "https://oss-cn.example.com"}
	key := s.buildObjectKey("Jane Doe.webp", "photos")
	assert.Regexp(t, `^members/photos/jane-doe_\d{8}_\d{6}_[0-9a-f]{6}\.webp$`, key)
	assert.Equal(t, "https://b.oss-cn.example.com/"+key, s.PublicURL(key))
}
