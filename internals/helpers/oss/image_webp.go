// file: internals/helpers/oss/image_webp.go
package oss

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"golang.org/x/image/draw"
)

var ErrUnsupportedImage = errors.New("unsupported image format (use jpg/png/webp)")

/* =======================================================================
   WebP options
======================================================================= */

type WebPOptions struct {
	MaxW     int     // resize bound, keeps aspect
	MaxH     int     // resize bound
	Quality  float32 // lossy quality (1-100)
	Lossless bool
}

// PhotoOptions suits member portraits.
var PhotoOptions = WebPOptions{MaxW: 800, MaxH: 800, Quality: 80}

/* =======================================================================
   Decode (jpeg/png/webp) with MIME sniffing
======================================================================= */

func decodeImage(all []byte, filename string) (image.Image, error) {
	if len(all) == 0 {
		return nil, fmt.Errorf("empty file")
	}
	head := all
	if len(head) > 512 {
		head = head[:512]
	}
	ct := http.DetectContentType(head)

	switch {
	case strings.Contains(ct, "jpeg"):
		return jpeg.Decode(bytes.NewReader(all))
	case strings.Contains(ct, "png"):
		return png.Decode(bytes.NewReader(all))
	case strings.Contains(ct, "webp"):
		return webp.Decode(bytes.NewReader(all))
	}

	// fallback by extension
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return jpeg.Decode(bytes.NewReader(all))
	case ".png":
		return png.Decode(bytes.NewReader(all))
	case ".webp":
		return webp.Decode(bytes.NewReader(all))
	default:
		return nil, ErrUnsupportedImage
	}
}

/* =======================================================================
   Resize (keep aspect, CatmullRom)
======================================================================= */

func downscaleIfNeeded(src image.Image, maxW, maxH int) image.Image {
	if maxW <= 0 && maxH <= 0 {
		return src
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if (maxW <= 0 || w <= maxW) && (maxH <= 0 || h <= maxH) {
		return src
	}

	scale := 1.0
	if maxW > 0 {
		scale = math.Min(scale, float64(maxW)/float64(w))
	}
	if maxH > 0 {
		scale = math.Min(scale, float64(maxH)/float64(h))
	}
	nw := max(int(math.Round(float64(w)*scale)), 1)
	nh := max(int(math.Round(float64(h)*scale)), 1)

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

// ConvertToWebP: decode → resize → encode.
func ConvertToWebP(data []byte, filename string, opt WebPOptions) ([]byte, error) {
	img, err := decodeImage(data, filename)
	if err != nil {
		return nil, err
	}
	img = downscaleIfNeeded(img, opt.MaxW, opt.MaxH)

	q := opt.Quality
	if q <= 0 {
		q = 80
	}
	buf := new(bytes.Buffer)
	if err := webp.Encode(buf, img, &webp.Options{Lossless: opt.Lossless, Quality: q}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
