package media

import (
	"bytes"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

const (
	maxImageWidth  = 800
	maxImageHeight = 600
	maxProfileSide = 400
	jpegQuality    = 90
	// plain saves keep the lighter recompression of the basic upload route
	plainQuality = 85
)

// EnhanceImage flattens data onto white, shrinks it to fit 800x600 and
// re-encodes it as JPEG. Input that cannot be processed is returned unchanged.
func EnhanceImage(data []byte) []byte {
	out, err := enhanceImage(data, maxImageWidth, maxImageHeight, jpegQuality)
	if err != nil {
		return data
	}
	return out
}

func enhanceImage(data []byte, maxW, maxH, quality int) ([]byte, error) {
	src, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	b := src.Bounds()
	flat := imaging.New(b.Dx(), b.Dy(), color.White)
	flat = imaging.Overlay(flat, src, image.Pt(0, 0), 1.0)

	// Fit never upscales.
	fitted := imaging.Fit(flat, maxW, maxH, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, fitted, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
