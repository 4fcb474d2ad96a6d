package image

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/boxesandglue/img2pdf/backend/layout"
	"github.com/disintegration/imaging"
)

// jpegQuality is the encoder quality for each output quality.
var jpegQuality = map[layout.Quality]int{
	layout.High:   92,
	layout.Medium: 75,
	layout.Low:    50,
}

// maxEdge limits the longest side in pixels of the embedded image, 0 means
// no limit.
var maxEdge = map[layout.Quality]int{
	layout.Low: 1600,
}

// Encoded is the JPEG data of an image as it is embedded in the PDF.
type Encoded struct {
	Data []byte
	// Width and Height are the pixel dimensions of Data. These can be smaller
	// than the dimensions of the source image.
	Width  int
	Height int
	// Passthrough is true if Data are the unchanged source bytes.
	Passthrough bool
}

// Encode returns the JPEG data for the decoded image. JPEG sources are taken
// without recompression at high quality unless they had to be turned by their
// EXIF orientation. Transparent images are put on a white background.
func Encode(d *Decoded, q layout.Quality) (*Encoded, error) {
	if !q.Valid() {
		return nil, fmt.Errorf("encode %s: invalid quality %d", d.Source, int(q))
	}
	if q == layout.High && d.Format == "jpeg" && !d.Oriented && passthroughColor(d.Image) {
		return &Encoded{
			Data:        d.Source.Data,
			Width:       d.Width,
			Height:      d.Height,
			Passthrough: true,
		}, nil
	}
	img := d.Image
	if !opaque(img) {
		bg := imaging.New(d.Width, d.Height, color.White)
		img = imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
	}
	if limit := maxEdge[q]; limit > 0 && (d.Width > limit || d.Height > limit) {
		img = imaging.Fit(img, limit, limit, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality[q])); err != nil {
		return nil, fmt.Errorf("encode %s: %w", d.Source, err)
	}
	b := img.Bounds()
	return &Encoded{
		Data:   buf.Bytes(),
		Width:  b.Dx(),
		Height: b.Dy(),
	}, nil
}

// passthroughColor reports whether the decoded JPEG uses a color model that
// is embedded unchanged.
func passthroughColor(img image.Image) bool {
	switch img.(type) {
	case *image.YCbCr, *image.Gray:
		return true
	}
	return false
}

func opaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	return false
}
