// Package image holds the source images of a conversion and prepares them for
// embedding in the PDF.
package image

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"

	// registered for image.Decode
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrDecode signals that the bytes of an image could not be turned into
// pixels.
var ErrDecode = errors.New("cannot decode image")

// AcceptedTypes lists the MIME types that can be converted.
var AcceptedTypes = []string{"image/jpeg", "image/png", "image/gif", "image/bmp", "image/webp"}

// SourceImage is an encoded image supplied by the caller. It must not be
// changed while a conversion runs.
type SourceImage struct {
	ID   uuid.UUID
	Name string
	MIME string
	Data []byte
}

// New returns a source image with a fresh ID.
func New(name, mime string, data []byte) SourceImage {
	return SourceImage{
		ID:   uuid.New(),
		Name: name,
		MIME: mime,
		Data: data,
	}
}

func (si SourceImage) String() string {
	if si.Name != "" {
		return si.Name
	}
	return si.ID.String()
}

// Accepted reports whether the MIME type can be converted. An empty MIME type
// is accepted, the format is then detected from the data.
func Accepted(mime string) bool {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	if mime == "" {
		return true
	}
	if mime == "image/jpg" || mime == "image/x-ms-bmp" {
		return true
	}
	for _, t := range AcceptedTypes {
		if t == mime {
			return true
		}
	}
	return false
}

// Decoded is a source image with its pixels as they are displayed: JPEG
// images are turned according to their EXIF orientation and GIF images have
// the size of their logical screen.
type Decoded struct {
	Source SourceImage
	Image  image.Image
	// Format is the name of the decoder, such as "jpeg" or "webp".
	Format string
	Width  int
	Height int
	// Oriented is true if the pixels were rotated or flipped because of the
	// EXIF orientation.
	Oriented bool
}

// Decode decodes the source image. All errors wrap ErrDecode.
func Decode(si SourceImage) (*Decoded, error) {
	if !Accepted(si.MIME) {
		return nil, fmt.Errorf("%w %s: unsupported type %q", ErrDecode, si, si.MIME)
	}
	if len(si.Data) == 0 {
		return nil, fmt.Errorf("%w %s: no data", ErrDecode, si)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(si.Data))
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrDecode, si, err)
	}
	img, err := imaging.Decode(bytes.NewReader(si.Data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrDecode, si, err)
	}
	oriented := false
	if format == "jpeg" {
		// the JPEG decoder never returns NRGBA, imaging does when it applies
		// the orientation
		_, oriented = img.(*image.NRGBA)
	}
	b := img.Bounds()
	if format == "gif" && cfg.Width > 0 && cfg.Height > 0 && (b.Min != image.Point{} || b.Dx() != cfg.Width || b.Dy() != cfg.Height) {
		canvas := imaging.New(cfg.Width, cfg.Height, color.Transparent)
		img = imaging.Paste(canvas, img, b.Min)
		b = img.Bounds()
	}
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w %s: image has no pixels", ErrDecode, si)
	}
	return &Decoded{
		Source:   si,
		Image:    img,
		Format:   format,
		Width:    b.Dx(),
		Height:   b.Dy(),
		Oriented: oriented,
	}, nil
}
