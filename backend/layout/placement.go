package layout

import (
	"fmt"
	"math"
	"strings"
)

// PixelToMM is the size of a pixel at 96 DPI in millimeters.
const PixelToMM = 0.264583

// Scaling determines how the pixel dimensions of an image map to the page.
type Scaling int

const (
	// Fit keeps the aspect ratio and makes the image as large as the page
	// allows.
	Fit Scaling = iota
	// Fill stretches the image to cover the whole page.
	Fill
	// Original uses the size of the image at 96 DPI and shrinks it only if
	// it does not fit on the page.
	Original
)

func (s Scaling) String() string {
	switch s {
	case Fit:
		return "fit"
	case Fill:
		return "fill"
	case Original:
		return "original"
	}
	return fmt.Sprintf("Scaling(%d)", int(s))
}

// Valid reports whether s is a known scaling policy.
func (s Scaling) Valid() bool {
	return s >= Fit && s <= Original
}

// ParseScaling parses "fit", "fill" or "original".
func ParseScaling(s string) (Scaling, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fit":
		return Fit, nil
	case "fill":
		return Fill, nil
	case "original":
		return Original, nil
	}
	return Fit, fmt.Errorf("%w: scaling %q", ErrUnknownValue, s)
}

// Placement is the position and size of an image on a page. X and Y are the
// distance of the top left corner of the image to the top left corner of the
// page.
type Placement struct {
	Width  float64
	Height float64
	X      float64
	Y      float64
}

func (p Placement) String() string {
	return fmt.Sprintf("%.3fmm×%.3fmm at (%.3f,%.3f)", p.Width, p.Height, p.X, p.Y)
}

// Fits reports whether the placement lies within a page of the given size,
// allowing eps for rounding.
func (p Placement) Fits(pageWidth, pageHeight, eps float64) bool {
	for _, v := range []float64{p.Width, p.Height, p.X, p.Y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return p.Width >= 0 && p.Height >= 0 &&
		p.X >= -eps && p.Y >= -eps &&
		p.X+p.Width <= pageWidth+eps &&
		p.Y+p.Height <= pageHeight+eps
}

// ComputePlacement returns the size and position of an image with the pixel
// dimensions imgWidth × imgHeight on a page of pageWidth × pageHeight mm.
// All arguments must be positive, ComputePlacement panics otherwise.
//
// With Original, an image wider than the page is scaled down to the page
// width first and then, if it is still too high, to the page height. The two
// corrections are applied one after the other, not as a joint minimum.
func ComputePlacement(imgWidth, imgHeight int, pageWidth, pageHeight float64, scaling Scaling) Placement {
	if imgWidth <= 0 || imgHeight <= 0 {
		panic(fmt.Sprintf("layout: image dimensions must be positive, got %d×%d", imgWidth, imgHeight))
	}
	if !(pageWidth > 0) || !(pageHeight > 0) {
		panic(fmt.Sprintf("layout: page dimensions must be positive, got %g×%g", pageWidth, pageHeight))
	}
	var wd, ht float64
	switch scaling {
	case Fit:
		imgAR := float64(imgWidth) / float64(imgHeight)
		pageAR := pageWidth / pageHeight
		if imgAR > pageAR {
			wd = pageWidth
			ht = pageWidth / imgAR
		} else {
			ht = pageHeight
			wd = pageHeight * imgAR
		}
	case Fill:
		return Placement{Width: pageWidth, Height: pageHeight}
	case Original:
		wd = float64(imgWidth) * PixelToMM
		ht = float64(imgHeight) * PixelToMM
		if wd > pageWidth {
			ratio := pageWidth / wd
			wd = pageWidth
			ht *= ratio
		}
		if ht > pageHeight {
			ratio := pageHeight / ht
			ht = pageHeight
			wd *= ratio
		}
	default:
		panic(fmt.Sprintf("layout: unknown scaling %d", int(scaling)))
	}
	return Placement{
		Width:  wd,
		Height: ht,
		X:      (pageWidth - wd) / 2,
		Y:      (pageHeight - ht) / 2,
	}
}
