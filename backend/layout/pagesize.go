// Package layout computes where an image is placed on a page. All lengths
// are millimeters, the origin is the top left corner of the page.
package layout

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownValue is returned when a setting is not a member of its
// enumeration.
var ErrUnknownValue = errors.New("unknown value")

// PageSize is a named paper format.
type PageSize int

const (
	// A4 is 210 × 297 mm.
	A4 PageSize = iota
	// A3 is 297 × 420 mm.
	A3
	// A5 is 148 × 210 mm.
	A5
	// Letter is 8.5 × 11 in.
	Letter
	// Legal is 8.5 × 14 in.
	Legal
)

// canonical width and height in mm, width < height.
var pageSizes = map[PageSize][2]float64{
	A4:     {210, 297},
	A3:     {297, 420},
	A5:     {148, 210},
	Letter: {215.9, 279.4},
	Legal:  {215.9, 355.6},
}

var pageSizeNames = map[PageSize]string{
	A4:     "A4",
	A3:     "A3",
	A5:     "A5",
	Letter: "Letter",
	Legal:  "Legal",
}

func (ps PageSize) String() string {
	if n, ok := pageSizeNames[ps]; ok {
		return n
	}
	return fmt.Sprintf("PageSize(%d)", int(ps))
}

// Valid reports whether ps is one of the known paper formats.
func (ps PageSize) Valid() bool {
	_, ok := pageSizes[ps]
	return ok
}

// Dimensions returns the width and height in portrait orientation.
func (ps PageSize) Dimensions() (float64, float64) {
	wh, ok := pageSizes[ps]
	if !ok {
		panic(fmt.Sprintf("layout: unknown page size %d", int(ps)))
	}
	return wh[0], wh[1]
}

// ParsePageSize returns the page size for names like "a4" or "Letter".
func ParsePageSize(s string) (PageSize, error) {
	for ps, name := range pageSizeNames {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return ps, nil
		}
	}
	return A4, fmt.Errorf("%w: page size %q", ErrUnknownValue, s)
}

// Orientation swaps the page dimensions for landscape.
type Orientation int

const (
	// Portrait keeps the canonical width and height.
	Portrait Orientation = iota
	// Landscape swaps width and height.
	Landscape
)

func (o Orientation) String() string {
	switch o {
	case Portrait:
		return "portrait"
	case Landscape:
		return "landscape"
	}
	return fmt.Sprintf("Orientation(%d)", int(o))
}

// Valid reports whether o is portrait or landscape.
func (o Orientation) Valid() bool {
	return o == Portrait || o == Landscape
}

// ParseOrientation parses "portrait" or "landscape".
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "portrait":
		return Portrait, nil
	case "landscape":
		return Landscape, nil
	}
	return Portrait, fmt.Errorf("%w: orientation %q", ErrUnknownValue, s)
}

// PageDimensions returns the page width and height in mm for the paper
// format in the given orientation.
func PageDimensions(ps PageSize, o Orientation) (float64, float64) {
	w, h := ps.Dimensions()
	if o == Landscape {
		return h, w
	}
	return w, h
}

// Quality selects the compression of the embedded images. It has no
// influence on the layout.
type Quality int

const (
	// High is the least compressed output.
	High Quality = iota
	// Medium is a compromise between file size and image quality.
	Medium
	// Low creates small files.
	Low
)

func (q Quality) String() string {
	switch q {
	case High:
		return "high"
	case Medium:
		return "medium"
	case Low:
		return "low"
	}
	return fmt.Sprintf("Quality(%d)", int(q))
}

// Valid reports whether q is a known quality.
func (q Quality) Valid() bool {
	return q >= High && q <= Low
}

// ParseQuality parses "high", "medium" or "low".
func ParseQuality(s string) (Quality, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return High, nil
	case "medium":
		return Medium, nil
	case "low":
		return Low, nil
	}
	return High, fmt.Errorf("%w: quality %q", ErrUnknownValue, s)
}
