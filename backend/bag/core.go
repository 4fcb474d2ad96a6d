package bag

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	unitRE *regexp.Regexp
	// ErrConversion signals an error in unit conversion
	ErrConversion = errors.New("conversion error")
)

func init() {
	unitRE = regexp.MustCompile("^(.*?)(mm|cm|in|pt|px|pc|m)$")
}

// Factor is the multiplier to get DTP points from scaled points.
const Factor ScaledPoint = 0xffff

const (
	ptPerInch = 72.0
	mmPerInch = 25.4
	pxPerInch = 96.0
)

// A ScaledPoint is a 65535th of a DTP point
type ScaledPoint int

func (s ScaledPoint) String() string {
	return strconv.FormatFloat(math.Round(s.ToPT()*1000)/1000, 'f', -1, 64)
}

// ToPT returns the unit as a float64 DTP point. 2 * 0xffff returns 2.0
func (s ScaledPoint) ToPT() float64 {
	return float64(s) / float64(Factor)
}

// ToMM returns the unit as millimeters.
func (s ScaledPoint) ToMM() float64 {
	return s.ToPT() / ptPerInch * mmPerInch
}

// FromPT converts DTP points to scaled points.
func FromPT(pt float64) ScaledPoint {
	return ScaledPoint(math.Round(pt * float64(Factor)))
}

// FromMM converts millimeters to scaled points.
func FromMM(mm float64) ScaledPoint {
	return FromPT(mm / mmPerInch * ptPerInch)
}

// Sp return the unit converted to ScaledPoint. Unit can be a string like "1cm"
// or "12.5in". The units which are interpreted are pt, in, mm, cm, m, px and
// pc. A (wrapped) ErrConversion is returned in case of an error.
func Sp(unit string) (ScaledPoint, error) {
	unit = strings.ToLower(strings.TrimSpace(unit))
	m := unitRE.FindAllStringSubmatch(unit, -1)
	if len(m) != 1 {
		return 0, fmt.Errorf("%w: cannot parse %q", ErrConversion, unit)
	}
	if len(m[0]) != 3 {
		return 0, fmt.Errorf("%w len(m[0]) %d", ErrConversion, len(m[0]))
	}

	l, err := strconv.ParseFloat(strings.TrimSpace(m[0][1]), 64)
	if err != nil {
		return 0, fmt.Errorf("%w parse float %s", ErrConversion, m[0][1])
	}

	switch m[0][2] {
	case "pt":
		return FromPT(l), nil
	case "in":
		return FromPT(l * ptPerInch), nil
	case "mm":
		return FromMM(l), nil
	case "cm":
		return FromMM(l * 10), nil
	case "m":
		return FromMM(l * 1000), nil
	case "px":
		// 1/96th of an inch
		return FromPT(l / pxPerInch * ptPerInch), nil
	case "pc":
		// pica, 12pt
		return FromPT(l * 12), nil
	default:
		return 0, ErrConversion
	}
}

// MustSp converts the unit to ScaledPoints. In case of an error, the function
// panics.
func MustSp(unit string) ScaledPoint {
	val, err := Sp(unit)
	if err != nil {
		LogError(err)
		panic(err)
	}
	return val
}
