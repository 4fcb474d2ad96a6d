package frontend

import (
	"errors"
	"fmt"

	"github.com/boxesandglue/img2pdf/backend/layout"
)

// Settings is the snapshot of the user's choices for one conversion run.
type Settings struct {
	PageSize    layout.PageSize
	Orientation layout.Orientation
	Scaling     layout.Scaling
	Quality     layout.Quality
}

// DefaultSettings returns A4 portrait pages with images fitted at high
// quality.
func DefaultSettings() Settings {
	return Settings{
		PageSize:    layout.A4,
		Orientation: layout.Portrait,
		Scaling:     layout.Fit,
		Quality:     layout.High,
	}
}

// Validate checks that every field is a member of its enumeration.
func (s Settings) Validate() error {
	var errs []error
	if !s.PageSize.Valid() {
		errs = append(errs, fmt.Errorf("%w: page size %d", layout.ErrUnknownValue, int(s.PageSize)))
	}
	if !s.Orientation.Valid() {
		errs = append(errs, fmt.Errorf("%w: orientation %d", layout.ErrUnknownValue, int(s.Orientation)))
	}
	if !s.Scaling.Valid() {
		errs = append(errs, fmt.Errorf("%w: scaling %d", layout.ErrUnknownValue, int(s.Scaling)))
	}
	if !s.Quality.Valid() {
		errs = append(errs, fmt.Errorf("%w: quality %d", layout.ErrUnknownValue, int(s.Quality)))
	}
	return errors.Join(errs...)
}

// PageDimensions returns the width and height of every page in mm.
func (s Settings) PageDimensions() (float64, float64) {
	return layout.PageDimensions(s.PageSize, s.Orientation)
}

func (s Settings) String() string {
	return fmt.Sprintf("%s %s, %s, %s quality", s.PageSize, s.Orientation, s.Scaling, s.Quality)
}

// ParseSettings creates settings from their names such as "a4", "landscape",
// "fit" and "low". Empty strings keep the default value.
func ParseSettings(pagesize, orientation, scaling, quality string) (Settings, error) {
	s := DefaultSettings()
	var err error
	if pagesize != "" {
		if s.PageSize, err = layout.ParsePageSize(pagesize); err != nil {
			return s, err
		}
	}
	if orientation != "" {
		if s.Orientation, err = layout.ParseOrientation(orientation); err != nil {
			return s, err
		}
	}
	if scaling != "" {
		if s.Scaling, err = layout.ParseScaling(scaling); err != nil {
			return s, err
		}
	}
	if quality != "" {
		if s.Quality, err = layout.ParseQuality(quality); err != nil {
			return s, err
		}
	}
	return s, nil
}
