// Package frontend turns a sequence of images into a PDF with one image per
// page.
package frontend

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/boxesandglue/img2pdf/backend/bag"
	"github.com/boxesandglue/img2pdf/backend/document"
	"github.com/boxesandglue/img2pdf/backend/image"
	"github.com/boxesandglue/img2pdf/backend/layout"
	"go.uber.org/zap"
)

// progressImages is the share of the progress for processing the images, the
// rest is for writing the PDF.
const progressImages = 90.0

// encodeImage prepares a decoded image for embedding.
var encodeImage = image.Encode

// Converter creates PDF documents from images. A converter runs one
// conversion at a time.
type Converter struct {
	// OnProgress is called in the goroutine of Convert each time the
	// progress of the run increases.
	OnProgress func(Progress)
	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time
	// Title, Author and Creator go into the document information.
	Title   string
	Author  string
	Creator string
	// Trace draws a frame around every image.
	Trace bool

	mu      sync.Mutex
	running bool
	last    *Run
}

// New creates a converter.
func New() *Converter {
	return &Converter{
		Creator: "img2pdf",
	}
}

func (c *Converter) now() time.Time {
	if c.Clock != nil {
		return c.Clock()
	}
	return time.Now()
}

// Running reports whether a conversion is in progress.
func (c *Converter) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Last returns the most recent run or nil.
func (c *Converter) Last() *Run {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Reset drops the last run and its PDF so that the next conversion starts
// from scratch.
func (c *Converter) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return ErrBusy
	}
	if c.last != nil {
		c.last.Release()
		c.last = nil
	}
	return nil
}

// Convert places the images in the given order on the pages of a new PDF,
// one image per page. The images are processed one after the other. The
// first error stops the conversion, the run is then in state Failed and has
// no result. ctx is checked before each image.
//
// For invalid settings, an empty image list or while another conversion is
// running, Convert returns a nil run.
func (c *Converter) Convert(ctx context.Context, images []image.SourceImage, s Settings) (*Run, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, ErrNoImages
	}
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	c.running = true
	run := newRun(s, len(images))
	c.last = run
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	log := bag.LogWithFields(bag.Fields{"run": run.ID.String()})
	run.start(c.now())
	log.Infow("Start conversion", "images", len(images), "settings", s.String())

	data, err := c.convert(ctx, run, images, log)
	if err != nil {
		run.fail(c.now(), err)
		log.Errorw("Conversion failed", "error", err)
		return run, err
	}
	c.report(run, 100, len(images))
	run.complete(c.now(), data)
	log.Infow("Conversion complete", "pages", run.Pages(), "bytes", len(data), "filename", run.Filename(), "duration", run.Duration())
	return run, nil
}

func (c *Converter) convert(ctx context.Context, run *Run, images []image.SourceImage, log *zap.SugaredLogger) ([]byte, error) {
	var buf bytes.Buffer
	d := document.NewDocument(&buf)
	d.Title = c.Title
	d.Author = c.Author
	d.Creator = c.Creator
	d.CreationDate = c.now()
	if c.Trace {
		d.SetVTrace(document.VTraceImages)
	}
	wd, ht := run.Settings.PageDimensions()
	d.DefaultPageWidth = bag.FromMM(wd)
	d.DefaultPageHeight = bag.FromMM(ht)

	total := len(images)
	pg := d.NewPage()
	for i, si := range images {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("conversion cancelled before image %d: %w", i+1, err)
		}
		dec, err := image.Decode(si)
		if err != nil {
			return nil, &ConversionError{Kind: DecodeError, Index: i, ImageID: si.ID, Err: err}
		}
		if i > 0 {
			pg = d.NewPage()
		}
		pl, err := embed(d, pg, dec, run.Settings)
		if err != nil {
			return nil, &ConversionError{Kind: EmbedError, Index: i, ImageID: si.ID, Err: err}
		}
		log.Debugw("Image placed", "image", i+1, "name", si.String(), "format", dec.Format, "pixels", fmt.Sprintf("%d×%d", dec.Width, dec.Height), "placement", pl.String())
		c.report(run, float64(i+1)*progressImages/float64(total), i+1)
	}
	if err := d.Finish(); err != nil {
		return nil, &ConversionError{Kind: SerializationError, Index: -1, Err: err}
	}
	return buf.Bytes(), nil
}

// embed puts the decoded image on the page and ships out the page. The
// placement is computed from the intrinsic pixel size, the quality only
// affects the embedded data.
func embed(d *document.PDFDocument, pg *document.Page, dec *image.Decoded, s Settings) (layout.Placement, error) {
	enc, err := encodeImage(dec, s.Quality)
	if err != nil {
		return layout.Placement{}, err
	}
	imgf, err := d.LoadJPEG(enc.Data)
	if err != nil {
		return layout.Placement{}, err
	}
	wd, ht := s.PageDimensions()
	pl := layout.ComputePlacement(dec.Width, dec.Height, wd, ht, s.Scaling)
	if err = pg.PlaceImage(imgf, pl); err != nil {
		return pl, err
	}
	return pl, pg.Shipout()
}

func (c *Converter) report(run *Run, pct float64, done int) {
	if !run.setProgress(pct, done) {
		return
	}
	if c.OnProgress != nil {
		c.OnProgress(Progress{RunID: run.ID, Percent: pct, Image: done, Total: run.Total})
	}
}
