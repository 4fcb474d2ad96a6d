package frontend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	stdimage "image"
	"image/color"
	"image/png"
	"io"
	"math"
	"testing"
	"time"

	"github.com/boxesandglue/img2pdf/backend/bag"
	"github.com/boxesandglue/img2pdf/backend/image"
	"github.com/boxesandglue/img2pdf/backend/layout"
	"github.com/google/go-cmp/cmp"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func pngImage(t *testing.T, name string, w, h int) image.SourceImage {
	t.Helper()
	img := stdimage.NewRGBA(stdimage.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0x40, A: 0xff})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return image.New(name, "image/png", buf.Bytes())
}

func readPDF(t *testing.T, data []byte) *pdf.Reader {
	t.Helper()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("cannot read generated PDF: %v", err)
	}
	return r
}

func ptToMM(pt float64) float64 {
	return pt / 72 * 25.4
}

// pagePlacement returns the image name and its placement in mm with the origin
// in the top left corner.
func pagePlacement(t *testing.T, p pdf.Page) (string, layout.Placement) {
	t.Helper()
	rc := p.V.Key("Contents").Reader()
	defer rc.Close()
	content, err := io.ReadAll(rc)
	if err != nil {
		t.Fatal(err)
	}
	var wd, ht, x, y float64
	var name string
	if _, err = fmt.Sscanf(string(content), "q %g 0 0 %g %g %g cm %s Do Q", &wd, &ht, &x, &y, &name); err != nil {
		t.Fatalf("cannot parse content stream %q: %v", content, err)
	}
	pageHt := p.V.Key("MediaBox").Index(3).Float64()
	return name, layout.Placement{
		Width:  ptToMM(wd),
		Height: ptToMM(ht),
		X:      ptToMM(x),
		Y:      ptToMM(pageHt - y - ht),
	}
}

func TestConvertThreeImages(t *testing.T) {
	images := []image.SourceImage{
		pngImage(t, "wide.png", 800, 600),
		pngImage(t, "tall.png", 600, 800),
		pngImage(t, "square.png", 1000, 1000),
	}
	var progress []float64
	c := New()
	c.Clock = func() time.Time { return time.UnixMilli(1700000000123) }
	c.OnProgress = func(p Progress) {
		progress = append(progress, p.Percent)
		if p.Total != 3 {
			t.Errorf("p.Total = %d, want 3", p.Total)
		}
	}
	run, err := c.Convert(context.Background(), images, DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]float64{30, 60, 90, 100}, progress); diff != "" {
		t.Errorf("progress mismatch (-want +got):\n%s", diff)
	}
	if got := run.State(); got != Complete {
		t.Errorf("run.State() = %s, want complete", got)
	}
	if got := run.Progress(); got != 100 {
		t.Errorf("run.Progress() = %g, want 100", got)
	}
	if got, want := run.Filename(), "converted-images-1700000000123.pdf"; got != want {
		t.Errorf("run.Filename() = %s, want %s", got, want)
	}
	if c.Last() != run {
		t.Error("c.Last() is not the run")
	}

	r := readPDF(t, run.Result())
	if got := r.NumPage(); got != 3 {
		t.Fatalf("r.NumPage() = %d, want 3", got)
	}
	for i, want := range []int64{800, 600, 1000} {
		p := r.Page(i + 1)
		mb := p.V.Key("MediaBox")
		if wd, ht := ptToMM(mb.Index(2).Float64()), ptToMM(mb.Index(3).Float64()); math.Abs(wd-210) > 0.01 || math.Abs(ht-297) > 0.01 {
			t.Errorf("page %d is %g×%g mm, want 210×297", i+1, wd, ht)
		}
		name, pl := pagePlacement(t, p)
		if name != fmt.Sprintf("/ImgBag%d", i+1) {
			t.Errorf("page %d shows %s", i+1, name)
		}
		xobj := p.V.Key("Resources").Key("XObject").Key(name[1:])
		if got := xobj.Key("Width").Int64(); got != want {
			t.Errorf("page %d image width = %d, want %d", i+1, got, want)
		}
		if !pl.Fits(210, 297, 0.01) {
			t.Errorf("page %d: placement %s exceeds the page", i+1, pl)
		}
		imgAR := float64(want) / float64(xobj.Key("Height").Int64())
		if got := pl.Width / pl.Height; math.Abs(got-imgAR) > 1e-3 {
			t.Errorf("page %d: aspect ratio %g, want %g", i+1, got, imgAR)
		}
	}
}

func TestConvertLandscapeOriginal(t *testing.T) {
	c := New()
	s := Settings{PageSize: layout.A5, Orientation: layout.Landscape, Scaling: layout.Original, Quality: layout.Low}
	run, err := c.Convert(context.Background(), []image.SourceImage{pngImage(t, "small.png", 100, 50)}, s)
	if err != nil {
		t.Fatal(err)
	}
	r := readPDF(t, run.Result())
	p := r.Page(1)
	mb := p.V.Key("MediaBox")
	if wd, ht := ptToMM(mb.Index(2).Float64()), ptToMM(mb.Index(3).Float64()); math.Abs(wd-210) > 0.01 || math.Abs(ht-148) > 0.01 {
		t.Errorf("page is %g×%g mm, want 210×148", wd, ht)
	}
	_, pl := pagePlacement(t, p)
	want := layout.ComputePlacement(100, 50, 210, 148, layout.Original)
	for _, v := range [][2]float64{{pl.Width, want.Width}, {pl.Height, want.Height}, {pl.X, want.X}, {pl.Y, want.Y}} {
		if math.Abs(v[0]-v[1]) > 0.01 {
			t.Errorf("placement = %s, want %s", pl, want)
			break
		}
	}
}

func TestConvertDecodeError(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	bag.SetLogger(zap.New(core))
	defer bag.SetLogger(nil)

	corruptImage := image.New("broken.jpg", "image/jpeg", []byte("\xff\xd8 not really a jpeg"))
	images := []image.SourceImage{
		pngImage(t, "a.png", 40, 30),
		corruptImage,
		pngImage(t, "c.png", 30, 40),
	}
	var progress []float64
	c := New()
	c.OnProgress = func(p Progress) { progress = append(progress, p.Percent) }
	run, err := c.Convert(context.Background(), images, DefaultSettings())
	if err == nil {
		t.Fatal("Convert with a corrupt image should fail")
	}
	if !errors.Is(err, ErrDecode) {
		t.Errorf("error = %v, want ErrDecode", err)
	}
	if errors.Is(err, ErrEmbed) || errors.Is(err, ErrSerialization) {
		t.Errorf("error %v matches the wrong kind", err)
	}
	var cerr *ConversionError
	if !errors.As(err, &cerr) {
		t.Fatalf("error %T is not a *ConversionError", err)
	}
	if cerr.Kind != DecodeError || cerr.Index != 1 || cerr.ImageID != corruptImage.ID {
		t.Errorf("ConversionError = %+v", cerr)
	}
	if got := run.State(); got != Failed {
		t.Errorf("run.State() = %s, want failed", got)
	}
	if run.Result() != nil || run.Filename() != "" {
		t.Error("failed run has a result")
	}
	if !errors.Is(run.Err(), ErrDecode) {
		t.Errorf("run.Err() = %v", run.Err())
	}
	if got := run.Pages(); got != 1 {
		t.Errorf("run.Pages() = %d, want 1", got)
	}
	if diff := cmp.Diff([]float64{30}, progress); diff != "" {
		t.Errorf("progress mismatch (-want +got):\n%s", diff)
	}
	if got := logs.FilterMessage("Conversion failed").Len(); got != 1 {
		t.Errorf("%d error log entries, want 1", got)
	}
	if c.Running() {
		t.Error("converter still running after failure")
	}
}

func TestConvertEmbedError(t *testing.T) {
	errNoEncoder := errors.New("no encoder")
	defer func(enc func(*image.Decoded, layout.Quality) (*image.Encoded, error)) { encodeImage = enc }(encodeImage)
	calls := 0
	encodeImage = func(d *image.Decoded, q layout.Quality) (*image.Encoded, error) {
		calls++
		if calls == 2 {
			return nil, errNoEncoder
		}
		return image.Encode(d, q)
	}

	images := []image.SourceImage{
		pngImage(t, "a.png", 8, 6),
		pngImage(t, "b.png", 6, 8),
		pngImage(t, "c.png", 8, 8),
	}
	c := New()
	run, err := c.Convert(context.Background(), images, DefaultSettings())
	if !errors.Is(err, ErrEmbed) || !errors.Is(err, errNoEncoder) {
		t.Fatalf("error = %v, want ErrEmbed caused by %v", err, errNoEncoder)
	}
	if errors.Is(err, ErrDecode) {
		t.Errorf("%v matches ErrDecode", err)
	}
	var cerr *ConversionError
	if !errors.As(err, &cerr) || cerr.Kind != EmbedError || cerr.Index != 1 || cerr.ImageID != images[1].ID {
		t.Errorf("ConversionError = %+v", cerr)
	}
	if run.State() != Failed || run.Result() != nil || run.Pages() != 1 {
		t.Errorf("run state %s with %d pages, want failed with 1 and no result", run.State(), run.Pages())
	}
	if calls != 2 {
		t.Errorf("encoder called %d times, want 2", calls)
	}
}

func TestConvertBusy(t *testing.T) {
	c := New()
	var nested error
	c.OnProgress = func(p Progress) {
		if p.Image == 1 {
			_, nested = c.Convert(context.Background(), []image.SourceImage{pngImage(t, "x.png", 2, 2)}, DefaultSettings())
			if err := c.Reset(); !errors.Is(err, ErrBusy) {
				t.Errorf("Reset() while running error = %v, want ErrBusy", err)
			}
		}
	}
	run, err := c.Convert(context.Background(), []image.SourceImage{pngImage(t, "a.png", 4, 4), pngImage(t, "b.png", 4, 4)}, DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}
	if !errors.Is(nested, ErrBusy) {
		t.Errorf("nested Convert error = %v, want ErrBusy", nested)
	}
	if c.Last() != run {
		t.Error("nested Convert replaced the last run")
	}
}

func TestConvertCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c := New()
	c.OnProgress = func(p Progress) {
		if p.Image == 1 {
			cancel()
		}
	}
	images := []image.SourceImage{pngImage(t, "a.png", 4, 4), pngImage(t, "b.png", 4, 4), pngImage(t, "c.png", 4, 4)}
	run, err := c.Convert(ctx, images, DefaultSettings())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if run.State() != Failed || run.Pages() != 1 {
		t.Errorf("run state %s with %d pages, want failed with 1", run.State(), run.Pages())
	}
}

func TestConvertRejected(t *testing.T) {
	c := New()
	if run, err := c.Convert(context.Background(), nil, DefaultSettings()); !errors.Is(err, ErrNoImages) || run != nil {
		t.Errorf("Convert(nil) = %v, %v, want ErrNoImages", run, err)
	}
	s := DefaultSettings()
	s.Scaling = layout.Scaling(42)
	if _, err := c.Convert(context.Background(), []image.SourceImage{pngImage(t, "a.png", 2, 2)}, s); !errors.Is(err, layout.ErrUnknownValue) {
		t.Errorf("Convert with invalid scaling error = %v, want ErrUnknownValue", err)
	}
	if c.Last() != nil {
		t.Error("rejected conversion created a run")
	}
}

func TestReset(t *testing.T) {
	c := New()
	run, err := c.Convert(context.Background(), []image.SourceImage{pngImage(t, "a.png", 2, 2)}, DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}
	if len(run.Result()) == 0 {
		t.Fatal("no result")
	}
	if err = c.Reset(); err != nil {
		t.Fatal(err)
	}
	if c.Last() != nil || run.Result() != nil {
		t.Error("Reset did not drop the result")
	}
	if run.State() != Complete {
		t.Errorf("run.State() = %s after Reset, want complete", run.State())
	}
}

func TestDocumentInfo(t *testing.T) {
	c := New()
	c.Title = "Scans"
	c.Author = "Ada"
	run, err := c.Convert(context.Background(), []image.SourceImage{pngImage(t, "a.png", 2, 2)}, DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}
	info := readPDF(t, run.Result()).Trailer().Key("Info")
	for key, want := range map[string]string{"Title": "Scans", "Author": "Ada", "Creator": "img2pdf"} {
		if got := info.Key(key).Text(); got != want {
			t.Errorf("Info /%s = %q, want %q", key, got, want)
		}
	}
}

func TestParseSettings(t *testing.T) {
	got, err := ParseSettings("letter", "landscape", "fill", "medium")
	if err != nil {
		t.Fatal(err)
	}
	want := Settings{PageSize: layout.Letter, Orientation: layout.Landscape, Scaling: layout.Fill, Quality: layout.Medium}
	if got != want {
		t.Errorf("ParseSettings() = %s, want %s", got, want)
	}
	if wd, ht := got.PageDimensions(); wd != 279.4 || ht != 215.9 {
		t.Errorf("PageDimensions() = %g×%g, want 279.4×215.9", wd, ht)
	}
	if got, err = ParseSettings("", "", "", ""); err != nil || got != DefaultSettings() {
		t.Errorf("ParseSettings with empty values = %s, %v", got, err)
	}
	if _, err = ParseSettings("a4", "portrait", "zoom", "high"); !errors.Is(err, layout.ErrUnknownValue) {
		t.Errorf("ParseSettings(zoom) error = %v, want ErrUnknownValue", err)
	}
}

func TestValidate(t *testing.T) {
	if err := DefaultSettings().Validate(); err != nil {
		t.Errorf("DefaultSettings().Validate() = %v", err)
	}
	s := Settings{PageSize: layout.PageSize(9), Orientation: layout.Orientation(2), Quality: layout.Quality(-1)}
	if err := s.Validate(); !errors.Is(err, layout.ErrUnknownValue) {
		t.Errorf("Validate() = %v, want ErrUnknownValue", err)
	}
}

func TestConversionError(t *testing.T) {
	cause := errors.New("disk full")
	err := error(&ConversionError{Kind: SerializationError, Index: -1, Err: cause})
	if !errors.Is(err, ErrSerialization) || !errors.Is(err, cause) {
		t.Errorf("errors.Is failed for %v", err)
	}
	if errors.Is(err, ErrDecode) {
		t.Errorf("%v matches ErrDecode", err)
	}
	if got, want := err.Error(), "SerializationError: disk full"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
