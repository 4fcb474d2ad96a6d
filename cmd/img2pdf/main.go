package main

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/boxesandglue/img2pdf/backend/bag"
	"github.com/boxesandglue/img2pdf/backend/image"
	"github.com/boxesandglue/img2pdf/frontend"
	"github.com/speedata/optionparser"
	"golang.org/x/term"
)

type options struct {
	pagesize    string
	orientation string
	scaling     string
	quality     string
	output      string
	title       string
	author      string
	loglevel    string
	trace       bool
	verbose     bool
	help        bool
}

// mimeType returns the MIME type for the file extension. Unknown extensions
// return an empty string, the format is then detected from the contents.
func mimeType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".webp":
		return "image/webp"
	case ".bmp":
		return "image/bmp"
	}
	t := mime.TypeByExtension(ext)
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = t[:i]
	}
	return t
}

func readImages(filenames []string) ([]image.SourceImage, error) {
	images := make([]image.SourceImage, 0, len(filenames))
	for _, fn := range filenames {
		data, err := os.ReadFile(fn)
		if err != nil {
			return nil, err
		}
		si := image.New(filepath.Base(fn), mimeType(fn), data)
		if !image.Accepted(si.MIME) {
			return nil, fmt.Errorf("%s: unsupported file type %s", fn, si.MIME)
		}
		images = append(images, si)
	}
	return images, nil
}

func writeResult(run *frontend.Run, output string) (string, error) {
	if output == "-" {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return "", errors.New("not writing a PDF to a terminal, use --output")
		}
		_, err := os.Stdout.Write(run.Result())
		return "stdout", err
	}
	if output == "" {
		output = run.Filename()
	}
	return output, os.WriteFile(output, run.Result(), 0o644)
}

func dothings() error {
	var opts options
	op := optionparser.NewOptionParser()
	op.Banner = "img2pdf - put images on PDF pages\n\nUsage: img2pdf [options] image..."
	op.On("--pagesize NAME", "Page size: A4, A3, A5, Letter or Legal (default A4)", &opts.pagesize)
	op.On("--orientation NAME", "portrait or landscape (default portrait)", &opts.orientation)
	op.On("--scaling NAME", "fit, fill or original (default fit)", &opts.scaling)
	op.On("--quality NAME", "high, medium or low (default high)", &opts.quality)
	op.On("--output FILE", "Write the PDF to FILE, - for stdout", &opts.output)
	op.On("--title TEXT", "Document title", &opts.title)
	op.On("--author TEXT", "Document author", &opts.author)
	op.On("--loglevel LEVEL", "debug, info, warn or error", &opts.loglevel)
	op.On("--trace", "Draw a frame around each image", &opts.trace)
	op.On("-v", "--verbose", "Show progress", &opts.verbose)
	op.On("-h", "--help", "Show this help", &opts.help)
	if err := op.Parse(); err != nil {
		return err
	}
	if opts.help || len(op.Extra) == 0 {
		op.Help()
		return nil
	}

	if opts.verbose {
		bag.SetLogLevel(bag.DebugLevel)
	}
	if opts.loglevel != "" {
		lvl, err := bag.ParseLevel(opts.loglevel)
		if err != nil {
			return err
		}
		bag.SetLogLevel(lvl)
	}

	settings, err := frontend.ParseSettings(opts.pagesize, opts.orientation, opts.scaling, opts.quality)
	if err != nil {
		return err
	}
	images, err := readImages(op.Extra)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := frontend.New()
	c.Title = opts.title
	c.Author = opts.author
	c.Trace = opts.trace
	c.OnProgress = func(p frontend.Progress) {
		bag.Logger.Debugw("Progress", "percent", fmt.Sprintf("%.0f%%", p.Percent), "image", p.Image, "of", p.Total)
	}
	run, err := c.Convert(ctx, images, settings)
	if err != nil {
		return err
	}
	dest, err := writeResult(run, opts.output)
	if err != nil {
		return err
	}
	bag.Logger.Infow("PDF written", "output", dest, "pages", run.Pages(), "bytes", len(run.Result()))
	return c.Reset()
}

func main() {
	if err := dothings(); err != nil {
		bag.LogError(err)
		os.Exit(1)
	}
}
