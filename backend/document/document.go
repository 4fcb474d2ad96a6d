package document

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/boxesandglue/img2pdf/backend/bag"
	"github.com/boxesandglue/img2pdf/backend/layout"
	"github.com/boxesandglue/img2pdf/pdfbackend/pdf"
	"golang.org/x/text/unicode/norm"
)

// placementTolerance is the rounding tolerance in mm when checking that an
// image lies on the page.
const placementTolerance = 0.01

var (
	// ErrInvalidPlacement is returned when an image would not be placed on
	// the page.
	ErrInvalidPlacement = errors.New("invalid placement")
	// ErrFinished is returned when a finished page or document is changed.
	ErrFinished = errors.New("already finished")
)

// Object is an image placed on a page. X and Y are the lower left corner of
// the image in PDF coordinates.
type Object struct {
	X      bag.ScaledPoint
	Y      bag.ScaledPoint
	Width  bag.ScaledPoint
	Height bag.ScaledPoint
	Image  *pdf.Imagefile
}

// A Page struct represents a page in a PDF file.
type Page struct {
	document *PDFDocument
	Height   bag.ScaledPoint
	Width    bag.ScaledPoint
	Objects  []Object
	Finished bool
}

// PlaceImage puts the image at the placement (mm, origin top left) on the
// page. The placement must lie on the page.
func (p *Page) PlaceImage(imgf *pdf.Imagefile, pl layout.Placement) error {
	if p.Finished {
		return fmt.Errorf("place image: page %w", ErrFinished)
	}
	if imgf == nil {
		return fmt.Errorf("%w: no image", ErrInvalidPlacement)
	}
	pageW, pageH := p.Width.ToMM(), p.Height.ToMM()
	if !pl.Fits(pageW, pageH, placementTolerance) || pl.Width == 0 || pl.Height == 0 {
		return fmt.Errorf("%w: %s on %.3f×%.3f mm page", ErrInvalidPlacement, pl, pageW, pageH)
	}
	wd, ht := bag.FromMM(pl.Width), bag.FromMM(pl.Height)
	p.Objects = append(p.Objects, Object{
		X:      bag.FromMM(pl.X),
		Y:      p.Height - bag.FromMM(pl.Y) - ht,
		Width:  wd,
		Height: ht,
		Image:  imgf,
	})
	return nil
}

// Shipout places all objects on a page and finishes this page.
func (p *Page) Shipout() error {
	if p.Finished {
		return nil
	}
	p.Finished = true
	bag.LogDebug("Shipout")

	var s strings.Builder
	var images []*pdf.Imagefile
	seen := make(map[*pdf.Imagefile]bool)
	for _, obj := range p.Objects {
		fmt.Fprintf(&s, "q %s 0 0 %s %s %s cm %s Do Q\n", obj.Width, obj.Height, obj.X, obj.Y, obj.Image.InternalName())
		if p.document.IsTrace(VTraceImages) {
			fmt.Fprintf(&s, "q 0.5 w 1 0 0 RG %s %s %s %s re S Q\n", obj.X, obj.Y, obj.Width, obj.Height)
		}
		if !seen[obj.Image] {
			seen[obj.Image] = true
			images = append(images, obj.Image)
		}
	}

	if s.Len() == 0 {
		s.WriteString("q Q\n")
	}
	st := p.document.PDFWriter.NewObject()
	st.SetCompression(p.document.CompressLevel)
	st.Data.WriteString(s.String())
	page, err := p.document.PDFWriter.AddPage(st, p.Width.ToPT(), p.Height.ToPT())
	if err != nil {
		return err
	}
	page.Images = images
	return nil
}

// PDFDocument contains all references to a document
type PDFDocument struct {
	Author            string
	CompressLevel     uint
	Creator           string
	CreationDate      time.Time
	CurrentPage       *Page
	DefaultPageHeight bag.ScaledPoint
	DefaultPageWidth  bag.ScaledPoint
	Filename          string
	Keywords          string
	Pages             []*Page
	PDFWriter         *pdf.PDF
	Subject           string
	Title             string
	producer          string
	tracing           VTrace
	finished          bool
}

// NewDocument creates an empty document.
func NewDocument(w io.Writer) *PDFDocument {
	d := &PDFDocument{
		DefaultPageWidth:  bag.MustSp("210mm"),
		DefaultPageHeight: bag.MustSp("297mm"),
		CreationDate:      time.Now(),
		PDFWriter:         pdf.NewPDFWriter(w),
		CompressLevel:     9,
		producer:          "boxesandglue/img2pdf",
	}
	d.PDFWriter.Logger = bag.Logger
	return d
}

// LoadJPEG registers JPEG data as an image of the document.
func (d *PDFDocument) LoadJPEG(data []byte) (*pdf.Imagefile, error) {
	if d.finished {
		return nil, fmt.Errorf("load image: document %w", ErrFinished)
	}
	return pdf.NewJPEGImage(d.PDFWriter, data)
}

// NewPage creates a new Page object with the default page size and adds it to
// the page list in the document. The CurrentPage field of the document is set
// to the page.
func (d *PDFDocument) NewPage() *Page {
	return d.NewPageWithSize(d.DefaultPageWidth, d.DefaultPageHeight)
}

// NewPageWithSize creates a new page with the given dimensions and makes it
// the current page.
func (d *PDFDocument) NewPageWithSize(wd, ht bag.ScaledPoint) *Page {
	d.CurrentPage = &Page{
		document: d,
		Width:    wd,
		Height:   ht,
	}
	d.Pages = append(d.Pages, d.CurrentPage)
	return d.CurrentPage
}

func infoString(s string) string {
	return pdf.StringToPDF(norm.NFC.String(s))
}

// Finish ships out all pages, writes all objects to the PDF and writes the
// XRef section. Finish does not close the writer.
func (d *PDFDocument) Finish() error {
	if d.finished {
		return fmt.Errorf("finish: document %w", ErrFinished)
	}
	d.finished = true
	for _, pg := range d.Pages {
		if err := pg.Shipout(); err != nil {
			return err
		}
	}

	rdf := d.PDFWriter.NewObject()
	rdf.Data.WriteString(d.getMetadata())
	rdf.Dictionary = pdf.Dict{
		"Type":    "/Metadata",
		"Subtype": "/XML",
	}
	if err := rdf.Save(); err != nil {
		return err
	}
	d.PDFWriter.Catalog = pdf.Dict{
		"Metadata": rdf.ObjectNumber.Ref(),
	}
	if d.Title != "" {
		d.PDFWriter.Catalog["ViewerPreferences"] = "<< /DisplayDocTitle true >>"
	}
	d.PDFWriter.DefaultPageWidth = d.DefaultPageWidth.ToPT()
	d.PDFWriter.DefaultPageHeight = d.DefaultPageHeight.ToPT()

	d.PDFWriter.InfoDict = pdf.Dict{
		"Producer": infoString(d.producer),
	}
	if t := d.Title; t != "" {
		d.PDFWriter.InfoDict["Title"] = infoString(t)
	}
	if t := d.Author; t != "" {
		d.PDFWriter.InfoDict["Author"] = infoString(t)
	}
	if t := d.Creator; t != "" {
		d.PDFWriter.InfoDict["Creator"] = infoString(t)
	}
	if t := d.Subject; t != "" {
		d.PDFWriter.InfoDict["Subject"] = infoString(t)
	}
	if t := d.Keywords; t != "" {
		d.PDFWriter.InfoDict["Keywords"] = infoString(t)
	}
	d.PDFWriter.InfoDict["CreationDate"] = d.CreationDate.Format("(D:20060102150405)")

	if err := d.PDFWriter.Finish(); err != nil {
		return err
	}
	if d.Filename != "" {
		bag.Logger.Infow("Output written", "filename", d.Filename, "pages", d.PDFWriter.Pages(), "bytes", d.PDFWriter.Size())
	} else {
		bag.Logger.Debugw("Output written", "pages", d.PDFWriter.Pages(), "bytes", d.PDFWriter.Size())
	}
	return nil
}
