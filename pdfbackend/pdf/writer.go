package pdf

import (
	"crypto/md5"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

// ErrNoPages is returned by Finish when no page has been added.
var ErrNoPages = errors.New("no pages in document")

// Page contains information about a single page. Width and Height are in DTP
// points.
type Page struct {
	Dictnum Objectnumber
	Images  []*Imagefile
	Width   float64
	Height  float64
	Dict    Dict
	content Objectnumber
}

// PDF is the central point of writing a PDF file.
type PDF struct {
	Catalog           Dict
	InfoDict          Dict
	DefaultPageWidth  float64
	DefaultPageHeight float64
	Logger            *zap.SugaredLogger
	outfile           io.Writer
	nextobject        Objectnumber
	nextimage         int
	objectlocations   map[Objectnumber]int64
	pages             []*Page
	images            []*Imagefile
	lastEOL           int64
	pos               int64
	finished          bool
}

// NewPDFWriter creates a PDF file for writing to file
func NewPDFWriter(file io.Writer) *PDF {
	pw := PDF{}
	pw.outfile = file
	pw.nextobject = 1
	pw.objectlocations = make(map[Objectnumber]int64)
	pw.Println("%PDF-1.7")
	pw.Println("%\xE2\xE3\xCF\xD3")
	return &pw
}

func (pw *PDF) write(b []byte) error {
	n, err := pw.outfile.Write(b)
	pw.pos += int64(n)
	return err
}

// Print writes the string to the PDF file
func (pw *PDF) Print(s string) error {
	n, err := io.WriteString(pw.outfile, s)
	pw.pos += int64(n)
	return err
}

// Println writes the string to the PDF file and adds a newline.
func (pw *PDF) Println(s string) error {
	return pw.Print(s + "\n")
}

// Printf writes the formatted string to the PDF file.
func (pw *PDF) Printf(format string, a ...any) error {
	return pw.Print(fmt.Sprintf(format, a...))
}

// NextObject returns the next free object number
func (pw *PDF) NextObject() Objectnumber {
	pw.nextobject++
	return pw.nextobject - 1
}

// AddPage writes the content stream of a page to the PDF file and returns
// the page. The page dictionary is written in Finish. Width and height are in
// DTP points.
func (pw *PDF) AddPage(content *Object, width, height float64) (*Page, error) {
	if pw.finished {
		return nil, errors.New("cannot add page: PDF already finished")
	}
	if err := content.Save(); err != nil {
		return nil, err
	}
	pg := &Page{
		Dictnum: pw.NextObject(),
		Width:   width,
		Height:  height,
		Dict:    Dict{},
		content: content.ObjectNumber,
	}
	pw.pages = append(pw.pages, pg)
	if l := pw.Logger; l != nil {
		l.Debugw("Add page", "page", len(pw.pages), "width", FloatToPoint(width), "height", FloatToPoint(height))
	}
	return pg, nil
}

// Pages returns the number of pages added so far.
func (pw *PDF) Pages() int {
	return len(pw.pages)
}

func (pw *PDF) writeDocumentCatalogAndPages() (Objectnumber, error) {
	if len(pw.pages) == 0 {
		return 0, ErrNoPages
	}

	// write out all images to the PDF
	used := make(map[*Imagefile]bool)
	for _, page := range pw.pages {
		for _, img := range page.Images {
			used[img] = true
		}
	}
	for _, img := range pw.images {
		if !used[img] {
			continue
		}
		if err := img.finish(); err != nil {
			return 0, err
		}
	}

	// We need to know in advance where the parent object is written (/Pages)
	pagesObj := pw.NewObject()

	for _, page := range pw.pages {
		obj := pw.NewObjectWithNumber(page.Dictnum)
		pageHash := Dict{
			"Type":     "/Page",
			"Contents": page.content.Ref(),
			"Parent":   pagesObj.ObjectNumber.Ref(),
			"MediaBox": fmt.Sprintf("[0 0 %s %s]", FloatToPoint(page.Width), FloatToPoint(page.Height)),
		}
		resHash := Dict{}
		if len(page.Images) > 0 {
			xobjects := Dict{}
			for _, img := range page.Images {
				xobjects[img.resourceName()] = img.imageobject.ObjectNumber.Ref()
			}
			resHash["XObject"] = xobjects
			resHash["ProcSet"] = "[/PDF /ImageC /ImageB]"
		}
		pageHash["Resources"] = resHash
		for k, v := range page.Dict {
			pageHash[k] = v
		}
		obj.Dict(pageHash)
		if err := obj.Save(); err != nil {
			return 0, err
		}
	}

	kids := make([]string, len(pw.pages))
	for i, v := range pw.pages {
		kids[i] = v.Dictnum.Ref()
	}

	pagesObj.comment = "The pages object"
	pagesDict := Dict{
		"Type":  "/Pages",
		"Kids":  "[ " + strings.Join(kids, " ") + " ]",
		"Count": len(pw.pages),
	}
	if pw.DefaultPageWidth > 0 && pw.DefaultPageHeight > 0 {
		pagesDict["MediaBox"] = fmt.Sprintf("[0 0 %s %s]", FloatToPoint(pw.DefaultPageWidth), FloatToPoint(pw.DefaultPageHeight))
	}
	pagesObj.Dict(pagesDict)
	if err := pagesObj.Save(); err != nil {
		return 0, err
	}

	catalog := pw.NewObject()
	catalog.comment = "Catalog"
	dictCatalog := Dict{
		"Type":  "/Catalog",
		"Pages": pagesObj.ObjectNumber.Ref(),
	}
	for k, v := range pw.Catalog {
		dictCatalog[k] = v
	}
	catalog.Dict(dictCatalog)
	if err := catalog.Save(); err != nil {
		return 0, err
	}
	return catalog.ObjectNumber, nil
}

// Finish writes the trailer and xref section but does not close the file.
func (pw *PDF) Finish() error {
	if pw.finished {
		return errors.New("PDF already finished")
	}
	pw.finished = true
	dc, err := pw.writeDocumentCatalogAndPages()
	if err != nil {
		return err
	}
	var infoRef Objectnumber
	if len(pw.InfoDict) > 0 {
		info := pw.NewObject()
		info.Dict(pw.InfoDict)
		if err = info.Save(); err != nil {
			return err
		}
		infoRef = info.ObjectNumber
	}

	// XRef section, one subsection per run of consecutive objects
	type chunk struct {
		startOnum Objectnumber
		positions []int64
	}
	var objectChunks []chunk
	for i := Objectnumber(1); i < pw.nextobject; i++ {
		loc, ok := pw.objectlocations[i]
		if !ok {
			continue
		}
		if n := len(objectChunks); n > 0 && objectChunks[n-1].startOnum+Objectnumber(len(objectChunks[n-1].positions)) == i {
			objectChunks[n-1].positions = append(objectChunks[n-1].positions, loc)
		} else {
			objectChunks = append(objectChunks, chunk{startOnum: i, positions: []int64{loc}})
		}
	}
	var str strings.Builder
	if len(objectChunks) == 0 || objectChunks[0].startOnum != 1 {
		fmt.Fprint(&str, "0 1\n0000000000 65535 f \n")
	}
	for i, chunk := range objectChunks {
		if i == 0 && chunk.startOnum == 1 {
			fmt.Fprintf(&str, "0 %d\n", len(chunk.positions)+1)
			fmt.Fprint(&str, "0000000000 65535 f \n")
		} else {
			fmt.Fprintf(&str, "%d %d\n", chunk.startOnum, len(chunk.positions))
		}
		for _, pos := range chunk.positions {
			fmt.Fprintf(&str, "%010d 00000 n \n", pos)
		}
	}

	if err = pw.Println(""); err != nil {
		return err
	}
	xrefpos := pw.pos
	if err = pw.Println("xref"); err != nil {
		return err
	}
	if err = pw.Print(str.String()); err != nil {
		return err
	}
	sum := fmt.Sprintf("%X", md5.Sum([]byte(str.String())))

	trailer := Dict{
		"Size": int(pw.nextobject),
		"Root": dc.Ref(),
		"ID":   fmt.Sprintf("[<%s> <%s>]", sum, sum),
	}
	if infoRef > 0 {
		trailer["Info"] = infoRef.Ref()
	}
	if err = pw.Println("trailer"); err != nil {
		return err
	}
	if err = pw.Print(HashToString(trailer, 0)); err != nil {
		return err
	}
	return pw.Printf("\nstartxref\n%d\n%%%%EOF\n", xrefpos)
}

// Size returns the current size of the PDF file.
func (pw *PDF) Size() int64 {
	return pw.pos
}

// Write an end of line (EOL) marker to the file if it is not on a EOL already.
func (pw *PDF) eol() error {
	if pw.pos != pw.lastEOL {
		if err := pw.Println(""); err != nil {
			return err
		}
		pw.lastEOL = pw.pos
	}
	return nil
}

// Write a start object marker for the object number.
func (pw *PDF) startObject(onum Objectnumber) error {
	if _, ok := pw.objectlocations[onum]; ok {
		return fmt.Errorf("object %d written twice", onum)
	}
	pw.objectlocations[onum] = pw.pos + 1
	return pw.Printf("\n%d 0 obj\n", onum)
}

// Write a simple "endobj" to the PDF file.
func (pw *PDF) endObject() error {
	if err := pw.eol(); err != nil {
		return err
	}
	if err := pw.Println("endobj"); err != nil {
		return err
	}
	pw.lastEOL = pw.pos
	return nil
}
