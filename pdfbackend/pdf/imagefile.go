package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"

	// image/jpeg is only needed for image.DecodeConfig.
	_ "image/jpeg"
)

// ErrUnsupportedImage is returned for image data that cannot be embedded.
var ErrUnsupportedImage = errors.New("unsupported image")

// Imagefile represents an image XObject. Images to be placed in the PDF
// must be derived from the image.
type Imagefile struct {
	Format           string
	W                int
	H                int
	pw               *PDF
	imageobject      *Object
	id               int
	colorspace       string
	bitsPerComponent int
	filter           string
	decode           string
	data             []byte
}

// NewJPEGImage registers JPEG encoded data as an image XObject. The data is
// embedded as it is (DCTDecode) when the PDF is finished.
func NewJPEGImage(pw *PDF, data []byte) (*Imagefile, error) {
	imgCfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedImage, err)
	}
	if format != "jpeg" {
		return nil, fmt.Errorf("%w: format %s is not jpeg", ErrUnsupportedImage, format)
	}
	pw.nextimage++
	imgf := &Imagefile{
		Format: format,
		id:     pw.nextimage,
		pw:     pw,
		data:   data,
	}
	if err = imgf.parseJPG(imgCfg); err != nil {
		return nil, err
	}
	imgf.imageobject = pw.NewObject()
	pw.images = append(pw.images, imgf)
	if l := pw.Logger; l != nil {
		l.Debugw("Load image", "name", imgf.InternalName(), "width", imgf.W, "height", imgf.H, "colorspace", imgf.colorspace)
	}
	return imgf, nil
}

func (imgf *Imagefile) parseJPG(imgCfg image.Config) error {
	switch imgCfg.ColorModel {
	case color.YCbCrModel, color.RGBAModel:
		imgf.colorspace = "DeviceRGB"
	case color.GrayModel:
		imgf.colorspace = "DeviceGray"
	case color.CMYKModel:
		imgf.colorspace = "DeviceCMYK"
		// Adobe writes inverted CMYK values
		imgf.decode = "[1 0 1 0 1 0 1 0]"
	default:
		return fmt.Errorf("%w: color model not supported", ErrUnsupportedImage)
	}
	if imgCfg.Width <= 0 || imgCfg.Height <= 0 {
		return fmt.Errorf("%w: empty image", ErrUnsupportedImage)
	}

	imgf.bitsPerComponent = 8
	imgf.filter = "DCTDecode"
	imgf.W = imgCfg.Width
	imgf.H = imgCfg.Height
	return nil
}

func (imgf *Imagefile) resourceName() Name {
	return Name(fmt.Sprintf("ImgBag%d", imgf.id))
}

// InternalName returns a PDF usable name such as /ImgBag1
func (imgf *Imagefile) InternalName() string {
	return imgf.resourceName().String()
}

// Colorspace returns the PDF color space of the image, for example
// DeviceRGB.
func (imgf *Imagefile) Colorspace() string {
	return imgf.colorspace
}

func (imgf *Imagefile) finish() error {
	pw := imgf.pw
	if l := pw.Logger; l != nil {
		l.Debugw("Write image to PDF", "name", imgf.InternalName(), "bytes", len(imgf.data))
	}
	imgo := imgf.imageobject
	d := Dict{
		"Type":             "/XObject",
		"Subtype":          "/Image",
		"BitsPerComponent": imgf.bitsPerComponent,
		"ColorSpace":       Name(imgf.colorspace),
		"Width":            imgf.W,
		"Height":           imgf.H,
		"Filter":           Name(imgf.filter),
	}
	if imgf.decode != "" {
		d["Decode"] = imgf.decode
	}
	imgo.Dict(d)
	imgo.Data = bytes.NewBuffer(imgf.data)
	if err := imgo.Save(); err != nil {
		return err
	}
	// the data is in the PDF now
	imgf.data = nil
	return nil
}
