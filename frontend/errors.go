package frontend

import (
	"errors"
	"fmt"

	"github.com/boxesandglue/img2pdf/backend/image"
	"github.com/google/uuid"
)

var (
	// ErrDecode is the cause of a DecodeError.
	ErrDecode = image.ErrDecode
	// ErrEmbed is the cause of an EmbedError.
	ErrEmbed = errors.New("cannot embed image")
	// ErrSerialization is the cause of a SerializationError.
	ErrSerialization = errors.New("cannot write PDF")
	// ErrBusy is returned when a conversion is started while another one is
	// running on the same converter.
	ErrBusy = errors.New("conversion already running")
	// ErrNoImages is returned for a conversion without images.
	ErrNoImages = errors.New("no images to convert")
)

// ErrorKind classifies a failed conversion.
type ErrorKind int

const (
	// DecodeError means the bytes of an image could not be decoded.
	DecodeError ErrorKind = iota
	// EmbedError means the image could not be put on its page.
	EmbedError
	// SerializationError means the final PDF could not be written.
	SerializationError
)

func (k ErrorKind) String() string {
	switch k {
	case DecodeError:
		return "DecodeError"
	case EmbedError:
		return "EmbedError"
	case SerializationError:
		return "SerializationError"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

func (k ErrorKind) sentinel() error {
	switch k {
	case DecodeError:
		return ErrDecode
	case EmbedError:
		return ErrEmbed
	}
	return ErrSerialization
}

// ConversionError is the error of a failed run. Index and ImageID identify
// the image that caused the error, Index is -1 for a SerializationError.
type ConversionError struct {
	Kind    ErrorKind
	Index   int
	ImageID uuid.UUID
	Err     error
}

func (e *ConversionError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: image %d (%s): %v", e.Kind, e.Index+1, e.ImageID, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel error of the error kind, so
// errors.Is(err, ErrEmbed) holds for every EmbedError.
func (e *ConversionError) Is(target error) bool {
	return target == e.Kind.sentinel()
}
