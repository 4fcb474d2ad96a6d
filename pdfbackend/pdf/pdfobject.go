package pdf

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"
)

var pdfStringReplacer = strings.NewReplacer(`(`, `\(`, `)`, `\)`, `\`, `\\`, "\n", `\n`, "\r", `\r`, "\t", `\t`, "\b", `\b`)

// Objectnumber represents a PDF object number
type Objectnumber int

// Ref returns a reference to the object number
func (o Objectnumber) Ref() string {
	return fmt.Sprintf("%d 0 R", o)
}

// String returns a reference to the object number
func (o Objectnumber) String() string {
	return o.Ref()
}

// Name represents a PDF name such as Adobe Green. The String() method prepends
// a / (slash) to the name.
type Name string

func (n Name) String() string {
	a := strings.NewReplacer(" ", "#20", "/", "#2F", "#", "#23")
	return "/" + a.Replace(string(n))
}

// String is a string that gets automatically converted to (...) or
// hexadecimal form when placed in the PDF.
type String string

func (s String) String() string {
	return StringToPDF(string(s))
}

// Dict is a PDF dictionary. Values of type string are written as they are,
// so they must already be valid PDF syntax.
type Dict map[Name]any

func (d Dict) String() string {
	return HashToString(d, 0)
}

// Array is a list of anything
type Array []any

func (ary Array) String() string {
	return ArrayToString(ary)
}

// StringToPDF returns an escaped string suitable to be used as a PDF object.
func StringToPDF(str string) string {
	isASCII := true
	for _, g := range str {
		if g > 127 {
			isASCII = false
			break
		}
	}
	var out strings.Builder
	if isASCII {
		out.WriteRune('(')
		out.WriteString(pdfStringReplacer.Replace(str))
		out.WriteRune(')')
		return out.String()
	}
	out.WriteString("<feff")
	for _, i := range utf16.Encode([]rune(str)) {
		fmt.Fprintf(&out, "%04x", i)
	}
	out.WriteRune('>')
	return out.String()
}

// FloatToPoint returns a string suitable as a PDF size value.
func FloatToPoint(in float64) string {
	const precisionFactor = 1000.0
	rounded := math.Round(precisionFactor*in) / precisionFactor
	if rounded == 0 {
		return "0"
	}
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}

func valueToString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case float64:
		return FloatToPoint(t)
	case bool:
		return strconv.FormatBool(t)
	case Array:
		return ArrayToString(t)
	case []any:
		return ArrayToString(t)
	case Dict:
		return HashToString(t, 1)
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprint(v)
}

// ArrayToString converts the objects in ary to a string including the opening
// and closing bracket
func ArrayToString(ary []any) string {
	ret := make([]string, 0, len(ary)+2)
	ret = append(ret, "[")
	for _, elt := range ary {
		ret = append(ret, valueToString(elt))
	}
	ret = append(ret, "]")
	return strings.Join(ret, " ")
}

// HashToString converts a PDF dictionary to a string including the paired
// angle brackets (<< ... >>). The keys are sorted.
func HashToString(h Dict, level int) string {
	keys := make([]Name, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	var b strings.Builder
	b.WriteString("<<\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "%s%s %s\n", strings.Repeat("  ", level+1), k, valueToString(h[k]))
	}
	b.WriteString(strings.Repeat("  ", level))
	b.WriteString(">>")
	return b.String()
}

// Object has information about a specific PDF object
type Object struct {
	ObjectNumber Objectnumber
	Data         *bytes.Buffer
	Dictionary   Dict
	Array        []any
	pdfwriter    *PDF
	compress     int // zlib level for streams, 0 = no compression
	comment      string
}

// NewObjectWithNumber create a new PDF object with the given object number.
// The object is not written to the PDF until Save() is called.
func (pw *PDF) NewObjectWithNumber(objnum Objectnumber) *Object {
	obj := &Object{
		Data: &bytes.Buffer{},
	}
	obj.ObjectNumber = objnum
	obj.pdfwriter = pw
	return obj
}

// NewObject create a new PDF object and reserves an object
// number for it.
// The object is not written to the PDF until Save() is called.
func (pw *PDF) NewObject() *Object {
	return pw.NewObjectWithNumber(pw.NextObject())
}

// SetCompression turns on stream compression if compresslevel > 0. Levels
// above 9 are treated as 9.
func (obj *Object) SetCompression(compresslevel uint) {
	if compresslevel > zlib.BestCompression {
		compresslevel = zlib.BestCompression
	}
	obj.compress = int(compresslevel)
}

// Dict sets the dictionary d of the PDF object
func (obj *Object) Dict(d Dict) *Object {
	obj.Dictionary = d
	return obj
}

// Save adds the PDF object to the main PDF file.
func (obj *Object) Save() error {
	pw := obj.pdfwriter
	if obj.comment != "" {
		if err := pw.Print("\n% " + obj.comment); err != nil {
			return err
		}
	}

	if obj.Data.Len() > 0 {
		if obj.Dictionary == nil {
			obj.Dictionary = Dict{}
		}
		if obj.compress > 0 {
			if _, ok := obj.Dictionary["Filter"]; ok {
				return fmt.Errorf("object %d: stream already has a filter", obj.ObjectNumber)
			}
			var b bytes.Buffer
			zw, err := zlib.NewWriterLevel(&b, obj.compress)
			if err != nil {
				return err
			}
			if _, err = zw.Write(obj.Data.Bytes()); err != nil {
				return err
			}
			if err = zw.Close(); err != nil {
				return err
			}
			obj.Dictionary["Filter"] = "/FlateDecode"
			obj.Data = &b
		}
		obj.Dictionary["Length"] = obj.Data.Len()
	}

	if err := pw.startObject(obj.ObjectNumber); err != nil {
		return err
	}
	if len(obj.Dictionary) > 0 {
		if err := pw.Print(HashToString(obj.Dictionary, 0)); err != nil {
			return err
		}
	} else if len(obj.Array) > 0 {
		if err := pw.Print(ArrayToString(obj.Array)); err != nil {
			return err
		}
	} else if obj.Data.Len() == 0 {
		if err := pw.Print("null"); err != nil {
			return err
		}
	}
	if obj.Data.Len() > 0 {
		if err := pw.Println("\nstream"); err != nil {
			return err
		}
		if err := pw.write(obj.Data.Bytes()); err != nil {
			return err
		}
		if err := pw.Print("\nendstream"); err != nil {
			return err
		}
	}
	return pw.endObject()
}
