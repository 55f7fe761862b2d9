// Package fonts provides the typeface used for stamped text: a built-in
// Liberation Serif metric set, optional TrueType loading for embedding,
// and WinAnsi text encoding.
package fonts

import (
	"errors"
	"fmt"

	"golang.org/x/text/encoding/charmap"

	"github.com/Rick-Wilson/pdf-handouts/graph"
)

var errInvalidUnitsPerEm = errors.New("invalid unitsPerEm")

const (
	firstChar = 32
	lastChar  = 255
)

// LoadError reports a typeface that failed to parse. The stamping font is
// not optional, so callers treat this as fatal.
type LoadError struct {
	Name string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load font %s: %v", e.Name, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Metrics describes a simple single-byte TrueType font: WinAnsi-coded
// advance widths plus the descriptor numbers. Data carries the raw font
// program when the font is to be embedded; the builtin set leaves it nil
// and relies on the viewer's installed Liberation Serif (or its metric
// clone, Times).
type Metrics struct {
	BaseFont    string
	Widths      [lastChar - firstChar + 1]int
	Flags       int
	ItalicAngle float64
	Ascent      float64
	Descent     float64
	CapHeight   float64
	XHeight     float64
	StemV       float64
	BBox        [4]float64
	Data        []byte
}

// Builtin returns the Liberation Serif metrics that ship with the tool.
func Builtin() Metrics {
	return Metrics{
		BaseFont:  "LiberationSerif",
		Widths:    liberationSerifWidths,
		Flags:     34, // serif, nonsymbolic
		Ascent:    891,
		Descent:   -216,
		CapHeight: 662,
		XHeight:   450,
		StemV:     84,
		BBox:      [4]float64{-543, -303, 1300, 981},
	}
}

// Embed writes the font into the store: the optional FontFile2 program,
// the FontDescriptor, and the TrueType font dictionary with
// WinAnsiEncoding and explicit Widths. Returns the font dictionary's
// reference, ready for a Resources Font table.
func Embed(store *graph.Store, m Metrics) graph.Ref {
	desc := graph.NewDict()
	desc.Set("Type", graph.NameOf("FontDescriptor"))
	desc.Set("FontName", graph.NameOf(m.BaseFont))
	desc.Set("Flags", graph.Int(int64(m.Flags)))
	desc.Set("FontBBox", graph.NewArray(
		graph.Float(m.BBox[0]), graph.Float(m.BBox[1]),
		graph.Float(m.BBox[2]), graph.Float(m.BBox[3])))
	desc.Set("ItalicAngle", graph.Float(m.ItalicAngle))
	desc.Set("Ascent", graph.Float(m.Ascent))
	desc.Set("Descent", graph.Float(m.Descent))
	desc.Set("CapHeight", graph.Float(m.CapHeight))
	if m.XHeight != 0 {
		desc.Set("XHeight", graph.Float(m.XHeight))
	}
	desc.Set("StemV", graph.Float(m.StemV))
	if len(m.Data) > 0 {
		fileDict := graph.NewDict()
		fileDict.Set("Length1", graph.Int(int64(len(m.Data))))
		fileRef := store.Add(graph.NewStream(fileDict, m.Data))
		desc.Set("FontFile2", graph.RefTo(fileRef))
	}
	descRef := store.Add(desc)

	widths := graph.NewArray()
	for _, w := range m.Widths {
		widths.Append(graph.Int(int64(w)))
	}
	font := graph.NewDict()
	font.Set("Type", graph.NameOf("Font"))
	font.Set("Subtype", graph.NameOf("TrueType"))
	font.Set("BaseFont", graph.NameOf(m.BaseFont))
	font.Set("Encoding", graph.NameOf("WinAnsiEncoding"))
	font.Set("FontDescriptor", graph.RefTo(descRef))
	font.Set("FirstChar", graph.Int(firstChar))
	font.Set("LastChar", graph.Int(lastChar))
	font.Set("Widths", widths)
	return store.Add(font)
}

// Encode converts text to WinAnsi (CP1252) bytes, substituting '?' for
// anything outside the codepage.
func Encode(text string) []byte {
	out := make([]byte, 0, len(text))
	for _, r := range text {
		if b, ok := charmap.Windows1252.EncodeRune(r); ok {
			out = append(out, b)
		} else {
			out = append(out, '?')
		}
	}
	return out
}
