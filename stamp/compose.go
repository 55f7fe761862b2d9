// Package stamp composes header/footer content streams and attaches them
// to existing pages through a Form XObject.
package stamp

import (
	"strings"

	"github.com/Rick-Wilson/pdf-handouts/fonts"
)

// Zone picks which footer column receives the page-number and date
// auto-lines. The zero value is the right column.
type Zone int

const (
	ZoneRight Zone = iota
	ZoneCenter
	ZoneLeft
)

// AttachMode selects how the composed overlay joins the page.
type AttachMode int

const (
	// AttachDirectAppend brackets the original content with q/Q streams
	// and invokes the overlay in clean page coordinates.
	AttachDirectAppend AttachMode = iota
	// AttachOverlayObject appends one stream invoking the overlay at the
	// inverse of the page's detected persisting transform.
	AttachOverlayObject
)

// MaskOptions paints opaque bands over a source document's own header
// or footer area before the new text goes down.
type MaskOptions struct {
	Top          bool
	Bottom       bool
	TopHeight    float64 // 0 means defaultMaskHeight
	BottomHeight float64
	AllPages     bool // default: page 1 only
	Color        *RGB // default white
}

const defaultMaskHeight = 40.0

const (
	defaultTitleSize  = 24.0
	defaultFooterSize = 14.0

	titleDrop     = 50.0 // title baseline distance below the top edge
	footerMargin  = 50.0 // left/right footer inset
	footerBaseY   = 30.0 // baseline of a zone's last line
	lineSpacing   = 1.2
	italicShear   = 0.21 // tan 12°
	boldStrokePct = 0.03
)

// Options describes everything stamped onto a document.
type Options struct {
	Title        string
	FooterLeft   string
	FooterCenter string
	FooterRight  string

	// Date is the already-formatted [date] replacement; empty removes
	// the placeholder and suppresses the date auto-line.
	Date string

	PageNumbers bool // auto-line "Page [page]"
	PageTotal   bool // strengthens it to "Page [page] of [pages]"
	NumberZone  Zone
	DateZone    Zone

	HeaderFont FontSpec
	FooterFont FontSpec

	// FontFile embeds the TrueType program at this path instead of
	// relying on a viewer-installed face. When empty, a Family named in
	// the font specs is looked up among the installed fonts; failing
	// that, the built-in metrics are used unembedded.
	FontFile string

	MarkdownEmphasis bool
	Mask             MaskOptions
	Attach           AttachMode
}

func (o *Options) headerSize() float64 {
	if o.HeaderFont.Size > 0 {
		return o.HeaderFont.Size
	}
	return defaultTitleSize
}

func (o *Options) footerSize() float64 {
	if o.FooterFont.Size > 0 {
		return o.FooterFont.Size
	}
	return defaultFooterSize
}

// zoneText returns a column's effective content with the enabled
// auto-lines appended.
func (o *Options) zoneText(z Zone) string {
	var base string
	switch z {
	case ZoneLeft:
		base = o.FooterLeft
	case ZoneCenter:
		base = o.FooterCenter
	default:
		base = o.FooterRight
	}
	lines := []string{}
	if base != "" {
		lines = append(lines, base)
	}
	if o.PageNumbers && o.NumberZone == z {
		if o.PageTotal {
			lines = append(lines, "Page [page] of [pages]")
		} else {
			lines = append(lines, "Page [page]")
		}
	}
	if o.Date != "" && o.DateZone == z {
		lines = append(lines, "[date]")
	}
	return strings.Join(lines, "\n")
}

// Geometry is the page box the overlay is laid out against.
type Geometry struct {
	Width  float64
	Height float64
}

// LetterGeometry is the fallback when a page carries no usable MediaBox.
var LetterGeometry = Geometry{Width: 612, Height: 792}

// ComposePage builds the content-stream bytes for one page's overlay.
// Pure: same inputs, same bytes.
func ComposePage(pageNum, totalPages int, isFirst bool, geom Geometry, opts Options) []byte {
	if geom.Width <= 0 || geom.Height <= 0 {
		geom = LetterGeometry
	}
	var b strings.Builder

	composeMasks(&b, isFirst, geom, opts.Mask)

	if isFirst && opts.Title != "" {
		title := ExpandPlaceholders(opts.Title, pageNum, totalPages, opts.Date)
		size := opts.headerSize()
		x := (geom.Width - estimateWidth(title, size)) / 2
		y := geom.Height - titleDrop

		color := pdfColor(opts.HeaderFont.Color)
		b.WriteString(color + " rg\n" + color + " RG\n")
		writeSegment(&b, segment{text: title, style: style{
			bold:   opts.HeaderFont.Bold,
			italic: opts.HeaderFont.Italic,
		}}, x, y, size)
	}

	color := pdfColor(opts.FooterFont.Color)
	b.WriteString(color + " rg\n" + color + " RG\n")

	size := opts.footerSize()
	lineHeight := size * lineSpacing
	for _, z := range []Zone{ZoneLeft, ZoneCenter, ZoneRight} {
		text := opts.zoneText(z)
		if text == "" {
			continue
		}
		expanded := ExpandPlaceholders(text, pageNum, totalPages, opts.Date)
		lines := SplitLines(expanded)
		if opts.MarkdownEmphasis {
			for i, l := range lines {
				lines[i] = translateMarkdown(l)
			}
		}
		top := footerBaseY + float64(len(lines)-1)*lineHeight
		for i, line := range lines {
			y := top - float64(i)*lineHeight
			var x float64
			switch z {
			case ZoneLeft:
				x = footerMargin
			case ZoneCenter:
				x = (geom.Width - lineWidth(line, size)) / 2
			default:
				x = geom.Width - footerMargin - lineWidth(line, size)
			}
			writeLine(&b, line, x, y, size, opts.FooterFont)
		}
	}

	return []byte(b.String())
}

// composeMasks paints the enabled bands. They go down before any text so
// the stamped lines stay visible on top.
func composeMasks(b *strings.Builder, isFirst bool, geom Geometry, m MaskOptions) {
	if !m.Top && !m.Bottom {
		return
	}
	if !isFirst && !m.AllPages {
		return
	}
	fill := "1 1 1"
	if m.Color != nil {
		fill = pdfColor(m.Color)
	}
	band := func(y, h float64) {
		b.WriteString("q\n" + fill + " rg\n")
		b.WriteString("0 " + num(y) + " " + num(geom.Width) + " " + num(h) + " re\nf\nQ\n")
	}
	if m.Top {
		h := m.TopHeight
		if h <= 0 {
			h = defaultMaskHeight
		}
		band(geom.Height-h, h)
	}
	if m.Bottom {
		h := m.BottomHeight
		if h <= 0 {
			h = defaultMaskHeight
		}
		band(0, h)
	}
}

// writeLine renders one footer line, honoring [font] spans on top of the
// zone's base style.
func writeLine(b *strings.Builder, line string, x, y, size float64, base FontSpec) {
	curX := x
	for _, seg := range parseSegments(line) {
		if seg.text == "" {
			continue
		}
		seg.style.bold = seg.style.bold || base.Bold
		seg.style.italic = seg.style.italic || base.Italic
		writeSegment(b, seg, curX, y, size)
		curX += estimateWidth(seg.text, size)
	}
}

// writeSegment emits one BT/ET block. Italic shears the text matrix;
// bold switches to fill+stroke with a proportional stroke width.
func writeSegment(b *strings.Builder, seg segment, x, y, size float64) {
	b.WriteString("BT\n")
	b.WriteString("/F1 " + num(size) + " Tf\n")
	shear := "0"
	if seg.style.italic {
		shear = num(italicShear)
	}
	b.WriteString("1 0 " + shear + " 1 " + num(x) + " " + num(y) + " Tm\n")
	if seg.style.bold {
		b.WriteString("2 Tr\n")
		b.WriteString(num(size*boldStrokePct) + " w\n")
	} else {
		b.WriteString("0 Tr\n")
	}
	b.WriteString("(" + escapeString(string(fonts.Encode(seg.text))) + ") Tj\n")
	b.WriteString("ET\n")
}
