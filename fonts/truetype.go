package fonts

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-text/typesetting/font/opentype"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/encoding/charmap"
)

// Load reads a TrueType file from disk and derives embeddable metrics.
func Load(path string) (Metrics, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Metrics{}, &LoadError{Name: path, Err: err}
	}
	m, err := LoadTrueType(data)
	if err != nil {
		return Metrics{}, &LoadError{Name: filepath.Base(path), Err: err}
	}
	return m, nil
}

// LoadTrueType parses a TrueType/OpenType program and measures it for
// single-byte WinAnsi use: one advance width per code 32..255, the
// descriptor numbers from the metric tables, and the raw program kept
// for a FontFile2 stream. The full font is embedded (no subsetting).
func LoadTrueType(data []byte) (Metrics, error) {
	font, err := sfnt.Parse(data)
	if err != nil {
		return Metrics{}, err
	}
	unitsPerEm := font.UnitsPerEm()
	if unitsPerEm == 0 {
		return Metrics{}, errInvalidUnitsPerEm
	}
	buf := &sfnt.Buffer{}
	ppem := fixed.Int26_6(unitsPerEm << 6)

	baseName := "CustomTT"
	if ps, _ := font.Name(buf, sfnt.NameIDPostScript); len(ps) > 0 {
		// Name keys must not contain spaces.
		baseName = strings.ReplaceAll(ps, " ", "")
	}

	m := Metrics{
		BaseFont:    baseName,
		ItalicAngle: italicAngle(font),
		StemV:       80,
		Data:        data,
	}

	metrics, err := font.Metrics(buf, ppem, xfont.HintingNone)
	if err != nil {
		return Metrics{}, err
	}
	m.Ascent = scaleFixed(metrics.Ascent, unitsPerEm)
	// sfnt reports descent as a positive distance below the baseline; the
	// descriptor wants it negative.
	m.Descent = -scaleFixed(metrics.Descent, unitsPerEm)
	m.CapHeight = scaleFixed(metrics.CapHeight, unitsPerEm)
	if m.CapHeight == 0 {
		m.CapHeight = m.Ascent
	}
	m.XHeight = scaleFixed(metrics.XHeight, unitsPerEm)

	bounds, err := font.Bounds(buf, ppem, xfont.HintingNone)
	if err != nil {
		return Metrics{}, err
	}
	// Bounds are in a Y-down space; flip into font units.
	m.BBox = [4]float64{
		scaleFixed(bounds.Min.X, unitsPerEm),
		-scaleFixed(bounds.Max.Y, unitsPerEm),
		scaleFixed(bounds.Max.X, unitsPerEm),
		-scaleFixed(bounds.Min.Y, unitsPerEm),
	}

	fillWidths(&m, font, buf, unitsPerEm, ppem)
	applyOS2(&m, data)
	return m, nil
}

func fillWidths(m *Metrics, font *sfnt.Font, buf *sfnt.Buffer, unitsPerEm sfnt.Units, ppem fixed.Int26_6) {
	for code := firstChar; code <= lastChar; code++ {
		r := charmap.Windows1252.DecodeByte(byte(code))
		if r == utf8Replacement {
			continue
		}
		gi, err := font.GlyphIndex(buf, r)
		if err != nil || gi == 0 {
			continue
		}
		adv, err := font.GlyphAdvance(buf, gi, ppem, xfont.HintingNone)
		if err != nil {
			continue
		}
		m.Widths[code-firstChar] = int(math.Round(scaleFixed(adv, unitsPerEm)))
	}
}

const utf8Replacement = '�'

// applyOS2 refines Flags and StemV from the OS/2 table, which sfnt does
// not expose. Missing or short tables leave conservative defaults.
func applyOS2(m *Metrics, data []byte) {
	m.Flags = 32 // nonsymbolic
	loader, err := opentype.NewLoader(bytes.NewReader(data))
	if err != nil {
		return
	}
	tag := opentype.NewTag('O', 'S', '/', '2')
	if !loader.HasTable(tag) {
		return
	}
	os2, err := loader.RawTable(tag)
	if err != nil || len(os2) < 64 {
		return
	}
	weight := binary.BigEndian.Uint16(os2[4:6])
	if weight >= 50 && weight <= 1000 {
		m.StemV = 10 + 220*(float64(weight)-50)/900
	}
	familyClass := int(int16(binary.BigEndian.Uint16(os2[30:32]))) >> 8
	if familyClass >= 1 && familyClass <= 7 {
		m.Flags |= 2 // serif
	}
	fsSelection := binary.BigEndian.Uint16(os2[62:64])
	if fsSelection&1 != 0 {
		m.Flags |= 64 // italic
	}
}

func italicAngle(font *sfnt.Font) float64 {
	post := font.PostTable()
	if post == nil {
		return 0
	}
	return post.ItalicAngle
}

func scaleFixed(val fixed.Int26_6, unitsPerEm sfnt.Units) float64 {
	return float64(val) * 1000.0 / (64.0 * float64(unitsPerEm))
}
