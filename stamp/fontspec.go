package stamp

import (
	"strconv"
	"strings"
)

// FontSpec captures a text style for the title or footer zones. Every
// field is optional; zero values fall back to the caller's defaults.
type FontSpec struct {
	Bold   bool
	Italic bool
	Size   float64 // 0 means default
	Family string
	Color  *RGB
}

// RGB holds a fill color with components in 0..1.
type RGB struct {
	R, G, B float64
}

// ParseFontSpec reads a whitespace-separated style string. Tokens may
// appear in any order: "bold" and "italic" set flags, "#rrggbb" or
// "#rgb" sets the color, a number (with optional "pt" suffix) sets the
// size, and anything else names the family with underscores standing in
// for spaces.
//
//	"bold 14pt"                       -> bold, 14pt
//	"italic 12 Liberation_Serif"      -> italic, 12pt, "Liberation Serif"
//	"bold italic 16pt #ff0000"        -> bold italic, 16pt, red
func ParseFontSpec(spec string) FontSpec {
	var out FontSpec
	for _, token := range strings.Fields(spec) {
		lower := strings.ToLower(token)
		switch {
		case lower == "bold":
			out.Bold = true
		case lower == "italic":
			out.Italic = true
		case strings.HasPrefix(token, "#") && (len(token) == 7 || len(token) == 4):
			if c, ok := parseHexColor(token); ok {
				out.Color = &c
			}
		default:
			if size, err := strconv.ParseFloat(strings.TrimSuffix(lower, "pt"), 64); err == nil {
				out.Size = size
			} else if lower != "" {
				out.Family = strings.ReplaceAll(token, "_", " ")
			}
		}
	}
	return out
}

// ParseColor reads a "#rrggbb" or "#rgb" hex color.
func ParseColor(hex string) (RGB, bool) { return parseHexColor(hex) }

func parseHexColor(hex string) (RGB, bool) {
	hex = strings.TrimPrefix(hex, "#")
	var parts [3]string
	switch len(hex) {
	case 6:
		parts = [3]string{hex[0:2], hex[2:4], hex[4:6]}
	case 3:
		parts = [3]string{hex[0:1] + hex[0:1], hex[1:2] + hex[1:2], hex[2:3] + hex[2:3]}
	default:
		return RGB{}, false
	}
	var vals [3]float64
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 16, 8)
		if err != nil {
			return RGB{}, false
		}
		vals[i] = float64(n) / 255.0
	}
	return RGB{R: vals[0], G: vals[1], B: vals[2]}, true
}

// pdfColor renders the color as a PDF operand triple, black when nil.
func pdfColor(c *RGB) string {
	if c == nil {
		return "0 0 0"
	}
	return num(c.R) + " " + num(c.G) + " " + num(c.B)
}
