package stamp

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

// ExpandPlaceholders substitutes [page], [pages], and [date] in any
// letter case. An empty date removes the [date] marker entirely.
func ExpandPlaceholders(text string, pageNum, totalPages int, date string) string {
	text = replaceFold(text, "[page]", strconv.Itoa(pageNum))
	text = replaceFold(text, "[pages]", strconv.Itoa(totalPages))
	return replaceFold(text, "[date]", date)
}

// replaceFold is strings.ReplaceAll with a case-insensitive needle.
func replaceFold(s, needle, repl string) string {
	lower := strings.ToLower(s)
	needle = strings.ToLower(needle)
	var b strings.Builder
	for {
		i := strings.Index(lower, needle)
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:i])
		b.WriteString(repl)
		s = s[i+len(needle):]
		lower = lower[i+len(needle):]
	}
}

// Break markers in any letter case: [br], <br>, <br/>, <br />.
var lineBreakMarker = regexp.MustCompile(`(?i)\[br\]|<br ?/?>`)

// SplitLines breaks a field on newlines, "|", and the [br]/<br> marker
// family. Variants with a slash or a space before the slash count too.
func SplitLines(text string) []string {
	var lines []string
	for _, chunk := range lineBreakMarker.Split(text, -1) {
		for _, l := range strings.Split(chunk, "\n") {
			lines = append(lines, strings.Split(l, "|")...)
		}
	}
	return lines
}

type style struct {
	bold   bool
	italic bool
}

type segment struct {
	text  string
	style style
}

// parseSegments splits a line at [font ...]...[/font] spans. A span with
// no closing tag styles the rest of the line; a tag with no closing "]"
// is passed through as plain text.
func parseSegments(line string) []segment {
	var segs []segment
	remaining := line
	for remaining != "" {
		start := strings.Index(remaining, "[font ")
		if start < 0 {
			segs = append(segs, segment{text: remaining})
			break
		}
		if start > 0 {
			segs = append(segs, segment{text: remaining[:start]})
		}
		tagEnd := strings.Index(remaining[start:], "]")
		if tagEnd < 0 {
			segs = append(segs, segment{text: remaining[start:]})
			break
		}
		tagEnd += start
		st := parseStyleWords(remaining[start+len("[font ") : tagEnd])
		after := remaining[tagEnd+1:]
		end := strings.Index(after, "[/font]")
		if end < 0 {
			segs = append(segs, segment{text: after, style: st})
			break
		}
		segs = append(segs, segment{text: after[:end], style: st})
		remaining = after[end+len("[/font]"):]
	}
	return segs
}

func parseStyleWords(words string) style {
	lower := strings.ToLower(words)
	return style{
		bold:   strings.Contains(lower, "bold"),
		italic: strings.Contains(lower, "italic"),
	}
}

var markdownParser = goldmark.New()

// translateMarkdown rewrites **strong** and *emphasis* runs into the
// equivalent [font] spans so the rest of the pipeline sees one syntax.
// Anything goldmark does not recognize as emphasis is kept verbatim.
func translateMarkdown(line string) string {
	if !strings.Contains(line, "*") {
		return line
	}
	source := []byte(line)
	doc := markdownParser.Parser().Parse(gmtext.NewReader(source))
	var b strings.Builder
	var render func(n ast.Node)
	render = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch node := c.(type) {
			case *ast.Text:
				b.Write(node.Segment.Value(source))
				if node.SoftLineBreak() || node.HardLineBreak() {
					b.WriteByte('\n')
				}
			case *ast.Emphasis:
				if node.Level >= 2 {
					b.WriteString("[font bold]")
				} else {
					b.WriteString("[font italic]")
				}
				render(node)
				b.WriteString("[/font]")
			default:
				render(c)
			}
		}
	}
	render(doc)
	return b.String()
}

// escapeString protects the literal-string delimiters and the two
// line-break bytes before text lands inside (...) Tj.
var stringEscaper = strings.NewReplacer(
	`\`, `\\`,
	"(", `\(`,
	")", `\)`,
	"\r", `\r`,
	"\n", `\n`,
)

func escapeString(s string) string { return stringEscaper.Replace(s) }

// estimateWidth guesses the rendered width of text: an average glyph in
// the stamping face is roughly 0.48 em.
func estimateWidth(text string, fontSize float64) float64 {
	return float64(len(text)) * fontSize * 0.48
}

// lineWidth measures a line for centering, with style markup excluded.
func lineWidth(line string, fontSize float64) float64 {
	var w float64
	for _, seg := range parseSegments(line) {
		w += estimateWidth(seg.text, fontSize)
	}
	return w
}

// num formats a coordinate or color operand compactly.
func num(v float64) string {
	if v == 0 { // also catches negative zero
		return "0"
	}
	s := strconv.FormatFloat(v, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}
