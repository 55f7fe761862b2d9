package main

import (
	"flag"
	"fmt"
	"strconv"
	"time"

	"github.com/Rick-Wilson/pdf-handouts/config"
	"github.com/Rick-Wilson/pdf-handouts/dateexpr"
	"github.com/Rick-Wilson/pdf-handouts/stamp"
)

// maskBand is a flag that acts as a switch but also accepts a band
// height: --mask-top enables the default height, --mask-top=55 sets it.
type maskBand struct {
	enabled bool
	height  float64
}

func (m *maskBand) String() string {
	if !m.enabled {
		return "off"
	}
	return strconv.FormatFloat(m.height, 'f', -1, 64)
}

func (m *maskBand) Set(s string) error {
	switch s {
	case "true", "":
		m.enabled = true
		return nil
	case "false":
		m.enabled = false
		return nil
	}
	h, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("band height must be a number: %q", s)
	}
	m.enabled = true
	m.height = h
	return nil
}

func (m *maskBand) IsBoolFlag() bool { return true }

type stampFlags struct {
	title        string
	footerLeft   string
	footerCenter string
	footerRight  string
	date         string
	font         string
	headerFont   string
	footerFont   string
	fontFile     string
	pageNumbers  bool
	pageTotal    bool
	markdown     bool
	maskTop      maskBand
	maskBottom   maskBand
	maskAll      bool
	maskColor    string
	configPath   string
	overlay      bool
}

func registerStampFlags(fs *flag.FlagSet) *stampFlags {
	sf := &stampFlags{}
	fs.StringVar(&sf.title, "title", "", "Title centered on the first page")
	fs.StringVar(&sf.footerLeft, "footer-left", "", "Footer left section")
	fs.StringVar(&sf.footerCenter, "footer-center", "", "Footer center section")
	fs.StringVar(&sf.footerRight, "footer-right", "", "Footer right section")
	fs.StringVar(&sf.date, "date", "", `Date for [date]: "today", a date, or a weekday like "monday +1"`)
	fs.StringVar(&sf.font, "font", "", `Font spec for all text, e.g. "bold 14pt #333333"`)
	fs.StringVar(&sf.headerFont, "header-font", "", "Font spec for the title (overrides --font)")
	fs.StringVar(&sf.footerFont, "footer-font", "", "Font spec for footers (overrides --font)")
	fs.StringVar(&sf.fontFile, "font-file", "", "TrueType file to embed for stamped text")
	fs.BoolVar(&sf.pageNumbers, "page-numbers", false, `Add a "Page N" footer line`)
	fs.BoolVar(&sf.pageTotal, "page-total", false, `Show "Page N of M" instead of "Page N"`)
	fs.BoolVar(&sf.markdown, "markdown", false, "Treat **bold** and *italic* markdown in footer text")
	fs.Var(&sf.maskTop, "mask-top", "Blank a band at the top of the page (optionally =height)")
	fs.Var(&sf.maskBottom, "mask-bottom", "Blank a band at the bottom of the page (optionally =height)")
	fs.BoolVar(&sf.maskAll, "mask-all", false, "Apply masks to every page, not just page 1")
	fs.StringVar(&sf.maskColor, "mask-color", "", "Mask fill color as #rrggbb (default white)")
	fs.StringVar(&sf.configPath, "config", "", "YAML file with the same options")
	fs.BoolVar(&sf.overlay, "overlay", false, "Attach via an overlay object instead of direct append")
	return sf
}

// applyConfig fills in file values for flags the user did not set
// explicitly on the command line.
func (sf *stampFlags) applyConfig(fs *flag.FlagSet, cf config.File) {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	str := func(name string, dst *string, v *string) {
		if v != nil && !set[name] {
			*dst = *v
		}
	}
	boolean := func(name string, dst *bool, v *bool) {
		if v != nil && !set[name] {
			*dst = *v
		}
	}
	str("title", &sf.title, cf.Title)
	str("footer-left", &sf.footerLeft, cf.FooterLeft)
	str("footer-center", &sf.footerCenter, cf.FooterCenter)
	str("footer-right", &sf.footerRight, cf.FooterRight)
	str("date", &sf.date, cf.Date)
	str("font", &sf.font, cf.Font)
	str("header-font", &sf.headerFont, cf.HeaderFont)
	str("footer-font", &sf.footerFont, cf.FooterFont)
	str("font-file", &sf.fontFile, cf.FontFile)
	boolean("page-numbers", &sf.pageNumbers, cf.PageNumbers)
	boolean("page-total", &sf.pageTotal, cf.PageTotal)
	boolean("markdown", &sf.markdown, cf.Markdown)

	if cf.Mask == nil {
		return
	}
	if cf.Mask.Top && !set["mask-top"] {
		sf.maskTop.enabled = true
		sf.maskTop.height = cf.Mask.TopHeight
	}
	if cf.Mask.Bottom && !set["mask-bottom"] {
		sf.maskBottom.enabled = true
		sf.maskBottom.height = cf.Mask.BottomHeight
	}
	if cf.Mask.AllPages && !set["mask-all"] {
		sf.maskAll = true
	}
	if cf.Mask.Color != "" && !set["mask-color"] {
		sf.maskColor = cf.Mask.Color
	}
}

// options resolves the final stamping options: config file merge, date
// expression, and font specs.
func (sf *stampFlags) options(fs *flag.FlagSet) (stamp.Options, error) {
	if sf.configPath != "" {
		cf, err := config.Load(sf.configPath)
		if err != nil {
			return stamp.Options{}, err
		}
		sf.applyConfig(fs, cf)
	}

	date, err := dateexpr.ResolveString(sf.date, time.Now())
	if err != nil {
		return stamp.Options{}, err
	}

	base := stamp.ParseFontSpec(sf.font)
	header, footer := base, base
	if sf.headerFont != "" {
		header = stamp.ParseFontSpec(sf.headerFont)
	}
	if sf.footerFont != "" {
		footer = stamp.ParseFontSpec(sf.footerFont)
	}

	opts := stamp.Options{
		Title:            sf.title,
		FooterLeft:       sf.footerLeft,
		FooterCenter:     sf.footerCenter,
		FooterRight:      sf.footerRight,
		Date:             date,
		PageNumbers:      sf.pageNumbers,
		PageTotal:        sf.pageTotal,
		HeaderFont:       header,
		FooterFont:       footer,
		FontFile:         sf.fontFile,
		MarkdownEmphasis: sf.markdown,
		Mask: stamp.MaskOptions{
			Top:          sf.maskTop.enabled,
			Bottom:       sf.maskBottom.enabled,
			TopHeight:    sf.maskTop.height,
			BottomHeight: sf.maskBottom.height,
			AllPages:     sf.maskAll,
		},
	}
	if sf.overlay {
		opts.Attach = stamp.AttachOverlayObject
	}
	if sf.maskColor != "" {
		c, ok := stamp.ParseColor(sf.maskColor)
		if !ok {
			return stamp.Options{}, fmt.Errorf("bad mask color %q", sf.maskColor)
		}
		opts.Mask.Color = &c
	}
	return opts, nil
}
