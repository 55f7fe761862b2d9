package main

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Rick-Wilson/pdf-handouts/config"
	"github.com/Rick-Wilson/pdf-handouts/stamp"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestExpandInputsLiteralOrder(t *testing.T) {
	dir := t.TempDir()
	b := filepath.Join(dir, "b.pdf")
	a := filepath.Join(dir, "a.pdf")
	touch(t, b)
	touch(t, a)

	got, err := expandInputs([]string{b, a})
	if err != nil {
		t.Fatalf("expandInputs failed: %v", err)
	}
	// Literal paths keep command-line order.
	if diff := cmp.Diff([]string{b, a}, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestExpandInputsGlobSorted(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"c.pdf", "a.pdf", "b.pdf"} {
		touch(t, filepath.Join(dir, n))
	}
	got, err := expandInputs([]string{filepath.Join(dir, "*.pdf")})
	if err != nil {
		t.Fatalf("expandInputs failed: %v", err)
	}
	want := []string{
		filepath.Join(dir, "a.pdf"),
		filepath.Join(dir, "b.pdf"),
		filepath.Join(dir, "c.pdf"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestExpandInputsNoMatch(t *testing.T) {
	pattern := filepath.Join(t.TempDir(), "*.pdf")
	_, err := expandInputs([]string{pattern})
	var nm *NoMatchError
	if !errors.As(err, &nm) {
		t.Fatalf("error = %v, want NoMatchError", err)
	}
	if !strings.Contains(err.Error(), "No files matched pattern: ") {
		t.Fatalf("message = %q", err)
	}
}

func TestExpandInputsMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone.pdf")
	_, err := expandInputs([]string{missing})
	if err == nil || !strings.Contains(err.Error(), "Input file not found: "+missing) {
		t.Fatalf("error = %v", err)
	}
}

func TestExpandInputsEmpty(t *testing.T) {
	if _, err := expandInputs(nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestMaskBandFlag(t *testing.T) {
	fs := flag.NewFlagSet("t", flag.ContinueOnError)
	sf := registerStampFlags(fs)

	if err := fs.Parse([]string{"--mask-top", "--mask-bottom=25"}); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !sf.maskTop.enabled || sf.maskTop.height != 0 {
		t.Fatalf("maskTop = %+v", sf.maskTop)
	}
	if !sf.maskBottom.enabled || sf.maskBottom.height != 25 {
		t.Fatalf("maskBottom = %+v", sf.maskBottom)
	}
}

func TestOptionsFontFallback(t *testing.T) {
	fs := flag.NewFlagSet("t", flag.ContinueOnError)
	sf := registerStampFlags(fs)
	if err := fs.Parse([]string{"--font", "12pt", "--header-font", "bold 20pt"}); err != nil {
		t.Fatal(err)
	}
	opts, err := sf.options(fs)
	if err != nil {
		t.Fatalf("options failed: %v", err)
	}
	if opts.HeaderFont.Size != 20 || !opts.HeaderFont.Bold {
		t.Fatalf("HeaderFont = %+v", opts.HeaderFont)
	}
	// Footer falls back to the base --font spec.
	if opts.FooterFont.Size != 12 || opts.FooterFont.Bold {
		t.Fatalf("FooterFont = %+v", opts.FooterFont)
	}
}

func TestOptionsFontFile(t *testing.T) {
	fs := flag.NewFlagSet("t", flag.ContinueOnError)
	sf := registerStampFlags(fs)
	if err := fs.Parse([]string{"--font-file", "extra/MyFace.ttf"}); err != nil {
		t.Fatal(err)
	}
	opts, err := sf.options(fs)
	if err != nil {
		t.Fatalf("options failed: %v", err)
	}
	if opts.FontFile != "extra/MyFace.ttf" {
		t.Fatalf("FontFile = %q", opts.FontFile)
	}
}

func TestOptionsFontFileFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	src := "font-file: \"fonts/Handout.ttf\"\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	fs := flag.NewFlagSet("t", flag.ContinueOnError)
	sf := registerStampFlags(fs)
	if err := fs.Parse([]string{"--config", path}); err != nil {
		t.Fatal(err)
	}
	opts, err := sf.options(fs)
	if err != nil {
		t.Fatalf("options failed: %v", err)
	}
	if opts.FontFile != "fonts/Handout.ttf" {
		t.Fatalf("FontFile = %q", opts.FontFile)
	}
}

func TestOptionsBadDate(t *testing.T) {
	fs := flag.NewFlagSet("t", flag.ContinueOnError)
	sf := registerStampFlags(fs)
	if err := fs.Parse([]string{"--date", "someday"}); err != nil {
		t.Fatal(err)
	}
	if _, err := sf.options(fs); err == nil {
		t.Fatal("expected date parse error")
	}
}

func TestApplyConfigFlagPrecedence(t *testing.T) {
	fs := flag.NewFlagSet("t", flag.ContinueOnError)
	sf := registerStampFlags(fs)
	if err := fs.Parse([]string{"--title", "CLI Title"}); err != nil {
		t.Fatal(err)
	}

	fileTitle := "File Title"
	fileLeft := "File Left"
	yes := true
	sf.applyConfig(fs, config.File{
		Title:       &fileTitle,
		FooterLeft:  &fileLeft,
		PageNumbers: &yes,
		Mask:        &config.Mask{Top: true, TopHeight: 60},
	})

	if sf.title != "CLI Title" {
		t.Fatalf("explicit flag overridden: %q", sf.title)
	}
	if sf.footerLeft != "File Left" || !sf.pageNumbers {
		t.Fatalf("file values not applied: %q %v", sf.footerLeft, sf.pageNumbers)
	}
	if !sf.maskTop.enabled || sf.maskTop.height != 60 {
		t.Fatalf("mask not applied: %+v", sf.maskTop)
	}
}

func TestOptionsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	src := "footer-right: \"Handout [page]\"\nmask:\n  bottom: true\n  color: \"#00ff00\"\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	fs := flag.NewFlagSet("t", flag.ContinueOnError)
	sf := registerStampFlags(fs)
	if err := fs.Parse([]string{"--config", path}); err != nil {
		t.Fatal(err)
	}
	opts, err := sf.options(fs)
	if err != nil {
		t.Fatalf("options failed: %v", err)
	}
	if opts.FooterRight != "Handout [page]" {
		t.Fatalf("FooterRight = %q", opts.FooterRight)
	}
	if !opts.Mask.Bottom || opts.Mask.Color == nil || opts.Mask.Color.G != 1 {
		t.Fatalf("Mask = %+v", opts.Mask)
	}
	if opts.Attach != stamp.AttachDirectAppend {
		t.Fatalf("Attach = %v", opts.Attach)
	}
}
