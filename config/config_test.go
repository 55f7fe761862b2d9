package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDecodeFull(t *testing.T) {
	src := `
title: Course Notes
footer-left: Prof. X
footer-right: "Page [page]"
date: monday
font: 12pt
header-font: bold 20pt
page-numbers: true
page-total: false
markdown: true
mask:
  top: true
  top-height: 55
  all-pages: true
  color: "#ffffff"
`
	f, err := Decode([]byte(src), "test")
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if f.Title == nil || *f.Title != "Course Notes" {
		t.Fatalf("Title = %v", f.Title)
	}
	if f.FooterRight == nil || *f.FooterRight != "Page [page]" {
		t.Fatalf("FooterRight = %v", f.FooterRight)
	}
	if f.PageNumbers == nil || !*f.PageNumbers {
		t.Fatal("PageNumbers not set")
	}
	if f.PageTotal == nil || *f.PageTotal {
		t.Fatal("PageTotal should be explicit false")
	}
	if f.Mask == nil || !f.Mask.Top || f.Mask.TopHeight != 55 || !f.Mask.AllPages {
		t.Fatalf("Mask = %+v", f.Mask)
	}
}

func TestDecodeAbsentFieldsStayNil(t *testing.T) {
	f, err := Decode([]byte("title: X\n"), "test")
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if f.FooterLeft != nil || f.PageNumbers != nil || f.Mask != nil {
		t.Fatalf("absent fields not nil: %+v", f)
	}
}

func TestDecodeRejectsUnknownKey(t *testing.T) {
	_, err := Decode([]byte("titel: oops\n"), "test")
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "test") {
		t.Fatalf("error does not name the source: %v", err)
	}
}

func TestDecodeEmpty(t *testing.T) {
	f, err := Decode(nil, "test")
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if f.Title != nil {
		t.Fatal("empty config should be all nil")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "handouts.yaml")
	if err := os.WriteFile(path, []byte("footer-center: Draft\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if f.FooterCenter == nil || *f.FooterCenter != "Draft" {
		t.Fatalf("FooterCenter = %v", f.FooterCenter)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Fatal("expected error")
	}
}
