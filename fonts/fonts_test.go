package fonts

import (
	"os"
	"testing"

	"github.com/Rick-Wilson/pdf-handouts/graph"
)

func TestBuiltinMetrics(t *testing.T) {
	m := Builtin()
	if m.BaseFont != "LiberationSerif" {
		t.Fatalf("BaseFont = %q", m.BaseFont)
	}
	if m.Flags != 34 {
		t.Fatalf("Flags = %d, want 34", m.Flags)
	}
	if m.Ascent != 891 || m.Descent != -216 {
		t.Fatalf("vertical metrics = %v/%v", m.Ascent, m.Descent)
	}
	// Spot-check widths: space, 'W', em-dash slot.
	if w := m.Widths[' '-firstChar]; w != 250 {
		t.Fatalf("space width = %d, want 250", w)
	}
	if w := m.Widths['W'-firstChar]; w != 944 {
		t.Fatalf("W width = %d, want 944", w)
	}
	if w := m.Widths[0x97-firstChar]; w != 1000 {
		t.Fatalf("em-dash width = %d, want 1000", w)
	}
	if len(m.Data) != 0 {
		t.Fatal("builtin font should not carry a font program")
	}
}

func TestEmbedBuiltin(t *testing.T) {
	store := graph.NewStore()
	ref := Embed(store, Builtin())

	obj, err := store.Get(ref)
	if err != nil {
		t.Fatalf("Get font dict: %v", err)
	}
	font, ok := obj.(*graph.Dict)
	if !ok {
		t.Fatalf("font object is %T", obj)
	}
	for key, want := range map[string]string{
		"Type":     "Font",
		"Subtype":  "TrueType",
		"BaseFont": "LiberationSerif",
		"Encoding": "WinAnsiEncoding",
	} {
		got, _ := font.Get(key)
		if name, _ := graph.NameValue(got); name != want {
			t.Fatalf("%s = %v, want /%s", key, got, want)
		}
	}
	widthsObj, _ := font.Get("Widths")
	widths, ok := widthsObj.(*graph.Array)
	if !ok || widths.Len() != lastChar-firstChar+1 {
		t.Fatalf("Widths = %v", widthsObj)
	}

	descObj, _ := font.Get("FontDescriptor")
	desc, ok := store.ResolveDict(descObj)
	if !ok {
		t.Fatalf("FontDescriptor = %v", descObj)
	}
	if _, ok := desc.Get("FontFile2"); ok {
		t.Fatal("builtin descriptor should not reference a font file")
	}
}

func TestEmbedWithFontProgram(t *testing.T) {
	m := Builtin()
	m.Data = []byte("fake font program")

	store := graph.NewStore()
	ref := Embed(store, m)

	obj, _ := store.Get(ref)
	font := obj.(*graph.Dict)
	descObj, _ := font.Get("FontDescriptor")
	desc, _ := store.ResolveDict(descObj)
	fileObj, ok := desc.Get("FontFile2")
	if !ok {
		t.Fatal("descriptor missing FontFile2")
	}
	stream, ok := store.Resolve(fileObj).(*graph.Stream)
	if !ok {
		t.Fatalf("FontFile2 resolves to %T", store.Resolve(fileObj))
	}
	if string(stream.Data) != "fake font program" {
		t.Fatalf("font program = %q", stream.Data)
	}
	l1, _ := stream.Dict.Get("Length1")
	if n, _ := graph.IntValue(l1); n != int64(len(m.Data)) {
		t.Fatalf("Length1 = %v, want %d", l1, len(m.Data))
	}
}

func TestEncodeWinAnsi(t *testing.T) {
	cases := []struct {
		in   string
		want []byte
	}{
		{"Hello", []byte("Hello")},
		{"café", []byte{'c', 'a', 'f', 0xE9}},
		{"em—dash", []byte{'e', 'm', 0x97, 'd', 'a', 's', 'h'}},
		{"€5", []byte{0x80, '5'}}, // euro sign
		{"日本", []byte{'?', '?'}},
	}
	for _, c := range cases {
		got := Encode(c.in)
		if string(got) != string(c.want) {
			t.Errorf("Encode(%q) = % X, want % X", c.in, got, c.want)
		}
	}
}

func TestLoadTrueType(t *testing.T) {
	data, err := os.ReadFile("../testdata/DejaVuSerif.ttf")
	if err != nil {
		t.Skipf("skipping test, font not found: %v", err)
	}
	m, err := LoadTrueType(data)
	if err != nil {
		t.Fatalf("LoadTrueType failed: %v", err)
	}
	if m.BaseFont == "" || m.BaseFont == "CustomTT" {
		t.Fatalf("BaseFont = %q, want PostScript name", m.BaseFont)
	}
	if m.Ascent <= 0 || m.Descent >= 0 {
		t.Fatalf("Ascent/Descent = %v/%v", m.Ascent, m.Descent)
	}
	if m.Flags&32 == 0 {
		t.Fatalf("Flags = %d, want nonsymbolic bit set", m.Flags)
	}
	if w := m.Widths['M'-firstChar]; w <= 0 {
		t.Fatalf("M width = %d", w)
	}
	if len(m.Data) != len(data) {
		t.Fatal("font program not retained")
	}
}

func TestLoadTrueTypeGarbage(t *testing.T) {
	if _, err := LoadTrueType([]byte("not a font")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("testdata/does-not-exist.ttf")
	if err == nil {
		t.Fatal("expected error")
	}
	le, ok := err.(*LoadError)
	if !ok {
		t.Fatalf("error type %T", err)
	}
	if le.Name == "" {
		t.Fatal("LoadError missing name")
	}
}
