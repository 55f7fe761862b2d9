package writer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Rick-Wilson/pdf-handouts/graph"
	"github.com/Rick-Wilson/pdf-handouts/parser"
)

func serializeToString(t *testing.T, obj graph.Object) string {
	t.Helper()
	var buf bytes.Buffer
	if err := Serialize(&buf, obj); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	return buf.String()
}

func TestSerializeScalars(t *testing.T) {
	cases := []struct {
		obj  graph.Object
		want string
	}{
		{graph.Null{}, "null"},
		{graph.Bool(true), "true"},
		{graph.Int(-17), "-17"},
		{graph.Float(1.5), "1.5"},
		{graph.Float(2.0), "2"},
		{graph.Float(0.125), "0.125"},
		{graph.NameOf("Type"), "/Type"},
		{graph.NameOf("A B#"), "/A#20B#23"},
		{graph.Text("plain"), "(plain)"},
		{graph.Text("a(b)c\\d"), `(a\(b\)c\\d)`},
		{graph.String{B: []byte{0xDE, 0xAD}, Hex: true}, "<DEAD>"},
		{graph.RefTo(graph.Ref{Num: 9, Gen: 1}), "9 1 R"},
		{graph.NewArray(graph.Int(1), graph.NameOf("Two"), graph.Text("3")), "[1 /Two (3)]"},
	}
	for _, c := range cases {
		if got := serializeToString(t, c.obj); got != c.want {
			t.Errorf("Serialize(%v) = %q, want %q", c.obj, got, c.want)
		}
	}
}

func TestSerializeDictSortedKeys(t *testing.T) {
	d := graph.NewDict()
	d.Set("Zebra", graph.Int(1))
	d.Set("Alpha", graph.Int(2))
	d.Set("Mid", graph.Int(3))
	want := "<< /Alpha 2 /Mid 3 /Zebra 1 >>"
	for i := 0; i < 10; i++ {
		if got := serializeToString(t, d); got != want {
			t.Fatalf("iteration %d: %q, want %q", i, got, want)
		}
	}
}

func TestSerializeStreamRewritesLength(t *testing.T) {
	dict := graph.NewDict()
	dict.Set("Length", graph.Int(999)) // stale
	st := &graph.Stream{Dict: dict, Data: []byte("12345")}
	got := serializeToString(t, st)
	if !strings.Contains(got, "/Length 5") {
		t.Errorf("Length not rewritten from data: %q", got)
	}
	if !strings.HasSuffix(got, "\nstream\n12345\nendstream") {
		t.Errorf("stream framing wrong: %q", got)
	}
	// The stored dict must stay untouched.
	if n, _ := graph.IntValue(mustGet(t, dict, "Length")); n != 999 {
		t.Error("serialization mutated the source dict")
	}
}

func mustGet(t *testing.T, d *graph.Dict, key string) graph.Object {
	t.Helper()
	v, ok := d.Get(key)
	if !ok {
		t.Fatalf("key %s missing", key)
	}
	return v
}

func buildDoc(t *testing.T) *graph.Store {
	t.Helper()
	store := graph.NewStore()
	pagesRef := graph.Ref{Num: 2}
	page := graph.NewDict()
	page.Set("Type", graph.NameOf("Page"))
	page.Set("Parent", graph.RefTo(pagesRef))
	page.Set("MediaBox", graph.NewArray(graph.Int(0), graph.Int(0), graph.Int(612), graph.Int(792)))
	pageRef := graph.Ref{Num: 3}

	pages := graph.NewDict()
	pages.Set("Type", graph.NameOf("Pages"))
	pages.Set("Kids", graph.NewArray(graph.RefTo(pageRef)))
	pages.Set("Count", graph.Int(1))

	catalog := graph.NewDict()
	catalog.Set("Type", graph.NameOf("Catalog"))
	catalog.Set("Pages", graph.RefTo(pagesRef))

	store.Insert(graph.Ref{Num: 1}, catalog)
	store.Insert(pagesRef, pages)
	store.Insert(pageRef, page)
	store.Trailer.Set("Root", graph.RefTo(graph.Ref{Num: 1}))
	return store
}

func TestWriteRoundTrip(t *testing.T) {
	store := buildDoc(t)
	var buf bytes.Buffer
	if err := Write(&buf, store, Config{}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.Bytes()
	if !bytes.HasPrefix(out, []byte("%PDF-1.7\n")) {
		t.Errorf("missing header: %q", out[:16])
	}
	if !bytes.HasSuffix(out, []byte("%%EOF\n")) {
		t.Error("missing EOF marker")
	}

	reparsed, err := parser.Parse(context.Background(), bytes.NewReader(out), parser.Config{})
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	pages, err := reparsed.Pages()
	if err != nil {
		t.Fatalf("Pages: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("got %d pages after round trip, want 1", len(pages))
	}
	w, h := reparsed.MediaBox(pages[0])
	if w != 612 || h != 792 {
		t.Errorf("MediaBox %gx%g, want 612x792", w, h)
	}
}

func TestWriteStripsXRefStreamKeys(t *testing.T) {
	store := buildDoc(t)
	// Trailer as loaded from a cross-reference stream document.
	store.Trailer.Set("Type", graph.NameOf("XRef"))
	store.Trailer.Set("W", graph.NewArray(graph.Int(1), graph.Int(2), graph.Int(1)))
	store.Trailer.Set("Filter", graph.NameOf("FlateDecode"))

	var buf bytes.Buffer
	if err := Write(&buf, store, Config{}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	tail := buf.String()[bytes.LastIndex(buf.Bytes(), []byte("trailer")):]
	for _, banned := range []string{"/W", "/Filter", "/Type"} {
		if strings.Contains(tail, banned) {
			t.Errorf("trailer still carries %s: %q", banned, tail)
		}
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.pdf")
	store := buildDoc(t)
	if err := WriteFile(path, store, Config{}); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Error("written file is not a PDF")
	}
	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want just the output", len(entries))
	}
}

func TestWriteCompressedRoundTrip(t *testing.T) {
	store := buildDoc(t)
	content := bytes.Repeat([]byte("0 0 m 100 100 l S\n"), 40)
	dict := graph.NewDict()
	contentRef := store.Add(graph.NewStream(dict, append([]byte(nil), content...)))

	page, _ := store.Get(graph.Ref{Num: 3})
	page.(*graph.Dict).Set("Contents", graph.RefTo(contentRef))

	var buf bytes.Buffer
	if err := Write(&buf, store, Config{Compress: true}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if bytes.Contains(buf.Bytes(), content) {
		t.Error("stream written uncompressed despite Compress")
	}
	reparsed, err := parser.Parse(context.Background(), bytes.NewReader(buf.Bytes()), parser.Config{})
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	obj, err := reparsed.Get(contentRef)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	st := obj.(*graph.Stream)
	if name, _ := graph.NameValue(mustGetStream(t, st, "Filter")); name != "FlateDecode" {
		t.Errorf("Filter = %v", name)
	}
}

func mustGetStream(t *testing.T, st *graph.Stream, key string) graph.Object {
	t.Helper()
	v, ok := st.Dict.Get(key)
	if !ok {
		t.Fatalf("stream dict key %s missing", key)
	}
	return v
}
