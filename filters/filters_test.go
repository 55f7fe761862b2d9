package filters

import (
	"bytes"
	"testing"

	"github.com/Rick-Wilson/pdf-handouts/graph"
)

func TestFlateRoundTrip(t *testing.T) {
	plain := []byte("BT /F1 12 Tf (Hello) Tj ET some repeated text text text text")
	encoded := EncodeFlate(plain)
	decoded, err := NewFlateDecoder().Decode(encoded, nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(decoded, plain) {
		t.Fatalf("round trip mismatch: %q", decoded)
	}
}

func TestASCIIHexDecode(t *testing.T) {
	out, err := NewASCIIHexDecoder().Decode([]byte("48 65 6C 6C 6F>"), nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(out) != "Hello" {
		t.Fatalf("got %q", out)
	}
	// Odd digit count pads with zero.
	out, err = NewASCIIHexDecoder().Decode([]byte("4865V"), nil)
	if err == nil && string(out) == "He" {
		t.Fatalf("invalid hex digit accepted")
	}
}

func TestASCII85Decode(t *testing.T) {
	out, err := NewASCII85Decoder().Decode([]byte("87cUR~>"), nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(out) != "Hell" {
		t.Fatalf("got %q", out)
	}
}

func TestPipelineChain(t *testing.T) {
	plain := []byte("chained payload")
	flated := EncodeFlate(plain)
	hexed := make([]byte, 0, len(flated)*2+1)
	const digits = "0123456789ABCDEF"
	for _, b := range flated {
		hexed = append(hexed, digits[b>>4], digits[b&0xF])
	}
	hexed = append(hexed, '>')

	out, err := DefaultPipeline(DefaultLimits()).Decode(hexed, []string{"ASCIIHexDecode", "FlateDecode"}, nil)
	if err != nil {
		t.Fatalf("pipeline: %v", err)
	}
	if !bytes.Equal(out, plain) {
		t.Fatalf("got %q, want %q", out, plain)
	}
}

func TestPipelineUnknownFilter(t *testing.T) {
	_, err := DefaultPipeline(DefaultLimits()).Decode([]byte("x"), []string{"JBIG2Decode"}, nil)
	if err == nil {
		t.Fatalf("expected error for unsupported filter")
	}
}

func TestDecodedSizeLimit(t *testing.T) {
	big := bytes.Repeat([]byte("A"), 4096)
	encoded := EncodeFlate(big)
	p := DefaultPipeline(Limits{MaxDecodedSize: 128})
	if _, err := p.Decode(encoded, []string{"FlateDecode"}, nil); err == nil {
		t.Fatalf("expected limit error")
	}
}

func TestFlateDecoderCapsInflation(t *testing.T) {
	// A megabyte of zeros deflates to a tiny input. The capped decoder
	// must stop inflating at its bound instead of materializing the
	// whole output first.
	big := make([]byte, 1<<20)
	encoded := EncodeFlate(big)

	d := flateDecoder{max: 1024}
	if _, err := d.Decode(encoded, nil); err == nil {
		t.Fatalf("expected limit error")
	}

	exact := bytes.Repeat([]byte("z"), 1024)
	out, err := flateDecoder{max: 1024}.Decode(EncodeFlate(exact), nil)
	if err != nil {
		t.Fatalf("decode at exact cap: %v", err)
	}
	if !bytes.Equal(out, exact) {
		t.Fatalf("output mismatch at exact cap")
	}
}

func TestPNGUpPredictor(t *testing.T) {
	// Two rows of 4 columns, predictor Up: second row stores deltas.
	raw := []byte{
		2, 10, 20, 30, 40, // row 0: Up against implicit zero row
		2, 1, 1, 1, 1, // row 1: +1 per column
	}
	params := graph.NewDict()
	params.Set("Predictor", graph.Int(12))
	params.Set("Columns", graph.Int(4))
	out, err := undoPredictor(raw, params)
	if err != nil {
		t.Fatalf("predictor: %v", err)
	}
	want := []byte{10, 20, 30, 40, 11, 21, 31, 41}
	if !bytes.Equal(out, want) {
		t.Fatalf("got %v, want %v", out, want)
	}
}

func TestDecompressAllDropsFilterEntry(t *testing.T) {
	s := graph.NewStore()
	plain := []byte("q 0.5 0 0 0.5 0 0 cm Q")
	dict := graph.NewDict()
	dict.Set("Filter", graph.NameOf("FlateDecode"))
	st := graph.NewStream(dict, EncodeFlate(plain))
	ref := s.Add(st)

	if err := DecompressAll(s, DefaultLimits()); err != nil {
		t.Fatalf("decompress: %v", err)
	}
	got, _ := s.Get(ref)
	gotStream := got.(*graph.Stream)
	if !bytes.Equal(gotStream.Data, plain) {
		t.Fatalf("data = %q, want %q", gotStream.Data, plain)
	}
	if _, ok := gotStream.Dict.Get("Filter"); ok {
		t.Fatalf("Filter entry not dropped")
	}
	n, _ := graph.IntValue(mustGet(t, gotStream.Dict, "Length"))
	if int(n) != len(plain) {
		t.Fatalf("Length = %d, want %d", n, len(plain))
	}
}

func TestCompressAllSkipsMarkedStreams(t *testing.T) {
	s := graph.NewStore()
	data := bytes.Repeat([]byte("compress me "), 50)
	st := graph.NewStream(graph.NewDict(), append([]byte(nil), data...))
	keep := graph.NewStream(graph.NewDict(), append([]byte(nil), data...))
	keep.NoCompress = true
	s.Add(st)
	s.Add(keep)

	CompressAll(s)
	if _, ok := st.Dict.Get("Filter"); !ok {
		t.Fatalf("stream not compressed")
	}
	if _, ok := keep.Dict.Get("Filter"); ok {
		t.Fatalf("NoCompress stream was compressed")
	}
}

func mustGet(t *testing.T, d *graph.Dict, key string) graph.Object {
	t.Helper()
	v, ok := d.Get(key)
	if !ok {
		t.Fatalf("missing key %s", key)
	}
	return v
}
