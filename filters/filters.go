// Package filters implements the stream codecs the tool needs to read and
// write real documents: FlateDecode (zlib), ASCIIHexDecode and
// ASCII85Decode, plus the PNG predictors cross-reference streams use.
package filters

import (
	"bytes"
	"compress/zlib"
	stdascii85 "encoding/ascii85"
	"encoding/hex"
	"errors"
	"io"

	"github.com/Rick-Wilson/pdf-handouts/graph"
)

type Decoder interface {
	Name() string
	Decode(input []byte, params *graph.Dict) ([]byte, error)
}

// Limits caps decode output so a malformed or hostile stream cannot
// exhaust memory.
type Limits struct {
	MaxDecodedSize int64
}

// DefaultLimits allows up to 256 MiB of decoded data per stream.
func DefaultLimits() Limits { return Limits{MaxDecodedSize: 256 << 20} }

type Pipeline struct {
	decoders []Decoder
	limits   Limits
}

func NewPipeline(decoders []Decoder, limits Limits) *Pipeline {
	return &Pipeline{decoders: decoders, limits: limits}
}

// DefaultPipeline returns a pipeline with every supported decoder.
func DefaultPipeline(limits Limits) *Pipeline {
	return NewPipeline([]Decoder{
		flateDecoder{max: limits.MaxDecodedSize},
		NewASCIIHexDecoder(),
		NewASCII85Decoder(),
	}, limits)
}

func (p *Pipeline) findDecoder(name string) Decoder {
	for _, d := range p.decoders {
		if d.Name() == name {
			return d
		}
	}
	return nil
}

// Decode runs input through the named filters in order.
func (p *Pipeline) Decode(input []byte, filterNames []string, params []*graph.Dict) ([]byte, error) {
	data := input
	for i, name := range filterNames {
		dec := p.findDecoder(name)
		if dec == nil {
			return nil, errors.New("unsupported filter: " + name)
		}
		var param *graph.Dict
		if i < len(params) {
			param = params[i]
		}
		out, err := dec.Decode(data, param)
		if err != nil {
			return nil, err
		}
		if p.limits.MaxDecodedSize > 0 && int64(len(out)) > p.limits.MaxDecodedSize {
			return nil, errors.New("decoded size exceeds limit")
		}
		data = out
	}
	return data, nil
}

// flateDecoder inflates zlib-wrapped data. A non-zero max bounds how
// many bytes it is willing to produce, so a small stream cannot expand
// into an arbitrarily large allocation.
type flateDecoder struct {
	max int64
}

func NewFlateDecoder() Decoder { return flateDecoder{} }

func (flateDecoder) Name() string { return "FlateDecode" }

// Decode inflates zlib-wrapped data, then undoes any predictor named in
// the decode parameters.
func (d flateDecoder) Decode(in []byte, params *graph.Dict) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(in))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	src := io.Reader(r)
	if d.max > 0 {
		// One byte past the cap is enough to tell overflow apart from
		// an exact fit.
		src = io.LimitReader(r, d.max+1)
	}
	var out bytes.Buffer
	if _, err := io.Copy(&out, src); err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, err
	}
	if d.max > 0 && int64(out.Len()) > d.max {
		return nil, errors.New("decoded size exceeds limit")
	}
	return undoPredictor(out.Bytes(), params)
}

// EncodeFlate deflates data with zlib, the encoding FlateDecode expects.
func EncodeFlate(data []byte) []byte {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	w.Write(data)
	w.Close()
	return buf.Bytes()
}

type asciiHexDecoder struct{}

func NewASCIIHexDecoder() Decoder { return asciiHexDecoder{} }

func (asciiHexDecoder) Name() string { return "ASCIIHexDecode" }

func (asciiHexDecoder) Decode(in []byte, params *graph.Dict) ([]byte, error) {
	trimmed := make([]byte, 0, len(in))
	for _, c := range in {
		if c == '>' {
			break
		}
		if c == 0x00 || c == 0x09 || c == 0x0A || c == 0x0C || c == 0x0D || c == 0x20 {
			continue
		}
		trimmed = append(trimmed, c)
	}
	if len(trimmed)%2 == 1 {
		trimmed = append(trimmed, '0')
	}
	out := make([]byte, hex.DecodedLen(len(trimmed)))
	n, err := hex.Decode(out, trimmed)
	if err != nil {
		return nil, err
	}
	return out[:n], nil
}

type ascii85Decoder struct{}

func NewASCII85Decoder() Decoder { return ascii85Decoder{} }

func (ascii85Decoder) Name() string { return "ASCII85Decode" }

func (ascii85Decoder) Decode(in []byte, params *graph.Dict) ([]byte, error) {
	trimmed := bytes.TrimSpace(in)
	if bytes.HasPrefix(trimmed, []byte("<~")) {
		trimmed = trimmed[2:]
	}
	if i := bytes.Index(trimmed, []byte("~>")); i >= 0 {
		trimmed = trimmed[:i]
	}
	out := make([]byte, len(trimmed)*2)
	n, _, err := stdascii85.Decode(out, trimmed, true)
	if err != nil {
		return nil, err
	}
	return out[:n], nil
}
