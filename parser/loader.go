package parser

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/Rick-Wilson/pdf-handouts/filters"
	"github.com/Rick-Wilson/pdf-handouts/graph"
	"github.com/Rick-Wilson/pdf-handouts/observability"
	"github.com/Rick-Wilson/pdf-handouts/recovery"
	"github.com/Rick-Wilson/pdf-handouts/scanner"
	"github.com/Rick-Wilson/pdf-handouts/xref"
)

// loader parses individual objects out of the raw file bytes using the
// resolved cross-reference table.
type loader struct {
	data  []byte
	table *xref.Table
	cfg   Config

	// resolving guards indirect Length lookups against reference cycles.
	resolving map[int]bool
}

func (ld *loader) newScanner(offset int64, num int) (scanner.Scanner, error) {
	s := scanner.New(bytes.NewReader(ld.data), ld.cfg.Scanner)
	s.SetLocation(recovery.Location{ObjectNum: num, Component: "parser"})
	if err := s.SeekTo(offset); err != nil {
		return nil, err
	}
	return s, nil
}

// objectAt parses "N G obj ... endobj" at offset and returns the body.
func (ld *loader) objectAt(offset int64, num int) (graph.Object, error) {
	s, err := ld.newScanner(offset, num)
	if err != nil {
		return nil, err
	}
	gotNum, _, err := readObjHeader(s)
	if err != nil {
		return nil, err
	}
	if gotNum != num {
		return nil, fmt.Errorf("object header says %d, table says %d", gotNum, num)
	}
	return ld.parseBody(s)
}

func readObjHeader(s scanner.Scanner) (num, gen int, err error) {
	numTok, err := s.Next()
	if err != nil {
		return 0, 0, err
	}
	if numTok.Type != scanner.TokenNumber || !numTok.IsInt {
		return 0, 0, fmt.Errorf("expected object number at offset %d", numTok.Pos)
	}
	genTok, err := s.Next()
	if err != nil {
		return 0, 0, err
	}
	if genTok.Type != scanner.TokenNumber || !genTok.IsInt {
		return 0, 0, fmt.Errorf("expected generation at offset %d", genTok.Pos)
	}
	kwTok, err := s.Next()
	if err != nil {
		return 0, 0, err
	}
	if kwTok.Type != scanner.TokenKeyword || kwTok.Str != "obj" {
		return 0, 0, fmt.Errorf("expected obj keyword at offset %d", kwTok.Pos)
	}
	return int(numTok.Int), int(genTok.Int), nil
}

// parseBody reads the object value and, when a stream payload follows its
// dictionary, wraps both into a graph.Stream.
func (ld *loader) parseBody(s scanner.Scanner) (graph.Object, error) {
	obj, err := ld.parseValue(s)
	if err != nil {
		return nil, err
	}
	dict, isDict := obj.(*graph.Dict)
	if !isDict {
		return obj, nil
	}
	// The Length hint must be set before the next token: the scanner
	// consumes the payload as part of recognizing the stream keyword.
	s.SetNextStreamLength(ld.streamLength(dict))
	tok, err := s.Next()
	if err != nil {
		// endobj may be missing entirely; the dictionary is still usable.
		return dict, nil
	}
	if tok.Type != scanner.TokenStream {
		return dict, nil
	}
	return &graph.Stream{Dict: dict, Data: tok.Bytes}, nil
}

// streamLength resolves a stream dictionary's Length, following one level
// of indirection through the table. Returns -1 when unknown, which makes
// the scanner search for endstream instead.
func (ld *loader) streamLength(dict *graph.Dict) int64 {
	v, ok := dict.Get("Length")
	if !ok {
		return -1
	}
	if n, ok := graph.IntValue(v); ok {
		return n
	}
	ref, ok := v.(graph.Reference)
	if !ok {
		return -1
	}
	if ld.resolving == nil {
		ld.resolving = make(map[int]bool)
	}
	if ld.resolving[ref.R.Num] {
		return -1
	}
	ld.resolving[ref.R.Num] = true
	defer delete(ld.resolving, ref.R.Num)

	offset, _, found := ld.table.Lookup(ref.R.Num)
	if !found {
		return -1
	}
	obj, err := ld.objectAt(offset, ref.R.Num)
	if err != nil {
		return -1
	}
	if n, ok := graph.IntValue(obj); ok {
		return n
	}
	return -1
}

func (ld *loader) parseValue(s scanner.Scanner) (graph.Object, error) {
	tok, err := s.Next()
	if err != nil {
		return nil, err
	}
	return ld.valueFromToken(s, tok)
}

func (ld *loader) valueFromToken(s scanner.Scanner, tok scanner.Token) (graph.Object, error) {
	switch tok.Type {
	case scanner.TokenNull:
		return graph.Null{}, nil
	case scanner.TokenBoolean:
		return graph.Boolean{V: tok.Bool}, nil
	case scanner.TokenNumber:
		if tok.IsInt {
			return graph.Integer{V: tok.Int}, nil
		}
		return graph.Real{V: tok.Float}, nil
	case scanner.TokenString:
		return graph.String{B: tok.Bytes, Hex: tok.Hex}, nil
	case scanner.TokenName:
		return graph.Name{V: tok.Str}, nil
	case scanner.TokenRef:
		return graph.Reference{R: graph.Ref{Num: int(tok.Int), Gen: tok.Gen}}, nil
	case scanner.TokenArrayOpen:
		arr := graph.NewArray()
		for {
			t, err := s.Next()
			if err != nil {
				return nil, err
			}
			if t.Type == scanner.TokenKeyword && t.Str == "]" {
				return arr, nil
			}
			item, err := ld.valueFromToken(s, t)
			if err != nil {
				return nil, err
			}
			arr.Items = append(arr.Items, item)
		}
	case scanner.TokenDictOpen:
		dict := graph.NewDict()
		for {
			t, err := s.Next()
			if err != nil {
				return nil, err
			}
			if t.Type == scanner.TokenKeyword && t.Str == ">>" {
				return dict, nil
			}
			if t.Type != scanner.TokenName {
				return nil, fmt.Errorf("dictionary key is not a name at offset %d", t.Pos)
			}
			key := t.Str
			val, err := ld.parseValue(s)
			if err != nil {
				return nil, err
			}
			dict.Set(key, val)
		}
	default:
		return nil, fmt.Errorf("unexpected token %q at offset %d", tok.Str, tok.Pos)
	}
}

// loadObjectStreams extracts compressed objects (type 2 entries) from
// their carrier ObjStm streams, which must already be in loaded.
func (ld *loader) loadObjectStreams(ctx context.Context, loaded map[graph.Ref]graph.Object, maxNum *int) error {
	// Group by carrier so each stream is decoded once.
	byCarrier := make(map[int][]int)
	for _, num := range ld.table.Objects() {
		if streamNum, _, ok := ld.table.ObjStream(num); ok {
			byCarrier[streamNum] = append(byCarrier[streamNum], num)
		}
	}
	for carrierNum, members := range byCarrier {
		if err := ctx.Err(); err != nil {
			return err
		}
		carrier, ok := loaded[graph.Ref{Num: carrierNum}]
		if !ok {
			if skippable(ld.cfg.Recovery, errObjStmMissing, 0, carrierNum) {
				continue
			}
			return &MalformedError{Err: fmt.Errorf("object stream %d: %w", carrierNum, errObjStmMissing)}
		}
		stream, ok := carrier.(*graph.Stream)
		if !ok {
			return &MalformedError{Err: fmt.Errorf("object %d is referenced as an object stream but is not a stream", carrierNum)}
		}
		objs, err := ld.explodeObjStm(stream)
		if err != nil {
			if skippable(ld.cfg.Recovery, err, 0, carrierNum) {
				ld.cfg.Logger.Warn("skipping broken object stream",
					observability.Int("object", carrierNum), observability.Error("err", err))
				continue
			}
			return &MalformedError{Err: fmt.Errorf("object stream %d: %w", carrierNum, err)}
		}
		for _, num := range members {
			_, index, _ := ld.table.ObjStream(num)
			if index < 0 || index >= len(objs) {
				return &MalformedError{Err: fmt.Errorf("object %d: index %d outside object stream %d", num, index, carrierNum)}
			}
			// Compressed objects always have generation 0.
			loaded[graph.Ref{Num: num}] = objs[index]
			if num > *maxNum {
				*maxNum = num
			}
		}
	}
	return nil
}

var errObjStmMissing = errors.New("carrier object missing from file")

// explodeObjStm decodes an ObjStm and parses all N member objects.
func (ld *loader) explodeObjStm(stream *graph.Stream) ([]graph.Object, error) {
	n, ok := graph.IntValue(dictGet(stream.Dict, "N"))
	if !ok || n < 0 {
		return nil, errors.New("missing N")
	}
	first, ok := graph.IntValue(dictGet(stream.Dict, "First"))
	if !ok || first < 0 {
		return nil, errors.New("missing First")
	}
	data, err := ld.decodeStream(stream)
	if err != nil {
		return nil, err
	}

	s := scanner.New(bytes.NewReader(data), ld.cfg.Scanner)
	offsets := make([]int64, 0, n)
	for i := int64(0); i < n; i++ {
		// Pairs of object number and offset relative to First; the numbers
		// are redundant with the xref entries, only offsets matter here.
		if _, err := s.Next(); err != nil {
			return nil, fmt.Errorf("object stream header: %w", err)
		}
		offTok, err := s.Next()
		if err != nil {
			return nil, fmt.Errorf("object stream header: %w", err)
		}
		if offTok.Type != scanner.TokenNumber || !offTok.IsInt {
			return nil, errors.New("non-integer offset in object stream header")
		}
		offsets = append(offsets, offTok.Int)
	}
	objs := make([]graph.Object, 0, n)
	for _, off := range offsets {
		if first+off > int64(len(data)) {
			return nil, errors.New("member offset outside stream data")
		}
		if err := s.SeekTo(first + off); err != nil {
			return nil, err
		}
		obj, err := ld.parseValue(s)
		if err != nil {
			return nil, err
		}
		objs = append(objs, obj)
	}
	return objs, nil
}

// decodeStream runs a stream's own filter chain with direct values only;
// ObjStm filters are direct in every producer we have seen.
func (ld *loader) decodeStream(stream *graph.Stream) ([]byte, error) {
	names, params, err := directFilterNames(stream.Dict)
	if err != nil {
		return nil, err
	}
	pipeline := filters.DefaultPipeline(ld.cfg.Filters)
	return pipeline.Decode(stream.Data, names, params)
}

func directFilterNames(dict *graph.Dict) ([]string, []*graph.Dict, error) {
	var names []string
	var params []*graph.Dict
	switch f := dictGet(dict, "Filter").(type) {
	case nil, graph.Null:
	case graph.Name:
		names = []string{f.V}
		p, _ := dictGet(dict, "DecodeParms").(*graph.Dict)
		params = []*graph.Dict{p}
	case *graph.Array:
		parmArr, _ := dictGet(dict, "DecodeParms").(*graph.Array)
		for i, item := range f.Items {
			name, ok := item.(graph.Name)
			if !ok {
				return nil, nil, errors.New("non-name filter entry")
			}
			names = append(names, name.V)
			var p *graph.Dict
			if parmArr != nil && i < len(parmArr.Items) {
				p, _ = parmArr.Items[i].(*graph.Dict)
			}
			params = append(params, p)
		}
	default:
		return nil, nil, errors.New("indirect Filter on object stream")
	}
	return names, params, nil
}

func dictGet(d *graph.Dict, key string) graph.Object {
	v, ok := d.Get(key)
	if !ok {
		return nil
	}
	return v
}
