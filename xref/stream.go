package xref

import (
	"errors"
	"fmt"

	"github.com/Rick-Wilson/pdf-handouts/filters"
	"github.com/Rick-Wilson/pdf-handouts/graph"
	"github.com/Rick-Wilson/pdf-handouts/scanner"
)

// parseStreamSection parses a cross-reference stream. first is the token
// already consumed at the section offset: the object number of the
// "N G obj" header.
func parseStreamSection(s scanner.Scanner, first scanner.Token) (*section, error) {
	// The header may have tokenized as "N G R" when the obj keyword is far;
	// in practice we see the number, then gen, then "obj".
	if first.Type == scanner.TokenNumber {
		genTok, err := s.Next()
		if err != nil {
			return nil, err
		}
		if genTok.Type != scanner.TokenNumber || !genTok.IsInt {
			return nil, errors.New("malformed object header at xref offset")
		}
	}
	objTok, err := s.Next()
	if err != nil {
		return nil, err
	}
	if objTok.Type != scanner.TokenKeyword || objTok.Str != "obj" {
		return nil, errors.New("expected obj keyword at xref stream offset")
	}
	dictObj, err := parseObject(s)
	if err != nil {
		return nil, err
	}
	dict, ok := dictObj.(*graph.Dict)
	if !ok {
		return nil, errNotStream
	}
	if typ, _ := graph.NameValue(dictValue(dict, "Type")); typ != "XRef" {
		return nil, fmt.Errorf("object at xref offset has type %q, want XRef", typ)
	}
	// Length in a cross-reference stream must be direct: resolving an
	// indirect one needs the very table being built. Without it the scanner
	// falls back to searching for endstream.
	if n, ok := graph.IntValue(dictValue(dict, "Length")); ok {
		s.SetNextStreamLength(n)
	} else {
		s.SetNextStreamLength(-1)
	}
	streamTok, err := s.Next()
	if err != nil {
		return nil, err
	}
	if streamTok.Type != scanner.TokenStream {
		return nil, errNotStream
	}
	data, err := decodeXRefData(dict, streamTok.Bytes)
	if err != nil {
		return nil, err
	}
	sec := &section{table: newTable(), trailer: dict, prev: -1, hybrid: -1}
	sec.prev = trailerOffset(dict, "Prev")
	if err := fillFromStream(sec.table, dict, data); err != nil {
		return nil, err
	}
	return sec, nil
}

// decodeXRefData runs the stream's filter chain. Only direct filter values
// are honored; xref streams cannot reference objects for their own keys.
func decodeXRefData(dict *graph.Dict, raw []byte) ([]byte, error) {
	filterVal := dictValue(dict, "Filter")
	var names []string
	var parms []*graph.Dict
	switch f := filterVal.(type) {
	case nil, graph.Null:
	case graph.Name:
		names = []string{f.V}
		if p, ok := dictValue(dict, "DecodeParms").(*graph.Dict); ok {
			parms = []*graph.Dict{p}
		} else {
			parms = []*graph.Dict{nil}
		}
	case *graph.Array:
		parmArr, _ := dictValue(dict, "DecodeParms").(*graph.Array)
		for i, item := range f.Items {
			n, ok := item.(graph.Name)
			if !ok {
				return nil, errors.New("non-name entry in xref stream filter array")
			}
			names = append(names, n.V)
			var p *graph.Dict
			if parmArr != nil && i < len(parmArr.Items) {
				p, _ = parmArr.Items[i].(*graph.Dict)
			}
			parms = append(parms, p)
		}
	default:
		return nil, errors.New("unsupported xref stream filter value")
	}
	pipeline := filters.DefaultPipeline(filters.DefaultLimits())
	data, err := pipeline.Decode(raw, names, parms)
	if err != nil {
		return nil, fmt.Errorf("decode xref stream: %w", err)
	}
	return data, nil
}

// fillFromStream decodes the packed entry rows per the W widths and Index
// subsections.
func fillFromStream(t *Table, dict *graph.Dict, data []byte) error {
	wArr, ok := dictValue(dict, "W").(*graph.Array)
	if !ok || len(wArr.Items) < 3 {
		return errors.New("xref stream missing W array")
	}
	var w [3]int
	for i := 0; i < 3; i++ {
		n, ok := graph.IntValue(wArr.Items[i])
		if !ok || n < 0 || n > 8 {
			return errors.New("xref stream W entry out of range")
		}
		w[i] = int(n)
	}
	rowLen := w[0] + w[1] + w[2]
	if rowLen == 0 {
		return errors.New("xref stream has zero-width rows")
	}

	size, ok := graph.IntValue(dictValue(dict, "Size"))
	if !ok {
		return errors.New("xref stream missing Size")
	}
	var index []int64
	if idxArr, ok := dictValue(dict, "Index").(*graph.Array); ok {
		for _, item := range idxArr.Items {
			n, ok := graph.IntValue(item)
			if !ok {
				return errors.New("non-integer in xref stream Index")
			}
			index = append(index, n)
		}
	} else {
		index = []int64{0, size}
	}
	if len(index)%2 != 0 {
		return errors.New("xref stream Index has odd length")
	}

	pos := 0
	readField := func(width int) int64 {
		var v int64
		for i := 0; i < width; i++ {
			v = v<<8 | int64(data[pos])
			pos++
		}
		return v
	}
	for i := 0; i < len(index); i += 2 {
		first, count := index[i], index[i+1]
		for j := int64(0); j < count; j++ {
			if pos+rowLen > len(data) {
				return errors.New("xref stream data shorter than Index declares")
			}
			objNum := int(first + j)
			typ := int64(1) // type defaults to 1 when the first column is absent
			if w[0] > 0 {
				typ = readField(w[0])
			}
			f2 := readField(w[1])
			f3 := readField(w[2])
			switch typ {
			case 0: // free
			case 1:
				t.entries[objNum] = Entry{Offset: f2, Gen: int(f3)}
			case 2:
				t.compressed[objNum] = StreamEntry{StreamNum: int(f2), Index: int(f3)}
			default:
				// Unknown entry types are reserved; readers ignore them.
			}
		}
	}
	return nil
}

func dictValue(d *graph.Dict, key string) graph.Object {
	v, ok := d.Get(key)
	if !ok {
		return nil
	}
	return v
}
