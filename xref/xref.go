// Package xref locates and parses cross-reference information: classic
// tables, PDF 1.5 cross-reference streams, and a last-resort repair scan
// that rebuilds the table from the raw bytes.
package xref

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/Rick-Wilson/pdf-handouts/graph"
	"github.com/Rick-Wilson/pdf-handouts/scanner"
)

// Entry locates an object stored directly in the file.
type Entry struct {
	Offset int64
	Gen    int
}

// StreamEntry locates an object stored inside an object stream.
type StreamEntry struct {
	StreamNum int
	Index     int
}

// Table maps object numbers to their locations.
type Table struct {
	entries    map[int]Entry
	compressed map[int]StreamEntry
}

func newTable() *Table {
	return &Table{entries: make(map[int]Entry), compressed: make(map[int]StreamEntry)}
}

// Lookup returns the file offset and generation for objNum.
func (t *Table) Lookup(objNum int) (offset int64, gen int, found bool) {
	e, ok := t.entries[objNum]
	if !ok {
		return 0, 0, false
	}
	return e.Offset, e.Gen, true
}

// ObjStream reports whether objNum lives in an object stream, and where.
func (t *Table) ObjStream(objNum int) (streamNum, index int, found bool) {
	e, ok := t.compressed[objNum]
	if !ok {
		return 0, 0, false
	}
	return e.StreamNum, e.Index, true
}

// Objects returns all known object numbers in ascending order.
func (t *Table) Objects() []int {
	out := maps.Keys(t.entries)
	out = append(out, maps.Keys(t.compressed)...)
	slices.Sort(out)
	return out
}

func (t *Table) Len() int { return len(t.entries) + len(t.compressed) }

// section is one parsed xref segment plus its trailer and chain links.
type section struct {
	table   *Table
	trailer *graph.Dict
	prev    int64 // -1 when absent
	hybrid  int64 // XRefStm offset of a hybrid-reference file, -1 when absent
}

// maxChainDepth bounds the Prev chain so cyclic offsets cannot loop forever.
const maxChainDepth = 64

// Result is the merged view of a document's whole xref chain.
type Result struct {
	Table   *Table
	Trailer *graph.Dict
}

// Resolve locates the newest xref section via startxref and follows the
// Prev chain, merging sections newest-first: the first definition of an
// object number wins.
func Resolve(data []byte) (*Result, error) {
	start, err := locateStartXref(data)
	if err != nil {
		return nil, err
	}
	merged := newTable()
	var trailer *graph.Dict
	seen := make(map[int64]bool)
	queue := []int64{start}
	for depth := 0; len(queue) > 0; depth++ {
		if depth > maxChainDepth {
			return nil, errors.New("xref chain too deep")
		}
		offset := queue[0]
		queue = queue[1:]
		if seen[offset] {
			continue
		}
		seen[offset] = true
		sec, err := parseSection(data, offset)
		if err != nil {
			return nil, err
		}
		for num, e := range sec.table.entries {
			if _, ok := merged.entries[num]; !ok {
				if _, ok := merged.compressed[num]; !ok {
					merged.entries[num] = e
				}
			}
		}
		for num, e := range sec.table.compressed {
			if _, ok := merged.entries[num]; !ok {
				if _, ok := merged.compressed[num]; !ok {
					merged.compressed[num] = e
				}
			}
		}
		if trailer == nil {
			trailer = sec.trailer
		} else if sec.trailer != nil {
			// Older trailers may carry keys (Info, ID) the newest omits.
			for k, v := range sec.trailer.KV {
				if _, ok := trailer.Get(k); !ok {
					trailer.Set(k, v)
				}
			}
		}
		if sec.hybrid >= 0 {
			queue = append(queue, sec.hybrid)
		}
		if sec.prev >= 0 {
			queue = append(queue, sec.prev)
		}
	}
	if trailer == nil {
		return nil, errors.New("no trailer found in xref chain")
	}
	return &Result{Table: merged, Trailer: trailer}, nil
}

func locateStartXref(data []byte) (int64, error) {
	// Search the file tail; producers put startxref within the last KB.
	idx := bytes.LastIndex(data, []byte("startxref"))
	if idx < 0 {
		return 0, errors.New("startxref not found")
	}
	s := scanner.New(bytes.NewReader(data), scanner.Config{})
	if err := s.SeekTo(int64(idx + len("startxref"))); err != nil {
		return 0, err
	}
	tok, err := s.Next()
	if err != nil {
		return 0, fmt.Errorf("read startxref offset: %w", err)
	}
	if tok.Type != scanner.TokenNumber || !tok.IsInt {
		return 0, errors.New("startxref offset is not an integer")
	}
	if tok.Int <= 0 || tok.Int >= int64(len(data)) {
		return 0, fmt.Errorf("xref offset out of range: %d", tok.Int)
	}
	return tok.Int, nil
}

// parseSection reads one xref section at offset: either a classic table
// (the "xref" keyword) or a cross-reference stream object.
func parseSection(data []byte, offset int64) (*section, error) {
	if offset < 0 || offset >= int64(len(data)) {
		return nil, fmt.Errorf("xref offset out of range: %d", offset)
	}
	s := scanner.New(bytes.NewReader(data), scanner.Config{})
	if err := s.SeekTo(offset); err != nil {
		return nil, err
	}
	tok, err := s.Next()
	if err != nil {
		return nil, err
	}
	if tok.Type == scanner.TokenKeyword && tok.Str == "xref" {
		return parseClassicSection(s)
	}
	if tok.Type == scanner.TokenRef || (tok.Type == scanner.TokenNumber && tok.IsInt) {
		// "N G obj" begins a cross-reference stream.
		return parseStreamSection(s, tok)
	}
	return nil, fmt.Errorf("no xref section at offset %d", offset)
}

func parseClassicSection(s scanner.Scanner) (*section, error) {
	sec := &section{table: newTable(), prev: -1, hybrid: -1}
	for {
		tok, err := s.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		if tok.Type == scanner.TokenKeyword && tok.Str == "trailer" {
			trailer, err := parseTrailerDict(s)
			if err != nil {
				return nil, err
			}
			sec.trailer = trailer
			sec.prev = trailerOffset(trailer, "Prev")
			sec.hybrid = trailerOffset(trailer, "XRefStm")
			return sec, nil
		}
		if tok.Type != scanner.TokenNumber || !tok.IsInt {
			return nil, fmt.Errorf("unexpected token in xref table at offset %d", tok.Pos)
		}
		startObj := int(tok.Int)
		countTok, err := s.Next()
		if err != nil {
			return nil, err
		}
		if countTok.Type != scanner.TokenNumber || !countTok.IsInt {
			return nil, errors.New("malformed xref subsection header")
		}
		count := int(countTok.Int)
		for i := 0; i < count; i++ {
			offTok, err := s.Next()
			if err != nil {
				return nil, err
			}
			genTok, err := s.Next()
			if err != nil {
				return nil, err
			}
			kindTok, err := s.Next()
			if err != nil {
				return nil, err
			}
			if offTok.Type != scanner.TokenNumber || genTok.Type != scanner.TokenNumber {
				return nil, fmt.Errorf("malformed xref entry for object %d", startObj+i)
			}
			if kindTok.Type != scanner.TokenKeyword || (kindTok.Str != "n" && kindTok.Str != "f") {
				return nil, fmt.Errorf("malformed xref entry kind for object %d", startObj+i)
			}
			if kindTok.Str == "f" {
				continue
			}
			sec.table.entries[startObj+i] = Entry{Offset: offTok.Int, Gen: int(genTok.Int)}
		}
	}
	return nil, errors.New("xref table has no trailer")
}

func parseTrailerDict(s scanner.Scanner) (*graph.Dict, error) {
	obj, err := parseObject(s)
	if err != nil {
		return nil, fmt.Errorf("parse trailer: %w", err)
	}
	dict, ok := obj.(*graph.Dict)
	if !ok {
		return nil, errors.New("trailer is not a dictionary")
	}
	return dict, nil
}

func trailerOffset(trailer *graph.Dict, key string) int64 {
	v, ok := trailer.Get(key)
	if !ok {
		return -1
	}
	n, ok := graph.IntValue(v)
	if !ok {
		return -1
	}
	return n
}
