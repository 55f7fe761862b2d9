package xref

import (
	"bytes"
	"errors"

	"github.com/Rick-Wilson/pdf-handouts/graph"
	"github.com/Rick-Wilson/pdf-handouts/observability"
	"github.com/Rick-Wilson/pdf-handouts/scanner"
)

// Repair rebuilds a cross-reference table by scanning the raw bytes for
// "N G obj" headers. The last definition of each object number wins, which
// matches how incremental updates shadow earlier ones. The trailer is taken
// from the last trailer keyword in the file, or reconstructed by probing
// the discovered objects for the document catalog.
func Repair(data []byte, logger observability.Logger) (*Result, error) {
	if logger == nil {
		logger = observability.NopLogger{}
	}
	table := newTable()
	marker := []byte("obj")
	for i := 0; i+len(marker) <= len(data); i++ {
		if data[i] != 'o' || !bytes.HasPrefix(data[i:], marker) {
			continue
		}
		after := i + len(marker)
		if after < len(data) && !isDelim(data[after]) {
			continue // objection, objective, endobj...
		}
		if i > 0 && !isWS(data[i-1]) {
			continue
		}
		num, gen, start, ok := parseHeaderBackwards(data, i-1)
		if !ok {
			continue
		}
		table.entries[num] = Entry{Offset: start, Gen: gen}
		i = after
	}
	if table.Len() == 0 {
		return nil, errors.New("repair scan found no objects")
	}
	logger.Info("rebuilt cross-reference table from raw scan",
		observability.Int("objects", table.Len()))

	trailer := lastTrailer(data)
	if trailer == nil || !hasRef(trailer, "Root") {
		root, ok := findCatalog(data, table)
		if !ok {
			return nil, errors.New("repair scan found no document catalog")
		}
		if trailer == nil {
			trailer = graph.NewDict()
		}
		trailer.Set("Root", graph.RefTo(root))
	}
	if _, ok := trailer.Get("Size"); !ok {
		max := 0
		for num := range table.entries {
			if num > max {
				max = num
			}
		}
		trailer.Set("Size", graph.Int(int64(max+1)))
	}
	return &Result{Table: table, Trailer: trailer}, nil
}

// parseHeaderBackwards walks left from the byte before "obj", expecting
// whitespace, generation digits, whitespace, object digits. Returns the
// offset of the object number digit run.
func parseHeaderBackwards(data []byte, i int) (num, gen int, start int64, ok bool) {
	for i >= 0 && isWS(data[i]) {
		i--
	}
	genEnd := i
	for i >= 0 && data[i] >= '0' && data[i] <= '9' {
		i--
	}
	if i == genEnd {
		return 0, 0, 0, false
	}
	gen = atoiBytes(data[i+1 : genEnd+1])
	if i < 0 || !isWS(data[i]) {
		return 0, 0, 0, false
	}
	for i >= 0 && isWS(data[i]) {
		i--
	}
	numEnd := i
	for i >= 0 && data[i] >= '0' && data[i] <= '9' {
		i--
	}
	if i == numEnd {
		return 0, 0, 0, false
	}
	if i >= 0 && !isWS(data[i]) && !isDelim(data[i]) {
		return 0, 0, 0, false
	}
	num = atoiBytes(data[i+1 : numEnd+1])
	return num, gen, int64(i + 1), true
}

func lastTrailer(data []byte) *graph.Dict {
	idx := bytes.LastIndex(data, []byte("trailer"))
	for idx >= 0 {
		s := scanner.New(bytes.NewReader(data), scanner.Config{})
		if err := s.SeekTo(int64(idx + len("trailer"))); err == nil {
			if dict, err := parseTrailerDict(s); err == nil {
				return dict
			}
		}
		if idx == 0 {
			break
		}
		idx = bytes.LastIndex(data[:idx], []byte("trailer"))
	}
	return nil
}

// findCatalog parses each discovered object's dictionary looking for
// /Type /Catalog, highest object number first.
func findCatalog(data []byte, table *Table) (graph.Ref, bool) {
	nums := table.Objects()
	for i := len(nums) - 1; i >= 0; i-- {
		offset, gen, ok := table.Lookup(nums[i])
		if !ok {
			continue
		}
		s := scanner.New(bytes.NewReader(data), scanner.Config{})
		if err := s.SeekTo(offset); err != nil {
			continue
		}
		// Skip "N G obj".
		for k := 0; k < 3; k++ {
			tok, err := s.Next()
			if err != nil {
				break
			}
			if tok.Type == scanner.TokenKeyword && tok.Str == "obj" {
				break
			}
			if tok.Type == scanner.TokenDictOpen {
				// Header tokenized as a single ref token; rewind one step
				// by parsing the dict directly.
				if dict, err := parseDict(s); err == nil && isCatalog(dict) {
					return graph.Ref{Num: nums[i], Gen: gen}, true
				}
				break
			}
		}
		obj, err := parseObject(s)
		if err != nil {
			continue
		}
		if dict, ok := obj.(*graph.Dict); ok && isCatalog(dict) {
			return graph.Ref{Num: nums[i], Gen: gen}, true
		}
	}
	return graph.Ref{}, false
}

func isCatalog(dict *graph.Dict) bool {
	typ, _ := graph.NameValue(dictValue(dict, "Type"))
	return typ == "Catalog"
}

func hasRef(dict *graph.Dict, key string) bool {
	v, ok := dict.Get(key)
	if !ok {
		return false
	}
	_, ok = v.(graph.Reference)
	return ok
}

func atoiBytes(b []byte) int {
	n := 0
	for _, c := range b {
		n = n*10 + int(c-'0')
	}
	return n
}

func isWS(c byte) bool {
	return c == 0x00 || c == 0x09 || c == 0x0A || c == 0x0C || c == 0x0D || c == 0x20
}

func isDelim(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	default:
		return isWS(c)
	}
}
