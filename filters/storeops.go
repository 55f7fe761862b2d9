package filters

import (
	"fmt"

	"github.com/Rick-Wilson/pdf-handouts/graph"
)

// NamesFor extracts the filter-name chain and decode parameters from a
// stream dictionary, resolving indirect values through the store.
func NamesFor(s *graph.Store, dict *graph.Dict) (names []string, params []*graph.Dict) {
	filterObj, ok := dict.Get("Filter")
	if !ok {
		return nil, nil
	}
	switch v := s.Resolve(filterObj).(type) {
	case graph.Name:
		names = []string{v.V}
	case *graph.Array:
		for _, item := range v.Items {
			if n, ok := graph.NameValue(s.Resolve(item)); ok {
				names = append(names, n)
			}
		}
	}
	if parmsObj, ok := dict.Get("DecodeParms"); ok {
		switch v := s.Resolve(parmsObj).(type) {
		case *graph.Dict:
			params = append(params, v)
		case *graph.Array:
			for _, item := range v.Items {
				if d, ok := s.Resolve(item).(*graph.Dict); ok {
					params = append(params, d)
				} else {
					params = append(params, nil)
				}
			}
		}
	}
	return names, params
}

// Decode returns the decoded bytes of st without mutating it.
func Decode(s *graph.Store, st *graph.Stream, limits Limits) ([]byte, error) {
	names, params := NamesFor(s, st.Dict)
	if len(names) == 0 {
		return st.Data, nil
	}
	return DefaultPipeline(limits).Decode(st.Data, names, params)
}

// DecompressAll decodes every stream in the store in place, dropping the
// Filter and DecodeParms entries, so content bytes can be inspected and
// spliced. Streams with an unsupported filter chain are left encoded.
// This mirrors the load/decompress/mutate/compress/save lifecycle the
// stamping path uses.
func DecompressAll(s *graph.Store, limits Limits) error {
	for ref, obj := range s.Objects {
		st, ok := obj.(*graph.Stream)
		if !ok {
			continue
		}
		names, params := NamesFor(s, st.Dict)
		if len(names) == 0 {
			continue
		}
		if !allSupported(names) {
			continue
		}
		decoded, err := DefaultPipeline(limits).Decode(st.Data, names, params)
		if err != nil {
			return fmt.Errorf("decode stream %v: %w", ref, err)
		}
		st.Data = decoded
		st.Dict.Delete("Filter")
		st.Dict.Delete("DecodeParms")
		st.Dict.Set("Length", graph.Int(int64(len(decoded))))
	}
	return nil
}

// CompressAll flate-encodes every unfiltered stream in the store, except
// those marked NoCompress.
func CompressAll(s *graph.Store) {
	for _, obj := range s.Objects {
		st, ok := obj.(*graph.Stream)
		if !ok || st.NoCompress {
			continue
		}
		if _, hasFilter := st.Dict.Get("Filter"); hasFilter {
			continue
		}
		encoded := EncodeFlate(st.Data)
		if len(encoded) >= len(st.Data) {
			continue
		}
		st.Data = encoded
		st.Dict.Set("Filter", graph.NameOf("FlateDecode"))
		st.Dict.Set("Length", graph.Int(int64(len(encoded))))
	}
}

func allSupported(names []string) bool {
	for _, n := range names {
		switch n {
		case "FlateDecode", "ASCIIHexDecode", "ASCII85Decode":
		default:
			return false
		}
	}
	return true
}
