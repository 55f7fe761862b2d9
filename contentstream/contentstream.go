// Package contentstream inspects page content: the operator text of one or
// more Contents streams, concatenated in array order.
package contentstream

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/Rick-Wilson/pdf-handouts/coords"
	"github.com/Rick-Wilson/pdf-handouts/filters"
	"github.com/Rick-Wilson/pdf-handouts/graph"
)

// tokenize splits a content stream into operands/operators (naive
// whitespace split). Deliberately shallow: string operands with embedded
// spaces split apart, which is fine for the transform scan below.
func tokenize(src string) []string {
	return strings.Fields(src)
}

// DetectTransform reports the coordinate transform left active when
// execution reaches bytes appended at the end of content.
//
// It is a syntactic scan, not an interpreter: find the first cm operator
// with six numeric operands; if any q appears before it the transform sits
// inside a save/restore bracket and will be popped, so identity is
// reported. No cm at all also means identity. Producers emit one of
// exactly two idioms (always bracketed or never bracketed), which is what
// makes the shallow scan sufficient.
func DetectTransform(content []byte) coords.Matrix {
	tokens := tokenize(string(content))
	sawSave := false
	for i, tok := range tokens {
		switch tok {
		case "q":
			sawSave = true
		case "cm":
			if sawSave || i < 6 {
				return coords.Identity()
			}
			var m coords.Matrix
			for j := 0; j < 6; j++ {
				v, err := strconv.ParseFloat(tokens[i-6+j], 64)
				if err != nil {
					return coords.Identity()
				}
				m[j] = v
			}
			return m
		}
	}
	return coords.Identity()
}

// PageContent returns the page's effective content: every Contents stream
// decoded and joined with a newline, in array order. A page with no
// Contents yields nil.
func PageContent(store *graph.Store, page graph.Ref) ([]byte, error) {
	pageObj, err := store.Get(page)
	if err != nil {
		return nil, err
	}
	pageDict, ok := pageObj.(*graph.Dict)
	if !ok {
		return nil, fmt.Errorf("page %v is %s, want dict", page, pageObj.Kind())
	}
	contents, ok := pageDict.Get("Contents")
	if !ok {
		return nil, nil
	}
	var parts [][]byte
	collect := func(obj graph.Object) error {
		resolved := store.Resolve(obj)
		stream, ok := resolved.(*graph.Stream)
		if !ok {
			return fmt.Errorf("page %v: Contents entry is not a stream", page)
		}
		data, err := filters.Decode(store, stream, filters.DefaultLimits())
		if err != nil {
			return fmt.Errorf("page %v: decode content: %w", page, err)
		}
		parts = append(parts, data)
		return nil
	}
	switch v := store.Resolve(contents).(type) {
	case *graph.Array:
		for _, item := range v.Items {
			if err := collect(item); err != nil {
				return nil, err
			}
		}
	default:
		if err := collect(contents); err != nil {
			return nil, err
		}
	}
	return bytes.Join(parts, []byte("\n")), nil
}
