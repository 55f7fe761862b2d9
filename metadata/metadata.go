// Package metadata reads document-level facts: page count and the
// optional Info dictionary fields.
package metadata

import (
	"errors"
	"unicode/utf16"

	"github.com/Rick-Wilson/pdf-handouts/graph"
)

// ErrNoPages marks a structurally valid document with an empty page tree.
var ErrNoPages = errors.New("document has no pages")

type Metadata struct {
	PageCount int
	Title     string
	Author    string
}

// Extract reads the page count from the catalog's page tree and the Title
// and Author strings from the Info dictionary when present.
func Extract(store *graph.Store) (Metadata, error) {
	n, err := CountPages(store)
	if err != nil {
		return Metadata{}, err
	}
	md := Metadata{PageCount: n}
	if info, ok := store.Info(); ok {
		md.Title = textValue(store, info, "Title")
		md.Author = textValue(store, info, "Author")
	}
	return md, nil
}

// CountPages returns the catalog-declared page count, falling back to a
// tree walk when the root Count is absent or wrong-typed.
func CountPages(store *graph.Store) (int, error) {
	n, err := store.PageCount()
	if err != nil {
		pages, perr := store.Pages()
		if perr != nil {
			return 0, perr
		}
		n = len(pages)
	}
	if n == 0 {
		return 0, ErrNoPages
	}
	return n, nil
}

func textValue(store *graph.Store, dict *graph.Dict, key string) string {
	v, ok := dict.Get(key)
	if !ok {
		return ""
	}
	s, ok := store.Resolve(v).(graph.String)
	if !ok {
		return ""
	}
	return decodeText(s.B)
}

// decodeText handles the two standard text-string encodings: UTF-16BE
// with a byte-order mark, and the byte-per-character default which is
// close enough to Latin-1 for Title and Author display.
func decodeText(b []byte) string {
	if len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF {
		units := make([]uint16, 0, (len(b)-2)/2)
		for i := 2; i+1 < len(b); i += 2 {
			units = append(units, uint16(b[i])<<8|uint16(b[i+1]))
		}
		return string(utf16.Decode(units))
	}
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}
