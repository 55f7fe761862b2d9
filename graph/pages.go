package graph

import "fmt"

// maxTreeDepth bounds page-tree walks. Parent chains and Kids nesting in
// malformed input can form cycles; walks carry a visited set as well.
const maxTreeDepth = 64

// Pages returns the identifiers of the document's leaf pages in page order,
// walking the page tree depth-first from the catalog.
func (s *Store) Pages() ([]Ref, error) {
	catalog, err := s.Root()
	if err != nil {
		return nil, err
	}
	pagesObj, ok := catalog.Get("Pages")
	if !ok {
		return nil, fmt.Errorf("catalog has no Pages")
	}
	rootRef, ok := pagesObj.(Reference)
	if !ok {
		return nil, fmt.Errorf("catalog Pages is not a reference")
	}

	var out []Ref
	visited := make(map[Ref]bool)
	var walk func(ref Ref, depth int) error
	walk = func(ref Ref, depth int) error {
		if depth > maxTreeDepth {
			return fmt.Errorf("page tree deeper than %d levels", maxTreeDepth)
		}
		if visited[ref] {
			return fmt.Errorf("page tree cycle at %v", ref)
		}
		visited[ref] = true
		node, ok := s.ResolveDict(RefTo(ref))
		if !ok {
			// Dangling kid: tolerated, the page just does not exist.
			return nil
		}
		typ, _ := NameValue(resolveOrSelf(s, node, "Type"))
		switch typ {
		case "Pages":
			kidsObj, ok := node.Get("Kids")
			if !ok {
				return nil
			}
			kids, ok := s.Resolve(kidsObj).(*Array)
			if !ok {
				return fmt.Errorf("Kids of %v is not an array", ref)
			}
			for _, kid := range kids.Items {
				kidRef, ok := kid.(Reference)
				if !ok {
					continue
				}
				if err := walk(kidRef.R, depth+1); err != nil {
					return err
				}
			}
		default:
			// Page leaves sometimes omit /Type; treat any non-Pages node
			// reached through Kids as a leaf.
			out = append(out, ref)
		}
		return nil
	}
	if err := walk(rootRef.R, 0); err != nil {
		return nil, err
	}
	return out, nil
}

func resolveOrSelf(s *Store, d *Dict, key string) Object {
	v, ok := d.Get(key)
	if !ok {
		return Null{}
	}
	return s.Resolve(v)
}

// PageAttr looks up an attribute on a page dictionary, walking Parent
// references for inheritable attributes (Resources, MediaBox, CropBox,
// Rotate) when the page does not declare the key directly.
func (s *Store) PageAttr(page Ref, key string) (Object, bool) {
	visited := make(map[Ref]bool)
	ref := page
	for depth := 0; depth <= maxTreeDepth; depth++ {
		if visited[ref] {
			return nil, false
		}
		visited[ref] = true
		node, ok := s.ResolveDict(RefTo(ref))
		if !ok {
			return nil, false
		}
		if v, ok := node.Get(key); ok {
			return v, true
		}
		parentObj, ok := node.Get("Parent")
		if !ok {
			return nil, false
		}
		parent, ok := parentObj.(Reference)
		if !ok {
			return nil, false
		}
		ref = parent.R
	}
	return nil, false
}

// Letter-size fallback when a page declares no MediaBox anywhere.
const (
	defaultPageWidth  = 612
	defaultPageHeight = 792
)

// MediaBox returns the page's effective media box size in points,
// falling back to US Letter when none is declared.
func (s *Store) MediaBox(page Ref) (width, height float64) {
	boxObj, ok := s.PageAttr(page, "MediaBox")
	if !ok {
		return defaultPageWidth, defaultPageHeight
	}
	box, ok := s.Resolve(boxObj).(*Array)
	if !ok || box.Len() != 4 {
		return defaultPageWidth, defaultPageHeight
	}
	var vals [4]float64
	for i := 0; i < 4; i++ {
		v, ok := FloatValue(s.Resolve(box.Items[i]))
		if !ok {
			return defaultPageWidth, defaultPageHeight
		}
		vals[i] = v
	}
	w := vals[2] - vals[0]
	h := vals[3] - vals[1]
	if w <= 0 || h <= 0 {
		return defaultPageWidth, defaultPageHeight
	}
	return w, h
}

// PageCount reads the Count field of the page-tree root. This trusts the
// document's own bookkeeping, which is what a round-trip check wants.
func (s *Store) PageCount() (int, error) {
	catalog, err := s.Root()
	if err != nil {
		return 0, err
	}
	pages, ok := s.ResolveDict(resolveRaw(catalog, "Pages"))
	if !ok {
		return 0, fmt.Errorf("catalog has no Pages dictionary")
	}
	countObj, ok := pages.Get("Count")
	if !ok {
		return 0, fmt.Errorf("Pages has no Count")
	}
	n, ok := IntValue(s.Resolve(countObj))
	if !ok {
		return 0, fmt.Errorf("Pages Count is not an integer")
	}
	return int(n), nil
}

func resolveRaw(d *Dict, key string) Object {
	v, ok := d.Get(key)
	if !ok {
		return Null{}
	}
	return v
}
