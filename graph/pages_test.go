package graph

import "testing"

// buildNestedDoc builds a catalog with a two-level page tree:
// root Pages -> [inner Pages -> [page1, page2], page3].
func buildNestedDoc() (*Store, []Ref) {
	s := NewStore()
	rootPages := Ref{Num: 1}
	innerPages := Ref{Num: 2}
	page1 := Ref{Num: 3}
	page2 := Ref{Num: 4}
	page3 := Ref{Num: 5}
	catalogRef := Ref{Num: 6}

	inner := NewDict()
	inner.Set("Type", NameOf("Pages"))
	inner.Set("Kids", NewArray(RefTo(page1), RefTo(page2)))
	inner.Set("Count", Int(2))
	inner.Set("Parent", RefTo(rootPages))
	inner.Set("Resources", NewDict())
	inner.Set("MediaBox", NewArray(Int(0), Int(0), Int(595), Int(842)))

	root := NewDict()
	root.Set("Type", NameOf("Pages"))
	root.Set("Kids", NewArray(RefTo(innerPages), RefTo(page3)))
	root.Set("Count", Int(3))

	for _, ref := range []Ref{page1, page2} {
		p := NewDict()
		p.Set("Type", NameOf("Page"))
		p.Set("Parent", RefTo(innerPages))
		s.Insert(ref, p)
	}
	p3 := NewDict()
	p3.Set("Type", NameOf("Page"))
	p3.Set("Parent", RefTo(rootPages))
	p3.Set("MediaBox", NewArray(Int(0), Int(0), Int(612), Int(792)))
	s.Insert(page3, p3)

	s.Insert(rootPages, root)
	s.Insert(innerPages, inner)

	catalog := NewDict()
	catalog.Set("Type", NameOf("Catalog"))
	catalog.Set("Pages", RefTo(rootPages))
	s.Insert(catalogRef, catalog)
	s.Trailer.Set("Root", RefTo(catalogRef))

	return s, []Ref{page1, page2, page3}
}

func TestPagesFlattensNestedTree(t *testing.T) {
	s, want := buildNestedDoc()
	got, err := s.Pages()
	if err != nil {
		t.Fatalf("Pages: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d pages, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("page %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestPageAttrInheritance(t *testing.T) {
	s, pages := buildNestedDoc()
	// page1 inherits MediaBox from the inner Pages node.
	w, h := s.MediaBox(pages[0])
	if w != 595 || h != 842 {
		t.Fatalf("inherited MediaBox = %vx%v, want 595x842", w, h)
	}
	// page3 declares its own.
	w, h = s.MediaBox(pages[2])
	if w != 612 || h != 792 {
		t.Fatalf("direct MediaBox = %vx%v, want 612x792", w, h)
	}
	if _, ok := s.PageAttr(pages[0], "Resources"); !ok {
		t.Fatalf("Resources not inherited from ancestor")
	}
	if _, ok := s.PageAttr(pages[2], "Resources"); ok {
		t.Fatalf("page3 should have no Resources anywhere on its chain")
	}
}

func TestMediaBoxFallback(t *testing.T) {
	s := NewStore()
	p := NewDict()
	p.Set("Type", NameOf("Page"))
	ref := s.Add(p)
	w, h := s.MediaBox(ref)
	if w != 612 || h != 792 {
		t.Fatalf("fallback = %vx%v, want 612x792", w, h)
	}
}

func TestPageTreeCycleDetected(t *testing.T) {
	s := NewStore()
	pagesRef := Ref{Num: 1}
	pages := NewDict()
	pages.Set("Type", NameOf("Pages"))
	pages.Set("Kids", NewArray(RefTo(pagesRef)))
	s.Insert(pagesRef, pages)
	catalog := NewDict()
	catalog.Set("Type", NameOf("Catalog"))
	catalog.Set("Pages", RefTo(pagesRef))
	catRef := s.Add(catalog)
	s.Trailer.Set("Root", RefTo(catRef))
	if _, err := s.Pages(); err == nil {
		t.Fatalf("expected error for cyclic page tree")
	}
}

func TestPageCount(t *testing.T) {
	s, _ := buildNestedDoc()
	n, err := s.PageCount()
	if err != nil {
		t.Fatalf("PageCount: %v", err)
	}
	if n != 3 {
		t.Fatalf("count = %d, want 3", n)
	}
}
