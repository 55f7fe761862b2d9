package graph

import "fmt"

// NotFoundError reports a reference whose target is absent from the store.
// Dangling references are a tolerated defect in real-world files: lookups
// fail individually instead of condemning the whole document.
type NotFoundError struct{ Ref Ref }

func (e NotFoundError) Error() string { return fmt.Sprintf("object %v not found", e.Ref) }

// Store owns one document's object graph: the identifier-to-object mapping,
// the trailer dictionary, and the next free object number.
//
// The counter invariant: next is always strictly greater than every object
// number present. Insert and AllocateRef maintain it; InsertBulk does NOT,
// so callers must re-derive the counter with BumpNext afterwards. Skipping
// that step silently hands out colliding identifiers.
type Store struct {
	Objects map[Ref]Object
	Trailer *Dict
	Version string

	next int
}

// NewStore returns an empty store with the counter at 1.
func NewStore() *Store {
	return &Store{
		Objects: make(map[Ref]Object),
		Trailer: NewDict(),
		Version: "1.7",
		next:    1,
	}
}

// Get returns the object addressed by ref, or NotFoundError.
func (s *Store) Get(ref Ref) (Object, error) {
	obj, ok := s.Objects[ref]
	if !ok {
		return nil, NotFoundError{Ref: ref}
	}
	return obj, nil
}

// maxResolveDepth bounds Resolve against reference cycles in malformed input.
const maxResolveDepth = 32

// Resolve follows obj through any chain of references to a direct value.
// A dangling reference resolves to nil.
func (s *Store) Resolve(obj Object) Object {
	for i := 0; i < maxResolveDepth; i++ {
		ref, ok := obj.(Reference)
		if !ok {
			return obj
		}
		next, err := s.Get(ref.R)
		if err != nil {
			return nil
		}
		obj = next
	}
	return nil
}

// ResolveDict resolves obj and returns its dictionary, if it has one.
func (s *Store) ResolveDict(obj Object) (*Dict, bool) {
	return DictValue(s.Resolve(obj))
}

// Insert places obj at ref and keeps the counter above ref's number.
func (s *Store) Insert(ref Ref, obj Object) {
	s.Objects[ref] = obj
	if ref.Num >= s.next {
		s.next = ref.Num + 1
	}
}

// Add allocates a fresh identifier for obj and inserts it.
func (s *Store) Add(obj Object) Ref {
	ref := s.AllocateRef()
	s.Objects[ref] = obj
	return ref
}

// AllocateRef returns an identifier guaranteed unused and advances the
// counter past it.
func (s *Store) AllocateRef() Ref {
	ref := Ref{Num: s.next, Gen: 0}
	s.next++
	return ref
}

// InsertBulk absorbs a batch of objects without touching the counter.
// Callers must restore the invariant themselves:
//
//	s.InsertBulk(objs)
//	s.BumpNext(maxInsertedNum + 1)
func (s *Store) InsertBulk(objs map[Ref]Object) {
	for ref, obj := range objs {
		s.Objects[ref] = obj
	}
}

// BumpNext raises the counter to n if it is currently lower.
func (s *Store) BumpNext(n int) {
	if n > s.next {
		s.next = n
	}
}

// NextNum exposes the counter for invariant checks.
func (s *Store) NextNum() int { return s.next }

// MaxNum returns the highest object number present, or 0 for an empty store.
func (s *Store) MaxNum() int {
	max := 0
	for ref := range s.Objects {
		if ref.Num > max {
			max = ref.Num
		}
	}
	return max
}

// Root returns the catalog dictionary referenced by the trailer.
func (s *Store) Root() (*Dict, error) {
	rootObj, ok := s.Trailer.Get("Root")
	if !ok {
		return nil, fmt.Errorf("trailer has no Root")
	}
	ref, ok := rootObj.(Reference)
	if !ok {
		return nil, fmt.Errorf("trailer Root is not a reference")
	}
	obj, err := s.Get(ref.R)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	dict, ok := obj.(*Dict)
	if !ok {
		return nil, fmt.Errorf("catalog is not a dictionary")
	}
	return dict, nil
}

// Info returns the Info dictionary referenced by the trailer, if present.
func (s *Store) Info() (*Dict, bool) {
	infoObj, ok := s.Trailer.Get("Info")
	if !ok {
		return nil, false
	}
	return s.ResolveDict(infoObj)
}
