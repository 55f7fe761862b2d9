package graph

import (
	"errors"
	"testing"
)

func TestInsertAdvancesCounter(t *testing.T) {
	s := NewStore()
	s.Insert(Ref{Num: 7}, NewDict())
	if got := s.NextNum(); got != 8 {
		t.Fatalf("next = %d, want 8", got)
	}
	ref := s.AllocateRef()
	if ref.Num != 8 {
		t.Fatalf("allocated %v, want 8 0 R", ref)
	}
	if s.NextNum() != 9 {
		t.Fatalf("next = %d after allocate, want 9", s.NextNum())
	}
}

func TestInsertBulkDoesNotAdvanceCounter(t *testing.T) {
	s := NewStore()
	s.InsertBulk(map[Ref]Object{
		{Num: 3}: NewDict(),
		{Num: 9}: NewDict(),
	})
	// The counter is untouched by design; callers re-derive it.
	if got := s.NextNum(); got != 1 {
		t.Fatalf("next = %d after bulk insert, want 1", got)
	}
	s.BumpNext(s.MaxNum() + 1)
	if got := s.NextNum(); got != 10 {
		t.Fatalf("next = %d after BumpNext, want 10", got)
	}
	ref := s.AllocateRef()
	if _, exists := s.Objects[ref]; exists {
		t.Fatalf("allocated identifier %v collides with existing object", ref)
	}
}

func TestGetNotFound(t *testing.T) {
	s := NewStore()
	_, err := s.Get(Ref{Num: 5})
	var nf NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nf.Ref.Num != 5 {
		t.Fatalf("error names %v, want object 5", nf.Ref)
	}
}

func TestResolveChainAndCycle(t *testing.T) {
	s := NewStore()
	target := NewDict()
	target.Set("Type", NameOf("Page"))
	s.Insert(Ref{Num: 1}, RefTo(Ref{Num: 2}))
	s.Insert(Ref{Num: 2}, target)
	got, ok := s.Resolve(RefTo(Ref{Num: 1})).(*Dict)
	if !ok || got != target {
		t.Fatalf("chain did not resolve to target dict")
	}

	s.Insert(Ref{Num: 10}, RefTo(Ref{Num: 11}))
	s.Insert(Ref{Num: 11}, RefTo(Ref{Num: 10}))
	if v := s.Resolve(RefTo(Ref{Num: 10})); v != nil {
		t.Fatalf("cycle resolved to %v, want nil", v)
	}
}

func TestResolveDangling(t *testing.T) {
	s := NewStore()
	if v := s.Resolve(RefTo(Ref{Num: 99})); v != nil {
		t.Fatalf("dangling reference resolved to %v, want nil", v)
	}
}

func TestShallowClone(t *testing.T) {
	d := NewDict()
	sub := NewDict()
	d.Set("Font", sub)
	c := d.ShallowClone()
	c.Set("XObject", NewDict())
	if _, ok := d.Get("XObject"); ok {
		t.Fatalf("clone mutation leaked into original")
	}
	got, _ := c.Get("Font")
	if got != Object(sub) {
		t.Fatalf("clone does not share values")
	}
}
