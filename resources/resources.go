// Package resources maintains page Resources dictionaries: the category →
// short-name → object tables that content operators resolve against.
package resources

import (
	"fmt"
	"sort"

	"golang.org/x/exp/maps"

	"github.com/Rick-Wilson/pdf-handouts/graph"
)

// materialize returns a Resources dictionary the page owns outright,
// creating one if needed. A page whose Resources are inherited, or held
// behind an indirect reference (possibly shared with sibling pages), gets
// a copy: the top dictionary and each category sub-dictionary are cloned,
// so writes here can never leak into another page. The copy starts from
// the effective inherited dictionary, which keeps every name the existing
// content already uses resolvable.
func materialize(store *graph.Store, pageRef graph.Ref) (*graph.Dict, error) {
	pageObj, err := store.Get(pageRef)
	if err != nil {
		return nil, err
	}
	pageDict, ok := pageObj.(*graph.Dict)
	if !ok {
		return nil, fmt.Errorf("page %v is %s, want dict", pageRef, pageObj.Kind())
	}
	if direct, ok := pageDict.Get("Resources"); ok {
		if owned, ok := direct.(*graph.Dict); ok {
			return owned, nil
		}
	}
	effective := graph.NewDict()
	if inherited, ok := store.PageAttr(pageRef, "Resources"); ok {
		if src, ok := store.ResolveDict(inherited); ok {
			for cat, val := range src.KV {
				if sub, ok := store.ResolveDict(val); ok {
					effective.Set(cat, sub.ShallowClone())
				} else {
					effective.Set(cat, val)
				}
			}
		}
	}
	pageDict.Set("Resources", effective)
	return effective, nil
}

// Add binds name to target in the page's category table and returns the
// name actually used. An existing identical binding is reused; an existing
// conflicting binding pushes the new entry to a fresh suffixed name.
func Add(store *graph.Store, pageRef graph.Ref, category, name string, target graph.Object) (string, error) {
	res, err := materialize(store, pageRef)
	if err != nil {
		return "", err
	}
	table, err := ownedCategory(store, res, category)
	if err != nil {
		return "", err
	}
	actual := name
	for i := 2; ; i++ {
		existing, ok := table.Get(actual)
		if !ok {
			break
		}
		if sameTarget(existing, target) {
			return actual, nil
		}
		actual = fmt.Sprintf("%s%d", name, i)
	}
	table.Set(actual, target)
	return actual, nil
}

// MergeInto folds donor's categories into the page's Resources.
// Collisions on the same short name are deduplicated when both sides bind
// the same target and otherwise renamed; the returned map records every
// rename as "Category/oldName" → newName so the caller can rewrite the
// operator bytes that mention them.
func MergeInto(store *graph.Store, pageRef graph.Ref, donor *graph.Dict) (map[string]string, error) {
	res, err := materialize(store, pageRef)
	if err != nil {
		return nil, err
	}
	renames := make(map[string]string)

	cats := maps.Keys(donor.KV)
	sort.Strings(cats)
	for _, cat := range cats {
		donorSub, ok := store.ResolveDict(donor.KV[cat])
		if !ok {
			// Non-dictionary categories (ProcSet arrays) copy straight over
			// when absent and otherwise keep the page's version.
			if _, exists := res.Get(cat); !exists {
				res.Set(cat, donor.KV[cat])
			}
			continue
		}
		if _, exists := res.Get(cat); !exists {
			res.Set(cat, donorSub.ShallowClone())
			continue
		}
		names := maps.Keys(donorSub.KV)
		sort.Strings(names)
		for _, name := range names {
			actual, err := Add(store, pageRef, cat, name, donorSub.KV[name])
			if err != nil {
				return nil, err
			}
			if actual != name {
				renames[cat+"/"+name] = actual
			}
		}
	}
	return renames, nil
}

// ownedCategory returns the category sub-dictionary as a page-owned dict,
// cloning it out of an indirect reference if needed.
func ownedCategory(store *graph.Store, res *graph.Dict, category string) (*graph.Dict, error) {
	val, ok := res.Get(category)
	if !ok {
		table := graph.NewDict()
		res.Set(category, table)
		return table, nil
	}
	if owned, ok := val.(*graph.Dict); ok {
		return owned, nil
	}
	resolved, ok := store.ResolveDict(val)
	if !ok {
		return nil, fmt.Errorf("resource category %s is not a dictionary", category)
	}
	clone := resolved.ShallowClone()
	res.Set(category, clone)
	return clone, nil
}

// sameTarget reports whether two bindings denote the same object. Only
// reference identity counts; anything else is treated as a conflict, which
// at worst renames where it could have deduplicated.
func sameTarget(a, b graph.Object) bool {
	ra, ok := a.(graph.Reference)
	if !ok {
		return false
	}
	rb, ok := b.(graph.Reference)
	if !ok {
		return false
	}
	return ra.R == rb.R
}
