// Package merge combines independently loaded documents into one store
// with a rebuilt page tree.
package merge

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Rick-Wilson/pdf-handouts/graph"
	"github.com/Rick-Wilson/pdf-handouts/observability"
	"github.com/Rick-Wilson/pdf-handouts/parser"
)

// ErrNoInputs is returned when a merge is requested over zero documents.
var ErrNoInputs = errors.New("no input documents")

// EmptyDocumentError fails the whole merge when one input has no pages.
type EmptyDocumentError struct {
	Path string
}

func (e *EmptyDocumentError) Error() string {
	return fmt.Sprintf("document has no pages: %s", e.Path)
}

type Options struct {
	Parser parser.Config
	Logger observability.Logger
}

func (o *Options) fill() {
	if o.Logger == nil {
		o.Logger = observability.NopLogger{}
	}
	if o.Parser.Logger == nil {
		o.Parser.Logger = o.Logger
	}
}

// Files loads every path and merges the documents in the given order.
// Every path must exist before any parsing starts, and every document must
// contribute at least one page.
func Files(ctx context.Context, paths []string, opts Options) (*graph.Store, error) {
	opts.fill()
	if len(paths) == 0 {
		return nil, ErrNoInputs
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("input not readable: %w", err)
		}
	}
	docs := make([]*graph.Store, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := parser.Load(path, opts.Parser)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		n, err := doc.PageCount()
		if err != nil || n == 0 {
			return nil, &EmptyDocumentError{Path: path}
		}
		opts.Logger.Debug("loaded input",
			observability.String("path", path),
			observability.Int("pages", n))
		docs = append(docs, doc)
	}
	return Documents(docs, opts)
}

// Documents splices the stores into one combined graph. Each source's
// objects are renumbered into a disjoint range, all references rewritten,
// and a fresh Pages root and Catalog are built over the concatenated leaf
// pages. Sources are absorbed strictly in input order; the offsets and the
// final page order depend on it.
func Documents(docs []*graph.Store, opts Options) (*graph.Store, error) {
	opts.fill()
	if len(docs) == 0 {
		return nil, ErrNoInputs
	}
	out := graph.NewStore()
	var pageOrder []graph.Ref
	runningMax := 0

	for i, doc := range docs {
		pages, err := doc.Pages()
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i+1, err)
		}
		if len(pages) == 0 {
			return nil, &EmptyDocumentError{Path: fmt.Sprintf("input %d", i+1)}
		}
		offset := runningMax

		shifted := make(map[graph.Ref]graph.Object, len(doc.Objects))
		for ref, obj := range doc.Objects {
			newRef := graph.Ref{Num: ref.Num + offset, Gen: ref.Gen}
			shifted[newRef] = shiftObject(obj, offset)
			if newRef.Num > runningMax {
				runningMax = newRef.Num
			}
		}
		// Bulk insertion leaves the counter alone on purpose; it is
		// re-derived once after every batch below.
		out.InsertBulk(shifted)

		for _, p := range pages {
			pageOrder = append(pageOrder, graph.Ref{Num: p.Num + offset, Gen: p.Gen})
		}
		if doc.Version > out.Version {
			out.Version = doc.Version
		}
	}
	// The counter must clear every absorbed identifier before any fresh
	// allocation happens.
	out.BumpNext(runningMax + 1)

	pagesRef := out.AllocateRef()
	catalogRef := out.AllocateRef()

	kids := graph.NewArray()
	for _, p := range pageOrder {
		kids.Append(graph.RefTo(p))
		pageObj, err := out.Get(p)
		if err != nil {
			return nil, fmt.Errorf("merged page %v: %w", p, err)
		}
		pageDict, ok := pageObj.(*graph.Dict)
		if !ok {
			return nil, fmt.Errorf("merged page %v is %s, want dict", p, pageObj.Kind())
		}
		pageDict.Set("Parent", graph.RefTo(pagesRef))
	}

	pagesDict := graph.NewDict()
	pagesDict.Set("Type", graph.NameOf("Pages"))
	pagesDict.Set("Kids", kids)
	pagesDict.Set("Count", graph.Int(int64(len(pageOrder))))
	out.Insert(pagesRef, pagesDict)

	catalog := graph.NewDict()
	catalog.Set("Type", graph.NameOf("Catalog"))
	catalog.Set("Pages", graph.RefTo(pagesRef))
	out.Insert(catalogRef, catalog)

	out.Trailer.Set("Root", graph.RefTo(catalogRef))
	opts.Logger.Info("merged documents",
		observability.Int("inputs", len(docs)),
		observability.Int("pages", len(pageOrder)),
		observability.Int("objects", len(out.Objects)))
	return out, nil
}

// shiftObject clones obj with every reference moved up by offset. Arrays
// and dictionaries are rebuilt so the source store stays untouched; scalar
// leaves are shared, they are immutable values.
func shiftObject(obj graph.Object, offset int) graph.Object {
	switch v := obj.(type) {
	case graph.Reference:
		return graph.RefTo(graph.Ref{Num: v.R.Num + offset, Gen: v.R.Gen})
	case *graph.Array:
		out := &graph.Array{Items: make([]graph.Object, len(v.Items))}
		for i, item := range v.Items {
			out.Items[i] = shiftObject(item, offset)
		}
		return out
	case *graph.Dict:
		out := graph.NewDict()
		for key, val := range v.KV {
			out.Set(key, shiftObject(val, offset))
		}
		return out
	case *graph.Stream:
		return &graph.Stream{
			Dict:       shiftObject(v.Dict, offset).(*graph.Dict),
			Data:       v.Data,
			NoCompress: v.NoCompress,
		}
	default:
		return obj
	}
}
