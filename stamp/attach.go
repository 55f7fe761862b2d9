package stamp

import (
	"context"
	"fmt"

	"github.com/Rick-Wilson/pdf-handouts/contentstream"
	"github.com/Rick-Wilson/pdf-handouts/coords"
	"github.com/Rick-Wilson/pdf-handouts/fonts"
	"github.com/Rick-Wilson/pdf-handouts/graph"
	"github.com/Rick-Wilson/pdf-handouts/observability"
	"github.com/Rick-Wilson/pdf-handouts/parser"
	"github.com/Rick-Wilson/pdf-handouts/resources"
	"github.com/Rick-Wilson/pdf-handouts/writer"
)

// overlayName is the XObject key the composed content is registered
// under. The resource merger may suffix it when a page already binds
// the name; the invocation bytes always use the actual name.
const overlayName = "HeaderFooter"

// Apply stamps every page of the document in place.
func Apply(ctx context.Context, store *graph.Store, opts Options, logger observability.Logger) error {
	if logger == nil {
		logger = observability.NopLogger{}
	}
	pages, err := store.Pages()
	if err != nil {
		return fmt.Errorf("walk page tree: %w", err)
	}
	metrics, err := typeface(opts, logger)
	if err != nil {
		return err
	}
	fontRef := fonts.Embed(store, metrics)

	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		pageNum := i + 1
		w, h := store.MediaBox(page)
		geom := Geometry{Width: w, Height: h}

		content := ComposePage(pageNum, len(pages), pageNum == 1, geom, opts)
		xobjRef := formXObject(store, content, geom, fontRef)

		name, err := resources.Add(store, page, "XObject", overlayName, graph.RefTo(xobjRef))
		if err != nil {
			return fmt.Errorf("page %d resources: %w", pageNum, err)
		}
		if name != overlayName {
			logger.Debug("overlay renamed",
				observability.Int("page", pageNum),
				observability.String("name", name))
		}

		switch opts.Attach {
		case AttachOverlayObject:
			err = attachOverlay(store, page, name)
		default:
			err = attachDirect(store, page, name)
		}
		if err != nil {
			return fmt.Errorf("page %d: %w", pageNum, err)
		}
	}
	return nil
}

// File loads a document, stamps it, and writes the result atomically.
func File(ctx context.Context, inputPath, outputPath string, opts Options, pcfg parser.Config, wcfg writer.Config) error {
	store, err := parser.Load(inputPath, pcfg)
	if err != nil {
		return err
	}
	if err := Apply(ctx, store, opts, wcfg.Logger); err != nil {
		return err
	}
	return writer.WriteFile(outputPath, store, wcfg)
}

// typeface picks the stamping font: an explicit file, then an installed
// face matching the requested family, then the built-in metrics. A font
// file that fails to parse is fatal.
func typeface(opts Options, logger observability.Logger) (fonts.Metrics, error) {
	if opts.FontFile != "" {
		return fonts.Load(opts.FontFile)
	}
	family := opts.HeaderFont.Family
	if family == "" {
		family = opts.FooterFont.Family
	}
	if family != "" {
		if path, ok := fonts.Locate(family); ok {
			return fonts.Load(path)
		}
		logger.Warn("font family not installed, using built-in face",
			observability.String("family", family))
	}
	return fonts.Builtin(), nil
}

// formXObject wraps composed content in a Form XObject with its own
// font resource, identity matrix, and the page box as BBox.
func formXObject(store *graph.Store, content []byte, geom Geometry, fontRef graph.Ref) graph.Ref {
	fontTable := graph.NewDict()
	fontTable.Set("F1", graph.RefTo(fontRef))
	res := graph.NewDict()
	res.Set("Font", fontTable)

	dict := graph.NewDict()
	dict.Set("Type", graph.NameOf("XObject"))
	dict.Set("Subtype", graph.NameOf("Form"))
	dict.Set("FormType", graph.Int(1))
	dict.Set("BBox", graph.NewArray(
		graph.Int(0), graph.Int(0),
		graph.Float(geom.Width), graph.Float(geom.Height)))
	dict.Set("Matrix", graph.NewArray(
		graph.Int(1), graph.Int(0), graph.Int(0),
		graph.Int(1), graph.Int(0), graph.Int(0)))
	dict.Set("Resources", res)
	return store.Add(graph.NewStream(dict, content))
}

// attachDirect brackets the existing content streams between a saved
// graphics state and a restore-then-draw epilogue:
//
//	q
//	[original content, untouched]
//	 Q
//	q 1 0 0 1 0 0 cm /HeaderFooter Do Q
//
// The Q drops whatever transform the page content left behind, so the
// overlay renders in clean page coordinates.
func attachDirect(store *graph.Store, page graph.Ref, name string) error {
	saveRef := store.Add(graph.NewStream(nil, []byte("q\n")))
	epilogue := " Q\nq\nq 1 0 0 1 0 0 cm /" + name + " Do Q\nQ\n"
	drawRef := store.Add(graph.NewStream(nil, []byte(epilogue)))
	return spliceContents(store, page, &saveRef, drawRef)
}

// attachOverlay leaves the original streams alone and appends one draw
// stream at the inverse of the page's persisting transform, so a source
// that scales or shifts its coordinate system does not distort the
// overlay. A singular transform falls back to identity.
func attachOverlay(store *graph.Store, page graph.Ref, name string) error {
	content, err := contentstream.PageContent(store, page)
	if err != nil {
		return err
	}
	m := contentstream.DetectTransform(content)
	inv, err := m.Inverse()
	if err != nil {
		inv = coords.Identity()
	}
	draw := fmt.Sprintf("q\n%s %s %s %s %s %s cm\n/%s Do\nQ\n",
		num(inv[0]), num(inv[1]), num(inv[2]), num(inv[3]), num(inv[4]), num(inv[5]), name)
	drawRef := store.Add(graph.NewStream(nil, []byte(draw)))
	return spliceContents(store, page, nil, drawRef)
}

// spliceContents rewrites a page's Contents to an array with optional
// prefix and a suffix stream. The existing streams keep their object
// numbers and bytes.
func spliceContents(store *graph.Store, page graph.Ref, prefix *graph.Ref, suffix graph.Ref) error {
	dict, ok := store.ResolveDict(graph.RefTo(page))
	if !ok {
		return graph.NotFoundError{Ref: page}
	}
	var items []graph.Object
	if prefix != nil {
		items = append(items, graph.RefTo(*prefix))
	}
	if existing, ok := dict.Get("Contents"); ok {
		switch v := store.Resolve(existing).(type) {
		case *graph.Array:
			items = append(items, v.Items...)
		default:
			items = append(items, existing)
		}
	}
	items = append(items, graph.RefTo(suffix))
	dict.Set("Contents", graph.NewArray(items...))
	return nil
}
