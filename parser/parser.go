// Package parser loads a whole PDF file into a graph.Store. Loading is
// eager: every object reachable from the cross-reference table is parsed
// up front, so later stages never touch the file again.
package parser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Rick-Wilson/pdf-handouts/filters"
	"github.com/Rick-Wilson/pdf-handouts/graph"
	"github.com/Rick-Wilson/pdf-handouts/observability"
	"github.com/Rick-Wilson/pdf-handouts/recovery"
	"github.com/Rick-Wilson/pdf-handouts/scanner"
	"github.com/Rick-Wilson/pdf-handouts/xref"
)

// MalformedError reports unparseable syntax with the byte offset where it
// was detected.
type MalformedError struct {
	Offset int64
	Err    error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed PDF at offset %d: %v", e.Offset, e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }

type Config struct {
	Scanner  scanner.Config
	Filters  filters.Limits
	Recovery recovery.Strategy
	Logger   observability.Logger
}

func (c *Config) fill() {
	if c.Logger == nil {
		c.Logger = observability.NopLogger{}
	}
	if c.Filters.MaxDecodedSize == 0 {
		c.Filters = filters.DefaultLimits()
	}
	if c.Scanner.Recovery == nil {
		c.Scanner.Recovery = c.Recovery
	}
}

// Load reads and parses the file at path.
func Load(path string, cfg Config) (*graph.Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(context.Background(), bytes.NewReader(data), cfg)
}

// Parse loads every object in the document. It fails as a whole when the
// cross-reference information is unusable and cannot be repaired, or when
// an object is malformed under a strict recovery strategy.
func Parse(ctx context.Context, r io.ReaderAt, cfg Config) (*graph.Store, error) {
	cfg.fill()
	data, err := slurp(r)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("empty input")
	}

	res, err := xref.Resolve(data)
	if err != nil {
		// A broken table is recoverable; a raw scan usually finds the
		// objects anyway.
		act := recovery.ActionFail
		if cfg.Recovery != nil {
			act = cfg.Recovery.OnError(err, recovery.Location{Component: "xref"})
		}
		if act != recovery.ActionFix && act != recovery.ActionWarn {
			return nil, &MalformedError{Err: err}
		}
		cfg.Logger.Warn("cross-reference table unusable, falling back to raw scan",
			observability.Error("err", err))
		res, err = xref.Repair(data, cfg.Logger)
		if err != nil {
			return nil, &MalformedError{Err: err}
		}
	}

	store := graph.NewStore()
	store.Trailer = res.Trailer
	if v := headerVersion(data); v != "" {
		store.Version = v
	}

	ld := &loader{data: data, table: res.Table, cfg: cfg}
	loaded := make(map[graph.Ref]graph.Object)
	maxNum := 0
	for i, num := range res.Table.Objects() {
		if i%64 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if _, _, inStream := res.Table.ObjStream(num); inStream {
			continue // second pass, once the carrier streams are loaded
		}
		offset, gen, _ := res.Table.Lookup(num)
		obj, err := ld.objectAt(offset, num)
		if err != nil {
			if skippable(cfg.Recovery, err, offset, num) {
				cfg.Logger.Warn("skipping unparseable object",
					observability.Int("object", num), observability.Error("err", err))
				continue
			}
			return nil, &MalformedError{Offset: offset, Err: err}
		}
		loaded[graph.Ref{Num: num, Gen: gen}] = obj
		if num > maxNum {
			maxNum = num
		}
	}

	if err := ld.loadObjectStreams(ctx, loaded, &maxNum); err != nil {
		return nil, err
	}

	store.InsertBulk(loaded)
	store.BumpNext(maxNum + 1)
	cfg.Logger.Debug("document loaded",
		observability.Int("objects", len(loaded)),
		observability.String("version", store.Version))
	return store, nil
}

func skippable(strategy recovery.Strategy, err error, offset int64, num int) bool {
	if strategy == nil {
		return false
	}
	act := strategy.OnError(err, recovery.Location{
		ByteOffset: offset,
		ObjectNum:  num,
		Component:  "parser",
	})
	return act == recovery.ActionSkip || act == recovery.ActionFix || act == recovery.ActionWarn
}

// slurp drains a ReaderAt. Loading is whole-file by design, so there is no
// point pretending to stream here.
func slurp(r io.ReaderAt) ([]byte, error) {
	if br, ok := r.(*bytes.Reader); ok {
		out := make([]byte, br.Size())
		if _, err := br.ReadAt(out, 0); err != nil && err != io.EOF {
			return nil, err
		}
		return out, nil
	}
	var out []byte
	buf := make([]byte, 1<<20)
	var off int64
	for {
		n, err := r.ReadAt(buf, off)
		out = append(out, buf[:n]...)
		off += int64(n)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return out, nil
		}
	}
}

func headerVersion(data []byte) string {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return ""
	}
	end := bytes.IndexAny(data[5:], "\r\n \t")
	if end < 0 || end > 8 {
		return ""
	}
	return string(data[5 : 5+end])
}
