package writer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/Rick-Wilson/pdf-handouts/filters"
	"github.com/Rick-Wilson/pdf-handouts/graph"
	"github.com/Rick-Wilson/pdf-handouts/observability"
)

type Config struct {
	// Compress flate-encodes eligible streams before writing.
	Compress bool
	Logger   observability.Logger
}

// binaryMarker follows the version header so transfer tools treat the file
// as binary.
const binaryMarker = "%\xE2\xE3\xCF\xD3\n"

// Write emits the full file: header, body in ascending object-number
// order, classic cross-reference table, trailer, startxref.
func Write(w io.Writer, store *graph.Store, cfg Config) error {
	logger := cfg.Logger
	if logger == nil {
		logger = observability.NopLogger{}
	}
	if store.Trailer == nil {
		return errors.New("store has no trailer")
	}
	if cfg.Compress {
		filters.CompressAll(store)
	}

	bw := bufio.NewWriter(w)
	cw := &countingWriter{w: bw}
	version := store.Version
	if version == "" {
		version = "1.7"
	}
	if _, err := fmt.Fprintf(cw, "%%PDF-%s\n%s", version, binaryMarker); err != nil {
		return err
	}

	refs := maps.Keys(store.Objects)
	slices.SortFunc(refs, func(a, b graph.Ref) int {
		if a.Num != b.Num {
			return a.Num - b.Num
		}
		return a.Gen - b.Gen
	})
	offsets := make(map[int]entry, len(refs))
	maxNum := 0
	for _, ref := range refs {
		offsets[ref.Num] = entry{offset: cw.n, gen: ref.Gen}
		if ref.Num > maxNum {
			maxNum = ref.Num
		}
		if _, err := fmt.Fprintf(cw, "%d %d obj\n", ref.Num, ref.Gen); err != nil {
			return err
		}
		if err := Serialize(cw, store.Objects[ref]); err != nil {
			return fmt.Errorf("serialize object %d: %w", ref.Num, err)
		}
		if _, err := io.WriteString(cw, "\nendobj\n"); err != nil {
			return err
		}
	}

	xrefAt := cw.n
	if _, err := fmt.Fprintf(cw, "xref\n0 %d\n", maxNum+1); err != nil {
		return err
	}
	if _, err := io.WriteString(cw, "0000000000 65535 f \n"); err != nil {
		return err
	}
	for num := 1; num <= maxNum; num++ {
		e, present := offsets[num]
		if !present {
			if _, err := io.WriteString(cw, "0000000000 65535 f \n"); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(cw, "%010d %05d n \n", e.offset, e.gen); err != nil {
			return err
		}
	}

	trailer := outputTrailer(store, maxNum+1)
	if _, err := io.WriteString(cw, "trailer\n"); err != nil {
		return err
	}
	if err := serializeDict(cw, trailer); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(cw, "\nstartxref\n%d\n%%%%EOF\n", xrefAt); err != nil {
		return err
	}
	logger.Debug("document serialized",
		observability.Int("objects", len(refs)),
		observability.Int64("bytes", cw.n))
	return bw.Flush()
}

type entry struct {
	offset int64
	gen    int
}

// outputTrailer keeps only the keys that belong in a freshly written
// trailer. A document loaded through a cross-reference stream carries that
// stream's own keys (Type, W, Index, Filter) in its trailer dict; carrying
// them into a classic trailer would corrupt the file.
func outputTrailer(store *graph.Store, size int) *graph.Dict {
	out := graph.NewDict()
	for _, key := range []string{"Root", "Info", "ID"} {
		if v, ok := store.Trailer.Get(key); ok {
			out.Set(key, v)
		}
	}
	out.Set("Size", graph.Int(int64(size)))
	return out
}

// WriteFile writes atomically: serialize to a temp file in the target
// directory, then rename over the destination.
func WriteFile(path string, store *graph.Store, cfg Config) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".pdf-handouts-*")
	if err != nil {
		return err
	}
	defer func() {
		if tmp != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()
	if err := Write(tmp, store, cfg); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	name := tmp.Name()
	tmp = nil
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return err
	}
	return nil
}

// countingWriter tracks the byte offset for cross-reference entries.
type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}
