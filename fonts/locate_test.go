package fonts

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFontStub(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("stub"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLocateInMatchesSeparatorVariants(t *testing.T) {
	dir := t.TempDir()
	want := writeFontStub(t, dir, filepath.Join("serif", "Liberation-Serif.ttf"))
	writeFontStub(t, dir, "README.txt")

	for _, family := range []string{"Liberation Serif", "liberation_serif", "LiberationSerif"} {
		got, ok := locateIn([]string{dir}, family)
		if !ok || got != want {
			t.Errorf("locateIn(%q) = %q, %v; want %q", family, got, ok, want)
		}
	}
}

func TestLocateInNoMatch(t *testing.T) {
	dir := t.TempDir()
	writeFontStub(t, dir, "DejaVuSerif.ttf")

	if _, ok := locateIn([]string{dir}, "Comic Sans"); ok {
		t.Fatal("unexpected match")
	}
	// The bold face is a different file, not a family match.
	if _, ok := locateIn([]string{dir}, "DejaVu Serif Bold"); ok {
		t.Fatal("bold face should not match the regular file")
	}
	if _, ok := locateIn([]string{dir}, ""); ok {
		t.Fatal("empty family should never match")
	}
}

func TestLocateInMissingDir(t *testing.T) {
	if _, ok := locateIn([]string{filepath.Join(t.TempDir(), "absent")}, "Any Face"); ok {
		t.Fatal("unexpected match in missing directory")
	}
}
