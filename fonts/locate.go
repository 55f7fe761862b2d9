package fonts

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Locate searches the platform font directories for a family's TrueType
// or OpenType file. Matching ignores case and the space/hyphen/underscore
// separators, so "Liberation Serif" finds LiberationSerif.ttf and
// Liberation-Serif.ttf alike.
func Locate(family string) (string, bool) {
	return locateIn(fontDirs(), family)
}

func fontDirs() []string {
	dirs := []string{
		"/usr/share/fonts",
		"/usr/local/share/fonts",
		"/Library/Fonts",
		"/System/Library/Fonts",
		`C:\Windows\Fonts`,
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs,
			filepath.Join(home, ".fonts"),
			filepath.Join(home, ".local", "share", "fonts"))
	}
	return dirs
}

func locateIn(dirs []string, family string) (string, bool) {
	want := normalizeFamily(family)
	if want == "" {
		return "", false
	}
	for _, dir := range dirs {
		var found string
		filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if found != "" {
				return fs.SkipAll
			}
			if d.IsDir() {
				return nil
			}
			switch strings.ToLower(filepath.Ext(path)) {
			case ".ttf", ".otf":
			default:
				return nil
			}
			base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			if normalizeFamily(base) == want {
				found = path
			}
			return nil
		})
		if found != "" {
			return found, true
		}
	}
	return "", false
}

func normalizeFamily(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch r {
		case ' ', '-', '_':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
