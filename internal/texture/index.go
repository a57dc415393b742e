package texture

import (
	"os"
	"path/filepath"
	"strings"
)

// extRank orders formats when several files share a stem. Lower wins:
// lossless formats with alpha beat lossy ones.
var extRank = map[string]int{
	".png":  0,
	".tga":  1,
	".bmp":  2,
	".gif":  3,
	".jpg":  4,
	".jpeg": 4,
}

// Index maps lowercase sheet stems to filesystem paths.
type Index struct {
	entries map[string]string // stem.lower() → full path
}

// BuildIndex scans dir and its subdirectories for sprite sheets.
func BuildIndex(dir string) *Index {
	idx := &Index{entries: make(map[string]string)}

	filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		rank, ok := extRank[ext]
		if !ok {
			return nil
		}
		stem := strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))

		existing, exists := idx.entries[stem]
		if !exists || rank < extRank[strings.ToLower(filepath.Ext(existing))] {
			idx.entries[stem] = path
		}
		return nil
	})

	return idx
}

// ResolvePath returns the filesystem path for a sheet name, or ("", false).
func (idx *Index) ResolvePath(name string) (string, bool) {
	// Strip path prefix (e.g., "Characters\\hero.png" → "hero")
	name = strings.ReplaceAll(name, "\\", "/")
	base := filepath.Base(name)
	stem := strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))

	path, ok := idx.entries[stem]
	return path, ok
}

// Names returns the indexed stems in no particular order.
func (idx *Index) Names() []string {
	names := make([]string, 0, len(idx.entries))
	for stem := range idx.entries {
		names = append(names, stem)
	}
	return names
}

// Len returns the number of indexed sheets.
func (idx *Index) Len() int {
	return len(idx.entries)
}
