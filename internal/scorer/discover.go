package scorer

import (
	"os"
	"path/filepath"
	"strings"
)

// imageExts is the extension allow-list, matched case-insensitively.
var imageExts = []string{".jpg", ".jpeg", ".png", ".bmp", ".webp", ".avif"}

func isImageFile(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range imageExts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// Discover collects image files under path. A single file is returned as
// a singleton when its extension matches the allow-list, otherwise the
// result is empty. Directories are visited recursively in listing order;
// symlinked directories are followed.
func Discover(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		if isImageFile(path) {
			return []string{path}, nil
		}
		return nil, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		full := filepath.Join(path, entry.Name())

		// Stat (not the entry's Lstat info) so symlinked directories
		// recurse like plain ones.
		info, err := os.Stat(full)
		if err == nil && info.IsDir() {
			nested, err := Discover(full)
			if err != nil {
				return nil, err
			}
			files = append(files, nested...)
			continue
		}

		if isImageFile(full) {
			files = append(files, full)
		}
	}
	return files, nil
}
