// Package cache manages the per-user model cache directory. Models are
// fetched once with a plain HTTP GET and written verbatim; there is no
// retry, no checksum, and no partial-write recovery.
package cache

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

const appName = "ae-score"

// Dir returns the cache directory, creating it if necessary.
func Dir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user cache dir: %w", err)
	}
	dir := filepath.Join(base, appName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create cache dir: %w", err)
	}
	return dir, nil
}

// Ensure returns the local path for file, downloading it from url when it
// is not already cached.
func Ensure(file, url string) (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}

	full := filepath.Join(dir, file)
	if _, err := os.Stat(full); err == nil {
		return full, nil
	}

	fmt.Fprintf(os.Stderr, "downloading %s\n", url)
	resp, err := http.Get(url)
	if err != nil {
		return "", fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download failed: %s returned %s", url, resp.Status)
	}

	out, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("failed to create cache file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", full, err)
	}

	fmt.Fprintf(os.Stderr, "saved to %s\n", full)
	return full, nil
}

// Clear deletes every file in the cache directory.
func Clear() error {
	dir, err := Dir()
	if err != nil {
		return err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}
