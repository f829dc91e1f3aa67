// Package fsutil resolves the input path into the ordered list of image
// files a run will process.
package fsutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/setanarut/repix/internal/imageio"
)

// ResolveInputs turns path into the list of files to process.
//
// A regular file is accepted as the sole candidate even when its extension
// is not a known image format; that case only logs a warning and the decoder
// gets the final say. A directory yields every contained file with a known
// image extension (matched case-insensitively), de-duplicated and sorted
// lexicographically. Anything else is an error.
func ResolveInputs(path string, logger *slog.Logger) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("input path %q: %w", path, err)
	}

	if info.Mode().IsRegular() {
		if !imageio.IsImageExt(filepath.Ext(path)) {
			logger.Warn("file may not be a standard image format, attempting anyway", "path", path)
		}
		return []string{path}, nil
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("input path %q is neither a file nor a directory", path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", path, err)
	}

	seen := make(map[string]struct{}, len(entries))
	var files []string
	for _, e := range entries {
		if e.IsDir() || !imageio.IsImageExt(filepath.Ext(e.Name())) {
			continue
		}
		full := filepath.Join(path, e.Name())
		if _, ok := seen[full]; ok {
			continue
		}
		seen[full] = struct{}{}
		files = append(files, full)
	}
	slices.Sort(files)
	return files, nil
}
