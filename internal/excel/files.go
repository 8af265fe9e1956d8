package excel

import (
	"log/slog"
	"os"
	"path/filepath"
)

// ListFiles returns the absolute paths of the regular files in dir whose
// base name matches pattern ("*" when empty), in directory order. It does not
// recurse. Failures are logged and yield an empty list.
func ListFiles(dir string, pattern string) []string {
	if pattern == "" {
		pattern = "*"
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		slog.Warn("invalid file pattern", "pattern", pattern, "error", err)
		return []string{}
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		slog.Warn("failed to resolve directory", "dir", dir, "error", err)
		return []string{}
	}
	entries, err := os.ReadDir(absDir)
	if err != nil {
		slog.Warn("failed to list directory", "dir", absDir, "error", err)
		return []string{}
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if ok, _ := filepath.Match(pattern, entry.Name()); ok {
			files = append(files, filepath.Join(absDir, entry.Name()))
		}
	}
	return files
}
