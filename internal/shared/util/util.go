package util

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// NormalizePatternPath turns a file path or internal class name into the
// slash form patterns match against: backslashes become slashes, the path is
// cleaned and a leading "./" is dropped. "." normalizes to "".
func NormalizePatternPath(s string) string {
	trimmed := strings.TrimSpace(strings.ReplaceAll(s, "\\", "/"))
	clean := path.Clean(trimmed)
	if clean == "." {
		return ""
	}
	return strings.TrimPrefix(clean, "./")
}

// HasPathPrefix reports whether name is prefix or lies below it, segment-wise:
// "com/acme" covers "com/acme/Order" but not "com/acmeco/Order".
func HasPathPrefix(name, prefix string) bool {
	name = NormalizePatternPath(name)
	prefix = NormalizePatternPath(prefix)
	if name == "" || prefix == "" {
		return name == prefix
	}
	return name == prefix || strings.HasPrefix(name, prefix+"/")
}

func SortedStringKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// WriteFileWithDirs writes data to path, creating missing parent directories.
func WriteFileWithDirs(path string, data []byte, perm fs.FileMode) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, perm)
}
