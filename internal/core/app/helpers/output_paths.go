package helpers

import "path/filepath"

// ResolveOutputPath anchors a relative report path at root.
func ResolveOutputPath(path, root string) string {
	if path == "" {
		return ""
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(root, path)
}
