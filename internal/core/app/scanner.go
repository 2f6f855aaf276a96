package app

import (
	"classlint/internal/core/ports"
	"classlint/internal/shared/util"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Discover expands the given paths into analyzable inputs: .class files and
// jars, directories walked recursively in lexical order. Missing paths are
// reported as failures and do not stop discovery. Each file is returned once
// even when several roots contain it.
func Discover(paths []string, excludeFiles []util.Pattern) ([]ports.Input, []ports.LoadFailure) {
	var (
		inputs   []ports.Input
		failures []ports.LoadFailure
		seen     = make(map[string]bool)
	)

	add := func(path string) {
		kind, ok := inputKind(path)
		if !ok || isExcludedFile(excludeFiles, path) {
			return
		}
		key := path
		if abs, err := filepath.Abs(path); err == nil {
			key = abs
		}
		if seen[key] {
			return
		}
		seen[key] = true
		inputs = append(inputs, ports.Input{Path: path, Kind: kind})
	}

	for _, root := range paths {
		root = strings.TrimSpace(root)
		if root == "" {
			continue
		}
		info, err := os.Stat(root)
		if err != nil {
			failures = append(failures, ports.LoadFailure{Path: root, Error: err.Error()})
			continue
		}
		if !info.IsDir() {
			if _, ok := inputKind(root); !ok {
				failures = append(failures, ports.LoadFailure{Path: root, Error: "not a .class file or jar"})
				continue
			}
			add(root)
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				failures = append(failures, ports.LoadFailure{Path: path, Error: err.Error()})
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				if path != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			add(path)
			return nil
		})
		if err != nil {
			failures = append(failures, ports.LoadFailure{Path: root, Error: err.Error()})
		}
	}
	return inputs, failures
}

func inputKind(path string) (ports.InputKind, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".class":
		return ports.InputClass, true
	case ".jar":
		return ports.InputJar, true
	}
	return "", false
}

func isExcludedFile(patterns []util.Pattern, path string) bool {
	if len(patterns) == 0 {
		return false
	}
	return util.MatchAny(patterns, filepath.ToSlash(path)) || util.MatchAny(patterns, filepath.Base(path))
}
