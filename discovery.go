// discovery.go: candidate path enumeration for bulk module loading
//
// Copyright (c) 2025 Giovanni Santini
// SPDX-License-Identifier: MIT

package micromodule

import (
	"os"
	"path/filepath"
	"sort"
)

// Enumerator supplies the ordered candidate paths for a bulk load. The
// manager consumes a flat list and owns no file-system logic of its own;
// substituting an Enumerator changes where candidates come from without
// touching any lifecycle code.
type Enumerator interface {
	// List returns the candidate paths under dir, non-recursive, in the
	// order the manager should attempt them. Implementations return coded
	// errors so failures to enumerate stay distinct from per-module
	// failures.
	List(dir string) ([]string, error)
}

// FSEnumerator lists the immediate children of a directory in name order.
// Sub-directories are skipped, never descended into; everything else,
// symlinks included, is a load candidate. Symlinks are not followed during
// enumeration, so a dangling link still reaches the loader and fails there.
type FSEnumerator struct{}

// List implements Enumerator.
func (FSEnumerator) List(dir string) ([]string, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, NewOpenModulesDirError(dir, err)
	}
	entries, err := f.ReadDir(-1)
	if err != nil {
		_ = f.Close()
		return nil, NewOpenModulesDirError(dir, err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}

	if err := f.Close(); err != nil {
		return nil, NewCloseModulesDirError(dir, err)
	}
	return paths, nil
}
