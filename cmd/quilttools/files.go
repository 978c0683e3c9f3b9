package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goopsie/quiltFileTools/pkg/archive"
	"github.com/goopsie/quiltFileTools/pkg/bgst"
	"github.com/goopsie/quiltFileTools/pkg/endata"
	"github.com/goopsie/quiltFileTools/pkg/level"
	"github.com/goopsie/quiltFileTools/pkg/mapdata"
)

// loadInputs returns the level files named by path: every level file under
// a folder, every file of a bundle, or the single file itself.
func loadInputs(path string) ([]archive.File, error) {
	if isDir(path) {
		scanned, err := level.ScanDir(path)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", path, err)
		}
		var files []archive.File
		for _, kind := range []level.Kind{level.KindEnemies, level.KindMap, level.KindBackground} {
			for _, sf := range scanned[kind] {
				data, err := os.ReadFile(sf.Path)
				if err != nil {
					return nil, fmt.Errorf("read %s: %w", sf.Rel, err)
				}
				files = append(files, archive.File{Name: sf.Rel, Data: data})
			}
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("%s: %w", path, level.ErrNoLevelFiles)
		}
		return files, nil
	}

	if kind, ok := level.KindOf(path); ok && kind == level.KindBundle {
		return archive.ReadFile(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return []archive.File{{Name: baseName(path), Data: data}}, nil
}

// decodeFile decodes a level file by its extension.
func decodeFile(f archive.File) (any, error) {
	kind, ok := level.KindOf(f.Name)
	if !ok {
		return nil, fmt.Errorf("%s: not a level file", f.Name)
	}
	switch kind {
	case level.KindEnemies:
		return endata.Decode(f.Data)
	case level.KindMap:
		return mapdata.Decode(f.Data)
	case level.KindBackground:
		return bgst.Decode(f.Data)
	default:
		return nil, fmt.Errorf("%s: nested bundles are not supported", f.Name)
	}
}

// collectDir returns every regular file under dir, named by slash-separated
// relative path.
func collectDir(dir string) ([]archive.File, error) {
	var files []archive.File
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path: %w", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", rel, err)
		}
		files = append(files, archive.File{Name: filepath.ToSlash(rel), Data: data})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
