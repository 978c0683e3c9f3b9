package level

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Kind classifies a level file by extension.
type Kind int

const (
	KindEnemies Kind = iota
	KindMap
	KindBackground
	KindBundle
)

var kindNames = [...]string{"enemies", "map", "background", "bundle"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// KindOf returns the kind of the file at path.
func KindOf(path string) (Kind, bool) {
	switch filepath.Ext(path) {
	case EnemiesExt:
		return KindEnemies, true
	case MapExt:
		return KindMap, true
	case BackgroundExt:
		return KindBackground, true
	case BundleExt:
		return KindBundle, true
	}
	return 0, false
}

// ScannedFile is a level file found by ScanDir.
type ScannedFile struct {
	Kind Kind
	Path string
	Rel  string // slash-separated, relative to the scanned root
	Size uint32
}

// ScanDir walks root and returns its level files grouped by kind, each group
// sorted by relative path. Files of other kinds are skipped.
func ScanDir(root string) (map[Kind][]ScannedFile, error) {
	files := make(map[Kind][]ScannedFile)

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		kind, ok := KindOf(path)
		if !ok {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path: %w", err)
		}

		size := info.Size()
		const maxUint32 = int64(^uint32(0))
		if size > maxUint32 {
			return fmt.Errorf("file too large: %s (size %d exceeds %d bytes)", path, size, maxUint32)
		}

		files[kind] = append(files[kind], ScannedFile{
			Kind: kind,
			Path: path,
			Rel:  filepath.ToSlash(relPath),
			Size: uint32(size),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, group := range files {
		sort.Slice(group, func(i, j int) bool { return group[i].Rel < group[j].Rel })
	}
	return files, nil
}
