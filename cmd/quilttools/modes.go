package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"

	"github.com/davecgh/go-spew/spew"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/goopsie/quiltFileTools/internal/watch"
	"github.com/goopsie/quiltFileTools/pkg/archive"
	"github.com/goopsie/quiltFileTools/pkg/bgst"
	"github.com/goopsie/quiltFileTools/pkg/endata"
	"github.com/goopsie/quiltFileTools/pkg/level"
	"github.com/goopsie/quiltFileTools/pkg/mapdata"
)

func (a *app) runInfo(path string) error {
	files, err := loadInputs(path)
	if err != nil {
		return err
	}
	files = levelFiles(files)

	l, err := level.Open(files, level.WithLogger(a.log))
	if err != nil {
		return err
	}

	comments, err := level.LoadComments(level.CommentsPath(path))
	if err != nil {
		a.log.WithError(err).Warn("Ignoring comments sidecar")
	}
	objects, err := mapdata.LoadObjectData(a.cfg.LevelEditor.ObjectData)
	if err != nil {
		a.log.WithError(err).Warn("Ignoring object database")
	}

	for _, f := range files {
		v, err := decodeFile(f)
		if err != nil {
			return fmt.Errorf("decode %s: %w", f.Name, err)
		}

		fmt.Fprintf(a.out, "%s (%d bytes)\n", f.Name, len(f.Data))
		switch v := v.(type) {
		case *endata.File:
			fmt.Fprintf(a.out, "  enemies: %d, footer: %d bytes\n", len(v.Enemies), len(v.Footer))
			for i, e := range v.Enemies {
				fmt.Fprintf(a.out, "  [%d] %s (%s) %s bead at (%g, %g)\n",
					i, e.DisplayName(), e.Name, endata.ColorLabel(e.BeadColor), e.Position1.X, e.Position1.Y)
			}
		case *mapdata.File:
			fmt.Fprintf(a.out, "  version: %g, bounds: (%g, %g)-(%g, %g)\n",
				v.Version, v.BoundsMin.X, v.BoundsMin.Y, v.BoundsMax.X, v.BoundsMax.Y)
			fmt.Fprintf(a.out, "  walls: %d, labeled walls: %d, common gimmicks: %d, gimmicks: %d\n",
				len(v.Walls), len(v.LabeledWalls), len(v.CommonGimmicks), len(v.Gimmicks))
			fmt.Fprintf(a.out, "  paths: %d, zones: %d, course infos: %d\n",
				len(v.Paths), len(v.Zones), len(v.CourseInfos))
			for _, w := range v.Walls {
				if !mapdata.IsKnownCollisionType(w.CollisionType) {
					fmt.Fprintf(a.out, "  unknown collision type %q\n", w.CollisionType)
				}
			}
			for i, g := range v.CommonGimmicks {
				if name := objects.CommonGimmickName(g.Hex); name != g.Hex {
					fmt.Fprintf(a.out, "  common gimmick [%d] %s (%s)\n", i, name, g.Hex)
				}
			}
			if a.cfg.LevelEditor.SnapToStart && f.Name == l.MapFile() {
				if p, ok := l.Start(); ok {
					fmt.Fprintf(a.out, "  start: (%g, %g)\n", p.X, p.Y)
				}
			}
		case *bgst.File:
			fmt.Fprintf(a.out, "  grid: %dx%d, image size: %dx%d, scale: %g\n",
				v.GridWidth, v.GridHeight, v.ImageWidth, v.ImageHeight, v.ScaleModifier)
			fmt.Fprintf(a.out, "  entries: %d, images: %d, unreferenced images: %v\n",
				len(v.Entries), len(v.Images), v.Orphans())
		}

		for _, c := range level.CommentsFor(comments, f.Name) {
			fmt.Fprintf(a.out, "  comment at (%g, %g): %s\n", c.Position.X, c.Position.Y, c.Contents)
		}
	}
	return nil
}

// verifyResult is the outcome of re-encoding one file.
type verifyResult struct {
	Identical  bool // re-encoded bytes equal the input, ignoring trailing padding
	Structural bool // decoding the re-encoded bytes gives the same value
}

func roundTrip[T any](data []byte, decode func([]byte) (T, error), encode func(T) ([]byte, error)) (verifyResult, error) {
	first, err := decode(data)
	if err != nil {
		return verifyResult{}, fmt.Errorf("decode: %w", err)
	}
	out, err := encode(first)
	if err != nil {
		return verifyResult{}, fmt.Errorf("encode: %w", err)
	}
	second, err := decode(out)
	if err != nil {
		return verifyResult{}, fmt.Errorf("decode re-encoded: %w", err)
	}
	return verifyResult{
		Identical:  bytes.Equal(bytes.TrimRight(out, "\x00"), bytes.TrimRight(data, "\x00")),
		Structural: reflect.DeepEqual(first, second),
	}, nil
}

func verifyFile(f archive.File) (verifyResult, error) {
	kind, ok := level.KindOf(f.Name)
	if !ok {
		return verifyResult{}, fmt.Errorf("%s: not a level file", f.Name)
	}
	switch kind {
	case level.KindEnemies:
		return roundTrip(f.Data, endata.Decode, (*endata.File).Encode)
	case level.KindMap:
		return roundTrip(f.Data, mapdata.Decode, (*mapdata.File).Encode)
	case level.KindBackground:
		return roundTrip(f.Data, bgst.Decode, (*bgst.File).Encode)
	}
	return verifyResult{}, fmt.Errorf("%s: nested bundles are not supported", f.Name)
}

func (a *app) runVerify(path string) error {
	files, err := loadInputs(path)
	if err != nil {
		return err
	}
	files = levelFiles(files)

	// Files are independent; verify them on a bounded pool.
	ok := make([]bool, len(files))
	var g errgroup.Group
	g.SetLimit(a.cfg.Decode.Workers)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			ok[i] = a.verifyOne(f)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, v := range ok {
		if !v {
			failed++
		}
	}

	a.log.WithFields(logrus.Fields{"count": len(files), "failed": failed}).Info("Verification complete")
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed verification", failed, len(files))
	}
	return nil
}

func (a *app) verifyOne(f archive.File) bool {
	log := a.log.WithField("file", f.Name)
	res, err := verifyFile(f)
	switch {
	case err != nil:
		log.WithError(err).Error("Verification failed")
		return false
	case !res.Structural:
		log.Error("Round trip changed the decoded contents")
		return false
	case !res.Identical:
		log.Warn("Round trip is lossless but not byte-identical")
	default:
		log.Info("Verified")
	}
	return true
}

// bgstView is a background without its image payload, for dumping.
type bgstView struct {
	Header  bgst.Header
	Entries []bgst.Entry
	Images  int
}

func (a *app) runDump(path, format string) error {
	files, err := loadInputs(path)
	if err != nil {
		return err
	}
	files = levelFiles(files)

	for _, f := range files {
		v, err := decodeFile(f)
		if err != nil {
			return fmt.Errorf("decode %s: %w", f.Name, err)
		}
		if bg, ok := v.(*bgst.File); ok {
			v = bgstView{Header: bg.Header(), Entries: bg.Entries, Images: len(bg.Images)}
		}

		fmt.Fprintf(a.out, "# %s\n", f.Name)
		if format == "spew" {
			spew.Fdump(a.out, v)
			continue
		}
		out, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", f.Name, err)
		}
		a.out.Write(out)
	}
	return nil
}

func (a *app) readBackground(path string) (*bgst.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read background: %w", err)
	}
	f, err := bgst.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return f, nil
}

func (a *app) runTiles(path, dir string) error {
	f, err := a.readBackground(path)
	if err != nil {
		return err
	}

	for i, blob := range f.Images {
		name := filepath.Join(dir, fmt.Sprintf("%03d.bin", i))
		if err := os.WriteFile(name, blob, 0644); err != nil {
			return fmt.Errorf("write image %d: %w", i, err)
		}
	}

	entries, err := yaml.Marshal(f.Entries)
	if err != nil {
		return fmt.Errorf("marshal entries: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "entries.yaml"), entries, 0644); err != nil {
		return fmt.Errorf("write entries: %w", err)
	}

	a.log.WithFields(logrus.Fields{"file": path, "count": len(f.Images)}).Info("Wrote tile images")
	return nil
}

func (a *app) runReplaceTile(path, out, blobFile string, index int) error {
	f, err := a.readBackground(path)
	if err != nil {
		return err
	}
	blob, err := os.ReadFile(blobFile)
	if err != nil {
		return fmt.Errorf("read blob: %w", err)
	}

	index, err = f.ReplaceImageData(index, blob)
	if err != nil {
		return fmt.Errorf("replace image: %w", err)
	}

	data, err := f.Encode()
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	a.log.WithFields(logrus.Fields{"file": out, "index": index}).Info("Replaced tile image")
	return nil
}

// runUnpack writes the files of a bundle into dir. A bundle whose level
// decodes is saved through the level; otherwise the files are written as
// stored.
func (a *app) runUnpack(path, dir string) error {
	l, err := level.OpenBundle(path, level.WithLogger(a.log))
	if err == nil {
		if err := l.SaveDir(dir); err != nil {
			return err
		}
		a.log.WithFields(logrus.Fields{"file": path, "count": len(l.Files)}).Info("Unpacked bundle")
		return nil
	}

	files, rerr := archive.ReadFile(path)
	if rerr != nil {
		return rerr
	}
	a.log.WithField("file", path).WithError(err).Warn("Level does not decode; writing files as stored")
	if err := level.WriteDir(dir, files); err != nil {
		return err
	}
	a.log.WithFields(logrus.Fields{"file": path, "count": len(files)}).Info("Unpacked bundle")
	return nil
}

func (a *app) runPack(dir, path string) error {
	files, err := collectDir(dir)
	if err != nil {
		return fmt.Errorf("collect %s: %w", dir, err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%s: %w", dir, level.ErrNoLevelFiles)
	}

	for _, f := range files {
		if _, ok := level.KindOf(f.Name); !ok {
			continue
		}
		if _, err := decodeFile(f); err != nil {
			a.log.WithField("file", f.Name).WithError(err).Warn("Packing a file that does not decode")
		}
	}

	if err := archive.WriteFile(path, files); err != nil {
		return err
	}
	a.log.WithFields(logrus.Fields{"file": path, "count": len(files)}).Info("Packed bundle")
	return nil
}

func (a *app) runWatch(ctx context.Context, dir string) error {
	if !isDir(dir) {
		return fmt.Errorf("watch mode needs a folder, got %s", dir)
	}

	w, err := watch.New([]string{dir})
	if err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	defer w.Close()

	a.log.WithField("dir", dir).Info("Watching for level changes")
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			a.log.WithError(err).Warn("Watch error")
		case path, ok := <-w.Events:
			if !ok {
				return nil
			}
			data, err := os.ReadFile(path)
			if errors.Is(err, fs.ErrNotExist) {
				a.log.WithField("file", path).Info("Removed")
				continue
			}
			if err != nil {
				a.log.WithField("file", path).WithError(err).Warn("Read failed")
				continue
			}
			if kind, _ := level.KindOf(path); kind == level.KindBundle {
				a.verifyBundle(path, data)
				continue
			}
			a.verifyOne(archive.File{Name: baseName(path), Data: data})
		}
	}
}

func (a *app) verifyBundle(path string, data []byte) {
	files, err := archive.Extract(data)
	if err != nil {
		a.log.WithField("file", path).WithError(err).Error("Bundle does not extract")
		return
	}
	for _, f := range levelFiles(files) {
		a.verifyOne(f)
	}
}

// levelFiles drops files that are not enemy, map or background files.
func levelFiles(files []archive.File) []archive.File {
	var out []archive.File
	for _, f := range files {
		if kind, ok := level.KindOf(f.Name); ok && kind != level.KindBundle {
			out = append(out, f)
		}
	}
	return out
}
