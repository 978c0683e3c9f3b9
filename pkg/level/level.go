// Package level ties the individual codecs together into an editable level.
//
// A level is an ordered list of named files, as found in a level bundle or a
// folder, plus the decoded enemy placement and map geometry of the first
// .enbin and .mapbin among them. Sync writes the decoded files back into the
// list so the level can be saved either way.
package level

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/goopsie/quiltFileTools/pkg/archive"
	"github.com/goopsie/quiltFileTools/pkg/binio"
	"github.com/goopsie/quiltFileTools/pkg/endata"
	"github.com/goopsie/quiltFileTools/pkg/mapdata"
)

// File extensions recognized inside a level.
const (
	EnemiesExt    = ".enbin"
	MapExt        = ".mapbin"
	BackgroundExt = ".bgst"
	BundleExt     = ".qltb"
)

// StartGimmick is the gimmick marking the player's spawn point.
const StartGimmick = "START"

// ErrNoLevelFiles is returned when a source holds no level files.
var ErrNoLevelFiles = errors.New("no level files found")

// Level is an opened level.
type Level struct {
	Files   []archive.File
	Enemies *endata.File
	Map     *mapdata.File

	enemiesIndex int // index into Files, -1 if absent
	mapIndex     int

	log logrus.FieldLogger
}

// Option configures a Level.
type Option func(*Level)

// WithLogger sets the logger used for load and save progress.
func WithLogger(log logrus.FieldLogger) Option {
	return func(l *Level) {
		l.log = log
	}
}

func newLevel(files []archive.File, opts []Option) *Level {
	l := &Level{Files: files, enemiesIndex: -1, mapIndex: -1}
	for _, opt := range opts {
		opt(l)
	}
	if l.log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		l.log = discard
	}
	return l
}

// Open decodes the first .enbin and .mapbin in files. A level without one of
// them is valid; the matching field stays nil.
func Open(files []archive.File, opts ...Option) (*Level, error) {
	if len(files) == 0 {
		return nil, ErrNoLevelFiles
	}
	l := newLevel(files, opts)

	for i, f := range files {
		switch filepath.Ext(f.Name) {
		case EnemiesExt:
			if l.enemiesIndex < 0 {
				l.enemiesIndex = i
			}
		case MapExt:
			if l.mapIndex < 0 {
				l.mapIndex = i
			}
		}
	}

	if l.enemiesIndex >= 0 {
		f := files[l.enemiesIndex]
		en, err := endata.Decode(f.Data)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", f.Name, err)
		}
		l.Enemies = en
		l.log.WithFields(logrus.Fields{"file": f.Name, "enemies": len(en.Enemies)}).Debug("Decoded enemy placement")
	}
	if l.mapIndex >= 0 {
		f := files[l.mapIndex]
		m, err := mapdata.Decode(f.Data)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", f.Name, err)
		}
		l.Map = m
		l.log.WithFields(logrus.Fields{"file": f.Name, "walls": len(m.Walls), "gimmicks": len(m.Gimmicks)}).Debug("Decoded map")
	}

	return l, nil
}

// OpenDir opens the .enbin and .mapbin files directly inside dir, in name order.
func OpenDir(dir string, opts ...Option) (*Level, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read level folder: %w", err)
	}

	var files []archive.File
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || (ext != EnemiesExt && ext != MapExt) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		files = append(files, archive.File{Name: e.Name(), Data: data})
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoLevelFiles)
	}

	return Open(files, opts...)
}

// OpenBundle opens every file of the bundle at path.
func OpenBundle(path string, opts ...Option) (*Level, error) {
	files, err := archive.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bundle %s: %w", path, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoLevelFiles)
	}
	return Open(files, opts...)
}

// New returns a level holding an empty 1.enbin and 1.mapbin.
func New(opts ...Option) (*Level, error) {
	en := endata.New()
	m := mapdata.New()

	enData, err := en.Encode()
	if err != nil {
		return nil, fmt.Errorf("encode enemies: %w", err)
	}
	mapData, err := m.Encode()
	if err != nil {
		return nil, fmt.Errorf("encode map: %w", err)
	}

	l := newLevel([]archive.File{
		{Name: "1" + EnemiesExt, Data: enData},
		{Name: "1" + MapExt, Data: mapData},
	}, opts)
	l.enemiesIndex, l.mapIndex = 0, 1
	l.Enemies, l.Map = en, m
	return l, nil
}

// EnemiesFile returns the name of the decoded enemy file, or "".
func (l *Level) EnemiesFile() string {
	if l.enemiesIndex < 0 {
		return ""
	}
	return l.Files[l.enemiesIndex].Name
}

// MapFile returns the name of the decoded map file, or "".
func (l *Level) MapFile() string {
	if l.mapIndex < 0 {
		return ""
	}
	return l.Files[l.mapIndex].Name
}

// Sync re-encodes the decoded files into Files. Nothing is replaced unless
// both encodes succeed.
func (l *Level) Sync() error {
	var enData, mapData []byte
	var err error

	if l.enemiesIndex >= 0 && l.Enemies != nil {
		if enData, err = l.Enemies.Encode(); err != nil {
			return fmt.Errorf("encode %s: %w", l.EnemiesFile(), err)
		}
	}
	if l.mapIndex >= 0 && l.Map != nil {
		if mapData, err = l.Map.Encode(); err != nil {
			return fmt.Errorf("encode %s: %w", l.MapFile(), err)
		}
	}

	if enData != nil {
		l.Files[l.enemiesIndex].Data = enData
	}
	if mapData != nil {
		l.Files[l.mapIndex].Data = mapData
	}
	return nil
}

// SaveDir syncs the level and writes every file into dir.
func (l *Level) SaveDir(dir string) error {
	if err := l.Sync(); err != nil {
		return err
	}
	if err := WriteDir(dir, l.Files); err != nil {
		return err
	}
	l.log.WithFields(logrus.Fields{"dir": dir, "files": len(l.Files)}).Info("Saved level folder")
	return nil
}

// WriteDir writes files below dir as they are, creating sub-folders for
// slash-separated names. Names that would escape dir are refused before
// anything is written.
func WriteDir(dir string, files []archive.File) error {
	for _, f := range files {
		if !filepath.IsLocal(filepath.FromSlash(f.Name)) {
			return fmt.Errorf("refusing to write %q outside %s", f.Name, dir)
		}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create level folder: %w", err)
	}
	for _, f := range files {
		path := filepath.Join(dir, filepath.FromSlash(f.Name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("create folder for %s: %w", f.Name, err)
		}
		if err := os.WriteFile(path, f.Data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", f.Name, err)
		}
	}
	return nil
}

// SaveBundle syncs the level and writes it as a bundle at path.
func (l *Level) SaveBundle(path string, opts ...archive.WriterOption) error {
	if err := l.Sync(); err != nil {
		return err
	}
	if err := archive.WriteFile(path, l.Files, opts...); err != nil {
		return fmt.Errorf("write bundle %s: %w", path, err)
	}
	l.log.WithFields(logrus.Fields{"path": path, "files": len(l.Files)}).Info("Saved level bundle")
	return nil
}

// Start returns the position of the START gimmick, if the map has one.
func (l *Level) Start() (binio.Point2D, bool) {
	if l.Map == nil {
		return binio.Point2D{}, false
	}
	g, ok := l.Map.Gimmick(StartGimmick)
	if !ok {
		return binio.Point2D{}, false
	}
	return g.Position.To2D(), true
}

// Find returns the file named name.
func (l *Level) Find(name string) (*archive.File, bool) {
	for i := range l.Files {
		if strings.EqualFold(l.Files[i].Name, name) {
			return &l.Files[i], true
		}
	}
	return nil, false
}
