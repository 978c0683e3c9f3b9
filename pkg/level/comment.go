package level

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goopsie/quiltFileTools/pkg/binio"
)

// Comment is an editor note pinned to a position in one level file. Comments
// live in a YAML sidecar next to the level, never in the game files.
type Comment struct {
	File     string        `yaml:"file"` // e.g. "1.mapbin"
	Position binio.Point2D `yaml:"position"`
	Contents string        `yaml:"contents"`
}

// LoadComments reads the sidecar at path. A missing sidecar holds no comments.
func LoadComments(path string) ([]Comment, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read comments: %w", err)
	}

	var comments []Comment
	if err := yaml.Unmarshal(data, &comments); err != nil {
		return nil, fmt.Errorf("parse comments %s: %w", path, err)
	}
	return comments, nil
}

// SaveComments writes comments to the sidecar at path.
func SaveComments(path string, comments []Comment) error {
	data, err := yaml.Marshal(comments)
	if err != nil {
		return fmt.Errorf("marshal comments: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write comments: %w", err)
	}
	return nil
}

// CommentsFor returns the comments attached to file.
func CommentsFor(comments []Comment, file string) []Comment {
	var out []Comment
	for _, c := range comments {
		if c.File == file {
			out = append(out, c)
		}
	}
	return out
}

// CommentsPath returns the sidecar path for a level folder or level file:
// comments.yaml inside a folder, or <name>.comments.yaml next to a file.
func CommentsPath(levelPath string) string {
	if info, err := os.Stat(levelPath); err == nil && info.IsDir() {
		return filepath.Join(levelPath, "comments.yaml")
	}
	return strings.TrimSuffix(levelPath, filepath.Ext(levelPath)) + ".comments.yaml"
}
