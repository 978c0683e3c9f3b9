package mapdata

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultObjectDataPath is where editors keep the community object database.
const DefaultObjectDataPath = "quilt_res/objectdata.json"

// ObjectInfo describes one kind of object.
type ObjectInfo struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Note        string `yaml:"note"`
}

// ObjectData is an object database: per category, object ids mapped to
// descriptions. Common gimmicks are keyed by their hex id, the other
// categories by object name. Parameter descriptions in the file are ignored.
type ObjectData struct {
	CommonGimmicks map[string]ObjectInfo `yaml:"common_gimmicks"`
	Gimmicks       map[string]ObjectInfo `yaml:"gimmicks"`
	Paths          map[string]ObjectInfo `yaml:"paths"`
	Zones          map[string]ObjectInfo `yaml:"zones"`
}

// LoadObjectData reads an object database. The file is JSON, which parses as
// YAML. A missing file yields a nil database, on which lookups find nothing.
func LoadObjectData(path string) (*ObjectData, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read object data: %w", err)
	}

	var od ObjectData
	if err := yaml.Unmarshal(data, &od); err != nil {
		return nil, fmt.Errorf("parse object data %s: %w", path, err)
	}
	return &od, nil
}

// CommonGimmick returns the entry for a common gimmick hex id.
func (od *ObjectData) CommonGimmick(hex string) (ObjectInfo, bool) {
	if od == nil {
		return ObjectInfo{}, false
	}
	if info, ok := od.CommonGimmicks[hex]; ok {
		return info, true
	}
	info, ok := od.CommonGimmicks[strings.ToUpper(hex)]
	return info, ok
}

// CommonGimmickName returns the translated name of a common gimmick, or its
// hex id when the database has no name for it.
func (od *ObjectData) CommonGimmickName(hex string) string {
	if info, ok := od.CommonGimmick(hex); ok && info.Name != "" {
		return info.Name
	}
	return hex
}
