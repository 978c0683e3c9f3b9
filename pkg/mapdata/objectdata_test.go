package mapdata

import (
	"os"
	"path/filepath"
	"testing"
)

const testObjectData = `{
  "common_gimmicks": {
    "0A1B2C3D": {"name": "Yarn Spring", "description": "Bounces the player.", "note": "", "parameters": {"int1": "height"}},
    "FF": {"name": "", "description": "unknown"}
  },
  "gimmicks": {
    "START": {"name": "Start", "description": "Player spawn."}
  },
  "paths": {},
  "zones": {}
}`

func TestLoadObjectData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "objectdata.json")
	if err := os.WriteFile(path, []byte(testObjectData), 0644); err != nil {
		t.Fatal(err)
	}

	od, err := LoadObjectData(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	for _, tc := range []struct{ hex, want string }{
		{"0A1B2C3D", "Yarn Spring"},
		{"0a1b2c3d", "Yarn Spring"},
		{"FF", "FF"},
		{"1234", "1234"},
	} {
		if got := od.CommonGimmickName(tc.hex); got != tc.want {
			t.Errorf("CommonGimmickName(%q) = %q, want %q", tc.hex, got, tc.want)
		}
	}

	if info, ok := od.CommonGimmick("0A1B2C3D"); !ok || info.Description != "Bounces the player." {
		t.Errorf("got %+v, %v", info, ok)
	}
	if od.Gimmicks["START"].Name != "Start" {
		t.Errorf("gimmicks %+v", od.Gimmicks)
	}
}

func TestLoadObjectDataMissing(t *testing.T) {
	od, err := LoadObjectData(filepath.Join(t.TempDir(), "objectdata.json"))
	if err != nil || od != nil {
		t.Fatalf("got %v, %v", od, err)
	}
	if got := od.CommonGimmickName("0A"); got != "0A" {
		t.Errorf("nil database translated to %q", got)
	}
}

func TestLoadObjectDataInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "objectdata.json")
	if err := os.WriteFile(path, []byte(`{"common_gimmicks": [`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadObjectData(path); err == nil {
		t.Error("expected parse error")
	}
}
