package dictionary

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	d, err := Load(strings.NewReader("北京 LOC\n\n上海   LOC\n的\n北京 CITY\n"))
	if err != nil {
		t.Fatal(err)
	}
	if d.Len() != 3 {
		t.Errorf("Len = %d, want 3", d.Len())
	}

	tests := []struct {
		key   string
		value string
		ok    bool
	}{
		{"北京", "CITY", true},
		{"上海", "LOC", true},
		{"的", "", true},
		{"北", "", false},
		{"广州", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		value, ok := d.Get(tt.key)
		if value != tt.value || ok != tt.ok {
			t.Errorf("Get(%q) = %q, %v; want %q, %v", tt.key, value, ok, tt.value, tt.ok)
		}
	}
	if d.MaxLen() != 2 {
		t.Errorf("MaxLen = %d, want 2", d.MaxLen())
	}
}

func TestFloat(t *testing.T) {
	d, err := Load(strings.NewReader("北京 1200\n中国 x\n"))
	if err != nil {
		t.Fatal(err)
	}
	if f, ok := d.Float("北京"); !ok || f != 1200 {
		t.Errorf("Float(北京) = %v, %v; want 1200, true", f, ok)
	}
	if _, ok := d.Float("中国"); ok {
		t.Error("Float of a non-numeric value should report false")
	}
	if _, ok := d.Float("上海"); ok {
		t.Error("Float of a missing key should report false")
	}
}

func TestExistsAndPrefix(t *testing.T) {
	d := New()
	if err := d.Add("天安门", ""); err != nil {
		t.Fatal(err)
	}
	if !d.Exists("天安门") {
		t.Error("Exists(天安门) = false")
	}
	if d.Exists("天安") {
		t.Error("Exists(天安) = true for a bare prefix")
	}
	if !d.HasPrefix("天安") {
		t.Error("HasPrefix(天安) = false")
	}
	if d.HasPrefix("地") {
		t.Error("HasPrefix(地) = true")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "place.dict")
	if err := os.WriteFile(path, []byte("北京 LOC\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	d, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !d.Exists("北京") {
		t.Error("loaded dictionary is missing 北京")
	}

	empty := filepath.Join(dir, "empty.dict")
	if err := os.WriteFile(empty, []byte("\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(empty); !errors.Is(err, ErrEmpty) {
		t.Errorf("err = %v, want ErrEmpty", err)
	}
	if _, err := LoadFile(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestKeys(t *testing.T) {
	d, err := Load(strings.NewReader("北京 LOC\n上海 LOC\n北京 CITY\n"))
	if err != nil {
		t.Fatal(err)
	}
	got := strings.Join(d.Keys(), " ")
	if got != "北京 上海" {
		t.Errorf("Keys = %q, want %q", got, "北京 上海")
	}
}

func TestLoadFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.dict")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); !errors.Is(err, ErrEmpty) {
		t.Errorf("LoadFile(empty) error = %v, want %v", err, ErrEmpty)
	}
}
