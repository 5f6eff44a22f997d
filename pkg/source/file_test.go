package source

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%q) failed: %v", path, err)
	}
}

const lunaYAML = `id: luna
name: Luna
owner: bob-id
facts:
  - "Luna is a night owl"
  - "$if mentioned: $respond"
defaults:
  view: everyone
  blacklist: troll
`

func TestFileSource_LoadSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "luna.yaml")
	writeFile(t, path, lunaYAML)

	entities, err := NewFileSource(path, nil).Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if len(entities) != 1 {
		t.Fatalf("len(entities) = %d, want 1", len(entities))
	}

	e := entities[0]
	if e.ID != "luna" || e.Name != "Luna" || e.OwnerID != "bob-id" {
		t.Errorf("entity = %+v", e)
	}
	if len(e.Facts) != 2 {
		t.Errorf("len(Facts) = %d, want 2", len(e.Facts))
	}
	if e.Defaults == nil || e.Defaults.View == nil || !e.Defaults.View.Everyone {
		t.Errorf("Defaults = %+v", e.Defaults)
	}
	if len(e.Defaults.Blacklist) != 1 {
		t.Errorf("Blacklist = %+v", e.Defaults.Blacklist)
	}
	if e.Defaults.Edit != nil {
		t.Errorf("Edit = %+v, want nil for unset default", e.Defaults.Edit)
	}
}

func TestFileSource_LoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "luna.yaml"), lunaYAML)
	writeFile(t, filepath.Join(dir, "rex.yml"), "name: Rex\nowner: o2\nfacts: [\"Rex barks\"]\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "not an entity")
	writeFile(t, filepath.Join(dir, "broken.yaml"), "name: [unclosed")

	entities, err := NewFileSource(dir, nil).Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	// Broken and non-YAML files are skipped, not fatal.
	if len(entities) != 2 {
		t.Fatalf("len(entities) = %d, want 2", len(entities))
	}

	byID := map[string]bool{}
	for _, e := range entities {
		byID[e.ID] = true
	}
	if !byID["luna"] || !byID["rex"] {
		t.Errorf("entity IDs = %v", byID)
	}
}

// The file name stands in for a missing id field.
func TestFileSource_IDFallsBackToFilename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shopkeeper.yaml")
	writeFile(t, path, "name: Shopkeeper\nowner: o1\n")

	entities, err := NewFileSource(path, nil).Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if entities[0].ID != "shopkeeper" {
		t.Errorf("ID = %q, want shopkeeper", entities[0].ID)
	}
}

func TestFileSource_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := NewFileSource(filepath.Join(dir, "missing.yaml"), nil).Load(); err == nil {
		t.Error("Load() of missing path = nil, want error")
	}

	noName := filepath.Join(dir, "noname.yaml")
	writeFile(t, noName, "owner: o1\n")
	if _, err := NewFileSource(noName, nil).Load(); err == nil {
		t.Error("Load() without name = nil, want error")
	}

	noOwner := filepath.Join(dir, "noowner.yaml")
	writeFile(t, noOwner, "name: X\n")
	if _, err := NewFileSource(noOwner, nil).Load(); err == nil {
		t.Error("Load() without owner = nil, want error")
	}
}
