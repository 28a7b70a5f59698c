package rconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "resolve.config.yaml", `
root: /p
mainFields:
  - module
  - main
conditions:
  - worker
preserveSymlinks: true
asSrc: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Root != "/p" {
		t.Errorf("Root = %q, want /p", cfg.Root)
	}
	if len(cfg.MainFields) != 2 || cfg.MainFields[0] != "module" {
		t.Errorf("MainFields = %v", cfg.MainFields)
	}
	if !cfg.PreserveSymlinks || !cfg.AsSrc {
		t.Errorf("expected PreserveSymlinks and AsSrc true, got %+v", cfg)
	}
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "resolve.config.toml", `
root = "/p"
mainFields = ["module", "main"]
dedupe = ["react", "react-dom"]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Root != "/p" {
		t.Errorf("Root = %q, want /p", cfg.Root)
	}
	if len(cfg.Dedupe) != 2 {
		t.Errorf("Dedupe = %v", cfg.Dedupe)
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "resolve.config.json", `{"root": "/p", "asSrc": true}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Root != "/p" || !cfg.AsSrc {
		t.Errorf("got %+v", cfg)
	}
}

func TestLoadRejectsUnknownField(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "resolve.config.json", `{"root": "/p", "typoedField": true}`)

	if _, err := Load(path); err == nil {
		t.Errorf("expected validation error for unknown field")
	}
}

func TestLoadRejectsWrongType(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "resolve.config.json", `{"root": 123}`)

	if _, err := Load(path); err == nil {
		t.Errorf("expected validation error for root as a number")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/resolve.config.yaml"); err == nil {
		t.Errorf("expected error for missing file")
	}
}
