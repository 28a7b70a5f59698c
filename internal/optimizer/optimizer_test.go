package optimizer

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := NewStore(dir, Options{Exclude: []string{"@internal/*"}}, "seed")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func TestIsOptimizedDepURL(t *testing.T) {
	s := newTestStore(t)
	if !s.IsOptimizedDepURL("/node_modules/.vite/deps/lodash.js") {
		t.Errorf("expected vite-style deps URL to be recognized")
	}
	if s.IsOptimizedDepURL("/src/app.js") {
		t.Errorf("ordinary src path should not be an optimized dep URL")
	}
}

func TestIsOptimizedDepFile(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir, Options{}, "seed")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	inside := filepath.Join(dir, "deps", "lodash.js")
	if !s.IsOptimizedDepFile(inside) {
		t.Errorf("expected %q to be inside the deps dir", inside)
	}
	if s.IsOptimizedDepFile(filepath.Join(dir, "lodash.js")) {
		t.Errorf("a file directly in cacheDir (not depsDir) should not count")
	}
}

func TestRegisterMissingImportIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.RegisterMissingImport(ctx, "lodash", "/p/node_modules/lodash/lodash.js", false)
	if err != nil {
		t.Fatalf("first register: %v", err)
	}
	second, err := s.RegisterMissingImport(ctx, "lodash", "/p/node_modules/lodash/lodash.js", false)
	if err != nil {
		t.Fatalf("second register: %v", err)
	}
	if first != second {
		t.Errorf("expected idempotent registration, got %+v vs %+v", first, second)
	}
}

func TestGetOptimizedDepIDAppendsHash(t *testing.T) {
	s := newTestStore(t)
	info, err := s.RegisterMissingImport(context.Background(), "lodash", "/p/node_modules/lodash/lodash.js", false)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	id := s.GetOptimizedDepID(info)
	meta := s.Metadata(false)
	want := info.File + "?v=" + meta.BrowserHash
	if id != want {
		t.Errorf("GetOptimizedDepID = %q, want %q", id, want)
	}
}

func TestExcludesMatchesGlob(t *testing.T) {
	s := newTestStore(t)
	if !s.Excludes("@internal/widgets", "") {
		t.Errorf("expected @internal/* exclude glob to match @internal/widgets")
	}
	if s.Excludes("lodash", "") {
		t.Errorf("lodash should not be excluded")
	}
}

func TestExcludesMatchesNestedPath(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir, Options{Exclude: []string{"lodash/fp"}}, "seed")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if !s.Excludes("lodash", "fp") {
		t.Errorf("expected lodash/fp nested id to match exclude pattern")
	}
	if s.Excludes("lodash", "debounce") {
		t.Errorf("lodash/debounce should not match the lodash/fp exclude pattern")
	}
}

func TestSnapshotRoundTrips(t *testing.T) {
	dir := t.TempDir()
	s1, err := NewStore(dir, Options{}, "seed")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, err := s1.RegisterMissingImport(context.Background(), "lodash", "/p/node_modules/lodash/lodash.js", false); err != nil {
		t.Fatalf("register: %v", err)
	}

	s2, err := NewStore(dir, Options{}, "seed")
	if err != nil {
		t.Fatalf("reload NewStore: %v", err)
	}
	meta := s2.Metadata(false)
	if _, ok := meta.DepInfoList["lodash"]; !ok {
		t.Errorf("expected reloaded store to see lodash from the flushed snapshot")
	}
}

func TestScanDoneBlocksUntilMarked(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := s.ScanDone(ctx); err == nil {
		t.Errorf("expected ScanDone to block (and time out) before MarkScanDone")
	}

	s.MarkScanDone()
	if err := s.ScanDone(context.Background()); err != nil {
		t.Errorf("ScanDone after MarkScanDone: %v", err)
	}
}
