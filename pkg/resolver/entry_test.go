package resolver

import (
	"context"
	"testing"

	"github.com/jsresolve/jsresolve/internal/fs"
	"github.com/jsresolve/jsresolve/internal/logger"
)

func TestResolvePackageEntryMainFieldFallback(t *testing.T) {
	r := newTestResolver(map[string]string{
		"/p/node_modules/plain/package.json": `{"name": "plain", "main": "lib/main.js"}`,
		"/p/node_modules/plain/lib/main.js":  "module.exports = {}",
	})

	res, err := r.Resolve(context.Background(), "plain", "/p/src/app.js", Options{Root: "/p"})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if res.ID != "/p/node_modules/plain/lib/main.js" {
		t.Errorf("ID = %q, want main field entry", res.ID)
	}
}

func TestResolvePackageEntryDefaultIndexFallback(t *testing.T) {
	r := newTestResolver(map[string]string{
		"/p/node_modules/noentry/package.json": `{"name": "noentry"}`,
		"/p/node_modules/noentry/index.js":     "module.exports = {}",
	})

	res, err := r.Resolve(context.Background(), "noentry", "/p/src/app.js", Options{Root: "/p"})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if res.ID != "/p/node_modules/noentry/index.js" {
		t.Errorf("ID = %q, want the hard-coded index.js fallback", res.ID)
	}
}

func TestResolvePackageEntrySassMainFieldSkippedWhenNotListedExtension(t *testing.T) {
	r := newTestResolver(map[string]string{
		"/p/node_modules/styled/package.json": `{"name": "styled", "sass": "styles.scss"}`,
		"/p/node_modules/styled/index.js":     "module.exports = {}",
	})

	res, err := r.Resolve(context.Background(), "styled", "/p/src/app.js", Options{
		Root:       "/p",
		MainFields: []string{"sass", "main"},
	})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if res.ID != "/p/node_modules/styled/index.js" {
		t.Errorf("ID = %q, want the sass entry skipped (not a listed extension) falling through to index.js", res.ID)
	}
}

func TestResolvePackageEntryExportsTakesPriorityOverMain(t *testing.T) {
	r := newTestResolver(map[string]string{
		"/p/node_modules/modern/package.json": `{
			"name": "modern",
			"main": "legacy.js",
			"exports": "./esm.js"
		}`,
		"/p/node_modules/modern/legacy.js": "module.exports = {}",
		"/p/node_modules/modern/esm.js":    "export default {}",
	})

	res, err := r.Resolve(context.Background(), "modern", "/p/src/app.js", Options{Root: "/p"})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if res.ID != "/p/node_modules/modern/esm.js" {
		t.Errorf("ID = %q, want the exports shorthand preferred over main", res.ID)
	}
}

func TestResolvePackageEntryCachedAfterFirstLookup(t *testing.T) {
	r := newTestResolver(map[string]string{
		"/p/node_modules/cached/package.json": `{"name": "cached", "main": "index.js"}`,
		"/p/node_modules/cached/index.js":     "module.exports = {}",
	})

	first, err := r.Resolve(context.Background(), "cached", "/p/src/app.js", Options{Root: "/p"})
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	second, err := r.Resolve(context.Background(), "cached", "/p/other/app.js", Options{Root: "/p"})
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("expected the cached package entry result for both lookups, got %q and %q", first.ID, second.ID)
	}
}

func TestLooksLikeUMDDetectsExportsTypeofPattern(t *testing.T) {
	r := New(fs.NewMockFS(map[string]string{
		"/p/node_modules/x/package.json": `{"name": "x"}`,
		"/p/node_modules/x/umd.js":       "(function(){ typeof exports == 'object' && typeof module == 'object' })()",
	}), logger.NewLog(logger.LevelSilent))

	pkg, _ := r.manifests.LoadPackageData("/p/node_modules/x")
	if !r.looksLikeUMD(pkg, "umd.js") {
		t.Errorf("expected the typeof-exports/typeof-module UMD wrapper to be detected")
	}
}

func TestLooksLikeUMDFalseOnReadFailure(t *testing.T) {
	r := New(fs.NewMockFS(map[string]string{
		"/p/node_modules/x/package.json": `{"name": "x"}`,
	}), logger.NewLog(logger.LevelSilent))

	pkg, _ := r.manifests.LoadPackageData("/p/node_modules/x")
	if r.looksLikeUMD(pkg, "missing.js") {
		t.Errorf("expected a missing browser entry file to be treated as not UMD")
	}
}
