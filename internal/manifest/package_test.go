package manifest

import (
	"testing"

	"github.com/jsresolve/jsresolve/internal/fs"
	"github.com/jsresolve/jsresolve/internal/logger"
)

func TestLoadPackageDataBasics(t *testing.T) {
	fsys := fs.NewMockFS(map[string]string{
		"/p/node_modules/foo/package.json": `{
			"name": "foo",
			"type": "module",
			"main": "index.js",
			"sideEffects": false
		}`,
	})
	loader := NewLoader(fsys, logger.NewLog(logger.LevelSilent))

	pkg, err := loader.LoadPackageData("/p/node_modules/foo")
	if err != nil {
		t.Fatalf("LoadPackageData error: %v", err)
	}
	if pkg.Name != "foo" {
		t.Errorf("Name = %q, want foo", pkg.Name)
	}
	if pkg.ModuleType() != "module" {
		t.Errorf("ModuleType = %q, want module", pkg.ModuleType())
	}
	if main, ok := pkg.Main(); !ok || main != "index.js" {
		t.Errorf("Main() = (%q, %v), want (index.js, true)", main, ok)
	}
	if pkg.HasSideEffects("index.js") {
		t.Errorf("HasSideEffects should be false, sideEffects:false")
	}
}

func TestLoadPackageDataCachesAndDedupes(t *testing.T) {
	fsys := fs.NewMockFS(map[string]string{
		"/p/node_modules/foo/package.json": `{"name": "foo"}`,
	})
	loader := NewLoader(fsys, logger.NewLog(logger.LevelSilent))

	first, err := loader.LoadPackageData("/p/node_modules/foo")
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	second, err := loader.LoadPackageData("/p/node_modules/foo")
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if first != second {
		t.Errorf("expected same *PackageData pointer from cache, got distinct instances")
	}
}

func TestLoadPackageDataMissingManifest(t *testing.T) {
	fsys := fs.NewMockFS(map[string]string{})
	loader := NewLoader(fsys, logger.NewLog(logger.LevelSilent))

	if _, err := loader.LoadPackageData("/p/node_modules/missing"); err == nil {
		t.Errorf("expected error for missing package.json")
	}
}

func TestResolvePackageDataWalksAncestors(t *testing.T) {
	fsys := fs.NewMockFS(map[string]string{
		"/p/node_modules/react/package.json": `{"name": "react", "main": "index.js"}`,
	})
	loader := NewLoader(fsys, logger.NewLog(logger.LevelSilent))

	pkg, dir := loader.ResolvePackageData("react", "/p/node_modules/x/node_modules/y", false)
	if pkg == nil {
		t.Fatalf("expected to find react by walking ancestors")
	}
	if dir != "/p/node_modules/react" {
		t.Errorf("dir = %q, want /p/node_modules/react", dir)
	}
}

func TestResolvePackageDataNotFound(t *testing.T) {
	fsys := fs.NewMockFS(map[string]string{})
	loader := NewLoader(fsys, logger.NewLog(logger.LevelSilent))

	pkg, dir := loader.ResolvePackageData("nowhere", "/p/src", false)
	if pkg != nil || dir != "" {
		t.Errorf("expected (nil, \"\"), got (%v, %q)", pkg, dir)
	}
}

func TestHasSideEffectsArrayAndGlobs(t *testing.T) {
	fsys := fs.NewMockFS(map[string]string{
		"/p/node_modules/foo/package.json": `{
			"name": "foo",
			"sideEffects": ["./a.css", "./lib/*.js"]
		}`,
	})
	loader := NewLoader(fsys, logger.NewLog(logger.LevelSilent))
	pkg, err := loader.LoadPackageData("/p/node_modules/foo")
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if !pkg.HasSideEffects("a.css") {
		t.Errorf("a.css should have side effects (listed exactly)")
	}
	if !pkg.HasSideEffects("lib/x.js") {
		t.Errorf("lib/x.js should match glob lib/*.js")
	}
	if pkg.HasSideEffects("other.js") {
		t.Errorf("other.js should not have side effects")
	}
}

func TestHasSideEffectsDefaultAll(t *testing.T) {
	fsys := fs.NewMockFS(map[string]string{
		"/p/node_modules/foo/package.json": `{"name": "foo"}`,
	})
	loader := NewLoader(fsys, logger.NewLog(logger.LevelSilent))
	pkg, err := loader.LoadPackageData("/p/node_modules/foo")
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if !pkg.HasSideEffects("anything.js") {
		t.Errorf("absent sideEffects field should default to all-true")
	}
}

func TestHasNativeBindings(t *testing.T) {
	fsys := fs.NewMockFS(map[string]string{
		"/p/node_modules/foo/package.json": `{
			"name": "foo",
			"dependencies": {"node-gyp-build": "^4.0.0"}
		}`,
	})
	loader := NewLoader(fsys, logger.NewLog(logger.LevelSilent))
	pkg, err := loader.LoadPackageData("/p/node_modules/foo")
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if !pkg.HasNativeBindings() {
		t.Errorf("expected native bindings to be detected via dependencies")
	}
}

func TestBrowserStringAndObject(t *testing.T) {
	fsys := fs.NewMockFS(map[string]string{
		"/p/node_modules/str/package.json":    `{"name": "str", "browser": "./browser.js"}`,
		"/p/node_modules/obj/package.json":    `{"name": "obj", "browser": {"./a.js": "./a-browser.js", "fs": false}}`,
	})
	loader := NewLoader(fsys, logger.NewLog(logger.LevelSilent))

	strPkg, err := loader.LoadPackageData("/p/node_modules/str")
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if s, ok := strPkg.BrowserString(); !ok || s != "./browser.js" {
		t.Errorf("BrowserString() = (%q, %v), want (./browser.js, true)", s, ok)
	}
	if _, ok := strPkg.BrowserObject(); ok {
		t.Errorf("BrowserObject() should report false for a string browser field")
	}

	objPkg, err := loader.LoadPackageData("/p/node_modules/obj")
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	entries, ok := objPkg.BrowserObject()
	if !ok || len(entries) != 2 {
		t.Fatalf("BrowserObject() = (%v, %v), want 2 entries", entries, ok)
	}
	if entries[0].Key != "./a.js" || entries[1].Key != "fs" {
		t.Errorf("browser object did not preserve source order: %+v", entries)
	}
}

func TestResolvedCacheMemoizesPerTargetWeb(t *testing.T) {
	fsys := fs.NewMockFS(map[string]string{
		"/p/node_modules/foo/package.json": `{"name": "foo"}`,
	})
	loader := NewLoader(fsys, logger.NewLog(logger.LevelSilent))
	pkg, err := loader.LoadPackageData("/p/node_modules/foo")
	if err != nil {
		t.Fatalf("load error: %v", err)
	}

	if _, ok := pkg.GetResolvedCache(".", true); ok {
		t.Fatalf("expected no cached entry before Set")
	}

	pkg.SetResolvedCache(".", &CacheEntry{Path: "/p/node_modules/foo/web.js", OK: true}, true)
	pkg.SetResolvedCache(".", &CacheEntry{Path: "/p/node_modules/foo/node.js", OK: true}, false)

	web, ok := pkg.GetResolvedCache(".", true)
	if !ok || web.Path != "/p/node_modules/foo/web.js" {
		t.Errorf("web cache = (%+v, %v), want web.js entry", web, ok)
	}
	node, ok := pkg.GetResolvedCache(".", false)
	if !ok || node.Path != "/p/node_modules/foo/node.js" {
		t.Errorf("node cache = (%+v, %v), want node.js entry", node, ok)
	}
}
