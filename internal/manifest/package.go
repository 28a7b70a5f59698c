// Package manifest loads and caches package.json data and implements the
// parts of resolution that only need the manifest's content: the
// "exports"/"imports" algorithm and the "browser" field mapper. The parts
// that also need the filesystem (choosing and probing a concrete entry
// file) live in pkg/resolver, which consumes PackageData through this
// package's exported accessors.
package manifest

import (
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/singleflight"

	"github.com/jsresolve/jsresolve/internal/fs"
	"github.com/jsresolve/jsresolve/internal/logger"
)

// PackageData is the handle described in spec §3: the package directory,
// the parsed manifest, a per-package memo of resolved subpath results
// partitioned by targetWeb, and a sideEffects predicate.
type PackageData struct {
	Dir  string
	Name string
	raw  Value

	sideEffectsAll    bool // no "sideEffects" field, or it's absent entirely
	sideEffectsFalse  bool // "sideEffects": false
	sideEffectsFiles  map[string]bool
	sideEffectsGlobs  []string
	moduleType        string // "module" | "commonjs" | ""
	hasNativeBindings bool

	cacheMu  sync.Mutex
	webCache map[string]*CacheEntry
	nodCache map[string]*CacheEntry
}

// CacheEntry is a memoized resolvePackageEntry/resolveDeepImport result,
// keyed by subpath, per targetWeb (spec §3 invariant: "recomputing it is
// forbidden after a successful selection").
type CacheEntry struct {
	Path     string
	External bool
	OK       bool
}

func newPackageData(dir string, raw Value) *PackageData {
	pkg := &PackageData{
		Dir:            dir,
		raw:            raw,
		sideEffectsAll: true,
		webCache:       make(map[string]*CacheEntry),
		nodCache:       make(map[string]*CacheEntry),
	}
	if name, ok := raw.Get("name"); ok && name.IsString() {
		pkg.Name = name.Str
	}
	if typ, ok := raw.Get("type"); ok && typ.IsString() {
		pkg.moduleType = typ.Str
	}
	pkg.loadSideEffects(raw)
	if deps, ok := raw.Get("dependencies"); ok && deps.IsObject() {
		for _, p := range deps.Obj {
			if nativeModuleMarkers[p.Key] {
				pkg.hasNativeBindings = true
				break
			}
		}
	}
	return pkg
}

var nativeModuleMarkers = map[string]bool{
	"bindings":       true,
	"nan":            true,
	"node-gyp-build": true,
	"node-pre-gyp":   true,
	"prebuild":       true,
}

func (pkg *PackageData) loadSideEffects(raw Value) {
	se, ok := raw.Get("sideEffects")
	if !ok {
		return
	}
	switch se.Kind {
	case KindBool:
		pkg.sideEffectsAll = se.Bool
		pkg.sideEffectsFalse = !se.Bool
	case KindArray:
		pkg.sideEffectsAll = false
		pkg.sideEffectsFiles = make(map[string]bool, len(se.Arr))
		for _, item := range se.Arr {
			if !item.IsString() {
				continue
			}
			pattern := item.Str
			if strings.ContainsAny(pattern, "*?[") {
				pkg.sideEffectsGlobs = append(pkg.sideEffectsGlobs, normalizeSideEffectPath(pattern))
			} else {
				pkg.sideEffectsFiles[normalizeSideEffectPath(pattern)] = true
			}
		}
	}
}

func normalizeSideEffectPath(p string) string {
	p = strings.TrimPrefix(p, "./")
	return p
}

// HasSideEffects reports whether file (relative to the package directory,
// "/"-separated) may have import side effects.
func (pkg *PackageData) HasSideEffects(relFile string) bool {
	if pkg.sideEffectsFalse {
		return false
	}
	if pkg.sideEffectsAll {
		return true
	}
	rel := normalizeSideEffectPath(relFile)
	if pkg.sideEffectsFiles[rel] {
		return true
	}
	for _, glob := range pkg.sideEffectsGlobs {
		if globMatch(glob, rel) {
			return true
		}
	}
	return false
}

// ModuleType returns the package.json "type" field ("module", "commonjs",
// or "" if absent).
func (pkg *PackageData) ModuleType() string { return pkg.moduleType }

// HasNativeBindings reports whether the package depends on a native
// addon loader, a signal some bundlers use to warn about bundling it.
func (pkg *PackageData) HasNativeBindings() bool { return pkg.hasNativeBindings }

// Field looks up a top-level string-valued field, used for the
// configurable main-fields walk in §4.4 step 3.
func (pkg *PackageData) Field(name string) (string, bool) {
	v, ok := pkg.raw.Get(name)
	if !ok || !v.IsString() {
		return "", false
	}
	return v.Str, true
}

// Main returns the "main" field, used as the fallback in §4.4 step 4.
func (pkg *PackageData) Main() (string, bool) { return pkg.Field("main") }

// Exports returns the raw "exports" value and whether it is present
// (non-null).
func (pkg *PackageData) Exports() (Value, bool) {
	v, ok := pkg.raw.Get("exports")
	return v, ok && !v.IsNull()
}

// Imports returns the raw "imports" value (the "#subpath" import map).
func (pkg *PackageData) Imports() (Value, bool) {
	v, ok := pkg.raw.Get("imports")
	return v, ok && !v.IsNull()
}

// BrowserString returns the "browser" field when it is a plain string.
func (pkg *PackageData) BrowserString() (string, bool) {
	v, ok := pkg.raw.Get("browser")
	if !ok || !v.IsString() {
		return "", false
	}
	return v.Str, true
}

// BrowserObject returns the "browser" field's entries, in source order,
// when it is an object map.
func (pkg *PackageData) BrowserObject() ([]Pair, bool) {
	v, ok := pkg.raw.Get("browser")
	if !ok || !v.IsObject() {
		return nil, false
	}
	return v.Obj, true
}

// GetResolvedCache returns a memoized resolvePackageEntry/resolveDeepImport
// result for key, partitioned by targetWeb.
func (pkg *PackageData) GetResolvedCache(key string, targetWeb bool) (*CacheEntry, bool) {
	pkg.cacheMu.Lock()
	defer pkg.cacheMu.Unlock()
	m := pkg.nodCache
	if targetWeb {
		m = pkg.webCache
	}
	entry, ok := m[key]
	return entry, ok
}

// SetResolvedCache stores a memoized result. Per spec §3, once set for a
// (package, subpath, targetWeb) triple it is never recomputed.
func (pkg *PackageData) SetResolvedCache(key string, entry *CacheEntry, targetWeb bool) {
	pkg.cacheMu.Lock()
	defer pkg.cacheMu.Unlock()
	m := pkg.nodCache
	if targetWeb {
		m = pkg.webCache
	}
	m[key] = entry
}

// Loader loads and caches package.json manifests, per spec §4.3: given
// (packageId, basedir) it walks ancestor node_modules directories for a
// match and returns a cached handle.
type Loader struct {
	fsys fs.FS
	log  logger.Log

	mu    sync.Mutex
	byDir map[string]*dirCacheEntry

	group singleflight.Group
}

type dirCacheEntry struct {
	pkg *PackageData
	err error
}

func NewLoader(fsys fs.FS, log logger.Log) *Loader {
	return &Loader{fsys: fsys, log: log, byDir: make(map[string]*dirCacheEntry)}
}

// LoadPackageData parses dir/package.json, grounded on the teacher's
// loadPackageData: used both by the ancestor-walk below and directly by
// the filesystem probe when it finds a package.json next to a directory
// target (spec §4.2 step about tryResolveFile).
func (l *Loader) LoadPackageData(dir string) (*PackageData, error) {
	l.mu.Lock()
	if cached, ok := l.byDir[dir]; ok {
		l.mu.Unlock()
		return cached.pkg, cached.err
	}
	l.mu.Unlock()

	result, err, _ := l.group.Do(dir, func() (interface{}, error) {
		manifestPath := l.fsys.Join(dir, "package.json")
		contents, err := l.fsys.ReadFile(manifestPath)
		if err != nil {
			l.mu.Lock()
			l.byDir[dir] = &dirCacheEntry{err: err}
			l.mu.Unlock()
			return nil, err
		}
		raw, parseErr := Parse(contents)
		if parseErr != nil {
			l.log.AddError("Cannot parse " + manifestPath + ": " + parseErr.Error())
			l.mu.Lock()
			l.byDir[dir] = &dirCacheEntry{err: parseErr}
			l.mu.Unlock()
			return nil, parseErr
		}
		pkg := newPackageData(dir, raw)
		l.mu.Lock()
		l.byDir[dir] = &dirCacheEntry{pkg: pkg}
		l.mu.Unlock()
		return pkg, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*PackageData), nil
}

// ResolvePackageData walks basedir and its ancestors looking for
// node_modules/<pkgID>/package.json, per spec §4.3. It returns nil, "" when
// no ancestor has a matching package.
func (l *Loader) ResolvePackageData(pkgID string, basedir string, preserveSymlinks bool) (*PackageData, string) {
	dir := basedir
	for {
		candidate := l.fsys.Join(dir, "node_modules", pkgID)
		if pkg, err := l.LoadPackageData(candidate); err == nil {
			resolvedDir := candidate
			if !preserveSymlinks {
				if real, ok := l.fsys.EvalSymlinks(candidate); ok {
					resolvedDir = real
				}
			}
			return pkg, resolvedDir
		}
		parent := l.fsys.Dir(dir)
		if parent == dir {
			return nil, ""
		}
		dir = parent
	}
}

// globMatch matches a "sideEffects" array glob entry against a
// package-relative path. package.json globs follow the same doublestar
// conventions the optimizer's exclude-list matcher uses, so the same
// library serves both.
func globMatch(pattern, name string) bool {
	ok, err := doublestar.Match(pattern, name)
	return err == nil && ok
}
