package resolver

import (
	"fmt"

	"github.com/jsresolve/jsresolve/internal/logger"
	"github.com/jsresolve/jsresolve/internal/manifest"
	"github.com/jsresolve/jsresolve/internal/pathutil"
	"github.com/jsresolve/jsresolve/internal/suggest"
)

// resolveDeepImport implements spec §4.5: resolving a subpath within a
// package via "exports" or a browser-object remap, then probing the
// filesystem. subpath is already "."-rooted (e.g. "./sub"); it doubles
// as the cache key, partitioned by targetWeb per spec §3.
func (r *Resolver) resolveDeepImport(subpath string, pkg *manifest.PackageData, targetWeb bool, opts Options, trace *logger.Trace) (string, error) {
	rawID := subpath
	if cached, ok := pkg.GetResolvedCache(rawID, targetWeb); ok {
		if !cached.OK {
			return "", fmt.Errorf("%s: previously failed to resolve", rawID)
		}
		if cached.External {
			return browserExternalID, nil
		}
		return cached.Path, nil
	}

	file, postfix := pathutil.SplitFileAndPostfix(rawID)
	tryIndex := true
	fileIsAbsolute := false

	if exportsVal, hasExports := pkg.Exports(); hasExports {
		tryIndex = false
		if !exportsVal.IsObject() || isArrayLike(exportsVal) {
			pkg.SetResolvedCache(rawID, &manifest.CacheEntry{OK: false}, targetWeb)
			return "", r.subpathNotExposedError(pkg, file)
		}
		conditions := opts.buildConditions(targetWeb)
		resolved, status := manifest.ResolveExportsWithPostConditions(pkg.Dir, file, exportsVal, conditions)
		if status != manifest.StatusExact && status != manifest.StatusInexact {
			pkg.SetResolvedCache(rawID, &manifest.CacheEntry{OK: false}, targetWeb)
			return "", r.subpathNotExposedError(pkg, file)
		}
		// ResolveExportsWithPostConditions already joins pkg.Dir into its
		// result, so file is a complete filesystem path here, not a
		// package-relative tail.
		file = resolved
		fileIsAbsolute = true
	} else if targetWeb {
		if browserEntries, ok := pkg.BrowserObject(); ok {
			remap := manifest.MapWithBrowserField(browserEntries, normalizeBrowserKey(file))
			if remap.Matched {
				if remap.IsFalse {
					pkg.SetResolvedCache(rawID, &manifest.CacheEntry{External: true, OK: true}, targetWeb)
					return browserExternalID, nil
				}
				file = remap.Remapped
			}
		}
	}

	fsPath := file
	if !fileIsAbsolute {
		fsPath = r.fsys.Join(pkg.Dir, file)
	}
	fsPath += postfix
	hit, ok := r.tryFsResolve(fsPath, opts, tryIndex, targetWeb, trace)
	if !ok {
		pkg.SetResolvedCache(rawID, &manifest.CacheEntry{OK: false}, targetWeb)
		return "", fmt.Errorf("failed to resolve %s%s in package %s", pkg.Name, rawID, pkg.Dir)
	}

	pkg.SetResolvedCache(rawID, &manifest.CacheEntry{Path: hit, OK: true}, targetWeb)
	r.rememberPackage(hit, pkg)
	return hit, nil
}

func isArrayLike(v manifest.Value) bool { return v.Kind == manifest.KindArray }

// subpathNotExposedError reports spec §7's subpath-not-exposed fatal,
// naming the subpath and the manifest path, with a fuzzy-matched "did
// you mean" note drawn from the package's other declared export keys.
func (r *Resolver) subpathNotExposedError(pkg *manifest.PackageData, subpath string) error {
	candidates := exportedSubpaths(pkg)
	note := suggest.Note(subpath, candidates)
	manifestPath := r.fsys.Join(pkg.Dir, "package.json")
	if note == "" {
		return fmt.Errorf("No known conditions for %q specified in %q's exports field", subpath, manifestPath)
	}
	return fmt.Errorf("No known conditions for %q specified in %q's exports field. %s", subpath, manifestPath, note)
}

func exportedSubpaths(pkg *manifest.PackageData) []string {
	exportsVal, ok := pkg.Exports()
	if !ok || !exportsVal.IsObject() {
		return nil
	}
	out := make([]string, 0, len(exportsVal.Obj))
	for _, p := range exportsVal.Obj {
		out = append(out, p.Key)
	}
	return out
}
