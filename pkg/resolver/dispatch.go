package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/jsresolve/jsresolve/internal/logger"
	"github.com/jsresolve/jsresolve/internal/manifest"
	"github.com/jsresolve/jsresolve/internal/pathutil"
)

// resolveID is the dispatch orchestrator from spec §4.1: it classifies
// specifier and routes to the appropriate leaf, honoring the documented
// 12-step precedence order with first match winning.
func (r *Resolver) resolveID(ctx context.Context, specifier string, importer string, opts Options, trace *logger.Trace) (*Result, error) {
	targetWeb := opts.targetWeb()

	// 3. isFromTsImporter is derived from the importer's own extension,
	// falling back to a plugin host's meta.vite.lang hint when the
	// importer carries none of its own (spec §4.1 step 3).
	importerFile, _ := pathutil.SplitFileAndPostfix(importer)
	opts.IsFromTsImporter = isTsLikeExt(extOf(importerFile)) || isTsLikeLang(opts.ImporterMetaLang)

	// 1. browser-external marker
	if specifier == browserExternalID || strings.HasPrefix(specifier, browserExternalID+":") {
		trace.Note("browser-external marker, returned unchanged")
		return handled(specifier)
	}

	// 2. commonjs proxy pass-through
	if strings.Contains(specifier, commonjsProxyQuery) || specifier == commonjsProxyFile {
		trace.Note("commonjs proxy artifact, deferring")
		return deferred()
	}

	var optimizer DepsOptimizer
	if opts.GetDepsOptimizer != nil {
		optimizer = opts.GetDepsOptimizer(opts.SSR)
	}

	// 4. optimized-dep url
	if opts.AsSrc && optimizer != nil && optimizer.IsOptimizedDepURL(specifier) {
		normalized := specifier
		if rest, ok := strings.CutPrefix(normalized, fsEscapePrefix); ok {
			normalized = rest
		} else if strings.HasPrefix(normalized, "/") {
			normalized = r.fsys.Join(opts.Root, normalized)
		}
		trace.Note("optimized-dep url")
		return handled(normalized)
	}

	// 5. explicit fs escape
	if opts.AsSrc && strings.HasPrefix(specifier, fsEscapePrefix) {
		stripped := strings.TrimPrefix(specifier, fsEscapePrefix)
		if hit, ok := r.tryFsResolve(stripped, opts, true, targetWeb, trace); ok {
			return handled(hit)
		}
		return handled(stripped)
	}

	// 6. root-absolute url
	if opts.AsSrc && strings.HasPrefix(specifier, "/") {
		fsPath := r.fsys.Join(opts.Root, specifier)
		if hit, ok := r.tryFsResolve(fsPath, opts, true, targetWeb, trace); ok {
			return handled(hit)
		}
	}

	// 7. relative
	isWordLeading := specifier != "" && (specifier[0] == '_' || isLetterOrDigit(specifier[0]))
	if pathutil.IsRelative(specifier) || (opts.PreferRelative && isWordLeading) {
		if res, ok, err := r.resolveRelative(specifier, importer, opts, targetWeb, trace); err != nil {
			return nil, err
		} else if ok {
			return res, nil
		}
	}

	// 8. absolute
	if r.fsys.IsAbs(specifier) {
		if hit, ok := r.tryFsResolve(specifier, opts, true, targetWeb, trace); ok {
			return handled(hit)
		}
	}

	// 9. external url
	if pathutil.IsExternalURL(specifier) {
		trace.Note("external url")
		return externalResult(specifier)
	}

	// 10. data url
	if strings.HasPrefix(specifier, "data:") {
		return nullResult()
	}

	// 11a. subpath import ("#foo"), resolved against the importer's own
	// package.json "imports" map before falling into bare-import handling.
	if strings.HasPrefix(specifier, "#") {
		if pkg, ok := r.enclosingPackage(importer); ok {
			if importsVal, hasImports := pkg.Imports(); hasImports {
				conditions := opts.buildConditions(targetWeb)
				resolved, status := manifest.ResolveImports(pkg.Dir, specifier, importsVal, conditions)
				if status == manifest.StatusExact || status == manifest.StatusInexact {
					if hit, ok := r.tryFsResolve(resolved, opts, true, targetWeb, trace); ok {
						r.rememberPackage(hit, pkg)
						return handled(hit)
					}
				}
			}
		}
	}

	// 11. bare import
	if pathutil.IsBareImport(specifier) {
		if opts.AsSrc && !opts.Scan && optimizer != nil {
			if hit, ok := r.tryOptimizedResolve(ctx, optimizer, opts.SSR, specifier, importer); ok {
				trace.Note("optimized dependency")
				return handled(hit)
			}
		}

		if targetWeb {
			if pkg, ok := r.enclosingPackage(importer); ok {
				if entries, hasMap := pkg.BrowserObject(); hasMap {
					remap := manifest.MapWithBrowserField(entries, specifier)
					if remap.Matched {
						if remap.IsFalse {
							return handled(browserExternalID)
						}
						return r.resolveID(ctx, remap.Remapped, importer, opts, trace)
					}
				}
			}
		}

		if res, err := r.tryNodeResolve(ctx, specifier, importer, targetWeb, opts, trace); err != nil {
			return nil, err
		} else if res != nil {
			return res, nil
		}

		if isBuiltin(specifier) {
			if opts.SSR {
				if opts.SSRNoExternal {
					return nil, fmt.Errorf("Cannot bundle Node.js built-in %q imported from %q. Consider disabling ssr.noExternal or polyfilling it.", specifier, importer)
				}
				return externalResult(specifier)
			}
			if opts.Production {
				return handled(browserExternalID)
			}
			return handled(browserExternalID + ":" + specifier)
		}
	}

	// 12. fall through
	return deferred()
}

var tsLikeExtensions = map[string]bool{
	".ts":  true,
	".tsx": true,
	".mts": true,
	".cts": true,
}

func isTsLikeExt(ext string) bool {
	return tsLikeExtensions[ext]
}

func isTsLikeLang(lang string) bool {
	switch lang {
	case "ts", "tsx", "mts", "cts":
		return true
	default:
		return false
	}
}

func isLetterOrDigit(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// resolveRelative implements spec §4.1 step 7.
func (r *Resolver) resolveRelative(specifier string, importer string, opts Options, targetWeb bool, trace *logger.Trace) (*Result, bool, error) {
	basedir := opts.Root
	if importer != "" {
		importerFile, _ := pathutil.SplitFileAndPostfix(importer)
		basedir = r.fsys.Dir(importerFile)
	}
	fsPath := r.fsys.Join(basedir, specifier)

	var optimizer DepsOptimizer
	if opts.GetDepsOptimizer != nil {
		optimizer = opts.GetDepsOptimizer(opts.SSR)
	}
	if optimizer != nil && optimizer.IsOptimizedDepFile(fsPath) {
		if !strings.Contains(fsPath, "?v=") {
			meta := optimizer.Metadata(opts.SSR)
			return &Result{ID: fsPath + "?v=" + meta.BrowserHash}, true, nil
		}
		return &Result{ID: fsPath}, true, nil
	}

	if marker := "/node_modules/"; strings.Contains(fsPath, marker) {
		idx := strings.Index(fsPath, marker)
		tail := fsPath[idx+len(marker):]
		res, err := r.tryNodeResolve(context.Background(), tail, importer, targetWeb, opts, trace)
		if err == nil && res != nil && strings.HasPrefix(res.ID, fsPath) {
			return res, true, nil
		}
	}

	if targetWeb {
		if pkg, ok := r.enclosingPackage(importer); ok {
			if entries, hasMap := pkg.BrowserObject(); hasMap {
				rel := fsPath
				if relPath, ok := r.fsys.Rel(pkg.Dir, fsPath); ok {
					rel = normalizeBrowserKey(relPath)
				}
				remap := manifest.MapWithBrowserField(entries, rel)
				if remap.Matched {
					if remap.IsFalse {
						return &Result{ID: browserExternalID}, true, nil
					}
					target := r.fsys.Join(pkg.Dir, remap.Remapped)
					if hit, ok := r.tryFsResolve(target, opts, true, targetWeb, trace); ok {
						return &Result{ID: hit}, true, nil
					}
				}
			}
		}
	}

	if hit, ok := r.tryFsResolve(fsPath, opts, true, targetWeb, trace); ok {
		sideEffects := (*bool)(nil)
		if pkg, ok := r.enclosingPackage(importer); ok {
			relFile := strings.TrimPrefix(hit, pkg.Dir+"/")
			v := pkg.HasSideEffects(relFile)
			sideEffects = &v
		}
		return &Result{ID: hit, ModuleSideEffects: sideEffects}, true, nil
	}

	return nil, false, nil
}

// enclosingPackage looks up the package that produced importer, via
// idToPkgMap (spec §3): "subsequent resolutions originating from inside
// that file can consult its package's browser field and sideEffects
// predicate."
func (r *Resolver) enclosingPackage(importer string) (*manifest.PackageData, bool) {
	if importer == "" {
		return nil, false
	}
	file, _ := pathutil.SplitFileAndPostfix(importer)
	return r.packageForFile(file)
}
