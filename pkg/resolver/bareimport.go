package resolver

import (
	"context"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/jsresolve/jsresolve/internal/fs"
	"github.com/jsresolve/jsresolve/internal/logger"
	"github.com/jsresolve/jsresolve/internal/manifest"
	"github.com/jsresolve/jsresolve/internal/pathutil"
)

// tryNodeResolve implements spec §4.7: decompose a bare specifier into
// candidate package ids, locate the package, delegate to the
// entry-point or deep-import resolver, then apply post-processing
// (externalization, optimizer hand-off, version-query injection).
func (r *Resolver) tryNodeResolve(ctx context.Context, id string, importer string, targetWeb bool, opts Options, trace *logger.Trace) (*Result, error) {
	nestedRoot, nestedPath := pathutil.SplitNestedSelector(id)
	possiblePkgIDs := pathutil.PossiblePackageIDs(nestedPath)
	if len(possiblePkgIDs) == 0 {
		return nil, nil
	}

	basedir := r.chooseBaseDir(possiblePkgIDs, importer, opts)

	if nestedRoot != "" {
		basedir = r.walkNestedRoot(nestedRoot, basedir, opts)
	}

	pkgID, pkg, pkgDir, ok := r.findPackage(possiblePkgIDs, basedir, opts)
	if !ok {
		if opts.TryEsmOnly {
			retryOpts := opts
			retryOpts.IsRequire = false
			retryOpts.MainFields = defaultMainFields()
			retryOpts.Extensions = defaultExtensions()
			if res, err := r.tryNodeResolve(ctx, id, importer, targetWeb, retryOpts, trace); err == nil && res != nil {
				return res, nil
			}
		}
		return nil, nil
	}

	var resolved string
	var resolveErr error
	if pkgID == nestedPath {
		var entryOK bool
		resolved, entryOK = r.resolvePackageEntry(id, pkg, targetWeb, opts, trace)
		if !entryOK {
			resolveErr = entryResolutionError(pkgDir, pkgID)
		}
	} else {
		subpath := "." + nestedPath[len(pkgID):]
		resolved, resolveErr = r.resolveDeepImport(subpath, pkg, targetWeb, opts, trace)
	}

	if resolveErr != nil {
		if opts.TryEsmOnly {
			retryOpts := opts
			retryOpts.IsRequire = false
			retryOpts.MainFields = defaultMainFields()
			retryOpts.Extensions = defaultExtensions()
			if res, err := r.tryNodeResolve(ctx, id, importer, targetWeb, retryOpts, trace); err == nil && res != nil {
				return res, nil
			}
		}
		return nil, resolveErr
	}

	return r.postProcessBareImport(ctx, id, importer, pkgID, nestedPath, pkg, resolved, opts)
}

func (r *Resolver) chooseBaseDir(possiblePkgIDs []string, importer string, opts Options) string {
	for _, id := range possiblePkgIDs {
		for _, d := range opts.Dedupe {
			if id == d {
				return opts.Root
			}
		}
	}
	if importer != "" {
		importerFile, _ := pathutil.SplitFileAndPostfix(importer)
		if r.fsys.IsAbs(importerFile) && kindOf(r.fsys, importerFile) == fs.FileEntry {
			return r.fsys.Dir(importerFile)
		}
	}
	return opts.Root
}

func (r *Resolver) walkNestedRoot(nestedRoot string, basedir string, opts Options) string {
	for _, token := range strings.Split(nestedRoot, " > ") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if _, dir := r.manifests.ResolvePackageData(token, basedir, opts.PreserveSymlinks); dir != "" {
			basedir = dir
		}
	}
	return basedir
}

// findPackage reverses possiblePkgIDs (longest first) and returns the
// first that the manifest resolver finds under basedir.
func (r *Resolver) findPackage(possiblePkgIDs []string, basedir string, opts Options) (string, *manifest.PackageData, string, bool) {
	for i := len(possiblePkgIDs) - 1; i >= 0; i-- {
		id := possiblePkgIDs[i]
		if pkg, dir := r.manifests.ResolvePackageData(id, basedir, opts.PreserveSymlinks); pkg != nil {
			return id, pkg, dir, true
		}
	}
	return "", nil, "", false
}

func entryResolutionError(pkgDir, pkgID string) error {
	return &entryResolutionFailure{pkgDir: pkgDir, pkgID: pkgID}
}

type entryResolutionFailure struct {
	pkgDir string
	pkgID  string
}

func (e *entryResolutionFailure) Error() string {
	return "Failed to resolve entry for package \"" + e.pkgID + "\". The package may have incorrect main/module/exports fields, or missing files."
}

// postProcessBareImport implements the "Post-processing" subsection of
// spec §4.7.
func (r *Resolver) postProcessBareImport(ctx context.Context, originalID string, importer string, pkgID string, nestedPath string, pkg *manifest.PackageData, resolved string, opts Options) (*Result, error) {
	isDeepImport := pkgID != nestedPath
	isJsType := isOptimizableEntry(resolved)
	relFile := strings.TrimPrefix(resolved, pkg.Dir+"/")
	sideEffects := pkg.HasSideEffects(relFile)

	if opts.ShouldExternalize != nil {
		if externalize, err := opts.ShouldExternalize(originalID, importer); err == nil && externalize {
			patched := originalID
			if isDeepImport {
				ext := extOf(resolved)
				if ext != "" && ext != ".js" && ext != ".mjs" && ext != ".cjs" {
					return nil, nil // not externalizable in this shape; fall through
				}
				if extOf(originalID) == "" {
					if _, hasExports := pkg.Exports(); !hasExports {
						patched = originalID + ext
					}
				}
			}
			return &Result{ID: patched, External: true, ModuleSideEffects: &sideEffects}, nil
		}
	}

	isBuild := !opts.AsSrc
	var depsOptimizer DepsOptimizer
	if opts.GetDepsOptimizer != nil {
		depsOptimizer = opts.GetDepsOptimizer(opts.SSR)
	}

	if isBuild && depsOptimizer == nil {
		return &Result{ID: resolved, ModuleSideEffects: &sideEffects}, nil
	}

	if !strings.Contains(resolved, "/node_modules/") || depsOptimizer == nil || opts.Scan {
		return &Result{ID: resolved}, nil
	}

	excluded := matchesExcludeGlob(depsOptimizer.Options().Exclude, pkgID, nestedPath)

	importerInNodeModules := strings.Contains(importer, "/node_modules/")
	hasSpecialQuery := strings.ContainsAny(resolved, "?")

	if !isJsType || importerInNodeModules || excluded || hasSpecialQuery || (!isBuild && opts.SSR) {
		if !isBuild && isJsType {
			meta := depsOptimizer.Metadata(opts.SSR)
			return &Result{ID: resolved + "?v=" + meta.BrowserHash}, nil
		}
		return &Result{ID: resolved}, nil
	}

	info, err := depsOptimizer.RegisterMissingImport(ctx, originalID, resolved, opts.SSR)
	if err != nil {
		return nil, err
	}
	id := depsOptimizer.GetOptimizedDepID(info)
	if isBuild {
		return &Result{ID: id, ModuleSideEffects: &sideEffects}, nil
	}
	return &Result{ID: id}, nil
}

func matchesExcludeGlob(patterns []string, pkgID, nestedPath string) bool {
	candidates := []string{pkgID}
	if nestedPath != pkgID {
		candidates = append(candidates, nestedPath)
	}
	for _, pattern := range patterns {
		for _, candidate := range candidates {
			if ok, err := doublestar.Match(pattern, candidate); err == nil && ok {
				return true
			}
		}
	}
	return false
}
