package resolver

import (
	"regexp"
	"strings"

	"github.com/jsresolve/jsresolve/internal/logger"
	"github.com/jsresolve/jsresolve/internal/manifest"
)

var (
	umdExportsRe = regexp.MustCompile(`typeof exports\s*==`)
	umdModuleRe  = regexp.MustCompile(`typeof module\s*==`)
	cjsExportsRe = regexp.MustCompile(`module\.exports\s*=`)
)

var defaultEntryFallbacks = []string{"index.js", "index.json", "index.node"}

// resolvePackageEntry implements spec §4.4's entry-point resolver,
// selecting and probing a package's root file from exports, the browser
// field's UMD-aware remap, configurable main-fields, and finally
// hard-coded defaults.
func (r *Resolver) resolvePackageEntry(originalID string, pkg *manifest.PackageData, targetWeb bool, opts Options, trace *logger.Trace) (string, bool) {
	if cached, ok := pkg.GetResolvedCache(".", targetWeb); ok {
		return cached.Path, cached.OK
	}

	entry, skipPackageJSON, entryIsAbsolute := r.selectEntryCandidate(pkg, targetWeb, opts)

	candidates := []string{entry}
	if entry == "" {
		candidates = defaultEntryFallbacks
		entryIsAbsolute = false
	}

	probeOpts := opts
	if skipPackageJSON {
		probeOpts.SkipPackageJSON = true
	}

	browserEntries, hasBrowserMap := pkg.BrowserObject()

	for _, candidate := range candidates {
		// An exports-resolved candidate is already a complete filesystem
		// path (spec §4.4 step 1 takes priority over the browser field).
		if entryIsAbsolute {
			if hit, ok := r.tryFsResolve(candidate, probeOpts, true, targetWeb, trace); ok {
				pkg.SetResolvedCache(".", &manifest.CacheEntry{Path: hit, OK: true}, targetWeb)
				r.rememberPackage(hit, pkg)
				return hit, true
			}
			continue
		}

		resolvedCandidate := candidate
		if targetWeb && hasBrowserMap {
			remap := manifest.MapWithBrowserField(browserEntries, normalizeBrowserKey(candidate))
			if remap.Matched && !remap.IsFalse {
				resolvedCandidate = remap.Remapped
			}
		}

		fsPath := r.fsys.Join(pkg.Dir, resolvedCandidate)
		if hit, ok := r.tryFsResolve(fsPath, probeOpts, true, targetWeb, trace); ok {
			pkg.SetResolvedCache(".", &manifest.CacheEntry{Path: hit, OK: true}, targetWeb)
			r.rememberPackage(hit, pkg)
			return hit, true
		}
	}

	pkg.SetResolvedCache(".", &manifest.CacheEntry{OK: false}, targetWeb)
	trace.Note("entry resolution failed for package " + pkg.Name)
	return "", false
}

// selectEntryCandidate runs the cascade from spec §4.4 steps 1-5 and
// returns the chosen entry path (possibly "" to signal the hard-coded
// default fallbacks), whether the sass special case fired, and whether
// the returned entry is already a complete filesystem path (true only
// when "exports" produced it, since ResolveExportsWithPostConditions
// bakes pkg.Dir into its result).
func (r *Resolver) selectEntryCandidate(pkg *manifest.PackageData, targetWeb bool, opts Options) (entry string, skipPackageJSON bool, isAbsolute bool) {
	if exportsVal, ok := pkg.Exports(); ok {
		conditions := opts.buildConditions(targetWeb)
		resolved, status := manifest.ResolveExportsWithPostConditions(pkg.Dir, ".", exportsVal, conditions)
		if status == manifest.StatusExact || status == manifest.StatusInexact {
			entry = resolved
			isAbsolute = true
		}
	}

	if targetWeb && (entry == "" || strings.HasSuffix(entry, ".mjs")) {
		if browserEntry, ok := browserFieldEntry(pkg); ok {
			moduleField, hasModule := pkg.Field("module")
			if hasModule && moduleField != browserEntry && !opts.IsRequire {
				if r.looksLikeUMD(pkg, browserEntry) {
					entry = moduleField
				} else {
					entry = browserEntry
				}
			} else {
				entry = browserEntry
			}
			isAbsolute = false
		}
	}

	if entry == "" || strings.HasSuffix(entry, ".mjs") {
		for _, field := range opts.MainFields {
			if v, ok := pkg.Field(field); ok && v != "" {
				if field == "sass" && !isListedExtension(v, opts.Extensions) {
					entry = ""
					skipPackageJSON = true
				} else {
					entry = v
				}
				isAbsolute = false
				break
			}
		}
	}

	if entry == "" {
		if v, ok := pkg.Main(); ok {
			entry = v
			isAbsolute = false
		}
	}

	return entry, skipPackageJSON, isAbsolute
}

func isListedExtension(file string, extensions []string) bool {
	ext := extOf(file)
	for _, e := range extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// browserFieldEntry returns the package's own root browser remap: the
// "browser" field when it's a string, or browser["."] when it's an
// object (spec §4.4 step 2).
func browserFieldEntry(pkg *manifest.PackageData) (string, bool) {
	if s, ok := pkg.BrowserString(); ok {
		return s, true
	}
	if entries, ok := pkg.BrowserObject(); ok {
		for _, p := range entries {
			if p.Key == "." && p.Value.IsString() {
				return p.Value.Str, true
			}
		}
	}
	return "", false
}

// looksLikeUMD content-sniffs browserEntry for the legacy UMD/CJS
// wrapper patterns spec §4.4's UMD heuristic names. A read failure is
// treated as "not UMD" — the probe step will surface the missing file.
func (r *Resolver) looksLikeUMD(pkg *manifest.PackageData, browserEntry string) bool {
	contents, err := r.fsys.ReadFile(r.fsys.Join(pkg.Dir, browserEntry))
	if err != nil {
		return false
	}
	return (umdExportsRe.MatchString(contents) && umdModuleRe.MatchString(contents)) || cjsExportsRe.MatchString(contents)
}

func normalizeBrowserKey(p string) string {
	if p == "" {
		return "."
	}
	if !strings.HasPrefix(p, "./") && !strings.HasPrefix(p, "../") {
		return "./" + p
	}
	return p
}
