package resolver

import (
	"strings"

	"github.com/jsresolve/jsresolve/internal/fs"
	"github.com/jsresolve/jsresolve/internal/logger"
	"github.com/jsresolve/jsresolve/internal/pathutil"
)

// tsExtensionFallbacks maps a JS-like extension a TypeScript compiler
// could have emitted to the source extensions that would produce it
// (spec §4.2's isFromTsImporter branch).
var tsExtensionFallbacks = map[string][]string{
	".js":  {".ts", ".tsx"},
	".jsx": {".tsx"},
	".mjs": {".mts"},
	".cjs": {".cts"},
}

func kindOf(fsys fs.FS, p string) fs.EntryKind {
	_, kind := fsys.Kind(fsys.Dir(p), fsys.Base(p))
	return kind
}

// tryFsResolve implements spec §4.2's tryFsResolve: given a path that may
// carry a "?query#hash" postfix, try the five candidate forms in order
// and return the first that resolves to a file.
func (r *Resolver) tryFsResolve(fsPath string, opts Options, tryIndex bool, targetWeb bool, trace *logger.Trace) (string, bool) {
	file, postfix := pathutil.SplitFileAndPostfix(fsPath)

	if postfix != "" {
		if hit, ok := r.tryResolveFile(fsPath, "", opts, false, targetWeb, trace); ok {
			return hit, true
		}
	}
	if hit, ok := r.tryResolveFile(file, postfix, opts, false, targetWeb, trace); ok {
		return hit, true
	}
	for _, ext := range opts.Extensions {
		if postfix != "" {
			if hit, ok := r.tryResolveFile(fsPath+ext, "", opts, false, targetWeb, trace); ok {
				return hit, true
			}
		}
		if hit, ok := r.tryResolveFile(file+ext, postfix, opts, false, targetWeb, trace); ok {
			return hit, true
		}
	}
	if postfix != "" {
		if hit, ok := r.tryResolveFile(fsPath, "", opts, tryIndex, targetWeb, trace); ok {
			return hit, true
		}
	}
	if hit, ok := r.tryResolveFile(file, postfix, opts, tryIndex, targetWeb, trace); ok {
		return hit, true
	}
	return "", false
}

// tryResolveFile implements spec §4.2's tryResolveFile.
func (r *Resolver) tryResolveFile(file string, postfix string, opts Options, tryIndex bool, targetWeb bool, trace *logger.Trace) (string, bool) {
	switch kindOf(r.fsys, file) {
	case fs.FileEntry:
		if !r.fsys.IsReadable(file) {
			break
		}
		resolved := file
		if !opts.PreserveSymlinks {
			if real, ok := r.fsys.EvalSymlinks(file); ok {
				resolved = real
			}
		}
		trace.Note("found file " + resolved)
		return resolved + postfix, true

	case fs.DirEntry:
		if !tryIndex || !r.fsys.IsReadable(file) {
			break
		}
		if !opts.SkipPackageJSON {
			if pkg, err := r.manifests.LoadPackageData(file); err == nil {
				entry, ok := r.resolvePackageEntry("", pkg, targetWeb, opts, trace)
				if ok {
					return entry + postfix, true
				}
			}
		}
		if hit, ok := r.tryResolveFile(r.fsys.Join(file, "index"), postfix, opts, false, targetWeb, trace); ok {
			return hit, true
		}
	}

	if opts.IsFromTsImporter {
		ext := extOf(file)
		if fallbacks, ok := tsExtensionFallbacks[ext]; ok {
			base := strings.TrimSuffix(file, ext)
			for _, tsExt := range fallbacks {
				if hit, ok := r.tryResolveFile(base+tsExt, postfix, opts, false, targetWeb, trace); ok {
					return hit, true
				}
			}
		}
		return "", false
	}

	if opts.TryPrefix != "" {
		dir := r.fsys.Dir(file)
		base := r.fsys.Base(file)
		prefixed := r.fsys.Join(dir, opts.TryPrefix+base)
		return r.tryResolveFile(prefixed, postfix, opts, tryIndex, targetWeb, trace)
	}

	return "", false
}
