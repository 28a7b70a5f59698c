// Package resolver implements the module specifier resolution algorithm:
// given an import specifier and an optional importing file, it decides
// the concrete on-disk file that satisfies it, declares the specifier
// external, or rewrites it to a pre-bundled optimized artifact.
package resolver

import (
	"context"
	"fmt"
	"path"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/jsresolve/jsresolve/internal/fs"
	"github.com/jsresolve/jsresolve/internal/logger"
	"github.com/jsresolve/jsresolve/internal/manifest"
)

// Resolver owns the caches that must survive across resolutions within
// one build/server lifetime: the manifest loader's package.json cache,
// the idToPkgMap (spec §3), and a singleflight group that collapses
// concurrent identical top-level resolutions.
type Resolver struct {
	fsys fs.FS
	log  logger.Log

	manifests *manifest.Loader

	idToPkgMu sync.Mutex
	idToPkg   map[string]*manifest.PackageData

	group singleflight.Group
}

func New(fsys fs.FS, log logger.Log) *Resolver {
	return &Resolver{
		fsys:      fsys,
		log:       log,
		manifests: manifest.NewLoader(fsys, log),
		idToPkg:   make(map[string]*manifest.PackageData),
	}
}

func (r *Resolver) rememberPackage(resolvedFile string, pkg *manifest.PackageData) {
	r.idToPkgMu.Lock()
	defer r.idToPkgMu.Unlock()
	r.idToPkg[resolvedFile] = pkg
}

func (r *Resolver) packageForFile(file string) (*manifest.PackageData, bool) {
	r.idToPkgMu.Lock()
	defer r.idToPkgMu.Unlock()
	pkg, ok := r.idToPkg[file]
	return pkg, ok
}

func extOf(p string) string {
	return path.Ext(p)
}

// Resolve is the dispatch orchestrator's public entry point (spec §4.1).
// importer may be "". ctx governs only the single suspension point,
// awaiting the optimizer's scan in tryOptimizedResolve (spec §5).
func (r *Resolver) Resolve(ctx context.Context, specifier string, importer string, opts Options) (*Result, error) {
	opts = opts.WithDefaults()
	trace := logger.NewTrace(r.log, "resolve "+specifier)
	defer trace.Flush(r.log)

	key := specifier + "\x00" + importer + "\x00" + fmt.Sprintf("%+v", opts)
	result, err, _ := r.group.Do(key, func() (interface{}, error) {
		return r.resolveID(ctx, specifier, importer, opts, trace)
	})
	if err != nil {
		return nil, err
	}
	return result.(*Result), nil
}

// ResolveMany resolves a batch of specifiers sharing one importer and
// option set, additive to the core dispatch algorithm (a dev server and
// a static analysis pass both want to resolve a file's entire import
// list without repeating the per-call setup cost).
func (r *Resolver) ResolveMany(ctx context.Context, specifiers []string, importer string, opts Options) ([]*Result, error) {
	results := make([]*Result, len(specifiers))
	for i, spec := range specifiers {
		res, err := r.Resolve(ctx, spec, importer, opts)
		if err != nil {
			return results, err
		}
		results[i] = res
	}
	return results, nil
}
