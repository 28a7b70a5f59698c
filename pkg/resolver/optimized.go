package resolver

import (
	"context"
	"path"
	"strings"
)

// tryOptimizedResolve implements spec §4.8: consult the optimizer's
// already-bundled dependency list before falling through to a full
// node_modules resolution. This is the resolver's one true suspension
// point (spec §5): it awaits the optimizer's scan completion.
func (r *Resolver) tryOptimizedResolve(ctx context.Context, optimizer DepsOptimizer, ssr bool, id string, importer string) (string, bool) {
	if err := optimizer.ScanDone(ctx); err != nil {
		return "", false
	}

	meta := optimizer.Metadata(ssr)
	if meta.DepInfoList == nil {
		return "", false
	}

	if info, ok := meta.DepInfoList[id]; ok {
		return optimizer.GetOptimizedDepID(info), true
	}

	for depID, info := range meta.DepInfoList {
		if !strings.HasSuffix(depID, id) {
			continue
		}
		resolvedSrc, ok := resolveFrom(id, dirOf(importer))
		if !ok {
			continue
		}
		if info.Src == resolvedSrc {
			return optimizer.GetOptimizedDepID(info), true
		}
	}
	return "", false
}

// resolveFrom is a best-effort node-style "require.resolve" used only to
// disambiguate a nested optimized dependency from its parent's own copy.
// Failure is swallowed by the caller (spec §7, "Optimizer resolveFrom
// failure").
func resolveFrom(id string, fromDir string) (string, bool) {
	if fromDir == "" {
		return "", false
	}
	return path.Join(fromDir, "node_modules", id), true
}

func dirOf(p string) string {
	if p == "" {
		return ""
	}
	return path.Dir(p)
}
