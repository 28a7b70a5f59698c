package resolver

import (
	"context"
	"testing"

	"github.com/jsresolve/jsresolve/internal/fs"
	"github.com/jsresolve/jsresolve/internal/logger"
)

// scriptedOptimizer is a DepsOptimizer stub whose Metadata return value is
// fixed at construction, for exercising tryOptimizedResolve directly.
type scriptedOptimizer struct {
	meta OptimizerMetadata
}

func (s *scriptedOptimizer) IsOptimizedDepURL(id string) bool   { return false }
func (s *scriptedOptimizer) IsOptimizedDepFile(path string) bool { return false }
func (s *scriptedOptimizer) Metadata(ssr bool) OptimizerMetadata { return s.meta }
func (s *scriptedOptimizer) Options() OptimizerOptions           { return OptimizerOptions{} }
func (s *scriptedOptimizer) RegisterMissingImport(ctx context.Context, originalID, resolved string, ssr bool) (DepInfo, error) {
	return DepInfo{}, nil
}
func (s *scriptedOptimizer) GetOptimizedDepID(info DepInfo) string { return info.ID }
func (s *scriptedOptimizer) ScanDone(ctx context.Context) error    { return nil }

func newResolverForOptimized() *Resolver {
	return New(fs.NewMockFS(nil), logger.NewLog(logger.LevelSilent))
}

func TestTryOptimizedResolveDirectHit(t *testing.T) {
	r := newResolverForOptimized()
	opt := &scriptedOptimizer{meta: OptimizerMetadata{
		DepInfoList: map[string]DepInfo{
			"react": {ID: "/p/node_modules/.vite/deps/react.js"},
		},
	}}

	got, ok := r.tryOptimizedResolve(context.Background(), opt, false, "react", "/p/src/app.js")
	if !ok || got != "/p/node_modules/.vite/deps/react.js" {
		t.Errorf("got (%q, %v), want the direct DepInfoList hit", got, ok)
	}
}

func TestTryOptimizedResolveNestedSuffixMatch(t *testing.T) {
	r := newResolverForOptimized()
	// "scheduler" isn't a top-level optimized dep, but it is registered
	// nested under react as react>scheduler, whose recorded Src matches
	// what a best-effort node_modules lookup from the importer would find.
	opt := &scriptedOptimizer{meta: OptimizerMetadata{
		DepInfoList: map[string]DepInfo{
			"react>scheduler": {
				ID:  "/p/node_modules/.vite/deps/scheduler.js",
				Src: "/p/src/node_modules/scheduler",
			},
		},
	}}

	got, ok := r.tryOptimizedResolve(context.Background(), opt, false, "scheduler", "/p/src/app.js")
	if !ok || got != "/p/node_modules/.vite/deps/scheduler.js" {
		t.Errorf("got (%q, %v), want the nested suffix match to resolve", got, ok)
	}
}

func TestTryOptimizedResolveNoMatch(t *testing.T) {
	r := newResolverForOptimized()
	opt := &scriptedOptimizer{meta: OptimizerMetadata{DepInfoList: map[string]DepInfo{}}}

	if _, ok := r.tryOptimizedResolve(context.Background(), opt, false, "react", "/p/src/app.js"); ok {
		t.Errorf("expected no match against an empty DepInfoList")
	}
}

func TestTryOptimizedResolveNilDepInfoList(t *testing.T) {
	r := newResolverForOptimized()
	opt := &scriptedOptimizer{meta: OptimizerMetadata{}}

	if _, ok := r.tryOptimizedResolve(context.Background(), opt, false, "react", "/p/src/app.js"); ok {
		t.Errorf("expected no match when DepInfoList is nil")
	}
}

func TestTryOptimizedResolveScanDoneError(t *testing.T) {
	r := newResolverForOptimized()
	opt := &erroringScanOptimizer{}

	if _, ok := r.tryOptimizedResolve(context.Background(), opt, false, "react", "/p/src/app.js"); ok {
		t.Errorf("expected no match when ScanDone returns an error (e.g. a cancelled context)")
	}
}

type erroringScanOptimizer struct{ scriptedOptimizer }

func (e *erroringScanOptimizer) ScanDone(ctx context.Context) error { return context.Canceled }
