// Package optimizer is a reference implementation of the dependency
// pre-bundler the resolver consults but does not own (spec §6, "Optimizer
// interface consumed"): it tracks which node_modules packages have been
// pre-bundled into a single versioned artifact, hands the resolver a
// rewritten id for those, and lets a specifier opt out via an exclude
// glob list.
package optimizer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"
	segjson "github.com/segmentio/encoding/json"
)

// DepInfo describes one pre-bundled dependency.
type DepInfo struct {
	ID           string `json:"id"`
	File         string `json:"file"`
	Src          string `json:"src"`
	NeedsInterop bool   `json:"needsInterop"`
}

// Metadata is the snapshot handed back by Metadata(ssr): the current
// content-derived hash and the known dependency set.
type Metadata struct {
	BrowserHash string             `json:"browserHash"`
	DepInfoList map[string]DepInfo `json:"depInfoList"`
}

// Options configures exclusion. Exclude entries are doublestar glob
// patterns matched against a bare package id or nested-dep id
// ("pkg/nested").
type Options struct {
	Exclude []string
}

// DepsOptimizer is the collaborator surface the resolver's tryNodeResolve
// and tryOptimizedResolve consult (spec §4.7, §4.8, §6). Implementations
// must be safe for concurrent use by multiple in-flight resolutions.
type DepsOptimizer interface {
	IsOptimizedDepURL(id string) bool
	IsOptimizedDepFile(path string) bool
	Metadata(ssr bool) Metadata
	Options() Options
	RegisterMissingImport(ctx context.Context, originalID, resolved string, ssr bool) (DepInfo, error)
	GetOptimizedDepID(info DepInfo) string
	ScanDone(ctx context.Context) error
}

// Store is an in-memory DepsOptimizer with an on-disk snapshot, grounded
// on the teacher's own dirInfo caching idiom: read-through the snapshot
// once at startup, then serve purely from memory and flush back on
// registration.
type Store struct {
	cacheDir string
	depsDir  string
	opts     Options

	mu          sync.Mutex
	browserHash string
	deps        map[string]DepInfo // keyed by original bare id, e.g. "lodash" or "lodash/fp"
	scanDone    chan struct{}
	scanOnce    sync.Once
}

// NewStore creates a Store rooted at cacheDir (typically
// "<root>/node_modules/.cache/jsresolve"), loading any existing snapshot.
// seed contributes to the initial browserHash so that a changed lockfile
// or config invalidates every previously optimized id.
func NewStore(cacheDir string, opts Options, seed string) (*Store, error) {
	s := &Store{
		cacheDir: cacheDir,
		depsDir:  filepath.Join(cacheDir, "deps"),
		opts:     opts,
		deps:     make(map[string]DepInfo),
		scanDone: make(chan struct{}),
	}
	s.browserHash = fmt.Sprintf("%08x", xxhash.Sum64String(seed))

	if err := s.loadSnapshot(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load optimizer snapshot: %w", err)
	}
	return s, nil
}

type snapshot struct {
	BrowserHash string             `json:"browserHash"`
	Deps        map[string]DepInfo `json:"deps"`
}

func (s *Store) snapshotPath() string {
	return filepath.Join(s.cacheDir, "_metadata.json")
}

func (s *Store) loadSnapshot() error {
	raw, err := os.ReadFile(s.snapshotPath())
	if err != nil {
		return err
	}
	var snap snapshot
	// The snapshot is our own metadata, not anything order-sensitive like
	// package.json, so the fast encoder (rather than internal/manifest's
	// order-preserving parser) is the right tool here.
	if err := segjson.Unmarshal(raw, &snap); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.browserHash = snap.BrowserHash
	if snap.Deps != nil {
		s.deps = snap.Deps
	}
	return nil
}

func (s *Store) flushSnapshot() error {
	s.mu.Lock()
	snap := snapshot{BrowserHash: s.browserHash, Deps: s.deps}
	s.mu.Unlock()

	raw, err := segjson.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.MkdirAll(s.cacheDir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	return os.WriteFile(s.snapshotPath(), raw, 0o644)
}

// IsOptimizedDepURL reports whether id is a dev-server URL already
// pointing into the optimized deps cache.
func (s *Store) IsOptimizedDepURL(id string) bool {
	return strings.Contains(id, "/.cache/jsresolve/deps/") || strings.HasPrefix(id, "/node_modules/.vite/deps/")
}

// IsOptimizedDepFile reports whether path is a file inside the optimized
// deps directory on disk.
func (s *Store) IsOptimizedDepFile(path string) bool {
	return strings.HasPrefix(filepath.Clean(path), filepath.Clean(s.depsDir)+string(filepath.Separator))
}

func (s *Store) Metadata(ssr bool) Metadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]DepInfo, len(s.deps))
	for k, v := range s.deps {
		out[k] = v
	}
	return Metadata{BrowserHash: s.browserHash, DepInfoList: out}
}

func (s *Store) Options() Options { return s.opts }

// Excludes reports whether pkgID (or pkgID+"/"+nestedPath) matches an
// exclude glob, per spec §4.7's post-processing branch.
func (s *Store) Excludes(pkgID, nestedPath string) bool {
	candidates := []string{pkgID}
	if nestedPath != "" {
		candidates = append(candidates, pkgID+"/"+nestedPath)
	}
	for _, pattern := range s.opts.Exclude {
		for _, candidate := range candidates {
			if ok, err := doublestar.Match(pattern, candidate); err == nil && ok {
				return true
			}
		}
	}
	return false
}

// RegisterMissingImport records a dependency discovered outside the
// initial scan (a lazily-imported route, for example) and assigns it an
// optimized id under depsDir.
func (s *Store) RegisterMissingImport(ctx context.Context, originalID, resolved string, ssr bool) (DepInfo, error) {
	s.mu.Lock()
	if existing, ok := s.deps[originalID]; ok {
		s.mu.Unlock()
		return existing, nil
	}
	file := filepath.Join(s.depsDir, sanitizeDepFileName(originalID)+".js")
	info := DepInfo{
		ID:   originalID,
		File: file,
		Src:  resolved,
	}
	s.deps[originalID] = info
	s.mu.Unlock()

	if err := s.flushSnapshot(); err != nil {
		return DepInfo{}, err
	}
	return info, nil
}

func sanitizeDepFileName(id string) string {
	return strings.NewReplacer("/", "_", "@", "", "\\", "_").Replace(id)
}

// GetOptimizedDepID returns the versioned URL the resolver should hand
// back for a pre-bundled dependency.
func (s *Store) GetOptimizedDepID(info DepInfo) string {
	s.mu.Lock()
	hash := s.browserHash
	s.mu.Unlock()
	return info.File + "?v=" + hash
}

// MarkScanDone unblocks ScanDone; call once the initial dependency scan
// completes.
func (s *Store) MarkScanDone() {
	s.scanOnce.Do(func() { close(s.scanDone) })
}

// ScanDone blocks until the initial scan completes or ctx is canceled,
// matching the single await point in the orchestrator's tryOptimizedResolve.
func (s *Store) ScanDone(ctx context.Context) error {
	select {
	case <-s.scanDone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
