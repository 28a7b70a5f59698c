package resolver

import "context"

// SpecifierKind names the specifier shapes the dispatch orchestrator
// distinguishes. resolveID classifies a specifier with direct string
// checks at each step; it does not compute a SpecifierKind value.
type SpecifierKind uint8

const (
	KindBrowserExternal SpecifierKind = iota
	KindCommonJsProxy
	KindOptimizedURL
	KindFsEscape
	KindRootURL
	KindRelative
	KindAbsolute
	KindExternalURL
	KindDataURL
	KindBare
	KindBuiltin
	KindUnresolvable
)

// SSRTarget distinguishes the two environments server-side rendering can
// target, referenced by the targetWeb invariant in spec §3.
type SSRTarget uint8

const (
	SSRNode SSRTarget = iota
	SSRWebWorker
)

// Options is the configuration struct spec §9 asks for in place of a
// proliferation of boolean parameters (spec §3, "ResolveOptions").
type Options struct {
	Root             string
	MainFields       []string
	Conditions       []string
	Extensions       []string
	Dedupe           []string
	PreserveSymlinks bool
	AsSrc            bool
	TryPrefix        string
	SkipPackageJSON  bool
	IsRequire bool
	// IsFromTsImporter is recomputed by the dispatch orchestrator from
	// the importer's own extension before every resolution (spec §4.1
	// step 3) and ImporterMetaLang; any caller-supplied value is
	// overwritten.
	IsFromTsImporter bool
	// ImporterMetaLang is the plugin host's module-language hint for the
	// importer (e.g. "ts", "tsx") — the orchestrator's fallback when the
	// importer's own extension doesn't say.
	ImporterMetaLang string
	TryEsmOnly       bool
	Scan             bool

	SSR           bool
	SSRTarget     SSRTarget
	SSRNoExternal bool

	PreferRelative bool
	Production     bool

	GetDepsOptimizer func(ssr bool) DepsOptimizer
	ShouldExternalize func(id string, importer string) (bool, error)
}

// DepsOptimizer is the subset of internal/optimizer.DepsOptimizer the
// resolver depends on; declared locally so pkg/resolver has no import
// dependency on the optimizer's storage choices (spec §6).
type DepsOptimizer interface {
	IsOptimizedDepURL(id string) bool
	IsOptimizedDepFile(path string) bool
	Metadata(ssr bool) OptimizerMetadata
	Options() OptimizerOptions
	RegisterMissingImport(ctx context.Context, originalID, resolved string, ssr bool) (DepInfo, error)
	GetOptimizedDepID(info DepInfo) string
	ScanDone(ctx context.Context) error
}

type DepInfo struct {
	ID           string
	File         string
	Src          string
	NeedsInterop bool
}

type OptimizerMetadata struct {
	BrowserHash string
	DepInfoList map[string]DepInfo
}

type OptimizerOptions struct {
	Exclude []string
}

func defaultMainFields() []string {
	return []string{"module", "jsnext:main", "jsnext"}
}

func defaultExtensions() []string {
	return []string{".mjs", ".js", ".mts", ".ts", ".jsx", ".tsx", ".json"}
}

// WithDefaults returns a copy of o with zero-valued slice fields filled
// in from the documented defaults (spec §3).
func (o Options) WithDefaults() Options {
	if o.MainFields == nil {
		o.MainFields = defaultMainFields()
	}
	if o.Extensions == nil {
		o.Extensions = defaultExtensions()
	}
	return o
}

// targetWeb implements the invariant from spec §3: targetWeb = !ssr ||
// ssrTarget === "webworker".
func (o Options) targetWeb() bool {
	return !o.SSR || o.SSRTarget == SSRWebWorker
}

// buildConditions merges the caller's configured conditions with the
// built-ins the resolver always injects (spec §4.4 step 1 / §6
// "Conditions vocabulary").
func (o Options) buildConditions(targetWeb bool) map[string]bool {
	conditions := map[string]bool{
		"default": true,
		"browser": targetWeb,
		"require": o.IsRequire,
	}
	if o.Production {
		conditions["production"] = true
	} else {
		conditions["development"] = true
	}
	if !o.IsRequire {
		conditions["module"] = true
		conditions["import"] = true
	}
	for _, c := range o.Conditions {
		conditions[c] = true
	}
	return conditions
}
