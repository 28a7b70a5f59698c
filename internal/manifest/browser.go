package manifest

import "strings"

// BrowserMapResult is what MapWithBrowserField found for a path.
type BrowserMapResult struct {
	Remapped string // the replacement specifier, valid when Matched && !IsFalse
	IsFalse  bool   // "browser": {"./foo": false} — the module is a no-op stub
	Matched  bool
}

// MapWithBrowserField implements the "browser" field remap from spec §4.6.
// It walks entries in source order and, for each key, tries three forms
// against path: exact equality, equality after stripping a trailing
// ".js", and equality after stripping a trailing "/index.js". The first
// entry whose key matches any of the three forms wins — so when two
// differently-spelled keys both match path, declaration order decides,
// not which form happened to match.
func MapWithBrowserField(entries []Pair, path string) BrowserMapResult {
	for _, entry := range entries {
		if keyMatchesPath(entry.Key, path) {
			return mapEntryResult(entry.Value)
		}
	}
	return BrowserMapResult{}
}

// keyMatchesPath runs the three-way comparison spec §4.6 describes:
// exact, ".js"-stripped, and "/index.js"-stripped forms of key against
// the fixed path.
func keyMatchesPath(key, path string) bool {
	if key == path {
		return true
	}
	if stripped := strings.TrimSuffix(key, ".js"); stripped != key && stripped == path {
		return true
	}
	if stripped := strings.TrimSuffix(key, "/index.js"); stripped != key && stripped == path {
		return true
	}
	return false
}

func mapEntryResult(v Value) BrowserMapResult {
	switch v.Kind {
	case KindBool:
		if !v.Bool {
			return BrowserMapResult{IsFalse: true, Matched: true}
		}
		return BrowserMapResult{}
	case KindString:
		return BrowserMapResult{Remapped: v.Str, Matched: true}
	default:
		return BrowserMapResult{}
	}
}
