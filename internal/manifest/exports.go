package manifest

import (
	"net/url"
	"path"
	"sort"
	"strings"
)

// Status mirrors Node's ESM resolver algorithm's distinct failure modes
// (ported from the teacher's peStatus), so callers can tell "package
// path not exported" from "invalid package target" and report the right
// diagnostic.
type Status uint8

const (
	StatusUndefined Status = iota
	StatusNull
	StatusExact
	StatusInexact // may still need a CommonJS-style extension/index probe

	StatusInvalidModuleSpecifier
	StatusInvalidPackageConfiguration
	StatusInvalidPackageTarget
	StatusPackagePathNotExported
	StatusModuleNotFound
	StatusUnsupportedDirectoryImport
)

type expansionEntry struct {
	key   string
	value Value
}

type byExpansionKeyLengthDesc []expansionEntry

func (a byExpansionKeyLengthDesc) Len() int      { return len(a) }
func (a byExpansionKeyLengthDesc) Swap(i, j int) { a[i], a[j] = a[j], a[i] }
func (a byExpansionKeyLengthDesc) Less(i, j int) bool {
	return len(a[i].key) > len(a[j].key)
}

func expansionKeys(v Value) []expansionEntry {
	if !v.IsObject() {
		return nil
	}
	var keys []expansionEntry
	for _, p := range v.Obj {
		if strings.HasSuffix(p.Key, "/") || strings.HasSuffix(p.Key, "*") {
			keys = append(keys, expansionEntry{key: p.Key, value: p.Value})
		}
	}
	sort.Stable(byExpansionKeyLengthDesc(keys))
	return keys
}

// ResolveExportsWithPostConditions runs PackageExportsResolve and then
// applies the two post-conditions Node's algorithm requires: reject
// percent-encoded path separators, and reject a result ending in "/".
func ResolveExportsWithPostConditions(packageDir, subpath string, exports Value, conditions map[string]bool) (string, Status) {
	resolved, status := PackageExportsResolve(packageDir, subpath, exports, conditions)
	if status != StatusExact && status != StatusInexact {
		return resolved, status
	}
	unescaped, err := url.PathUnescape(resolved)
	if err != nil {
		return resolved, StatusInvalidModuleSpecifier
	}
	if strings.Contains(resolved, "%2f") || strings.Contains(resolved, "%2F") ||
		strings.Contains(resolved, "%5c") || strings.Contains(resolved, "%5C") {
		return resolved, StatusInvalidModuleSpecifier
	}
	if strings.HasSuffix(unescaped, "/") || strings.HasSuffix(unescaped, "\\") {
		return resolved, StatusUnsupportedDirectoryImport
	}
	return unescaped, status
}

// PackageExportsResolve implements the PACKAGE_EXPORTS_RESOLVE algorithm
// (spec §4.4/§4.5), ported from the teacher's esmPackageExportsResolve.
func PackageExportsResolve(packageDir, subpath string, exports Value, conditions map[string]bool) (string, Status) {
	if exports.Kind == KindInvalid {
		return "", StatusInvalidPackageConfiguration
	}
	if subpath == "." {
		mainExport := Value{Kind: KindNull}
		if exports.Kind == KindString || exports.Kind == KindArray || (exports.IsObject() && !exports.KeysStartWithDot()) {
			mainExport = exports
		} else if exports.IsObject() {
			if dot, ok := exports.Get("."); ok {
				mainExport = dot
			}
		}
		if mainExport.Kind != KindNull {
			resolved, status := packageTargetResolve(packageDir, mainExport, "", false, conditions)
			if status != StatusNull && status != StatusUndefined {
				return resolved, status
			}
		}
	} else if exports.IsObject() && exports.KeysStartWithDot() {
		resolved, status := packageImportsExportsResolve(subpath, exports, packageDir, conditions)
		if status != StatusNull && status != StatusUndefined {
			return resolved, status
		}
	}
	return "", StatusPackagePathNotExported
}

// ResolveImports implements PACKAGE_IMPORTS_RESOLVE for a package's
// "imports" field, the "#subpath" self-reference map (spec §4.4's import
// condition, GLOSSARY "Subpath imports").
func ResolveImports(packageDir, specifier string, imports Value, conditions map[string]bool) (string, Status) {
	if specifier == "#" || (len(specifier) >= 2 && specifier[:2] == "#/") {
		return "", StatusInvalidModuleSpecifier
	}
	return packageImportsExportsResolve(specifier, imports, packageDir, conditions)
}

func packageImportsExportsResolve(matchKey string, matchObj Value, packageDir string, conditions map[string]bool) (string, Status) {
	if !strings.HasSuffix(matchKey, "*") {
		if target, ok := matchObj.Get(matchKey); ok {
			return packageTargetResolve(packageDir, target, "", false, conditions)
		}
	}

	for _, expansion := range expansionKeys(matchObj) {
		if strings.HasSuffix(expansion.key, "*") {
			substr := expansion.key[:len(expansion.key)-1]
			if strings.HasPrefix(matchKey, substr) && matchKey != substr {
				subpath := matchKey[len(expansion.key)-1:]
				return packageTargetResolve(packageDir, expansion.value, subpath, true, conditions)
			}
			continue
		}
		if strings.HasPrefix(matchKey, expansion.key) {
			subpath := matchKey[len(expansion.key):]
			result, status := packageTargetResolve(packageDir, expansion.value, subpath, false, conditions)
			if status == StatusExact {
				status = StatusInexact
			}
			return result, status
		}
	}

	return "", StatusNull
}

// hasInvalidSegment rejects ".", ".." or "node_modules" path segments
// after the first, the same guard Node applies to both exports targets
// and the requested subpath.
func hasInvalidSegment(p string) bool {
	slash := strings.IndexAny(p, "/\\")
	if slash == -1 {
		return false
	}
	p = p[slash+1:]
	for p != "" {
		slash := strings.IndexAny(p, "/\\")
		segment := p
		if slash != -1 {
			segment = p[:slash]
			p = p[slash+1:]
		} else {
			p = ""
		}
		if segment == "." || segment == ".." || segment == "node_modules" {
			return true
		}
	}
	return false
}

func packageTargetResolve(packageDir string, target Value, subpath string, pattern bool, conditions map[string]bool) (string, Status) {
	switch target.Kind {
	case KindString:
		if !pattern && subpath != "" && !strings.HasSuffix(target.Str, "/") {
			return target.Str, StatusInvalidModuleSpecifier
		}
		if !strings.HasPrefix(target.Str, "./") {
			return target.Str, StatusInvalidPackageTarget
		}
		if hasInvalidSegment(target.Str) {
			return target.Str, StatusInvalidPackageTarget
		}
		resolvedTarget := path.Join(packageDir, target.Str)
		if hasInvalidSegment(subpath) {
			return subpath, StatusInvalidModuleSpecifier
		}
		if pattern {
			return strings.ReplaceAll(resolvedTarget, "*", subpath), StatusExact
		}
		return path.Join(resolvedTarget, subpath), StatusExact

	case KindObject:
		for _, p := range target.Obj {
			if p.Key == "default" || conditions[p.Key] {
				resolved, status := packageTargetResolve(packageDir, p.Value, subpath, pattern, conditions)
				if status == StatusUndefined {
					continue
				}
				return resolved, status
			}
		}
		return "", StatusUndefined

	case KindArray:
		if len(target.Arr) == 0 {
			return "", StatusNull
		}
		lastStatus := StatusUndefined
		for _, item := range target.Arr {
			resolved, status := packageTargetResolve(packageDir, item, subpath, pattern, conditions)
			if status == StatusInvalidPackageTarget || status == StatusNull {
				lastStatus = status
				continue
			}
			if status == StatusUndefined {
				continue
			}
			return resolved, status
		}
		return "", lastStatus

	case KindNull:
		return "", StatusNull
	}

	return "", StatusInvalidPackageTarget
}

// ParsePackageName splits a bare specifier into its package name and the
// "."-rooted subpath exports/imports expect, per spec §4.7's
// esmParsePackageName analog.
func ParsePackageName(specifier string) (name string, subpath string, ok bool) {
	if specifier == "" {
		return
	}
	slash := strings.IndexByte(specifier, '/')
	if !strings.HasPrefix(specifier, "@") {
		if slash == -1 {
			slash = len(specifier)
		}
		name = specifier[:slash]
	} else {
		if slash == -1 {
			return
		}
		rest := specifier[slash+1:]
		slash2 := strings.IndexByte(rest, '/')
		if slash2 == -1 {
			slash2 = len(rest)
		}
		name = specifier[:slash+1+slash2]
	}
	if strings.HasPrefix(name, ".") || strings.ContainsAny(name, "\\%") {
		name = ""
		return
	}
	subpath = "." + specifier[len(name):]
	ok = true
	return
}
