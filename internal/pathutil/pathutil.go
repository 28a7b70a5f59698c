// Package pathutil holds the small, allocation-conscious string surgery the
// resolver performs thousands of times per build: splitting a specifier's
// query/hash suffix, normalizing separators, and classifying a specifier's
// shape. None of it touches the filesystem.
package pathutil

import "strings"

// SplitFileAndPostfix splits "file?query#hash" into the file part and
// everything from the first "?" or "#" (inclusive), matching §4.2. The
// postfix is empty, or begins with '?' or '#'.
func SplitFileAndPostfix(path string) (file string, postfix string) {
	for i := 0; i < len(path); i++ {
		c := path[i]
		if c == '?' || c == '#' {
			return path[:i], path[i:]
		}
	}
	return path, ""
}

// ToSlash normalizes backslashes to forward slashes on every host, not
// only on Windows; kept as a named step so callers document intent (the
// resolver's on-the-wire ids are always "/"-separated per the Invariants
// in spec §3).
func ToSlash(path string) string {
	if !strings.ContainsRune(path, '\\') {
		return path
	}
	return strings.ReplaceAll(path, "\\", "/")
}

// IsPackagePath reports whether a specifier refers to a package (bare
// import) rather than a relative or absolute filesystem path.
func IsPackagePath(path string) bool {
	return !strings.HasPrefix(path, "/") &&
		!strings.HasPrefix(path, "./") &&
		!strings.HasPrefix(path, "../") &&
		path != "." && path != ".."
}

// IsRelative reports the "./" / "../" leading forms from §4.1 step 7.
func IsRelative(path string) bool {
	return strings.HasPrefix(path, "./") || strings.HasPrefix(path, "../") ||
		path == "." || path == ".."
}

// IsExternalURL reports whether a specifier carries a URL scheme, e.g.
// "https://", "node:fs". A single letter before ":" is excluded so Windows
// drive letters ("C:/foo") are never mistaken for a scheme.
func IsExternalURL(path string) bool {
	colon := strings.IndexByte(path, ':')
	if colon < 2 {
		return false
	}
	scheme := path[:colon]
	for i := 0; i < len(scheme); i++ {
		c := scheme[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && (c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return true
}

// IsBareImport reports whether a specifier begins with a letter or an
// "@scope/" prefix, i.e. it names a package rather than a path (§4.1 step
// 11 / GLOSSARY "Bare import").
func IsBareImport(path string) bool {
	if path == "" {
		return false
	}
	c := path[0]
	if c == '@' {
		return strings.Contains(path, "/")
	}
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// SplitNestedSelector splits an "A > B > C" specifier (§4.7 step 1) into
// the root chain and the final path to resolve from it.
func SplitNestedSelector(spec string) (nestedRoot string, nestedPath string) {
	idx := strings.LastIndex(spec, " > ")
	if idx == -1 {
		return "", spec
	}
	return strings.TrimSpace(spec[:idx]), strings.TrimSpace(spec[idx+3:])
}

// PossiblePackageIDs enumerates candidate package ids from a bare
// specifier by walking each "/"-separated prefix, per §4.7 step 2 and the
// worked examples in §8:
//
//	"@scope/a/b/c.js" -> ["@scope/a", "@scope/a/b"]
//	"a/b/c.js"        -> ["a", "a/b"]
//	"a.b/c"           -> ["a.b"]
func PossiblePackageIDs(nestedPath string) []string {
	parts := strings.Split(nestedPath, "/")
	if len(parts) == 0 {
		return nil
	}

	start := 1
	if strings.HasPrefix(nestedPath, "@") {
		start = 2
	}
	if start > len(parts) {
		start = len(parts)
	}

	prefix := strings.Join(parts[:start], "/")
	ids := []string{prefix}
	if hasExtension(prefix) {
		return ids
	}

	for i := start; i < len(parts); i++ {
		if hasExtension(parts[i]) {
			break
		}
		prefix = prefix + "/" + parts[i]
		ids = append(ids, prefix)
		if hasExtension(prefix) {
			break
		}
	}
	return ids
}

func hasExtension(segment string) bool {
	dot := strings.LastIndexByte(segment, '.')
	return dot > 0
}
