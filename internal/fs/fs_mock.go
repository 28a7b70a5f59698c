package fs

import (
	"path"
	"strings"
	"syscall"
)

// mockFS is an in-memory filesystem used by tests to build small package
// trees without touching the real disk. It does not support symlinks: tests
// that need symlink behavior should exercise realFS directly against a
// temp directory.
type mockFS struct {
	dirs  map[string][]string
	files map[string]string
}

func NewMockFS(files map[string]string) FS {
	dirs := make(map[string][]string)
	flat := make(map[string]string, len(files))

	for k, v := range files {
		flat[k] = v
		child := k
		for {
			parent := path.Dir(child)
			base := path.Base(child)
			if !contains(dirs[parent], base) {
				dirs[parent] = append(dirs[parent], base)
			}
			if parent == child || parent == "/" && child == "/" {
				break
			}
			child = parent
			if child == "/" || child == "." {
				break
			}
		}
	}

	return &mockFS{dirs: dirs, files: flat}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (m *mockFS) ReadFile(p string) (string, error) {
	if contents, ok := m.files[p]; ok {
		return contents, nil
	}
	return "", syscall.ENOENT
}

func (m *mockFS) ReadDir(p string) ([]string, error) {
	if names, ok := m.dirs[p]; ok {
		return names, nil
	}
	return nil, syscall.ENOENT
}

func (m *mockFS) Kind(dir, base string) (string, EntryKind) {
	full := path.Join(dir, base)
	if _, ok := m.files[full]; ok {
		return "", FileEntry
	}
	if _, ok := m.dirs[full]; ok {
		return "", DirEntry
	}
	return "", MissingEntry
}

func (m *mockFS) IsReadable(p string) bool {
	if _, ok := m.files[p]; ok {
		return true
	}
	_, ok := m.dirs[p]
	return ok
}

func (m *mockFS) EvalSymlinks(p string) (string, bool) {
	return path.Clean(p), m.IsReadable(path.Clean(p))
}

func (m *mockFS) IsAbs(p string) bool { return path.IsAbs(p) }

func (m *mockFS) Abs(p string) (string, bool) {
	return path.Clean(path.Join("/", p)), true
}

func (m *mockFS) Dir(p string) string  { return path.Dir(p) }
func (m *mockFS) Base(p string) string { return path.Base(p) }
func (m *mockFS) Ext(p string) string  { return path.Ext(p) }

func (m *mockFS) Join(parts ...string) string {
	return path.Clean(path.Join(parts...))
}

func (m *mockFS) Cwd() string { return "/" }

func splitOnSlash(p string) (string, string) {
	if slash := strings.IndexByte(p, '/'); slash != -1 {
		return p[:slash], p[slash+1:]
	}
	return p, ""
}

func (m *mockFS) Rel(base, target string) (string, bool) {
	base = path.Clean(base)
	target = path.Clean(target)

	if base == "" || base == "." {
		return target, true
	}
	if base == target {
		return ".", true
	}

	for {
		bHead, bTail := splitOnSlash(base)
		tHead, tTail := splitOnSlash(target)
		if bHead != tHead {
			break
		}
		base = bTail
		target = tTail
	}

	if base == "" {
		return target, true
	}

	commonParent := strings.Repeat("../", strings.Count(base, "/")+1)
	if target == "" {
		return commonParent[:len(commonParent)-1], true
	}
	return commonParent + target, true
}
