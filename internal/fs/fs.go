// Package fs is the filesystem abstraction used by the resolver instead of
// calling the "os" package directly. This lets tests build an in-memory tree
// instead of touching the real disk, and keeps every syscall the resolver
// makes in one place.
package fs

import "os"

// EntryKind classifies a directory entry without requiring a second syscall
// once it has been determined.
type EntryKind uint8

const (
	MissingEntry EntryKind = iota
	FileEntry
	DirEntry
)

// FS is everything the resolver needs from a filesystem. Paths in and out
// are always "/"-separated; platform-specific separators are a concern of
// the real implementation only.
type FS interface {
	// ReadFile returns the full contents of a regular file.
	ReadFile(path string) (contents string, err error)

	// ReadDir lists the base names of a directory's entries. Returns
	// syscall.ENOENT itself (not wrapped) if the directory does not exist.
	ReadDir(path string) (names []string, err error)

	// Kind stats dir/base without following the final symlink component,
	// then resolves it if it is one. It never returns an error: a path that
	// can't be stat'd is just MissingEntry.
	Kind(dir, base string) (symlink string, kind EntryKind)

	// IsReadable reports whether path can be opened, without following a
	// trailing symlink into a location that might hang (e.g. an
	// unreadable directory). Used so the probe can skip entries it has no
	// permission to traverse instead of erroring out.
	IsReadable(path string) bool

	// EvalSymlinks resolves every symlink component in path and returns the
	// real, absolute path. ok is false if any component is missing.
	EvalSymlinks(path string) (real string, ok bool)

	IsAbs(path string) bool
	Abs(path string) (string, bool)
	Dir(path string) string
	Base(path string) string
	Ext(path string) string
	Join(parts ...string) string
	Rel(base, target string) (string, bool)
	Cwd() string
}

// DifferentCase describes a directory entry that matched a lookup only
// after a case-insensitive comparison — useful for warning about portability
// bugs on case-insensitive filesystems, never used to change resolution. No
// FS method in this package returns one.
type DifferentCase struct {
	Dir    string
	Query  string
	Actual string
}

// modeIsReadable reports whether an lstat mode can be checked for
// readability as-is, i.e. it is not a symlink; realFS.IsReadable stats the
// link target when it returns false.
func modeIsReadable(mode os.FileMode) bool {
	return mode&os.ModeSymlink == 0
}
