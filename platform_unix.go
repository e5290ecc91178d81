//go:build !windows
// +build !windows

package sftpmount

import (
	"os"
	"time"
)

// unixPlatform implements Platform directly against the host's chown(2),
// symlink(2), link(2), utimes(2) and lstat(2). This is the only concrete
// Platform this repository ships: spec.md 1 scopes chown/symlink/link/utime
// semantics to a POSIX ownership model, and the teacher's own Windows/Plan9
// ports were dropped for the same reason (DESIGN.md).
type unixPlatform struct{}

// NewPlatform returns the production Platform backing the real host
// filesystem.
func NewPlatform() Platform {
	return unixPlatform{}
}

func (unixPlatform) Chown(path string, uid, gid int) error {
	return os.Chown(path, uid, gid)
}

// Symlink ignores isDir: that distinction only matters on Windows, where a
// symlink's directory-vs-file bit must be set at creation time. spec.md 4.10
// still passes it through so a Windows Platform implementation (not shipped
// here) would have somewhere to read it from.
func (unixPlatform) Symlink(oldname, newname string, _ bool) error {
	return os.Symlink(oldname, newname)
}

func (unixPlatform) Link(oldname, newname string) error {
	return os.Link(oldname, newname)
}

func (unixPlatform) Utime(path string, atime, mtime time.Time) error {
	return os.Chtimes(path, atime, mtime)
}

func (unixPlatform) Readlink(path string) (string, error) {
	return os.Readlink(path)
}

func (unixPlatform) LstatAttrs(path string) (LinkAttrs, error) {
	fi, err := os.Lstat(path)
	if err != nil {
		return LinkAttrs{}, err
	}

	uid, gid := hostOwner(fi)

	// Go's os.FileInfo never exposes atime portably across the unix
	// variants this file's build tag covers (the syscall.Stat_t field name
	// differs, e.g. Atim vs Atimespec); mtime is the closest portable
	// substitute and is what this link's own attrs report for both fields.
	return LinkAttrs{
		Size:  uint64(fi.Size()),
		UID:   uid,
		GID:   gid,
		Perm:  uint32(fi.Mode().Perm()),
		ATime: fi.ModTime(),
		MTime: fi.ModTime(),
	}, nil
}
