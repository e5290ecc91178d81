package sftpmount

import "time"

// LinkAttrs is what the symlink-attribute introspector (spec.md 6) returns:
// the attributes of a symlink itself, never its target.
type LinkAttrs struct {
	Size  uint64
	UID   int
	GID   int
	Perm  uint32 // low 9 rwx bits of the link's own mode
	ATime time.Time
	MTime time.Time
}

// Platform is the chown/symlink/link/utime/lstat-attrs collaborator spec.md
// 6 calls out as external to the core: a thin seam over raw host syscalls
// that path confinement and identity mapping never touch directly. The core
// depends on this interface, never on package os/syscall, so tests can
// supply a double instead of mutating a real filesystem (design note,
// spec.md 9: "re-architect as an interface value passed into the server at
// construction").
type Platform interface {
	Chown(path string, uid, gid int) error
	Symlink(oldname, newname string, isDir bool) error
	Link(oldname, newname string) error
	Utime(path string, atime, mtime time.Time) error
	Readlink(path string) (string, error)
	LstatAttrs(path string) (LinkAttrs, error)
}
