package sftpmount

import (
	"os"
	"strconv"
	"sync"

	"github.com/spf13/afero"
)

// fileHandle is one entry of the open-file table (spec.md 3): a seekable
// file plus the path it was opened from, so FSETSTAT can apply its
// path-based changes (chmod, utime, chown) to the open file.
type fileHandle struct {
	path string
	file afero.File
}

// dirHandle is one entry of the open-directory table: the mutable,
// order-preserving snapshot READDIR consumes a prefix of at a time
// (spec.md 3, "snapshot semantics").
type dirHandle struct {
	path    string
	entries []os.FileInfo
}

// handleTable is the dispatcher's sole piece of session state beyond the
// transport and helper process: the open-file and open-directory tables of
// spec.md 3. Per spec.md 5 it is only ever touched from the single
// server-loop goroutine, so the mutex here is a cheap belt-and-braces
// measure rather than a concurrency requirement - it costs nothing on the
// single-threaded path and protects the one corner (recovery re-entering
// the loop on a fresh goroutine) where that invariant could otherwise be
// violated by a careless future change.
type handleTable struct {
	mu   sync.Mutex
	next uint64

	files map[string]*fileHandle
	dirs  map[string]*dirHandle
}

func newHandleTable() *handleTable {
	return &handleTable{
		files: make(map[string]*fileHandle),
		dirs:  make(map[string]*dirHandle),
	}
}

// newHandle mints a fresh opaque handle token. Design note (spec.md 9): the
// teacher's C++ original used a raw pointer address as handle identity; we
// use a monotonic counter instead so after-close reuse is deterministically
// detectable and handle stability never depends on GC behavior.
func (t *handleTable) newHandle() string {
	t.next++
	return strconv.FormatUint(t.next, 10)
}

func (t *handleTable) putFile(path string, f afero.File) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	h := t.newHandle()
	t.files[h] = &fileHandle{path: path, file: f}
	return h
}

func (t *handleTable) putDir(path string, entries []os.FileInfo) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	h := t.newHandle()
	t.dirs[h] = &dirHandle{path: path, entries: entries}
	return h
}

func (t *handleTable) getFile(h string) (*fileHandle, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fh, ok := t.files[h]
	return fh, ok
}

func (t *handleTable) getDir(h string) (*dirHandle, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	dh, ok := t.dirs[h]
	return dh, ok
}

// closeHandle removes h from whichever table holds it, closing the
// underlying file if it was a file handle. It reports whether h was found
// in either table - callers translate a miss into BAD_MESSAGE (spec.md 4.4).
func (t *handleTable) closeHandle(h string) (found bool, closeErr error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if fh, ok := t.files[h]; ok {
		delete(t.files, h)
		return true, fh.file.Close()
	}

	if _, ok := t.dirs[h]; ok {
		delete(t.dirs, h)
		return true, nil
	}

	return false, nil
}
