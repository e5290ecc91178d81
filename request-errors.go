package sftpmount

import (
	"io"
	"os"
	"syscall"

	"github.com/vmforge/sftpmount/wire"
)

// statusError is the wire-visible error type every handler in this package
// returns: a status code plus the human string sent back as the
// SSH_FXP_STATUS error message. Handlers never let a bare Go error escape to
// the dispatcher (spec.md 7) - they convert through newStatusError or
// statusFromError first.
type statusError struct {
	code wire.Status
	msg  string
}

func (e *statusError) Error() string { return e.msg }

func newStatusError(code wire.Status, msg string) *statusError {
	return &statusError{code: code, msg: msg}
}

// Sentinel statuses named directly in spec.md 4.x's handler prose.
var (
	errNoSuchFile       = newStatusError(wire.StatusNoSuchFile, "no such file")
	errPermissionDenied = newStatusError(wire.StatusPermissionDenied, "permission denied")
	errOpUnsupported    = newStatusError(wire.StatusOPUnsupported, "operation unsupported")
)

// badMessage builds the "<op>: invalid handle" BAD_MESSAGE spec.md 4.4/4.6/4.7
// requires whenever a handle lookup misses.
func badMessage(op string) *statusError {
	return newStatusError(wire.StatusBadMessage, op+": invalid handle")
}

// statusFromError maps an arbitrary error from a filesystem or platform call
// into a wire status code, following the *os.PathError/syscall.Errno
// unwrapping the teacher's own statusFromError (server.go) performs.
func statusFromError(err error) *statusError {
	if err == nil {
		return newStatusError(wire.StatusOK, "")
	}

	if se, ok := err.(*statusError); ok {
		return se
	}

	if err == io.EOF {
		return newStatusError(wire.StatusEOF, "EOF")
	}

	cause := err
	if pathErr, ok := cause.(*os.PathError); ok {
		cause = pathErr.Err
	}
	if linkErr, ok := cause.(*os.LinkError); ok {
		cause = linkErr.Err
	}

	if errno, ok := cause.(syscall.Errno); ok {
		switch errno {
		case 0:
			return newStatusError(wire.StatusOK, "")
		case syscall.ENOENT:
			return newStatusError(wire.StatusNoSuchFile, "no such file")
		case syscall.EACCES, syscall.EPERM:
			return newStatusError(wire.StatusPermissionDenied, "permission denied")
		}
	}

	if os.IsNotExist(err) {
		return newStatusError(wire.StatusNoSuchFile, "no such file")
	}
	if os.IsPermission(err) {
		return newStatusError(wire.StatusPermissionDenied, "permission denied")
	}

	return newStatusError(wire.StatusFailure, err.Error())
}
