package sftpmount

import (
	"io"
	"time"
)

// HelperController is the seam over the two collaborators spec.md 1 places
// out of scope of the core: the SSH transport and the invocation of the
// companion sshfs-family helper inside the guest. Session depends on this
// interface, never on golang.org/x/crypto/ssh directly, so the recovery
// path (spec.md 4.1) is exercisable without a real SSH connection.
type HelperController interface {
	// Wait blocks up to timeout for the helper process to report an exit
	// status. ok is false when no status was obtained within timeout
	// (indeterminate, or the process is still running); code is only
	// meaningful when ok is true.
	Wait(timeout time.Duration) (code int, ok bool, err error)

	// Relaunch performs spec.md 4.1's recovery sequence: find any mount
	// mounted from the source path, unmount it if found, relaunch the
	// helper, and return a fresh transport wired to the new SFTP session.
	Relaunch() (io.ReadWriteCloser, error)
}
