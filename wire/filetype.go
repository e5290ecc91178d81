package wire

import "os"

// Unix file-type bits as carried in the high bits of an Attributes'
// Permissions field. SFTP v3 borrows these straight from stat(2); draft-02
// never bothered to define its own set.
const (
	ModeTypeMask = 0170000
	ModeRegular  = 0100000
	ModeDir      = 0040000
	ModeSymlink  = 0120000
)

// PermString renders the low 9 permission bits of mode as the classic
// "rwxrwxrwx" triplet used in ls -l output.
func PermString(mode uint32) string {
	const chars = "rwxrwxrwx"

	out := [9]byte{}
	for i := range out {
		bit := uint32(1) << (8 - i)
		if mode&bit != 0 {
			out[i] = chars[i]
		} else {
			out[i] = '-'
		}
	}
	return string(out[:])
}

// FromGoFileMode converts a Go os.FileMode into the wire permissions field
// (low 9 rwx bits plus the high-bit type group), per spec.md 4.6's generic
// attribute encoding.
func FromGoFileMode(mode os.FileMode) uint32 {
	perm := uint32(mode.Perm())

	switch {
	case mode&os.ModeSymlink != 0:
		return ModeSymlink | perm
	case mode.IsDir():
		return ModeDir | perm
	default:
		return ModeRegular | perm
	}
}

// TypeLetter renders the ls -l leading type character for the high-bit
// file-type group of mode: 'd' for directories, 'l' for symlinks, '-' for
// everything else (this server only ever emits regular files otherwise).
func TypeLetter(mode uint32) byte {
	switch mode & ModeTypeMask {
	case ModeDir:
		return 'd'
	case ModeSymlink:
		return 'l'
	default:
		return '-'
	}
}
