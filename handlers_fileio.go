package sftpmount

import (
	"io"
	"os"
	"path"

	"github.com/vmforge/sftpmount/wire"
)

const maxReadLength = 65536

// openFlagsFor translates SSH_FXF_* bits to os.OpenFile flags (spec.md 4.7).
// The WRITE-alone case also forces append, preserving a documented
// remote-helper interoperability quirk (spec.md 9) rather than fixing it.
// File creation is implicit on any write-enabled open, not only when the
// CREAT bit is set: the original always creates on a write-enabled open
// (sftp_server.cpp, QIODevice::WriteOnly), so O_CREATE is ORed in whenever
// write mode is requested, with the CREAT bit itself adding nothing beyond
// that.
func openFlagsFor(pflags uint32) int {
	var flags int

	switch {
	case pflags&wire.FlagRead != 0 && pflags&wire.FlagWrite != 0:
		flags |= os.O_RDWR
	case pflags&wire.FlagWrite != 0:
		flags |= os.O_WRONLY
	default:
		flags |= os.O_RDONLY
	}

	if pflags&wire.FlagAppend != 0 {
		flags |= os.O_APPEND
	}
	if pflags == wire.FlagWrite {
		flags |= os.O_APPEND
	}
	if pflags&wire.FlagCreate != 0 || pflags&wire.FlagWrite != 0 {
		flags |= os.O_CREATE
	}
	if pflags&wire.FlagTruncate != 0 {
		flags |= os.O_TRUNC
	}
	if pflags&wire.FlagExclusive != 0 {
		flags |= os.O_EXCL
	}

	return flags
}

// handleOpen implements spec.md 4.7's OPEN.
func (s *Session) handleOpen(p *wire.OpenPacket, reqID uint32) error {
	if err := s.validatePath(p.Filename); err != nil {
		return s.sendStatus(reqID, err)
	}

	existed := s.fs.existsOrSymlink(p.Filename)

	f, err := s.fs.OpenFile(p.Filename, openFlagsFor(p.PFlags), 0644)
	if err != nil {
		return s.sendStatus(reqID, err)
	}

	if !existed {
		perm := os.FileMode(0644)
		if p.Attrs.Flags&wire.AttrPermissions != 0 {
			perm = os.FileMode(p.Attrs.Permissions & 0777)
		}
		if err := s.fs.Chmod(p.Filename, perm); err != nil {
			f.Close()
			return s.sendStatus(reqID, err)
		}

		parentUID, parentGID := 0, 0
		if parentInfo, perr := s.fs.Stat(path.Dir(p.Filename)); perr == nil {
			parentUID, parentGID = hostOwner(parentInfo)
		}
		uid, gid := s.targetOwnership(p.Attrs, parentUID, parentGID)
		if err := s.platform.Chown(p.Filename, uid, gid); err != nil {
			f.Close()
			return s.sendStatus(reqID, err)
		}
	}

	handle := s.handles.putFile(p.Filename, f)
	return s.sendHandle(reqID, handle)
}

// handleRead implements spec.md 4.7's READ.
func (s *Session) handleRead(p *wire.ReadPacket, reqID uint32) error {
	fh, ok := s.handles.getFile(p.Handle)
	if !ok {
		return s.sendStatus(reqID, badMessage("read"))
	}

	if _, err := fh.file.Seek(int64(p.Offset), io.SeekStart); err != nil {
		return s.sendStatus(reqID, statusFromError(err))
	}

	length := p.Length
	if length > maxReadLength {
		length = maxReadLength
	}

	buf := make([]byte, length)
	n, err := fh.file.Read(buf)
	if n > 0 {
		return s.sendData(reqID, buf[:n])
	}
	if err != nil && err != io.EOF {
		return s.sendStatus(reqID, statusFromError(err))
	}
	return s.sendStatus(reqID, newStatusError(wire.StatusEOF, "EOF"))
}

// handleWrite implements spec.md 4.7's WRITE.
func (s *Session) handleWrite(p *wire.WritePacket, reqID uint32) error {
	fh, ok := s.handles.getFile(p.Handle)
	if !ok {
		return s.sendStatus(reqID, badMessage("write"))
	}

	if _, err := fh.file.Seek(int64(p.Offset), io.SeekStart); err != nil {
		return s.sendStatus(reqID, statusFromError(err))
	}

	data := p.Data
	for len(data) > 0 {
		n, err := fh.file.Write(data)
		if err != nil {
			return s.sendStatus(reqID, statusFromError(err))
		}
		if n <= 0 {
			return s.sendStatus(reqID, newStatusError(wire.StatusFailure, "short write"))
		}
		data = data[n:]

		if err := fh.file.Sync(); err != nil {
			return s.sendStatus(reqID, statusFromError(err))
		}
	}

	return s.sendStatus(reqID, nil)
}
