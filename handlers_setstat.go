package sftpmount

import (
	"os"
	"time"

	"github.com/vmforge/sftpmount/wire"
)

// truncatePath resizes a file by path; afero's Fs interface only exposes
// Truncate on an open File, so SETSTAT (which has no handle) opens one
// just for the resize.
func (s *Session) truncatePath(path string, size int64) error {
	f, err := s.fs.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Truncate(size)
}

// applyAttrs implements spec.md 4.9's ordered, flag-conditional attribute
// write: permissions, then atime/mtime, then ownership. Callers are
// responsible for the SIZE step first, since FSETSTAT truncates through
// its already-open handle while SETSTAT has to open one (spec.md 4.9). The
// ownership fallback here is the remote-supplied id itself, not a parent's
// id, unlike MKDIR/OPEN's creation-time ownership assignment.
func (s *Session) applyAttrs(path string, attrs wire.Attributes) error {
	if attrs.Flags&wire.AttrPermissions != 0 {
		if err := s.fs.Chmod(path, os.FileMode(attrs.Permissions&0777)); err != nil {
			return err
		}
	}

	if attrs.Flags&wire.AttrACModTime != 0 {
		atime := time.Unix(int64(attrs.ATime), 0)
		mtime := time.Unix(int64(attrs.MTime), 0)
		if err := s.platform.Utime(path, atime, mtime); err != nil {
			return err
		}
	}

	if attrs.Flags&wire.AttrUIDGID != 0 {
		uid := s.cfg.UIDMap.Reverse(int(attrs.UID), int(attrs.UID))
		gid := s.cfg.GIDMap.Reverse(int(attrs.GID), int(attrs.GID))
		if err := s.platform.Chown(path, uid, gid); err != nil {
			return err
		}
	}

	return nil
}

// handleSetstat implements spec.md 4.9's SETSTAT.
func (s *Session) handleSetstat(p *wire.SetstatPacket, reqID uint32) error {
	if err := s.validatePath(p.Path); err != nil {
		return s.sendStatus(reqID, err)
	}
	if !s.fs.existsOrSymlink(p.Path) {
		return s.sendStatus(reqID, errNoSuchFile)
	}

	if p.Attrs.Flags&wire.AttrSize != 0 {
		if err := s.truncatePath(p.Path, int64(p.Attrs.Size)); err != nil {
			return s.sendStatus(reqID, err)
		}
	}

	return s.sendStatus(reqID, s.applyAttrs(p.Path, p.Attrs))
}

// handleFsetstat implements spec.md 4.9's FSETSTAT.
func (s *Session) handleFsetstat(p *wire.FsetstatPacket, reqID uint32) error {
	fh, ok := s.handles.getFile(p.Handle)
	if !ok {
		return s.sendStatus(reqID, badMessage("setstat"))
	}

	if p.Attrs.Flags&wire.AttrSize != 0 {
		if err := fh.file.Truncate(int64(p.Attrs.Size)); err != nil {
			return s.sendStatus(reqID, err)
		}
	}

	return s.sendStatus(reqID, s.applyAttrs(fh.path, p.Attrs))
}
