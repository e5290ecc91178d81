package sftpmount

import "github.com/vmforge/sftpmount/wire"

// handleReadlink implements spec.md 4.10's READLINK.
func (s *Session) handleReadlink(p *wire.ReadlinkPacket, reqID uint32) error {
	if err := s.validatePath(p.Path); err != nil {
		return s.sendStatus(reqID, err)
	}

	target, err := s.platform.Readlink(p.Path)
	if err != nil || target == "" {
		return s.sendStatus(reqID, newStatusError(wire.StatusNoSuchFile, "invalid link"))
	}

	return s.sendName(reqID, []*wire.NameEntry{{
		Filename: target,
		Longname: target,
	}})
}

// handleSymlink implements spec.md 4.10's SYMLINK. Only the link location
// (LinkPath, wire field "new_name") is validated; the link text
// (TargetPath, wire field "old_name") is never touched on the host and so
// is not checked against the confined source.
func (s *Session) handleSymlink(p *wire.SymlinkPacket, reqID uint32) error {
	if err := s.validatePath(p.LinkPath); err != nil {
		return s.sendStatus(reqID, err)
	}

	isDir := false
	if fi, err := s.fs.Stat(p.TargetPath); err == nil {
		isDir = fi.IsDir()
	}

	return s.sendStatus(reqID, s.platform.Symlink(p.TargetPath, p.LinkPath, isDir))
}
