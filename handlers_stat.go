package sftpmount

import "github.com/vmforge/sftpmount/wire"

// handleStat implements spec.md 4.6's STAT: attributes of the path,
// dereferencing a trailing symlink.
func (s *Session) handleStat(p *wire.StatPacket, reqID uint32) error {
	if err := s.validatePath(p.Path); err != nil {
		return s.sendStatus(reqID, err)
	}

	fi, err := s.fs.Stat(p.Path)
	if err != nil {
		return s.sendStatus(reqID, errNoSuchFile)
	}

	return s.sendAttrs(reqID, s.attrsFromFileInfo(fi))
}

// handleLstat implements spec.md 4.6's LSTAT: attributes of the path
// itself. A symlink's attrs come from the symlink-introspection platform
// call, not the target it points at.
func (s *Session) handleLstat(p *wire.LstatPacket, reqID uint32) error {
	if err := s.validatePath(p.Path); err != nil {
		return s.sendStatus(reqID, err)
	}

	isLink, fi, err := s.fs.isSymlink(p.Path)
	if err != nil {
		return s.sendStatus(reqID, errNoSuchFile)
	}

	if isLink {
		la, err := s.platform.LstatAttrs(p.Path)
		if err != nil {
			return s.sendStatus(reqID, errNoSuchFile)
		}
		return s.sendAttrs(reqID, s.attrsFromLink(la))
	}

	return s.sendAttrs(reqID, s.attrsFromFileInfo(fi))
}

// handleFstat implements spec.md 4.6's FSTAT: attributes of an
// already-open file handle.
func (s *Session) handleFstat(p *wire.FstatPacket, reqID uint32) error {
	fh, ok := s.handles.getFile(p.Handle)
	if !ok {
		return s.sendStatus(reqID, badMessage("fstat"))
	}

	fi, err := fh.file.Stat()
	if err != nil {
		return s.sendStatus(reqID, statusFromError(err))
	}

	return s.sendAttrs(reqID, s.attrsFromFileInfo(fi))
}
