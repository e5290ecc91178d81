package sftpmount

import "github.com/vmforge/sftpmount/wire"

// handleRemove implements spec.md 4.8's REMOVE.
func (s *Session) handleRemove(p *wire.RemovePacket, reqID uint32) error {
	if err := s.validatePath(p.Path); err != nil {
		return s.sendStatus(reqID, err)
	}

	return s.sendStatus(reqID, s.fs.Remove(p.Path))
}

// handleRename implements spec.md 4.8's RENAME: a destructive overwrite,
// removing any existing target before renaming onto it.
func (s *Session) handleRename(p *wire.RenamePacket, reqID uint32) error {
	if err := s.validatePath(p.OldPath); err != nil {
		return s.sendStatus(reqID, err)
	}
	if !s.fs.existsOrSymlink(p.OldPath) {
		return s.sendStatus(reqID, errNoSuchFile)
	}

	if err := s.validatePath(p.NewPath); err != nil {
		return s.sendStatus(reqID, err)
	}

	if s.fs.existsOrSymlink(p.NewPath) {
		if err := s.fs.Remove(p.NewPath); err != nil {
			return s.sendStatus(reqID, err)
		}
	}

	return s.sendStatus(reqID, s.fs.Rename(p.OldPath, p.NewPath))
}
