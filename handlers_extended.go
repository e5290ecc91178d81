package sftpmount

import "github.com/vmforge/sftpmount/wire"

const (
	extHardlink    = "hardlink@openssh.com"
	extPosixRename = "posix-rename@openssh.com"
)

// handleExtended implements spec.md 4.11: dispatch by submessage name.
func (s *Session) handleExtended(p *wire.ExtendedPacket, reqID uint32) error {
	switch p.ExtendedRequest {
	case extHardlink:
		return s.handleHardlink(p, reqID)
	case extPosixRename:
		return s.handlePosixRename(p, reqID)
	default:
		return s.sendStatus(reqID, errOpUnsupported)
	}
}

// handleHardlink decodes "old_name"/"new_name" from the raw extended
// payload, validates only the new link location, and calls the platform
// hardlink primitive.
func (s *Session) handleHardlink(p *wire.ExtendedPacket, reqID uint32) error {
	buf := wire.NewBuffer(p.Data)
	oldName, err := buf.ConsumeString()
	if err != nil {
		return s.sendStatus(reqID, badMessage("hardlink"))
	}
	newName, err := buf.ConsumeString()
	if err != nil {
		return s.sendStatus(reqID, badMessage("hardlink"))
	}

	if err := s.validatePath(newName); err != nil {
		return s.sendStatus(reqID, err)
	}

	return s.sendStatus(reqID, s.platform.Link(oldName, newName))
}

// handlePosixRename decodes "old_name"/"new_name" and delegates to the
// same destructive-overwrite rename logic as RENAME.
func (s *Session) handlePosixRename(p *wire.ExtendedPacket, reqID uint32) error {
	buf := wire.NewBuffer(p.Data)
	oldName, err := buf.ConsumeString()
	if err != nil {
		return s.sendStatus(reqID, badMessage("posix-rename"))
	}
	newName, err := buf.ConsumeString()
	if err != nil {
		return s.sendStatus(reqID, badMessage("posix-rename"))
	}

	return s.handleRename(&wire.RenamePacket{RequestID: reqID, OldPath: oldName, NewPath: newName}, reqID)
}
