package sftpmount

import (
	"path"

	"github.com/vmforge/sftpmount/wire"
)

// handleRealpath implements spec.md 4.3: validate, then reply with the
// lexical absolute form of the path. Symlinks are never resolved.
func (s *Session) handleRealpath(p *wire.RealpathPacket, reqID uint32) error {
	if err := s.validatePath(p.Path); err != nil {
		return s.sendStatus(reqID, err)
	}

	abs := absolutize(p.Path)

	return s.sendName(reqID, []*wire.NameEntry{{
		Filename: abs,
		Longname: abs,
	}})
}

// absolutize lexically normalizes an SFTP path, which is always
// POSIX-style regardless of host OS, without touching the filesystem.
func absolutize(p string) string {
	if p == "" {
		p = "/"
	}
	if p[0] != '/' {
		p = "/" + p
	}
	return path.Clean(p)
}
