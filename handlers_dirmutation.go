package sftpmount

import (
	"os"
	"path"

	"github.com/vmforge/sftpmount/wire"
)

// targetOwnership determines the uid/gid a newly created filesystem object
// should receive, per spec.md 4.5/4.7: reverse-map the remote-supplied id
// when the request actually carried one, falling back to the parent
// directory's own owner/group otherwise (both when UIDGID wasn't set on
// the request, and when the reverse map itself misses).
func (s *Session) targetOwnership(attrs wire.Attributes, parentUID, parentGID int) (uid, gid int) {
	if attrs.Flags&wire.AttrUIDGID == 0 {
		return parentUID, parentGID
	}
	uid = s.cfg.UIDMap.Reverse(int(attrs.UID), parentUID)
	gid = s.cfg.GIDMap.Reverse(int(attrs.GID), parentGID)
	return uid, gid
}

// handleMkdir implements spec.md 4.5's MKDIR: create the directory, apply
// requested permissions, then chown using the parent directory's
// owner/group as the reverse-map fallback. Failures after creation are
// not rolled back (spec.md 4.5, 9).
func (s *Session) handleMkdir(p *wire.MkdirPacket, reqID uint32) error {
	if err := s.validatePath(p.Path); err != nil {
		return s.sendStatus(reqID, err)
	}

	perm := os.FileMode(0755)
	if p.Attrs.Flags&wire.AttrPermissions != 0 {
		perm = os.FileMode(p.Attrs.Permissions & 0777)
	}

	if err := s.fs.Mkdir(p.Path, perm); err != nil {
		return s.sendStatus(reqID, err)
	}

	parentUID, parentGID := 0, 0
	if parentInfo, err := s.fs.Stat(path.Dir(p.Path)); err == nil {
		parentUID, parentGID = hostOwner(parentInfo)
	}

	uid, gid := s.targetOwnership(p.Attrs, parentUID, parentGID)
	if err := s.platform.Chown(p.Path, uid, gid); err != nil {
		return s.sendStatus(reqID, err)
	}

	return s.sendStatus(reqID, nil)
}

// handleRmdir implements spec.md 4.5's RMDIR: remove, no recursion.
func (s *Session) handleRmdir(p *wire.RmdirPacket, reqID uint32) error {
	if err := s.validatePath(p.Path); err != nil {
		return s.sendStatus(reqID, err)
	}

	return s.sendStatus(reqID, s.fs.rmdir(p.Path))
}
