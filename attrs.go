package sftpmount

import (
	"os"

	"github.com/vmforge/sftpmount/wire"
)

// wireFlagsFull is the flags word every generic-attribute reply carries
// (spec.md 4.6): SIZE | UIDGID | PERMISSIONS | ACMODTIME. This server never
// emits a partial attrs record outward.
const wireFlagsFull = wire.AttrSize | wire.AttrUIDGID | wire.AttrPermissions | wire.AttrACModTime

// attrsFromFileInfo builds the generic attribute record of spec.md 4.6 from
// a stat result, forward-mapping the host owner/group through idmap before
// it reaches the wire.
func (s *Session) attrsFromFileInfo(fi os.FileInfo) wire.Attributes {
	hostUID, hostGID := hostOwner(fi)

	return wire.Attributes{
		Flags:       wireFlagsFull,
		Size:        uint64(fi.Size()),
		UID:         uint32(s.cfg.UIDMap.Forward(hostUID, s.cfg.DefaultUID)),
		GID:         uint32(s.cfg.GIDMap.Forward(hostGID, s.cfg.DefaultGID)),
		Permissions: wire.FromGoFileMode(fi.Mode()),
		ATime:       uint32(fi.ModTime().Unix()),
		MTime:       uint32(fi.ModTime().Unix()),
	}
}

// attrsFromLink builds the generic attribute record for a symlink itself,
// from the platform's symlink-introspection call, forward-mapping uid/gid
// exactly as attrsFromFileInfo does (spec.md 4.4, 4.6).
func (s *Session) attrsFromLink(la LinkAttrs) wire.Attributes {
	return wire.Attributes{
		Flags:       wireFlagsFull,
		Size:        la.Size,
		UID:         uint32(s.cfg.UIDMap.Forward(la.UID, s.cfg.DefaultUID)),
		GID:         uint32(s.cfg.GIDMap.Forward(la.GID, s.cfg.DefaultGID)),
		Permissions: wire.ModeSymlink | (la.Perm & 0777),
		ATime:       uint32(la.ATime.Unix()),
		MTime:       uint32(la.MTime.Unix()),
	}
}
