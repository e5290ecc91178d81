package sftpmount

import (
	"strings"

	"github.com/vmforge/sftpmount/wire"
)

const sftpProtocolVersion = 3

// marshalable is satisfied by every wire response packet type.
type marshalable interface {
	MarshalPacket() (header, payload []byte, err error)
}

func (s *Session) transportWrite(p []byte) error {
	s.mu.Lock()
	t := s.transport
	s.mu.Unlock()

	_, err := t.Write(p)
	return err
}

// send marshals and writes one response packet. The returned error is a
// transport-level send failure; per spec.md 7 it is logged by the caller
// (Session.Run) and never aborts the loop.
func (s *Session) send(pkt marshalable) error {
	header, payload, err := pkt.MarshalPacket()
	if err != nil {
		return err
	}
	if err := s.transportWrite(header); err != nil {
		return err
	}
	if len(payload) > 0 {
		return s.transportWrite(payload)
	}
	return nil
}

func (s *Session) sendStatus(reqID uint32, err error) error {
	se := statusFromError(err)
	return s.send(&wire.StatusPacket{
		RequestID:    reqID,
		StatusCode:   se.code,
		ErrorMessage: se.msg,
	})
}

func (s *Session) sendHandle(reqID uint32, handle string) error {
	return s.send(&wire.HandlePacket{RequestID: reqID, Handle: handle})
}

func (s *Session) sendData(reqID uint32, data []byte) error {
	return s.send(&wire.DataPacket{RequestID: reqID, Data: data})
}

func (s *Session) sendName(reqID uint32, entries []*wire.NameEntry) error {
	return s.send(&wire.NamePacket{RequestID: reqID, Entries: entries})
}

func (s *Session) sendAttrs(reqID uint32, attrs wire.Attributes) error {
	return s.send(&wire.AttrsPacket{RequestID: reqID, Attrs: attrs})
}

// validatePath enforces spec.md 4.2's path confinement: a raw byte-wise
// prefix test, deliberately not canonicalizing (design note, spec.md 9).
// This means ".." can escape the source path; the guard is advisory, not a
// sandbox, and this repository logs a loud one-time warning on the first
// path validation when Source doesn't end in a separator, since that's the
// case where the prefix check is weakest (e.g. "/srv/share-evil" passes a
// prefix check against "/srv/share").
func (s *Session) validatePath(path string) error {
	if s.warnConfinementOnce() {
		s.log.Warn("path confinement is prefix-only and not canonicalized; this admits \"..\" escapes by design (spec 4.2)",
			"source", s.cfg.Source)
	}

	if !strings.HasPrefix(path, s.cfg.Source) {
		return errPermissionDenied
	}
	return nil
}

func (s *Session) warnConfinementOnce() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.warnedConfinement {
		return false
	}
	s.warnedConfinement = true
	return !strings.HasSuffix(s.cfg.Source, "/")
}

// dispatch routes one decoded client message to its handler, per the table
// in spec.md 4.1. Modeled directly on the teacher's
// DefaultFSBackend.Handle type switch (default-fs-backend.go), generalized
// from concrete os.* calls to this server's path-confined, identity-mapped
// semantics.
func (s *Session) dispatch(pkt wire.RequestPacket, reqID uint32) error {
	switch p := pkt.(type) {
	case *wire.InitPacket:
		return s.send(&wire.VersionPacket{Version: sftpProtocolVersion})

	case *wire.RealpathPacket:
		return s.handleRealpath(p, reqID)

	case *wire.OpendirPacket:
		return s.handleOpendir(p, reqID)
	case *wire.ReaddirPacket:
		return s.handleReaddir(p, reqID)
	case *wire.ClosePacket:
		return s.handleClose(p, reqID)

	case *wire.MkdirPacket:
		return s.handleMkdir(p, reqID)
	case *wire.RmdirPacket:
		return s.handleRmdir(p, reqID)

	case *wire.StatPacket:
		return s.handleStat(p, reqID)
	case *wire.LstatPacket:
		return s.handleLstat(p, reqID)
	case *wire.FstatPacket:
		return s.handleFstat(p, reqID)

	case *wire.OpenPacket:
		return s.handleOpen(p, reqID)
	case *wire.ReadPacket:
		return s.handleRead(p, reqID)
	case *wire.WritePacket:
		return s.handleWrite(p, reqID)

	case *wire.RenamePacket:
		return s.handleRename(p, reqID)
	case *wire.RemovePacket:
		return s.handleRemove(p, reqID)

	case *wire.SetstatPacket:
		return s.handleSetstat(p, reqID)
	case *wire.FsetstatPacket:
		return s.handleFsetstat(p, reqID)

	case *wire.ReadlinkPacket:
		return s.handleReadlink(p, reqID)
	case *wire.SymlinkPacket:
		return s.handleSymlink(p, reqID)

	case *wire.ExtendedPacket:
		return s.handleExtended(p, reqID)

	default:
		return s.sendStatus(reqID, errOpUnsupported)
	}
}
