package sftpmount

import (
	"os"
	"path"

	"github.com/spf13/afero"

	"github.com/vmforge/sftpmount/wire"
)

// maxReaddirEntries bounds how many entries a single READDIR reply
// carries (spec.md 4.4, 8).
const maxReaddirEntries = 50

// namedFileInfo lets OPENDIR synthesize "." and ".." entries (spec.md 4.4
// requires the snapshot include them) from another entry's os.FileInfo
// without a filesystem round-trip for the name itself.
type namedFileInfo struct {
	os.FileInfo
	name string
}

func (n namedFileInfo) Name() string { return n.name }

// handleOpendir implements spec.md 4.4's OPENDIR: validate, require the
// path be an existing, readable directory, then snapshot its complete
// entry list - including "." and ".." - into the open-directory table.
func (s *Session) handleOpendir(p *wire.OpendirPacket, reqID uint32) error {
	if err := s.validatePath(p.Path); err != nil {
		return s.sendStatus(reqID, err)
	}

	fi, err := s.fs.Stat(p.Path)
	if err != nil {
		return s.sendStatus(reqID, errNoSuchFile)
	}
	if !fi.IsDir() {
		return s.sendStatus(reqID, errNoSuchFile)
	}
	if !s.fs.isReadable(p.Path) {
		return s.sendStatus(reqID, errPermissionDenied)
	}

	entries, err := afero.ReadDir(s.fs.Fs, p.Path)
	if err != nil {
		return s.sendStatus(reqID, statusFromError(err))
	}

	parentInfo := fi
	if parent, perr := s.fs.Stat(path.Dir(p.Path)); perr == nil {
		parentInfo = parent
	}

	snapshot := make([]os.FileInfo, 0, len(entries)+2)
	snapshot = append(snapshot, namedFileInfo{FileInfo: fi, name: "."})
	snapshot = append(snapshot, namedFileInfo{FileInfo: parentInfo, name: ".."})
	snapshot = append(snapshot, entries...)

	handle := s.handles.putDir(p.Path, snapshot)
	return s.sendHandle(reqID, handle)
}

// handleReaddir implements spec.md 4.4's READDIR: emit up to
// maxReaddirEntries entries from the front of the handle's snapshot,
// EOF once the snapshot is exhausted.
func (s *Session) handleReaddir(p *wire.ReaddirPacket, reqID uint32) error {
	dh, ok := s.handles.getDir(p.Handle)
	if !ok {
		return s.sendStatus(reqID, badMessage("readdir"))
	}

	if len(dh.entries) == 0 {
		return s.sendStatus(reqID, newStatusError(wire.StatusEOF, "EOF"))
	}

	n := maxReaddirEntries
	if n > len(dh.entries) {
		n = len(dh.entries)
	}
	batch := dh.entries[:n]
	dh.entries = dh.entries[n:]

	out := make([]*wire.NameEntry, 0, len(batch))
	for _, fi := range batch {
		out = append(out, s.nameEntryFor(dh.path, fi))
	}

	return s.sendName(reqID, out)
}

// nameEntryFor builds one READDIR NameEntry: filename, `ls -l` longname,
// and attributes. Symlink entries get their attrs from the
// symlink-introspection platform call (forward-mapped); everything else
// gets the generic attribute encoding (spec.md 4.4).
func (s *Session) nameEntryFor(dir string, fi os.FileInfo) *wire.NameEntry {
	entry := &wire.NameEntry{
		Filename: fi.Name(),
		Longname: formatLongname(fi),
	}

	if fi.Mode()&os.ModeSymlink != 0 {
		full := path.Join(dir, fi.Name())
		if la, err := s.platform.LstatAttrs(full); err == nil {
			entry.Attrs = s.attrsFromLink(la)
			return entry
		}
	}

	entry.Attrs = s.attrsFromFileInfo(fi)
	return entry
}

// handleClose implements the CLOSE half of spec.md 4.4/4.7: remove the
// handle from whichever table holds it; BAD_MESSAGE if neither does.
func (s *Session) handleClose(p *wire.ClosePacket, reqID uint32) error {
	found, err := s.handles.closeHandle(p.Handle)
	if !found {
		return s.sendStatus(reqID, badMessage("close"))
	}
	return s.sendStatus(reqID, err)
}
