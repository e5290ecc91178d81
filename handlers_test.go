package sftpmount

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/vmforge/sftpmount/wire"
)

func TestPathConfinementRejectsEscape(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/srv/share", 0755))
	require.NoError(t, afero.WriteFile(fs, "/etc/passwd", []byte("root:x:0:0"), 0644))

	sess, _, transport, err := newTestSession(baseTestConfig(), fs)
	require.NoError(t, err)

	require.NoError(t, sess.handleOpen(&wire.OpenPacket{RequestID: 1, Filename: "/etc/passwd", PFlags: wire.FlagRead}, 1))

	status, err := decodeStatus(transport)
	require.NoError(t, err)
	require.Equal(t, wire.StatusPermissionDenied, status.StatusCode)
}

func TestStatForwardMapsWithDefault(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/srv/share", 0755))
	require.NoError(t, afero.WriteFile(fs, "/srv/share/f", []byte("hi"), 0644))

	cfg := baseTestConfig()
	// afero's MemMapFs never carries a *syscall.Stat_t, so hostOwner always
	// reports host uid/gid 0 for its files (ls_unix.go's documented
	// fallback); the map entry targets host uid 0 so this still exercises
	// the DEFAULT_ID forward-map rule spec.md 8 scenario 2 describes,
	// rather than the literal uid 1000 the scenario names.
	cfg.UIDMap = IDMap{{HostID: 0, RemoteID: DefaultID}}
	cfg.DefaultUID = 500

	sess, _, transport, err := newTestSession(cfg, fs)
	require.NoError(t, err)

	require.NoError(t, sess.handleStat(&wire.StatPacket{RequestID: 1, Path: "/srv/share/f"}, 1))

	attrs, err := decodeAttrs(transport)
	require.NoError(t, err)
	require.Equal(t, uint32(500), attrs.Attrs.UID)
}

func TestMkdirReverseMapsOwnership(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/srv/share", 0755))

	cfg := baseTestConfig()
	cfg.UIDMap = IDMap{{HostID: 1000, RemoteID: 2000}}
	cfg.GIDMap = IDMap{{HostID: 1000, RemoteID: 2000}}

	sess, platform, transport, err := newTestSession(cfg, fs)
	require.NoError(t, err)

	attrs := wire.Attributes{Flags: wire.AttrUIDGID, UID: 2000, GID: 2000}
	require.NoError(t, sess.handleMkdir(&wire.MkdirPacket{RequestID: 1, Path: "/srv/share/d", Attrs: attrs}, 1))

	status, err := decodeStatus(transport)
	require.NoError(t, err)
	require.Equal(t, wire.StatusOK, status.StatusCode)

	require.Len(t, platform.chowns, 1)
	// uid_map/gid_map both carry (1000, 2000), and the request supplied
	// remote id 2000 for both, so the reverse map hits directly - the
	// parent-owner fallback (spec.md 8 scenario 3) never comes into play.
	require.Equal(t, 1000, platform.chowns[0].uid)
	require.Equal(t, 1000, platform.chowns[0].gid)
}

func TestOpenWriteAloneTriggersAppend(t *testing.T) {
	// backed by a real directory: O_APPEND keeps every write at the end of
	// the file only on an OS file; afero's MemMapFs merely seeks to the end
	// once at open, so a later write at offset 0 would land at the start.
	fs := afero.NewBasePathFs(afero.NewOsFs(), t.TempDir())
	require.NoError(t, fs.MkdirAll("/srv/share", 0755))
	// pre-created deliberately: this test isolates the append-forcing
	// behaviour from implicit-create, which TestOpenWriteAloneCreatesNonexistentFile
	// covers on its own.
	require.NoError(t, afero.WriteFile(fs, "/srv/share/log", []byte("existing-"), 0644))

	sess, _, transport, err := newTestSession(baseTestConfig(), fs)
	require.NoError(t, err)

	require.NoError(t, sess.handleOpen(&wire.OpenPacket{RequestID: 1, Filename: "/srv/share/log", PFlags: wire.FlagWrite}, 1))
	handlePkt, err := decodeHandle(transport)
	require.NoError(t, err)

	require.NoError(t, sess.handleWrite(&wire.WritePacket{RequestID: 2, Handle: handlePkt.Handle, Offset: 0, Data: []byte("new")}, 2))
	status, err := decodeStatus(transport)
	require.NoError(t, err)
	require.Equal(t, wire.StatusOK, status.StatusCode)

	require.NoError(t, sess.handleClose(&wire.ClosePacket{RequestID: 3, Handle: handlePkt.Handle}, 3))
	_, err = decodeStatus(transport)
	require.NoError(t, err)

	got, err := afero.ReadFile(fs, "/srv/share/log")
	require.NoError(t, err)
	require.Equal(t, "existing-new", string(got))
}

func TestOpenWriteAloneCreatesNonexistentFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/srv/share", 0755))

	sess, platform, transport, err := newTestSession(baseTestConfig(), fs)
	require.NoError(t, err)

	// scenario 4: a WRITE-only OPEN of "/srv/share/log" when the file is
	// absent must create it implicitly, without the CREAT bit set.
	require.NoError(t, sess.handleOpen(&wire.OpenPacket{RequestID: 1, Filename: "/srv/share/log", PFlags: wire.FlagWrite}, 1))
	_, err = decodeHandle(transport)
	require.NoError(t, err)

	_, statErr := fs.Stat("/srv/share/log")
	require.NoError(t, statErr)
	require.Len(t, platform.chowns, 1, "the create-time ownership branch must run for an implicit create")
}

func TestOpenWriteReadRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/srv/share", 0755))

	sess, _, transport, err := newTestSession(baseTestConfig(), fs)
	require.NoError(t, err)

	var openFlags uint32 = wire.FlagRead | wire.FlagWrite | wire.FlagCreate | wire.FlagTruncate
	require.NoError(t, sess.handleOpen(&wire.OpenPacket{RequestID: 1, Filename: "/srv/share/roundtrip", PFlags: openFlags}, 1))
	h1, err := decodeHandle(transport)
	require.NoError(t, err)

	data := []byte("round-trip-data")
	require.NoError(t, sess.handleWrite(&wire.WritePacket{RequestID: 2, Handle: h1.Handle, Offset: 0, Data: data}, 2))
	_, err = decodeStatus(transport)
	require.NoError(t, err)

	require.NoError(t, sess.handleClose(&wire.ClosePacket{RequestID: 3, Handle: h1.Handle}, 3))
	_, err = decodeStatus(transport)
	require.NoError(t, err)

	require.NoError(t, sess.handleOpen(&wire.OpenPacket{RequestID: 4, Filename: "/srv/share/roundtrip", PFlags: wire.FlagRead}, 4))
	h2, err := decodeHandle(transport)
	require.NoError(t, err)

	require.NoError(t, sess.handleRead(&wire.ReadPacket{RequestID: 5, Handle: h2.Handle, Offset: 0, Length: uint32(len(data))}, 5))
	dataPkt, err := decodeData(transport)
	require.NoError(t, err)
	require.Equal(t, data, dataPkt.Data)

	require.NoError(t, sess.handleClose(&wire.ClosePacket{RequestID: 6, Handle: h2.Handle}, 6))
	_, err = decodeStatus(transport)
	require.NoError(t, err)
}

func TestCloseThenFstatIsBadMessage(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/srv/share", 0755))

	sess, _, transport, err := newTestSession(baseTestConfig(), fs)
	require.NoError(t, err)

	var flags uint32 = wire.FlagRead | wire.FlagWrite | wire.FlagCreate
	require.NoError(t, sess.handleOpen(&wire.OpenPacket{RequestID: 1, Filename: "/srv/share/f", PFlags: flags}, 1))
	h, err := decodeHandle(transport)
	require.NoError(t, err)

	require.NoError(t, sess.handleClose(&wire.ClosePacket{RequestID: 2, Handle: h.Handle}, 2))
	_, err = decodeStatus(transport)
	require.NoError(t, err)

	require.NoError(t, sess.handleFstat(&wire.FstatPacket{RequestID: 3, Handle: h.Handle}, 3))
	status, err := decodeStatus(transport)
	require.NoError(t, err)
	require.Equal(t, wire.StatusBadMessage, status.StatusCode)
	require.Equal(t, "fstat: invalid handle", status.ErrorMessage)
}

func TestDestructiveRenameOverwritesTarget(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/srv/share", 0755))
	require.NoError(t, afero.WriteFile(fs, "/srv/share/a", []byte("a-contents"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/srv/share/b", []byte("b-contents"), 0644))

	sess, _, transport, err := newTestSession(baseTestConfig(), fs)
	require.NoError(t, err)

	require.NoError(t, sess.handleRename(&wire.RenamePacket{RequestID: 1, OldPath: "/srv/share/a", NewPath: "/srv/share/b"}, 1))
	status, err := decodeStatus(transport)
	require.NoError(t, err)
	require.Equal(t, wire.StatusOK, status.StatusCode)

	_, err = fs.Stat("/srv/share/a")
	require.True(t, err != nil)

	got, err := afero.ReadFile(fs, "/srv/share/b")
	require.NoError(t, err)
	require.Equal(t, "a-contents", string(got))
}

func TestReaddirCapsAt50EntriesPerCall(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/srv/share/d", 0755))
	for i := 0; i < 60; i++ {
		require.NoError(t, afero.WriteFile(fs, "/srv/share/d/f"+string(rune('a'+i%26))+string(rune('0'+i/26)), []byte("x"), 0644))
	}

	sess, _, transport, err := newTestSession(baseTestConfig(), fs)
	require.NoError(t, err)

	require.NoError(t, sess.handleOpendir(&wire.OpendirPacket{RequestID: 1, Path: "/srv/share/d"}, 1))
	h, err := decodeHandle(transport)
	require.NoError(t, err)

	require.NoError(t, sess.handleReaddir(&wire.ReaddirPacket{RequestID: 2, Handle: h.Handle}, 2))
	namePkt, err := decodeName(transport)
	require.NoError(t, err)
	require.LessOrEqual(t, len(namePkt.Entries), 50)
}

func TestReadlinkEmptyTargetIsNoSuchFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/srv/share", 0755))

	sess, _, transport, err := newTestSession(baseTestConfig(), fs)
	require.NoError(t, err)

	require.NoError(t, sess.handleReadlink(&wire.ReadlinkPacket{RequestID: 1, Path: "/srv/share/nolink"}, 1))
	status, err := decodeStatus(transport)
	require.NoError(t, err)
	require.Equal(t, wire.StatusNoSuchFile, status.StatusCode)
	require.Equal(t, "invalid link", status.ErrorMessage)
}

func TestSymlinkValidatesOnlyLinkPath(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/srv/share", 0755))

	sess, platform, transport, err := newTestSession(baseTestConfig(), fs)
	require.NoError(t, err)

	require.NoError(t, sess.handleSymlink(&wire.SymlinkPacket{RequestID: 1, TargetPath: "../../etc/passwd", LinkPath: "/srv/share/link"}, 1))
	status, err := decodeStatus(transport)
	require.NoError(t, err)
	require.Equal(t, wire.StatusOK, status.StatusCode)

	require.Len(t, platform.symlinks, 1)
	require.Equal(t, "../../etc/passwd", platform.symlinks[0].oldname)
	require.Equal(t, "/srv/share/link", platform.symlinks[0].newname)
}

func TestSymlinkLinkPathOutsideSourceIsRejected(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/srv/share", 0755))

	sess, platform, transport, err := newTestSession(baseTestConfig(), fs)
	require.NoError(t, err)

	require.NoError(t, sess.handleSymlink(&wire.SymlinkPacket{RequestID: 1, TargetPath: "text", LinkPath: "/etc/evil"}, 1))
	status, err := decodeStatus(transport)
	require.NoError(t, err)
	require.Equal(t, wire.StatusPermissionDenied, status.StatusCode)
	require.Empty(t, platform.symlinks)
}

func TestExtendedUnsupportedSubmessage(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/srv/share", 0755))

	sess, _, transport, err := newTestSession(baseTestConfig(), fs)
	require.NoError(t, err)

	require.NoError(t, sess.handleExtended(&wire.ExtendedPacket{RequestID: 1, ExtendedRequest: "statvfs@openssh.com"}, 1))
	status, err := decodeStatus(transport)
	require.NoError(t, err)
	require.Equal(t, wire.StatusOPUnsupported, status.StatusCode)
}
