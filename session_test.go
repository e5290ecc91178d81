package sftpmount

import (
	"bytes"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/vmforge/sftpmount/wire"
)

// fakeHelper is a HelperController double: the launch-time probe always
// reports a clean exit so session construction never fails in tests that
// don't care about recovery.
type fakeHelper struct {
	waitCode int
	waitOK   bool
	waitErr  error
}

func (f *fakeHelper) Wait(time.Duration) (int, bool, error) { return f.waitCode, f.waitOK, f.waitErr }

func (f *fakeHelper) Relaunch() (io.ReadWriteCloser, error) {
	return nil, errors.New("fakeHelper: Relaunch not wired in this test")
}

type chownCall struct {
	path     string
	uid, gid int
}

type utimeCall struct {
	path         string
	atime, mtime time.Time
}

type symlinkCall struct {
	oldname, newname string
	isDir            bool
}

type linkCall struct {
	oldname, newname string
}

// fakePlatform is a Platform double recording every call, so tests can
// assert the reverse-mapped uid/gid a handler actually applied without a
// real chown/symlink/utime syscall.
type fakePlatform struct {
	chowns   []chownCall
	utimes   []utimeCall
	symlinks []symlinkCall
	links    []linkCall

	lstatAttrs map[string]LinkAttrs
	lstatErr   map[string]error
	readlinks  map[string]string
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		lstatAttrs: make(map[string]LinkAttrs),
		lstatErr:   make(map[string]error),
		readlinks:  make(map[string]string),
	}
}

func (p *fakePlatform) Chown(path string, uid, gid int) error {
	p.chowns = append(p.chowns, chownCall{path, uid, gid})
	return nil
}

func (p *fakePlatform) Symlink(oldname, newname string, isDir bool) error {
	p.symlinks = append(p.symlinks, symlinkCall{oldname, newname, isDir})
	return nil
}

func (p *fakePlatform) Link(oldname, newname string) error {
	p.links = append(p.links, linkCall{oldname, newname})
	return nil
}

func (p *fakePlatform) Utime(path string, atime, mtime time.Time) error {
	p.utimes = append(p.utimes, utimeCall{path, atime, mtime})
	return nil
}

func (p *fakePlatform) Readlink(path string) (string, error) {
	return p.readlinks[path], nil
}

func (p *fakePlatform) LstatAttrs(path string) (LinkAttrs, error) {
	if err, ok := p.lstatErr[path]; ok {
		return LinkAttrs{}, err
	}
	return p.lstatAttrs[path], nil
}

// fakeTransport is the in-memory io.ReadWriteCloser handler tests write
// responses onto; it is never read from except by the decode* helpers below, so
// it stands in for the SSH channel without needing a real connection.
type fakeTransport struct {
	bytes.Buffer
}

func (*fakeTransport) Close() error { return nil }

func baseTestConfig() Config {
	return Config{
		Source:         "/srv/share",
		Target:         "/mnt/remote",
		DefaultUID:     0,
		DefaultGID:     0,
		HelperExecLine: "sftp-helper",
		Recovery:       RecoveryConfig{HelperProbe: time.Millisecond},
	}
}

// newTestSession wires a Session over an afero.MemMapFs, a recording
// fakePlatform, and a fakeTransport, skipping real SSH/process plumbing
// entirely (spec.md 6.4/SPEC_FULL.md 6.4: afero + testify doubles stand in
// for the platform and transport collaborators).
func newTestSession(cfg Config, fs afero.Fs) (*Session, *fakePlatform, *fakeTransport, error) {
	platform := newFakePlatform()
	transport := &fakeTransport{}

	sess, err := NewSession(cfg, fs, platform, &fakeHelper{waitOK: true, waitCode: 0}, NoopLogger{}, transport)
	return sess, platform, transport, err
}

// decodeStatus reads the next response packet off transport and requires it
// to be a StatusPacket, returning its decoded form.
func decodeStatus(transport *fakeTransport) (*wire.StatusPacket, error) {
	typ, body, err := wire.ReadRawPacket(transport)
	if err != nil {
		return nil, err
	}
	if typ != wire.PacketTypeStatus {
		return nil, errors.Errorf("response type = %s, want status", typ)
	}
	p := new(wire.StatusPacket)
	if err := p.UnmarshalBinary(body); err != nil {
		return nil, err
	}
	return p, nil
}

func decodeHandle(transport *fakeTransport) (*wire.HandlePacket, error) {
	typ, body, err := wire.ReadRawPacket(transport)
	if err != nil {
		return nil, err
	}
	if typ != wire.PacketTypeHandle {
		return nil, errors.Errorf("response type = %s, want handle", typ)
	}
	p := new(wire.HandlePacket)
	if err := p.UnmarshalBinary(body); err != nil {
		return nil, err
	}
	return p, nil
}

func decodeData(transport *fakeTransport) (*wire.DataPacket, error) {
	typ, body, err := wire.ReadRawPacket(transport)
	if err != nil {
		return nil, err
	}
	if typ != wire.PacketTypeData {
		return nil, errors.Errorf("response type = %s, want data", typ)
	}
	p := new(wire.DataPacket)
	if err := p.UnmarshalBinary(body); err != nil {
		return nil, err
	}
	return p, nil
}

func decodeName(transport *fakeTransport) (*wire.NamePacket, error) {
	typ, body, err := wire.ReadRawPacket(transport)
	if err != nil {
		return nil, err
	}
	if typ != wire.PacketTypeName {
		return nil, errors.Errorf("response type = %s, want name", typ)
	}
	p := new(wire.NamePacket)
	if err := p.UnmarshalBinary(body); err != nil {
		return nil, err
	}
	return p, nil
}

func decodeAttrs(transport *fakeTransport) (*wire.AttrsPacket, error) {
	typ, body, err := wire.ReadRawPacket(transport)
	if err != nil {
		return nil, err
	}
	if typ != wire.PacketTypeAttrs {
		return nil, errors.Errorf("response type = %s, want attrs", typ)
	}
	p := new(wire.AttrsPacket)
	if err := p.UnmarshalBinary(body); err != nil {
		return nil, err
	}
	return p, nil
}
