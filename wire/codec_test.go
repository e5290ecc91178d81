package wire

import (
	"bytes"
	"testing"
)

func TestDecodeRequestOpen(t *testing.T) {
	attrs := Attributes{Flags: AttrSize, Size: 4096}

	open := &OpenPacket{RequestID: 7, Filename: "/srv/share/f", PFlags: FlagRead, Attrs: attrs}

	buf := NewBuffer(nil)
	buf.AppendUint32(7)
	buf.AppendString(open.Filename)
	buf.AppendUint32(open.PFlags)
	open.Attrs.MarshalInto(buf)

	body := append([]byte{byte(PacketTypeOpen)}, buf.Bytes()...)

	pkt, reqID, err := DecodeRequest(PacketTypeOpen, body[1:])
	if err != nil {
		t.Fatalf("DecodeRequest: %v", err)
	}
	if reqID != 7 {
		t.Fatalf("request id = %d, want 7", reqID)
	}

	got, ok := pkt.(*OpenPacket)
	if !ok {
		t.Fatalf("decoded type = %T, want *OpenPacket", pkt)
	}
	if got.Filename != open.Filename || got.PFlags != open.PFlags || got.Attrs.Size != 4096 {
		t.Fatalf("decoded = %+v, want %+v", got, open)
	}
}

func TestSymlinkPacketWireOrderIsReversed(t *testing.T) {
	buf := NewBuffer(nil)
	buf.AppendUint32(1)
	buf.AppendString("target-text")
	buf.AppendString("/srv/share/link")

	pkt, _, err := DecodeRequest(PacketTypeSymlink, buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeRequest: %v", err)
	}

	sym := pkt.(*SymlinkPacket)
	if sym.TargetPath != "target-text" || sym.LinkPath != "/srv/share/link" {
		t.Fatalf("got TargetPath=%q LinkPath=%q, want target-text / /srv/share/link", sym.TargetPath, sym.LinkPath)
	}
}

func TestStatusPacketRoundTrip(t *testing.T) {
	p := &StatusPacket{RequestID: 3, StatusCode: StatusNoSuchFile, ErrorMessage: "no such file"}

	data, err := p.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}

	var decoded StatusPacket
	if err := decoded.UnmarshalBinary(data[5:]); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}

	if decoded.RequestID != p.RequestID || decoded.StatusCode != p.StatusCode || decoded.ErrorMessage != p.ErrorMessage {
		t.Fatalf("decoded = %+v, want %+v", decoded, p)
	}
}

func TestReadPacketRejectsOversizeLength(t *testing.T) {
	var lenBuf [4]byte
	lenBuf[0] = 0xFF // absurdly large length

	r := bytes.NewReader(lenBuf[:])
	if _, _, err := ReadRawPacket(r); err == nil {
		t.Fatal("expected error for oversize packet length")
	}
}

func TestPermStringAndTypeLetter(t *testing.T) {
	if got := PermString(0755); got != "rwxr-xr-x" {
		t.Fatalf("PermString(0755) = %q, want rwxr-xr-x", got)
	}

	if got := TypeLetter(ModeDir | 0755); got != 'd' {
		t.Fatalf("TypeLetter(dir) = %q, want d", got)
	}

	if got := TypeLetter(ModeSymlink | 0777); got != 'l' {
		t.Fatalf("TypeLetter(symlink) = %q, want l", got)
	}
}
