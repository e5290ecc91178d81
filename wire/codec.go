package wire

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MaxPacketLength bounds the length field of an incoming packet. Anything
// larger is treated as a protocol violation rather than read into memory.
const MaxPacketLength = 256 * 1024

// ReadRawPacket reads one length-prefixed SFTP packet from r and returns its
// type byte and un-consumed body (everything after the type byte).
func ReadRawPacket(r io.Reader) (PacketType, []byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return 0, nil, err
	}

	length := binary.BigEndian.Uint32(lenBuf[:])
	if length == 0 {
		return 0, nil, ErrShortPacket
	}
	if length > MaxPacketLength {
		return 0, nil, fmt.Errorf("sftp: packet length %d exceeds maximum %d", length, MaxPacketLength)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return 0, nil, err
	}

	return PacketType(body[0]), body[1:], nil
}

// RequestPacket is satisfied by every concrete *Packet type that carries a
// client request; the dispatcher type-switches on the concrete type after
// DecodeRequest returns it.
type RequestPacket interface {
	UnmarshalPacketBody(buf *Buffer) error
}

// DecodeRequest parses body (as returned by ReadRawPacket, so the type byte has
// already been stripped) into the concrete packet type for typ, and returns
// it along with the request ID (zero for SSH_FXP_INIT, which has none).
func DecodeRequest(typ PacketType, body []byte) (pkt RequestPacket, requestID uint32, err error) {
	buf := NewBuffer(body)

	if typ == PacketTypeInit {
		p := new(InitPacket)
		err = p.UnmarshalPacketBody(buf)
		return p, 0, err
	}

	if requestID, err = buf.ConsumeUint32(); err != nil {
		return nil, 0, err
	}

	switch typ {
	case PacketTypeOpen:
		p := &OpenPacket{RequestID: requestID}
		pkt = p
	case PacketTypeClose:
		p := &ClosePacket{RequestID: requestID}
		pkt = p
	case PacketTypeRead:
		p := &ReadPacket{RequestID: requestID}
		pkt = p
	case PacketTypeWrite:
		p := &WritePacket{RequestID: requestID}
		pkt = p
	case PacketTypeLstat:
		p := &LstatPacket{RequestID: requestID}
		pkt = p
	case PacketTypeStat:
		p := &StatPacket{RequestID: requestID}
		pkt = p
	case PacketTypeFstat:
		p := &FstatPacket{RequestID: requestID}
		pkt = p
	case PacketTypeSetstat:
		p := &SetstatPacket{RequestID: requestID}
		pkt = p
	case PacketTypeFsetstat:
		p := &FsetstatPacket{RequestID: requestID}
		pkt = p
	case PacketTypeOpendir:
		p := &OpendirPacket{RequestID: requestID}
		pkt = p
	case PacketTypeReaddir:
		p := &ReaddirPacket{RequestID: requestID}
		pkt = p
	case PacketTypeRemove:
		p := &RemovePacket{RequestID: requestID}
		pkt = p
	case PacketTypeMkdir:
		p := &MkdirPacket{RequestID: requestID}
		pkt = p
	case PacketTypeRmdir:
		p := &RmdirPacket{RequestID: requestID}
		pkt = p
	case PacketTypeRealpath:
		p := &RealpathPacket{RequestID: requestID}
		pkt = p
	case PacketTypeRename:
		p := &RenamePacket{RequestID: requestID}
		pkt = p
	case PacketTypeReadlink:
		p := &ReadlinkPacket{RequestID: requestID}
		pkt = p
	case PacketTypeSymlink:
		p := &SymlinkPacket{RequestID: requestID}
		pkt = p
	case PacketTypeExtended:
		p := &ExtendedPacket{RequestID: requestID}
		pkt = p
	default:
		return nil, requestID, fmt.Errorf("sftp: unsupported packet type %s", typ)
	}

	if err := pkt.UnmarshalPacketBody(buf); err != nil {
		return nil, requestID, err
	}

	return pkt, requestID, nil
}
