package wire

// SSH_FXF_* open flags, from draft-ietf-secsh-filexfer-02 section 6.3.
const (
	FlagRead      = 1 << iota // SSH_FXF_READ
	FlagWrite                 // SSH_FXF_WRITE
	FlagAppend                // SSH_FXF_APPEND
	FlagCreate                // SSH_FXF_CREAT
	FlagTruncate              // SSH_FXF_TRUNC
	FlagExclusive             // SSH_FXF_EXCL
)

// InitPacket defines the SSH_FXP_INIT packet.
type InitPacket struct {
	Version uint32
}

// UnmarshalPacketBody unmarshals the packet body from the given Buffer.
func (p *InitPacket) UnmarshalPacketBody(buf *Buffer) (err error) {
	p.Version, err = buf.ConsumeUint32()
	return err
}

// VersionPacket defines the SSH_FXP_VERSION packet.
type VersionPacket struct {
	Version uint32
}

// MarshalPacket returns p as a two-part binary encoding of p.
func (p *VersionPacket) MarshalPacket() (header, payload []byte, err error) {
	size := 4 // uint32(version)

	b := NewBuffer(make([]byte, 4, 4+1+size))
	b.AppendUint8(uint8(PacketTypeVersion))
	b.AppendUint32(p.Version)
	b.PutLength(1 + size)

	return b.Bytes(), nil, nil
}

// MarshalBinary returns p as the binary encoding of p.
func (p *VersionPacket) MarshalBinary() ([]byte, error) {
	return ComposePacket(p.MarshalPacket())
}

// OpenPacket defines the SSH_FXP_OPEN packet.
type OpenPacket struct {
	RequestID uint32
	Filename  string
	PFlags    uint32
	Attrs     Attributes
}

// UnmarshalPacketBody unmarshals the packet body from the given Buffer.
// It is assumed that the uint32(request-id) has already been consumed.
func (p *OpenPacket) UnmarshalPacketBody(buf *Buffer) (err error) {
	if p.Filename, err = buf.ConsumeString(); err != nil {
		return err
	}

	if p.PFlags, err = buf.ConsumeUint32(); err != nil {
		return err
	}

	return p.Attrs.UnmarshalFrom(buf)
}

// ClosePacket defines the SSH_FXP_CLOSE packet.
type ClosePacket struct {
	RequestID uint32
	Handle    string
}

// UnmarshalPacketBody unmarshals the packet body from the given Buffer.
func (p *ClosePacket) UnmarshalPacketBody(buf *Buffer) (err error) {
	p.Handle, err = buf.ConsumeString()
	return err
}

// ReadPacket defines the SSH_FXP_READ packet.
type ReadPacket struct {
	RequestID uint32
	Handle    string
	Offset    uint64
	Length    uint32
}

// UnmarshalPacketBody unmarshals the packet body from the given Buffer.
func (p *ReadPacket) UnmarshalPacketBody(buf *Buffer) (err error) {
	if p.Handle, err = buf.ConsumeString(); err != nil {
		return err
	}

	if p.Offset, err = buf.ConsumeUint64(); err != nil {
		return err
	}

	p.Length, err = buf.ConsumeUint32()
	return err
}

// WritePacket defines the SSH_FXP_WRITE packet.
type WritePacket struct {
	RequestID uint32
	Handle    string
	Offset    uint64
	Data      []byte
}

// UnmarshalPacketBody unmarshals the packet body from the given Buffer.
func (p *WritePacket) UnmarshalPacketBody(buf *Buffer) (err error) {
	if p.Handle, err = buf.ConsumeString(); err != nil {
		return err
	}

	if p.Offset, err = buf.ConsumeUint64(); err != nil {
		return err
	}

	p.Data, err = buf.ConsumeByteSlice()
	return err
}

// LstatPacket defines the SSH_FXP_LSTAT packet.
type LstatPacket struct {
	RequestID uint32
	Path      string
}

// UnmarshalPacketBody unmarshals the packet body from the given Buffer.
func (p *LstatPacket) UnmarshalPacketBody(buf *Buffer) (err error) {
	p.Path, err = buf.ConsumeString()
	return err
}

// StatPacket defines the SSH_FXP_STAT packet.
type StatPacket struct {
	RequestID uint32
	Path      string
}

// UnmarshalPacketBody unmarshals the packet body from the given Buffer.
func (p *StatPacket) UnmarshalPacketBody(buf *Buffer) (err error) {
	p.Path, err = buf.ConsumeString()
	return err
}

// FstatPacket defines the SSH_FXP_FSTAT packet.
type FstatPacket struct {
	RequestID uint32
	Handle    string
}

// UnmarshalPacketBody unmarshals the packet body from the given Buffer.
func (p *FstatPacket) UnmarshalPacketBody(buf *Buffer) (err error) {
	p.Handle, err = buf.ConsumeString()
	return err
}

// SetstatPacket defines the SSH_FXP_SETSTAT packet.
type SetstatPacket struct {
	RequestID uint32
	Path      string
	Attrs     Attributes
}

// UnmarshalPacketBody unmarshals the packet body from the given Buffer.
func (p *SetstatPacket) UnmarshalPacketBody(buf *Buffer) (err error) {
	if p.Path, err = buf.ConsumeString(); err != nil {
		return err
	}

	return p.Attrs.UnmarshalFrom(buf)
}

// FsetstatPacket defines the SSH_FXP_FSETSTAT packet.
type FsetstatPacket struct {
	RequestID uint32
	Handle    string
	Attrs     Attributes
}

// UnmarshalPacketBody unmarshals the packet body from the given Buffer.
func (p *FsetstatPacket) UnmarshalPacketBody(buf *Buffer) (err error) {
	if p.Handle, err = buf.ConsumeString(); err != nil {
		return err
	}

	return p.Attrs.UnmarshalFrom(buf)
}

// OpendirPacket defines the SSH_FXP_OPENDIR packet.
type OpendirPacket struct {
	RequestID uint32
	Path      string
}

// UnmarshalPacketBody unmarshals the packet body from the given Buffer.
func (p *OpendirPacket) UnmarshalPacketBody(buf *Buffer) (err error) {
	p.Path, err = buf.ConsumeString()
	return err
}

// ReaddirPacket defines the SSH_FXP_READDIR packet.
type ReaddirPacket struct {
	RequestID uint32
	Handle    string
}

// UnmarshalPacketBody unmarshals the packet body from the given Buffer.
func (p *ReaddirPacket) UnmarshalPacketBody(buf *Buffer) (err error) {
	p.Handle, err = buf.ConsumeString()
	return err
}

// RemovePacket defines the SSH_FXP_REMOVE packet.
type RemovePacket struct {
	RequestID uint32
	Path      string
}

// UnmarshalPacketBody unmarshals the packet body from the given Buffer.
func (p *RemovePacket) UnmarshalPacketBody(buf *Buffer) (err error) {
	p.Path, err = buf.ConsumeString()
	return err
}

// MkdirPacket defines the SSH_FXP_MKDIR packet.
type MkdirPacket struct {
	RequestID uint32
	Path      string
	Attrs     Attributes
}

// UnmarshalPacketBody unmarshals the packet body from the given Buffer.
func (p *MkdirPacket) UnmarshalPacketBody(buf *Buffer) (err error) {
	if p.Path, err = buf.ConsumeString(); err != nil {
		return err
	}

	return p.Attrs.UnmarshalFrom(buf)
}

// RmdirPacket defines the SSH_FXP_RMDIR packet.
type RmdirPacket struct {
	RequestID uint32
	Path      string
}

// UnmarshalPacketBody unmarshals the packet body from the given Buffer.
func (p *RmdirPacket) UnmarshalPacketBody(buf *Buffer) (err error) {
	p.Path, err = buf.ConsumeString()
	return err
}

// RealpathPacket defines the SSH_FXP_REALPATH packet.
type RealpathPacket struct {
	RequestID uint32
	Path      string
}

// UnmarshalPacketBody unmarshals the packet body from the given Buffer.
func (p *RealpathPacket) UnmarshalPacketBody(buf *Buffer) (err error) {
	p.Path, err = buf.ConsumeString()
	return err
}

// RenamePacket defines the SSH_FXP_RENAME packet.
type RenamePacket struct {
	RequestID uint32
	OldPath   string
	NewPath   string
}

// UnmarshalPacketBody unmarshals the packet body from the given Buffer.
func (p *RenamePacket) UnmarshalPacketBody(buf *Buffer) (err error) {
	if p.OldPath, err = buf.ConsumeString(); err != nil {
		return err
	}

	p.NewPath, err = buf.ConsumeString()
	return err
}

// ReadlinkPacket defines the SSH_FXP_READLINK packet.
type ReadlinkPacket struct {
	RequestID uint32
	Path      string
}

// UnmarshalPacketBody unmarshals the packet body from the given Buffer.
func (p *ReadlinkPacket) UnmarshalPacketBody(buf *Buffer) (err error) {
	p.Path, err = buf.ConsumeString()
	return err
}

// SymlinkPacket defines the SSH_FXP_SYMLINK packet.
//
// The wire order of the two path arguments was reversed by mistake when the
// protocol was first implemented, and the mistake shipped before anyone
// noticed. Every server still on the wire reads target-then-link-path; we
// read it the same way here rather than "fix" an interoperable bug.
type SymlinkPacket struct {
	RequestID  uint32
	LinkPath   string
	TargetPath string
}

// UnmarshalPacketBody unmarshals the packet body from the given Buffer.
func (p *SymlinkPacket) UnmarshalPacketBody(buf *Buffer) (err error) {
	if p.TargetPath, err = buf.ConsumeString(); err != nil {
		return err
	}

	p.LinkPath, err = buf.ConsumeString()
	return err
}

// ExtendedPacket defines the SSH_FXP_EXTENDED packet.
//
// Data carries the raw, not-yet-decoded remainder of the packet body; each
// extended sub-message decodes it for itself (see handlers_extended.go in
// the parent package).
type ExtendedPacket struct {
	RequestID       uint32
	ExtendedRequest string
	Data            []byte
}

// UnmarshalPacketBody unmarshals the packet body from the given Buffer.
func (p *ExtendedPacket) UnmarshalPacketBody(buf *Buffer) (err error) {
	if p.ExtendedRequest, err = buf.ConsumeString(); err != nil {
		return err
	}

	p.Data = buf.Bytes()
	return nil
}
