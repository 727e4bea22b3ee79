package transition

import (
	"encoding/binary"

	"github.com/Layr-Labs/txcontext/pkg/types"
	"github.com/pkg/errors"
)

var (
	ErrTruncated     = errors.New("encoded payload is truncated")
	ErrTrailingBytes = errors.New("trailing bytes after encoded payload")
)

const (
	outputFixedSize  = 1 + types.PubkeyLength + 8 + 1 + 1
	contentFixedSize = 8 + types.HashLength + 4
)

// OutputRecordSize is the exact number of bytes PutOutputRecord writes for o.
func OutputRecordSize(o *OutputAccount) int {
	size := outputFixedSize
	if o.Address != nil {
		size += types.PubkeyLength
	}
	if o.Content != nil {
		size += contentFixedSize + len(o.Content.Data)
	}
	return size
}

// PutOutputRecord writes o into dst using the fixed output layout:
//
//	address_present:u8 [address:32] owner:32 value:u64 slot:u8
//	content_present:u8 [discriminator:8 hash:32 len:u32 data]
//
// dst must be at least OutputRecordSize(o) bytes long. It returns the number of
// bytes written.
func PutOutputRecord(dst []byte, o *OutputAccount) int {
	offset := putAddress(dst, o.Address)
	offset += copy(dst[offset:], o.Owner[:])
	binary.LittleEndian.PutUint64(dst[offset:], o.Value)
	offset += 8
	dst[offset] = o.TreeSlot
	offset++
	offset += putContent(dst[offset:], o.Content)
	return offset
}

// ReadOutputRecord decodes one record written by PutOutputRecord.
func ReadOutputRecord(src []byte) (*OutputAccount, int, error) {
	r := &reader{buf: src}
	o := r.output()
	if r.err != nil {
		return nil, 0, r.err
	}
	return o, r.offset, nil
}

// DecodeOutputRegion decodes a count prefixed list of output records.
func DecodeOutputRegion(src []byte) ([]*OutputAccount, int, error) {
	r := &reader{buf: src}
	count := r.u32()
	outputs := make([]*OutputAccount, 0)
	for i := uint32(0); i < count && r.err == nil; i++ {
		outputs = append(outputs, r.output())
	}
	if r.err != nil {
		return nil, 0, r.err
	}
	return outputs, r.offset, nil
}

func putAddress(dst []byte, address *types.Pubkey) int {
	if address == nil {
		dst[0] = 0
		return 1
	}
	dst[0] = 1
	copy(dst[1:], address[:])
	return 1 + types.PubkeyLength
}

func putContent(dst []byte, c *Content) int {
	if c == nil {
		dst[0] = 0
		return 1
	}
	dst[0] = 1
	offset := 1
	offset += copy(dst[offset:], c.Discriminator[:])
	offset += copy(dst[offset:], c.Hash[:])
	binary.LittleEndian.PutUint32(dst[offset:], uint32(len(c.Data)))
	offset += 4
	offset += copy(dst[offset:], c.Data)
	return offset
}

// EncodeEntries serializes the list entries of p. Extras and the descriptor are
// not part of the encoding.
func EncodeEntries(p *Payload) []byte {
	buf := make([]byte, 0, 256)

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(p.Inputs)))
	for _, in := range p.Inputs {
		buf = appendInput(buf, in)
	}

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(p.Outputs)))
	for _, o := range p.Outputs {
		start := len(buf)
		buf = append(buf, make([]byte, OutputRecordSize(o))...)
		PutOutputRecord(buf[start:], o)
	}

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(p.NewAddresses)))
	for _, na := range p.NewAddresses {
		buf = append(buf, na.Seed[:]...)
		buf = append(buf, na.AddressQueueSlot, na.AddressTreeSlot)
		buf = binary.LittleEndian.AppendUint16(buf, na.AddressTreeRootIndex)
		if na.AssignedOutputIndex != nil {
			buf = append(buf, 1, *na.AssignedOutputIndex)
		} else {
			buf = append(buf, 0)
		}
	}

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(p.ReadOnlyAddresses)))
	for _, ra := range p.ReadOnlyAddresses {
		buf = append(buf, ra.Address[:]...)
		buf = append(buf, ra.AddressTreeSlot)
		buf = binary.LittleEndian.AppendUint16(buf, ra.AddressTreeRootIndex)
	}

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(p.ReadOnlyAccounts)))
	for _, ra := range p.ReadOnlyAccounts {
		buf = append(buf, ra.AccountHash[:]...)
		buf = appendMerkleContext(buf, ra.MerkleContext)
		buf = binary.LittleEndian.AppendUint16(buf, ra.RootIndex)
	}
	return buf
}

func appendInput(buf []byte, in *InputAccount) []byte {
	if in.Address != nil {
		buf = append(buf, 1)
		buf = append(buf, in.Address[:]...)
	} else {
		buf = append(buf, 0)
	}
	buf = append(buf, in.Owner[:]...)
	buf = binary.LittleEndian.AppendUint64(buf, in.Value)
	if in.Content != nil {
		buf = append(buf, 1)
		buf = append(buf, in.Content.Discriminator[:]...)
		buf = append(buf, in.Content.Hash[:]...)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(in.Content.Data)))
		buf = append(buf, in.Content.Data...)
	} else {
		buf = append(buf, 0)
	}
	buf = appendMerkleContext(buf, in.MerkleContext)
	buf = binary.LittleEndian.AppendUint16(buf, in.RootIndex)
	return append(buf, boolByte(in.ReadOnly))
}

func appendMerkleContext(buf []byte, mc MerkleContext) []byte {
	buf = append(buf, mc.TreeSlot, mc.QueueSlot)
	buf = binary.LittleEndian.AppendUint32(buf, mc.LeafIndex)
	return append(buf, boolByte(mc.ProveByIndex))
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// DecodeEntries is the inverse of EncodeEntries. An empty input decodes to an
// empty payload.
func DecodeEntries(src []byte) (*Payload, error) {
	p := NewPayload()
	if len(src) == 0 {
		return p, nil
	}
	r := &reader{buf: src}

	for i, n := uint32(0), r.u32(); i < n && r.err == nil; i++ {
		p.Inputs = append(p.Inputs, r.input())
	}
	for i, n := uint32(0), r.u32(); i < n && r.err == nil; i++ {
		p.Outputs = append(p.Outputs, r.output())
	}
	for i, n := uint32(0), r.u32(); i < n && r.err == nil; i++ {
		na := &NewAddressParams{}
		copy(na.Seed[:], r.bytes(32))
		na.AddressQueueSlot = r.u8()
		na.AddressTreeSlot = r.u8()
		na.AddressTreeRootIndex = r.u16()
		if r.u8() == 1 {
			idx := r.u8()
			na.AssignedOutputIndex = &idx
		}
		p.NewAddresses = append(p.NewAddresses, na)
	}
	for i, n := uint32(0), r.u32(); i < n && r.err == nil; i++ {
		ra := &ReadOnlyAddress{}
		copy(ra.Address[:], r.bytes(types.PubkeyLength))
		ra.AddressTreeSlot = r.u8()
		ra.AddressTreeRootIndex = r.u16()
		p.ReadOnlyAddresses = append(p.ReadOnlyAddresses, ra)
	}
	for i, n := uint32(0), r.u32(); i < n && r.err == nil; i++ {
		ra := &ReadOnlyAccount{}
		copy(ra.AccountHash[:], r.bytes(types.HashLength))
		ra.MerkleContext = r.merkleContext()
		ra.RootIndex = r.u16()
		p.ReadOnlyAccounts = append(p.ReadOnlyAccounts, ra)
	}

	if r.err != nil {
		return nil, r.err
	}
	if r.offset != len(src) {
		return nil, errors.Wrapf(ErrTrailingBytes, "%d bytes", len(src)-r.offset)
	}
	return p, nil
}

// reader consumes little endian fields and latches the first error.
type reader struct {
	buf    []byte
	offset int
	err    error
}

func (r *reader) bytes(n int) []byte {
	if r.err != nil {
		return make([]byte, min(n, 64))
	}
	if r.offset+n > len(r.buf) {
		r.err = errors.Wrapf(ErrTruncated, "need %d bytes at offset %d, have %d", n, r.offset, len(r.buf))
		return make([]byte, min(n, 64))
	}
	b := r.buf[r.offset : r.offset+n]
	r.offset += n
	return b
}

func (r *reader) u8() uint8 {
	return r.bytes(1)[0]
}

func (r *reader) u16() uint16 {
	return binary.LittleEndian.Uint16(r.bytes(2))
}

func (r *reader) u32() uint32 {
	return binary.LittleEndian.Uint32(r.bytes(4))
}

func (r *reader) u64() uint64 {
	return binary.LittleEndian.Uint64(r.bytes(8))
}

func (r *reader) address() *types.Pubkey {
	if r.u8() != 1 {
		return nil
	}
	var a types.Pubkey
	copy(a[:], r.bytes(types.PubkeyLength))
	return &a
}

func (r *reader) content() *Content {
	if r.u8() != 1 {
		return nil
	}
	c := &Content{}
	copy(c.Discriminator[:], r.bytes(8))
	copy(c.Hash[:], r.bytes(types.HashLength))
	n := int(r.u32())
	c.Data = append([]byte(nil), r.bytes(n)...)
	return c
}

func (r *reader) merkleContext() MerkleContext {
	return MerkleContext{
		TreeSlot:     r.u8(),
		QueueSlot:    r.u8(),
		LeafIndex:    r.u32(),
		ProveByIndex: r.u8() == 1,
	}
}

func (r *reader) input() *InputAccount {
	in := &InputAccount{}
	in.Address = r.address()
	copy(in.Owner[:], r.bytes(types.PubkeyLength))
	in.Value = r.u64()
	in.Content = r.content()
	in.MerkleContext = r.merkleContext()
	in.RootIndex = r.u16()
	in.ReadOnly = r.u8() == 1
	return in
}

func (r *reader) output() *OutputAccount {
	o := &OutputAccount{}
	o.Address = r.address()
	copy(o.Owner[:], r.bytes(types.PubkeyLength))
	o.Value = r.u64()
	o.TreeSlot = r.u8()
	o.Content = r.content()
	return o
}
