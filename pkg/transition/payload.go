package transition

import (
	"math"

	"github.com/Layr-Labs/txcontext/pkg/types"
	"github.com/pkg/errors"
)

var ErrOutputIndexOverflow = errors.New("assigned output index does not fit the merged output list")

// CompressedProof is the opaque validity proof attached to a terminal call.
type CompressedProof struct {
	A [32]byte `json:"a"`
	B [64]byte `json:"b"`
	C [32]byte `json:"c"`
}

// Content is the optional data section of a compressed record.
type Content struct {
	Discriminator [8]byte    `json:"discriminator"`
	Hash          types.Hash `json:"hash"`
	Data          []byte     `json:"data"`
}

func (c *Content) Clone() *Content {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Data = append([]byte(nil), c.Data...)
	return &cp
}

// MerkleContext locates an existing record inside an index structure. Slots
// index into the caller supplied account list.
type MerkleContext struct {
	TreeSlot     uint8  `json:"treeSlot"`
	QueueSlot    uint8  `json:"queueSlot"`
	LeafIndex    uint32 `json:"leafIndex"`
	ProveByIndex bool   `json:"proveByIndex"`
}

type InputAccount struct {
	Owner         types.Pubkey  `json:"owner"`
	Value         uint64        `json:"value"`
	Address       *types.Pubkey `json:"address,omitempty"`
	Content       *Content      `json:"content,omitempty"`
	MerkleContext MerkleContext `json:"merkleContext"`
	RootIndex     uint16        `json:"rootIndex"`
	ReadOnly      bool          `json:"readOnly"`
}

type OutputAccount struct {
	Owner    types.Pubkey  `json:"owner"`
	Value    uint64        `json:"value"`
	Address  *types.Pubkey `json:"address,omitempty"`
	Content  *Content      `json:"content,omitempty"`
	TreeSlot uint8         `json:"treeSlot"`
}

// NewAddressParams requests creation of a new address. AssignedOutputIndex, if
// set, points into the Outputs list of the payload that carries it.
type NewAddressParams struct {
	Seed                 [32]byte `json:"seed"`
	AddressQueueSlot     uint8    `json:"addressQueueSlot"`
	AddressTreeSlot      uint8    `json:"addressTreeSlot"`
	AddressTreeRootIndex uint16   `json:"addressTreeRootIndex"`
	AssignedOutputIndex  *uint8   `json:"assignedOutputIndex,omitempty"`
}

type ReadOnlyAddress struct {
	Address              types.Pubkey `json:"address"`
	AddressTreeSlot      uint8        `json:"addressTreeSlot"`
	AddressTreeRootIndex uint16       `json:"addressTreeRootIndex"`
}

type ReadOnlyAccount struct {
	AccountHash   types.Hash    `json:"accountHash"`
	MerkleContext MerkleContext `json:"merkleContext"`
	RootIndex     uint16        `json:"rootIndex"`
}

// Descriptor tells the processor what to do with a payload that takes part in
// a multi-call sequence.
//
//   - StillAccumulating: write into the buffer, do not consume.
//   - FirstAccumulate: start a new sequence, wiping whatever the buffer holds.
//   - both false: consume the buffer.
type Descriptor struct {
	FirstAccumulate   bool  `json:"firstAccumulate"`
	StillAccumulating bool  `json:"stillAccumulating"`
	BufferSlot        uint8 `json:"bufferSlot"`
}

func (d *Descriptor) IsAccumulate() bool {
	return d.FirstAccumulate || d.StillAccumulating
}

// Payload is one nested call's contribution to a state transition.
type Payload struct {
	Inputs            []*InputAccount     `json:"inputs"`
	Outputs           []*OutputAccount    `json:"outputs"`
	NewAddresses      []*NewAddressParams `json:"newAddresses"`
	ReadOnlyAddresses []*ReadOnlyAddress  `json:"readOnlyAddresses"`
	ReadOnlyAccounts  []*ReadOnlyAccount  `json:"readOnlyAccounts"`

	Proof                     *CompressedProof `json:"proof,omitempty"`
	RelayFee                  *uint64          `json:"relayFee,omitempty"`
	CompressOrDecompressValue *uint64          `json:"compressOrDecompressValue,omitempty"`
	IsCompress                bool             `json:"isCompress"`

	Descriptor *Descriptor `json:"descriptor,omitempty"`
}

func NewPayload() *Payload {
	return &Payload{
		Inputs:            make([]*InputAccount, 0),
		Outputs:           make([]*OutputAccount, 0),
		NewAddresses:      make([]*NewAddressParams, 0),
		ReadOnlyAddresses: make([]*ReadOnlyAddress, 0),
		ReadOnlyAccounts:  make([]*ReadOnlyAccount, 0),
	}
}

// IsEmpty reports whether the payload carries no entries at all. Extras such as
// the proof do not count.
func (p *Payload) IsEmpty() bool {
	if p == nil {
		return true
	}
	return len(p.Inputs) == 0 &&
		len(p.Outputs) == 0 &&
		len(p.NewAddresses) == 0 &&
		len(p.ReadOnlyAddresses) == 0 &&
		len(p.ReadOnlyAccounts) == 0
}

// Entries returns a copy holding only the list entries of the payload. This is
// the part of a payload that is allowed to live in a context buffer.
func (p *Payload) Entries() *Payload {
	out := NewPayload()
	if p == nil {
		return out
	}
	out.appendEntries(p, 0)
	return out
}

// Append adds the entries of next after the entries already held by p. p is
// left untouched when a shifted assigned output index would not fit a uint8.
func (p *Payload) Append(next *Payload) error {
	if next == nil {
		return nil
	}
	if err := checkOutputOffset(next, len(p.Outputs)); err != nil {
		return err
	}
	p.appendEntries(next, len(p.Outputs))
	return nil
}

// Combine returns a new payload with the entries of stored placed before the
// entries of p. Extras and the descriptor are taken from p.
func (p *Payload) Combine(stored *Payload) (*Payload, error) {
	merged := stored.Entries()
	if err := merged.Append(p); err != nil {
		return nil, err
	}

	merged.Proof = p.Proof
	merged.RelayFee = p.RelayFee
	merged.CompressOrDecompressValue = p.CompressOrDecompressValue
	merged.IsCompress = p.IsCompress
	merged.Descriptor = p.Descriptor
	return merged, nil
}

func checkOutputOffset(src *Payload, outputOffset int) error {
	for _, na := range src.NewAddresses {
		if na.AssignedOutputIndex == nil {
			continue
		}
		if shifted := int(*na.AssignedOutputIndex) + outputOffset; shifted > math.MaxUint8 {
			return errors.Wrapf(ErrOutputIndexOverflow, "index %d shifted by %d", *na.AssignedOutputIndex, outputOffset)
		}
	}
	return nil
}

// appendEntries copies the entries of src onto p. Assigned output indexes of
// new addresses are shifted by outputOffset so they keep pointing at the same
// output record once the lists are concatenated.
func (p *Payload) appendEntries(src *Payload, outputOffset int) {
	for _, in := range src.Inputs {
		p.Inputs = append(p.Inputs, in.Clone())
	}
	for _, out := range src.Outputs {
		p.Outputs = append(p.Outputs, out.Clone())
	}
	for _, na := range src.NewAddresses {
		cp := *na
		if na.AssignedOutputIndex != nil {
			idx := uint8(int(*na.AssignedOutputIndex) + outputOffset)
			cp.AssignedOutputIndex = &idx
		}
		p.NewAddresses = append(p.NewAddresses, &cp)
	}
	for _, ra := range src.ReadOnlyAddresses {
		cp := *ra
		p.ReadOnlyAddresses = append(p.ReadOnlyAddresses, &cp)
	}
	for _, ra := range src.ReadOnlyAccounts {
		cp := *ra
		p.ReadOnlyAccounts = append(p.ReadOnlyAccounts, &cp)
	}
}

func (in *InputAccount) Clone() *InputAccount {
	cp := *in
	cp.Address = clonePubkey(in.Address)
	cp.Content = in.Content.Clone()
	return &cp
}

func (out *OutputAccount) Clone() *OutputAccount {
	cp := *out
	cp.Address = clonePubkey(out.Address)
	cp.Content = out.Content.Clone()
	return &cp
}

func clonePubkey(p *types.Pubkey) *types.Pubkey {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}
