package contextBuffer

import (
	"bytes"
	"encoding/binary"

	"github.com/Layr-Labs/txcontext/pkg/accountStore"
	"github.com/Layr-Labs/txcontext/pkg/transition"
	"github.com/Layr-Labs/txcontext/pkg/types"
	"github.com/pkg/errors"
)

// Account layout:
//
//	[discriminator:8][payer:32][associated_root:32][payload_len:u32][payload]
const (
	DiscriminatorLength = 8

	payerOffset      = DiscriminatorLength
	rootOffset       = payerOffset + types.PubkeyLength
	payloadLenOffset = rootOffset + types.PubkeyLength

	HeaderSize = payloadLenOffset + 4
)

var Discriminator = [DiscriminatorLength]byte{'t', 'x', 'c', 't', 'x', 'b', 'u', 'f'}

type State int

const (
	State_Empty State = iota
	State_Claimed
	State_Invalid
)

func (s State) String() string {
	switch s {
	case State_Empty:
		return "empty"
	case State_Claimed:
		return "claimed"
	default:
		return "invalid"
	}
}

// Buffer is the decoded form of a context buffer account.
type Buffer struct {
	Key            types.Pubkey
	Payer          types.Pubkey
	AssociatedRoot types.Pubkey
	Payload        *transition.Payload
}

func (b *Buffer) IsEmpty() bool {
	return b.Payload.IsEmpty()
}

// State derives the lifecycle state from the payer and payload. A payer with no
// payload, or a payload with no payer, is Invalid.
func (b *Buffer) State() State {
	switch {
	case b.Payer.IsZero() && b.IsEmpty():
		return State_Empty
	case !b.Payer.IsZero() && !b.IsEmpty():
		return State_Claimed
	default:
		return State_Invalid
	}
}

// Clear drops the claim and the stored payload.
func (b *Buffer) Clear() {
	b.Payer = types.Pubkey{}
	b.Payload = transition.NewPayload()
}

type InitParams struct {
	AssociatedRoot types.Pubkey
}

// InitBufferAccount writes an empty buffer bound to params.AssociatedRoot into
// acct. A fresh account must have a zeroed discriminator. With reinit the
// account must already be a buffer; it is rebound and emptied.
func InitBufferAccount(acct *accountStore.Account, programID types.Pubkey, params *InitParams, reinit bool) (*Buffer, error) {
	if acct.Owner != programID {
		return nil, errors.Wrapf(ErrInvalidBufferOwner, "owner %s", acct.Owner)
	}
	if len(acct.Data) < HeaderSize {
		return nil, errors.Wrapf(ErrBufferCapacityExceeded, "account holds %d bytes, header needs %d", len(acct.Data), HeaderSize)
	}
	disc := acct.Data[:DiscriminatorLength]
	if reinit {
		if !bytes.Equal(disc, Discriminator[:]) {
			return nil, errors.Wrap(ErrInvalidBufferDiscriminator, "re-init of an account that is not a buffer")
		}
	} else if !bytes.Equal(disc, make([]byte, DiscriminatorLength)) {
		return nil, errors.Wrap(ErrInvalidBufferDiscriminator, "account is already initialized")
	}

	buf := &Buffer{
		Key:            acct.Key,
		AssociatedRoot: params.AssociatedRoot,
		Payload:        transition.NewPayload(),
	}
	if err := buf.Store(acct); err != nil {
		return nil, err
	}
	return buf, nil
}

// NewBufferAccount returns a zeroed account of the given capacity owned by
// programID, ready for InitBufferAccount.
func NewBufferAccount(key types.Pubkey, programID types.Pubkey, capacity int) *accountStore.Account {
	return &accountStore.Account{
		Key:   key,
		Owner: programID,
		Data:  make([]byte, capacity),
	}
}

// LoadBuffer decodes the buffer held by acct.
func LoadBuffer(acct *accountStore.Account, programID types.Pubkey) (*Buffer, error) {
	if acct.Owner != programID {
		return nil, errors.Wrapf(ErrInvalidBufferOwner, "owner %s", acct.Owner)
	}
	if len(acct.Data) < HeaderSize || !bytes.Equal(acct.Data[:DiscriminatorLength], Discriminator[:]) {
		return nil, ErrInvalidBufferDiscriminator
	}

	buf := &Buffer{Key: acct.Key}
	copy(buf.Payer[:], acct.Data[payerOffset:rootOffset])
	copy(buf.AssociatedRoot[:], acct.Data[rootOffset:payloadLenOffset])

	payloadLen := int(binary.LittleEndian.Uint32(acct.Data[payloadLenOffset:HeaderSize]))
	if payloadLen > len(acct.Data)-HeaderSize {
		return nil, errors.Wrapf(ErrBufferCorrupt, "payload length %d exceeds account size %d", payloadLen, len(acct.Data))
	}
	payload, err := transition.DecodeEntries(acct.Data[HeaderSize : HeaderSize+payloadLen])
	if err != nil {
		return nil, errors.Wrapf(ErrBufferCorrupt, "%v", err)
	}
	buf.Payload = payload
	return buf, nil
}

// Store encodes the buffer into acct. The account is left untouched when the
// encoding does not fit.
func (b *Buffer) Store(acct *accountStore.Account) error {
	var encoded []byte
	if !b.IsEmpty() {
		encoded = transition.EncodeEntries(b.Payload)
	}
	if HeaderSize+len(encoded) > len(acct.Data) {
		return errors.Wrapf(ErrBufferCapacityExceeded, "need %d bytes, account holds %d", HeaderSize+len(encoded), len(acct.Data))
	}

	data := acct.Data
	copy(data, Discriminator[:])
	copy(data[payerOffset:], b.Payer[:])
	copy(data[rootOffset:], b.AssociatedRoot[:])
	binary.LittleEndian.PutUint32(data[payloadLenOffset:], uint32(len(encoded)))
	n := copy(data[HeaderSize:], encoded)
	clear(data[HeaderSize+n:])
	return nil
}
