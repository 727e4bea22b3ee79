// Package indexTree reads the leading type tag of index structure accounts and
// resolves the root an account slot ultimately refers to.
package indexTree

import (
	"bytes"

	"github.com/Layr-Labs/txcontext/pkg/accountStore"
	"github.com/Layr-Labs/txcontext/pkg/types"
	"github.com/pkg/errors"
)

const TagLength = 8

type Kind int

const (
	Kind_Unknown Kind = iota
	Kind_Raw
	Kind_Wrapper
)

func (k Kind) String() string {
	switch k {
	case Kind_Raw:
		return "raw"
	case Kind_Wrapper:
		return "wrapper"
	default:
		return "unknown"
	}
}

var (
	Tag_StateTree  = [TagLength]byte{'B', 'a', 't', 'c', 'h', 'M', 'k', 'a'}
	Tag_QueueWrap  = [TagLength]byte{'q', 'u', 'e', 'u', 'e', 'a', 'c', 'c'}
	Tag_LegacyTree = [TagLength]byte{22, 20, 149, 218, 74, 204, 128, 166}
)

// wrapper layout: [tag:8][owner:32][associated_root:32]
const (
	wrapperOwnerOffset = TagLength
	wrapperRootOffset  = wrapperOwnerOffset + types.PubkeyLength
	WrapperMinLength   = wrapperRootOffset + types.PubkeyLength
)

var (
	ErrSlotOutOfRange   = errors.New("account slot out of range")
	ErrMalformedWrapper = errors.New("queue wrapper account is too short")
)

// ProbeTag classifies account data by its first TagLength bytes.
func ProbeTag(data []byte) Kind {
	if len(data) < TagLength {
		return Kind_Unknown
	}
	tag := data[:TagLength]
	switch {
	case bytes.Equal(tag, Tag_QueueWrap[:]):
		return Kind_Wrapper
	case bytes.Equal(tag, Tag_StateTree[:]), bytes.Equal(tag, Tag_LegacyTree[:]):
		return Kind_Raw
	default:
		return Kind_Unknown
	}
}

// ReadWrapperRoot returns the backing root recorded in a queue wrapper.
func ReadWrapperRoot(data []byte) (types.Pubkey, error) {
	var root types.Pubkey
	if ProbeTag(data) != Kind_Wrapper {
		return root, errors.New("account is not a queue wrapper")
	}
	if len(data) < WrapperMinLength {
		return root, errors.Wrapf(ErrMalformedWrapper, "length %d", len(data))
	}
	copy(root[:], data[wrapperRootOffset:WrapperMinLength])
	return root, nil
}

func NewWrapperAccountData(owner types.Pubkey, root types.Pubkey) []byte {
	data := make([]byte, WrapperMinLength)
	copy(data, Tag_QueueWrap[:])
	copy(data[wrapperOwnerOffset:], owner[:])
	copy(data[wrapperRootOffset:], root[:])
	return data
}

// NewStateTreeAccountData returns tagged raw tree data padded to size bytes.
func NewStateTreeAccountData(size int) []byte {
	if size < TagLength {
		size = TagLength
	}
	data := make([]byte, size)
	copy(data, Tag_StateTree[:])
	return data
}

// Accessor resolves slot indexes against the caller supplied account list.
type Accessor struct{}

func NewAccessor() *Accessor {
	return &Accessor{}
}

func (a *Accessor) ResolveSlot(accounts []*accountStore.Account, slot uint8) (*accountStore.Account, error) {
	if int(slot) >= len(accounts) || accounts[slot] == nil {
		return nil, errors.Wrapf(ErrSlotOutOfRange, "slot %d, %d accounts", slot, len(accounts))
	}
	return accounts[slot], nil
}

// BackingRoot returns the root a queue wrapper points at, or the account's own
// key for any other account.
func (a *Accessor) BackingRoot(acct *accountStore.Account) (types.Pubkey, error) {
	if ProbeTag(acct.Data) == Kind_Wrapper {
		return ReadWrapperRoot(acct.Data)
	}
	return acct.Key, nil
}
