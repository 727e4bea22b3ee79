package transition

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/Layr-Labs/txcontext/pkg/types"
	"github.com/wealdtech/go-merkletree/v2"
	"github.com/wealdtech/go-merkletree/v2/keccak256"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type MerkleLeafPrefix []byte

var (
	MerkleLeafPrefix_OutputCount MerkleLeafPrefix = []byte("0x00")
	MerkleLeafPrefix_Output      MerkleLeafPrefix = []byte("0x01")
)

// SlotID orders output leaves inside a transition tree.
type SlotID string

func NewSlotID(index int, hash types.Hash) SlotID {
	return SlotID(fmt.Sprintf("%08x_%s", index, hash.String()))
}

// Hash is the keccak256 of the record encoding of the output.
func (out *OutputAccount) Hash() types.Hash {
	buf := make([]byte, OutputRecordSize(out))
	PutOutputRecord(buf, out)
	return types.Keccak256(buf)
}

// MerkleizeOutputs builds a tree whose first leaf commits to the number of
// outputs followed by one leaf per output, in order.
func MerkleizeOutputs(outputs []*OutputAccount) (*merkletree.MerkleTree, error) {
	om := orderedmap.New[SlotID, []byte]()

	for i, out := range outputs {
		hash := out.Hash()
		slotID := NewSlotID(i, hash)
		if _, found := om.Get(slotID); found {
			return nil, fmt.Errorf("duplicate slotID %s", slotID)
		}
		om.Set(slotID, hash.Bytes())

		prev := om.GetPair(slotID).Prev()
		if prev != nil && prev.Key > slotID {
			om.Delete(slotID)
			return nil, errors.New("slotIDs are not in order")
		}
	}

	leaves := [][]byte{
		concat(MerkleLeafPrefix_OutputCount, binary.BigEndian.AppendUint64(nil, uint64(len(outputs)))),
	}
	for pair := om.Oldest(); pair != nil; pair = pair.Next() {
		leaves = append(leaves, concat(MerkleLeafPrefix_Output, []byte(pair.Key), pair.Value))
	}
	return merkletree.NewTree(
		merkletree.WithData(leaves),
		merkletree.WithHashType(keccak256.New()),
	)
}

// OutputsRoot is a convenience wrapper returning only the root of
// MerkleizeOutputs.
func OutputsRoot(outputs []*OutputAccount) (types.Hash, error) {
	tree, err := MerkleizeOutputs(outputs)
	if err != nil {
		return types.Hash{}, err
	}
	var root types.Hash
	copy(root[:], tree.Root())
	return root, nil
}

func concat(parts ...[]byte) []byte {
	size := 0
	for _, p := range parts {
		size += len(p)
	}
	out := make([]byte, 0, size)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
