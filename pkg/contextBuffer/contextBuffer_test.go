package contextBuffer

import (
	"testing"

	"github.com/Layr-Labs/txcontext/internal/logger"
	"github.com/Layr-Labs/txcontext/pkg/accountStore"
	"github.com/Layr-Labs/txcontext/pkg/indexTree"
	"github.com/Layr-Labs/txcontext/pkg/transition"
	"github.com/Layr-Labs/txcontext/pkg/types"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testCapacity = 20000

type testEnv struct {
	programID  types.Pubkey
	tree       *accountStore.Account
	bufferAcct *accountStore.Account
	processor  *Processor
	logger     *zap.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	l, _ := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	programID := types.NewUniquePubkey()

	tree := &accountStore.Account{
		Key:   types.NewUniquePubkey(),
		Owner: types.NewUniquePubkey(),
		Data:  indexTree.NewStateTreeAccountData(64),
	}

	bufferAcct := NewBufferAccount(types.NewUniquePubkey(), programID, testCapacity)
	_, err := InitBufferAccount(bufferAcct, programID, &InitParams{AssociatedRoot: tree.Key}, false)
	require.Nil(t, err)

	return &testEnv{
		programID:  programID,
		tree:       tree,
		bufferAcct: bufferAcct,
		processor:  NewProcessor(programID, indexTree.NewAccessor(), l),
		logger:     l,
	}
}

func (e *testEnv) accounts() []*accountStore.Account {
	return []*accountStore.Account{e.tree}
}

func (e *testEnv) load(t *testing.T) *Buffer {
	buf, err := LoadBuffer(e.bufferAcct, e.programID)
	require.Nil(t, err)
	return buf
}

// newTestPayload returns a payload with one input and one output, both valued
// at value and pointing at slot 0.
func newTestPayload(first bool, accumulate bool, value uint64) *transition.Payload {
	addr := types.NewUniquePubkey()
	p := transition.NewPayload()
	p.Inputs = append(p.Inputs, &transition.InputAccount{
		Owner: types.NewUniquePubkey(),
		Value: value,
		MerkleContext: transition.MerkleContext{
			TreeSlot:  0,
			LeafIndex: uint32(value),
		},
	})
	p.Outputs = append(p.Outputs, &transition.OutputAccount{
		Owner:    types.NewUniquePubkey(),
		Value:    value,
		Address:  &addr,
		TreeSlot: 0,
		Content: &transition.Content{
			Discriminator: [8]byte{byte(value)},
			Hash:          types.Keccak256([]byte{byte(value)}),
			Data:          []byte{byte(value), 1, 2, 3},
		},
	})
	p.Descriptor = &transition.Descriptor{
		FirstAccumulate:   first,
		StillAccumulating: accumulate,
	}
	return p
}

func outputsOnly(first bool, accumulate bool, value uint64) *transition.Payload {
	p := newTestPayload(first, accumulate, value)
	p.Inputs = p.Inputs[:0]
	return p
}
