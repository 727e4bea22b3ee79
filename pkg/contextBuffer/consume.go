package contextBuffer

import (
	"github.com/Layr-Labs/txcontext/pkg/transition"
	"github.com/Layr-Labs/txcontext/pkg/types"
)

type ConsumeResult struct {
	// ExtraSlots is the number of leading accounts, the buffer itself, that
	// downstream index bookkeeping must skip.
	ExtraSlots int
	Payload    *transition.Payload
	// Snapshot holds the outputs the buffer carried before it was drained.
	Snapshot []*transition.OutputAccount
}

// Consume merges the buffered entries in front of payload and drains buf. Only
// a Claimed buffer can be consumed; buf is left as is on error.
func Consume(buf *Buffer, payer types.Pubkey, payload *transition.Payload) (*ConsumeResult, error) {
	if buf.IsEmpty() {
		return nil, ErrContextEmpty
	}
	if buf.State() != State_Claimed || payer.IsZero() || buf.Payer != payer {
		return nil, ErrFeePayerMismatch
	}

	snapshot := make([]*transition.OutputAccount, 0, len(buf.Payload.Outputs))
	for _, out := range buf.Payload.Outputs {
		snapshot = append(snapshot, out.Clone())
	}
	merged, err := payload.Combine(buf.Payload)
	if err != nil {
		return nil, err
	}
	buf.Clear()

	return &ConsumeResult{
		ExtraSlots: 1,
		Payload:    merged,
		Snapshot:   snapshot,
	}, nil
}
