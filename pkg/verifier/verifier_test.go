package verifier

import (
	"context"
	"math"
	"testing"

	"github.com/Layr-Labs/txcontext/internal/logger"
	"github.com/Layr-Labs/txcontext/pkg/transition"
	"github.com/Layr-Labs/txcontext/pkg/types"
	"github.com/stretchr/testify/assert"
)

func newPayload(inputs []uint64, outputs []uint64) *transition.Payload {
	p := transition.NewPayload()
	for _, v := range inputs {
		p.Inputs = append(p.Inputs, &transition.InputAccount{Owner: types.NewUniquePubkey(), Value: v})
	}
	for _, v := range outputs {
		p.Outputs = append(p.Outputs, &transition.OutputAccount{Owner: types.NewUniquePubkey(), Value: v})
	}
	return p
}

func Test_SumCheckVerifier(t *testing.T) {
	l, _ := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	v := NewSumCheckVerifier(l)
	ctx := context.Background()

	t.Run("Should accept a balanced payload with a proof", func(t *testing.T) {
		p := newPayload([]uint64{10, 5}, []uint64{15})
		p.Proof = &transition.CompressedProof{}
		assert.Nil(t, v.Verify(ctx, p, nil))
	})
	t.Run("Should reject an unbalanced payload", func(t *testing.T) {
		p := newPayload([]uint64{10}, []uint64{11})
		p.Proof = &transition.CompressedProof{}
		err := v.Verify(ctx, p, nil)
		assert.ErrorIs(t, err, ErrSumCheckFailed)
		assert.Equal(t, "SumCheckFailed", ErrorCode(err))
	})
	t.Run("Should not overflow on large values", func(t *testing.T) {
		p := newPayload([]uint64{math.MaxUint64, math.MaxUint64}, []uint64{math.MaxUint64, math.MaxUint64})
		p.Proof = &transition.CompressedProof{}
		assert.Nil(t, v.Verify(ctx, p, nil))

		p = newPayload([]uint64{math.MaxUint64, 1}, []uint64{0})
		p.Proof = &transition.CompressedProof{}
		assert.ErrorIs(t, v.Verify(ctx, p, nil), ErrSumCheckFailed)
	})
	t.Run("Should account for compression and relay fee", func(t *testing.T) {
		value := uint64(7)
		fee := uint64(3)

		p := newPayload([]uint64{10}, nil)
		p.CompressOrDecompressValue = &value
		p.IsCompress = true
		p.RelayFee = &fee
		assert.Nil(t, SumCheck(p))

		p = newPayload(nil, []uint64{7})
		p.CompressOrDecompressValue = &value
		assert.Nil(t, SumCheck(p))
	})
	t.Run("Should ignore read-only inputs in the sum", func(t *testing.T) {
		p := newPayload([]uint64{10, 99}, []uint64{10})
		p.Inputs[1].ReadOnly = true
		assert.Nil(t, SumCheck(p))
	})
	t.Run("Should require a proof for inputs not proven by index", func(t *testing.T) {
		p := newPayload([]uint64{1}, []uint64{1})
		assert.ErrorIs(t, v.Verify(ctx, p, nil), ErrProofIsNone)

		p.Inputs[0].MerkleContext.ProveByIndex = true
		assert.Nil(t, v.Verify(ctx, p, nil))
	})
	t.Run("Should require a proof for new addresses", func(t *testing.T) {
		p := newPayload(nil, nil)
		p.NewAddresses = append(p.NewAddresses, &transition.NewAddressParams{})
		assert.ErrorIs(t, v.Verify(ctx, p, nil), ErrProofIsNone)
	})
	t.Run("Should reject a proof nobody needs", func(t *testing.T) {
		p := newPayload(nil, []uint64{0})
		p.Proof = &transition.CompressedProof{}
		assert.ErrorIs(t, v.Verify(ctx, p, nil), ErrProofIsSome)
	})
	t.Run("Should reject an empty payload", func(t *testing.T) {
		err := v.Verify(ctx, transition.NewPayload(), nil)
		assert.ErrorIs(t, err, ErrEmptyInputs)
		assert.Equal(t, ErrEmptyInputs, ErrorForCode("EmptyInputs"))
	})
	t.Run("Should accept outputs only without a proof", func(t *testing.T) {
		assert.Nil(t, v.Verify(ctx, newPayload(nil, []uint64{0}), nil))
	})
	t.Run("Should stop on a cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		assert.ErrorIs(t, v.Verify(cancelled, newPayload(nil, []uint64{0}), nil), context.Canceled)
	})
}
