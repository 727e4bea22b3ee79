package contextBuffer

import (
	"github.com/Layr-Labs/txcontext/pkg/transition"
	"github.com/Layr-Labs/txcontext/pkg/types"
)

// Accumulate writes the entries of payload into buf.
//
// A first accumulate resets the buffer and claims it for payer, whatever the
// buffer held before. Any later accumulate must come from the claiming payer
// and find the buffer Claimed. The zero payer can never hold a claim.
//
// An empty payload fails with ErrNoInputs even on a first accumulate, since
// claiming with nothing stored would leave the buffer Invalid.
func Accumulate(buf *Buffer, payer types.Pubkey, payload *transition.Payload) error {
	if payload.IsEmpty() {
		return ErrNoInputs
	}
	if payer.IsZero() {
		return ErrFeePayerMismatch
	}

	if payload.Descriptor != nil && payload.Descriptor.FirstAccumulate {
		buf.Payer = payer
		buf.Payload = payload.Entries()
		return nil
	}

	if buf.State() != State_Claimed || buf.Payer != payer {
		return ErrFeePayerMismatch
	}
	return buf.Payload.Append(payload)
}
