package contextBuffer

import (
	"github.com/Layr-Labs/txcontext/pkg/transition"
	"github.com/pkg/errors"
)

var (
	ErrContextMissing          = errors.New("buffer account supplied without a context descriptor")
	ErrContextAccountUndefined = errors.New("context descriptor supplied without a buffer account")
	ErrNoInputs                = errors.New("payload has neither inputs nor outputs")
	ErrAssociatedRootMismatch  = errors.New("payload targets a different index structure than the buffer")
	ErrContextEmpty            = errors.New("context buffer is empty")
	ErrFeePayerMismatch        = errors.New("payer does not own the context buffer claim")

	ErrInvalidBufferOwner         = errors.New("buffer account is not owned by the program")
	ErrInvalidBufferDiscriminator = errors.New("buffer account has an unexpected discriminator")
	ErrBufferCapacityExceeded     = errors.New("buffer account capacity exceeded")
	ErrBufferCorrupt              = errors.New("buffer account data is corrupt")
	ErrSerialization              = errors.New("output region too small")
)

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrContextMissing, "ContextMissing"},
	{ErrContextAccountUndefined, "ContextAccountUndefined"},
	{ErrNoInputs, "NoInputs"},
	{ErrAssociatedRootMismatch, "AssociatedRootMismatch"},
	{ErrContextEmpty, "ContextEmpty"},
	{ErrFeePayerMismatch, "FeePayerMismatch"},
	{ErrInvalidBufferOwner, "InvalidBufferOwner"},
	{ErrInvalidBufferDiscriminator, "InvalidBufferDiscriminator"},
	{ErrBufferCapacityExceeded, "BufferCapacityExceeded"},
	{ErrBufferCorrupt, "BufferCorrupt"},
	{ErrSerialization, "Serialization"},
	{transition.ErrOutputIndexOverflow, "OutputIndexOverflow"},
}

// ErrorCode returns the stable name of a protocol error, or "Unknown".
func ErrorCode(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return "Unknown"
}

// ErrorForCode is the inverse of ErrorCode.
func ErrorForCode(code string) error {
	for _, ec := range errorCodes {
		if ec.code == code {
			return ec.err
		}
	}
	return nil
}
