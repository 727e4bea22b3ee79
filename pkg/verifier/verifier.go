package verifier

import (
	"context"
	"math/big"

	"github.com/Layr-Labs/txcontext/pkg/accountStore"
	"github.com/Layr-Labs/txcontext/pkg/transition"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrSumCheckFailed = errors.New("input and output values do not balance")
	ErrProofIsNone    = errors.New("payload needs a validity proof but carries none")
	ErrProofIsSome    = errors.New("payload carries a validity proof it does not need")
	ErrEmptyInputs    = errors.New("payload has no entries")
)

var errorCodes = map[string]error{
	"SumCheckFailed": ErrSumCheckFailed,
	"ProofIsNone":    ErrProofIsNone,
	"ProofIsSome":    ErrProofIsSome,
	"EmptyInputs":    ErrEmptyInputs,
}

// ErrorCode returns the stable name of a verification error, or "" if err is
// not one.
func ErrorCode(err error) string {
	for code, e := range errorCodes {
		if errors.Is(err, e) {
			return code
		}
	}
	return ""
}

func ErrorForCode(code string) error {
	return errorCodes[code]
}

// Verifier checks a final, merged payload before its transition is emitted.
type Verifier interface {
	Verify(ctx context.Context, payload *transition.Payload, accounts []*accountStore.Account) error
}

// SumCheckVerifier checks value conservation and whether a proof is present
// exactly when one is needed. It does not check the proof itself.
type SumCheckVerifier struct {
	logger *zap.Logger
}

func NewSumCheckVerifier(l *zap.Logger) *SumCheckVerifier {
	return &SumCheckVerifier{logger: l}
}

func (v *SumCheckVerifier) Verify(ctx context.Context, payload *transition.Payload, accounts []*accountStore.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := SumCheck(payload)
	if err == nil {
		err = checkProofPresence(payload)
	}
	if err != nil {
		v.logger.Sugar().Debugw("Payload failed verification",
			zap.Int("inputs", len(payload.Inputs)),
			zap.Int("outputs", len(payload.Outputs)),
			zap.Error(err),
		)
	}
	return err
}

// SumCheck requires the writable inputs plus any decompressed value to equal
// the outputs plus any compressed value and the relay fee.
func SumCheck(payload *transition.Payload) error {
	in := decimal.Zero
	for _, input := range payload.Inputs {
		if input.ReadOnly {
			continue
		}
		in = in.Add(fromUint64(input.Value))
	}
	out := decimal.Zero
	for _, output := range payload.Outputs {
		out = out.Add(fromUint64(output.Value))
	}

	if payload.CompressOrDecompressValue != nil {
		v := fromUint64(*payload.CompressOrDecompressValue)
		if payload.IsCompress {
			out = out.Add(v)
		} else {
			in = in.Add(v)
		}
	}
	if payload.RelayFee != nil {
		out = out.Add(fromUint64(*payload.RelayFee))
	}

	if !in.Equal(out) {
		return errors.Wrapf(ErrSumCheckFailed, "in %s, out %s", in.String(), out.String())
	}
	return nil
}

func fromUint64(v uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0)
}

func checkProofPresence(payload *transition.Payload) error {
	inclusion := 0
	for _, input := range payload.Inputs {
		if !input.MerkleContext.ProveByIndex {
			inclusion++
		}
	}
	for _, ro := range payload.ReadOnlyAccounts {
		if !ro.MerkleContext.ProveByIndex {
			inclusion++
		}
	}
	nonInclusion := len(payload.NewAddresses) + len(payload.ReadOnlyAddresses)

	switch {
	case inclusion > 0 || nonInclusion > 0:
		if payload.Proof == nil {
			return errors.Wrapf(ErrProofIsNone, "%d inclusion and %d non-inclusion checks", inclusion, nonInclusion)
		}
	case payload.Proof != nil:
		return ErrProofIsSome
	case payload.IsEmpty():
		return ErrEmptyInputs
	}
	return nil
}
