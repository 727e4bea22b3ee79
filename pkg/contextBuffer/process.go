package contextBuffer

import (
	"github.com/Layr-Labs/txcontext/pkg/accountStore"
	"github.com/Layr-Labs/txcontext/pkg/transition"
	"github.com/Layr-Labs/txcontext/pkg/types"
	"go.uber.org/zap"
)

type Processor struct {
	programID types.Pubkey
	accessor  IndexAccessor
	logger    *zap.Logger
}

func NewProcessor(programID types.Pubkey, accessor IndexAccessor, l *zap.Logger) *Processor {
	return &Processor{
		programID: programID,
		accessor:  accessor,
		logger:    l,
	}
}

// AccumulateOrConsume routes payload through the context buffer held by
// bufferAcct, which may be nil when the call references no buffer.
//
// A nil result with a nil error means the payload was accumulated and the call
// stops here. Otherwise the result carries the payload to verify: the original
// one on passthrough, the merged one on consume. bufferAcct is only modified on
// success.
func (p *Processor) AccumulateOrConsume(
	payer types.Pubkey,
	bufferAcct *accountStore.Account,
	payload *transition.Payload,
	accounts []*accountStore.Account,
) (*ConsumeResult, error) {
	descriptor := payload.Descriptor

	switch {
	case descriptor == nil && bufferAcct == nil:
		return &ConsumeResult{Payload: payload}, nil
	case descriptor == nil:
		return nil, ErrContextMissing
	case bufferAcct == nil:
		return nil, ErrContextAccountUndefined
	}

	buf, err := LoadBuffer(bufferAcct, p.programID)
	if err != nil {
		return nil, err
	}

	if descriptor.IsAccumulate() {
		if err := Accumulate(buf, payer, payload); err != nil {
			return nil, err
		}
		if err := buf.Store(bufferAcct); err != nil {
			return nil, err
		}
		p.logger.Sugar().Debugw("Accumulated payload into context buffer",
			zap.String("buffer", buf.Key.String()),
			zap.String("payer", payer.String()),
			zap.Bool("first", descriptor.FirstAccumulate),
			zap.Int("bufferedOutputs", len(buf.Payload.Outputs)),
		)
		return nil, nil
	}

	if err := ValidateAssociation(p.accessor, payload, accounts, buf.AssociatedRoot); err != nil {
		return nil, err
	}
	res, err := Consume(buf, payer, payload)
	if err != nil {
		return nil, err
	}
	if err := buf.Store(bufferAcct); err != nil {
		return nil, err
	}
	p.logger.Sugar().Debugw("Consumed context buffer",
		zap.String("buffer", buf.Key.String()),
		zap.String("payer", payer.String()),
		zap.Int("mergedInputs", len(res.Payload.Inputs)),
		zap.Int("mergedOutputs", len(res.Payload.Outputs)),
	)
	return res, nil
}
