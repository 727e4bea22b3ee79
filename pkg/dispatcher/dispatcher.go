package dispatcher

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/Layr-Labs/txcontext/internal/metrics"
	"github.com/Layr-Labs/txcontext/internal/metrics/metricsTypes"
	"github.com/Layr-Labs/txcontext/pkg/accountStore"
	"github.com/Layr-Labs/txcontext/pkg/contextBuffer"
	"github.com/Layr-Labs/txcontext/pkg/eventBus/eventBusTypes"
	"github.com/Layr-Labs/txcontext/pkg/indexTree"
	"github.com/Layr-Labs/txcontext/pkg/transition"
	"github.com/Layr-Labs/txcontext/pkg/types"
	"github.com/Layr-Labs/txcontext/pkg/verifier"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Outcome string

const (
	Outcome_Accumulated Outcome = "accumulate"
	Outcome_Consumed    Outcome = "consume"
	Outcome_Passthrough Outcome = "passthrough"
	Outcome_Rejected    Outcome = "rejected"
)

// Invocation is one call into the program. Buffer is the context buffer
// account, if the call references one; Accounts are the slots the payload
// indexes into.
type Invocation struct {
	Id       string
	Payer    types.Pubkey
	Buffer   *types.Pubkey
	Accounts []types.Pubkey
	Payload  *transition.Payload
}

type InvocationResult struct {
	InvocationId string
	Outcome      Outcome
	ExtraSlots   int
	// BufferedOutputs is the number of leading Outputs that came out of the
	// context buffer.
	BufferedOutputs int
	Outputs         []*transition.OutputAccount
	OutputsRoot     types.Hash
	// OutputRegion holds two count prefixed output blocks: the buffered outputs
	// and then the caller's own.
	OutputRegion []byte
}

type DispatcherConfig struct {
	ProgramID            types.Pubkey
	OutputRegionCapacity int
}

type Dispatcher struct {
	store       accountStore.AccountStore
	processor   *contextBuffer.Processor
	verifier    verifier.Verifier
	eventBus    eventBusTypes.IEventBus
	metricsSink *metrics.MetricsSink
	config      *DispatcherConfig
	logger      *zap.Logger

	// one invocation at a time, the same way transactions touching a shared
	// buffer account are serialized
	mu sync.Mutex
}

func NewDispatcher(
	store accountStore.AccountStore,
	v verifier.Verifier,
	eb eventBusTypes.IEventBus,
	ms *metrics.MetricsSink,
	cfg *DispatcherConfig,
	l *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		store:       store,
		processor:   contextBuffer.NewProcessor(cfg.ProgramID, indexTree.NewAccessor(), l),
		verifier:    v,
		eventBus:    eb,
		metricsSink: ms,
		config:      cfg,
		logger:      l,
	}
}

// Invoke runs inv against the account store. Account writes are only committed
// when every step succeeds.
func (d *Dispatcher) Invoke(ctx context.Context, inv *Invocation) (*InvocationResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	start := time.Now()
	invocationId := inv.Id
	if invocationId == "" {
		invocationId = uuid.New().String()
	}

	staged := accountStore.NewStagedStore(d.store)
	res, err := d.invoke(ctx, staged, invocationId, inv)
	if err == nil {
		err = staged.Commit()
	}
	if err != nil {
		staged.Discard()
		d.recordRejection(invocationId, err, start)
		return nil, err
	}
	d.recordSuccess(res, inv, start)
	return res, nil
}

func (d *Dispatcher) invoke(ctx context.Context, staged *accountStore.StagedStore, invocationId string, inv *Invocation) (*InvocationResult, error) {
	if inv.Payload == nil {
		return nil, errors.Wrap(contextBuffer.ErrNoInputs, "invocation carries no payload")
	}
	accounts, err := accountStore.GetAccounts(staged, inv.Accounts)
	if err != nil {
		return nil, err
	}

	var bufferAcct *accountStore.Account
	if inv.Buffer != nil {
		bufferAcct, err = staged.GetAccount(*inv.Buffer)
		if err != nil {
			return nil, err
		}
		if bufferAcct == nil {
			return nil, errors.Wrapf(accountStore.ErrAccountNotFound, "buffer %s", inv.Buffer)
		}
	}

	consumed, err := d.processor.AccumulateOrConsume(inv.Payer, bufferAcct, inv.Payload, accounts)
	if err != nil {
		return nil, err
	}
	if consumed == nil {
		if err := staged.PutAccounts(bufferAcct); err != nil {
			return nil, err
		}
		buf, err := contextBuffer.LoadBuffer(bufferAcct, d.config.ProgramID)
		if err != nil {
			return nil, err
		}
		return &InvocationResult{
			InvocationId:    invocationId,
			Outcome:         Outcome_Accumulated,
			BufferedOutputs: len(buf.Payload.Outputs),
		}, nil
	}

	if err := d.verifier.Verify(ctx, consumed.Payload, accounts); err != nil {
		return nil, err
	}

	region, err := d.buildOutputRegion(consumed.Snapshot, inv.Payload.Outputs)
	if err != nil {
		return nil, err
	}
	root, err := transition.OutputsRoot(consumed.Payload.Outputs)
	if err != nil {
		return nil, err
	}

	outcome := Outcome_Passthrough
	if bufferAcct != nil {
		outcome = Outcome_Consumed
		if err := staged.PutAccounts(bufferAcct); err != nil {
			return nil, err
		}
	}

	return &InvocationResult{
		InvocationId:    invocationId,
		Outcome:         outcome,
		ExtraSlots:      consumed.ExtraSlots,
		BufferedOutputs: len(consumed.Snapshot),
		Outputs:         consumed.Payload.Outputs,
		OutputsRoot:     root,
		OutputRegion:    region,
	}, nil
}

// buildOutputRegion writes buffered then own into a region of the configured
// capacity and returns the written prefix.
func (d *Dispatcher) buildOutputRegion(buffered []*transition.OutputAccount, own []*transition.OutputAccount) ([]byte, error) {
	region := make([]byte, d.config.OutputRegionCapacity)

	n, err := contextBuffer.ReserializeOutputs(buffered, region)
	if err != nil {
		return nil, errors.Wrap(err, "buffered outputs")
	}
	m, err := contextBuffer.ReserializeOutputs(own, region[n:])
	if err != nil {
		return nil, errors.Wrap(err, "own outputs")
	}
	return region[:n+m], nil
}

func (d *Dispatcher) recordSuccess(res *InvocationResult, inv *Invocation, start time.Time) {
	if res.Outcome == Outcome_Accumulated {
		first := inv.Payload.Descriptor != nil && inv.Payload.Descriptor.FirstAccumulate
		d.logger.Sugar().Debugw("Payload buffered",
			zap.String("invocationId", res.InvocationId),
			zap.Int("bufferedOutputs", res.BufferedOutputs),
		)
		_ = d.metricsSink.Incr(metricsTypes.Metric_Incr_ContextAccumulate, []metricsTypes.MetricsLabel{
			{Name: "first", Value: strconv.FormatBool(first)},
		}, 1)
		_ = d.metricsSink.Gauge(metricsTypes.Metric_Gauge_BufferedOutputs, float64(res.BufferedOutputs), nil)
		d.eventBus.Publish(&eventBusTypes.Event{
			Name: eventBusTypes.Event_PayloadBuffered,
			Data: &eventBusTypes.PayloadBufferedData{
				InvocationId:    res.InvocationId,
				Payer:           inv.Payer,
				Buffer:          *inv.Buffer,
				First:           first,
				BufferedOutputs: res.BufferedOutputs,
			},
		})
	} else {
		d.logger.Sugar().Infow("Transition emitted",
			zap.String("invocationId", res.InvocationId),
			zap.String("outcome", string(res.Outcome)),
			zap.Int("bufferedOutputs", res.BufferedOutputs),
			zap.Int("outputs", len(res.Outputs)),
			zap.String("outputsRoot", res.OutputsRoot.String()),
		)
		if res.Outcome == Outcome_Consumed {
			_ = d.metricsSink.Incr(metricsTypes.Metric_Incr_ContextConsume, nil, 1)
			_ = d.metricsSink.Gauge(metricsTypes.Metric_Gauge_BufferedOutputs, 0, nil)
		} else {
			_ = d.metricsSink.Incr(metricsTypes.Metric_Incr_ContextPassthrough, nil, 1)
		}
		if res.BufferedOutputs > 0 {
			_ = d.metricsSink.Incr(metricsTypes.Metric_Incr_OutputsReserialized, nil, float64(res.BufferedOutputs))
		}
		d.eventBus.Publish(&eventBusTypes.Event{
			Name: eventBusTypes.Event_TransitionEmitted,
			Data: &eventBusTypes.TransitionEmittedData{
				InvocationId:    res.InvocationId,
				Payer:           inv.Payer,
				Buffer:          inv.Buffer,
				ExtraSlots:      res.ExtraSlots,
				BufferedOutputs: res.BufferedOutputs,
				Outputs:         res.Outputs,
				OutputsRoot:     res.OutputsRoot,
				OutputRegion:    res.OutputRegion,
			},
		})
	}
	_ = d.metricsSink.Timing(metricsTypes.Metric_Timing_InvocationDuration, time.Since(start), []metricsTypes.MetricsLabel{
		{Name: "mode", Value: string(res.Outcome)},
	})
}

func (d *Dispatcher) recordRejection(invocationId string, err error, start time.Time) {
	reason := RejectionReason(err)
	d.logger.Sugar().Infow("Invocation rejected",
		zap.String("invocationId", invocationId),
		zap.String("reason", reason),
		zap.Error(err),
	)
	_ = d.metricsSink.Incr(metricsTypes.Metric_Incr_ContextRejected, []metricsTypes.MetricsLabel{
		{Name: "reason", Value: reason},
	}, 1)
	_ = d.metricsSink.Timing(metricsTypes.Metric_Timing_InvocationDuration, time.Since(start), []metricsTypes.MetricsLabel{
		{Name: "mode", Value: string(Outcome_Rejected)},
	})
}

// RejectionReason names err by the protocol or verification error it wraps.
func RejectionReason(err error) string {
	if code := verifier.ErrorCode(err); code != "" {
		return code
	}
	return contextBuffer.ErrorCode(err)
}
