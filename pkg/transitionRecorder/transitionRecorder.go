// Package transitionRecorder persists every emitted state transition to
// postgres by listening on the event bus.
package transitionRecorder

import (
	"context"
	"errors"
	"time"

	"github.com/Layr-Labs/txcontext/pkg/eventBus/eventBusTypes"
	"github.com/Layr-Labs/txcontext/pkg/postgres/helpers"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const consumerId eventBusTypes.ConsumerId = "transitionRecorder"

type EmittedTransition struct {
	InvocationId    string `gorm:"primaryKey"`
	Payer           string
	Buffer          *string
	ExtraSlots      int
	BufferedOutputs int
	TotalOutputs    int
	OutputsRoot     string
	OutputRegion    []byte
	CreatedAt       time.Time
}

func (EmittedTransition) TableName() string {
	return "emitted_transitions"
}

type TransitionRecorder struct {
	db       *gorm.DB
	eventBus eventBusTypes.IEventBus
	logger   *zap.Logger
}

func NewTransitionRecorder(db *gorm.DB, eb eventBusTypes.IEventBus, l *zap.Logger) *TransitionRecorder {
	return &TransitionRecorder{
		db:       db,
		eventBus: eb,
		logger:   l,
	}
}

func (r *TransitionRecorder) Record(data *eventBusTypes.TransitionEmittedData) (*EmittedTransition, error) {
	record := &EmittedTransition{
		InvocationId:    data.InvocationId,
		Payer:           data.Payer.String(),
		ExtraSlots:      data.ExtraSlots,
		BufferedOutputs: data.BufferedOutputs,
		TotalOutputs:    len(data.Outputs),
		OutputsRoot:     data.OutputsRoot.String(),
		OutputRegion:    data.OutputRegion,
	}
	if data.Buffer != nil {
		buffer := data.Buffer.String()
		record.Buffer = &buffer
	}
	if record.OutputRegion == nil {
		record.OutputRegion = []byte{}
	}

	return helpers.WrapTxAndCommit[*EmittedTransition](func(tx *gorm.DB) (*EmittedTransition, error) {
		res := tx.Model(&EmittedTransition{}).Create(record)
		if res.Error != nil {
			return nil, res.Error
		}
		return record, nil
	}, r.db, nil)
}

// GetTransition returns nil, nil when no transition was recorded for
// invocationId.
func (r *TransitionRecorder) GetTransition(invocationId string) (*EmittedTransition, error) {
	var record *EmittedTransition
	res := r.db.First(&record, "invocation_id = ?", invocationId)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, res.Error
	}
	return record, nil
}

// Start subscribes to the event bus and records transitions until ctx is done.
// Events already queued when ctx is done are still recorded. The returned
// channel is closed once the consumer has been unsubscribed.
func (r *TransitionRecorder) Start(ctx context.Context) <-chan struct{} {
	consumer := &eventBusTypes.Consumer{
		Id:      consumerId,
		Context: ctx,
		Channel: make(chan *eventBusTypes.Event, 1000),
	}
	r.eventBus.Subscribe(consumer)

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer r.eventBus.Unsubscribe(consumer)
		for {
			select {
			case <-ctx.Done():
				r.logger.Sugar().Infow("Stopping transition recorder")
				r.drain(consumer)
				return
			case event := <-consumer.Channel:
				r.handleEvent(event)
			}
		}
	}()
	return done
}

func (r *TransitionRecorder) drain(consumer *eventBusTypes.Consumer) {
	for {
		select {
		case event := <-consumer.Channel:
			r.handleEvent(event)
		default:
			return
		}
	}
}

func (r *TransitionRecorder) handleEvent(event *eventBusTypes.Event) {
	if event.Name != eventBusTypes.Event_TransitionEmitted {
		return
	}
	data, ok := event.Data.(*eventBusTypes.TransitionEmittedData)
	if !ok {
		r.logger.Sugar().Errorw("Unexpected event payload", zap.String("eventName", event.Name))
		return
	}
	if _, err := r.Record(data); err != nil {
		r.logger.Sugar().Errorw("Failed to record transition",
			zap.String("invocationId", data.InvocationId),
			zap.Error(err),
		)
		return
	}
	r.logger.Sugar().Debugw("Recorded transition", zap.String("invocationId", data.InvocationId))
}
