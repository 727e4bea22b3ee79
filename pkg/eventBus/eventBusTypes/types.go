package eventBusTypes

import (
	"context"
	"sync"

	"github.com/Layr-Labs/txcontext/pkg/transition"
	"github.com/Layr-Labs/txcontext/pkg/types"
)

const (
	Event_TransitionEmitted = "transition_emitted"
	Event_PayloadBuffered   = "payload_buffered"
)

type Event struct {
	Name string
	Data any
}

type ConsumerId string

type Consumer struct {
	Id      ConsumerId
	Context context.Context
	Channel chan *Event
}

type ConsumerList struct {
	mu        sync.Mutex
	consumers []*Consumer
}

func NewConsumerList() *ConsumerList {
	return &ConsumerList{
		consumers: make([]*Consumer, 0),
	}
}

func (cl *ConsumerList) Add(consumer *Consumer) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	cl.consumers = append(cl.consumers, consumer)
}

func (cl *ConsumerList) Remove(consumer *Consumer) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	for i, c := range cl.consumers {
		if c.Id == consumer.Id {
			cl.consumers = append(cl.consumers[:i], cl.consumers[i+1:]...)
			break
		}
	}
}

// GetAll returns a copy of the current consumers.
func (cl *ConsumerList) GetAll() []*Consumer {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return append([]*Consumer(nil), cl.consumers...)
}

type IEventBus interface {
	Subscribe(consumer *Consumer)
	Unsubscribe(consumer *Consumer)
	Publish(event *Event)
}

// TransitionEmittedData describes a state transition that left the dispatcher,
// either directly or after consuming a context buffer.
type TransitionEmittedData struct {
	InvocationId string
	Payer        types.Pubkey
	Buffer       *types.Pubkey
	ExtraSlots   int
	// BufferedOutputs is the number of outputs that came out of the buffer.
	BufferedOutputs int
	Outputs         []*transition.OutputAccount
	OutputsRoot     types.Hash
	// OutputRegion holds the re-serialized buffered outputs followed by the
	// caller's own outputs.
	OutputRegion []byte
}

type PayloadBufferedData struct {
	InvocationId    string
	Payer           types.Pubkey
	Buffer          types.Pubkey
	First           bool
	BufferedOutputs int
}
