package progress_broker

import (
	"context"
	"encoding/json"

	"viz-box/internal/utils"
)

// ProgressBroker publishes composition lifecycle events on a pub/sub topic
type ProgressBroker[T utils.Publisher] struct {
	// Name of the Dapr Component to use
	componentName string
	// Name of the topic to publish into
	topic string
	// Client to publish event into
	client *T
	// Current running context
	ctx *context.Context
}

type CompositionState int8

const (
	InProgress CompositionState = iota
	Done
	Error
)

// CompositionInfos One lifecycle event for a composition job
type CompositionInfos struct {
	JobId string           `json:"jobId"`
	State CompositionState `json:"state"`
	// Completion estimate, 0 to 100. Only meaningful while InProgress
	Percent float64 `json:"percent"`
	// State-specific payload : raw encoder progress, the result key, or an
	// error message
	Data interface{} `json:"data"`
}

type NewBrokerOptions struct {
	Component string
	Topic     string
}

func NewProgressBroker[T utils.Publisher](ctx *context.Context, client *T, opt NewBrokerOptions) (*ProgressBroker[T], error) {
	return &ProgressBroker[T]{
		componentName: opt.Component,
		topic:         opt.Topic,
		client:        client,
		ctx:           ctx,
	}, nil
}

func (pb *ProgressBroker[T]) SendProgress(data CompositionInfos) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return (*pb.client).PublishEvent(*pb.ctx, pb.componentName, pb.topic, string(b))
}
