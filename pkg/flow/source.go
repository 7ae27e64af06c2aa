package flow

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// SourceNode wraps a zero-input producer and is the entry point of a
// graph. It is always ready: Run invokes the producer, records its
// outputs and notifies all subscribers. A source is intended to be run
// once per external trigger, typically once per pipeline execution.
type SourceNode struct {
	node
	producer   Producer
	provides   ports
	observable *Observable
}

// NewSource creates a source node around producer.
func NewSource(producer Producer, opts ...NodeOption) (*SourceNode, error) {
	if producer == nil {
		return nil, errors.New("producer cannot be nil")
	}
	provides, err := newPorts(producer.Provides())
	if err != nil {
		return nil, fmt.Errorf("invalid producer output ports: %w", err)
	}
	if provides.empty() {
		return nil, errors.New("producer must declare at least one output port")
	}

	n := &SourceNode{
		node:       newNode("source", opts),
		producer:   producer,
		provides:   provides,
		observable: NewObservable(),
	}
	n.observable.name = n.name
	return n, nil
}

// Run invokes the producer, merges its outputs into the node's
// observable and notifies every subscriber in registration order. The
// returned error is the first failure anywhere in the triggered
// propagation wave.
func (n *SourceNode) Run(ctx context.Context) error {
	ctx, err := n.guard(ctx)
	if err != nil {
		return err
	}
	return n.traced(ctx, "flow.source.run", func(ctx context.Context) error {
		out, err := n.producer.Produce(ctx)
		if err != nil {
			return &UnitError{Node: n.name, Phase: PhaseProduce, Err: err}
		}
		n.observable.merge(out)
		n.logger.Debug("source produced",
			zap.String("node", n.name),
			zap.Int("ports", len(out)))
		return n.observable.Notify(ctx)
	})
}

// Attach subscribes consumer's destPort input to this node's sourcePort
// output.
func (n *SourceNode) Attach(consumer Consumer, sourcePort, destPort string) error {
	return attach(&n.node, n.observable, n.provides, consumer, sourcePort, destPort)
}

// Detach removes every subscription targeting consumer.
func (n *SourceNode) Detach(consumer Consumer) {
	detach(&n.node, n.observable, consumer)
}

// Observable exposes the node's observable for inspection.
func (n *SourceNode) Observable() *Observable { return n.observable }

// Ensure SourceNode implements the producing side of the wiring API.
var _ Emitter = (*SourceNode)(nil)
