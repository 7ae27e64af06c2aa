package flow

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// SinkNode wraps a named-input, no-output unit and is a terminal point
// of the graph. It follows the same readiness policy as a transform
// node, but a successful run performs an external side effect and
// propagates nothing.
type SinkNode struct {
	node
	sink     Sink
	requires ports
	observer *Observer
	executed bool
}

// NewSink creates a sink node around sink.
func NewSink(sink Sink, opts ...NodeOption) (*SinkNode, error) {
	if sink == nil {
		return nil, errors.New("sink cannot be nil")
	}
	requires, err := newPorts(sink.Requires())
	if err != nil {
		return nil, fmt.Errorf("invalid sink input ports: %w", err)
	}
	if requires.empty() {
		return nil, errors.New("sink must declare at least one input port")
	}

	n := &SinkNode{
		node:     newNode("sink", opts),
		sink:     sink,
		requires: requires,
	}
	n.observer = NewObserver(n.Run)
	return n, nil
}

// Run executes the sink once every required input port holds a value.
// With inputs still missing it is a silent no-op leaving accumulated
// values untouched. On success the accumulated inputs are cleared.
func (n *SinkNode) Run(ctx context.Context) error {
	missing := n.missingInputs()
	if len(missing) > 0 {
		n.logger.Debug("awaiting inputs",
			zap.String("node", n.name),
			zap.Strings("missing", missing))
		return nil
	}
	ctx, err := n.guard(ctx)
	if err != nil {
		return err
	}
	return n.traced(ctx, "flow.sink.run", func(ctx context.Context) error {
		if err := n.sink.Consume(ctx, n.observer.Consuming()); err != nil {
			return &UnitError{Node: n.name, Phase: PhaseConsume, Err: err}
		}
		n.observer.clear()
		n.executed = true
		n.logger.Debug("sink executed", zap.String("node", n.name))
		return nil
	})
}

// State reports the node's position in its lifecycle.
func (n *SinkNode) State() NodeState {
	switch {
	case len(n.missingInputs()) == 0:
		return StateReady
	case n.executed && len(n.observer.consuming) == 0:
		return StateExecuted
	}
	return StateAwaitingInput
}

func (n *SinkNode) missingInputs() []string {
	var missing []string
	for _, port := range n.requires.list {
		if !n.observer.has(port) {
			missing = append(missing, port)
		}
	}
	return missing
}

func (n *SinkNode) observerRef() *Observer { return n.observer }

func (n *SinkNode) inputPorts() []string { return n.requires.list }

func (n *SinkNode) acceptsInput(port string) bool { return n.requires.contains(port) }

// Ensure SinkNode implements the consuming side of the wiring API.
var _ Consumer = (*SinkNode)(nil)
