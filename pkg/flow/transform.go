package flow

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// TransformNode wraps a named-input, named-output unit. It both
// consumes, through its Observer, and produces, through its Observable.
// Its run attempt is bound as the observer's update hook at
// construction, so every inbound delivery tries to execute it.
type TransformNode struct {
	node
	transform  Transform
	requires   ports
	provides   ports
	observer   *Observer
	observable *Observable
	executed   bool
}

// NewTransform creates a transform node around transform.
func NewTransform(transform Transform, opts ...NodeOption) (*TransformNode, error) {
	if transform == nil {
		return nil, errors.New("transform cannot be nil")
	}
	requires, err := newPorts(transform.Requires())
	if err != nil {
		return nil, fmt.Errorf("invalid transform input ports: %w", err)
	}
	if requires.empty() {
		return nil, errors.New("transform must declare at least one input port")
	}
	provides, err := newPorts(transform.Provides())
	if err != nil {
		return nil, fmt.Errorf("invalid transform output ports: %w", err)
	}
	if provides.empty() {
		return nil, errors.New("transform must declare at least one output port")
	}

	n := &TransformNode{
		node:       newNode("transform", opts),
		transform:  transform,
		requires:   requires,
		provides:   provides,
		observable: NewObservable(),
	}
	n.observable.name = n.name
	n.observer = NewObserver(n.Run)
	return n, nil
}

// Run executes the transform once every required input port holds a
// value. With inputs still missing it is a silent no-op: accumulated
// values are kept, nothing is produced and nothing propagates. On
// success the outputs are merged into the node's observable, the
// accumulated inputs are cleared and all subscribers are notified.
func (n *TransformNode) Run(ctx context.Context) error {
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
	return n.traced(ctx, "flow.transform.run", func(ctx context.Context) error {
		out, err := n.transform.Transform(ctx, n.observer.Consuming())
		if err != nil {
			return &UnitError{Node: n.name, Phase: PhaseTransform, Err: err}
		}
		n.observable.merge(out)
		n.observer.clear()
		n.executed = true
		n.logger.Debug("transform executed",
			zap.String("node", n.name),
			zap.Int("ports", len(out)))
		return n.observable.Notify(ctx)
	})
}

// State reports the node's position in its lifecycle.
func (n *TransformNode) State() NodeState {
	switch {
	case len(n.missingInputs()) == 0:
		return StateReady
	case n.executed && len(n.observer.consuming) == 0:
		return StateExecuted
	}
	return StateAwaitingInput
}

func (n *TransformNode) missingInputs() []string {
	var missing []string
	for _, port := range n.requires.list {
		if !n.observer.has(port) {
			missing = append(missing, port)
		}
	}
	return missing
}

// Attach subscribes consumer's destPort input to this node's sourcePort
// output.
func (n *TransformNode) Attach(consumer Consumer, sourcePort, destPort string) error {
	return attach(&n.node, n.observable, n.provides, consumer, sourcePort, destPort)
}

// Detach removes every subscription targeting consumer.
func (n *TransformNode) Detach(consumer Consumer) {
	detach(&n.node, n.observable, consumer)
}

// Observable exposes the node's observable for inspection.
func (n *TransformNode) Observable() *Observable { return n.observable }

func (n *TransformNode) observerRef() *Observer { return n.observer }

func (n *TransformNode) inputPorts() []string { return n.requires.list }

func (n *TransformNode) acceptsInput(port string) bool { return n.requires.contains(port) }

// Ensure TransformNode implements both sides of the wiring API.
var (
	_ Emitter  = (*TransformNode)(nil)
	_ Consumer = (*TransformNode)(nil)
)
