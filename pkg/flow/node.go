package flow

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// NodeState describes where a consuming node is in its lifecycle.
type NodeState int

const (
	// StateAwaitingInput means at least one required input port is empty.
	StateAwaitingInput NodeState = iota

	// StateReady means every required input port holds a value. The
	// state is transient: a ready node executes on the delivery that
	// completed its inputs, so it is normally only observed when the
	// wrapped unit failed and kept its staged inputs.
	StateReady

	// StateExecuted means the node has run successfully and its inputs
	// have been cleared.
	StateExecuted
)

// String returns a human-readable state name.
func (s NodeState) String() string {
	switch s {
	case StateAwaitingInput:
		return "awaiting_input"
	case StateReady:
		return "ready"
	case StateExecuted:
		return "executed"
	}
	return "unknown"
}

// Consumer is implemented by nodes that accept named input values:
// transform and sink nodes. Only types in this package satisfy it.
type Consumer interface {
	// Name returns the node's name.
	Name() string

	observerRef() *Observer
	inputPorts() []string
	acceptsInput(port string) bool
}

// Emitter is implemented by nodes that produce named output values:
// source and transform nodes. It is the producing side of the wiring
// API.
type Emitter interface {
	// Attach subscribes consumer's destPort to this node's sourcePort.
	Attach(consumer Consumer, sourcePort, destPort string) error

	// Detach removes every subscription targeting consumer.
	Detach(consumer Consumer)
}

// Attach wires producer's sourcePort output to consumer's destPort
// input. Both ports are validated against the respective units'
// declarations; a violation is reported as a PortError and no edge is
// created.
func Attach(producer Emitter, consumer Consumer, sourcePort, destPort string) error {
	return producer.Attach(consumer, sourcePort, destPort)
}

// Detach removes every edge from producer to consumer. Detaching a
// consumer that was never attached is a no-op.
func Detach(producer Emitter, consumer Consumer) {
	producer.Detach(consumer)
}

// node carries identity and instrumentation shared by all node kinds.
type node struct {
	id       uuid.UUID
	name     string
	logger   *zap.Logger
	tracer   trace.Tracer
	maxDepth int
}

func newNode(kind string, opts []NodeOption) node {
	n := node{
		id:       uuid.New(),
		logger:   zap.NewNop(),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(&n)
	}
	if n.name == "" {
		n.name = kind + "-" + n.id.String()[:8]
	}
	return n
}

// ID returns the node's unique identifier.
func (n *node) ID() uuid.UUID { return n.id }

// Name returns the node's name. Unless set with WithName, the name is
// derived from the node kind and its identifier.
func (n *node) Name() string { return n.name }

// guard enforces the propagation depth budget before a node executes
// and returns a context carrying the incremented wave depth.
func (n *node) guard(ctx context.Context) (context.Context, error) {
	depth := waveDepth(ctx)
	if depth >= n.maxDepth {
		return ctx, &CycleError{Node: n.name, Depth: depth}
	}
	return withWaveDepth(ctx, depth+1), nil
}

// traced runs fn inside a span when the node has a tracer configured.
func (n *node) traced(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	if n.tracer == nil {
		return fn(ctx)
	}
	ctx, span := n.tracer.Start(ctx, op,
		trace.WithAttributes(
			attribute.String("flow.node.id", n.id.String()),
			attribute.String("flow.node.name", n.name),
			attribute.Int("flow.wave.depth", waveDepth(ctx)),
		))
	defer span.End()

	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

// attach validates an edge against both units' declared ports and
// registers the subscription on the producing node's observable.
func attach(n *node, observable *Observable, provides ports, consumer Consumer, sourcePort, destPort string) error {
	if !provides.contains(sourcePort) {
		return &PortError{
			Node:     n.name,
			Port:     sourcePort,
			Side:     SourceSide,
			Declared: provides.list,
		}
	}
	if !consumer.acceptsInput(destPort) {
		return &PortError{
			Node:     consumer.Name(),
			Port:     destPort,
			Side:     DestinationSide,
			Declared: consumer.inputPorts(),
		}
	}
	observable.Register(consumer.observerRef(), sourcePort, destPort)
	n.logger.Debug("subscription attached",
		zap.String("node", n.name),
		zap.String("consumer", consumer.Name()),
		zap.String("source_port", sourcePort),
		zap.String("dest_port", destPort))
	return nil
}

// detach removes every subscription from the producing node to consumer.
func detach(n *node, observable *Observable, consumer Consumer) {
	observable.Unregister(consumer.observerRef())
	n.logger.Debug("subscriptions detached",
		zap.String("node", n.name),
		zap.String("consumer", consumer.Name()))
}
