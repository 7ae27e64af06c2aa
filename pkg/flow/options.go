package flow

import (
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// NodeOption configures a node at construction.
type NodeOption func(*node)

// WithName sets a human-readable node name, used in logs and errors.
func WithName(name string) NodeOption {
	return func(n *node) {
		n.name = name
	}
}

// WithLogger sets the structured logger for the node. Nodes log nothing
// by default.
func WithLogger(logger *zap.Logger) NodeOption {
	return func(n *node) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// WithTracer enables span creation around the node's executions.
func WithTracer(tracer trace.Tracer) NodeOption {
	return func(n *node) {
		n.tracer = tracer
	}
}

// WithMaxDepth overrides the node's propagation depth budget. Values
// below one are ignored.
func WithMaxDepth(depth int) NodeOption {
	return func(n *node) {
		if depth > 0 {
			n.maxDepth = depth
		}
	}
}
