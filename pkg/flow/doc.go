// Package flow provides a small push-based dataflow engine for wiring
// independently defined processing units into a directed graph through
// named ports.
//
// Data arriving at any input port triggers automatic, readiness-gated
// propagation downstream: a source node runs, its outputs populate its
// observable, which notifies every subscribed observer in registration
// order; each delivery updates the owning node's input set and attempts
// to run that node. A transform node that now holds all of its required
// inputs executes and propagates further; a sink node executes its side
// effect and terminates the chain.
//
// # Key Components
//
// Producer, Transform, Sink: the capability interfaces a wrapped unit
// implements. Each unit declares its input and output port names once;
// the engine resolves them at node construction and validates every
// edge against them at wiring time.
//
// SourceNode, TransformNode, SinkNode: runnable units composed with the
// observer/observable machinery. Producing nodes expose Attach/Detach
// for wiring; consuming nodes own an Observer that accumulates inbound
// values; Run on any node triggers a propagation wave.
//
// Observer: accumulates inbound values addressed to named input ports
// and invokes its update hook on every delivery, without batching.
//
// Observable: holds a node's latest produced values and its ordered
// subscription list, and performs fan-out notification.
//
// # Readiness
//
// A consuming node runs only when every one of its required input ports
// holds a value. An attempt with inputs still missing is a silent
// no-op: accumulated values are kept, nothing is propagated, and no
// error surfaces. Accumulated inputs are cleared after a successful
// run, never before, so a failed unit keeps its staged inputs.
//
// # Propagation depth
//
// Propagation is synchronous and effectively recursive: one external
// Run call can chain through the longest path in the graph. Each node
// carries a maximum wave depth (DefaultMaxDepth unless configured with
// WithMaxDepth); exceeding it surfaces a CycleError instead of
// exhausting the stack, which turns a miswired cyclic graph into a
// reportable failure.
//
// The engine is single-threaded and cooperative. Nodes never share
// observers or observables, so no locking is required as long as a
// graph is wired and run from one goroutine.
package flow
