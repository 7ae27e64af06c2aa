package flow

import (
	"errors"
	"fmt"
)

// Common errors used throughout the engine.
var (
	// ErrUnknownPort is returned when an edge references a port the
	// respective unit does not declare.
	ErrUnknownPort = errors.New("unknown port")

	// ErrMissingOutput is returned when notification finds no produced
	// value for a subscribed source port.
	ErrMissingOutput = errors.New("no value produced for source port")

	// ErrMaxDepthExceeded is returned when a propagation wave exceeds a
	// node's maximum depth.
	ErrMaxDepthExceeded = errors.New("maximum propagation depth exceeded")
)

// PortSide identifies which end of an edge a port error refers to.
type PortSide string

const (
	// SourceSide marks the producing end of an edge.
	SourceSide PortSide = "source"

	// DestinationSide marks the consuming end of an edge.
	DestinationSide PortSide = "destination"
)

// PortError reports an attach call referencing a port that is not
// declared by the unit on the respective side of the edge. It is raised
// at wiring time, never at run time.
type PortError struct {
	// Node is the name of the node whose declaration was violated
	Node string
	// Port is the undeclared port name
	Port string
	// Side indicates whether the source or destination port was invalid
	Side PortSide
	// Declared lists the port names the unit actually declares
	Declared []string
}

// Error implements the error interface.
func (e *PortError) Error() string {
	return fmt.Sprintf("%s port %q is not declared by node %s (declared: %v)",
		e.Side, e.Port, e.Node, e.Declared)
}

// Unwrap returns the underlying sentinel error.
func (e *PortError) Unwrap() error { return ErrUnknownPort }

// ConsistencyError reports a subscription whose source port has no
// produced value at notification time. Producing nodes only notify
// after populating their outputs, so this should never occur while the
// engine's invariants hold.
type ConsistencyError struct {
	// Node is the name of the producing node
	Node string
	// Port is the source port with no produced value
	Port string
}

// Error implements the error interface.
func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("node %s: %v: %q", e.Node, ErrMissingOutput, e.Port)
}

// Unwrap returns the underlying sentinel error.
func (e *ConsistencyError) Unwrap() error { return ErrMissingOutput }

// CycleError reports a propagation wave that exceeded a node's maximum
// depth, which indicates a cycle or runaway fan-out in the graph.
type CycleError struct {
	// Node is the name of the node at which the budget ran out
	Node string
	// Depth is the wave depth reached
	Depth int
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("node %s: %v at depth %d", e.Node, ErrMaxDepthExceeded, e.Depth)
}

// Unwrap returns the underlying sentinel error.
func (e *CycleError) Unwrap() error { return ErrMaxDepthExceeded }

// Execution phases reported by UnitError.
const (
	PhaseProduce   = "produce"
	PhaseTransform = "transform"
	PhaseConsume   = "consume"
)

// UnitError wraps a failure raised by a wrapped unit during execution.
// It is distinct from the silent not-ready condition: by the time a
// unit is invoked all of its required inputs are present, so an error
// from the unit is a genuine defect and surfaces to the caller.
type UnitError struct {
	// Node is the name of the node whose unit failed
	Node string
	// Phase is the execution phase that failed
	Phase string
	// Err is the underlying error
	Err error
}

// Error implements the error interface.
func (e *UnitError) Error() string {
	return fmt.Sprintf("node %s: %s failed: %v", e.Node, e.Phase, e.Err)
}

// Unwrap returns the underlying error.
func (e *UnitError) Unwrap() error { return e.Err }

// IsUnknownPort checks if an error was caused by an invalid port binding.
func IsUnknownPort(err error) bool {
	return errors.Is(err, ErrUnknownPort)
}

// IsCycle checks if an error was caused by the propagation depth guard.
func IsCycle(err error) bool {
	return errors.Is(err, ErrMaxDepthExceeded)
}
