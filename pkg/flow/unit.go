package flow

import (
	"context"
	"fmt"
)

// Values holds named port values exchanged between nodes.
type Values map[string]any

// Producer is a zero-input unit. It declares its output port names once
// and returns a value for each of them when produced.
type Producer interface {
	// Provides returns the declared output port names.
	Provides() []string

	// Produce runs the unit and returns its named output values.
	Produce(ctx context.Context) (Values, error)
}

// Transform is a unit that consumes named input values and returns
// named output values.
type Transform interface {
	// Requires returns the declared input port names. The unit is only
	// invoked once every required port holds a value.
	Requires() []string

	// Provides returns the declared output port names.
	Provides() []string

	// Transform runs the unit against a complete set of inputs.
	Transform(ctx context.Context, in Values) (Values, error)
}

// Sink is a terminal unit that consumes named input values and performs
// an external side effect.
type Sink interface {
	// Requires returns the declared input port names.
	Requires() []string

	// Consume runs the unit against a complete set of inputs.
	Consume(ctx context.Context, in Values) error
}

// ProduceFunc wraps a function as a Producer with the given output ports.
func ProduceFunc(provides []string, fn func(ctx context.Context) (Values, error)) Producer {
	return &produceFunc{provides: provides, fn: fn}
}

type produceFunc struct {
	provides []string
	fn       func(ctx context.Context) (Values, error)
}

func (p *produceFunc) Provides() []string { return p.provides }

func (p *produceFunc) Produce(ctx context.Context) (Values, error) {
	return p.fn(ctx)
}

// TransformFunc wraps a function as a Transform with the given input
// and output ports.
func TransformFunc(requires, provides []string, fn func(ctx context.Context, in Values) (Values, error)) Transform {
	return &transformFunc{requires: requires, provides: provides, fn: fn}
}

type transformFunc struct {
	requires []string
	provides []string
	fn       func(ctx context.Context, in Values) (Values, error)
}

func (t *transformFunc) Requires() []string { return t.requires }

func (t *transformFunc) Provides() []string { return t.provides }

func (t *transformFunc) Transform(ctx context.Context, in Values) (Values, error) {
	return t.fn(ctx, in)
}

// SinkFunc wraps a function as a Sink with the given input ports.
func SinkFunc(requires []string, fn func(ctx context.Context, in Values) error) Sink {
	return &sinkFunc{requires: requires, fn: fn}
}

type sinkFunc struct {
	requires []string
	fn       func(ctx context.Context, in Values) error
}

func (s *sinkFunc) Requires() []string { return s.requires }

func (s *sinkFunc) Consume(ctx context.Context, in Values) error {
	return s.fn(ctx, in)
}

// ports is a declared port list resolved once at node construction.
type ports struct {
	list []string
	set  map[string]struct{}
}

func newPorts(names []string) (ports, error) {
	p := ports{
		list: names,
		set:  make(map[string]struct{}, len(names)),
	}
	for _, name := range names {
		if name == "" {
			return ports{}, fmt.Errorf("port name cannot be empty")
		}
		if _, dup := p.set[name]; dup {
			return ports{}, fmt.Errorf("duplicate port name %q", name)
		}
		p.set[name] = struct{}{}
	}
	return p, nil
}

func (p ports) contains(name string) bool {
	_, ok := p.set[name]
	return ok
}

func (p ports) empty() bool { return len(p.list) == 0 }
