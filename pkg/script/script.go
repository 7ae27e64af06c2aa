// Package script provides flow units whose logic is a JavaScript
// snippet executed with goja. Scripts let pipeline authors define small
// transforms without compiling Go code.
//
// A script is evaluated as a single expression. Input port values are
// available through the `inputs` global, and for producing units the
// expression result must be an object whose keys cover the declared
// output ports:
//
//	({sum: inputs.a + inputs.b})
//
// Scripts are compiled once at unit construction, so syntax errors
// surface before the unit is ever wired into a graph.
package script

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dop251/goja"

	"github.com/wehubfusion/Daedalus/pkg/flow"
)

// unit holds a compiled script and the VM that evaluates it. Evaluation
// is serialized: a goja runtime is not safe for concurrent use.
type unit struct {
	cfg  Config
	prog *goja.Program
	vm   *goja.Runtime
	mu   sync.Mutex
}

func newUnit(cfg Config) (*unit, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	prog, err := goja.Compile("unit.js", cfg.Source, true)
	if err != nil {
		return nil, fmt.Errorf("failed to compile script: %w", err)
	}
	return &unit{
		cfg:  cfg,
		prog: prog,
		vm:   goja.New(),
	}, nil
}

// eval runs the compiled script against the given inputs, interrupting
// it when the configured timeout or ctx expires.
func (u *unit) eval(ctx context.Context, in flow.Values) (goja.Value, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if err := u.vm.Set("inputs", map[string]any(in)); err != nil {
		return nil, fmt.Errorf("failed to set inputs: %w", err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, u.cfg.Timeout)
	defer cancel()

	done := make(chan struct{})
	watcherExited := make(chan struct{})
	go func() {
		defer close(watcherExited)
		select {
		case <-timeoutCtx.Done():
			u.vm.Interrupt("execution timeout")
		case <-done:
		}
	}()

	value, err := u.vm.RunProgram(u.prog)
	close(done)
	// Wait for the watcher so a late Interrupt cannot land after the
	// clear and poison the next evaluation.
	<-watcherExited
	u.vm.ClearInterrupt()

	if err != nil {
		if timeoutCtx.Err() != nil {
			return nil, fmt.Errorf("script timed out after %s", u.cfg.Timeout)
		}
		var exc *goja.Exception
		if errors.As(err, &exc) {
			return nil, fmt.Errorf("script raised: %s", exc.Value().String())
		}
		return nil, fmt.Errorf("script failed: %w", err)
	}
	return value, nil
}

// exportValues converts a script result into flow values covering the
// declared output ports.
func (u *unit) exportValues(value goja.Value) (flow.Values, error) {
	exported := value.Export()
	obj, ok := exported.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("script result must be an object, got %T", exported)
	}
	out := make(flow.Values, len(u.cfg.Outputs))
	for _, port := range u.cfg.Outputs {
		v, present := obj[port]
		if !present {
			return nil, fmt.Errorf("script result missing output %q", port)
		}
		out[port] = v
	}
	return out, nil
}

// Producer is a flow.Producer whose outputs are computed by a script.
// The script sees an empty `inputs` object.
type Producer struct {
	u *unit
}

// NewProducer creates a script-backed producer.
func NewProducer(cfg Config) (*Producer, error) {
	if len(cfg.Inputs) != 0 {
		return nil, fmt.Errorf("producer script cannot declare input ports")
	}
	if len(cfg.Outputs) == 0 {
		return nil, fmt.Errorf("producer script must declare at least one output port")
	}
	u, err := newUnit(cfg)
	if err != nil {
		return nil, err
	}
	return &Producer{u: u}, nil
}

// Provides returns the declared output port names.
func (p *Producer) Provides() []string { return p.u.cfg.Outputs }

// Produce evaluates the script and returns its named outputs.
func (p *Producer) Produce(ctx context.Context) (flow.Values, error) {
	value, err := p.u.eval(ctx, flow.Values{})
	if err != nil {
		return nil, err
	}
	return p.u.exportValues(value)
}

// Transform is a flow.Transform whose logic is a script.
type Transform struct {
	u *unit
}

// NewTransform creates a script-backed transform.
func NewTransform(cfg Config) (*Transform, error) {
	if len(cfg.Inputs) == 0 {
		return nil, fmt.Errorf("transform script must declare at least one input port")
	}
	if len(cfg.Outputs) == 0 {
		return nil, fmt.Errorf("transform script must declare at least one output port")
	}
	u, err := newUnit(cfg)
	if err != nil {
		return nil, err
	}
	return &Transform{u: u}, nil
}

// Requires returns the declared input port names.
func (t *Transform) Requires() []string { return t.u.cfg.Inputs }

// Provides returns the declared output port names.
func (t *Transform) Provides() []string { return t.u.cfg.Outputs }

// Transform evaluates the script against a complete set of inputs.
func (t *Transform) Transform(ctx context.Context, in flow.Values) (flow.Values, error) {
	value, err := t.u.eval(ctx, in)
	if err != nil {
		return nil, err
	}
	return t.u.exportValues(value)
}

// Sink is a flow.Sink whose side effect is a script. The script result
// is discarded.
type Sink struct {
	u *unit
}

// NewSink creates a script-backed sink.
func NewSink(cfg Config) (*Sink, error) {
	if len(cfg.Inputs) == 0 {
		return nil, fmt.Errorf("sink script must declare at least one input port")
	}
	if len(cfg.Outputs) != 0 {
		return nil, fmt.Errorf("sink script cannot declare output ports")
	}
	u, err := newUnit(cfg)
	if err != nil {
		return nil, err
	}
	return &Sink{u: u}, nil
}

// Requires returns the declared input port names.
func (s *Sink) Requires() []string { return s.u.cfg.Inputs }

// Consume evaluates the script against a complete set of inputs.
func (s *Sink) Consume(ctx context.Context, in flow.Values) error {
	_, err := s.u.eval(ctx, in)
	return err
}

// Ensure the script units satisfy the flow capability interfaces.
var (
	_ flow.Producer  = (*Producer)(nil)
	_ flow.Transform = (*Transform)(nil)
	_ flow.Sink      = (*Sink)(nil)
)
