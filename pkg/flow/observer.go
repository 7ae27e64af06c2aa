package flow

import "context"

// UpdateHook is invoked after every delivery to an Observer. It is
// bound to the owning node's run attempt at node construction.
type UpdateHook func(ctx context.Context) error

// Observer accumulates inbound values addressed to a consuming node's
// named input ports. Each node owns exactly one Observer for its whole
// lifetime; observers are never shared between nodes.
type Observer struct {
	consuming Values
	hook      UpdateHook
}

// NewObserver creates an observer with the given update hook. A nil
// hook makes deliveries accumulate without triggering anything, which
// is occasionally useful for inspection.
func NewObserver(hook UpdateHook) *Observer {
	return &Observer{
		consuming: make(Values),
		hook:      hook,
	}
}

// Update stores value under port, overwriting any prior value for that
// port, and then invokes the update hook. Every individual delivery
// triggers the hook; there is no batching.
func (o *Observer) Update(ctx context.Context, port string, value any) error {
	o.consuming[port] = value
	if o.hook == nil {
		return nil
	}
	return o.hook(ctx)
}

// Consuming returns the values accumulated so far, keyed by input port.
// The returned map is the observer's own state and must not be mutated
// by callers.
func (o *Observer) Consuming() Values { return o.consuming }

func (o *Observer) has(port string) bool {
	_, ok := o.consuming[port]
	return ok
}

func (o *Observer) clear() {
	o.consuming = make(Values)
}
