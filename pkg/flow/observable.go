package flow

import "context"

// Subscription links one produced output port to one consuming input
// port. An edge of the graph is nothing more than an entry in the
// producing node's subscription list.
type Subscription struct {
	// Observer is the target consumer's observer
	Observer *Observer
	// SourcePort is the output port on the producing side
	SourcePort string
	// DestPort is the input port on the consuming side
	DestPort string
}

// Observable holds a producing node's latest output values and its
// downstream subscriptions. Each producing node owns exactly one
// Observable for its whole lifetime.
type Observable struct {
	name      string
	providing Values
	subs      []Subscription
}

// NewObservable creates an empty observable.
func NewObservable() *Observable {
	return &Observable{providing: make(Values)}
}

// Register appends a subscription. Subscriptions are not de-duplicated:
// registering the same triple twice yields two deliveries per Notify
// call. Registration order is preserved and determines delivery order.
// A subscription added during an in-progress Notify takes effect on the
// next notification, not the current one.
func (o *Observable) Register(obs *Observer, sourcePort, destPort string) {
	o.subs = append(o.subs, Subscription{
		Observer:   obs,
		SourcePort: sourcePort,
		DestPort:   destPort,
	})
}

// Unregister removes every subscription targeting obs. Unregistering an
// observer that was never registered is a no-op. The filtered list is a
// fresh allocation so that an in-progress Notify keeps delivering over
// the list it started with.
func (o *Observable) Unregister(obs *Observer) {
	kept := make([]Subscription, 0, len(o.subs))
	for _, s := range o.subs {
		if s.Observer != obs {
			kept = append(kept, s)
		}
	}
	o.subs = kept
}

// Notify delivers the current output values to every subscription in
// registration order. A subscription whose source port has no produced
// value violates the engine's invariants and fails loudly with a
// ConsistencyError rather than being skipped.
//
// Deliveries trigger the receiving observers' update hooks, so a single
// Notify call may drive arbitrary downstream execution before it
// returns. The first error stops delivery.
func (o *Observable) Notify(ctx context.Context) error {
	for _, s := range o.subs {
		value, ok := o.providing[s.SourcePort]
		if !ok {
			return &ConsistencyError{Node: o.name, Port: s.SourcePort}
		}
		if err := s.Observer.Update(ctx, s.DestPort, value); err != nil {
			return err
		}
	}
	return nil
}

// Observers returns the currently subscribed observers in registration
// order, for inspection. An observer appears once per subscription.
func (o *Observable) Observers() []*Observer {
	out := make([]*Observer, len(o.subs))
	for i, s := range o.subs {
		out[i] = s.Observer
	}
	return out
}

// Providing returns the latest produced values, keyed by output port.
// The returned map is the observable's own state and must not be
// mutated by callers.
func (o *Observable) Providing() Values { return o.providing }

// Set records a produced value for port without notifying anyone.
func (o *Observable) Set(port string, value any) {
	o.providing[port] = value
}

func (o *Observable) merge(values Values) {
	for port, value := range values {
		o.providing[port] = value
	}
}
