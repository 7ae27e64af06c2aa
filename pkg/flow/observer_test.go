package flow

import (
	"context"
	"errors"
	"testing"
)

func TestObserverUpdateStoresValueAndInvokesHook(t *testing.T) {
	calls := 0
	obs := NewObserver(func(ctx context.Context) error {
		calls++
		return nil
	})

	if err := obs.Update(context.Background(), "x", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := obs.Consuming()["x"]; got != 1 {
		t.Errorf("expected consuming[x] == 1, got %v", got)
	}
	if calls != 1 {
		t.Errorf("expected hook to be invoked exactly once, got %d", calls)
	}
}

func TestObserverAccumulatesAcrossDeliveries(t *testing.T) {
	calls := 0
	obs := NewObserver(func(ctx context.Context) error {
		calls++
		return nil
	})
	ctx := context.Background()

	if err := obs.Update(ctx, "a", "first"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := obs.Update(ctx, "b", "second"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(obs.Consuming()) != 2 {
		t.Fatalf("expected 2 accumulated values, got %d", len(obs.Consuming()))
	}
	if calls != 2 {
		t.Errorf("expected one hook invocation per delivery, got %d", calls)
	}
}

func TestObserverOverwritesPriorValueForPort(t *testing.T) {
	obs := NewObserver(nil)
	ctx := context.Background()

	_ = obs.Update(ctx, "x", 1)
	_ = obs.Update(ctx, "x", 2)

	if got := obs.Consuming()["x"]; got != 2 {
		t.Errorf("expected last delivery to win, got %v", got)
	}
	if len(obs.Consuming()) != 1 {
		t.Errorf("expected a single port entry, got %d", len(obs.Consuming()))
	}
}

func TestObserverNilHook(t *testing.T) {
	obs := NewObserver(nil)
	if err := obs.Update(context.Background(), "x", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestObserverHookErrorSurfacesAndValueIsKept(t *testing.T) {
	hookErr := errors.New("hook failed")
	obs := NewObserver(func(ctx context.Context) error {
		return hookErr
	})

	err := obs.Update(context.Background(), "x", 1)
	if !errors.Is(err, hookErr) {
		t.Fatalf("expected hook error, got %v", err)
	}
	if got := obs.Consuming()["x"]; got != 1 {
		t.Errorf("value must be stored before the hook runs, got %v", got)
	}
}
