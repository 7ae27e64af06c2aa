package flow

import (
	"context"
	"errors"
	"testing"
)

func TestSinkPartialInputsIsSilentNoop(t *testing.T) {
	executed := 0
	n, err := NewSink(SinkFunc([]string{"a", "b"}, func(ctx context.Context, in Values) error {
		executed++
		return nil
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := n.observer.Update(context.Background(), "a", 1); err != nil {
		t.Fatalf("a not-ready attempt must not surface an error, got %v", err)
	}
	if executed != 0 {
		t.Errorf("sink must not run with incomplete inputs, ran %d times", executed)
	}
	if got := n.State(); got != StateAwaitingInput {
		t.Errorf("expected awaiting_input, got %v", got)
	}
}

func TestSinkExecutesOnceInputsComplete(t *testing.T) {
	var got Values
	n, _ := NewSink(SinkFunc([]string{"a", "b"}, func(ctx context.Context, in Values) error {
		got = Values{"a": in["a"], "b": in["b"]}
		return nil
	}))
	ctx := context.Background()

	_ = n.observer.Update(ctx, "a", 1)
	if err := n.observer.Update(ctx, "b", 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got["a"] != 1 || got["b"] != 2 {
		t.Errorf("unexpected sink inputs: %v", got)
	}
	if len(n.observer.Consuming()) != 0 {
		t.Errorf("consuming must be cleared after a successful run, got %v", n.observer.Consuming())
	}
	if state := n.State(); state != StateExecuted {
		t.Errorf("expected executed, got %v", state)
	}
}

func TestSinkUnitErrorKeepsStagedInputs(t *testing.T) {
	unitErr := errors.New("write failed")
	n, _ := NewSink(SinkFunc([]string{"a"}, func(ctx context.Context, in Values) error {
		return unitErr
	}))

	err := n.observer.Update(context.Background(), "a", 1)
	var ue *UnitError
	if !errors.As(err, &ue) {
		t.Fatalf("expected *UnitError, got %T", err)
	}
	if ue.Phase != PhaseConsume {
		t.Errorf("expected consume phase, got %q", ue.Phase)
	}
	if n.observer.Consuming()["a"] != 1 {
		t.Errorf("inputs are only cleared after a successful run, got %v", n.observer.Consuming())
	}
}
