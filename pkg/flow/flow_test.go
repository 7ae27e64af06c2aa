package flow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPipelineEndToEnd(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	src, err := NewSource(ProduceFunc([]string{"x"}, func(ctx context.Context) (Values, error) {
		return Values{"x": 1}, nil
	}), WithName("S"), WithLogger(logger))
	require.NoError(t, err)

	proc, err := NewTransform(TransformFunc([]string{"x"}, []string{"y"}, func(ctx context.Context, in Values) (Values, error) {
		return Values{"y": in["x"].(int) + 1}, nil
	}), WithName("T"), WithLogger(logger))
	require.NoError(t, err)

	var got []int
	sink, err := NewSink(SinkFunc([]string{"z"}, func(ctx context.Context, in Values) error {
		got = append(got, in["z"].(int))
		return nil
	}), WithName("W"), WithLogger(logger))
	require.NoError(t, err)

	require.NoError(t, src.Attach(proc, "x", "x"))
	require.NoError(t, proc.Attach(sink, "y", "z"))

	require.NoError(t, src.Run(ctx))

	assert.Equal(t, Values{"y": 2}, proc.Observable().Providing())
	assert.Equal(t, []int{2}, got)
	assert.Empty(t, proc.observer.Consuming())
	assert.Empty(t, sink.observer.Consuming())
	assert.Equal(t, StateExecuted, proc.State())
	assert.Equal(t, StateExecuted, sink.State())
}

func TestPipelineFanOut(t *testing.T) {
	ctx := context.Background()

	src, err := NewSource(ProduceFunc([]string{"out"}, func(ctx context.Context) (Values, error) {
		return Values{"out": "payload"}, nil
	}))
	require.NoError(t, err)

	var first, second Values
	w1, err := NewSink(SinkFunc([]string{"p"}, func(ctx context.Context, in Values) error {
		first = Values{"p": in["p"]}
		return nil
	}))
	require.NoError(t, err)
	w2, err := NewSink(SinkFunc([]string{"q"}, func(ctx context.Context, in Values) error {
		second = Values{"q": in["q"]}
		return nil
	}))
	require.NoError(t, err)

	require.NoError(t, src.Attach(w1, "out", "p"))
	require.NoError(t, src.Attach(w2, "out", "q"))

	require.NoError(t, src.Run(ctx))

	assert.Equal(t, Values{"p": "payload"}, first)
	assert.Equal(t, Values{"q": "payload"}, second)
}

func TestPipelineDuplicateEdgeDeliversTwice(t *testing.T) {
	ctx := context.Background()

	src, err := NewSource(ProduceFunc([]string{"x"}, func(ctx context.Context) (Values, error) {
		return Values{"x": 1}, nil
	}))
	require.NoError(t, err)

	executions := 0
	sink, err := NewSink(SinkFunc([]string{"a"}, func(ctx context.Context, in Values) error {
		executions++
		return nil
	}))
	require.NoError(t, err)

	require.NoError(t, src.Attach(sink, "x", "a"))
	require.NoError(t, src.Attach(sink, "x", "a"))

	require.NoError(t, src.Run(ctx))

	// Two identical edges mean two deliveries and, with a single-port
	// sink, two executions per notification.
	assert.Equal(t, 2, executions)
}

func TestPipelineDetachDuringWaveDeliversRemaining(t *testing.T) {
	ctx := context.Background()

	src, err := NewSource(ProduceFunc([]string{"x"}, func(ctx context.Context) (Values, error) {
		return Values{"x": 1}, nil
	}))
	require.NoError(t, err)

	var order []string
	newRecordingSink := func(name string) (*SinkNode, error) {
		return NewSink(SinkFunc([]string{"v"}, func(ctx context.Context, in Values) error {
			order = append(order, name)
			return nil
		}), WithName(name))
	}

	// The first sink unwires itself as its side effect. The two sinks
	// behind it must still each receive exactly one delivery.
	var first *SinkNode
	first, err = NewSink(SinkFunc([]string{"v"}, func(ctx context.Context, in Values) error {
		order = append(order, "first")
		src.Detach(first)
		return nil
	}), WithName("first"))
	require.NoError(t, err)

	second, err := newRecordingSink("second")
	require.NoError(t, err)
	third, err := newRecordingSink("third")
	require.NoError(t, err)

	require.NoError(t, src.Attach(first, "x", "v"))
	require.NoError(t, src.Attach(second, "x", "v"))
	require.NoError(t, src.Attach(third, "x", "v"))

	require.NoError(t, src.Run(ctx))
	assert.Equal(t, []string{"first", "second", "third"}, order)

	order = nil
	require.NoError(t, src.Run(ctx))
	assert.Equal(t, []string{"second", "third"}, order)
}

func TestPipelineChainWithinDepthBudget(t *testing.T) {
	ctx := context.Background()

	src, err := NewSource(ProduceFunc([]string{"v"}, func(ctx context.Context) (Values, error) {
		return Values{"v": 0}, nil
	}))
	require.NoError(t, err)

	increment := func(ctx context.Context, in Values) (Values, error) {
		return Values{"v": in["v"].(int) + 1}, nil
	}

	var prev Emitter = src
	var stages []*TransformNode
	for i := 0; i < 5; i++ {
		stage, err := NewTransform(TransformFunc([]string{"v"}, []string{"v"}, increment))
		require.NoError(t, err)
		require.NoError(t, prev.Attach(stage, "v", "v"))
		stages = append(stages, stage)
		prev = stage
	}

	final := -1
	sink, err := NewSink(SinkFunc([]string{"v"}, func(ctx context.Context, in Values) error {
		final = in["v"].(int)
		return nil
	}))
	require.NoError(t, err)
	require.NoError(t, prev.Attach(sink, "v", "v"))

	require.NoError(t, src.Run(ctx))

	assert.Equal(t, 5, final)
	for _, stage := range stages {
		assert.Equal(t, StateExecuted, stage.State())
	}
}

func TestPipelineCycleIsReported(t *testing.T) {
	ctx := context.Background()

	src, err := NewSource(ProduceFunc([]string{"a"}, func(ctx context.Context) (Values, error) {
		return Values{"a": 0}, nil
	}), WithMaxDepth(8))
	require.NoError(t, err)

	echo := func(out string) func(ctx context.Context, in Values) (Values, error) {
		return func(ctx context.Context, in Values) (Values, error) {
			for _, v := range in {
				return Values{out: v}, nil
			}
			return Values{}, nil
		}
	}

	t1, err := NewTransform(TransformFunc([]string{"a"}, []string{"b"}, echo("b")), WithMaxDepth(8))
	require.NoError(t, err)
	t2, err := NewTransform(TransformFunc([]string{"b"}, []string{"a"}, echo("a")), WithMaxDepth(8))
	require.NoError(t, err)

	require.NoError(t, src.Attach(t1, "a", "a"))
	require.NoError(t, t1.Attach(t2, "b", "b"))
	require.NoError(t, t2.Attach(t1, "a", "a"))

	err = src.Run(ctx)
	require.Error(t, err)
	assert.True(t, IsCycle(err))

	var ce *CycleError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 8, ce.Depth)
}

func TestPipelineUnitErrorPropagatesToTrigger(t *testing.T) {
	ctx := context.Background()
	unitErr := errors.New("transform blew up")

	src, err := NewSource(ProduceFunc([]string{"x"}, func(ctx context.Context) (Values, error) {
		return Values{"x": 1}, nil
	}))
	require.NoError(t, err)

	proc, err := NewTransform(TransformFunc([]string{"x"}, []string{"y"}, func(ctx context.Context, in Values) (Values, error) {
		return nil, unitErr
	}), WithName("failing"))
	require.NoError(t, err)

	require.NoError(t, src.Attach(proc, "x", "x"))

	err = src.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, unitErr)

	var ue *UnitError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "failing", ue.Node)
	assert.Equal(t, PhaseTransform, ue.Phase)
}

func TestPipelineProducerError(t *testing.T) {
	produceErr := errors.New("no data")
	src, err := NewSource(ProduceFunc([]string{"x"}, func(ctx context.Context) (Values, error) {
		return nil, produceErr
	}))
	require.NoError(t, err)

	err = src.Run(context.Background())
	var ue *UnitError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, PhaseProduce, ue.Phase)
	assert.ErrorIs(t, err, produceErr)
}
