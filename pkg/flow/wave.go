package flow

import "context"

// DefaultMaxDepth bounds how many node executions a single propagation
// wave may chain through before it is reported as a cycle. Override per
// node with WithMaxDepth.
const DefaultMaxDepth = 100

type waveDepthKey struct{}

// waveDepth returns the propagation depth recorded in ctx. A context
// outside any wave has depth zero.
func waveDepth(ctx context.Context) int {
	depth, _ := ctx.Value(waveDepthKey{}).(int)
	return depth
}

func withWaveDepth(ctx context.Context, depth int) context.Context {
	return context.WithValue(ctx, waveDepthKey{}, depth)
}
