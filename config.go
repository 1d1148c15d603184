package audiograph

import "log/slog"

// GraphConfig configures a Graph at construction time. Unlike firewheel's
// Rust original, MaxBlockFrames is a runtime field rather than a
// compile-time generic parameter: Go has no const-generic mechanism suited
// to fixed-size per-block arrays, so buffers are plain []float32 slices of
// length MaxBlockFrames, allocated once per compiled schedule.
type GraphConfig struct {
	// NumGraphInputs/NumGraphOutputs are the channel counts of the graph's
	// sentinel graph_in/graph_out nodes.
	NumGraphInputs  int
	NumGraphOutputs int

	// MaxBlockFrames bounds the largest block size Process will ever be
	// called with: Executor.ProcessInterleaved splits longer calls into
	// blocks of at most this many frames. NewGraph replaces a value <= 0
	// with Default().MaxBlockFrames.
	MaxBlockFrames int

	// InitialNodeCapacity/InitialEdgeCapacity size the graph's internal
	// slabs up front to avoid reallocation churn during steady-state use.
	InitialNodeCapacity int
	InitialEdgeCapacity int

	// Logger receives diagnostics from Context and Executor. Defaults to
	// slog.Default() when nil.
	Logger *slog.Logger
}

// Default returns a GraphConfig matching firewheel's AudioGraphConfig
// default: no graph inputs, stereo graph output, a 64-node/256-edge
// initial capacity, and a 1024-frame block size.
func Default() GraphConfig {
	return GraphConfig{
		NumGraphInputs:      0,
		NumGraphOutputs:     2,
		MaxBlockFrames:      1024,
		InitialNodeCapacity: 64,
		InitialEdgeCapacity: 256,
	}
}

func (c GraphConfig) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
