package audiograph

// NodeInfo describes a node's static port constraints, reported by Info.
// AddNode creates the node with MinSupportedInputs/MinSupportedOutputs
// ports; Connect checks ports against the node's current port counts, not
// against these ranges.
type NodeInfo struct {
	// MinSupportedInputs/MaxSupportedInputs bound the node's input port
	// count. SetNumInputs/SetNumOutputs do not check the new count against
	// this range.
	MinSupportedInputs int
	MaxSupportedInputs int

	MinSupportedOutputs int
	MaxSupportedOutputs int

	// WantsPeriodicUpdate reports whether Context.Update should call the
	// node's Update method each pass (for nodes with non-realtime
	// housekeeping, e.g. pruning a decoder cache). Most nodes leave this
	// false.
	WantsPeriodicUpdate bool

	// DebugName is used only for NodeID.DebugName and diagnostics.
	DebugName string
}

// StreamStatus reports timing irregularities the backend observed for the
// block currently being processed (e.g. a device under/overrun), forwarded
// unchanged to every node's ProcInfo for the duration of one
// Executor.ProcessInterleaved call. Nodes may ignore it; it exists so a
// node that depends on steady timing (e.g. a jitter buffer) can react.
type StreamStatus uint8

const (
	StreamStatusNormal StreamStatus = iota
	StreamStatusInputUnderflow
	StreamStatusInputOverflow
	StreamStatusOutputUnderflow
	StreamStatusOutputOverflow
)

// ProcInfo carries per-block context passed to NodeProcessor.Process: the
// combined silence mask of the node's input buffers, the stream clock and
// status at the start of this ProcessInterleaved call, and the opaque
// user context pinned on the realtime thread. A node reports which of its
// output channels are silent via Process's return value rather than a
// field here.
type ProcInfo struct {
	InSilenceMask SilenceMask

	// StreamTimeSecs is the backend-reported stream clock, in seconds,
	// at the start of the ProcessInterleaved call this block belongs
	// to. It does not advance between the internal blocks of a single
	// call that spans more than MaxBlockFrames.
	StreamTimeSecs float64

	// StreamStatus reports timing irregularities for this call.
	StreamStatus StreamStatus

	// UserContext is the opaque value passed as userContext to
	// Context.Activate, forwarded unchanged for the lifetime of the
	// returned Executor; nil if Activate was given nil. No core component
	// inspects it.
	UserContext any
}

// Node is the control-side half of a graph node: it describes the node's
// ports, and produces/destroys a NodeProcessor (the realtime-side half)
// when the graph is activated or a node is removed from the schedule.
//
// Node methods are only ever called from the control thread.
type Node interface {
	Info() NodeInfo

	// Activate is called once when the node first enters a compiled,
	// activated schedule. It returns the realtime-side NodeProcessor that
	// will be moved across to the executor.
	Activate(sampleRate float64, maxBlockFrames, numInputs, numOutputs int) (NodeProcessor, error)

	// Deactivate is called when a node leaves the schedule (removed from
	// the graph, or the graph itself deactivates) and its NodeProcessor has
	// been handed back from the executor. processor is nil if the node was
	// never successfully activated.
	Deactivate(processor NodeProcessor)

	// Update is called by Context.Update iff Info().WantsPeriodicUpdate is
	// true. Never called concurrently with Activate/Deactivate.
	Update()
}

// NodeProcessor is the realtime-side half of a graph node. Process must
// never allocate, lock, or block: it runs on the realtime audio thread.
type NodeProcessor interface {
	// Process reads frames samples from each of inputs (len(inputs) ==
	// numInputs given to Activate) and writes frames samples to each of
	// outputs. It returns a SilenceMask describing which output channels
	// are silent after this call.
	Process(frames int, inputs [][]float32, outputs [][]float32, info ProcInfo) SilenceMask
}

// BaseNode implements the no-op parts of Node (Deactivate/Update) so
// concrete node types can embed it and only implement Info/Activate.
type BaseNode struct{}

func (BaseNode) Deactivate(NodeProcessor) {}
func (BaseNode) Update()                  {}
