package audiograph

// InBufferAssignment is one scheduled node's assignment for a single input
// port: which buffer slot to read, and whether that slot must be zeroed
// before reading (true when the port has no incoming edge).
type InBufferAssignment struct {
	BufferIndex int
	ShouldClear bool
}

// OutBufferAssignment is one scheduled node's assignment for a single
// output port: which buffer slot to write.
type OutBufferAssignment struct {
	BufferIndex int
}

// ScheduledNode is one node in a compiled, ordered schedule, together with
// its realtime-side processor and buffer assignments. The compiler
// guarantees no two buffer indexes referenced by a single ScheduledNode's
// Inputs/Outputs alias each other, so Process can read/write them via
// plain slice indexing with no aliasing checks.
//
// inScratch/outScratch are preallocated once when the schedule is built so
// that Process, which runs on the realtime thread, never allocates: each
// call only rewrites the slice headers within these already-sized arrays.
type ScheduledNode struct {
	ID        NodeID
	Processor NodeProcessor
	Inputs    []InBufferAssignment
	Outputs   []OutBufferAssignment

	inScratch  [][]float32
	outScratch [][]float32
}

// CompiledSchedule is the executable result of compiling a Graph: an
// ordered list of ScheduledNode (graph_in always first, graph_out always
// last) plus the buffer pool they share. Buffers are reused in place
// across Process calls; they are never reallocated once the schedule is
// built.
type CompiledSchedule struct {
	Nodes          []ScheduledNode
	Buffers        [][]float32
	BufferSilent   []bool
	maxBlockFrames int

	prepScratch [][]float32
	readScratch [][]float32
}

// newCompiledSchedule allocates a schedule's buffer pool and every scratch
// slice Process/PrepareGraphInputs/ReadGraphOutputs will need, up front.
// numBuffers buffers of length maxBlockFrames are zero-initialized; they
// are reused (cleared in place where ShouldClear demands it) across every
// subsequent Process call.
func newCompiledSchedule(nodes []ScheduledNode, numBuffers, maxBlockFrames int) *CompiledSchedule {
	buffers := make([][]float32, numBuffers)
	for i := range buffers {
		buffers[i] = make([]float32, maxBlockFrames)
	}
	for i := range nodes {
		nodes[i].inScratch = make([][]float32, len(nodes[i].Inputs))
		nodes[i].outScratch = make([][]float32, len(nodes[i].Outputs))
	}
	s := &CompiledSchedule{
		Nodes:          nodes,
		Buffers:        buffers,
		BufferSilent:   make([]bool, numBuffers),
		maxBlockFrames: maxBlockFrames,
	}
	if len(nodes) > 0 {
		s.prepScratch = make([][]float32, len(nodes[0].Outputs))
		s.readScratch = make([][]float32, len(nodes[len(nodes)-1].Inputs))
	}
	return s
}

// PrepareGraphInputs fills the graph_in node's output buffers (schedule
// index 0) from the stream's input channels. fillInputs is called with the
// first min(numStreamInputs, len(graph_in.Outputs)) output buffers (each
// sliced to frames) and must return a SilenceMask describing which of
// those channels it left silent; any remaining graph_in outputs beyond
// numStreamInputs are zeroed and marked silent directly.
func (s *CompiledSchedule) PrepareGraphInputs(frames, numStreamInputs int, fillInputs func(bufs [][]float32) SilenceMask) {
	graphIn := &s.Nodes[0]
	fillLen := numStreamInputs
	if fillLen > len(graphIn.Outputs) {
		fillLen = len(graphIn.Outputs)
	}

	bufs := s.prepScratch[:fillLen]
	for i := 0; i < fillLen; i++ {
		idx := graphIn.Outputs[i].BufferIndex
		bufs[i] = s.Buffers[idx][:frames]
	}

	var mask SilenceMask
	if fillLen > 0 {
		mask = fillInputs(bufs)
	}
	for i := 0; i < fillLen; i++ {
		idx := graphIn.Outputs[i].BufferIndex
		s.BufferSilent[idx] = mask.IsChannelSilent(i)
	}

	for i := fillLen; i < len(graphIn.Outputs); i++ {
		idx := graphIn.Outputs[i].BufferIndex
		buf := s.Buffers[idx][:frames]
		for j := range buf {
			buf[j] = 0
		}
		s.BufferSilent[idx] = true
	}
}

// ReadGraphOutputs hands the graph_out node's input buffers (schedule
// index len-1) to readOutputs, along with a SilenceMask describing which
// are currently flagged silent.
func (s *CompiledSchedule) ReadGraphOutputs(frames, numStreamOutputs int, readOutputs func(bufs [][]float32, mask SilenceMask)) {
	graphOut := &s.Nodes[len(s.Nodes)-1]
	readLen := numStreamOutputs
	if readLen > len(graphOut.Inputs) {
		readLen = len(graphOut.Inputs)
	}

	bufs := s.readScratch[:readLen]
	var mask SilenceMask
	for i := 0; i < readLen; i++ {
		idx := graphOut.Inputs[i].BufferIndex
		bufs[i] = s.Buffers[idx][:frames]
		mask = mask.SetChannel(i, s.BufferSilent[idx])
	}
	readOutputs(bufs, mask)
}

// Process runs every scheduled node in order for one block of frames
// samples. For each node, input buffers flagged ShouldClear are zeroed
// first, the node's input silence mask is composed from stored per-buffer
// silence flags, then process is invoked with the node's input/output
// buffer slices (each sliced to frames) to obtain the node's output
// silence mask, which is recorded back onto the corresponding output
// buffers' silence flags. info supplies the stream-level fields
// (StreamTimeSecs, StreamStatus, UserContext) copied into every node's
// ProcInfo; its InSilenceMask is overwritten per node. Process performs no
// allocation of its own.
func (s *CompiledSchedule) Process(frames int, info ProcInfo, process func(node *ScheduledNode, inputs [][]float32, outputs [][]float32, info ProcInfo) SilenceMask) {
	for i := range s.Nodes {
		node := &s.Nodes[i]

		var inMask SilenceMask
		for p, in := range node.Inputs {
			if in.ShouldClear {
				buf := s.Buffers[in.BufferIndex][:frames]
				for j := range buf {
					buf[j] = 0
				}
				s.BufferSilent[in.BufferIndex] = true
			}
			node.inScratch[p] = s.Buffers[in.BufferIndex][:frames]
			inMask = inMask.SetChannel(p, s.BufferSilent[in.BufferIndex])
		}

		for p, out := range node.Outputs {
			node.outScratch[p] = s.Buffers[out.BufferIndex][:frames]
		}

		nodeInfo := info
		nodeInfo.InSilenceMask = inMask
		outMask := process(node, node.inScratch, node.outScratch, nodeInfo)

		for p, out := range node.Outputs {
			s.BufferSilent[out.BufferIndex] = outMask.IsChannelSilent(p)
		}
	}
}
