package audiograph

// Messages passed between the control thread (Context) and the realtime
// thread (Executor) over the two internal/ringbuf queues. Neither side
// shares memory through anything but these messages: ownership of a
// CompiledSchedule or a NodeProcessor moves across the boundary, it is
// never aliased on both sides at once.

// msgNewSchedule hands a freshly compiled schedule to the executor.
// removedNodeIDs lists nodes that existed in the executor's current
// schedule but do not exist in the new one; the executor must excise their
// NodeProcessors before adopting schedule and return them via
// msgReturnSchedule so Deactivate can run on the control thread.
type msgNewSchedule struct {
	schedule       *CompiledSchedule
	removedNodeIDs []NodeID
}

// msgStop tells the executor to stop processing (ProcessInterleaved should
// start emitting silence) without tearing down the stream itself.
type msgStop struct{}

// msgReturnSchedule hands the executor's previous schedule back to the
// control thread for deallocation off the realtime thread, along with any
// NodeProcessors that were removed when the new schedule was adopted.
type msgReturnSchedule struct {
	oldSchedule       *CompiledSchedule
	removedProcessors map[NodeID]NodeProcessor
}

// msgDropped tells the control thread the executor itself has been torn
// down (the backend stream closed) and hands back every remaining
// NodeProcessor still held by its schedule so they can be deactivated.
type msgDropped struct {
	remainingProcessors map[NodeID]NodeProcessor
}
