package audiograph

import (
	"log/slog"
	"sync/atomic"

	"github.com/rustyguts/audiograph/internal/ringbuf"
)

// Status is returned by ProcessInterleaved to tell the backend whether to
// keep calling it.
type Status int

const (
	// StatusOk means the backend should keep driving the stream.
	StatusOk Status = iota
	// StatusDropProcessor means the executor is no longer running (a Stop
	// message was observed) and must be torn down via Close; the backend
	// should stop invoking ProcessInterleaved.
	StatusDropProcessor
)

// Executor is the realtime-side half of the engine: it owns the current
// CompiledSchedule and is driven from a Backend's audio device callback via
// ProcessInterleaved. Every method on Executor is meant to be called from
// exactly one thread (the audio callback thread) except for the queues it
// drains, which the control thread (Context) writes to concurrently.
//
// Executor must never allocate, lock, or block inside ProcessInterleaved:
// that is the one hard realtime-safety rule the whole design exists to
// uphold.
type Executor struct {
	schedule       *CompiledSchedule
	maxBlockFrames int

	fromControl *ringbuf.Queue
	toControl   *ringbuf.Queue

	running atomic.Bool
	logger  *slog.Logger

	// userContext is forwarded unchanged to every node's ProcInfo.
	userContext any

	// scratchIn/scratchOut are never allocated or read: deinterleaveInto
	// and interleaveFrom work directly on the schedule's buffers and the
	// caller's interleaved slices.
	scratchIn  []float32
	scratchOut []float32
}

func newExecutor(maxBlockFrames int, fromControl, toControl *ringbuf.Queue, userContext any, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	ex := &Executor{
		maxBlockFrames: maxBlockFrames,
		fromControl:    fromControl,
		toControl:      toControl,
		userContext:    userContext,
		logger:         logger,
	}
	ex.running.Store(true)
	return ex
}

// pollMessages drains pending control->executor messages. Called at the
// start of every ProcessInterleaved call (and may be called more often by
// a backend that wants lower handoff latency).
func (ex *Executor) pollMessages() {
	for {
		raw, ok := ex.fromControl.Pop()
		if !ok {
			return
		}
		switch msg := raw.(type) {
		case msgNewSchedule:
			ex.adoptSchedule(msg)
		case msgStop:
			ex.running.Store(false)
		}
	}
}

func (ex *Executor) adoptSchedule(msg msgNewSchedule) {
	old := ex.schedule
	ex.schedule = msg.schedule

	removed := make(map[NodeID]NodeProcessor, len(msg.removedNodeIDs))
	if old != nil {
		for _, id := range msg.removedNodeIDs {
			for i := range old.Nodes {
				if old.Nodes[i].ID.Equal(id) {
					removed[id] = old.Nodes[i].Processor
					break
				}
			}
		}
	}

	if !ex.toControl.Push(msgReturnSchedule{oldSchedule: old, removedProcessors: removed}) {
		ex.logger.Error("audiograph: executor->control queue full, dropping ReturnSchedule", "schedule_nodes", len(msg.removedNodeIDs))
	}
}

// ProcessInterleaved is called from the backend's device callback once per
// block. input is an interleaved buffer of numInputChannels*frames
// samples (empty if the stream has no input channels); output must be
// sized for numOutputChannels*frames samples and is fully overwritten.
// streamTimeSecs and streamStatus are whatever the backend reports for
// this callback; both are forwarded unchanged to every node's ProcInfo
// for every internal block this call spans. The returned Status tells the
// backend whether to keep calling ProcessInterleaved: StatusDropProcessor
// means the executor observed a Stop message and the backend must instead
// call Close and stop driving the stream.
func (ex *Executor) ProcessInterleaved(input []float32, output []float32, numInputChannels, numOutputChannels, frames int, streamTimeSecs float64, streamStatus StreamStatus) Status {
	ex.pollMessages()

	if !ex.running.Load() {
		for i := range output {
			output[i] = 0
		}
		return StatusDropProcessor
	}

	if ex.schedule == nil || frames == 0 {
		for i := range output {
			output[i] = 0
		}
		return StatusOk
	}

	baseInfo := ProcInfo{StreamTimeSecs: streamTimeSecs, StreamStatus: streamStatus, UserContext: ex.userContext}

	remaining := frames
	inOff, outOff := 0, 0
	for remaining > 0 {
		chunk := remaining
		if chunk > ex.maxBlockFrames {
			chunk = ex.maxBlockFrames
		}

		ex.schedule.PrepareGraphInputs(chunk, numInputChannels, func(bufs [][]float32) SilenceMask {
			return deinterleaveInto(bufs, input, inOff, numInputChannels, chunk)
		})

		ex.schedule.Process(chunk, baseInfo, func(node *ScheduledNode, in, out [][]float32, info ProcInfo) SilenceMask {
			if node.Processor == nil {
				return info.InSilenceMask
			}
			return node.Processor.Process(chunk, in, out, info)
		})

		ex.schedule.ReadGraphOutputs(chunk, numOutputChannels, func(bufs [][]float32, mask SilenceMask) {
			interleaveFrom(output, outOff, bufs, numOutputChannels, chunk)
		})

		inOff += chunk * numInputChannels
		outOff += chunk * numOutputChannels
		remaining -= chunk

		ex.pollMessages()
		if !ex.running.Load() {
			for i := outOff; i < len(output); i++ {
				output[i] = 0
			}
			return StatusDropProcessor
		}
	}

	return StatusOk
}

// deinterleaveInto copies numChannels channels of chunk frames out of the
// interleaved src starting at offset into bufs, and returns a SilenceMask
// of NoneSilent; samples are not scanned for silence. If src is empty
// (the stream has no input channels), every buffer in bufs is zeroed
// instead and AllSilent(len(bufs)) is returned.
func deinterleaveInto(bufs [][]float32, src []float32, offset, numChannels, chunk int) SilenceMask {
	if len(src) == 0 {
		for _, b := range bufs {
			for i := range b {
				b[i] = 0
			}
		}
		return AllSilent(len(bufs))
	}
	for ch := 0; ch < len(bufs); ch++ {
		b := bufs[ch]
		for i := 0; i < chunk; i++ {
			b[i] = src[offset+i*numChannels+ch]
		}
	}
	return NoneSilent
}

func interleaveFrom(dst []float32, offset int, bufs [][]float32, numChannels, chunk int) {
	for i := 0; i < chunk; i++ {
		for ch := 0; ch < numChannels; ch++ {
			var v float32
			if ch < len(bufs) {
				v = bufs[ch][i]
			}
			dst[offset+i*numChannels+ch] = v
		}
	}
}

// Close tears the executor down, handing back every remaining
// NodeProcessor via the executor->control queue. A Backend implementation
// must call this exactly once, after it guarantees ProcessInterleaved will
// never be invoked again (the device stream is fully closed).
func (ex *Executor) Close() {
	remaining := make(map[NodeID]NodeProcessor)
	if ex.schedule != nil {
		for i := range ex.schedule.Nodes {
			remaining[ex.schedule.Nodes[i].ID] = ex.schedule.Nodes[i].Processor
		}
	}
	ex.toControl.Push(msgDropped{remainingProcessors: remaining})
}
