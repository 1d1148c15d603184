package audiograph

import (
	"log/slog"
	"time"

	"github.com/rustyguts/audiograph/internal/ringbuf"
)

// queueCapacity bounds both control<->executor ringbuf queues. 16 matches
// the teacher's style of small, fixed capacities for realtime-adjacent
// channels (client/audio.go sizes its capture/playback channels similarly
// small so a stuck consumer fails fast instead of absorbing unbounded
// backlog).
const queueCapacity = 16

// closeStreamTimeout bounds how long Deactivate waits for the executor to
// acknowledge a Stop/drain before giving up.
const closeStreamTimeout = 3 * time.Second

// closeStreamPollInterval is how often Deactivate polls for the executor's
// acknowledgement while waiting.
const closeStreamPollInterval = 2 * time.Millisecond

// UpdateStatus is returned by Context.Update.
type UpdateStatus struct {
	// Active is true if the graph is activated (a stream is running).
	Active bool
	// GraphError is set if Compile ran this Update and failed.
	GraphError error
	// Deactivated is true if the executor reported it was dropped
	// (backend stream closed) during this Update.
	Deactivated bool
}

// activeState holds the queues and parameters of a running stream; present
// only between Activate and Deactivate.
type activeState struct {
	toExecutor   *ringbuf.Queue
	fromExecutor *ringbuf.Queue
	sampleRate   float64
}

// Context is the control-side entry point: it owns the Graph and, once
// Activate is called, the queues connecting it to an Executor running on
// the realtime thread. Context methods are only ever called from the
// control thread.
type Context struct {
	graph  *Graph
	active *activeState
	logger *slog.Logger
}

// NewContext wraps an already-constructed Graph. A nil logger falls back to
// the graph's GraphConfig.Logger (itself slog.Default() when nil).
func NewContext(graph *Graph, logger *slog.Logger) *Context {
	if logger == nil {
		logger = graph.cfg.logger()
	}
	return &Context{graph: graph, logger: logger}
}

// Graph returns the underlying Graph for mutation (AddNode, Connect, ...).
func (c *Context) Graph() *Graph { return c.graph }

// Activate compiles the current graph and returns an Executor ready to be
// handed to a Backend. userContext is an opaque value forwarded unchanged
// to every node's ProcInfo.UserContext for the lifetime of the returned
// Executor; pass nil if no node needs one. It is an error to call Activate
// while already active.
func (c *Context) Activate(sampleRate float64, userContext any) (*Executor, error) {
	if c.active != nil {
		return nil, &ErrNodeActivation{Node: c.graph.graphInID, Err: errAlreadyActive}
	}

	schedule, err := c.graph.Compile(sampleRate)
	if err != nil {
		return nil, err
	}

	toExecutor := ringbuf.New(queueCapacity)
	fromExecutor := ringbuf.New(queueCapacity)

	c.active = &activeState{toExecutor: toExecutor, fromExecutor: fromExecutor, sampleRate: sampleRate}

	ex := newExecutor(c.graph.cfg.MaxBlockFrames, toExecutor, fromExecutor, userContext, c.logger)
	ex.schedule = schedule
	return ex, nil
}

var errAlreadyActive = errString("context already activated")

type errString string

func (e errString) Error() string { return string(e) }

// Update drains messages from the executor and, if the graph has pending
// mutations, recompiles and hands the executor a new schedule. Call this
// periodically from the control thread (e.g. once per UI tick, or after
// every batch of AddNode/Connect calls).
func (c *Context) Update() UpdateStatus {
	if c.active == nil {
		return UpdateStatus{Active: false}
	}

	dropped := c.drainFromExecutor()
	if dropped {
		c.graph.Deactivate()
		c.active = nil
		return UpdateStatus{Active: false, Deactivated: true}
	}

	for i := range c.graph.nodes {
		s := &c.graph.nodes[i]
		if s.occupied && s.entry.node.Info().WantsPeriodicUpdate {
			s.entry.node.Update()
		}
	}

	if !c.graph.NeedsCompile() {
		return UpdateStatus{Active: true}
	}

	removed := append([]NodeID(nil), c.graph.nodesToRemoveFromSchedule...)
	schedule, err := c.graph.Compile(c.active.sampleRate)
	if err != nil {
		return UpdateStatus{Active: true, GraphError: err}
	}

	if !c.active.toExecutor.Push(msgNewSchedule{schedule: schedule, removedNodeIDs: removed}) {
		c.logger.Error("audiograph: control->executor queue full, rolling back compile")
		c.graph.nodesToRemoveFromSchedule = append(removed, c.graph.nodesToRemoveFromSchedule...)
		c.graph.needsCompile = true
		return UpdateStatus{Active: true, GraphError: &ErrMessageChannelFull{}}
	}

	return UpdateStatus{Active: true}
}

// drainFromExecutor processes every pending executor->control message and
// reports whether the executor signaled it was dropped.
func (c *Context) drainFromExecutor() bool {
	for {
		raw, ok := c.active.fromExecutor.Pop()
		if !ok {
			return false
		}
		switch msg := raw.(type) {
		case msgReturnSchedule:
			for id, proc := range msg.removedProcessors {
				if node, ok := c.graph.NodeForDeactivate(id); ok {
					node.Deactivate(proc)
				}
			}
		case msgDropped:
			for id, proc := range msg.remainingProcessors {
				if node, ok := c.graph.NodeForDeactivate(id); ok {
					node.Deactivate(proc)
				}
				// Already deactivated above; keep Graph.Deactivate from
				// deactivating the same node a second time.
				if e, ok := c.graph.lookup(id); ok {
					e.processor = nil
					e.activated = false
				}
			}
			return true
		}
	}
}

// Deactivate stops and tears down the active stream, waiting (bounded by
// closeStreamTimeout) for the executor to acknowledge. streamIsRunning
// should be true unless the caller already knows the backend's device
// callback has stopped firing (e.g. the device was unplugged).
func (c *Context) Deactivate(streamIsRunning bool) {
	if c.active == nil {
		return
	}

	if streamIsRunning {
		deadline := time.Now().Add(closeStreamTimeout)
		for !c.active.toExecutor.Push(msgStop{}) && time.Now().Before(deadline) {
			time.Sleep(closeStreamPollInterval)
		}
	}

	deadline := time.Now().Add(closeStreamTimeout)
	for time.Now().Before(deadline) {
		if c.drainFromExecutor() {
			break
		}
		time.Sleep(closeStreamPollInterval)
	}

	c.graph.Deactivate()
	c.active = nil
}
