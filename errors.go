package audiograph

import "fmt"

// AddEdgeError is implemented by every error connect/disconnect can return.
type AddEdgeError interface {
	error
	addEdgeError()
}

type addEdgeErrBase struct{}

func (addEdgeErrBase) addEdgeError() {}

// ErrSrcNodeNotFound is returned when Connect's source node does not exist.
type ErrSrcNodeNotFound struct {
	addEdgeErrBase
	Node NodeID
}

func (e *ErrSrcNodeNotFound) Error() string {
	return fmt.Sprintf("audiograph: source node %s not found", e.Node)
}

// ErrDstNodeNotFound is returned when Connect's destination node does not exist.
type ErrDstNodeNotFound struct {
	addEdgeErrBase
	Node NodeID
}

func (e *ErrDstNodeNotFound) Error() string {
	return fmt.Sprintf("audiograph: destination node %s not found", e.Node)
}

// ErrOutPortOutOfRange is returned when the source output port index is
// out of range for the source node's port count.
type ErrOutPortOutOfRange struct {
	addEdgeErrBase
	Node         NodeID
	Port         int
	NumOutPorts  int
}

func (e *ErrOutPortOutOfRange) Error() string {
	return fmt.Sprintf("audiograph: output port %d out of range for node %s (has %d output ports)", e.Port, e.Node, e.NumOutPorts)
}

// ErrInPortOutOfRange is returned when the destination input port index is
// out of range for the destination node's port count.
type ErrInPortOutOfRange struct {
	addEdgeErrBase
	Node       NodeID
	Port       int
	NumInPorts int
}

func (e *ErrInPortOutOfRange) Error() string {
	return fmt.Sprintf("audiograph: input port %d out of range for node %s (has %d input ports)", e.Port, e.Node, e.NumInPorts)
}

// ErrEdgeAlreadyExists is returned when an identical edge (same src/dst
// node and port on both ends) already exists in the graph.
type ErrEdgeAlreadyExists struct {
	addEdgeErrBase
}

func (e *ErrEdgeAlreadyExists) Error() string {
	return "audiograph: edge already exists"
}

// ErrInputPortAlreadyConnected is returned when the destination input port
// already has an incoming edge; each input port accepts at most one edge
// (many-to-one fan-in requires an explicit sum node).
type ErrInputPortAlreadyConnected struct {
	addEdgeErrBase
	Node NodeID
	Port int
}

func (e *ErrInputPortAlreadyConnected) Error() string {
	return fmt.Sprintf("audiograph: input port %d on node %s is already connected", e.Port, e.Node)
}

// ErrCycleDetected is returned by Connect (and Compile) when the edge would
// introduce a cycle.
type ErrCycleDetected struct {
	addEdgeErrBase
}

func (e *ErrCycleDetected) Error() string {
	return "audiograph: cycle detected"
}

// CompileError is implemented by every error Compile can return.
type CompileError interface {
	error
	compileError()
}

type compileErrBase struct{}

func (compileErrBase) compileError() {}

// ErrCompileCycleDetected is returned by Compile when the graph, taken as a
// whole, contains a cycle (should not happen if Connect rejected every
// cycle-introducing edge, but is checked again at compile time).
type ErrCompileCycleDetected struct {
	compileErrBase
}

func (e *ErrCompileCycleDetected) Error() string {
	return "audiograph: compile failed, cycle detected"
}

// ErrNodeOnEdgeNotFound is returned when an edge references a node that no
// longer exists in the graph (internal consistency failure).
type ErrNodeOnEdgeNotFound struct {
	compileErrBase
	Edge EdgeID
	Node NodeID
}

func (e *ErrNodeOnEdgeNotFound) Error() string {
	return fmt.Sprintf("audiograph: node %s referenced by edge %s not found", e.Node, e.Edge)
}

// ErrManyToOne is returned when a node's input port has more than one
// incoming edge at compile time.
type ErrManyToOne struct {
	compileErrBase
	Node NodeID
	Port int
}

func (e *ErrManyToOne) Error() string {
	return fmt.Sprintf("audiograph: input port %d on node %s has more than one incoming edge", e.Port, e.Node)
}

// ErrNodeActivation wraps an error returned by a Node's Activate method
// during compile.
type ErrNodeActivation struct {
	compileErrBase
	Node NodeID
	Err  error
}

func (e *ErrNodeActivation) Error() string {
	return fmt.Sprintf("audiograph: node %s failed to activate: %v", e.Node, e.Err)
}

func (e *ErrNodeActivation) Unwrap() error { return e.Err }

// ErrMessageChannelFull is returned by Update when the control->executor
// queue is full and a new schedule cannot be handed off yet.
type ErrMessageChannelFull struct {
	compileErrBase
}

func (e *ErrMessageChannelFull) Error() string {
	return "audiograph: control->executor message queue is full"
}
