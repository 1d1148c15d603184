package audiograph

import "github.com/rustyguts/audiograph/internal/bufpool"

// Edge connects one node's output port to another node's input port. ID
// identifies the edge; the four remaining fields are fixed at creation and
// never change for the edge's lifetime (Graph.Disconnect removes an edge
// outright rather than mutating it).
type Edge struct {
	ID      EdgeID
	SrcNode NodeID
	SrcPort int
	DstNode NodeID
	DstPort int
}

// compileNode is the compiler's view of one node: just enough to run
// topological sort and buffer assignment. The graph store fills this in
// from its node slab in arena (slot) order, which is what makes Kahn's
// tie-break "arena insertion order".
type compileNode struct {
	id         NodeID
	numInputs  int
	numOutputs int
}

// debugAssert panics on a violated internal invariant. The graph store is
// responsible for never calling the compiler with data that fails these —
// they stand in for what a const-generic/borrow-checked language would
// enforce at compile time.
func debugAssert(cond bool, msg string) {
	if !cond {
		panic("audiograph: invariant violated: " + msg)
	}
}

// compileGraph topologically sorts order (Kahn's algorithm, ties broken by
// arena/slot order) with the graph_out node forced last, then assigns
// buffer slots via a refcounted SSA-style allocator. order must contain
// graphInID as its first element (graph_in is created before any user node
// and therefore always has the lowest slot) and graphOutID somewhere
// within it. It returns the resulting ScheduledNode list (without
// Processor set — the caller fills that in after activation) and the
// number of distinct buffer slots used.
func compileGraph(order []compileNode, edges []Edge, graphOutID NodeID) ([]ScheduledNode, int, error) {
	incoming := make(map[nodeKey][]Edge, len(order))
	outgoing := make(map[nodeKey][]Edge, len(order))
	for _, e := range edges {
		incoming[e.DstNode.key()] = append(incoming[e.DstNode.key()], e)
		outgoing[e.SrcNode.key()] = append(outgoing[e.SrcNode.key()], e)
	}

	byKey := make(map[nodeKey]compileNode, len(order))
	for _, n := range order {
		byKey[n.id.key()] = n
		debugAssert(n.numInputs <= 64, "node has more than 64 input ports")
		debugAssert(n.numOutputs <= 64, "node has more than 64 output ports")
	}
	debugAssert(len(outgoing[graphOutID.key()]) == 0, "graph_out has outgoing edges")

	// Topologically sort every node except graph_out, whose incoming
	// edges are excluded from the in-degree count so it never competes to
	// be dequeued early; it is appended manually once the rest settles.
	inDegree := make(map[nodeKey]int, len(order))
	for _, n := range order {
		if n.id.Equal(graphOutID) {
			continue
		}
		inDegree[n.id.key()] = len(incoming[n.id.key()])
	}

	queue := make([]NodeID, 0, len(order))
	for _, n := range order {
		if n.id.Equal(graphOutID) {
			continue
		}
		if inDegree[n.id.key()] == 0 {
			queue = append(queue, n.id)
		}
	}

	sorted := make([]NodeID, 0, len(order))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		sorted = append(sorted, id)
		for _, e := range outgoing[id.key()] {
			if e.DstNode.Equal(graphOutID) {
				continue
			}
			dk := e.DstNode.key()
			inDegree[dk]--
			if inDegree[dk] == 0 {
				queue = append(queue, e.DstNode)
			}
		}
	}

	if len(sorted) != len(order)-1 {
		return nil, 0, &ErrCompileCycleDetected{}
	}
	sorted = append(sorted, graphOutID)

	var allocator bufpool.Allocator
	assignment := make(map[EdgeID]*bufpool.Handle, len(edges))
	nodes := make([]ScheduledNode, len(sorted))

	for i, id := range sorted {
		n, ok := byKey[id.key()]
		if !ok {
			return nil, 0, &ErrNodeOnEdgeNotFound{Node: id}
		}

		inBufs := make([]InBufferAssignment, n.numInputs)
		// toRelease collects every handle this node's own step is done with
		// (consumed inputs and outputs with no outgoing edge) so they are
		// all released together after every port is assigned, not as each
		// port is visited — releasing an output early would let a later
		// port on the same node re-acquire its index before the node's
		// assignments are complete.
		var toRelease []*bufpool.Handle
		for port := 0; port < n.numInputs; port++ {
			var matches []Edge
			for _, e := range incoming[id.key()] {
				if e.DstPort == port {
					matches = append(matches, e)
				}
			}
			switch len(matches) {
			case 0:
				h := allocator.Acquire()
				inBufs[port] = InBufferAssignment{BufferIndex: int(h.Ref().Index), ShouldClear: true}
				toRelease = append(toRelease, h)
			case 1:
				h, ok := assignment[matches[0].ID]
				if !ok {
					return nil, 0, &ErrNodeOnEdgeNotFound{Edge: matches[0].ID, Node: id}
				}
				delete(assignment, matches[0].ID)
				inBufs[port] = InBufferAssignment{BufferIndex: int(h.Ref().Index), ShouldClear: false}
				toRelease = append(toRelease, h)
			default:
				return nil, 0, &ErrManyToOne{Node: id, Port: port}
			}
		}

		outBufs := make([]OutBufferAssignment, n.numOutputs)
		for port := 0; port < n.numOutputs; port++ {
			var matches []Edge
			for _, e := range outgoing[id.key()] {
				if e.SrcPort == port {
					matches = append(matches, e)
				}
			}
			h := allocator.Acquire()
			outBufs[port] = OutBufferAssignment{BufferIndex: int(h.Ref().Index)}
			for _, e := range matches {
				assignment[e.ID] = h.Clone()
			}
			toRelease = append(toRelease, h)
		}

		for _, h := range toRelease {
			allocator.Release(h)
		}

		nodes[i] = ScheduledNode{ID: id, Inputs: inBufs, Outputs: outBufs}
	}

	return nodes, allocator.NumBuffers(), nil
}
