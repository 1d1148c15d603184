package audiograph

// nodeEntry is the control-side record for one node: its port counts, its
// Node implementation, and whether it currently has a live NodeProcessor
// on the realtime side.
type nodeEntry struct {
	id         NodeID
	numInputs  int
	numOutputs int
	node       Node
	activated  bool
	processor  NodeProcessor
}

type nodeSlot struct {
	generation uint32
	occupied   bool
	entry      *nodeEntry
}

type edgeSlot struct {
	generation uint32
	occupied   bool
	edge       *Edge
}

type inPortKey struct {
	node nodeKey
	port int
}

type edgeHashKey struct {
	src     nodeKey
	srcPort int
	dst     nodeKey
	dstPort int
}

// Graph is the control-side store of nodes and edges: the mutation API
// (AddNode/RemoveNode/Connect/Disconnect) plus the bookkeeping Compile
// needs to produce a CompiledSchedule. Graph methods are only ever called
// from the control thread; the realtime thread only ever touches the
// CompiledSchedule handed to it through Context/Executor.
type Graph struct {
	cfg GraphConfig

	nodes         []nodeSlot
	freeNodeSlots []uint32
	edges         []edgeSlot
	freeEdgeSlots []uint32

	connectedInputPorts map[inPortKey]bool
	existingEdges       map[edgeHashKey]EdgeID

	graphInID  NodeID
	graphOutID NodeID

	needsCompile bool

	// nodesToActivate holds nodes added since the last Compile that still
	// need their NodeProcessor created.
	nodesToActivate []NodeID
	// nodesToRemoveFromSchedule holds nodes removed from the graph since
	// the last Compile; their NodeProcessor (if any) must be excised from
	// the executor's running schedule and handed back for Deactivate.
	nodesToRemoveFromSchedule []NodeID

	// pendingRemoval retains the Node implementation for a removed node
	// that was still activated at the time of removal, keyed by its old
	// NodeID (the same value threaded through nodesToRemoveFromSchedule
	// and the executor's msgReturnSchedule/msgDropped maps). RemoveNode
	// discards the node's slot immediately, but its NodeProcessor may
	// still be live on the realtime thread; Deactivate must not run until
	// the executor hands that processor back, so the Node implementation
	// needed to call it is kept here in the meantime.
	pendingRemoval map[NodeID]Node
}

// NewGraph constructs a Graph with sentinel graph_in/graph_out nodes built
// from graphInNode/graphOutNode (typically nodes/dummy.New(), a zero-cost
// passthrough — the sentinels exist purely to anchor the schedule's first
// and last positions). cfg.NumGraphInputs/NumGraphOutputs set their port
// counts.
func NewGraph(cfg GraphConfig, graphInNode, graphOutNode Node) (*Graph, error) {
	if cfg.MaxBlockFrames <= 0 {
		cfg.MaxBlockFrames = Default().MaxBlockFrames
	}
	g := &Graph{
		cfg:                 cfg,
		nodes:               make([]nodeSlot, 0, cfg.InitialNodeCapacity),
		edges:               make([]edgeSlot, 0, cfg.InitialEdgeCapacity),
		connectedInputPorts: make(map[inPortKey]bool),
		existingEdges:       make(map[edgeHashKey]EdgeID),
		pendingRemoval:      make(map[NodeID]Node),
	}

	graphInID, err := g.addNodeEntry(graphInNode, 0, cfg.NumGraphInputs, "graph_in")
	if err != nil {
		return nil, err
	}
	graphOutID, err := g.addNodeEntry(graphOutNode, cfg.NumGraphOutputs, 0, "graph_out")
	if err != nil {
		return nil, err
	}
	g.graphInID = graphInID
	g.graphOutID = graphOutID
	g.needsCompile = true
	return g, nil
}

// GraphInID returns the sentinel graph_in node's ID.
func (g *Graph) GraphInID() NodeID { return g.graphInID }

// GraphOutID returns the sentinel graph_out node's ID.
func (g *Graph) GraphOutID() NodeID { return g.graphOutID }

// NeedsCompile reports whether the graph has pending mutations that
// haven't yet been compiled into a schedule.
func (g *Graph) NeedsCompile() bool { return g.needsCompile }

func (g *Graph) addNodeEntry(node Node, numInputs, numOutputs int, debugName string) (NodeID, error) {
	info := node.Info()
	if debugName == "" {
		debugName = info.DebugName
	}

	var slot uint32
	var generation uint32
	if n := len(g.freeNodeSlots); n > 0 {
		slot = g.freeNodeSlots[n-1]
		g.freeNodeSlots = g.freeNodeSlots[:n-1]
		generation = g.nodes[slot].generation
	} else {
		slot = uint32(len(g.nodes))
		g.nodes = append(g.nodes, nodeSlot{})
	}

	id := NodeID{Slot: slot, Generation: generation, DebugName: debugName}
	g.nodes[slot] = nodeSlot{
		generation: generation,
		occupied:   true,
		entry: &nodeEntry{
			id:         id,
			numInputs:  numInputs,
			numOutputs: numOutputs,
			node:       node,
		},
	}
	return id, nil
}

// AddNode inserts node into the graph with its minimum supported port
// counts and returns its NodeID. The graph is marked as needing
// recompilation.
func (g *Graph) AddNode(node Node) (NodeID, error) {
	info := node.Info()
	id, err := g.addNodeEntry(node, info.MinSupportedInputs, info.MinSupportedOutputs, info.DebugName)
	if err != nil {
		return NodeID{}, err
	}
	g.nodesToActivate = append(g.nodesToActivate, id)
	g.needsCompile = true
	return id, nil
}

func (g *Graph) lookup(id NodeID) (*nodeEntry, bool) {
	if int(id.Slot) >= len(g.nodes) {
		return nil, false
	}
	s := g.nodes[id.Slot]
	if !s.occupied || s.generation != id.Generation {
		return nil, false
	}
	return s.entry, true
}

// Node returns the Node implementation for id, if it still exists.
func (g *Graph) Node(id NodeID) (Node, bool) {
	e, ok := g.lookup(id)
	if !ok {
		return nil, false
	}
	return e.node, true
}

// RemoveNode removes a node and every edge incident to it. Removing
// graph_in or graph_out is not supported and is a no-op.
func (g *Graph) RemoveNode(id NodeID) error {
	if id.Equal(g.graphInID) || id.Equal(g.graphOutID) {
		return nil
	}
	e, ok := g.lookup(id)
	if !ok {
		return nil
	}

	for slot := range g.edges {
		es := &g.edges[slot]
		if !es.occupied {
			continue
		}
		if es.edge.SrcNode.Equal(id) || es.edge.DstNode.Equal(id) {
			g.removeEdgeSlot(uint32(slot))
		}
	}

	g.nodes[id.Slot].occupied = false
	g.nodes[id.Slot].generation++
	g.nodes[id.Slot].entry = nil
	g.freeNodeSlots = append(g.freeNodeSlots, id.Slot)

	if e.activated {
		g.nodesToRemoveFromSchedule = append(g.nodesToRemoveFromSchedule, id)
		g.pendingRemoval[id] = e.node
	}
	g.needsCompile = true
	return nil
}

// NodeForDeactivate resolves id to the Node implementation that should
// receive a returned NodeProcessor's Deactivate call: either the node's
// still-live entry (if it wasn't removed, just dropped from the running
// schedule by a recompile) or, if the node was since removed from the
// graph, its retained pendingRemoval entry. The pendingRemoval entry, if
// used, is consumed — a given removed node's processor is only ever
// handed back once.
func (g *Graph) NodeForDeactivate(id NodeID) (Node, bool) {
	if e, ok := g.lookup(id); ok {
		return e.node, true
	}
	if node, ok := g.pendingRemoval[id]; ok {
		delete(g.pendingRemoval, id)
		return node, true
	}
	return nil, false
}

// SetNumInputs changes a node's input port count. Shrinking the count
// disconnects any edges on the ports being removed.
func (g *Graph) SetNumInputs(id NodeID, n int) error {
	e, ok := g.lookup(id)
	if !ok {
		return &ErrDstNodeNotFound{Node: id}
	}
	if n < e.numInputs {
		for slot := range g.edges {
			es := &g.edges[slot]
			if es.occupied && es.edge.DstNode.Equal(id) && es.edge.DstPort >= n {
				g.removeEdgeSlot(uint32(slot))
			}
		}
	}
	e.numInputs = n
	g.needsCompile = true
	return nil
}

// SetNumOutputs changes a node's output port count. Shrinking the count
// disconnects any edges on the ports being removed.
func (g *Graph) SetNumOutputs(id NodeID, n int) error {
	e, ok := g.lookup(id)
	if !ok {
		return &ErrSrcNodeNotFound{Node: id}
	}
	if n < e.numOutputs {
		for slot := range g.edges {
			es := &g.edges[slot]
			if es.occupied && es.edge.SrcNode.Equal(id) && es.edge.SrcPort >= n {
				g.removeEdgeSlot(uint32(slot))
			}
		}
	}
	e.numOutputs = n
	g.needsCompile = true
	return nil
}

// Connect adds an edge from src's srcPort output to dst's dstPort input.
// Each input port accepts at most one incoming edge (ErrInputPortAlreadyConnected);
// fan-in requires an explicit sum node. Self-loops and any edge that would
// otherwise introduce a cycle are rejected with ErrCycleDetected, with the
// tentative edge rolled back.
func (g *Graph) Connect(src NodeID, srcPort int, dst NodeID, dstPort int) (EdgeID, error) {
	srcEntry, ok := g.lookup(src)
	if !ok {
		return EdgeID{}, &ErrSrcNodeNotFound{Node: src}
	}
	dstEntry, ok := g.lookup(dst)
	if !ok {
		return EdgeID{}, &ErrDstNodeNotFound{Node: dst}
	}
	if srcPort < 0 || srcPort >= srcEntry.numOutputs {
		return EdgeID{}, &ErrOutPortOutOfRange{Node: src, Port: srcPort, NumOutPorts: srcEntry.numOutputs}
	}
	if dstPort < 0 || dstPort >= dstEntry.numInputs {
		return EdgeID{}, &ErrInPortOutOfRange{Node: dst, Port: dstPort, NumInPorts: dstEntry.numInputs}
	}
	if src.Equal(dst) {
		return EdgeID{}, &ErrCycleDetected{}
	}

	hk := edgeHashKey{src: src.key(), srcPort: srcPort, dst: dst.key(), dstPort: dstPort}
	if _, exists := g.existingEdges[hk]; exists {
		return EdgeID{}, &ErrEdgeAlreadyExists{}
	}

	ik := inPortKey{node: dst.key(), port: dstPort}
	if g.connectedInputPorts[ik] {
		return EdgeID{}, &ErrInputPortAlreadyConnected{Node: dst, Port: dstPort}
	}

	id := g.insertEdge(Edge{SrcNode: src, SrcPort: srcPort, DstNode: dst, DstPort: dstPort})

	if g.cycleDetectedLocked() {
		g.removeEdgeByID(id)
		return EdgeID{}, &ErrCycleDetected{}
	}

	g.connectedInputPorts[ik] = true
	g.existingEdges[hk] = id
	g.needsCompile = true
	return id, nil
}

func (g *Graph) insertEdge(e Edge) EdgeID {
	var slot uint32
	var generation uint32
	if n := len(g.freeEdgeSlots); n > 0 {
		slot = g.freeEdgeSlots[n-1]
		g.freeEdgeSlots = g.freeEdgeSlots[:n-1]
		generation = g.edges[slot].generation
	} else {
		slot = uint32(len(g.edges))
		g.edges = append(g.edges, edgeSlot{})
	}
	id := EdgeID{Slot: slot, Generation: generation}
	e.ID = id
	g.edges[slot] = edgeSlot{generation: generation, occupied: true, edge: &e}
	return id
}

func (g *Graph) removeEdgeByID(id EdgeID) {
	if int(id.Slot) >= len(g.edges) {
		return
	}
	if !g.edges[id.Slot].occupied || g.edges[id.Slot].generation != id.Generation {
		return
	}
	g.removeEdgeSlot(id.Slot)
}

func (g *Graph) removeEdgeSlot(slot uint32) {
	es := &g.edges[slot]
	if !es.occupied {
		return
	}
	e := es.edge
	delete(g.connectedInputPorts, inPortKey{node: e.DstNode.key(), port: e.DstPort})
	delete(g.existingEdges, edgeHashKey{src: e.SrcNode.key(), srcPort: e.SrcPort, dst: e.DstNode.key(), dstPort: e.DstPort})
	es.occupied = false
	es.generation++
	es.edge = nil
	g.freeEdgeSlots = append(g.freeEdgeSlots, slot)
}

// Disconnect removes the edge from src's srcPort to dst's dstPort, if it
// exists.
func (g *Graph) Disconnect(src NodeID, srcPort int, dst NodeID, dstPort int) error {
	hk := edgeHashKey{src: src.key(), srcPort: srcPort, dst: dst.key(), dstPort: dstPort}
	id, ok := g.existingEdges[hk]
	if !ok {
		return nil
	}
	g.removeEdgeByID(id)
	g.needsCompile = true
	return nil
}

// DisconnectByEdgeID removes an edge by ID, if it exists.
func (g *Graph) DisconnectByEdgeID(id EdgeID) error {
	g.removeEdgeByID(id)
	g.needsCompile = true
	return nil
}

// CycleDetected runs the compiler (compileGraph) on a snapshot of the
// current graph and reports whether it failed with a cycle. The graph
// itself is not modified.
func (g *Graph) CycleDetected() bool {
	return g.cycleDetectedLocked()
}

func (g *Graph) cycleDetectedLocked() bool {
	order, edges := g.snapshot()
	_, _, err := compileGraph(order, edges, g.graphOutID)
	var cycleErr *ErrCompileCycleDetected
	return err != nil && as(err, &cycleErr)
}

// as is a tiny local errors.As to avoid importing errors just for this one
// check against a concrete, never-wrapped sentinel-ish type.
func as(err error, target **ErrCompileCycleDetected) bool {
	e, ok := err.(*ErrCompileCycleDetected)
	if ok {
		*target = e
	}
	return ok
}

// snapshot builds the compiler's input from the current node/edge slabs,
// in arena (slot) order — this is what makes the sort's tie-break "arena
// insertion order".
func (g *Graph) snapshot() ([]compileNode, []Edge) {
	order := make([]compileNode, 0, len(g.nodes)-len(g.freeNodeSlots))
	for _, s := range g.nodes {
		if !s.occupied {
			continue
		}
		order = append(order, compileNode{id: s.entry.id, numInputs: s.entry.numInputs, numOutputs: s.entry.numOutputs})
	}
	edges := make([]Edge, 0, len(g.edges)-len(g.freeEdgeSlots))
	for _, s := range g.edges {
		if s.occupied {
			edges = append(edges, *s.edge)
		}
	}
	return order, edges
}

// Compile runs the topological sort and buffer assignment, activates any
// node added since the last successful compile (calling its Node.Activate
// to obtain a NodeProcessor), and returns the resulting CompiledSchedule.
// If any node fails to activate, every node activated during this call is
// rolled back (Deactivate called, NeedsCompile left true) and the first
// activation error is returned.
func (g *Graph) Compile(sampleRate float64) (*CompiledSchedule, error) {
	order, edges := g.snapshot()
	scheduled, numBuffers, err := compileGraph(order, edges, g.graphOutID)
	if err != nil {
		return nil, err
	}

	var activatedThisPass []NodeID
	rollback := func() {
		for _, id := range activatedThisPass {
			e, ok := g.lookup(id)
			if !ok {
				continue
			}
			e.node.Deactivate(e.processor)
			e.processor = nil
			e.activated = false
		}
	}

	for i := range scheduled {
		e, ok := g.lookup(scheduled[i].ID)
		if !ok {
			continue
		}
		if !e.activated {
			proc, err := e.node.Activate(sampleRate, g.cfg.MaxBlockFrames, e.numInputs, e.numOutputs)
			if err != nil {
				rollback()
				return nil, &ErrNodeActivation{Node: e.id, Err: err}
			}
			e.processor = proc
			e.activated = true
			activatedThisPass = append(activatedThisPass, e.id)
		}
		scheduled[i].Processor = e.processor
	}

	g.nodesToActivate = nil
	g.nodesToRemoveFromSchedule = nil
	g.needsCompile = false
	return newCompiledSchedule(scheduled, numBuffers, g.cfg.MaxBlockFrames), nil
}

// Deactivate deactivates every currently-activated node, e.g. once the
// realtime stream has fully stopped and the schedule has been handed back.
func (g *Graph) Deactivate() {
	for i := range g.nodes {
		s := &g.nodes[i]
		if !s.occupied || !s.entry.activated {
			continue
		}
		s.entry.node.Deactivate(s.entry.processor)
		s.entry.processor = nil
		s.entry.activated = false
	}
	g.needsCompile = true
}
