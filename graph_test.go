package audiograph

import "testing"

// passthroughNode is a minimal Node fixture with adjustable port counts,
// used instead of importing nodes/dummy (which imports this package) to
// keep graph_test.go free of an import cycle.
type passthroughNode struct {
	numInputs, numOutputs int
}

func (n *passthroughNode) Info() NodeInfo {
	return NodeInfo{MinSupportedInputs: n.numInputs, MaxSupportedInputs: 64, MinSupportedOutputs: n.numOutputs, MaxSupportedOutputs: 64}
}
func (n *passthroughNode) Activate(sampleRate float64, maxBlockFrames, numInputs, numOutputs int) (NodeProcessor, error) {
	return &passthroughProc{}, nil
}
func (n *passthroughNode) Deactivate(NodeProcessor) {}
func (n *passthroughNode) Update()                  {}

type passthroughProc struct{}

func (*passthroughProc) Process(frames int, inputs, outputs [][]float32, info ProcInfo) SilenceMask {
	return info.InSilenceMask
}

func newTestGraph(t *testing.T) *Graph {
	t.Helper()
	cfg := Default()
	cfg.NumGraphInputs = 1
	cfg.NumGraphOutputs = 1
	g, err := NewGraph(cfg, &passthroughNode{numOutputs: 1}, &passthroughNode{numInputs: 1})
	if err != nil {
		t.Fatalf("NewGraph: %v", err)
	}
	return g
}

func TestNewGraphSentinelsDistinct(t *testing.T) {
	g := newTestGraph(t)
	if g.GraphInID().Equal(g.GraphOutID()) {
		t.Fatalf("graph_in and graph_out should not be the same node")
	}
}

func TestConnectRejectsSelfLoop(t *testing.T) {
	g := newTestGraph(t)
	n, _ := g.AddNode(&passthroughNode{numInputs: 1, numOutputs: 1})
	g.SetNumInputs(n, 1)
	g.SetNumOutputs(n, 1)
	if _, err := g.Connect(n, 0, n, 0); err == nil {
		t.Fatalf("expected self-loop to be rejected as a cycle")
	}
}

func TestConnectRejectsCycle(t *testing.T) {
	g := newTestGraph(t)
	a, _ := g.AddNode(&passthroughNode{numInputs: 1, numOutputs: 1})
	b, _ := g.AddNode(&passthroughNode{numInputs: 1, numOutputs: 1})
	g.SetNumInputs(a, 1)
	g.SetNumOutputs(a, 1)
	g.SetNumInputs(b, 1)
	g.SetNumOutputs(b, 1)

	if _, err := g.Connect(a, 0, b, 0); err != nil {
		t.Fatalf("a->b should connect cleanly: %v", err)
	}
	if _, err := g.Connect(b, 0, a, 0); err == nil {
		t.Fatalf("b->a should be rejected, it would close a cycle")
	}
}

func TestConnectRejectsDuplicateInputPort(t *testing.T) {
	g := newTestGraph(t)
	a, _ := g.AddNode(&passthroughNode{numOutputs: 1})
	b, _ := g.AddNode(&passthroughNode{numOutputs: 1})
	dst, _ := g.AddNode(&passthroughNode{numInputs: 1})
	g.SetNumOutputs(a, 1)
	g.SetNumOutputs(b, 1)
	g.SetNumInputs(dst, 1)

	if _, err := g.Connect(a, 0, dst, 0); err != nil {
		t.Fatalf("a->dst should connect: %v", err)
	}
	if _, err := g.Connect(b, 0, dst, 0); err == nil {
		t.Fatalf("expected ErrInputPortAlreadyConnected, dst's port 0 already has an edge")
	}
}

func TestConnectRejectsOutOfRangePorts(t *testing.T) {
	g := newTestGraph(t)
	a, _ := g.AddNode(&passthroughNode{numOutputs: 1})
	b, _ := g.AddNode(&passthroughNode{numInputs: 1})
	g.SetNumOutputs(a, 1)
	g.SetNumInputs(b, 1)

	if _, err := g.Connect(a, 5, b, 0); err == nil {
		t.Errorf("expected ErrOutPortOutOfRange")
	}
	if _, err := g.Connect(a, 0, b, 5); err == nil {
		t.Errorf("expected ErrInPortOutOfRange")
	}
}

func TestConnectRejectsDuplicateEdge(t *testing.T) {
	g := newTestGraph(t)
	a, _ := g.AddNode(&passthroughNode{numOutputs: 1})
	b, _ := g.AddNode(&passthroughNode{numInputs: 1})
	g.SetNumOutputs(a, 1)
	g.SetNumInputs(b, 1)

	if _, err := g.Connect(a, 0, b, 0); err != nil {
		t.Fatalf("first connect should succeed: %v", err)
	}
	if _, err := g.Connect(a, 0, b, 0); err == nil {
		t.Errorf("expected ErrEdgeAlreadyExists on duplicate connect")
	}
}

func TestRemoveNodeDisconnectsIncidentEdges(t *testing.T) {
	g := newTestGraph(t)
	a, _ := g.AddNode(&passthroughNode{numOutputs: 1})
	b, _ := g.AddNode(&passthroughNode{numInputs: 1, numOutputs: 1})
	g.SetNumOutputs(a, 1)
	g.SetNumInputs(b, 1)
	g.SetNumOutputs(b, 1)
	g.Connect(a, 0, b, 0)

	if err := g.RemoveNode(a); err != nil {
		t.Fatalf("RemoveNode: %v", err)
	}
	c, _ := g.AddNode(&passthroughNode{numOutputs: 1})
	g.SetNumOutputs(c, 1)
	if _, err := g.Connect(c, 0, b, 0); err != nil {
		t.Fatalf("b's input port 0 should be free again after a was removed: %v", err)
	}
}

func TestCycleDetectedFalseOnFreshGraph(t *testing.T) {
	g := newTestGraph(t)
	if g.CycleDetected() {
		t.Fatalf("fresh graph (graph_in -> graph_out only) should have no cycle")
	}
}
