// Package dummy provides a zero-cost passthrough node, used as the
// sentinel weight for a graph's graph_in/graph_out nodes and as a minimal
// fixture in tests.
package dummy

import audiograph "github.com/rustyguts/audiograph"

// Node is a passthrough: copying input port i to output port i for
// i < min(numInputs, numOutputs). Any remaining output ports are not
// written, so they keep whatever their buffers already hold (for graph_in,
// the stream input written by CompiledSchedule.PrepareGraphInputs).
//
// It supports any port count from 0 to 64 on either side, so it is used
// unmodified for both graph_in (0 inputs, N outputs) and graph_out (N
// inputs, 0 outputs).
type Node struct{}

// New returns a Dummy node.
func New() *Node { return &Node{} }

func (*Node) Info() audiograph.NodeInfo {
	return audiograph.NodeInfo{
		MinSupportedInputs:  0,
		MaxSupportedInputs:  64,
		MinSupportedOutputs: 0,
		MaxSupportedOutputs: 64,
		DebugName:           "dummy",
	}
}

func (*Node) Activate(sampleRate float64, maxBlockFrames, numInputs, numOutputs int) (audiograph.NodeProcessor, error) {
	return &processor{}, nil
}

func (*Node) Deactivate(audiograph.NodeProcessor) {}
func (*Node) Update()                             {}

type processor struct{}

func (*processor) Process(frames int, inputs, outputs [][]float32, info audiograph.ProcInfo) audiograph.SilenceMask {
	n := len(inputs)
	if len(outputs) < n {
		n = len(outputs)
	}
	for i := 0; i < n; i++ {
		copy(outputs[i][:frames], inputs[i][:frames])
	}
	return info.InSilenceMask
}
