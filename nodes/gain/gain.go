// Package gain provides a fixed-scalar multiply node. Unlike firewheel's
// volume node this has no parameter smoothing: smoothing is a core-scope
// concern the spec explicitly excludes, so gain changes here take effect
// immediately on the next Process call (a future node author wanting
// click-free gain changes would layer smoothing on top of this node, not
// inside it).
package gain

import audiograph "github.com/rustyguts/audiograph"

// Node multiplies every channel by a fixed linear gain. Input and output
// port counts must match.
type Node struct {
	Gain float32
}

// New returns a Node with the given linear gain (1.0 = unity).
func New(linearGain float32) *Node {
	return &Node{Gain: linearGain}
}

func (*Node) Info() audiograph.NodeInfo {
	return audiograph.NodeInfo{
		MinSupportedInputs:  1,
		MaxSupportedInputs:  64,
		MinSupportedOutputs: 1,
		MaxSupportedOutputs: 64,
		DebugName:           "gain",
	}
}

func (n *Node) Activate(sampleRate float64, maxBlockFrames, numInputs, numOutputs int) (audiograph.NodeProcessor, error) {
	return &processor{gain: n.Gain}, nil
}

func (*Node) Deactivate(audiograph.NodeProcessor) {}
func (*Node) Update()                             {}

type processor struct {
	gain float32
}

func (p *processor) Process(frames int, inputs, outputs [][]float32, info audiograph.ProcInfo) audiograph.SilenceMask {
	if info.InSilenceMask.AllChannelsSilent(len(inputs)) {
		for _, out := range outputs {
			for i := range out[:frames] {
				out[i] = 0
			}
		}
		return audiograph.AllSilent(len(outputs))
	}
	n := len(inputs)
	if len(outputs) < n {
		n = len(outputs)
	}
	for ch := 0; ch < n; ch++ {
		in := inputs[ch][:frames]
		out := outputs[ch][:frames]
		for i := range out {
			out[i] = in[i] * p.gain
		}
	}
	return info.InSilenceMask
}
