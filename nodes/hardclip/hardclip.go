// Package hardclip provides a [-1, 1] clamp node.
package hardclip

import audiograph "github.com/rustyguts/audiograph"

// Node clamps every sample to [-1, 1]. Input and output port counts must
// match.
type Node struct{}

// New returns a Node.
func New() *Node { return &Node{} }

func (*Node) Info() audiograph.NodeInfo {
	return audiograph.NodeInfo{
		MinSupportedInputs:  1,
		MaxSupportedInputs:  64,
		MinSupportedOutputs: 1,
		MaxSupportedOutputs: 64,
		DebugName:           "hard_clip",
	}
}

func (*Node) Activate(sampleRate float64, maxBlockFrames, numInputs, numOutputs int) (audiograph.NodeProcessor, error) {
	return &processor{}, nil
}

func (*Node) Deactivate(audiograph.NodeProcessor) {}
func (*Node) Update()                             {}

type processor struct{}

func (*processor) Process(frames int, inputs, outputs [][]float32, info audiograph.ProcInfo) audiograph.SilenceMask {
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
		for i, v := range in {
			switch {
			case v > 1:
				out[i] = 1
			case v < -1:
				out[i] = -1
			default:
				out[i] = v
			}
		}
	}
	return info.InSilenceMask
}
