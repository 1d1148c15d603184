// Package sum provides an n-input-ports-per-output-port summing node.
package sum

import (
	"fmt"

	audiograph "github.com/rustyguts/audiograph"
)

// Node additively mixes groups of input ports down to each output port:
// numInputs must be an exact multiple of numOutputs, and input ports
// [k*group, (k+1)*group) are summed into output port k, where
// group = numInputs/numOutputs.
type Node struct{}

// New returns a Node.
func New() *Node { return &Node{} }

func (*Node) Info() audiograph.NodeInfo {
	return audiograph.NodeInfo{
		MinSupportedInputs:  1,
		MaxSupportedInputs:  64,
		MinSupportedOutputs: 1,
		MaxSupportedOutputs: 64,
		DebugName:           "sum",
	}
}

func (*Node) Activate(sampleRate float64, maxBlockFrames, numInputs, numOutputs int) (audiograph.NodeProcessor, error) {
	if numOutputs == 0 || numInputs%numOutputs != 0 {
		return nil, fmt.Errorf("sum: numInputs (%d) must be a multiple of numOutputs (%d)", numInputs, numOutputs)
	}
	return &processor{group: numInputs / numOutputs}, nil
}

func (*Node) Deactivate(audiograph.NodeProcessor) {}
func (*Node) Update()                             {}

type processor struct {
	group int
}

func (p *processor) Process(frames int, inputs, outputs [][]float32, info audiograph.ProcInfo) audiograph.SilenceMask {
	if info.InSilenceMask.AllChannelsSilent(len(inputs)) {
		for _, out := range outputs {
			clear32(out[:frames])
		}
		return audiograph.AllSilent(len(outputs))
	}

	var outMask audiograph.SilenceMask
	for k, out := range outputs {
		o := out[:frames]
		base := k * p.group
		switch p.group {
		case 1:
			copy(o, inputs[base][:frames])
		case 2:
			a, b := inputs[base][:frames], inputs[base+1][:frames]
			for i := range o {
				o[i] = a[i] + b[i]
			}
		case 3:
			a, b, c := inputs[base][:frames], inputs[base+1][:frames], inputs[base+2][:frames]
			for i := range o {
				o[i] = a[i] + b[i] + c[i]
			}
		case 4:
			a, b, c, d := inputs[base][:frames], inputs[base+1][:frames], inputs[base+2][:frames], inputs[base+3][:frames]
			for i := range o {
				o[i] = a[i] + b[i] + c[i] + d[i]
			}
		default:
			clear32(o)
			for g := 0; g < p.group; g++ {
				in := inputs[base+g][:frames]
				for i := range o {
					o[i] += in[i]
				}
			}
		}
		if allZero(o) {
			outMask = outMask.SetChannel(k, true)
		}
	}
	return outMask
}

func clear32(buf []float32) {
	for i := range buf {
		buf[i] = 0
	}
}

func allZero(buf []float32) bool {
	for _, v := range buf {
		if v != 0 {
			return false
		}
	}
	return true
}
