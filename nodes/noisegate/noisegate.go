// Package noisegate provides a hard RMS noise gate node for mono signals.
//
// Blocks with RMS below the configured threshold are zeroed entirely. A
// short hold period prevents the gate from chopping speech-like signals
// during brief level dips.
package noisegate

import (
	audiograph "github.com/rustyguts/audiograph"
	"github.com/rustyguts/audiograph/internal/dsp"
)

const (
	// DefaultThreshold is the RMS level below which audio is gated (~-40 dBFS).
	DefaultThreshold = float32(0.01)

	// DefaultHold is the number of blocks to keep the gate open after the
	// signal drops below threshold.
	DefaultHold = 10
)

// Node is a mono noise gate: one input port, one output port.
type Node struct {
	Threshold float32
	Hold      int
}

// New returns a Node with DefaultThreshold and DefaultHold.
func New() *Node {
	return &Node{Threshold: DefaultThreshold, Hold: DefaultHold}
}

func (*Node) Info() audiograph.NodeInfo {
	return audiograph.NodeInfo{
		MinSupportedInputs:  1,
		MaxSupportedInputs:  1,
		MinSupportedOutputs: 1,
		MaxSupportedOutputs: 1,
		DebugName:           "noise_gate",
	}
}

func (n *Node) Activate(sampleRate float64, maxBlockFrames, numInputs, numOutputs int) (audiograph.NodeProcessor, error) {
	return &processor{threshold: n.Threshold, hold: n.Hold}, nil
}

func (*Node) Deactivate(audiograph.NodeProcessor) {}
func (*Node) Update()                              {}

type processor struct {
	threshold float32
	hold      int
	remaining int
}

// Process zeroes the block and reports it silent via the output mask
// whenever the gate is closed — unlike the teacher's chat pipeline, where
// zeroing the frame was the only signal available, a graph node's silence
// mask lets downstream nodes skip work entirely while the gate is shut.
func (p *processor) Process(frames int, inputs, outputs [][]float32, info audiograph.ProcInfo) audiograph.SilenceMask {
	in := inputs[0][:frames]
	out := outputs[0][:frames]

	rms := dsp.RMS(in)

	open := false
	switch {
	case rms >= p.threshold:
		p.remaining = p.hold
		open = true
	case p.remaining > 0:
		p.remaining--
		open = true
	}

	if !open {
		for i := range out {
			out[i] = 0
		}
		return audiograph.MonoSilent
	}

	copy(out, in)
	return audiograph.NoneSilent
}
