// Package agc provides a single-channel automatic gain control node.
//
// It continuously monitors the short-term RMS of each block and adjusts a
// multiplicative gain toward a target level using independent attack/
// release time constants, clamped to [minGain, maxGain].
package agc

import (
	audiograph "github.com/rustyguts/audiograph"
	"github.com/rustyguts/audiograph/internal/dsp"
)

const (
	// DefaultTarget is the desired RMS level (linear, ~-14 dBFS).
	DefaultTarget = 0.20

	// MinGain limits attenuation of loud signals to 20 dB.
	MinGain = 0.1
	// MaxGain allows up to +20 dB of amplification.
	MaxGain = 10.0

	// AttackCoeff controls how quickly gain is reduced when level exceeds
	// target; ReleaseCoeff controls how quickly it recovers afterward
	// (slower, to avoid pumping artefacts).
	AttackCoeff  = 0.80
	ReleaseCoeff = 0.02

	// minRMS suppresses gain updates on near-silent blocks.
	minRMS = 0.001
)

// Node is a mono AGC node: one input port, one output port.
type Node struct {
	Target float64
}

// New returns a Node with DefaultTarget.
func New() *Node {
	return &Node{Target: DefaultTarget}
}

func (*Node) Info() audiograph.NodeInfo {
	return audiograph.NodeInfo{
		MinSupportedInputs:  1,
		MaxSupportedInputs:  1,
		MinSupportedOutputs: 1,
		MaxSupportedOutputs: 1,
		DebugName:           "agc",
	}
}

func (n *Node) Activate(sampleRate float64, maxBlockFrames, numInputs, numOutputs int) (audiograph.NodeProcessor, error) {
	return &processor{target: n.Target, gain: 1.0}, nil
}

func (*Node) Deactivate(audiograph.NodeProcessor) {}
func (*Node) Update()                              {}

type processor struct {
	target float64
	gain   float64
}

func (p *processor) Process(frames int, inputs, outputs [][]float32, info audiograph.ProcInfo) audiograph.SilenceMask {
	in := inputs[0][:frames]
	out := outputs[0][:frames]

	if info.InSilenceMask.IsChannelSilent(0) {
		for i := range out {
			out[i] = 0
		}
		return audiograph.MonoSilent
	}

	rms := float64(dsp.RMS(in))

	for i, s := range in {
		v := s * float32(p.gain)
		if v > 1.0 {
			v = 1.0
		} else if v < -1.0 {
			v = -1.0
		}
		out[i] = v
	}

	if rms < minRMS {
		return audiograph.NoneSilent
	}

	desired := p.target / rms
	if desired < MinGain {
		desired = MinGain
	} else if desired > MaxGain {
		desired = MaxGain
	}

	coeff := ReleaseCoeff
	if desired < p.gain {
		coeff = AttackCoeff
	}
	p.gain += coeff * (desired - p.gain)

	return audiograph.NoneSilent
}
