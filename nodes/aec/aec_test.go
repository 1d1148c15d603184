package aec

import (
	"math"
	"testing"

	audiograph "github.com/rustyguts/audiograph"
)

func TestSilentNearEndIsPassedThroughUnchanged(t *testing.T) {
	n := New()
	proc, err := n.Activate(48000, 64, 2, 1)
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}
	in := [][]float32{{0, 0, 0, 0}, {1, 2, 3, 4}}
	out := [][]float32{make([]float32, 4)}
	mask := proc.Process(4, in, out, audiograph.ProcInfo{InSilenceMask: audiograph.MonoSilent})
	if mask != audiograph.MonoSilent {
		t.Errorf("mask = %v, want MonoSilent when near-end is silent", mask)
	}
	for i := range in[0] {
		if out[0][i] != in[0][i] {
			t.Errorf("out[%d] = %v, want near-end passed through unchanged", i, out[0][i])
		}
	}
}

func TestNLMSConvergesOnAZeroDelayEcho(t *testing.T) {
	const blockFrames = 32
	n := &Node{Delay: 0, Taps: 8, Step: 0.5}
	proc, err := n.Activate(48000, blockFrames, 2, 1)
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}

	// Near-end is exactly the far-end signal (a pure echo, no double-talk):
	// a well-behaved NLMS filter should drive its error toward zero as the
	// weights converge on the (trivial, single-tap) echo path.
	far := make([]float32, blockFrames)
	for i := range far {
		far[i] = float32(math.Sin(float64(i) * 0.3))
	}
	near := make([]float32, blockFrames)
	copy(near, far)
	out := make([]float32, blockFrames)

	firstBlockEnergy := -1.0
	var lastBlockEnergy float64
	for block := 0; block < 200; block++ {
		proc.Process(blockFrames, [][]float32{near, far}, [][]float32{out}, audiograph.ProcInfo{})
		var energy float64
		for _, v := range out {
			energy += float64(v) * float64(v)
		}
		if firstBlockEnergy < 0 {
			firstBlockEnergy = energy
		}
		lastBlockEnergy = energy
	}

	if lastBlockEnergy >= firstBlockEnergy {
		t.Errorf("residual energy did not decrease: first=%v last=%v", firstBlockEnergy, lastBlockEnergy)
	}
}
