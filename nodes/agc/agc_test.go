package agc

import (
	"testing"

	audiograph "github.com/rustyguts/audiograph"
)

func TestSilentInputReturnsMonoSilent(t *testing.T) {
	n := New()
	proc, err := n.Activate(48000, 4, 1, 1)
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}
	in := [][]float32{{0, 0, 0, 0}}
	out := [][]float32{make([]float32, 4)}
	mask := proc.Process(4, in, out, audiograph.ProcInfo{InSilenceMask: audiograph.MonoSilent})
	if mask != audiograph.MonoSilent {
		t.Errorf("mask = %v, want MonoSilent", mask)
	}
	for _, v := range out[0] {
		if v != 0 {
			t.Errorf("out should be zeroed on silent input, got %v", out[0])
			break
		}
	}
}

func TestGainMovesTowardTarget(t *testing.T) {
	n := &Node{Target: 0.5}
	proc, err := n.Activate(48000, 256, 1, 1)
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}
	p := proc.(*processor)

	quiet := make([]float32, 256)
	for i := range quiet {
		if i%2 == 0 {
			quiet[i] = 0.05
		} else {
			quiet[i] = -0.05
		}
	}
	out := make([]float32, 256)
	for i := 0; i < 20; i++ {
		proc.Process(256, [][]float32{quiet}, [][]float32{out}, audiograph.ProcInfo{})
	}
	if p.gain <= 1.0 {
		t.Errorf("gain = %v, want gain to have risen above unity for a consistently quiet signal below target", p.gain)
	}
	if p.gain > MaxGain {
		t.Errorf("gain = %v, exceeded MaxGain %v", p.gain, MaxGain)
	}
}

func TestOutputClampedToUnitRange(t *testing.T) {
	n := New()
	proc, _ := n.Activate(48000, 4, 1, 1)
	p := proc.(*processor)
	p.gain = 100

	in := [][]float32{{0.5, -0.5}}
	out := [][]float32{make([]float32, 2)}
	proc.Process(2, in, out, audiograph.ProcInfo{})
	if out[0][0] != 1 || out[0][1] != -1 {
		t.Errorf("out = %v, want clamped to [-1, 1]", out[0])
	}
}
