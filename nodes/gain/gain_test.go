package gain

import (
	"testing"

	audiograph "github.com/rustyguts/audiograph"
)

func TestAppliesLinearGain(t *testing.T) {
	n := New(0.5)
	proc, err := n.Activate(48000, 4, 1, 1)
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}
	in := [][]float32{{2, 4, 6, 8}}
	out := [][]float32{make([]float32, 4)}
	proc.Process(4, in, out, audiograph.ProcInfo{})
	want := []float32{1, 2, 3, 4}
	for i := range want {
		if out[0][i] != want[i] {
			t.Errorf("out[0][%d] = %v, want %v", i, out[0][i], want[i])
		}
	}
}

func TestAllSilentInputShortCircuits(t *testing.T) {
	n := New(2.0)
	proc, _ := n.Activate(48000, 4, 1, 1)
	in := [][]float32{{0, 0}}
	out := [][]float32{{99, 99}}
	mask := proc.Process(2, in, out, audiograph.ProcInfo{InSilenceMask: audiograph.MonoSilent})
	if mask != audiograph.AllSilent(1) {
		t.Errorf("mask = %b, want AllSilent(1)", mask)
	}
	if out[0][0] != 0 || out[0][1] != 0 {
		t.Errorf("out should be zeroed, got %v", out[0])
	}
}
