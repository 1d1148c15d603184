package dummy

import (
	"testing"

	audiograph "github.com/rustyguts/audiograph"
)

func TestCopiesThroughMatchedPorts(t *testing.T) {
	n := New()
	proc, err := n.Activate(48000, 4, 2, 2)
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}
	in := [][]float32{{1, 2, 3, 4}, {5, 6, 7, 8}}
	out := [][]float32{make([]float32, 4), make([]float32, 4)}
	mask := proc.Process(4, in, out, audiograph.ProcInfo{})
	for ch := range in {
		for i := range in[ch] {
			if out[ch][i] != in[ch][i] {
				t.Errorf("out[%d][%d] = %v, want %v", ch, i, out[ch][i], in[ch][i])
			}
		}
	}
	if mask != audiograph.NoneSilent {
		t.Errorf("mask = %v, want the passed-through InSilenceMask", mask)
	}
}

func TestCopiesOnlyMinOfInputsOutputs(t *testing.T) {
	n := New()
	proc, _ := n.Activate(48000, 4, 2, 1)
	in := [][]float32{{1, 2}, {3, 4}}
	out := [][]float32{make([]float32, 2)}
	proc.Process(2, in, out, audiograph.ProcInfo{})
	if out[0][0] != 1 || out[0][1] != 2 {
		t.Errorf("out[0] = %v, want input port 0 copied through", out[0])
	}
}
