package hardclip

import (
	"testing"

	audiograph "github.com/rustyguts/audiograph"
)

func TestClampsToUnitRange(t *testing.T) {
	n := New()
	proc, err := n.Activate(48000, 4, 1, 1)
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}
	in := [][]float32{{-2, -1, 0, 0.5, 1, 2}}
	out := [][]float32{make([]float32, 6)}
	proc.Process(6, in, out, audiograph.ProcInfo{})
	want := []float32{-1, -1, 0, 0.5, 1, 1}
	for i := range want {
		if out[0][i] != want[i] {
			t.Errorf("out[0][%d] = %v, want %v", i, out[0][i], want[i])
		}
	}
}
