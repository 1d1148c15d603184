package audiograph

import (
	"testing"

	"github.com/rustyguts/audiograph/internal/ringbuf"
)

func TestDeinterleaveInto(t *testing.T) {
	src := []float32{1, 10, 2, 20, 3, 30} // 3 frames, 2 channels
	bufs := [][]float32{make([]float32, 3), make([]float32, 3)}
	mask := deinterleaveInto(bufs, src, 0, 2, 3)
	if mask != NoneSilent {
		t.Errorf("mask = %v, want NoneSilent when src has data", mask)
	}
	want := [][]float32{{1, 2, 3}, {10, 20, 30}}
	for ch := range want {
		for i := range want[ch] {
			if bufs[ch][i] != want[ch][i] {
				t.Errorf("bufs[%d][%d] = %v, want %v", ch, i, bufs[ch][i], want[ch][i])
			}
		}
	}
}

func TestDeinterleaveIntoEmptySrcIsSilent(t *testing.T) {
	bufs := [][]float32{make([]float32, 2)}
	mask := deinterleaveInto(bufs, nil, 0, 1, 2)
	if !mask.AllChannelsSilent(1) {
		t.Errorf("empty src should report every channel silent")
	}
}

func TestInterleaveFrom(t *testing.T) {
	bufs := [][]float32{{1, 2, 3}, {10, 20, 30}}
	dst := make([]float32, 6)
	interleaveFrom(dst, 0, bufs, 2, 3)
	want := []float32{1, 10, 2, 20, 3, 30}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("dst[%d] = %v, want %v", i, dst[i], want[i])
		}
	}
}

func TestProcessInterleavedRoundTripsThroughDoublingNode(t *testing.T) {
	const frames = 4
	schedule := buildLinearSchedule(t, frames)

	toExec := ringbuf.New(4)
	toCtrl := ringbuf.New(4)
	ex := newExecutor(frames, toExec, toCtrl, nil, nil)
	ex.schedule = schedule

	in := []float32{1, 2, 3, 4}
	out := make([]float32, frames)
	ex.ProcessInterleaved(in, out, 1, 1, frames, 0, StreamStatusNormal)

	want := []float32{2, 4, 6, 8}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}
}
