// Package dsp holds small signal-analysis helpers shared by more than one
// example node.
package dsp

import "math"

// RMS returns the root-mean-square level of a mono float32 PCM block.
func RMS(frame []float32) float32 {
	if len(frame) == 0 {
		return 0
	}
	var sum float64
	for _, s := range frame {
		sum += float64(s) * float64(s)
	}
	return float32(math.Sqrt(sum / float64(len(frame))))
}
