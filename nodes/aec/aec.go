// Package aec provides a two-input Normalized Least Mean Squares (NLMS)
// acoustic echo canceller node: input port 0 is the near-end (microphone)
// signal, input port 1 is the far-end reference (whatever was sent to the
// loudspeaker — typically fed from a sampleplayer or an external loopback
// node), and the single output port is the echo-cancelled near-end signal.
//
// The teacher's version ran capture and playback on separate goroutines
// and guarded a shared circular far-end buffer with a mutex; as a graph
// node both inputs already arrive serialized on the single realtime
// thread once per block, so the mutex collapses away — only the circular
// history buffer (needed because the echo lags the reference by the
// room's acoustic delay) remains.
package aec

import audiograph "github.com/rustyguts/audiograph"

const (
	// DefaultDelay is the bulk delay (samples) assumed between the
	// reference signal and the echo arriving at the microphone.
	DefaultDelay = 1920
	// DefaultTaps is the NLMS filter length (samples), covering residual
	// delay and room response after the bulk delay.
	DefaultTaps = 480
	// DefaultStep is the NLMS step size mu (0 < mu < 2).
	DefaultStep = 0.1
)

// Node is a two-input NLMS echo canceller.
type Node struct {
	Delay int
	Taps  int
	Step  float64
}

// New returns a Node with the defaults above.
func New() *Node {
	return &Node{Delay: DefaultDelay, Taps: DefaultTaps, Step: DefaultStep}
}

func (*Node) Info() audiograph.NodeInfo {
	return audiograph.NodeInfo{
		MinSupportedInputs:  2,
		MaxSupportedInputs:  2,
		MinSupportedOutputs: 1,
		MaxSupportedOutputs: 1,
		DebugName:           "aec",
	}
}

func (n *Node) Activate(sampleRate float64, maxBlockFrames, numInputs, numOutputs int) (audiograph.NodeProcessor, error) {
	bufLen := maxBlockFrames + n.Delay + n.Taps
	return &processor{
		weights:    make([]float64, n.Taps),
		tapLen:     n.Taps,
		step:       n.Step,
		farBuf:     make([]float32, bufLen),
		bufLen:     bufLen,
		delayLen:   n.Delay,
		refScratch: make([]float32, maxBlockFrames+n.Taps-1),
		enabled:    true,
	}, nil
}

func (*Node) Deactivate(audiograph.NodeProcessor) {}
func (*Node) Update()                              {}

type processor struct {
	enabled bool

	weights []float64
	tapLen  int
	step    float64

	farBuf   []float32
	farHead  int
	bufLen   int
	delayLen int

	// refScratch is preallocated to the largest reference window Process
	// will ever need, so the realtime-side NLMS pass never allocates.
	refScratch []float32
}

// Process applies NLMS echo cancellation: output[i] = nearEnd[i] −
// Σ w[k]·far[i−Delay−k], where far is the far-end history and index 0 is
// the first sample of this block, with the weights adapted after every
// sample toward the actual echo path.
func (p *processor) Process(frames int, inputs, outputs [][]float32, info audiograph.ProcInfo) audiograph.SilenceMask {
	nearEnd := inputs[0][:frames]
	farEnd := inputs[1][:frames]
	out := outputs[0][:frames]

	for _, s := range farEnd {
		p.farBuf[p.farHead] = s
		p.farHead = (p.farHead + 1) % p.bufLen
	}

	if !p.enabled || info.InSilenceMask.IsChannelSilent(0) {
		copy(out, nearEnd)
		if info.InSilenceMask.IsChannelSilent(0) {
			return audiograph.MonoSilent
		}
		return audiograph.NoneSilent
	}

	refLen := frames + p.tapLen - 1
	ref := p.refScratch[:refLen]
	startIdx := p.farHead - frames - p.delayLen - p.tapLen + 1
	for j := range ref {
		idx := ((startIdx+j)%p.bufLen + 3*p.bufLen) % p.bufLen
		ref[j] = p.farBuf[idx]
	}

	for i := range nearEnd {
		refBase := i + p.tapLen - 1

		var y, powerSum float64
		for k := 0; k < p.tapLen; k++ {
			x := float64(ref[refBase-k])
			y += p.weights[k] * x
			powerSum += x * x
		}

		e := float64(nearEnd[i]) - y

		if powerSum > 1e-10 {
			step := p.step * e / powerSum
			for k := 0; k < p.tapLen; k++ {
				p.weights[k] += step * float64(ref[refBase-k])
			}
		}

		out[i] = float32(e)
	}

	return audiograph.NoneSilent
}
