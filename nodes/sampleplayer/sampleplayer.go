// Package sampleplayer provides a minimal Opus-backed sample player node:
// a preloaded sequence of Opus packets, decoded one block at a time into
// the node's output. There is no declick envelope — the spec leaves
// declicking a node-level concern and deliberately does not specify one,
// so playback starting or ending mid-block can click; a future node could
// wrap this one with a short fade.
package sampleplayer

import (
	audiograph "github.com/rustyguts/audiograph"
	"gopkg.in/hraban/opus.v2"
)

// Node plays back a fixed sequence of pre-encoded Opus packets, one per
// Process call, decoding into its output ports. It has no input ports.
type Node struct {
	SampleRate int
	Channels   int
	// Packets is consumed in order, one packet per block; nil packets are
	// treated as a dropped frame and trigger Opus FEC/PLC concealment via
	// DecodeFEC where supported, otherwise silence.
	Packets [][]byte
}

// New returns a Node that will play packets, decoded at sampleRate with
// the given channel count.
func New(sampleRate, channels int, packets [][]byte) *Node {
	return &Node{SampleRate: sampleRate, Channels: channels, Packets: packets}
}

func (*Node) Info() audiograph.NodeInfo {
	return audiograph.NodeInfo{
		MinSupportedInputs:  0,
		MaxSupportedInputs:  0,
		MinSupportedOutputs: 1,
		MaxSupportedOutputs: 2,
		DebugName:           "sample_player",
	}
}

func (n *Node) Activate(sampleRate float64, maxBlockFrames, numInputs, numOutputs int) (audiograph.NodeProcessor, error) {
	dec, err := opus.NewDecoder(n.SampleRate, n.Channels)
	if err != nil {
		return nil, err
	}
	return &processor{
		decoder:    dec,
		channels:   n.Channels,
		packets:    n.Packets,
		pcmScratch: make([]int16, maxBlockFrames*n.Channels),
	}, nil
}

func (*Node) Deactivate(audiograph.NodeProcessor) {}
func (*Node) Update()                              {}

type processor struct {
	decoder    *opus.Decoder
	channels   int
	packets    [][]byte
	next       int
	pcmScratch []int16
}

func (p *processor) Process(frames int, inputs, outputs [][]float32, info audiograph.ProcInfo) audiograph.SilenceMask {
	if p.next >= len(p.packets) {
		for _, out := range outputs {
			for i := range out[:frames] {
				out[i] = 0
			}
		}
		return audiograph.AllSilent(len(outputs))
	}

	packet := p.packets[p.next]
	p.next++

	pcm := p.pcmScratch[:frames*p.channels]
	var n int
	var err error
	if packet == nil {
		err = p.decoder.DecodeFEC(nil, pcm)
	} else {
		n, err = p.decoder.Decode(packet, pcm)
	}
	if packet == nil {
		n = frames
	}
	if err != nil {
		n = 0
	}

	for ch := range outputs {
		out := outputs[ch][:frames]
		if ch >= p.channels {
			for i := range out {
				out[i] = 0
			}
			continue
		}
		for i := 0; i < n && i < frames; i++ {
			out[i] = float32(pcm[i*p.channels+ch]) / 32768.0
		}
		for i := n; i < frames; i++ {
			out[i] = 0
		}
	}

	return audiograph.NoneSilent
}
