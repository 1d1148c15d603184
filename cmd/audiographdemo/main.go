// Command audiographdemo is a terminal program assembling a small
// fan-out+sum+clip graph over the default audio devices and running it
// until interrupted. It accepts no flags and exits 0 on success.
package main

import (
	"log"
	"os"
	"os/signal"

	"github.com/gordonklaus/portaudio"

	audiograph "github.com/rustyguts/audiograph"
	"github.com/rustyguts/audiograph/backend"
	"github.com/rustyguts/audiograph/nodes/dummy"
	"github.com/rustyguts/audiograph/nodes/gain"
	"github.com/rustyguts/audiograph/nodes/hardclip"
	"github.com/rustyguts/audiograph/nodes/sum"
)

const (
	sampleRate      = 48000
	framesPerBuffer = 960
)

func buildGraph() (*audiograph.Graph, error) {
	cfg := audiograph.Default()
	cfg.NumGraphInputs = 1
	cfg.NumGraphOutputs = 1
	cfg.MaxBlockFrames = framesPerBuffer

	g, err := audiograph.NewGraph(cfg, dummy.New(), dummy.New())
	if err != nil {
		return nil, err
	}

	gain1, err := g.AddNode(gain.New(0.5))
	if err != nil {
		return nil, err
	}
	gain2, err := g.AddNode(gain.New(0.8))
	if err != nil {
		return nil, err
	}
	sumNode, err := g.AddNode(sum.New())
	if err != nil {
		return nil, err
	}
	if err := g.SetNumInputs(sumNode, 2); err != nil {
		return nil, err
	}
	clip, err := g.AddNode(hardclip.New())
	if err != nil {
		return nil, err
	}

	connections := [][4]any{
		{g.GraphInID(), 0, gain1, 0},
		{g.GraphInID(), 0, gain2, 0},
		{gain1, 0, sumNode, 0},
		{gain2, 0, sumNode, 1},
		{sumNode, 0, clip, 0},
		{clip, 0, g.GraphOutID(), 0},
	}
	for _, c := range connections {
		src := c[0].(audiograph.NodeID)
		srcPort := c[1].(int)
		dst := c[2].(audiograph.NodeID)
		dstPort := c[3].(int)
		if _, err := g.Connect(src, srcPort, dst, dstPort); err != nil {
			return nil, err
		}
	}

	return g, nil
}

func main() {
	if err := portaudio.Initialize(); err != nil {
		log.Fatalf("audiographdemo: portaudio init: %v", err)
	}
	defer portaudio.Terminate()

	graph, err := buildGraph()
	if err != nil {
		log.Fatalf("audiographdemo: build graph: %v", err)
	}

	ctx := audiograph.NewContext(graph, nil)
	exec, err := ctx.Activate(sampleRate, nil)
	if err != nil {
		log.Fatalf("audiographdemo: activate: %v", err)
	}

	be := backend.New()
	res, err := be.StartStream(sampleRate, backend.Config{
		InputDeviceID:     -1,
		OutputDeviceID:    -1,
		NumInputChannels:  1,
		NumOutputChannels: 1,
		FramesPerBuffer:   framesPerBuffer,
	}, exec)
	if err != nil {
		log.Fatalf("audiographdemo: start stream: %v", err)
	}
	log.Printf("audiographdemo: running at %.0f Hz, %d/%d channels", res.SampleRate, res.NumInputChannels, res.NumOutputChannels)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	<-sig

	log.Println("audiographdemo: stopping")
	if err := be.Close(exec); err != nil {
		log.Printf("audiographdemo: close: %v", err)
	}
	ctx.Deactivate(false)
}
