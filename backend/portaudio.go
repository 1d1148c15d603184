// Package backend provides the PortAudio implementation of audiograph.Backend.
package backend

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"

	audiograph "github.com/rustyguts/audiograph"
)

// Config configures a PortAudio stream. An InputDeviceID/OutputDeviceID of
// -1 selects the system default device, mirroring client/audio.go's
// resolveDevice fallback.
type Config struct {
	InputDeviceID    int
	OutputDeviceID   int
	NumInputChannels int
	NumOutputChannels int
	FramesPerBuffer  int
}

// PortAudio is a Backend that drives a full-duplex PortAudio stream.
// Stream lifecycle mirrors client/audio.go's AudioEngine.Start/Stop: open
// both directions before starting either, stop before closing, and never
// close the native stream while its processing goroutine might still be
// touching it.
type PortAudio struct {
	mu     sync.Mutex
	stream *portaudio.Stream
	stopCh chan struct{}
	wg     sync.WaitGroup
	errVal atomic.Value // error
}

// New returns an unstarted PortAudio backend. Call portaudio.Initialize()
// once at process startup before using it (left to the caller, matching
// the teacher's own main.go, which initializes PortAudio once globally).
func New() *PortAudio {
	return &PortAudio{}
}

func resolveDevice(devices []*portaudio.DeviceInfo, idx int, fallback func() (*portaudio.DeviceInfo, error)) (*portaudio.DeviceInfo, error) {
	if idx >= 0 && idx < len(devices) {
		return devices[idx], nil
	}
	return fallback()
}

// StartStream opens, configures, and starts a full-duplex PortAudio stream
// and spawns the goroutine that repeatedly calls exec.ProcessInterleaved.
func (p *PortAudio) StartStream(sampleRate float64, rawCfg any, exec *audiograph.Executor) (audiograph.StartResult, error) {
	cfg, ok := rawCfg.(Config)
	if !ok {
		return audiograph.StartResult{}, fmt.Errorf("backend: expected backend.Config, got %T", rawCfg)
	}
	if cfg.FramesPerBuffer <= 0 {
		cfg.FramesPerBuffer = 1024
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return audiograph.StartResult{}, err
	}
	inputDev, err := resolveDevice(devices, cfg.InputDeviceID, portaudio.DefaultInputDevice)
	if err != nil {
		return audiograph.StartResult{}, err
	}
	outputDev, err := resolveDevice(devices, cfg.OutputDeviceID, portaudio.DefaultOutputDevice)
	if err != nil {
		return audiograph.StartResult{}, err
	}

	inBuf := make([]float32, cfg.NumInputChannels*cfg.FramesPerBuffer)
	outBuf := make([]float32, cfg.NumOutputChannels*cfg.FramesPerBuffer)

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   inputDev,
			Channels: cfg.NumInputChannels,
			Latency:  inputDev.DefaultLowInputLatency,
		},
		Output: portaudio.StreamDeviceParameters{
			Device:   outputDev,
			Channels: cfg.NumOutputChannels,
			Latency:  outputDev.DefaultLowOutputLatency,
		},
		SampleRate:      sampleRate,
		FramesPerBuffer: cfg.FramesPerBuffer,
	}

	stream, err := portaudio.OpenStream(params, inBuf, outBuf)
	if err != nil {
		return audiograph.StartResult{}, err
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return audiograph.StartResult{}, err
	}

	p.mu.Lock()
	p.stream = stream
	p.stopCh = make(chan struct{})
	p.mu.Unlock()

	p.wg.Add(1)
	go p.runLoop(stream, exec, inBuf, outBuf, cfg.NumInputChannels, cfg.NumOutputChannels, cfg.FramesPerBuffer, sampleRate)

	return audiograph.StartResult{
		Handle:            stream,
		NumInputChannels:  cfg.NumInputChannels,
		NumOutputChannels: cfg.NumOutputChannels,
		SampleRate:        sampleRate,
	}, nil
}

// runLoop blocks on Read/Write against the PortAudio stream, handing each
// block to exec.ProcessInterleaved in between — this is the "device
// callback" in a blocking-API backend. Matches client/audio.go's
// captureLoop/playbackLoop shape, merged into a single full-duplex loop.
//
// The blocking Read/Write API gives no per-callback timestamp or
// under/overrun flag the way a native device callback would, so
// streamTimeSecs is approximated by accumulating frames/sampleRate across
// calls and streamStatus is always reported Normal.
func (p *PortAudio) runLoop(stream *portaudio.Stream, exec *audiograph.Executor, inBuf, outBuf []float32, numIn, numOut, frames int, sampleRate float64) {
	defer p.wg.Done()
	var streamTimeSecs float64
	for {
		select {
		case <-p.stopCh:
			return
		default:
		}

		if err := stream.Read(); err != nil {
			p.errVal.Store(err)
			return
		}

		status := exec.ProcessInterleaved(inBuf, outBuf, numIn, numOut, frames, streamTimeSecs, audiograph.StreamStatusNormal)
		streamTimeSecs += float64(frames) / sampleRate

		if err := stream.Write(); err != nil {
			p.errVal.Store(err)
			return
		}

		if status == audiograph.StatusDropProcessor {
			return
		}
	}
}

// PollForErrors reports the error, if any, that stopped the processing
// goroutine. The stored error is never cleared, so once set it is reported
// on every later poll.
func (p *PortAudio) PollForErrors(handle any) audiograph.PollStatus {
	if v := p.errVal.Load(); v != nil {
		return audiograph.PollStatus{Err: v.(error), CanCloseGracefully: false}
	}
	return audiograph.PollStatus{CanCloseGracefully: true}
}

// Close stops and closes the stream. Sequence matters, as in
// client/audio.go's Stop: signal the loop to exit, stop the stream (which
// unblocks any in-flight Read/Write), wait for the goroutine, then close.
func (p *PortAudio) Close(exec *audiograph.Executor) error {
	p.mu.Lock()
	stream := p.stream
	stopCh := p.stopCh
	p.mu.Unlock()
	if stream == nil {
		return nil
	}

	close(stopCh)
	stream.Stop()
	p.wg.Wait()
	exec.Close()

	p.mu.Lock()
	p.stream = nil
	p.mu.Unlock()
	return stream.Close()
}
