package audiograph

// PollStatus is returned by Backend.PollForErrors, reported by the control
// thread polling a running stream for asynchronous device errors (e.g. a
// device disconnected mid-stream).
type PollStatus struct {
	// Err is non-nil if the backend has hit an error while running the
	// stream.
	Err error
	// CanCloseGracefully is true if the backend can still be cleanly
	// stopped (Close can be called normally); false if the device is
	// already gone and Close should skip trying to talk to it.
	CanCloseGracefully bool
}

// StartResult is returned by Backend.StartStream.
type StartResult struct {
	// Handle is an opaque backend-specific stream handle, passed back to
	// PollForErrors.
	Handle any
	// NumInputChannels/NumOutputChannels are the channel counts the
	// backend actually opened the device with.
	NumInputChannels  int
	NumOutputChannels int
	// SampleRate is the sample rate the device was actually opened at.
	SampleRate float64
}

// Backend is implemented by a concrete audio device binding (see
// backend/portaudio.go). It is intentionally minimal: everything about
// device enumeration, buffer sizing, and latency is the backend's own
// concern, specified only by this interface's contract — start a
// full-duplex (or output-only) stream that repeatedly calls
// exec.ProcessInterleaved from its device callback, and report
// asynchronous errors when polled.
type Backend interface {
	StartStream(sampleRate float64, cfg any, exec *Executor) (StartResult, error)
	PollForErrors(handle any) PollStatus
}
