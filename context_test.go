package audiograph

import "testing"

func newActivatedContext(t *testing.T) (*Context, *Executor) {
	t.Helper()
	g := newTestGraph(t)
	ctx := NewContext(g, nil)
	ex, err := ctx.Activate(48000, nil)
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}
	return ctx, ex
}

func TestActivateTwiceFails(t *testing.T) {
	ctx, _ := newActivatedContext(t)
	if _, err := ctx.Activate(48000, nil); err == nil {
		t.Fatalf("second Activate on an already-active context should fail")
	}
}

func TestUpdateCompilesPendingMutations(t *testing.T) {
	ctx, ex := newActivatedContext(t)
	g := ctx.Graph()

	n, err := g.AddNode(&passthroughNode{numInputs: 1, numOutputs: 1})
	if err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	g.SetNumInputs(n, 1)
	g.SetNumOutputs(n, 1)

	status := ctx.Update()
	if !status.Active || status.GraphError != nil {
		t.Fatalf("Update() = %+v, want Active with no error", status)
	}

	// The new schedule should reach the executor via its message queue.
	before := ex.schedule
	ex.pollMessages()
	if ex.schedule == nil || ex.schedule == before {
		t.Fatalf("executor should have adopted the recompiled schedule")
	}
}

func TestExecutorCloseReportsDropped(t *testing.T) {
	ctx, ex := newActivatedContext(t)
	ex.Close()

	status := ctx.Update()
	if !status.Deactivated {
		t.Fatalf("Update() = %+v, want Deactivated after executor Close", status)
	}
	if ctx.active != nil {
		t.Fatalf("context should have cleared its active state")
	}
}

func TestProcessInterleavedZerosOutputWhenStopped(t *testing.T) {
	_, ex := newActivatedContext(t)
	ex.running.Store(false)

	out := make([]float32, 4)
	for i := range out {
		out[i] = 1
	}
	status := ex.ProcessInterleaved(nil, out, 0, 1, 4, 0, StreamStatusNormal)
	if status != StatusDropProcessor {
		t.Errorf("status = %v, want StatusDropProcessor once stopped", status)
	}
	for i, v := range out {
		if v != 0 {
			t.Errorf("output[%d] = %v, want 0 once stopped", i, v)
		}
	}
}
