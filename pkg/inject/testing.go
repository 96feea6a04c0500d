package inject

import (
	"context"
	"sync"

	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/sidecar"
)

// Recorder is an Injector for tests. It records every call and can be
// primed to fail.
type Recorder struct {
	mu     sync.Mutex
	calls  []RecordedCall
	closed bool

	// Err is returned by every Inject call when set.
	Err error
}

// RecordedCall is one recorded Inject invocation.
type RecordedCall struct {
	Path   string
	Record sidecar.Record
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Name identifies the injector.
func (*Recorder) Name() string { return "recorder" }

// Inject records the call.
func (r *Recorder) Inject(_ context.Context, path string, rec sidecar.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, RecordedCall{Path: path, Record: rec})
	return r.Err
}

// Close marks the recorder closed.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []RecordedCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]RecordedCall(nil), r.calls...)
}

// Closed reports whether Close was called.
func (r *Recorder) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}
