package capture

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"plant-journal-be/internal/entity"
	"plant-journal-be/pkg/vision"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

// fakePipeline scripts each step. The gate channels let a test hold an
// in-flight step open to race it against cancel.
type fakePipeline struct {
	mu sync.Mutex

	saveImageErr error
	identifyErr  error
	saveDiscErr  error

	identifyGate chan struct{} // if non-nil, Identify blocks until closed

	saveImageCalls int
	identifyCalls  int
	saveDiscCalls  int

	savedId uuid.UUID
}

func (f *fakePipeline) SaveImage(ctx context.Context, ownerId string, image []byte) (string, error) {
	f.mu.Lock()
	f.saveImageCalls++
	err := f.saveImageErr
	f.mu.Unlock()
	if err != nil {
		return "", err
	}
	return "uploads/" + ownerId + "/discovery.jpg", nil
}

func (f *fakePipeline) Identify(ctx context.Context, imagePath string) (*vision.Identification, error) {
	f.mu.Lock()
	f.identifyCalls++
	gate := f.identifyGate
	err := f.identifyErr
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return &vision.Identification{Name: "Common Daisy", Fact: "Closes at night."}, nil
}

func (f *fakePipeline) SaveDiscovery(ctx context.Context, ownerId string, ident *vision.Identification, imagePath string, category entity.Category, capturedAt int64) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveDiscCalls++
	if f.saveDiscErr != nil {
		return uuid.Nil, f.saveDiscErr
	}
	f.savedId = uuid.New()
	return f.savedId, nil
}

// stateRecorder collects every transition the workflow reports.
type stateRecorder struct {
	mu     sync.Mutex
	states []State
	done   chan struct{} // closed on first terminal state
	once   sync.Once
}

func newStateRecorder() *stateRecorder {
	return &stateRecorder{done: make(chan struct{})}
}

func (r *stateRecorder) record(st State) {
	r.mu.Lock()
	r.states = append(r.states, st)
	r.mu.Unlock()

	switch st.(type) {
	case Success, Failed, Cancelled:
		r.once.Do(func() { close(r.done) })
	}
}

func (r *stateRecorder) wait(t *testing.T) []State {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(5 * time.Second):
		t.Fatal("workflow did not reach a terminal state")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.states...)
}

func TestWorkflowHappyPath(t *testing.T) {
	pipeline := &fakePipeline{}
	rec := newStateRecorder()
	w := NewWorkflow("owner-1", pipeline, nopLogger{}, rec.record)

	require.NoError(t, w.Submit([]byte("img"), entity.CategoryFlower))

	states := rec.wait(t)

	// Progress must be monotonic and end at 1.0 before Success.
	var lastProgress float64
	var sawDone bool
	for _, st := range states {
		if p, ok := st.(Processing); ok {
			assert.GreaterOrEqual(t, p.Progress, lastProgress, "progress went backwards at stage %q", p.Stage)
			lastProgress = p.Progress
			if p.Progress == 1.0 {
				sawDone = true
			}
		}
	}
	assert.True(t, sawDone, "never reported progress 1.0")

	final := states[len(states)-1]
	success, ok := final.(Success)
	require.True(t, ok, "final state = %T", final)
	assert.Equal(t, pipeline.savedId, success.DiscoveryId)

	assert.Equal(t, 1, pipeline.saveImageCalls)
	assert.Equal(t, 1, pipeline.identifyCalls)
	assert.Equal(t, 1, pipeline.saveDiscCalls)
}

func TestWorkflowStorageFailure(t *testing.T) {
	pipeline := &fakePipeline{saveImageErr: errors.New("disk full")}
	rec := newStateRecorder()
	w := NewWorkflow("owner-1", pipeline, nopLogger{}, rec.record)

	require.NoError(t, w.Submit([]byte("img"), entity.CategoryPlant))
	states := rec.wait(t)

	failed, ok := states[len(states)-1].(Failed)
	require.True(t, ok)
	assert.Equal(t, msgStorageFailed, failed.Message)
	assert.Equal(t, 0, pipeline.identifyCalls, "identification must not run after storage failure")
}

func TestWorkflowUnidentifiable(t *testing.T) {
	pipeline := &fakePipeline{identifyErr: vision.ErrUnidentifiable}
	rec := newStateRecorder()
	w := NewWorkflow("owner-1", pipeline, nopLogger{}, rec.record)

	require.NoError(t, w.Submit([]byte("img"), entity.CategoryPlant))
	states := rec.wait(t)

	failed, ok := states[len(states)-1].(Failed)
	require.True(t, ok)
	assert.Equal(t, msgUnidentifiable, failed.Message)
	assert.Equal(t, 0, pipeline.saveDiscCalls, "no record may be stored for an unidentifiable image")
}

func TestWorkflowIdentificationErrorMessage(t *testing.T) {
	pipeline := &fakePipeline{identifyErr: vision.NetworkError(errors.New("timeout"))}
	rec := newStateRecorder()
	w := NewWorkflow("owner-1", pipeline, nopLogger{}, rec.record)

	require.NoError(t, w.Submit([]byte("img"), entity.CategoryPlant))
	states := rec.wait(t)

	failed, ok := states[len(states)-1].(Failed)
	require.True(t, ok)
	var identErr *vision.IdentificationError
	require.True(t, errors.As(vision.NetworkError(errors.New("timeout")), &identErr))
	assert.Equal(t, identErr.Message, failed.Message)
}

func TestWorkflowInsertFailureKeepsSavedPath(t *testing.T) {
	pipeline := &fakePipeline{saveDiscErr: errors.New("db locked")}
	rec := newStateRecorder()
	w := NewWorkflow("owner-1", pipeline, nopLogger{}, rec.record)

	require.NoError(t, w.Submit([]byte("img"), entity.CategoryPlant))
	rec.wait(t)

	failed, ok := w.State().(Failed)
	require.True(t, ok)
	assert.Equal(t, msgInsertFailed, failed.Message)

	// Retry reuses the already-saved image instead of writing a second file.
	pipeline.mu.Lock()
	pipeline.saveDiscErr = nil
	pipeline.mu.Unlock()

	rec2 := newStateRecorder()
	w.onChange = rec2.record
	require.NoError(t, w.Retry())
	rec2.wait(t)

	_, ok = w.State().(Success)
	assert.True(t, ok)
	assert.Equal(t, 1, pipeline.saveImageCalls, "retry must skip the save step")
	assert.Equal(t, 2, pipeline.identifyCalls)
}

func TestWorkflowRetryOnlyFromFailed(t *testing.T) {
	pipeline := &fakePipeline{}
	w := NewWorkflow("owner-1", pipeline, nopLogger{}, nil)

	assert.ErrorIs(t, w.Retry(), ErrNotRetryable)
}

func TestWorkflowBusyRejectsSecondSubmit(t *testing.T) {
	gate := make(chan struct{})
	pipeline := &fakePipeline{identifyGate: gate}
	rec := newStateRecorder()
	w := NewWorkflow("owner-1", pipeline, nopLogger{}, rec.record)

	require.NoError(t, w.Submit([]byte("img"), entity.CategoryPlant))
	assert.ErrorIs(t, w.Submit([]byte("img2"), entity.CategoryPlant), ErrBusy)

	close(gate)
	rec.wait(t)
}

func TestWorkflowCancelDiscardsLateResult(t *testing.T) {
	gate := make(chan struct{})
	pipeline := &fakePipeline{identifyGate: gate}
	rec := newStateRecorder()
	w := NewWorkflow("owner-1", pipeline, nopLogger{}, rec.record)

	require.NoError(t, w.Submit([]byte("img"), entity.CategoryPlant))

	// Cancel while identification is in flight, then let it finish.
	w.Cancel()
	close(gate)

	rec.wait(t)
	time.Sleep(50 * time.Millisecond) // give the late goroutine a chance to misbehave

	_, ok := w.State().(Cancelled)
	assert.True(t, ok, "late pipeline result must not overwrite Cancelled, state = %T", w.State())
	assert.Equal(t, 0, pipeline.saveDiscCalls, "cancelled attempt must not persist a record")
}

func TestWorkflowCancelOutsideProcessingIsNoop(t *testing.T) {
	pipeline := &fakePipeline{}
	w := NewWorkflow("owner-1", pipeline, nopLogger{}, nil)

	w.Cancel()
	_, ok := w.State().(Idle)
	assert.True(t, ok)
}

func TestWorkflowResetReturnsToIdle(t *testing.T) {
	pipeline := &fakePipeline{identifyErr: vision.ErrUnidentifiable}
	rec := newStateRecorder()
	w := NewWorkflow("owner-1", pipeline, nopLogger{}, rec.record)

	require.NoError(t, w.Submit([]byte("img"), entity.CategoryPlant))
	rec.wait(t)

	w.Reset()
	_, ok := w.State().(Idle)
	assert.True(t, ok)

	// A fresh submission starts over, including the save step.
	pipeline.mu.Lock()
	pipeline.identifyErr = nil
	pipeline.mu.Unlock()

	rec2 := newStateRecorder()
	w.onChange = rec2.record
	require.NoError(t, w.Submit([]byte("img2"), entity.CategoryPlant))
	rec2.wait(t)

	_, ok = w.State().(Success)
	assert.True(t, ok)
	assert.Equal(t, 2, pipeline.saveImageCalls)
}

func TestManagerSessionOwnership(t *testing.T) {
	pipeline := &fakePipeline{}
	m := NewManager(pipeline, nopLogger{}, nil)

	sessionId, w, err := m.Start("owner-1", []byte("img"), entity.CategoryPlant)
	require.NoError(t, err)
	require.NotNil(t, w)

	got, ok := m.Get(sessionId, "owner-1")
	require.True(t, ok)
	assert.Same(t, w, got)

	_, ok = m.Get(sessionId, "owner-2")
	assert.False(t, ok, "sessions must be invisible to other owners")

	_, ok = m.Get(uuid.New(), "owner-1")
	assert.False(t, ok)
}
