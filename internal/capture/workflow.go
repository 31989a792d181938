// Package capture drives one capture attempt from raw image bytes to a
// terminal success, error or cancelled state.
package capture

import (
	"context"
	"errors"
	"sync"
	"time"

	"plant-journal-be/internal/entity"
	"plant-journal-be/internal/pkg/logger"
	"plant-journal-be/pkg/vision"

	"github.com/google/uuid"
)

var (
	// ErrBusy is returned when a submission arrives while an attempt is
	// already processing. The workflow holds exactly one attempt at a time.
	ErrBusy = errors.New("capture already in progress")
	// ErrNotRetryable is returned when Retry is called outside the error state.
	ErrNotRetryable = errors.New("nothing to retry")
)

// State is the workflow's tagged union. Exactly one variant is current at
// any time; Success, Failed and Cancelled are terminal until Reset.
type State interface {
	isState()
}

type Idle struct{}

type Processing struct {
	Stage    string
	Progress float64
}

type Success struct {
	DiscoveryId uuid.UUID
}

type Failed struct {
	Message string
}

type Cancelled struct{}

func (Idle) isState()       {}
func (Processing) isState() {}
func (Success) isState()    {}
func (Failed) isState()     {}
func (Cancelled) isState()  {}

// Pipeline is the slice of the discovery service the workflow drives.
type Pipeline interface {
	SaveImage(ctx context.Context, ownerId string, image []byte) (string, error)
	Identify(ctx context.Context, imagePath string) (*vision.Identification, error)
	SaveDiscovery(ctx context.Context, ownerId string, ident *vision.Identification, imagePath string, category entity.Category, capturedAt int64) (uuid.UUID, error)
}

const (
	stageSavingImage     = "Saving image"
	stageIdentifying     = "Identifying"
	stageSavingDiscovery = "Saving discovery"
	stageDone            = "Done"

	msgStorageFailed      = "Could not save the captured image."
	msgUnidentifiable     = "No plant, flower or insect could be identified in this image."
	msgInsertFailed       = "Could not save the discovery."
	msgGenericIdentFailed = "Identification failed. Try again."
)

// Workflow is one capture session. Safe for concurrent use; the pipeline
// runs on its own goroutine and every transition is checked against the
// attempt generation so results arriving after a cancel are discarded.
type Workflow struct {
	OwnerId string

	mu       sync.Mutex
	state    State
	pipeline Pipeline
	logger   logger.ILogger

	image      []byte
	category   entity.Category
	capturedAt int64
	savedPath  string // set once step 1 succeeds; reused on retry

	gen    int // attempt generation
	cancel context.CancelFunc

	onChange func(State)
}

// NewWorkflow starts in Idle. onChange, if non-nil, observes every state
// transition (called outside the workflow lock).
func NewWorkflow(ownerId string, pipeline Pipeline, log logger.ILogger, onChange func(State)) *Workflow {
	return &Workflow{
		OwnerId:  ownerId,
		state:    Idle{},
		pipeline: pipeline,
		logger:   log,
		onChange: onChange,
	}
}

// State returns the current state.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Submit begins processing a captured image. Returns ErrBusy while an
// attempt is in flight.
func (w *Workflow) Submit(image []byte, category entity.Category) error {
	w.mu.Lock()
	if _, busy := w.state.(Processing); busy {
		w.mu.Unlock()
		return ErrBusy
	}
	w.image = image
	w.category = category
	w.capturedAt = time.Now().UnixMilli()
	w.savedPath = ""
	w.start()
	return nil
}

// Retry re-enters the pipeline from the error state, reusing the in-memory
// image. If the image was already persisted, the save step is skipped.
func (w *Workflow) Retry() error {
	w.mu.Lock()
	if _, failed := w.state.(Failed); !failed {
		w.mu.Unlock()
		return ErrNotRetryable
	}
	w.start()
	return nil
}

// Cancel transitions a processing attempt to Cancelled. The in-flight
// identification call is not aborted server-side; its late result is
// discarded because the attempt generation has moved on.
func (w *Workflow) Cancel() {
	w.mu.Lock()
	if _, busy := w.state.(Processing); !busy {
		w.mu.Unlock()
		return
	}
	if w.cancel != nil {
		w.cancel()
	}
	w.gen++ // invalidate the in-flight attempt
	w.state = Cancelled{}
	w.mu.Unlock()
	w.notify(Cancelled{})
}

// Reset returns a terminal state to Idle. A no-op while processing.
func (w *Workflow) Reset() {
	w.mu.Lock()
	if _, busy := w.state.(Processing); busy {
		w.mu.Unlock()
		return
	}
	w.image = nil
	w.savedPath = ""
	w.state = Idle{}
	w.mu.Unlock()
	w.notify(Idle{})
}

// start launches an attempt. Caller must hold w.mu; start releases it.
func (w *Workflow) start() {
	w.gen++
	gen := w.gen
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	st := Processing{Stage: stageSavingImage, Progress: 0.2}
	w.state = st
	w.mu.Unlock()
	w.notify(st)

	go w.run(ctx, gen)
}

func (w *Workflow) run(ctx context.Context, gen int) {
	w.mu.Lock()
	image := w.image
	category := w.category
	capturedAt := w.capturedAt
	path := w.savedPath
	ownerId := w.OwnerId
	w.mu.Unlock()

	// Step 1: persist the image. Skipped when a previous attempt already
	// saved it (manual retry path).
	if path == "" {
		saved, err := w.pipeline.SaveImage(ctx, ownerId, image)
		if err != nil {
			w.fail(gen, msgStorageFailed)
			return
		}
		path = saved
		w.mu.Lock()
		if w.gen == gen {
			w.savedPath = saved
		}
		w.mu.Unlock()
	}

	// Step 2: identify.
	if !w.advance(gen, stageIdentifying, 0.5) {
		return
	}
	ident, err := w.pipeline.Identify(ctx, path)
	if err != nil {
		w.fail(gen, identFailureMessage(err))
		return
	}

	// Step 3: persist the discovery.
	if !w.advance(gen, stageSavingDiscovery, 0.8) {
		return
	}
	id, err := w.pipeline.SaveDiscovery(ctx, ownerId, ident, path, category, capturedAt)
	if err != nil {
		w.fail(gen, msgInsertFailed)
		return
	}

	if !w.advance(gen, stageDone, 1.0) {
		return
	}
	w.complete(gen, id)
}

// identFailureMessage maps a pipeline error to the user-facing message.
func identFailureMessage(err error) string {
	if errors.Is(err, vision.ErrUnidentifiable) {
		return msgUnidentifiable
	}
	var identErr *vision.IdentificationError
	if errors.As(err, &identErr) {
		return identErr.Message
	}
	return msgGenericIdentFailed
}

// advance moves to the next processing stage. Returns false when the
// attempt is stale (cancelled or superseded); the caller abandons the run.
func (w *Workflow) advance(gen int, stage string, progress float64) bool {
	w.mu.Lock()
	if w.gen != gen {
		w.mu.Unlock()
		return false
	}
	if _, busy := w.state.(Processing); !busy {
		w.mu.Unlock()
		return false
	}
	st := Processing{Stage: stage, Progress: progress}
	w.state = st
	w.mu.Unlock()
	w.notify(st)
	return true
}

func (w *Workflow) fail(gen int, message string) {
	w.mu.Lock()
	if w.gen != gen {
		w.mu.Unlock()
		return
	}
	if _, busy := w.state.(Processing); !busy {
		w.mu.Unlock()
		return
	}
	st := Failed{Message: message}
	w.state = st
	w.mu.Unlock()

	w.logger.Warn("CaptureWorkflow", "Attempt failed", map[string]interface{}{
		"owner_id": w.OwnerId,
		"message":  message,
	})
	w.notify(st)
}

func (w *Workflow) complete(gen int, id uuid.UUID) {
	w.mu.Lock()
	if w.gen != gen {
		w.mu.Unlock()
		return
	}
	if _, busy := w.state.(Processing); !busy {
		w.mu.Unlock()
		return
	}
	st := Success{DiscoveryId: id}
	w.state = st
	w.mu.Unlock()
	w.notify(st)
}

func (w *Workflow) notify(st State) {
	if w.onChange != nil {
		w.onChange(st)
	}
}
