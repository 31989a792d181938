package capture

import (
	"time"

	"plant-journal-be/internal/entity"
	"plant-journal-be/internal/pkg/logger"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

const (
	sessionTTL     = 30 * time.Minute
	sessionCleanup = 10 * time.Minute
)

// Manager owns the live capture sessions. Each submission creates one
// workflow; sessions expire after a period of inactivity.
type Manager struct {
	pipeline Pipeline
	logger   logger.ILogger
	sessions *gocache.Cache
	onChange func(ownerId string, sessionId uuid.UUID, st State)
}

func NewManager(pipeline Pipeline, log logger.ILogger, onChange func(ownerId string, sessionId uuid.UUID, st State)) *Manager {
	return &Manager{
		pipeline: pipeline,
		logger:   log,
		sessions: gocache.New(sessionTTL, sessionCleanup),
		onChange: onChange,
	}
}

// Start creates a session and submits the image. The returned id addresses
// the session for status polling, cancel, retry and reset.
func (m *Manager) Start(ownerId string, image []byte, category entity.Category) (uuid.UUID, *Workflow, error) {
	sessionId := uuid.New()

	var notify func(State)
	if m.onChange != nil {
		notify = func(st State) {
			m.onChange(ownerId, sessionId, st)
		}
	}

	w := NewWorkflow(ownerId, m.pipeline, m.logger, notify)
	if err := w.Submit(image, category); err != nil {
		return uuid.Nil, nil, err
	}

	m.sessions.Set(sessionId.String(), w, gocache.DefaultExpiration)
	return sessionId, w, nil
}

// Get returns the session's workflow, scoped to its owner.
func (m *Manager) Get(sessionId uuid.UUID, ownerId string) (*Workflow, bool) {
	v, ok := m.sessions.Get(sessionId.String())
	if !ok {
		return nil, false
	}
	w := v.(*Workflow)
	if w.OwnerId != ownerId {
		return nil, false
	}
	return w, true
}
