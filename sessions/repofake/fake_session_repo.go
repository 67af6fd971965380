package fakesessionrepo

import (
	"context"
	"sync"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-collaborate/internal/errors"
	"github.com/jrsteele09/go-collaborate/sessions"
)

var _ sessions.Repo = (*FakeSessionRepo)(nil)

type FakeSessionRepo struct {
	sessions map[string]*sessions.Session
	lock     sync.RWMutex
}

func NewFakeSessionRepo() sessions.Repo {
	return &FakeSessionRepo{
		sessions: make(map[string]*sessions.Session),
	}
}

func (sr *FakeSessionRepo) Upsert(_ context.Context, session *sessions.Session) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	stored := *session
	sr.sessions[session.ID] = &stored
	return nil
}

func (sr *FakeSessionRepo) Delete(_ context.Context, id string) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	if _, ok := sr.sessions[id]; !ok {
		return apperrors.Wrapf(apperrors.ErrNotFound, "session %s", id)
	}
	delete(sr.sessions, id)
	return nil
}

func (sr *FakeSessionRepo) Get(_ context.Context, id string) (*sessions.Session, error) {
	sr.lock.RLock()
	defer sr.lock.RUnlock()

	session, ok := sr.sessions[id]
	if !ok {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "session %s", id)
	}
	s := *session
	return &s, nil
}
