package fakeregistrationrepo

import (
	"context"
	"sync"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-collaborate/internal/errors"
	"github.com/jrsteele09/go-collaborate/registrations"
)

var _ registrations.Repo = (*FakeRegistrationRepo)(nil)

type FakeRegistrationRepo struct {
	registrations map[string]*registrations.Registration
	lock          sync.RWMutex
}

func NewFakeRegistrationRepo() registrations.Repo {
	return &FakeRegistrationRepo{
		registrations: make(map[string]*registrations.Registration),
	}
}

func (rr *FakeRegistrationRepo) Upsert(_ context.Context, reg *registrations.Registration) error {
	rr.lock.Lock()
	defer rr.lock.Unlock()

	if reg.ID == "" {
		reg.ID = uuid.New().String()
	}
	stored := *reg
	rr.registrations[reg.ID] = &stored
	return nil
}

func (rr *FakeRegistrationRepo) Get(_ context.Context, id string) (*registrations.Registration, error) {
	rr.lock.RLock()
	defer rr.lock.RUnlock()

	reg, ok := rr.registrations[id]
	if !ok {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "registration %s", id)
	}
	r := *reg
	return &r, nil
}

func (rr *FakeRegistrationRepo) Delete(_ context.Context, id string) error {
	rr.lock.Lock()
	defer rr.lock.Unlock()

	if _, ok := rr.registrations[id]; !ok {
		return apperrors.Wrapf(apperrors.ErrNotFound, "registration %s", id)
	}
	delete(rr.registrations, id)
	return nil
}
