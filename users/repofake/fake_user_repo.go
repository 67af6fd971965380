package fakeuserrepo

import (
	"context"
	"sync"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-collaborate/internal/errors"
	"github.com/jrsteele09/go-collaborate/users"
)

var _ users.UserRepo = (*FakeUserRepo)(nil)

type FakeUserRepo struct {
	users    map[string]*users.User
	accounts map[string]string // account name to user id
	lock     sync.RWMutex
}

func NewFakeUserRepo() users.UserRepo {
	return &FakeUserRepo{
		users:    make(map[string]*users.User),
		accounts: make(map[string]string),
	}
}

func (ur *FakeUserRepo) Upsert(_ context.Context, user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if old, ok := ur.users[user.ID]; ok && old.AccountName != user.AccountName {
		delete(ur.accounts, old.AccountName)
	}
	stored := *user
	ur.users[user.ID] = &stored
	ur.accounts[user.AccountName] = user.ID
	return nil
}

func (ur *FakeUserRepo) Delete(_ context.Context, id string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	user, ok := ur.users[id]
	if !ok {
		return apperrors.Wrapf(apperrors.ErrNotFound, "user %s", id)
	}
	delete(ur.accounts, user.AccountName)
	delete(ur.users, id)
	return nil
}

func (ur *FakeUserRepo) GetByID(_ context.Context, id string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	user, ok := ur.users[id]
	if !ok {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "user %s", id)
	}
	u := *user
	return &u, nil
}

func (ur *FakeUserRepo) GetByAccountName(ctx context.Context, accountName string) (*users.User, error) {
	ur.lock.RLock()
	id, ok := ur.accounts[accountName]
	ur.lock.RUnlock()

	if !ok {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "user %s", accountName)
	}
	return ur.GetByID(ctx, id)
}
