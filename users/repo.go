package users

import "context"

type UserRepo interface {
	Upsert(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByAccountName(ctx context.Context, accountName string) (*User, error)
}
