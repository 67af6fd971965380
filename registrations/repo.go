package registrations

import "context"

type Repo interface {
	Upsert(ctx context.Context, reg *Registration) error
	Get(ctx context.Context, id string) (*Registration, error)
	Delete(ctx context.Context, id string) error
}
