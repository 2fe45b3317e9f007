package profile

import "context"

// Repository persists the one local profile slot.
type Repository interface {
	Load(ctx context.Context) (Profile, bool, error)
	Save(ctx context.Context, p Profile) error
}
