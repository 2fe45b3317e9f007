package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/lunch-hockey-rsvp/internal/domain/profile"
)

type ProfileRepository struct {
	mu      sync.RWMutex
	profile profile.Profile
	present bool
}

var _ profile.Repository = (*ProfileRepository)(nil)

func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{}
}

func (r *ProfileRepository) Load(_ context.Context) (profile.Profile, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.profile, r.present, nil
}

func (r *ProfileRepository) Save(_ context.Context, p profile.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.profile = p
	r.present = true
	return nil
}
