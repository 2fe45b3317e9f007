package attendance

import (
	"context"

	"github.com/riskibarqy/lunch-hockey-rsvp/internal/domain/profile"
)

// Gateway is the remote attendance store. The store applies last-write-wins
// per (session, user key); callers get no read-after-write guarantee.
type Gateway interface {
	FetchSummary(ctx context.Context, sessionIDs []string, userKey string) (Summary, error)
	SetAttendance(ctx context.Context, sessionID string, p *profile.Profile, attending bool) error
	FetchAttendees(ctx context.Context, sessionID string) ([]Attendee, error)
}
