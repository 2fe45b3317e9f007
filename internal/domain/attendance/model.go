package attendance

import (
	"strings"

	"github.com/riskibarqy/lunch-hockey-rsvp/internal/domain/profile"
)

// PlaceholderDisplay stands in for roster entries without a usable name.
const PlaceholderDisplay = "Player"

// Counts is the number of confirmed players per position for one session.
type Counts struct {
	Skaters int
	Goalies int
}

// SelfStatus is the requesting user's own attendance for one session.
type SelfStatus struct {
	Attending bool
}

// Summary is the batched attendance view returned by the remote sheet. It is
// replaced wholesale on every fetch and never patched locally.
type Summary struct {
	Counts map[string]Counts
	My     map[string]SelfStatus
}

// EmptySummary is the state before any successful fetch.
func EmptySummary() Summary {
	return Summary{
		Counts: map[string]Counts{},
		My:     map[string]SelfStatus{},
	}
}

// CountsFor treats a session missing from the response as having no sign-ups yet.
func (s Summary) CountsFor(sessionID string) Counts {
	return s.Counts[sessionID]
}

// StatusFor treats a session missing from the response as not attending.
func (s Summary) StatusFor(sessionID string) SelfStatus {
	return s.My[sessionID]
}

// Attendee is one roster line for display. Values come from other users and
// must be treated as untrusted text.
type Attendee struct {
	Display  string
	Position profile.Position
}

// NormalizeAttendee applies roster display rules: only a case-insensitive
// "goalie" yields Goalie, and a blank name becomes PlaceholderDisplay.
func NormalizeAttendee(display, position string) Attendee {
	pos := profile.PositionSkater
	if strings.ToLower(position) == "goalie" {
		pos = profile.PositionGoalie
	}
	name := strings.TrimSpace(display)
	if name == "" {
		name = PlaceholderDisplay
	}
	return Attendee{Display: name, Position: pos}
}
