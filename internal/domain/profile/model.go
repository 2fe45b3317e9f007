package profile

import (
	"regexp"
	"strings"
)

// Position is the role a player signs up as.
type Position string

const (
	PositionSkater Position = "Skater"
	PositionGoalie Position = "Goalie"
)

// ParsePosition matches case-insensitively. Empty input defaults to Skater;
// anything else unrecognised is reported with ok=false.
func ParsePosition(raw string) (Position, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return PositionSkater, true
	case "skater":
		return PositionSkater, true
	case "goalie":
		return PositionGoalie, true
	default:
		return Position(raw), false
	}
}

func (p Position) String() string {
	return string(p)
}

// Profile is the single locally stored player identity.
type Profile struct {
	FirstName string   `validate:"required,max=80"`
	LastName  string   `validate:"required,max=80"`
	Position  Position `validate:"oneof=Skater Goalie"`
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// UserKey joins the local profile to remote attendance records. Two players
// with the same name share a key.
func (p Profile) UserKey() string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(p.FirstName+"_"+p.LastName), "_")
}

// Complete reports whether both names are present, which remote writes require.
func (p Profile) Complete() bool {
	return strings.TrimSpace(p.FirstName) != "" && strings.TrimSpace(p.LastName) != ""
}

// DisplayName renders "First Last".
func (p Profile) DisplayName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Normalize trims names and fills in the default position.
func (p Profile) Normalize() Profile {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	if pos, ok := ParsePosition(string(p.Position)); ok {
		p.Position = pos
	}
	return p
}
