package httpapi

import (
	"time"

	"github.com/riskibarqy/lunch-hockey-rsvp/internal/domain/profile"
	"github.com/riskibarqy/lunch-hockey-rsvp/internal/usecase"
)

type profileDTO struct {
	First    string `json:"first"`
	Last     string `json:"last"`
	Position string `json:"pos"`
	UserKey  string `json:"userKey"`
}

type cardDTO struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	StartsAt    time.Time `json:"startsAt"`
	EndsAt      time.Time `json:"endsAt"`
	Skaters     int       `json:"skaters"`
	Goalies     int       `json:"goalies"`
	Attending   bool      `json:"attending"`
	CountsText  string    `json:"countsText"`
	StatusText  string    `json:"statusText"`
	ActionLabel string    `json:"actionLabel"`
	CanToggle   bool      `json:"canToggle"`
}

type boardDTO struct {
	State   string      `json:"state"`
	Message string      `json:"message,omitempty"`
	Busy    bool        `json:"busy"`
	Profile *profileDTO `json:"profile,omitempty"`
	Cards   []cardDTO   `json:"cards"`
}

type attendeeDTO struct {
	Display  string `json:"display"`
	Position string `json:"pos"`
}

type rosterDTO struct {
	SessionID string        `json:"sessionId"`
	Title     string        `json:"title"`
	Message   string        `json:"message,omitempty"`
	Attendees []attendeeDTO `json:"attendees"`
}

type rosterListDTO struct {
	Rosters []rosterDTO `json:"rosters"`
}

func toProfileDTO(p profile.Profile) profileDTO {
	return profileDTO{
		First:    p.FirstName,
		Last:     p.LastName,
		Position: p.Position.String(),
		UserKey:  p.UserKey(),
	}
}

func toBoardDTO(board usecase.Board) boardDTO {
	out := boardDTO{
		State:   string(board.State),
		Message: board.Message,
		Busy:    board.Busy,
		Cards:   make([]cardDTO, 0, len(board.Cards)),
	}
	if board.HasProfile {
		p := toProfileDTO(board.Profile)
		out.Profile = &p
	}
	for _, card := range board.Cards {
		out.Cards = append(out.Cards, cardDTO{
			ID:          card.Session.ID,
			Label:       card.Session.Label(),
			StartsAt:    card.Session.StartsAt,
			EndsAt:      card.Session.EndsAt,
			Skaters:     card.Counts.Skaters,
			Goalies:     card.Counts.Goalies,
			Attending:   card.Attending,
			CountsText:  card.CountsText,
			StatusText:  card.StatusText,
			ActionLabel: card.ActionLabel,
			CanToggle:   card.CanToggle && !board.Busy,
		})
	}
	return out
}

func toRosterDTO(roster usecase.Roster) rosterDTO {
	out := rosterDTO{
		SessionID: roster.Session.ID,
		Title:     roster.Title,
		Message:   roster.Message,
		Attendees: make([]attendeeDTO, 0, len(roster.Attendees)),
	}
	for _, item := range roster.Attendees {
		out.Attendees = append(out.Attendees, attendeeDTO{
			Display:  item.Display,
			Position: item.Position.String(),
		})
	}
	return out
}
