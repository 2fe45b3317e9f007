package main

import (
	"fmt"
	"io"

	"github.com/riskibarqy/lunch-hockey-rsvp/internal/domain/profile"
	"github.com/riskibarqy/lunch-hockey-rsvp/internal/usecase"
)

func printProfile(w io.Writer, p profile.Profile) {
	fmt.Fprintf(w, "%s (%s) key=%s\n", p.DisplayName(), p.Position, p.UserKey())
}

func printBoard(w io.Writer, board usecase.Board) {
	if board.Message != "" {
		fmt.Fprintln(w, board.Message)
	}
	for _, card := range board.Cards {
		fmt.Fprintf(w, "[%s] %s\n", card.Session.ID, card.Session.Label())
		fmt.Fprintf(w, "    %s\n", card.CountsText)
		fmt.Fprintf(w, "    %s", card.StatusText)
		if card.CanToggle {
			fmt.Fprintf(w, "  (rsvp toggle %s: %s)", card.Session.ID, card.ActionLabel)
		}
		fmt.Fprintln(w)
	}
}

func printRoster(w io.Writer, roster usecase.Roster) {
	fmt.Fprintln(w, roster.Title)
	if roster.Message != "" {
		fmt.Fprintln(w, roster.Message)
	}
	for _, a := range roster.Attendees {
		fmt.Fprintf(w, "  %s (%s)\n", a.Display, a.Position)
	}
}
