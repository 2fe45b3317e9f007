package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/lunch-hockey-rsvp/internal/domain/attendance"
	"github.com/riskibarqy/lunch-hockey-rsvp/internal/domain/profile"
	"github.com/riskibarqy/lunch-hockey-rsvp/internal/domain/session"
	"github.com/riskibarqy/lunch-hockey-rsvp/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_UsageErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer

	assert.Equal(t, exitUsage, run(nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "usage: rsvp")

	stderr.Reset()
	assert.Equal(t, exitUsage, run([]string{"dance"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), `unknown command "dance"`)
}

func TestRun_ConfigErrorExits(t *testing.T) {
	t.Setenv("RSVP_API_BASE_URL", "")
	var stdout, stderr bytes.Buffer

	assert.Equal(t, exitErr, run([]string{"events"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "RSVP_API_BASE_URL is required")
}

func TestPrintBoard(t *testing.T) {
	schedule := session.DefaultSchedule(time.UTC)
	schedule.RangeEnd = time.Date(2026, time.February, 6, 0, 0, 0, 0, time.UTC)
	sessions, err := session.Generate(schedule)
	require.NoError(t, err)

	summary := attendance.EmptySummary()
	summary.Counts["2026-02-03"] = attendance.Counts{Skaters: 8, Goalies: 1}
	summary.My["2026-02-03"] = attendance.SelfStatus{Attending: true}

	var out bytes.Buffer
	printBoard(&out, usecase.Board{Cards: usecase.BuildCards(sessions, summary, true)})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "[2026-02-03] Tue, Feb 3 • 11:30 AM – 1:00 PM", lines[0])
	assert.Equal(t, "    Skaters: 8 | Goalies: 1", lines[1])
	assert.Equal(t, "    ✓ You are attending  (rsvp toggle 2026-02-03: Cancel RSVP)", lines[2])
	assert.Equal(t, "    Not signed up  (rsvp toggle 2026-02-05: RSVP Yes)", lines[5])
}

func TestPrintBoard_Message(t *testing.T) {
	var out bytes.Buffer
	printBoard(&out, usecase.Board{Message: usecase.EmptyBoardMessage})
	assert.Equal(t, "No upcoming sessions right now.\n", out.String())
}

func TestPrintRoster(t *testing.T) {
	var out bytes.Buffer
	printRoster(&out, usecase.Roster{
		Title: "Tue, Feb 3 • 11:30 AM – 1:00 PM",
		Attendees: []attendance.Attendee{
			{Display: "Ann Lee", Position: profile.PositionGoalie},
			{Display: "Player", Position: profile.PositionSkater},
		},
	})
	assert.Equal(t, "Tue, Feb 3 • 11:30 AM – 1:00 PM\n  Ann Lee (Goalie)\n  Player (Skater)\n", out.String())
}
