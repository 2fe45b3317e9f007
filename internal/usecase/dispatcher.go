package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/lunch-hockey-rsvp/internal/domain/profile"
	"github.com/riskibarqy/lunch-hockey-rsvp/internal/platform/logging"
)

// Command is one user action. Front-ends build commands and hand them to a
// Dispatcher; they never call services directly.
type Command interface {
	commandName() string
}

type SaveProfile struct {
	First    string
	Last     string
	Position string
}

type RefreshEvents struct{}

type ToggleAttendance struct {
	SessionID string
}

type ViewRoster struct {
	SessionID string
}

// ViewAllRosters loads the roster of every upcoming session.
type ViewAllRosters struct{}

func (SaveProfile) commandName() string      { return "save_profile" }
func (RefreshEvents) commandName() string    { return "refresh_events" }
func (ToggleAttendance) commandName() string { return "toggle_attendance" }
func (ViewRoster) commandName() string       { return "view_roster" }
func (ViewAllRosters) commandName() string   { return "view_all_rosters" }

// Result carries whatever the command produced; unused fields stay nil.
type Result struct {
	Profile *profile.Profile
	Board   *Board
	Roster  *Roster
	Rosters []Roster
}

type Dispatcher struct {
	profiles *ProfileService
	board    *BoardService
	logger   *logging.Logger
}

func NewDispatcher(profiles *ProfileService, board *BoardService, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{profiles: profiles, board: board, logger: logger}
}

func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command) (Result, error) {
	if cmd == nil {
		return Result{}, fmt.Errorf("%w: command is required", ErrInvalidInput)
	}

	ctx, span := startUsecaseSpan(ctx, "usecase.Dispatcher."+cmd.commandName())
	defer span.End()

	switch c := cmd.(type) {
	case SaveProfile:
		return d.saveProfile(ctx, c)
	case RefreshEvents:
		board, err := d.board.Refresh(ctx)
		return Result{Board: &board}, err
	case ToggleAttendance:
		board, err := d.board.Toggle(ctx, c.SessionID)
		if err != nil {
			d.logger.WarnContext(ctx, "toggle attendance failed", "session_id", c.SessionID, "error", err)
		}
		return Result{Board: &board}, err
	case ViewRoster:
		roster, err := d.board.Roster(ctx, c.SessionID)
		return Result{Roster: &roster}, err
	case ViewAllRosters:
		rosters, err := d.board.AllRosters(ctx)
		return Result{Rosters: rosters}, err
	default:
		return Result{}, fmt.Errorf("%w: unknown command %T", ErrInvalidInput, cmd)
	}
}

// saveProfile stores the profile and then reloads the board so statuses pick
// up the new user key. A failed reload does not fail the save; the board
// carries the error message instead.
func (d *Dispatcher) saveProfile(ctx context.Context, c SaveProfile) (Result, error) {
	p, err := d.profiles.Save(ctx, SaveProfileInput(c))
	if err != nil {
		return Result{}, err
	}
	d.logger.InfoContext(ctx, "profile saved", "user_key", p.UserKey(), "position", p.Position.String())

	board, err := d.board.Refresh(ctx)
	if err != nil {
		d.logger.WarnContext(ctx, "refresh after profile save failed", "error", err)
	}
	return Result{Profile: &p, Board: &board}, nil
}
