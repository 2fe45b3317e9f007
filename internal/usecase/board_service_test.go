package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/lunch-hockey-rsvp/internal/domain/attendance"
	"github.com/riskibarqy/lunch-hockey-rsvp/internal/domain/profile"
	"github.com/riskibarqy/lunch-hockey-rsvp/internal/domain/session"
	"github.com/riskibarqy/lunch-hockey-rsvp/internal/infrastructure/repository/memory"
	attendancemock "github.com/riskibarqy/lunch-hockey-rsvp/internal/mocks/domain/attendance"
	profilemock "github.com/riskibarqy/lunch-hockey-rsvp/internal/mocks/domain/profile"
	"github.com/riskibarqy/lunch-hockey-rsvp/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	testNow     = time.Date(2026, time.February, 2, 9, 0, 0, 0, time.UTC)
	testProfile = profile.Profile{FirstName: "Ann", LastName: "Lee", Position: profile.PositionSkater}
	twoSessions = []string{"2026-02-03", "2026-02-05"}
)

// twoSessionSchedule yields Tue Feb 3 and Thu Feb 5 2026.
func twoSessionSchedule() session.Schedule {
	schedule := session.DefaultSchedule(time.UTC)
	schedule.RangeEnd = time.Date(2026, time.February, 6, 0, 0, 0, 0, time.UTC)
	return schedule
}

type boardFixture struct {
	service  *BoardService
	gateway  *attendancemock.Gateway
	profiles *memory.ProfileRepository
	sleeps   []time.Duration
	mu       sync.Mutex
}

func newBoardFixture(t *testing.T, withProfile bool) *boardFixture {
	t.Helper()

	f := &boardFixture{
		gateway:  attendancemock.NewGateway(t),
		profiles: memory.NewProfileRepository(),
	}
	if withProfile {
		require.NoError(t, f.profiles.Save(context.Background(), testProfile))
	}

	f.service = NewBoardService(f.profiles, f.gateway, BoardServiceConfig{
		Schedule:    twoSessionSchedule(),
		SettleDelay: DefaultSettleDelay,
		Logger:      logging.NewNop(),
	})
	f.service.now = func() time.Time { return testNow }
	f.service.sleep = func(_ context.Context, d time.Duration) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.sleeps = append(f.sleeps, d)
		return nil
	}
	return f
}

func summaryWith(counts map[string]attendance.Counts, my map[string]attendance.SelfStatus) attendance.Summary {
	out := attendance.EmptySummary()
	for k, v := range counts {
		out.Counts[k] = v
	}
	for k, v := range my {
		out.My[k] = v
	}
	return out
}

func TestBuildCards_TwoSessionScenario(t *testing.T) {
	t.Parallel()

	sessions, err := session.Generate(twoSessionSchedule())
	require.NoError(t, err)

	summary := summaryWith(
		map[string]attendance.Counts{"2026-02-03": {Skaters: 8, Goalies: 1}},
		map[string]attendance.SelfStatus{"2026-02-03": {Attending: true}},
	)

	cards := BuildCards(sessions, summary, true)
	require.Len(t, cards, 2)

	assert.Equal(t, "Tue, Feb 3 • 11:30 AM – 1:00 PM", cards[0].Session.Label())
	assert.Equal(t, "Skaters: 8 | Goalies: 1", cards[0].CountsText)
	assert.Equal(t, StatusAttending, cards[0].StatusText)
	assert.Equal(t, ActionCancel, cards[0].ActionLabel)

	assert.Equal(t, "Thu, Feb 5 • 11:30 AM – 1:00 PM", cards[1].Session.Label())
	assert.Equal(t, "Skaters: 0 | Goalies: 0", cards[1].CountsText)
	assert.Equal(t, StatusNotSignedUp, cards[1].StatusText)
	assert.Equal(t, ActionJoin, cards[1].ActionLabel)
}

func TestBuildCards_WithoutProfile(t *testing.T) {
	t.Parallel()

	sessions, err := session.Generate(twoSessionSchedule())
	require.NoError(t, err)

	cards := BuildCards(sessions, attendance.EmptySummary(), false)
	for _, card := range cards {
		assert.Equal(t, StatusNoProfile, card.StatusText)
		assert.False(t, card.CanToggle)
	}
}

func TestBuildCards_WithoutProfileIgnoresSelfStatus(t *testing.T) {
	t.Parallel()

	sessions, err := session.Generate(twoSessionSchedule())
	require.NoError(t, err)

	summary := summaryWith(
		map[string]attendance.Counts{"2026-02-03": {Skaters: 4}},
		map[string]attendance.SelfStatus{"2026-02-03": {Attending: true}},
	)

	cards := BuildCards(sessions, summary, false)
	require.Len(t, cards, 2)
	assert.Equal(t, "Skaters: 4 | Goalies: 0", cards[0].CountsText)
	assert.Equal(t, StatusNoProfile, cards[0].StatusText)
	assert.Equal(t, ActionJoin, cards[0].ActionLabel)
	assert.False(t, cards[0].Attending)
}

func TestBoardService_RefreshUsesUserKey(t *testing.T) {
	t.Parallel()

	f := newBoardFixture(t, true)
	f.gateway.On("FetchSummary", mock.Anything, twoSessions, "ann_lee").
		Return(summaryWith(map[string]attendance.Counts{"2026-02-05": {Skaters: 3}}, nil), nil).
		Once()

	board, err := f.service.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, LoadStateLoaded, board.State)
	assert.True(t, board.HasProfile)
	require.Len(t, board.Cards, 2)
	assert.Equal(t, "Skaters: 3 | Goalies: 0", board.Cards[1].CountsText)
}

func TestBoardService_RefreshWithoutProfileSendsEmptyKey(t *testing.T) {
	t.Parallel()

	f := newBoardFixture(t, false)
	f.gateway.On("FetchSummary", mock.Anything, twoSessions, "").
		Return(attendance.EmptySummary(), nil).
		Once()

	board, err := f.service.Refresh(context.Background())
	require.NoError(t, err)
	assert.False(t, board.HasProfile)
	assert.Equal(t, StatusNoProfile, board.Cards[0].StatusText)
}

func TestBoardService_RefreshFailureShowsNoCards(t *testing.T) {
	t.Parallel()

	f := newBoardFixture(t, true)
	f.gateway.On("FetchSummary", mock.Anything, twoSessions, "ann_lee").
		Return(attendance.Summary{}, &ServerError{Action: "Summary", Message: "Sheet is locked"}).
		Once()

	board, err := f.service.Refresh(context.Background())
	require.ErrorIs(t, err, ErrServer)
	assert.Equal(t, LoadStateLoadFailed, board.State)
	assert.Empty(t, board.Cards)
	assert.Equal(t, "Error loading counts: Sheet is locked", board.Message)
	assert.Equal(t, LoadStateLoadFailed, f.service.State())
}

func TestBoardService_RefreshEmptySchedule(t *testing.T) {
	t.Parallel()

	f := newBoardFixture(t, true)
	f.service.now = func() time.Time { return time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC) }

	board, err := f.service.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, EmptyBoardMessage, board.Message)
	f.gateway.AssertNotCalled(t, "FetchSummary", mock.Anything, mock.Anything, mock.Anything)
}

func TestBoardService_RefreshProfileLoadError(t *testing.T) {
	t.Parallel()

	repo := profilemock.NewRepository(t)
	gateway := attendancemock.NewGateway(t)
	service := NewBoardService(repo, gateway, BoardServiceConfig{Schedule: twoSessionSchedule(), Logger: logging.NewNop()})
	service.now = func() time.Time { return testNow }

	repo.On("Load", mock.Anything).Return(profile.Profile{}, false, errors.New("disk gone")).Once()

	board, err := service.Refresh(context.Background())
	require.Error(t, err)
	assert.Equal(t, LoadStateLoadFailed, board.State)
	assert.Contains(t, board.Message, "disk gone")
}

func TestBoardService_ToggleWithoutProfileMakesNoNetworkCall(t *testing.T) {
	t.Parallel()

	f := newBoardFixture(t, false)

	_, err := f.service.Toggle(context.Background(), "2026-02-03")
	require.ErrorIs(t, err, ErrPrecondition)
	f.gateway.AssertNumberOfCalls(t, "SetAttendance", 0)
	f.gateway.AssertNumberOfCalls(t, "FetchSummary", 0)
}

func TestBoardService_ToggleUnknownSession(t *testing.T) {
	t.Parallel()

	f := newBoardFixture(t, true)

	_, err := f.service.Toggle(context.Background(), "2026-02-04")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestBoardService_ToggleNegatesFetchedStatusAndRefreshes(t *testing.T) {
	t.Parallel()

	f := newBoardFixture(t, true)
	before := summaryWith(
		map[string]attendance.Counts{"2026-02-03": {Skaters: 8, Goalies: 1}},
		map[string]attendance.SelfStatus{"2026-02-03": {Attending: true}},
	)
	after := summaryWith(map[string]attendance.Counts{"2026-02-03": {Skaters: 7, Goalies: 1}}, nil)

	f.gateway.On("FetchSummary", mock.Anything, twoSessions, "ann_lee").Return(before, nil).Once()
	f.gateway.On("SetAttendance", mock.Anything, "2026-02-03", mock.MatchedBy(func(p *profile.Profile) bool {
		return p != nil && p.UserKey() == "ann_lee"
	}), false).Return(nil).Once()
	f.gateway.On("FetchSummary", mock.Anything, twoSessions, "ann_lee").Return(after, nil).Once()

	_, err := f.service.Refresh(context.Background())
	require.NoError(t, err)

	board, err := f.service.Toggle(context.Background(), "2026-02-03")
	require.NoError(t, err)
	assert.False(t, board.Busy)
	assert.Equal(t, StatusNotSignedUp, board.Cards[0].StatusText)
	assert.Equal(t, "Skaters: 7 | Goalies: 1", board.Cards[0].CountsText)
	assert.Equal(t, []time.Duration{DefaultSettleDelay}, f.sleeps)
}

func TestBoardService_ToggleFetchesFirstWhenNothingCached(t *testing.T) {
	t.Parallel()

	f := newBoardFixture(t, true)
	f.gateway.On("FetchSummary", mock.Anything, twoSessions, "ann_lee").Return(attendance.EmptySummary(), nil).Twice()
	f.gateway.On("SetAttendance", mock.Anything, "2026-02-05", mock.Anything, true).Return(nil).Once()

	_, err := f.service.Toggle(context.Background(), "2026-02-05")
	require.NoError(t, err)
}

func TestBoardService_FailedToggleKeepsFetchedStatus(t *testing.T) {
	t.Parallel()

	f := newBoardFixture(t, true)
	f.gateway.On("FetchSummary", mock.Anything, twoSessions, "ann_lee").Return(attendance.EmptySummary(), nil).Once()
	f.gateway.On("SetAttendance", mock.Anything, "2026-02-03", mock.Anything, true).
		Return(&ServerError{Action: "RSVP", Message: "Sheet is locked"}).
		Once()

	_, err := f.service.Refresh(context.Background())
	require.NoError(t, err)

	board, err := f.service.Toggle(context.Background(), "2026-02-03")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrServer)
	assert.Equal(t, "RSVP update failed: Sheet is locked", err.Error())

	// the card still shows what the server last reported
	require.Len(t, board.Cards, 2)
	assert.Equal(t, StatusNotSignedUp, board.Cards[0].StatusText)
	assert.Equal(t, ActionJoin, board.Cards[0].ActionLabel)
	assert.False(t, f.service.Busy())
	assert.Empty(t, f.sleeps)
}

func TestBoardService_ConcurrentToggleIsRejected(t *testing.T) {
	t.Parallel()

	f := newBoardFixture(t, true)
	started := make(chan struct{})
	release := make(chan struct{})

	f.gateway.On("FetchSummary", mock.Anything, twoSessions, "ann_lee").Return(attendance.EmptySummary(), nil)
	f.gateway.On("SetAttendance", mock.Anything, "2026-02-03", mock.Anything, true).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(nil).
		Once()

	_, err := f.service.Refresh(context.Background())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := f.service.Toggle(context.Background(), "2026-02-03")
		done <- err
	}()

	<-started
	assert.True(t, f.service.Busy())

	_, err = f.service.Toggle(context.Background(), "2026-02-05")
	assert.ErrorIs(t, err, ErrWriteInFlight)

	_, err = f.service.Roster(context.Background(), "2026-02-03")
	assert.ErrorIs(t, err, ErrWriteInFlight)

	board, err := f.service.Current(context.Background())
	require.NoError(t, err)
	assert.True(t, board.Busy)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, f.service.Busy())
	f.gateway.AssertNumberOfCalls(t, "SetAttendance", 1)
}

func TestBoardService_Roster(t *testing.T) {
	t.Parallel()

	f := newBoardFixture(t, false)
	f.gateway.On("FetchAttendees", mock.Anything, "2026-02-03").
		Return([]attendance.Attendee{
			attendance.NormalizeAttendee("Ann Lee", "GOALIE"),
			attendance.NormalizeAttendee("", ""),
		}, nil).
		Once()

	roster, err := f.service.Roster(context.Background(), "2026-02-03")
	require.NoError(t, err)
	assert.Equal(t, "Tue, Feb 3 • 11:30 AM – 1:00 PM", roster.Title)
	require.Len(t, roster.Attendees, 2)
	assert.Equal(t, profile.PositionGoalie, roster.Attendees[0].Position)
	assert.Equal(t, attendance.PlaceholderDisplay, roster.Attendees[1].Display)
	assert.Empty(t, roster.Message)
}

func TestBoardService_RosterEmptyAndFailure(t *testing.T) {
	t.Parallel()

	f := newBoardFixture(t, false)
	f.gateway.On("FetchAttendees", mock.Anything, "2026-02-03").Return([]attendance.Attendee{}, nil).Once()
	f.gateway.On("FetchAttendees", mock.Anything, "2026-02-05").Return(nil, errors.New("boom")).Once()

	roster, err := f.service.Roster(context.Background(), "2026-02-03")
	require.NoError(t, err)
	assert.Equal(t, EmptyRosterMessage, roster.Message)

	roster, err = f.service.Roster(context.Background(), "2026-02-05")
	require.Error(t, err)
	assert.Equal(t, "Could not load players: boom", roster.Message)

	_, err = f.service.Roster(context.Background(), "2027-01-01")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBoardService_AllRosters(t *testing.T) {
	t.Parallel()

	f := newBoardFixture(t, false)
	f.gateway.On("FetchAttendees", mock.Anything, "2026-02-03").
		Return([]attendance.Attendee{attendance.NormalizeAttendee("Ann Lee", "Skater")}, nil).
		Once()
	f.gateway.On("FetchAttendees", mock.Anything, "2026-02-05").Return([]attendance.Attendee{}, nil).Once()

	rosters, err := f.service.AllRosters(context.Background())
	require.NoError(t, err)
	require.Len(t, rosters, 2)
	assert.Equal(t, "2026-02-03", rosters[0].Session.ID)
	assert.Len(t, rosters[0].Attendees, 1)
	assert.Equal(t, "2026-02-05", rosters[1].Session.ID)
	assert.Equal(t, EmptyRosterMessage, rosters[1].Message)
}

func TestBoardService_AllRostersKeepsPartialResults(t *testing.T) {
	t.Parallel()

	f := newBoardFixture(t, false)
	f.gateway.On("FetchAttendees", mock.Anything, "2026-02-03").Return(nil, ErrNetwork).Once()
	f.gateway.On("FetchAttendees", mock.Anything, "2026-02-05").Return([]attendance.Attendee{}, nil).Once()

	rosters, err := f.service.AllRosters(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.Contains(t, err.Error(), "1 of 2 rosters failed to load")
	require.Len(t, rosters, 2)
	assert.Contains(t, rosters[0].Message, "Could not load players:")
}

func TestBoardService_AllRostersNoSessions(t *testing.T) {
	t.Parallel()

	f := newBoardFixture(t, false)
	f.service.now = func() time.Time { return time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC) }

	rosters, err := f.service.AllRosters(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rosters)
	f.gateway.AssertNotCalled(t, "FetchAttendees", mock.Anything, mock.Anything)
}

func TestSleepContext_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
	assert.NoError(t, sleepContext(context.Background(), 0))
}
