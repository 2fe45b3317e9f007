package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/lunch-hockey-rsvp/internal/domain/attendance"
	"github.com/riskibarqy/lunch-hockey-rsvp/internal/domain/profile"
	"github.com/riskibarqy/lunch-hockey-rsvp/internal/domain/session"
	"github.com/riskibarqy/lunch-hockey-rsvp/internal/platform/logging"
	"github.com/riskibarqy/lunch-hockey-rsvp/internal/platform/resilience"
	"go.opentelemetry.io/otel/attribute"
)

// DefaultSettleDelay gives the remote sheet time to apply a write before the
// follow-up summary read.
const DefaultSettleDelay = 350 * time.Millisecond

// DefaultRosterWorkers bounds concurrent roster reads in AllRosters.
const DefaultRosterWorkers = 4

const (
	EmptyBoardMessage  = "No upcoming sessions right now."
	EmptyRosterMessage = "No players yet."

	StatusAttending   = "✓ You are attending"
	StatusNotSignedUp = "Not signed up"
	StatusNoProfile   = "Save profile to RSVP"

	ActionCancel = "Cancel RSVP"
	ActionJoin   = "RSVP Yes"
)

type LoadState string

const (
	LoadStateLoading    LoadState = "loading"
	LoadStateLoaded     LoadState = "loaded"
	LoadStateLoadFailed LoadState = "load_failed"
)

// Card is everything a front-end needs to draw one session.
type Card struct {
	Session     session.Session
	Counts      attendance.Counts
	Attending   bool
	CountsText  string
	StatusText  string
	ActionLabel string
	CanToggle   bool
}

type Board struct {
	State      LoadState
	Cards      []Card
	Message    string
	Profile    profile.Profile
	HasProfile bool
	Busy       bool
}

type Roster struct {
	Session   session.Session
	Title     string
	Attendees []attendance.Attendee
	Message   string
}

// BuildCards derives card text from sessions and the last fetched summary.
// Self status always comes from the summary, never from a pending write, and
// reads as not attending without a profile.
func BuildCards(sessions []session.Session, summary attendance.Summary, hasProfile bool) []Card {
	cards := make([]Card, 0, len(sessions))
	for _, s := range sessions {
		counts := summary.CountsFor(s.ID)
		attending := hasProfile && summary.StatusFor(s.ID).Attending

		card := Card{
			Session:     s,
			Counts:      counts,
			Attending:   attending,
			CountsText:  fmt.Sprintf("Skaters: %d | Goalies: %d", counts.Skaters, counts.Goalies),
			StatusText:  StatusNoProfile,
			ActionLabel: ActionJoin,
			CanToggle:   hasProfile,
		}
		if hasProfile {
			card.StatusText = StatusNotSignedUp
			if attending {
				card.StatusText = StatusAttending
			}
		}
		if attending {
			card.ActionLabel = ActionCancel
		}
		cards = append(cards, card)
	}
	return cards
}

type BoardServiceConfig struct {
	Schedule      session.Schedule
	SettleDelay   time.Duration
	RosterWorkers int
	Logger        *logging.Logger
}

// BoardService holds the per-session view state: the latest summary and the
// single pending write.
type BoardService struct {
	schedule    session.Schedule
	profiles    profile.Repository
	gateway     attendance.Gateway
	settleDelay time.Duration
	workers     int
	logger      *logging.Logger
	gate        resilience.WriteGate

	mu      sync.RWMutex
	summary attendance.Summary
	state   LoadState
	fetched bool

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewBoardService(profiles profile.Repository, gateway attendance.Gateway, cfg BoardServiceConfig) *BoardService {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	delay := cfg.SettleDelay
	if delay < 0 {
		delay = 0
	}
	workers := cfg.RosterWorkers
	if workers <= 0 {
		workers = DefaultRosterWorkers
	}

	return &BoardService{
		schedule:    cfg.Schedule,
		profiles:    profiles,
		gateway:     gateway,
		settleDelay: delay,
		workers:     workers,
		logger:      logger,
		summary:     attendance.EmptySummary(),
		state:       LoadStateLoading,
		now:         time.Now,
		sleep:       sleepContext,
	}
}

// Busy reports whether an attendance write is in flight.
func (s *BoardService) Busy() bool {
	return s.gate.Held()
}

func (s *BoardService) State() LoadState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// UpcomingSessions lists sessions that have not started yet.
func (s *BoardService) UpcomingSessions() ([]session.Session, error) {
	sessions, err := session.Upcoming(s.schedule, s.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return sessions, nil
}

// Refresh fetches a fresh summary for every upcoming session and rebuilds the
// board. A failed fetch yields a LoadFailed board with no cards.
func (s *BoardService) Refresh(ctx context.Context) (Board, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BoardService.Refresh")
	defer span.End()

	board, err := s.refresh(ctx)
	board.Busy = s.Busy()
	return board, err
}

// Current rebuilds the board from the cached summary without any network call.
func (s *BoardService) Current(ctx context.Context) (Board, error) {
	p, hasProfile, err := s.loadProfile(ctx)
	if err != nil {
		return Board{State: LoadStateLoadFailed, Message: loadFailedMessage(err)}, err
	}
	sessions, err := s.UpcomingSessions()
	if err != nil {
		return Board{State: LoadStateLoadFailed, Message: loadFailedMessage(err)}, err
	}

	s.mu.RLock()
	summary, state := s.summary, s.state
	s.mu.RUnlock()

	board := Board{State: state, Profile: p, HasProfile: hasProfile, Busy: s.Busy()}
	switch {
	case len(sessions) == 0:
		board.State = LoadStateLoaded
		board.Message = EmptyBoardMessage
	case state == LoadStateLoaded:
		board.Cards = BuildCards(sessions, summary, hasProfile)
	}
	return board, nil
}

// Toggle flips the caller's attendance for one session. Only one write runs at
// a time; a second toggle while one is pending is rejected, not queued.
func (s *BoardService) Toggle(ctx context.Context, sessionID string) (Board, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BoardService.Toggle")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", sessionID))

	p, hasProfile, err := s.loadProfile(ctx)
	if err != nil {
		return Board{}, err
	}
	if !hasProfile {
		return Board{}, fmt.Errorf("%w: please save your profile first", ErrPrecondition)
	}

	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return Board{}, fmt.Errorf("%w: session id is required", ErrInvalidInput)
	}
	upcoming, err := s.UpcomingSessions()
	if err != nil {
		return Board{}, err
	}
	if _, ok := session.Find(upcoming, sessionID); !ok {
		return Board{}, fmt.Errorf("%w: no upcoming session %q", ErrNotFound, sessionID)
	}

	if !s.gate.TryAcquire() {
		return Board{}, ErrWriteInFlight
	}
	defer s.gate.Release()

	// The next value is derived from fetched state, so make sure there is some.
	if !s.hasFetched() {
		if board, err := s.refresh(ctx); err != nil {
			return board, err
		}
	}

	next := !s.cachedStatus(sessionID).Attending
	if err := s.gateway.SetAttendance(ctx, sessionID, &p, next); err != nil {
		s.logger.WarnContext(ctx, "attendance update failed",
			"session_id", sessionID,
			"attending", next,
			"error", err,
		)
		board, _ := s.Current(ctx)
		board.Busy = false
		return board, fmt.Errorf("RSVP update failed: %w", err)
	}

	s.logger.InfoContext(ctx, "attendance updated", "session_id", sessionID, "attending", next)

	if err := s.sleep(ctx, s.settleDelay); err != nil {
		return Board{}, err
	}
	return s.refresh(ctx)
}

// Roster lists attendees for a session. It is unavailable while a write is
// pending.
func (s *BoardService) Roster(ctx context.Context, sessionID string) (Roster, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BoardService.Roster")
	defer span.End()

	if s.Busy() {
		return Roster{}, ErrWriteInFlight
	}

	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return Roster{}, fmt.Errorf("%w: session id is required", ErrInvalidInput)
	}
	all, err := session.Generate(s.schedule)
	if err != nil {
		return Roster{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	target, ok := session.Find(all, sessionID)
	if !ok {
		return Roster{}, fmt.Errorf("%w: no session %q", ErrNotFound, sessionID)
	}

	return s.fetchRoster(ctx, target)
}

// AllRosters loads the roster of every upcoming session on a bounded worker
// pool. A failed session keeps its error in Roster.Message and the returned
// error wraps the first failure.
func (s *BoardService) AllRosters(ctx context.Context) ([]Roster, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BoardService.AllRosters")
	defer span.End()

	if s.Busy() {
		return nil, ErrWriteInFlight
	}

	sessions, err := s.UpcomingSessions()
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("sessions", len(sessions)))
	if len(sessions) == 0 {
		return []Roster{}, nil
	}

	pool, err := ants.NewPool(min(s.workers, len(sessions)))
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		mu       sync.Mutex
		rosters  = make([]Roster, 0, len(sessions))
		failures int
		firstErr error
		workers  sync.WaitGroup
	)
	for _, item := range sessions {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			roster, err := s.fetchRoster(ctx, item)

			mu.Lock()
			defer mu.Unlock()
			rosters = append(rosters, roster)
			if err != nil {
				failures++
				if firstErr == nil {
					firstErr = err
				}
			}
		}); err != nil {
			workers.Done()
			workers.Wait()
			return nil, fmt.Errorf("submit roster fetch to worker pool: %w", err)
		}
	}
	workers.Wait()

	sort.Slice(rosters, func(i, j int) bool {
		return rosters[i].Session.ID < rosters[j].Session.ID
	})
	if failures > 0 {
		return rosters, fmt.Errorf("%d of %d rosters failed to load: %w", failures, len(sessions), firstErr)
	}
	return rosters, nil
}

func (s *BoardService) fetchRoster(ctx context.Context, target session.Session) (Roster, error) {
	roster := Roster{Session: target, Title: target.Label()}
	attendees, err := s.gateway.FetchAttendees(ctx, target.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "roster fetch failed", "session_id", target.ID, "error", err)
		roster.Message = "Could not load players: " + err.Error()
		return roster, err
	}

	roster.Attendees = attendees
	if len(attendees) == 0 {
		roster.Message = EmptyRosterMessage
	}
	return roster, nil
}

func (s *BoardService) refresh(ctx context.Context) (Board, error) {
	p, hasProfile, err := s.loadProfile(ctx)
	if err != nil {
		return Board{State: LoadStateLoadFailed, Message: loadFailedMessage(err)}, err
	}

	sessions, err := s.UpcomingSessions()
	if err != nil {
		return Board{State: LoadStateLoadFailed, Message: loadFailedMessage(err)}, err
	}

	board := Board{Profile: p, HasProfile: hasProfile}
	if len(sessions) == 0 {
		board.State = LoadStateLoaded
		board.Message = EmptyBoardMessage
		return board, nil
	}

	ids := make([]string, 0, len(sessions))
	for _, item := range sessions {
		ids = append(ids, item.ID)
	}
	userKey := ""
	if hasProfile {
		userKey = p.UserKey()
	}

	s.setState(LoadStateLoading)
	summary, err := s.gateway.FetchSummary(ctx, ids, userKey)
	if err != nil {
		s.setState(LoadStateLoadFailed)
		s.logger.WarnContext(ctx, "summary fetch failed", "session_count", len(ids), "error", err)
		board.State = LoadStateLoadFailed
		board.Message = loadFailedMessage(err)
		return board, err
	}

	s.storeSummary(summary)
	board.State = LoadStateLoaded
	board.Cards = BuildCards(sessions, summary, hasProfile)
	return board, nil
}

func (s *BoardService) loadProfile(ctx context.Context) (profile.Profile, bool, error) {
	p, ok, err := s.profiles.Load(ctx)
	if err != nil {
		return profile.Profile{}, false, fmt.Errorf("load profile: %w", err)
	}
	if ok && !p.Complete() {
		return profile.Profile{}, false, nil
	}
	return p, ok, nil
}

func (s *BoardService) setState(state LoadState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *BoardService) storeSummary(summary attendance.Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary = summary
	s.state = LoadStateLoaded
	s.fetched = true
}

func (s *BoardService) hasFetched() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fetched
}

func (s *BoardService) cachedStatus(sessionID string) attendance.SelfStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summary.StatusFor(sessionID)
}

func loadFailedMessage(err error) string {
	return "Error loading counts: " + err.Error()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
