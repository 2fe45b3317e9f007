package session

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

var rruleWeekdays = map[time.Weekday]rrule.Weekday{
	time.Sunday:    rrule.SU,
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
}

// Generate expands the schedule into sessions ordered by date. Only dates in
// [RangeStart, RangeEnd) falling on one of the schedule weekdays are produced.
func Generate(s Schedule) ([]Session, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	loc := s.Location
	if loc == nil {
		loc = time.Local
	}

	byDay := make([]rrule.Weekday, 0, len(s.Weekdays))
	seenDay := make(map[time.Weekday]struct{}, len(s.Weekdays))
	for _, day := range s.Weekdays {
		if _, ok := seenDay[day]; ok {
			continue
		}
		wd, ok := rruleWeekdays[day]
		if !ok {
			return nil, fmt.Errorf("unsupported weekday %d", day)
		}
		seenDay[day] = struct{}{}
		byDay = append(byDay, wd)
	}
	// An empty BYDAY would make the rule fall back to the DTSTART weekday.
	if len(byDay) == 0 {
		return []Session{}, nil
	}

	firstDay := midnight(s.RangeStart, loc)
	endDay := midnight(s.RangeEnd, loc)
	dtstart := s.Start.On(firstDay, loc)

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Dtstart:   dtstart,
		Byweekday: byDay,
	})
	if err != nil {
		return nil, fmt.Errorf("build session rule: %w", err)
	}

	occurrences := rule.Between(dtstart, endDay, true)
	out := make([]Session, 0, len(occurrences))
	seenID := make(map[string]struct{}, len(occurrences))
	for _, occ := range occurrences {
		day := midnight(occ, loc)
		if !day.Before(endDay) {
			break
		}
		id := day.Format(IDLayout)
		if _, ok := seenID[id]; ok {
			continue
		}
		seenID[id] = struct{}{}
		out = append(out, newSession(day, s.Start, s.End, loc))
	}

	return out, nil
}

// FilterUpcoming keeps sessions that have not started yet. A session starting
// exactly at now is still upcoming.
func FilterUpcoming(sessions []Session, now time.Time) []Session {
	out := make([]Session, 0, len(sessions))
	for _, item := range sessions {
		if item.StartsAt.Before(now) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// Upcoming is Generate followed by FilterUpcoming.
func Upcoming(s Schedule, now time.Time) ([]Session, error) {
	all, err := Generate(s)
	if err != nil {
		return nil, err
	}
	return FilterUpcoming(all, now), nil
}

// Find returns the session with the given id.
func Find(sessions []Session, id string) (Session, bool) {
	for _, item := range sessions {
		if item.ID == id {
			return item, true
		}
	}
	return Session{}, false
}

func newSession(day time.Time, start, end Clock, loc *time.Location) Session {
	startsAt := start.On(day, loc)
	endsAt := end.On(day, loc)
	return Session{
		ID:       day.Format(IDLayout),
		StartsAt: startsAt,
		EndsAt:   endsAt,
		DateText: day.Format(dateTextLayout),
		TimeText: startsAt.Format(timeTextLayout) + " – " + endsAt.Format(timeTextLayout),
	}
}

func midnight(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
