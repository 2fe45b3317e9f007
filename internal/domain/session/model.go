package session

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// IDLayout is the session identifier format shared with the remote sheet.
const IDLayout = "2006-01-02"

const (
	dateTextLayout = "Mon, Jan 2"
	timeTextLayout = "3:04 PM"
)

// Session is one scheduled occurrence, identified by its calendar date.
type Session struct {
	ID       string
	StartsAt time.Time
	EndsAt   time.Time
	DateText string
	TimeText string
}

// Label is the human-readable heading used on cards and roster panels.
func (s Session) Label() string {
	return s.DateText + " • " + s.TimeText
}

// Clock is a wall-clock time of day.
type Clock struct {
	Hour   int
	Minute int
}

func ParseClock(raw string) (Clock, error) {
	value := strings.TrimSpace(raw)
	hh, mm, ok := strings.Cut(value, ":")
	if !ok {
		return Clock{}, fmt.Errorf("invalid clock %q, expected HH:MM", raw)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return Clock{}, fmt.Errorf("invalid hour in clock %q", raw)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return Clock{}, fmt.Errorf("invalid minute in clock %q", raw)
	}
	return Clock{Hour: hour, Minute: minute}, nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// On returns the instant of this clock on the given date in loc.
func (c Clock) On(date time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), c.Hour, c.Minute, 0, 0, loc)
}

func (c Clock) minutes() int {
	return c.Hour*60 + c.Minute
}

var weekdayNames = map[string]time.Weekday{
	"su": time.Sunday, "sun": time.Sunday, "sunday": time.Sunday,
	"mo": time.Monday, "mon": time.Monday, "monday": time.Monday,
	"tu": time.Tuesday, "tue": time.Tuesday, "tuesday": time.Tuesday,
	"we": time.Wednesday, "wed": time.Wednesday, "wednesday": time.Wednesday,
	"th": time.Thursday, "thu": time.Thursday, "thursday": time.Thursday,
	"fr": time.Friday, "fri": time.Friday, "friday": time.Friday,
	"sa": time.Saturday, "sat": time.Saturday, "saturday": time.Saturday,
}

// ParseWeekdays reads a comma separated weekday list such as "TU,TH".
func ParseWeekdays(raw string) ([]time.Weekday, error) {
	out := make([]time.Weekday, 0, 2)
	for _, part := range strings.Split(raw, ",") {
		item := strings.ToLower(strings.TrimSpace(part))
		if item == "" {
			continue
		}
		day, ok := weekdayNames[item]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", part)
		}
		out = append(out, day)
	}
	return out, nil
}

// ParseDate reads a YYYY-MM-DD date as midnight in loc.
func ParseDate(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	parsed, err := time.ParseInLocation(IDLayout, strings.TrimSpace(raw), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", raw, err)
	}
	return parsed, nil
}

// Schedule describes the recurring session pattern over a date range.
type Schedule struct {
	// RangeStart is the first eligible date; RangeEnd is exclusive.
	RangeStart time.Time
	RangeEnd   time.Time
	Weekdays   []time.Weekday
	Start      Clock
	End        Clock
	Location   *time.Location
}

// DefaultSchedule is the winter block: Tuesdays and Thursdays in February and
// March 2026, 11:30 to 13:00.
func DefaultSchedule(loc *time.Location) Schedule {
	if loc == nil {
		loc = time.Local
	}
	return Schedule{
		RangeStart: time.Date(2026, time.February, 1, 0, 0, 0, 0, loc),
		RangeEnd:   time.Date(2026, time.April, 1, 0, 0, 0, 0, loc),
		Weekdays:   []time.Weekday{time.Tuesday, time.Thursday},
		Start:      Clock{Hour: 11, Minute: 30},
		End:        Clock{Hour: 13, Minute: 0},
		Location:   loc,
	}
}

func (s Schedule) Validate() error {
	if s.RangeStart.IsZero() || s.RangeEnd.IsZero() {
		return fmt.Errorf("schedule range is required")
	}
	if s.RangeEnd.Before(s.RangeStart) {
		return fmt.Errorf("schedule range end %s is before start %s", s.RangeEnd.Format(IDLayout), s.RangeStart.Format(IDLayout))
	}
	if s.End.minutes() <= s.Start.minutes() {
		return fmt.Errorf("session end %s must be after start %s", s.End, s.Start)
	}
	return nil
}
