package calendar

import (
	"io"
	"time"

	ical "github.com/arran4/golang-ical"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/lunch-hockey-rsvp/internal/domain/session"
)

const (
	productID     = "-//lunch-hockey-rsvp//sessions//EN"
	uidSuffix     = "@lunch-hockey"
	localTimeForm = "20060102T150405"
)

type Exporter struct {
	Title    string
	Location string
	now      func() time.Time
}

func NewExporter(title, location string) *Exporter {
	return &Exporter{
		Title:    title,
		Location: location,
		now:      time.Now,
	}
}

// Write renders sessions as a VCALENDAR. Times carry a TZID when the session
// zone is a named IANA zone and fall back to UTC otherwise.
func (e *Exporter) Write(w io.Writer, sessions []session.Session) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	stamp := e.now().UTC()
	for _, s := range sessions {
		event := cal.AddEvent(s.ID + uidSuffix)
		event.SetDtStampTime(stamp)
		event.SetSummary(e.Title)
		if e.Location != "" {
			event.SetLocation(e.Location)
		}
		event.SetDescription(s.Label())
		setTime(event, ical.ComponentPropertyDtStart, s.StartsAt)
		setTime(event, ical.ComponentPropertyDtEnd, s.EndsAt)
	}

	if err := cal.SerializeTo(w); err != nil {
		return crerr.Wrap(err, "serialize calendar")
	}
	return nil
}

func setTime(event *ical.VEvent, prop ical.ComponentProperty, t time.Time) {
	if zone := t.Location().String(); zone != "" && zone != "Local" && zone != "UTC" {
		event.SetProperty(prop, t.Format(localTimeForm), ical.WithTZID(zone))
		return
	}
	event.SetProperty(prop, t.UTC().Format(localTimeForm)+"Z")
}
