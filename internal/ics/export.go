package ics

import (
	"errors"
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"weekcal/internal/model"
)

const productID = "-//weekcal//weekcal//EN"

// Export serializes events as a VCALENDAR with one VEVENT each. Date and
// HH:MM times are read in loc and written as UTC instants; the color is
// kept in X-WEEKCAL-COLOR. An end before the start is written as a
// zero-length event since DTEND may not precede DTSTART.
func Export(events []model.Event, loc *time.Location, now time.Time) ([]byte, error) {
	if loc == nil {
		loc = time.Local
	}

	cal := ical.NewCalendar()
	cal.SetProductId(productID)
	cal.SetMethod(ical.MethodPublish)

	var errs []error
	for _, ev := range events {
		start, err := model.At(ev.Date, ev.StartTime, loc)
		if err != nil {
			errs = append(errs, fmt.Errorf("event %s: %w", ev.ID, err))
			continue
		}
		end, err := model.At(ev.Date, ev.EndTime, loc)
		if err != nil {
			errs = append(errs, fmt.Errorf("event %s: %w", ev.ID, err))
			continue
		}
		if end.Before(start) {
			end = start
		}

		ve := cal.AddEvent(ev.ID)
		ve.SetDtStampTime(now)
		ve.SetSummary(ev.Title)
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}
		ve.SetStartAt(start)
		ve.SetEndAt(end)
		if ev.Color.Valid() {
			ve.SetProperty(colorProperty, ev.Color.String())
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return []byte(cal.Serialize()), nil
}
