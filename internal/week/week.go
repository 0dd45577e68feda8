// Package week derives the renderable week grid from a reference date and an
// event list. Every function here is pure; the "current week" is held by the
// caller as a single reference date and advanced with Navigate.
package week

import (
	"fmt"
	"time"

	"weekcal/internal/model"
)

const (
	DaysPerWeek = 7
	HoursPerDay = 24
)

// Range is the Sunday-to-Saturday week containing a reference date.
type Range struct {
	Start time.Time
	Days  [DaysPerWeek]time.Time
}

// End is the Saturday closing the week.
func (r Range) End() time.Time { return r.Days[DaysPerWeek-1] }

// Contains reports whether t falls on one of the seven days.
func (r Range) Contains(t time.Time) bool {
	for _, d := range r.Days {
		if model.SameDay(d, t) {
			return true
		}
	}
	return false
}

// ComputeWeek returns the seven consecutive days starting at the Sunday on
// or before ref. Days are midnights in ref's location.
func ComputeWeek(ref time.Time) Range {
	day := model.DateOnly(ref)
	start := day.AddDate(0, 0, -int(day.Weekday()))

	r := Range{Start: start}
	for i := range r.Days {
		r.Days[i] = start.AddDate(0, 0, i)
	}
	return r
}

// HoursOfDay is the fixed row sequence 0..23. DST transitions do not add or
// remove rows.
func HoursOfDay() [HoursPerDay]int {
	var hours [HoursPerDay]int
	for i := range hours {
		hours[i] = i
	}
	return hours
}

// EventsAt returns the events starting on day within the given hour, in
// input order. An event occupies only its start-hour cell regardless of its
// end time; events whose StartTime is malformed are never placed.
func EventsAt(day time.Time, hour int, events []model.Event) []model.Event {
	var out []model.Event
	for _, ev := range events {
		if !model.SameDay(ev.Date, day) {
			continue
		}
		if h, ok := ev.StartHour(); ok && h == hour {
			out = append(out, ev)
		}
	}
	return out
}

type Direction int

const (
	Previous Direction = -1
	Next     Direction = 1
)

func (d Direction) String() string {
	switch d {
	case Previous:
		return "previous"
	case Next:
		return "next"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// ParseDirection accepts "prev", "previous" and "next".
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "prev", "previous":
		return Previous, nil
	case "next":
		return Next, nil
	default:
		return 0, fmt.Errorf("unknown direction %q", s)
	}
}

// Navigate shifts ref by exactly seven calendar days. Shifting forward and
// then back yields the original calendar day.
func Navigate(ref time.Time, dir Direction) time.Time {
	switch dir {
	case Previous:
		return ref.AddDate(0, 0, -DaysPerWeek)
	case Next:
		return ref.AddDate(0, 0, DaysPerWeek)
	default:
		return ref
	}
}

// IsToday reports whether day is the same calendar day as now.
func IsToday(day, now time.Time) bool {
	return model.SameDay(day, now.In(day.Location()))
}
