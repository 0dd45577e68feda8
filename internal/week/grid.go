package week

import (
	"strconv"
	"time"

	"weekcal/internal/model"
)

// Grid is a fully derived week view, ready for a UI layer to draw.
type Grid struct {
	Range Range
	Title string

	// Previous / Next are the reference dates one week either side.
	Previous time.Time
	Next     time.Time

	Days [DaysPerWeek]Column
}

type Column struct {
	Date   time.Time
	Name   string // "Sun"
	Number int
	Today  bool
	Slots  [HoursPerDay]Slot
}

type Slot struct {
	Hour   int
	Label  string
	Events []model.Event
}

// Build computes the grid for the week containing ref.
func Build(ref time.Time, events []model.Event, now time.Time) Grid {
	r := ComputeWeek(ref)
	g := Grid{
		Range:    r,
		Title:    Title(r),
		Previous: Navigate(ref, Previous),
		Next:     Navigate(ref, Next),
	}

	hours := HoursOfDay()
	for i, day := range r.Days {
		col := Column{
			Date:   day,
			Name:   day.Format("Mon"),
			Number: day.Day(),
			Today:  IsToday(day, now),
		}
		for _, h := range hours {
			col.Slots[h] = Slot{
				Hour:   h,
				Label:  HourLabel(h),
				Events: EventsAt(day, h, events),
			}
		}
		g.Days[i] = col
	}
	return g
}

// Title renders the week as "Jan 7 - Jan 13, 2024".
func Title(r Range) string {
	return r.Start.Format("Jan 2") + " - " + r.End().Format("Jan 2, 2006")
}

// HourLabel renders a row header on a 12-hour clock: "12 AM", "1 AM", ...
// "12 PM", ... "11 PM".
func HourLabel(hour int) string {
	switch {
	case hour == 0:
		return "12 AM"
	case hour < 12:
		return strconv.Itoa(hour) + " AM"
	case hour == 12:
		return "12 PM"
	default:
		return strconv.Itoa(hour-12) + " PM"
	}
}

// Count returns the number of events placed anywhere in the grid.
func (g Grid) Count() int {
	n := 0
	for _, col := range g.Days {
		for _, s := range col.Slots {
			n += len(s.Events)
		}
	}
	return n
}
