package ics

import (
	"errors"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	appLog "weekcal/internal/log"
	"weekcal/internal/model"
)

const defaultMaxOccurrencesPerEvent = 5000

// ExpandConfig controls recurrence expansion.
type ExpandConfig struct {
	// DisplayLocation is the zone in which occurrences get their calendar
	// day and HH:MM times. Nil means time.Local.
	DisplayLocation *time.Location

	// RangeStart / RangeEnd bound the occurrences, inclusive.
	RangeStart time.Time
	RangeEnd   time.Time

	// HighlightRed colors an occurrence red when its summary contains one
	// of the keywords (case-insensitive). An explicit X-WEEKCAL-COLOR wins.
	HighlightRed []string

	// MaxOccurrencesPerEvent caps a single RRULE; zero means 5000.
	MaxOccurrencesPerEvent int
}

type ExpandResult struct {
	Events []model.Event
	// TruncatedUIDs lists UIDs that hit MaxOccurrencesPerEvent.
	TruncatedUIDs []string
}

// ExpandOccurrences turns parsed VEVENTs into one model.Event per concrete
// occurrence inside the range. It handles single events, RRULE recurrence,
// EXDATE exclusions and RECURRENCE-ID overrides.
//
// Each occurrence is placed on the calendar day of its start in the display
// zone. Occurrences running past midnight end at 23:59; all-day occurrences
// run 00:00–23:59.
func ExpandOccurrences(events []ParsedEvent, cfg ExpandConfig) (ExpandResult, error) {
	var result ExpandResult

	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return result, errors.New("expand: RangeEnd is before RangeStart")
	}
	if cfg.DisplayLocation == nil {
		cfg.DisplayLocation = time.Local
	}
	if cfg.MaxOccurrencesPerEvent <= 0 {
		cfg.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}

	var uids []string
	base := make(map[string][]ParsedEvent)
	overrides := make(map[string][]ParsedEvent)
	for _, ev := range events {
		if _, seen := base[ev.UID]; !seen {
			if _, seen := overrides[ev.UID]; !seen {
				uids = append(uids, ev.UID)
			}
		}
		if ev.IsOverride && ev.Recurrence != nil {
			overrides[ev.UID] = append(overrides[ev.UID], ev)
			continue
		}
		base[ev.UID] = append(base[ev.UID], ev)
	}

	// UIDs are walked in feed order so the output is deterministic. A base
	// occurrence replaced by a RECURRENCE-ID is dropped; the override is
	// emitted on its own when its moved time overlaps the range.
	for _, uid := range uids {
		truncated := false
		for _, ev := range base[uid] {
			var occ []model.Event
			var hitCap bool
			if ev.RawRRule == "" {
				occ = expandSingle(ev, overrides[uid], cfg)
			} else {
				occ, hitCap = expandRecurring(ev, overrides[uid], cfg)
			}
			truncated = truncated || hitCap
			result.Events = append(result.Events, occ...)
		}
		for _, o := range overrides[uid] {
			if overlaps(o.Start, o.End, cfg.RangeStart, cfg.RangeEnd) {
				result.Events = append(result.Events, toEvent(o, o.Start, o.End, cfg))
			}
		}
		if truncated {
			result.TruncatedUIDs = append(result.TruncatedUIDs, uid)
			appLog.Warn("expand: occurrences truncated", "uid", uid, "cap", cfg.MaxOccurrencesPerEvent)
		}
	}

	return result, nil
}

func expandSingle(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) []model.Event {
	if !overlaps(ev.Start, ev.End, cfg.RangeStart, cfg.RangeEnd) || isOverridden(overrides, ev.Start) {
		return nil
	}
	return []model.Event{toEvent(ev, ev.Start, ev.End, cfg)}
}

func expandRecurring(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) ([]model.Event, bool) {
	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Error("expand: failed to parse RRULE", err, "uid", ev.UID, "rrule", ev.RawRRule)
		return nil, false
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	loc := ev.Start.Location()
	starts := set.Between(cfg.RangeStart.In(loc), cfg.RangeEnd.In(loc), true)

	hitCap := false
	if len(starts) > cfg.MaxOccurrencesPerEvent {
		starts = starts[:cfg.MaxOccurrencesPerEvent]
		hitCap = true
	}

	dur := ev.End.Sub(ev.Start)
	out := make([]model.Event, 0, len(starts))
	for _, start := range starts {
		if isOverridden(overrides, start) {
			continue
		}
		out = append(out, toEvent(ev, start, start.Add(dur), cfg))
	}
	return out, hitCap
}

// isOverridden matches RECURRENCE-ID against an occurrence start by instant.
func isOverridden(overrides []ParsedEvent, start time.Time) bool {
	for _, ov := range overrides {
		if ov.Recurrence != nil && ov.Recurrence.Equal(start) {
			return true
		}
	}
	return false
}

func toEvent(ev ParsedEvent, start, end time.Time, cfg ExpandConfig) model.Event {
	loc := cfg.DisplayLocation

	var day time.Time
	startClock, endClock := "00:00", "23:59"
	if ev.AllDay {
		// All-day dates are floating; keep their calendar day as written.
		y, m, d := start.Date()
		day = time.Date(y, m, d, 0, 0, 0, 0, loc)
	} else {
		s, e := start.In(loc), end.In(loc)
		day = model.DateOnly(s)
		startClock = s.Format("15:04")
		if model.SameDay(s, e) && !e.Before(s) {
			endClock = e.Format("15:04")
		}
	}

	title := strings.TrimSpace(ev.Summary)
	if title == "" {
		title = "(no title)"
	}

	return model.Event{
		ID: ev.Source.ID + ":" + ev.UID + ":" + start.UTC().Format("20060102T150405Z"),
		Fields: model.Fields{
			Title:       title,
			Date:        day,
			StartTime:   startClock,
			EndTime:     endClock,
			Color:       pickColor(ev, cfg.HighlightRed),
			Description: ev.Description,
		},
	}
}

func pickColor(ev ParsedEvent, keywords []string) model.Color {
	if ev.Color.Valid() {
		return ev.Color
	}
	summary := strings.ToLower(ev.Summary)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(summary, strings.ToLower(kw)) {
			return model.ColorRed
		}
	}
	return model.DefaultColor
}

func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aEnd.Before(bStart) && !bEnd.Before(aStart)
}
