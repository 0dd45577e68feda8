// Package form is the host-side input layer for the create/edit event form.
// It turns raw strings into validated model.Fields; the store never sees an
// invalid field set.
package form

import (
	"sort"
	"strings"
	"time"

	"weekcal/internal/model"
)

const DateLayout = "2006-01-02"

// Input mirrors the create/edit form as submitted by a UI.
type Input struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Color       string `json:"color"`
	Description string `json:"description,omitempty"`
}

// ValidationError lists every rejected field with a short reason. A form
// failing validation stays open; nothing reaches the store.
type ValidationError struct {
	Problems map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Problems))
	for k := range e.Problems {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("invalid event:")
	for _, k := range keys {
		b.WriteString(" ")
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(e.Problems[k])
		b.WriteString(";")
	}
	return strings.TrimSuffix(b.String(), ";")
}

func (e *ValidationError) add(field, reason string) {
	if e.Problems == nil {
		e.Problems = make(map[string]string)
	}
	e.Problems[field] = reason
}

// Validate checks in and returns the corresponding Fields with Date at
// midnight in loc. End time is not required to follow start time.
func Validate(in Input, loc *time.Location) (model.Fields, error) {
	if loc == nil {
		loc = time.Local
	}
	var verr ValidationError
	var f model.Fields

	f.Title = strings.TrimSpace(in.Title)
	if f.Title == "" {
		verr.add("title", "required")
	}

	if d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(in.Date), loc); err != nil {
		verr.add("date", "expected YYYY-MM-DD")
	} else {
		f.Date = d
	}

	f.StartTime = strings.TrimSpace(in.StartTime)
	if _, _, err := model.ParseClock(f.StartTime); err != nil {
		verr.add("start_time", "expected HH:MM between 00:00 and 23:59")
	}
	f.EndTime = strings.TrimSpace(in.EndTime)
	if _, _, err := model.ParseClock(f.EndTime); err != nil {
		verr.add("end_time", "expected HH:MM between 00:00 and 23:59")
	}

	f.Color = model.DefaultColor
	if c := strings.TrimSpace(in.Color); c != "" {
		parsed, err := model.ParseColor(strings.ToLower(c))
		if err != nil {
			verr.add("color", "expected green or red")
		} else {
			f.Color = parsed
		}
	}

	f.Description = strings.TrimSpace(in.Description)

	if len(verr.Problems) > 0 {
		return model.Fields{}, &verr
	}
	return f, nil
}

// ForSlot returns the create-form defaults for a clicked (day, hour) slot:
// a one-hour green event with an empty title. The last slot of the day ends
// at 23:59.
func ForSlot(day time.Time, hour int) Input {
	hour = min(max(hour, 0), 23)
	end := model.FormatClock(hour+1, 0)
	if hour == 23 {
		end = "23:59"
	}
	return Input{
		Date:      day.Format(DateLayout),
		StartTime: model.FormatClock(hour, 0),
		EndTime:   end,
		Color:     model.DefaultColor.String(),
	}
}

// ForEvent prefills the edit form from an existing event.
func ForEvent(e model.Event) Input {
	return Input{
		Title:       e.Title,
		Date:        e.Date.Format(DateLayout),
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		Color:       e.Color.String(),
		Description: e.Description,
	}
}
