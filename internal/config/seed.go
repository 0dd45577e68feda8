package config

import (
	"fmt"
	"time"

	"weekcal/internal/form"
	"weekcal/internal/model"
)

// Event validates the seed entry through the same input layer as the API.
func (s SeedEvent) Event(loc *time.Location) (model.Event, error) {
	if s.ID == "" {
		return model.Event{}, fmt.Errorf("seed event %q: id is required", s.Title)
	}
	f, err := form.Validate(form.Input{
		Title:       s.Title,
		Date:        s.Date,
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
		Color:       string(s.Color),
		Description: s.Description,
	}, loc)
	if err != nil {
		return model.Event{}, fmt.Errorf("seed event %q: %w", s.ID, err)
	}
	return model.Event{ID: s.ID, Fields: f}, nil
}

// DemoEvents are the two sample events shown on a fresh install: a team
// meeting today and a client call tomorrow.
func DemoEvents(now time.Time) []model.Event {
	today := model.DateOnly(now)
	return []model.Event{
		{
			ID: "demo-1",
			Fields: model.Fields{
				Title:       "Team Meeting",
				Date:        today,
				StartTime:   "10:00",
				EndTime:     "11:00",
				Color:       model.ColorGreen,
				Description: "Weekly team sync meeting",
			},
		},
		{
			ID: "demo-2",
			Fields: model.Fields{
				Title:       "Client Call",
				Date:        today.AddDate(0, 0, 1),
				StartTime:   "14:00",
				EndTime:     "15:00",
				Color:       model.ColorRed,
				Description: "Important client discussion",
			},
		},
	}
}

// SeedEvents returns every event the store starts with: the demo pair when
// enabled, followed by the configured list.
func (c *Config) SeedEvents(now time.Time) ([]model.Event, error) {
	loc := c.Location()
	var out []model.Event
	if c.SeedDemo {
		out = append(out, DemoEvents(now.In(loc))...)
	}
	for _, se := range c.Events {
		ev, err := se.Event(loc)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}
