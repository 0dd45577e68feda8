package web

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"weekcal/internal/form"
	"weekcal/internal/model"
	"weekcal/internal/week"
)

type weekResponse struct {
	Title    string   `json:"title"`
	Start    string   `json:"start"`
	End      string   `json:"end"`
	Date     string   `json:"date"`
	Previous string   `json:"previous"`
	Next     string   `json:"next"`
	Timezone string   `json:"timezone"`
	Hours    []string `json:"hours"`
	Days     []dayDTO `json:"days"`
}

type dayDTO struct {
	Date   string    `json:"date"`
	Name   string    `json:"name"`
	Number int       `json:"number"`
	Today  bool      `json:"today"`
	Slots  []slotDTO `json:"slots"`
}

type slotDTO struct {
	Hour   int        `json:"hour"`
	Events []eventDTO `json:"events"`
}

// handleWeek returns the grid for the week containing ?date= (default:
// today). Store events come first, then feed events, each in their own
// order.
//
// GET /api/week?date=2024-01-08
func (s *Server) handleWeek(w http.ResponseWriter, r *http.Request) {
	ref, ok := s.refDate(w, r)
	if !ok {
		return
	}

	events := s.store.List()
	var imported []model.Event
	if s.feeds != nil {
		imported = s.feeds.Events()
		events = append(events, imported...)
	}
	readOnly := make(map[string]bool, len(imported))
	for _, ev := range imported {
		readOnly[ev.ID] = true
	}

	g := week.Build(ref, events, s.now())

	resp := weekResponse{
		Title:    g.Title,
		Start:    g.Range.Start.Format(form.DateLayout),
		End:      g.Range.End().Format(form.DateLayout),
		Date:     ref.Format(form.DateLayout),
		Previous: g.Previous.Format(form.DateLayout),
		Next:     g.Next.Format(form.DateLayout),
		Timezone: s.loc.String(),
		Days:     make([]dayDTO, 0, week.DaysPerWeek),
	}
	for _, h := range week.HoursOfDay() {
		resp.Hours = append(resp.Hours, week.HourLabel(h))
	}
	for _, col := range g.Days {
		day := dayDTO{
			Date:   col.Date.Format(form.DateLayout),
			Name:   col.Name,
			Number: col.Number,
			Today:  col.Today,
			Slots:  make([]slotDTO, 0, week.HoursPerDay),
		}
		for _, slot := range col.Slots {
			dtos := make([]eventDTO, 0, len(slot.Events))
			for _, ev := range slot.Events {
				dtos = append(dtos, toDTO(ev, readOnly[ev.ID]))
			}
			day.Slots = append(day.Slots, slotDTO{Hour: slot.Hour, Events: dtos})
		}
		resp.Days = append(resp.Days, day)
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleNavigate moves the reference date one week.
//
// GET /api/navigate?date=2024-01-08&direction=next
func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	ref, ok := s.refDate(w, r)
	if !ok {
		return
	}
	dir, err := week.ParseDirection(strings.TrimSpace(r.URL.Query().Get("direction")))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"date": week.Navigate(ref, dir).Format(form.DateLayout),
	})
}

// defaultSlotHour is used by the plain "create event" action, which has no
// clicked slot.
const defaultSlotHour = 9

// handleSlot returns create-form defaults for a clicked slot. Without
// ?hour= it defaults to 09:00 today.
//
// GET /api/slot?date=2024-01-08&hour=9
func (s *Server) handleSlot(w http.ResponseWriter, r *http.Request) {
	ref, ok := s.refDate(w, r)
	if !ok {
		return
	}
	hour := defaultSlotHour
	if raw := strings.TrimSpace(r.URL.Query().Get("hour")); raw != "" {
		h, err := strconv.Atoi(raw)
		if err != nil || h < 0 || h >= week.HoursPerDay {
			writeError(w, http.StatusBadRequest, "hour must be between 0 and 23")
			return
		}
		hour = h
	}
	writeJSON(w, http.StatusOK, form.ForSlot(ref, hour))
}

// refDate reads ?date= in the configured zone, defaulting to today.
func (s *Server) refDate(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("date"))
	if raw == "" {
		return model.DateOnly(s.now().In(s.loc)), true
	}
	d, err := time.ParseInLocation(form.DateLayout, raw, s.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return d, true
}
