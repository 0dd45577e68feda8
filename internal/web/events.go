package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"weekcal/internal/form"
	"weekcal/internal/ics"
	appLog "weekcal/internal/log"
	"weekcal/internal/model"
	"weekcal/internal/store"
)

const maxBodyBytes = 64 << 10

// eventDTO is the wire form of an event. ReadOnly marks feed events.
type eventDTO struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Date        string      `json:"date"`
	StartTime   string      `json:"start_time"`
	EndTime     string      `json:"end_time"`
	Color       model.Color `json:"color"`
	Description string      `json:"description,omitempty"`
	ReadOnly    bool        `json:"read_only,omitempty"`
}

func toDTO(e model.Event, readOnly bool) eventDTO {
	return eventDTO{
		ID:          e.ID,
		Title:       e.Title,
		Date:        e.Date.Format(form.DateLayout),
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		Color:       e.Color,
		Description: e.Description,
		ReadOnly:    readOnly,
	}
}

func toDTOs(events []model.Event, readOnly bool) []eventDTO {
	out := make([]eventDTO, 0, len(events))
	for _, e := range events {
		out = append(out, toDTO(e, readOnly))
	}
	return out
}

func (s *Server) handleListEvents(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"events": toDTOs(s.store.List(), false)})
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	ev, err := s.store.Get(r.PathValue("id"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"event": toDTO(ev, false),
		"form":  form.ForEvent(ev),
	})
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	f, ok := s.decodeFields(w, r)
	if !ok {
		return
	}
	ev, err := s.store.Create(f)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.Header().Set("Location", "/api/events/"+ev.ID)
	writeJSON(w, http.StatusCreated, toDTO(ev, false))
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	f, ok := s.decodeFields(w, r)
	if !ok {
		return
	}
	ev, err := s.store.Update(r.PathValue("id"), f)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDTO(ev, false))
}

// handleDeleteEvent is idempotent: deleting an id that is already gone
// still answers 204.
func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.Delete(id); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.writeStoreError(w, err)
			return
		}
		appLog.Debug("delete of unknown event ignored", "id", id)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExport(w http.ResponseWriter, _ *http.Request) {
	body, err := ics.Export(s.store.List(), s.loc, s.now())
	if err != nil {
		appLog.Error("api export failed", err)
		writeError(w, http.StatusInternalServerError, "failed to export events")
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="weekcal.ics"`)
	_, _ = w.Write(body)
}

// decodeFields reads a form.Input body and validates it. On failure the
// response has already been written.
func (s *Server) decodeFields(w http.ResponseWriter, r *http.Request) (model.Fields, bool) {
	var in form.Input
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return model.Fields{}, false
	}

	f, err := form.Validate(in, s.loc)
	if err != nil {
		var verr *form.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, errResp{Error: "invalid event", Fields: verr.Problems})
			return model.Fields{}, false
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return model.Fields{}, false
	}
	return f, true
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}
	appLog.Error("store operation failed", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}
