package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	appLog "weekcal/internal/log"
	"weekcal/internal/model"
)

var (
	// ErrNotFound is returned by Get, Update and Delete for an unknown id.
	// Delete reports it on every call for a missing id, including a repeated
	// delete; callers wanting idempotent deletes ignore it.
	ErrNotFound = errors.New("event not found")

	// ErrDuplicateID is returned by Seed for an empty or already used id.
	ErrDuplicateID = errors.New("duplicate event id")

	// ErrIDExhausted is returned by Create when the id generator keeps
	// producing ids that are empty or already taken.
	ErrIDExhausted = errors.New("no free event id")
)

const maxIDAttempts = 16

// Store is the in-memory source of truth for calendar events.
//
// Events are keyed by id; List returns them in insertion order. All methods
// are safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	order  []string
	events map[string]model.Event
	newID  func() string
}

// New returns an empty store that assigns random UUIDs.
func New() *Store {
	return NewWithIDFunc(uuid.NewString)
}

// NewWithIDFunc returns an empty store using gen for new ids. Create retries
// a taken or empty id a bounded number of times.
func NewWithIDFunc(gen func() string) *Store {
	return &Store{
		events: make(map[string]model.Event),
		newID:  gen,
	}
}

// Seed loads host-supplied events keeping their ids. The batch is checked
// as a whole: on error nothing is inserted.
func (s *Store) Seed(events ...model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := make(map[string]bool, len(events))
	for _, ev := range events {
		if ev.ID == "" {
			return fmt.Errorf("%w: empty id", ErrDuplicateID)
		}
		if _, ok := s.events[ev.ID]; ok || batch[ev.ID] {
			return fmt.Errorf("%w: %q", ErrDuplicateID, ev.ID)
		}
		batch[ev.ID] = true
	}

	for _, ev := range events {
		s.events[ev.ID] = ev
		s.order = append(s.order, ev.ID)
	}
	appLog.Debug("store seeded", "count", len(events), "total", len(s.order))
	return nil
}

// Create stores a new event with a fresh id and returns the stored copy.
func (s *Store) Create(f model.Fields) (model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := "", false
	for range maxIDAttempts {
		id = s.newID()
		if _, taken := s.events[id]; !taken && id != "" {
			ok = true
			break
		}
	}
	if !ok {
		return model.Event{}, ErrIDExhausted
	}

	ev := model.Event{ID: id, Fields: f}
	s.events[id] = ev
	s.order = append(s.order, id)

	appLog.Info("event created", "id", id, "title", f.Title, "date", f.Date.Format("2006-01-02"), "start", f.StartTime)
	return ev, nil
}

// Update replaces every field of the event except its id. The event keeps
// its position in List order.
func (s *Store) Update(id string, f model.Fields) (model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[id]; !ok {
		return model.Event{}, ErrNotFound
	}
	ev := model.Event{ID: id, Fields: f}
	s.events[id] = ev

	appLog.Info("event updated", "id", id, "title", f.Title)
	return ev, nil
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[id]; !ok {
		return ErrNotFound
	}
	delete(s.events, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	appLog.Info("event deleted", "id", id)
	return nil
}

func (s *Store) Get(id string) (model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ev, ok := s.events[id]
	if !ok {
		return model.Event{}, ErrNotFound
	}
	return ev, nil
}

// List returns a snapshot of all events in insertion order. The returned
// slice is owned by the caller.
func (s *Store) List() []model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Event, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.events[id])
	}
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
