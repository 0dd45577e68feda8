package store

import (
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"weekcal/internal/model"
)

func fields(title string) model.Fields {
	return model.Fields{
		Title:     title,
		Date:      time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
		StartTime: "10:00",
		EndTime:   "11:00",
		Color:     model.ColorGreen,
	}
}

func mustCreate(t *testing.T, s *Store, title string) model.Event {
	t.Helper()
	ev, err := s.Create(fields(title))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return ev
}

func TestCreateAssignsUniqueIDs(t *testing.T) {
	s := New()

	a := mustCreate(t, s, "a")
	b := mustCreate(t, s, "b")

	if a.ID == "" || b.ID == "" {
		t.Fatalf("Expected non-empty ids, got %q and %q", a.ID, b.ID)
	}
	if a.ID == b.ID {
		t.Errorf("Expected distinct ids, both were %q", a.ID)
	}
	if s.Len() != 2 {
		t.Errorf("Expected 2 events, got %d", s.Len())
	}

	list := s.List()
	if len(list) != 2 || list[0].ID != a.ID || list[1].ID != b.ID {
		t.Errorf("Expected insertion order [%s %s], got %+v", a.ID, b.ID, list)
	}
}

func TestCreateSkipsCollidingIDs(t *testing.T) {
	ids := []string{"x", "x", "", "y"}
	s := NewWithIDFunc(func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	})

	first := mustCreate(t, s, "first")
	second := mustCreate(t, s, "second")
	if first.ID != "x" || second.ID != "y" {
		t.Errorf("Expected ids x and y, got %q and %q", first.ID, second.ID)
	}
}

func TestCreateGivesUpOnExhaustedIDs(t *testing.T) {
	s := NewWithIDFunc(func() string { return "same" })
	mustCreate(t, s, "first")

	if _, err := s.Create(fields("second")); !errors.Is(err, ErrIDExhausted) {
		t.Errorf("Expected ErrIDExhausted, got %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("Expected 1 event, got %d", s.Len())
	}
}

func TestUpdateReplacesFieldsKeepsID(t *testing.T) {
	s := New()
	a := mustCreate(t, s, "a")
	b := mustCreate(t, s, "b")

	nf := model.Fields{
		Title:       "changed",
		Date:        time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		StartTime:   "14:00",
		EndTime:     "15:30",
		Color:       model.ColorRed,
		Description: "moved",
	}
	got, err := s.Update(a.ID, nf)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got.ID != a.ID {
		t.Errorf("Expected id %q, got %q", a.ID, got.ID)
	}

	list := s.List()
	if list[0].ID != a.ID || list[1].ID != b.ID {
		t.Errorf("Expected update to keep list position, got %+v", list)
	}
	if list[0].Fields != nf {
		t.Errorf("Expected fields %+v, got %+v", nf, list[0].Fields)
	}
}

func TestUpdateMissing(t *testing.T) {
	s := New()
	if _, err := s.Update("nope", fields("x")); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Expected update of a missing id not to create anything")
	}
}

func TestDeleteIsConsistentlyNotFound(t *testing.T) {
	s := New()
	a := mustCreate(t, s, "a")
	b := mustCreate(t, s, "b")

	if err := s.Delete(a.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	for _, ev := range s.List() {
		if ev.ID == a.ID {
			t.Errorf("Expected %q to be gone", a.ID)
		}
	}
	if err := s.Delete(a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected second delete to report ErrNotFound, got %v", err)
	}
	if err := s.Delete(a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected third delete to report ErrNotFound, got %v", err)
	}
	if _, err := s.Get(b.ID); err != nil {
		t.Errorf("Expected %q to survive, got %v", b.ID, err)
	}
}

func TestListIsSnapshot(t *testing.T) {
	s := New()
	a := mustCreate(t, s, "a")

	list := s.List()
	list[0].Title = "mutated"

	got, err := s.Get(a.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Title != "a" {
		t.Errorf("Expected stored title to stay 'a', got %q", got.Title)
	}
	if s.Len() != 1 {
		t.Errorf("Expected 1 stored event, got %d", s.Len())
	}
}

func TestSeed(t *testing.T) {
	s := New()
	seed := model.Event{ID: "1", Fields: fields("Team Meeting")}
	if err := s.Seed(seed); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	if err := s.Seed(seed); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("Expected ErrDuplicateID, got %v", err)
	}
	if err := s.Seed(model.Event{Fields: fields("x")}); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("Expected ErrDuplicateID for empty id, got %v", err)
	}
	a := model.Event{ID: "a", Fields: fields("a")}
	if err := s.Seed(a, a); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("Expected ErrDuplicateID for a repeated id in one batch, got %v", err)
	}
	b := model.Event{ID: "b", Fields: fields("b")}
	if err := s.Seed(b, seed); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("Expected ErrDuplicateID against stored ids, got %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("Expected a failed batch to insert nothing, got %d events", s.Len())
	}

	got, err := s.Get("1")
	if err != nil || got.Title != "Team Meeting" {
		t.Errorf("Expected seeded event, got %+v (%v)", got, err)
	}
}

func TestConcurrentCreate(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := s.Create(fields(strconv.Itoa(i))); err != nil {
				t.Errorf("Create failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, ev := range s.List() {
		if seen[ev.ID] {
			t.Errorf("Duplicate id %q", ev.ID)
		}
		seen[ev.ID] = true
	}
	if len(seen) != 50 {
		t.Errorf("Expected 50 events, got %d", len(seen))
	}
}
