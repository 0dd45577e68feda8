package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"weekcal/internal/config"
	"weekcal/internal/model"
)

var standup = strings.Join([]string{
	"BEGIN:VCALENDAR",
	"VERSION:2.0",
	"PRODID:-//test//EN",
	"BEGIN:VEVENT",
	"UID:standup",
	"DTSTAMP:20240101T000000Z",
	"DTSTART:20240101T090000Z",
	"DTEND:20240101T091500Z",
	"RRULE:FREQ=WEEKLY;BYDAY=MO",
	"SUMMARY:Standup",
	"END:VEVENT",
	"END:VCALENDAR",
	"",
}, "\r\n")

func newConfig(t *testing.T, urls ...string) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.CacheDir = t.TempDir()
	cfg.FeedBackfillDays = 7
	cfg.FeedHorizonDays = 35
	for i, u := range urls {
		cfg.ICS = append(cfg.ICS, config.ICSConfig{ID: []string{"team", "broken"}[i], URL: u})
	}
	return cfg
}

func TestRefreshImportsOccurrences(t *testing.T) {
	var down atomic.Bool
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if down.Load() {
			http.Error(w, "down", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(standup))
	}))
	defer good.Close()
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer broken.Close()

	subs := New(newConfig(t, good.URL, broken.URL), nil)
	if subs.Len() != 2 {
		t.Fatalf("Expected 2 sources, got %d", subs.Len())
	}

	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	err := subs.Refresh(context.Background(), now)
	if err == nil {
		t.Errorf("Expected the broken source to be reported")
	}

	events := subs.Events()
	// Mondays from Jan 8 through Feb 12.
	if len(events) != 6 {
		t.Fatalf("Expected 6 standups, got %d: %+v", len(events), events)
	}
	for _, ev := range events {
		if ev.Date.Weekday() != time.Monday || ev.StartTime != "09:00" || ev.Color != model.ColorGreen {
			t.Errorf("Unexpected occurrence %+v", ev)
		}
	}
	if subs.RefreshedAt().IsZero() {
		t.Errorf("Expected RefreshedAt to be set")
	}

	// Upstream outage: the cached body keeps the events available.
	down.Store(true)
	_ = subs.Refresh(context.Background(), now)
	if got := len(subs.Events()); got != 6 {
		t.Errorf("Expected events to survive an outage, got %d", got)
	}
}

func TestRefreshWithoutSources(t *testing.T) {
	subs := New(newConfig(t), nil)
	if err := subs.Refresh(context.Background(), time.Now()); err != nil {
		t.Errorf("Expected no error without sources, got %v", err)
	}
	if len(subs.Events()) != 0 {
		t.Errorf("Expected no events")
	}
}

func TestSchedulerRunOnceContinuesAfterFailure(t *testing.T) {
	s := NewScheduler("*/5 * * * *", time.UTC)
	var order []string
	s.Add("first", func(ctx context.Context, now time.Time) error {
		order = append(order, "first")
		return errors.New("boom")
	})
	s.Add("second", func(ctx context.Context, now time.Time) error {
		order = append(order, "second")
		return nil
	})

	s.RunOnce(context.Background())

	if strings.Join(order, ",") != "first,second" {
		t.Errorf("Expected both jobs in order, got %v", order)
	}
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	s := NewScheduler("not a cron spec", time.UTC)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Start(ctx); err == nil {
		t.Errorf("Expected an invalid spec to fail")
	}
}

func TestSchedulerSkipsOverlappingTick(t *testing.T) {
	s := NewScheduler("*/5 * * * *", time.UTC)
	started := make(chan struct{})
	release := make(chan struct{})
	var runs atomic.Int32
	s.Add("slow", func(ctx context.Context, now time.Time) error {
		if runs.Add(1) == 1 {
			close(started)
			<-release
		}
		return nil
	})

	tick := s.tick(context.Background())
	done := make(chan struct{})
	go func() {
		tick.Run()
		close(done)
	}()
	<-started

	// The first run is still blocked, so this tick must be dropped.
	tick.Run()
	if n := runs.Load(); n != 1 {
		t.Errorf("Expected overlapping tick to be skipped, got %d runs", n)
	}

	close(release)
	<-done

	tick.Run()
	if n := runs.Load(); n != 2 {
		t.Errorf("Expected a later tick to run, got %d runs", n)
	}
}
