// Package feed keeps read-only events imported from ICS subscriptions. They
// are shown in the week grid next to store events but are never editable.
package feed

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"weekcal/internal/config"
	"weekcal/internal/ics"
	appLog "weekcal/internal/log"
	"weekcal/internal/model"
)

// Subscriptions holds the last successful expansion of every source. A
// source that fails to refresh keeps its previous events.
type Subscriptions struct {
	fetcher *ics.Fetcher
	sources []ics.Source

	loc       *time.Location
	highlight []string
	backfill  int
	horizon   int

	mu        sync.RWMutex
	bySource  map[string][]model.Event
	refreshed time.Time
}

// New builds subscriptions from cfg. client may be nil.
func New(cfg *config.Config, client *http.Client) *Subscriptions {
	sources := make([]ics.Source, 0, len(cfg.ICS))
	for _, c := range cfg.ICS {
		if c.URL == "" {
			continue
		}
		sources = append(sources, ics.Source{ID: c.SourceID(), URL: c.URL})
	}
	return &Subscriptions{
		fetcher:   ics.NewFetcher(cfg.CacheDir, client),
		sources:   sources,
		loc:       cfg.Location(),
		highlight: cfg.HighlightRed,
		backfill:  cfg.FeedBackfillDays,
		horizon:   cfg.FeedHorizonDays,
		bySource:  make(map[string][]model.Event),
	}
}

func (s *Subscriptions) Len() int { return len(s.sources) }

// Refresh fetches, parses and expands every source for the window
// [now-backfill, now+horizon]. The returned error joins per-source failures.
func (s *Subscriptions) Refresh(ctx context.Context, now time.Time) error {
	if len(s.sources) == 0 {
		return nil
	}

	now = now.In(s.loc)
	cfg := ics.ExpandConfig{
		DisplayLocation: s.loc,
		RangeStart:      model.DateOnly(now).AddDate(0, 0, -s.backfill),
		RangeEnd:        model.DateOnly(now).AddDate(0, 0, s.horizon),
		HighlightRed:    s.highlight,
	}

	results, errs := s.fetcher.FetchAll(ctx, s.sources)

	fresh := make(map[string][]model.Event, len(results))
	for _, res := range results {
		parsed, err := ics.ParseICS(res.Source, res.Body)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		expanded, err := ics.ExpandOccurrences(parsed, cfg)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		fresh[res.Source.ID] = expanded.Events
	}

	s.mu.Lock()
	for id, events := range fresh {
		s.bySource[id] = events
	}
	s.refreshed = time.Now()
	s.mu.Unlock()

	appLog.Info("feeds refreshed", "sources", len(s.sources), "updated", len(fresh), "errors", len(errs))
	return errors.Join(errs...)
}

// Events returns a snapshot of every imported event, ordered by source as
// configured.
func (s *Subscriptions) Events() []model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Event
	for _, src := range s.sources {
		out = append(out, s.bySource[src.ID]...)
	}
	return out
}

// RefreshedAt is the time of the last Refresh; zero if never run.
func (s *Subscriptions) RefreshedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshed
}
