package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	appLog "weekcal/internal/log"
)

// Job is one unit of periodic work.
type Job func(ctx context.Context, now time.Time) error

// Scheduler runs jobs in order on a cron schedule. A failing job is logged
// and does not stop the ones after it. A tick that fires while the previous
// run is still going is skipped.
type Scheduler struct {
	cron  *cron.Cron
	chain cron.Chain
	spec  string
	jobs  []namedJob
}

type namedJob struct {
	name string
	run  Job
}

func NewScheduler(spec string, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		cron:  cron.New(cron.WithLocation(loc), cron.WithLogger(cronLogger{})),
		chain: cron.NewChain(cron.SkipIfStillRunning(cronLogger{})),
		spec:  spec,
	}
}

// cronLogger routes cron's own messages through the app logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, kv ...any) {
	appLog.Debug("cron: "+msg, kv...)
}

func (cronLogger) Error(err error, msg string, kv ...any) {
	appLog.Error("cron: "+msg, err, kv...)
}

// Add registers a job. Call before Start.
func (s *Scheduler) Add(name string, job Job) {
	s.jobs = append(s.jobs, namedJob{name: name, run: job})
}

// RunOnce runs every job immediately, in registration order.
func (s *Scheduler) RunOnce(ctx context.Context) {
	now := time.Now()
	for _, j := range s.jobs {
		start := time.Now()
		if err := j.run(ctx, now); err != nil {
			appLog.Error("scheduled job failed", err, "job", j.name)
			continue
		}
		appLog.Debug("scheduled job done", "job", j.name, "took", time.Since(start))
	}
}

// tick is the scheduled entry: one RunOnce, skipped while the previous one
// is still running.
func (s *Scheduler) tick(ctx context.Context) cron.Job {
	return s.chain.Then(cron.FuncJob(func() { s.RunOnce(ctx) }))
}

// Start runs the jobs once, then installs the cron entry and blocks until
// ctx is done. The first run finishes before the schedule starts ticking.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddJob(s.spec, s.tick(ctx)); err != nil {
		return fmt.Errorf("add refresh job %q: %w", s.spec, err)
	}

	s.RunOnce(ctx)

	s.cron.Start()
	appLog.Info("scheduler started", "spec", s.spec, "jobs", len(s.jobs))

	<-ctx.Done()
	return nil
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	appLog.Info("scheduler stopped")
}
