package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
	_ "time/tzdata"

	"weekcal/internal/capture"
	"weekcal/internal/config"
	"weekcal/internal/feed"
	appLog "weekcal/internal/log"
	"weekcal/internal/store"
	"weekcal/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string
	once       bool
}

func main() {
	appLog.Info("weekcal starting", "version", "0.1.0")

	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI --listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"refresh", conf.RefreshCron,
		"seed_demo", conf.SeedDemo,
		"events", len(conf.Events),
		"ics_count", len(conf.ICS),
		"preview", conf.Preview.UIURL != "",
		"once", flags.once,
	)

	st := store.New()
	seed, err := conf.SeedEvents(time.Now())
	if err != nil {
		appLog.Error("invalid seed events", err)
		os.Exit(1)
	}
	if err := st.Seed(seed...); err != nil {
		appLog.Error("failed to seed store", err)
		os.Exit(1)
	}

	subs := feed.New(conf, nil)

	sched := feed.NewScheduler(conf.RefreshCron, conf.Location())
	if subs.Len() > 0 {
		sched.Add("feeds", subs.Refresh)
	}
	if conf.Preview.UIURL != "" {
		sched.Add("preview", previewJob(conf))
	}

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if flags.once {
		sched.RunOnce(ctx)
		appLog.Info("weekcal exiting", "events", st.Len(), "feed_events", len(subs.Events()))
		return
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := sched.Start(ctx); err != nil {
			appLog.Error("scheduler failed", err)
			stop()
		}
	}()

	srv := web.NewServer(conf, st, subs)
	if err := srv.ListenAndServe(ctx); err != nil {
		appLog.Error("HTTP server failed", err)
		stop()
	}

	wg.Wait()
	sched.Stop()
	appLog.Info("weekcal exiting")
}

func previewJob(conf *config.Config) feed.Job {
	return func(ctx context.Context, now time.Time) error {
		opts := capture.Options{
			UIURL:      conf.Preview.UIURL,
			Date:       now.In(conf.Location()),
			OutputPath: conf.Preview.Output,
			Width:      conf.Preview.Width,
			Height:     conf.Preview.Height,
		}
		if err := capture.CaptureWeekPNG(ctx, opts); err != nil {
			return err
		}
		appLog.Info("preview captured", "output", opts.OutputPath)
		return nil
	}
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/weekcal/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Refresh feeds (and capture the preview) once and exit")

	flag.Parse()

	return cfg
}
