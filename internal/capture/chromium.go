package capture

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"
)

const (
	DefaultWidth   = 1280
	DefaultHeight  = 960
	DefaultTimeout = 30 * time.Second

	// readySelector is set by the UI once the week grid has been drawn.
	readySelector = `[data-ready="true"]`
)

// Options for a single week capture.
type Options struct {
	// UIURL is the page rendering one week, e.g. "http://127.0.0.1:3000/week".
	UIURL string
	// Date selects the week; it is passed as ?date=YYYY-MM-DD.
	Date time.Time
	// OutputPath receives the PNG.
	OutputPath string

	Width   int
	Height  int
	Timeout time.Duration
}

// WeekURL appends the reference date to the UI URL, keeping any existing
// query parameters.
func WeekURL(base string, date time.Time) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("capture: bad UI URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", errors.New("capture: UI URL must be absolute")
	}
	q := u.Query()
	q.Set("date", date.Format("2006-01-02"))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (o *Options) normalize() error {
	if o.UIURL == "" {
		return errors.New("capture: UI URL is required")
	}
	if o.OutputPath == "" {
		return errors.New("capture: OutputPath is required")
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Date.IsZero() {
		o.Date = time.Now()
	}
	return nil
}

// CaptureWeekPNG opens the UI's week page in headless Chromium, waits until
// the page marks itself ready and writes a full-page PNG to OutputPath.
func CaptureWeekPNG(parent context.Context, opts Options) error {
	if err := opts.normalize(); err != nil {
		return err
	}
	target, err := WeekURL(opts.UIURL, opts.Date)
	if err != nil {
		return err
	}

	ctx, cancel := chromedp.NewContext(parent)
	defer cancel()
	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	var png []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
		chromedp.Navigate(target),
		chromedp.WaitVisible(readySelector, chromedp.ByQuery),
		// Let the last paint settle.
		chromedp.Sleep(300 * time.Millisecond),
		chromedp.FullScreenshot(&png, 100),
	}
	if err := chromedp.Run(ctx, tasks); err != nil {
		return fmt.Errorf("capture: chromedp run failed: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(opts.OutputPath), 0o755); err != nil {
		return fmt.Errorf("capture: %w", err)
	}
	if err := os.WriteFile(opts.OutputPath, png, 0o644); err != nil {
		return fmt.Errorf("capture: failed to write PNG: %w", err)
	}
	return nil
}
