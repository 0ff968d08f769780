// Package browser drives a headless Chromium-family browser over the DevTools
// protocol. A Session owns one browser process, started lazily on first use;
// every page fetch runs in its own tab that is closed before the call returns.
package browser

import (
	"context"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/reachwell/creator-scout/internal/resilience"
)

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"

// Fetcher loads pages and returns their rendered content.
type Fetcher interface {
	// HTML navigates to url and returns the rendered document markup.
	HTML(ctx context.Context, url string) (string, error)
	// Text navigates to url and returns the page's visible text.
	Text(ctx context.Context, url string) (string, error)
	Close() error
}

// Session implements Fetcher on a shared headless browser process.
type Session struct {
	execPath string
	timeout  time.Duration

	mu            sync.Mutex
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// Option configures a Session.
type Option func(*Session)

// WithExecPath points the session at a specific browser binary. The default
// lets chromedp locate an installed Chrome or Chromium.
func WithExecPath(path string) Option {
	return func(s *Session) { s.execPath = path }
}

// WithTimeout bounds each page fetch. Defaults to 25s.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) { s.timeout = d }
}

// NewSession creates a Session. The browser process does not start until the
// first fetch.
func NewSession(opts ...Option) *Session {
	s := &Session{timeout: 25 * time.Second}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ensure starts the browser process once.
func (s *Session) ensure() (context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.browserCtx != nil {
		if err := s.browserCtx.Err(); err != nil {
			return nil, eris.Wrap(err, "browser: session closed")
		}
		return s.browserCtx, nil
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.UserAgent(defaultUserAgent),
	)
	if s.execPath != "" {
		opts = append(opts, chromedp.ExecPath(s.execPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Start the process now so a missing binary fails the first fetch with a
	// clear error instead of surfacing mid-navigation.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, eris.Wrap(err, "browser: start")
	}

	s.allocCancel = allocCancel
	s.browserCtx = browserCtx
	s.browserCancel = browserCancel
	zap.L().Debug("browser session started")
	return s.browserCtx, nil
}

// run retries once when a navigation dies on a transient network error or
// times out; each attempt gets a fresh tab and a fresh deadline.
func (s *Session) run(ctx context.Context, url string, extract chromedp.Action) error {
	retry := resilience.RetryConfig{
		MaxAttempts:    2,
		InitialBackoff: 750 * time.Millisecond,
		OnRetry:        resilience.RetryLogger("browser", "fetch"),
	}
	return resilience.Do(ctx, retry, func(ctx context.Context) error {
		return s.fetchOnce(ctx, url, extract)
	})
}

func (s *Session) fetchOnce(ctx context.Context, url string, extract chromedp.Action) error {
	browserCtx, err := s.ensure()
	if err != nil {
		return err
	}

	tabCtx, cancelTab := chromedp.NewContext(browserCtx)
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, s.timeout)
	defer cancelTimeout()

	// Honor caller cancellation alongside the per-fetch timeout.
	done := make(chan error, 1)
	go func() {
		done <- chromedp.Run(tabCtx,
			chromedp.Navigate(url),
			chromedp.WaitReady("body", chromedp.ByQuery),
			extract,
		)
	}()
	select {
	case err := <-done:
		if err != nil {
			return eris.Wrapf(err, "browser: fetch %s", url)
		}
		return nil
	case <-ctx.Done():
		cancelTab()
		<-done
		return eris.Wrapf(ctx.Err(), "browser: fetch %s", url)
	}
}

// HTML returns the rendered markup of the page at url.
func (s *Session) HTML(ctx context.Context, url string) (string, error) {
	var html string
	err := s.run(ctx, url, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

// Text returns the visible text of the page at url.
func (s *Session) Text(ctx context.Context, url string) (string, error) {
	var text string
	err := s.run(ctx, url, chromedp.Text("body", &text, chromedp.ByQuery))
	return text, err
}

// Close shuts the browser process down. The session cannot be reused.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.browserCancel != nil {
		s.browserCancel()
		s.browserCancel = nil
	}
	if s.allocCancel != nil {
		s.allocCancel()
		s.allocCancel = nil
	}
	return nil
}
