package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/therealtombi/RumbleVideoDeleteManager/internal/common"
	"github.com/therealtombi/RumbleVideoDeleteManager/internal/models"
)

// Session is one independent Chrome instance driven over the DevTools
// protocol. A session is owned exclusively by one goroutine for its lifetime;
// only Terminate is safe to call from elsewhere.
type Session struct {
	id            string
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	logger        arbor.ILogger

	terminateOnce sync.Once
}

// NewSession launches a Chrome instance configured for scraping: headless or
// maximized, images disabled for bandwidth, popup blocking off. The instance
// is probed with an about:blank navigation before being handed out, so a
// returned session is known to respond.
func NewSession(config common.BrowserConfig, logger arbor.ILogger) (*Session, error) {
	opts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-popup-blocking", true),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", config.DisableGPU),
		chromedp.Flag("no-sandbox", config.NoSandbox),
	)

	if config.Headless {
		opts = append(opts, chromedp.Flag("headless", "new"))
	} else {
		opts = append(opts, chromedp.Flag("headless", false))
		opts = append(opts, chromedp.Flag("start-maximized", true))
	}

	if config.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(config.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	s := &Session{
		id:            uuid.New().String(),
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		logger:        logger,
	}

	// Startup probe with a bounded budget; a browser that cannot reach
	// about:blank is torn down immediately.
	startupTimeout := config.StartupTimeout
	if startupTimeout <= 0 {
		startupTimeout = 30 * time.Second
	}
	if err := s.Run(startupTimeout, chromedp.Navigate("about:blank")); err != nil {
		s.Terminate()
		return nil, fmt.Errorf("browser failed startup probe: %w", err)
	}

	logger.Debug().
		Str("session_id", s.id).
		Bool("headless", config.Headless).
		Msg("Browser session created")

	return s, nil
}

// ID returns the session identifier used in logs and history records.
func (s *Session) ID() string {
	return s.id
}

// Run executes chromedp actions against this session, bounded by timeout.
// A zero timeout runs without a deadline.
func (s *Session) Run(timeout time.Duration, actions ...chromedp.Action) error {
	ctx := s.browserCtx
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return chromedp.Run(ctx, actions...)
}

// Authenticate navigates to an inert same-origin page and applies every
// cookie from the credential snapshot individually. A cookie that fails to
// apply is skipped without aborting the rest.
func (s *Session) Authenticate(inertURL string, cookies []models.CookieRecord, timeout time.Duration) error {
	if err := s.Run(timeout, chromedp.Navigate(inertURL), network.Enable()); err != nil {
		return fmt.Errorf("failed to reach %s before cookie injection: %w", inertURL, err)
	}

	return s.Run(timeout, chromedp.ActionFunc(func(ctx context.Context) error {
		applied := 0
		for _, c := range cookies {
			if err := setCookie(ctx, c); err != nil {
				s.logger.Debug().
					Str("session_id", s.id).
					Str("cookie", c.Name).
					Err(err).
					Msg("Skipping cookie that failed to apply")
				continue
			}
			applied++
		}
		s.logger.Debug().
			Str("session_id", s.id).
			Int("applied", applied).
			Int("total", len(cookies)).
			Msg("Cookie snapshot applied")
		return nil
	}))
}

// Cookies reads the session's current cookies for the given URLs.
func (s *Session) Cookies(timeout time.Duration, urls ...string) ([]models.CookieRecord, error) {
	var records []models.CookieRecord
	err := s.Run(timeout, chromedp.ActionFunc(func(ctx context.Context) error {
		call := network.GetCookies()
		if len(urls) > 0 {
			call = call.WithURLs(urls)
		}
		cookies, err := call.Do(ctx)
		if err != nil {
			return err
		}
		for _, c := range cookies {
			records = append(records, models.CookieRecord{
				Name:     c.Name,
				Value:    c.Value,
				Domain:   c.Domain,
				Path:     c.Path,
				Expires:  int64(c.Expires),
				Secure:   c.Secure,
				HTTPOnly: c.HTTPOnly,
				SameSite: string(c.SameSite),
			})
		}
		return nil
	}))
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Terminate releases the browser and its allocator. Safe to call multiple
// times and safe on a session that never finished initializing.
func (s *Session) Terminate() {
	s.terminateOnce.Do(func() {
		if s.browserCancel != nil {
			s.browserCancel()
		}
		if s.allocCancel != nil {
			s.allocCancel()
		}
		if s.logger != nil {
			s.logger.Debug().Str("session_id", s.id).Msg("Browser session terminated")
		}
	})
}

// setCookie applies one snapshot cookie via the DevTools network domain.
func setCookie(ctx context.Context, c models.CookieRecord) error {
	domain := strings.TrimPrefix(c.Domain, ".")

	call := network.SetCookie(c.Name, c.Value).
		WithDomain(domain).
		WithPath(c.Path).
		WithSecure(c.Secure).
		WithHTTPOnly(c.HTTPOnly)

	if c.Expires > 0 {
		expires := time.Unix(c.Expires, 0)
		if expires.After(time.Now()) {
			ts := cdp.TimeSinceEpoch(expires)
			call = call.WithExpires(&ts)
		}
	}

	switch strings.ToLower(c.SameSite) {
	case "strict":
		call = call.WithSameSite(network.CookieSameSiteStrict)
	case "lax":
		call = call.WithSameSite(network.CookieSameSiteLax)
	case "none":
		call = call.WithSameSite(network.CookieSameSiteNone)
	}

	return call.Do(ctx)
}
