package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"

	"github.com/therealtombi/RumbleVideoDeleteManager/internal/browser"
	"github.com/therealtombi/RumbleVideoDeleteManager/internal/common"
	"github.com/therealtombi/RumbleVideoDeleteManager/internal/site"
)

const loginPollInterval = time.Second

// CaptureLogin opens a visible browser at the site's login page and waits
// for the operator to log in, polling for the session cookie. Once present,
// every browser cookie is snapshotted to the store. The browser is always
// terminated on return.
func CaptureLogin(ctx context.Context, config common.BrowserConfig, adapter site.Adapter, store *FileStore, wait time.Duration, logger arbor.ILogger) error {
	// Login is interactive, force a visible window regardless of config.
	loginConfig := config
	loginConfig.Headless = false

	logger.Info().Str("url", adapter.LoginURL()).Msg("Opening login browser")

	session, err := browser.NewSession(loginConfig, logger)
	if err != nil {
		return fmt.Errorf("failed to open login browser: %w", err)
	}
	defer session.Terminate()

	if err := session.Run(30*time.Second, chromedp.Navigate(adapter.LoginURL())); err != nil {
		return fmt.Errorf("failed to open login page: %w", err)
	}

	if wait <= 0 {
		wait = 60 * time.Second
	}
	logger.Info().Dur("wait", wait).Msg("Waiting for login")

	deadline := time.Now().Add(wait)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(loginPollInterval):
		}

		cookies, err := session.Cookies(5*time.Second, adapter.BaseURL())
		if err != nil {
			logger.Debug().Err(err).Msg("Cookie poll failed, retrying")
			continue
		}

		for _, c := range cookies {
			if c.Name == adapter.SessionCookieName() {
				if err := store.Save(cookies); err != nil {
					return err
				}
				logger.Info().Msg("Login detected, cookies saved")
				return nil
			}
		}
	}

	return fmt.Errorf("no login detected within %s", wait)
}
