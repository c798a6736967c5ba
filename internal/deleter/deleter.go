package deleter

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"

	"github.com/therealtombi/RumbleVideoDeleteManager/internal/browser"
	"github.com/therealtombi/RumbleVideoDeleteManager/internal/common"
	"github.com/therealtombi/RumbleVideoDeleteManager/internal/models"
	"github.com/therealtombi/RumbleVideoDeleteManager/internal/site"
)

// ItemDeleter executes the deletion sequence for one task on one session.
// Implemented by BrowserDeleter in production and by fakes in tests.
type ItemDeleter interface {
	DeleteItem(ctx context.Context, task models.DeleteTask) error
	Terminate()
}

// BrowserDeleter drives the multi-step UI deletion sequence on one
// exclusively-owned browser session.
type BrowserDeleter struct {
	session *browser.Session
	adapter site.Adapter
	config  common.DeleteConfig
	logger  arbor.ILogger
}

// NewBrowserDeleter wraps an authenticated session for deletion work.
func NewBrowserDeleter(session *browser.Session, adapter site.Adapter, config common.DeleteConfig, logger arbor.ILogger) *BrowserDeleter {
	return &BrowserDeleter{
		session: session,
		adapter: adapter,
		config:  config,
		logger:  logger,
	}
}

// DeleteItem walks the per-item state machine: navigate to the source
// listing page, locate the item (stored DOM anchor first, structural XPath
// fallback), open its action menu, invoke delete, then confirm the dialog
// and wait for it to disappear. Every failure is terminal for this item
// only; the caller logs it and moves to the next task.
func (d *BrowserDeleter) DeleteItem(_ context.Context, task models.DeleteTask) error {
	sel := d.adapter.DeleteSelectors(task)

	pageURL := d.adapter.ListingURL(task.SourcePage)
	if err := d.session.Run(d.config.NavTimeout, chromedp.Navigate(pageURL)); err != nil {
		return fmt.Errorf("failed to open listing page %d: %w", task.SourcePage, err)
	}

	menuQuery, menuOpts, err := d.locateMenu(sel)
	if err != nil {
		return err
	}

	// Bring the trigger into view, give the page a moment to settle, then
	// open the menu.
	err = d.session.Run(d.config.AnchorTimeout,
		chromedp.ScrollIntoView(menuQuery, menuOpts),
		chromedp.Sleep(d.config.MenuSettle),
		chromedp.Click(menuQuery, menuOpts),
	)
	if err != nil {
		return fmt.Errorf("failed to open item menu: %w", err)
	}

	err = d.session.Run(d.config.MenuTimeout,
		chromedp.WaitVisible(sel.Delete, chromedp.ByQuery),
		chromedp.Click(sel.Delete, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("delete action not available: %w", err)
	}

	err = d.session.Run(d.config.ConfirmTimeout,
		chromedp.WaitVisible(sel.Confirm, chromedp.ByQuery),
		chromedp.Click(sel.Confirm, chromedp.ByQuery),
	)
	if err == nil {
		err = d.session.Run(d.config.ConfirmTimeout,
			chromedp.WaitNotPresent(sel.Dialog, chromedp.ByQuery),
		)
	}
	if err != nil {
		return fmt.Errorf("confirmation failed: %w", err)
	}

	return nil
}

// locateMenu resolves the menu-trigger query for the task: the anchor-scoped
// CSS selector when the stored anchor still resolves within the bounded
// wait, otherwise the structural XPath through the item's link.
func (d *BrowserDeleter) locateMenu(sel site.DeleteSelectors) (string, chromedp.QueryOption, error) {
	if sel.Anchor != "" {
		err := d.session.Run(d.config.AnchorTimeout,
			chromedp.WaitReady(sel.Anchor, chromedp.ByQuery),
		)
		if err == nil {
			return sel.Menu, chromedp.ByQuery, nil
		}
		d.logger.Debug().
			Str("anchor", sel.Anchor).
			Msg("Stored anchor not found, falling back to structural lookup")
	}

	err := d.session.Run(d.config.AnchorTimeout,
		chromedp.WaitReady(sel.MenuXPath, chromedp.BySearch),
	)
	if err != nil {
		return "", nil, fmt.Errorf("item not found on listing page: %w", err)
	}
	return sel.MenuXPath, chromedp.BySearch, nil
}

// Terminate releases the underlying session.
func (d *BrowserDeleter) Terminate() {
	d.session.Terminate()
}
