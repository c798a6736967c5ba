package scan

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"

	"github.com/therealtombi/RumbleVideoDeleteManager/internal/browser"
	"github.com/therealtombi/RumbleVideoDeleteManager/internal/models"
	"github.com/therealtombi/RumbleVideoDeleteManager/internal/site"
)

// PageFetcher retrieves and parses one listing page. Implemented by
// BrowserFetcher in production and by fakes in tests.
type PageFetcher interface {
	FetchPage(ctx context.Context, page int) ([]models.RawItem, error)
	Terminate()
}

// BrowserFetcher drives one browser session across the paginated listing.
type BrowserFetcher struct {
	session     *browser.Session
	adapter     site.Adapter
	pageTimeout time.Duration
	logger      arbor.ILogger
}

// NewBrowserFetcher wraps an authenticated session for listing retrieval.
func NewBrowserFetcher(session *browser.Session, adapter site.Adapter, pageTimeout time.Duration, logger arbor.ILogger) *BrowserFetcher {
	if pageTimeout <= 0 {
		pageTimeout = 8 * time.Second
	}
	return &BrowserFetcher{
		session:     session,
		adapter:     adapter,
		pageTimeout: pageTimeout,
		logger:      logger,
	}
}

// FetchPage navigates to the listing page and waits a bounded time for the
// content container. A timeout means "page empty or unavailable": logged,
// empty result, no error. Parse failures of the rendered document do error.
func (f *BrowserFetcher) FetchPage(_ context.Context, page int) ([]models.RawItem, error) {
	url := f.adapter.ListingURL(page)

	err := f.session.Run(f.pageTimeout,
		chromedp.Navigate(url),
		chromedp.WaitReady(f.adapter.ContainerSelector(), chromedp.ByQuery),
	)
	if err != nil {
		f.logger.Info().Int("page", page).Msg("Page timed out or empty")
		return nil, nil
	}

	var html string
	if err := f.session.Run(f.pageTimeout, chromedp.OuterHTML("html", &html)); err != nil {
		return nil, fmt.Errorf("failed to capture page %d source: %w", page, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page %d: %w", page, err)
	}

	return f.adapter.ParseListing(doc, page), nil
}

// Terminate releases the underlying session.
func (f *BrowserFetcher) Terminate() {
	f.session.Terminate()
}
