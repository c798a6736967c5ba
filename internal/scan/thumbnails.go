package scan

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/therealtombi/RumbleVideoDeleteManager/internal/common"
	"github.com/therealtombi/RumbleVideoDeleteManager/internal/httpclient"
	"github.com/therealtombi/RumbleVideoDeleteManager/internal/models"
)

// Enricher fetches auxiliary binary assets for accepted items. Failures are
// never fatal: an item that cannot be enriched is simply left without bytes.
type Enricher interface {
	Enrich(ctx context.Context, item *models.ListingItem)
}

// HTTPEnricher fetches thumbnails over plain HTTP, independent of any
// browser session. Fetches run serially within the scan loop and are paced
// by a rate limiter so the image host is never overwhelmed.
type HTTPEnricher struct {
	client  *http.Client
	limiter *rate.Limiter
	logger  arbor.ILogger
}

// NewHTTPEnricher builds an enricher from scan config. When a credential
// snapshot is supplied the fetches carry the authenticated cookie jar.
func NewHTTPEnricher(config common.ScanConfig, cookies []models.CookieRecord, logger arbor.ILogger) *HTTPEnricher {
	client := httpclient.NewDefaultHTTPClient(config.ThumbnailTimeout)
	if len(cookies) > 0 {
		if authed, err := httpclient.NewHTTPClientWithCookies(cookies, config.ThumbnailTimeout); err == nil {
			client = authed
		} else {
			logger.Debug().Err(err).Msg("Falling back to plain HTTP client for thumbnails")
		}
	}

	var limiter *rate.Limiter
	if config.ThumbnailPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.ThumbnailPerSec), 1)
	}

	return &HTTPEnricher{
		client:  client,
		limiter: limiter,
		logger:  logger,
	}
}

// Enrich fetches the item's thumbnail. Protocol-relative URLs are normalized
// to https. Any network error, timeout, or non-200 status leaves the item
// without bytes.
func (e *HTTPEnricher) Enrich(ctx context.Context, item *models.ListingItem) {
	if item.ThumbnailURL == "" {
		return
	}

	url := item.ThumbnailURL
	if strings.HasPrefix(url, "//") {
		url = "https:" + url
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return
	}

	resp, err := e.client.Do(req)
	if err != nil {
		e.logger.Debug().Str("url", url).Err(err).Msg("Thumbnail fetch failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return
	}
	item.ThumbnailBytes = data
}
