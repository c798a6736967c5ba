package httpclient

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/therealtombi/RumbleVideoDeleteManager/internal/models"
)

// NewDefaultHTTPClient creates a simple HTTP client with a timeout
func NewDefaultHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
	}
}

// NewHTTPClientWithCookies creates an HTTP client whose jar is seeded from a
// credential snapshot, for plain-HTTP requests that need the authenticated
// session (no browser involved).
func NewHTTPClientWithCookies(cookies []models.CookieRecord, timeout time.Duration) (*http.Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	client := &http.Client{
		Jar:     jar,
		Timeout: timeout,
	}

	// Group cookies by domain so the jar accepts each under a URL matching
	// its declared domain.
	byDomain := make(map[string][]*http.Cookie)
	for _, c := range cookies {
		var expires time.Time
		if c.Expires > 0 {
			expires = time.Unix(c.Expires, 0)
			// Long-expired cookies become session cookies instead of being
			// rejected by the jar.
			if expires.Before(time.Now().Add(-24 * time.Hour)) {
				expires = time.Time{}
			}
		}

		domain := strings.TrimPrefix(c.Domain, ".")
		if domain == "" {
			continue
		}

		byDomain[domain] = append(byDomain[domain], &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  expires,
			Secure:   c.Secure,
			HttpOnly: c.HTTPOnly,
		})
	}

	for domain, domainCookies := range byDomain {
		domainURL, err := url.Parse(fmt.Sprintf("https://%s/", domain))
		if err != nil {
			continue
		}
		client.Jar.SetCookies(domainURL, domainCookies)
	}

	return client, nil
}
