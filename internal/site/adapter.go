package site

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/therealtombi/RumbleVideoDeleteManager/internal/models"
)

// Adapter abstracts the target site's URLs, markup, and selectors so the
// orchestration core never depends on concrete page structure.
type Adapter interface {
	// Name identifies the adapter in logs.
	Name() string

	// BaseURL is the site origin, without a trailing slash.
	BaseURL() string

	// LoginURL is where the interactive login capture navigates.
	LoginURL() string

	// InertURL is a cheap same-origin page used before cookie injection.
	InertURL() string

	// SessionCookieName is the cookie whose presence marks a logged-in session.
	SessionCookieName() string

	// ListingURL returns the account content listing URL for a page number.
	ListingURL(page int) string

	// ContainerSelector is the readiness marker waited for after navigation.
	ContainerSelector() string

	// ParseListing extracts raw items from a rendered listing document.
	ParseListing(doc *goquery.Document, page int) []models.RawItem

	// SequenceID derives the monotonic-ish dedup key from a video URL,
	// 0 when the URL carries no parseable code.
	SequenceID(url string) int64

	// DeleteSelectors returns the selectors for the per-item deletion
	// sequence on the task's source listing page.
	DeleteSelectors(task models.DeleteTask) DeleteSelectors
}

// DeleteSelectors carries everything the deleter needs to drive one item's
// action menu. Anchor and Menu are empty when the item has no stored DOM
// anchor; MenuXPath is the structural fallback that locates the menu trigger
// through the item's link.
type DeleteSelectors struct {
	Anchor    string // CSS, the item container by stored anchor id
	Menu      string // CSS, menu trigger scoped under Anchor
	MenuXPath string // XPath fallback for the menu trigger
	Delete    string // CSS, delete action inside the opened menu
	Confirm   string // CSS, confirmation control in the dialog
	Dialog    string // CSS, the dialog container (waited on to disappear)
}
