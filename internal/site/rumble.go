package site

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/therealtombi/RumbleVideoDeleteManager/internal/models"
)

// videoCodePattern matches the base-36 video code in a watch URL,
// e.g. /v1a2bc-some-title.html -> "1a2bc".
var videoCodePattern = regexp.MustCompile(`/v([a-z0-9]+)[-.]`)

// Rumble is the site adapter for rumble.com account content pages.
type Rumble struct{}

// NewRumble creates the rumble.com adapter.
func NewRumble() *Rumble {
	return &Rumble{}
}

func (r *Rumble) Name() string { return "rumble" }

func (r *Rumble) BaseURL() string { return "https://rumble.com" }

func (r *Rumble) LoginURL() string { return "https://rumble.com/login.php" }

// InertURL is a 404 page on the site origin, navigated to before cookie
// injection so the cookies attach to the right domain without triggering
// any listing logic.
func (r *Rumble) InertURL() string { return "https://rumble.com/404" }

func (r *Rumble) SessionCookieName() string { return "u_s" }

func (r *Rumble) ListingURL(page int) string {
	return fmt.Sprintf("https://rumble.com/account/content?pg=%d", page)
}

func (r *Rumble) ContainerSelector() string { return ".content-page-box" }

// ParseListing extracts one RawItem per ".info-video" node. A missing title
// defaults to a placeholder; a missing link anchor makes the item unusable
// and it is skipped.
func (r *Rumble) ParseListing(doc *goquery.Document, page int) []models.RawItem {
	var items []models.RawItem

	doc.Find(".info-video").Each(func(_ int, sel *goquery.Selection) {
		title := strings.TrimSpace(sel.Find(".video-title a").First().Text())
		if title == "" {
			title = "Unknown"
		}

		link := sel.Find("a.video-thumbnail").First()
		href, ok := link.Attr("href")
		if !ok || href == "" {
			return
		}
		url := r.BaseURL() + href

		thumbURL, _ := link.Find("img").First().Attr("src")
		anchor, _ := sel.Attr("id")

		items = append(items, models.RawItem{
			Title:        title,
			URL:          url,
			ThumbnailURL: thumbURL,
			SequenceID:   r.SequenceID(url),
			SourcePage:   page,
			DOMAnchor:    anchor,
		})
	})

	return items
}

// SequenceID interprets the URL's video code as a base-36 integer.
// Any parse failure yields 0.
func (r *Rumble) SequenceID(url string) int64 {
	match := videoCodePattern.FindStringSubmatch(url)
	if match == nil {
		return 0
	}
	id, err := strconv.ParseInt(match[1], 36, 64)
	if err != nil {
		return 0
	}
	return id
}

// DeleteSelectors builds the selector set for one deletion task. The menu
// trigger is preferred under the stored anchor id; the XPath fallback walks
// from the item's relative link up to its container and back down to the
// trigger.
func (r *Rumble) DeleteSelectors(task models.DeleteTask) DeleteSelectors {
	sel := DeleteSelectors{
		Delete:  `.dd-menu[style*='block'] a#delete`,
		Confirm: `.overlay-dialog .buttons a[id='0']`,
		Dialog:  `.overlay-dialog`,
	}

	if task.DOMAnchor != "" {
		sel.Anchor = "#" + task.DOMAnchor
		sel.Menu = sel.Anchor + " .open-menu"
	}

	relURL := strings.TrimPrefix(task.URL, r.BaseURL())
	sel.MenuXPath = fmt.Sprintf(
		`//div[contains(@class, 'info-video')]//a[@href='%s']/ancestor::div[contains(@class, 'info-video')]//*[contains(@class, 'open-menu')]`,
		relURL)

	return sel
}
