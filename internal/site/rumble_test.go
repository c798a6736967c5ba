package site

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/therealtombi/RumbleVideoDeleteManager/internal/models"
)

func TestSequenceID(t *testing.T) {
	adapter := NewRumble()

	tests := []struct {
		name string
		url  string
		want int64
	}{
		{"base36 code with dash", "https://rumble.com/v1a2-video.html", 1658}, // 1*36^2 + 10*36 + 2
		{"base36 code with dot", "https://rumble.com/v1a2.html", 1658},
		{"no video code", "https://rumble.com/noversion", 0},
		{"empty url", "", 0},
		{"code without terminator", "https://rumble.com/v1a2", 0},
		{"zero code", "https://rumble.com/v0-x.html", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, adapter.SequenceID(tt.url))
		})
	}
}

const listingFixture = `
<div class="content-page-box">
  <div class="info-video" id="vid-100">
    <div class="video-title"><a href="/v1a2-first.html">First Video</a></div>
    <a class="video-thumbnail" href="/v1a2-first.html">
      <img src="//sp.rmbl.ws/thumb-first.jpg">
    </a>
  </div>
  <div class="info-video" id="vid-101">
    <div class="video-title"><a href="/vzz-second.html">  Second Video  </a></div>
    <a class="video-thumbnail" href="/vzz-second.html"></a>
  </div>
  <div class="info-video">
    <div class="video-title"></div>
    <a class="video-thumbnail" href="/v99-untitled.html"></a>
  </div>
  <div class="info-video" id="vid-103">
    <div class="video-title"><a>No Link Item</a></div>
  </div>
</div>`

func TestParseListing(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(listingFixture))
	require.NoError(t, err)

	adapter := NewRumble()
	items := adapter.ParseListing(doc, 3)

	// The item without a navigable link is dropped, the untitled one is kept.
	require.Len(t, items, 3)

	first := items[0]
	assert.Equal(t, "First Video", first.Title)
	assert.Equal(t, "https://rumble.com/v1a2-first.html", first.URL)
	assert.Equal(t, "//sp.rmbl.ws/thumb-first.jpg", first.ThumbnailURL)
	assert.Equal(t, int64(1658), first.SequenceID)
	assert.Equal(t, 3, first.SourcePage)
	assert.Equal(t, "vid-100", first.DOMAnchor)

	second := items[1]
	assert.Equal(t, "Second Video", second.Title, "title should be trimmed")
	assert.Empty(t, second.ThumbnailURL)
	assert.Equal(t, int64(35*36+35), second.SequenceID)

	third := items[2]
	assert.Equal(t, "Unknown", third.Title, "missing title defaults to placeholder")
	assert.Empty(t, third.DOMAnchor)
}

func TestDeleteSelectors(t *testing.T) {
	adapter := NewRumble()

	task := models.DeleteTask{
		URL:       "https://rumble.com/v1a2-first.html",
		DOMAnchor: "vid-100",
	}
	sel := adapter.DeleteSelectors(task)
	assert.Equal(t, "#vid-100", sel.Anchor)
	assert.Equal(t, "#vid-100 .open-menu", sel.Menu)
	assert.Contains(t, sel.MenuXPath, `@href='/v1a2-first.html'`)
	assert.NotEmpty(t, sel.Delete)
	assert.NotEmpty(t, sel.Confirm)
	assert.NotEmpty(t, sel.Dialog)

	// Without a stored anchor only the structural fallback is available.
	sel = adapter.DeleteSelectors(models.DeleteTask{URL: "https://rumble.com/vzz-x.html"})
	assert.Empty(t, sel.Anchor)
	assert.Empty(t, sel.Menu)
	assert.Contains(t, sel.MenuXPath, `@href='/vzz-x.html'`)
}
