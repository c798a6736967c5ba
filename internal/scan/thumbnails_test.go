package scan

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/arbor"

	"github.com/therealtombi/RumbleVideoDeleteManager/internal/common"
	"github.com/therealtombi/RumbleVideoDeleteManager/internal/models"
)

func enricherConfig() common.ScanConfig {
	return common.ScanConfig{
		ThumbnailTimeout: 2 * time.Second,
		ThumbnailPerSec:  1000, // effectively unpaced in tests
	}
}

func TestEnrichStoresThumbnailBytes(t *testing.T) {
	payload := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write(payload)
	}))
	defer server.Close()

	enricher := NewHTTPEnricher(enricherConfig(), nil, arbor.NewLogger())
	item := models.ListingItem{ThumbnailURL: server.URL + "/thumb.jpg"}

	enricher.Enrich(context.Background(), &item)
	assert.Equal(t, payload, item.ThumbnailBytes)
}

func TestEnrichIgnoresNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	enricher := NewHTTPEnricher(enricherConfig(), nil, arbor.NewLogger())
	item := models.ListingItem{ThumbnailURL: server.URL + "/missing.jpg"}

	enricher.Enrich(context.Background(), &item)
	assert.Nil(t, item.ThumbnailBytes)
}

func TestEnrichSwallowsConnectionErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close() // connection refused from here on

	enricher := NewHTTPEnricher(enricherConfig(), nil, arbor.NewLogger())
	item := models.ListingItem{ThumbnailURL: url + "/thumb.jpg"}

	enricher.Enrich(context.Background(), &item)
	assert.Nil(t, item.ThumbnailBytes)
}

func TestEnrichSkipsEmptyURL(t *testing.T) {
	enricher := NewHTTPEnricher(enricherConfig(), nil, arbor.NewLogger())
	item := models.ListingItem{}

	enricher.Enrich(context.Background(), &item)
	assert.Nil(t, item.ThumbnailBytes)
}

func TestEnrichRespectsCancelledContext(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	enricher := NewHTTPEnricher(enricherConfig(), nil, arbor.NewLogger())
	item := models.ListingItem{ThumbnailURL: server.URL + "/thumb.jpg"}

	enricher.Enrich(ctx, &item)
	assert.Nil(t, item.ThumbnailBytes)
	assert.False(t, called)
}
