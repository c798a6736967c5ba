package scan

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/therealtombi/RumbleVideoDeleteManager/internal/auth"
	"github.com/therealtombi/RumbleVideoDeleteManager/internal/common"
	"github.com/therealtombi/RumbleVideoDeleteManager/internal/models"
	"github.com/therealtombi/RumbleVideoDeleteManager/internal/runctx"
)

// ErrUnfilteredNotConfirmed is returned when an empty title filter was not
// explicitly confirmed. Unfiltered scans load every video and can be slow.
var ErrUnfilteredNotConfirmed = errors.New("empty title filter requires explicit confirmation")

// Recorder persists scan run history. Optional; a nil recorder disables it.
type Recorder interface {
	RecordScan(record models.ScanRecord) error
}

// FetcherFactory creates an authenticated PageFetcher for a run. The
// returned fetcher's session must be registered with the run's session
// registry by the factory.
type FetcherFactory func(rc *runctx.RunContext, cookies []models.CookieRecord) (PageFetcher, error)

// Orchestrator drives one scan run: Idle -> Running -> Finished, Cancelled
// or Crashed. Pages are visited strictly in ascending order within a single
// session; every terminal state performs identical cleanup exactly once.
type Orchestrator struct {
	config   common.ScanConfig
	creds    auth.Source
	factory  FetcherFactory
	agg      *Aggregator
	enricher Enricher
	history  Recorder
	logger   arbor.ILogger
}

// NewOrchestrator wires a scan orchestrator. history may be nil.
func NewOrchestrator(config common.ScanConfig, creds auth.Source, factory FetcherFactory, agg *Aggregator, enricher Enricher, history Recorder, logger arbor.ILogger) *Orchestrator {
	return &Orchestrator{
		config:   config,
		creds:    creds,
		factory:  factory,
		agg:      agg,
		enricher: enricher,
		history:  history,
		logger:   logger,
	}
}

// Run executes the scan. Precondition failures (missing credential snapshot,
// unconfirmed unfiltered scan) return an error before anything starts; every
// other failure is recovered into the Crashed outcome with full cleanup.
func (o *Orchestrator) Run(rc *runctx.RunContext) (models.RunOutcome, error) {
	if !o.creds.Exists() {
		return "", auth.ErrNoSnapshot
	}
	filter := strings.ToLower(strings.TrimSpace(o.config.TitleFilter))
	if filter == "" && !o.config.ConfirmUnfiltered {
		return "", ErrUnfilteredNotConfirmed
	}

	cookies, err := o.creds.Load()
	if err != nil {
		return "", err
	}

	// A new scan always starts from an empty aggregate.
	o.agg.Reset()

	runID := uuid.New().String()
	started := time.Now()
	outcome := models.RunCrashed
	pagesScanned := 0

	rc.Bus().Log(fmt.Sprintf("Starting search for %q in %d pages...", o.config.TitleFilter, o.config.MaxPages))
	o.logger.Info().
		Str("run_id", runID).
		Str("filter", o.config.TitleFilter).
		Int("max_pages", o.config.MaxPages).
		Msg("Scan starting")

	var fetcher PageFetcher
	var cleanupOnce sync.Once
	cleanup := func() {
		cleanupOnce.Do(func() {
			if fetcher != nil {
				fetcher.Terminate()
			}
			if o.history != nil {
				record := models.ScanRecord{
					ID:           runID,
					TitleFilter:  o.config.TitleFilter,
					MaxPages:     o.config.MaxPages,
					PagesScanned: pagesScanned,
					ItemsFound:   o.agg.Len(),
					Outcome:      string(outcome),
					StartedAt:    started.Unix(),
					FinishedAt:   time.Now().Unix(),
				}
				if err := o.history.RecordScan(record); err != nil {
					o.logger.Warn().Err(err).Msg("Failed to record scan history")
				}
			}
			rc.Bus().Log("Search finished")
			rc.Bus().Publish(models.RunFinishedEvent(outcome))
			o.logger.Info().
				Str("run_id", runID).
				Str("outcome", string(outcome)).
				Int("pages", pagesScanned).
				Int("items", o.agg.Len()).
				Msg("Scan finished")
		})
	}
	defer cleanup()

	func() {
		defer func() {
			if r := recover(); r != nil {
				outcome = models.RunCrashed
				o.logger.Error().
					Str("run_id", runID).
					Str("panic", fmt.Sprintf("%v", r)).
					Msg("Scanner crashed")
				rc.Bus().Log(fmt.Sprintf("Scanner crash: %v", r))
			}
		}()

		fetcher, err = o.factory(rc, cookies)
		if err != nil {
			outcome = models.RunCrashed
			o.logger.Error().Err(err).Str("run_id", runID).Msg("Failed to open scan session")
			rc.Bus().Log(fmt.Sprintf("Scanner crash: %v", err))
			return
		}

		outcome, pagesScanned = o.scanLoop(rc, fetcher, filter)
	}()

	return outcome, nil
}

// scanLoop walks pages 1..MaxPages, checking cancellation and capacity at
// every page boundary.
func (o *Orchestrator) scanLoop(rc *runctx.RunContext, fetcher PageFetcher, filter string) (models.RunOutcome, int) {
	pagesScanned := 0

	for page := 1; page <= o.config.MaxPages; page++ {
		if !rc.Running() {
			return models.RunCancelled, pagesScanned
		}
		if o.agg.Full() {
			rc.Bus().Log(fmt.Sprintf("Result limit (%d) reached, stopping", o.agg.capacity))
			o.logger.Info().Int("limit", o.agg.capacity).Msg("Result limit reached")
			return models.RunFinished, pagesScanned
		}

		rc.Bus().Log(fmt.Sprintf("--- Scanning page %d ---", page))
		pagesScanned = page

		batch, err := fetcher.FetchPage(rc.Context(), page)
		if err != nil {
			// Transient: log and move to the next page.
			o.logger.Warn().Err(err).Int("page", page).Msg("Page fetch failed")
			rc.Bus().Log(fmt.Sprintf("Error on page %d: %v", page, err))
			continue
		}
		if len(batch) == 0 {
			rc.Bus().Log(fmt.Sprintf("No items on page %d", page))
			continue
		}

		var matched []models.RawItem
		for _, raw := range batch {
			if filter == "" || strings.Contains(strings.ToLower(raw.Title), filter) {
				matched = append(matched, raw)
			}
		}
		if len(matched) == 0 {
			rc.Bus().Log(fmt.Sprintf("No matches on page %d", page))
			continue
		}

		accepted := o.agg.Merge(matched)
		if len(accepted) == 0 {
			continue
		}

		rc.Bus().Log(fmt.Sprintf("Found %d matches, downloading thumbnails...", len(matched)))
		for i := range accepted {
			if !rc.Running() {
				return models.RunCancelled, pagesScanned
			}
			o.enricher.Enrich(rc.Context(), &accepted[i])
			if accepted[i].ThumbnailBytes != nil {
				o.agg.SetThumbnail(accepted[i].SequenceID, accepted[i].ThumbnailBytes)
			}
		}

		if !rc.Running() {
			return models.RunCancelled, pagesScanned
		}

		// One event per page batch, then a short pause to let the
		// presentation layer catch up.
		rc.Bus().Publish(models.BatchReadyEvent(accepted))
		select {
		case <-rc.Context().Done():
			return models.RunCancelled, pagesScanned
		case <-time.After(o.config.SettleDelay):
		}
	}

	return models.RunFinished, pagesScanned
}
