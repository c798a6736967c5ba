// -----------------------------------------------------------------------
// Rumble Delete Manager - bulk discovery and deletion of your own videos
// -----------------------------------------------------------------------

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/therealtombi/RumbleVideoDeleteManager/internal/auth"
	"github.com/therealtombi/RumbleVideoDeleteManager/internal/browser"
	"github.com/therealtombi/RumbleVideoDeleteManager/internal/common"
	"github.com/therealtombi/RumbleVideoDeleteManager/internal/deleter"
	"github.com/therealtombi/RumbleVideoDeleteManager/internal/models"
	"github.com/therealtombi/RumbleVideoDeleteManager/internal/runctx"
	"github.com/therealtombi/RumbleVideoDeleteManager/internal/scan"
	"github.com/therealtombi/RumbleVideoDeleteManager/internal/site"
	storage "github.com/therealtombi/RumbleVideoDeleteManager/internal/storage/badger"
)

func main() {
	// Last-resort crash protection for the whole process
	defer common.RecoverWithCrashFile()

	// Command flags
	configFile := flag.String("config", "", "Path to TOML configuration file")
	configFileC := flag.String("c", "", "Path to TOML configuration file (shorthand)")
	showVersion := flag.Bool("version", false, "Show version and exit")
	showVersionV := flag.Bool("v", false, "Show version and exit (shorthand)")
	doLogin := flag.Bool("login", false, "Open a browser to log in and capture the session cookies")
	doHistory := flag.Bool("history", false, "Print past scan runs and exit")
	historyRun := flag.String("run", "", "With -history: print the deletion attempts of one run id")

	// Scan/delete overrides (highest priority, above config file and env)
	pages := flag.Int("pages", 0, "Maximum listing pages to scan")
	filter := flag.String("filter", "", "Case-insensitive title substring filter")
	confirmUnfiltered := flag.Bool("confirm-unfiltered", false, "Allow scanning without a title filter")
	workers := flag.Int("workers", 0, "Number of parallel delete sessions (1-10)")
	headless := flag.Bool("headless", true, "Run scan/delete browsers headless")
	deleteSpec := flag.String("delete", "", "Delete scan results: 'all' or a comma-separated list of sequence ids")

	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("rumbledel version %s\n", common.GetVersion())
		os.Exit(0)
	}

	// Startup sequence (REQUIRED ORDER):
	// 1. Load config (defaults -> file -> env)
	// 2. Apply CLI overrides (highest priority)
	// 3. Initialize logger
	// 4. Print banner
	path := *configFile
	if path == "" {
		path = *configFileC
	}
	if path == "" {
		if _, err := os.Stat("rumbledel.toml"); err == nil {
			path = "rumbledel.toml"
		}
	}

	config, err := common.LoadFromFile(path)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Str("path", path).Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	applyFlagOverrides(config, *pages, *filter, *confirmUnfiltered, *workers, *headless)

	logger := common.InitLogger(config)
	common.InstallCrashHandler("./logs")
	common.PrintBanner(common.GetVersion())

	logger.Debug().
		Str("cookies_file", config.Auth.CookiesFile).
		Str("badger_path", config.Storage.Badger.Path).
		Str("log_level", config.Logging.Level).
		Bool("headless", config.Browser.Headless).
		Msg("Resolved configuration")

	store := auth.NewFileStore(config.Auth.CookiesFile, logger)
	adapter := site.NewRumble()

	switch {
	case *doLogin:
		err = runLogin(config, adapter, store, logger)
	case *doHistory:
		err = runHistory(config, *historyRun, logger)
	default:
		err = runScan(config, adapter, store, *deleteSpec, logger)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

// applyFlagOverrides applies command-line values on top of the loaded
// configuration. Flags left at their zero value are ignored, except
// -headless and -confirm-unfiltered which only ever tighten or opt in.
func applyFlagOverrides(config *common.Config, pages int, filter string, confirmUnfiltered bool, workers int, headless bool) {
	if pages > 0 {
		config.Scan.MaxPages = pages
	}
	if filter != "" {
		config.Scan.TitleFilter = filter
	}
	if confirmUnfiltered {
		config.Scan.ConfirmUnfiltered = true
	}
	if workers > 0 {
		config.Delete.Workers = workers
	}
	if !headless {
		config.Browser.Headless = false
	}
}

// runLogin opens a visible browser, waits for the operator to log in and
// snapshots the cookies to the configured file.
func runLogin(config *common.Config, adapter site.Adapter, store *auth.FileStore, logger arbor.ILogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := auth.CaptureLogin(ctx, config.Browser, adapter, store, config.Auth.LoginWait, logger); err != nil {
		return err
	}
	fmt.Printf("Cookies saved to %s\n", store.Path())
	return nil
}

// runHistory prints past scan runs, or the deletion attempts of one run.
func runHistory(config *common.Config, runID string, logger arbor.ILogger) error {
	db, err := storage.NewBadgerDB(logger, &config.Storage.Badger)
	if err != nil {
		return err
	}
	defer db.Close()

	history := storage.NewHistoryStore(db, logger)

	if runID != "" {
		deletions, err := history.ListDeletions(runID)
		if err != nil {
			return err
		}
		for _, d := range deletions {
			status := "ok"
			if !d.Success {
				status = "FAIL: " + d.Error
			}
			fmt.Printf("%s  %-60s %s\n", time.Unix(d.AttemptAt, 0).Format("2006-01-02 15:04:05"), d.URL, status)
		}
		fmt.Printf("%d deletion attempts\n", len(deletions))
		return nil
	}

	scans, err := history.ListScans()
	if err != nil {
		return err
	}
	for _, s := range scans {
		fmt.Printf("%s  %-36s filter=%q pages=%d/%d items=%d outcome=%s\n",
			time.Unix(s.StartedAt, 0).Format("2006-01-02 15:04:05"),
			s.ID, s.TitleFilter, s.PagesScanned, s.MaxPages, s.ItemsFound, s.Outcome)
	}
	fmt.Printf("%d scan runs\n", len(scans))
	return nil
}

// runScan executes a scan run and, when requested, a delete run over the
// scan's results within the same process.
func runScan(config *common.Config, adapter site.Adapter, store *auth.FileStore, deleteSpec string, logger arbor.ILogger) error {
	if !store.Exists() {
		return fmt.Errorf("no cookie snapshot at %s, run with -login first", store.Path())
	}
	cookies, err := store.Load()
	if err != nil {
		return err
	}

	// History is best-effort: a locked or broken database degrades to an
	// unrecorded run instead of blocking it.
	var history *storage.HistoryStore
	db, err := storage.NewBadgerDB(logger, &config.Storage.Badger)
	if err != nil {
		logger.Warn().Err(err).Msg("History database unavailable, continuing without")
	} else {
		defer db.Close()
		history = storage.NewHistoryStore(db, logger)
	}

	rc := runctx.New(context.Background(), logger)
	defer rc.Shutdown()

	// SIGINT / SIGTERM requests cooperative shutdown; loops stop at their
	// next iteration boundary and all sessions are torn down.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	common.SafeGo(logger, "signal-handler", func() {
		select {
		case <-sigChan:
			logger.Info().Msg("Interrupt received, stopping run")
			rc.Shutdown()
		case <-rc.Context().Done():
		}
	})

	consumerDone := make(chan struct{})
	common.SafeGo(logger, "event-consumer", func() {
		defer close(consumerDone)
		renderEvents(rc.Bus().Events())
	})

	agg := scan.NewAggregator(config.Scan.RowLimit)
	enricher := scan.NewHTTPEnricher(config.Scan, cookies, logger)

	fetcherFactory := func(rc *runctx.RunContext, cookies []models.CookieRecord) (scan.PageFetcher, error) {
		session, err := newAuthenticatedSession(rc, config.Browser, adapter, cookies, logger)
		if err != nil {
			return nil, err
		}
		return scan.NewBrowserFetcher(session, adapter, config.Scan.PageTimeout, logger), nil
	}

	var scanRecorder scan.Recorder
	if history != nil {
		scanRecorder = history
	}
	scanOrch := scan.NewOrchestrator(config.Scan, store, fetcherFactory, agg, enricher, scanRecorder, logger)

	outcome, err := scanOrch.Run(rc)
	if err != nil {
		rc.Bus().Close()
		<-consumerDone
		return err
	}

	items := agg.Items()
	fmt.Printf("\nScan %s: %d items\n", outcome, len(items))
	for _, item := range items {
		fmt.Printf("  [%d] p%d  %s\n", item.SequenceID, item.SourcePage, item.Title)
	}

	if deleteSpec != "" && outcome != models.RunCancelled && len(items) > 0 {
		if err := runDelete(rc, config, adapter, store, agg, deleteSpec, history, logger); err != nil {
			rc.Bus().Close()
			<-consumerDone
			return err
		}

		deleted := 0
		for _, item := range agg.Items() {
			if item.Deleted {
				deleted++
			}
		}
		fmt.Printf("\nDeleted %d of %d selected items\n", deleted, len(selectItems(agg, deleteSpec)))
	}

	rc.Bus().Close()
	<-consumerDone

	if dropped := rc.Bus().Dropped(); dropped > 0 {
		logger.Debug().Int64("dropped", dropped).Msg("Event consumer fell behind")
	}
	return nil
}

// runDelete drives the delete orchestrator over the selected scan results.
func runDelete(rc *runctx.RunContext, config *common.Config, adapter site.Adapter, store *auth.FileStore, agg *scan.Aggregator, deleteSpec string, history *storage.HistoryStore, logger arbor.ILogger) error {
	selected := selectItems(agg, deleteSpec)
	if len(selected) == 0 {
		return fmt.Errorf("delete selection %q matched no scan results", deleteSpec)
	}

	deleterFactory := func(rc *runctx.RunContext, cookies []models.CookieRecord) (deleter.ItemDeleter, error) {
		session, err := newAuthenticatedSession(rc, config.Browser, adapter, cookies, logger)
		if err != nil {
			return nil, err
		}
		return deleter.NewBrowserDeleter(session, adapter, config.Delete, logger), nil
	}

	var deleteRecorder deleter.Recorder
	if history != nil {
		deleteRecorder = history
	}
	queue := deleter.NewTaskQueue()
	deleteOrch := deleter.NewOrchestrator(config.Delete, store, deleterFactory, queue, agg.MarkDeleted, deleteRecorder, logger)

	return deleteOrch.Run(rc, selected)
}

// selectItems resolves the -delete selection against the aggregate:
// "all", or a comma-separated list of sequence ids.
func selectItems(agg *scan.Aggregator, spec string) []models.ListingItem {
	if strings.EqualFold(strings.TrimSpace(spec), "all") {
		return agg.Items()
	}

	var ids []int64
	for _, part := range strings.Split(spec, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return agg.Select(ids)
}

// newAuthenticatedSession launches one browser, registers it for global
// shutdown and applies the cookie snapshot on an inert same-origin page.
func newAuthenticatedSession(rc *runctx.RunContext, config common.BrowserConfig, adapter site.Adapter, cookies []models.CookieRecord, logger arbor.ILogger) (*browser.Session, error) {
	session, err := browser.NewSession(config, logger)
	if err != nil {
		return nil, err
	}
	rc.Sessions().Add(session)

	if err := session.Authenticate(adapter.InertURL(), cookies, 30*time.Second); err != nil {
		rc.Sessions().Remove(session)
		session.Terminate()
		return nil, err
	}
	return session, nil
}

// renderEvents prints core events as console output until the bus closes.
func renderEvents(events <-chan models.Event) {
	for event := range events {
		switch event.Type {
		case models.EventLog:
			fmt.Println(event.Message)
		case models.EventBatchReady:
			for _, item := range event.Batch {
				fmt.Printf("  + [%d] %s\n", item.SequenceID, item.Title)
			}
		case models.EventItemDeleted:
			fmt.Printf("  deleted %s\n", event.URL)
		case models.EventRunFinished:
			fmt.Printf("Run finished: %s\n", event.Outcome)
		}
	}
}
