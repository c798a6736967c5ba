package deleter

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/therealtombi/RumbleVideoDeleteManager/internal/auth"
	"github.com/therealtombi/RumbleVideoDeleteManager/internal/common"
	"github.com/therealtombi/RumbleVideoDeleteManager/internal/models"
	"github.com/therealtombi/RumbleVideoDeleteManager/internal/runctx"
)

// ErrNoWorkers is returned when not a single delete session could be
// initialized. Individual session failures only shrink the pool.
var ErrNoWorkers = errors.New("no delete sessions could be initialized")

// Recorder persists deletion attempt history. Optional; nil disables it.
type Recorder interface {
	RecordDeletion(record models.DeletionRecord) error
}

// DeleterFactory creates one authenticated ItemDeleter per worker. The
// returned deleter's session must be registered with the run's session
// registry by the factory.
type DeleterFactory func(rc *runctx.RunContext, cookies []models.CookieRecord) (ItemDeleter, error)

// Orchestrator runs the delete phase: N workers bound 1:1 to browser
// sessions, all draining one shared task queue. No ordering is guaranteed
// across workers, but each task is processed exactly once.
type Orchestrator struct {
	config      common.DeleteConfig
	creds       auth.Source
	factory     DeleterFactory
	queue       *TaskQueue
	markDeleted func(url string) bool
	history     Recorder
	logger      arbor.ILogger
}

// NewOrchestrator wires a delete orchestrator. markDeleted flips the
// aggregate's deleted flag on confirmed success; history may be nil.
func NewOrchestrator(config common.DeleteConfig, creds auth.Source, factory DeleterFactory, queue *TaskQueue, markDeleted func(url string) bool, history Recorder, logger arbor.ILogger) *Orchestrator {
	return &Orchestrator{
		config:      config,
		creds:       creds,
		factory:     factory,
		queue:       queue,
		markDeleted: markDeleted,
		history:     history,
		logger:      logger,
	}
}

// Run deletes the selected items. It returns an error only when the run
// cannot start (missing credentials, no items, no sessions); per-item
// failures are logged and recorded but never abort the batch.
func (o *Orchestrator) Run(rc *runctx.RunContext, items []models.ListingItem) error {
	if !o.creds.Exists() {
		return auth.ErrNoSnapshot
	}
	if len(items) == 0 {
		return errors.New("no items selected")
	}

	cookies, err := o.creds.Load()
	if err != nil {
		return err
	}

	runID := uuid.New().String()
	tasks := make([]models.DeleteTask, 0, len(items))
	for _, item := range items {
		tasks = append(tasks, models.TaskFromItem(item))
	}
	o.queue.Reset(tasks)

	rc.Bus().Log(fmt.Sprintf("Starting delete with %d workers...", o.config.Workers))
	o.logger.Info().
		Str("run_id", runID).
		Int("tasks", len(tasks)).
		Int("workers", o.config.Workers).
		Msg("Delete run starting")

	// Build the worker pool. A session that fails to initialize is skipped;
	// the effective worker count may be less than requested.
	var workers []ItemDeleter
	for i := 0; i < o.config.Workers; i++ {
		if !rc.Running() {
			break
		}
		worker, err := o.factory(rc, cookies)
		if err != nil {
			o.logger.Warn().Err(err).Int("worker", i).Msg("Skipping worker, session init failed")
			continue
		}
		workers = append(workers, worker)
	}
	if len(workers) == 0 {
		if !rc.Running() {
			rc.Bus().Publish(models.RunFinishedEvent(models.RunCancelled))
			o.logger.Info().Str("run_id", runID).Msg("Delete run cancelled before start")
			return nil
		}
		return ErrNoWorkers
	}

	var wg sync.WaitGroup
	for i, worker := range workers {
		wg.Add(1)
		go o.workerLoop(rc, runID, i, worker, &wg)
	}
	wg.Wait()

	for _, worker := range workers {
		worker.Terminate()
	}

	outcome := models.RunFinished
	if !rc.Running() {
		outcome = models.RunCancelled
	}
	rc.Bus().Log("Delete sequence complete")
	rc.Bus().Publish(models.RunFinishedEvent(outcome))
	o.logger.Info().Str("run_id", runID).Str("outcome", string(outcome)).Msg("Delete run complete")
	return nil
}

// workerLoop drains the shared queue on one session. A panic terminates
// this worker's work early without touching its siblings.
func (o *Orchestrator) workerLoop(rc *runctx.RunContext, runID string, workerID int, worker ItemDeleter, wg *sync.WaitGroup) {
	defer wg.Done()
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error().
				Int("worker", workerID).
				Str("panic", fmt.Sprintf("%v", r)).
				Msg("Delete worker crashed")
		}
	}()

	for rc.Running() {
		task, ok := o.queue.Pop(rc.Context(), o.config.PopTimeout)
		if !ok {
			return
		}

		o.deleteOne(rc, runID, workerID, worker, task)
	}
}

// deleteOne executes and records a single deletion attempt.
func (o *Orchestrator) deleteOne(rc *runctx.RunContext, runID string, workerID int, worker ItemDeleter, task models.DeleteTask) {
	title := task.Title
	if len(title) > 30 {
		title = title[:30]
	}
	rc.Bus().Log(fmt.Sprintf("Deleting: %s...", title))

	err := worker.DeleteItem(rc.Context(), task)

	if o.history != nil {
		record := models.DeletionRecord{
			ID:         uuid.New().String(),
			RunID:      runID,
			URL:        task.URL,
			Title:      task.Title,
			SourcePage: task.SourcePage,
			Success:    err == nil,
			AttemptAt:  time.Now().Unix(),
		}
		if err != nil {
			record.Error = err.Error()
		}
		if recordErr := o.history.RecordDeletion(record); recordErr != nil {
			o.logger.Warn().Err(recordErr).Msg("Failed to record deletion history")
		}
	}

	if err != nil {
		o.logger.Warn().
			Err(err).
			Int("worker", workerID).
			Str("url", task.URL).
			Msg("Delete failed")
		rc.Bus().Log(fmt.Sprintf("Delete fail: %v", err))
		return
	}

	if o.markDeleted != nil {
		o.markDeleted(task.URL)
	}
	rc.Bus().Publish(models.ItemDeletedEvent(task.URL))
	o.logger.Info().
		Int("worker", workerID).
		Str("url", task.URL).
		Msg("Item deleted")
}
