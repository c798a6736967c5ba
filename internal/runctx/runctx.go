// Package runctx carries the shared state of one scan or delete run: the
// cooperative cancellation flag, the session registry, and the event bus.
// It replaces what would otherwise be hidden process-wide globals.
package runctx

import (
	"context"

	"github.com/ternarybob/arbor"

	"github.com/therealtombi/RumbleVideoDeleteManager/internal/browser"
	"github.com/therealtombi/RumbleVideoDeleteManager/internal/events"
)

// RunContext is passed to every orchestrator and worker. Loops observe
// Running() at each iteration boundary and stop promptly when it turns
// false; cancellation is cooperative, never preemptive.
type RunContext struct {
	ctx      context.Context
	cancel   context.CancelFunc
	bus      *events.Bus
	sessions *browser.Registry
	logger   arbor.ILogger
}

// New creates a RunContext rooted at parent with a fresh event bus and
// session registry.
func New(parent context.Context, logger arbor.ILogger) *RunContext {
	ctx, cancel := context.WithCancel(parent)
	return &RunContext{
		ctx:      ctx,
		cancel:   cancel,
		bus:      events.NewBus(),
		sessions: browser.NewRegistry(logger),
		logger:   logger,
	}
}

// Context returns the run's context for blocking calls.
func (rc *RunContext) Context() context.Context {
	return rc.ctx
}

// Running reports whether the run is still live. Checked at every loop head.
func (rc *RunContext) Running() bool {
	return rc.ctx.Err() == nil
}

// Cancel requests cooperative shutdown of all loops in this run.
func (rc *RunContext) Cancel() {
	rc.cancel()
}

// Bus returns the event channel to the presentation layer.
func (rc *RunContext) Bus() *events.Bus {
	return rc.bus
}

// Sessions returns the run's session registry.
func (rc *RunContext) Sessions() *browser.Registry {
	return rc.sessions
}

// Logger returns the run's logger.
func (rc *RunContext) Logger() arbor.ILogger {
	return rc.logger
}

// Shutdown cancels the run and terminates every outstanding session, even
// mid-task. Used on window-close / SIGINT.
func (rc *RunContext) Shutdown() {
	rc.cancel()
	rc.sessions.TerminateAll()
}
