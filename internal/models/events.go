package models

// EventType identifies the kind of event the core emits to the presentation layer.
type EventType string

const (
	EventBatchReady  EventType = "batch_ready"
	EventItemDeleted EventType = "item_deleted"
	EventLog         EventType = "log"
	EventRunFinished EventType = "run_finished"
)

// RunOutcome is the terminal state of a scan or delete run.
type RunOutcome string

const (
	RunFinished  RunOutcome = "finished"
	RunCancelled RunOutcome = "cancelled"
	RunCrashed   RunOutcome = "crashed"
)

// Event is one immutable message pushed by the core onto the event bus.
// The presentation layer is the sole consumer.
type Event struct {
	Type EventType

	// EventBatchReady
	Batch []ListingItem

	// EventItemDeleted
	URL string

	// EventLog
	Message string

	// EventRunFinished
	Outcome RunOutcome
}

// BatchReadyEvent wraps an accepted page batch for the UI.
func BatchReadyEvent(items []ListingItem) Event {
	return Event{Type: EventBatchReady, Batch: items}
}

// ItemDeletedEvent reports one confirmed deletion.
func ItemDeletedEvent(url string) Event {
	return Event{Type: EventItemDeleted, URL: url}
}

// LogEvent carries one user-visible log line.
func LogEvent(message string) Event {
	return Event{Type: EventLog, Message: message}
}

// RunFinishedEvent reports the terminal state of a run.
func RunFinishedEvent(outcome RunOutcome) Event {
	return Event{Type: EventRunFinished, Outcome: outcome}
}
