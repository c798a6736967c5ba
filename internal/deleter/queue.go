package deleter

import (
	"context"
	"sync"
	"time"

	"github.com/therealtombi/RumbleVideoDeleteManager/internal/models"
)

// TaskQueue is a concurrency-safe FIFO of deletion targets shared across the
// worker sessions. Each task is delivered to exactly one worker exactly once.
type TaskQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	tasks  []models.DeleteTask
	closed bool
}

// NewTaskQueue creates an empty queue.
func NewTaskQueue() *TaskQueue {
	q := &TaskQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Reset atomically replaces the queue contents for a new run. Callers must
// have joined the prior run's workers first so no worker from an old run
// observes the new tasks.
func (q *TaskQueue) Reset(tasks []models.DeleteTask) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = make([]models.DeleteTask, len(tasks))
	copy(q.tasks, tasks)
	q.closed = false
	q.cond.Broadcast()
}

// Len returns the number of pending tasks.
func (q *TaskQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Pop removes and returns the oldest task, blocking up to timeout. ok=false
// means "no more work": the timeout elapsed with an empty queue, the queue
// was closed, or the context was cancelled. A timeout is a normal exit
// signal for workers, not an error, which absorbs the race where the queue
// reports non-empty but a sibling drains it first.
func (q *TaskQueue) Pop(ctx context.Context, timeout time.Duration) (models.DeleteTask, bool) {
	deadline := time.Now().Add(timeout)

	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		if ctx.Err() != nil {
			return models.DeleteTask{}, false
		}
		if len(q.tasks) > 0 {
			task := q.tasks[0]
			q.tasks = q.tasks[1:]
			return task, true
		}
		if q.closed {
			return models.DeleteTask{}, false
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return models.DeleteTask{}, false
		}

		// Wake up on Push/Reset/Close or when the remaining wait elapses,
		// then re-check everything.
		timer := time.AfterFunc(remaining, func() {
			q.cond.Broadcast()
		})
		q.cond.Wait()
		timer.Stop()
	}
}

// Close wakes all waiting workers and makes further Pops return immediately.
func (q *TaskQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}
