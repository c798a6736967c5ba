package deleter

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/therealtombi/RumbleVideoDeleteManager/internal/models"
)

func task(url string) models.DeleteTask {
	return models.DeleteTask{URL: url, Title: url, SourcePage: 1}
}

func TestPopReturnsTasksInOrder(t *testing.T) {
	q := NewTaskQueue()
	q.Reset([]models.DeleteTask{task("a"), task("b"), task("c")})

	ctx := context.Background()
	for _, want := range []string{"a", "b", "c"} {
		got, ok := q.Pop(ctx, time.Second)
		require.True(t, ok)
		assert.Equal(t, want, got.URL)
	}
	assert.Equal(t, 0, q.Len())
}

func TestPopTimesOutOnEmptyQueue(t *testing.T) {
	q := NewTaskQueue()

	start := time.Now()
	_, ok := q.Pop(context.Background(), 50*time.Millisecond)

	assert.False(t, ok)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestPopReturnsOnContextCancel(t *testing.T) {
	q := NewTaskQueue()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := q.Pop(ctx, time.Second)
	assert.False(t, ok)
}

func TestPopReturnsOnClose(t *testing.T) {
	q := NewTaskQueue()

	done := make(chan bool, 1)
	go func() {
		_, ok := q.Pop(context.Background(), 5*time.Second)
		done <- ok
	}()

	time.Sleep(20 * time.Millisecond)
	q.Close()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Pop did not return after Close")
	}
}

func TestConcurrentConsumersReceiveEachTaskOnce(t *testing.T) {
	q := NewTaskQueue()
	q.Reset([]models.DeleteTask{task("a"), task("b"), task("c")})

	var mu sync.Mutex
	seen := make(map[string]int)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				item, ok := q.Pop(context.Background(), 100*time.Millisecond)
				if !ok {
					return
				}
				mu.Lock()
				seen[item.URL]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, 3)
	for url, count := range seen {
		assert.Equal(t, 1, count, "task %s delivered %d times", url, count)
	}
}

func TestResetReplacesPendingTasks(t *testing.T) {
	q := NewTaskQueue()
	q.Reset([]models.DeleteTask{task("old")})
	q.Reset([]models.DeleteTask{task("new")})

	got, ok := q.Pop(context.Background(), time.Second)
	require.True(t, ok)
	assert.Equal(t, "new", got.URL)
	assert.Equal(t, 0, q.Len())
}

func TestResetReopensClosedQueue(t *testing.T) {
	q := NewTaskQueue()
	q.Close()
	q.Reset([]models.DeleteTask{task("a")})

	_, ok := q.Pop(context.Background(), time.Second)
	assert.True(t, ok)
}
