package badger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/therealtombi/RumbleVideoDeleteManager/internal/common"
	"github.com/therealtombi/RumbleVideoDeleteManager/internal/models"
)

func newTestStore(t *testing.T) *HistoryStore {
	t.Helper()
	logger := arbor.NewLogger()
	db, err := NewBadgerDB(logger, &common.BadgerConfig{Path: t.TempDir() + "/history"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewHistoryStore(db, logger)
}

func TestRecordAndListScans(t *testing.T) {
	store := newTestStore(t)
	now := time.Now().Unix()

	require.NoError(t, store.RecordScan(models.ScanRecord{
		ID:           "run-1",
		TitleFilter:  "cats",
		MaxPages:     10,
		PagesScanned: 10,
		ItemsFound:   42,
		Outcome:      "finished",
		StartedAt:    now - 100,
		FinishedAt:   now - 50,
	}))
	require.NoError(t, store.RecordScan(models.ScanRecord{
		ID:        "run-2",
		Outcome:   "cancelled",
		StartedAt: now,
	}))

	scans, err := store.ListScans()
	require.NoError(t, err)
	require.Len(t, scans, 2)
	// Newest first.
	assert.Equal(t, "run-2", scans[0].ID)
	assert.Equal(t, "run-1", scans[1].ID)
	assert.Equal(t, 42, scans[1].ItemsFound)
}

func TestRecordScanUpsertsByID(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.RecordScan(models.ScanRecord{ID: "run-1", Outcome: "crashed"}))
	require.NoError(t, store.RecordScan(models.ScanRecord{ID: "run-1", Outcome: "finished"}))

	scans, err := store.ListScans()
	require.NoError(t, err)
	require.Len(t, scans, 1)
	assert.Equal(t, "finished", scans[0].Outcome)
}

func TestListDeletionsFiltersByRun(t *testing.T) {
	store := newTestStore(t)
	now := time.Now().Unix()

	require.NoError(t, store.RecordDeletion(models.DeletionRecord{
		ID: "d-1", RunID: "run-1", URL: "https://rumble.com/va", Success: true, AttemptAt: now + 2,
	}))
	require.NoError(t, store.RecordDeletion(models.DeletionRecord{
		ID: "d-2", RunID: "run-1", URL: "https://rumble.com/vb", Success: false, Error: "confirmation failed", AttemptAt: now + 1,
	}))
	require.NoError(t, store.RecordDeletion(models.DeletionRecord{
		ID: "d-3", RunID: "run-2", URL: "https://rumble.com/vc", Success: true, AttemptAt: now,
	}))

	deletions, err := store.ListDeletions("run-1")
	require.NoError(t, err)
	require.Len(t, deletions, 2)
	// Oldest first within the run.
	assert.Equal(t, "d-2", deletions[0].ID)
	assert.Equal(t, "d-1", deletions[1].ID)
	assert.Equal(t, "confirmation failed", deletions[0].Error)

	all, err := store.ListDeletions("")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
