package badger

import (
	"fmt"
	"sort"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/therealtombi/RumbleVideoDeleteManager/internal/models"
)

// HistoryStore persists run history: one ScanRecord per scan run and one
// DeletionRecord per deletion attempt. It backs the scan.Recorder and
// deleter.Recorder interfaces.
type HistoryStore struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewHistoryStore creates a history store on an open database.
func NewHistoryStore(db *BadgerDB, logger arbor.ILogger) *HistoryStore {
	return &HistoryStore{db: db, logger: logger}
}

// RecordScan appends one scan run summary.
func (s *HistoryStore) RecordScan(record models.ScanRecord) error {
	if err := s.db.Store().Upsert(record.ID, record); err != nil {
		return fmt.Errorf("failed to store scan record: %w", err)
	}
	return nil
}

// RecordDeletion appends one deletion attempt.
func (s *HistoryStore) RecordDeletion(record models.DeletionRecord) error {
	if err := s.db.Store().Upsert(record.ID, record); err != nil {
		return fmt.Errorf("failed to store deletion record: %w", err)
	}
	return nil
}

// ListScans returns all scan records, newest first.
func (s *HistoryStore) ListScans() ([]models.ScanRecord, error) {
	var records []models.ScanRecord
	if err := s.db.Store().Find(&records, nil); err != nil {
		return nil, fmt.Errorf("failed to list scan records: %w", err)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].StartedAt > records[j].StartedAt
	})
	return records, nil
}

// ListDeletions returns the deletion attempts of one run, oldest first.
// An empty runID returns every attempt.
func (s *HistoryStore) ListDeletions(runID string) ([]models.DeletionRecord, error) {
	var records []models.DeletionRecord
	var query *badgerhold.Query
	if runID != "" {
		query = badgerhold.Where("RunID").Eq(runID).Index("RunID")
	}
	if err := s.db.Store().Find(&records, query); err != nil {
		return nil, fmt.Errorf("failed to list deletion records: %w", err)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].AttemptAt < records[j].AttemptAt
	})
	return records, nil
}
