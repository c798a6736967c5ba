package models

// Run history records persisted to the badgerhold store. One ScanRecord per
// scan run, one DeletionRecord per deletion attempt.

// ScanRecord summarizes one completed scan run.
type ScanRecord struct {
	ID           string `badgerhold:"key"`
	TitleFilter  string
	MaxPages     int
	PagesScanned int
	ItemsFound   int
	Outcome      string `badgerhold:"index"`
	StartedAt    int64
	FinishedAt   int64
}

// DeletionRecord captures the result of a single deletion attempt.
type DeletionRecord struct {
	ID         string `badgerhold:"key"`
	RunID      string `badgerhold:"index"`
	URL        string
	Title      string
	SourcePage int
	Success    bool `badgerhold:"index"`
	Error      string
	AttemptAt  int64
}
