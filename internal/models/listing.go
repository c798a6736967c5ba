package models

// RawItem is one candidate video as parsed from a rendered listing page,
// before dedup filtering. Thumbnail bytes are filled in later by enrichment.
type RawItem struct {
	Title        string
	URL          string
	ThumbnailURL string
	SequenceID   int64
	SourcePage   int
	DOMAnchor    string // element id on the listing page, may be empty
}

// ListingItem is one discovered video held in the aggregate result set.
// At most one ListingItem per distinct SequenceID ever enters the set.
type ListingItem struct {
	Title          string
	URL            string
	ThumbnailURL   string
	SequenceID     int64
	SourcePage     int
	DOMAnchor      string
	ThumbnailBytes []byte
	Deleted        bool
}

// DeleteTask references one ListingItem's identifying fields on the delete
// queue. Immutable once enqueued; consumed exactly once by exactly one worker.
type DeleteTask struct {
	Title      string
	URL        string
	SourcePage int
	DOMAnchor  string
}

// TaskFromItem builds the queue entry for a selected listing item.
func TaskFromItem(item ListingItem) DeleteTask {
	return DeleteTask{
		Title:      item.Title,
		URL:        item.URL,
		SourcePage: item.SourcePage,
		DOMAnchor:  item.DOMAnchor,
	}
}
