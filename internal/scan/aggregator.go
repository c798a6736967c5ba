package scan

import (
	"sort"
	"sync"

	"github.com/therealtombi/RumbleVideoDeleteManager/internal/models"
)

// DefaultCapacity is the aggregate result-set limit when none is configured.
const DefaultCapacity = 2000

// Aggregator merges per-page batches into a single ordered result set. The
// sequence id is the dedup key: at most one item per distinct id ever enters
// the set, across the entire scan. Mutated by the scan goroutine, read
// concurrently by the presentation layer; all access goes through the lock
// so batches become visible atomically.
type Aggregator struct {
	mu       sync.RWMutex
	capacity int
	seen     map[int64]struct{}
	items    []models.ListingItem
	index    map[int64]int // sequence id -> position in items
}

// NewAggregator creates an aggregator with the given capacity,
// DefaultCapacity when non-positive.
func NewAggregator(capacity int) *Aggregator {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Aggregator{
		capacity: capacity,
		seen:     make(map[int64]struct{}),
		index:    make(map[int64]int),
	}
}

// Merge filters a page batch into the aggregate and returns the accepted
// subset. The batch is ordered by descending sequence id first, so when a
// page carries duplicates the higher-sequence occurrence wins. Once the
// aggregate reaches capacity the rest of the batch is dropped.
func (a *Aggregator) Merge(batch []models.RawItem) []models.ListingItem {
	sorted := make([]models.RawItem, len(batch))
	copy(sorted, batch)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SequenceID > sorted[j].SequenceID
	})

	a.mu.Lock()
	defer a.mu.Unlock()

	var accepted []models.ListingItem
	for _, raw := range sorted {
		if len(a.items) >= a.capacity {
			break
		}
		if _, dup := a.seen[raw.SequenceID]; dup {
			continue
		}
		a.seen[raw.SequenceID] = struct{}{}

		item := models.ListingItem{
			Title:        raw.Title,
			URL:          raw.URL,
			ThumbnailURL: raw.ThumbnailURL,
			SequenceID:   raw.SequenceID,
			SourcePage:   raw.SourcePage,
			DOMAnchor:    raw.DOMAnchor,
		}
		a.index[raw.SequenceID] = len(a.items)
		a.items = append(a.items, item)
		accepted = append(accepted, item)
	}
	return accepted
}

// Len returns the current aggregate size.
func (a *Aggregator) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.items)
}

// Full reports whether the aggregate has reached capacity.
func (a *Aggregator) Full() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.items) >= a.capacity
}

// Items returns a snapshot copy of the aggregate in insertion order.
func (a *Aggregator) Items() []models.ListingItem {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]models.ListingItem, len(a.items))
	copy(out, a.items)
	return out
}

// Select returns snapshot copies of the items with the given sequence ids,
// in aggregate order. Unknown ids are ignored.
func (a *Aggregator) Select(ids []int64) []models.ListingItem {
	want := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	var out []models.ListingItem
	for _, item := range a.items {
		if _, ok := want[item.SequenceID]; ok {
			out = append(out, item)
		}
	}
	return out
}

// SetThumbnail stores fetched thumbnail bytes on the registered item.
func (a *Aggregator) SetThumbnail(sequenceID int64, data []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if pos, ok := a.index[sequenceID]; ok {
		a.items[pos].ThumbnailBytes = data
	}
}

// MarkDeleted flips the deleted flag on the item with the given URL.
// Returns false when no such item exists.
func (a *Aggregator) MarkDeleted(url string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.items {
		if a.items[i].URL == url {
			a.items[i].Deleted = true
			return true
		}
	}
	return false
}

// Reset clears the aggregate for a new scan. This is the only way items
// ever leave the set.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.seen = make(map[int64]struct{})
	a.index = make(map[int64]int)
	a.items = nil
}
