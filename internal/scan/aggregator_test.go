package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/therealtombi/RumbleVideoDeleteManager/internal/models"
)

func raw(id int64, title string, page int) models.RawItem {
	return models.RawItem{
		Title:      title,
		URL:        "https://rumble.com/v" + title,
		SequenceID: id,
		SourcePage: page,
	}
}

func TestMergeOrdersBatchDescending(t *testing.T) {
	agg := NewAggregator(0)

	accepted := agg.Merge([]models.RawItem{
		raw(5, "b", 1),
		raw(3, "c", 1),
		raw(9, "a", 1),
	})

	require.Len(t, accepted, 3)
	assert.Equal(t, int64(9), accepted[0].SequenceID)
	assert.Equal(t, int64(5), accepted[1].SequenceID)
	assert.Equal(t, int64(3), accepted[2].SequenceID)
}

func TestMergeDeduplicatesAcrossPages(t *testing.T) {
	agg := NewAggregator(0)

	first := agg.Merge([]models.RawItem{raw(10, "a", 1), raw(7, "b", 1)})
	require.Len(t, first, 2)

	// Page 2 re-serves one item already seen on page 1.
	second := agg.Merge([]models.RawItem{raw(7, "b-again", 2), raw(4, "c", 2)})
	require.Len(t, second, 1)
	assert.Equal(t, int64(4), second[0].SequenceID)

	assert.Equal(t, 3, agg.Len())
}

func TestMergeIdempotentOnRepeatedBatch(t *testing.T) {
	agg := NewAggregator(0)
	batch := []models.RawItem{raw(2, "a", 1), raw(1, "b", 1)}

	require.Len(t, agg.Merge(batch), 2)
	assert.Empty(t, agg.Merge(batch))
	assert.Equal(t, 2, agg.Len())
}

func TestMergeCapacityKeepsHighestOfBatch(t *testing.T) {
	agg := NewAggregator(2)

	accepted := agg.Merge([]models.RawItem{
		raw(5, "b", 1),
		raw(3, "c", 1),
		raw(9, "a", 1),
	})

	// Capacity 2: the batch sorts to 9,5,3 and only 9 and 5 fit.
	require.Len(t, accepted, 2)
	assert.Equal(t, int64(9), accepted[0].SequenceID)
	assert.Equal(t, int64(5), accepted[1].SequenceID)
	assert.True(t, agg.Full())

	// A full aggregate rejects everything, including unseen ids.
	assert.Empty(t, agg.Merge([]models.RawItem{raw(99, "d", 2)}))
}

func TestSelectReturnsAggregateOrder(t *testing.T) {
	agg := NewAggregator(0)
	agg.Merge([]models.RawItem{raw(9, "a", 1), raw(5, "b", 1), raw(3, "c", 1)})

	selected := agg.Select([]int64{3, 9, 42})
	require.Len(t, selected, 2)
	assert.Equal(t, int64(9), selected[0].SequenceID)
	assert.Equal(t, int64(3), selected[1].SequenceID)
}

func TestSetThumbnailAndSnapshotIsolation(t *testing.T) {
	agg := NewAggregator(0)
	agg.Merge([]models.RawItem{raw(9, "a", 1)})

	before := agg.Items()
	agg.SetThumbnail(9, []byte{0xFF, 0xD8})

	// Snapshots are copies; the earlier one is unaffected.
	assert.Nil(t, before[0].ThumbnailBytes)
	assert.Equal(t, []byte{0xFF, 0xD8}, agg.Items()[0].ThumbnailBytes)
}

func TestMarkDeleted(t *testing.T) {
	agg := NewAggregator(0)
	agg.Merge([]models.RawItem{raw(9, "a", 1)})
	url := agg.Items()[0].URL

	assert.True(t, agg.MarkDeleted(url))
	assert.True(t, agg.Items()[0].Deleted)
	assert.False(t, agg.MarkDeleted("https://rumble.com/vnope"))
}

func TestResetClearsDedupState(t *testing.T) {
	agg := NewAggregator(0)
	agg.Merge([]models.RawItem{raw(9, "a", 1)})
	agg.Reset()

	assert.Equal(t, 0, agg.Len())
	// After a reset previously seen ids are accepted again.
	assert.Len(t, agg.Merge([]models.RawItem{raw(9, "a", 1)}), 1)
}
