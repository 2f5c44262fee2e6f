package diagnostics_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/suballoc"
	"github.com/vkngwrapper/suballoc/diagnostics"
)

func TestTrackerTagLookupUntag(t *testing.T) {
	tracker := diagnostics.NewTracker(8)
	key := diagnostics.Key{Start: 0, Order: 3}

	_, ok := tracker.Lookup(key)
	require.False(t, ok)

	tracker.Tag(key, "descriptor-heap-slot-17")
	value, ok := tracker.Lookup(key)
	require.True(t, ok)
	require.Equal(t, "descriptor-heap-slot-17", value)
	require.Equal(t, 1, tracker.Count())

	tracker.Untag(key)
	_, ok = tracker.Lookup(key)
	require.False(t, ok)
	require.Equal(t, 0, tracker.Count())
}

func TestSummarize(t *testing.T) {
	var stats suballoc.DetailedStatistics
	stats.Clear()
	stats.BlockCount = 1
	stats.BlockBytes = 1024
	stats.AllocationBytes = 256
	stats.AllocationCount = 2
	stats.UnusedRangeCount = 3

	data, err := diagnostics.Summarize(&stats)
	require.NoError(t, err)
	require.Contains(t, string(data), "BlockCount")
	require.Contains(t, string(data), "1024")
}
