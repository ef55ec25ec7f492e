package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageIndex_TrackIgnoresDuplicates(t *testing.T) {
	x := NewMessageIndex(10)

	assert.True(t, x.Track(1, 100))
	assert.False(t, x.Track(1, 100))
	assert.True(t, x.Track(1, 101))

	assert.Equal(t, []int64{100, 101}, x.SnapshotUnique(1))
}

func TestMessageIndex_BucketsArePerChat(t *testing.T) {
	x := NewMessageIndex(10)
	x.Track(1, 5)
	x.Track(2, 5)

	assert.Equal(t, 1, x.Count(1))
	assert.Equal(t, 1, x.Count(2))
	x.ResetTo(1, 0)
	assert.Equal(t, 0, x.Count(1))
	assert.Equal(t, 1, x.Count(2))
}

func TestMessageIndex_CapacityEvictsOldestFirst(t *testing.T) {
	x := NewMessageIndex(3)
	for id := int64(1); id <= 5; id++ {
		x.Track(7, id)
		assert.LessOrEqual(t, x.Count(7), 3)
	}
	assert.Equal(t, []int64{3, 4, 5}, x.SnapshotUnique(7))
}

func TestMessageIndex_CapacityNeverEvictsPinned(t *testing.T) {
	x := NewMessageIndex(3)
	x.ResetTo(7, 1)
	for id := int64(2); id <= 10; id++ {
		x.Track(7, id)
	}

	snap := x.SnapshotUnique(7)
	assert.Len(t, snap, 3)
	assert.Equal(t, int64(1), snap[0])
	assert.Equal(t, []int64{1, 9, 10}, snap)
}

func TestMessageIndex_UntrackAbsentIsNoop(t *testing.T) {
	x := NewMessageIndex(5)
	assert.False(t, x.Untrack(1, 99))

	x.Track(1, 10)
	assert.True(t, x.Untrack(1, 10))
	assert.False(t, x.Untrack(1, 10))
	assert.Empty(t, x.SnapshotUnique(1))
}

func TestMessageIndex_ResetTo(t *testing.T) {
	x := NewMessageIndex(5)
	for _, id := range []int64{1, 2, 3, 4} {
		x.Track(9, id)
	}

	x.ResetTo(9, 2)
	assert.Equal(t, []int64{2}, x.SnapshotUnique(9))
	assert.True(t, x.Contains(9, 2))

	x.ResetTo(9, 0)
	assert.Empty(t, x.SnapshotUnique(9))
}

func TestMessageIndex_ZeroCapacityUsesDefault(t *testing.T) {
	x := NewMessageIndex(0)
	assert.Equal(t, DefaultIndexCapacity, x.Capacity())
	assert.False(t, x.Track(1, 0), "zero ids are never tracked")
}
