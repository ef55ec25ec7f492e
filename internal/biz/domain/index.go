package domain

import "sync"

// DefaultIndexCapacity is the per-chat bucket cap used when none is configured
const DefaultIndexCapacity = 500

// MessageIndex keeps, per chat, the insertion-ordered ids of messages eligible for deletion.
// It is safe for concurrent use: ephemeral expiry timers untrack ids outside the poll/wipe path.
type MessageIndex struct {
	mu       sync.Mutex
	capacity int
	buckets  map[int64]*bucket
}

type bucket struct {
	ids    []int64
	set    map[int64]struct{}
	pinned int64 // 0 when no pin is known
}

// NewMessageIndex creates an index capped at capacity ids per chat
func NewMessageIndex(capacity int) *MessageIndex {
	if capacity <= 0 {
		capacity = DefaultIndexCapacity
	}
	return &MessageIndex{
		capacity: capacity,
		buckets:  make(map[int64]*bucket),
	}
}

// Capacity returns the per-chat cap
func (x *MessageIndex) Capacity() int {
	return x.capacity
}

func (x *MessageIndex) bucketFor(chatID int64) *bucket {
	b, ok := x.buckets[chatID]
	if !ok {
		b = &bucket{set: make(map[int64]struct{})}
		x.buckets[chatID] = b
	}
	return b
}

// Track appends messageID to the chat's bucket unless it is already tracked.
// When the bucket grows past capacity the oldest non-pinned ids are evicted first.
// Returns true if the id was newly added.
func (x *MessageIndex) Track(chatID, messageID int64) bool {
	if messageID == 0 {
		return false
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	b := x.bucketFor(chatID)
	if _, exists := b.set[messageID]; exists {
		return false
	}
	b.ids = append(b.ids, messageID)
	b.set[messageID] = struct{}{}

	for len(b.ids) > x.capacity {
		if !b.evictOldest() {
			break
		}
	}
	return true
}

// evictOldest drops the oldest id that is not the pinned reference
func (b *bucket) evictOldest() bool {
	for i, id := range b.ids {
		if id == b.pinned {
			continue
		}
		b.ids = append(b.ids[:i], b.ids[i+1:]...)
		delete(b.set, id)
		return true
	}
	return false
}

// Untrack removes messageID from the chat's bucket. Absent ids are a no-op.
func (x *MessageIndex) Untrack(chatID, messageID int64) bool {
	x.mu.Lock()
	defer x.mu.Unlock()

	b, ok := x.buckets[chatID]
	if !ok {
		return false
	}
	if _, exists := b.set[messageID]; !exists {
		return false
	}
	delete(b.set, messageID)
	for i, id := range b.ids {
		if id == messageID {
			b.ids = append(b.ids[:i], b.ids[i+1:]...)
			break
		}
	}
	return true
}

// MarkPinned records the chat's current pinned message so capacity trimming never evicts it
func (x *MessageIndex) MarkPinned(chatID, messageID int64) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.bucketFor(chatID).pinned = messageID
}

// SnapshotUnique returns a de-duplicated copy of the chat's ids in insertion order
func (x *MessageIndex) SnapshotUnique(chatID int64) []int64 {
	x.mu.Lock()
	defer x.mu.Unlock()

	b, ok := x.buckets[chatID]
	if !ok {
		return nil
	}
	seen := make(map[int64]struct{}, len(b.ids))
	out := make([]int64, 0, len(b.ids))
	for _, id := range b.ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// ResetTo replaces the chat's bucket with {pinnedID}, or empties it when pinnedID is 0
func (x *MessageIndex) ResetTo(chatID, pinnedID int64) {
	x.mu.Lock()
	defer x.mu.Unlock()

	b := &bucket{set: make(map[int64]struct{}), pinned: pinnedID}
	if pinnedID != 0 {
		b.ids = []int64{pinnedID}
		b.set[pinnedID] = struct{}{}
	}
	x.buckets[chatID] = b
}

// Contains reports whether messageID is tracked for the chat
func (x *MessageIndex) Contains(chatID, messageID int64) bool {
	x.mu.Lock()
	defer x.mu.Unlock()

	b, ok := x.buckets[chatID]
	if !ok {
		return false
	}
	_, exists := b.set[messageID]
	return exists
}

// Count returns the number of ids tracked for the chat
func (x *MessageIndex) Count(chatID int64) int {
	x.mu.Lock()
	defer x.mu.Unlock()

	if b, ok := x.buckets[chatID]; ok {
		return len(b.ids)
	}
	return 0
}
