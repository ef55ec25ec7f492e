package domain

// Cursor tracks the next unconsumed position in the platform's update stream
type Cursor struct {
	offset int64
}

// NewCursor creates a cursor positioned at offset
func NewCursor(offset int64) *Cursor {
	return &Cursor{offset: offset}
}

// Value returns the next offset to request (0 means "from the earliest unconfirmed update")
func (c *Cursor) Value() int64 {
	return c.offset
}

// Advance moves the cursor forward to offset.
// Returns false (and leaves the cursor alone) when offset is not ahead of the current value,
// which happens with replayed or out-of-order batches.
func (c *Cursor) Advance(offset int64) bool {
	if offset <= c.offset {
		return false
	}
	c.offset = offset
	return true
}

// Reset repositions the cursor after a drain pass or startup priming
func (c *Cursor) Reset(offset int64) {
	c.offset = offset
}
