package domain

// EventKind discriminates the shapes an update from the platform can take
type EventKind int

const (
	EventMessage     EventKind = iota // regular chat message
	EventChannelPost                  // post in a broadcast channel
	EventPinNotice                    // service notice: a message was pinned
	EventOther                        // update the engine does not act on; still advances the cursor
)

func (k EventKind) String() string {
	switch k {
	case EventMessage:
		return "message"
	case EventChannelPost:
		return "channel_post"
	case EventPinNotice:
		return "pin_notice"
	case EventOther:
		return "other"
	default:
		return "unknown"
	}
}

// ChatEvent is one update, resolved once at ingestion
type ChatEvent struct {
	Seq       int64 // platform update sequence number
	Kind      EventKind
	ChatID    int64
	MessageID int64
	SenderID  int64  // 0 when the platform reports no sender (channel posts)
	Text      string // message text or caption, may be empty

	// PinnedMessageID is set for EventPinNotice
	PinnedMessageID int64
}

// HasSender reports whether the event carries a sender identity
func (e *ChatEvent) HasSender() bool {
	return e.SenderID != 0
}

// LastSeq returns the highest sequence number in a batch, or 0 for an empty batch
func LastSeq(events []ChatEvent) int64 {
	var last int64
	for _, ev := range events {
		if ev.Seq > last {
			last = ev.Seq
		}
	}
	return last
}
