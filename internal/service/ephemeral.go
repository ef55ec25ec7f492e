package service

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// SendEphemeral sends text to chatID, tracks it, and deletes it after ttl.
// The expiry is not cancelled by a wipe; deleting an already deleted message is a no-op.
func (e *Engine) SendEphemeral(ctx context.Context, chatID int64, text string, ttl time.Duration) (int64, error) {
	msgID, err := e.platform.SendMessage(ctx, chatID, text)
	if err != nil {
		return 0, errors.Wrap(err, "send ephemeral message")
	}
	e.index.Track(chatID, msgID)
	e.deleteLater(chatID, msgID, ttl)
	return msgID, nil
}

// reply sends a short-lived answer into chatID, logging failures
func (e *Engine) reply(chatID int64, text string) {
	if _, err := e.SendEphemeral(e.context(), chatID, text, e.cfg.ReplyTTL); err != nil {
		fmt.Printf("[Ephemeral] Failed to reply in chat %d: %v\n", chatID, err)
	}
}

func (e *Engine) deleteLater(chatID, messageID int64, delay time.Duration) Task {
	return e.clock.AfterFunc(delay, func() { e.expire(chatID, messageID) })
}

func (e *Engine) expire(chatID, messageID int64) {
	ctx := e.context()
	if ctx.Err() != nil {
		return
	}
	if err := e.platform.DeleteMessage(ctx, chatID, messageID); err != nil {
		fmt.Printf("[Ephemeral] Failed to delete message %d: %v\n", messageID, err)
		return
	}
	e.index.Untrack(chatID, messageID)
	e.debugf("[Ephemeral] Expired message %d in chat %d\n", messageID, chatID)
}
