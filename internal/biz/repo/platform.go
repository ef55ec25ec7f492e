package repo

import (
	"context"

	"github.com/elguiriashing/amsterdam/internal/biz/domain"
)

// LatestOffset asks GetUpdates for only the most recent update
const LatestOffset int64 = -1

// PlatformRepo is the chat platform repository interface
// Every method is a network call and a suspension point for the engine
type PlatformRepo interface {
	// GetUpdates fetches events starting at offset (0 = earliest unconfirmed), at most limit
	GetUpdates(ctx context.Context, offset int64, limit int) ([]domain.ChatEvent, error)

	// SendMessage posts text and returns the new message id
	SendMessage(ctx context.Context, chatID int64, text string) (int64, error)

	// DeleteMessage deletes a message.
	// Deleting an already deleted or unknown message returns nil.
	DeleteMessage(ctx context.Context, chatID, messageID int64) error

	// GetPinnedMessage returns the chat's current pinned message id, 0 when nothing is pinned
	GetPinnedMessage(ctx context.Context, chatID int64) (int64, error)

	// BotUsername returns the bot's own username (without @)
	BotUsername(ctx context.Context) (string, error)
}
