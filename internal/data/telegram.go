package data

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/elguiriashing/amsterdam/internal/biz/domain"
	"github.com/elguiriashing/amsterdam/internal/biz/repo"
	"github.com/elguiriashing/amsterdam/internal/infra/telegram"
)

// telegramRepo implements the platform repository on the Bot API
type telegramRepo struct {
	client    *telegram.Client
	parseMode string
}

// NewTelegramRepo creates a new Telegram platform repository
func NewTelegramRepo(client *telegram.Client, parseMode string) repo.PlatformRepo {
	return &telegramRepo{client: client, parseMode: parseMode}
}

// GetUpdates fetches updates and resolves each into a ChatEvent
func (r *telegramRepo) GetUpdates(ctx context.Context, offset int64, limit int) ([]domain.ChatEvent, error) {
	updates, err := r.client.GetUpdates(ctx, offset, limit)
	if err != nil {
		return nil, err
	}

	events := make([]domain.ChatEvent, 0, len(updates))
	for _, u := range updates {
		events = append(events, toChatEvent(u))
	}
	return events, nil
}

// toChatEvent resolves the update's optional fields into a closed variant
func toChatEvent(u telegram.Update) domain.ChatEvent {
	ev := domain.ChatEvent{Seq: u.UpdateID, Kind: domain.EventOther}

	msg := u.Message
	kind := domain.EventMessage
	if msg == nil && u.ChannelPost != nil {
		msg = u.ChannelPost
		kind = domain.EventChannelPost
	}
	if msg == nil {
		return ev
	}

	ev.Kind = kind
	ev.ChatID = msg.Chat.ID
	ev.MessageID = msg.MessageID
	if msg.From != nil {
		ev.SenderID = msg.From.ID
	}
	ev.Text = msg.Text
	if ev.Text == "" {
		ev.Text = msg.Caption
	}
	if msg.PinnedMessage != nil {
		ev.Kind = domain.EventPinNotice
		ev.PinnedMessageID = msg.PinnedMessage.MessageID
	}
	return ev
}

// SendMessage sends a text message
func (r *telegramRepo) SendMessage(ctx context.Context, chatID int64, text string) (int64, error) {
	msg, err := r.client.SendMessage(ctx, chatID, text, r.parseMode)
	if err != nil {
		return 0, err
	}
	return msg.MessageID, nil
}

// DeleteMessage deletes a message; "already gone" counts as success
func (r *telegramRepo) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	err := r.client.DeleteMessage(ctx, chatID, messageID)
	if err != nil && telegram.IsMessageGone(err) {
		fmt.Printf("[Telegram] Message %d already gone\n", messageID)
		return nil
	}
	return err
}

// GetPinnedMessage looks up the chat's pinned message
func (r *telegramRepo) GetPinnedMessage(ctx context.Context, chatID int64) (int64, error) {
	chat, err := r.client.GetChat(ctx, chatID)
	if err != nil {
		return 0, errors.Wrap(err, "get pinned message")
	}
	if chat.PinnedMessage == nil {
		return 0, nil
	}
	return chat.PinnedMessage.MessageID, nil
}

// BotUsername returns the bot's username
func (r *telegramRepo) BotUsername(ctx context.Context) (string, error) {
	me, err := r.client.GetMe(ctx)
	if err != nil {
		return "", err
	}
	return me.Username, nil
}
