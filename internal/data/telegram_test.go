package data

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elguiriashing/amsterdam/internal/biz/domain"
	"github.com/elguiriashing/amsterdam/internal/infra/telegram"
)

func TestToChatEvent(t *testing.T) {
	cases := []struct {
		name string
		in   telegram.Update
		want domain.ChatEvent
	}{
		{
			name: "message",
			in: telegram.Update{UpdateID: 1, Message: &telegram.Message{
				MessageID: 10, Chat: telegram.Chat{ID: -5}, From: &telegram.User{ID: 7}, Text: "hi",
			}},
			want: domain.ChatEvent{Seq: 1, Kind: domain.EventMessage, ChatID: -5, MessageID: 10, SenderID: 7, Text: "hi"},
		},
		{
			name: "channel post with caption",
			in: telegram.Update{UpdateID: 2, ChannelPost: &telegram.Message{
				MessageID: 11, Chat: telegram.Chat{ID: -6}, Caption: "photo",
			}},
			want: domain.ChatEvent{Seq: 2, Kind: domain.EventChannelPost, ChatID: -6, MessageID: 11, Text: "photo"},
		},
		{
			name: "pin notice",
			in: telegram.Update{UpdateID: 3, Message: &telegram.Message{
				MessageID: 12, Chat: telegram.Chat{ID: -5}, From: &telegram.User{ID: 7},
				PinnedMessage: &telegram.Message{MessageID: 4},
			}},
			want: domain.ChatEvent{Seq: 3, Kind: domain.EventPinNotice, ChatID: -5, MessageID: 12, SenderID: 7, PinnedMessageID: 4},
		},
		{
			name: "unsupported update",
			in:   telegram.Update{UpdateID: 4, EditedMessage: &telegram.Message{MessageID: 13}},
			want: domain.ChatEvent{Seq: 4, Kind: domain.EventOther},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, toChatEvent(tc.in))
		})
	}
}

func TestTelegramRepo_DeleteMessageGoneIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"ok": false, "error_code": 400, "description": "Bad Request: message to delete not found",
		})
	}))
	defer srv.Close()

	r := NewTelegramRepo(telegram.NewClient(srv.URL, "T", time.Second), "")
	assert.NoError(t, r.DeleteMessage(context.Background(), 1, 2))
}

func TestTelegramRepo_DeleteMessageOtherFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"ok": false, "error_code": 400, "description": "Bad Request: message can't be deleted",
		})
	}))
	defer srv.Close()

	r := NewTelegramRepo(telegram.NewClient(srv.URL, "T", time.Second), "")
	assert.Error(t, r.DeleteMessage(context.Background(), 1, 2))
}

func TestTelegramRepo_GetPinnedMessage(t *testing.T) {
	pinned := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/getChat"))
		result := map[string]interface{}{"id": -5, "type": "supergroup"}
		if pinned {
			result["pinned_message"] = map[string]interface{}{"message_id": 2, "chat": map[string]interface{}{"id": -5}}
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"ok": true, "result": result})
	}))
	defer srv.Close()

	r := NewTelegramRepo(telegram.NewClient(srv.URL, "T", time.Second), "")
	id, err := r.GetPinnedMessage(context.Background(), -5)
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)

	pinned = false
	id, err = r.GetPinnedMessage(context.Background(), -5)
	require.NoError(t, err)
	assert.Equal(t, int64(0), id)
}
