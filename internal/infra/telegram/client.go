package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	DefaultBaseURL = "https://api.telegram.org"
	DefaultTimeout = 15 * time.Second

	ParseModeHTML = "HTML"
)

// User is a Bot API user
type User struct {
	ID       int64  `json:"id"`
	IsBot    bool   `json:"is_bot"`
	Username string `json:"username,omitempty"`
}

// Chat is a Bot API chat
type Chat struct {
	ID            int64    `json:"id"`
	Type          string   `json:"type"` // private, group, supergroup, channel
	Title         string   `json:"title,omitempty"`
	PinnedMessage *Message `json:"pinned_message,omitempty"`
}

// Message is a Bot API message
type Message struct {
	MessageID     int64    `json:"message_id"`
	From          *User    `json:"from,omitempty"`
	SenderChat    *Chat    `json:"sender_chat,omitempty"`
	Chat          Chat     `json:"chat"`
	Date          int64    `json:"date"`
	Text          string   `json:"text,omitempty"`
	Caption       string   `json:"caption,omitempty"`
	PinnedMessage *Message `json:"pinned_message,omitempty"`
}

// Update is one entry of the getUpdates stream
type Update struct {
	UpdateID          int64    `json:"update_id"`
	Message           *Message `json:"message,omitempty"`
	EditedMessage     *Message `json:"edited_message,omitempty"`
	ChannelPost       *Message `json:"channel_post,omitempty"`
	EditedChannelPost *Message `json:"edited_channel_post,omitempty"`
}

// APIError is a rejection reported by the Bot API (ok=false)
type APIError struct {
	Method      string
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram %s: %d %s", e.Method, e.Code, e.Description)
}

// IsMessageGone reports whether err means the target message no longer exists
func IsMessageGone(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	desc := strings.ToLower(apiErr.Description)
	return apiErr.Code == http.StatusBadRequest &&
		(strings.Contains(desc, "message to delete not found") ||
			strings.Contains(desc, "message_id_invalid"))
}

// Client is the Bot API HTTP client
type Client struct {
	baseURL    string
	token      string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient creates a new Bot API client. Every call is bounded by timeout.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		timeout:    timeout,
		httpClient: &http.Client{},
	}
}

type envelope struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
}

// call posts params as JSON to the method endpoint and decodes the result
func (c *Client) call(ctx context.Context, method string, params interface{}, result interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(params)
	if err != nil {
		return errors.Wrapf(err, "telegram %s: marshal params", method)
	}

	endpoint := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.Errorf("telegram %s: build request", method)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// url.Error carries the endpoint, which embeds the token
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return errors.Wrapf(err, "telegram %s", method)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "telegram %s: read body", method)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return errors.Errorf("telegram %s: HTTP %d: undecodable response", method, resp.StatusCode)
	}
	if !env.OK {
		code := env.ErrorCode
		if code == 0 {
			code = resp.StatusCode
		}
		return &APIError{Method: method, Code: code, Description: env.Description}
	}

	if result != nil {
		if err := json.Unmarshal(env.Result, result); err != nil {
			return errors.Wrapf(err, "telegram %s: decode result", method)
		}
	}
	return nil
}

// GetUpdates fetches pending updates. offset 0 is omitted; a negative offset counts from the newest.
func (c *Client) GetUpdates(ctx context.Context, offset int64, limit int) ([]Update, error) {
	params := map[string]interface{}{
		"limit":           limit,
		"timeout":         0,
		"allowed_updates": []string{"message", "channel_post"},
	}
	if offset != 0 {
		params["offset"] = offset
	}

	var updates []Update
	if err := c.call(ctx, "getUpdates", params, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// SendMessage sends a text message
func (c *Client) SendMessage(ctx context.Context, chatID int64, text, parseMode string) (*Message, error) {
	params := map[string]interface{}{
		"chat_id":                  chatID,
		"text":                     text,
		"disable_web_page_preview": true,
	}
	if parseMode != "" {
		params["parse_mode"] = parseMode
	}

	var msg Message
	if err := c.call(ctx, "sendMessage", params, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// DeleteMessage deletes a message
func (c *Client) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	params := map[string]interface{}{
		"chat_id":    chatID,
		"message_id": messageID,
	}
	return c.call(ctx, "deleteMessage", params, nil)
}

// GetChat fetches chat info, including the pinned message
func (c *Client) GetChat(ctx context.Context, chatID int64) (*Chat, error) {
	var chat Chat
	if err := c.call(ctx, "getChat", map[string]interface{}{"chat_id": chatID}, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

// GetMe fetches the bot's own user
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	var me User
	if err := c.call(ctx, "getMe", map[string]interface{}{}, &me); err != nil {
		return nil, err
	}
	return &me, nil
}
