package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is the HTTP client for the local API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			// A wipe answers only after every delete has been issued
			Timeout: 5 * time.Minute,
		},
	}
}

// LocalURL returns the base URL of the API on the given loopback port
func LocalURL(port int) string {
	return fmt.Sprintf("http://127.0.0.1:%d", port)
}

// StatusError is a non-2xx API reply
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Message)
}

// Notify posts a self-deleting notification to the chat
func (c *Client) Notify(text string) (int64, error) {
	var resp NotifyResponse
	if err := c.do(http.MethodPost, "/api/notify", NotifyRequest{Text: text}, &resp); err != nil {
		return 0, err
	}
	return resp.MessageID, nil
}

// Wipe triggers a wipe and waits for its result
func (c *Client) Wipe() (*WipeRun, error) {
	var run WipeRun
	if err := c.do(http.MethodPost, "/api/wipe", nil, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// Status gets the engine status
func (c *Client) Status() (*StatusResponse, error) {
	var status StatusResponse
	if err := c.do(http.MethodGet, "/api/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// SetSchedule replaces the auto-wipe schedule
func (c *Client) SetSchedule(hours int, timeOfDay string) (*Schedule, error) {
	var schedule Schedule
	if err := c.do(http.MethodPut, "/api/schedule", ScheduleRequest{Hours: hours, Time: timeOfDay}, &schedule); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// ListWipes lists recent journal entries, newest first
func (c *Client) ListWipes(limit int) ([]*WipeRun, error) {
	var resp WipesResponse
	if err := c.do(http.MethodGet, fmt.Sprintf("/api/wipes?limit=%d", limit), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Wipes, nil
}

func (c *Client) do(method, path string, body interface{}, result interface{}) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal body: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP %s failed: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		var apiErr ErrorResponse
		msg := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		return &StatusError{Code: resp.StatusCode, Message: msg}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
