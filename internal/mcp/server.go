package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/elguiriashing/amsterdam/internal/api"
)

// Backend is the wipe bot's local API as used by the MCP tools
type Backend interface {
	Notify(text string) (int64, error)
	Wipe() (*api.WipeRun, error)
	Status() (*api.StatusResponse, error)
	SetSchedule(hours int, timeOfDay string) (*api.Schedule, error)
	ListWipes(limit int) ([]*api.WipeRun, error)
}

// WipeMCPServer exposes the wipe bot to MCP clients
type WipeMCPServer struct {
	server  *mcp.Server
	backend Backend
}

// NewServer creates a new MCP server backed by the bot's local API
func NewServer(backend Backend) *WipeMCPServer {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "wipebot-tools",
		Version: "v1.0.0",
	}, nil)

	s := &WipeMCPServer{
		server:  server,
		backend: backend,
	}
	s.registerTools()

	return s
}

func (s *WipeMCPServer) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "wipe_now",
		Description: "Delete every tracked message in the chat except the pinned one. Returns the wipe result.",
	}, s.handleWipeNow)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_status",
		Description: "Get bot uptime, tracked message count, the auto-wipe schedule and the last wipe.",
	}, s.handleGetStatus)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "send_notification",
		Description: "Post a notification to the chat. It deletes itself after the notification TTL (48h by default).",
	}, s.handleSendNotification)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "set_auto_wipe",
		Description: "Change the auto-wipe schedule: run every N hours (1-168) anchored at HH:MM.",
	}, s.handleSetAutoWipe)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_wipes",
		Description: "List recent wipe runs from the journal, newest first.",
	}, s.handleListWipes)
}

// WipeNowInput is the input for wipe_now tool
type WipeNowInput struct{}

// WipeNowOutput is the output for wipe_now tool
type WipeNowOutput struct {
	Success bool         `json:"success"`
	Run     *api.WipeRun `json:"run,omitempty"`
	Error   string       `json:"error,omitempty"`
}

func (s *WipeMCPServer) handleWipeNow(ctx context.Context, req *mcp.CallToolRequest, input WipeNowInput) (*mcp.CallToolResult, WipeNowOutput, error) {
	run, err := s.backend.Wipe()
	if err != nil {
		return nil, WipeNowOutput{Success: false, Error: err.Error()}, nil
	}
	return nil, WipeNowOutput{Success: true, Run: run}, nil
}

// GetStatusInput is the input for get_status tool
type GetStatusInput struct{}

// GetStatusOutput is the output for get_status tool
type GetStatusOutput struct {
	Status *api.StatusResponse `json:"status,omitempty"`
	Error  string              `json:"error,omitempty"`
}

func (s *WipeMCPServer) handleGetStatus(ctx context.Context, req *mcp.CallToolRequest, input GetStatusInput) (*mcp.CallToolResult, GetStatusOutput, error) {
	status, err := s.backend.Status()
	if err != nil {
		return nil, GetStatusOutput{Error: err.Error()}, nil
	}
	return nil, GetStatusOutput{Status: status}, nil
}

// SendNotificationInput is the input for send_notification tool
type SendNotificationInput struct {
	Text string `json:"text" jsonschema:"The notification text (HTML allowed)"`
}

// SendNotificationOutput is the output for send_notification tool
type SendNotificationOutput struct {
	Success   bool   `json:"success"`
	MessageID int64  `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

func (s *WipeMCPServer) handleSendNotification(ctx context.Context, req *mcp.CallToolRequest, input SendNotificationInput) (*mcp.CallToolResult, SendNotificationOutput, error) {
	if input.Text == "" {
		return nil, SendNotificationOutput{Success: false, Error: "text is required"}, nil
	}

	id, err := s.backend.Notify(input.Text)
	if err != nil {
		return nil, SendNotificationOutput{Success: false, Error: err.Error()}, nil
	}
	return nil, SendNotificationOutput{Success: true, MessageID: id}, nil
}

// SetAutoWipeInput is the input for set_auto_wipe tool
type SetAutoWipeInput struct {
	Hours int    `json:"hours" jsonschema:"Interval between wipes in hours, 1 to 168"`
	Time  string `json:"time" jsonschema:"Anchor time of day as HH:MM (24h)"`
}

// SetAutoWipeOutput is the output for set_auto_wipe tool
type SetAutoWipeOutput struct {
	Success  bool          `json:"success"`
	Schedule *api.Schedule `json:"schedule,omitempty"`
	Message  string        `json:"message,omitempty"`
	Error    string        `json:"error,omitempty"`
}

func (s *WipeMCPServer) handleSetAutoWipe(ctx context.Context, req *mcp.CallToolRequest, input SetAutoWipeInput) (*mcp.CallToolResult, SetAutoWipeOutput, error) {
	schedule, err := s.backend.SetSchedule(input.Hours, input.Time)
	if err != nil {
		return nil, SetAutoWipeOutput{Success: false, Error: err.Error()}, nil
	}
	return nil, SetAutoWipeOutput{
		Success:  true,
		Schedule: schedule,
		Message:  fmt.Sprintf("auto-wipe %s", schedule.Rule),
	}, nil
}

// ListWipesInput is the input for list_wipes tool
type ListWipesInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum number of runs to return (default 10)"`
}

// ListWipesOutput is the output for list_wipes tool
type ListWipesOutput struct {
	Wipes []*api.WipeRun `json:"wipes"`
	Error string         `json:"error,omitempty"`
}

func (s *WipeMCPServer) handleListWipes(ctx context.Context, req *mcp.CallToolRequest, input ListWipesInput) (*mcp.CallToolResult, ListWipesOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}

	runs, err := s.backend.ListWipes(limit)
	if err != nil {
		return nil, ListWipesOutput{Wipes: []*api.WipeRun{}, Error: err.Error()}, nil
	}
	if runs == nil {
		runs = []*api.WipeRun{}
	}
	return nil, ListWipesOutput{Wipes: runs}, nil
}

// Run starts the MCP server with stdio transport
func (s *WipeMCPServer) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// GetServer returns the underlying MCP server
func (s *WipeMCPServer) GetServer() *mcp.Server {
	return s.server
}
