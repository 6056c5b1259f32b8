package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// StatusTool handles bot_status
type StatusTool struct{ c *adminClient }

// Definition returns the bot_status schema
func (t *StatusTool) Definition() mcp.Tool {
	return mcp.NewTool("bot_status",
		mcp.WithDescription("Show stream connection state, runtime flags and queue depths of the running bot."),
	)
}

// Handle fetches /status
func (t *StatusTool) Handle(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := t.c.get(ctx, "/status")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get status: %v", err)), nil
	}
	return mcp.NewToolResultText(pretty(data)), nil
}

// StatsTool handles bot_stats
type StatsTool struct{ c *adminClient }

// Definition returns the bot_stats schema
func (t *StatsTool) Definition() mcp.Tool {
	return mcp.NewTool("bot_stats",
		mcp.WithDescription("Show live counters, or the most recent persisted snapshot when latest is set."),
		mcp.WithBoolean("latest",
			mcp.Description("Read the persisted snapshot instead of live counters"),
		),
	)
}

// Handle fetches /stats or /stats/latest
func (t *StatsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := "/stats"
	if boolArg(req, "latest", false) {
		path = "/stats/latest"
	}
	data, err := t.c.get(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get stats: %v", err)), nil
	}
	return mcp.NewToolResultText(pretty(data)), nil
}

// CommandTool handles bot_command
type CommandTool struct{ c *adminClient }

// Definition returns the bot_command schema
func (t *CommandTool) Definition() mcp.Tool {
	return mcp.NewTool("bot_command",
		mcp.WithDescription(
			"Run an owner command on the bot, e.g. ping, status, posting false, ignore someone, reload. "+
				"Arguments are space separated.",
		),
		mcp.WithString("command",
			mcp.Required(),
			mcp.Description("Command name"),
		),
		mcp.WithString("args",
			mcp.Description("Space separated arguments"),
		),
		mcp.WithBoolean("reply_to_owner",
			mcp.Description("Also send the confirmation to the owner by direct message"),
		),
	)
}

type commandBody struct {
	Command      string   `json:"command"`
	Args         []string `json:"args"`
	ReplyToOwner bool     `json:"reply_to_owner"`
}

type commandResult struct {
	Command string `json:"command"`
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Handle posts to /commands
func (t *CommandTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := strings.TrimSpace(req.GetString("command", ""))
	if name == "" {
		return mcp.NewToolResultError("command is required"), nil
	}
	body := commandBody{
		Command:      name,
		Args:         strings.Fields(req.GetString("args", "")),
		ReplyToOwner: boolArg(req, "reply_to_owner", false),
	}
	data, err := t.c.post(ctx, "/commands", body)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("command failed: %v", err)), nil
	}
	var res commandResult
	if err := json.Unmarshal(data, &res); err != nil {
		return mcp.NewToolResultText(pretty(data)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s: %s", res.Command, res.Message)), nil
}

func boolArg(req mcp.CallToolRequest, key string, def bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return def
	}
	return v
}

func pretty(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
