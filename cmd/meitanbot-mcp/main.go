// meitanbot-mcp exposes a running bot's admin API as MCP tools over stdio
//
// Usage:
//
//	ADMIN_URL=http://127.0.0.1:4300 ADMIN_TOKEN=... meitanbot-mcp
package main

import (
	"fmt"
	"os"

	"meitanbot/internal/platform/config"
	"meitanbot/internal/platform/logger"

	"github.com/mark3labs/mcp-go/server"
)

// Version is reported to MCP clients
var Version = "dev"

func main() {
	// stdout belongs to the MCP transport
	opt := logger.FromEnv()
	opt.Writer = os.Stderr
	opt.Component = "mcp"
	logger.Init(opt)

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	c := clientFromEnv(config.New())
	logger.Get().Info().Str("admin_url", c.base).Bool("token", c.token != "").Msg("serving mcp on stdio")
	return server.ServeStdio(newServer(c))
}

func newServer(c *adminClient) *server.MCPServer {
	s := server.NewMCPServer(
		"meitanbot",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)
	status := &StatusTool{c: c}
	s.AddTool(status.Definition(), status.Handle)
	stats := &StatsTool{c: c}
	s.AddTool(stats.Definition(), stats.Handle)
	cmd := &CommandTool{c: c}
	s.AddTool(cmd.Definition(), cmd.Handle)
	return s
}
