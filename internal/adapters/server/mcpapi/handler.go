// Package mcpapi provides a stateless MCP streamable-HTTP adapter exposing
// schedule resolution tools.
package mcpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/raceday/pitstop/internal/adapters/server/common"
)

// Config captures MCP transport configuration.
type Config struct {
	ServerName    string
	ServerVersion string
	EndpointPath  string
}

// Handler wraps one stateless MCP streamable HTTP handler.
type Handler struct {
	httpHandler http.Handler
}

// NewHandler builds one stateless MCP adapter exposing resolve, explain,
// compare, and list tools over the schedule service.
func NewHandler(cfg Config, schedules common.ScheduleService) (*Handler, error) {
	if schedules == nil {
		return nil, fmt.Errorf("schedule service is required")
	}
	cfg = normalizeConfig(cfg)

	mcpSrv := mcpserver.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		mcpserver.WithToolCapabilities(false),
	)
	registerResolveTool(mcpSrv, schedules)
	registerExplainTool(mcpSrv, schedules)
	registerCompareTool(mcpSrv, schedules)
	registerListTool(mcpSrv, schedules)

	streamable := mcpserver.NewStreamableHTTPServer(
		mcpSrv,
		mcpserver.WithEndpointPath(cfg.EndpointPath),
		mcpserver.WithStateLess(true),
	)
	return &Handler{httpHandler: streamable}, nil
}

// ServeHTTP handles one MCP streamable HTTP request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.httpHandler == nil {
		http.Error(w, "mcp handler unavailable", http.StatusServiceUnavailable)
		return
	}
	h.httpHandler.ServeHTTP(w, r)
}

// normalizeConfig applies deterministic defaults to MCP adapter config.
func normalizeConfig(cfg Config) Config {
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "pitstop"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	cfg.EndpointPath = strings.TrimSpace(cfg.EndpointPath)
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/mcp"
	}
	if !strings.HasPrefix(cfg.EndpointPath, "/") {
		cfg.EndpointPath = "/" + cfg.EndpointPath
	}
	cfg.EndpointPath = "/" + strings.Trim(cfg.EndpointPath, "/")
	return cfg
}

// registerResolveTool registers the `pitstop.resolve` tool.
func registerResolveTool(srv *mcpserver.MCPServer, schedules common.ScheduleService) {
	srv.AddTool(
		mcp.NewTool(
			"pitstop.resolve",
			mcp.WithDescription("Resolve one fork into its flattened gas schedule, including provenance."),
			mcp.WithString("fork", mcp.Required(), mcp.Description("Fork identifier")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			fork, err := req.RequireString("fork")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			schedule, err := schedules.Resolve(fork)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			result, err := mcp.NewToolResultJSON(schedule)
			if err != nil {
				return nil, fmt.Errorf("encode resolve result: %w", err)
			}
			return result, nil
		},
	)
}

// registerExplainTool registers the `pitstop.explain` tool.
func registerExplainTool(srv *mcpserver.MCPServer, schedules common.ScheduleService) {
	srv.AddTool(
		mcp.NewTool(
			"pitstop.explain",
			mcp.WithDescription("Return the ordered write history for one (category, member) key of a fork's schedule."),
			mcp.WithString("fork", mcp.Required(), mcp.Description("Fork identifier")),
			mcp.WithString("category", mcp.Required(), mcp.Description("Category name")),
			mcp.WithString("member", mcp.Required(), mcp.Description("Member name")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			fork, err := req.RequireString("fork")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			category, err := req.RequireString("category")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			member, err := req.RequireString("member")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			chain, err := schedules.Explain(fork, category, member)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{
				"fork":     fork,
				"category": category,
				"member":   member,
				"trace":    chain,
			})
			if err != nil {
				return nil, fmt.Errorf("encode explain result: %w", err)
			}
			return result, nil
		},
	)
}

// registerCompareTool registers the `pitstop.compare` tool.
func registerCompareTool(srv *mcpserver.MCPServer, schedules common.ScheduleService) {
	srv.AddTool(
		mcp.NewTool(
			"pitstop.compare",
			mcp.WithDescription("Diff two forks' resolved schedules category by category."),
			mcp.WithString("left", mcp.Required(), mcp.Description("Left fork identifier")),
			mcp.WithString("right", mcp.Required(), mcp.Description("Right fork identifier")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			left, err := req.RequireString("left")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			right, err := req.RequireString("right")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			comparison, err := common.CompareForks(schedules, left, right)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			result, err := mcp.NewToolResultJSON(comparison)
			if err != nil {
				return nil, fmt.Errorf("encode compare result: %w", err)
			}
			return result, nil
		},
	)
}

// registerListTool registers the `pitstop.list` tool.
func registerListTool(srv *mcpserver.MCPServer, schedules common.ScheduleService) {
	srv.AddTool(
		mcp.NewTool(
			"pitstop.list",
			mcp.WithDescription("List the loaded fork and change ids."),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			result, err := mcp.NewToolResultJSON(map[string][]string{
				"forks":   schedules.ForkIDs(),
				"changes": schedules.ChangeIDsLoaded(),
			})
			if err != nil {
				return nil, fmt.Errorf("encode list result: %w", err)
			}
			return result, nil
		},
	)
}
