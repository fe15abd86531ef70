// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/hubstats/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the hubstats MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"hubstats",
		version,
		server.WithToolCapabilities(false),
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: get_dashboard ---
	s.AddTool(mcp.NewTool("get_dashboard",
		mcp.WithDescription("Render Docker Hub pulls and GitHub stars for every tracked repository over a trailing window of days."),
		mcp.WithNumber("window", mcp.Description("Number of calendar days to render (defaults to the configured window).")),
		mcp.WithString("as_of", mcp.Description("Last day of the window as YYYY-MM-DD (defaults to today, UTC).")),
		mcp.WithReadOnlyHintAnnotation(true),
	), h.handleGetDashboard)

	// --- 2. Tool: get_series ---
	s.AddTool(mcp.NewTool("get_series",
		mcp.WithDescription("Render the daily totals and deltas of a single metric."),
		mcp.WithString("metric", mcp.Description("Metric id, e.g. 'pulls:jhumanj/opnform-api' or 'stars:opnform/opnform'."), mcp.Required()),
		mcp.WithNumber("window", mcp.Description("Number of calendar days to render.")),
		mcp.WithString("as_of", mcp.Description("Last day of the window as YYYY-MM-DD.")),
		mcp.WithReadOnlyHintAnnotation(true),
	), h.handleGetSeries)

	// --- 3. Tool: list_metrics ---
	s.AddTool(mcp.NewTool("list_metrics",
		mcp.WithDescription("List configured metrics and metrics with stored snapshots."),
		mcp.WithReadOnlyHintAnnotation(true),
	), h.handleListMetrics)

	// --- 4. Tool: store_status ---
	s.AddTool(mcp.NewTool("store_status",
		mcp.WithDescription("Report snapshot counts, date range, ingestion runs and schema version of the store."),
		mcp.WithReadOnlyHintAnnotation(true),
	), h.handleStoreStatus)

	return s
}

// StartMCPServer serves the hubstats tools over stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager, version string) error {
	s := NewMCPServer(baseCfg, mgr, version)
	return server.ServeStdio(s)
}
