package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/huangsam/hubstats/core"
	"github.com/huangsam/hubstats/internal/contract"
	"github.com/huangsam/hubstats/internal/iostore"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

// requestConfig clones the base config and applies the window and as_of arguments.
func (h *toolHandler) requestConfig(request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	if err := contract.RevalidateWindow(cfg, request.GetInt("window", 0), request.GetString("as_of", "")); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (h *toolHandler) handleGetDashboard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid dashboard parameters: %v", err)), nil
	}

	live := core.IsLiveDay(cfg, time.Now())
	d, err := core.BuildDashboard(ctx, cfg, h.mgr.GetSnapshotStore(), core.BuildSources(cfg), live)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("dashboard failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(d, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetSeries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	metric := request.GetString("metric", "")
	if metric == "" {
		return mcp.NewToolResultError("metric is required"), nil
	}
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid series parameters: %v", err)), nil
	}

	live := core.IsLiveDay(cfg, time.Now())
	rs, err := core.BuildSeries(ctx, cfg, h.mgr.GetSnapshotStore(), core.BuildSources(cfg), metric, live)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("series failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(rs, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

type metricListing struct {
	Configured []string `json:"configured"`
	Stored     []string `json:"stored"`
}

func (h *toolHandler) handleListMetrics(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	listing := metricListing{Configured: []string{}, Stored: []string{}}
	for _, m := range h.baseCfg.Metrics() {
		listing.Configured = append(listing.Configured, m.ID)
	}

	store := h.mgr.GetSnapshotStore()
	if store == nil {
		return mcp.NewToolResultError("snapshot store is not initialized"), nil
	}
	stored, err := store.ListMetrics(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list metrics: %v", err)), nil
	}
	if stored != nil {
		listing.Stored = slices.Clone(stored)
	}

	jsonData, _ := json.MarshalIndent(listing, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleStoreStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := iostore.GetStoreStatus(h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get store status: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(status, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
