// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/leaguerank/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the League Rank MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"League Rank Prediction Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: predict_rankings ---
	s.AddTool(mcp.NewTool("predict_rankings",
		mcp.WithDescription("Predict the final league table for a season, with bootstrap confidence intervals and accuracy against known results."),
		mcp.WithNumber("year", mcp.Description("Season end year to predict. Defaults to the season after the latest one in the dataset.")),
		mcp.WithString("teams", mcp.Description("Comma-separated teams to predict. Defaults to the teams of that season, else of the season before.")),
		mcp.WithNumber("bootstrap", mcp.Description("Bootstrap iterations for confidence intervals (0 disables them).")),
		mcp.WithNumber("confidence", mcp.Description("Confidence level strictly between 0 and 1, e.g. 0.95.")),
	), h.handlePredictRankings)

	// --- 2. Tool: cross_validate ---
	s.AddTool(mcp.NewTool("cross_validate",
		mcp.WithDescription("Run temporal cross-validation of the rank model and report the r² of each fold."),
		mcp.WithString("folds", mcp.Description("Comma-separated folds as train_end:test_start-test_end, e.g. '2013:2014-2016,2016:2017-2019'.")),
	), h.handleCrossValidate)

	// --- 3. Tool: team_form ---
	s.AddTool(mcp.NewTool("team_form",
		mcp.WithDescription("Show a team's recency-weighted statistics and recent form trend ahead of a season."),
		mcp.WithString("team", mcp.Description("Team name as it appears in the dataset."), mcp.Required()),
		mcp.WithNumber("year", mcp.Description("Reference season end year. Defaults to the season after the latest one in the dataset.")),
	), h.handleTeamForm)

	// --- 4. Tool: list_runs ---
	s.AddTool(mcp.NewTool("list_runs",
		mcp.WithDescription("List recorded prediction runs, newest first."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of runs to return (default 20).")),
	), h.handleListRuns)

	return s
}

// StartMCPServer starts the League Rank MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
