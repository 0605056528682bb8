package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/leaguerank/core"
	"github.com/huangsam/leaguerank/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
)

// defaultRunLimit caps list_runs when no limit is given.
const defaultRunLimit = 20

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

// jsonResult encodes v as an indented JSON text result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handlePredictRankings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	err := contract.RevalidatePrediction(cfg,
		request.GetInt("year", 0),
		request.GetString("teams", ""),
		request.GetInt("bootstrap", -1),
		request.GetFloat("confidence", 0),
	)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid prediction parameters: %v", err)), nil
	}

	records, err := core.LoadSeasons(ctx, cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load dataset: %v", err)), nil
	}
	report, err := core.PredictSeason(ctx, records, core.NewPredictionRequest(cfg), h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("prediction failed: %v", err)), nil
	}

	return jsonResult(map[string]any{
		"run_id":          report.RunID,
		"prediction_year": report.PredictionYear,
		"rankings":        report.ComparisonRows(),
		"summary":         report.Summary,
		"failures":        report.Failures,
	})
}

func (h *toolHandler) handleCrossValidate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if err := contract.RevalidateFolds(cfg, request.GetString("folds", "")); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := core.ValidateFolds(cfg.Folds); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid folds: %v", err)), nil
	}

	records, err := core.LoadSeasons(ctx, cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load dataset: %v", err)), nil
	}
	req := core.NewPredictionRequest(cfg)
	report, err := core.CrossValidate(ctx, records, cfg.Folds, req.Model, cfg.Workers)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cross validation failed: %v", err)), nil
	}
	return jsonResult(report)
}

func (h *toolHandler) handleTeamForm(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	team, err := request.RequireString("team")
	if err != nil || team == "" {
		return mcp.NewToolResultError("team is required"), nil
	}
	cfg := h.baseCfg.Clone()
	if err := contract.RevalidatePrediction(cfg, request.GetInt("year", 0), "", -1, 0); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	records, err := core.LoadSeasons(ctx, cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load dataset: %v", err)), nil
	}
	form, err := core.TeamFormReport(records, team, cfg.PredictionYear)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("no form for %s: %v", team, err)), nil
	}
	return jsonResult(form)
}

func (h *toolHandler) handleListRuns(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.mgr == nil || h.mgr.GetRunStore() == nil {
		return mcp.NewToolResultError("run tracking is disabled (set --runs-backend)"), nil
	}
	limit := request.GetInt("limit", defaultRunLimit)
	if limit <= 0 {
		limit = defaultRunLimit
	}
	runs, err := h.mgr.GetRunStore().ListRuns(limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list runs: %v", err)), nil
	}
	return jsonResult(runs)
}
