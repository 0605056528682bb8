package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/huangsam/leaguerank/core"
	"github.com/huangsam/leaguerank/internal/contract"
	"github.com/huangsam/leaguerank/schema"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// withDeadline applies the configured timeout to a request context.
func withDeadline(ctx context.Context, cfg *contract.Config) (context.Context, context.CancelFunc) {
	if cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, cfg.Timeout)
}

// loadSeasons reads the dataset and writes a 500 on failure.
func (s *Server) loadSeasons(ctx context.Context, w http.ResponseWriter, cfg *contract.Config) (schema.Seasons, bool) {
	records, err := core.LoadSeasons(ctx, cfg)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to load dataset: %v", err))
		return nil, false
	}
	return records, true
}

func (s *Server) handlePredictions(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	bootstrap, err := queryInt(r, "bootstrap", -1)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	confidence, err := queryFloat(r, "confidence", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfg := s.baseCfg.Clone()
	if err := contract.RevalidatePrediction(cfg, year, r.URL.Query().Get("teams"), bootstrap, confidence); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := withDeadline(r.Context(), cfg)
	defer cancel()
	records, ok := s.loadSeasons(ctx, w, cfg)
	if !ok {
		return
	}
	report, err := core.PredictSeason(ctx, records, core.NewPredictionRequest(cfg), s.mgr)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"run_id":          report.RunID,
		"prediction_year": report.PredictionYear,
		"rankings":        report.ComparisonRows(),
		"intervals":       report.Intervals,
		"summary":         report.Summary,
		"failures":        report.Failures,
		"unmatched":       report.Ranking.Unmatched,
	})
}

func (s *Server) handleValidation(w http.ResponseWriter, r *http.Request) {
	cfg := s.baseCfg.Clone()
	if err := contract.RevalidateFolds(cfg, r.URL.Query().Get("folds")); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := core.ValidateFolds(cfg.Folds); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := withDeadline(r.Context(), cfg)
	defer cancel()
	records, ok := s.loadSeasons(ctx, w, cfg)
	if !ok {
		return
	}
	req := core.NewPredictionRequest(cfg)
	report, err := core.CrossValidate(ctx, records, cfg.Folds, req.Model, cfg.Workers)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleTeamForm(w http.ResponseWriter, r *http.Request) {
	team, err := url.PathUnescape(chi.URLParam(r, "team"))
	if err != nil || team == "" {
		writeError(w, http.StatusBadRequest, "team is required")
		return
	}
	year, err := queryInt(r, "year", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	cfg := s.baseCfg.Clone()
	if err := contract.RevalidatePrediction(cfg, year, "", -1, 0); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, ok := s.loadSeasons(r.Context(), w, cfg)
	if !ok {
		return
	}
	form, err := core.TeamFormReport(records, team, cfg.PredictionYear)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusUnprocessableEntity {
			status = http.StatusNotFound
		}
		writeError(w, status, fmt.Sprintf("no form for %s: %v", team, err))
		return
	}
	writeJSON(w, http.StatusOK, form)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.mgr == nil || s.mgr.GetRunStore() == nil {
		writeError(w, http.StatusNotFound, "run tracking is disabled")
		return
	}
	limit, err := queryInt(r, "limit", defaultRunLimit)
	if err != nil || limit < 0 {
		writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
		return
	}
	runs, err := s.mgr.GetRunStore().ListRuns(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list runs: %v", err))
		return
	}
	if runs == nil {
		runs = []schema.PredictionRunRecord{}
	}
	writeJSON(w, http.StatusOK, runs)
}
