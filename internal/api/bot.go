package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/models"
	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/store"
	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/telemetry"
	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/workflow"
)

func (s *Server) handleBotApplications(w http.ResponseWriter, r *http.Request) {
	f := store.Filter{
		Stage:     r.URL.Query().Get("stage"),
		Technical: store.TechnicalOnly(),
	}
	apps, err := s.store.ListApplications(r.Context(), f)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total":        len(apps),
		"applications": s.withTitles(r, apps),
	})
}

// handleBotStep runs one bulk advancement step. The path segment names the
// stage the step starts from; the target is always the next stage in the
// chain.
func (s *Server) handleBotStep(w http.ResponseWriter, r *http.Request) {
	from := chi.URLParam(r, "from")
	advanced, err := s.pipeline.AdvanceAll(r.Context(), from)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}
	next, _ := workflow.NextStage(from)
	writeJSON(w, http.StatusOK, map[string]any{
		"from":     from,
		"to":       next,
		"advanced": advanced,
	})
}

// handleBotUpdate applies a single automated transition. The authorizer holds
// it to the one ordered step after the application's current stage.
func (s *Server) handleBotUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req updateStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	rec, err := s.engine.Transition(r.Context(), id, req.Stage, models.RoleAutomation, req.Comment)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}
	telemetry.TransitionsTotal.WithLabelValues(string(models.RoleAutomation)).Inc()
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleBotStatistics(w http.ResponseWriter, r *http.Request) {
	counts, err := s.store.CountByStage(r.Context(), store.Filter{Technical: store.TechnicalOnly()})
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total_technical": total(counts),
		"stage_breakdown": counts,
	})
}
