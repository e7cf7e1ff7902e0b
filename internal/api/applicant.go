package api

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/auth"
	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/models"
	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/store"
	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/telemetry"
	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/workflow"
)

type applyRequest struct {
	PostingID string `json:"posting_id"`
}

type applicationSummary struct {
	models.Application
	JobTitle string `json:"job_title,omitempty"`
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	var req applyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.PostingID == "" {
		http.Error(w, "posting_id is required", http.StatusBadRequest)
		return
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "rate limit error", http.StatusInternalServerError)
			return
		}
		if !allowed {
			telemetry.RateLimitRejects.Inc()
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
	}

	app, err := s.engine.Submit(r.Context(), claims.UserID, req.PostingID)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}
	telemetry.SubmissionsTotal.Inc()
	writeJSON(w, http.StatusCreated, app)
}

func (s *Server) handleMyApplications(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	apps, err := s.store.ListApplications(r.Context(), store.Filter{ApplicantID: claims.UserID})
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total":        len(apps),
		"applications": s.withTitles(r, apps),
	})
}

func (s *Server) handleMyApplicationDetail(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())
	id := chi.URLParam(r, "id")

	app, err := s.store.GetApplication(r.Context(), id)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}
	// Applicants only ever see their own applications.
	if app.ApplicantID != claims.UserID {
		http.Error(w, workflow.ErrNotFound.Error(), http.StatusNotFound)
		return
	}
	s.writeApplicationDetail(w, r, app)
}

func (s *Server) handleApplicantDashboard(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	counts, err := s.store.CountByStage(r.Context(), store.Filter{ApplicantID: claims.UserID})
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	apps, err := s.store.ListApplications(r.Context(), store.Filter{ApplicantID: claims.UserID})
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].AppliedAt.After(apps[j].AppliedAt) })
	if len(apps) > 5 {
		apps = apps[:5]
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total":           total(counts),
		"stage_breakdown": counts,
		"recent":          s.withTitles(r, apps),
	})
}

// withTitles decorates applications with their posting titles.
func (s *Server) withTitles(r *http.Request, apps []models.Application) []applicationSummary {
	out := make([]applicationSummary, 0, len(apps))
	for _, app := range apps {
		summary := applicationSummary{Application: app}
		if p, err := s.store.GetPosting(r.Context(), app.PostingID); err == nil {
			summary.JobTitle = p.Title
		}
		out = append(out, summary)
	}
	return out
}

// writeApplicationDetail responds with the application, its posting, and its
// audit history most recent first.
func (s *Server) writeApplicationDetail(w http.ResponseWriter, r *http.Request, app models.Application) {
	posting, err := s.store.GetPosting(r.Context(), app.PostingID)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}
	history, err := s.engine.History(r.Context(), app.ID)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"application": app,
		"posting":     posting,
		"history":     history,
	})
}

func total(counts map[string]int) int {
	n := 0
	for _, c := range counts {
		n += c
	}
	return n
}
