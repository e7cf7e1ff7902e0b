package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/models"
	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/store"
	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/telemetry"
)

func (s *Server) handleAdminApplications(w http.ResponseWriter, r *http.Request) {
	f := store.Filter{Stage: r.URL.Query().Get("stage")}
	if r.URL.Query().Get("classification") == "non-technical" {
		f.Technical = store.NonTechnicalOnly()
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

func (s *Server) handleAdminApplicationDetail(w http.ResponseWriter, r *http.Request) {
	app, err := s.store.GetApplication(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeWorkflowError(w, err)
		return
	}
	s.writeApplicationDetail(w, r, app)
}

type updateStageRequest struct {
	Stage   string `json:"stage"`
	Comment string `json:"comment"`
}

func (s *Server) handleAdminUpdateStage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req updateStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	rec, err := s.engine.Transition(r.Context(), id, req.Stage, models.RoleAdmin, req.Comment)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}
	telemetry.TransitionsTotal.WithLabelValues(string(models.RoleAdmin)).Inc()
	writeJSON(w, http.StatusOK, rec)
}

type createPostingRequest struct {
	Title     string `json:"title"`
	Technical bool   `json:"technical"`
}

func (s *Server) handleCreatePosting(w http.ResponseWriter, r *http.Request) {
	var req createPostingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Title == "" {
		http.Error(w, "title is required", http.StatusBadRequest)
		return
	}
	p := models.Posting{
		ID:        uuid.New().String(),
		Title:     req.Title,
		Technical: req.Technical,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreatePosting(r.Context(), p); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleListPostings(w http.ResponseWriter, r *http.Request) {
	postings, err := s.store.ListPostings(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total":    len(postings),
		"postings": postings,
	})
}

func (s *Server) handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	all, err := s.store.CountByStage(r.Context(), store.Filter{})
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	technical, err := s.store.CountByStage(r.Context(), store.Filter{Technical: store.TechnicalOnly()})
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	postings, err := s.store.ListPostings(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total_applications":         total(all),
		"technical_applications":     total(technical),
		"non_technical_applications": total(all) - total(technical),
		"stage_breakdown":            all,
		"postings":                   len(postings),
	})
}
