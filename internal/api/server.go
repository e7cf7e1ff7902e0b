package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/auth"
	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/config"
	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/models"
	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/pipeline"
	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/ratelimit"
	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/store"
	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/telemetry"
	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/workflow"
)

// Server wires HTTP handlers around the workflow engine.
type Server struct {
	cfg      config.Config
	store    store.Store
	engine   *workflow.Engine
	pipeline *pipeline.Pipeline
	tokens   *auth.TokenService
	limiter  *ratelimit.Limiter
}

// New constructs the API server. limiter may be nil to disable submission
// throttling.
func New(cfg config.Config, st store.Store, engine *workflow.Engine, pl *pipeline.Pipeline, tokens *auth.TokenService, limiter *ratelimit.Limiter) *Server {
	return &Server{
		cfg:      cfg,
		store:    st,
		engine:   engine,
		pipeline: pl,
		tokens:   tokens,
		limiter:  limiter,
	}
}

// Router builds the HTTP router. Each actor gets its own role-gated subtree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Mount("/metrics", telemetry.Handler())

	r.Post("/auth/login", s.handleLogin)

	r.Route("/applicant", func(r chi.Router) {
		r.Use(auth.RequireRole(s.tokens, models.RoleApplicant))
		r.Post("/apply", s.handleApply)
		r.Get("/applications", s.handleMyApplications)
		r.Get("/applications/{id}", s.handleMyApplicationDetail)
		r.Get("/dashboard", s.handleApplicantDashboard)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(auth.RequireRole(s.tokens, models.RoleAdmin))
		r.Get("/applications", s.handleAdminApplications)
		r.Get("/applications/{id}", s.handleAdminApplicationDetail)
		r.Put("/applications/{id}/stage", s.handleAdminUpdateStage)
		r.Post("/postings", s.handleCreatePosting)
		r.Get("/postings", s.handleListPostings)
		r.Get("/dashboard", s.handleAdminDashboard)
	})

	r.Route("/bot", func(r chi.Router) {
		r.Use(auth.RequireRole(s.tokens, models.RoleAutomation))
		r.Get("/applications", s.handleBotApplications)
		r.Post("/steps/{from}", s.handleBotStep)
		r.Put("/applications/{id}", s.handleBotUpdate)
		r.Get("/statistics", s.handleBotStatistics)
	})

	return r
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	user, ok := auth.Authenticate(req.Username, req.Password)
	if !ok {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	token, err := s.tokens.Generate(user)
	if err != nil {
		http.Error(w, "token generation failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token, Username: user.Username, Role: string(user.Role)})
}

// writeWorkflowError maps the engine's taxonomy onto HTTP statuses.
func writeWorkflowError(w http.ResponseWriter, err error) {
	switch {
	case workflow.IsForbidden(err):
		telemetry.TransitionsDenied.Inc()
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, workflow.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, workflow.ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, workflow.ErrInvalidStage):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
