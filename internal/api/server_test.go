package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/api"
	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/auth"
	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/config"
	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/models"
	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/pipeline"
	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/store"
	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/workflow"
)

type testServer struct {
	handler http.Handler
	store   *store.Memory
	tech    models.Posting
	hr      models.Posting
	tokens  map[models.Role]string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := config.Config{Env: "test", JWTSigningKey: "test-key", JWTIssuer: "ats-test", JWTTTL: time.Hour}
	st := store.NewMemory()
	engine := workflow.NewEngine(st)
	pl := pipeline.New(engine, st)
	tokens := auth.NewTokenService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTTTL)

	ts := &testServer{
		handler: api.New(cfg, st, engine, pl, tokens, nil).Router(),
		store:   st,
		tech:    models.Posting{ID: uuid.New().String(), Title: "Senior Software Engineer", Technical: true, CreatedAt: time.Now().UTC()},
		hr:      models.Posting{ID: uuid.New().String(), Title: "HR Executive", Technical: false, CreatedAt: time.Now().UTC()},
		tokens:  make(map[models.Role]string),
	}
	require.NoError(t, st.CreatePosting(context.Background(), ts.tech))
	require.NoError(t, st.CreatePosting(context.Background(), ts.hr))

	for _, cred := range []struct {
		username, password string
		role               models.Role
	}{
		{"applicant1", "password1", models.RoleApplicant},
		{"botmimic", "password2", models.RoleAutomation},
		{"admin", "password3", models.RoleAdmin},
	} {
		user, ok := auth.Authenticate(cred.username, cred.password)
		require.True(t, ok)
		token, err := tokens.Generate(user)
		require.NoError(t, err)
		ts.tokens[cred.role] = token
	}
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, role models.Role, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if role != "" {
		req.Header.Set("Authorization", "Bearer "+ts.tokens[role])
	}
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func (ts *testServer) apply(t *testing.T, postingID string) models.Application {
	t.Helper()
	rr := ts.do(t, http.MethodPost, "/applicant/apply", models.RoleApplicant, map[string]string{"posting_id": postingID})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[models.Application](t, rr)
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(t, http.MethodPost, "/auth/login", "", map[string]string{"username": "admin", "password": "password3"})
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[map[string]string](t, rr)
	assert.NotEmpty(t, resp["token"])
	assert.Equal(t, "Admin", resp["role"])

	rr = ts.do(t, http.MethodPost, "/auth/login", "", map[string]string{"username": "admin", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRoleGates(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(t, http.MethodGet, "/admin/applications", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code, "no token")

	rr = ts.do(t, http.MethodGet, "/admin/applications", models.RoleApplicant, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code, "wrong role")

	rr = ts.do(t, http.MethodGet, "/admin/applications", models.RoleAdmin, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestApplyAndDuplicate(t *testing.T) {
	ts := newTestServer(t)

	app := ts.apply(t, ts.hr.ID)
	assert.Equal(t, workflow.StageApplied, app.Stage)

	rr := ts.do(t, http.MethodPost, "/applicant/apply", models.RoleApplicant, map[string]string{"posting_id": ts.hr.ID})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = ts.do(t, http.MethodPost, "/applicant/apply", models.RoleApplicant, map[string]string{"posting_id": uuid.New().String()})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAdminManualTransition(t *testing.T) {
	ts := newTestServer(t)
	app := ts.apply(t, ts.hr.ID)

	rr := ts.do(t, http.MethodPut, "/admin/applications/"+app.ID+"/stage", models.RoleAdmin,
		map[string]string{"stage": "Rejected", "comment": "not a fit"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	rec := decode[models.TransitionRecord](t, rr)
	assert.Equal(t, "Rejected", rec.ToStage)
	assert.Equal(t, models.RoleAdmin, rec.Actor)

	got, err := ts.store.GetApplication(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rejected", got.Stage)
}

func TestAdminBlockedOnTechnical(t *testing.T) {
	ts := newTestServer(t)
	app := ts.apply(t, ts.tech.ID)

	rr := ts.do(t, http.MethodPut, "/admin/applications/"+app.ID+"/stage", models.RoleAdmin,
		map[string]string{"stage": workflow.StageUnderReview})
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "automation-managed")
}

func TestBotStepAndOutOfOrderUpdate(t *testing.T) {
	ts := newTestServer(t)
	app := ts.apply(t, ts.tech.ID)

	rr := ts.do(t, http.MethodPost, "/bot/steps/"+workflow.StageApplied, models.RoleAutomation, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	resp := decode[map[string]any](t, rr)
	assert.Equal(t, float64(1), resp["advanced"])
	assert.Equal(t, workflow.StageUnderReview, resp["to"])

	// Skipping TechnicalAssessment is an out-of-order automated transition.
	rr = ts.do(t, http.MethodPut, "/bot/applications/"+app.ID, models.RoleAutomation,
		map[string]string{"stage": workflow.StageInterview})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	got, err := ts.store.GetApplication(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.StageUnderReview, got.Stage)

	// The exact next stage goes through.
	rr = ts.do(t, http.MethodPut, "/bot/applications/"+app.ID, models.RoleAutomation,
		map[string]string{"stage": workflow.StageTechnicalAssessment})
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestBotStepUnknownStage(t *testing.T) {
	ts := newTestServer(t)
	rr := ts.do(t, http.MethodPost, "/bot/steps/Rejected", models.RoleAutomation, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestApplicationDetailOwnershipAndHistory(t *testing.T) {
	ts := newTestServer(t)
	app := ts.apply(t, ts.hr.ID)

	rr := ts.do(t, http.MethodPut, "/admin/applications/"+app.ID+"/stage", models.RoleAdmin,
		map[string]string{"stage": "Screening"})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.do(t, http.MethodGet, "/applicant/applications/"+app.ID, models.RoleApplicant, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	detail := decode[struct {
		History []models.TransitionRecord `json:"history"`
	}](t, rr)
	require.Len(t, detail.History, 2)
	assert.Equal(t, "Screening", detail.History[0].ToStage, "most recent first")
	assert.Equal(t, workflow.StageApplied, detail.History[1].ToStage)

	// Another applicant's application reads as not found.
	other := models.Application{ID: uuid.New().String(), ApplicantID: "someone-else", PostingID: ts.hr.ID, Stage: workflow.StageApplied, AppliedAt: time.Now().UTC()}
	require.NoError(t, ts.store.CreateApplication(context.Background(), other,
		models.TransitionRecord{ApplicationID: other.ID, ToStage: workflow.StageApplied, Actor: models.RoleSystem, RecordedAt: other.AppliedAt}))
	rr = ts.do(t, http.MethodGet, "/applicant/applications/"+other.ID, models.RoleApplicant, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestPostingsAndDashboards(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(t, http.MethodPost, "/admin/postings", models.RoleAdmin,
		map[string]any{"title": "Data Engineer", "technical": true})
	require.Equal(t, http.StatusCreated, rr.Code)
	posting := decode[models.Posting](t, rr)
	assert.True(t, posting.Technical)

	rr = ts.do(t, http.MethodGet, "/admin/postings", models.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	listing := decode[map[string]any](t, rr)
	assert.Equal(t, float64(3), listing["total"])

	ts.apply(t, ts.tech.ID)

	rr = ts.do(t, http.MethodGet, "/admin/dashboard", models.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	dash := decode[map[string]any](t, rr)
	assert.Equal(t, float64(1), dash["total_applications"])
	assert.Equal(t, float64(1), dash["technical_applications"])

	rr = ts.do(t, http.MethodGet, "/bot/statistics", models.RoleAutomation, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	stats := decode[map[string]any](t, rr)
	assert.Equal(t, float64(1), stats["total_technical"])

	rr = ts.do(t, http.MethodGet, "/applicant/dashboard", models.RoleApplicant, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	appDash := decode[map[string]any](t, rr)
	assert.Equal(t, float64(1), appDash["total"])
}
