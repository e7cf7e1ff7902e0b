package pipeline_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/models"
	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/pipeline"
	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/store"
	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/workflow"
)

type fixture struct {
	store    *store.Memory
	engine   *workflow.Engine
	pipeline *pipeline.Pipeline
	tech     models.Posting
	hr       models.Posting
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := store.NewMemory()
	engine := workflow.NewEngine(st)

	f := &fixture{
		store:    st,
		engine:   engine,
		pipeline: pipeline.New(engine, st),
		tech:     models.Posting{ID: uuid.New().String(), Title: "Junior Developer", Technical: true, CreatedAt: time.Now().UTC()},
		hr:       models.Posting{ID: uuid.New().String(), Title: "HR Executive", Technical: false, CreatedAt: time.Now().UTC()},
	}
	require.NoError(t, st.CreatePosting(context.Background(), f.tech))
	require.NoError(t, st.CreatePosting(context.Background(), f.hr))
	return f
}

func (f *fixture) submit(t *testing.T, applicantID, postingID string) models.Application {
	t.Helper()
	app, err := f.engine.Submit(context.Background(), applicantID, postingID)
	require.NoError(t, err)
	return app
}

func TestAdvanceAllMovesEligibleApplications(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.submit(t, "applicant-1", f.tech.ID)
	b := f.submit(t, "applicant-2", f.tech.ID)
	hr := f.submit(t, "applicant-3", f.hr.ID)

	advanced, err := f.pipeline.AdvanceAll(ctx, workflow.StageApplied)
	require.NoError(t, err)
	assert.Equal(t, 2, advanced)

	for _, id := range []string{a.ID, b.ID} {
		app, err := f.store.GetApplication(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, workflow.StageUnderReview, app.Stage)
	}

	// Non-technical applications are out of automation's reach.
	got, err := f.store.GetApplication(ctx, hr.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.StageApplied, got.Stage)
}

func TestAdvanceAllSkipsOtherStages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.submit(t, "applicant-1", f.tech.ID)
	f.submit(t, "applicant-2", f.tech.ID)

	// Move one application ahead so only the other is eligible at Applied.
	_, err := f.engine.Transition(ctx, a.ID, workflow.StageUnderReview, models.RoleAutomation, "")
	require.NoError(t, err)

	advanced, err := f.pipeline.AdvanceAll(ctx, workflow.StageApplied)
	require.NoError(t, err)
	assert.Equal(t, 1, advanced)

	got, err := f.store.GetApplication(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.StageUnderReview, got.Stage, "already-advanced application is untouched")
}

func TestAdvanceAllEmptyBatch(t *testing.T) {
	f := newFixture(t)

	advanced, err := f.pipeline.AdvanceAll(context.Background(), workflow.StageApplied)
	require.NoError(t, err)
	assert.Zero(t, advanced)
}

func TestAdvanceAllRejectsUnknownStage(t *testing.T) {
	f := newFixture(t)

	_, err := f.pipeline.AdvanceAll(context.Background(), "Rejected")
	assert.ErrorIs(t, err, workflow.ErrInvalidStage)

	// The terminal stage has no outgoing step either.
	_, err = f.pipeline.AdvanceAll(context.Background(), workflow.StageOffer)
	assert.ErrorIs(t, err, workflow.ErrInvalidStage)
}

func TestStepsCoverTheChain(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	app := f.submit(t, "applicant-1", f.tech.ID)

	steps := pipeline.Steps()
	require.Len(t, steps, 4)
	for _, step := range steps {
		advanced, err := f.pipeline.AdvanceAll(ctx, step)
		require.NoError(t, err)
		assert.Equal(t, 1, advanced, "step from %s", step)
	}

	got, err := f.store.GetApplication(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.StageOffer, got.Stage)

	recs, err := f.store.ListTransitions(ctx, app.ID)
	require.NoError(t, err)
	require.Len(t, recs, 5)
	for _, rec := range recs[1:] {
		assert.Equal(t, models.RoleAutomation, rec.Actor)
		assert.NotEmpty(t, rec.Comment)
	}
}
