package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/models"
)

// Repository is the persistence capability the engine consumes. Writes are
// atomic: the application row and its new transition record commit together
// or not at all.
type Repository interface {
	GetApplication(ctx context.Context, id string) (models.Application, error)
	GetPosting(ctx context.Context, id string) (models.Posting, error)
	FindApplication(ctx context.Context, applicantID, postingID string) (models.Application, bool, error)
	CreateApplication(ctx context.Context, app models.Application, initial models.TransitionRecord) error
	SaveApplication(ctx context.Context, app models.Application, rec models.TransitionRecord) error
	ListTransitions(ctx context.Context, applicationID string) ([]models.TransitionRecord, error)
}

const submittedComment = "Application submitted"

// Engine applies validated stage transitions and owns the per-application
// critical section around them.
type Engine struct {
	repo  Repository
	locks *keyedMutex
	now   func() time.Time
}

func NewEngine(repo Repository) *Engine {
	return &Engine{
		repo:  repo,
		locks: newKeyedMutex(),
		now:   time.Now,
	}
}

// Submit creates an application for (applicantID, postingID) at stage Applied
// and appends the initial System record. A second submission for the same
// pair fails with ErrConflict and leaves the first untouched.
func (e *Engine) Submit(ctx context.Context, applicantID, postingID string) (models.Application, error) {
	unlock := e.locks.Lock("submit:" + applicantID + ":" + postingID)
	defer unlock()

	if _, err := e.repo.GetPosting(ctx, postingID); err != nil {
		return models.Application{}, fmt.Errorf("posting %s: %w", postingID, err)
	}
	if _, found, err := e.repo.FindApplication(ctx, applicantID, postingID); err != nil {
		return models.Application{}, fmt.Errorf("check existing application: %w", err)
	} else if found {
		return models.Application{}, ErrConflict
	}

	now := e.now().UTC()
	app := models.Application{
		ID:          uuid.New().String(),
		ApplicantID: applicantID,
		PostingID:   postingID,
		Stage:       StageApplied,
		AppliedAt:   now,
	}
	initial := models.TransitionRecord{
		ApplicationID: app.ID,
		FromStage:     nil,
		ToStage:       StageApplied,
		Comment:       submittedComment,
		Actor:         models.RoleSystem,
		RecordedAt:    now,
	}
	if err := e.repo.CreateApplication(ctx, app, initial); err != nil {
		return models.Application{}, fmt.Errorf("create application: %w", err)
	}
	return app, nil
}

// Transition moves one application to requestedStage on behalf of actor. The
// lookup, authorization check, stage mutation, and audit append run under the
// application's exclusive lock; on any failure no state is written.
func (e *Engine) Transition(ctx context.Context, applicationID, requestedStage string, actor models.Role, comment string) (models.TransitionRecord, error) {
	if strings.TrimSpace(requestedStage) == "" {
		return models.TransitionRecord{}, ErrInvalidStage
	}

	unlock := e.locks.Lock(applicationID)
	defer unlock()

	app, err := e.repo.GetApplication(ctx, applicationID)
	if err != nil {
		return models.TransitionRecord{}, fmt.Errorf("application %s: %w", applicationID, err)
	}
	posting, err := e.repo.GetPosting(ctx, app.PostingID)
	if err != nil {
		return models.TransitionRecord{}, fmt.Errorf("posting %s: %w", app.PostingID, err)
	}
	if err := Authorize(actor, posting, app.Stage, requestedStage); err != nil {
		return models.TransitionRecord{}, err
	}

	prior := app.Stage
	app.Stage = requestedStage
	rec := models.TransitionRecord{
		ApplicationID: app.ID,
		FromStage:     &prior,
		ToStage:       requestedStage,
		Comment:       comment,
		Actor:         actor,
		RecordedAt:    e.now().UTC(),
	}
	if err := e.repo.SaveApplication(ctx, app, rec); err != nil {
		return models.TransitionRecord{}, fmt.Errorf("commit transition: %w", err)
	}
	return rec, nil
}

// History returns the application's audit log, most recent first.
func (e *Engine) History(ctx context.Context, applicationID string) ([]models.TransitionRecord, error) {
	if _, err := e.repo.GetApplication(ctx, applicationID); err != nil {
		return nil, fmt.Errorf("application %s: %w", applicationID, err)
	}
	recs, err := e.repo.ListTransitions(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("list transitions: %w", err)
	}
	out := make([]models.TransitionRecord, len(recs))
	for i, r := range recs {
		out[len(recs)-1-i] = r
	}
	return out, nil
}
