package store

import (
	"context"

	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/models"
)

// Filter narrows application listings. Zero values mean "any"; Technical is a
// pointer so false can be selected explicitly.
type Filter struct {
	ApplicantID string
	Stage       string
	Technical   *bool
}

// Store is the full repository surface. The workflow engine consumes the
// subset it declares itself; the HTTP layer and the automation pipeline use
// the rest.
type Store interface {
	GetApplication(ctx context.Context, id string) (models.Application, error)
	GetPosting(ctx context.Context, id string) (models.Posting, error)
	FindApplication(ctx context.Context, applicantID, postingID string) (models.Application, bool, error)
	CreateApplication(ctx context.Context, app models.Application, initial models.TransitionRecord) error
	SaveApplication(ctx context.Context, app models.Application, rec models.TransitionRecord) error
	ListApplications(ctx context.Context, f Filter) ([]models.Application, error)
	ListTransitions(ctx context.Context, applicationID string) ([]models.TransitionRecord, error)
	CountByStage(ctx context.Context, f Filter) (map[string]int, error)

	CreatePosting(ctx context.Context, p models.Posting) error
	ListPostings(ctx context.Context) ([]models.Posting, error)
}

// TechnicalOnly is a convenience for filters selecting technical postings.
func TechnicalOnly() *bool {
	v := true
	return &v
}

// NonTechnicalOnly selects non-technical postings.
func NonTechnicalOnly() *bool {
	v := false
	return &v
}
