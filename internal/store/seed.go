package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/models"
)

// SeedPostings creates a handful of demo postings for local development. It
// is a no-op when postings already exist.
func SeedPostings(ctx context.Context, s Store) error {
	existing, err := s.ListPostings(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	now := time.Now().UTC()
	demo := []models.Posting{
		{ID: uuid.New().String(), Title: "Senior Software Engineer", Technical: true, CreatedAt: now},
		{ID: uuid.New().String(), Title: "Junior Developer", Technical: true, CreatedAt: now},
		{ID: uuid.New().String(), Title: "HR Executive", Technical: false, CreatedAt: now},
	}
	for _, p := range demo {
		if err := s.CreatePosting(ctx, p); err != nil {
			return err
		}
	}
	return nil
}
