package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/models"
	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/workflow"
)

const uniqueViolation = "23505"

// Postgres implements Store on a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a pooled connection to Postgres.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (s *Postgres) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Postgres) GetApplication(ctx context.Context, id string) (models.Application, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, applicant_id, posting_id, stage, applied_at
		FROM applications WHERE id = $1
	`, id)
	var app models.Application
	if err := row.Scan(&app.ID, &app.ApplicantID, &app.PostingID, &app.Stage, &app.AppliedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Application{}, workflow.ErrNotFound
		}
		return models.Application{}, fmt.Errorf("scan application: %w", err)
	}
	return app, nil
}

func (s *Postgres) GetPosting(ctx context.Context, id string) (models.Posting, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, title, technical, created_at FROM postings WHERE id = $1
	`, id)
	var p models.Posting
	if err := row.Scan(&p.ID, &p.Title, &p.Technical, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Posting{}, workflow.ErrNotFound
		}
		return models.Posting{}, fmt.Errorf("scan posting: %w", err)
	}
	return p, nil
}

func (s *Postgres) FindApplication(ctx context.Context, applicantID, postingID string) (models.Application, bool, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, applicant_id, posting_id, stage, applied_at
		FROM applications WHERE applicant_id = $1 AND posting_id = $2
	`, applicantID, postingID)
	var app models.Application
	if err := row.Scan(&app.ID, &app.ApplicantID, &app.PostingID, &app.Stage, &app.AppliedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Application{}, false, nil
		}
		return models.Application{}, false, fmt.Errorf("scan application: %w", err)
	}
	return app, true, nil
}

// CreateApplication inserts the application and its initial record in one
// transaction. The UNIQUE (applicant_id, posting_id) constraint backstops the
// engine's duplicate check under concurrent submissions.
func (s *Postgres) CreateApplication(ctx context.Context, app models.Application, initial models.TransitionRecord) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) // safe no-op on commit

	_, err = tx.Exec(ctx, `
		INSERT INTO applications (id, applicant_id, posting_id, stage, applied_at)
		VALUES ($1, $2, $3, $4, $5)
	`, app.ID, app.ApplicantID, app.PostingID, app.Stage, app.AppliedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return workflow.ErrConflict
		}
		return fmt.Errorf("insert application: %w", err)
	}
	if err := insertTransition(ctx, tx, initial); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// SaveApplication updates the stage and appends the record atomically.
func (s *Postgres) SaveApplication(ctx context.Context, app models.Application, rec models.TransitionRecord) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE applications SET stage = $2 WHERE id = $1
	`, app.ID, app.Stage)
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return workflow.ErrNotFound
	}
	if err := insertTransition(ctx, tx, rec); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func insertTransition(ctx context.Context, tx pgx.Tx, rec models.TransitionRecord) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO transition_records (application_id, from_stage, to_stage, comment, actor, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, rec.ApplicationID, rec.FromStage, rec.ToStage, rec.Comment, string(rec.Actor), rec.RecordedAt)
	if err != nil {
		return fmt.Errorf("insert transition record: %w", err)
	}
	return nil
}

func (s *Postgres) ListApplications(ctx context.Context, f Filter) ([]models.Application, error) {
	query, args := applicationQuery(`
		SELECT a.id, a.applicant_id, a.posting_id, a.stage, a.applied_at
		FROM applications a JOIN postings p ON p.id = a.posting_id
	`, f)
	query += " ORDER BY a.applied_at, a.id"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var out []models.Application
	for rows.Next() {
		var app models.Application
		if err := rows.Scan(&app.ID, &app.ApplicantID, &app.PostingID, &app.Stage, &app.AppliedAt); err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		out = append(out, app)
	}
	return out, rows.Err()
}

func (s *Postgres) ListTransitions(ctx context.Context, applicationID string) ([]models.TransitionRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT seq, application_id, from_stage, to_stage, comment, actor, recorded_at
		FROM transition_records WHERE application_id = $1
		ORDER BY recorded_at, seq
	`, applicationID)
	if err != nil {
		return nil, fmt.Errorf("list transitions: %w", err)
	}
	defer rows.Close()

	var out []models.TransitionRecord
	for rows.Next() {
		var rec models.TransitionRecord
		var from pgtype.Text
		var actor string
		if err := rows.Scan(&rec.Seq, &rec.ApplicationID, &from, &rec.ToStage, &rec.Comment, &actor, &rec.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan transition record: %w", err)
		}
		if from.Valid {
			value := from.String
			rec.FromStage = &value
		}
		rec.Actor = models.Role(actor)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Postgres) CountByStage(ctx context.Context, f Filter) (map[string]int, error) {
	query, args := applicationQuery(`
		SELECT a.stage, COUNT(*)
		FROM applications a JOIN postings p ON p.id = a.posting_id
	`, f)
	query += " GROUP BY a.stage"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("count by stage: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var stage string
		var n int
		if err := rows.Scan(&stage, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[stage] = n
	}
	return counts, rows.Err()
}

func (s *Postgres) CreatePosting(ctx context.Context, p models.Posting) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO postings (id, title, technical, created_at)
		VALUES ($1, $2, $3, $4)
	`, p.ID, p.Title, p.Technical, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert posting: %w", err)
	}
	return nil
}

func (s *Postgres) ListPostings(ctx context.Context) ([]models.Posting, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, title, technical, created_at FROM postings ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list postings: %w", err)
	}
	defer rows.Close()

	var out []models.Posting
	for rows.Next() {
		var p models.Posting
		if err := rows.Scan(&p.ID, &p.Title, &p.Technical, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan posting: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// applicationQuery appends WHERE clauses for the filter to base.
func applicationQuery(base string, f Filter) (string, []any) {
	var args []any
	var clauses []string
	if f.ApplicantID != "" {
		args = append(args, f.ApplicantID)
		clauses = append(clauses, "a.applicant_id = $"+strconv.Itoa(len(args)))
	}
	if f.Stage != "" {
		args = append(args, f.Stage)
		clauses = append(clauses, "a.stage = $"+strconv.Itoa(len(args)))
	}
	if f.Technical != nil {
		args = append(args, *f.Technical)
		clauses = append(clauses, "p.technical = $"+strconv.Itoa(len(args)))
	}
	for i, c := range clauses {
		if i == 0 {
			base += " WHERE " + c
		} else {
			base += " AND " + c
		}
	}
	return base, args
}
