package models

import (
	"time"
)

// Role identifies the capacity in which a caller drives a transition.
type Role string

const (
	RoleApplicant  Role = "Applicant"
	RoleAdmin      Role = "Admin"
	RoleAutomation Role = "Automation"
	RoleSystem     Role = "System"
)

// Posting is a job opening. Classification is immutable once created: it
// decides whether the posting's applications are human- or automation-managed.
type Posting struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Technical bool      `json:"technical"`
	CreatedAt time.Time `json:"created_at"`
}

// Application is one candidacy for one posting, persisted in Postgres.
// Its stage is only ever mutated through the workflow engine.
type Application struct {
	ID          string    `json:"id"`
	ApplicantID string    `json:"applicant_id"`
	PostingID   string    `json:"posting_id"`
	Stage       string    `json:"stage"`
	AppliedAt   time.Time `json:"applied_at"`
}

// TransitionRecord is one append-only audit row. FromStage is nil only for
// the creation record. Seq is assigned by the store and breaks timestamp ties
// so history replays deterministically.
type TransitionRecord struct {
	Seq           int64     `json:"-"`
	ApplicationID string    `json:"application_id"`
	FromStage     *string   `json:"from_stage"`
	ToStage       string    `json:"to_stage"`
	Comment       string    `json:"comment"`
	Actor         Role      `json:"actor"`
	RecordedAt    time.Time `json:"recorded_at"`
}
