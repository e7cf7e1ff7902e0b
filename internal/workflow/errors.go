package workflow

import "errors"

var (
	// ErrNotFound marks a missing application or posting. Surfaced to the
	// caller unchanged and never retried.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a duplicate application for an (applicant, posting)
	// pair.
	ErrConflict = errors.New("application already exists for this posting")

	// ErrInvalidStage marks a requested stage the engine cannot accept.
	ErrInvalidStage = errors.New("invalid stage")
)

// Denial reasons returned by the authorizer.
const (
	ReasonTechnicalIsAutomated    = "technical applications are automation-managed"
	ReasonAutomationTechnicalOnly = "automation only manages technical applications"
	ReasonOutOfOrderAutomation    = "out-of-order automated transition"
)

// ForbiddenError is an authorizer denial. The application's stage and audit
// log are untouched when it is returned.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	return "forbidden: " + e.Reason
}

// IsForbidden reports whether err is an authorizer denial.
func IsForbidden(err error) bool {
	var fe *ForbiddenError
	return errors.As(err, &fe)
}
