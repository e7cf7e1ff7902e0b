package workflow

import (
	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/models"
)

// Authorize decides whether actor may move an application on posting from
// currentStage to requestedStage. Rules evaluate in order; the first match
// wins. Technical postings are exclusively automation-driven one step at a
// time; non-technical postings are exclusively human-driven and free-form.
//
// A nil return means the transition is allowed.
func Authorize(actor models.Role, posting models.Posting, currentStage, requestedStage string) error {
	if posting.Technical && actor == models.RoleAdmin {
		return &ForbiddenError{Reason: ReasonTechnicalIsAutomated}
	}
	if !posting.Technical && actor == models.RoleAutomation {
		return &ForbiddenError{Reason: ReasonAutomationTechnicalOnly}
	}
	if actor == models.RoleAutomation {
		next, ok := NextStage(currentStage)
		if !ok || requestedStage != next {
			return &ForbiddenError{Reason: ReasonOutOfOrderAutomation}
		}
	}
	return nil
}
