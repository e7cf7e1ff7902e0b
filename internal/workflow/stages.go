package workflow

// Hiring stages for technical postings form a fixed forward chain. Applications
// on non-technical postings are not bound to it: administrators may assign any
// stage value directly.
const (
	StageApplied             = "Applied"
	StageUnderReview         = "UnderReview"
	StageTechnicalAssessment = "TechnicalAssessment"
	StageInterview           = "Interview"
	StageOffer               = "Offer"
)

var orderedStages = []string{
	StageApplied,
	StageUnderReview,
	StageTechnicalAssessment,
	StageInterview,
	StageOffer,
}

// IsValidStage reports whether name is part of the ordered technical chain.
func IsValidStage(name string) bool {
	for _, s := range orderedStages {
		if s == name {
			return true
		}
	}
	return false
}

// NextStage returns the stage that follows current in the technical chain.
// It is undefined (ok=false) for the terminal stage and for any value outside
// the chain.
func NextStage(current string) (string, bool) {
	for i, s := range orderedStages {
		if s == current && i+1 < len(orderedStages) {
			return orderedStages[i+1], true
		}
	}
	return "", false
}

// OrderedStages returns the technical chain in order.
func OrderedStages() []string {
	out := make([]string, len(orderedStages))
	copy(out, orderedStages)
	return out
}
