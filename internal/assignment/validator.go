package assignment

import (
	"fmt"

	"github.com/shenikar/emergency_dispatch/internal/models"
)

const (
	msgAgencyInactive     = "Agency is not active"
	msgResponderForeign   = "Responder does not belong to the assigned agency"
	msgPriorityOutOfRange = "Priority must be between 1 and 5"
)

// ValidationResult lists every rule the proposed assignment breaks.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Validate checks a proposed assignment against the current incident, agency and
// responder state. All rules are evaluated; responder may be nil.
func Validate(a *models.Assignment, incident *models.Incident, agency *models.Agency, responder *models.Responder) ValidationResult {
	errs := make([]string, 0)

	if !incident.Status.AcceptsAssignments() {
		errs = append(errs, fmt.Sprintf("Incident is not open for assignment (status: %s)", incident.Status))
	}

	if !agency.Active {
		errs = append(errs, msgAgencyInactive)
	}

	if responder != nil {
		if responder.Status != models.ResponderAvailable {
			errs = append(errs, fmt.Sprintf("Responder is not available (status: %s)", responder.Status))
		}
		if responder.AgencyID != a.AgencyID {
			errs = append(errs, msgResponderForeign)
		}
	}

	if a.Priority < models.MinPriority || a.Priority > models.MaxPriority {
		errs = append(errs, msgPriorityOutOfRange)
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}
