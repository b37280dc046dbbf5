// Package assignment holds the pure rules of the assignment lifecycle:
// pre-create validation, the transition policy and the side effects of each step.
package assignment

import (
	"errors"
	"fmt"
	"time"

	"github.com/shenikar/emergency_dispatch/internal/models"
)

var ErrTransitionNotAllowed = errors.New("transition not allowed")

// Plan computes the writes for moving a to target. It does not modify a; the
// returned Transition carries an updated copy.
func Plan(policy Policy, a *models.Assignment, target models.AssignmentStatus, location *models.GeoPoint, now time.Time) (*models.Transition, error) {
	if !policy.Allows(a.Status, target) {
		return nil, fmt.Errorf("%w: %s -> %s (policy %s)", ErrTransitionNotAllowed, a.Status, target, policy.Name())
	}

	next := *a
	t := &models.Transition{
		Assignment: &next,
		IncidentID: a.IncidentID,
	}

	if target != a.Status {
		stamp := now
		switch target {
		case models.AssignmentAccepted:
			next.AcceptedAt = &stamp
		case models.AssignmentEnRoute:
			next.EnRouteAt = &stamp
		case models.AssignmentArrived:
			next.ArrivedAt = &stamp
			status := models.IncidentInProgress
			t.IncidentStatus = &status
		case models.AssignmentCompleted:
			next.CompletedAt = &stamp
			status := models.IncidentResolved
			t.IncidentStatus = &status
			t.ResolvedAt = &stamp
			t.ReleaseResponder = a.ResponderID != nil
		}
		next.Status = target
	}
	next.UpdatedAt = now

	if location != nil {
		loc := *location
		next.CurrentLocation = &loc
		if a.ResponderID != nil {
			t.ResponderID = a.ResponderID
			t.ResponderLocation = &loc
			t.LocationAt = now
		}
	}

	if t.ReleaseResponder {
		t.ResponderID = a.ResponderID
	}

	return t, nil
}
