package assignment

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch/internal/models"
	"github.com/stretchr/testify/assert"
)

func openFixtures() (*models.Assignment, *models.Incident, *models.Agency, *models.Responder) {
	agencyID := uuid.New()
	responderID := uuid.New()
	a := &models.Assignment{AgencyID: agencyID, ResponderID: &responderID, Priority: 3}
	incident := &models.Incident{ID: uuid.New(), Status: models.IncidentReported}
	agency := &models.Agency{ID: agencyID, Active: true}
	responder := &models.Responder{ID: responderID, AgencyID: agencyID, Status: models.ResponderAvailable}
	return a, incident, agency, responder
}

func TestValidate_Valid(t *testing.T) {
	a, incident, agency, responder := openFixtures()

	res := Validate(a, incident, agency, responder)

	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
}

func TestValidate_PriorityZeroOnly(t *testing.T) {
	incident := &models.Incident{Status: models.IncidentReported}
	agency := &models.Agency{Active: true}

	res := Validate(&models.Assignment{Priority: 0}, incident, agency, nil)

	assert.False(t, res.Valid)
	assert.Equal(t, []string{"Priority must be between 1 and 5"}, res.Errors)
}

func TestValidate_PriorityRange(t *testing.T) {
	a, incident, agency, responder := openFixtures()
	for p := 1; p <= 5; p++ {
		a.Priority = p
		assert.True(t, Validate(a, incident, agency, responder).Valid, "priority %d", p)
	}
	for _, p := range []int{-1, 0, 6, 10} {
		a.Priority = p
		assert.False(t, Validate(a, incident, agency, responder).Valid, "priority %d", p)
	}
}

func TestValidate_InactiveAgencyAlwaysRejected(t *testing.T) {
	a, incident, agency, responder := openFixtures()
	agency.Active = false

	res := Validate(a, incident, agency, responder)

	assert.False(t, res.Valid)
	assert.Equal(t, []string{"Agency is not active"}, res.Errors)

	res = Validate(a, incident, agency, nil)
	assert.False(t, res.Valid)
}

func TestValidate_IncidentStatus(t *testing.T) {
	a, incident, agency, responder := openFixtures()

	incident.Status = models.IncidentDispatched
	assert.True(t, Validate(a, incident, agency, responder).Valid)

	for _, st := range []models.IncidentStatus{models.IncidentInProgress, models.IncidentResolved, models.IncidentClosed, models.IncidentCancelled} {
		incident.Status = st
		res := Validate(a, incident, agency, responder)
		assert.False(t, res.Valid)
		assert.Equal(t, []string{"Incident is not open for assignment (status: " + string(st) + ")"}, res.Errors)
	}
}

func TestValidate_ReportsEveryViolation(t *testing.T) {
	a, incident, agency, responder := openFixtures()
	incident.Status = models.IncidentResolved
	agency.Active = false
	responder.Status = models.ResponderOffDuty
	responder.AgencyID = uuid.New()
	a.Priority = 6

	res := Validate(a, incident, agency, responder)

	assert.False(t, res.Valid)
	assert.Equal(t, []string{
		"Incident is not open for assignment (status: resolved)",
		"Agency is not active",
		"Responder is not available (status: off_duty)",
		"Responder does not belong to the assigned agency",
		"Priority must be between 1 and 5",
	}, res.Errors)
}
