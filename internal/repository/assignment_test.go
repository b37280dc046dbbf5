package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch/internal/assignment"
	"github.com/shenikar/emergency_dispatch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcceptsAssignmentProgress(t *testing.T) {
	assert.True(t, acceptsAssignmentProgress(models.IncidentDispatched))
	assert.True(t, acceptsAssignmentProgress(models.IncidentInProgress))
	assert.True(t, acceptsAssignmentProgress(models.IncidentResolved))
	assert.False(t, acceptsAssignmentProgress(models.IncidentCancelled))
	assert.False(t, acceptsAssignmentProgress(models.IncidentClosed))
}

func TestIncidentProjection_CompletedSetsResolvedAt(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	a := &models.Assignment{ID: uuid.New(), IncidentID: uuid.New(), Status: models.AssignmentArrived}

	tr, err := assignment.Plan(assignment.ForwardPolicy(), a, models.AssignmentCompleted, nil, now)
	require.NoError(t, err)

	status, resolvedAt := incidentProjection(tr)
	assert.Equal(t, models.IncidentResolved, status)
	require.NotNil(t, resolvedAt)
	assert.Equal(t, now, *resolvedAt)
}

func TestIncidentProjection_InProgressClearsResolvedAt(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	// Second assignment of an incident another assignment already resolved.
	a := &models.Assignment{ID: uuid.New(), IncidentID: uuid.New(), Status: models.AssignmentEnRoute}

	tr, err := assignment.Plan(assignment.ForwardPolicy(), a, models.AssignmentArrived, nil, now)
	require.NoError(t, err)
	stale := now.Add(-time.Hour)
	tr.ResolvedAt = &stale

	status, resolvedAt := incidentProjection(tr)
	assert.Equal(t, models.IncidentInProgress, status)
	assert.Nil(t, resolvedAt)
}
