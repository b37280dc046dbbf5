package service_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch/internal/assignment"
	"github.com/shenikar/emergency_dispatch/internal/models"
	"github.com/shenikar/emergency_dispatch/internal/outbox"
	outboxmocks "github.com/shenikar/emergency_dispatch/internal/outbox/mocks"
	"github.com/shenikar/emergency_dispatch/internal/service"
	"github.com/shenikar/emergency_dispatch/internal/service/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type dispatchMocks struct {
	incidents   *mocks.MockIncidentRepository
	agencies    *mocks.MockAgencyRepository
	responders  *mocks.MockResponderRepository
	assignments *mocks.MockAssignmentRepository
	counters    *mocks.MockCounterSource
	publisher   *outboxmocks.MockPublisher
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	return logger
}

func newTestDispatchService(t *testing.T, policy assignment.Policy) (service.DispatchService, *dispatchMocks) {
	ctrl := gomock.NewController(t)
	m := &dispatchMocks{
		incidents:   mocks.NewMockIncidentRepository(ctrl),
		agencies:    mocks.NewMockAgencyRepository(ctrl),
		responders:  mocks.NewMockResponderRepository(ctrl),
		assignments: mocks.NewMockAssignmentRepository(ctrl),
		counters:    mocks.NewMockCounterSource(ctrl),
		publisher:   outboxmocks.NewMockPublisher(ctrl),
	}
	svc := service.NewDispatchService(service.DispatchDeps{
		Incidents:   m.incidents,
		Agencies:    m.agencies,
		Responders:  m.responders,
		Assignments: m.assignments,
		Counters:    m.counters,
		Publisher:   m.publisher,
	}, policy, quietLogger())
	return svc, m
}

func TestRecommend_ColocatedFireServiceOutranksDistantPolice(t *testing.T) {
	svc, m := newTestDispatchService(t, assignment.ForwardPolicy())
	ctx := context.Background()

	incident := &models.Incident{
		ID:        uuid.New(),
		Category:  models.CategoryFire,
		Severity:  models.SeverityHigh,
		Latitude:  5.6037,
		Longitude: -0.1870,
		Status:    models.IncidentReported,
	}
	police := &models.Agency{
		ID:       uuid.New(),
		Name:     "Police",
		Type:     models.AgencyPolice,
		Active:   true,
		Location: &models.GeoPoint{Latitude: 5.6037 + 0.1349, Longitude: -0.1870},
	}
	fire := &models.Agency{
		ID:       uuid.New(),
		Name:     "Fire",
		Type:     models.AgencyFireService,
		Active:   true,
		Location: &models.GeoPoint{Latitude: 5.6037, Longitude: -0.1870},
	}

	m.incidents.EXPECT().GetByID(ctx, incident.ID).Return(incident, nil)
	m.agencies.EXPECT().ListAll(ctx).Return([]*models.Agency{police, fire}, nil)
	m.counters.EXPECT().Current(ctx).Return(nil, nil)

	set, err := svc.Recommend(ctx, incident.ID)

	require.NoError(t, err)
	require.Len(t, set.Recommendations, 2)
	top := set.Recommendations[0]
	assert.Equal(t, fire.ID, top.Agency.ID)
	assert.Equal(t, 30.0, top.Factors.Distance)
	assert.Equal(t, 25.0, top.Factors.Category)
	assert.Equal(t, police.ID, set.Recommendations[1].Agency.ID)
	assert.InDelta(t, 15.0, set.Recommendations[1].DistanceKm, 0.1)
	assert.Zero(t, set.SnapshotVersion)
}

func TestRecommend_UsesFreshSnapshot(t *testing.T) {
	svc, m := newTestDispatchService(t, assignment.ForwardPolicy())
	ctx := context.Background()

	incident := &models.Incident{ID: uuid.New(), Category: models.CategoryMedical, Status: models.IncidentReported}
	agency := &models.Agency{
		ID:                      uuid.New(),
		Type:                    models.AgencyAmbulance,
		Active:                  true,
		Location:                &models.GeoPoint{},
		AvailableResponderCount: 0,
	}
	snapshot := &models.CounterSnapshot{
		Version:  42,
		TakenAt:  time.Now(),
		TTL:      time.Minute,
		Counters: map[uuid.UUID]models.AgencyCounters{agency.ID: {AvailableResponders: 3}},
	}

	m.incidents.EXPECT().GetByID(ctx, incident.ID).Return(incident, nil)
	m.agencies.EXPECT().ListAll(ctx).Return([]*models.Agency{agency}, nil)
	m.counters.EXPECT().Current(ctx).Return(snapshot, nil)

	set, err := svc.Recommend(ctx, incident.ID)

	require.NoError(t, err)
	assert.Equal(t, int64(42), set.SnapshotVersion)
	require.Len(t, set.Recommendations, 1)
	assert.Equal(t, 15.0, set.Recommendations[0].Factors.Availability)
}

func TestRecommend_SnapshotErrorFallsBackToRecords(t *testing.T) {
	svc, m := newTestDispatchService(t, assignment.ForwardPolicy())
	ctx := context.Background()

	incident := &models.Incident{ID: uuid.New(), Category: models.CategoryCrime}
	agency := &models.Agency{ID: uuid.New(), Type: models.AgencyPolice, Active: true, Location: &models.GeoPoint{}, AvailableResponderCount: 1}

	m.incidents.EXPECT().GetByID(ctx, incident.ID).Return(incident, nil)
	m.agencies.EXPECT().ListAll(ctx).Return([]*models.Agency{agency}, nil)
	m.counters.EXPECT().Current(ctx).Return(nil, errors.New("redis down"))

	set, err := svc.Recommend(ctx, incident.ID)

	require.NoError(t, err)
	require.Len(t, set.Recommendations, 1)
	assert.Equal(t, 5.0, set.Recommendations[0].Factors.Availability)
}

func TestRecommend_IncidentNotFound(t *testing.T) {
	svc, m := newTestDispatchService(t, assignment.ForwardPolicy())
	ctx := context.Background()
	id := uuid.New()

	m.incidents.EXPECT().GetByID(ctx, id).Return(nil, service.ErrNotFound)

	_, err := svc.Recommend(ctx, id)

	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestEstimateETA(t *testing.T) {
	svc, _ := newTestDispatchService(t, assignment.ForwardPolicy())
	p := models.GeoPoint{Latitude: 5.6037, Longitude: -0.1870}

	eta := svc.EstimateETA(p, p, "night")

	assert.Equal(t, 5, eta.Minutes)
	assert.Zero(t, eta.DistanceKm)
	assert.Equal(t, "night", string(eta.Traffic))
}

type assignmentFixture struct {
	incident  *models.Incident
	agency    *models.Agency
	responder *models.Responder
	adminID   uuid.UUID
}

func newAssignmentFixture() assignmentFixture {
	adminID := uuid.New()
	agency := &models.Agency{ID: uuid.New(), Name: "Central Fire", Type: models.AgencyFireService, Active: true, AdminUserID: &adminID}
	return assignmentFixture{
		incident:  &models.Incident{ID: uuid.New(), Title: "Warehouse fire", Status: models.IncidentReported, Version: 3},
		agency:    agency,
		responder: &models.Responder{ID: uuid.New(), AgencyID: agency.ID, Status: models.ResponderAvailable},
		adminID:   adminID,
	}
}

func (f assignmentFixture) expectLoads(ctx context.Context, m *dispatchMocks) {
	m.incidents.EXPECT().GetByID(ctx, f.incident.ID).Return(f.incident, nil)
	m.agencies.EXPECT().GetByID(ctx, f.agency.ID).Return(f.agency, nil)
	m.responders.EXPECT().GetByID(ctx, f.responder.ID).Return(f.responder, nil)
}

func TestCreateAssignment_Success(t *testing.T) {
	svc, m := newTestDispatchService(t, assignment.ForwardPolicy())
	ctx := context.Background()
	f := newAssignmentFixture()
	f.expectLoads(ctx, m)

	m.assignments.EXPECT().Create(ctx, gomock.Any(), int64(3)).Return(nil)
	m.incidents.EXPECT().InvalidateIncidentCache(ctx, f.incident.ID).Return(nil)

	var intents []outbox.Intent
	m.publisher.EXPECT().Enqueue(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, intent outbox.Intent) error {
		intents = append(intents, intent)
		return nil
	}).Times(3)

	a, err := svc.CreateAssignment(ctx, service.CreateAssignmentInput{
		IncidentID:  f.incident.ID,
		AgencyID:    f.agency.ID,
		ResponderID: &f.responder.ID,
		Priority:    4,
	})

	require.NoError(t, err)
	assert.Equal(t, models.AssignmentDispatched, a.Status)
	assert.NotEqual(t, uuid.Nil, a.ID)

	require.Len(t, intents, 3)
	assert.Equal(t, outbox.KindIncidentUpdate, intents[0].Kind)
	assert.Equal(t, models.IncidentDispatched, intents[0].IncidentUpdate.Status)

	responderNote := intents[1].Notification
	require.NotNil(t, responderNote)
	assert.Equal(t, f.responder.ID, responderNote.UserID)
	assert.Equal(t, models.PriorityCritical, responderNote.Priority)
	assert.Equal(t, a.ID, responderNote.RelatedEntityID)

	adminNote := intents[2].Notification
	require.NotNil(t, adminNote)
	assert.Equal(t, f.adminID, adminNote.UserID)
	assert.Equal(t, models.PriorityCritical, adminNote.Priority)
}

func TestCreateAssignment_LowPriorityNotifications(t *testing.T) {
	svc, m := newTestDispatchService(t, assignment.ForwardPolicy())
	ctx := context.Background()
	f := newAssignmentFixture()
	f.expectLoads(ctx, m)

	m.assignments.EXPECT().Create(ctx, gomock.Any(), int64(3)).Return(nil)
	m.incidents.EXPECT().InvalidateIncidentCache(ctx, f.incident.ID).Return(nil)

	priorities := make(map[uuid.UUID]models.NotificationPriority)
	m.publisher.EXPECT().Enqueue(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, intent outbox.Intent) error {
		if intent.Notification != nil {
			priorities[intent.Notification.UserID] = intent.Notification.Priority
		}
		return nil
	}).Times(3)

	_, err := svc.CreateAssignment(ctx, service.CreateAssignmentInput{
		IncidentID:  f.incident.ID,
		AgencyID:    f.agency.ID,
		ResponderID: &f.responder.ID,
		Priority:    2,
	})

	require.NoError(t, err)
	assert.Equal(t, models.PriorityHigh, priorities[f.responder.ID])
	assert.Equal(t, models.PriorityNormal, priorities[f.adminID])
}

func TestCreateAssignment_ValidationReturnsEveryError(t *testing.T) {
	svc, m := newTestDispatchService(t, assignment.ForwardPolicy())
	ctx := context.Background()
	f := newAssignmentFixture()
	f.agency.Active = false
	f.responder.Status = models.ResponderOffDuty
	f.expectLoads(ctx, m)

	_, err := svc.CreateAssignment(ctx, service.CreateAssignmentInput{
		IncidentID:  f.incident.ID,
		AgencyID:    f.agency.ID,
		ResponderID: &f.responder.ID,
		Priority:    6,
	})

	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{
		"Agency is not active",
		"Responder is not available (status: off_duty)",
		"Priority must be between 1 and 5",
	}, verr.Errors)
}

func TestCreateAssignment_PriorityZero(t *testing.T) {
	svc, m := newTestDispatchService(t, assignment.ForwardPolicy())
	ctx := context.Background()
	f := newAssignmentFixture()
	m.incidents.EXPECT().GetByID(ctx, f.incident.ID).Return(f.incident, nil)
	m.agencies.EXPECT().GetByID(ctx, f.agency.ID).Return(f.agency, nil)

	_, err := svc.CreateAssignment(ctx, service.CreateAssignmentInput{
		IncidentID: f.incident.ID,
		AgencyID:   f.agency.ID,
		Priority:   0,
	})

	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"Priority must be between 1 and 5"}, verr.Errors)
}

func TestCreateAssignment_ConcurrentDispatchConflict(t *testing.T) {
	svc, m := newTestDispatchService(t, assignment.ForwardPolicy())
	ctx := context.Background()
	f := newAssignmentFixture()
	f.expectLoads(ctx, m)

	m.assignments.EXPECT().Create(ctx, gomock.Any(), int64(3)).Return(service.ErrIncidentConflict)

	_, err := svc.CreateAssignment(ctx, service.CreateAssignmentInput{
		IncidentID:  f.incident.ID,
		AgencyID:    f.agency.ID,
		ResponderID: &f.responder.ID,
		Priority:    3,
	})

	assert.ErrorIs(t, err, service.ErrIncidentConflict)
}

func TestCreateAssignment_AgencyNotFound(t *testing.T) {
	svc, m := newTestDispatchService(t, assignment.ForwardPolicy())
	ctx := context.Background()
	f := newAssignmentFixture()
	m.incidents.EXPECT().GetByID(ctx, f.incident.ID).Return(f.incident, nil)
	m.agencies.EXPECT().GetByID(ctx, f.agency.ID).Return(nil, service.ErrNotFound)

	_, err := svc.CreateAssignment(ctx, service.CreateAssignmentInput{IncidentID: f.incident.ID, AgencyID: f.agency.ID, Priority: 3})

	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestCreateAssignment_NotificationFailureIsSwallowed(t *testing.T) {
	svc, m := newTestDispatchService(t, assignment.ForwardPolicy())
	ctx := context.Background()
	f := newAssignmentFixture()
	f.expectLoads(ctx, m)

	m.assignments.EXPECT().Create(ctx, gomock.Any(), int64(3)).Return(nil)
	m.incidents.EXPECT().InvalidateIncidentCache(ctx, f.incident.ID).Return(errors.New("redis down"))
	m.publisher.EXPECT().Enqueue(ctx, gomock.Any()).Return(errors.New("redis down")).Times(3)

	a, err := svc.CreateAssignment(ctx, service.CreateAssignmentInput{
		IncidentID:  f.incident.ID,
		AgencyID:    f.agency.ID,
		ResponderID: &f.responder.ID,
		Priority:    3,
	})

	require.NoError(t, err)
	assert.NotNil(t, a)
}

func TestAdvanceAssignment_ArrivedThenCompleted(t *testing.T) {
	svc, m := newTestDispatchService(t, assignment.ForwardPolicy())
	ctx := context.Background()

	responderID := uuid.New()
	acceptedAt := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	enRouteAt := acceptedAt.Add(5 * time.Minute)
	current := &models.Assignment{
		ID:          uuid.New(),
		IncidentID:  uuid.New(),
		ResponderID: &responderID,
		Status:      models.AssignmentEnRoute,
		AcceptedAt:  &acceptedAt,
		EnRouteAt:   &enRouteAt,
	}

	var transitions []*models.Transition
	m.assignments.EXPECT().GetByID(ctx, current.ID).DoAndReturn(func(context.Context, uuid.UUID) (*models.Assignment, error) {
		return current, nil
	}).Times(2)
	m.assignments.EXPECT().ApplyTransition(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, tr *models.Transition) (models.IncidentStatus, error) {
		transitions = append(transitions, tr)
		current = tr.Assignment
		return *tr.IncidentStatus, nil
	}).Times(2)
	m.incidents.EXPECT().InvalidateIncidentCache(ctx, current.IncidentID).Return(nil).Times(2)

	var updates []models.IncidentUpdate
	m.publisher.EXPECT().Enqueue(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, intent outbox.Intent) error {
		updates = append(updates, *intent.IncidentUpdate)
		return nil
	}).Times(2)

	_, err := svc.AdvanceAssignment(ctx, service.AdvanceAssignmentInput{
		AssignmentID: current.ID,
		CallerID:     responderID,
		Status:       models.AssignmentArrived,
	})
	require.NoError(t, err)

	done, err := svc.AdvanceAssignment(ctx, service.AdvanceAssignmentInput{
		AssignmentID: current.ID,
		CallerID:     responderID,
		Status:       models.AssignmentCompleted,
	})
	require.NoError(t, err)

	require.Len(t, transitions, 2)
	assert.Equal(t, models.IncidentInProgress, *transitions[0].IncidentStatus)
	assert.Equal(t, models.IncidentResolved, *transitions[1].IncidentStatus)
	require.NotNil(t, transitions[1].ResolvedAt)
	assert.True(t, transitions[1].ReleaseResponder)

	assert.Equal(t, models.AssignmentCompleted, done.Status)
	assert.Equal(t, acceptedAt, *done.AcceptedAt)
	assert.Equal(t, enRouteAt, *done.EnRouteAt)
	assert.NotNil(t, done.ArrivedAt)
	assert.NotNil(t, done.CompletedAt)

	require.Len(t, updates, 2)
	assert.Equal(t, models.IncidentInProgress, updates[0].Status)
	assert.Equal(t, models.IncidentResolved, updates[1].Status)
}

func TestCancelIncident_ThenAdvanceIsRejected(t *testing.T) {
	svc, m := newTestDispatchService(t, assignment.ForwardPolicy())
	incidents := service.NewIncidentService(m.incidents, m.publisher, quietLogger())
	ctx := context.Background()

	responderID := uuid.New()
	incident := &models.Incident{ID: uuid.New(), Status: models.IncidentDispatched, Version: 3}
	current := &models.Assignment{
		ID:          uuid.New(),
		IncidentID:  incident.ID,
		ResponderID: &responderID,
		Status:      models.AssignmentEnRoute,
	}

	m.incidents.EXPECT().GetByID(ctx, incident.ID).Return(incident, nil)
	m.incidents.EXPECT().Cancel(ctx, incident.ID, int64(3)).DoAndReturn(func(context.Context, uuid.UUID, int64) error {
		// the repository cancels live assignments in the same transaction
		current.Status = models.AssignmentCancelled
		return nil
	})
	m.incidents.EXPECT().InvalidateIncidentCache(ctx, incident.ID).Return(nil)
	m.publisher.EXPECT().Enqueue(ctx, gomock.Any()).Return(nil)
	m.assignments.EXPECT().GetByID(ctx, current.ID).DoAndReturn(func(context.Context, uuid.UUID) (*models.Assignment, error) {
		return current, nil
	})
	m.assignments.EXPECT().ApplyTransition(gomock.Any(), gomock.Any()).Times(0)

	cancelled, err := incidents.CancelIncident(ctx, incident.ID)
	require.NoError(t, err)
	assert.Equal(t, models.IncidentCancelled, cancelled.Status)

	_, err = svc.AdvanceAssignment(ctx, service.AdvanceAssignmentInput{
		AssignmentID: current.ID,
		CallerID:     responderID,
		Status:       models.AssignmentCompleted,
	})

	assert.ErrorIs(t, err, service.ErrInvalidTransition)
}

func TestAdvanceAssignment_IncidentCancelledConcurrently(t *testing.T) {
	svc, m := newTestDispatchService(t, assignment.ForwardPolicy())
	ctx := context.Background()

	responderID := uuid.New()
	current := &models.Assignment{ID: uuid.New(), IncidentID: uuid.New(), ResponderID: &responderID, Status: models.AssignmentEnRoute}

	m.assignments.EXPECT().GetByID(ctx, current.ID).Return(current, nil)
	m.assignments.EXPECT().ApplyTransition(ctx, gomock.Any()).
		Return(models.IncidentStatus(""), fmt.Errorf("incident %s is cancelled: %w", current.IncidentID, service.ErrInvalidTransition))
	m.publisher.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Times(0)
	m.incidents.EXPECT().InvalidateIncidentCache(gomock.Any(), gomock.Any()).Times(0)

	_, err := svc.AdvanceAssignment(ctx, service.AdvanceAssignmentInput{
		AssignmentID: current.ID,
		CallerID:     responderID,
		Status:       models.AssignmentArrived,
	})

	assert.ErrorIs(t, err, service.ErrInvalidTransition)
}

func TestAdvanceAssignment_RecordsLocation(t *testing.T) {
	svc, m := newTestDispatchService(t, assignment.ForwardPolicy())
	ctx := context.Background()

	responderID := uuid.New()
	current := &models.Assignment{ID: uuid.New(), IncidentID: uuid.New(), ResponderID: &responderID, Status: models.AssignmentAccepted}
	loc := &models.GeoPoint{Latitude: 5.61, Longitude: -0.19}

	m.assignments.EXPECT().GetByID(ctx, current.ID).Return(current, nil)
	m.assignments.EXPECT().ApplyTransition(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, tr *models.Transition) (models.IncidentStatus, error) {
		assert.Nil(t, tr.IncidentStatus)
		require.NotNil(t, tr.ResponderLocation)
		assert.Equal(t, *loc, *tr.ResponderLocation)
		assert.Equal(t, responderID, *tr.ResponderID)
		return models.IncidentDispatched, nil
	})
	m.publisher.EXPECT().Enqueue(ctx, gomock.Any()).Return(nil)

	a, err := svc.AdvanceAssignment(ctx, service.AdvanceAssignmentInput{
		AssignmentID: current.ID,
		CallerID:     responderID,
		Status:       models.AssignmentEnRoute,
		Location:     loc,
	})

	require.NoError(t, err)
	assert.Equal(t, *loc, *a.CurrentLocation)
	assert.NotNil(t, a.EnRouteAt)
}

func TestAdvanceAssignment_ForbiddenForOtherCaller(t *testing.T) {
	svc, m := newTestDispatchService(t, assignment.ForwardPolicy())
	ctx := context.Background()

	responderID := uuid.New()
	current := &models.Assignment{ID: uuid.New(), ResponderID: &responderID, Status: models.AssignmentDispatched}
	m.assignments.EXPECT().GetByID(ctx, current.ID).Return(current, nil)

	_, err := svc.AdvanceAssignment(ctx, service.AdvanceAssignmentInput{
		AssignmentID: current.ID,
		CallerID:     uuid.New(),
		Status:       models.AssignmentAccepted,
	})

	assert.ErrorIs(t, err, service.ErrForbidden)
}

func TestAdvanceAssignment_ForbiddenWithoutResponder(t *testing.T) {
	svc, m := newTestDispatchService(t, assignment.ForwardPolicy())
	ctx := context.Background()

	current := &models.Assignment{ID: uuid.New(), Status: models.AssignmentDispatched}
	m.assignments.EXPECT().GetByID(ctx, current.ID).Return(current, nil)

	_, err := svc.AdvanceAssignment(ctx, service.AdvanceAssignmentInput{
		AssignmentID: current.ID,
		CallerID:     uuid.New(),
		Status:       models.AssignmentAccepted,
	})

	assert.ErrorIs(t, err, service.ErrForbidden)
}

func TestAdvanceAssignment_PolicyRejectsBackwards(t *testing.T) {
	svc, m := newTestDispatchService(t, assignment.ForwardPolicy())
	ctx := context.Background()

	responderID := uuid.New()
	current := &models.Assignment{ID: uuid.New(), ResponderID: &responderID, Status: models.AssignmentArrived}
	m.assignments.EXPECT().GetByID(ctx, current.ID).Return(current, nil)

	_, err := svc.AdvanceAssignment(ctx, service.AdvanceAssignmentInput{
		AssignmentID: current.ID,
		CallerID:     responderID,
		Status:       models.AssignmentAccepted,
	})

	assert.ErrorIs(t, err, service.ErrInvalidTransition)
}

func TestAdvanceAssignment_PermissivePolicyAllowsBackwards(t *testing.T) {
	svc, m := newTestDispatchService(t, assignment.PermissivePolicy())
	ctx := context.Background()

	responderID := uuid.New()
	current := &models.Assignment{ID: uuid.New(), ResponderID: &responderID, Status: models.AssignmentArrived}
	m.assignments.EXPECT().GetByID(ctx, current.ID).Return(current, nil)
	m.assignments.EXPECT().ApplyTransition(ctx, gomock.Any()).Return(models.IncidentInProgress, nil)
	m.publisher.EXPECT().Enqueue(ctx, gomock.Any()).Return(nil)

	a, err := svc.AdvanceAssignment(ctx, service.AdvanceAssignmentInput{
		AssignmentID: current.ID,
		CallerID:     responderID,
		Status:       models.AssignmentAccepted,
	})

	require.NoError(t, err)
	assert.Equal(t, models.AssignmentAccepted, a.Status)
}

func TestAdvanceAssignment_UnknownStatus(t *testing.T) {
	svc, _ := newTestDispatchService(t, assignment.ForwardPolicy())

	_, err := svc.AdvanceAssignment(context.Background(), service.AdvanceAssignmentInput{
		AssignmentID: uuid.New(),
		CallerID:     uuid.New(),
		Status:       "teleported",
	})

	assert.ErrorIs(t, err, service.ErrInvalidTransition)
}

func TestAdvanceAssignment_NotFound(t *testing.T) {
	svc, m := newTestDispatchService(t, assignment.ForwardPolicy())
	ctx := context.Background()
	id := uuid.New()
	m.assignments.EXPECT().GetByID(ctx, id).Return(nil, service.ErrNotFound)

	_, err := svc.AdvanceAssignment(ctx, service.AdvanceAssignmentInput{AssignmentID: id, CallerID: uuid.New(), Status: models.AssignmentAccepted})

	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestAdvanceAssignment_EnqueueFailureKeepsTransition(t *testing.T) {
	svc, m := newTestDispatchService(t, assignment.ForwardPolicy())
	ctx := context.Background()

	responderID := uuid.New()
	current := &models.Assignment{ID: uuid.New(), IncidentID: uuid.New(), ResponderID: &responderID, Status: models.AssignmentDispatched}
	m.assignments.EXPECT().GetByID(ctx, current.ID).Return(current, nil)
	m.assignments.EXPECT().ApplyTransition(ctx, gomock.Any()).Return(models.IncidentDispatched, nil)
	m.publisher.EXPECT().Enqueue(ctx, gomock.Any()).Return(errors.New("redis down"))

	a, err := svc.AdvanceAssignment(ctx, service.AdvanceAssignmentInput{
		AssignmentID: current.ID,
		CallerID:     responderID,
		Status:       models.AssignmentAccepted,
	})

	require.NoError(t, err)
	assert.Equal(t, models.AssignmentAccepted, a.Status)
}
