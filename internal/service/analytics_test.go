package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch/internal/models"
	"github.com/shenikar/emergency_dispatch/internal/service"
	"github.com/shenikar/emergency_dispatch/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestAnalyticsService(t *testing.T) (service.AnalyticsService, *mocks.MockIncidentRepository, *mocks.MockAgencyRepository) {
	ctrl := gomock.NewController(t)
	incidents := mocks.NewMockIncidentRepository(ctrl)
	agencies := mocks.NewMockAgencyRepository(ctrl)
	return service.NewAnalyticsService(incidents, agencies, 30, quietLogger()), incidents, agencies
}

func resolvedIncident(agencyID uuid.UUID, created time.Time, minutes int) *models.Incident {
	resolved := created.Add(time.Duration(minutes) * time.Minute)
	return &models.Incident{
		ID:               uuid.New(),
		Status:           models.IncidentResolved,
		AssignedAgencyID: &agencyID,
		CreatedAt:        created,
		ResolvedAt:       &resolved,
	}
}

func TestAgencyPerformance(t *testing.T) {
	svc, incidents, agencies := newTestAnalyticsService(t)
	ctx := context.Background()
	agency := &models.Agency{ID: uuid.New(), Name: "Ambulance North"}
	created := time.Now().Add(-48 * time.Hour)

	agencies.EXPECT().GetByID(ctx, agency.ID).Return(agency, nil)
	incidents.EXPECT().ListSince(ctx, &agency.ID, gomock.Any()).Return([]*models.Incident{
		resolvedIncident(agency.ID, created, 30),
		resolvedIncident(agency.ID, created, 30),
	}, nil)

	perf, err := svc.AgencyPerformance(ctx, agency.ID, 7)

	require.NoError(t, err)
	assert.Equal(t, agency.ID, perf.AgencyID)
	assert.Equal(t, 2, perf.IncidentsHandled)
	assert.Equal(t, 30.0, perf.AvgResponseTime)
	assert.Equal(t, 100.0, perf.ResolutionRate)
	assert.Equal(t, 79.14, perf.Score)
}

func TestAgencyPerformance_AgencyNotFound(t *testing.T) {
	svc, _, agencies := newTestAnalyticsService(t)
	ctx := context.Background()
	id := uuid.New()

	agencies.EXPECT().GetByID(ctx, id).Return(nil, service.ErrNotFound)

	_, err := svc.AgencyPerformance(ctx, id, 0)

	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestLeaderboard_GroupsIncidentsByAgency(t *testing.T) {
	svc, incidents, agencies := newTestAnalyticsService(t)
	ctx := context.Background()
	idle := &models.Agency{ID: uuid.New(), Name: "Idle"}
	busy := &models.Agency{ID: uuid.New(), Name: "Busy"}
	created := time.Now().Add(-24 * time.Hour)

	agencies.EXPECT().ListAll(ctx).Return([]*models.Agency{idle, busy}, nil)
	incidents.EXPECT().ListSince(ctx, (*uuid.UUID)(nil), gomock.Any()).Return([]*models.Incident{
		resolvedIncident(busy.ID, created, 20),
		{ID: uuid.New(), Status: models.IncidentReported},
	}, nil)

	entries, err := svc.Leaderboard(ctx, 0)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, busy.ID, entries[0].AgencyID)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, 1, entries[0].IncidentsHandled)
	assert.Equal(t, idle.ID, entries[1].AgencyID)
	assert.Equal(t, 2, entries[1].Rank)
}

func TestLeaderboard_RepositoryError(t *testing.T) {
	svc, _, agencies := newTestAnalyticsService(t)
	ctx := context.Background()

	agencies.EXPECT().ListAll(ctx).Return(nil, errors.New("db error"))

	_, err := svc.Leaderboard(ctx, 7)

	assert.ErrorContains(t, err, "could not list agencies")
}

func TestResponseTimeReport(t *testing.T) {
	svc, incidents, _ := newTestAnalyticsService(t)
	ctx := context.Background()
	agencyID := uuid.New()
	day := time.Now().UTC().Add(-72 * time.Hour)

	incidents.EXPECT().ListSince(ctx, &agencyID, gomock.Any()).Return([]*models.Incident{
		resolvedIncident(agencyID, day, 10),
		resolvedIncident(agencyID, day, 30),
		{ID: uuid.New(), Status: models.IncidentDispatched, CreatedAt: day},
	}, nil)

	report, err := svc.ResponseTimeReport(ctx, service.ResponseTimeQuery{AgencyID: &agencyID, Days: 7})

	require.NoError(t, err)
	assert.Equal(t, 2, report.Distribution.Count)
	assert.Equal(t, 20.0, report.Distribution.Average)
	assert.Empty(t, report.Anomalies)
	assert.Equal(t, "stable", string(report.Trend.Direction))
	assert.Len(t, report.Trend.Series, 1)
}

func TestResponseTimeReport_Empty(t *testing.T) {
	svc, incidents, _ := newTestAnalyticsService(t)
	ctx := context.Background()

	incidents.EXPECT().ListSince(ctx, (*uuid.UUID)(nil), gomock.Any()).Return(nil, nil)

	report, err := svc.ResponseTimeReport(ctx, service.ResponseTimeQuery{})

	require.NoError(t, err)
	assert.Zero(t, report.Distribution.Count)
	assert.Zero(t, report.Distribution.P95)
	assert.Empty(t, report.Anomalies)
}
