package analytics

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolutionRate(t *testing.T) {
	assert.Equal(t, 0.0, ResolutionRate(nil))

	all := []*models.Incident{
		{Status: models.IncidentResolved},
		{Status: models.IncidentClosed},
	}
	assert.Equal(t, 100.0, ResolutionRate(all))

	half := append(all, &models.Incident{Status: models.IncidentReported}, &models.Incident{Status: models.IncidentCancelled})
	assert.Equal(t, 50.0, ResolutionRate(half))
}

func TestScore_ZeroIncidents(t *testing.T) {
	p := Score(AgencyHistory{}, baseTime)

	assert.Equal(t, 50.0, p.Score)
	assert.Equal(t, 0, p.IncidentsHandled)
	assert.Equal(t, 0.0, p.ResolutionRate)
	assert.Equal(t, 100.0, p.Factors.ResponseTime)
	assert.Equal(t, 100.0, p.Factors.Consistency)
}

func TestScore_AllResolved(t *testing.T) {
	incidents := make([]*models.Incident, 4)
	for i := range incidents {
		incidents[i] = resolvedAfter(baseTime.Add(time.Duration(i)*time.Hour), 30*time.Minute)
	}

	p := Score(AgencyHistory{AgencyID: uuid.New(), Incidents: incidents, AvgResponseTime: 30}, baseTime.AddDate(0, 0, 1))

	assert.Equal(t, 100.0, p.ResolutionRate)
	assert.Equal(t, 97.0, p.Factors.ResponseTime)
	assert.Equal(t, 0.4, p.Factors.Volume)
	assert.Equal(t, 100.0, p.Factors.Consistency)
	assert.Equal(t, 79.18, p.Score)
	assert.Equal(t, 4, p.IncidentsHandled)
}

func TestScore_AlwaysWithinBounds(t *testing.T) {
	histories := []AgencyHistory{
		{AvgResponseTime: -500},
		{AvgResponseTime: 1e9},
		{AvgResponseTime: math.NaN()},
		{AvgResponseTime: math.Inf(1)},
		{AvgResponseTime: 12, Incidents: bulkResolved(1500, 5*time.Minute)},
		{AvgResponseTime: 600, Incidents: []*models.Incident{
			resolvedAfter(baseTime, time.Minute),
			resolvedAfter(baseTime, 48*time.Hour),
			{Status: models.IncidentReported, CreatedAt: baseTime},
		}},
	}
	for i, h := range histories {
		p := Score(h, baseTime.AddDate(0, 0, 10))
		assert.GreaterOrEqual(t, p.Score, 0.0, "history %d", i)
		assert.LessOrEqual(t, p.Score, 100.0, "history %d", i)
	}
}

func bulkResolved(n int, d time.Duration) []*models.Incident {
	out := make([]*models.Incident, n)
	for i := range out {
		out[i] = resolvedAfter(baseTime, d)
	}
	return out
}

func TestLeaderboard(t *testing.T) {
	slow := AgencyHistory{AgencyID: uuid.New(), AgencyName: "slow", AvgResponseTime: 900}
	fast := AgencyHistory{AgencyID: uuid.New(), AgencyName: "fast", AvgResponseTime: 10, Incidents: bulkResolved(10, 10*time.Minute)}
	tieA := AgencyHistory{AgencyID: uuid.New(), AgencyName: "tie-a"}
	tieB := AgencyHistory{AgencyID: uuid.New(), AgencyName: "tie-b"}

	board, err := Leaderboard(context.Background(), []AgencyHistory{slow, tieA, fast, tieB}, baseTime.AddDate(0, 0, 1))

	require.NoError(t, err)
	require.Len(t, board, 4)
	assert.Equal(t, "fast", board[0].AgencyName)
	assert.Equal(t, 1, board[0].Rank)
	assert.Equal(t, "tie-a", board[1].AgencyName)
	assert.Equal(t, "tie-b", board[2].AgencyName)
	assert.Equal(t, "slow", board[3].AgencyName)
	assert.Equal(t, 4, board[3].Rank)
}

func TestLeaderboard_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Leaderboard(ctx, []AgencyHistory{{}}, baseTime)

	assert.ErrorIs(t, err, context.Canceled)
}
