package analytics

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch/internal/models"
	"github.com/shenikar/emergency_dispatch/pkg/utils"
	"golang.org/x/sync/errgroup"
)

const (
	weightResponseTime = 0.3
	weightResolution   = 0.3
	weightVolume       = 0.2
	weightConsistency  = 0.2

	volumeTarget = 1000.0
)

// AgencyHistory is the input of the performance scorer for one agency.
type AgencyHistory struct {
	AgencyID        uuid.UUID
	AgencyName      string
	Incidents       []*models.Incident
	AvgResponseTime float64
}

type PerformanceFactors struct {
	ResponseTime   float64 `json:"response_time"`
	ResolutionRate float64 `json:"resolution_rate"`
	Volume         float64 `json:"volume"`
	Consistency    float64 `json:"consistency"`
}

type Performance struct {
	AgencyID         uuid.UUID          `json:"agency_id"`
	AgencyName       string             `json:"agency_name,omitempty"`
	Score            float64            `json:"score"`
	IncidentsHandled int                `json:"incidents_handled"`
	AvgResponseTime  float64            `json:"avg_response_time"`
	ResolutionRate   float64            `json:"resolution_rate"`
	Factors          PerformanceFactors `json:"factors"`
}

// ResolutionRate is the percentage of incidents that are resolved or closed.
func ResolutionRate(incidents []*models.Incident) float64 {
	if len(incidents) == 0 {
		return 0
	}
	final := 0
	for _, inc := range incidents {
		if inc != nil && inc.Status.IsFinal() {
			final++
		}
	}
	return float64(final) / float64(len(incidents)) * 100
}

// Score combines response time, resolution rate, volume and consistency into a
// value in [0, 100].
func Score(h AgencyHistory, now time.Time) Performance {
	rate := ResolutionRate(h.Incidents)
	times := ResponseTimes(h.Incidents, now)

	avg := h.AvgResponseTime
	if math.IsNaN(avg) || avg < 0 {
		avg = 0
	}

	factors := PerformanceFactors{
		ResponseTime:   utils.Clamp(100-avg/10, 0, 100),
		ResolutionRate: rate,
		Volume:         math.Min(100, float64(len(h.Incidents))/volumeTarget*100),
		Consistency:    math.Max(0, 100-stddev(times)/5),
	}

	score := weightResponseTime*factors.ResponseTime +
		weightResolution*factors.ResolutionRate +
		weightVolume*factors.Volume +
		weightConsistency*factors.Consistency

	return Performance{
		AgencyID:         h.AgencyID,
		AgencyName:       h.AgencyName,
		Score:            utils.RoundTo(utils.Clamp(score, 0, 100), 2),
		IncidentsHandled: len(h.Incidents),
		AvgResponseTime:  utils.RoundTo(avg, 2),
		ResolutionRate:   utils.RoundTo(rate, 2),
		Factors: PerformanceFactors{
			ResponseTime:   utils.RoundTo(factors.ResponseTime, 2),
			ResolutionRate: utils.RoundTo(factors.ResolutionRate, 2),
			Volume:         utils.RoundTo(factors.Volume, 2),
			Consistency:    utils.RoundTo(factors.Consistency, 2),
		},
	}
}

type LeaderboardEntry struct {
	Rank int `json:"rank"`
	Performance
}

// Leaderboard scores every agency concurrently and orders them by score. Agencies
// with equal scores keep their input order.
func Leaderboard(ctx context.Context, histories []AgencyHistory, now time.Time) ([]LeaderboardEntry, error) {
	results := make([]Performance, len(histories))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i := range histories {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = Score(histories[i], now)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	board := make([]LeaderboardEntry, len(results))
	for i, p := range results {
		board[i] = LeaderboardEntry{Rank: i + 1, Performance: p}
	}
	return board, nil
}
