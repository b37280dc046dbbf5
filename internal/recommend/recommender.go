// Package recommend ranks candidate agencies for an incident by a five-factor
// weighted score.
package recommend

import (
	"math"
	"sort"
	"time"

	"github.com/shenikar/emergency_dispatch/internal/geo"
	"github.com/shenikar/emergency_dispatch/internal/models"
	"github.com/shenikar/emergency_dispatch/pkg/utils"
)

const defaultAvgResponseMinutes = 60.0

// Factors is the per-factor breakdown of a score.
type Factors struct {
	Distance     float64 `json:"distance"`
	Category     float64 `json:"category"`
	Availability float64 `json:"availability"`
	Workload     float64 `json:"workload"`
	Performance  float64 `json:"performance"`
}

// Total is the sum of all factors, at most 100.
func (f Factors) Total() float64 {
	return f.Distance + f.Category + f.Availability + f.Workload + f.Performance
}

func (f Factors) score(factor Factor) float64 {
	switch factor {
	case FactorDistance:
		return f.Distance
	case FactorCategory:
		return f.Category
	case FactorAvailability:
		return f.Availability
	case FactorWorkload:
		return f.Workload
	case FactorPerformance:
		return f.Performance
	}
	return 0
}

type Recommendation struct {
	Agency     *models.Agency `json:"agency"`
	Score      float64        `json:"score"`
	DistanceKm float64        `json:"distance_km"`
	Factors    Factors        `json:"factors"`
	Reasons    []string       `json:"reasons"`
}

type Options struct {
	// ActiveOnly drops inactive agencies from the ranking.
	ActiveOnly bool
	Rules      []Rule
	Now        func() time.Time
}

type Recommender struct {
	activeOnly bool
	rules      []Rule
	now        func() time.Time
}

func NewRecommender(opts Options) *Recommender {
	r := &Recommender{
		activeOnly: opts.ActiveOnly,
		rules:      opts.Rules,
		now:        opts.Now,
	}
	if r.rules == nil {
		r.rules = DefaultRules
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// Rank scores every candidate that has coordinates and returns them sorted by
// score, best first. Equal scores keep the order of the input slice.
// Counters are taken from the snapshot when it is fresh, otherwise from the
// agency record.
func (r *Recommender) Rank(incident *models.Incident, agencies []*models.Agency, snapshot *models.CounterSnapshot) []Recommendation {
	now := r.now()
	out := make([]Recommendation, 0, len(agencies))
	for _, agency := range agencies {
		if agency == nil || agency.Location == nil {
			continue
		}
		if r.activeOnly && !agency.Active {
			continue
		}
		counters, ok := snapshot.For(agency.ID, now)
		if !ok {
			counters = models.CountersOf(agency)
		}
		out = append(out, r.score(incident, agency, counters))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

func (r *Recommender) score(incident *models.Incident, agency *models.Agency, counters models.AgencyCounters) Recommendation {
	distance := geo.Distance(incident.Location(), *agency.Location)

	avgResponse := defaultAvgResponseMinutes
	if counters.AvgResponseTimeMinutes != nil {
		avgResponse = *counters.AvgResponseTimeMinutes
	}

	factors := Factors{
		Distance:     math.Max(0, 30-distance*2),
		Category:     categoryScore(incident.Category, agency.Type),
		Availability: utils.Clamp(float64(counters.AvailableResponders)*5, 0, 20),
		Workload:     math.Max(0, 15-float64(counters.ActiveIncidents)*2),
		Performance:  math.Max(0, 10-avgResponse/6),
	}

	reasons := justify(r.rules, ruleInput{
		factors:  factors,
		category: string(incident.Category),
		counters: counterView{
			availableResponders: counters.AvailableResponders,
			activeIncidents:     counters.ActiveIncidents,
		},
	})

	return Recommendation{
		Agency:     agency,
		Score:      utils.RoundTo(factors.Total(), 2),
		DistanceKm: distance,
		Factors:    factors,
		Reasons:    reasons,
	}
}
