// Package analytics computes response-time statistics and agency performance
// scores over historical incidents. Everything here is pure and safe to call
// from any goroutine.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/shenikar/emergency_dispatch/internal/models"
	"github.com/shenikar/emergency_dispatch/pkg/utils"
)

const (
	DefaultAnomalyThreshold = 2.0
	DefaultTrendWindow      = 7
	trendThresholdPercent   = 5.0
	minAnomalyPoints        = 3
)

// ResponseTime returns the minutes from creation to resolution, or nil while the
// incident is not resolved or closed. Without resolvedAt the closing time is used,
// and failing that now.
func ResponseTime(incident *models.Incident, now time.Time) *float64 {
	if incident == nil || !incident.Status.IsFinal() {
		return nil
	}
	end := now
	switch {
	case incident.ResolvedAt != nil:
		end = *incident.ResolvedAt
	case incident.ClosedAt != nil:
		end = *incident.ClosedAt
	}
	minutes := utils.RoundTo(end.Sub(incident.CreatedAt).Minutes(), 2)
	return &minutes
}

// ResponseTimes collects the defined response times of the incidents.
func ResponseTimes(incidents []*models.Incident, now time.Time) []float64 {
	out := make([]float64, 0, len(incidents))
	for _, inc := range incidents {
		if rt := ResponseTime(inc, now); rt != nil {
			out = append(out, *rt)
		}
	}
	return out
}

type Distribution struct {
	Count   int     `json:"count"`
	Average float64 `json:"average"`
	Median  float64 `json:"median"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	P95     float64 `json:"p95"`
}

// Summarize returns count, average, median, min, max and the nearest-rank 95th
// percentile. All fields are zero for empty input.
func Summarize(times []float64) Distribution {
	if len(times) == 0 {
		return Distribution{}
	}
	sorted := append([]float64(nil), times...)
	sort.Float64s(sorted)
	n := len(sorted)

	median := sorted[n/2]
	if n%2 == 0 {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}

	rank := int(math.Ceil(0.95 * float64(n)))
	if rank < 1 {
		rank = 1
	}

	return Distribution{
		Count:   n,
		Average: utils.RoundTo(mean(sorted), 2),
		Median:  utils.RoundTo(median, 2),
		Min:     sorted[0],
		Max:     sorted[n-1],
		P95:     sorted[rank-1],
	}
}

type SeriesPoint struct {
	Date          time.Time `json:"date"`
	Value         float64   `json:"value"`
	MovingAverage *float64  `json:"moving_average,omitempty"`
}

type Anomaly struct {
	Index  int       `json:"index"`
	Date   time.Time `json:"date"`
	Value  float64   `json:"value"`
	ZScore float64   `json:"z_score"`
}

// DetectAnomalies flags the points whose |z-score| exceeds threshold. It needs at
// least three points and a non-zero spread.
func DetectAnomalies(series []SeriesPoint, threshold float64) []Anomaly {
	anomalies := make([]Anomaly, 0)
	if len(series) < minAnomalyPoints {
		return anomalies
	}
	if threshold <= 0 {
		threshold = DefaultAnomalyThreshold
	}

	values := make([]float64, len(series))
	for i, p := range series {
		values[i] = p.Value
	}
	avg := mean(values)
	sd := stddev(values)
	if sd == 0 {
		return anomalies
	}

	for i, p := range series {
		z := (p.Value - avg) / sd
		if math.Abs(z) > threshold {
			anomalies = append(anomalies, Anomaly{
				Index:  i,
				Date:   p.Date,
				Value:  p.Value,
				ZScore: utils.RoundTo(z, 2),
			})
		}
	}
	return anomalies
}

type TrendDirection string

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)

type Trend struct {
	Direction     TrendDirection `json:"direction"`
	ChangePercent float64        `json:"change_percent"`
	Series        []SeriesPoint  `json:"series"`
}

// AnalyzeTrend attaches a trailing moving average and classifies the series by
// comparing the mean of its second half with the mean of its first half.
func AnalyzeTrend(series []SeriesPoint, window int) Trend {
	if window <= 0 {
		window = DefaultTrendWindow
	}
	if len(series) < window {
		return Trend{Direction: TrendStable, Series: series}
	}

	out := make([]SeriesPoint, len(series))
	values := make([]float64, len(series))
	sum := 0.0
	for i, p := range series {
		values[i] = p.Value
		sum += p.Value
		if i >= window {
			sum -= series[i-window].Value
		}
		span := window
		if i+1 < window {
			span = i + 1
		}
		ma := utils.RoundTo(sum/float64(span), 2)
		out[i] = SeriesPoint{Date: p.Date, Value: p.Value, MovingAverage: &ma}
	}

	// A single point has no first half to compare against.
	half := len(values) / 2
	if half == 0 {
		return Trend{Direction: TrendStable, Series: out}
	}
	first := mean(values[:half])
	second := mean(values[half:])

	var change float64
	switch {
	case first != 0:
		change = (second - first) / first * 100
	case second > 0:
		change = 100
	case second < 0:
		change = -100
	}

	direction := TrendStable
	if change > trendThresholdPercent {
		direction = TrendUp
	} else if change < -trendThresholdPercent {
		direction = TrendDown
	}

	return Trend{Direction: direction, ChangePercent: utils.RoundTo(change, 2), Series: out}
}

// DailySeries averages the response times of final incidents per UTC day, ordered
// by date.
func DailySeries(incidents []*models.Incident, now time.Time) []SeriesPoint {
	type bucket struct {
		sum   float64
		count int
	}
	buckets := make(map[time.Time]*bucket)
	for _, inc := range incidents {
		rt := ResponseTime(inc, now)
		if rt == nil {
			continue
		}
		c := inc.CreatedAt.UTC()
		day := time.Date(c.Year(), c.Month(), c.Day(), 0, 0, 0, 0, time.UTC)
		b, ok := buckets[day]
		if !ok {
			b = &bucket{}
			buckets[day] = b
		}
		b.sum += *rt
		b.count++
	}

	series := make([]SeriesPoint, 0, len(buckets))
	for day, b := range buckets {
		series = append(series, SeriesPoint{Date: day, Value: utils.RoundTo(b.sum/float64(b.count), 2)})
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Date.Before(series[j].Date)
	})
	return series
}
