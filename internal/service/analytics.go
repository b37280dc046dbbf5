package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch/internal/analytics"
	"github.com/shenikar/emergency_dispatch/internal/models"
	"github.com/sirupsen/logrus"
)

type ResponseTimeQuery struct {
	AgencyID  *uuid.UUID
	Days      int
	Threshold float64
	Window    int
}

type ResponseTimeReport struct {
	AgencyID     *uuid.UUID             `json:"agency_id,omitempty"`
	From         time.Time              `json:"from"`
	To           time.Time              `json:"to"`
	Distribution analytics.Distribution `json:"distribution"`
	Anomalies    []analytics.Anomaly    `json:"anomalies"`
	Trend        analytics.Trend        `json:"trend"`
}

// AnalyticsService reports response times and agency performance over a
// trailing window of days
type AnalyticsService interface {
	AgencyPerformance(ctx context.Context, agencyID uuid.UUID, days int) (*analytics.Performance, error)
	Leaderboard(ctx context.Context, days int) ([]analytics.LeaderboardEntry, error)
	ResponseTimeReport(ctx context.Context, q ResponseTimeQuery) (*ResponseTimeReport, error)
}

type analyticsService struct {
	incidents   IncidentRepository
	agencies    AgencyRepository
	defaultDays int
	logger      *logrus.Logger
	now         func() time.Time
}

func NewAnalyticsService(incidents IncidentRepository, agencies AgencyRepository, defaultDays int, logger *logrus.Logger) AnalyticsService {
	if defaultDays < 1 {
		defaultDays = 30
	}
	return &analyticsService{
		incidents:   incidents,
		agencies:    agencies,
		defaultDays: defaultDays,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *analyticsService) since(days int) (time.Time, time.Time) {
	if days < 1 {
		days = s.defaultDays
	}
	now := s.now().UTC()
	return now.AddDate(0, 0, -days), now
}

// AgencyPerformance scores one agency over its incidents in the window
func (s *analyticsService) AgencyPerformance(ctx context.Context, agencyID uuid.UUID, days int) (*analytics.Performance, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":   "analytics",
		"method":    "AgencyPerformance",
		"agency_id": agencyID,
	})
	log.Info("Scoring agency performance")

	agency, err := s.agencies.GetByID(ctx, agencyID)
	if err != nil {
		log.WithError(err).Warn("Failed to get agency")
		return nil, fmt.Errorf("service: could not get agency: %w", err)
	}

	from, now := s.since(days)
	incidents, err := s.incidents.ListSince(ctx, &agencyID, from)
	if err != nil {
		log.WithError(err).Error("Failed to list agency incidents")
		return nil, fmt.Errorf("service: could not list incidents: %w", err)
	}

	perf := analytics.Score(history(agency, incidents, now), now)
	log.WithField("score", perf.Score).Info("Agency performance scored")
	return &perf, nil
}

// Leaderboard ranks every agency by performance score
func (s *analyticsService) Leaderboard(ctx context.Context, days int) ([]analytics.LeaderboardEntry, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "analytics",
		"method":  "Leaderboard",
	})
	log.Info("Building agency leaderboard")

	agencies, err := s.agencies.ListAll(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to list agencies")
		return nil, fmt.Errorf("service: could not list agencies: %w", err)
	}

	from, now := s.since(days)
	incidents, err := s.incidents.ListSince(ctx, nil, from)
	if err != nil {
		log.WithError(err).Error("Failed to list incidents")
		return nil, fmt.Errorf("service: could not list incidents: %w", err)
	}

	byAgency := make(map[uuid.UUID][]*models.Incident)
	for _, incident := range incidents {
		if incident.AssignedAgencyID != nil {
			byAgency[*incident.AssignedAgencyID] = append(byAgency[*incident.AssignedAgencyID], incident)
		}
	}

	histories := make([]analytics.AgencyHistory, 0, len(agencies))
	for _, agency := range agencies {
		histories = append(histories, history(agency, byAgency[agency.ID], now))
	}

	entries, err := analytics.Leaderboard(ctx, histories, now)
	if err != nil {
		log.WithError(err).Error("Failed to score agencies")
		return nil, fmt.Errorf("service: could not build leaderboard: %w", err)
	}

	log.WithField("count", len(entries)).Info("Leaderboard built")
	return entries, nil
}

// ResponseTimeReport summarizes response times, flags anomalous days and
// classifies the trend
func (s *analyticsService) ResponseTimeReport(ctx context.Context, q ResponseTimeQuery) (*ResponseTimeReport, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "analytics",
		"method":  "ResponseTimeReport",
	})
	if q.AgencyID != nil {
		log = log.WithField("agency_id", *q.AgencyID)
	}
	log.Info("Building response time report")

	from, now := s.since(q.Days)
	incidents, err := s.incidents.ListSince(ctx, q.AgencyID, from)
	if err != nil {
		log.WithError(err).Error("Failed to list incidents")
		return nil, fmt.Errorf("service: could not list incidents: %w", err)
	}

	series := analytics.DailySeries(incidents, now)
	report := &ResponseTimeReport{
		AgencyID:     q.AgencyID,
		From:         from,
		To:           now,
		Distribution: analytics.Summarize(analytics.ResponseTimes(incidents, now)),
		Anomalies:    analytics.DetectAnomalies(series, q.Threshold),
		Trend:        analytics.AnalyzeTrend(series, q.Window),
	}

	log.WithField("count", report.Distribution.Count).Info("Response time report built")
	return report, nil
}

func history(agency *models.Agency, incidents []*models.Incident, now time.Time) analytics.AgencyHistory {
	return analytics.AgencyHistory{
		AgencyID:        agency.ID,
		AgencyName:      agency.Name,
		Incidents:       incidents,
		AvgResponseTime: analytics.Summarize(analytics.ResponseTimes(incidents, now)).Average,
	}
}
