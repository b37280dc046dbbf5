package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/emergency_dispatch/internal/models"
)

const (
	counterSnapshotKey = "dispatch:counters:snapshot"
	counterVersionKey  = "dispatch:counters:version"
)

// CounterStore computes agency workload counters from the database and keeps
// the latest snapshot in Redis. The SQL refresh also writes the counters back
// onto the agency rows.
type CounterStore struct {
	db          *pgxpool.Pool
	redisClient *redis.Client
	ttl         time.Duration
	window      time.Duration
}

func NewCounterStore(db *pgxpool.Pool, redisClient *redis.Client, ttl time.Duration, windowDays int) *CounterStore {
	if windowDays < 1 {
		windowDays = 30
	}
	return &CounterStore{
		db:          db,
		redisClient: redisClient,
		ttl:         ttl,
		window:      time.Duration(windowDays) * 24 * time.Hour,
	}
}

// Refresh recomputes every agency's counters and publishes a new snapshot version
func (s *CounterStore) Refresh(ctx context.Context) (*models.CounterSnapshot, error) {
	query := `
		WITH agg AS (
			SELECT
				a.id,
				(SELECT COUNT(*) FROM incidents i
					WHERE i.assigned_agency_id = a.id
						AND i.status IN ('dispatched', 'in_progress')) AS active_incidents,
				(SELECT COUNT(*) FROM responders r
					WHERE r.agency_id = a.id
						AND r.status = 'available') AS available_responders,
				(SELECT AVG(EXTRACT(EPOCH FROM (i.resolved_at - i.created_at)) / 60)
					FROM incidents i
					WHERE i.assigned_agency_id = a.id
						AND i.resolved_at IS NOT NULL
						AND i.created_at >= $1) AS avg_response
			FROM agencies a
		)
		UPDATE agencies a SET
			active_incident_count = agg.active_incidents,
			available_responder_count = agg.available_responders,
			avg_response_time_minutes = agg.avg_response
		FROM agg
		WHERE a.id = agg.id
		RETURNING a.id, a.active_incident_count, a.available_responder_count, a.avg_response_time_minutes;
	`
	takenAt := time.Now().UTC()
	rows, err := s.db.Query(ctx, query, takenAt.Add(-s.window))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate agency counters: %w", err)
	}
	defer rows.Close()

	counters := make(map[uuid.UUID]models.AgencyCounters)
	for rows.Next() {
		var (
			id uuid.UUID
			c  models.AgencyCounters
		)
		if err := rows.Scan(&id, &c.ActiveIncidents, &c.AvailableResponders, &c.AvgResponseTimeMinutes); err != nil {
			return nil, fmt.Errorf("failed to scan agency counters: %w", err)
		}
		counters[id] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error counters iteration: %w", err)
	}

	version, err := s.redisClient.Incr(ctx, counterVersionKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to bump counter snapshot version: %w", err)
	}

	snapshot := &models.CounterSnapshot{
		Version:  version,
		TakenAt:  takenAt,
		TTL:      s.ttl,
		Counters: counters,
	}
	val, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal counter snapshot: %w", err)
	}
	if err := s.redisClient.Set(ctx, counterSnapshotKey, val, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("failed to store counter snapshot: %w", err)
	}
	return snapshot, nil
}

// Current returns the stored snapshot, nil when it expired or was never taken
func (s *CounterStore) Current(ctx context.Context) (*models.CounterSnapshot, error) {
	val, err := s.redisClient.Get(ctx, counterSnapshotKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get counter snapshot: %w", err)
	}

	snapshot := &models.CounterSnapshot{}
	if err := json.Unmarshal(val, snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal counter snapshot: %w", err)
	}
	return snapshot, nil
}
