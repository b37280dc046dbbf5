package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/emergency_dispatch/internal/models"
	"github.com/shenikar/emergency_dispatch/internal/service"
)

const incidentCacheTTL = 5 * time.Minute

const incidentColumns = `
	id,
	title,
	description,
	category,
	severity,
	latitude,
	longitude,
	status,
	assigned_agency_id,
	created_at,
	dispatched_at,
	resolved_at,
	closed_at,
	updated_at,
	version`

type IncidentRepository struct {
	db          *pgxpool.Pool
	redisClient *redis.Client
}

func NewIncidentRepository(db *pgxpool.Pool, redisClient *redis.Client) *IncidentRepository {
	return &IncidentRepository{
		db:          db,
		redisClient: redisClient,
	}
}

func scanIncident(row pgx.Row) (*models.Incident, error) {
	incident := &models.Incident{}
	err := row.Scan(
		&incident.ID,
		&incident.Title,
		&incident.Description,
		&incident.Category,
		&incident.Severity,
		&incident.Latitude,
		&incident.Longitude,
		&incident.Status,
		&incident.AssignedAgencyID,
		&incident.CreatedAt,
		&incident.DispatchedAt,
		&incident.ResolvedAt,
		&incident.ClosedAt,
		&incident.UpdatedAt,
		&incident.Version,
	)
	if err != nil {
		return nil, err
	}
	return incident, nil
}

func collectIncidents(rows pgx.Rows) ([]*models.Incident, error) {
	defer rows.Close()

	incidents := make([]*models.Incident, 0)
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident row: %w", err)
		}
		incidents = append(incidents, incident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return incidents, nil
}

// Create создает новую запись об инциденте в бд
func (r *IncidentRepository) Create(ctx context.Context, incident *models.Incident) error {
	query := `
		INSERT INTO incidents (title, description, category, severity, latitude, longitude, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at, version;
	`
	err := r.db.QueryRow(ctx, query,
		incident.Title,
		incident.Description,
		incident.Category,
		incident.Severity,
		incident.Latitude,
		incident.Longitude,
		incident.Status,
	).Scan(&incident.ID, &incident.CreatedAt, &incident.UpdatedAt, &incident.Version)
	if err != nil {
		return fmt.Errorf("failed to create incident: %w", err)
	}
	return nil
}

// GetByID возвращает инцидент по его UUID
func (r *IncidentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE id = $1;`

	incident, err := scanIncident(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("incident with id %s: %w", id, service.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get incident by id: %w", err)
	}
	return incident, nil
}

// severityRankExpr maps the severity column onto its ordinal rank
func severityRankExpr() string {
	var b strings.Builder
	b.WriteString("CASE severity")
	for _, s := range models.Severities {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", s, s.Rank())
	}
	b.WriteString(" ELSE 0 END")
	return b.String()
}

// buildListQuery renders the filtered, paginated incident listing
func buildListQuery(filter service.IncidentFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.AgencyID != nil {
		args = append(args, *filter.AgencyID)
		conds = append(conds, fmt.Sprintf("assigned_agency_id = $%d", len(args)))
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(incidentColumns)
	b.WriteString(" FROM incidents")
	if len(conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}
	b.WriteString(" ORDER BY ")
	if filter.SortBySeverity {
		b.WriteString(severityRankExpr())
		b.WriteString(" DESC, ")
	}
	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)
	fmt.Fprintf(&b, "created_at DESC LIMIT $%d OFFSET $%d;", len(args)-1, len(args))
	return b.String(), args
}

// List возвращает страницу инцидентов, новые первыми
func (r *IncidentRepository) List(ctx context.Context, filter service.IncidentFilter) ([]*models.Incident, error) {
	query, args := buildListQuery(filter)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	return collectIncidents(rows)
}

// ListSince returns incidents created after since, optionally for one agency
func (r *IncidentRepository) ListSince(ctx context.Context, agencyID *uuid.UUID, since time.Time) ([]*models.Incident, error) {
	query := `SELECT ` + incidentColumns + `
		FROM incidents
		WHERE created_at >= $1
			AND ($2::uuid IS NULL OR assigned_agency_id = $2)
		ORDER BY created_at;
	`
	rows, err := r.db.Query(ctx, query, since, agencyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents since %s: %w", since.Format(time.RFC3339), err)
	}
	return collectIncidents(rows)
}

// liveAssignmentFilter matches assignments a cancel still has to close.
const liveAssignmentFilter = `status NOT IN ('completed', 'cancelled')`

// Cancel moves the incident to cancelled when its version still matches. In the
// same transaction every live assignment of the incident is cancelled and its
// responder released.
func (r *IncidentRepository) Cancel(ctx context.Context, id uuid.UUID, expectedVersion int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		UPDATE incidents SET
			status = 'cancelled',
			version = version + 1,
			updated_at = NOW()
		WHERE id = $1
			AND version = $2
			AND status NOT IN ('resolved', 'closed', 'cancelled');
	`
	cmdTag, err := tx.Exec(ctx, query, id, expectedVersion)
	if err != nil {
		return fmt.Errorf("failed to cancel incident: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("incident %s changed before cancel: %w", id, service.ErrIncidentConflict)
	}

	release := `
		UPDATE responders SET status = 'available'
		WHERE status = 'dispatched'
			AND id IN (
				SELECT responder_id FROM assignments
				WHERE incident_id = $1 AND responder_id IS NOT NULL AND ` + liveAssignmentFilter + `
			);
	`
	if _, err := tx.Exec(ctx, release, id); err != nil {
		return fmt.Errorf("failed to release responders of incident %s: %w", id, err)
	}

	closeAssignments := `
		UPDATE assignments SET
			status = 'cancelled',
			updated_at = NOW()
		WHERE incident_id = $1 AND ` + liveAssignmentFilter + `;
	`
	if _, err := tx.Exec(ctx, closeAssignments, id); err != nil {
		return fmt.Errorf("failed to cancel assignments of incident %s: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit cancel: %w", err)
	}
	return nil
}

func incidentCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("incident:%s", id.String())
}

// GetIncidentFromCache возвращает nil, nil при промахе кэша
func (r *IncidentRepository) GetIncidentFromCache(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	val, err := r.redisClient.Get(ctx, incidentCacheKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get incident from cache: %w", err)
	}

	incident := &models.Incident{}
	if err := json.Unmarshal(val, incident); err != nil {
		return nil, fmt.Errorf("failed to unmarshal incident from cache: %w", err)
	}
	return incident, nil
}

func (r *IncidentRepository) SetIncidentCache(ctx context.Context, incident *models.Incident) error {
	val, err := json.Marshal(incident)
	if err != nil {
		return fmt.Errorf("failed to marshal incident for cache: %w", err)
	}
	if err := r.redisClient.Set(ctx, incidentCacheKey(incident.ID), val, incidentCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to set incident in cache: %w", err)
	}
	return nil
}

func (r *IncidentRepository) InvalidateIncidentCache(ctx context.Context, id uuid.UUID) error {
	if err := r.redisClient.Del(ctx, incidentCacheKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate incident cache: %w", err)
	}
	return nil
}
