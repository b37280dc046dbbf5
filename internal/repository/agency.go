package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/emergency_dispatch/internal/models"
	"github.com/shenikar/emergency_dispatch/internal/service"
)

const agencyColumns = `
	id,
	name,
	type,
	latitude,
	longitude,
	active,
	admin_user_id,
	active_incident_count,
	available_responder_count,
	avg_response_time_minutes,
	created_at`

type AgencyRepository struct {
	db *pgxpool.Pool
}

func NewAgencyRepository(db *pgxpool.Pool) *AgencyRepository {
	return &AgencyRepository{db: db}
}

func scanAgency(row pgx.Row) (*models.Agency, error) {
	var (
		agency   models.Agency
		lat, lon *float64
	)
	err := row.Scan(
		&agency.ID,
		&agency.Name,
		&agency.Type,
		&lat,
		&lon,
		&agency.Active,
		&agency.AdminUserID,
		&agency.ActiveIncidentCount,
		&agency.AvailableResponderCount,
		&agency.AvgResponseTimeMinutes,
		&agency.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lat != nil && lon != nil {
		agency.Location = &models.GeoPoint{Latitude: *lat, Longitude: *lon}
	}
	return &agency, nil
}

func (r *AgencyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Agency, error) {
	query := `SELECT ` + agencyColumns + ` FROM agencies WHERE id = $1;`

	agency, err := scanAgency(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("agency with id %s: %w", id, service.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get agency by id: %w", err)
	}
	return agency, nil
}

// ListAll returns every agency in a stable order, active or not
func (r *AgencyRepository) ListAll(ctx context.Context) ([]*models.Agency, error) {
	query := `SELECT ` + agencyColumns + ` FROM agencies ORDER BY created_at, id;`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list agencies: %w", err)
	}
	defer rows.Close()

	agencies := make([]*models.Agency, 0)
	for rows.Next() {
		agency, err := scanAgency(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan agency row: %w", err)
		}
		agencies = append(agencies, agency)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return agencies, nil
}
