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

type ResponderRepository struct {
	db *pgxpool.Pool
}

func NewResponderRepository(db *pgxpool.Pool) *ResponderRepository {
	return &ResponderRepository{db: db}
}

func (r *ResponderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Responder, error) {
	query := `
		SELECT id, agency_id, name, status, last_latitude, last_longitude, last_location_at
		FROM responders
		WHERE id = $1;
	`
	var (
		responder models.Responder
		lat, lon  *float64
	)
	err := r.db.QueryRow(ctx, query, id).Scan(
		&responder.ID,
		&responder.AgencyID,
		&responder.Name,
		&responder.Status,
		&lat,
		&lon,
		&responder.LastLocationAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("responder with id %s: %w", id, service.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get responder by id: %w", err)
	}
	if lat != nil && lon != nil {
		responder.LastLocation = &models.GeoPoint{Latitude: *lat, Longitude: *lon}
	}
	return &responder, nil
}
