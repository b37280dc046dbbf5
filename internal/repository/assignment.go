package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/emergency_dispatch/internal/models"
	"github.com/shenikar/emergency_dispatch/internal/service"
)

type AssignmentRepository struct {
	db *pgxpool.Pool
}

func NewAssignmentRepository(db *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

func pointCoords(p *models.GeoPoint) (lat, lon *float64) {
	if p == nil {
		return nil, nil
	}
	return &p.Latitude, &p.Longitude
}

// Create claims the incident with a compare-and-set on its version and open
// status, then inserts the assignment and marks the responder dispatched.
func (r *AssignmentRepository) Create(ctx context.Context, a *models.Assignment, expectedIncidentVersion int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	claim := `
		UPDATE incidents SET
			status = 'dispatched',
			dispatched_at = COALESCE(dispatched_at, $3),
			assigned_agency_id = $4,
			version = version + 1,
			updated_at = $3
		WHERE id = $1
			AND version = $2
			AND status IN ('reported', 'dispatched');
	`
	cmdTag, err := tx.Exec(ctx, claim, a.IncidentID, expectedIncidentVersion, a.CreatedAt, a.AgencyID)
	if err != nil {
		return fmt.Errorf("failed to claim incident: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("incident %s: %w", a.IncidentID, service.ErrIncidentConflict)
	}

	insert := `
		INSERT INTO assignments (id, incident_id, agency_id, responder_id, priority, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err = tx.Exec(ctx, insert,
		a.ID,
		a.IncidentID,
		a.AgencyID,
		a.ResponderID,
		a.Priority,
		a.Status,
		a.Notes,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert assignment: %w", err)
	}

	if a.ResponderID != nil {
		_, err = tx.Exec(ctx, `UPDATE responders SET status = 'dispatched' WHERE id = $1;`, *a.ResponderID)
		if err != nil {
			return fmt.Errorf("failed to mark responder dispatched: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit assignment: %w", err)
	}
	return nil
}

func (r *AssignmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Assignment, error) {
	query := `
		SELECT
			id,
			incident_id,
			agency_id,
			responder_id,
			priority,
			status,
			notes,
			current_latitude,
			current_longitude,
			created_at,
			accepted_at,
			en_route_at,
			arrived_at,
			completed_at,
			updated_at
		FROM assignments
		WHERE id = $1;
	`
	var (
		a        models.Assignment
		lat, lon *float64
	)
	err := r.db.QueryRow(ctx, query, id).Scan(
		&a.ID,
		&a.IncidentID,
		&a.AgencyID,
		&a.ResponderID,
		&a.Priority,
		&a.Status,
		&a.Notes,
		&lat,
		&lon,
		&a.CreatedAt,
		&a.AcceptedAt,
		&a.EnRouteAt,
		&a.ArrivedAt,
		&a.CompletedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("assignment with id %s: %w", id, service.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get assignment by id: %w", err)
	}
	if lat != nil && lon != nil {
		a.CurrentLocation = &models.GeoPoint{Latitude: *lat, Longitude: *lon}
	}
	return &a, nil
}

// acceptsAssignmentProgress reports whether assignment steps may still be
// recorded against an incident in status.
func acceptsAssignmentProgress(status models.IncidentStatus) bool {
	return status != models.IncidentCancelled && status != models.IncidentClosed
}

// incidentProjection returns the incident status and resolved_at written by t.
// Moving back to in_progress clears a resolved_at left by another assignment.
func incidentProjection(t *models.Transition) (models.IncidentStatus, *time.Time) {
	status := *t.IncidentStatus
	if status != models.IncidentResolved {
		return status, nil
	}
	return status, t.ResolvedAt
}

// ApplyTransition writes the assignment, the projected incident status and the
// responder updates in one transaction.
func (r *AssignmentRepository) ApplyTransition(ctx context.Context, t *models.Transition) (models.IncidentStatus, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Lock the incident so a concurrent cancel either lands first or waits.
	var status models.IncidentStatus
	err = tx.QueryRow(ctx, `SELECT status FROM incidents WHERE id = $1 FOR UPDATE;`, t.IncidentID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("incident with id %s: %w", t.IncidentID, service.ErrNotFound)
		}
		return "", fmt.Errorf("failed to lock incident: %w", err)
	}
	if !acceptsAssignmentProgress(status) {
		return "", fmt.Errorf("incident %s is %s: %w", t.IncidentID, status, service.ErrInvalidTransition)
	}

	a := t.Assignment
	lat, lon := pointCoords(a.CurrentLocation)
	update := `
		UPDATE assignments SET
			status = $2,
			accepted_at = $3,
			en_route_at = $4,
			arrived_at = $5,
			completed_at = $6,
			current_latitude = $7,
			current_longitude = $8,
			updated_at = $9
		WHERE id = $1;
	`
	cmdTag, err := tx.Exec(ctx, update,
		a.ID,
		a.Status,
		a.AcceptedAt,
		a.EnRouteAt,
		a.ArrivedAt,
		a.CompletedAt,
		lat,
		lon,
		a.UpdatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("failed to update assignment: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return "", fmt.Errorf("assignment with id %s: %w", a.ID, service.ErrNotFound)
	}

	if t.IncidentStatus != nil {
		next, resolvedAt := incidentProjection(t)
		project := `
			UPDATE incidents SET
				status = $2,
				resolved_at = $3,
				version = version + 1,
				updated_at = $4
			WHERE id = $1;
		`
		if _, err := tx.Exec(ctx, project, t.IncidentID, next, resolvedAt, a.UpdatedAt); err != nil {
			return "", fmt.Errorf("failed to update incident status: %w", err)
		}
		status = next
	}

	if t.ResponderID != nil && t.ResponderLocation != nil {
		track := `
			UPDATE responders SET
				last_latitude = $2,
				last_longitude = $3,
				last_location_at = $4
			WHERE id = $1;
		`
		_, err = tx.Exec(ctx, track, *t.ResponderID, t.ResponderLocation.Latitude, t.ResponderLocation.Longitude, t.LocationAt)
		if err != nil {
			return "", fmt.Errorf("failed to record responder location: %w", err)
		}
	}

	if t.ReleaseResponder && t.ResponderID != nil {
		_, err = tx.Exec(ctx, `UPDATE responders SET status = 'available' WHERE id = $1 AND status = 'dispatched';`, *t.ResponderID)
		if err != nil {
			return "", fmt.Errorf("failed to release responder: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("failed to commit transition: %w", err)
	}
	return status, nil
}
