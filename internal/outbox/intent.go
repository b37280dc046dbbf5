// Package outbox is the boundary between the dispatch core and its side effects.
// Services enqueue intents; a separate worker delivers them with bounded retries.
package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch/internal/models"
)

type Kind string

const (
	KindIncidentUpdate Kind = "incident_update"
	KindNotification   Kind = "notification"
)

// Intent is one unit of outbound work.
type Intent struct {
	ID             uuid.UUID              `json:"id"`
	Kind           Kind                   `json:"kind"`
	IncidentUpdate *models.IncidentUpdate `json:"incident_update,omitempty"`
	Notification   *models.Notification   `json:"notification,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
}

func NewIncidentUpdateIntent(update models.IncidentUpdate) Intent {
	return Intent{
		ID:             uuid.New(),
		Kind:           KindIncidentUpdate,
		IncidentUpdate: &update,
		CreatedAt:      time.Now().UTC(),
	}
}

func NewNotificationIntent(n models.Notification) Intent {
	return Intent{
		ID:           uuid.New(),
		Kind:         KindNotification,
		Notification: &n,
		CreatedAt:    time.Now().UTC(),
	}
}

// Publisher enqueues intents for asynchronous delivery.
type Publisher interface {
	Enqueue(ctx context.Context, intent Intent) error
}

// IncidentBroadcaster pushes incident updates to real-time subscribers.
type IncidentBroadcaster interface {
	BroadcastIncidentUpdate(ctx context.Context, update models.IncidentUpdate) error
}

// Notifier delivers a notification to one user.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification) error
}
