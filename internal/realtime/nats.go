package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/shenikar/emergency_dispatch/internal/models"
	"github.com/sirupsen/logrus"
)

const IncidentUpdatesSubject = "incidents.updated"

// Sink receives incident updates, typically the local Hub.
type Sink interface {
	BroadcastIncidentUpdate(ctx context.Context, update models.IncidentUpdate) error
}

// NATSBroadcaster publishes incident updates to NATS so that every service
// instance can relay them to its own WebSocket clients.
type NATSBroadcaster struct {
	conn    *nats.Conn
	subject string
	logger  *logrus.Logger
}

func NewNATSBroadcaster(conn *nats.Conn, logger *logrus.Logger) *NATSBroadcaster {
	return &NATSBroadcaster{
		conn:    conn,
		subject: IncidentUpdatesSubject,
		logger:  logger,
	}
}

func (b *NATSBroadcaster) BroadcastIncidentUpdate(_ context.Context, update models.IncidentUpdate) error {
	payload, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("failed to marshal incident update: %w", err)
	}
	if err := b.conn.Publish(b.subject, payload); err != nil {
		return fmt.Errorf("failed to publish incident update: %w", err)
	}
	return nil
}

// Relay subscribes to the subject and forwards every update to sink.
func (b *NATSBroadcaster) Relay(sink Sink) (*nats.Subscription, error) {
	sub, err := b.conn.Subscribe(b.subject, relayHandler(sink, b.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", b.subject, err)
	}
	return sub, nil
}

func relayHandler(sink Sink, logger *logrus.Logger) nats.MsgHandler {
	return func(msg *nats.Msg) {
		var update models.IncidentUpdate
		if err := json.Unmarshal(msg.Data, &update); err != nil {
			logger.WithError(err).Warn("Discarding malformed incident update from NATS")
			return
		}
		if err := sink.BroadcastIncidentUpdate(context.Background(), update); err != nil {
			logger.WithError(err).WithField("incident_id", update.IncidentID).Warn("Failed to relay incident update")
		}
	}
}
