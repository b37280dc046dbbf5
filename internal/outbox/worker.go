package outbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

const popTimeout = 5 * time.Second

// Source yields queued intents.
type Source interface {
	Pop(ctx context.Context, timeout time.Duration) (*Intent, error)
}

type WorkerConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// Worker drains the outbox and delivers every intent with exponential backoff.
// An intent that still fails after MaxRetries attempts is dropped.
type Worker struct {
	source      Source
	broadcaster IncidentBroadcaster
	notifier    Notifier
	logger      *logrus.Logger
	maxRetries  int
	baseDelay   time.Duration
}

// NewWorker создает новый Worker
func NewWorker(source Source, broadcaster IncidentBroadcaster, notifier Notifier, logger *logrus.Logger, cfg WorkerConfig) *Worker {
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	return &Worker{
		source:      source,
		broadcaster: broadcaster,
		notifier:    notifier,
		logger:      logger,
		maxRetries:  cfg.MaxRetries,
		baseDelay:   cfg.BaseDelay,
	}
}

// Start запускает горутину для обработки очереди до отмены ctx
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Starting outbox worker...")
	go func() {
		for {
			select {
			case <-ctx.Done():
				w.logger.Info("Stopping outbox worker.")
				return
			default:
				intent, err := w.source.Pop(ctx, popTimeout)
				if err != nil {
					if errors.Is(err, context.Canceled) {
						continue
					}
					w.logger.WithError(err).Error("Failed to pop outbox intent")
					w.sleep(ctx, w.baseDelay)
					continue
				}
				if intent == nil {
					continue
				}
				_ = w.Deliver(ctx, *intent)
			}
		}
	}()
}

// Deliver hands the intent to its collaborator, retrying failed attempts.
func (w *Worker) Deliver(ctx context.Context, intent Intent) error {
	log := w.logger.WithFields(logrus.Fields{
		"intent_id": intent.ID,
		"kind":      intent.Kind,
	})
	log.Debug("Processing outbox intent...")

	delay := w.baseDelay
	var err error
	for attempt := 1; attempt <= w.maxRetries; attempt++ {
		if err = w.deliverOnce(ctx, intent); err == nil {
			log.Debug("Outbox intent delivered.")
			return nil
		}
		if attempt == w.maxRetries {
			break
		}
		log.WithError(err).Warnf("Outbox delivery failed. Retrying in %v. Retries left: %d", delay, w.maxRetries-attempt)
		if !w.sleep(ctx, delay) {
			err = ctx.Err()
			break
		}
		delay *= 2
	}

	log.WithError(err).Errorf("Dropping outbox intent after %d attempts", w.maxRetries)
	return err
}

func (w *Worker) deliverOnce(ctx context.Context, intent Intent) error {
	switch intent.Kind {
	case KindIncidentUpdate:
		if intent.IncidentUpdate == nil {
			return fmt.Errorf("intent %s has no incident update", intent.ID)
		}
		return w.broadcaster.BroadcastIncidentUpdate(ctx, *intent.IncidentUpdate)
	case KindNotification:
		if intent.Notification == nil {
			return fmt.Errorf("intent %s has no notification", intent.ID)
		}
		return w.notifier.Notify(ctx, *intent.Notification)
	}
	return fmt.Errorf("unknown intent kind %q", intent.Kind)
}

// sleep waits for d and reports false if ctx ended first.
func (w *Worker) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
