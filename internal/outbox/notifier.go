package outbox

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shenikar/emergency_dispatch/internal/models"
	"github.com/sirupsen/logrus"
)

// WebhookNotifier posts notifications to the notification service webhook.
type WebhookNotifier struct {
	url        string
	secret     string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewWebhookNotifier creates a new WebhookNotifier
func NewWebhookNotifier(url, secret string, timeout time.Duration, logger *logrus.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		secret: secret,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Notify sends one POST; retries are the worker's concern.
func (n *WebhookNotifier) Notify(ctx context.Context, notification models.Notification) error {
	if n.url == "" {
		n.logger.WithField("user_id", notification.UserID).Warn("Webhook URL is not configured. Skipping notification delivery.")
		return nil
	}

	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	// HMAC signature when WEBHOOK_SECRET is set
	if n.secret != "" {
		req.Header.Set("X-Webhook-Signature", generateHMACSHA256(payload, n.secret))
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification webhook responded with status %d", resp.StatusCode)
	}
	return nil
}

// generateHMACSHA256 generates an HMAC-SHA256 signature for data
func generateHMACSHA256(data []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
