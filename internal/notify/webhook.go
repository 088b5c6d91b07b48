package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/example/airpool/internal/models"
)

// Notifier tells a requester their ride request was decided on.
type Notifier interface {
	RequestDecided(ctx context.Context, req models.RideRequest) error
}

// WebhookNotifier posts decision payloads to an external push endpoint,
// typically a mobile-push relay. Delivery is best-effort with a short
// timeout.
type WebhookNotifier struct {
	Endpoint string
	Key      string
	Client   *http.Client
}

func NewWebhookNotifier(endpoint, key string) *WebhookNotifier {
	return &WebhookNotifier{Endpoint: endpoint, Key: key, Client: &http.Client{Timeout: 3 * time.Second}}
}

func (n *WebhookNotifier) RequestDecided(ctx context.Context, req models.RideRequest) error {
	body := map[string]any{
		"user_id":          req.UserID,
		"request_id":       req.ID,
		"status":           req.Status,
		"accepted_by":      req.AcceptedBy,
		"accepted_by_name": req.AcceptedName,
	}
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, n.Endpoint, bytes.NewReader(b))
	if err != nil {
		return err
	}
	hreq.Header.Set("Content-Type", "application/json")
	if n.Key != "" {
		hreq.Header.Set("Authorization", "Bearer "+n.Key)
	}
	resp, err := n.Client.Do(hreq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("notify webhook: status %d", resp.StatusCode)
	}
	return nil
}

// NopNotifier drops notifications; used when no webhook is configured.
type NopNotifier struct{}

func (NopNotifier) RequestDecided(ctx context.Context, req models.RideRequest) error { return nil }
