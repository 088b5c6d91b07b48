package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client calls a hosted text-completion endpoint. Used to draft pickup notes
// for matched riders; the model behind the endpoint is opaque.
type Client struct {
	Endpoint string
	Token    string
	HTTP     *http.Client
}

func NewClient(endpoint, token string) *Client {
	return &Client{Endpoint: endpoint, Token: token, HTTP: &http.Client{Timeout: 15 * time.Second}}
}

// PickupNote asks the completion endpoint to draft a short note telling a
// ride partner where to meet.
func (c *Client) PickupNote(ctx context.Context, address, airport string, departure time.Time) (string, error) {
	prompt := fmt.Sprintf(
		"Write a short, friendly note (under 40 words) for a ride-share partner. Pickup: %s. Flight from %s, leaving at %s. Mention the pickup spot and time.",
		address, airport, departure.Format("3:04 PM"),
	)
	return c.Complete(ctx, prompt)
}

// Complete posts a prompt and returns the completion text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(map[string]any{"prompt": prompt, "max_tokens": 120})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("assist: status %d", resp.StatusCode)
	}
	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.Text), nil
}
