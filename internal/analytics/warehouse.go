package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// WarehouseClient runs SQL against a hosted warehouse's HTTP query endpoint.
// The warehouse itself is opaque; this client only knows the request and
// response envelope.
type WarehouseClient struct {
	Endpoint string
	Token    string
	Client   *http.Client
	cache    *Cache
}

func NewWarehouseClient(endpoint, token string, cacheTTL time.Duration) *WarehouseClient {
	return &WarehouseClient{
		Endpoint: endpoint,
		Token:    token,
		Client:   &http.Client{Timeout: 10 * time.Second},
		cache:    NewCache(cacheTTL),
	}
}

// Query executes a SQL statement and returns rows as generic maps. Results
// are served from the TTL cache when the same statement repeats.
func (w *WarehouseClient) Query(ctx context.Context, sql string) ([]map[string]any, error) {
	if rows, ok := w.cache.Get(sql); ok {
		return rows, nil
	}
	body, err := json.Marshal(map[string]string{"sql": sql})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if w.Token != "" {
		req.Header.Set("Authorization", "Bearer "+w.Token)
	}
	resp, err := w.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("warehouse query: status %d", resp.StatusCode)
	}
	var out struct {
		Rows []map[string]any `json:"rows"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	w.cache.Set(sql, out.Rows)
	return out.Rows, nil
}

// PopularAirports is the one canned query the API exposes: request counts per
// airport over the trailing week.
func (w *WarehouseClient) PopularAirports(ctx context.Context) ([]map[string]any, error) {
	const q = `SELECT airport, COUNT(*) AS requests FROM ride_events WHERE type = 'requested' AND at > now() - INTERVAL '7 days' GROUP BY airport ORDER BY requests DESC LIMIT 20`
	return w.Query(ctx, q)
}
