package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/airpool/internal/models"
)

// Key prefixes for the shared keyspace.
const (
	PrefixProfile = "profile:"
	PrefixRequest = "riderequest:"
	PrefixChat    = "chat:"
)

// Records wraps a RecordStore with the typed reads and writes the handlers
// need. It owns JSON encoding and key construction; callers never touch raw
// keys.
type Records struct {
	store RecordStore
}

func NewRecords(store RecordStore) *Records {
	return &Records{store: store}
}

func (r *Records) SaveProfile(ctx context.Context, p models.Profile) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, PrefixProfile+p.UserID, b)
}

func (r *Records) GetProfile(ctx context.Context, userID string) (models.Profile, error) {
	var p models.Profile
	b, err := r.store.Get(ctx, PrefixProfile+userID)
	if err != nil {
		return p, err
	}
	return p, json.Unmarshal(b, &p)
}

func (r *Records) SaveRequest(ctx context.Context, req models.RideRequest) error {
	b, err := json.Marshal(req)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, PrefixRequest+req.ID, b)
}

func (r *Records) GetRequest(ctx context.Context, id string) (models.RideRequest, error) {
	var req models.RideRequest
	b, err := r.store.Get(ctx, PrefixRequest+id)
	if err != nil {
		return req, err
	}
	return req, json.Unmarshal(b, &req)
}

// ListRequests snapshots the full ride-request pool. Rows that fail to decode
// are skipped rather than failing the scan.
func (r *Records) ListRequests(ctx context.Context) ([]models.RideRequest, error) {
	blobs, err := r.store.GetByPrefix(ctx, PrefixRequest)
	if err != nil {
		return nil, err
	}
	out := make([]models.RideRequest, 0, len(blobs))
	for _, b := range blobs {
		var req models.RideRequest
		if err := json.Unmarshal(b, &req); err != nil {
			continue
		}
		out = append(out, req)
	}
	return out, nil
}

func (r *Records) DeleteRequest(ctx context.Context, id string) error {
	return r.store.Delete(ctx, PrefixRequest+id)
}

// AppendChat stores a message under a per-thread sequence key so a prefix
// scan returns the thread in send order.
func (r *Records) AppendChat(ctx context.Context, m models.ChatMessage) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("%s%s:%020d", PrefixChat, m.ThreadID, m.SentAt.UnixNano())
	return r.store.Set(ctx, key, b)
}

func (r *Records) ListChat(ctx context.Context, threadID string) ([]models.ChatMessage, error) {
	blobs, err := r.store.GetByPrefix(ctx, PrefixChat+threadID+":")
	if err != nil {
		return nil, err
	}
	out := make([]models.ChatMessage, 0, len(blobs))
	for _, b := range blobs {
		var m models.ChatMessage
		if err := json.Unmarshal(b, &m); err != nil {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}
