package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/custodyledger/internal/domain"
)

// DefaultModelSnapshotKey is where fitted scoring weights are kept.
const DefaultModelSnapshotKey = "model:snapshot:logistic_regression"

// ModelSnapshotStore implements usecase.ModelSnapshotStore as a single
// JSON document under one key.
type ModelSnapshotStore struct {
	client redis.Cmdable
	key    string
}

// NewModelSnapshotStore creates a store writing to key, or to
// DefaultModelSnapshotKey when key is empty.
func NewModelSnapshotStore(client redis.Cmdable, key string) *ModelSnapshotStore {
	if key == "" {
		key = DefaultModelSnapshotKey
	}
	return &ModelSnapshotStore{client: client, key: key}
}

// Save overwrites the stored snapshot. A zero ttl keeps it forever.
func (s *ModelSnapshotStore) Save(ctx context.Context, snapshot *domain.ModelSnapshot, ttl time.Duration) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode model snapshot: %w", err)
	}

	return s.client.Set(ctx, s.key, data, ttl).Err()
}

// Load returns the stored snapshot, or (nil, nil) when none exists.
func (s *ModelSnapshotStore) Load(ctx context.Context) (*domain.ModelSnapshot, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var snap domain.ModelSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode model snapshot: %w", err)
	}

	return &snap, nil
}
