package cache

import (
	"ble-locate/internal/models"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/rs/zerolog"
	"golang.org/x/exp/slices"
	"time"
)

// PredictionCache keeps the latest prediction per device so new viewers can be
// bootstrapped without waiting for fresh measurements.
type PredictionCache struct {
	kv     KVStore
	prefix string
	ttl    time.Duration
	logger zerolog.Logger
}

func NewPredictionCache(kv KVStore, prefix string, ttl time.Duration, logger zerolog.Logger) *PredictionCache {
	return &PredictionCache{
		kv:     kv,
		prefix: prefix,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *PredictionCache) key(deviceID string) string {
	return fmt.Sprintf("%s:prediction:%s", c.prefix, deviceID)
}

func (c *PredictionCache) Name() string {
	return "redis"
}

func (c *PredictionCache) PublishObservation(ctx context.Context, event *models.RawObservationEvent) error {
	return nil
}

func (c *PredictionCache) PublishPrediction(ctx context.Context, event *models.PredictionEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal prediction: %w", err)
	}
	if err := c.kv.Set(ctx, c.key(event.DeviceID), string(data), c.ttl); err != nil {
		return fmt.Errorf("failed to cache prediction for %s: %w", event.DeviceID, err)
	}
	return nil
}

func (c *PredictionCache) Latest(ctx context.Context, deviceID string) (*models.PredictionEvent, error) {
	raw, err := c.kv.Get(ctx, c.key(deviceID))
	if err != nil {
		return nil, err
	}
	var event models.PredictionEvent
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		return nil, fmt.Errorf("failed to decode cached prediction for %s: %w", deviceID, err)
	}
	return &event, nil
}

// All returns every cached prediction ordered by device id. Entries that expire or
// fail to decode between listing and reading are skipped.
func (c *PredictionCache) All(ctx context.Context) ([]*models.PredictionEvent, error) {
	keys, err := c.kv.Keys(ctx, c.key("*"))
	if err != nil {
		return nil, fmt.Errorf("failed to list cached predictions: %w", err)
	}

	predictions := make([]*models.PredictionEvent, 0, len(keys))
	for _, key := range keys {
		deviceID := key[len(c.key("")):]
		event, err := c.Latest(ctx, deviceID)
		if err != nil {
			if !errors.Is(err, ErrCacheMiss) {
				c.logger.Warn().Err(err).Str("key", key).Msg("Skipping cached prediction")
			}
			continue
		}
		predictions = append(predictions, event)
	}

	slices.SortFunc(predictions, func(a, b *models.PredictionEvent) int {
		switch {
		case a.DeviceID < b.DeviceID:
			return -1
		case a.DeviceID > b.DeviceID:
			return 1
		default:
			return 0
		}
	})
	return predictions, nil
}
