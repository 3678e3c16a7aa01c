package cache

import (
	"ble-locate/internal/models"
	"context"
	"errors"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *PredictionCache) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cache := NewPredictionCache(NewRedisKVStore(client), "ble-locate", time.Minute, zerolog.Nop())
	return mr, cache
}

func prediction(deviceID string, lat, lon float64) *models.PredictionEvent {
	return &models.PredictionEvent{
		ID:                "id-" + deviceID,
		DeviceID:          deviceID,
		EstimatedLocation: models.AnchorCoordinate{Lat: lat, Lon: lon},
		Method:            "wnls",
		Timestamp:         time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestPublishPredictionStoresJSONWithTTL(t *testing.T) {
	mr, cache := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, cache.PublishPrediction(ctx, prediction("tag-1", 12.5, 76.5)))

	assert.True(t, mr.Exists("ble-locate:prediction:tag-1"))
	assert.Equal(t, time.Minute, mr.TTL("ble-locate:prediction:tag-1"))

	latest, err := cache.Latest(ctx, "tag-1")
	require.NoError(t, err)
	assert.Equal(t, 12.5, latest.EstimatedLocation.Lat)
	assert.Equal(t, "id-tag-1", latest.ID)
}

func TestLatestOverwritesAndMisses(t *testing.T) {
	mr, cache := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, cache.PublishPrediction(ctx, prediction("tag-1", 1, 1)))
	require.NoError(t, cache.PublishPrediction(ctx, prediction("tag-1", 2, 2)))

	latest, err := cache.Latest(ctx, "tag-1")
	require.NoError(t, err)
	assert.Equal(t, 2.0, latest.EstimatedLocation.Lat)

	_, err = cache.Latest(ctx, "tag-9")
	assert.True(t, errors.Is(err, ErrCacheMiss))

	mr.FastForward(2 * time.Minute)
	_, err = cache.Latest(ctx, "tag-1")
	assert.True(t, errors.Is(err, ErrCacheMiss))
}

func TestAllReturnsSortedPredictions(t *testing.T) {
	mr, cache := setupTestRedis(t)
	ctx := context.Background()

	for _, id := range []string{"tag-3", "tag-1", "tag-2"} {
		require.NoError(t, cache.PublishPrediction(ctx, prediction(id, 1, 1)))
	}
	require.NoError(t, mr.Set("ble-locate:prediction:broken", "{not json"))
	require.NoError(t, mr.Set("other:prediction:tag-4", "{}"))

	all, err := cache.All(ctx)

	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "tag-1", all[0].DeviceID)
	assert.Equal(t, "tag-2", all[1].DeviceID)
	assert.Equal(t, "tag-3", all[2].DeviceID)
}

func TestPublishObservationIsIgnored(t *testing.T) {
	mr, cache := setupTestRedis(t)

	require.NoError(t, cache.PublishObservation(context.Background(), &models.RawObservationEvent{DeviceID: "tag-1"}))
	assert.Empty(t, mr.Keys())
}
