package aggregator

import (
	"ble-locate/internal/config/components"
	"ble-locate/internal/filter"
	"ble-locate/internal/models"
	"ble-locate/internal/ranging"
	"fmt"
	"github.com/cespare/xxhash/v2"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/stat"
	"sync"
	"time"
)

const DefaultShardCount = 32

type pairState struct {
	filter      *filter.RssiFilter
	history     []float64
	measurement models.Measurement
}

type shard struct {
	mu      sync.Mutex
	devices map[string]map[models.AnchorCoordinate]*pairState
}

// Aggregator keeps the latest measurement per (device, anchor) pair along with the
// filter state and RSSI history that produced it. Devices are spread over shards
// by hash so that records for one device serialise while others run in parallel.
type Aggregator struct {
	cfg       components.PipelineConfigImpl
	estimator *ranging.Estimator
	shards    []*shard
	now       func() time.Time
}

func New(cfg components.PipelineConfigImpl, shardCount int) *Aggregator {
	if shardCount <= 0 {
		shardCount = DefaultShardCount
	}
	shards := make([]*shard, shardCount)
	for i := range shards {
		shards[i] = &shard{devices: make(map[string]map[models.AnchorCoordinate]*pairState)}
	}
	return &Aggregator{
		cfg:       cfg,
		estimator: ranging.NewEstimator(cfg),
		shards:    shards,
		now:       time.Now,
	}
}

func (a *Aggregator) shardFor(deviceID string) *shard {
	return a.shards[xxhash.Sum64String(deviceID)%uint64(len(a.shards))]
}

// Record folds one raw sample into the pair's state, overwrites the device's measurement
// for that anchor and returns the device's full measurement set as seen right after the write.
// A zero timestamp is replaced with the current time.
func (a *Aggregator) Record(deviceID string, anchor models.AnchorCoordinate, rawRssi float64, payload string, at time.Time) ([]models.Measurement, error) {
	event := models.MeasurementEvent{DeviceID: deviceID, Anchor: &anchor, RawRssi: &rawRssi}
	if err := event.Validate(); err != nil {
		return nil, err
	}
	if at.IsZero() {
		at = a.now()
	}

	s := a.shardFor(deviceID)
	s.mu.Lock()
	defer s.mu.Unlock()

	anchors, ok := s.devices[deviceID]
	if !ok {
		anchors = make(map[models.AnchorCoordinate]*pairState)
		s.devices[deviceID] = anchors
	}
	pair, ok := anchors[anchor]
	if !ok {
		pair = &pairState{
			filter:  filter.NewRssiFilter(a.cfg),
			history: make([]float64, 0, a.cfg.RssiHistorySize),
		}
		anchors[anchor] = pair
	}

	pair.history = append(pair.history, rawRssi)
	if len(pair.history) > a.cfg.RssiHistorySize {
		pair.history = pair.history[len(pair.history)-a.cfg.RssiHistorySize:]
	}

	smoothed := pair.filter.Apply(rawRssi)
	distance, err := a.estimator.Estimate(smoothed)
	if err != nil {
		return nil, fmt.Errorf("estimate distance for %s: %w", deviceID, err)
	}

	pair.measurement = models.Measurement{
		Anchor:    anchor,
		Distance:  distance,
		Rssi:      smoothed,
		Variance:  a.variance(pair.history),
		Payload:   payload,
		Timestamp: at,
	}

	return snapshot(anchors), nil
}

func (a *Aggregator) variance(history []float64) float64 {
	if len(history) < 2 {
		return a.cfg.DefaultVariance + a.cfg.VarianceFloor
	}
	return stat.Variance(history, nil) + a.cfg.VarianceFloor
}

// Snapshot returns a copy of the device's measurements ordered by anchor.
func (a *Aggregator) Snapshot(deviceID string) ([]models.Measurement, bool) {
	s := a.shardFor(deviceID)
	s.mu.Lock()
	defer s.mu.Unlock()

	anchors, ok := s.devices[deviceID]
	if !ok {
		return nil, false
	}
	return snapshot(anchors), true
}

func (a *Aggregator) Devices() []string {
	var ids []string
	for _, s := range a.shards {
		s.mu.Lock()
		for id := range s.devices {
			ids = append(ids, id)
		}
		s.mu.Unlock()
	}
	slices.Sort(ids)
	return ids
}

// Evict drops every measurement recorded before cutoff, together with its filter state,
// and forgets devices left without measurements. It returns the number of measurements removed.
func (a *Aggregator) Evict(cutoff time.Time) int {
	removed := 0
	for _, s := range a.shards {
		s.mu.Lock()
		for id, anchors := range s.devices {
			for anchor, pair := range anchors {
				if pair.measurement.Timestamp.Before(cutoff) {
					delete(anchors, anchor)
					removed++
				}
			}
			if len(anchors) == 0 {
				delete(s.devices, id)
			}
		}
		s.mu.Unlock()
	}
	return removed
}

func snapshot(anchors map[models.AnchorCoordinate]*pairState) []models.Measurement {
	out := make([]models.Measurement, 0, len(anchors))
	for _, pair := range anchors {
		out = append(out, pair.measurement)
	}
	slices.SortFunc(out, compareAnchors)
	return out
}

func compareAnchors(a, b models.Measurement) int {
	switch {
	case a.Anchor.Lat < b.Anchor.Lat:
		return -1
	case a.Anchor.Lat > b.Anchor.Lat:
		return 1
	case a.Anchor.Lon < b.Anchor.Lon:
		return -1
	case a.Anchor.Lon > b.Anchor.Lon:
		return 1
	default:
		return 0
	}
}
