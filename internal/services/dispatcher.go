package services

import (
	"ble-locate/internal/models"
	"context"
	"errors"
	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"
	"sync"
	"time"
)

var ErrDispatcherClosed = errors.New("dispatcher is closed")

type ProcessFunc func(ctx context.Context, event *models.MeasurementEvent) error

// Dispatcher is a keyed worker pool. Every device is pinned to one worker by hash,
// so its samples are processed in arrival order while different devices run in parallel.
type Dispatcher struct {
	queues  []chan *models.MeasurementEvent
	process ProcessFunc
	timeout time.Duration
	logger  zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(workers, queueSize int, process ProcessFunc, logger zerolog.Logger) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	queues := make([]chan *models.MeasurementEvent, workers)
	for i := range queues {
		queues[i] = make(chan *models.MeasurementEvent, queueSize)
	}
	return &Dispatcher{
		queues:  queues,
		process: process,
		timeout: 30 * time.Second,
		logger:  logger,
	}
}

func (d *Dispatcher) Start(ctx context.Context) {
	for i, queue := range d.queues {
		d.wg.Add(1)
		go d.work(ctx, i, queue)
	}
	d.logger.Info().Int("workers", len(d.queues)).Msg("Dispatcher started")
}

func (d *Dispatcher) work(ctx context.Context, id int, queue <-chan *models.MeasurementEvent) {
	defer d.wg.Done()
	for event := range queue {
		processCtx, cancel := context.WithTimeout(ctx, d.timeout)
		if err := d.process(processCtx, event); err != nil {
			d.logger.Error().Err(err).
				Int("worker", id).
				Str("device_id", event.DeviceID).
				Msg("Failed to process measurement")
		}
		cancel()
	}
}

// Submit queues event on its device's worker, blocking while that queue is full.
func (d *Dispatcher) Submit(ctx context.Context, event *models.MeasurementEvent) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}

	queue := d.queues[xxhash.Sum64String(event.DeviceID)%uint64(len(d.queues))]
	select {
	case queue <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop refuses new events and waits until every queued event has been processed.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, queue := range d.queues {
		close(queue)
	}
	d.mu.Unlock()

	d.wg.Wait()
	d.logger.Info().Msg("Dispatcher stopped")
}
