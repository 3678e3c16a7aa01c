package services

import (
	"context"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"sync"
	"testing"
	"time"
)

type fakeEvictor struct {
	mu      sync.Mutex
	cutoffs []time.Time
}

func (f *fakeEvictor) Evict(cutoff time.Time) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoffs = append(f.cutoffs, cutoff)
	return 1
}

func (f *fakeEvictor) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cutoffs)
}

func TestSweepUsesTTLCutoff(t *testing.T) {
	evictor := &fakeEvictor{}
	sweeper := NewSweeper(evictor, 5*time.Minute, time.Minute, zerolog.Nop())
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	sweeper.now = func() time.Time { return now }

	assert.Equal(t, 1, sweeper.Sweep())
	assert.Equal(t, []time.Time{now.Add(-5 * time.Minute)}, evictor.cutoffs)
}

func TestSweeperRunsUntilCancelled(t *testing.T) {
	evictor := &fakeEvictor{}
	sweeper := NewSweeper(evictor, time.Minute, 5*time.Millisecond, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())

	sweeper.Start(ctx)
	assert.Eventually(t, func() bool { return evictor.calls() >= 2 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-sweeper.Done():
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
