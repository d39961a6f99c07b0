package cache

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// reaper periodically sweeps expired entries and orphaned blobs. It runs
// one sweep immediately on start, then on a fixed interval. The ticker is
// released on stop so the process can shut down cleanly.
type reaper struct {
	cache    *Cache
	interval time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func newReaper(c *Cache, interval time.Duration) *reaper {
	return &reaper{
		cache:    c,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

func (r *reaper) start() {
	go r.loop()
}

func (r *reaper) loop() {
	defer close(r.doneCh)

	r.runSweep()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.runSweep()
		}
	}
}

// stop signals the loop and waits for any in-flight sweep to finish.
func (r *reaper) stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
	<-r.doneCh
}

func (r *reaper) runSweep() {
	sweepID := ulid.Make().String()
	log := r.cache.log.With().Str("sweep_id", sweepID).Logger()

	start := time.Now()
	res, err := r.cache.sweep(context.Background())
	if err != nil {
		log.Error().Err(err).Msg("cache sweep failed")
		return
	}

	log.Info().
		Int("deleted", res.DeletedCount).
		Int64("freed_bytes", res.FreedBytes).
		Int("orphans_removed", res.OrphansRemoved).
		Dur("duration", time.Since(start)).
		Msg("cache sweep finished")
}
