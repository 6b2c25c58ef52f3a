package stats

import (
	"context"
	"sync"
	"time"

	"codeberg.org/mutker/pimon/internal/errors"
	"codeberg.org/mutker/pimon/internal/logger"
	"codeberg.org/mutker/pimon/internal/metrics"
	"codeberg.org/mutker/pimon/internal/rate"
	"codeberg.org/mutker/pimon/internal/sensor"
)

// Collector assembles stats snapshots from the probe set and serves them
// through a short-lived cache. Concurrent callers coalesce: the collector
// mutex admits one refresh at a time, and callers that arrive during a
// refresh block and then read the fresh cache entry.
type Collector struct {
	source   sensor.Source
	window   time.Duration
	interval time.Duration

	mu       sync.Mutex
	cached   Snapshot
	cachedAt time.Time
}

func NewCollector(source sensor.Source, window, interval time.Duration) *Collector {
	return &Collector{
		source:   source,
		window:   window,
		interval: interval,
	}
}

// Snapshot returns the current stats, refreshing when the cache window has
// elapsed. Probe failures degrade individual fields to their defaults; only
// an orchestration fault is returned as an error.
func (c *Collector) Snapshot(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.cachedAt.IsZero() && time.Since(c.cachedAt) < c.window {
		metrics.CacheHits.Inc()
		return c.cached, nil
	}

	snap, err := c.refresh(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	c.cached = snap
	c.cachedAt = time.Now()

	return snap, nil
}

// refresh fans out every probe concurrently so the cycle's wall-clock cost
// tracks the slowest probe, not the sum. Each goroutine writes a distinct
// snapshot field, so assembly needs no ordering between siblings.
func (c *Collector) refresh(ctx context.Context) (Snapshot, error) {
	start := time.Now()
	snap := Defaults()

	var (
		wg      sync.WaitGroup
		faultMu sync.Mutex
		fault   error
	)

	run := func(probe func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					faultMu.Lock()
					fault = errors.WithData(errors.ErrAggregationFault, r)
					faultMu.Unlock()
				}
			}()
			probe()
		}()
	}

	run(func() {
		if v, ok := c.source.CPUFraction(ctx); ok {
			snap.CPU = round(v, 3)
		}
	})
	run(func() {
		if v, ok := c.source.MemoryFraction(ctx); ok {
			snap.MemoryPercent = round(v, 3)
		}
	})
	run(func() {
		if v, ok := c.source.DiskUsageFraction(ctx); ok {
			snap.DiskUsagePercent = round(v, 3)
		}
	})
	run(func() {
		if v, ok := c.source.Temperature(ctx); ok {
			snap.Temperature = round(v, 1)
		}
	})
	run(func() {
		if v, ok := c.source.Uptime(ctx); ok {
			snap.UptimeHuman = v
		}
	})
	run(func() {
		if v, ok := c.source.LoadAverage(ctx); ok {
			snap.LoadAvg = v
		}
	})
	run(func() {
		if v, ok := c.source.FanRPM(ctx); ok {
			snap.FanRPM = v
		}
	})
	run(func() {
		if v, ok := c.source.CPUFrequency(ctx); ok {
			snap.CPUFreq = round(v, 1)
		}
	})
	run(func() {
		if v, ok := c.source.GPUFrequency(ctx); ok {
			snap.GPUFreq = v
		}
	})
	run(func() {
		read, write, err := rate.SamplePair(ctx, c.interval, func() (rate.Pair, error) {
			return c.source.DiskCounters(ctx)
		})
		if err != nil {
			c.rateUnavailable("disk_io", err)
			return
		}
		snap.DiskReadMBs = round(read, 3)
		snap.DiskWriteMBs = round(write, 3)
	})
	run(func() {
		recv, sent, err := rate.SamplePair(ctx, c.interval, func() (rate.Pair, error) {
			return c.source.NetCounters(ctx)
		})
		if err != nil {
			c.rateUnavailable("net_io", err)
			return
		}
		snap.NetRecvMBs = round(recv, 3)
		snap.NetSentMBs = round(sent, 3)
	})

	wg.Wait()

	if fault != nil {
		return Snapshot{}, fault
	}

	metrics.RefreshDuration.Observe(time.Since(start).Seconds())

	return snap, nil
}

func (c *Collector) rateUnavailable(probe string, err error) {
	metrics.ProbeFailures.WithLabelValues(probe).Inc()
	logger.Warn().Str("probe", probe).Err(err).Msg("throughput sampling unavailable, using default")
}
