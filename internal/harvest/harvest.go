package harvest

import (
	"context"
	"fmt"
	"time"

	"github.com/wtfsayo/beerscape/internal/fetch"
	"github.com/wtfsayo/beerscape/internal/metrics"
	"github.com/wtfsayo/beerscape/internal/progress"
	"github.com/wtfsayo/beerscape/pkg/idpool"
)

// Fetcher probes a single identifier and classifies the outcome.
type Fetcher interface {
	Fetch(ctx context.Context, id uint64) fetch.Result
}

// Options configures the engine.
type Options struct {
	// Goal is the target count of acquired resources, existing included.
	Goal int

	// BatchSize is how many identifiers are probed per round, and also the
	// number of requests in flight simultaneously.
	// Default: 10
	BatchSize int

	// Pause is the fixed delay between rounds.
	Pause time.Duration

	// Progress is an optional progress reporter.
	Progress *progress.Reporter

	// Metrics is an optional metrics collector.
	Metrics *metrics.Collector
}

// Stats are the running counters for one run. Successful is seeded with the
// existing inventory count, so NewlyAcquired in the summary is
// Successful - Existing.
type Stats struct {
	Successful     int
	Failed         int
	TotalAttempted int
	Existing       int
}

// Summary is the final accounting derived from Stats.
type Summary struct {
	Existing       int
	NewlyAcquired  int
	Failed         int
	TotalAttempted int
	SuccessRate    float64 // newly acquired / total attempted
}

// Engine drives repeated batch rounds until the goal is reached. Not safe
// for concurrent use; a single Run call owns all state.
type Engine struct {
	pool    *idpool.Pool
	fetcher Fetcher
	opts    Options
	stats   Stats
}

// New creates an engine. existing is the number of resources found in the
// output location at startup; it counts toward the goal.
func New(pool *idpool.Pool, fetcher Fetcher, existing int, opts Options) *Engine {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 10
	}

	return &Engine{
		pool:    pool,
		fetcher: fetcher,
		opts:    opts,
		stats: Stats{
			Successful: existing,
			Existing:   existing,
		},
	}
}

// Stats returns a copy of the running counters.
func (e *Engine) Stats() Stats {
	return e.stats
}

// Run executes batch rounds until the goal is reached, the identifier
// space is exhausted, or ctx is cancelled. The returned Summary reflects
// whatever was accomplished, also on error.
func (e *Engine) Run(ctx context.Context) (Summary, error) {
	if e.stats.Successful >= e.opts.Goal {
		return e.summary(), nil
	}

	for e.stats.Successful < e.opts.Goal {
		if err := ctx.Err(); err != nil {
			return e.summary(), err
		}

		ids, err := e.pool.Batch(e.opts.BatchSize)
		if err != nil {
			return e.summary(), fmt.Errorf("sample batch: %w", err)
		}

		start := time.Now()
		results := e.runBatch(ctx, ids)
		if m := e.opts.Metrics; m != nil {
			m.ObserveBatch(time.Since(start).Seconds())
		}

		e.fold(results)

		if e.stats.Successful >= e.opts.Goal {
			break
		}

		if err := e.pause(ctx); err != nil {
			return e.summary(), err
		}
	}

	return e.summary(), nil
}

// fold reconciles one completed batch into the run state. Only the control
// goroutine calls this, after the batch barrier.
func (e *Engine) fold(results []fetch.Result) {
	for _, res := range results {
		e.stats.TotalAttempted++

		if res.Status == fetch.StatusAcquired {
			e.stats.Successful++
			if p := e.opts.Progress; p != nil {
				p.Acquired()
			}
		} else {
			e.stats.Failed++
			// Failed identifiers go back into the pool regardless of the
			// failure kind, so they stay eligible for resampling.
			e.pool.Release(res.ID)
			if p := e.opts.Progress; p != nil {
				p.Failed()
			}
		}

		if m := e.opts.Metrics; m != nil {
			m.RecordOutcome(res.Status.String())
		}
	}

	if m := e.opts.Metrics; m != nil {
		m.SetAcquired(e.stats.Successful)
	}
}

// pause waits the configured inter-round delay, honoring cancellation.
func (e *Engine) pause(ctx context.Context) error {
	if e.opts.Pause <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(e.opts.Pause):
		return nil
	}
}

func (e *Engine) summary() Summary {
	s := Summary{
		Existing:       e.stats.Existing,
		NewlyAcquired:  e.stats.Successful - e.stats.Existing,
		Failed:         e.stats.Failed,
		TotalAttempted: e.stats.TotalAttempted,
	}
	if s.TotalAttempted > 0 {
		s.SuccessRate = float64(s.NewlyAcquired) / float64(s.TotalAttempted) * 100
	}
	return s
}
