// Package harvest drives batch rounds of random-identifier probes until
// the acquisition goal is met.
//
// The Engine owns all mutable run state: the identifier pool, the running
// statistics, and the stop condition. Each round it draws a fresh batch,
// fans out one fetch goroutine per identifier, waits for the full batch
// (no partial progress), then folds the outcomes:
//
//   - acquired identifiers stay marked in the pool forever
//   - rejected and transport-failed identifiers are released, so they may
//     be drawn again by chance in a later round
//
// Fetch goroutines return outcomes as plain values; counters and the pool
// are touched only by the control goroutine after the batch barrier, so no
// shared state is mutated concurrently.
//
// # Usage
//
//	engine := harvest.New(pool, fetcher, existing, harvest.Options{
//	    Goal:      10000,
//	    BatchSize: 10,
//	    Pause:     100 * time.Millisecond,
//	})
//
//	summary, err := engine.Run(ctx)
package harvest
