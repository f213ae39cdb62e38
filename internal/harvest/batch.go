package harvest

import (
	"context"

	"github.com/wtfsayo/beerscape/internal/fetch"
)

// runBatch fans out one fetch goroutine per identifier and blocks until
// every outcome has arrived. Concurrency equals the batch size. Outcomes
// travel back as values; nothing in the engine's state is touched here.
func (e *Engine) runBatch(ctx context.Context, ids []uint64) []fetch.Result {
	resultCh := make(chan fetch.Result, len(ids))

	for _, id := range ids {
		go func() {
			if p := e.opts.Progress; p != nil {
				p.FetchStarted()
				defer p.FetchFinished()
			}
			if m := e.opts.Metrics; m != nil {
				m.FetchStarted()
				defer m.FetchFinished()
			}

			resultCh <- e.fetcher.Fetch(ctx, id)
		}()
	}

	// Barrier: the round completes only when the whole batch has reported.
	results := make([]fetch.Result, 0, len(ids))
	for range ids {
		results = append(results, <-resultCh)
	}
	return results
}
