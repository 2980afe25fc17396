package worker

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/thirdweb-dev/logpager/internal/common"
	"github.com/thirdweb-dev/logpager/internal/fetcher"
	"github.com/thirdweb-dev/logpager/internal/metrics"
	"golang.org/x/sync/semaphore"
)

const DEFAULT_PARALLELISM = 10

type FetchFunc func(ctx context.Context, page common.Page) fetcher.FetchOutcome

// OutcomeHandler receives outcomes in completion order, one call at a time.
type OutcomeHandler func(outcome fetcher.FetchOutcome)

// Worker fetches pages with at most maxParallelism requests in flight.
type Worker struct {
	fetch          FetchFunc
	maxParallelism int
}

func NewWorker(fetch FetchFunc, maxParallelism int) *Worker {
	if maxParallelism <= 0 {
		maxParallelism = DEFAULT_PARALLELISM
	}
	return &Worker{
		fetch:          fetch,
		maxParallelism: maxParallelism,
	}
}

func (w *Worker) MaxParallelism() int {
	return w.maxParallelism
}

// Run produces exactly one outcome per page and returns once all of them
// have been handled. A failed page never stops the others. When ctx is
// canceled, pages not yet dispatched get a canceled outcome instead of
// being fetched.
func (w *Worker) Run(ctx context.Context, pages []common.Page, handle OutcomeHandler) []fetcher.FetchOutcome {
	sem := semaphore.NewWeighted(int64(w.maxParallelism))
	resultsCh := make(chan fetcher.FetchOutcome, w.maxParallelism)
	metrics.PagesPlanned.Set(float64(len(pages)))

	var wg sync.WaitGroup
	go func() {
		defer func() {
			wg.Wait()
			close(resultsCh)
		}()
		for i, page := range pages {
			err := ctx.Err()
			if err == nil {
				err = sem.Acquire(ctx, 1)
			}
			if err != nil {
				log.Warn().Err(err).Int("pages", len(pages)-i).Msg("Run canceled, skipping remaining pages")
				for _, skipped := range pages[i:] {
					resultsCh <- fetcher.Canceled(skipped, err)
				}
				return
			}
			wg.Add(1)
			go func(page common.Page) {
				defer wg.Done()
				metrics.FetchesInFlight.Inc()
				outcome := w.fetch(ctx, page)
				metrics.FetchesInFlight.Dec()
				// free the slot before handing off so the next page starts right away
				sem.Release(1)
				resultsCh <- outcome
			}(page)
		}
	}()

	results := make([]fetcher.FetchOutcome, 0, len(pages))
	for outcome := range resultsCh {
		if handle != nil {
			handle(outcome)
		}
		results = append(results, outcome)
	}
	return results
}
