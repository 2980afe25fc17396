package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thirdweb-dev/logpager/internal/common"
	"github.com/thirdweb-dev/logpager/internal/fetcher"
	"github.com/thirdweb-dev/logpager/internal/rpc"
)

func planTestPages(t *testing.T, head, width uint64) []common.Page {
	t.Helper()
	pages, err := common.PlanPages(head, width)
	require.NoError(t, err)
	return pages
}

func pageSet(outcomes []fetcher.FetchOutcome) map[common.Page]int {
	set := make(map[common.Page]int, len(outcomes))
	for _, o := range outcomes {
		set[o.Page]++
	}
	return set
}

func assertExactlyOnce(t *testing.T, pages []common.Page, outcomes []fetcher.FetchOutcome) {
	t.Helper()
	require.Len(t, outcomes, len(pages))
	set := pageSet(outcomes)
	for _, p := range pages {
		assert.Equal(t, 1, set[p], "page %s", p)
	}
}

func TestRun_NeverExceedsMaxParallelism(t *testing.T) {
	for _, parallelism := range []int{1, 3, 10} {
		var inFlight, maxInFlight atomic.Int64
		fetch := func(ctx context.Context, page common.Page) fetcher.FetchOutcome {
			current := inFlight.Add(1)
			for {
				seen := maxInFlight.Load()
				if current <= seen || maxInFlight.CompareAndSwap(seen, current) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			inFlight.Add(-1)
			return fetcher.FetchOutcome{Page: page, LogCount: 1, Elapsed: 2 * time.Millisecond}
		}

		pages := planTestPages(t, 499, 10)
		outcomes := NewWorker(fetch, parallelism).Run(context.Background(), pages, nil)

		assertExactlyOnce(t, pages, outcomes)
		assert.LessOrEqual(t, maxInFlight.Load(), int64(parallelism))
		assert.GreaterOrEqual(t, maxInFlight.Load(), int64(1))
		assert.Equal(t, int64(0), inFlight.Load())
	}
}

func TestRun_FailingPageDoesNotStopOthers(t *testing.T) {
	pages := planTestPages(t, 99, 10)
	broken := pages[3]
	fetch := func(ctx context.Context, page common.Page) fetcher.FetchOutcome {
		if page == broken {
			return fetcher.FetchOutcome{Page: page, Err: &rpc.SourceError{Kind: rpc.KindRangeTooLarge, Op: "eth_getLogs", Err: errors.New("too many blocks")}}
		}
		return fetcher.FetchOutcome{Page: page, LogCount: int(page.Start), Elapsed: time.Millisecond}
	}

	outcomes := NewWorker(fetch, 2).Run(context.Background(), pages, nil)

	assertExactlyOnce(t, pages, outcomes)
	failures := 0
	for _, o := range outcomes {
		if !o.Succeeded() {
			failures++
			assert.Equal(t, broken, o.Page)
			assert.Equal(t, rpc.KindRangeTooLarge, o.ErrorKind())
		}
	}
	assert.Equal(t, 1, failures)
}

func TestRun_AllPagesFailing(t *testing.T) {
	pages := planTestPages(t, 49, 5)
	fetch := func(ctx context.Context, page common.Page) fetcher.FetchOutcome {
		return fetcher.FetchOutcome{Page: page, Err: errors.New("connection reset by peer")}
	}

	done := make(chan []fetcher.FetchOutcome)
	go func() { done <- NewWorker(fetch, 3).Run(context.Background(), pages, nil) }()

	select {
	case outcomes := <-done:
		assertExactlyOnce(t, pages, outcomes)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not finish")
	}
}

func TestRun_HandlerSeesCompletionOrder(t *testing.T) {
	pages := planTestPages(t, 39, 10)
	slow := pages[0]
	fetch := func(ctx context.Context, page common.Page) fetcher.FetchOutcome {
		if page == slow {
			time.Sleep(100 * time.Millisecond)
		}
		return fetcher.FetchOutcome{Page: page, Elapsed: time.Millisecond}
	}

	var mu sync.Mutex
	var handled []common.Page
	outcomes := NewWorker(fetch, len(pages)).Run(context.Background(), pages, func(o fetcher.FetchOutcome) {
		mu.Lock()
		defer mu.Unlock()
		handled = append(handled, o.Page)
	})

	assertExactlyOnce(t, pages, outcomes)
	require.Len(t, handled, len(pages))
	assert.Equal(t, slow, handled[len(handled)-1])
}

func TestRun_CanceledContextYieldsCanceledOutcomes(t *testing.T) {
	pages := planTestPages(t, 99, 10)
	var calls atomic.Int64
	fetch := func(ctx context.Context, page common.Page) fetcher.FetchOutcome {
		calls.Add(1)
		return fetcher.FetchOutcome{Page: page}
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcomes := NewWorker(fetch, 4).Run(ctx, pages, nil)

	assertExactlyOnce(t, pages, outcomes)
	assert.Equal(t, int64(0), calls.Load())
	for _, o := range outcomes {
		assert.Equal(t, rpc.KindCanceled, o.ErrorKind())
		assert.ErrorIs(t, o.Err, context.Canceled)
	}
}

func TestRun_NoPages(t *testing.T) {
	fetch := func(ctx context.Context, page common.Page) fetcher.FetchOutcome {
		t.Fatal("fetch should not be called")
		return fetcher.FetchOutcome{}
	}
	outcomes := NewWorker(fetch, 4).Run(context.Background(), nil, nil)
	assert.Empty(t, outcomes)
}

func TestNewWorker_DefaultsParallelism(t *testing.T) {
	assert.Equal(t, DEFAULT_PARALLELISM, NewWorker(nil, 0).MaxParallelism())
	assert.Equal(t, 7, NewWorker(nil, 7).MaxParallelism())
}
