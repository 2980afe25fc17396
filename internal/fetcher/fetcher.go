package fetcher

import (
	"context"
	"errors"
	"time"

	gethCommon "github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"
	"github.com/thirdweb-dev/logpager/internal/common"
	"github.com/thirdweb-dev/logpager/internal/metrics"
	"github.com/thirdweb-dev/logpager/internal/rpc"
)

// FetchOutcome is the result of fetching one page. The fetch succeeded
// when Err is nil.
type FetchOutcome struct {
	Page     common.Page
	LogCount int
	Elapsed  time.Duration
	Err      error
}

func (o FetchOutcome) Succeeded() bool {
	return o.Err == nil
}

// ErrorKind is only meaningful for failed outcomes.
func (o FetchOutcome) ErrorKind() rpc.ErrorKind {
	return rpc.KindOf(o.Err)
}

// Rate returns logs per millisecond. ok is false when no time elapsed, in
// which case the rate is 0.
func (o FetchOutcome) Rate() (rate float64, ok bool) {
	if o.Elapsed <= 0 {
		return 0, false
	}
	return float64(o.LogCount) / (float64(o.Elapsed) / float64(time.Millisecond)), true
}

type Fetcher struct {
	source  rpc.IRPCClient
	address gethCommon.Address
	now     func() time.Time
}

type FetcherOption func(*Fetcher)

func WithClock(now func() time.Time) FetcherOption {
	return func(f *Fetcher) {
		if now == nil {
			return
		}
		f.now = now
	}
}

func NewFetcher(source rpc.IRPCClient, address gethCommon.Address, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		source:  source,
		address: address,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch issues a single log query for the page and times it. It never
// retries; a failed request becomes a failed outcome.
func (f *Fetcher) Fetch(ctx context.Context, page common.Page) FetchOutcome {
	start := f.now()
	logs, err := f.source.GetLogs(ctx, f.address, page)
	elapsed := f.now().Sub(start)
	if elapsed < 0 {
		elapsed = 0
	}

	metrics.PageFetchDuration.Observe(elapsed.Seconds())
	if err != nil {
		var sourceErr *rpc.SourceError
		if !errors.As(err, &sourceErr) {
			err = &rpc.SourceError{Kind: rpc.ClassifyError(err), Op: "eth_getLogs", Err: err}
		}
		metrics.PagesFetched.WithLabelValues(metrics.StatusFailed).Inc()
		log.Debug().Err(err).Uint64("from", page.Start).Uint64("to", page.End).Msg("Failed to fetch logs")
		return FetchOutcome{
			Page:    page,
			Elapsed: elapsed,
			Err:     err,
		}
	}

	metrics.PagesFetched.WithLabelValues(metrics.StatusSucceeded).Inc()
	metrics.LogsFetched.Add(float64(len(logs)))
	log.Debug().Uint64("from", page.Start).Uint64("to", page.End).Int("logs", len(logs)).Dur("elapsed", elapsed).Msg("Fetched logs")
	return FetchOutcome{
		Page:     page,
		LogCount: len(logs),
		Elapsed:  elapsed,
	}
}

// Canceled builds the outcome of a page that was never dispatched.
func Canceled(page common.Page, cause error) FetchOutcome {
	metrics.PagesFetched.WithLabelValues(metrics.StatusFailed).Inc()
	return FetchOutcome{
		Page: page,
		Err:  &rpc.SourceError{Kind: rpc.KindCanceled, Op: "dispatch", Err: cause},
	}
}
