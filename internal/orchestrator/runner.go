package orchestrator

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	gethCommon "github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"
	"github.com/thirdweb-dev/logpager/internal/common"
	"github.com/thirdweb-dev/logpager/internal/fetcher"
	"github.com/thirdweb-dev/logpager/internal/metrics"
	"github.com/thirdweb-dev/logpager/internal/report"
	"github.com/thirdweb-dev/logpager/internal/rpc"
	"github.com/thirdweb-dev/logpager/internal/worker"
)

// RunConfig is fixed for the lifetime of a run.
type RunConfig struct {
	ContractAddress gethCommon.Address
	MaxParallelism  int
	MaxPageWidth    uint64
	FromBlock       uint64
	// UntilBlock caps the range below the chain head, 0 means the head
	UntilBlock uint64
}

func (c RunConfig) Validate() error {
	if c.MaxParallelism < 1 {
		return fmt.Errorf("parallelism must be at least 1, got %d", c.MaxParallelism)
	}
	if c.MaxPageWidth < 1 {
		return fmt.Errorf("page width must be at least 1")
	}
	if c.UntilBlock > 0 && c.FromBlock > c.UntilBlock {
		return fmt.Errorf("from block %d is after until block %d", c.FromBlock, c.UntilBlock)
	}
	return nil
}

type Summary struct {
	Head      uint64
	Range     common.BlockRange
	Pages     int
	Succeeded int
	Failed    int
	Logs      int
	Duration  time.Duration
	Failures  map[rpc.ErrorKind]int
}

type Runner struct {
	rpc     rpc.IRPCClient
	cfg     RunConfig
	out     io.Writer
	errOut  io.Writer
	archive *report.ParquetArchive
}

type RunnerOption func(*Runner)

func WithOutput(out io.Writer, errOut io.Writer) RunnerOption {
	return func(r *Runner) {
		if out != nil {
			r.out = out
		}
		if errOut != nil {
			r.errOut = errOut
		}
	}
}

func WithReportArchive(archive *report.ParquetArchive) RunnerOption {
	return func(r *Runner) {
		r.archive = archive
	}
}

func NewRunner(rpc rpc.IRPCClient, cfg RunConfig, opts ...RunnerOption) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Runner{
		rpc:    rpc,
		cfg:    cfg,
		out:    os.Stdout,
		errOut: os.Stderr,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run resolves the chain head, pages the range and fetches every page.
// The returned error is only set for failures that happen before any page
// is fetched; page failures are reported and counted in the summary.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	started := time.Now()

	head, err := r.rpc.GetLatestBlockNumber(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to get chain head: %w", err)
	}
	metrics.ChainHead.Set(float64(head))
	fmt.Fprintf(r.out, "last_block: %d\n", head)

	blockRange, err := r.blockRange(head)
	if err != nil {
		return Summary{Head: head}, err
	}
	pages, err := common.PlanRange(blockRange.Start, blockRange.End, r.cfg.MaxPageWidth)
	if err != nil {
		return Summary{Head: head}, err
	}
	log.Info().
		Uint64("head", head).
		Str("range", blockRange.String()).
		Int("pages", len(pages)).
		Int("parallelism", r.cfg.MaxParallelism).
		Str("address", r.cfg.ContractAddress.Hex()).
		Msg("Fetching logs")

	aggregator := report.NewAggregator(r.cfg.MaxParallelism, r.cfg.MaxPageWidth, r.out, r.errOut, report.WithArchive(r.archive))
	f := fetcher.NewFetcher(r.rpc, r.cfg.ContractAddress)
	outcomes := worker.NewWorker(f.Fetch, r.cfg.MaxParallelism).Run(ctx, pages, aggregator.Consume)

	summary := summarize(outcomes)
	summary.Head = head
	summary.Range = blockRange
	summary.Duration = time.Since(started)
	log.Info().
		Int("pages", summary.Pages).
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Int("logs", summary.Logs).
		Dur("duration", summary.Duration).
		Msg("Finished fetching logs")
	return summary, nil
}

func (r *Runner) blockRange(head uint64) (common.BlockRange, error) {
	until := head
	if r.cfg.UntilBlock > 0 && r.cfg.UntilBlock < head {
		until = r.cfg.UntilBlock
	}
	if r.cfg.FromBlock > until {
		return common.BlockRange{}, fmt.Errorf("from block %d is after the last block %d", r.cfg.FromBlock, until)
	}
	return common.NewBlockRange(r.cfg.FromBlock, until)
}

func summarize(outcomes []fetcher.FetchOutcome) Summary {
	summary := Summary{
		Pages:    len(outcomes),
		Failures: make(map[rpc.ErrorKind]int),
	}
	for _, outcome := range outcomes {
		if outcome.Succeeded() {
			summary.Succeeded++
			summary.Logs += outcome.LogCount
			continue
		}
		summary.Failed++
		summary.Failures[outcome.ErrorKind()]++
	}
	return summary
}
