package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/thirdweb-dev/logpager/internal/common"
	"github.com/thirdweb-dev/logpager/internal/fetcher"
)

const RATE_UNDEFINED = "undefined"

// Report is the measurement derived from a successful page fetch.
type Report struct {
	Parallelism int
	PageWidth   uint64
	ElapsedMs   int64
	// Rate is logs per millisecond, 0 when RateDefined is false
	Rate        float64
	RateDefined bool

	Page     common.Page
	LogCount int
}

type reportLine struct {
	Parallelism int    `json:"parallelism"`
	PageSize    uint64 `json:"page_size"`
	Elapsed     string `json:"elapsed"`
	Rate        string `json:"rate"`
}

func (r Report) MarshalJSON() ([]byte, error) {
	rate := RATE_UNDEFINED
	if r.RateDefined {
		rate = strconv.FormatFloat(r.Rate, 'f', 3, 64)
	}
	return json.Marshal(reportLine{
		Parallelism: r.Parallelism,
		PageSize:    r.PageWidth,
		Elapsed:     strconv.FormatInt(r.ElapsedMs, 10),
		Rate:        rate,
	})
}

func NewReport(outcome fetcher.FetchOutcome, parallelism int, pageWidth uint64) Report {
	rate, ok := outcome.Rate()
	return Report{
		Parallelism: parallelism,
		PageWidth:   pageWidth,
		ElapsedMs:   outcome.Elapsed.Milliseconds(),
		Rate:        rate,
		RateDefined: ok,
		Page:        outcome.Page,
		LogCount:    outcome.LogCount,
	}
}

// ErrorLine names the failed page itself so any fetch function's errors
// can be reported.
func ErrorLine(outcome fetcher.FetchOutcome) string {
	return fmt.Sprintf("Got an error: blocks %s: %v (after %s)", outcome.Page, outcome.Err, outcome.Elapsed.Round(time.Millisecond))
}

// Aggregator writes one line per outcome: reports to out, failures to
// errOut. It keeps no state across outcomes and may be called concurrently.
type Aggregator struct {
	parallelism int
	pageWidth   uint64
	out         io.Writer
	errOut      io.Writer
	archive     *ParquetArchive
	mu          sync.Mutex
}

type AggregatorOption func(*Aggregator)

func WithArchive(archive *ParquetArchive) AggregatorOption {
	return func(a *Aggregator) {
		if archive == nil {
			return
		}
		a.archive = archive
	}
}

func NewAggregator(parallelism int, pageWidth uint64, out io.Writer, errOut io.Writer, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		parallelism: parallelism,
		pageWidth:   pageWidth,
		out:         out,
		errOut:      errOut,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Aggregator) Consume(outcome fetcher.FetchOutcome) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if outcome.Succeeded() {
		r := NewReport(outcome, a.parallelism, a.pageWidth)
		line, err := json.Marshal(r)
		if err != nil {
			// cannot happen for the fixed line shape, keep the page visible anyway
			fmt.Fprintf(a.errOut, "Got an error: encoding report for blocks %s: %v\n", outcome.Page, err)
		} else if _, err := fmt.Fprintf(a.out, "%s\n", line); err != nil {
			log.Error().Err(err).Msg("Failed to write report")
		}
		a.archiveRow(reportRow(r, ""))
		return
	}

	if _, err := fmt.Fprintln(a.errOut, ErrorLine(outcome)); err != nil {
		log.Error().Err(err).Msg("Failed to write error line")
	}
	a.archiveRow(reportRow(NewReport(outcome, a.parallelism, a.pageWidth), outcome.Err.Error()))
}

func (a *Aggregator) archiveRow(row ReportRow) {
	if a.archive == nil {
		return
	}
	if err := a.archive.Write(row); err != nil {
		log.Error().Err(err).Uint64("from", row.FromBlock).Uint64("to", row.ToBlock).Msg("Failed to archive report")
	}
}
