package orchestrator

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	config "github.com/thirdweb-dev/logpager/configs"
	"github.com/thirdweb-dev/logpager/internal/report"
	"github.com/thirdweb-dev/logpager/internal/rpc"
	"github.com/thirdweb-dev/logpager/internal/server"
)

const DEFAULT_METRICS_HOST = "localhost:2112"

type Orchestrator struct {
	rpc            rpc.IRPCClient
	runConfig      RunConfig
	metricsEnabled bool
	metricsHost    string
	parquetFile    string
	out            io.Writer
	errOut         io.Writer
}

type OrchestratorOption func(*Orchestrator)

func WithOrchestratorOutput(out io.Writer, errOut io.Writer) OrchestratorOption {
	return func(o *Orchestrator) {
		o.out = out
		o.errOut = errOut
	}
}

func NewOrchestrator(rpc rpc.IRPCClient, runConfig RunConfig, opts ...OrchestratorOption) (*Orchestrator, error) {
	if err := runConfig.Validate(); err != nil {
		return nil, err
	}
	metricsHost := config.Cfg.Metrics.Host
	if metricsHost == "" {
		metricsHost = DEFAULT_METRICS_HOST
	}
	o := &Orchestrator{
		rpc:            rpc,
		runConfig:      runConfig,
		metricsEnabled: config.Cfg.Metrics.Enabled,
		metricsHost:    metricsHost,
		parquetFile:    config.Cfg.Report.ParquetFile,
		out:            os.Stdout,
		errOut:         os.Stderr,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Start runs a single fetch over the configured range. SIGINT and SIGTERM
// stop dispatching new pages; pages already in flight still report.
func (o *Orchestrator) Start(ctx context.Context) (Summary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info().Msgf("Received signal %v, skipping remaining pages", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	if o.metricsEnabled {
		srv := server.New(o.metricsHost)
		go func() {
			if err := srv.Start(); err != nil {
				log.Error().Err(err).Msg("Metrics server stopped")
			}
		}()
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Failed to shut down metrics server")
			}
		}()
	}

	opts := []RunnerOption{WithOutput(o.out, o.errOut)}
	if o.parquetFile != "" {
		archive, err := report.NewParquetArchive(o.parquetFile)
		if err != nil {
			return Summary{}, fmt.Errorf("failed to open report archive: %w", err)
		}
		defer func() {
			if err := archive.Close(); err != nil {
				log.Error().Err(err).Str("file", o.parquetFile).Msg("Failed to close report archive")
				return
			}
			log.Info().Str("file", o.parquetFile).Int("rows", archive.Rows()).Msg("Wrote report archive")
		}()
		opts = append(opts, WithReportArchive(archive))
	}

	runner, err := NewRunner(o.rpc, o.runConfig, opts...)
	if err != nil {
		return Summary{}, err
	}
	return runner.Run(ctx)
}
