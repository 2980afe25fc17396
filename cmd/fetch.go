package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	config "github.com/thirdweb-dev/logpager/configs"
	"github.com/thirdweb-dev/logpager/internal/common"
	"github.com/thirdweb-dev/logpager/internal/orchestrator"
	"github.com/thirdweb-dev/logpager/internal/rpc"
)

// RunFetch fails only on startup problems. Pages that fail are reported
// on stderr and do not change the exit code.
func RunFetch(cmd *cobra.Command, args []string) error {
	if configErr != nil {
		return configErr
	}
	if config.Cfg.Fetch.Address == "" {
		return fmt.Errorf("contract address is required (--address)")
	}
	address, err := common.ParseAddress(config.Cfg.Fetch.Address)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	client, err := rpc.Initialize(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize RPC: %w", err)
	}
	defer client.Close()
	log.Info().Str("chain_id", client.GetChainID().String()).Str("url", client.GetURL()).Msg("RPC initialized")

	runConfig := orchestrator.RunConfig{
		ContractAddress: address,
		MaxParallelism:  config.Cfg.Fetch.Parallelism,
		MaxPageWidth:    config.Cfg.Fetch.PageWidth,
		FromBlock:       config.Cfg.Fetch.FromBlock,
		UntilBlock:      config.Cfg.Fetch.UntilBlock,
	}
	o, err := orchestrator.NewOrchestrator(client, runConfig, orchestrator.WithOrchestratorOutput(cmd.OutOrStdout(), cmd.ErrOrStderr()))
	if err != nil {
		return err
	}

	summary, err := o.Start(ctx)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		log.Warn().Int("failed", summary.Failed).Int("pages", summary.Pages).Msg("Some pages could not be fetched")
	}
	return nil
}
