package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	configs "github.com/thirdweb-dev/logpager/configs"
	"github.com/thirdweb-dev/logpager/internal/env"
	customLogger "github.com/thirdweb-dev/logpager/internal/log"
)

var (
	// Used for flags.
	cfgFile string
	// set by initConfig, reported by the command so it exits non-zero
	configErr error

	rootCmd = &cobra.Command{
		Use:   "logpager",
		Short: "Fetch all event logs of a contract in parallel pages",
		Long: "Fetches the event logs of a contract from genesis to the chain head by splitting the " +
			"block range into pages and querying eth_getLogs with bounded parallelism. " +
			"Prints one timing report per page.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunFetch(cmd, args)
		},
	}
)

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./configs/config.yml)")
	rootCmd.PersistentFlags().StringP("address", "a", "", "Contract address to fetch logs for")
	rootCmd.PersistentFlags().StringP("rpc-url", "u", "", "Ethereum node RPC URL")
	rootCmd.PersistentFlags().Int("rpc-timeout", 0, "Per-request timeout in milliseconds, 0 disables it")
	rootCmd.PersistentFlags().Int("parallelism", 10, "How many eth_getLogs requests to keep in flight")
	rootCmd.PersistentFlags().Uint64("page-width", 10000, "How many blocks to query per eth_getLogs request")
	rootCmd.PersistentFlags().Uint64("from-block", 0, "First block to fetch logs from")
	rootCmd.PersistentFlags().Uint64("until-block", 0, "Last block to fetch logs from, 0 means the chain head")
	rootCmd.PersistentFlags().String("log-level", "", "Log level to use for the application")
	rootCmd.PersistentFlags().Bool("log-prettify", false, "Whether to prettify the log output")
	rootCmd.PersistentFlags().Bool("metrics-enabled", false, "Serve prometheus metrics while fetching")
	rootCmd.PersistentFlags().String("metrics-host", "", "Address of the metrics server")
	rootCmd.PersistentFlags().String("report-parquet-file", "", "Also write every page report to this parquet file")
	viper.BindPFlag("fetch.address", rootCmd.PersistentFlags().Lookup("address"))
	viper.BindPFlag("rpc.url", rootCmd.PersistentFlags().Lookup("rpc-url"))
	viper.BindPFlag("rpc.timeout", rootCmd.PersistentFlags().Lookup("rpc-timeout"))
	viper.BindPFlag("fetch.parallelism", rootCmd.PersistentFlags().Lookup("parallelism"))
	viper.BindPFlag("fetch.pageWidth", rootCmd.PersistentFlags().Lookup("page-width"))
	viper.BindPFlag("fetch.fromBlock", rootCmd.PersistentFlags().Lookup("from-block"))
	viper.BindPFlag("fetch.untilBlock", rootCmd.PersistentFlags().Lookup("until-block"))
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.prettify", rootCmd.PersistentFlags().Lookup("log-prettify"))
	viper.BindPFlag("metrics.enabled", rootCmd.PersistentFlags().Lookup("metrics-enabled"))
	viper.BindPFlag("metrics.host", rootCmd.PersistentFlags().Lookup("metrics-host"))
	viper.BindPFlag("report.parquetFile", rootCmd.PersistentFlags().Lookup("report-parquet-file"))
}

func initConfig() {
	env.Load()
	configErr = configs.LoadConfig(cfgFile)
	customLogger.InitLogger()
}
