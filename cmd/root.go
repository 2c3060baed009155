package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/michaelpento.lv/arbbot/utils"
)

var (
	cfgFile string
	logFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "arbbot",
	Short: "A flash loan arbitrage bot for Polygon DEXes",
	Long: `A CLI bot that scans round trips between a Uniswap V3 first hop and several
V2-style second hop venues, and executes profitable ones atomically through a
flash loan arbitrage contract.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: built-in Polygon settings)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "arbbot.log", "also write logs to this file, empty for stdout only")
}

func initConfig() {
	utils.InitLogger(debug, logFile)
}
