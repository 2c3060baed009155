package cmd

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/michaelpento.lv/arbbot/cmd/bot"
	"github.com/michaelpento.lv/arbbot/config"
	"github.com/michaelpento.lv/arbbot/utils"
	"github.com/michaelpento.lv/arbbot/utils/metrics"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one dry-run scan cycle and print the evaluations",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := utils.GetLogger()
		defer utils.CleanupLogger()

		if err := config.LoadEnv(); err != nil {
			return err
		}
		rpcURL, err := config.GetRequiredEnv(config.EnvRPCURL)
		if err != nil {
			return err
		}

		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		cfg.MetricsAddr = ""

		client, err := ethclient.DialContext(ctx, rpcURL)
		if err != nil {
			return fmt.Errorf("failed to connect to RPC: %w", err)
		}
		defer client.Close()

		b, err := bot.New(ctx, cfg, client, nil, common.Address{}, log, metrics.Registry)
		if err != nil {
			return err
		}

		result := b.ScanOnce(ctx, true)
		if result.Skipped {
			log.Info("Cycle skipped", zap.String("reason", result.SkipReason))
			return nil
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "gas price: %s gwei\n", utils.FormatUnits(result.GasPrice, 9))
		if len(result.Evaluations) == 0 {
			fmt.Fprintln(out, "no profitable or near-miss opportunities")
		}
		for _, e := range result.Evaluations {
			opp := e.Opportunity
			fmt.Fprintf(out, "%-12s %-10s loan %s via %s: min out %s, profit %s (~$%.3f, spread %.3f%%)\n",
				e.Pair.Symbol,
				opp.Classification,
				utils.FormatUnits(opp.LoanAmount, e.Pair.DecimalsA),
				opp.SecondHopVenue,
				utils.FormatUnits(opp.MinAmountOut, e.Pair.DecimalsA),
				utils.FormatUnits(opp.ProfitAfterSlippage, e.Pair.DecimalsA),
				opp.ProfitUSD,
				opp.SpreadPercent)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
