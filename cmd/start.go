package cmd

import (
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/michaelpento.lv/arbbot/cmd/bot"
	"github.com/michaelpento.lv/arbbot/config"
	"github.com/michaelpento.lv/arbbot/flashloan"
	"github.com/michaelpento.lv/arbbot/utils"
	"github.com/michaelpento.lv/arbbot/utils/metrics"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the arbitrage bot",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		log := utils.GetLogger()
		defer utils.CleanupLogger()

		if err := config.LoadEnv(); err != nil {
			log.Fatal("Failed to load environment", zap.Error(err))
		}
		secure, err := config.LoadSecureConfig()
		if err != nil {
			log.Fatal("Missing credentials", zap.Error(err))
		}

		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatal("Failed to load config", zap.Error(err))
		}

		client, err := ethclient.DialContext(ctx, secure.RPCURL)
		if err != nil {
			log.Fatal("Failed to connect to RPC", zap.Error(err))
		}
		defer client.Close()

		auth, wallet, err := flashloan.NewTransactor(secure.PrivateKey, bot.ChainID(cfg))
		if err != nil {
			log.Fatal("Failed to load wallet", zap.Error(err))
		}

		b, err := bot.New(ctx, cfg, client, auth, wallet, log, metrics.Registry)
		if err != nil {
			log.Fatal("Failed to create bot", zap.Error(err))
		}
		if err := b.Preflight(ctx); err != nil {
			log.Fatal("Startup check failed", zap.Error(err))
		}

		if err := b.Start(ctx); err != nil {
			log.Fatal("Failed to start bot", zap.Error(err))
		}

		<-ctx.Done()
		log.Info("Shutting down gracefully...")
		b.Stop()
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
