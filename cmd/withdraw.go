package cmd

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/michaelpento.lv/arbbot/cmd/bot"
	"github.com/michaelpento.lv/arbbot/config"
	"github.com/michaelpento.lv/arbbot/flashloan"
	"github.com/michaelpento.lv/arbbot/utils"
	"github.com/michaelpento.lv/arbbot/utils/metrics"
)

var withdrawCmd = &cobra.Command{
	Use:   "withdraw <token>",
	Short: "Withdraw a token balance from the execution contract to the owner",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := utils.GetLogger()
		defer utils.CleanupLogger()

		if !common.IsHexAddress(args[0]) {
			return fmt.Errorf("invalid token address %q", args[0])
		}
		token := common.HexToAddress(args[0])

		if err := config.LoadEnv(); err != nil {
			return err
		}
		secure, err := config.LoadSecureConfig()
		if err != nil {
			return err
		}
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		cfg.MetricsAddr = ""

		client, err := ethclient.DialContext(ctx, secure.RPCURL)
		if err != nil {
			return fmt.Errorf("failed to connect to RPC: %w", err)
		}
		defer client.Close()

		auth, wallet, err := flashloan.NewTransactor(secure.PrivateKey, bot.ChainID(cfg))
		if err != nil {
			return err
		}

		b, err := bot.New(ctx, cfg, client, auth, wallet, log, metrics.Registry)
		if err != nil {
			return err
		}

		receipt, err := b.Withdraw(ctx, token)
		if err != nil {
			return err
		}
		log.Info("Withdraw confirmed",
			zap.String("token", token.Hex()),
			zap.String("tx", receipt.TxHash.Hex()),
			zap.Uint64("gas_used", receipt.GasUsed))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(withdrawCmd)
}
