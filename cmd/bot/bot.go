package bot

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/michaelpento.lv/arbbot/config"
	"github.com/michaelpento.lv/arbbot/dex"
	"github.com/michaelpento.lv/arbbot/dex/aggregator"
	"github.com/michaelpento.lv/arbbot/dex/uniswap"
	"github.com/michaelpento.lv/arbbot/flashloan"
	"github.com/michaelpento.lv/arbbot/flashloan/aave"
	"github.com/michaelpento.lv/arbbot/gas"
	"github.com/michaelpento.lv/arbbot/server"
	"github.com/michaelpento.lv/arbbot/strategies/arbitrage"
	"github.com/michaelpento.lv/arbbot/types"
	"github.com/michaelpento.lv/arbbot/utils/metrics"
)

// Backend is the RPC surface the bot needs. *ethclient.Client satisfies it.
type Backend interface {
	bind.ContractCaller
	bind.ContractTransactor
	BlockNumber(ctx context.Context) (uint64, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error)
}

// Bot wires the scanner, coordinator and status server for one wallet
type Bot struct {
	cfg      *config.Config
	backend  Backend
	auth     *bind.TransactOpts
	wallet   common.Address
	contract *flashloan.Contract
	lock     *types.ExecutionLock
	stats    *arbitrage.RunningStatistics
	scanner  *arbitrage.Scanner
	server   *server.Server
	logger   *zap.Logger
	wg       sync.WaitGroup
}

// New builds every component. auth may be nil for read-only use (dry-run scans).
// The only network call is the flash loan premium read, which falls back to the configured fee.
func New(ctx context.Context, cfg *config.Config, backend Backend, auth *bind.TransactOpts, wallet common.Address, logger *zap.Logger, reg *prometheus.Registry) (*Bot, error) {
	caller := dex.NewLimitedCaller(backend, cfg.RPCRateLimit.RequestsPerSecond, cfg.RPCRateLimit.BurstSize)

	quoteMetrics := metrics.NewQuoteMetrics(reg)
	scannerMetrics := metrics.NewScannerMetrics(reg)
	executionMetrics := metrics.NewExecutionMetrics(reg)
	gasMetrics := metrics.NewGasMetrics(reg)
	metrics.RegisterRuntimeCollectors(reg)

	firstHop, err := newQuoter(cfg.FirstHop, caller, logger, quoteMetrics)
	if err != nil {
		return nil, fmt.Errorf("failed to create first hop venue: %w", err)
	}

	if len(cfg.SecondHop) == 0 {
		return nil, fmt.Errorf("at least one second hop venue is required")
	}
	secondHop := make([]dex.Quoter, 0, len(cfg.SecondHop))
	for _, v := range cfg.SecondHop {
		q, err := newQuoter(v, caller, logger, quoteMetrics)
		if err != nil {
			return nil, fmt.Errorf("failed to create second hop venue %s: %w", v.Name, err)
		}
		secondHop = append(secondHop, q)
	}
	agg := aggregator.New(secondHop, cfg.SecondHopFeeBps, logger.Named("aggregator"), quoteMetrics)

	feeBps := cfg.FlashLoanFeeBps
	if common.IsHexAddress(cfg.AavePool) {
		provider, err := aave.NewProvider(common.HexToAddress(cfg.AavePool), caller, cfg.FlashLoanFeeBps, logger.Named("aave"))
		if err != nil {
			return nil, fmt.Errorf("failed to create flash loan provider: %w", err)
		}
		feeBps = provider.FeeBps(ctx)
	}

	estimator, err := gas.NewEstimator(backend, secondHop[0], gas.Config{
		WrappedNative: common.HexToAddress(cfg.WrappedNative),
		GasLimit:      cfg.GasLimit,
		Fallback:      cfg.GasCostFallback,
		FeeBps:        cfg.SecondHopFeeBps,
		CacheTTL:      cfg.GasRateCacheTTL,
		CacheSize:     cfg.GasRateCacheSize,
	}, logger.Named("gas"), gasMetrics)
	if err != nil {
		return nil, fmt.Errorf("failed to create gas estimator: %w", err)
	}

	contract, err := flashloan.NewContract(common.HexToAddress(cfg.ExecutionContract), caller, backend)
	if err != nil {
		return nil, fmt.Errorf("failed to bind execution contract: %w", err)
	}

	lock := &types.ExecutionLock{}
	stats := arbitrage.NewRunningStatistics()

	coordinator := flashloan.NewCoordinator(contract, backend, auth, lock, flashloan.CoordinatorConfig{
		GasLimit:            cfg.GasLimit,
		MaxGasPrice:         cfg.MaxGasPriceWei(),
		DeadlineBlocks:      cfg.DeadlineBlocks,
		PriceCommitment:     flashloan.PriceCommitment(cfg.PriceCommitmentSeed),
		UseCommitReveal:     cfg.UseCommitReveal,
		ConfirmationTimeout: cfg.ConfirmationTimeout,
		Simulate:            cfg.SimulateBeforeSend,
	}, logger.Named("coordinator"), executionMetrics)

	model := arbitrage.NewModel(arbitrage.ModelConfig{
		FlashLoanFeeBps: feeBps,
		SlippageBps:     cfg.SlippageBps,
		MinProfitUSD:    cfg.MinProfitUSD,
		PriceTable:      cfg.PriceTable(),
	}, estimator, stats, logger.Named("model"), scannerMetrics)

	targets, err := buildTargets(cfg)
	if err != nil {
		return nil, err
	}

	scanner := arbitrage.NewScanner(targets, firstHop, agg, model, estimator, coordinator, lock, stats, arbitrage.ScannerConfig{
		ScanInterval:        cfg.ScanInterval,
		BusyInterval:        cfg.BusyInterval,
		PostExecutionDelay:  cfg.PostExecutionDelay,
		MaxGasPrice:         cfg.MaxGasPriceWei(),
		NearMissReportEvery: cfg.NearMissReportEvery,
	}, logger.Named("scanner"), scannerMetrics)

	b := &Bot{
		cfg:      cfg,
		backend:  backend,
		auth:     auth,
		wallet:   wallet,
		contract: contract,
		lock:     lock,
		stats:    stats,
		scanner:  scanner,
		logger:   logger,
	}
	if cfg.MetricsAddr != "" {
		b.server = server.New(cfg.MetricsAddr, stats, lock, reg, logger)
	}

	logger.Info("Bot configured",
		zap.String("wallet", wallet.Hex()),
		zap.String("contract", contract.Address().Hex()),
		zap.String("first_hop", firstHop.Name()),
		zap.Strings("second_hop", agg.Venues()),
		zap.Int("pairs", len(targets)),
		zap.Uint64("flash_loan_fee_bps", feeBps),
		zap.Float64("min_profit_usd", cfg.MinProfitUSD))

	return b, nil
}

// Preflight checks RPC connectivity and that the wallet owns the execution contract
func (b *Bot) Preflight(ctx context.Context) error {
	block, err := b.backend.BlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("rpc connectivity check failed: %w", err)
	}
	b.logger.Info("Connected", zap.Uint64("block", block))

	if err := b.contract.VerifyOwner(ctx, b.wallet); err != nil {
		return err
	}
	b.logger.Info("Contract owner verified", zap.String("wallet", b.wallet.Hex()))
	return nil
}

// Start runs the status server and the scan loop in the background
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Starting arbitrage bot...")

	if b.server != nil {
		b.server.Start()
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		if err := b.scanner.Run(ctx); err != nil {
			b.logger.Error("Scanner error", zap.Error(err))
		}
	}()

	return nil
}

// Stop waits for the scan loop to exit and shuts the status server down. ctx passed to Start
// must already be cancelled.
func (b *Bot) Stop() {
	b.logger.Info("Stopping arbitrage bot...")
	b.wg.Wait()

	if b.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := b.server.Stop(ctx); err != nil {
			b.logger.Error("Failed to stop status server", zap.Error(err))
		}
	}
}

// ScanOnce runs a single cycle
func (b *Bot) ScanOnce(ctx context.Context, dryRun bool) arbitrage.CycleResult {
	return b.scanner.ScanOnce(ctx, dryRun)
}

// Statistics returns the running statistics
func (b *Bot) Statistics() arbitrage.Snapshot {
	return b.stats.Snapshot()
}

// Withdraw calls emergencyWithdraw(token) and waits for the receipt
func (b *Bot) Withdraw(ctx context.Context, token common.Address) (*ethtypes.Receipt, error) {
	if b.auth == nil {
		return nil, fmt.Errorf("withdraw requires a signing key")
	}
	if err := b.contract.VerifyOwner(ctx, b.wallet); err != nil {
		return nil, err
	}

	opts := *b.auth
	opts.Context = ctx
	tx, err := b.contract.EmergencyWithdraw(&opts, token)
	if err != nil {
		return nil, fmt.Errorf("failed to submit withdraw: %w", err)
	}
	b.logger.Info("Withdraw submitted", zap.String("token", token.Hex()), zap.String("tx", tx.Hash().Hex()))

	waitCtx, cancel := context.WithTimeout(ctx, b.cfg.ConfirmationTimeout)
	defer cancel()
	receipt, err := bind.WaitMined(waitCtx, b.backend, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm withdraw: %w", err)
	}
	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("withdraw reverted: %s", tx.Hash().Hex())
	}
	return receipt, nil
}

func newQuoter(v config.VenueConfig, caller bind.ContractCaller, logger *zap.Logger, m *metrics.QuoteMetrics) (dex.Quoter, error) {
	var (
		venue dex.Venue
		err   error
	)
	switch v.Kind {
	case config.VenueUniswapV3Quoter:
		venue, err = uniswap.NewQuoterV3(v.Name, common.HexToAddress(v.Address), caller)
	case config.VenueUniswapV2Router:
		venue, err = uniswap.NewRouterV2(v.Name, common.HexToAddress(v.Address), caller)
	default:
		err = fmt.Errorf("unsupported venue kind %q", v.Kind)
	}
	if err != nil {
		return nil, err
	}
	return dex.NewSource(venue, logger.Named("quotes"), m), nil
}

func buildTargets(cfg *config.Config) ([]arbitrage.Target, error) {
	pairs := cfg.TradingPairs()
	targets := make([]arbitrage.Target, 0, len(pairs))
	for _, pair := range pairs {
		sizes, err := cfg.NotionalSizes(pair)
		if err != nil {
			return nil, err
		}
		targets = append(targets, arbitrage.Target{Pair: pair, Sizes: sizes})
	}
	return targets, nil
}

// ChainID returns the configured chain id as a big.Int
func ChainID(cfg *config.Config) *big.Int {
	return new(big.Int).SetUint64(cfg.ChainID)
}
