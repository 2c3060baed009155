package flashloan

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/michaelpento.lv/arbbot/types"
	"github.com/michaelpento.lv/arbbot/utils"
	"github.com/michaelpento.lv/arbbot/utils/metrics"
)

// CoordinatorConfig holds the per-call execution settings
type CoordinatorConfig struct {
	GasLimit            uint64
	MaxGasPrice         *big.Int // wei
	DeadlineBlocks      uint64
	PriceCommitment     [32]byte
	UseCommitReveal     bool
	ConfirmationTimeout time.Duration
	Simulate            bool // eth_call the execution before submitting it
}

// Coordinator submits at most one execution at a time and always releases the execution lock
type Coordinator struct {
	executor Executor
	chain    Chain
	auth     *bind.TransactOpts
	lock     *types.ExecutionLock
	config   CoordinatorConfig
	logger   *zap.Logger
	metrics  *metrics.ExecutionMetrics
}

// NewCoordinator creates a coordinator sharing lock with the scanner
func NewCoordinator(executor Executor, chain Chain, auth *bind.TransactOpts, lock *types.ExecutionLock, cfg CoordinatorConfig, logger *zap.Logger, m *metrics.ExecutionMetrics) *Coordinator {
	return &Coordinator{
		executor: executor,
		chain:    chain,
		auth:     auth,
		lock:     lock,
		config:   cfg,
		logger:   logger,
		metrics:  m,
	}
}

// Execute submits opp for pair and waits for one confirmation. It never returns an error:
// every failure is reported through the outcome.
func (c *Coordinator) Execute(ctx context.Context, pair types.TradingPair, opp *types.Opportunity, gasPrice *big.Int) (outcome types.ExecutionOutcome) {
	outcome = types.ExecutionOutcome{
		ID:   uuid.New().String(),
		Pair: pair.Symbol,
	}

	if !c.lock.TryAcquire() {
		c.metrics.Skipped.Inc()
		outcome.Status = types.ExecutionSkipped
		outcome.Reason = types.ErrExecutionInFlight.Error()
		c.logger.Info("Execution skipped", zap.String("id", outcome.ID), zap.String("pair", pair.Symbol))
		return outcome
	}

	start := time.Now()
	c.metrics.Attempts.Inc()
	c.metrics.InFlight.Set(1)

	defer func() {
		if r := recover(); r != nil {
			outcome.Status = types.ExecutionFailed
			outcome.Reason = fmt.Sprintf("panic: %v", r)
		}
		outcome.Duration = time.Since(start)
		c.lock.Release()
		c.metrics.InFlight.Set(0)
		c.report(outcome, pair)
	}()

	params, err := c.buildParams(ctx, pair, opp)
	if err != nil {
		return c.failed(outcome, err)
	}

	c.logger.Info("Executing flash loan",
		zap.String("id", outcome.ID),
		zap.String("pair", pair.Symbol),
		zap.String("loan", utils.FormatUnits(params.LoanAmount, pair.DecimalsA)),
		zap.String("min_out", utils.FormatUnits(params.MinAmountOut, pair.DecimalsA)),
		zap.String("venue", opp.SecondHopVenue),
		zap.Uint64("deadline", params.Protection.BlockNumberDeadline.Uint64()))

	if c.config.Simulate {
		if err := c.executor.SimulateArbitrage(ctx, c.auth.From, params); err != nil {
			return c.failed(outcome, err)
		}
	}

	opts := *c.auth
	opts.Context = ctx
	opts.GasLimit = c.config.GasLimit
	opts.GasPrice = gasPrice

	tx, err := c.executor.ExecuteArbitrage(&opts, params)
	if err != nil {
		return c.failed(outcome, fmt.Errorf("failed to submit transaction: %w", err))
	}
	outcome.TxHash = tx.Hash()
	c.logger.Info("Transaction submitted", zap.String("id", outcome.ID), zap.String("tx", tx.Hash().Hex()))

	receipt, err := c.waitMined(ctx, tx)
	if err != nil {
		return c.failed(outcome, fmt.Errorf("failed to confirm transaction: %w", err))
	}
	outcome.GasUsed = receipt.GasUsed

	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		outcome.Status = types.ExecutionReverted
		outcome.Reason = "transaction reverted"
		return outcome
	}

	outcome.Status = types.ExecutionSuccess
	if event, ok := c.executor.ParseArbitrageExecuted(receipt); ok {
		outcome.RealizedProfit = event.Profit
	}
	return outcome
}

func (c *Coordinator) buildParams(ctx context.Context, pair types.TradingPair, opp *types.Opportunity) (ExecutionParams, error) {
	if opp == nil || opp.LoanAmount == nil || opp.MinAmountOut == nil {
		return ExecutionParams{}, errors.New("incomplete opportunity")
	}

	block, err := c.chain.BlockNumber(ctx)
	if err != nil {
		return ExecutionParams{}, fmt.Errorf("failed to get block number: %w", err)
	}

	return ExecutionParams{
		TokenA:       pair.TokenA,
		TokenB:       pair.TokenB,
		LoanAmount:   opp.LoanAmount,
		FeeTier:      pair.FeeTier,
		MinAmountOut: opp.MinAmountOut,
		Protection: ProtectionParams{
			MaxGasPriceGwei:     new(big.Int).Set(c.config.MaxGasPrice),
			BlockNumberDeadline: new(big.Int).SetUint64(block + c.config.DeadlineBlocks),
			PriceCommitment:     c.config.PriceCommitment,
			UseCommitReveal:     c.config.UseCommitReveal,
		},
	}, nil
}

func (c *Coordinator) waitMined(ctx context.Context, tx *ethtypes.Transaction) (*ethtypes.Receipt, error) {
	waitCtx, cancel := context.WithTimeout(ctx, c.config.ConfirmationTimeout)
	defer cancel()
	return bind.WaitMined(waitCtx, c.chain, tx)
}

func (c *Coordinator) failed(outcome types.ExecutionOutcome, err error) types.ExecutionOutcome {
	outcome.Status = types.ExecutionFailed
	outcome.Reason = err.Error()
	return outcome
}

func (c *Coordinator) report(outcome types.ExecutionOutcome, pair types.TradingPair) {
	fields := []zap.Field{
		zap.String("id", outcome.ID),
		zap.String("pair", outcome.Pair),
		zap.String("status", string(outcome.Status)),
		zap.String("tx", outcome.TxHash.Hex()),
		zap.Duration("duration", outcome.Duration),
	}

	c.metrics.Latency.Observe(outcome.Duration.Seconds())
	if outcome.Status == types.ExecutionSuccess {
		c.metrics.Successes.Inc()
		c.metrics.GasUsed.Observe(float64(outcome.GasUsed))
		if outcome.RealizedProfit != nil {
			fields = append(fields, zap.String("profit", utils.FormatUnits(outcome.RealizedProfit, pair.DecimalsA)))
		}
		c.logger.Info("Arbitrage executed", append(fields, zap.Uint64("gas_used", outcome.GasUsed))...)
		return
	}

	c.metrics.Failures.WithLabelValues(string(outcome.Status)).Inc()
	c.logger.Error("Arbitrage execution failed", append(fields, zap.String("reason", outcome.Reason))...)
}
