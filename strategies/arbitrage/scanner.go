package arbitrage

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/michaelpento.lv/arbbot/dex"
	"github.com/michaelpento.lv/arbbot/types"
	"github.com/michaelpento.lv/arbbot/utils"
	"github.com/michaelpento.lv/arbbot/utils/metrics"
)

// Skip reasons reported by ScanOnce
const (
	SkipBusy       = "busy"
	SkipGasCeiling = "gas_ceiling"
	SkipGasPrice   = "gas_price_unavailable"
	SkipPanic      = "panic"
)

// GasOracle reads the current network gas price
type GasOracle interface {
	GasPrice(ctx context.Context) (*big.Int, error)
}

// SecondHop selects the best second-hop venue for a quote
type SecondHop interface {
	BestSecondHopQuote(ctx context.Context, amountIn *big.Int, tokenIn, tokenOut common.Address) (*big.Int, string)
}

// Executor submits a profitable opportunity
type Executor interface {
	Execute(ctx context.Context, pair types.TradingPair, opp *types.Opportunity, gasPrice *big.Int) types.ExecutionOutcome
}

// Target is one pair and its notional sizes in evaluation order
type Target struct {
	Pair  types.TradingPair
	Sizes []*big.Int
}

// ScannerConfig holds the scan cadence and gate settings
type ScannerConfig struct {
	ScanInterval        time.Duration
	BusyInterval        time.Duration
	PostExecutionDelay  time.Duration
	MaxGasPrice         *big.Int // wei
	NearMissReportEvery uint64
}

// Evaluation is a non-rejected result seen during a cycle
type Evaluation struct {
	Pair        types.TradingPair
	Opportunity *types.Opportunity
}

// CycleResult describes what one cycle did and how long to wait before the next
type CycleResult struct {
	Scan        uint64
	Skipped     bool
	SkipReason  string
	GasPrice    *big.Int
	Evaluations []Evaluation
	Outcome     *types.ExecutionOutcome
	Delay       time.Duration
}

// Scanner walks the pair x size search space once per cycle and hands the first profitable
// opportunity to the executor
type Scanner struct {
	targets   []Target
	firstHop  dex.Quoter
	secondHop SecondHop
	model     *Model
	gas       GasOracle
	executor  Executor
	lock      *types.ExecutionLock
	stats     *RunningStatistics
	config    ScannerConfig
	logger    *zap.Logger
	metrics   *metrics.ScannerMetrics
	now       func() time.Time
}

// NewScanner creates a scanner. lock must be the one shared with the executor.
func NewScanner(
	targets []Target,
	firstHop dex.Quoter,
	secondHop SecondHop,
	model *Model,
	gas GasOracle,
	executor Executor,
	lock *types.ExecutionLock,
	stats *RunningStatistics,
	cfg ScannerConfig,
	logger *zap.Logger,
	m *metrics.ScannerMetrics,
) *Scanner {
	return &Scanner{
		targets:   targets,
		firstHop:  firstHop,
		secondHop: secondHop,
		model:     model,
		gas:       gas,
		executor:  executor,
		lock:      lock,
		stats:     stats,
		config:    cfg,
		logger:    logger,
		metrics:   m,
		now:       time.Now,
	}
}

// Run scans until ctx is cancelled
func (s *Scanner) Run(ctx context.Context) error {
	s.logger.Info("Scanner started",
		zap.Int("pairs", len(s.targets)),
		zap.Duration("interval", s.config.ScanInterval))

	for {
		result := s.ScanOnce(ctx, false)

		timer := time.NewTimer(result.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("Scanner stopped", zap.Uint64("scans", s.stats.Snapshot().Scans))
			return nil
		case <-timer.C:
		}
	}
}

// ScanOnce runs a single cycle. With dryRun set a profitable opportunity is reported but not submitted.
func (s *Scanner) ScanOnce(ctx context.Context, dryRun bool) (result CycleResult) {
	result.Delay = s.config.ScanInterval

	if s.lock.Held() {
		s.metrics.SkippedCycles.WithLabelValues(SkipBusy).Inc()
		result.Skipped = true
		result.SkipReason = SkipBusy
		result.Delay = s.config.BusyInterval
		return result
	}

	defer func() {
		if r := recover(); r != nil {
			s.metrics.CycleErrors.Inc()
			s.logger.Error("Scan cycle aborted", zap.Any("panic", r), zap.Uint64("scan", result.Scan))
			result.SkipReason = SkipPanic
			result.Delay = s.config.ScanInterval
		}
	}()

	gasPrice, err := s.gas.GasPrice(ctx)
	if err != nil {
		s.metrics.SkippedCycles.WithLabelValues(SkipGasPrice).Inc()
		s.logger.Warn("Failed to read gas price", zap.Error(err))
		result.Skipped = true
		result.SkipReason = SkipGasPrice
		return result
	}
	result.GasPrice = gasPrice
	s.metrics.GasPrice.Set(gwei(gasPrice))

	if gasPrice.Cmp(s.config.MaxGasPrice) > 0 {
		s.metrics.SkippedCycles.WithLabelValues(SkipGasCeiling).Inc()
		s.logger.Info("Gas price above ceiling, skipping cycle",
			zap.Float64("gas_gwei", gwei(gasPrice)),
			zap.Float64("max_gwei", gwei(s.config.MaxGasPrice)))
		result.Skipped = true
		result.SkipReason = SkipGasCeiling
		result.Delay = 2 * s.config.ScanInterval
		return result
	}

	start := s.now()
	result.Scan = s.stats.RecordScan()
	s.metrics.Scans.Inc()
	s.statusLine(result.Scan, gasPrice)
	defer func() {
		s.metrics.CycleDuration.Observe(s.now().Sub(start).Seconds())
	}()

	for _, target := range s.targets {
		pair := target.Pair
		for _, size := range target.Sizes {
			if ctx.Err() != nil {
				return result
			}

			opp := s.evaluate(ctx, pair, size, gasPrice)
			if opp == nil {
				s.metrics.Rejected.Inc()
				continue
			}
			result.Evaluations = append(result.Evaluations, Evaluation{Pair: pair, Opportunity: opp})

			if opp.Classification == types.NearMiss {
				s.nearMiss(result.Scan, pair, opp)
				continue
			}

			s.metrics.Opportunities.Inc()
			s.stats.RecordOpportunity(s.now())
			s.logger.Info("Profitable opportunity",
				zap.String("pair", pair.Symbol),
				zap.String("route", pair.SymbolA()+" -> "+pair.SymbolB()+" -> "+pair.SymbolA()),
				zap.String("loan", utils.FormatUnits(size, pair.DecimalsA)),
				zap.String("venue", opp.SecondHopVenue),
				zap.String("profit", utils.FormatUnits(opp.ProfitAfterSlippage, pair.DecimalsA)),
				zap.Float64("profit_usd", opp.ProfitUSD),
				zap.Bool("dry_run", dryRun))

			if dryRun {
				return result
			}

			outcome := s.executor.Execute(ctx, pair, opp, gasPrice)
			s.stats.RecordExecution(outcome)
			result.Outcome = &outcome
			if outcome.Status != types.ExecutionSkipped {
				result.Delay = s.config.PostExecutionDelay
			}
			return result
		}
	}

	return result
}

// evaluate queries both hops and runs the profit model. nil means rejected; a panic while
// evaluating one pair and size is logged and also counts as rejected.
func (s *Scanner) evaluate(ctx context.Context, pair types.TradingPair, size, gasPrice *big.Int) (opp *types.Opportunity) {
	defer func() {
		if r := recover(); r != nil {
			s.metrics.CycleErrors.Inc()
			s.logger.Error("Evaluation aborted",
				zap.Any("panic", r),
				zap.String("pair", pair.Symbol),
				zap.String("loan", utils.FormatUnits(size, pair.DecimalsA)))
			opp = nil
		}
	}()

	first := s.firstHop.Quote(ctx, size, pair.TokenA, pair.TokenB, pair.FeeTier)
	if !first.OK || first.AmountOut.Sign() == 0 {
		return nil
	}

	second, venue := s.secondHop.BestSecondHopQuote(ctx, first.AmountOut, pair.TokenB, pair.TokenA)
	if venue == types.NoVenue {
		return nil
	}

	return s.model.Evaluate(ctx, pair, size, first.AmountOut, second, venue, gasPrice)
}

func (s *Scanner) nearMiss(scan uint64, pair types.TradingPair, opp *types.Opportunity) {
	s.metrics.NearMisses.Inc()
	s.stats.RecordNearMiss()
	if s.config.NearMissReportEvery == 0 || scan%s.config.NearMissReportEvery != 0 {
		return
	}
	s.logger.Info("Near miss",
		zap.String("pair", pair.Symbol),
		zap.String("loan", utils.FormatUnits(opp.LoanAmount, pair.DecimalsA)),
		zap.String("venue", opp.SecondHopVenue),
		zap.Float64("profit_usd", opp.ProfitUSD),
		zap.Float64("short_usd", s.model.config.MinProfitUSD-opp.ProfitUSD))
}

func (s *Scanner) statusLine(scan uint64, gasPrice *big.Int) {
	snap := s.stats.Snapshot()

	bestSpread := "n/a"
	if snap.BestSpread != nil {
		bestSpread = fmt.Sprintf("%.3f%%", *snap.BestSpread)
		s.metrics.BestSpread.Set(*snap.BestSpread)
	}
	lastArb := "never"
	if snap.LastOpportunity != nil {
		lastArb = fmt.Sprintf("%dm ago", int(s.now().Sub(*snap.LastOpportunity).Minutes()))
	}

	s.logger.Info("Scan",
		zap.Uint64("scan", scan),
		zap.Float64("gas_gwei", gwei(gasPrice)),
		zap.Uint64("found", snap.Opportunities),
		zap.Uint64("near_misses", snap.NearMisses),
		zap.String("best_spread", bestSpread),
		zap.String("last_arb", lastArb))
}

func gwei(wei *big.Int) float64 {
	return utils.ToDecimal(wei, 9).InexactFloat64()
}
