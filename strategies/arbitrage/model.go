package arbitrage

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/michaelpento.lv/arbbot/types"
	"github.com/michaelpento.lv/arbbot/utils"
	"github.com/michaelpento.lv/arbbot/utils/metrics"
)

// GasCoster prices the execution gas budget in a pair's loan token
type GasCoster interface {
	CostInToken(ctx context.Context, gasPrice *big.Int, pair types.TradingPair) *big.Int
}

// ModelConfig holds the profit model thresholds
type ModelConfig struct {
	FlashLoanFeeBps uint64
	SlippageBps     uint64
	MinProfitUSD    float64
	PriceTable      map[common.Address]float64
}

// Model turns a pair of hop quotes into a classified opportunity
type Model struct {
	config  ModelConfig
	gas     GasCoster
	stats   *RunningStatistics
	logger  *zap.Logger
	metrics *metrics.ScannerMetrics
}

// NewModel creates a profit model
func NewModel(cfg ModelConfig, gas GasCoster, stats *RunningStatistics, logger *zap.Logger, m *metrics.ScannerMetrics) *Model {
	return &Model{
		config:  cfg,
		gas:     gas,
		stats:   stats,
		logger:  logger,
		metrics: m,
	}
}

// Evaluate runs the profit pipeline for one (pair, size) combination. It returns nil when the
// combination is rejected, otherwise a Profitable or NearMiss opportunity.
func (m *Model) Evaluate(ctx context.Context, pair types.TradingPair, loan, firstHopOut, secondHopOut *big.Int, venue string, gasPrice *big.Int) *types.Opportunity {
	spread := spreadPercent(loan, secondHopOut)
	m.stats.ObserveSpread(spread)

	fee := utils.BasisPoints(loan, m.config.FlashLoanFeeBps)
	repayment := new(big.Int).Add(loan, fee)

	gross := new(big.Int).Sub(secondHopOut, repayment)
	if gross.Sign() <= 0 {
		return nil
	}

	gasCost := m.gas.CostInToken(ctx, gasPrice, pair)

	net := new(big.Int).Sub(gross, gasCost)
	if net.Sign() <= 0 {
		m.logger.Debug("Gross profit consumed by gas",
			zap.String("pair", pair.Symbol),
			zap.String("gross", utils.FormatUnits(gross, pair.DecimalsA)),
			zap.String("gas", utils.FormatUnits(gasCost, pair.DecimalsA)))
		return nil
	}

	minOut := utils.BasisPoints(secondHopOut, 10000-m.config.SlippageBps)
	afterSlippage := new(big.Int).Sub(minOut, new(big.Int).Add(repayment, gasCost))
	if afterSlippage.Sign() < 0 {
		afterSlippage.SetInt64(0)
	}

	profitUSD := m.toUSD(afterSlippage, pair)

	opp := &types.Opportunity{
		LoanAmount:          loan,
		FirstHopOut:         firstHopOut,
		SecondHopOut:        secondHopOut,
		Repayment:           repayment,
		GrossProfit:         gross,
		GasCost:             gasCost,
		NetProfit:           net,
		MinAmountOut:        minOut,
		ProfitAfterSlippage: afterSlippage,
		ProfitUSD:           profitUSD,
		SpreadPercent:       spread,
		SecondHopVenue:      venue,
	}

	m.logger.Debug("Evaluated",
		zap.String("pair", pair.Symbol),
		zap.String("loan", utils.FormatUnits(loan, pair.DecimalsA)),
		zap.String("venue", venue),
		zap.String("repayment", utils.FormatUnits(repayment, pair.DecimalsA)),
		zap.String("gross", utils.FormatUnits(gross, pair.DecimalsA)),
		zap.String("gas", utils.FormatUnits(gasCost, pair.DecimalsA)),
		zap.String("min_out", utils.FormatUnits(minOut, pair.DecimalsA)),
		zap.Float64("profit_usd", profitUSD))

	switch {
	case profitUSD >= m.config.MinProfitUSD:
		opp.Classification = types.Profitable
	case profitUSD > m.config.MinProfitUSD*0.5:
		opp.Classification = types.NearMiss
	default:
		return nil
	}
	return opp
}

// toUSD values amount with the static price table. Tokens missing from the table are
// treated as USD-denominated.
func (m *Model) toUSD(amount *big.Int, pair types.TradingPair) float64 {
	units := utils.ToDecimal(amount, pair.DecimalsA)
	price, ok := m.config.PriceTable[pair.TokenA]
	if !ok {
		m.metrics.USDFallbacks.WithLabelValues(pair.TokenA.Hex()).Inc()
		m.logger.Warn("No USD price for token, treating amount as USD",
			zap.String("token", pair.TokenA.Hex()),
			zap.String("pair", pair.Symbol))
		return units.InexactFloat64()
	}
	return units.Mul(decimal.NewFromFloat(price)).InexactFloat64()
}

// spreadPercent returns (out - loan) / loan * 100 for display
func spreadPercent(loan, out *big.Int) float64 {
	if loan.Sign() == 0 {
		return 0
	}
	diff := decimal.NewFromBigInt(new(big.Int).Sub(out, loan), 0)
	return diff.Div(decimal.NewFromBigInt(loan, 0)).Mul(decimal.NewFromInt(100)).InexactFloat64()
}
