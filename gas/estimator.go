package gas

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"

	"github.com/michaelpento.lv/arbbot/dex"
	"github.com/michaelpento.lv/arbbot/types"
	"github.com/michaelpento.lv/arbbot/utils"
	"github.com/michaelpento.lv/arbbot/utils/metrics"
)

var oneNative = big.NewInt(1e18)

// Client is the part of the RPC client the estimator needs
type Client interface {
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
}

// Config holds the estimator settings
type Config struct {
	WrappedNative common.Address
	GasLimit      uint64
	Fallback      string // loan-token units
	FeeBps        uint64 // reference venue trading fee deducted from the rate quote
	CacheTTL      time.Duration
	CacheSize     int
}

type cachedRate struct {
	rate *big.Int
	at   time.Time
}

// Estimator reads the network gas price and prices the fixed gas budget in a loan token
type Estimator struct {
	client    Client
	reference dex.Quoter
	config    Config
	cache     *lru.Cache
	now       func() time.Time
	logger    *zap.Logger
	metrics   *metrics.GasMetrics
}

// NewEstimator creates an estimator that converts native cost through the reference venue
func NewEstimator(client Client, reference dex.Quoter, cfg Config, logger *zap.Logger, m *metrics.GasMetrics) (*Estimator, error) {
	if client == nil {
		return nil, fmt.Errorf("client cannot be nil")
	}
	if reference == nil {
		return nil, fmt.Errorf("reference venue cannot be nil")
	}
	if cfg.FeeBps >= 10000 {
		return nil, fmt.Errorf("reference fee must be below 10000 bps")
	}
	if _, err := utils.ParseUnits(cfg.Fallback, 18); err != nil {
		return nil, fmt.Errorf("invalid gas cost fallback: %w", err)
	}

	e := &Estimator{
		client:    client,
		reference: reference,
		config:    cfg,
		now:       time.Now,
		logger:    logger,
		metrics:   m,
	}

	if cfg.CacheTTL > 0 && cfg.CacheSize > 0 {
		cache, err := lru.New(cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create rate cache: %w", err)
		}
		e.cache = cache
	}

	return e, nil
}

// GasPrice returns the current network gas price in wei
func (e *Estimator) GasPrice(ctx context.Context) (*big.Int, error) {
	price, err := e.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %w", err)
	}
	return price, nil
}

// NativeCost returns gasLimit * gasPrice in wei
func (e *Estimator) NativeCost(gasPrice *big.Int) *big.Int {
	return new(big.Int).Mul(new(big.Int).SetUint64(e.config.GasLimit), gasPrice)
}

// CostInToken prices the gas budget in the pair's loan token. It never fails: when the
// reference quote is unavailable the configured fallback is used.
func (e *Estimator) CostInToken(ctx context.Context, gasPrice *big.Int, pair types.TradingPair) *big.Int {
	nativeCost := e.NativeCost(gasPrice)
	e.metrics.CostWei.Set(utils.ToDecimal(nativeCost, 0).InexactFloat64())

	if pair.TokenA == e.config.WrappedNative {
		return nativeCost
	}

	rate := e.rate(ctx, pair.TokenA)
	if rate == nil {
		return e.fallback(pair)
	}

	cost := new(big.Int).Mul(nativeCost, rate)
	return cost.Div(cost, oneNative)
}

// rate returns how much of token one native unit buys, or nil if unknown
func (e *Estimator) rate(ctx context.Context, token common.Address) *big.Int {
	if e.cache != nil {
		if v, ok := e.cache.Get(token); ok {
			entry := v.(cachedRate)
			if e.now().Sub(entry.at) < e.config.CacheTTL {
				e.metrics.CacheHits.Inc()
				return entry.rate
			}
			e.cache.Remove(token)
		}
	}

	q := e.reference.Quote(ctx, oneNative, e.config.WrappedNative, token, 0)
	if !q.OK {
		return nil
	}
	rate := utils.BasisPoints(q.AmountOut, 10000-e.config.FeeBps)
	if rate.Sign() == 0 {
		return nil
	}

	if e.cache != nil {
		e.cache.Add(token, cachedRate{rate: rate, at: e.now()})
	}
	return rate
}

func (e *Estimator) fallback(pair types.TradingPair) *big.Int {
	e.metrics.Fallbacks.Inc()
	cost, _ := utils.ParseUnits(e.config.Fallback, pair.DecimalsA)
	e.logger.Debug("Gas cost conversion unavailable, using fallback",
		zap.String("pair", pair.Symbol),
		zap.String("fallback", e.config.Fallback))
	return cost
}
