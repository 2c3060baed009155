package gas

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/michaelpento.lv/arbbot/dex"
	"github.com/michaelpento.lv/arbbot/types"
	"github.com/michaelpento.lv/arbbot/utils/metrics"
	"github.com/michaelpento.lv/arbbot/utils/testutils"
)

var (
	wmatic = common.HexToAddress("0x0d500B1d8E8eF31E21C99d1Db9A6444d3ADf1270")
	usdc   = common.HexToAddress("0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174")
)

type fakeClient struct {
	price *big.Int
	err   error
}

func (f *fakeClient) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return f.price, f.err
}

type fakeReference struct {
	out   *big.Int
	calls int
}

func (f *fakeReference) Name() string { return "SushiSwap" }

func (f *fakeReference) Quote(ctx context.Context, amountIn *big.Int, tokenIn, tokenOut common.Address, feeTier uint32) dex.Quote {
	f.calls++
	if f.out == nil {
		return types.FailedQuote("SushiSwap")
	}
	return dex.Quote{Venue: "SushiSwap", AmountOut: f.out, OK: true}
}

func newEstimator(t *testing.T, ref *fakeReference, ttl time.Duration) (*Estimator, *metrics.GasMetrics) {
	m := metrics.NewGasMetrics(prometheus.NewRegistry())
	e, err := NewEstimator(&fakeClient{price: big.NewInt(30e9)}, ref, Config{
		WrappedNative: wmatic,
		GasLimit:      800000,
		Fallback:      "0.05",
		CacheTTL:      ttl,
		CacheSize:     8,
	}, zaptest.NewLogger(t), m)
	require.NoError(t, err)
	return e, m
}

var usdcPair = types.TradingPair{TokenA: usdc, TokenB: wmatic, DecimalsA: 6, DecimalsB: 18, FeeTier: 500, Symbol: "USDC/WMATIC"}

func TestGasPrice(t *testing.T) {
	e, _ := newEstimator(t, &fakeReference{}, 0)
	price, err := e.GasPrice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(30e9), price)

	e.client = &fakeClient{err: errors.New("connection refused")}
	_, err = e.GasPrice(context.Background())
	assert.Error(t, err)
}

func TestCostInWrappedNative(t *testing.T) {
	ref := &fakeReference{}
	e, _ := newEstimator(t, ref, 0)

	pair := types.TradingPair{TokenA: wmatic, TokenB: usdc, DecimalsA: 18, DecimalsB: 6, Symbol: "WMATIC/USDC"}
	cost := e.CostInToken(context.Background(), big.NewInt(30e9), pair)
	assert.Equal(t, big.NewInt(800000*30e9), cost)
	assert.Equal(t, 0, ref.calls)
}

func TestCostConvertedThroughReference(t *testing.T) {
	// 1 WMATIC buys 0.55 USDC
	ref := &fakeReference{out: big.NewInt(550000)}
	e, m := newEstimator(t, ref, 0)

	cost := e.CostInToken(context.Background(), big.NewInt(30e9), usdcPair)
	// 0.024 WMATIC * 0.55 = 0.0132 USDC
	assert.Equal(t, big.NewInt(13200), cost)
	assert.Equal(t, float64(0), testutil.ToFloat64(m.Fallbacks))
}

func TestCostFallsBackWhenReferenceFails(t *testing.T) {
	e, m := newEstimator(t, &fakeReference{}, 0)

	cost := e.CostInToken(context.Background(), big.NewInt(30e9), usdcPair)
	assert.Equal(t, testutils.Units(5, 4), cost)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Fallbacks))
}

func TestRateCache(t *testing.T) {
	ref := &fakeReference{out: big.NewInt(550000)}
	e, m := newEstimator(t, ref, 30*time.Second)

	now := time.Unix(1700000000, 0)
	e.now = func() time.Time { return now }

	e.CostInToken(context.Background(), big.NewInt(30e9), usdcPair)
	e.CostInToken(context.Background(), big.NewInt(40e9), usdcPair)
	assert.Equal(t, 1, ref.calls)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CacheHits))

	now = now.Add(31 * time.Second)
	e.CostInToken(context.Background(), big.NewInt(30e9), usdcPair)
	assert.Equal(t, 2, ref.calls)
}

func TestNewEstimatorRejectsBadFallback(t *testing.T) {
	_, err := NewEstimator(&fakeClient{}, &fakeReference{}, Config{Fallback: "abc"},
		zaptest.NewLogger(t), metrics.NewGasMetrics(prometheus.NewRegistry()))
	assert.Error(t, err)
}

func TestReferenceRateAfterVenueFee(t *testing.T) {
	ref := &fakeReference{out: big.NewInt(550000)}
	e, _ := newEstimator(t, ref, 0)
	e.config.FeeBps = 30

	// 0.55 * 0.997 = 0.54835 USDC per WMATIC, 0.024 WMATIC of gas
	cost := e.CostInToken(context.Background(), big.NewInt(30e9), usdcPair)
	assert.Equal(t, big.NewInt(13160), cost)
}

func TestReferenceRateZeroAfterFeeFallsBack(t *testing.T) {
	e, m := newEstimator(t, &fakeReference{out: big.NewInt(1)}, 0)
	e.config.FeeBps = 30

	cost := e.CostInToken(context.Background(), big.NewInt(30e9), usdcPair)
	assert.Equal(t, testutils.Units(5, 4), cost)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Fallbacks))
}

func TestCostMetricBeyondUint64(t *testing.T) {
	e, m := newEstimator(t, &fakeReference{out: big.NewInt(550000)}, 0)

	// 800k gas at 50k gwei is 4e19 wei, above 2^64
	pair := types.TradingPair{TokenA: wmatic, TokenB: usdc, DecimalsA: 18, DecimalsB: 6, Symbol: "WMATIC/USDC"}
	e.CostInToken(context.Background(), big.NewInt(50000e9), pair)
	assert.InDelta(t, 4e19, testutil.ToFloat64(m.CostWei), 1e6)
}

func TestNewEstimatorRejectsFullFee(t *testing.T) {
	_, err := NewEstimator(&fakeClient{}, &fakeReference{}, Config{Fallback: "0.05", FeeBps: 10000},
		zaptest.NewLogger(t), metrics.NewGasMetrics(prometheus.NewRegistry()))
	assert.Error(t, err)
}
