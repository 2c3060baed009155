package bot

import (
	"context"
	"math/big"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/michaelpento.lv/arbbot/config"
	"github.com/michaelpento.lv/arbbot/dex/uniswap"
	"github.com/michaelpento.lv/arbbot/flashloan"
	"github.com/michaelpento.lv/arbbot/flashloan/aave"
	"github.com/michaelpento.lv/arbbot/types"
	"github.com/michaelpento.lv/arbbot/utils/testutils"
)

const testKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

type fakeBackend struct {
	*testutils.FakeCaller

	mu   sync.Mutex
	sent []*ethtypes.Transaction
}

func (f *fakeBackend) BlockNumber(ctx context.Context) (uint64, error) { return 55000000, nil }

func (f *fakeBackend) TransactionReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error) {
	return &ethtypes.Receipt{Status: ethtypes.ReceiptStatusSuccessful, TxHash: txHash, GasUsed: 45000}, nil
}

func (f *fakeBackend) HeaderByNumber(ctx context.Context, number *big.Int) (*ethtypes.Header, error) {
	return &ethtypes.Header{Number: big.NewInt(55000000)}, nil
}

func (f *fakeBackend) PendingCodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	return []byte{0x60}, nil
}

func (f *fakeBackend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return 7, nil
}

func (f *fakeBackend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return big.NewInt(30e9), nil
}

func (f *fakeBackend) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return big.NewInt(30e9), nil
}

func (f *fakeBackend) EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error) {
	return 60000, nil
}

func (f *fakeBackend) SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, tx)
	return nil
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Pairs = []config.PairConfig{
		{TokenA: config.USDC, TokenB: config.USDT, DecimalsA: 6, DecimalsB: 6, FeeTier: 100, Symbol: "USDC/USDT"},
	}
	cfg.LoanSizes = []string{"500"}
	cfg.SlippageBps = 50
	cfg.MetricsAddr = ""
	return cfg
}

// newBackend prices the USDC/USDT round trip: 1:1 on the first hop, SushiSwap pays back 512.5
// USDC before its fee, QuickSwap less, KyberSwap reverts
func newBackend(t *testing.T, owner common.Address) *fakeBackend {
	sushi := common.HexToAddress(config.SushiSwapV2Router)
	quick := common.HexToAddress(config.QuickSwapV2Router)
	wmatic := common.HexToAddress(config.WMATIC)

	caller := testutils.NewFakeCaller(t, uniswap.QuoterV3ABI, uniswap.RouterV2ABI, aave.PoolABI, flashloan.ContractABI).
		Handle("quoteExactInputSingle", func(_ common.Address, args []interface{}) ([]interface{}, error) {
			return []interface{}{args[3].(*big.Int)}, nil
		}).
		Handle("getAmountsOut", func(to common.Address, args []interface{}) ([]interface{}, error) {
			amountIn := args[0].(*big.Int)
			path := args[1].([]common.Address)
			switch {
			case to == sushi && path[0] == wmatic:
				return []interface{}{[]*big.Int{amountIn, big.NewInt(550000)}}, nil
			case to == sushi:
				return []interface{}{[]*big.Int{amountIn, big.NewInt(512500000)}}, nil
			case to == quick:
				return []interface{}{[]*big.Int{amountIn, big.NewInt(505000000)}}, nil
			default:
				return nil, ethereum.NotFound
			}
		}).
		Handle("FLASHLOAN_PREMIUM_TOTAL", func(common.Address, []interface{}) ([]interface{}, error) {
			return []interface{}{big.NewInt(5)}, nil
		}).
		Handle("owner", func(common.Address, []interface{}) ([]interface{}, error) {
			return []interface{}{owner}, nil
		})

	return &fakeBackend{FakeCaller: caller}
}

func newTestBot(t *testing.T, owner func(wallet common.Address) common.Address) (*Bot, *fakeBackend) {
	cfg := testConfig()
	auth, wallet, err := flashloan.NewTransactor(testKey, ChainID(cfg))
	require.NoError(t, err)

	backend := newBackend(t, owner(wallet))
	b, err := New(context.Background(), cfg, backend, auth, wallet, zaptest.NewLogger(t), prometheus.NewRegistry())
	require.NoError(t, err)
	return b, backend
}

func self(wallet common.Address) common.Address { return wallet }

func TestDryRunScanThroughAdapters(t *testing.T) {
	b, backend := newTestBot(t, self)

	result := b.ScanOnce(context.Background(), true)

	require.False(t, result.Skipped)
	require.Len(t, result.Evaluations, 1)
	opp := result.Evaluations[0].Opportunity
	assert.Equal(t, types.Profitable, opp.Classification)
	assert.Equal(t, "SushiSwap", opp.SecondHopVenue)
	// 512.5 * 0.997 after the venue fee
	assert.Equal(t, big.NewInt(510962500), opp.SecondHopOut)
	// 500 + 5 bps premium read from the pool
	assert.Equal(t, big.NewInt(500250000), opp.Repayment)
	// 0.024 WMATIC of gas at 0.55 * 0.997 USDC
	assert.Equal(t, big.NewInt(13160), opp.GasCost)
	assert.Equal(t, big.NewInt(508407687), opp.MinAmountOut)
	assert.Equal(t, big.NewInt(8144527), opp.ProfitAfterSlippage)

	assert.Nil(t, result.Outcome)
	assert.Empty(t, backend.sent)
	assert.Equal(t, uint64(1), b.Statistics().Scans)
}

func TestPreflight(t *testing.T) {
	b, _ := newTestBot(t, self)
	assert.NoError(t, b.Preflight(context.Background()))

	stranger := func(common.Address) common.Address { return common.HexToAddress("0x00000000000000000000000000000000000000bb") }
	b, _ = newTestBot(t, stranger)
	assert.ErrorIs(t, b.Preflight(context.Background()), flashloan.ErrNotOwner)
}

func TestWithdraw(t *testing.T) {
	b, backend := newTestBot(t, self)
	token := common.HexToAddress(config.USDC)

	receipt, err := b.Withdraw(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, ethtypes.ReceiptStatusSuccessful, receipt.Status)

	require.Len(t, backend.sent, 1)
	tx := backend.sent[0]
	assert.Equal(t, common.HexToAddress(config.ArbitrageContract), *tx.To())

	parsed, err := abi.JSON(strings.NewReader(flashloan.ContractABI))
	require.NoError(t, err)
	method, err := parsed.MethodById(tx.Data()[:4])
	require.NoError(t, err)
	assert.Equal(t, "emergencyWithdraw", method.Name)
	args, err := method.Inputs.Unpack(tx.Data()[4:])
	require.NoError(t, err)
	assert.Equal(t, token, args[0].(common.Address))
}

func TestNewRejectsUnknownVenueKind(t *testing.T) {
	cfg := testConfig()
	cfg.SecondHop[1].Kind = "curve"

	_, err := New(context.Background(), cfg, newBackend(t, common.Address{}), nil, common.Address{}, zaptest.NewLogger(t), prometheus.NewRegistry())
	assert.Error(t, err)
}
