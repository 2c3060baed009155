package aave

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// PoolABI covers the read-only Aave V3 pool calls used to price flash loans
const PoolABI = `[
	{
		"inputs": [],
		"name": "FLASHLOAN_PREMIUM_TOTAL",
		"outputs": [
			{
				"internalType": "uint128",
				"name": "",
				"type": "uint128"
			}
		],
		"stateMutability": "view",
		"type": "function"
	}
]`

// Provider reads flash loan pricing from an Aave V3 pool
type Provider struct {
	pool        common.Address
	contract    *bind.BoundContract
	fallbackBps uint64
	logger      *zap.Logger
}

// NewProvider binds the pool at address. fallbackBps is used whenever the pool cannot be read.
func NewProvider(pool common.Address, caller bind.ContractCaller, fallbackBps uint64, logger *zap.Logger) (*Provider, error) {
	if caller == nil {
		return nil, fmt.Errorf("caller cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	parsedABI, err := abi.JSON(strings.NewReader(PoolABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ABI: %w", err)
	}

	return &Provider{
		pool:        pool,
		contract:    bind.NewBoundContract(pool, parsedABI, caller, nil, nil),
		fallbackBps: fallbackBps,
		logger:      logger,
	}, nil
}

// FeeBps returns the pool's total flash loan premium in basis points
func (p *Provider) FeeBps(ctx context.Context) uint64 {
	var out []interface{}
	if err := p.contract.Call(&bind.CallOpts{Context: ctx}, &out, "FLASHLOAN_PREMIUM_TOTAL"); err != nil {
		p.logger.Warn("Failed to read flash loan premium, using configured fee",
			zap.String("pool", p.pool.Hex()),
			zap.Uint64("fee_bps", p.fallbackBps),
			zap.Error(err))
		return p.fallbackBps
	}

	premium, ok := out[0].(*big.Int)
	if !ok || premium.Sign() < 0 || premium.Cmp(big.NewInt(10000)) >= 0 {
		p.logger.Warn("Unexpected flash loan premium, using configured fee",
			zap.String("pool", p.pool.Hex()),
			zap.Any("premium", out[0]))
		return p.fallbackBps
	}

	p.logger.Info("Flash loan premium", zap.Uint64("fee_bps", premium.Uint64()))
	return premium.Uint64()
}
