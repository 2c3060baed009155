package flashloan

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ProtectionParams is the protection tuple passed on every executeArbitrage call.
// Field names follow the contract ABI component names.
type ProtectionParams struct {
	MaxGasPriceGwei     *big.Int // wei, despite the ABI name
	BlockNumberDeadline *big.Int
	PriceCommitment     [32]byte
	UseCommitReveal     bool
}

// ExecutionParams are the arguments of one executeArbitrage call
type ExecutionParams struct {
	TokenA       common.Address
	TokenB       common.Address
	LoanAmount   *big.Int
	FeeTier      uint32
	MinAmountOut *big.Int
	Protection   ProtectionParams
}

func (p ExecutionParams) args() []interface{} {
	return []interface{}{
		p.TokenA,
		p.TokenB,
		p.LoanAmount,
		new(big.Int).SetUint64(uint64(p.FeeTier)),
		p.MinAmountOut,
		p.Protection,
	}
}

// ArbitrageExecuted is the decoded ArbitrageExecuted event
type ArbitrageExecuted struct {
	TokenA   common.Address
	TokenB   common.Address
	AmountIn *big.Int
	Profit   *big.Int
	TxHash   [32]byte
}
