package flashloan

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Executor submits arbitrage transactions to the execution contract
type Executor interface {
	SimulateArbitrage(ctx context.Context, from common.Address, params ExecutionParams) error
	ExecuteArbitrage(opts *bind.TransactOpts, params ExecutionParams) (*types.Transaction, error)
	ParseArbitrageExecuted(receipt *types.Receipt) (*ArbitrageExecuted, bool)
}

// Chain is the part of the RPC client the coordinator needs to build deadlines and wait for receipts
type Chain interface {
	BlockNumber(ctx context.Context) (uint64, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
}
