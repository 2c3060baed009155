package flashloan

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var ErrNotOwner = errors.New("wallet is not the execution contract owner")

// ContractABI is the interface of the on-chain flash loan arbitrage contract
const ContractABI = `[
	{
		"inputs": [
			{"internalType": "address", "name": "tokenA", "type": "address"},
			{"internalType": "address", "name": "tokenB", "type": "address"},
			{"internalType": "uint256", "name": "amountA", "type": "uint256"},
			{"internalType": "uint24", "name": "feeAtoB", "type": "uint24"},
			{"internalType": "uint256", "name": "amountOutMinA", "type": "uint256"},
			{
				"components": [
					{"internalType": "uint256", "name": "maxGasPriceGwei", "type": "uint256"},
					{"internalType": "uint256", "name": "blockNumberDeadline", "type": "uint256"},
					{"internalType": "bytes32", "name": "priceCommitment", "type": "bytes32"},
					{"internalType": "bool", "name": "useCommitReveal", "type": "bool"}
				],
				"internalType": "struct Protection",
				"name": "protection",
				"type": "tuple"
			}
		],
		"name": "executeArbitrage",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "internalType": "address", "name": "tokenA", "type": "address"},
			{"indexed": true, "internalType": "address", "name": "tokenB", "type": "address"},
			{"indexed": false, "internalType": "uint256", "name": "amountIn", "type": "uint256"},
			{"indexed": false, "internalType": "uint256", "name": "profit", "type": "uint256"},
			{"indexed": true, "internalType": "bytes32", "name": "txHash", "type": "bytes32"}
		],
		"name": "ArbitrageExecuted",
		"type": "event"
	},
	{
		"inputs": [],
		"name": "owner",
		"outputs": [{"internalType": "address", "name": "", "type": "address"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"internalType": "address", "name": "token", "type": "address"}],
		"name": "emergencyWithdraw",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`

// Contract is a binding to the execution contract
type Contract struct {
	address common.Address
	abi     abi.ABI
	bound   *bind.BoundContract
}

// NewContract binds the execution contract. transactor may be nil for read-only use.
func NewContract(address common.Address, caller bind.ContractCaller, transactor bind.ContractTransactor) (*Contract, error) {
	parsedABI, err := abi.JSON(strings.NewReader(ContractABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse contract ABI: %w", err)
	}

	return &Contract{
		address: address,
		abi:     parsedABI,
		bound:   bind.NewBoundContract(address, parsedABI, caller, transactor, nil),
	}, nil
}

// Address returns the contract address
func (c *Contract) Address() common.Address {
	return c.address
}

// Owner reads owner()
func (c *Contract) Owner(ctx context.Context) (common.Address, error) {
	var out []interface{}
	if err := c.bound.Call(&bind.CallOpts{Context: ctx}, &out, "owner"); err != nil {
		return common.Address{}, fmt.Errorf("failed to read owner: %w", err)
	}
	owner, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("unexpected owner type %T", out[0])
	}
	return owner, nil
}

// VerifyOwner returns ErrNotOwner unless wallet owns the contract
func (c *Contract) VerifyOwner(ctx context.Context, wallet common.Address) error {
	owner, err := c.Owner(ctx)
	if err != nil {
		return err
	}
	if owner != wallet {
		return fmt.Errorf("%w: wallet %s, owner %s", ErrNotOwner, wallet.Hex(), owner.Hex())
	}
	return nil
}

// SimulateArbitrage runs executeArbitrage as an eth_call from the given sender
func (c *Contract) SimulateArbitrage(ctx context.Context, from common.Address, params ExecutionParams) error {
	var out []interface{}
	if err := c.bound.Call(&bind.CallOpts{Context: ctx, From: from}, &out, "executeArbitrage", params.args()...); err != nil {
		return fmt.Errorf("simulation reverted: %w", err)
	}
	return nil
}

// ExecuteArbitrage submits executeArbitrage with the given transact options
func (c *Contract) ExecuteArbitrage(opts *bind.TransactOpts, params ExecutionParams) (*types.Transaction, error) {
	return c.bound.Transact(opts, "executeArbitrage", params.args()...)
}

// EmergencyWithdraw submits emergencyWithdraw(token)
func (c *Contract) EmergencyWithdraw(opts *bind.TransactOpts, token common.Address) (*types.Transaction, error) {
	return c.bound.Transact(opts, "emergencyWithdraw", token)
}

// ParseArbitrageExecuted returns the first ArbitrageExecuted event emitted by this contract in receipt
func (c *Contract) ParseArbitrageExecuted(receipt *types.Receipt) (*ArbitrageExecuted, bool) {
	if receipt == nil {
		return nil, false
	}
	id := c.abi.Events["ArbitrageExecuted"].ID
	for _, log := range receipt.Logs {
		if log == nil || log.Address != c.address || len(log.Topics) == 0 || log.Topics[0] != id {
			continue
		}
		event := new(ArbitrageExecuted)
		if err := c.bound.UnpackLog(event, "ArbitrageExecuted", *log); err != nil {
			continue
		}
		return event, true
	}
	return nil, false
}

var _ Executor = (*Contract)(nil)
