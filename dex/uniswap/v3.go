package uniswap

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// QuoterV3 quotes single-pool exact-input swaps through the Uniswap V3 Quoter
type QuoterV3 struct {
	name     string
	address  common.Address
	contract *bind.BoundContract
}

// NewQuoterV3 binds the quoter at address for read-only calls through caller
func NewQuoterV3(name string, address common.Address, caller bind.ContractCaller) (*QuoterV3, error) {
	parsedABI, err := abi.JSON(strings.NewReader(quoterV3ABIJson))
	if err != nil {
		return nil, fmt.Errorf("failed to parse quoter ABI: %w", err)
	}

	return &QuoterV3{
		name:     name,
		address:  address,
		contract: bind.NewBoundContract(address, parsedABI, caller, nil, nil),
	}, nil
}

// Name returns the venue name
func (q *QuoterV3) Name() string {
	return q.name
}

// Address returns the quoter contract address
func (q *QuoterV3) Address() common.Address {
	return q.address
}

// QuoteExactInput calls quoteExactInputSingle with no price limit
func (q *QuoterV3) QuoteExactInput(ctx context.Context, amountIn *big.Int, tokenIn, tokenOut common.Address, feeTier uint32) (*big.Int, error) {
	var out []interface{}
	err := q.contract.Call(&bind.CallOpts{Context: ctx}, &out, "quoteExactInputSingle",
		tokenIn,
		tokenOut,
		new(big.Int).SetUint64(uint64(feeTier)),
		amountIn,
		big.NewInt(0),
	)
	if err != nil {
		return nil, fmt.Errorf("quoteExactInputSingle: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("quoteExactInputSingle: empty result")
	}

	amountOut, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("quoteExactInputSingle: unexpected result type %T", out[0])
	}
	return amountOut, nil
}
