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

// RouterV2 quotes through any Uniswap V2 compatible router (SushiSwap, QuickSwap, ...).
// Routing is by path, so the fee tier is ignored.
type RouterV2 struct {
	name     string
	address  common.Address
	contract *bind.BoundContract
}

// NewRouterV2 binds the router at address for read-only calls through caller
func NewRouterV2(name string, address common.Address, caller bind.ContractCaller) (*RouterV2, error) {
	parsedABI, err := abi.JSON(strings.NewReader(routerV2ABIJson))
	if err != nil {
		return nil, fmt.Errorf("failed to parse router ABI: %w", err)
	}

	return &RouterV2{
		name:     name,
		address:  address,
		contract: bind.NewBoundContract(address, parsedABI, caller, nil, nil),
	}, nil
}

// Name returns the venue name
func (r *RouterV2) Name() string {
	return r.name
}

// Address returns the router contract address
func (r *RouterV2) Address() common.Address {
	return r.address
}

// QuoteExactInput calls getAmountsOut over the direct path and returns its last element
func (r *RouterV2) QuoteExactInput(ctx context.Context, amountIn *big.Int, tokenIn, tokenOut common.Address, _ uint32) (*big.Int, error) {
	var out []interface{}
	path := []common.Address{tokenIn, tokenOut}
	if err := r.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getAmountsOut", amountIn, path); err != nil {
		return nil, fmt.Errorf("getAmountsOut: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("getAmountsOut: empty result")
	}

	amounts, ok := out[0].([]*big.Int)
	if !ok {
		return nil, fmt.Errorf("getAmountsOut: unexpected result type %T", out[0])
	}
	if len(amounts) != len(path) {
		return nil, fmt.Errorf("getAmountsOut: expected %d amounts, got %d", len(path), len(amounts))
	}
	return amounts[len(amounts)-1], nil
}
