package dex

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Venue quotes exact-input swaps on one liquidity source.
// Venues that route by path rather than fee tier ignore feeTier.
type Venue interface {
	// Name returns the venue identifier used in quotes and logs
	Name() string

	// QuoteExactInput returns the amount of tokenOut received for amountIn of tokenIn
	QuoteExactInput(ctx context.Context, amountIn *big.Int, tokenIn, tokenOut common.Address, feeTier uint32) (*big.Int, error)
}

// Quoter is the failure-absorbing view of a venue used by the aggregator and scanner
type Quoter interface {
	Name() string
	Quote(ctx context.Context, amountIn *big.Int, tokenIn, tokenOut common.Address, feeTier uint32) Quote
}
