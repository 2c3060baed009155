package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/time/rate"
)

// LimitedCaller throttles read-only contract calls through a token bucket so that the
// concurrent second-hop fan-out stays within the RPC provider's request budget.
type LimitedCaller struct {
	caller  bind.ContractCaller
	limiter *rate.Limiter
}

// NewLimitedCaller wraps caller with a limiter of rps requests per second and the given burst
func NewLimitedCaller(caller bind.ContractCaller, rps float64, burst int) *LimitedCaller {
	return &LimitedCaller{
		caller:  caller,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (c *LimitedCaller) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	return c.caller.CodeAt(ctx, contract, blockNumber)
}

func (c *LimitedCaller) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	return c.caller.CallContract(ctx, call, blockNumber)
}

var _ bind.ContractCaller = (*LimitedCaller)(nil)
