package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExecutionLock(t *testing.T) {
	var lock ExecutionLock
	assert.False(t, lock.Held())

	assert.True(t, lock.TryAcquire())
	assert.True(t, lock.Held())
	assert.False(t, lock.TryAcquire(), "second acquire must fail while held")

	lock.Release()
	assert.False(t, lock.Held())

	// idempotent release
	lock.Release()
	assert.False(t, lock.Held())
	assert.True(t, lock.TryAcquire())
}

func TestTradingPairSymbols(t *testing.T) {
	p := TradingPair{Symbol: "WMATIC/USDC"}
	assert.Equal(t, "WMATIC", p.SymbolA())
	assert.Equal(t, "USDC", p.SymbolB())

	p = TradingPair{Symbol: "WETH"}
	assert.Equal(t, "WETH", p.SymbolA())
	assert.Equal(t, "WETH", p.SymbolB())
}

func TestClassificationString(t *testing.T) {
	assert.Equal(t, "profitable", Profitable.String())
	assert.Equal(t, "near_miss", NearMiss.String())
	assert.Equal(t, "rejected", Rejected.String())
}

func TestFailedQuote(t *testing.T) {
	q := FailedQuote("SushiSwap")
	assert.False(t, q.OK)
	assert.Equal(t, "SushiSwap", q.Venue)
	assert.Equal(t, int64(0), q.AmountOut.Int64())
}
