package types

import (
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// NoVenue is the venue reported when no second-hop venue produced a usable quote
const NoVenue = "none"

var (
	ErrNoRoute           = errors.New("no viable route")
	ErrExecutionInFlight = errors.New("execution already in flight")
)

// TradingPair is a round-trip candidate: TokenA is borrowed and swapped to TokenB on the
// first-hop venue, then swapped back on the best second-hop venue.
type TradingPair struct {
	TokenA    common.Address
	TokenB    common.Address
	DecimalsA uint8
	DecimalsB uint8
	FeeTier   uint32 // first-hop pool fee, hundredths of a bip
	Symbol    string
}

// SymbolA returns the left side of the pair symbol
func (p TradingPair) SymbolA() string {
	if i := strings.Index(p.Symbol, "/"); i >= 0 {
		return p.Symbol[:i]
	}
	return p.Symbol
}

// SymbolB returns the right side of the pair symbol
func (p TradingPair) SymbolB() string {
	if i := strings.Index(p.Symbol, "/"); i >= 0 {
		return p.Symbol[i+1:]
	}
	return p.Symbol
}

// Quote is a single venue's answer to an exact-input request. A failed quote carries a zero amount.
type Quote struct {
	Venue     string
	AmountOut *big.Int
	OK        bool
}

// FailedQuote returns a zero-amount failure tagged with the venue
func FailedQuote(venue string) Quote {
	return Quote{Venue: venue, AmountOut: big.NewInt(0)}
}

// Classification of an evaluated (pair, size) combination
type Classification int

const (
	Rejected Classification = iota
	NearMiss
	Profitable
)

func (c Classification) String() string {
	switch c {
	case Profitable:
		return "profitable"
	case NearMiss:
		return "near_miss"
	default:
		return "rejected"
	}
}

// Opportunity carries everything needed to report on and execute one evaluation.
// All amounts are in the loan token's native precision.
type Opportunity struct {
	Classification Classification

	LoanAmount          *big.Int
	FirstHopOut         *big.Int // TokenB received on the first hop
	SecondHopOut        *big.Int // TokenA received on the second hop, after venue fee
	Repayment           *big.Int
	GrossProfit         *big.Int
	GasCost             *big.Int
	NetProfit           *big.Int // after gas, before slippage
	MinAmountOut        *big.Int
	ProfitAfterSlippage *big.Int

	ProfitUSD      float64
	SpreadPercent  float64
	SecondHopVenue string
}

// ExecutionStatus is the terminal state of one execution attempt
type ExecutionStatus string

const (
	ExecutionSuccess  ExecutionStatus = "success"
	ExecutionReverted ExecutionStatus = "reverted"
	ExecutionFailed   ExecutionStatus = "failed"
	ExecutionSkipped  ExecutionStatus = "skipped"
)

// ExecutionOutcome is the observability record of one execution attempt
type ExecutionOutcome struct {
	ID             string
	Pair           string
	Status         ExecutionStatus
	TxHash         common.Hash
	GasUsed        uint64
	RealizedProfit *big.Int
	Reason         string
	Duration       time.Duration
}
