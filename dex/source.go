package dex

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/michaelpento.lv/arbbot/types"
	"github.com/michaelpento.lv/arbbot/utils/metrics"
)

// Quote is re-exported so venue consumers only import dex
type Quote = types.Quote

var (
	errNonPositiveAmount = errors.New("amount in must be positive")
	errSameToken         = errors.New("token in and token out must differ")
)

// Source adapts a Venue into a Quoter. It never returns an error: any failure becomes a
// zero-amount failed quote tagged with the venue, logged at debug level. There are no retries.
type Source struct {
	venue   Venue
	logger  *zap.Logger
	metrics *metrics.QuoteMetrics
}

// NewSource wraps a venue
func NewSource(venue Venue, logger *zap.Logger, m *metrics.QuoteMetrics) *Source {
	return &Source{
		venue:   venue,
		logger:  logger.With(zap.String("venue", venue.Name())),
		metrics: m,
	}
}

// Name returns the wrapped venue name
func (s *Source) Name() string {
	return s.venue.Name()
}

// Quote asks the venue for an exact-input quote
func (s *Source) Quote(ctx context.Context, amountIn *big.Int, tokenIn, tokenOut common.Address, feeTier uint32) Quote {
	name := s.venue.Name()
	s.metrics.Requests.WithLabelValues(name).Inc()

	if err := validateRequest(amountIn, tokenIn, tokenOut); err != nil {
		s.fail(err, tokenIn, tokenOut)
		return types.FailedQuote(name)
	}

	start := time.Now()
	amountOut, err := s.venue.QuoteExactInput(ctx, amountIn, tokenIn, tokenOut, feeTier)
	s.metrics.Latency.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		s.fail(err, tokenIn, tokenOut)
		return types.FailedQuote(name)
	}
	if amountOut == nil || amountOut.Sign() < 0 {
		s.fail(errors.New("malformed quote amount"), tokenIn, tokenOut)
		return types.FailedQuote(name)
	}

	return Quote{Venue: name, AmountOut: amountOut, OK: true}
}

func (s *Source) fail(err error, tokenIn, tokenOut common.Address) {
	s.metrics.Failures.WithLabelValues(s.venue.Name()).Inc()
	s.logger.Debug("Quote failed",
		zap.String("token_in", tokenIn.Hex()),
		zap.String("token_out", tokenOut.Hex()),
		zap.Error(err))
}

func validateRequest(amountIn *big.Int, tokenIn, tokenOut common.Address) error {
	if amountIn == nil || amountIn.Sign() <= 0 {
		return errNonPositiveAmount
	}
	if tokenIn == tokenOut {
		return errSameToken
	}
	return nil
}
