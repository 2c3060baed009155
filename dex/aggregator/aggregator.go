package aggregator

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/michaelpento.lv/arbbot/dex"
	"github.com/michaelpento.lv/arbbot/types"
	"github.com/michaelpento.lv/arbbot/utils"
	"github.com/michaelpento.lv/arbbot/utils/metrics"
)

// Aggregator fans a second-hop quote out to every configured venue and keeps the best
// fee-adjusted answer. Venue order is the tie-break order.
type Aggregator struct {
	venues  []dex.Quoter
	feeBps  uint64
	logger  *zap.Logger
	metrics *metrics.QuoteMetrics
}

// New creates an aggregator over venues, deducting feeBps from every raw quote
func New(venues []dex.Quoter, feeBps uint64, logger *zap.Logger, m *metrics.QuoteMetrics) *Aggregator {
	return &Aggregator{
		venues:  venues,
		feeBps:  feeBps,
		logger:  logger,
		metrics: m,
	}
}

// Venues returns the configured venue names in tie-break order
func (a *Aggregator) Venues() []string {
	names := make([]string, 0, len(a.venues))
	for _, v := range a.venues {
		names = append(names, v.Name())
	}
	return names
}

// Quotes requests a quote from every venue concurrently and waits for all of them to settle.
// The result is indexed like the venue list; failed venues carry a zero amount.
func (a *Aggregator) Quotes(ctx context.Context, amountIn *big.Int, tokenIn, tokenOut common.Address) []types.Quote {
	quotes := make([]types.Quote, len(a.venues))

	var g errgroup.Group
	for i, venue := range a.venues {
		i, venue := i, venue
		g.Go(func() error {
			q := venue.Quote(ctx, amountIn, tokenIn, tokenOut, 0)
			if q.OK {
				q.AmountOut = a.afterFee(q.AmountOut)
			}
			quotes[i] = q
			return nil
		})
	}
	_ = g.Wait()

	return quotes
}

// BestSecondHopQuote returns the greatest fee-adjusted output and the venue that produced it.
// When no venue returns a non-zero amount it returns zero and types.NoVenue.
func (a *Aggregator) BestSecondHopQuote(ctx context.Context, amountIn *big.Int, tokenIn, tokenOut common.Address) (*big.Int, string) {
	quotes := a.Quotes(ctx, amountIn, tokenIn, tokenOut)

	best := big.NewInt(0)
	venue := types.NoVenue
	for _, q := range quotes {
		if !q.OK {
			continue
		}
		if q.AmountOut.Cmp(best) > 0 {
			best = q.AmountOut
			venue = q.Venue
		}
	}

	if venue == types.NoVenue {
		a.metrics.NoRoute.Inc()
		a.logger.Debug("No second-hop route",
			zap.Error(types.ErrNoRoute),
			zap.String("token_in", tokenIn.Hex()),
			zap.String("token_out", tokenOut.Hex()),
			zap.String("amount_in", amountIn.String()))
	}

	return best, venue
}

func (a *Aggregator) afterFee(raw *big.Int) *big.Int {
	return utils.BasisPoints(raw, 10000-a.feeBps)
}
