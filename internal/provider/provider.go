package provider

import (
	"context"
	"errors"
	"time"

	"github.com/Notivest/price-fetcher/internal/market"
)

// ErrUnsupported signals that a provider does not implement the requested
// operation (a quotes-only backend asked for bars, or vice versa).
var ErrUnsupported = errors.New("operation not supported by provider")

// MarketDataProvider is an upstream data source capability. A variant may
// support only one of the two fetch operations; the unsupported one returns
// ErrUnsupported. FetchQuotes is best-effort: symbols that fail individually
// are dropped from the result, so it may be shorter than the input.
type MarketDataProvider interface {
	FetchQuotes(ctx context.Context, symbols []market.SymbolId) ([]market.Quote, error)
	FetchHistorical(ctx context.Context, symbol market.SymbolId, from, to time.Time, tf market.Timeframe) (market.CandleSeries, error)
	Name() string
}
