package marketdata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Notivest/price-fetcher/internal/cache"
	"github.com/Notivest/price-fetcher/internal/market"
	"github.com/Notivest/price-fetcher/internal/provider"
)

// ErrNotFound signals a quote requested for a symbol that was never written,
// as opposed to a present-but-stale one.
var ErrNotFound = errors.New("no quote for symbol")

// ProviderSource hands out the configured upstream capability.
type ProviderSource interface {
	Primary() provider.MarketDataProvider
}

// SymbolSource yields the enabled watchlist symbols in listing order.
type SymbolSource interface {
	EnabledSymbols() ([]market.SymbolId, error)
}

// QuoteView is a cached quote as served to callers, with its staleness
// verdict attached.
type QuoteView struct {
	Symbol    string    `json:"symbol"`
	Last      float64   `json:"last"`
	TS        time.Time `json:"ts"`
	Open      float64   `json:"open,omitempty"`
	High      float64   `json:"high,omitempty"`
	Low       float64   `json:"low,omitempty"`
	PrevClose float64   `json:"prev_close,omitempty"`
	Currency  string    `json:"currency"`
	Source    string    `json:"source"`
	Stale     bool      `json:"stale"`
}

// Service answers quote and historical reads against the caches, reaching
// upstream only on a historical miss or an explicit prefetch.
type Service struct {
	providers ProviderSource
	quotes    *cache.QuoteCache
	candles   *cache.CandleStore
	maxWindow int
}

func NewService(providers ProviderSource, quotes *cache.QuoteCache, candles *cache.CandleStore, maxWindow int) *Service {
	if maxWindow <= 0 {
		maxWindow = cache.DefaultMaxWindow
	}
	return &Service{providers: providers, quotes: quotes, candles: candles, maxWindow: maxWindow}
}

// Prefetch fetches quotes for the given symbols right now and stores them,
// returning how many landed in the cache.
func (s *Service) Prefetch(ctx context.Context, symbols []market.SymbolId) (int, error) {
	list, err := s.providers.Primary().FetchQuotes(ctx, symbols)
	if err != nil {
		return 0, fmt.Errorf("prefetch quotes: %w", err)
	}
	for _, q := range list {
		s.quotes.Put(q)
	}
	return len(list), nil
}

// GetQuotes resolves each symbol from the cache. Any symbol never written
// fails the whole lookup with ErrNotFound.
func (s *Service) GetQuotes(ids []market.SymbolId) ([]QuoteView, error) {
	out := make([]QuoteView, 0, len(ids))
	for _, id := range ids {
		q, stale, ok := s.quotes.Get(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		out = append(out, QuoteView{
			Symbol:    q.Symbol.String(),
			Last:      q.Last,
			TS:        q.TS,
			Open:      q.Open,
			High:      q.High,
			Low:       q.Low,
			PrevClose: q.PrevClose,
			Currency:  q.Currency,
			Source:    q.Source,
			Stale:     stale,
		})
	}
	return out, nil
}

// Historical returns the cached series when present; on a miss it fetches
// from the primary provider, merges the bars into the bounded store and
// returns the result. Upstream failures propagate to the caller.
func (s *Service) Historical(ctx context.Context, symbol market.SymbolId, from, to time.Time, tf market.Timeframe, adjusted bool) (market.CandleSeries, error) {
	if cached, ok := s.candles.Get(symbol, tf); ok {
		return cached, nil
	}
	series, err := s.providers.Primary().FetchHistorical(ctx, symbol, from, to, tf)
	if err != nil {
		return market.CandleSeries{}, err
	}
	for i := range series.Items {
		series.Items[i].Adjusted = adjusted
	}
	return s.candles.Append(symbol, tf, series.Items, s.maxWindow), nil
}
