package marketdata

import (
	"context"
	"log"
	"time"

	"github.com/Notivest/price-fetcher/internal/cache"
	"github.com/Notivest/price-fetcher/internal/market"
)

// PhaseSource reports the current trading-session phase.
type PhaseSource interface {
	Phase() market.Phase
}

// RefreshScheduler keeps the quote cache warm: a fixed-delay loop that
// fetches the enabled watchlist in phase-sized batches. A chunk that fails
// is logged and skipped; the next tick is the retry mechanism.
type RefreshScheduler struct {
	watchlist SymbolSource
	providers ProviderSource
	quotes    *cache.QuoteCache
	clock     PhaseSource
	policy    market.RefreshPolicy
	interval  time.Duration
}

func NewRefreshScheduler(watchlist SymbolSource, providers ProviderSource, quotes *cache.QuoteCache, clock PhaseSource, interval time.Duration) *RefreshScheduler {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &RefreshScheduler{
		watchlist: watchlist,
		providers: providers,
		quotes:    quotes,
		clock:     clock,
		interval:  interval,
	}
}

// Run ticks until the context is cancelled. Each tick completes fully before
// the delay for the next one starts counting, so runs never overlap.
func (s *RefreshScheduler) Run(ctx context.Context) {
	log.Printf("refresh scheduler started, interval %s", s.interval)
	for {
		s.Tick(ctx)
		select {
		case <-ctx.Done():
			log.Printf("refresh scheduler stopped")
			return
		case <-time.After(s.interval):
		}
	}
}

// Tick refreshes the whole enabled watchlist once. It never fails: every
// error at every level is logged and confined to its chunk or tick.
func (s *RefreshScheduler) Tick(ctx context.Context) {
	symbols, err := s.watchlist.EnabledSymbols()
	if err != nil {
		log.Printf("refresh tick: load watchlist: %v", err)
		return
	}
	if len(symbols) == 0 {
		return
	}

	provider := s.providers.Primary()
	phase := s.clock.Phase()
	batch := s.policy.BatchSize(phase)

	for _, chunk := range chunkSymbols(symbols, batch) {
		data, err := provider.FetchQuotes(ctx, chunk)
		if err != nil {
			log.Printf("refresh chunk of %d failed (%s phase): %v", len(chunk), phase, err)
			continue
		}
		for _, q := range data {
			s.quotes.Put(q)
		}
	}
}

func chunkSymbols(symbols []market.SymbolId, size int) [][]market.SymbolId {
	if size <= 0 {
		size = 1
	}
	var chunks [][]market.SymbolId
	for start := 0; start < len(symbols); start += size {
		end := start + size
		if end > len(symbols) {
			end = len(symbols)
		}
		chunks = append(chunks, symbols[start:end])
	}
	return chunks
}
