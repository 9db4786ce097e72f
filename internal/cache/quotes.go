package cache

import (
	"sync"
	"time"

	"github.com/Notivest/price-fetcher/internal/market"
)

// QuoteCache keeps the latest quote per symbol together with the instant it
// was written. A quote past its TTL is reported stale but still returned;
// nothing is ever evicted.
type QuoteCache struct {
	ttl time.Duration
	now func() time.Time

	mu        sync.RWMutex
	quotes    map[market.SymbolId]market.Quote
	freshness map[market.SymbolId]time.Time
}

func NewQuoteCache(ttl time.Duration) *QuoteCache {
	return &QuoteCache{
		ttl:       ttl,
		now:       time.Now,
		quotes:    make(map[market.SymbolId]market.Quote),
		freshness: make(map[market.SymbolId]time.Time),
	}
}

// Put stores the quote under its symbol and stamps its freshness, replacing
// any prior entry.
func (c *QuoteCache) Put(q market.Quote) {
	now := c.now()
	c.mu.Lock()
	c.quotes[q.Symbol] = q
	c.freshness[q.Symbol] = now
	c.mu.Unlock()
}

// Get returns the stored quote for the symbol. stale is true when the entry
// is missing or older than the TTL; ok reports whether an entry exists.
func (c *QuoteCache) Get(symbol market.SymbolId) (q market.Quote, stale bool, ok bool) {
	c.mu.RLock()
	q, ok = c.quotes[symbol]
	written, hasTS := c.freshness[symbol]
	c.mu.RUnlock()

	stale = !hasTS || c.now().Sub(written) > c.ttl
	return q, stale, ok
}

// Count returns the number of distinct symbols stored.
func (c *QuoteCache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.quotes)
}

// Symbols returns the stored symbol keys in unspecified order.
func (c *QuoteCache) Symbols() []market.SymbolId {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]market.SymbolId, 0, len(c.quotes))
	for sym := range c.quotes {
		out = append(out, sym)
	}
	return out
}
