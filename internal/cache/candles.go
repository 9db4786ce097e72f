package cache

import (
	"sort"
	"sync"
	"time"

	"github.com/Notivest/price-fetcher/internal/market"
)

// DefaultMaxWindow caps a series when the caller does not supply a window.
const DefaultMaxWindow = 1000

type seriesKey struct {
	symbol    market.SymbolId
	timeframe market.Timeframe
}

// CandleStore keeps one ordered, deduplicated, length-bounded bar series per
// (symbol, timeframe). All mutation goes through Put and Append; stored
// slices are never handed out for modification.
type CandleStore struct {
	mu    sync.Mutex
	store map[seriesKey][]market.Candle
}

func NewCandleStore() *CandleStore {
	return &CandleStore{store: make(map[seriesKey][]market.Candle)}
}

// Put replaces the stored series wholesale, sorted by timestamp. The caller
// is expected to supply clean, duplicate-free items.
func (s *CandleStore) Put(series market.CandleSeries) {
	items := make([]market.Candle, len(series.Items))
	copy(items, series.Items)
	sort.Slice(items, func(i, j int) bool { return items[i].TS.Before(items[j].TS) })

	key := seriesKey{symbol: series.Symbol, timeframe: series.Timeframe}
	s.mu.Lock()
	s.store[key] = items
	s.mu.Unlock()
}

// Get returns the stored series for the key, if any.
func (s *CandleStore) Get(symbol market.SymbolId, tf market.Timeframe) (market.CandleSeries, bool) {
	s.mu.Lock()
	items, ok := s.store[seriesKey{symbol: symbol, timeframe: tf}]
	s.mu.Unlock()
	if !ok {
		return market.CandleSeries{}, false
	}
	out := make([]market.Candle, len(items))
	copy(out, items)
	return market.CandleSeries{Symbol: symbol, Timeframe: tf, Items: out}, true
}

// Append merges newItems into the stored series: epoch-stamped junk is
// dropped, incoming bars overwrite existing bars with the same timestamp
// (corrected data from upstream wins), the result is sorted ascending and
// trimmed to the newest maxWindow entries. The read-merge-write sequence is
// serialized, so concurrent appends on one key never lose a contribution.
// An empty newItems leaves the series untouched and returns it as-is.
func (s *CandleStore) Append(symbol market.SymbolId, tf market.Timeframe, newItems []market.Candle, maxWindow int) market.CandleSeries {
	if maxWindow <= 0 {
		maxWindow = DefaultMaxWindow
	}
	incoming := make([]market.Candle, 0, len(newItems))
	for _, c := range newItems {
		if isEpoch(c.TS) {
			continue
		}
		incoming = append(incoming, c)
	}

	key := seriesKey{symbol: symbol, timeframe: tf}
	s.mu.Lock()
	merged := mergeAndLimit(s.store[key], incoming, maxWindow)
	s.store[key] = merged
	s.mu.Unlock()

	out := make([]market.Candle, len(merged))
	copy(out, merged)
	return market.CandleSeries{Symbol: symbol, Timeframe: tf, Items: out}
}

// Count returns the number of distinct (symbol, timeframe) series stored.
func (s *CandleStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.store)
}

// Size returns the item count for one series, 0 if absent.
func (s *CandleStore) Size(symbol market.SymbolId, tf market.Timeframe) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.store[seriesKey{symbol: symbol, timeframe: tf}])
}

func mergeAndLimit(existing, incoming []market.Candle, maxWindow int) []market.Candle {
	if len(incoming) == 0 {
		return existing
	}
	byTS := make(map[int64]market.Candle, len(existing)+len(incoming))
	for _, c := range existing {
		byTS[c.TS.UnixNano()] = c
	}
	for _, c := range incoming {
		byTS[c.TS.UnixNano()] = c
	}

	ordered := make([]market.Candle, 0, len(byTS))
	for _, c := range byTS {
		ordered = append(ordered, c)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].TS.Before(ordered[j].TS) })

	if len(ordered) > maxWindow {
		ordered = ordered[len(ordered)-maxWindow:]
	}
	return ordered
}

// isEpoch reports the invalid-bar sentinel: the Unix epoch or the zero time,
// both seen from feeds that null out timestamps.
func isEpoch(t time.Time) bool {
	return t.IsZero() || t.UnixNano() == 0
}
