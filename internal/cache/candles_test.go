package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Notivest/price-fetcher/internal/market"
)

func day(t *testing.T, date string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, date+"T09:30:00Z")
	require.NoError(t, err)
	return ts
}

func bar(ts time.Time, close float64) market.Candle {
	return market.Candle{TS: ts, O: close - 1, H: close + 1, L: close - 2, C: close, V: 1000, Adjusted: true}
}

func TestCandleStorePutSortsAndGetCopies(t *testing.T) {
	s := NewCandleStore()
	sym := market.ParseSymbol("AAPL")
	series := market.CandleSeries{
		Symbol:    sym,
		Timeframe: market.T1D,
		Items: []market.Candle{
			bar(day(t, "2024-01-03"), 164),
			bar(day(t, "2024-01-01"), 154),
			bar(day(t, "2024-01-02"), 157),
		},
	}

	s.Put(series)
	got, ok := s.Get(sym, market.T1D)
	require.True(t, ok)
	require.Len(t, got.Items, 3)
	assert.Equal(t, day(t, "2024-01-01"), got.Items[0].TS)
	assert.Equal(t, day(t, "2024-01-02"), got.Items[1].TS)
	assert.Equal(t, day(t, "2024-01-03"), got.Items[2].TS)

	// mutating the returned slice must not touch the stored series
	got.Items[0].C = -1
	again, _ := s.Get(sym, market.T1D)
	assert.Equal(t, 154.0, again.Items[0].C)
}

func TestCandleStoreGetMissing(t *testing.T) {
	s := NewCandleStore()
	_, ok := s.Get(market.ParseSymbol("NONE"), market.T1D)
	assert.False(t, ok)
	assert.Equal(t, 0, s.Size(market.ParseSymbol("NONE"), market.T1D))
}

func TestAppendMergesAndOverwritesOnCollision(t *testing.T) {
	s := NewCandleStore()
	sym := market.ParseSymbol("AAPL")
	s.Put(market.CandleSeries{Symbol: sym, Timeframe: market.T1D, Items: []market.Candle{
		bar(day(t, "2024-01-01"), 154),
		bar(day(t, "2024-01-02"), 157),
	}})

	result := s.Append(sym, market.T1D, []market.Candle{
		bar(day(t, "2024-01-03"), 161),
		bar(day(t, "2024-01-01"), 155), // corrected bar, same timestamp
	}, 1000)

	require.Len(t, result.Items, 3)
	assert.Equal(t, 155.0, result.Items[0].C)
	assert.Equal(t, 157.0, result.Items[1].C)
	assert.Equal(t, 161.0, result.Items[2].C)
}

func TestAppendIdempotent(t *testing.T) {
	s := NewCandleStore()
	sym := market.ParseSymbol("AAPL")
	items := []market.Candle{
		bar(day(t, "2024-01-01"), 154),
		bar(day(t, "2024-01-02"), 157),
	}

	first := s.Append(sym, market.T1D, items, 1000)
	second := s.Append(sym, market.T1D, items, 1000)
	assert.Equal(t, first, second)
	assert.Equal(t, 2, s.Size(sym, market.T1D))
}

func TestAppendRespectsMaxWindow(t *testing.T) {
	s := NewCandleStore()
	sym := market.ParseSymbol("AAPL")
	dates := []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05"}
	items := make([]market.Candle, 0, len(dates))
	for i, d := range dates {
		items = append(items, bar(day(t, d), 150+float64(i)))
	}

	result := s.Append(sym, market.T1D, items, 3)
	require.Len(t, result.Items, 3)
	assert.Equal(t, day(t, "2024-01-03"), result.Items[0].TS)
	assert.Equal(t, day(t, "2024-01-05"), result.Items[2].TS)
}

func TestAppendTruncatesExistingLongerThanWindow(t *testing.T) {
	s := NewCandleStore()
	sym := market.ParseSymbol("AAPL")
	s.Put(market.CandleSeries{Symbol: sym, Timeframe: market.T1D, Items: []market.Candle{
		bar(day(t, "2024-01-01"), 150),
		bar(day(t, "2024-01-02"), 151),
		bar(day(t, "2024-01-03"), 152),
		bar(day(t, "2024-01-04"), 153),
	}})

	result := s.Append(sym, market.T1D, []market.Candle{bar(day(t, "2024-01-05"), 154)}, 2)
	require.Len(t, result.Items, 2)
	assert.Equal(t, day(t, "2024-01-04"), result.Items[0].TS)
	assert.Equal(t, day(t, "2024-01-05"), result.Items[1].TS)
}

func TestAppendDropsEpochBars(t *testing.T) {
	s := NewCandleStore()
	sym := market.ParseSymbol("AAPL")

	result := s.Append(sym, market.T1D, []market.Candle{
		bar(time.Unix(0, 0).UTC(), 1),
		bar(time.Time{}, 2),
		bar(day(t, "2024-01-01"), 154),
	}, 1000)

	require.Len(t, result.Items, 1)
	assert.Equal(t, day(t, "2024-01-01"), result.Items[0].TS)
	assert.Equal(t, 1, s.Size(sym, market.T1D))
}

func TestAppendEmptyIsNoOp(t *testing.T) {
	s := NewCandleStore()
	sym := market.ParseSymbol("AAPL")
	s.Put(market.CandleSeries{Symbol: sym, Timeframe: market.T1D, Items: []market.Candle{
		bar(day(t, "2024-01-01"), 154),
	}})

	result := s.Append(sym, market.T1D, nil, 1000)
	require.Len(t, result.Items, 1)
	assert.Equal(t, 154.0, result.Items[0].C)
}

func TestAppendCreatesMissingSeries(t *testing.T) {
	s := NewCandleStore()
	sym := market.ParseSymbol("NVDA")

	result := s.Append(sym, market.T1H, []market.Candle{bar(day(t, "2024-01-01"), 500)}, 1000)
	assert.Len(t, result.Items, 1)
	assert.Equal(t, 1, s.Count())
}

func TestAppendDefaultWindow(t *testing.T) {
	s := NewCandleStore()
	sym := market.ParseSymbol("AAPL")
	result := s.Append(sym, market.T1D, []market.Candle{bar(day(t, "2024-01-01"), 1)}, 0)
	assert.Len(t, result.Items, 1)
}

func TestAppendConcurrentSameKeyLosesNothing(t *testing.T) {
	s := NewCandleStore()
	sym := market.ParseSymbol("AAPL")
	base := day(t, "2024-01-01")

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				ts := base.Add(time.Duration(g*50+i) * time.Minute)
				s.Append(sym, market.T1M, []market.Candle{bar(ts, float64(g*50 + i))}, 1000)
			}
		}(g)
	}
	wg.Wait()

	assert.Equal(t, 200, s.Size(sym, market.T1M))
	got, _ := s.Get(sym, market.T1M)
	for i := 1; i < len(got.Items); i++ {
		assert.True(t, got.Items[i-1].TS.Before(got.Items[i].TS))
	}
}

func TestCountDistinctSeries(t *testing.T) {
	s := NewCandleStore()
	sym := market.ParseSymbol("AAPL")
	s.Append(sym, market.T1D, []market.Candle{bar(day(t, "2024-01-01"), 1)}, 1000)
	s.Append(sym, market.T1H, []market.Candle{bar(day(t, "2024-01-01"), 1)}, 1000)
	s.Append(market.ParseSymbol("TSLA"), market.T1D, []market.Candle{bar(day(t, "2024-01-01"), 1)}, 1000)
	assert.Equal(t, 3, s.Count())
}
