package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Notivest/price-fetcher/internal/market"
)

func TestFinnhubFetchQuotes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/quote", r.URL.Path)
		require.Equal(t, "test-key", r.URL.Query().Get("token"))
		require.NotEmpty(t, r.URL.Query().Get("symbol"))
		fmt.Fprint(w, `{"c": 187.5, "o": 185.0, "h": 188.2, "l": 184.9, "pc": 186.1, "t": 1704103800}`)
	}))
	defer srv.Close()

	p := NewFinnhubProvider(srv.URL, "test-key", 5*time.Second)
	quotes, err := p.FetchQuotes(context.Background(), []market.SymbolId{
		market.ParseSymbol("AAPL"),
		market.ParseSymbol("MSFT.MX"),
	})
	require.NoError(t, err)
	require.Len(t, quotes, 2)

	q := quotes[0]
	assert.Equal(t, market.ParseSymbol("AAPL"), q.Symbol)
	assert.Equal(t, 187.5, q.Last)
	assert.Equal(t, 186.1, q.PrevClose)
	assert.Equal(t, "FINNHUB", q.Source)
	assert.Equal(t, time.Unix(1704103800, 0).UTC(), q.TS)
}

func TestFinnhubSkipsFailedSymbols(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("symbol") == "BAD" {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"c": 10.0, "t": 1704103800}`)
	}))
	defer srv.Close()

	p := NewFinnhubProvider(srv.URL, "k", 5*time.Second)
	quotes, err := p.FetchQuotes(context.Background(), []market.SymbolId{
		market.ParseSymbol("GOOD"),
		market.ParseSymbol("BAD"),
		market.ParseSymbol("ALSOGOOD"),
	})
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	assert.Equal(t, market.ParseSymbol("GOOD"), quotes[0].Symbol)
	assert.Equal(t, market.ParseSymbol("ALSOGOOD"), quotes[1].Symbol)
}

func TestFinnhubRequiresConfig(t *testing.T) {
	p := NewFinnhubProvider("", "", 0)
	_, err := p.FetchQuotes(context.Background(), []market.SymbolId{market.ParseSymbol("AAPL")})
	assert.Error(t, err)
}

func TestFinnhubHistoricalUnsupported(t *testing.T) {
	p := NewFinnhubProvider("http://example.invalid", "k", 0)
	_, err := p.FetchHistorical(context.Background(), market.ParseSymbol("AAPL"),
		time.Now().Add(-24*time.Hour), time.Now(), market.T1D)
	assert.True(t, errors.Is(err, ErrUnsupported))
}
