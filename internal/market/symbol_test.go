package market

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSymbol(t *testing.T) {
	assert.Equal(t, SymbolId{Ticker: "AAPL"}, ParseSymbol("AAPL"))
	assert.Equal(t, SymbolId{Ticker: "MSFT", Exchange: "MX"}, ParseSymbol("MSFT.MX"))
	assert.Equal(t, SymbolId{Ticker: "BRK.B", Exchange: "US"}, ParseSymbol("BRK.B.US"))
}

func TestSymbolRoundTrip(t *testing.T) {
	for _, raw := range []string{"AAPL", "TSLA", "MSFT.MX", "BRK.B.US"} {
		assert.Equal(t, raw, ParseSymbol(raw).String())
	}
}

func TestSymbolJSON(t *testing.T) {
	data, err := json.Marshal(SymbolId{Ticker: "MSFT", Exchange: "MX"})
	require.NoError(t, err)
	assert.Equal(t, `"MSFT.MX"`, string(data))

	var s SymbolId
	require.NoError(t, json.Unmarshal([]byte(`"AAPL"`), &s))
	assert.Equal(t, SymbolId{Ticker: "AAPL"}, s)
}

func TestParseTimeframe(t *testing.T) {
	tf, err := ParseTimeframe("t1d")
	require.NoError(t, err)
	assert.Equal(t, T1D, tf)

	_, err = ParseTimeframe("T2W")
	assert.Error(t, err)
}
