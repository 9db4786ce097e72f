package market

import (
	"encoding/json"
	"strings"
)

// SymbolId identifies a ticker, optionally qualified by an exchange suffix
// ("AAPL", "MSFT.MX"). The zero Exchange means no qualifier.
type SymbolId struct {
	Ticker   string
	Exchange string
}

// ParseSymbol splits a raw symbol on its last "." into ticker and exchange.
// A raw value without a dot is a plain ticker.
func ParseSymbol(raw string) SymbolId {
	idx := strings.LastIndex(raw, ".")
	if idx < 0 {
		return SymbolId{Ticker: raw}
	}
	return SymbolId{Ticker: raw[:idx], Exchange: raw[idx+1:]}
}

func (s SymbolId) String() string {
	if s.Exchange == "" {
		return s.Ticker
	}
	return s.Ticker + "." + s.Exchange
}

func (s SymbolId) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *SymbolId) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = ParseSymbol(raw)
	return nil
}
