package market

import (
	"fmt"
	"strings"
	"time"
)

// Quote is the latest observed price for a symbol. Values are immutable once
// built; the cache replaces them wholesale on refresh.
type Quote struct {
	Symbol    SymbolId  `json:"symbol"`
	Last      float64   `json:"last"`
	Open      float64   `json:"open,omitempty"`
	High      float64   `json:"high,omitempty"`
	Low       float64   `json:"low,omitempty"`
	PrevClose float64   `json:"prev_close,omitempty"`
	Currency  string    `json:"currency"`
	Source    string    `json:"source"`
	TS        time.Time `json:"ts"`
}

// Candle is a single price bar. TS is the bar start and the ordering and
// dedup key within a series.
type Candle struct {
	TS       time.Time `json:"ts"`
	O        float64   `json:"o"`
	H        float64   `json:"h"`
	L        float64   `json:"l"`
	C        float64   `json:"c"`
	V        int64     `json:"v"`
	Adjusted bool      `json:"adjusted"`
}

// CandleSeries holds the bars for one (symbol, timeframe) pair, sorted
// ascending by timestamp with no duplicates.
type CandleSeries struct {
	Symbol    SymbolId  `json:"symbol"`
	Timeframe Timeframe `json:"timeframe"`
	Items     []Candle  `json:"items"`
}

// Timeframe is the bar width of a candle series.
type Timeframe string

const (
	T1M  Timeframe = "T1M"
	T5M  Timeframe = "T5M"
	T15M Timeframe = "T15M"
	T1H  Timeframe = "T1H"
	T1D  Timeframe = "T1D"
)

// Timeframes lists all supported values, smallest first.
func Timeframes() []Timeframe {
	return []Timeframe{T1M, T5M, T15M, T1H, T1D}
}

// ParseTimeframe matches a raw value against the supported set,
// case-insensitively.
func ParseTimeframe(raw string) (Timeframe, error) {
	tf := Timeframe(strings.ToUpper(strings.TrimSpace(raw)))
	switch tf {
	case T1M, T5M, T15M, T1H, T1D:
		return tf, nil
	}
	return "", fmt.Errorf("unknown timeframe: %q", raw)
}

// WatchListItem is a watch-listed symbol. A nil Priority sorts after any
// explicit one; lower values list first.
type WatchListItem struct {
	Symbol   string `json:"symbol"`
	Enabled  bool   `json:"enabled"`
	Priority *int   `json:"priority,omitempty"`
}
