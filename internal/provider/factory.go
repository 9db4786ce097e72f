package provider

import "strings"

// Factory selects the configured upstream. Unknown primary values fall back
// to Finnhub rather than failing.
type Factory struct {
	primary string
	finnhub *FinnhubProvider
	polygon *PolygonProvider
}

func NewFactory(primary string, finnhub *FinnhubProvider, polygon *PolygonProvider) *Factory {
	return &Factory{primary: primary, finnhub: finnhub, polygon: polygon}
}

// Primary returns the default provider for both quote refresh and historical
// fetch.
func (f *Factory) Primary() MarketDataProvider {
	switch strings.ToUpper(f.primary) {
	case "POLYGON":
		return f.polygon
	default:
		return f.finnhub
	}
}

// QuotesProvider returns the backend specialized for live quotes.
func (f *Factory) QuotesProvider() MarketDataProvider { return f.finnhub }

// HistoricalProvider returns the backend specialized for historical bars.
func (f *Factory) HistoricalProvider() MarketDataProvider { return f.polygon }
