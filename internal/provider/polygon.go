package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/Notivest/price-fetcher/internal/market"
)

// PolygonProvider serves historical aggregate bars from the Polygon REST
// API. Live quotes are not implemented here; FinnhubProvider owns that
// operation.
type PolygonProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

type polygonAggsResp struct {
	Results []polygonAgg `json:"results"`
}

type polygonAgg struct {
	T int64   `json:"t"` // bar start, epoch millis
	O float64 `json:"o"`
	H float64 `json:"h"`
	L float64 `json:"l"`
	C float64 `json:"c"`
	V float64 `json:"v"`
}

func NewPolygonProvider(baseURL, apiKey string, timeout time.Duration) *PolygonProvider {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &PolygonProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *PolygonProvider) Name() string { return "POLYGON" }

func (p *PolygonProvider) FetchQuotes(ctx context.Context, symbols []market.SymbolId) ([]market.Quote, error) {
	return nil, fmt.Errorf("polygon quotes: %w", ErrUnsupported)
}

func (p *PolygonProvider) FetchHistorical(ctx context.Context, symbol market.SymbolId, from, to time.Time, tf market.Timeframe) (market.CandleSeries, error) {
	if p.baseURL == "" || p.apiKey == "" {
		return market.CandleSeries{}, fmt.Errorf("polygon base-url/api-key not configured")
	}

	u := fmt.Sprintf("%s/v2/aggs/ticker/%s/range/%s/%s/%s?adjusted=true&limit=50000&apiKey=%s",
		trimSlash(p.baseURL),
		url.PathEscape(symbol.String()),
		timeframeRange(tf),
		from.UTC().Format("2006-01-02"),
		to.UTC().Format("2006-01-02"),
		url.QueryEscape(p.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return market.CandleSeries{}, fmt.Errorf("build request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return market.CandleSeries{}, fmt.Errorf("request polygon: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return market.CandleSeries{}, fmt.Errorf("polygon rate-limited for %s", symbol)
	}
	if resp.StatusCode != http.StatusOK {
		return market.CandleSeries{}, fmt.Errorf("polygon status %d for %s", resp.StatusCode, symbol)
	}

	var body polygonAggsResp
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return market.CandleSeries{}, fmt.Errorf("decode polygon: %w", err)
	}

	sort.Slice(body.Results, func(i, j int) bool { return body.Results[i].T < body.Results[j].T })
	items := make([]market.Candle, 0, len(body.Results))
	for _, a := range body.Results {
		items = append(items, market.Candle{
			TS:       time.UnixMilli(a.T).UTC(),
			O:        a.O,
			H:        a.H,
			L:        a.L,
			C:        a.C,
			V:        int64(a.V),
			Adjusted: true,
		})
	}
	return market.CandleSeries{Symbol: symbol, Timeframe: tf, Items: items}, nil
}

func timeframeRange(tf market.Timeframe) string {
	switch tf {
	case market.T1M:
		return "1/minute"
	case market.T5M:
		return "5/minute"
	case market.T15M:
		return "15/minute"
	case market.T1H:
		return "1/hour"
	default:
		return "1/day"
	}
}

func trimSlash(s string) string {
	return strings.TrimSuffix(s, "/")
}
