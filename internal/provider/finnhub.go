package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/Notivest/price-fetcher/internal/market"
)

// FinnhubProvider serves live quotes from the Finnhub REST API. Historical
// bars are not implemented here; PolygonProvider owns that operation.
type FinnhubProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

type finnhubQuote struct {
	C  float64 `json:"c"`
	O  float64 `json:"o"`
	H  float64 `json:"h"`
	L  float64 `json:"l"`
	PC float64 `json:"pc"`
	T  int64   `json:"t"`
}

func NewFinnhubProvider(baseURL, apiKey string, timeout time.Duration) *FinnhubProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &FinnhubProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *FinnhubProvider) Name() string { return "FINNHUB" }

// FetchQuotes requests each symbol individually. A symbol that fails is
// logged and skipped rather than failing the whole batch.
func (p *FinnhubProvider) FetchQuotes(ctx context.Context, symbols []market.SymbolId) ([]market.Quote, error) {
	if p.baseURL == "" || p.apiKey == "" {
		return nil, fmt.Errorf("finnhub base-url/api-key not configured")
	}

	out := make([]market.Quote, 0, len(symbols))
	for _, sid := range symbols {
		q, err := p.fetchOne(ctx, sid)
		if err != nil {
			log.Printf("finnhub quote for %s failed: %v", sid, err)
			continue
		}
		out = append(out, q)
	}
	return out, nil
}

func (p *FinnhubProvider) fetchOne(ctx context.Context, sid market.SymbolId) (market.Quote, error) {
	u := fmt.Sprintf("%s/quote?symbol=%s&token=%s",
		trimSlash(p.baseURL), url.QueryEscape(sid.String()), url.QueryEscape(p.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return market.Quote{}, fmt.Errorf("build request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return market.Quote{}, fmt.Errorf("request finnhub: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return market.Quote{}, fmt.Errorf("finnhub rate-limited")
	}
	if resp.StatusCode != http.StatusOK {
		return market.Quote{}, fmt.Errorf("finnhub status %d", resp.StatusCode)
	}

	var body finnhubQuote
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return market.Quote{}, fmt.Errorf("decode finnhub: %w", err)
	}

	ts := time.Now()
	if body.T > 0 {
		ts = time.Unix(body.T, 0).UTC()
	}
	return market.Quote{
		Symbol:    sid,
		Last:      body.C,
		Open:      body.O,
		High:      body.H,
		Low:       body.L,
		PrevClose: body.PC,
		Currency:  "USD",
		Source:    p.Name(),
		TS:        ts,
	}, nil
}

func (p *FinnhubProvider) FetchHistorical(ctx context.Context, symbol market.SymbolId, from, to time.Time, tf market.Timeframe) (market.CandleSeries, error) {
	return market.CandleSeries{}, fmt.Errorf("finnhub historical: %w", ErrUnsupported)
}
